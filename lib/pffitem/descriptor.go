// SPDX-License-Identifier: GPL-2.0-or-later

// Package pffitem holds the in-memory projection of a single
// descriptors-index record: the ItemDescriptor.
package pffitem

import "fmt"

// Descriptor is the immutable, in-memory projection of one
// descriptors-index record.  DescriptorID is the 32-bit identifier of
// the mailbox object (folder, message, attachment); DataID and
// LocalDescriptorsID are opaque 64-bit handles into subsystems this
// package does not interpret.
type Descriptor struct {
	DescriptorID       uint32
	DataID             uint64
	LocalDescriptorsID uint64
	Recovered          bool
}

// New constructs a Descriptor from its constituent fields.
func New(descriptorID uint32, dataID, localDescriptorsID uint64, recovered bool) Descriptor {
	return Descriptor{
		DescriptorID:       descriptorID,
		DataID:             dataID,
		LocalDescriptorsID: localDescriptorsID,
		Recovered:          recovered,
	}
}

// Cmp gives the total order over Descriptors by DescriptorID.  Within
// a single node's child list (see package pfftree) ties cannot occur,
// since duplicate insertion is rejected before a second Descriptor
// with the same DescriptorID is ever compared; the OrphanList has no
// such guarantee.
func (a Descriptor) Cmp(b Descriptor) int {
	switch {
	case a.DescriptorID < b.DescriptorID:
		return -1
	case a.DescriptorID > b.DescriptorID:
		return 1
	default:
		return 0
	}
}

func (a Descriptor) String() string {
	return fmt.Sprintf("descriptor(id=%d data=%d localdesc=%d recovered=%v)",
		a.DescriptorID, a.DataID, a.LocalDescriptorsID, a.Recovered)
}
