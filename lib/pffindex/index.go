// SPDX-License-Identifier: GPL-2.0-or-later

// Package pffindex defines the contract the item tree builder
// consumes from the on-disk descriptors index B-tree, along with a
// concrete eviction-backed cache and an in-memory fixture
// implementation for tests and CLI use.
package pffindex

import (
	"context"
	"fmt"

	"github.com/mkrautz/go-pff/lib/pffio"
)

// NodeRef is an opaque reference to a node of the descriptors index.
// Concrete DescriptorsIndex implementations give it whatever meaning
// they like (a B-tree page address, a slice index into a fixture);
// the builder never inspects it.
type NodeRef struct {
	opaque any
}

func NewNodeRef(v any) NodeRef { return NodeRef{opaque: v} }

// Value recovers the concrete reference a DescriptorsIndex
// implementation stored; it is for implementations of this
// interface, not for the builder.
func (r NodeRef) Value() any { return r.opaque }

// IndexValue is one record of the on-disk descriptors index.
// Identifier is 64 bits wide on disk but every value actually stored
// must fit in 32 bits; ParentIdentifier is already narrowed to the
// descriptor-identifier width.  DataIdentifier and
// LocalDescriptorsIdentifier are opaque 64-bit handles into other
// subsystems.
type IndexValue struct {
	Identifier                 uint64
	ParentIdentifier           uint32
	DataIdentifier             uint64
	LocalDescriptorsIdentifier uint64
}

// MaxIdentifier is the largest descriptor identifier that fits in the
// 32-bit descriptor-identifier space; an IndexValue whose Identifier
// exceeds this is fatal corruption (OutOfBounds).
const MaxIdentifier = 1<<32 - 1

// DescriptorsIndex is the lazy on-disk B-tree of descriptor records
// that the item tree builder walks.  It is the only collaborator
// contract the builder depends on; concrete backings (real PFF index
// pages, the in-memory FixtureIndex below) are equally legal.
//
// Of these operations, only NumberOfSubNodes is permitted to fail;
// every other operation either always succeeds or reports "not found"
// through its own boolean/zero-value result, per the upstream
// contract this package implements.
type DescriptorsIndex interface {
	Root() NodeRef
	IsDeleted(node NodeRef) bool
	IsLeaf(ctx context.Context, node NodeRef, io *pffio.Handle, cache *NodeCache) bool
	NumberOfSubNodes(ctx context.Context, node NodeRef, io *pffio.Handle, cache *NodeCache) (int, error)
	SubNodeAt(ctx context.Context, node NodeRef, io *pffio.Handle, cache *NodeCache, i int) NodeRef
	// ReadValue returns a pointer into the cache.  The pointer is
	// valid only until the next call on this DescriptorsIndex that
	// may touch the cache; callers MUST copy the scalar fields they
	// need before making any further call.
	ReadValue(ctx context.Context, node NodeRef, io *pffio.Handle, cache *NodeCache) *IndexValue
	GetLeafByIdentifier(ctx context.Context, id uint32, io *pffio.Handle, cache *NodeCache) (found bool, leaf NodeRef)
}

// NumberOfSubNodesError is the one error the builder's index walk
// tolerates: it marks the corresponding subtree as contributing
// nothing, rather than aborting the whole build.
type NumberOfSubNodesError struct {
	Node NodeRef
	Err  error
}

func (e *NumberOfSubNodesError) Error() string {
	return fmt.Sprintf("number of sub-nodes: %v", e.Err)
}

func (e *NumberOfSubNodesError) Unwrap() error { return e.Err }
