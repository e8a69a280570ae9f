// SPDX-License-Identifier: GPL-2.0-or-later

package pfftree

import (
	"fmt"

	"github.com/mkrautz/go-pff/lib/pffitem"
)

// FindByIdentifier performs a bounded, pre-order, depth-first search
// of node's subtree for a descriptor with the given DescriptorID.
// depth is the caller's current recursion depth (pass 0 at the root
// of the search); node itself is matched only when depth > 0, so a
// search started at depth 0 never returns its starting node. A search
// that would exceed MaxDepth stops and is reported as not found;
// FindByIdentifierErr returns ErrOutOfBounds in that case.
//
// A negative depth is itself an invalid argument: only non-negative
// depths make sense as a distance already travelled. FindByIdentifier
// reports it as not found; FindByIdentifierErr returns
// ErrInvalidArgument.
func FindByIdentifier(node *Node, id uint32, depth int) (*Node, bool) {
	found, _, err := findByIdentifier(node, id, depth)
	if err != nil {
		return nil, false
	}
	return found, found != nil
}

// FindByIdentifierErr is FindByIdentifier but surfaces ErrOutOfBounds
// instead of folding it into a false result, for callers (Verify-style
// diagnostics, tests of the depth guard) that need to distinguish "not
// found" from "search aborted: too deep".
func FindByIdentifierErr(node *Node, id uint32, depth int) (*Node, error) {
	found, _, err := findByIdentifier(node, id, depth)
	return found, err
}

func findByIdentifier(node *Node, id uint32, depth int) (*Node, bool, error) {
	if node == nil {
		return nil, false, nil
	}
	if depth < 0 {
		return nil, false, fmt.Errorf("find by identifier: negative depth: %w", ErrInvalidArgument)
	}
	if depth > MaxDepth {
		return nil, false, fmt.Errorf("find by identifier %d: %w", id, ErrOutOfBounds)
	}
	if node.Descriptor.DescriptorID == id && depth > 0 {
		return node, true, nil
	}
	for i := 0; i < node.NumberOfChildren(); i++ {
		child := node.ChildAt(i)
		found, ok, err := findByIdentifier(child, id, depth+1)
		if err != nil {
			return nil, false, err
		}
		if ok {
			return found, true, nil
		}
	}
	return nil, false, nil
}

// FindDirectChild looks id up in parent's own ordered child list; it
// does not recurse into grandchildren.
func FindDirectChild(parent *Node, id uint32) (*Node, bool) {
	child := parent.ChildByIdentifier(id)
	return child, child != nil
}

// AppendIdentifier builds a detached Node from the given descriptor
// fields and appends it unconditionally to parent's child list --
// the OrphanList-construction path, where uniqueness need not be
// checked because the caller is assembling a fresh detached subtree.
func AppendIdentifier(parent *Node, descriptorID uint32, dataID, localDescID uint64, recovered bool) *Node {
	child := NewNode(pffitem.New(descriptorID, dataID, localDescID, recovered))
	if parent != nil {
		parent.AppendChild(child)
	}
	return child
}

// FreeRecoveredSubtree detaches node from its parent, if any. It is a
// no-op given nil, matching the upstream contract's free-of-null
// tolerance.
func FreeRecoveredSubtree(node *Node) {
	if node == nil {
		return
	}
	node.Free()
}
