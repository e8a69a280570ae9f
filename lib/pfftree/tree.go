// SPDX-License-Identifier: GPL-2.0-or-later

package pfftree

import (
	"fmt"

	"github.com/datawire/dlib/derror"

	"github.com/mkrautz/go-pff/lib/containers"
	"github.com/mkrautz/go-pff/lib/pffitem"
)

// Tree is the eagerly materialized item hierarchy that a Builder
// produces from a DescriptorsIndex. The zero Tree is not usable;
// construct one with NewTree.
//
// Tree has no internal locking. Lookups on a finished Tree do not
// mutate it, so concurrent readers are safe as long as nothing builds
// into the same Tree at the same time; readers running alongside a
// build need external synchronization.
type Tree struct {
	root       *Node
	rootFolder *Node
}

// NewTree allocates an empty Tree: a synthetic root node carrying the
// zero descriptor, with no children and no root folder yet installed.
func NewTree() *Tree {
	return &Tree{root: NewNode(pffitem.New(0, 0, 0, false))}
}

// Root returns the synthetic root node. It always exists once t is
// constructed via NewTree.
func (t *Tree) Root() *Node {
	if t == nil {
		return nil
	}
	return t.root
}

// RootFolder returns the root-folder subtree -- the unique
// self-parented descriptor -- or nil if the build has not installed
// one yet (an index with zero self-parented leaves is valid and
// leaves RootFolder nil forever).
func (t *Tree) RootFolder() *Node {
	if t == nil {
		return nil
	}
	return t.rootFolder
}

// SetRootFolder installs node as the root-folder subtree. It installs
// at most one root folder; a later call that names the identifier
// already installed is the same leaf being
// rediscovered through normal traversal after read-ahead already
// materialized it, and is silently dropped like any other duplicate
// descriptor. A call naming a *different* identifier while a root
// folder already exists is the genuine "double root folder"
// corruption case and returns ErrAlreadySet without touching the
// existing root folder.
func (t *Tree) SetRootFolder(node *Node) error {
	if t.rootFolder != nil {
		if t.rootFolder.Descriptor.DescriptorID == node.Descriptor.DescriptorID {
			return nil
		}
		return fmt.Errorf("install root folder %d: %w", node.Descriptor.DescriptorID, ErrAlreadySet)
	}
	if err := t.root.InsertSubtreeUnique(node); err != nil {
		return fmt.Errorf("install root folder %d: %w", node.Descriptor.DescriptorID, err)
	}
	t.rootFolder = node
	return nil
}

// FindByIdentifier is the exported convenience wrapper for
// FindByIdentifier(t.Root(), id, 0); see that function for semantics.
func (t *Tree) FindByIdentifier(id uint32) (*Node, bool) {
	if t == nil {
		return nil, false
	}
	return FindByIdentifier(t.root, id, 0)
}

// Verify re-checks the structural invariants of a built tree and
// returns every violation found, aggregated, rather than stopping at
// the first one: no descriptor identifier appears twice, every child's
// parent pointer is the node that holds it, every child list is
// strictly increasing by DescriptorID, and no node lies deeper than
// MaxDepth. It does not compare a node's DescriptorID with the parent
// identifier recorded in the index (Node does not keep it), and it
// does not check that every index leaf ended up in the tree or the
// orphan list. A nil return means none of the checked invariants is
// violated. This is not part of the build path
// -- it is a diagnostic the caller invokes after the fact (for
// example from a verification command), so it walks the whole tree
// unconditionally rather than relying on build-time bookkeeping.
func (t *Tree) Verify() error {
	if t == nil {
		return nil
	}
	var errs derror.MultiError
	seen := make(containers.Set[uint32])
	var walk func(n *Node, depth int)
	walk = func(n *Node, depth int) {
		if depth > MaxDepth {
			errs = append(errs, fmt.Errorf("node %d: %w", n.Descriptor.DescriptorID, ErrOutOfBounds))
			return
		}
		if n != t.root {
			if seen.Has(n.Descriptor.DescriptorID) {
				errs = append(errs, fmt.Errorf("descriptor %d appears more than once in the tree",
					n.Descriptor.DescriptorID))
			} else {
				seen.Insert(n.Descriptor.DescriptorID)
			}
		}
		var prevKey uint32
		havePrev := false
		for i := 0; i < n.NumberOfChildren(); i++ {
			c := n.ChildAt(i)
			if c.Parent() != n {
				errs = append(errs, fmt.Errorf("child %d of node %d has wrong parent pointer",
					c.Descriptor.DescriptorID, n.Descriptor.DescriptorID))
			}
			if havePrev && c.Descriptor.DescriptorID <= prevKey {
				errs = append(errs, fmt.Errorf("children of node %d are not strictly increasing at %d",
					n.Descriptor.DescriptorID, c.Descriptor.DescriptorID))
			}
			prevKey, havePrev = c.Descriptor.DescriptorID, true
			walk(c, depth+1)
		}
	}
	walk(t.root, 0)
	if len(errs) == 0 {
		return nil
	}
	return errs
}

// Stats summarizes the shape of a built tree, for diagnostics and the
// inspection CLI; it is not used by the build algorithm itself.
type Stats struct {
	NodeCount int
	MaxDepth  int
}

// Stats walks the whole tree once and reports its shape.
func (t *Tree) Stats() Stats {
	var s Stats
	if t == nil {
		return s
	}
	var walk func(n *Node, depth int)
	walk = func(n *Node, depth int) {
		s.NodeCount++
		if depth > s.MaxDepth {
			s.MaxDepth = depth
		}
		for i := 0; i < n.NumberOfChildren(); i++ {
			walk(n.ChildAt(i), depth+1)
		}
	}
	walk(t.root, 0)
	// The synthetic root itself does not count as a materialized
	// descriptor.
	s.NodeCount--
	return s
}

// OrphanList is the append-only, unordered-by-identifier sequence of
// detached subtrees whose parent could not be resolved during a
// build. Promotion of an orphan back into the tree after a later
// parent appears is outside this package's scope.
type OrphanList struct {
	nodes []*Node
}

// Append adds node to the list. node MUST be detached (Parent() ==
// nil); OrphanList does not itself detach anything.
func (l *OrphanList) Append(node *Node) {
	l.nodes = append(l.nodes, node)
}

// Len reports how many orphans are held.
func (l *OrphanList) Len() int {
	if l == nil {
		return 0
	}
	return len(l.nodes)
}

// At returns the i'th orphan in discovery order, or nil if out of
// range.
func (l *OrphanList) At(i int) *Node {
	if l == nil || i < 0 || i >= len(l.nodes) {
		return nil
	}
	return l.nodes[i]
}
