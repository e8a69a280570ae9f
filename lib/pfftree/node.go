// SPDX-License-Identifier: GPL-2.0-or-later

// Package pfftree holds the in-memory item tree that an index walk
// builds: Node, the reconstructed parent/child structure, and the
// read-only queries (FindByIdentifier, FindDirectChild) that operate
// over it once built.
package pfftree

import (
	"fmt"

	"github.com/mkrautz/go-pff/lib/containers"
	"github.com/mkrautz/go-pff/lib/pffitem"
)

// MaxDepth bounds the builder's descriptors-index recursion (read-ahead
// included), this package's FindByIdentifier search and Tree.Verify.
// Where it is enforced, a tree deeper than this is treated as corrupt
// rather than risking a stack overflow walking it; Node.Walk and
// Tree.Stats do not enforce it.
const MaxDepth = 1024

// childKey is the RBTree ordering key for a Node's children: the
// DescriptorID of the child's Descriptor.
type childKey = containers.NativeOrdered[uint32]

func keyOf(id uint32) childKey { return childKey{Val: id} }

// Node is one reconstructed position in the item tree: a Descriptor,
// its parent link, and its ordered, unique-by-DescriptorID list of
// children.
type Node struct {
	Descriptor pffitem.Descriptor

	parent   *Node
	children containers.RBTree[childKey, *Node]
}

// NewNode allocates a detached Node wrapping desc.
func NewNode(desc pffitem.Descriptor) *Node {
	n := &Node{Descriptor: desc}
	n.children.KeyFn = func(c *Node) childKey { return keyOf(c.Descriptor.DescriptorID) }
	return n
}

// Parent returns n's parent, or nil if n is a root.
func (n *Node) Parent() *Node {
	if n == nil {
		return nil
	}
	return n.parent
}

// NumberOfChildren reports how many children n has.
func (n *Node) NumberOfChildren() int {
	if n == nil {
		return 0
	}
	return n.children.Len()
}

// ChildAt returns n's i'th child in ascending DescriptorID order, or
// nil if i is out of range.
func (n *Node) ChildAt(i int) *Node {
	if n == nil || i < 0 {
		return nil
	}
	rbnode := n.children.Min()
	for ; rbnode != nil && i > 0; i-- {
		rbnode = n.children.Next(rbnode)
	}
	if rbnode == nil {
		return nil
	}
	return rbnode.Value
}

// ChildByIdentifier looks up a direct child by DescriptorID, without
// recursing into grandchildren.
func (n *Node) ChildByIdentifier(id uint32) *Node {
	if n == nil {
		return nil
	}
	rbnode := n.children.Lookup(keyOf(id))
	if rbnode == nil {
		return nil
	}
	return rbnode.Value
}

// NextSiblingOf returns child's next-in-order sibling under n, or nil
// if child is n's last child. child MUST already be a child of n.
func (n *Node) NextSiblingOf(child *Node) *Node {
	if n == nil || child == nil {
		return nil
	}
	rbnode := n.children.Lookup(keyOf(child.Descriptor.DescriptorID))
	if rbnode == nil {
		return nil
	}
	next := n.children.Next(rbnode)
	if next == nil {
		return nil
	}
	return next.Value
}

// InsertChildUnique attaches child to n under child.Descriptor.DescriptorID.
// If n already has a child with that DescriptorID, the existing child
// is left untouched and ErrAlreadySet is returned; child's Descriptor
// identifying the slot -- not the full record -- is what RBTree's
// Lookup-before-Insert here protects, since the underlying
// containers.RBTree.Insert would otherwise silently overwrite an
// exact-key match.
func (n *Node) InsertChildUnique(child *Node) error {
	if n == nil || child == nil {
		return fmt.Errorf("insert child: %w", ErrInvalidArgument)
	}
	key := keyOf(child.Descriptor.DescriptorID)
	if n.children.Lookup(key) != nil {
		return fmt.Errorf("insert child %d into node %d: %w",
			child.Descriptor.DescriptorID, n.Descriptor.DescriptorID, ErrAlreadySet)
	}
	child.parent = n
	n.children.Insert(child)
	return nil
}

// InsertSubtreeUnique is InsertChildUnique for a child that may
// already carry its own descendants (Tree.SetRootFolder installs the
// root folder through it). It rejects the insert under the same
// AlreadySet rule, and otherwise reparents the whole subtree in one
// step.
func (n *Node) InsertSubtreeUnique(subtreeRoot *Node) error {
	return n.InsertChildUnique(subtreeRoot)
}

// AppendChild is InsertChildUnique without uniqueness checking; it is
// what AppendIdentifier uses. The child list is still keyed by
// DescriptorID, so an existing child with the same DescriptorID is
// replaced by child rather than kept beside it.
func (n *Node) AppendChild(child *Node) {
	if n == nil || child == nil {
		return
	}
	child.parent = n
	n.children.Insert(child)
}

// Free detaches n from its parent and drops n's reference to its
// children, so that nothing outside of n's own subtree keeps it
// reachable. Go's garbage collector reclaims the rest; Free exists so
// that a caller dropping a subtree it could not attach has a single,
// explicit place to mark that, the way the upstream
// resource-discipline rule requires.
func (n *Node) Free() {
	if n == nil {
		return
	}
	if n.parent != nil {
		n.parent.children.Delete(keyOf(n.Descriptor.DescriptorID))
		n.parent = nil
	}
	n.children = containers.RBTree[childKey, *Node]{
		KeyFn: n.children.KeyFn,
	}
}

// Walk visits n and every descendant in pre-order, depth-first,
// stopping and returning fn's error the first time it is non-nil.
// Walk does not itself enforce MaxDepth; callers that walk
// attacker-influenced trees should track depth and bail out using
// ErrOutOfBounds.
func (n *Node) Walk(fn func(*Node) error) error {
	if n == nil {
		return nil
	}
	if err := fn(n); err != nil {
		return err
	}
	var err error
	_ = n.children.Walk(func(rbnode *containers.RBNode[*Node]) error {
		if err != nil {
			return err
		}
		err = rbnode.Value.Walk(fn)
		return err
	})
	return err
}
