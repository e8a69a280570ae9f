// SPDX-License-Identifier: GPL-2.0-or-later

package pfftree_test

import (
	"errors"
	"testing"

	"github.com/davecgh/go-spew/spew"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mkrautz/go-pff/lib/pffitem"
	"github.com/mkrautz/go-pff/lib/pfftree"
)

func desc(id uint32) pffitem.Descriptor {
	return pffitem.New(id, 0, 0, false)
}

// childIDs collects a node's immediate children's descriptor ids, for
// comparison in assertion failure messages below.
func childIDs(n *pfftree.Node) []uint32 {
	ids := make([]uint32, n.NumberOfChildren())
	for i := range ids {
		ids[i] = n.ChildAt(i).Descriptor.DescriptorID
	}
	return ids
}

func TestInsertChildUniqueOrdering(t *testing.T) {
	root := pfftree.NewNode(desc(0))
	for _, id := range []uint32{5, 1, 3} {
		require.NoError(t, root.InsertChildUnique(pfftree.NewNode(desc(id))))
	}
	require.Equal(t, 3, root.NumberOfChildren())
	want := []uint32{1, 3, 5}
	got := childIDs(root)
	assert.Equal(t, want, got, "child order mismatch; want %s, got %s", spew.Sdump(want), spew.Sdump(got))
	assert.Nil(t, root.ChildAt(3))
}

func TestInsertChildUniqueRejectsDuplicate(t *testing.T) {
	root := pfftree.NewNode(desc(0))
	first := pfftree.NewNode(desc(1))
	require.NoError(t, root.InsertChildUnique(first))

	second := pfftree.NewNode(desc(1))
	err := root.InsertChildUnique(second)
	require.Error(t, err)
	assert.True(t, errors.Is(err, pfftree.ErrAlreadySet))

	// The existing child is untouched; the rejected node never got
	// attached.
	assert.Equal(t, 1, root.NumberOfChildren())
	assert.Same(t, first, root.ChildAt(0))
	assert.Nil(t, second.Parent())
}

func TestNextSiblingOf(t *testing.T) {
	root := pfftree.NewNode(desc(0))
	a := pfftree.NewNode(desc(1))
	b := pfftree.NewNode(desc(2))
	c := pfftree.NewNode(desc(3))
	require.NoError(t, root.InsertChildUnique(b))
	require.NoError(t, root.InsertChildUnique(a))
	require.NoError(t, root.InsertChildUnique(c))

	assert.Same(t, b, root.NextSiblingOf(a))
	assert.Same(t, c, root.NextSiblingOf(b))
	assert.Nil(t, root.NextSiblingOf(c))
}

func TestFreeDetachesFromParent(t *testing.T) {
	root := pfftree.NewNode(desc(0))
	child := pfftree.NewNode(desc(1))
	require.NoError(t, root.InsertChildUnique(child))
	require.Equal(t, 1, root.NumberOfChildren())

	child.Free()
	assert.Equal(t, 0, root.NumberOfChildren())
	assert.Nil(t, child.Parent())
}

func TestFindByIdentifier(t *testing.T) {
	root := pfftree.NewNode(desc(0))
	a := pfftree.NewNode(desc(1))
	b := pfftree.NewNode(desc(2))
	require.NoError(t, root.InsertChildUnique(a))
	require.NoError(t, a.InsertChildUnique(b))

	found, ok := pfftree.FindByIdentifier(root, 2, 0)
	require.True(t, ok)
	assert.Same(t, b, found)

	_, ok = pfftree.FindByIdentifier(root, 99, 0)
	assert.False(t, ok)

	// Idempotence: repeated lookups return the same identity and
	// do not mutate the tree.
	again, ok := pfftree.FindByIdentifier(root, 2, 0)
	require.True(t, ok)
	assert.Same(t, found, again)
	assert.Equal(t, 1, root.NumberOfChildren())
}

func TestFindByIdentifierDepthGuard(t *testing.T) {
	root := pfftree.NewNode(desc(0))
	cur := root
	for i := uint32(1); i <= pfftree.MaxDepth+2; i++ {
		next := pfftree.NewNode(desc(i))
		require.NoError(t, cur.InsertChildUnique(next))
		cur = next
	}

	_, err := pfftree.FindByIdentifierErr(root, pfftree.MaxDepth+2, 0)
	require.Error(t, err)
	assert.True(t, errors.Is(err, pfftree.ErrOutOfBounds))
}

func TestTreeVerifyAcceptsSoundTree(t *testing.T) {
	tree := pfftree.NewTree()
	child := pfftree.NewNode(desc(7))
	require.NoError(t, tree.Root().InsertChildUnique(child))
	assert.NoError(t, tree.Verify())
}

func TestTreeStats(t *testing.T) {
	tree := pfftree.NewTree()
	a := pfftree.NewNode(desc(1))
	b := pfftree.NewNode(desc(2))
	require.NoError(t, tree.Root().InsertChildUnique(a))
	require.NoError(t, a.InsertChildUnique(b))

	stats := tree.Stats()
	assert.Equal(t, 2, stats.NodeCount)
	assert.Equal(t, 2, stats.MaxDepth)
}
