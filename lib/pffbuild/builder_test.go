// SPDX-License-Identifier: GPL-2.0-or-later

package pffbuild_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mkrautz/go-pff/lib/pffbuild"
	"github.com/mkrautz/go-pff/lib/pffindex"
	"github.com/mkrautz/go-pff/lib/pffio"
	"github.com/mkrautz/go-pff/lib/pfftree"
)

func rec(id, parent uint32, data, local uint64) pffindex.FixtureRecord {
	return pffindex.FixtureRecord{
		Identifier:                 uint64(id),
		ParentIdentifier:           parent,
		DataIdentifier:             data,
		LocalDescriptorsIdentifier: local,
	}
}

func build(t *testing.T, idx *pffindex.FixtureIndex) (*pfftree.Tree, *pfftree.OrphanList, error) {
	t.Helper()
	tree := pfftree.NewTree()
	var orphans pfftree.OrphanList
	b := pffbuild.NewBuilder(idx, nil, nil)
	err := b.Build(context.Background(), tree, &orphans)
	return tree, &orphans, err
}

func TestBuildLinearChain(t *testing.T) {
	idx := pffindex.NewFixtureIndex([]pffindex.FixtureRecord{
		rec(1, 1, 0, 0),
		rec(2, 1, 0, 0),
		rec(3, 2, 0, 0),
	})
	tree, orphans, err := build(t, idx)
	require.NoError(t, err)
	require.NotNil(t, tree.RootFolder())
	assert.Equal(t, uint32(1), tree.RootFolder().Descriptor.DescriptorID)
	assert.Equal(t, 0, orphans.Len())

	n2, ok := tree.FindByIdentifier(2)
	require.True(t, ok)
	assert.Equal(t, tree.RootFolder(), n2.Parent())

	n3, ok := tree.FindByIdentifier(3)
	require.True(t, ok)
	assert.Equal(t, uint32(2), n3.Parent().Descriptor.DescriptorID)
}

func TestBuildOutOfOrderReadAhead(t *testing.T) {
	idx := pffindex.NewFixtureIndex([]pffindex.FixtureRecord{
		rec(3, 2, 0, 0),
		rec(2, 1, 0, 0),
		rec(1, 1, 0, 0),
	})
	tree, orphans, err := build(t, idx)
	require.NoError(t, err)
	assert.Equal(t, 0, orphans.Len())

	n3, ok := tree.FindByIdentifier(3)
	require.True(t, ok)
	assert.Equal(t, uint32(2), n3.Parent().Descriptor.DescriptorID)
	assert.Equal(t, uint32(1), n3.Parent().Parent().Descriptor.DescriptorID)
}

func TestBuildTrueOrphan(t *testing.T) {
	idx := pffindex.NewFixtureIndex([]pffindex.FixtureRecord{
		rec(1, 1, 0, 0),
		rec(4, 99, 0, 0),
	})
	tree, orphans, err := build(t, idx)
	require.NoError(t, err)
	require.Equal(t, 1, orphans.Len())
	assert.Equal(t, uint32(4), orphans.At(0).Descriptor.DescriptorID)
	_, ok := tree.FindByIdentifier(4)
	assert.False(t, ok)
}

func TestBuildDuplicateDescriptor(t *testing.T) {
	idx := pffindex.NewFixtureIndex([]pffindex.FixtureRecord{
		rec(1, 1, 0, 0),
		rec(2, 1, 0, 0),
		rec(2, 1, 7, 0),
	})
	tree, _, err := build(t, idx)
	require.NoError(t, err)

	n2, ok := tree.FindByIdentifier(2)
	require.True(t, ok)
	assert.Equal(t, uint64(0), n2.Descriptor.DataID)
}

func TestBuildDoubleRootFolder(t *testing.T) {
	idx := pffindex.NewFixtureIndex([]pffindex.FixtureRecord{
		rec(1, 1, 0, 0),
		rec(5, 5, 0, 0),
	})
	_, orphans, err := build(t, idx)
	require.Error(t, err)
	assert.True(t, errors.Is(err, pfftree.ErrAlreadySet))
	assert.Equal(t, 0, orphans.Len())
}

func TestBuildCorruptSubtreeTolerated(t *testing.T) {
	idx := pffindex.NewFixtureIndex([]pffindex.FixtureRecord{
		rec(1, 1, 0, 0), // node B: healthy root folder
		rec(2, 1, 0, 0), // node A: reports an I/O error, contributes nothing
	})
	idx.BrokenNodes = map[int]error{1: errors.New("simulated I/O error reading node A")}

	tree, orphans, err := build(t, idx)
	require.NoError(t, err)

	rootFolder := tree.RootFolder()
	require.NotNil(t, rootFolder)
	assert.Equal(t, uint32(1), rootFolder.Descriptor.DescriptorID, "node B's leaf appears normally")

	_, ok := tree.FindByIdentifier(2)
	assert.False(t, ok, "node A's subtree contributes nothing to the tree")
	assert.Equal(t, 0, orphans.Len(), "node A's corruption is swallowed, not orphaned")
}

func TestBuildDepthGuard(t *testing.T) {
	tree := pfftree.NewTree()
	var orphans pfftree.OrphanList

	deep := &deepIndex{depth: pfftree.MaxDepth + 2}
	b := pffbuild.NewBuilder(deep, nil, nil)
	err := b.Build(context.Background(), tree, &orphans)
	require.Error(t, err)
	assert.True(t, errors.Is(err, pfftree.ErrOutOfBounds))
}

// deepIndex is a DescriptorsIndex whose every interior node has
// exactly one child, to the given depth, forcing visit's recursion
// past MaxDepth without needing a literal fixture of that size.
type deepIndex struct {
	depth int
}

func (d *deepIndex) Root() pffindex.NodeRef { return pffindex.NewNodeRef(0) }

func (d *deepIndex) IsDeleted(pffindex.NodeRef) bool { return false }

func (d *deepIndex) IsLeaf(_ context.Context, node pffindex.NodeRef, _ *pffio.Handle, _ *pffindex.NodeCache) bool {
	return node.Value().(int) >= d.depth
}

func (d *deepIndex) NumberOfSubNodes(_ context.Context, node pffindex.NodeRef, _ *pffio.Handle, _ *pffindex.NodeCache) (int, error) {
	if node.Value().(int) >= d.depth {
		return 0, nil
	}
	return 1, nil
}

func (d *deepIndex) SubNodeAt(_ context.Context, node pffindex.NodeRef, _ *pffio.Handle, _ *pffindex.NodeCache, _ int) pffindex.NodeRef {
	return pffindex.NewNodeRef(node.Value().(int) + 1)
}

func (d *deepIndex) ReadValue(_ context.Context, node pffindex.NodeRef, _ *pffio.Handle, _ *pffindex.NodeCache) *pffindex.IndexValue {
	depth := uint64(node.Value().(int))
	return &pffindex.IndexValue{Identifier: depth + 1, ParentIdentifier: uint32(depth)}
}

func (d *deepIndex) GetLeafByIdentifier(_ context.Context, _ uint32, _ *pffio.Handle, _ *pffindex.NodeCache) (bool, pffindex.NodeRef) {
	return false, pffindex.NodeRef{}
}
