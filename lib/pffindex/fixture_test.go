// SPDX-License-Identifier: GPL-2.0-or-later

package pffindex_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mkrautz/go-pff/lib/pffindex"
)

func TestFixtureIndexRootEnumeratesLeaves(t *testing.T) {
	idx := pffindex.NewFixtureIndex([]pffindex.FixtureRecord{
		{Identifier: 1, ParentIdentifier: 1},
		{Identifier: 2, ParentIdentifier: 1},
	})
	ctx := context.Background()
	cache := pffindex.NewNodeCache(0)

	root := idx.Root()
	assert.False(t, idx.IsLeaf(ctx, root, nil, cache))

	n, err := idx.NumberOfSubNodes(ctx, root, nil, cache)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	leaf := idx.SubNodeAt(ctx, root, nil, cache, 1)
	assert.True(t, idx.IsLeaf(ctx, leaf, nil, cache))
	v := idx.ReadValue(ctx, leaf, nil, cache)
	require.NotNil(t, v)
	assert.Equal(t, uint64(2), v.Identifier)
}

func TestFixtureIndexGetLeafByIdentifier(t *testing.T) {
	idx := pffindex.NewFixtureIndex([]pffindex.FixtureRecord{
		{Identifier: 1, ParentIdentifier: 1},
		{Identifier: 2, ParentIdentifier: 1},
	})
	ctx := context.Background()

	found, leaf := idx.GetLeafByIdentifier(ctx, 2, nil, nil)
	require.True(t, found)
	v := idx.ReadValue(ctx, leaf, nil, nil)
	require.NotNil(t, v)
	assert.Equal(t, uint32(1), v.ParentIdentifier)

	_, found = idx.GetLeafByIdentifier(ctx, 99, nil, nil)
	assert.False(t, found)
}

func TestFixtureIndexBrokenNode(t *testing.T) {
	idx := pffindex.NewFixtureIndex([]pffindex.FixtureRecord{
		{Identifier: 1, ParentIdentifier: 1},
	})
	idx.BrokenNodes = map[int]error{0: assert.AnError}

	ctx := context.Background()
	leaf := idx.SubNodeAt(ctx, idx.Root(), nil, nil, 0)
	_, err := idx.NumberOfSubNodes(ctx, leaf, nil, nil)
	assert.ErrorIs(t, err, assert.AnError)
}

func TestNodeCacheStoreAndGet(t *testing.T) {
	cache := pffindex.NewNodeCache(1)
	cache.Store("a", pffindex.IndexValue{Identifier: 1})
	v, ok := cache.Get("a")
	require.True(t, ok)
	assert.Equal(t, uint64(1), v.Identifier)
	assert.Equal(t, 1, cache.Len())
}
