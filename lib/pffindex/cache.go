// SPDX-License-Identifier: GPL-2.0-or-later

package pffindex

import (
	"github.com/mkrautz/go-pff/lib/containers"
)

// DefaultCacheSize is the number of IndexValue records a NodeCache
// holds before evicting the least-recently-used entry.
const DefaultCacheSize = 256

// NodeCache is the concrete IndexCache collaborator: a least-recently
// used cache of already-decoded IndexValue records, keyed by whatever
// a DescriptorsIndex implementation uses to identify a node (a page
// address, a fixture slot). It is shared across every traversal and
// read-ahead call made during a single build, exactly as §5 of the
// upstream contract requires, and may silently evict entries between
// calls: ReadValue's "borrowed with cache-scoped lifetime" rule exists
// because of this cache, not in spite of it.
type NodeCache struct {
	inner *containers.LRUCache[any, IndexValue]
}

// NewNodeCache builds a NodeCache holding at most size entries.
func NewNodeCache(size int) *NodeCache {
	if size <= 0 {
		size = DefaultCacheSize
	}
	return &NodeCache{inner: containers.NewLRUCache[any, IndexValue](size)}
}

// Get returns the cached value for key, if present.
func (c *NodeCache) Get(key any) (IndexValue, bool) {
	return c.inner.Get(key)
}

// Store inserts or overwrites the cached value for key, possibly
// evicting the cache's current least-recently-used entry.
func (c *NodeCache) Store(key any, v IndexValue) {
	c.inner.Add(key, v)
}

// Len reports how many entries are currently cached.
func (c *NodeCache) Len() int {
	return c.inner.Len()
}
