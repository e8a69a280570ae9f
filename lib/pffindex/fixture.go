// SPDX-License-Identifier: GPL-2.0-or-later

package pffindex

import (
	"context"
	"fmt"

	"github.com/mkrautz/go-pff/lib/pffio"
)

// FixtureRecord is one descriptors-index record as it appears in a
// flat test fixture or JSON dump, in any order: a leaf of the
// descriptors index with no further internal B-tree structure of its
// own. A FixtureIndex presents its whole record set as a single flat
// leaf list directly under the root, which is sufficient to drive
// every build-time code path (read-ahead, orphan fallback, duplicate
// detection, degraded subtrees) without modeling internal B-tree
// node/page layout the builder never inspects anyway.
type FixtureRecord struct {
	Identifier                 uint64
	ParentIdentifier           uint32
	DataIdentifier             uint64
	LocalDescriptorsIdentifier uint64
	Deleted                    bool
}

// FixtureIndex is an in-memory DescriptorsIndex backed by a literal
// slice of records, for use by tests and by the CLI's JSON-fixture
// mode. It implements DescriptorsIndex directly; no I/O handle or
// decoding step is involved, so the io parameter every method accepts
// is ignored.
type FixtureIndex struct {
	Records []FixtureRecord

	// BrokenNodes marks indices into Records (by position, matching
	// NodeRef.Value().(int)) whose NumberOfSubNodes call must fail,
	// to exercise the builder's degraded-traversal tolerance.
	BrokenNodes map[int]error
}

// NewFixtureIndex builds a FixtureIndex over records, in the order
// given; order is significant only as the order SubNodeAt enumerates
// the leaves in and as the tie-break when GetLeafByIdentifier has
// several records with the same identifier (the first one wins).
func NewFixtureIndex(records []FixtureRecord) *FixtureIndex {
	return &FixtureIndex{Records: records}
}

// rootSlot is the NodeRef.Value() held by the single synthetic root
// node every FixtureIndex presents above its flat leaf list.
type rootSlot struct{}

func (idx *FixtureIndex) Root() NodeRef {
	return NewNodeRef(rootSlot{})
}

func (idx *FixtureIndex) IsDeleted(node NodeRef) bool {
	i, ok := node.Value().(int)
	if !ok {
		return false
	}
	return idx.Records[i].Deleted
}

func (idx *FixtureIndex) IsLeaf(_ context.Context, node NodeRef, _ *pffio.Handle, _ *NodeCache) bool {
	_, isRoot := node.Value().(rootSlot)
	return !isRoot
}

func (idx *FixtureIndex) NumberOfSubNodes(_ context.Context, node NodeRef, _ *pffio.Handle, _ *NodeCache) (int, error) {
	i, isLeaf := node.Value().(int)
	if isLeaf {
		if err := idx.BrokenNodes[i]; err != nil {
			return 0, err
		}
		return 0, nil
	}
	return len(idx.Records), nil
}

func (idx *FixtureIndex) SubNodeAt(_ context.Context, node NodeRef, _ *pffio.Handle, _ *NodeCache, i int) NodeRef {
	if _, isRoot := node.Value().(rootSlot); !isRoot {
		panic(fmt.Sprintf("pffindex: SubNodeAt called on non-root fixture node %v", node.Value()))
	}
	return NewNodeRef(i)
}

func (idx *FixtureIndex) ReadValue(_ context.Context, node NodeRef, _ *pffio.Handle, cache *NodeCache) *IndexValue {
	i, ok := node.Value().(int)
	if !ok {
		return nil
	}
	if cache != nil {
		if v, found := cache.Get(i); found {
			return &v
		}
	}
	r := idx.Records[i]
	v := IndexValue{
		Identifier:                 r.Identifier,
		ParentIdentifier:           r.ParentIdentifier,
		DataIdentifier:             r.DataIdentifier,
		LocalDescriptorsIdentifier: r.LocalDescriptorsIdentifier,
	}
	if cache != nil {
		cache.Store(i, v)
	}
	return &v
}

func (idx *FixtureIndex) GetLeafByIdentifier(_ context.Context, id uint32, _ *pffio.Handle, _ *NodeCache) (bool, NodeRef) {
	for i, r := range idx.Records {
		if uint32(r.Identifier) == id && r.Identifier <= MaxIdentifier {
			return true, NewNodeRef(i)
		}
	}
	return false, NodeRef{}
}
