// SPDX-License-Identifier: GPL-2.0-or-later

// Package pffbuild materializes a pfftree.Tree from a lazy
// pffindex.DescriptorsIndex by walking it depth-first, the way a
// mailbox's folder/message hierarchy is reconstructed from the flat
// descriptors index persisted in the container file.
package pffbuild

import (
	"context"
	"fmt"

	"github.com/datawire/dlib/dlog"

	"github.com/mkrautz/go-pff/lib/pffindex"
	"github.com/mkrautz/go-pff/lib/pffio"
	"github.com/mkrautz/go-pff/lib/pffitem"
	"github.com/mkrautz/go-pff/lib/pfftree"
)

// Builder holds the collaborators a single Build call needs: the
// lazy index being walked, the I/O handle threaded through every call
// on it unexamined, and a cache shared across the whole walk.
type Builder struct {
	Index pffindex.DescriptorsIndex
	IO    *pffio.Handle
	Cache *pffindex.NodeCache

	// OnVisit, if set, is called once per index node the walk
	// actually visits (whether leaf or interior), in the order
	// visited; it exists so a long build can report progress.
	OnVisit func(visited int)

	tree     *pfftree.Tree
	orphans  *pfftree.OrphanList
	nvisited int
}

// NewBuilder constructs a Builder over the given collaborators. cache
// may be nil, in which case NewBuilder allocates a default-sized one.
func NewBuilder(index pffindex.DescriptorsIndex, io *pffio.Handle, cache *pffindex.NodeCache) *Builder {
	if cache == nil {
		cache = pffindex.NewNodeCache(pffindex.DefaultCacheSize)
	}
	return &Builder{Index: index, IO: io, Cache: cache}
}

// Build walks b.Index depth-first and materializes tree, appending
// any unreachable descriptors to orphans. tree MUST be freshly
// constructed (NewTree) with no root folder installed yet; orphans
// MAY already hold entries from a previous build, in which case a
// failure here leaves them untouched (the caller owns orphans and
// must clear it for a clean retry, per the propagation policy this
// package follows).
//
// On success, tree.RootFolder() returns the root-folder subtree, or
// nil if the index contained no self-parented descriptor.
//
// On failure, tree is left with whatever subset of the walk completed
// before the error -- in particular a double root-folder failure
// leaves the first-installed root folder in place -- since §7 of the
// upstream error-handling design makes no rollback guarantee about
// orphan-list side effects, and this package extends the same
// tolerance to the tree itself rather than attempting to undo a
// structure Go's garbage collector will reclaim unreachable pieces of
// anyway.
func (b *Builder) Build(ctx context.Context, tree *pfftree.Tree, orphans *pfftree.OrphanList) error {
	b.tree = tree
	b.orphans = orphans
	return b.visit(ctx, b.Index.Root(), 0)
}

// visit implements the index-traversal half of the algorithm: depth
// bounded, tolerant of one kind of failure (a failed
// NumberOfSubNodes call, the "degraded traversal" rule), and silent
// on deleted nodes.
func (b *Builder) visit(ctx context.Context, indexNode pffindex.NodeRef, depth int) error {
	if depth > pfftree.MaxDepth {
		return fmt.Errorf("walk descriptors index: %w", pfftree.ErrOutOfBounds)
	}

	b.nvisited++
	if b.OnVisit != nil {
		b.OnVisit(b.nvisited)
	}

	count, err := b.Index.NumberOfSubNodes(ctx, indexNode, b.IO, b.Cache)
	if err != nil {
		tolerated := &pffindex.NumberOfSubNodesError{Node: indexNode, Err: err}
		ctx := dlog.WithField(ctx, "pffinspect.build.step", "walk")
		dlog.Debugf(ctx, "pffbuild: skipping corrupt subtree at depth %d: %v", depth, tolerated)
		return nil
	}

	if b.Index.IsDeleted(indexNode) {
		return nil
	}

	if b.Index.IsLeaf(ctx, indexNode, b.IO, b.Cache) {
		return b.processLeaf(ctx, indexNode, depth)
	}

	for i := 0; i < count; i++ {
		if err := b.visit(ctx, b.Index.SubNodeAt(ctx, indexNode, b.IO, b.Cache, i), depth+1); err != nil {
			return err
		}
	}
	return nil
}

// processLeaf implements §4.5's process_leaf: build a descriptor from
// the leaf's IndexValue and either install it as the root folder,
// attach it under its already-materialized parent, read-ahead for an
// unmaterialized parent, or fall back to the orphan list.
func (b *Builder) processLeaf(ctx context.Context, indexNode pffindex.NodeRef, depth int) error {
	v := b.Index.ReadValue(ctx, indexNode, b.IO, b.Cache)
	if v == nil {
		return fmt.Errorf("read leaf value: %w", pfftree.ErrMissing)
	}
	if v.Identifier > pffindex.MaxIdentifier {
		return fmt.Errorf("leaf identifier %d: %w", v.Identifier, pfftree.ErrOutOfBounds)
	}

	// Copy the scalars we need before making any further call that
	// may touch (and evict from) the shared cache; v itself must
	// not be dereferenced again after this point.
	id := uint32(v.Identifier)
	pid := v.ParentIdentifier
	dataID := v.DataIdentifier
	localDescID := v.LocalDescriptorsIdentifier

	desc := pffitem.New(id, dataID, localDescID, false)

	if id == pid {
		node := pfftree.NewNode(desc)
		if err := b.tree.SetRootFolder(node); err != nil {
			return err
		}
		return nil
	}

	parent, found := pfftree.FindByIdentifier(b.tree.Root(), pid, 0)
	if !found {
		if hit, parentIndexNode := b.Index.GetLeafByIdentifier(ctx, pid, b.IO, b.Cache); hit {
			if err := b.visit(ctx, parentIndexNode, depth+1); err != nil {
				return err
			}
			parent, found = pfftree.FindByIdentifier(b.tree.Root(), pid, 0)
		}
	}

	if !found {
		node := pfftree.NewNode(desc)
		b.orphans.Append(node)
		return nil
	}

	node := pfftree.NewNode(desc)
	if err := parent.InsertChildUnique(node); err != nil {
		ctx := dlog.WithField(ctx, "pffinspect.build.leaf", id)
		dlog.Debugf(ctx, "pffbuild: dropping duplicate descriptor under parent %d", pid)
	}
	return nil
}
