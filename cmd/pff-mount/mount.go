// SPDX-License-Identifier: GPL-2.0-or-later

// This file is the guts of pff-mount: it exposes a reconstructed item
// tree as a read-only FUSE filesystem, one directory per ItemTreeNode
// named by its descriptor identifier. Item content (folder/message
// bodies) is out of scope of the tree-reconstruction core, so every
// node is presented as a directory holding no files, only the
// directories of its child nodes; only the hierarchy itself is made
// visible.
package main

import (
	"context"
	"fmt"
	"strconv"
	"sync/atomic"
	"syscall"

	"git.lukeshu.com/go/typedsync"
	"github.com/datawire/dlib/dcontext"
	"github.com/datawire/dlib/dgroup"
	"github.com/datawire/dlib/dlog"
	"github.com/jacobsa/fuse"
	"github.com/jacobsa/fuse/fuseops"
	"github.com/jacobsa/fuse/fuseutil"

	"github.com/mkrautz/go-pff/lib/pfftree"
)

func MountRO(ctx context.Context, tree *pfftree.Tree, mountpoint string) error {
	root := tree.RootFolder()
	if root == nil {
		root = tree.Root()
	}

	fs := &itemTreeFS{
		tree: tree,
		root: root,
	}
	return fs.Run(ctx, mountpoint)
}

func fuseMount(ctx context.Context, mountpoint string, server fuse.Server, cfg *fuse.MountConfig) error {
	grp := dgroup.NewGroup(ctx, dgroup.GroupConfig{
		ShutdownOnNonError: true,
	})
	mounted := uint32(1)
	grp.Go("unmount", func(ctx context.Context) error {
		<-ctx.Done()
		var err error
		var gotNil bool
		for atomic.LoadUint32(&mounted) != 0 {
			if _err := fuse.Unmount(mountpoint); _err == nil {
				gotNil = true
			} else if !gotNil {
				err = _err
			}
		}
		if gotNil {
			return nil
		}
		return err
	})
	grp.Go("mount", func(ctx context.Context) error {
		defer atomic.StoreUint32(&mounted, 0)

		cfg.OpContext = ctx
		cfg.ErrorLogger = dlog.StdLogger(ctx, dlog.LogLevelError)
		cfg.DebugLogger = dlog.StdLogger(ctx, dlog.LogLevelDebug)

		mountHandle, err := fuse.Mount(mountpoint, server, cfg)
		if err != nil {
			return err
		}
		dlog.Infof(ctx, "mounted %q", mountpoint)
		return mountHandle.Join(dcontext.HardContext(ctx))
	})
	return grp.Wait()
}

type dirState struct {
	node *pfftree.Node
}

// itemTreeFS is a read-only jacobsa/fuse filesystem over a single
// reconstructed pfftree.Tree. Every ItemTreeNode below the mount root
// is an InodeID equal to its DescriptorID. The mount root itself is
// fuseops.RootInodeID and shows the root folder, or the synthetic root
// when the tree has no root folder.
type itemTreeFS struct {
	fuseutil.NotImplementedFileSystem

	tree *pfftree.Tree
	root *pfftree.Node

	lastHandle uint64
	dirHandles typedsync.Map[fuseops.HandleID, *dirState]
}

func (fs *itemTreeFS) Run(ctx context.Context, mountpoint string) error {
	cfg := &fuse.MountConfig{
		FSName:   "go-pff",
		Subtype:  "pff",
		ReadOnly: true,
	}
	return fuseMount(ctx, mountpoint, fuseutil.NewFileSystemServer(fs), cfg)
}

func (fs *itemTreeFS) newHandle() fuseops.HandleID {
	return fuseops.HandleID(atomic.AddUint64(&fs.lastHandle, 1))
}

func (fs *itemTreeFS) nodeByInode(id fuseops.InodeID) (*pfftree.Node, bool) {
	if id == fuseops.RootInodeID {
		return fs.root, true
	}
	return fs.tree.FindByIdentifier(uint32(id))
}

func nodeAttributes(n *pfftree.Node) fuseops.InodeAttributes {
	return fuseops.InodeAttributes{
		Nlink: 1,
		Mode:  0o555 | 0o040000, //nolint:gomnd // directory, read+execute only
	}
}

func (fs *itemTreeFS) StatFS(_ context.Context, op *fuseops.StatFSOp) error {
	op.IoSize = 4096
	op.BlockSize = 4096
	return nil
}

func (fs *itemTreeFS) LookUpInode(_ context.Context, op *fuseops.LookUpInodeOp) error {
	parent, ok := fs.nodeByInode(op.Parent)
	if !ok {
		return syscall.ENOENT
	}
	id, err := strconv.ParseUint(op.Name, 10, 32)
	if err != nil {
		return syscall.ENOENT
	}
	child, ok := pfftree.FindDirectChild(parent, uint32(id))
	if !ok {
		return syscall.ENOENT
	}
	op.Entry = fuseops.ChildInodeEntry{
		Child:      fuseops.InodeID(child.Descriptor.DescriptorID),
		Attributes: nodeAttributes(child),
	}
	return nil
}

func (fs *itemTreeFS) GetInodeAttributes(_ context.Context, op *fuseops.GetInodeAttributesOp) error {
	n, ok := fs.nodeByInode(op.Inode)
	if !ok {
		return syscall.ENOENT
	}
	op.Attributes = nodeAttributes(n)
	return nil
}

func (fs *itemTreeFS) OpenDir(_ context.Context, op *fuseops.OpenDirOp) error {
	n, ok := fs.nodeByInode(op.Inode)
	if !ok {
		return syscall.ENOENT
	}
	handle := fs.newHandle()
	fs.dirHandles.Store(handle, &dirState{node: n})
	op.Handle = handle
	return nil
}

func (fs *itemTreeFS) ReadDir(_ context.Context, op *fuseops.ReadDirOp) error {
	state, ok := fs.dirHandles.Load(op.Handle)
	if !ok {
		return syscall.EBADF
	}
	n := state.node
	origOffset := int(op.Offset)
	for i := origOffset; i < n.NumberOfChildren(); i++ {
		child := n.ChildAt(i)
		written := fuseutil.WriteDirent(op.Dst[op.BytesRead:], fuseutil.Dirent{
			Offset: fuseops.DirOffset(i + 1),
			Inode:  fuseops.InodeID(child.Descriptor.DescriptorID),
			Name:   fmt.Sprintf("%d", child.Descriptor.DescriptorID),
			Type:   fuseutil.DT_Directory,
		})
		if written == 0 {
			break
		}
		op.BytesRead += written
	}
	return nil
}

func (fs *itemTreeFS) ReleaseDirHandle(_ context.Context, op *fuseops.ReleaseDirHandleOp) error {
	_, ok := fs.dirHandles.LoadAndDelete(op.Handle)
	if !ok {
		return syscall.EBADF
	}
	return nil
}

func (*itemTreeFS) Destroy() {}
