// SPDX-License-Identifier: GPL-2.0-or-later

package main

import (
	"context"
	"fmt"
	"os"

	"github.com/datawire/dlib/dgroup"
	"github.com/datawire/dlib/dlog"
	"github.com/sirupsen/logrus"
	"github.com/spf13/pflag"

	"github.com/mkrautz/go-pff/lib/pffbuild"
	"github.com/mkrautz/go-pff/lib/pfftree"
)

func main() {
	ctx := context.Background()
	logger := logrus.New()
	ctx = dlog.WithLogger(ctx, dlog.WrapLogrus(logger))

	grp := dgroup.NewGroup(ctx, dgroup.GroupConfig{
		EnableSignalHandling: true,
	})
	grp.Go("main", func(ctx context.Context) error {
		return Main(ctx, os.Args[0], os.Args[1:])
	})
	if err := grp.Wait(); err != nil {
		fmt.Fprintf(os.Stderr, "%v: error: %v\n", os.Args[0], err)
		os.Exit(1)
	}
}

func Main(ctx context.Context, progName string, args []string) error {
	fset := pflag.NewFlagSet(progName, pflag.ContinueOnError)
	indexFlag := fset.String("index", "", "load the descriptors index from `fixture.json`")
	if err := fset.Parse(args); err != nil {
		return err
	}
	if *indexFlag == "" {
		return fmt.Errorf("--index is required")
	}
	if fset.NArg() != 1 {
		return fmt.Errorf("usage: %s --index fixture.json MOUNTPOINT", progName)
	}
	mountpoint := fset.Arg(0)

	idx, err := loadFixture(*indexFlag)
	if err != nil {
		return err
	}

	tree := pfftree.NewTree()
	var orphans pfftree.OrphanList
	b := pffbuild.NewBuilder(idx, nil, nil)
	if err := b.Build(ctx, tree, &orphans); err != nil {
		return fmt.Errorf("build tree: %w", err)
	}
	if orphans.Len() > 0 {
		dlog.Infof(ctx, "%d descriptors could not be attached to the tree and are not visible in the mount", orphans.Len())
	}

	return MountRO(ctx, tree, mountpoint)
}
