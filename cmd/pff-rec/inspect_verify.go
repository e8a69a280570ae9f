// SPDX-License-Identifier: GPL-2.0-or-later

package main

import (
	"fmt"

	"github.com/datawire/ocibuild/pkg/cliutil"
	"github.com/spf13/cobra"

	"github.com/mkrautz/go-pff/lib/pffbuild"
	"github.com/mkrautz/go-pff/lib/pffindex"
	"github.com/mkrautz/go-pff/lib/pfftree"
)

func init() {
	inspectors = append(inspectors, subcommand{
		Command: cobra.Command{
			Use:   "verify",
			Short: "Reconstruct the item tree and re-check every invariant",
			Args:  cliutil.WrapPositionalArgs(cobra.NoArgs),
		},
		RunE: func(idx *pffindex.FixtureIndex, cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			tree := pfftree.NewTree()
			var orphans pfftree.OrphanList

			b := pffbuild.NewBuilder(idx, nil, nil)
			if err := b.Build(ctx, tree, &orphans); err != nil {
				return fmt.Errorf("build tree: %w", err)
			}

			if err := tree.Verify(); err != nil {
				return fmt.Errorf("tree failed verification:\n%w", err)
			}
			fmt.Println("ok")
			return nil
		},
	})
}
