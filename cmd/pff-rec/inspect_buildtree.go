// SPDX-License-Identifier: GPL-2.0-or-later

package main

import (
	"fmt"
	"time"

	"github.com/datawire/dlib/dlog"
	"github.com/datawire/ocibuild/pkg/cliutil"
	"github.com/spf13/cobra"

	"github.com/mkrautz/go-pff/lib/pffbuild"
	"github.com/mkrautz/go-pff/lib/pffindex"
	"github.com/mkrautz/go-pff/lib/pfftext"
	"github.com/mkrautz/go-pff/lib/pfftree"
)

// buildProgress is the Stats value ticked into a pfftext.Progress
// while a build-tree run is in flight; String renders a line
// broadly like the ones rebuild-trees logs for a long btrfs rebuild.
type buildProgress struct {
	visited int
	mem     *pfftext.LiveMemUse
}

func (s buildProgress) String() string {
	return fmt.Sprintf("visited %d descriptors (mem: %s)", s.visited, s.mem.String())
}

func init() {
	var showProgress bool
	cmd := subcommand{
		Command: cobra.Command{
			Use:   "build-tree",
			Short: "Reconstruct the item tree and summarize its shape",
			Args:  cliutil.WrapPositionalArgs(cobra.NoArgs),
		},
		RunE: func(idx *pffindex.FixtureIndex, cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			tree := pfftree.NewTree()
			var orphans pfftree.OrphanList

			b := pffbuild.NewBuilder(idx, nil, nil)
			if showProgress {
				var mem pfftext.LiveMemUse
				progress := pfftext.NewProgress[buildProgress](ctx, dlog.LogLevelInfo, pfftext.Tunable(1*time.Second))
				b.OnVisit = func(visited int) {
					progress.Set(buildProgress{visited: visited, mem: &mem})
				}
				defer progress.Done()
			}
			if err := b.Build(ctx, tree, &orphans); err != nil {
				return fmt.Errorf("build tree: %w", err)
			}

			stats := tree.Stats()
			fmt.Printf("nodes: %d\n", stats.NodeCount)
			fmt.Printf("max depth: %d\n", stats.MaxDepth)
			if rf := tree.RootFolder(); rf != nil {
				fmt.Printf("root folder: %d\n", rf.Descriptor.DescriptorID)
			} else {
				fmt.Println("root folder: (none)")
			}
			fmt.Printf("orphans: %d\n", orphans.Len())
			return nil
		},
	}
	cmd.Flags().BoolVar(&showProgress, "progress", false, "log build progress as the descriptors index is walked")
	inspectors = append(inspectors, cmd)
}
