// SPDX-License-Identifier: GPL-2.0-or-later

package main

import (
	"bufio"
	"fmt"
	"io"
	"os"

	"git.lukeshu.com/go/lowmemjson"
	"github.com/datawire/ocibuild/pkg/cliutil"
	"github.com/davecgh/go-spew/spew"
	"github.com/spf13/cobra"

	"github.com/mkrautz/go-pff/lib/pffbuild"
	"github.com/mkrautz/go-pff/lib/pffindex"
	"github.com/mkrautz/go-pff/lib/pfftree"
)

const (
	tS = "    "
	tl = "│   "
	tT = "├── "
	tL = "└── "
)

// dumpNode is the lowmemjson-encodable projection of a pfftree.Node
// used by dump-tree --json; it exists because Node itself keeps its
// child list behind an RBTree rather than a plain slice.
type dumpNode struct {
	DescriptorID uint32     `json:"descriptor_id"`
	DataID       uint64     `json:"data_id"`
	Recovered    bool       `json:"recovered"`
	Children     []dumpNode `json:"children"`
}

func toDumpNode(n *pfftree.Node) dumpNode {
	d := dumpNode{
		DescriptorID: n.Descriptor.DescriptorID,
		DataID:       n.Descriptor.DataID,
		Recovered:    n.Descriptor.Recovered,
	}
	for i := 0; i < n.NumberOfChildren(); i++ {
		d.Children = append(d.Children, toDumpNode(n.ChildAt(i)))
	}
	return d
}

func init() {
	var asJSON bool
	var asSpew bool
	cmd := subcommand{
		Command: cobra.Command{
			Use:   "dump-tree",
			Short: "Reconstruct the item tree and print it",
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

			if asJSON {
				out := bufio.NewWriter(os.Stdout)
				defer out.Flush()
				return lowmemjson.Encode(out, toDumpNode(tree.Root()))
			}

			if asSpew {
				cfg := spew.NewDefaultConfig()
				cfg.DisablePointerAddresses = true
				cfg.Fdump(os.Stdout, toDumpNode(tree.Root()))
				for i := 0; i < orphans.Len(); i++ {
					cfg.Fdump(os.Stdout, toDumpNode(orphans.At(i)))
				}
				return nil
			}

			out := bufio.NewWriter(os.Stdout)
			printNode(out, "", true, tree.Root())
			for i := 0; i < orphans.Len(); i++ {
				printNode(out, "", i == orphans.Len()-1, orphans.At(i))
			}
			return out.Flush()
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "emit the tree as JSON instead of as text")
	cmd.Flags().BoolVar(&asSpew, "spew", false, "emit the tree via go-spew instead of as text (full struct dump, for debugging)")
	inspectors = append(inspectors, cmd)
}

func printNode(out io.Writer, prefix string, isLast bool, n *pfftree.Node) {
	first, rest := tT, tl
	if isLast {
		first, rest = tL, tS
	}
	_, _ = io.WriteString(out, prefix+first)
	fmt.Fprintf(out, "descriptor(id=%d data=%d recovered=%v)\n",
		n.Descriptor.DescriptorID, n.Descriptor.DataID, n.Descriptor.Recovered)

	childPrefix := prefix + rest
	for i := 0; i < n.NumberOfChildren(); i++ {
		printNode(out, childPrefix, i == n.NumberOfChildren()-1, n.ChildAt(i))
	}
}
