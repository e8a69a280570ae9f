// SPDX-License-Identifier: GPL-2.0-or-later

package main

import (
	"context"
	"fmt"
	"os"

	"github.com/datawire/dlib/dgroup"
	"github.com/datawire/dlib/dlog"
	"github.com/datawire/ocibuild/pkg/cliutil"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/mkrautz/go-pff/lib/pffindex"
)

type logLevelFlag struct {
	logrus.Level
}

func (lvl *logLevelFlag) Type() string { return "loglevel" }
func (lvl *logLevelFlag) Set(str string) error {
	var err error
	lvl.Level, err = logrus.ParseLevel(str)
	return err
}

var _ pflag.Value = (*logLevelFlag)(nil)

// subcommand bundles a cobra.Command with a RunE that has already
// received a loaded descriptors-index fixture, the way btrfs-rec's
// subcommands receive an already-opened *btrfs.FS.
type subcommand struct {
	cobra.Command
	RunE func(idx *pffindex.FixtureIndex, cmd *cobra.Command, args []string) error
}

var inspectors []subcommand

func main() {
	logLevel := logLevelFlag{Level: logrus.InfoLevel}
	var indexFlag string

	argparser := &cobra.Command{
		Use:   "pff-rec {[flags]|SUBCOMMAND}",
		Short: "Reconstruct and inspect a PFF mailbox item tree",

		Args: cliutil.WrapPositionalArgs(cliutil.OnlySubcommands),
		RunE: cliutil.RunSubcommands,

		SilenceErrors: true,
		SilenceUsage:  true,

		CompletionOptions: cobra.CompletionOptions{ //nolint:exhaustivestruct
			DisableDefaultCmd: true,
		},
	}
	argparser.SetFlagErrorFunc(cliutil.FlagErrorFunc)
	argparser.SetHelpTemplate(cliutil.HelpTemplate)
	argparser.PersistentFlags().Var(&logLevel, "verbosity", "set the verbosity")
	argparser.PersistentFlags().StringVar(&indexFlag, "index", "", "load the descriptors index from `fixture.json`")
	if err := argparser.MarkPersistentFlagFilename("index"); err != nil {
		panic(err)
	}
	if err := argparser.MarkPersistentFlagRequired("index"); err != nil {
		panic(err)
	}

	argparserInspect := &cobra.Command{
		Use:   "inspect {[flags]|SUBCOMMAND}",
		Short: "Inspect (but don't modify) a reconstructed item tree",

		Args: cliutil.WrapPositionalArgs(cliutil.OnlySubcommands),
		RunE: cliutil.RunSubcommands,
	}
	argparser.AddCommand(argparserInspect)

	for _, child := range inspectors {
		cmd := child.Command
		runE := child.RunE
		cmd.RunE = func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			logger := logrus.New()
			logger.SetLevel(logLevel.Level)
			ctx = dlog.WithLogger(ctx, dlog.WrapLogrus(logger))

			grp := dgroup.NewGroup(ctx, dgroup.GroupConfig{
				EnableSignalHandling: true,
			})
			grp.Go("main", func(ctx context.Context) error {
				idx, err := loadFixture(indexFlag)
				if err != nil {
					return err
				}
				cmd.SetContext(ctx)
				return runE(idx, cmd, args)
			})
			return grp.Wait()
		}
		argparserInspect.AddCommand(&cmd)
	}

	if err := argparser.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "%v: error: %v\n", argparser.CommandPath(), err)
		os.Exit(1)
	}
}
