package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	metacreation "github.com/sudhirerahul/meta-creation-agents"
	"github.com/sudhirerahul/meta-creation-agents/core"
	"github.com/sudhirerahul/meta-creation-agents/runner"
)

func newCreateCmd(v *viper.Viper, g *globalFlags) *cobra.Command {
	var concurrency int

	cmd := &cobra.Command{
		Use:   "create <hint>...",
		Short: "Ask the root Creator to create one agent per hint",
		Long: `Send each hint to the root Creator.

A hint whose base name starts with "creator" and ends with the artifact
extension (creator_analytical.yaml) creates a new Creator, which then creates
an agent of its own. Any other hint (agent1.yaml) creates a plain agent that
is asked for an idea.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp(v, g)
			if err != nil {
				return err
			}
			ctx, cancel := signalContext(g.timeout)
			defer cancel()

			sender, mc, cleanup, err := a.sender(ctx, g)
			if err != nil {
				return err
			}
			defer cleanup()

			var store core.ArtifactStore
			if mc != nil {
				store = mc.Artifacts()
			} else if store, err = a.artifactStore(); err != nil {
				return err
			}
			r := runner.New(sender, core.NewAddress(metacreation.RootType), func(o *runner.Options) {
				o.Concurrency = concurrency
				o.ArtifactStore = store
				o.Logger = a.logger
			})

			results, err := r.RunAll(ctx, args)
			out := cmd.OutOrStdout()
			for _, res := range results {
				if !res.OK() {
					fmt.Fprintf(out, "✗ %s: %v\n\n", res.Hint, res.Err)
					continue
				}
				fmt.Fprintf(out, "✓ %s (%s)\n%s\n\n", res.Hint, res.Duration.Round(time.Millisecond), res.Reply)
			}
			return err
		},
	}

	cmd.Flags().IntVar(&concurrency, "concurrency", 1, "hints processed at once")
	return cmd
}
