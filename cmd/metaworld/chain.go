package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	metacreation "github.com/sudhirerahul/meta-creation-agents"
	"github.com/sudhirerahul/meta-creation-agents/core"
)

type chainStep struct {
	to   string
	hint string
}

func newChainCmd(v *viper.Viper, g *globalFlags) *cobra.Command {
	var depth int

	cmd := &cobra.Command{
		Use:   "chain",
		Short: "Build a chain of Creators, each created by the previous one",
		Long: `Creator creates creator2, creator2 creates creator3, and so on up to
--depth Creators; the last one creates a plain agent.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if depth < 1 {
				return fmt.Errorf("depth must be at least 1")
			}
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

			out := cmd.OutOrStdout()
			for _, step := range chainSteps(depth) {
				fmt.Fprintf(out, "→ %s creates %s\n", step.to, step.hint)
				reply, err := sender.Send(ctx, core.NewAddress(step.to), core.NewMessage(step.hint))
				if err != nil {
					return fmt.Errorf("%s: %w", step.to, err)
				}
				fmt.Fprintf(out, "%s\n\n", reply.Content)
			}

			if mc != nil {
				edges, err := mc.Lineage().Ancestry(chainSteps(depth)[depth].hintName())
				if err == nil {
					fmt.Fprintln(out, "Lineage:")
					for _, e := range edges {
						fmt.Fprintf(out, "  %s ← %s (%s, depth %d)\n", e.Child, e.Parent, e.Kind, e.Depth)
					}
				}
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&depth, "depth", 2, "number of Creators to create")
	return cmd
}

// chainSteps returns depth meta-creation steps followed by a plain one.
func chainSteps(depth int) []chainStep {
	steps := make([]chainStep, 0, depth+1)
	from := metacreation.RootType
	for i := 2; i < depth+2; i++ {
		next := fmt.Sprintf("creator%d", i)
		steps = append(steps, chainStep{to: from, hint: next + ".yaml"})
		from = next
	}
	return append(steps, chainStep{to: from, hint: "agent_" + from + "_final.yaml"})
}

func (s chainStep) hintName() string {
	return s.hint[:len(s.hint)-len(".yaml")]
}
