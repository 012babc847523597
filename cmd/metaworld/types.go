package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sudhirerahul/meta-creation-agents/transport"
)

func newTypesCmd(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "types",
		Short: "List the types registered on a remote host",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if g.remote == "" {
				return fmt.Errorf("--remote is required")
			}
			client, err := transport.Dial(g.remote)
			if err != nil {
				return err
			}
			defer client.Close()

			ctx, cancel := context.WithTimeout(cmd.Context(), g.timeout)
			defer cancel()

			types, err := client.Types(ctx)
			if err != nil {
				return err
			}
			for _, t := range types {
				fmt.Fprintln(cmd.OutOrStdout(), t)
			}
			return nil
		},
	}
}
