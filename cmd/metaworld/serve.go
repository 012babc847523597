package main

import (
	"fmt"
	"net"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func newServeCmd(v *viper.Viper, g *globalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve a local world over gRPC",
		Long: `Start a runtime host. Remote clients can send hints to any registered
type, register specifications and list types.

Press Ctrl+C to gracefully shutdown.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := loadApp(v, g)
			if err != nil {
				return err
			}
			// The host runs until interrupted; --timeout does not apply.
			ctx, cancel := signalContext(0)
			defer cancel()

			mc, err := a.newWorld(ctx)
			if err != nil {
				return err
			}
			defer func() {
				if err := mc.Stop(cmd.Context()); err != nil {
					a.logger.Warn("Shutdown reported errors", "error", err)
				}
			}()

			lis, err := net.Listen("tcp", a.cfg.ListenAddr)
			if err != nil {
				return fmt.Errorf("listen %s: %w", a.cfg.ListenAddr, err)
			}

			host := mc.Host()
			go func() {
				<-ctx.Done()
				host.Stop()
			}()

			fmt.Fprintf(cmd.OutOrStdout(), "metaworld host listening on %s\n", lis.Addr())
			return host.Serve(lis)
		},
	}

	cmd.Flags().String("listen", "", "listen address (default localhost:50052)")
	_ = v.BindPFlag("listen_addr", cmd.Flags().Lookup("listen"))
	return cmd
}
