// Command metaworld runs a world of Creators: agents that create agents and,
// given a hint starting with "creator", new Creators.
//
// Usage:
//
//	metaworld create agent1.yaml creator_analytical.yaml
//	metaworld chain
//	metaworld serve --listen localhost:50052
//	metaworld create --remote localhost:50052 creator2.yaml
//	metaworld types --remote localhost:50052
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	metacreation "github.com/sudhirerahul/meta-creation-agents"
	"github.com/sudhirerahul/meta-creation-agents/artifact"
	"github.com/sudhirerahul/meta-creation-agents/config"
	"github.com/sudhirerahul/meta-creation-agents/core"
	"github.com/sudhirerahul/meta-creation-agents/engine"
	"github.com/sudhirerahul/meta-creation-agents/logging"
	"github.com/sudhirerahul/meta-creation-agents/transport"
)

type globalFlags struct {
	configFile string
	remote     string
	timeout    time.Duration
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	v := viper.New()
	g := &globalFlags{}

	rootCmd := &cobra.Command{
		Use:           "metaworld",
		Short:         "Run Creators that create agents and other Creators",
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&g.configFile, "config", "", "config file (default ./metaworld.yaml if present)")
	pf.StringVar(&g.remote, "remote", "", "address of a metaworld host; runs against it instead of a local runtime")
	pf.DurationVar(&g.timeout, "timeout", 10*time.Minute, "overall timeout")
	pf.String("provider", "", "model provider: openai, anthropic, gemini or offline")
	pf.String("model", "", "model name")
	pf.String("artifact-dir", "", "directory receiving specifications and results")
	pf.String("template-dir", "", "directory with agent.yaml / creator.yaml overrides")
	pf.Int("max-chain-depth", 0, "maximum nesting of Creators")
	pf.String("log-level", "", "log level: debug, info, warn or error")
	pf.String("log-backend", "", "log backend: slog or zap")

	for key, flag := range map[string]string{
		"provider":        "provider",
		"model":           "model",
		"artifact_dir":    "artifact-dir",
		"template_dir":    "template-dir",
		"max_chain_depth": "max-chain-depth",
		"log.level":       "log-level",
		"log.backend":     "log-backend",
	} {
		_ = v.BindPFlag(key, pf.Lookup(flag))
	}

	rootCmd.AddCommand(
		newCreateCmd(v, g),
		newChainCmd(v, g),
		newServeCmd(v, g),
		newTypesCmd(g),
	)
	return rootCmd
}

// app bundles what every command needs.
type app struct {
	cfg    *config.Config
	logger logging.Logger
}

func loadApp(v *viper.Viper, g *globalFlags) (*app, error) {
	cfg, err := config.Load(func(o *config.Options) {
		o.ConfigFile = g.configFile
		o.Viper = v
	})
	if err != nil {
		return nil, err
	}
	logger, err := cfg.BuildLogger()
	if err != nil {
		return nil, err
	}
	return &app{cfg: cfg, logger: logger}, nil
}

func (a *app) artifactStore() (core.ArtifactStore, error) {
	if a.cfg.ArtifactDir == "" {
		return artifact.NewInMemoryStore(), nil
	}
	return artifact.NewFileStore(a.cfg.ArtifactDir)
}

// newWorld builds and starts a local world from the configuration.
func (a *app) newWorld(ctx context.Context) (*metacreation.MetaCreation, error) {
	m, err := a.cfg.BuildModel(ctx)
	if err != nil {
		return nil, err
	}
	store, err := a.artifactStore()
	if err != nil {
		return nil, err
	}

	mc, err := metacreation.New(func(o *metacreation.Options) {
		o.EngineConfig = engine.Config{
			MaxSpawnsPerRequest:   a.cfg.MaxSpawnsPerRequest,
			MaxConcurrentRequests: a.cfg.MaxConcurrentRequests,
		}
		o.Model = m
		o.Synthesizer = a.cfg.BuildSynthesizer(m, a.logger)
		o.TemplateDir = a.cfg.TemplateDir
		o.WatchTemplates = a.cfg.WatchTemplates
		o.MaxChainDepth = a.cfg.MaxChainDepth
		o.ArtifactStore = store
		o.Logger = a.logger
	})
	if err != nil {
		return nil, err
	}
	if err := mc.Start(ctx); err != nil {
		return nil, err
	}
	return mc, nil
}

// sender returns a remote client or a local world, plus a cleanup function.
func (a *app) sender(ctx context.Context, g *globalFlags) (core.Sender, *metacreation.MetaCreation, func(), error) {
	if g.remote != "" {
		client, err := transport.Dial(g.remote)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("dial %s: %w", g.remote, err)
		}
		return client, nil, func() { _ = client.Close() }, nil
	}

	mc, err := a.newWorld(ctx)
	if err != nil {
		return nil, nil, nil, err
	}
	return mc.Engine(), mc, func() {
		if err := mc.Stop(context.Background()); err != nil {
			a.logger.Warn("Shutdown reported errors", "error", err)
		}
	}, nil
}

func signalContext(timeout time.Duration) (context.Context, context.CancelFunc) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	if timeout <= 0 {
		return ctx, stop
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	return ctx, func() { cancel(); stop() }
}
