package config

import (
	"context"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sudhirerahul/meta-creation-agents/logging"
)

func noEnvFiles(o *Options) { o.EnvFiles = nil }

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("METAWORLD_PROVIDER", "")
	t.Setenv("METAWORLD_MAX_CHAIN_DEPTH", "")

	cfg, err := Load(noEnvFiles)
	require.NoError(t, err)
	assert.Equal(t, ProviderOpenAI, cfg.Provider)
	assert.Equal(t, 8, cfg.MaxChainDepth)
	assert.Equal(t, 32, cfg.MaxSpawnsPerRequest)
	assert.Equal(t, "localhost:50052", cfg.ListenAddr)
	assert.Equal(t, "slog", cfg.Log.Backend)
}

func TestLoad_FileAndEnvironment(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "metaworld.yaml")
	require.NoError(t, os.WriteFile(file, []byte(`
provider: gemini
max_chain_depth: 3
artifact_dir: /tmp/out
log:
  backend: zap
  level: warn
`), 0o600))

	t.Setenv("METAWORLD_LOG_LEVEL", "debug")
	t.Setenv("METAWORLD_MAX_SPAWNS_PER_REQUEST", "5")

	cfg, err := Load(noEnvFiles, func(o *Options) { o.ConfigFile = file })
	require.NoError(t, err)
	assert.Equal(t, ProviderGemini, cfg.Provider)
	assert.Equal(t, 3, cfg.MaxChainDepth)
	assert.Equal(t, 5, cfg.MaxSpawnsPerRequest)
	assert.Equal(t, "/tmp/out", cfg.ArtifactDir)
	assert.Equal(t, "zap", cfg.Log.Backend)
	assert.Equal(t, "debug", cfg.Log.Level, "environment wins over the file")
}

func TestLoad_DotEnvOverrides(t *testing.T) {
	t.Setenv("METAWORLD_MODEL", "from-environment")
	t.Setenv("OPENAI_API_KEY", "")

	envFile := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(envFile, []byte("METAWORLD_MODEL=from-dotenv\nOPENAI_API_KEY=sk-test\n"), 0o600))

	cfg, err := Load(func(o *Options) { o.EnvFiles = []string{envFile, filepath.Join(t.TempDir(), "missing.env")} })
	require.NoError(t, err)
	assert.Equal(t, "from-dotenv", cfg.Model)
	assert.Equal(t, "sk-test", cfg.OpenAIAPIKey)
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	_, err := Load(noEnvFiles, func(o *Options) { o.ConfigFile = filepath.Join(t.TempDir(), "nope.yaml") })
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	valid := Config{Provider: ProviderOffline, Temperature: 1, Log: LogConfig{Level: "info", Format: "text", Backend: "slog"}}
	require.NoError(t, valid.Validate())

	tests := map[string]func(c *Config){
		"provider":    func(c *Config) { c.Provider = "llama" },
		"level":       func(c *Config) { c.Log.Level = "loud" },
		"format":      func(c *Config) { c.Log.Format = "xml" },
		"backend":     func(c *Config) { c.Log.Backend = "logrus" },
		"temperature": func(c *Config) { c.Temperature = 3 },
		"limits":      func(c *Config) { c.MaxChainDepth = -1 },
		"max tokens":  func(c *Config) { c.MaxTokens = math.MaxInt32 + 1 },
		"neg tokens":  func(c *Config) { c.MaxTokens = -1 },
	}
	for name, mutate := range tests {
		t.Run(name, func(t *testing.T) {
			c := valid
			mutate(&c)
			assert.Error(t, c.Validate())
		})
	}
}

func TestBuildOffline(t *testing.T) {
	cfg := Config{Provider: ProviderOffline, Log: LogConfig{Level: "info", Format: "json", Backend: "slog"}}

	m, err := cfg.BuildModel(context.Background())
	require.NoError(t, err)
	assert.Equal(t, ProviderOffline, m.Info().Provider)

	synth := cfg.BuildSynthesizer(m, logging.NoOpLogger{})
	out, err := synth.Generate(context.Background(), "kind: Agent", "ignored", 1)
	require.NoError(t, err)
	assert.Equal(t, "kind: Agent", out)

	logger, err := cfg.BuildLogger()
	require.NoError(t, err)
	assert.IsType(t, &logging.StructuredLogger{}, logger)
}

func TestBuildModelProviders(t *testing.T) {
	for _, provider := range []string{ProviderOpenAI, ProviderAnthropic} {
		cfg := Config{Provider: provider, Model: "some-model", OpenAIAPIKey: "k", AnthropicAPIKey: "k"}
		m, err := cfg.BuildModel(context.Background())
		require.NoError(t, err, provider)
		assert.Equal(t, "some-model", m.Info().Name)
	}

	cfg := Config{Provider: "nope"}
	_, err := cfg.BuildModel(context.Background())
	assert.Error(t, err)

	cfg = Config{Provider: ProviderGemini, GeminiAPIKey: "k", MaxTokens: math.MaxInt32 + 1}
	_, err = cfg.BuildModel(context.Background())
	assert.ErrorContains(t, err, "max_tokens")
}

func TestBuildLoggerZap(t *testing.T) {
	cfg := Config{Log: LogConfig{Level: "debug", Format: "json", Backend: "zap"}}
	logger, err := cfg.BuildLogger()
	require.NoError(t, err)
	assert.IsType(t, &logging.ZapAdapter{}, logger)
}
