package config

import (
	"context"
	"errors"
	"fmt"
	"math"
	"os"
	"slices"
	"strings"

	anthropicsdk "github.com/anthropics/anthropic-sdk-go"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/sudhirerahul/meta-creation-agents/core"
	"github.com/sudhirerahul/meta-creation-agents/logging"
	"github.com/sudhirerahul/meta-creation-agents/model"
	"github.com/sudhirerahul/meta-creation-agents/model/anthropic"
	"github.com/sudhirerahul/meta-creation-agents/model/gemini"
	"github.com/sudhirerahul/meta-creation-agents/model/openai"
)

// EnvPrefix prefixes every environment variable read by Load.
const EnvPrefix = "METAWORLD"

// Supported providers.
const (
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
	ProviderGemini    = "gemini"
	// ProviderOffline needs no network: synthesis returns the template
	// unchanged and agents answer with canned text.
	ProviderOffline = "offline"
)

var providers = []string{ProviderOpenAI, ProviderAnthropic, ProviderGemini, ProviderOffline}

// LogConfig selects the logging backend.
type LogConfig struct {
	Level   string `mapstructure:"level"`
	Format  string `mapstructure:"format"`
	Backend string `mapstructure:"backend"`
}

// Config is the process configuration.
type Config struct {
	Provider    string  `mapstructure:"provider"`
	Model       string  `mapstructure:"model"`
	Temperature float64 `mapstructure:"temperature"`
	MaxTokens   int64   `mapstructure:"max_tokens"`
	BaseURL     string  `mapstructure:"base_url"`

	OpenAIAPIKey    string `mapstructure:"openai_api_key"`
	AnthropicAPIKey string `mapstructure:"anthropic_api_key"`
	GeminiAPIKey    string `mapstructure:"gemini_api_key"`

	MaxChainDepth         int `mapstructure:"max_chain_depth"`
	MaxSpawnsPerRequest   int `mapstructure:"max_spawns_per_request"`
	MaxConcurrentRequests int `mapstructure:"max_concurrent_requests"`

	ArtifactDir    string `mapstructure:"artifact_dir"`
	TemplateDir    string `mapstructure:"template_dir"`
	WatchTemplates bool   `mapstructure:"watch_templates"`
	ListenAddr     string `mapstructure:"listen_addr"`

	Log LogConfig `mapstructure:"log"`
}

// Options control Load.
type Options struct {
	// ConfigFile is an explicit YAML file. When empty, metaworld.yaml is
	// looked up in the working directory and is optional.
	ConfigFile string
	// EnvFiles are loaded with override semantics before the environment is
	// read. Missing files are skipped.
	EnvFiles []string
	// Viper lets callers bind flags before loading. A fresh instance is used
	// when nil.
	Viper *viper.Viper
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("provider", ProviderOpenAI)
	v.SetDefault("model", "")
	v.SetDefault("temperature", 0.7)
	v.SetDefault("max_tokens", 4096)
	v.SetDefault("base_url", "")
	v.SetDefault("openai_api_key", "")
	v.SetDefault("anthropic_api_key", "")
	v.SetDefault("gemini_api_key", "")
	v.SetDefault("max_chain_depth", 8)
	v.SetDefault("max_spawns_per_request", 32)
	v.SetDefault("max_concurrent_requests", 0)
	v.SetDefault("artifact_dir", "")
	v.SetDefault("template_dir", "")
	v.SetDefault("watch_templates", false)
	v.SetDefault("listen_addr", "localhost:50052")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
	v.SetDefault("log.backend", "slog")
}

// Load reads the configuration and validates it.
func Load(optFns ...func(o *Options)) (*Config, error) {
	opts := Options{EnvFiles: []string{".env"}}
	for _, fn := range optFns {
		fn(&opts)
	}

	for _, f := range opts.EnvFiles {
		if _, err := os.Stat(f); err != nil {
			continue
		}
		if err := godotenv.Overload(f); err != nil {
			return nil, fmt.Errorf("load %s: %w", f, err)
		}
	}

	v := opts.Viper
	if v == nil {
		v = viper.New()
	}
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for key, env := range map[string]string{
		"openai_api_key":    "OPENAI_API_KEY",
		"anthropic_api_key": "ANTHROPIC_API_KEY",
		"gemini_api_key":    "GEMINI_API_KEY",
	} {
		if err := v.BindEnv(key, EnvPrefix+"_"+strings.ToUpper(key), env); err != nil {
			return nil, err
		}
	}

	if opts.ConfigFile != "" {
		v.SetConfigFile(opts.ConfigFile)
	} else {
		v.SetConfigName("metaworld")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if opts.ConfigFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects unknown providers, levels and backends, negative limits
// and a token budget that does not fit every provider.
func (c *Config) Validate() error {
	var errs []error
	if !slices.Contains(providers, c.Provider) {
		errs = append(errs, fmt.Errorf("unknown provider %q (want one of %s)", c.Provider, strings.Join(providers, ", ")))
	}
	if _, err := logging.ParseLevel(c.Log.Level); err != nil {
		errs = append(errs, err)
	}
	if c.Log.Format != "text" && c.Log.Format != "json" {
		errs = append(errs, fmt.Errorf("unknown log format %q", c.Log.Format))
	}
	if c.Log.Backend != "slog" && c.Log.Backend != "zap" {
		errs = append(errs, fmt.Errorf("unknown log backend %q", c.Log.Backend))
	}
	if c.Temperature < 0 || c.Temperature > 2 {
		errs = append(errs, fmt.Errorf("temperature %.2f out of range [0, 2]", c.Temperature))
	}
	if c.MaxChainDepth < 0 || c.MaxSpawnsPerRequest < 0 || c.MaxConcurrentRequests < 0 {
		errs = append(errs, errors.New("limits must not be negative"))
	}
	if c.MaxTokens < 0 || c.MaxTokens > math.MaxInt32 {
		errs = append(errs, fmt.Errorf("max_tokens %d out of range [0, %d]", c.MaxTokens, math.MaxInt32))
	}
	return errors.Join(errs...)
}

// BuildLogger returns the logger selected by c.Log.
func (c *Config) BuildLogger() (logging.Logger, error) {
	level, err := logging.ParseLevel(c.Log.Level)
	if err != nil {
		return nil, err
	}
	if c.Log.Backend == "zap" {
		z, err := logging.NewZapLogger(level, c.Log.Format == "text")
		if err != nil {
			return nil, err
		}
		return z, nil
	}
	return logging.NewSlogLogger(level, c.Log.Format, false), nil
}

// BuildModel returns the model backend selected by c.Provider.
func (c *Config) BuildModel(ctx context.Context) (model.Model, error) {
	switch c.Provider {
	case ProviderOpenAI:
		return openai.NewModel(func(o *openai.Options) {
			if c.Model != "" {
				o.Model = c.Model
			}
			o.Temperature = c.Temperature
			o.MaxCompletionTokens = c.MaxTokens
			o.APIKey = c.OpenAIAPIKey
			o.BaseURL = c.BaseURL
		}), nil
	case ProviderAnthropic:
		return anthropic.NewModel(func(o *anthropic.Options) {
			if c.Model != "" {
				o.Model = anthropicsdk.Model(c.Model)
			}
			o.Temperature = c.Temperature
			o.MaxTokens = c.MaxTokens
			o.APIKey = c.AnthropicAPIKey
			o.BaseURL = c.BaseURL
		}), nil
	case ProviderGemini:
		if c.MaxTokens > math.MaxInt32 {
			return nil, fmt.Errorf("max_tokens %d exceeds the gemini limit %d", c.MaxTokens, math.MaxInt32)
		}
		m, err := gemini.NewModel(ctx, func(o *gemini.Options) {
			if c.Model != "" {
				o.Model = c.Model
			}
			o.Temperature = c.Temperature
			o.MaxTokens = int32(c.MaxTokens)
			o.APIKey = c.GeminiAPIKey
		})
		if err != nil {
			return nil, err
		}
		return m, nil
	case ProviderOffline:
		m := model.NewMockModel("offline", ProviderOffline)
		m.AddResponse("Give me an idea", "A subscription service that delivers a different houseplant every month.")
		return m, nil
	default:
		return nil, fmt.Errorf("unknown provider %q", c.Provider)
	}
}

// BuildSynthesizer returns the synthesizer for c.Provider backed by m.
func (c *Config) BuildSynthesizer(m model.Model, logger logging.Logger) core.Synthesizer {
	if c.Provider == ProviderOffline {
		return core.SynthesizerFunc(func(ctx context.Context, template, _ string, _ float64) (string, error) {
			if err := ctx.Err(); err != nil {
				return "", err
			}
			return template, nil
		})
	}
	return model.NewSynthesizer(m, func(o *model.SynthesizerOptions) {
		o.MaxTokens = c.MaxTokens
		o.Logger = logger
	})
}
