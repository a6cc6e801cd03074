package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Anthropic AnthropicConfig `yaml:"anthropic" mapstructure:"anthropic"`
	OpenAI    OpenAIConfig    `yaml:"openai" mapstructure:"openai"`
	Pipeline  PipelineConfig  `yaml:"pipeline" mapstructure:"pipeline"`
	Provider  ProviderConfig  `yaml:"provider" mapstructure:"provider"`
	Roster    RosterConfig    `yaml:"roster" mapstructure:"roster"`
	Server    ServerConfig    `yaml:"server" mapstructure:"server"`
	Log       LogConfig       `yaml:"log" mapstructure:"log"`
}

// AnthropicConfig holds Claude credentials and model IDs. Key is only a
// CLI default; HTTP requests always carry their own key.
type AnthropicConfig struct {
	Key        string `yaml:"key" mapstructure:"key"`
	FastModel  string `yaml:"fast_model" mapstructure:"fast_model"`
	ScoreModel string `yaml:"score_model" mapstructure:"score_model"`
}

// OpenAIConfig holds OpenAI credentials and model IDs.
type OpenAIConfig struct {
	Key        string `yaml:"key" mapstructure:"key"`
	FastModel  string `yaml:"fast_model" mapstructure:"fast_model"`
	ScoreModel string `yaml:"score_model" mapstructure:"score_model"`
}

// PipelineConfig tunes the Bronze/Silver/Gold run.
type PipelineConfig struct {
	BatchSize       int    `yaml:"batch_size" mapstructure:"batch_size"`
	MinDurationSecs int    `yaml:"min_duration_secs" mapstructure:"min_duration_secs"`
	DefaultModel    string `yaml:"default_model" mapstructure:"default_model"`
}

// ProviderConfig configures the wrappers around every model call.
type ProviderConfig struct {
	RetryMaxAttempts        int     `yaml:"retry_max_attempts" mapstructure:"retry_max_attempts"`
	RetryInitialBackoffMs   int     `yaml:"retry_initial_backoff_ms" mapstructure:"retry_initial_backoff_ms"`
	RetryMaxBackoffMs       int     `yaml:"retry_max_backoff_ms" mapstructure:"retry_max_backoff_ms"`
	CircuitFailureThreshold int     `yaml:"circuit_failure_threshold" mapstructure:"circuit_failure_threshold"`
	CircuitResetSecs        int     `yaml:"circuit_reset_secs" mapstructure:"circuit_reset_secs"`
	RequestsPerSecond       float64 `yaml:"requests_per_second" mapstructure:"requests_per_second"`
	Burst                   int     `yaml:"burst" mapstructure:"burst"`
	CallTimeoutSecs         int     `yaml:"call_timeout_secs" mapstructure:"call_timeout_secs"`
}

// RosterConfig points at an optional rep roster override.
type RosterConfig struct {
	Path string `yaml:"path" mapstructure:"path"`
}

// ServerConfig configures the streaming HTTP transport.
type ServerConfig struct {
	Port               int      `yaml:"port" mapstructure:"port"`
	RequestTimeoutSecs int      `yaml:"request_timeout_secs" mapstructure:"request_timeout_secs"`
	MaxUploadMB        int      `yaml:"max_upload_mb" mapstructure:"max_upload_mb"`
	CORSAllowedOrigins []string `yaml:"cors_allowed_origins" mapstructure:"cors_allowed_origins"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from .env, config.yaml and the environment, in
// increasing precedence.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, eris.Wrap(err, "config: load .env")
	}

	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	v.SetEnvPrefix("CALLTRACKER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("anthropic.key", "")
	v.SetDefault("anthropic.fast_model", "claude-3-5-haiku-20241022")
	v.SetDefault("anthropic.score_model", "claude-opus-4-5-20251101")
	v.SetDefault("openai.key", "")
	v.SetDefault("openai.fast_model", "gpt-4.1-mini")
	v.SetDefault("openai.score_model", "gpt-4.1")
	v.SetDefault("pipeline.batch_size", 10)
	v.SetDefault("pipeline.min_duration_secs", 5)
	v.SetDefault("pipeline.default_model", "claude")
	v.SetDefault("provider.retry_max_attempts", 3)
	v.SetDefault("provider.retry_initial_backoff_ms", 500)
	v.SetDefault("provider.retry_max_backoff_ms", 20000)
	v.SetDefault("provider.circuit_failure_threshold", 5)
	v.SetDefault("provider.circuit_reset_secs", 30)
	v.SetDefault("provider.requests_per_second", 8.0)
	v.SetDefault("provider.burst", 10)
	v.SetDefault("provider.call_timeout_secs", 0)
	v.SetDefault("roster.path", "")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.request_timeout_secs", 300)
	v.SetDefault("server.max_upload_mb", 32)
	v.SetDefault("server.cors_allowed_origins", []string{"*"})
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// Validate checks the settings a command needs. mode is the command name.
func (c *Config) Validate(mode string) error {
	var errs []string

	if c.Pipeline.BatchSize < 1 || c.Pipeline.BatchSize > 50 {
		errs = append(errs, fmt.Sprintf("pipeline.batch_size must be between 1 and 50 (got %d)", c.Pipeline.BatchSize))
	}
	if c.Pipeline.MinDurationSecs < 0 {
		errs = append(errs, "pipeline.min_duration_secs must not be negative")
	}
	if c.Provider.RequestsPerSecond < 0 {
		errs = append(errs, "provider.requests_per_second must not be negative")
	}

	switch mode {
	case "serve":
		if c.Server.Port <= 0 || c.Server.Port > 65535 {
			errs = append(errs, fmt.Sprintf("server.port must be between 1 and 65535 (got %d)", c.Server.Port))
		}
		if c.Server.RequestTimeoutSecs <= 0 {
			errs = append(errs, "server.request_timeout_secs must be positive")
		}
	case "analyze", "extract":
	default:
		return eris.Errorf("config: unknown validation mode %q", mode)
	}

	if len(errs) > 0 {
		return eris.Errorf("config: %s", strings.Join(errs, "; "))
	}
	return nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
