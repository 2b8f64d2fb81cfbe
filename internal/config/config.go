package config

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Log       LogConfig       `yaml:"log" mapstructure:"log"`
	Store     StoreConfig     `yaml:"store" mapstructure:"store"`
	Anthropic AnthropicConfig `yaml:"anthropic" mapstructure:"anthropic"`
	OCR       OCRConfig       `yaml:"ocr" mapstructure:"ocr"`
	Listings  ListingsConfig  `yaml:"listings" mapstructure:"listings"`
	Valuation ValuationConfig `yaml:"valuation" mapstructure:"valuation"`
	Match     MatchConfig     `yaml:"match" mapstructure:"match"`
	Grade     GradeConfig     `yaml:"grade" mapstructure:"grade"`
	Lexicon   LexiconConfig   `yaml:"lexicon" mapstructure:"lexicon"`
	Batch     BatchConfig     `yaml:"batch" mapstructure:"batch"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// StoreConfig selects the CMV cache backend ("sqlite" or "postgres").
type StoreConfig struct {
	Driver   string `yaml:"driver" mapstructure:"driver"`
	DSN      string `yaml:"dsn" mapstructure:"dsn"`
	MaxConns int32  `yaml:"max_conns" mapstructure:"max_conns"`
	MinConns int32  `yaml:"min_conns" mapstructure:"min_conns"`
}

// AnthropicConfig configures the vision guess.
type AnthropicConfig struct {
	Key       string `yaml:"key" mapstructure:"key"`
	Model     string `yaml:"model" mapstructure:"model"`
	MaxTokens int64  `yaml:"max_tokens" mapstructure:"max_tokens"`
}

// OCRConfig selects the text-extraction provider ("local" or "mistral").
type OCRConfig struct {
	Provider      string `yaml:"provider" mapstructure:"provider"`
	TesseractPath string `yaml:"tesseract_path" mapstructure:"tesseract_path"`
	MistralKey    string `yaml:"mistral_key" mapstructure:"mistral_key"`
	MistralModel  string `yaml:"mistral_model" mapstructure:"mistral_model"`
}

// ListingsConfig configures the marketplace listings collaborator. When
// FixturePath is set the local corpus is used instead of BaseURL.
type ListingsConfig struct {
	BaseURL     string        `yaml:"base_url" mapstructure:"base_url"`
	APIKey      string        `yaml:"api_key" mapstructure:"api_key"`
	FixturePath string        `yaml:"fixture_path" mapstructure:"fixture_path"`
	RatePerSec  float64       `yaml:"rate_per_sec" mapstructure:"rate_per_sec"`
	Burst       int           `yaml:"burst" mapstructure:"burst"`
	TimeoutSecs int           `yaml:"timeout_secs" mapstructure:"timeout_secs"`
	Retry       RetryConfig   `yaml:"retry" mapstructure:"retry"`
	Circuit     CircuitConfig `yaml:"circuit" mapstructure:"circuit"`
}

// RetryConfig configures retry with exponential backoff.
type RetryConfig struct {
	MaxAttempts      int `yaml:"max_attempts" mapstructure:"max_attempts"`
	InitialBackoffMs int `yaml:"initial_backoff_ms" mapstructure:"initial_backoff_ms"`
	MaxBackoffMs     int `yaml:"max_backoff_ms" mapstructure:"max_backoff_ms"`
}

// CircuitConfig configures the circuit breaker.
type CircuitConfig struct {
	FailureThreshold int `yaml:"failure_threshold" mapstructure:"failure_threshold"`
	ResetTimeoutSecs int `yaml:"reset_timeout_secs" mapstructure:"reset_timeout_secs"`
}

// ValuationConfig tunes the CMV tier chain.
type ValuationConfig struct {
	RecentWindowDays int     `yaml:"recent_window_days" mapstructure:"recent_window_days"`
	MinComps         int     `yaml:"min_comps" mapstructure:"min_comps"`
	AdjacentStep     float64 `yaml:"adjacent_step" mapstructure:"adjacent_step"`
	AdjustPerPoint   float64 `yaml:"adjust_per_point" mapstructure:"adjust_per_point"`
	StaleDays        int     `yaml:"stale_days" mapstructure:"stale_days"`
}

// MatchConfig holds the candidate scorer thresholds.
type MatchConfig struct {
	ExactThreshold float64 `yaml:"exact_threshold" mapstructure:"exact_threshold"`
	CloseMin       float64 `yaml:"close_min" mapstructure:"close_min"`
	OverlapWeight  float64 `yaml:"overlap_weight" mapstructure:"overlap_weight"`
}

// GradeConfig tunes the grade probability modeler.
type GradeConfig struct {
	PSA10Cap  float64 `yaml:"psa10_cap" mapstructure:"psa10_cap"`
	JitterMax float64 `yaml:"jitter_max" mapstructure:"jitter_max"`
}

// LexiconConfig points at an optional YAML overlay for the lookup tables.
type LexiconConfig struct {
	Path string `yaml:"path" mapstructure:"path"`
}

// BatchConfig bounds concurrent card jobs in the refresh command.
type BatchConfig struct {
	Concurrency int `yaml:"concurrency" mapstructure:"concurrency"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("CARD")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	// Read config file (optional)
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

// setDefaults registers every key so env overrides resolve even without a
// config file.
func setDefaults(v *viper.Viper) {
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("store.driver", "sqlite")
	v.SetDefault("store.dsn", "cards.db")
	v.SetDefault("store.max_conns", 5)
	v.SetDefault("store.min_conns", 1)
	v.SetDefault("anthropic.key", "")
	v.SetDefault("anthropic.model", "claude-sonnet-4-5-20250929")
	v.SetDefault("anthropic.max_tokens", 1024)
	v.SetDefault("ocr.provider", "local")
	v.SetDefault("ocr.tesseract_path", "tesseract")
	v.SetDefault("ocr.mistral_key", "")
	v.SetDefault("ocr.mistral_model", "mistral-ocr-latest")
	v.SetDefault("listings.base_url", "")
	v.SetDefault("listings.api_key", "")
	v.SetDefault("listings.fixture_path", "")
	v.SetDefault("listings.rate_per_sec", 5.0)
	v.SetDefault("listings.burst", 5)
	v.SetDefault("listings.timeout_secs", 20)
	v.SetDefault("listings.retry.max_attempts", 3)
	v.SetDefault("listings.retry.initial_backoff_ms", 250)
	v.SetDefault("listings.retry.max_backoff_ms", 5000)
	v.SetDefault("listings.circuit.failure_threshold", 5)
	v.SetDefault("listings.circuit.reset_timeout_secs", 30)
	v.SetDefault("valuation.recent_window_days", 90)
	v.SetDefault("valuation.min_comps", 3)
	v.SetDefault("valuation.adjacent_step", 1.0)
	v.SetDefault("valuation.adjust_per_point", 0.1)
	v.SetDefault("valuation.stale_days", 7)
	v.SetDefault("match.exact_threshold", 0.8)
	v.SetDefault("match.close_min", 0.4)
	v.SetDefault("match.overlap_weight", 1.0)
	v.SetDefault("grade.psa10_cap", 0.15)
	v.SetDefault("grade.jitter_max", 0.05)
	v.SetDefault("lexicon.path", "")
	v.SetDefault("batch.concurrency", 4)
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
	// stdout carries command output.
	zapCfg.OutputPaths = []string{"stderr"}

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)
	return nil
}
