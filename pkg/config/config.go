// Package config provides configuration loading and validation for specio.
package config

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/viper"
)

// Sentinel validation errors.
var (
	ErrInvalidCommentMarker = errors.New("comment marker must be non-empty and free of whitespace")
	ErrInvalidTolerance     = errors.New("uniform tolerance must be a positive finite number")
	ErrInvalidMaxFileSize   = errors.New("invalid max file size")
	ErrInvalidWorkers       = errors.New("batch workers must not be negative")
	ErrInvalidLogLevel      = errors.New("invalid log level")
	ErrInvalidLogFormat     = errors.New("invalid log format")
	ErrInvalidSampleRatio   = errors.New("sample ratio must be within [0, 1]")
)

// EnvPrefix is the prefix of environment overrides, e.g. SPECIO_READER_MAX_FILE_SIZE.
const EnvPrefix = "SPECIO"

var (
	logLevels  = []string{"debug", "info", "warn", "error"}
	logFormats = []string{"text", "json"}
)

// Config holds all configuration for specio.
type Config struct {
	Reader        ReaderConfig        `mapstructure:"reader"`
	Batch         BatchConfig         `mapstructure:"batch"`
	Logging       LoggingConfig       `mapstructure:"logging"`
	Observability ObservabilityConfig `mapstructure:"observability"`
}

// ReaderConfig holds parsing and validation settings.
type ReaderConfig struct {
	CommentMarker      string  `mapstructure:"comment_marker"`
	MaxFileSize        string  `mapstructure:"max_file_size"`
	UniformTolerance   float64 `mapstructure:"uniform_tolerance"`
	RejectUnknownLines bool    `mapstructure:"reject_unknown_lines"`
}

// MaxFileSizeBytes parses MaxFileSize ("64MB", "1GiB"). Zero means unlimited.
func (r ReaderConfig) MaxFileSizeBytes() (int64, error) {
	trimmed := strings.TrimSpace(r.MaxFileSize)
	if trimmed == "" || trimmed == "0" {
		return 0, nil
	}

	size, err := humanize.ParseBytes(trimmed)
	if err != nil {
		return 0, fmt.Errorf("%w: %q: %w", ErrInvalidMaxFileSize, r.MaxFileSize, err)
	}

	if size > math.MaxInt64 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidMaxFileSize, r.MaxFileSize)
	}

	return int64(size), nil
}

// BatchConfig holds settings for reading many files at once.
type BatchConfig struct {
	Workers int `mapstructure:"workers"`
}

// LoggingConfig holds logging-specific configuration.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// ObservabilityConfig holds OpenTelemetry export settings.
type ObservabilityConfig struct {
	OTLPEndpoint string  `mapstructure:"otlp_endpoint"`
	Environment  string  `mapstructure:"environment"`
	SampleRatio  float64 `mapstructure:"sample_ratio"`
	OTLPInsecure bool    `mapstructure:"otlp_insecure"`
}

// LoadConfig loads configuration from file and environment variables. An
// empty path searches specio.yaml in ., ./config and /etc/specio; a missing
// file there is not an error.
func LoadConfig(configPath string) (*Config, error) {
	viperCfg := viper.New()

	setDefaults(viperCfg)

	if configPath != "" {
		viperCfg.SetConfigFile(configPath)
	} else {
		viperCfg.SetConfigName("specio")
		viperCfg.SetConfigType("yaml")
		viperCfg.AddConfigPath(".")
		viperCfg.AddConfigPath("./config")
		viperCfg.AddConfigPath("/etc/specio")
	}

	viperCfg.SetEnvPrefix(EnvPrefix)
	viperCfg.AutomaticEnv()
	viperCfg.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	readErr := viperCfg.ReadInConfig()
	if readErr != nil {
		var notFoundErr viper.ConfigFileNotFoundError
		if !errors.As(readErr, &notFoundErr) {
			return nil, fmt.Errorf("failed to read config file: %w", readErr)
		}
	}

	var config Config

	unmarshalErr := viperCfg.Unmarshal(&config)
	if unmarshalErr != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", unmarshalErr)
	}

	validateErr := validateConfig(&config)
	if validateErr != nil {
		return nil, fmt.Errorf("invalid configuration: %w", validateErr)
	}

	return &config, nil
}

// setDefaults sets default configuration values.
func setDefaults(viperCfg *viper.Viper) {
	viperCfg.SetDefault("reader.comment_marker", DefaultCommentMarker)
	viperCfg.SetDefault("reader.uniform_tolerance", DefaultUniformTolerance)
	viperCfg.SetDefault("reader.reject_unknown_lines", DefaultRejectUnknownLines)
	viperCfg.SetDefault("reader.max_file_size", DefaultMaxFileSize)

	viperCfg.SetDefault("batch.workers", DefaultBatchWorkers)

	viperCfg.SetDefault("logging.level", DefaultLogLevel)
	viperCfg.SetDefault("logging.format", DefaultLogFormat)

	viperCfg.SetDefault("observability.otlp_endpoint", "")
	viperCfg.SetDefault("observability.otlp_insecure", DefaultOTLPInsecure)
	viperCfg.SetDefault("observability.environment", DefaultEnvironment)
	viperCfg.SetDefault("observability.sample_ratio", DefaultSampleRatio)
}

// validateConfig validates the configuration.
func validateConfig(config *Config) error {
	marker := config.Reader.CommentMarker
	if marker == "" || strings.ContainsAny(marker, " \t\r\n") {
		return fmt.Errorf("%w: %q", ErrInvalidCommentMarker, marker)
	}

	tol := config.Reader.UniformTolerance
	if tol <= 0 || math.IsNaN(tol) || math.IsInf(tol, 0) {
		return fmt.Errorf("%w: %g", ErrInvalidTolerance, tol)
	}

	if _, err := config.Reader.MaxFileSizeBytes(); err != nil {
		return err
	}

	if config.Batch.Workers < 0 {
		return fmt.Errorf("%w: %d", ErrInvalidWorkers, config.Batch.Workers)
	}

	if !oneOf(config.Logging.Level, logLevels) {
		return fmt.Errorf("%w: %q", ErrInvalidLogLevel, config.Logging.Level)
	}

	if !oneOf(config.Logging.Format, logFormats) {
		return fmt.Errorf("%w: %q", ErrInvalidLogFormat, config.Logging.Format)
	}

	ratio := config.Observability.SampleRatio
	if ratio < 0 || ratio > 1 || math.IsNaN(ratio) {
		return fmt.Errorf("%w: %g", ErrInvalidSampleRatio, ratio)
	}

	return nil
}

func oneOf(value string, allowed []string) bool {
	for _, a := range allowed {
		if strings.EqualFold(value, a) {
			return true
		}
	}

	return false
}
