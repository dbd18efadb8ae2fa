// Package config provides configuration loading from environment variables.
package config

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/sethvargo/go-envconfig"
)

// Static errors for configuration validation.
var (
	// ErrInputDirRequired is returned when no input directory is configured.
	ErrInputDirRequired = errors.New("config: input directory is required")
	// ErrOutputDirRequired is returned when no output directory is configured.
	ErrOutputDirRequired = errors.New("config: output directory is required")
	// ErrInvalidDelimiter is returned when the CSV delimiter is not a single rune.
	ErrInvalidDelimiter = errors.New("config: CSV delimiter must be a single character")
)

// Config holds all configuration for the dataset preparation tool.
type Config struct {
	// Directory layout
	InputDir     string `env:"INPUT_DIR" json:"input_dir"`
	AlignmentDir string `env:"ALIGNMENT_DIR" json:"alignment_dir"`
	OutputDir    string `env:"OUTPUT_DIR" json:"output_dir"`

	// Segmentation settings
	PauseThreshold     float64 `env:"PAUSE_THRESHOLD, default=1.0" json:"pause_threshold" validate:"gt=0"`
	MaxSentenceLength  float64 `env:"MAX_SENTENCE_LENGTH, default=15.0" json:"max_sentence_length" validate:"gt=0"`
	MinDuration        float64 `env:"MIN_DURATION, default=2.0" json:"min_duration" validate:"gte=0"`
	MinSpeechDuration  float64 `env:"MIN_SPEECH_DURATION, default=1.0" json:"min_speech_duration" validate:"gte=0"`
	MinWordCount       int     `env:"MIN_WORD_COUNT, default=2" json:"min_word_count" validate:"gte=0"`
	MaxSilenceMs       float64 `env:"MAX_SILENCE_MS, default=-1" json:"max_silence_ms"`
	ExpectedSampleRate int     `env:"EXPECTED_SAMPLE_RATE, default=24000" json:"expected_sample_rate" validate:"gt=0"`
	PauseLabel         string  `env:"PAUSE_LABEL, default=<p:>" json:"pause_label" validate:"required"`

	// Alignment file settings
	CSVDelimiter string `env:"CSV_DELIMITER, default=;" json:"csv_delimiter"`

	// Processing settings
	Workers int `env:"WORKERS, default=4" json:"workers" validate:"gt=0"`

	// Optional S3 settings for artifact mirroring
	S3Bucket           string `env:"S3_BUCKET" json:"s3_bucket,omitempty"`
	S3Region           string `env:"S3_REGION" json:"s3_region,omitempty"`
	S3Endpoint         string `env:"S3_ENDPOINT" json:"s3_endpoint,omitempty"`
	AWSAccessKeyID     string `env:"AWS_ACCESS_KEY_ID" json:"-"`     // Masked in JSON
	AWSSecretAccessKey string `env:"AWS_SECRET_ACCESS_KEY" json:"-"` // Masked in JSON

	// Logging settings
	LogFormat string `env:"LOG_FORMAT, default=text" json:"log_format"` // "json" or "text"
	LogLevel  string `env:"LOG_LEVEL, default=info" json:"log_level"`   // "debug", "info", "warn", "error"
}

// S3Enabled returns true if S3 mirroring configuration is provided.
func (c *Config) S3Enabled() bool {
	return c.S3Bucket != "" && c.S3Region != ""
}

// Delimiter returns the alignment CSV delimiter as a rune.
// Call Validate first; it guarantees the delimiter is a single rune.
func (c *Config) Delimiter() rune {
	return []rune(c.CSVDelimiter)[0]
}

// Load reads configuration from environment variables using go-envconfig.
// Directory settings may be left empty here and filled in from CLI flags
// before Validate is called.
func Load() (*Config, error) {
	cfg := &Config{}

	if err := envconfig.Process(context.Background(), cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	return cfg, nil
}

// Validate checks that the configuration is complete and consistent.
func (c *Config) Validate() error {
	if c.InputDir == "" {
		return ErrInputDirRequired
	}
	if c.OutputDir == "" {
		return ErrOutputDirRequired
	}
	if len([]rune(c.CSVDelimiter)) != 1 {
		return ErrInvalidDelimiter
	}

	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	return nil
}

// NewLogger creates a structured logger based on the configuration.
// When LogFormat is "json", it outputs JSON logs suitable for batch pipelines.
// Otherwise, it outputs human-readable text logs.
func (c *Config) NewLogger() *slog.Logger {
	level := parseLogLevel(c.LogLevel)

	var handler slog.Handler
	if strings.ToLower(c.LogFormat) == "json" {
		handler = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level: level,
		})
	} else {
		handler = slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
			Level: level,
		})
	}

	return slog.New(handler)
}

// String returns a string representation of the config with credentials omitted.
func (c *Config) String() string {
	return fmt.Sprintf(
		"Config{InputDir: %s, AlignmentDir: %s, OutputDir: %s, PauseThreshold: %.2f, MaxSentenceLength: %.2f, MinDuration: %.2f, MinSpeechDuration: %.2f, MinWordCount: %d, MaxSilenceMs: %.0f, ExpectedSampleRate: %d, Workers: %d, S3Bucket: %s, S3Region: %s, LogFormat: %s, LogLevel: %s}",
		c.InputDir,
		c.AlignmentDir,
		c.OutputDir,
		c.PauseThreshold,
		c.MaxSentenceLength,
		c.MinDuration,
		c.MinSpeechDuration,
		c.MinWordCount,
		c.MaxSilenceMs,
		c.ExpectedSampleRate,
		c.Workers,
		c.S3Bucket,
		c.S3Region,
		c.LogFormat,
		c.LogLevel,
	)
}

// parseLogLevel converts a string log level to slog.Level.
func parseLogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
