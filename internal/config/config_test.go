package config

import (
	"log/slog"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"INPUT_DIR", "ALIGNMENT_DIR", "OUTPUT_DIR",
		"PAUSE_THRESHOLD", "MAX_SENTENCE_LENGTH", "MIN_DURATION",
		"MIN_SPEECH_DURATION", "MIN_WORD_COUNT", "MAX_SILENCE_MS",
		"EXPECTED_SAMPLE_RATE", "PAUSE_LABEL", "CSV_DELIMITER", "WORKERS",
		"S3_BUCKET", "S3_REGION", "AWS_ACCESS_KEY_ID", "AWS_SECRET_ACCESS_KEY",
		"LOG_FORMAT", "LOG_LEVEL",
	} {
		os.Unsetenv(key)
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.InDelta(t, 1.0, cfg.PauseThreshold, 1e-9)
	assert.InDelta(t, 15.0, cfg.MaxSentenceLength, 1e-9)
	assert.InDelta(t, 2.0, cfg.MinDuration, 1e-9)
	assert.InDelta(t, 1.0, cfg.MinSpeechDuration, 1e-9)
	assert.Equal(t, 2, cfg.MinWordCount)
	assert.InDelta(t, -1.0, cfg.MaxSilenceMs, 1e-9)
	assert.Equal(t, 24000, cfg.ExpectedSampleRate)
	assert.Equal(t, "<p:>", cfg.PauseLabel)
	assert.Equal(t, ";", cfg.CSVDelimiter)
	assert.Equal(t, 4, cfg.Workers)
	assert.Equal(t, "text", cfg.LogFormat)
	assert.Equal(t, "info", cfg.LogLevel)
}

func TestLoad_CustomValues(t *testing.T) {
	clearEnv(t)
	t.Setenv("INPUT_DIR", "/data/in")
	t.Setenv("OUTPUT_DIR", "/data/out")
	t.Setenv("PAUSE_THRESHOLD", "0.5")
	t.Setenv("MAX_SENTENCE_LENGTH", "10")
	t.Setenv("MIN_WORD_COUNT", "3")
	t.Setenv("EXPECTED_SAMPLE_RATE", "16000")
	t.Setenv("CSV_DELIMITER", ",")
	t.Setenv("WORKERS", "8")
	t.Setenv("S3_BUCKET", "corpus")
	t.Setenv("S3_REGION", "eu-central-1")
	t.Setenv("LOG_FORMAT", "json")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "/data/in", cfg.InputDir)
	assert.Equal(t, "/data/out", cfg.OutputDir)
	assert.InDelta(t, 0.5, cfg.PauseThreshold, 1e-9)
	assert.InDelta(t, 10.0, cfg.MaxSentenceLength, 1e-9)
	assert.Equal(t, 3, cfg.MinWordCount)
	assert.Equal(t, 16000, cfg.ExpectedSampleRate)
	assert.Equal(t, ",", cfg.CSVDelimiter)
	assert.Equal(t, 8, cfg.Workers)
	assert.Equal(t, "corpus", cfg.S3Bucket)
	assert.Equal(t, "eu-central-1", cfg.S3Region)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, "debug", cfg.LogLevel)
}

func TestLoad_InvalidNumbers(t *testing.T) {
	clearEnv(t)
	t.Setenv("PAUSE_THRESHOLD", "not-a-number")

	_, err := Load()
	require.Error(t, err)
}

func validConfig() *Config {
	return &Config{
		InputDir:           "/data/in",
		OutputDir:          "/data/out",
		PauseThreshold:     1.0,
		MaxSentenceLength:  15.0,
		MinDuration:        2.0,
		MinSpeechDuration:  1.0,
		MinWordCount:       2,
		MaxSilenceMs:       -1,
		ExpectedSampleRate: 24000,
		PauseLabel:         "<p:>",
		CSVDelimiter:       ";",
		Workers:            4,
	}
}

func TestConfig_Validate(t *testing.T) {
	t.Run("valid config", func(t *testing.T) {
		assert.NoError(t, validConfig().Validate())
	})

	t.Run("missing input dir", func(t *testing.T) {
		cfg := validConfig()
		cfg.InputDir = ""
		assert.ErrorIs(t, cfg.Validate(), ErrInputDirRequired)
	})

	t.Run("missing output dir", func(t *testing.T) {
		cfg := validConfig()
		cfg.OutputDir = ""
		assert.ErrorIs(t, cfg.Validate(), ErrOutputDirRequired)
	})

	t.Run("multi-character delimiter", func(t *testing.T) {
		cfg := validConfig()
		cfg.CSVDelimiter = ";;"
		assert.ErrorIs(t, cfg.Validate(), ErrInvalidDelimiter)
	})

	t.Run("non-positive sample rate", func(t *testing.T) {
		cfg := validConfig()
		cfg.ExpectedSampleRate = 0
		assert.Error(t, cfg.Validate())
	})

	t.Run("non-positive workers", func(t *testing.T) {
		cfg := validConfig()
		cfg.Workers = 0
		assert.Error(t, cfg.Validate())
	})
}

func TestConfig_S3Enabled(t *testing.T) {
	tests := []struct {
		name     string
		bucket   string
		region   string
		expected bool
	}{
		{"both set", "bucket", "region", true},
		{"only bucket", "bucket", "", false},
		{"only region", "", "region", false},
		{"neither set", "", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{S3Bucket: tt.bucket, S3Region: tt.region}
			assert.Equal(t, tt.expected, cfg.S3Enabled())
		})
	}
}

func TestConfig_Delimiter(t *testing.T) {
	cfg := validConfig()
	assert.Equal(t, ';', cfg.Delimiter())

	cfg.CSVDelimiter = "\t"
	assert.Equal(t, '\t', cfg.Delimiter())
}

func TestConfig_String_MasksCredentials(t *testing.T) {
	cfg := validConfig()
	cfg.AWSAccessKeyID = "AKIA-test"
	cfg.AWSSecretAccessKey = "super-secret"
	cfg.S3Bucket = "corpus"

	str := cfg.String()
	assert.Contains(t, str, "corpus")
	assert.Contains(t, str, "/data/in")
	assert.NotContains(t, str, "AKIA-test")
	assert.NotContains(t, str, "super-secret")
}

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		input    string
		expected slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"unknown", slog.LevelInfo},
		{"", slog.LevelInfo},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, parseLogLevel(tt.input))
		})
	}
}
