// Package bootstrap provides dependency initialization for the data
// preparation pipeline.
package bootstrap

import (
	"fmt"
	"log/slog"

	"github.com/SALT-UWB/dysarthric-TTS/internal/config"
	"github.com/SALT-UWB/dysarthric-TTS/internal/merge"
	"github.com/SALT-UWB/dysarthric-TTS/internal/pipeline"
	"github.com/SALT-UWB/dysarthric-TTS/internal/storage"
)

// Dependencies holds the initialized components of the pipeline.
type Dependencies struct {
	Store  storage.Store
	Runner *pipeline.Runner
	Merger *merge.Merger
}

// NewDependencies wires storage, the segmentation processor and the batch
// runner from the configuration.
func NewDependencies(cfg *config.Config, logger *slog.Logger) (*Dependencies, error) {
	store, err := initStorage(cfg, logger)
	if err != nil {
		return nil, err
	}

	proc := pipeline.NewProcessor(cfg, store, logger)
	runner := pipeline.NewRunner(proc, cfg.Workers, logger)
	merger := merge.NewMerger(cfg.InputDir, store, cfg.Delimiter(), logger)

	return &Dependencies{
		Store:  store,
		Runner: runner,
		Merger: merger,
	}, nil
}

// initStorage creates the appropriate storage backend based on configuration.
func initStorage(cfg *config.Config, logger *slog.Logger) (storage.Store, error) {
	if cfg.S3Enabled() {
		s3Cfg := storage.S3Config{
			Bucket:          cfg.S3Bucket,
			Region:          cfg.S3Region,
			Endpoint:        cfg.S3Endpoint,
			AccessKeyID:     cfg.AWSAccessKeyID,
			SecretAccessKey: cfg.AWSSecretAccessKey,
		}
		s3Store, err := storage.NewS3Store(cfg.OutputDir, s3Cfg)
		if err != nil {
			return nil, fmt.Errorf("create S3 storage: %w", err)
		}
		logger.Info("S3 mirroring configured",
			slog.String("bucket", cfg.S3Bucket),
			slog.String("region", cfg.S3Region),
		)
		return s3Store, nil
	}

	localStore, err := storage.NewLocalStore(cfg.OutputDir)
	if err != nil {
		return nil, fmt.Errorf("create local storage: %w", err)
	}
	logger.Info("local storage configured",
		slog.String("output_dir", cfg.OutputDir),
	)
	return localStore, nil
}
