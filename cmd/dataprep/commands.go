package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/SALT-UWB/dysarthric-TTS/internal/bootstrap"
	"github.com/SALT-UWB/dysarthric-TTS/internal/config"
	"github.com/SALT-UWB/dysarthric-TTS/internal/pipeline"
	"github.com/SALT-UWB/dysarthric-TTS/internal/stats"
)

// commonFlags holds the flag values shared by all subcommands. Flags set on
// the command line override the environment configuration.
type commonFlags struct {
	inputDir     string
	alignmentDir string
	outputDir    string
	workers      int
}

func (f *commonFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.inputDir, "input", "i", "", "input directory (overrides INPUT_DIR)")
	cmd.Flags().StringVarP(&f.outputDir, "output", "o", "", "output directory (overrides OUTPUT_DIR)")
	cmd.Flags().StringVar(&f.alignmentDir, "alignments", "", "alignment CSV directory (overrides ALIGNMENT_DIR)")
	cmd.Flags().IntVarP(&f.workers, "workers", "w", 0, "parallel workers (overrides WORKERS)")
}

// loadConfig builds the effective configuration from environment plus the
// flags the user actually set.
func (f *commonFlags) loadConfig(cmd *cobra.Command) (*config.Config, *slog.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}

	if cmd.Flags().Changed("input") {
		cfg.InputDir = f.inputDir
	}
	if cmd.Flags().Changed("output") {
		cfg.OutputDir = f.outputDir
	}
	if cmd.Flags().Changed("alignments") {
		cfg.AlignmentDir = f.alignmentDir
	}
	if cmd.Flags().Changed("workers") {
		cfg.Workers = f.workers
	}

	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}

	logger := cfg.NewLogger()
	slog.SetDefault(logger)
	return cfg, logger, nil
}

// newSplitCommand segments every recording of the input directory into
// sentence-sized wav/txt/csv triples.
func newSplitCommand() *cobra.Command {
	flags := &commonFlags{}

	cmd := &cobra.Command{
		Use:   "split",
		Short: "Segment recordings into sentence-sized wav/txt/csv triples",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := flags.loadConfig(cmd)
			if err != nil {
				return err
			}

			logger.Info("starting segmentation run",
				slog.String("input_dir", cfg.InputDir),
				slog.String("output_dir", cfg.OutputDir),
				slog.Int("workers", cfg.Workers),
				slog.Bool("s3_enabled", cfg.S3Enabled()),
			)

			deps, err := bootstrap.NewDependencies(cfg, logger)
			if err != nil {
				return fmt.Errorf("initialize dependencies: %w", err)
			}

			stems, err := pipeline.Stems(cfg.InputDir)
			if err != nil {
				return err
			}
			if len(stems) == 0 {
				return fmt.Errorf("no recordings found in %s", cfg.InputDir)
			}

			_, err = deps.Runner.Run(cmd.Context(), stems)
			return err
		},
	}

	flags.register(cmd)
	return cmd
}

// newMergeCommand regroups previously emitted triples into units of at
// least five words.
func newMergeCommand() *cobra.Command {
	flags := &commonFlags{}

	cmd := &cobra.Command{
		Use:   "merge",
		Short: "Merge segment triples into units of at least five words",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := flags.loadConfig(cmd)
			if err != nil {
				return err
			}

			deps, err := bootstrap.NewDependencies(cfg, logger)
			if err != nil {
				return fmt.Errorf("initialize dependencies: %w", err)
			}

			written, err := deps.Merger.Run(cmd.Context())
			if err != nil {
				return err
			}
			logger.Info("merge complete", slog.Int("written", written))
			return nil
		},
	}

	flags.register(cmd)
	return cmd
}

// newStatsCommand validates the emitted triples and reports corpus
// statistics per speaker group.
func newStatsCommand() *cobra.Command {
	flags := &commonFlags{}
	var reportPath string

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Validate triples and report corpus statistics",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := flags.loadConfig(cmd)
			if err != nil {
				return err
			}

			triples, err := stats.ValidateTriples(cfg.OutputDir)
			if err != nil {
				return err
			}
			for _, inc := range triples.Incomplete {
				logger.Warn("incomplete triple",
					slog.String("stem", inc.Stem),
					slog.Any("missing", inc.Missing),
				)
			}

			report, err := stats.Compute(cfg.OutputDir, triples.Valid, logger)
			if err != nil {
				return err
			}

			if reportPath != "" {
				if err := report.Save(reportPath); err != nil {
					return err
				}
				logger.Info("statistics report written", slog.String("path", reportPath))
			}

			if len(triples.Incomplete) > 0 {
				return fmt.Errorf("%d incomplete triples in %s", len(triples.Incomplete), cfg.OutputDir)
			}
			return nil
		},
	}

	flags.register(cmd)
	cmd.Flags().StringVar(&reportPath, "report", "", "write the statistics report as JSON to this path")
	return cmd
}
