package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"
)

// ErrRecordingsFailed is returned by Run when at least one recording hit a
// fatal validation failure. Other recordings are still processed.
var ErrRecordingsFailed = errors.New("pipeline: one or more recordings failed validation")

// RunSummary aggregates the outcome of a batch run.
type RunSummary struct {
	Reports  []*RecordingReport `json:"reports"`
	Skipped  []string           `json:"skipped,omitempty"`
	Failed   []string           `json:"failed,omitempty"`
	Segments int                `json:"segments"`
}

// Runner processes every recording of an input directory.
// Recordings are independent and share no mutable state, so they run in
// parallel up to the configured worker count.
type Runner struct {
	proc    *Processor
	workers int
	logger  *slog.Logger
}

// NewRunner creates a batch runner over proc.
func NewRunner(proc *Processor, workers int, logger *slog.Logger) *Runner {
	if workers < 1 {
		workers = 1
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Runner{proc: proc, workers: workers, logger: logger}
}

// Stems lists the recording identifiers (wav basenames) of dir, sorted.
func Stems(dir string) ([]string, error) {
	matches, err := filepath.Glob(filepath.Join(dir, "*.wav"))
	if err != nil {
		return nil, fmt.Errorf("pipeline: list recordings: %w", err)
	}

	stems := make([]string, 0, len(matches))
	for _, m := range matches {
		stems = append(stems, strings.TrimSuffix(filepath.Base(m), ".wav"))
	}
	sort.Strings(stems)
	return stems, nil
}

// Run processes all stems. Skip errors exclude single recordings; fatal
// validation failures are collected and reported via ErrRecordingsFailed
// after the remaining recordings have been processed.
func (r *Runner) Run(ctx context.Context, stems []string) (*RunSummary, error) {
	summary := &RunSummary{}
	var mu sync.Mutex

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(r.workers)

	for _, stem := range stems {
		g.Go(func() error {
			report, err := r.proc.ProcessRecording(ctx, stem)

			mu.Lock()
			defer mu.Unlock()

			switch {
			case err == nil:
				summary.Reports = append(summary.Reports, report)
				summary.Segments += len(report.Segments)
			case IsFatal(err):
				r.logger.Error("recording failed validation",
					slog.String("stem", stem),
					slog.String("error", err.Error()),
				)
				summary.Failed = append(summary.Failed, stem)
			default:
				r.logger.Warn("skipping recording",
					slog.String("stem", stem),
					slog.String("error", err.Error()),
				)
				summary.Skipped = append(summary.Skipped, stem)
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return summary, err
	}

	sort.Slice(summary.Reports, func(i, j int) bool {
		return summary.Reports[i].Stem < summary.Reports[j].Stem
	})
	sort.Strings(summary.Skipped)
	sort.Strings(summary.Failed)

	r.logger.Info("run summary",
		slog.Int("processed", len(summary.Reports)),
		slog.Int("segments", summary.Segments),
		slog.Int("skipped", len(summary.Skipped)),
		slog.Int("failed", len(summary.Failed)),
	)

	if len(summary.Failed) > 0 {
		return summary, fmt.Errorf("%w: %s", ErrRecordingsFailed, strings.Join(summary.Failed, ", "))
	}
	return summary, nil
}
