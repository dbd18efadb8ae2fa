// Package pipeline orchestrates the per-recording segmentation workflow:
// load the audio/transcript/alignment triple, run the segmentation engine,
// and emit one wav/txt/csv triple per surviving segment.
package pipeline

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/SALT-UWB/dysarthric-TTS/internal/alignment"
	"github.com/SALT-UWB/dysarthric-TTS/internal/audio"
	"github.com/SALT-UWB/dysarthric-TTS/internal/config"
	"github.com/SALT-UWB/dysarthric-TTS/internal/segment"
	"github.com/SALT-UWB/dysarthric-TTS/internal/storage"
)

// Static errors classifying recording failures. Fatal errors indicate a
// defective input that must be surfaced loudly; skip errors exclude one
// recording and let the batch continue.
var (
	// ErrSampleRateMismatch is fatal: the recording does not match the
	// configured sample rate.
	ErrSampleRateMismatch = errors.New("pipeline: sample rate mismatch")
	// ErrMissingInputs means one of the wav/txt/csv files is absent.
	ErrMissingInputs = errors.New("pipeline: missing input files")
)

// IsFatal reports whether a recording error is a validation failure that
// must fail the run rather than merely skip the recording.
func IsFatal(err error) bool {
	return errors.Is(err, ErrSampleRateMismatch) || errors.Is(err, alignment.ErrExceedsAudio)
}

// SegmentReport describes one emitted segment for logging and audits.
type SegmentReport struct {
	ID                string  `json:"id"`
	DurationSeconds   float64 `json:"duration_sec"`
	WordCount         int     `json:"word_count"`
	Text              string  `json:"text"`
	BelowMinimums     bool    `json:"below_minimums,omitempty"`
	LeadingSilenceMs  float64 `json:"leading_silence_ms"`
	TrailingSilenceMs float64 `json:"trailing_silence_ms"`
}

// RecordingReport is the outcome of processing one recording.
type RecordingReport struct {
	Stem     string          `json:"stem"`
	Segments []SegmentReport `json:"segments"`
	Dropped  int             `json:"dropped,omitempty"`
	Warnings []string        `json:"warnings,omitempty"`
}

// Processor runs the segmentation pipeline for single recordings.
type Processor struct {
	cfg    *config.Config
	store  storage.Store
	logger *slog.Logger
	mirror bool
}

// NewProcessor creates a Processor emitting artifacts through store.
func NewProcessor(cfg *config.Config, store storage.Store, logger *slog.Logger) *Processor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Processor{
		cfg:    cfg,
		store:  store,
		logger: logger,
		mirror: cfg.S3Enabled(),
	}
}

// AlignmentDir returns the configured alignment directory, defaulting to
// the ali_phoneme subdirectory of the input directory.
func (p *Processor) AlignmentDir() string {
	if p.cfg.AlignmentDir != "" {
		return p.cfg.AlignmentDir
	}
	return filepath.Join(p.cfg.InputDir, "ali_phoneme")
}

// params maps the configuration onto engine constraints.
func (p *Processor) params() segment.Params {
	return segment.Params{
		PauseThreshold:    p.cfg.PauseThreshold,
		MaxSentenceLength: p.cfg.MaxSentenceLength,
		MinDuration:       p.cfg.MinDuration,
		MinSpeechDuration: p.cfg.MinSpeechDuration,
		MinWordCount:      p.cfg.MinWordCount,
		MaxSilenceMs:      p.cfg.MaxSilenceMs,
		PauseLabel:        p.cfg.PauseLabel,
	}
}

// ProcessRecording segments one recording and writes its artifacts.
// Skip errors exclude the recording; errors matching IsFatal indicate a
// defective input the caller must not paper over.
func (p *Processor) ProcessRecording(ctx context.Context, stem string) (*RecordingReport, error) {
	wavPath := filepath.Join(p.cfg.InputDir, stem+".wav")
	txtPath := filepath.Join(p.cfg.InputDir, stem+".txt")
	csvPath := filepath.Join(p.AlignmentDir(), stem+".csv")

	for _, path := range []string{wavPath, txtPath, csvPath} {
		if _, err := os.Stat(path); err != nil {
			return nil, fmt.Errorf("%w: %s", ErrMissingInputs, path)
		}
	}

	info, err := audio.ReadInfo(wavPath)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", wavPath, err)
	}
	if info.SampleRate != p.cfg.ExpectedSampleRate {
		return nil, fmt.Errorf("%w: %s is %dHz, expected %dHz",
			ErrSampleRateMismatch, stem, info.SampleRate, p.cfg.ExpectedSampleRate)
	}

	transcript, err := os.ReadFile(txtPath) // #nosec G304 - derived from configured input dir
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", txtPath, err)
	}

	rows, err := alignment.Load(csvPath, p.cfg.Delimiter())
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", csvPath, err)
	}

	rec := segment.Recording{
		SampleRate:   info.SampleRate,
		TotalSamples: info.TotalSamples,
		Words:        strings.Fields(string(transcript)),
		Rows:         rows,
	}

	// Split surfaces alignment/audio extent violations as fatal errors.
	res, err := segment.Split(rec, p.params())
	if err != nil {
		return nil, fmt.Errorf("%s: %w", stem, err)
	}

	samples, _, err := audio.ReadSamples(wavPath)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", wavPath, err)
	}

	p.logger.Info("processing recording",
		slog.String("stem", stem),
		slog.Float64("duration_sec", info.Seconds()),
		slog.Int("segments", len(res.Segments)),
	)
	for _, w := range res.Warnings {
		p.logger.Warn(w, slog.String("stem", stem))
	}

	report := &RecordingReport{
		Stem:     stem,
		Dropped:  len(res.Dropped),
		Warnings: res.Warnings,
	}

	for i, seg := range res.Segments {
		name := fmt.Sprintf("%s_%03d", stem, i+1)
		sr, err := p.emitSegment(ctx, rec, seg, samples, name, info.BitDepth)
		if err != nil {
			return nil, fmt.Errorf("emit %s: %w", name, err)
		}
		report.Segments = append(report.Segments, sr)

		p.logger.Info("segment emitted",
			slog.String("id", name),
			slog.Float64("duration_sec", sr.DurationSeconds),
			slog.Float64("leading_silence_ms", sr.LeadingSilenceMs),
			slog.Float64("trailing_silence_ms", sr.TrailingSilenceMs),
			slog.Bool("below_minimums", seg.BelowMinimums),
			slog.String("text", sr.Text),
		)
	}

	return report, nil
}

// emitSegment writes the wav/txt/csv triple of one segment.
func (p *Processor) emitSegment(ctx context.Context, rec segment.Recording, seg segment.Segment, samples []int, name string, bitDepth int) (SegmentReport, error) {
	text := seg.Text(rec)

	wavName := name + ".wav"
	if err := audio.WriteFile(p.store.Path(wavName), seg.Samples(samples), rec.SampleRate, bitDepth); err != nil {
		return SegmentReport{}, err
	}

	if _, err := p.store.Save(ctx, name+".txt", strings.NewReader(text)); err != nil {
		return SegmentReport{}, err
	}

	var buf bytes.Buffer
	if err := alignment.Encode(&buf, seg.Rows(rec), p.cfg.Delimiter()); err != nil {
		return SegmentReport{}, err
	}
	if _, err := p.store.Save(ctx, name+".csv", &buf); err != nil {
		return SegmentReport{}, err
	}

	if p.mirror {
		for _, artifact := range []string{wavName, name + ".txt", name + ".csv"} {
			if _, err := p.store.Mirror(ctx, artifact); err != nil {
				p.logger.Warn("S3 mirror failed",
					slog.String("artifact", artifact),
					slog.String("error", err.Error()),
				)
			}
		}
	}

	toMs := func(samples int) float64 {
		return float64(samples) / float64(rec.SampleRate) * 1000
	}
	return SegmentReport{
		ID:                name,
		DurationSeconds:   rec.Seconds(seg.Length()),
		WordCount:         seg.WordCount,
		Text:              text,
		BelowMinimums:     seg.BelowMinimums,
		LeadingSilenceMs:  toMs(seg.LeadingSilence),
		TrailingSilenceMs: toMs(seg.TrailingSilence),
	}, nil
}
