// Package segment implements the sentence segmentation engine.
//
// Given a recording's forced alignment and transcript, it classifies pause
// rows into cut candidates, recursively refines over-long spans, repairs
// spans failing minimum constraints, optionally trims edge silence, and
// reconstructs per-segment text. The engine is a pure function of its
// inputs: it never logs or touches the filesystem, and all findings are
// returned on the Result for callers to report.
package segment

import (
	"fmt"

	"github.com/SALT-UWB/dysarthric-TTS/internal/alignment"
)

// Recording is the read-only input of the engine.
type Recording struct {
	// SampleRate is the audio sampling rate in Hz.
	SampleRate int
	// TotalSamples is the recording length in samples.
	TotalSamples int
	// Words is the whitespace-tokenized source transcript, index-aligned
	// with alignment token ids.
	Words []string
	// Rows is the forced-alignment table, ordered by begin offset.
	Rows []alignment.Row
}

// Seconds converts a sample count to seconds at the recording's rate.
func (r Recording) Seconds(samples int) float64 {
	return float64(samples) / float64(r.SampleRate)
}

// Params holds the segmentation constraints. All durations are in seconds.
type Params struct {
	// PauseThreshold is the minimum pause length for a plain pause cut.
	PauseThreshold float64
	// MaxSentenceLength caps the duration of any emitted segment.
	MaxSentenceLength float64
	// MinDuration is the floor a trimmed segment may not fall below.
	MinDuration float64
	// MinSpeechDuration is the minimum non-pause duration per segment.
	MinSpeechDuration float64
	// MinWordCount is the minimum number of distinct words per segment.
	MinWordCount int
	// MaxSilenceMs bounds leading/trailing silence; negative disables trimming.
	MaxSilenceMs float64
	// PauseLabel is the alignment label marking silence rows.
	PauseLabel string
}

// DefaultParams returns the segmentation defaults.
func DefaultParams() Params {
	return Params{
		PauseThreshold:    1.0,
		MaxSentenceLength: 15.0,
		MinDuration:       2.0,
		MinSpeechDuration: 1.0,
		MinWordCount:      2,
		MaxSilenceMs:      -1,
		PauseLabel:        "<p:>",
	}
}

// Segment is a finalized, immutable span of the recording.
type Segment struct {
	// Start and End bound the committed span before trimming.
	Start int
	End   int
	// ActualStart and ActualEnd are the effective bounds after silence
	// trimming. They equal Start/End when trimming is disabled or removed
	// nothing. Both pairs are kept for silence reporting.
	ActualStart int
	ActualEnd   int
	// HardEnd is true when the right edge is a sentence boundary or the
	// end of the recording.
	HardEnd bool
	// WordCount and SpeechSeconds are computed over [Start, End).
	WordCount     int
	SpeechSeconds float64
	// BelowMinimums marks the tolerated exception: the segment fails the
	// word/speech minimums but merging it away would have exceeded
	// MaxSentenceLength.
	BelowMinimums bool
	// LeadingSilence and TrailingSilence are the pause extents touching
	// the original edges, in samples, measured before any trimming.
	LeadingSilence  int
	TrailingSilence int
	// PartialTrim is true when edge silence could only be removed in part
	// to preserve MinDuration.
	PartialTrim bool
}

// Length returns the effective segment length in samples.
func (s Segment) Length() int {
	return s.ActualEnd - s.ActualStart
}

// Result is the outcome of segmenting one recording.
type Result struct {
	// Segments are the surviving segments in start order.
	Segments []Segment
	// Dropped counts segments discarded because trimming collapsed them.
	Dropped []Segment
	// Warnings carries human-readable notes for the caller to log.
	Warnings []string
}

// Split runs the full engine over a recording: classify cut points, refine
// over-long units, repair under-constrained units, then trim edge silence.
func Split(rec Recording, p Params) (Result, error) {
	if err := alignment.Validate(rec.Rows, rec.TotalSamples); err != nil {
		return Result{}, err
	}

	cuts := Cuts(rec, p)
	units := refine(rec, cuts, p)
	segments := repair(rec, units, p)

	var res Result
	for i := range segments {
		seg, ok, note := trim(rec, segments[i], p)
		if note != "" {
			res.Warnings = append(res.Warnings, fmt.Sprintf("segment %03d: %s", i+1, note))
		}
		if !ok {
			res.Dropped = append(res.Dropped, seg)
			continue
		}
		res.Segments = append(res.Segments, seg)
	}

	return res, nil
}
