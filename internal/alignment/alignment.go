// Package alignment models the phone-level forced-alignment table of a
// recording and provides interval queries over it.
//
// Rows are ordered by begin offset. All queries take an explicit row slice
// and a half-open [start, end) sample bound; there is no hidden table state.
package alignment

import (
	"errors"
	"fmt"
)

// NoToken marks a row that does not belong to any transcript word,
// such as a pause.
const NoToken = -1

// Row is a single forced-alignment entry.
type Row struct {
	// Begin is the sample offset where the phone starts.
	Begin int
	// Duration is the phone length in samples.
	Duration int
	// Label is the phone symbol, or the pause marker for silence.
	Label string
	// Token indexes the owning word in the source transcript, or NoToken.
	Token int
	// Ort is the orthographic form carried by the aligner, possibly empty.
	Ort string
}

// End returns the exclusive end offset of the row in samples.
func (r Row) End() int {
	return r.Begin + r.Duration
}

// ErrExceedsAudio is returned when the alignment extends past the audio.
var ErrExceedsAudio = errors.New("alignment: extent exceeds audio length")

// Validate checks that no row reaches past totalSamples.
// A violation is fatal for the recording and must not be skipped silently.
func Validate(rows []Row, totalSamples int) error {
	maxEnd := 0
	for _, r := range rows {
		if r.End() > maxEnd {
			maxEnd = r.End()
		}
	}
	if maxEnd > totalSamples {
		return fmt.Errorf("%w (%d > %d)", ErrExceedsAudio, maxEnd, totalSamples)
	}
	return nil
}

// Overlapping returns the rows intersecting [start, end).
func Overlapping(rows []Row, start, end int) []Row {
	var out []Row
	for _, r := range rows {
		if r.End() > start && r.Begin < end {
			out = append(out, r)
		}
	}
	return out
}

// Stats computes the word count and speech duration of [start, end).
// Words are counted as unique non-negative token ids among overlapping rows;
// speech duration sums the overlap of rows whose label is not pauseLabel.
func Stats(rows []Row, start, end, sampleRate int, pauseLabel string) (words int, speechSeconds float64) {
	seen := make(map[int]struct{})
	speechSamples := 0

	for _, r := range Overlapping(rows, start, end) {
		if r.Token >= 0 {
			seen[r.Token] = struct{}{}
		}
		if r.Label != pauseLabel {
			s := max(r.Begin, start)
			e := min(r.End(), end)
			if e > s {
				speechSamples += e - s
			}
		}
	}

	return len(seen), float64(speechSamples) / float64(sampleRate)
}

// RowAtStart returns the first row covering position pos, if any.
func RowAtStart(rows []Row, pos int) (Row, bool) {
	for _, r := range rows {
		if r.Begin <= pos && r.End() > pos {
			return r, true
		}
	}
	return Row{}, false
}

// RowAtEnd returns the last row touching position pos from the left, if any.
func RowAtEnd(rows []Row, pos int) (Row, bool) {
	for i := len(rows) - 1; i >= 0; i-- {
		r := rows[i]
		if r.Begin < pos && r.End() >= pos {
			return r, true
		}
	}
	return Row{}, false
}

// Clip selects the rows overlapping [start, end), clips them to the bound,
// and shifts begins to be relative to start. Rows whose clipped duration
// collapses to zero are dropped.
func Clip(rows []Row, start, end int) []Row {
	var out []Row
	for _, r := range Overlapping(rows, start, end) {
		s := max(r.Begin, start)
		e := min(r.End(), end)
		if e-s <= 0 {
			continue
		}
		out = append(out, Row{
			Begin:    s - start,
			Duration: e - s,
			Label:    r.Label,
			Token:    r.Token,
			Ort:      r.Ort,
		})
	}
	return out
}
