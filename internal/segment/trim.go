package segment

import (
	"fmt"

	"github.com/SALT-UWB/dysarthric-TTS/internal/alignment"
)

// trim measures the pause extents touching the segment edges and, when
// trimming is enabled, crops the excess above MaxSilenceMs on each side.
// If removing the full excess would push the segment below MinDuration the
// removal is scaled down proportionally, with the integer remainder
// assigned to the trailing side. Returns ok=false when cropping collapses
// the segment to zero or negative length; such segments produce no
// artifacts. The note, when non-empty, is a warning for the caller to log.
func trim(rec Recording, seg Segment, p Params) (Segment, bool, string) {
	seg.LeadingSilence = leadingSilence(rec, p, seg.Start)
	seg.TrailingSilence = trailingSilence(rec, p, seg.End)
	seg.ActualStart, seg.ActualEnd = seg.Start, seg.End

	if p.MaxSilenceMs < 0 {
		return seg, true, ""
	}

	maxSilenceSamples := int(p.MaxSilenceMs * float64(rec.SampleRate) / 1000)
	leadingExcess := max(0, seg.LeadingSilence-maxSilenceSamples)
	trailingExcess := max(0, seg.TrailingSilence-maxSilenceSamples)
	totalExcess := leadingExcess + trailingExcess

	minSamples := int(p.MinDuration * float64(rec.SampleRate))
	removable := max(0, (seg.End-seg.Start)-minSamples)

	note := ""
	leadingRemove, trailingRemove := leadingExcess, trailingExcess
	if totalExcess > removable {
		// Not all excess silence fits; remove as much as the floor allows.
		scale := float64(removable) / float64(totalExcess)
		leadingRemove = int(float64(leadingExcess) * scale)
		trailingRemove = removable - leadingRemove
		seg.PartialTrim = true
		note = fmt.Sprintf("partial silence crop to maintain %.2fs", p.MinDuration)
	}

	seg.ActualStart = seg.Start + leadingRemove
	seg.ActualEnd = seg.End - trailingRemove

	if seg.ActualStart >= seg.ActualEnd {
		return seg, false, "skipped: cropped to zero length"
	}
	return seg, true, note
}

// leadingSilence returns the pause extent at the left edge of a span, in
// samples, or 0 when the row covering the edge is not a pause.
func leadingSilence(rec Recording, p Params, start int) int {
	row, ok := alignment.RowAtStart(rec.Rows, start)
	if !ok || row.Label != p.PauseLabel {
		return 0
	}
	return row.End() - start
}

// trailingSilence returns the pause extent at the right edge of a span.
func trailingSilence(rec Recording, p Params, end int) int {
	row, ok := alignment.RowAtEnd(rec.Rows, end)
	if !ok || row.Label != p.PauseLabel {
		return 0
	}
	return end - row.Begin
}
