package segment

import (
	"sort"

	"github.com/SALT-UWB/dysarthric-TTS/internal/alignment"
)

// unit is a half-open span [start, end) under refinement or repair.
// hardEnd is true when the right edge is a sentence boundary or the end of
// the recording; a forced interior cut leaves the left child with a soft end.
type unit struct {
	start   int
	end     int
	hardEnd bool
}

// refine partitions the recording into units no longer than
// MaxSentenceLength. It first splits at sentence boundaries, then
// subdivides over-long units at comma and pause candidates near their
// midpoints, requiring both halves to satisfy the word and speech minimums.
// When no candidate qualifies it falls back to the longest interior pause,
// and as a last resort to the arithmetic midpoint, which guarantees
// termination. The returned units are sorted by start and exactly tile
// [0, TotalSamples).
func refine(rec Recording, cuts []Cut, p Params) []unit {
	positions := map[int]struct{}{0: {}, rec.TotalSamples: {}}
	for _, c := range cuts {
		if c.Kind == KindSentence {
			positions[c.Sample] = struct{}{}
		}
	}

	hardCuts := make([]int, 0, len(positions))
	for pos := range positions {
		hardCuts = append(hardCuts, pos)
	}
	sort.Ints(hardCuts)

	var out []unit
	for i := 0; i+1 < len(hardCuts); i++ {
		out = append(out, subdivide(rec, cuts, p, unit{
			start:   hardCuts[i],
			end:     hardCuts[i+1],
			hardEnd: true,
		})...)
	}

	sort.Slice(out, func(i, j int) bool { return out[i].start < out[j].start })
	return out
}

// subdivide processes one top-level unit through an explicit worklist.
func subdivide(rec Recording, cuts []Cut, p Params, root unit) []unit {
	var out []unit
	stack := []unit{root}

	for len(stack) > 0 {
		u := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if rec.Seconds(u.end-u.start) <= p.MaxSentenceLength {
			out = append(out, u)
			continue
		}

		split, ok := constrainedSplit(rec, cuts, p, u)
		if !ok {
			split, ok = longestPauseSplit(rec, p, u)
		}
		if !ok {
			split = u.start + (u.end-u.start)/2
			if split == u.start {
				// Degenerate one-sample unit; nothing left to split.
				out = append(out, u)
				continue
			}
		}

		// Right half first so the left half is refined next iteration.
		stack = append(stack, unit{start: split, end: u.end, hardEnd: u.hardEnd})
		stack = append(stack, unit{start: u.start, end: split, hardEnd: false})
	}

	return out
}

// constrainedSplit looks for an interior comma or pause candidate, nearest
// the unit midpoint first, whose two halves both satisfy the minimum word
// and speech constraints.
func constrainedSplit(rec Recording, cuts []Cut, p Params, u unit) (int, bool) {
	var interior []Cut
	for _, c := range cuts {
		if c.Kind != KindSentence && u.start < c.Sample && c.Sample < u.end {
			interior = append(interior, c)
		}
	}

	mid := u.start + (u.end-u.start)/2
	for _, kind := range []CutKind{KindComma, KindPause} {
		var candidates []Cut
		for _, c := range interior {
			if c.Kind == kind {
				candidates = append(candidates, c)
			}
		}
		sort.SliceStable(candidates, func(i, j int) bool {
			return abs(candidates[i].Sample-mid) < abs(candidates[j].Sample-mid)
		})

		for _, c := range candidates {
			if halvesSatisfyMinimums(rec, p, u, c.Sample) {
				return c.Sample, true
			}
		}
	}

	return 0, false
}

// halvesSatisfyMinimums checks both sub-spans of a prospective split.
func halvesSatisfyMinimums(rec Recording, p Params, u unit, split int) bool {
	for _, span := range [][2]int{{u.start, split}, {split, u.end}} {
		words, speech := alignment.Stats(rec.Rows, span[0], span[1], rec.SampleRate, p.PauseLabel)
		if words < p.MinWordCount || speech < p.MinSpeechDuration {
			return false
		}
	}
	return true
}

// longestPauseSplit picks the midpoint of the longest pause row lying
// strictly inside the unit, ignoring the minimum constraints.
func longestPauseSplit(rec Recording, p Params, u unit) (int, bool) {
	best := alignment.Row{Duration: -1}
	found := false
	for _, r := range rec.Rows {
		if r.Label != p.PauseLabel || r.Begin <= u.start || r.End() >= u.end {
			continue
		}
		if r.Duration > best.Duration {
			best = r
			found = true
		}
	}
	if !found {
		return 0, false
	}
	return midpoint(best.Begin, best.Duration), true
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
