package segment

import (
	"github.com/SALT-UWB/dysarthric-TTS/internal/alignment"
)

// repair walks the refined units in order and merges those failing the
// minimum word/speech constraints into their left neighbor, as long as the
// merged span stays within MaxSentenceLength. A failing unit that cannot be
// merged is committed anyway and flagged BelowMinimums; this is the one
// tolerated invariant exception. A failing first unit is absorbed into its
// right neighbor in a final cleanup pass.
//
// On any merge the surviving segment takes the absorbed unit's boundary
// flag: the right edge of the merged span is the right edge of the unit
// that was absorbed, so its flag is the one that still describes an edge.
func repair(rec Recording, units []unit, p Params) []Segment {
	var committed []unit

	for _, u := range units {
		if meetsMinimums(rec, p, u.start, u.end) {
			committed = append(committed, u)
			continue
		}

		if len(committed) == 0 {
			committed = append(committed, u)
			continue
		}

		last := committed[len(committed)-1]
		if rec.Seconds(u.end-last.start) <= p.MaxSentenceLength {
			committed[len(committed)-1] = unit{start: last.start, end: u.end, hardEnd: u.hardEnd}
		} else {
			// Merging would exceed the length cap; keep the unit standalone.
			committed = append(committed, u)
		}
	}

	// A failing head unit had no left neighbor; absorb the second unit.
	if len(committed) > 1 && !meetsMinimums(rec, p, committed[0].start, committed[0].end) {
		second := committed[1]
		committed[0] = unit{start: committed[0].start, end: second.end, hardEnd: second.hardEnd}
		committed = append(committed[:1], committed[2:]...)
	}

	segments := make([]Segment, 0, len(committed))
	for _, u := range committed {
		words, speech := alignment.Stats(rec.Rows, u.start, u.end, rec.SampleRate, p.PauseLabel)
		segments = append(segments, Segment{
			Start:         u.start,
			End:           u.end,
			ActualStart:   u.start,
			ActualEnd:     u.end,
			HardEnd:       u.hardEnd,
			WordCount:     words,
			SpeechSeconds: speech,
			BelowMinimums: words < p.MinWordCount || speech < p.MinSpeechDuration,
		})
	}
	return segments
}

// meetsMinimums checks the word and speech floors over [start, end).
func meetsMinimums(rec Recording, p Params, start, end int) bool {
	words, speech := alignment.Stats(rec.Rows, start, end, rec.SampleRate, p.PauseLabel)
	return words >= p.MinWordCount && speech >= p.MinSpeechDuration
}
