package segment

import (
	"strings"

	"github.com/SALT-UWB/dysarthric-TTS/internal/alignment"
)

// Terminal and clause punctuation recognized at word ends.
const punctuation = ".,!?;:"

// wordGapSeconds is the silent gap between two word blocks above which a
// comma is inserted after the first word.
const wordGapSeconds = 0.250

// wordBlock is the merged extent of all clipped rows sharing a token id.
type wordBlock struct {
	token    int
	begin    int
	duration int
	ort      string
}

// Rows returns the segment's alignment rows clipped to its effective bounds
// and shifted to be relative to ActualStart.
func (s Segment) Rows(rec Recording) []alignment.Row {
	return alignment.Clip(rec.Rows, s.ActualStart, s.ActualEnd)
}

// Samples slices the recording's waveform at the segment's effective bounds.
func (s Segment) Samples(samples []int) []int {
	return samples[s.ActualStart:s.ActualEnd]
}

// Text reconstructs the segment's transcript from its clipped alignment:
// token ids resolve to transcript words (orthography as fallback), commas
// are derived from long inter-word gaps and soft segment ends, and the text
// always terminates in punctuation, defaulting to a period.
func (s Segment) Text(rec Recording) string {
	blocks := collectWordBlocks(s.Rows(rec))

	words := make([]string, 0, len(blocks))
	for i, b := range blocks {
		word := b.ort
		if b.token >= 0 && b.token < len(rec.Words) {
			word = rec.Words[b.token]
		}

		if i+1 < len(blocks) {
			gap := blocks[i+1].begin - (b.begin + b.duration)
			if rec.Seconds(gap) >= wordGapSeconds && !endsWithPunctuation(word) {
				word += ","
			}
		}
		words = append(words, word)
	}

	text := strings.Join(words, " ")
	if !s.HardEnd && text != "" && !endsWithPunctuation(text) {
		text += ","
	}
	if text != "" && !endsWithPunctuation(text) {
		text += "."
	}
	return text
}

// collectWordBlocks groups word rows by token in order of first appearance,
// taking the earliest begin and the summed duration per token.
func collectWordBlocks(rows []alignment.Row) []wordBlock {
	var blocks []wordBlock
	index := make(map[int]int)

	for _, r := range rows {
		if r.Token < 0 {
			continue
		}
		if i, ok := index[r.Token]; ok {
			blocks[i].duration += r.Duration
			if r.Begin < blocks[i].begin {
				blocks[i].begin = r.Begin
			}
			continue
		}
		index[r.Token] = len(blocks)
		blocks = append(blocks, wordBlock{
			token:    r.Token,
			begin:    r.Begin,
			duration: r.Duration,
			ort:      r.Ort,
		})
	}

	return blocks
}

// endsWithPunctuation reports whether s ends in a recognized punctuation mark.
func endsWithPunctuation(s string) bool {
	return s != "" && strings.ContainsRune(punctuation, rune(s[len(s)-1]))
}
