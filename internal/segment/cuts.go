package segment

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/SALT-UWB/dysarthric-TTS/internal/alignment"
)

// CutKind classifies a cut candidate. Kinds are mutually exclusive per pause
// row; the strongest applicable one wins.
type CutKind int

const (
	// KindSentence marks a pause followed by an uppercase-initial word.
	KindSentence CutKind = iota
	// KindComma marks a pause preceded by a word carrying a comma.
	KindComma
	// KindPause marks a pause longer than the configured threshold.
	KindPause
)

// String implements fmt.Stringer for logging.
func (k CutKind) String() string {
	switch k {
	case KindSentence:
		return "sentence"
	case KindComma:
		return "comma"
	case KindPause:
		return "pause"
	default:
		return "unknown"
	}
}

// Cut is a candidate split position inside a recording.
type Cut struct {
	// Sample is the midpoint of the pause row's interval.
	Sample int
	// Kind is the candidate's classification.
	Kind CutKind
}

// midpoint returns the integer midpoint of an interval, floored.
func midpoint(begin, duration int) int {
	return begin + duration/2
}

// resolveWord maps a row to its transcript word via the token id, falling
// back to the row's own orthography when the id is out of range.
func resolveWord(row alignment.Row, words []string) string {
	if row.Token >= 0 && row.Token < len(words) {
		return words[row.Token]
	}
	return row.Ort
}

// Cuts scans the pause rows of a recording and classifies each as a
// sentence boundary, a comma point, or a plain long pause. Rows matching
// none of the criteria yield no candidate.
func Cuts(rec Recording, p Params) []Cut {
	var cuts []Cut

	for i, row := range rec.Rows {
		if row.Label != p.PauseLabel {
			continue
		}

		switch {
		case startsSentence(rec.Rows[i+1:], rec.Words, p.PauseLabel):
			cuts = append(cuts, Cut{Sample: midpoint(row.Begin, row.Duration), Kind: KindSentence})
		case followsComma(rec.Rows[:i], rec.Words, p.PauseLabel):
			cuts = append(cuts, Cut{Sample: midpoint(row.Begin, row.Duration), Kind: KindComma})
		case rec.Seconds(row.Duration) > p.PauseThreshold:
			cuts = append(cuts, Cut{Sample: midpoint(row.Begin, row.Duration), Kind: KindPause})
		}
	}

	return cuts
}

// startsSentence reports whether the next spoken word after a pause begins
// with an uppercase letter.
func startsSentence(after []alignment.Row, words []string, pauseLabel string) bool {
	for _, row := range after {
		if row.Label == pauseLabel {
			continue
		}
		word := resolveWord(row, words)
		if word == "" {
			return false
		}
		first, _ := utf8.DecodeRuneInString(word)
		return unicode.IsUpper(first)
	}
	return false
}

// followsComma reports whether the last spoken word before a pause carries
// a comma.
func followsComma(before []alignment.Row, words []string, pauseLabel string) bool {
	for i := len(before) - 1; i >= 0; i-- {
		row := before[i]
		if row.Label == pauseLabel {
			continue
		}
		return strings.ContainsRune(resolveWord(row, words), ',')
	}
	return false
}
