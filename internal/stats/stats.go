// Package stats validates emitted triples and computes corpus statistics
// split by speaker group (healthy controls vs Parkinson's disease).
package stats

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/SALT-UWB/dysarthric-TTS/internal/audio"
)

// MissingFiles records a segment stem whose triple is incomplete.
type MissingFiles struct {
	Stem    string   `json:"stem"`
	Missing []string `json:"missing"`
}

// TripleReport is the outcome of validating an output directory.
type TripleReport struct {
	Valid      []string       `json:"valid"`
	Incomplete []MissingFiles `json:"incomplete,omitempty"`
}

// GroupStats aggregates one speaker group.
type GroupStats struct {
	Recordings      int     `json:"recordings"`
	Sentences       int     `json:"sentences"`
	Words           int     `json:"words"`
	DurationSeconds float64 `json:"duration_sec"`
}

// Report holds the corpus statistics for the whole set and per group.
type Report struct {
	Total GroupStats `json:"total"`
	HC    GroupStats `json:"hc"`
	PD    GroupStats `json:"pd"`
}

// ValidateTriples checks that every segment stem in dir has all three of
// its wav, txt and csv files. Stems are discovered from any of the three
// extensions, so an orphaned txt is reported too.
func ValidateTriples(dir string) (*TripleReport, error) {
	stems := make(map[string]map[string]bool)
	for _, ext := range []string{".wav", ".txt", ".csv"} {
		matches, err := filepath.Glob(filepath.Join(dir, "*"+ext))
		if err != nil {
			return nil, fmt.Errorf("stats: list %s files: %w", ext, err)
		}
		for _, m := range matches {
			stem := strings.TrimSuffix(filepath.Base(m), ext)
			if stems[stem] == nil {
				stems[stem] = make(map[string]bool)
			}
			stems[stem][ext] = true
		}
	}

	report := &TripleReport{}
	for stem, present := range stems {
		var missing []string
		for _, ext := range []string{".wav", ".txt", ".csv"} {
			if !present[ext] {
				missing = append(missing, ext)
			}
		}
		if len(missing) == 0 {
			report.Valid = append(report.Valid, stem)
		} else {
			report.Incomplete = append(report.Incomplete, MissingFiles{Stem: stem, Missing: missing})
		}
	}

	sort.Strings(report.Valid)
	sort.Slice(report.Incomplete, func(i, j int) bool {
		return report.Incomplete[i].Stem < report.Incomplete[j].Stem
	})
	return report, nil
}

// isHC reports whether a stem belongs to the healthy-control group
// (young or elderly controls).
func isHC(stem string) bool {
	upper := strings.ToUpper(stem)
	return strings.Contains(upper, "YHC") || strings.Contains(upper, "EHC")
}

// isPD reports whether a stem belongs to the Parkinson's disease group.
func isPD(stem string) bool {
	return strings.Contains(strings.ToUpper(stem), "PD") && !isHC(stem)
}

// sourceStem strips the trailing segment index so segments of one source
// recording count as a single recording.
func sourceStem(stem string) string {
	if idx := strings.LastIndex(stem, "_"); idx >= 0 {
		return stem[:idx]
	}
	return stem
}

// Compute walks the valid stems of dir and accumulates recording counts,
// sentence counts, word counts and audio duration per speaker group.
func Compute(dir string, stems []string, logger *slog.Logger) (*Report, error) {
	if logger == nil {
		logger = slog.Default()
	}

	report := &Report{}
	sources := map[string]map[string]bool{"total": {}, "hc": {}, "pd": {}}

	for _, stem := range stems {
		info, err := audio.ReadInfo(filepath.Join(dir, stem+".wav"))
		if err != nil {
			return nil, fmt.Errorf("stats: %s: %w", stem, err)
		}

		text, err := os.ReadFile(filepath.Join(dir, stem+".txt")) // #nosec G304 - enumerated from output dir
		if err != nil {
			return nil, fmt.Errorf("stats: %s: %w", stem, err)
		}
		words := len(strings.Fields(string(text)))

		add := func(g *GroupStats, key string) {
			g.Sentences++
			g.Words += words
			g.DurationSeconds += info.Seconds()
			if src := sourceStem(stem); !sources[key][src] {
				sources[key][src] = true
				g.Recordings++
			}
		}

		add(&report.Total, "total")
		switch {
		case isHC(stem):
			add(&report.HC, "hc")
		case isPD(stem):
			add(&report.PD, "pd")
		}
	}

	logger.Info("corpus statistics",
		slog.Int("recordings", report.Total.Recordings),
		slog.Int("sentences", report.Total.Sentences),
		slog.Int("words", report.Total.Words),
		slog.Float64("duration_sec", report.Total.DurationSeconds),
	)
	return report, nil
}

// Save writes the report as indented JSON.
func (r *Report) Save(path string) error {
	data, err := json.MarshalIndent(r, "", "    ")
	if err != nil {
		return fmt.Errorf("stats: encode report: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("stats: write report: %w", err)
	}
	return nil
}
