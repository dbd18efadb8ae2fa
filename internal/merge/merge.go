// Package merge regroups emitted segment triples into larger units of
// roughly five words each, concatenating audio, text and alignment.
package merge

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/SALT-UWB/dysarthric-TTS/internal/alignment"
	"github.com/SALT-UWB/dysarthric-TTS/internal/audio"
	"github.com/SALT-UWB/dysarthric-TTS/internal/storage"
)

// Batching thresholds: batches grow until they hold at least targetWords
// words, except that a trailing remainder of fewer than minRemainder words
// is absorbed into the current batch instead of standing alone.
const (
	targetWords  = 5
	minRemainder = 4
)

var nonAlphanumeric = regexp.MustCompile(`[^a-zA-Z0-9]`)

// piece is one source segment triple queued for merging.
type piece struct {
	wavPath    string
	txtPath    string
	csvPath    string
	cleanWords []string
}

// Merger concatenates consecutive segment triples per source prefix.
type Merger struct {
	inputDir  string
	store     storage.Store
	delimiter rune
	logger    *slog.Logger
}

// NewMerger creates a Merger reading triples from inputDir and writing the
// merged triples through store.
func NewMerger(inputDir string, store storage.Store, delimiter rune, logger *slog.Logger) *Merger {
	if logger == nil {
		logger = slog.Default()
	}
	return &Merger{inputDir: inputDir, store: store, delimiter: delimiter, logger: logger}
}

// Run merges all segment triples found in the input directory and returns
// the number of merged triples written.
func (m *Merger) Run(ctx context.Context) (int, error) {
	groups, err := m.collect()
	if err != nil {
		return 0, err
	}

	prefixes := make([]string, 0, len(groups))
	for prefix := range groups {
		prefixes = append(prefixes, prefix)
	}
	sort.Strings(prefixes)

	written := 0
	for _, prefix := range prefixes {
		pieces := groups[prefix]
		m.logger.Info("merging prefix",
			slog.String("prefix", prefix),
			slog.Int("segments", len(pieces)),
		)

		for _, batch := range batches(pieces) {
			if err := m.writeBatch(ctx, prefix, batch); err != nil {
				return written, fmt.Errorf("merge %s: %w", prefix, err)
			}
			written++
		}
	}

	return written, nil
}

// collect scans the input directory and groups complete triples by their
// source prefix (the stem minus the trailing _NNN index).
func (m *Merger) collect() (map[string][]piece, error) {
	wavs, err := filepath.Glob(filepath.Join(m.inputDir, "*.wav"))
	if err != nil {
		return nil, fmt.Errorf("merge: list segments: %w", err)
	}
	sort.Strings(wavs)

	groups := make(map[string][]piece)
	for _, wavPath := range wavs {
		stem := strings.TrimSuffix(filepath.Base(wavPath), ".wav")
		idx := strings.LastIndex(stem, "_")
		if idx < 0 {
			m.logger.Warn("segment name has no index suffix, skipping",
				slog.String("file", filepath.Base(wavPath)),
			)
			continue
		}
		prefix := stem[:idx]

		txtPath := filepath.Join(m.inputDir, stem+".txt")
		csvPath := filepath.Join(m.inputDir, stem+".csv")
		if !exists(txtPath) || !exists(csvPath) {
			continue
		}

		words, err := cleanWords(txtPath)
		if err != nil {
			return nil, err
		}
		if len(words) == 0 {
			continue
		}

		groups[prefix] = append(groups[prefix], piece{
			wavPath:    wavPath,
			txtPath:    txtPath,
			csvPath:    csvPath,
			cleanWords: words,
		})
	}

	return groups, nil
}

// batches splits a prefix's pieces into consecutive runs of at least
// targetWords words, absorbing a too-short trailing remainder.
func batches(pieces []piece) [][]piece {
	var out [][]piece

	i := 0
	for i < len(pieces) {
		var batch []piece
		words := 0

		for i < len(pieces) {
			batch = append(batch, pieces[i])
			words += len(pieces[i].cleanWords)
			i++

			if words < targetWords {
				continue
			}
			remaining := 0
			for _, p := range pieces[i:] {
				remaining += len(p.cleanWords)
			}
			if remaining > 0 && remaining < minRemainder {
				continue
			}
			break
		}

		out = append(out, batch)
	}

	return out
}

// writeBatch concatenates one batch into a single triple named from the
// prefix and the batch's filename-safe words.
func (m *Merger) writeBatch(ctx context.Context, prefix string, batch []piece) error {
	var (
		samples    []int
		texts      []string
		rows       []alignment.Row
		nameWords  []string
		sampleRate int
		bitDepth   int
		offset     int
	)

	for _, p := range batch {
		pcm, info, err := audio.ReadSamples(p.wavPath)
		if err != nil {
			return err
		}
		if sampleRate == 0 {
			sampleRate, bitDepth = info.SampleRate, info.BitDepth
		}
		samples = append(samples, pcm...)

		text, err := os.ReadFile(p.txtPath) // #nosec G304 - enumerated from input dir
		if err != nil {
			return fmt.Errorf("merge: %w", err)
		}
		texts = append(texts, strings.TrimSpace(string(text)))

		segRows, err := alignment.Load(p.csvPath, m.delimiter)
		if err != nil {
			return err
		}
		for _, r := range segRows {
			r.Begin += offset
			rows = append(rows, r)
		}

		nameWords = append(nameWords, p.cleanWords...)
		offset += len(pcm)
	}

	name := prefix + "_" + strings.Join(nameWords, "_")

	if err := audio.WriteFile(m.store.Path(name+".wav"), samples, sampleRate, bitDepth); err != nil {
		return err
	}
	if _, err := m.store.Save(ctx, name+".txt", strings.NewReader(strings.Join(texts, " "))); err != nil {
		return err
	}

	var buf bytes.Buffer
	if err := alignment.Encode(&buf, rows, m.delimiter); err != nil {
		return err
	}
	if _, err := m.store.Save(ctx, name+".csv", &buf); err != nil {
		return err
	}

	m.logger.Info("merged segment written",
		slog.String("name", name),
		slog.Int("words", len(nameWords)),
	)
	return nil
}

// cleanWords reads a segment text and reduces each word to its
// filename-safe characters, dropping words with none left.
func cleanWords(txtPath string) ([]string, error) {
	content, err := os.ReadFile(txtPath) // #nosec G304 - enumerated from input dir
	if err != nil {
		return nil, fmt.Errorf("merge: %w", err)
	}

	var words []string
	for _, w := range strings.Fields(string(content)) {
		if clean := nonAlphanumeric.ReplaceAllString(w, ""); clean != "" {
			words = append(words, clean)
		}
	}
	return words, nil
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
