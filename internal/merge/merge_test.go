package merge

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SALT-UWB/dysarthric-TTS/internal/alignment"
	"github.com/SALT-UWB/dysarthric-TTS/internal/audio"
	"github.com/SALT-UWB/dysarthric-TTS/internal/storage"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// writeTriple materializes one segment triple in dir. Each word gets one
// alignment row of 1000 samples, and the wav holds words*1000 samples.
func writeTriple(t *testing.T, dir, stem, text string, words []string) {
	t.Helper()

	samples := make([]int, len(words)*1000)
	for i := range samples {
		samples[i] = i
	}
	require.NoError(t, audio.WriteFile(filepath.Join(dir, stem+".wav"), samples, 24000, 16))
	require.NoError(t, os.WriteFile(filepath.Join(dir, stem+".txt"), []byte(text), 0o644))

	rows := make([]alignment.Row, len(words))
	for i, w := range words {
		rows[i] = alignment.Row{Begin: i * 1000, Duration: 1000, Label: "a", Token: i, Ort: w}
	}
	var buf bytes.Buffer
	require.NoError(t, alignment.Encode(&buf, rows, ';'))
	require.NoError(t, os.WriteFile(filepath.Join(dir, stem+".csv"), buf.Bytes(), 0o644))
}

func newTestMerger(t *testing.T, inputDir, outputDir string) *Merger {
	t.Helper()
	store, err := storage.NewLocalStore(outputDir)
	require.NoError(t, err)
	return NewMerger(inputDir, store, ';', testLogger())
}

func TestBatches(t *testing.T) {
	mk := func(counts ...int) []piece {
		out := make([]piece, len(counts))
		for i, n := range counts {
			out[i] = piece{cleanWords: make([]string, n)}
		}
		return out
	}

	t.Run("grows until five words", func(t *testing.T) {
		got := batches(mk(2, 2, 2, 5))
		require.Len(t, got, 2)
		assert.Len(t, got[0], 3)
		assert.Len(t, got[1], 1)
	})

	t.Run("absorbs short remainder", func(t *testing.T) {
		// 5 words would close the batch, but the trailing 3 words are
		// below the standalone minimum and get pulled in.
		got := batches(mk(5, 3))
		require.Len(t, got, 1)
		assert.Len(t, got[0], 2)
	})

	t.Run("four word remainder stands alone", func(t *testing.T) {
		got := batches(mk(5, 4))
		require.Len(t, got, 2)
	})

	t.Run("single short group still emitted", func(t *testing.T) {
		got := batches(mk(2))
		require.Len(t, got, 1)
		assert.Len(t, got[0], 1)
	})
}

func TestMerger_Run(t *testing.T) {
	inputDir, outputDir := t.TempDir(), t.TempDir()
	writeTriple(t, inputDir, "AVPEPUDEA0001_001", "hola mundo.", []string{"hola", "mundo"})
	writeTriple(t, inputDir, "AVPEPUDEA0001_002", "Bueno, pues si.", []string{"Bueno", "pues", "si"})

	written, err := newTestMerger(t, inputDir, outputDir).Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, written)

	name := "AVPEPUDEA0001_hola_mundo_Bueno_pues_si"
	for _, ext := range []string{".wav", ".txt", ".csv"} {
		assert.FileExists(t, filepath.Join(outputDir, name+ext))
	}

	// Audio is the concatenation of both segments.
	info, err := audio.ReadInfo(filepath.Join(outputDir, name+".wav"))
	require.NoError(t, err)
	assert.Equal(t, 5000, info.TotalSamples)

	// Texts are joined with a single space.
	text, err := os.ReadFile(filepath.Join(outputDir, name+".txt"))
	require.NoError(t, err)
	assert.Equal(t, "hola mundo. Bueno, pues si.", string(text))

	// The second segment's rows are shifted by the first segment's length.
	rows, err := alignment.Load(filepath.Join(outputDir, name+".csv"), ';')
	require.NoError(t, err)
	require.Len(t, rows, 5)
	assert.Equal(t, 0, rows[0].Begin)
	assert.Equal(t, 2000, rows[2].Begin)
	assert.Equal(t, 4000, rows[4].Begin)
}

func TestMerger_Run_GroupsByPrefix(t *testing.T) {
	inputDir, outputDir := t.TempDir(), t.TempDir()
	writeTriple(t, inputDir, "spk1_001", "uno dos tres cuatro cinco.", []string{"uno", "dos", "tres", "cuatro", "cinco"})
	writeTriple(t, inputDir, "spk2_001", "seis siete ocho nueve diez.", []string{"seis", "siete", "ocho", "nueve", "diez"})

	written, err := newTestMerger(t, inputDir, outputDir).Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, written)

	assert.FileExists(t, filepath.Join(outputDir, "spk1_uno_dos_tres_cuatro_cinco.wav"))
	assert.FileExists(t, filepath.Join(outputDir, "spk2_seis_siete_ocho_nueve_diez.wav"))
}

func TestMerger_Run_SkipsIncompleteTriples(t *testing.T) {
	inputDir, outputDir := t.TempDir(), t.TempDir()
	writeTriple(t, inputDir, "spk1_001", "uno dos tres cuatro cinco.", []string{"uno", "dos", "tres", "cuatro", "cinco"})
	writeTriple(t, inputDir, "spk1_002", "seis siete.", []string{"seis", "siete"})
	require.NoError(t, os.Remove(filepath.Join(inputDir, "spk1_002.txt")))

	written, err := newTestMerger(t, inputDir, outputDir).Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, written)
	assert.FileExists(t, filepath.Join(outputDir, "spk1_uno_dos_tres_cuatro_cinco.wav"))
}

func TestCleanWords(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "seg.txt")
	require.NoError(t, os.WriteFile(path, []byte("Bueno, pues... el-perro? !\n"), 0o644))

	words, err := cleanWords(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"Bueno", "pues", "elperro"}, words)
}
