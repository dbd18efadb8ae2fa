// Package audio provides sample-level WAV reading and writing.
//
// Recordings are mono PCM; all positions and lengths are expressed in
// samples at the file's native rate so downstream slicing stays exact.
package audio

import (
	"errors"
	"fmt"
	"os"

	gaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

// Static errors for audio decoding.
var (
	// ErrInvalidWAV is returned when a file is not a decodable WAV file.
	ErrInvalidWAV = errors.New("audio: invalid WAV file")
	// ErrNotMono is returned when a recording has more than one channel.
	ErrNotMono = errors.New("audio: expected mono recording")
)

// Info describes a WAV file header.
type Info struct {
	// SampleRate is the declared sampling rate in Hz.
	SampleRate int
	// TotalSamples is the number of PCM frames in the data chunk.
	TotalSamples int
	// BitDepth is the PCM bit depth.
	BitDepth int
}

// Seconds returns the recording length in seconds.
func (i Info) Seconds() float64 {
	if i.SampleRate == 0 {
		return 0
	}
	return float64(i.TotalSamples) / float64(i.SampleRate)
}

// ReadInfo reads the WAV header of path without decoding the samples.
func ReadInfo(path string) (Info, error) {
	f, err := os.Open(path)
	if err != nil {
		return Info{}, fmt.Errorf("open wav: %w", err)
	}
	defer func() { _ = f.Close() }()

	d := wav.NewDecoder(f)
	if !d.IsValidFile() {
		return Info{}, fmt.Errorf("%s: %w", path, ErrInvalidWAV)
	}
	if d.NumChans != 1 {
		return Info{}, fmt.Errorf("%s has %d channels: %w", path, d.NumChans, ErrNotMono)
	}

	if err := d.FwdToPCM(); err != nil {
		return Info{}, fmt.Errorf("%s: %w", path, ErrInvalidWAV)
	}

	bytesPerFrame := int(d.BitDepth) / 8 * int(d.NumChans)
	if bytesPerFrame == 0 {
		return Info{}, fmt.Errorf("%s: %w", path, ErrInvalidWAV)
	}

	return Info{
		SampleRate:   int(d.SampleRate),
		TotalSamples: int(d.PCMLen()) / bytesPerFrame,
		BitDepth:     int(d.BitDepth),
	}, nil
}

// ReadSamples decodes the full PCM content of path into integer samples.
func ReadSamples(path string) ([]int, Info, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, Info{}, fmt.Errorf("open wav: %w", err)
	}
	defer func() { _ = f.Close() }()

	d := wav.NewDecoder(f)
	if !d.IsValidFile() {
		return nil, Info{}, fmt.Errorf("%s: %w", path, ErrInvalidWAV)
	}

	buf, err := d.FullPCMBuffer()
	if err != nil {
		return nil, Info{}, fmt.Errorf("decode wav %s: %w", path, err)
	}
	if buf.Format.NumChannels != 1 {
		return nil, Info{}, fmt.Errorf("%s has %d channels: %w", path, buf.Format.NumChannels, ErrNotMono)
	}

	info := Info{
		SampleRate:   buf.Format.SampleRate,
		TotalSamples: len(buf.Data),
		BitDepth:     int(d.BitDepth),
	}
	return buf.Data, info, nil
}

// WriteFile encodes samples as a mono PCM WAV file at path.
// bitDepth should match the source recording so slices round-trip losslessly.
func WriteFile(path string, samples []int, sampleRate, bitDepth int) error {
	if bitDepth == 0 {
		bitDepth = 16
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create wav: %w", err)
	}

	enc := wav.NewEncoder(f, sampleRate, bitDepth, 1, 1)
	buf := &gaudio.IntBuffer{
		Data:           samples,
		Format:         &gaudio.Format{NumChannels: 1, SampleRate: sampleRate},
		SourceBitDepth: bitDepth,
	}

	if err := enc.Write(buf); err != nil {
		_ = enc.Close()
		_ = f.Close()
		return fmt.Errorf("encode wav: %w", err)
	}
	if err := enc.Close(); err != nil {
		_ = f.Close()
		return fmt.Errorf("finalize wav: %w", err)
	}
	return f.Close()
}
