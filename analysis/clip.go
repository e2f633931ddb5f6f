package analysis

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

var (
	ErrUnsupportedWAV = errors.New("not a readable WAV file")
	ErrClipTooLong    = errors.New("clip is longer than the analysis limit")
	ErrEmptyClip      = errors.New("clip has no samples")
)

// Clip is mono audio with samples in [-1, 1]
type Clip struct {
	Samples    []float64
	SampleRate int
}

// Duration returns the clip length in seconds
func (c *Clip) Duration() float64 {
	if c.SampleRate <= 0 {
		return 0
	}
	return float64(len(c.Samples)) / float64(c.SampleRate)
}

// CheckClipLength refuses clips longer than maxSeconds. A limit of 0
// disables the check.
func CheckClipLength(c *Clip, maxSeconds float64) error {
	if len(c.Samples) == 0 {
		return ErrEmptyClip
	}
	if maxSeconds > 0 && c.Duration() > maxSeconds {
		return fmt.Errorf("%w: %.1fs > %.1fs", ErrClipTooLong, c.Duration(), maxSeconds)
	}
	return nil
}

// DecodeWAV reads a PCM WAV stream and mixes it down to mono
func DecodeWAV(r io.ReadSeeker) (*Clip, error) {
	decoder := wav.NewDecoder(r)
	if !decoder.IsValidFile() {
		return nil, ErrUnsupportedWAV
	}
	buf, err := decoder.FullPCMBuffer()
	if err != nil {
		return nil, fmt.Errorf("decode wav: %w", err)
	}

	bitDepth := int(decoder.BitDepth)
	if bitDepth == 0 {
		return nil, fmt.Errorf("%w: unknown bit depth", ErrUnsupportedWAV)
	}
	nchannels := buf.Format.NumChannels
	if nchannels <= 0 {
		return nil, fmt.Errorf("%w: no channels", ErrUnsupportedWAV)
	}

	full := float64(int64(1) << (bitDepth - 1))
	nframes := len(buf.Data) / nchannels
	clip := &Clip{
		Samples:    make([]float64, nframes),
		SampleRate: buf.Format.SampleRate,
	}
	for i := range nframes {
		sum := 0.0
		for ch := range nchannels {
			sum += float64(buf.Data[i*nchannels+ch])
		}
		clip.Samples[i] = sum / float64(nchannels) / full
	}
	return clip, nil
}

// LoadWAV opens and decodes a WAV file
func LoadWAV(path string) (*Clip, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return DecodeWAV(f)
}

// WriteWAV stores the clip as 16-bit mono PCM
func WriteWAV(path string, c *Clip) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	enc := wav.NewEncoder(f, c.SampleRate, 16, 1, 1)
	buf := &audio.IntBuffer{
		Format:         &audio.Format{NumChannels: 1, SampleRate: c.SampleRate},
		Data:           make([]int, len(c.Samples)),
		SourceBitDepth: 16,
	}
	for i, s := range c.Samples {
		s = max(-1, min(1, s))
		buf.Data[i] = int(s * 32767)
	}
	if err := enc.Write(buf); err != nil {
		return err
	}
	return enc.Close()
}
