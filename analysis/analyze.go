package analysis

import (
	"errors"
	"fmt"
	"math"
	"math/cmplx"

	"github.com/mjibson/go-dsp/fft"
	"github.com/mjibson/go-dsp/window"
)

var ErrChunkSize = errors.New("chunk size must be a power of two")

// Frames holds per-chunk analysis of a clip. Every slice is indexed by
// chunk number.
type Frames struct {
	SampleRate int
	ChunkSize  int

	RMS      []float64
	Spectra  [][]float64 // magnitude, ChunkSize/2+1 bins
	Centroid []float64   // spectral centroid in Hz
}

// IsPowerOfTwo reports whether n is a positive power of two
func IsPowerOfTwo(n int) bool {
	return n > 0 && n&(n-1) == 0
}

// Analyze splits the clip into chunks of chunkSize samples and computes
// RMS, Hann-windowed magnitude spectrum and spectral centroid per chunk.
// A trailing partial chunk is dropped.
func Analyze(c *Clip, chunkSize int) (*Frames, error) {
	if !IsPowerOfTwo(chunkSize) {
		return nil, fmt.Errorf("%w: %d", ErrChunkSize, chunkSize)
	}
	if len(c.Samples) == 0 {
		return nil, ErrEmptyClip
	}

	n := len(c.Samples) / chunkSize
	f := &Frames{
		SampleRate: c.SampleRate,
		ChunkSize:  chunkSize,
		RMS:        make([]float64, n),
		Spectra:    make([][]float64, n),
		Centroid:   make([]float64, n),
	}

	windowed := make([]float64, chunkSize)
	binSpan := f.BinSpan()
	for i := range n {
		chunk := c.Samples[i*chunkSize : (i+1)*chunkSize]
		f.RMS[i] = rms(chunk)

		copy(windowed, chunk)
		window.Apply(windowed, window.Hann)
		spectrum := fft.FFTReal(windowed)

		mags := make([]float64, chunkSize/2+1)
		weighted, total := 0.0, 0.0
		for k := range mags {
			mags[k] = cmplx.Abs(spectrum[k])
			weighted += float64(k) * binSpan * mags[k]
			total += mags[k]
		}
		f.Spectra[i] = mags
		if total > 0 {
			f.Centroid[i] = weighted / total
		}
	}
	return f, nil
}

// Len returns the number of chunks
func (f *Frames) Len() int {
	return len(f.RMS)
}

// BinSpan returns the width of one spectrum bin in Hz
func (f *Frames) BinSpan() float64 {
	return float64(f.SampleRate) / float64(f.ChunkSize)
}

// BinSpans returns the lower edge frequency of every spectrum bin
func (f *Frames) BinSpans() []float64 {
	spans := make([]float64, f.ChunkSize/2+1)
	for k := range spans {
		spans[k] = float64(k) * f.BinSpan()
	}
	return spans
}

// ChunkDuration returns the length of one chunk in seconds
func (f *Frames) ChunkDuration() float64 {
	return float64(f.ChunkSize) / float64(f.SampleRate)
}

// Time returns the start time of chunk i
func (f *Frames) Time(i int) float64 {
	return float64(i) * f.ChunkDuration()
}

// Nyquist returns half the sample rate
func (f *Frames) Nyquist() float64 {
	return float64(f.SampleRate) / 2
}

func rms(samples []float64) float64 {
	if len(samples) == 0 {
		return 0
	}
	sum := 0.0
	for _, s := range samples {
		sum += s * s
	}
	return math.Sqrt(sum / float64(len(samples)))
}

// Normalize scales values so the largest becomes 1. All-zero input is
// returned unchanged.
func Normalize(values []float64) []float64 {
	peak := 0.0
	for _, v := range values {
		peak = math.Max(peak, math.Abs(v))
	}
	out := make([]float64, len(values))
	if peak == 0 {
		copy(out, values)
		return out
	}
	for i, v := range values {
		out[i] = v / peak
	}
	return out
}
