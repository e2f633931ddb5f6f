// Package generate builds haptic events from audio analysis frames.
package generate

import (
	"errors"
	"fmt"
	"io"

	"hapticedit/analysis"
	"hapticedit/debug"
	"hapticedit/haptic"
)

var ErrNoFrames = errors.New("not enough analysis frames")

type Option func(*Options)

type Options struct {
	ChunkSize         int
	SimplifyTolerance float64
	RMSThreshold      float64 // onsets below this normalized RMS are ignored
	PeakWindow        int
	PeakSensitivity   float64
	MaxClipSeconds    float64
}

func DefaultOptions() Options {
	return Options{
		ChunkSize:         1024,
		SimplifyTolerance: 0.02,
		RMSThreshold:      0.05,
		PeakWindow:        8,
		PeakSensitivity:   1.0,
		MaxClipSeconds:    30,
	}
}

func NewOptions(opts ...Option) Options {
	o := DefaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

func WithChunkSize(n int) Option {
	return func(o *Options) {
		o.ChunkSize = n
	}
}

func WithSimplifyTolerance(eps float64) Option {
	return func(o *Options) {
		o.SimplifyTolerance = eps
	}
}

func WithRMSThreshold(threshold float64) Option {
	return func(o *Options) {
		o.RMSThreshold = threshold
	}
}

// WithPeakWindow sets how many chunks on each side a flux peak must dominate
func WithPeakWindow(n int) Option {
	return func(o *Options) {
		o.PeakWindow = n
	}
}

func WithPeakSensitivity(k float64) Option {
	return func(o *Options) {
		o.PeakSensitivity = k
	}
}

func WithMaxClipSeconds(seconds float64) Option {
	return func(o *Options) {
		o.MaxClipSeconds = seconds
	}
}

// Envelope turns RMS and spectral centroid into a single continuous event.
// Both curves are simplified; a curve that simplifies to fewer than two
// points keeps its full resolution instead.
func Envelope(f *analysis.Frames, opts Options) (*haptic.Continuous, error) {
	if f.Len() < 2 {
		return nil, fmt.Errorf("%w: envelope needs 2, have %d", ErrNoFrames, f.Len())
	}

	intensity := series(f, analysis.Normalize(f.RMS))
	sharpness := series(f, analysis.Normalize(f.Centroid))

	c, err := haptic.NewContinuousFromCurves(
		simplify(intensity, opts.SimplifyTolerance, "intensity"),
		simplify(sharpness, opts.SimplifyTolerance, "sharpness"),
	)
	if err != nil {
		return nil, fmt.Errorf("envelope: %w", err)
	}
	debug.Log("generate", "envelope: %d intensity / %d sharpness points over %.3fs",
		len(c.IntensityCurve), len(c.SharpnessCurve), c.TimeMax()-c.Time())
	return c, nil
}

// Onsets places a transient at every spectral flux peak whose RMS clears
// the threshold
func Onsets(f *analysis.Frames, opts Options) []*haptic.Transient {
	flux := analysis.SpectralFlux(f)
	rms := analysis.Normalize(f.RMS)
	centroid := analysis.Normalize(f.Centroid)

	var out []*haptic.Transient
	for _, i := range analysis.PickPeaks(flux, opts.PeakWindow, opts.PeakSensitivity) {
		if rms[i] < opts.RMSThreshold {
			continue
		}
		out = append(out, haptic.NewTransient(f.Time(i), rms[i], centroid[i]))
	}
	debug.Log("generate", "onsets: %d transients from %d frames", len(out), f.Len())
	return out
}

// FromWAV decodes and analyses a WAV stream with the options' chunk size
// and length limit
func FromWAV(r io.ReadSeeker, opts Options) (*analysis.Frames, error) {
	clip, err := analysis.DecodeWAV(r)
	if err != nil {
		return nil, err
	}
	return FromClip(clip, opts)
}

func FromClip(clip *analysis.Clip, opts Options) (*analysis.Frames, error) {
	if err := analysis.CheckClipLength(clip, opts.MaxClipSeconds); err != nil {
		return nil, err
	}
	return analysis.Analyze(clip, opts.ChunkSize)
}

func series(f *analysis.Frames, values []float64) []analysis.Point {
	points := make([]analysis.Point, len(values))
	for i, v := range values {
		points[i] = analysis.Point{X: f.Time(i), Y: v}
	}
	return points
}

func simplify(points []analysis.Point, eps float64, name string) []haptic.Vec2 {
	simplified := analysis.Simplify(points, eps)
	if len(simplified) < 2 {
		debug.Log("generate", "%s: simplification left %d points, keeping %d raw",
			name, len(simplified), len(points))
		simplified = points
	}
	out := make([]haptic.Vec2, len(simplified))
	for i, p := range simplified {
		out[i] = haptic.Vec2{X: p.X, Y: p.Y}
	}
	return out
}
