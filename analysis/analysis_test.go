package analysis

import (
	"errors"
	"math"
	"path/filepath"
	"testing"
)

func sine(freq, amp float64, sampleRate, n int) *Clip {
	c := &Clip{Samples: make([]float64, n), SampleRate: sampleRate}
	for i := range c.Samples {
		c.Samples[i] = amp * math.Sin(2*math.Pi*freq*float64(i)/float64(sampleRate))
	}
	return c
}

func TestAnalyzeRejectsChunkSize(t *testing.T) {
	c := sine(440, 0.5, 8000, 4000)
	for _, size := range []int{0, -4, 3, 1000} {
		if _, err := Analyze(c, size); !errors.Is(err, ErrChunkSize) {
			t.Fatalf("Analyze(%d) err = %v, want ErrChunkSize", size, err)
		}
	}
}

func TestAnalyzeSine(t *testing.T) {
	// 1024 Hz at 8192 Hz with 256-sample chunks lands exactly on bin 32
	c := sine(1024, 0.5, 8192, 256*10+100)
	f, err := Analyze(c, 256)
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if f.Len() != 10 {
		t.Fatalf("Len = %d, want 10", f.Len())
	}
	if f.BinSpan() != 32 {
		t.Fatalf("BinSpan = %v, want 32", f.BinSpan())
	}
	if len(f.Spectra[0]) != 129 || len(f.BinSpans()) != 129 {
		t.Fatalf("bins = %d/%d, want 129", len(f.Spectra[0]), len(f.BinSpans()))
	}

	wantRMS := 0.5 / math.Sqrt2
	for i, r := range f.RMS {
		if math.Abs(r-wantRMS) > 1e-6 {
			t.Fatalf("RMS[%d] = %v, want %v", i, r, wantRMS)
		}
	}

	peak := 0
	for k, m := range f.Spectra[3] {
		if m > f.Spectra[3][peak] {
			peak = k
		}
	}
	if peak != 32 {
		t.Fatalf("spectrum peak bin = %d, want 32", peak)
	}
	if math.Abs(f.Centroid[3]-1024) > 50 {
		t.Fatalf("centroid = %v, want about 1024", f.Centroid[3])
	}
	if got := f.Time(2); math.Abs(got-2*256.0/8192) > 1e-12 {
		t.Fatalf("Time(2) = %v", got)
	}
}

func TestSilenceHasZeroCentroid(t *testing.T) {
	c := &Clip{Samples: make([]float64, 512), SampleRate: 8000}
	f, err := Analyze(c, 256)
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if f.RMS[0] != 0 || f.Centroid[0] != 0 {
		t.Fatalf("rms/centroid = %v/%v, want 0/0", f.RMS[0], f.Centroid[0])
	}
}

// A constant signal's DC bin is the sum of the Hann coefficients, (n-1)/2.
func TestAnalyzeAppliesHann(t *testing.T) {
	samples := make([]float64, 512)
	for i := range samples {
		samples[i] = 1
	}
	f, err := Analyze(&Clip{Samples: samples, SampleRate: 8192}, 256)
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if got := f.Spectra[1][0]; math.Abs(got-127.5) > 1e-6 {
		t.Fatalf("dc = %v, want 127.5", got)
	}
	if samples[0] != 1 || samples[511] != 1 {
		t.Fatalf("clip samples were modified")
	}
}

func TestSpectralFluxAndPeaks(t *testing.T) {
	// silence, then a burst at chunk 4
	c := &Clip{Samples: make([]float64, 256*8), SampleRate: 8192}
	burst := sine(1024, 0.8, 8192, 256)
	copy(c.Samples[256*4:], burst.Samples)

	f, err := Analyze(c, 256)
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	flux := SpectralFlux(f)
	if flux[0] != 0 {
		t.Fatalf("flux[0] = %v, want 0", flux[0])
	}
	peaks := PickPeaks(flux, 2, 1)
	if len(peaks) != 1 || peaks[0] != 4 {
		t.Fatalf("peaks = %v, want [4]", peaks)
	}
}

func TestPickPeaks(t *testing.T) {
	tests := []struct {
		name   string
		values []float64
		want   []int
	}{
		{"flat", []float64{1, 1, 1, 1, 1}, nil},
		{"zeros", []float64{0, 0, 0}, nil},
		{"two peaks", []float64{0, 5, 0, 0, 0, 0, 7, 0}, []int{1, 6}},
		{"plateau keeps first", []float64{0, 0, 4, 4, 0, 0, 0, 0}, []int{2}},
	}
	for _, tt := range tests {
		got := PickPeaks(tt.values, 2, 1)
		if len(got) != len(tt.want) {
			t.Fatalf("%s: peaks = %v, want %v", tt.name, got, tt.want)
		}
		for i := range got {
			if got[i] != tt.want[i] {
				t.Fatalf("%s: peaks = %v, want %v", tt.name, got, tt.want)
			}
		}
	}
}

func TestSimplify(t *testing.T) {
	line := []Point{{0, 0}, {1, 1}, {2, 2}, {3, 3}}
	if got := Simplify(line, 0.01); len(got) != 2 {
		t.Fatalf("collinear simplify = %v, want endpoints only", got)
	}

	corner := []Point{{0, 0}, {1, 0.01}, {2, 1}, {3, 0}, {4, 0}}
	got := Simplify(corner, 0.1)
	if got[0] != corner[0] || got[len(got)-1] != corner[4] {
		t.Fatalf("endpoints lost: %v", got)
	}
	found := false
	for _, p := range got {
		if p == corner[2] {
			found = true
		}
	}
	if !found {
		t.Fatalf("simplify dropped the peak: %v", got)
	}

	if got := Simplify([]Point{{0, 1}}, 1); len(got) != 1 {
		t.Fatalf("single point = %v", got)
	}
}

func TestWAVRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tone.wav")
	in := sine(440, 0.5, 44100, 4410)
	if err := WriteWAV(path, in); err != nil {
		t.Fatalf("WriteWAV: %v", err)
	}
	out, err := LoadWAV(path)
	if err != nil {
		t.Fatalf("LoadWAV: %v", err)
	}
	if out.SampleRate != 44100 {
		t.Fatalf("SampleRate = %d, want 44100", out.SampleRate)
	}
	if len(out.Samples) != len(in.Samples) {
		t.Fatalf("samples = %d, want %d", len(out.Samples), len(in.Samples))
	}
	for i := range in.Samples {
		if math.Abs(out.Samples[i]-in.Samples[i]) > 1e-3 {
			t.Fatalf("sample %d = %v, want %v", i, out.Samples[i], in.Samples[i])
		}
	}
}

func TestCheckClipLength(t *testing.T) {
	c := sine(440, 0.5, 1000, 3000)
	if err := CheckClipLength(c, 2); !errors.Is(err, ErrClipTooLong) {
		t.Fatalf("err = %v, want ErrClipTooLong", err)
	}
	if err := CheckClipLength(c, 0); err != nil {
		t.Fatalf("unlimited: %v", err)
	}
	if err := CheckClipLength(&Clip{SampleRate: 1000}, 5); !errors.Is(err, ErrEmptyClip) {
		t.Fatalf("empty err = %v", err)
	}
}

func TestNormalize(t *testing.T) {
	got := Normalize([]float64{1, 2, 4})
	if got[2] != 1 || got[0] != 0.25 {
		t.Fatalf("Normalize = %v", got)
	}
	if got := Normalize([]float64{0, 0}); got[0] != 0 {
		t.Fatalf("zeros = %v", got)
	}
}
