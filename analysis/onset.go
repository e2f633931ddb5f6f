package analysis

import "math"

// SpectralFlux returns, per chunk, the summed positive magnitude change
// from the previous chunk. The first chunk has no predecessor and gets 0.
func SpectralFlux(f *Frames) []float64 {
	flux := make([]float64, len(f.Spectra))
	for i := 1; i < len(f.Spectra); i++ {
		prev, cur := f.Spectra[i-1], f.Spectra[i]
		sum := 0.0
		for k := range cur {
			if d := cur[k] - prev[k]; d > 0 {
				sum += d
			}
		}
		flux[i] = sum
	}
	return flux
}

// PickPeaks returns the indices of values that are the maximum of the
// surrounding window (window values on each side) and exceed the window's
// mean by k standard deviations.
func PickPeaks(values []float64, window int, k float64) []int {
	if window < 1 {
		window = 1
	}
	var peaks []int
	for i, v := range values {
		if v <= 0 {
			continue
		}
		lo, hi := max(0, i-window), min(len(values), i+window+1)

		isMax := true
		sum := 0.0
		for j := lo; j < hi; j++ {
			sum += values[j]
			if values[j] > v || (values[j] == v && j < i) {
				isMax = false
			}
		}
		if !isMax {
			continue
		}

		mean := sum / float64(hi-lo)
		variance := 0.0
		for j := lo; j < hi; j++ {
			d := values[j] - mean
			variance += d * d
		}
		std := math.Sqrt(variance / float64(hi-lo))
		if v > mean+k*std {
			peaks = append(peaks, i)
		}
	}
	return peaks
}
