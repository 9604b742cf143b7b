package analysis

import (
	"math/cmplx"

	"github.com/mjibson/go-dsp/fft"
)

// PowerSpectrum returns the magnitude of the first half of the discrete
// Fourier transform of data, after removing its mean. Any length is
// accepted.
func PowerSpectrum(data []float64) []float64 {
	if len(data) < 2 {
		return []float64{}
	}

	mean := 0.0
	for _, v := range data {
		mean += v
	}
	mean /= float64(len(data))

	centered := make([]float64, len(data))
	for i, v := range data {
		centered[i] = v - mean
	}

	spectrum := fft.FFTReal(centered)
	ps := make([]float64, len(spectrum)/2)
	for i := range ps {
		ps[i] = cmplx.Abs(spectrum[i])
	}

	return ps
}

// DominantFrequency finds the strongest non-zero frequency of a series
// sampled every interval seconds. It returns 0 when the series is too short
// or flat.
func DominantFrequency(data []float64, interval float64) (freq, power float64) {
	ps := PowerSpectrum(data)
	if len(ps) < 2 || interval <= 0 {
		return 0, 0
	}

	maxIdx := 0
	for i := 1; i < len(ps); i++ {
		if ps[i] > power {
			power = ps[i]
			maxIdx = i
		}
	}
	if maxIdx == 0 {
		return 0, 0
	}

	duration := float64(len(data)) * interval
	return float64(maxIdx) / duration, power
}
