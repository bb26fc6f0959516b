package analysis

import (
	"math/cmplx"

	"github.com/mjibson/go-dsp/fft"
	"github.com/san-kum/ccdsim/internal/sim"
)

// PowerSpectrum returns the magnitude of the first len(data)/2 frequency
// bins of data with its mean removed.
func PowerSpectrum(data []float64) []float64 {
	if len(data) < 2 {
		return nil
	}

	mean := 0.0
	for _, v := range data {
		mean += v
	}
	mean /= float64(len(data))

	centred := make([]float64, len(data))
	for i, v := range data {
		centred[i] = v - mean
	}

	bins := fft.FFTReal(centred)
	ps := make([]float64, len(bins)/2)
	for i := range ps {
		ps[i] = cmplx.Abs(bins[i])
	}
	return ps
}

// DominantFrequency returns the strongest non-zero frequency of a series
// sampled every dt. It reports false for constant or too short series.
func DominantFrequency(data []float64, dt float64) (float64, bool) {
	ps := PowerSpectrum(data)
	if len(ps) < 2 || dt <= 0 {
		return 0, false
	}

	peak := 0
	for i := 1; i < len(ps); i++ {
		if ps[i] > ps[peak] {
			peak = i
		}
	}
	if peak == 0 || ps[peak] < 1e-12 {
		return 0, false
	}
	return float64(peak) / (float64(len(data)) * dt), true
}

// ContactRate counts the events of each frame from 0 to the last frame.
func ContactRate(frames []sim.Frame, events []sim.EventRecord) []float64 {
	if len(frames) == 0 {
		return nil
	}

	last := frames[len(frames)-1].Index
	rate := make([]float64, last+1)
	for _, ev := range events {
		if ev.Frame >= 0 && ev.Frame <= last {
			rate[ev.Frame]++
		}
	}
	return rate
}
