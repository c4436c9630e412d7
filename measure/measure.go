// Package measure computes baseline-corrected amplitudes, FWHM widths, and
// unit-converted values for detected peaks.
//
// Both measurements estimate a robust local baseline from samples on either
// side of the peak, held off by a guard distance so the peak's own flanks do
// not bias the estimate. The width and amplitude baselines use different
// window floors and guard distances; the distinction is part of the numeric
// contract and must not be unified.
package measure

import (
	"sort"

	"gonum.org/v1/gonum/stat"
)

// Width (FWHM) baseline geometry.
const (
	widthWindowFloor = 20
	widthGuardFloor  = 10
)

// Amplitude baseline geometry.
const (
	ampWindowFloor = 10
	ampGuardFloor  = 5
)

// maxSearchSec bounds the half-max crossing search around a peak.
const maxSearchSec = 0.5

// FWHM returns the full width at half maximum, in seconds, of the peak at
// sample index p.
//
// The half-max level is measured against the local median baseline. The
// crossing search on each side is bounded by min(p, N-1-p, 0.5s of samples);
// when no crossing is found within the bound, the bound index itself is used
// and the width is under-estimated rather than reported as an error.
func FWHM(signal []float64, p int, sampleRate float64) float64 {
	if sampleRate <= 0 {
		return 0
	}

	baseline := localBaseline(signal, p, sampleRate, widthWindowFloor, widthGuardFloor)
	half := baseline + (signal[p]-baseline)/2

	bound := p
	if r := len(signal) - 1 - p; r < bound {
		bound = r
	}
	if s := int(maxSearchSec*sampleRate + 0.5); s < bound {
		bound = s
	}

	left := p - bound
	for i := p; i >= p-bound; i-- {
		if signal[i] <= half {
			left = i
			break
		}
	}

	right := p + bound
	for i := p; i <= p+bound; i++ {
		if signal[i] <= half {
			right = i
			break
		}
	}

	return float64(right-left) / sampleRate
}

// Widths returns the FWHM in seconds for each peak index.
func Widths(signal []float64, indices []int, sampleRate float64) []float64 {
	out := make([]float64, len(indices))
	for i, p := range indices {
		out[i] = FWHM(signal, p, sampleRate)
	}
	return out
}

// Amplitude returns the baseline-corrected height of the peak at sample
// index p: the sample value minus the local median baseline.
func Amplitude(signal []float64, p int, sampleRate float64) float64 {
	baseline := localBaseline(signal, p, sampleRate, ampWindowFloor, ampGuardFloor)
	return signal[p] - baseline
}

// Amplitudes returns the baseline-corrected amplitude for each peak index.
func Amplitudes(signal []float64, indices []int, sampleRate float64) []float64 {
	out := make([]float64, len(indices))
	for i, p := range indices {
		out[i] = Amplitude(signal, p, sampleRate)
	}
	return out
}

// localBaseline estimates the baseline around peak p as the median of two
// flanking windows of 0.1s of samples (at least windowFloor), each held off
// from the peak by max(guardFloor, window/4) samples. When both flanking
// windows fall out of bounds, it falls back to the mean of the +/-5 sample
// neighborhood around the peak.
func localBaseline(signal []float64, p int, sampleRate float64, windowFloor, guardFloor int) float64 {
	window := int(0.1 * sampleRate)
	if window < windowFloor {
		window = windowFloor
	}
	guard := window / 4
	if guard < guardFloor {
		guard = guardFloor
	}

	n := len(signal)
	leftStart := clamp(p-window-guard, 0, n)
	leftEnd := clamp(p-guard, 0, n)
	rightStart := clamp(p+guard, 0, n)
	rightEnd := clamp(p+window+guard, 0, n)

	values := make([]float64, 0, (leftEnd-leftStart)+(rightEnd-rightStart))
	if leftEnd > leftStart {
		values = append(values, signal[leftStart:leftEnd]...)
	}
	if rightEnd > rightStart {
		values = append(values, signal[rightStart:rightEnd]...)
	}

	if len(values) == 0 {
		lo := clamp(p-5, 0, n)
		hi := clamp(p+6, 0, n)
		return stat.Mean(signal[lo:hi], nil)
	}

	return median(values)
}

// median averages the two middle elements for even counts, matching the
// conventional sample median. values is sorted in place.
func median(values []float64) float64 {
	sort.Float64s(values)

	n := len(values)
	if n%2 == 1 {
		return values[n/2]
	}

	return (values[n/2-1] + values[n/2]) / 2
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
