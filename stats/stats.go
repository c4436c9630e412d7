// Package stats summarizes a voltage trace for the operator-facing info
// view and for export metadata.
package stats

import "math"

// Summary holds single-pass statistics of a trace.
type Summary struct {
	Length int
	Min    float64
	Max    float64
	Mean   float64
	Std    float64
	RMS    float64
}

// Calculate computes all summary statistics in a single pass using
// Welford's online algorithm for a numerically stable variance.
func Calculate(signal []float64) Summary {
	n := len(signal)
	if n == 0 {
		return Summary{}
	}

	var (
		mean   float64
		m2     float64
		sumSq  float64
		minVal = signal[0]
		maxVal = signal[0]
	)

	for i, x := range signal {
		ni := float64(i + 1)
		delta := x - mean
		mean += delta / ni
		m2 += delta * (x - mean)

		sumSq += x * x
		if x < minVal {
			minVal = x
		}
		if x > maxVal {
			maxVal = x
		}
	}

	return Summary{
		Length: n,
		Min:    minVal,
		Max:    maxVal,
		Mean:   mean,
		Std:    math.Sqrt(m2 / float64(n)),
		RMS:    math.Sqrt(sumSq / float64(n)),
	}
}

// SuggestedUnit guesses the physical unit of a trace from its magnitude,
// mirroring the amplitude auto-conversion bands.
func (s Summary) SuggestedUnit() string {
	maxAbs := math.Max(math.Abs(s.Min), math.Abs(s.Max))

	switch {
	case maxAbs > 1000:
		return "likely µV (very large values)"
	case maxAbs > 10:
		return "likely mV (moderate values)"
	case maxAbs > 0.01:
		return "good mV range"
	default:
		return "likely V (very small values)"
	}
}
