package testutil

import "math"

// Bump describes a single Gaussian transient injected into a synthetic trace.
type Bump struct {
	CenterSec float64 // center position in seconds
	Amplitude float64 // peak height above baseline
	SigmaSec  float64 // Gaussian sigma in seconds (FWHM = 2.355*sigma)
}

// GaussianBumps generates a flat trace of the given duration with Gaussian
// transients added at known positions. Time stamps start at zero and advance
// by 1/sampleRate.
func GaussianBumps(sampleRate, durationSec float64, bumps []Bump) (times, values []float64) {
	n := int(durationSec * sampleRate)
	times = make([]float64, n)
	values = make([]float64, n)

	for i := range times {
		times[i] = float64(i) / sampleRate
	}

	for _, b := range bumps {
		for i := range values {
			dt := times[i] - b.CenterSec
			values[i] += b.Amplitude * math.Exp(-dt*dt/(2*b.SigmaSec*b.SigmaSec))
		}
	}

	return times, values
}

// RMS returns the root mean square of the signal, 0 for empty input.
func RMS(signal []float64) float64 {
	if len(signal) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range signal {
		sum += v * v
	}
	return math.Sqrt(sum / float64(len(signal)))
}
