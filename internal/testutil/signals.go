// Package testutil generates the deterministic synthetic voltage traces the
// package tests share: pure tones, seeded noise, offsets and Gaussian
// transients with known ground truth.
package testutil

import (
	"math"
	"math/rand"
)

// DeterministicSine returns a sine trace at freqHz sampled at sampleRate Hz,
// starting at phase zero.
func DeterministicSine(freqHz, sampleRate, amplitude float64, length int) []float64 {
	out := make([]float64, length)
	phasePerSample := 2 * math.Pi * freqHz / sampleRate
	for i := range out {
		out[i] = amplitude * math.Sin(phasePerSample*float64(i))
	}
	return out
}

// DeterministicNoise returns uniform noise in [-amplitude, amplitude] from a
// fixed seed, so failures reproduce across runs.
func DeterministicNoise(seed int64, amplitude float64, length int) []float64 {
	out := make([]float64, length)
	rng := rand.New(rand.NewSource(seed))
	for i := range out {
		out[i] = (rng.Float64()*2 - 1) * amplitude
	}
	return out
}

// DC returns a constant trace, the degenerate input for high-pass and
// baseline tests.
func DC(value float64, length int) []float64 {
	out := make([]float64, length)
	for i := range out {
		out[i] = value
	}
	return out
}
