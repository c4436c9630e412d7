// Package window generates window function coefficients for spectral
// analysis. Only the shapes used by the spectrogram are provided.
package window

import (
	"fmt"
	"math"
)

// Type identifies a window function.
type Type int

const (
	TypeRectangular Type = iota
	TypeHann
	TypeTukey
)

// config holds generation options.
type config struct {
	alpha float64
}

// Option configures window generation.
type Option func(*config)

// WithAlpha sets the Tukey taper fraction (0 = rectangular, 1 = Hann).
func WithAlpha(alpha float64) Option {
	return func(c *config) { c.alpha = alpha }
}

// Generate returns window coefficients of the given length.
func Generate(t Type, length int, opts ...Option) []float64 {
	if length <= 0 {
		return nil
	}

	cfg := config{alpha: 0.5}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	out := make([]float64, length)
	for i := range out {
		x := samplePosition(i, length)
		out[i] = evalWindow(t, x, cfg)
	}

	return out
}

// Hann returns Hann window coefficients.
func Hann(size int) ([]float64, error) {
	return Generate(TypeHann, size), validateLength(size)
}

// Tukey returns Tukey (tapered cosine) window coefficients with the given
// taper fraction alpha.
func Tukey(size int, alpha float64) ([]float64, error) {
	if err := validateTukey(size, alpha); err != nil {
		return nil, err
	}

	return Generate(TypeTukey, size, WithAlpha(alpha)), nil
}

// SumSquares returns the sum of squared coefficients, the normalization
// term for power spectral density scaling.
func SumSquares(coeffs []float64) float64 {
	sum := 0.0
	for _, c := range coeffs {
		sum += c * c
	}

	return sum
}

func samplePosition(n, size int) float64 {
	if size == 1 {
		return 0.5
	}

	return float64(n) / float64(size-1)
}

func evalWindow(t Type, x float64, cfg config) float64 {
	switch t {
	case TypeHann:
		return hannAt(x)
	case TypeTukey:
		return tukeyAt(x, cfg.alpha)
	default:
		return 1
	}
}

func hannAt(x float64) float64 {
	return 0.5 * (1 - math.Cos(2*math.Pi*x))
}

func tukeyAt(x, alpha float64) float64 {
	if alpha <= 0 {
		return 1
	}

	if alpha >= 1 {
		return hannAt(x)
	}

	a := alpha / 2
	switch {
	case x < a:
		return 0.5 * (1 + math.Cos(math.Pi*(2*x/alpha-1)))
	case x <= 1-a:
		return 1
	default:
		return 0.5 * (1 + math.Cos(math.Pi*(2*x/alpha-2/alpha+1)))
	}
}

func validateLength(size int) error {
	if size <= 0 {
		return fmt.Errorf("window size must be > 0: %d", size)
	}
	return nil
}

func validateTukey(size int, alpha float64) error {
	if size <= 0 {
		return validateLength(size)
	}
	if alpha < 0 || alpha > 1 {
		return fmt.Errorf("tukey alpha must be in [0,1]: %f", alpha)
	}
	return nil
}
