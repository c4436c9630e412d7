// Package savgol implements Savitzky–Golay smoothing: a moving least-squares
// polynomial fit evaluated at the window center. Unlike a plain moving
// average it preserves peak heights and widths up to the polynomial order.
package savgol

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// Smooth filters x with a Savitzky–Golay kernel of the given window length
// and polynomial order. The output has the same length as the input.
//
// window must be odd and larger than polyorder. The first and last
// window/2 output samples are produced by evaluating the polynomial fitted
// to the first and last full window, so the edges are not zero-padded.
func Smooth(x []float64, window, polyorder int) ([]float64, error) {
	if window <= 0 || window%2 == 0 {
		return nil, fmt.Errorf("savgol window must be odd and > 0: %d", window)
	}
	if polyorder < 0 || polyorder >= window {
		return nil, fmt.Errorf("savgol polyorder must be in [0, window): %d", polyorder)
	}
	if len(x) < window {
		return nil, fmt.Errorf("savgol input shorter than window: %d < %d", len(x), window)
	}

	h := window / 2
	pinv := designMatrix(window, polyorder)

	// The smoothed value at the window center is the constant term of the
	// fitted polynomial, so the convolution kernel is the first row of the
	// pseudo-inverse.
	weights := make([]float64, window)
	for i := 0; i < window; i++ {
		weights[i] = pinv.At(0, i)
	}

	out := make([]float64, len(x))

	for c := h; c < len(x)-h; c++ {
		sum := 0.0
		for k := -h; k <= h; k++ {
			sum += weights[k+h] * x[c+k]
		}
		out[c] = sum
	}

	fitEdges(out, x, pinv, window, polyorder)

	return out, nil
}

// designMatrix returns the pseudo-inverse (A^T A)^-1 A^T of the Vandermonde
// matrix over centered offsets -h..h, used for all polynomial fits.
func designMatrix(window, polyorder int) *mat.Dense {
	h := window / 2

	a := mat.NewDense(window, polyorder+1, nil)
	for i := 0; i < window; i++ {
		z := float64(i - h)
		p := 1.0
		for j := 0; j <= polyorder; j++ {
			a.Set(i, j, p)
			p *= z
		}
	}

	var ata mat.Dense
	ata.Mul(a.T(), a)

	var inv mat.Dense
	if err := inv.Inverse(&ata); err != nil {
		// The centered Vandermonde normal matrix is nonsingular for
		// polyorder < window, which the caller has validated.
		panic(fmt.Sprintf("savgol: singular design matrix: %v", err))
	}

	var pinv mat.Dense
	pinv.Mul(&inv, a.T())

	return &pinv
}

// fitEdges fills the first and last window/2 samples by fitting the
// polynomial to the first and last full window and evaluating it at the
// uncovered offsets.
func fitEdges(out, x []float64, pinv *mat.Dense, window, polyorder int) {
	h := window / 2
	n := len(x)

	left := fitCoeffs(pinv, x[:window], polyorder)
	for i := 0; i < h; i++ {
		out[i] = evalPoly(left, float64(i-h))
	}

	right := fitCoeffs(pinv, x[n-window:], polyorder)
	for i := 0; i < h; i++ {
		out[n-h+i] = evalPoly(right, float64(i+1))
	}
}

// fitCoeffs returns the polynomial coefficients of the least-squares fit to
// one full window of samples, in centered offset coordinates.
func fitCoeffs(pinv *mat.Dense, win []float64, polyorder int) []float64 {
	coeffs := make([]float64, polyorder+1)
	for j := 0; j <= polyorder; j++ {
		for i, v := range win {
			coeffs[j] += pinv.At(j, i) * v
		}
	}
	return coeffs
}

func evalPoly(coeffs []float64, z float64) float64 {
	sum := 0.0
	p := 1.0
	for _, c := range coeffs {
		sum += c * p
		p *= z
	}
	return sum
}
