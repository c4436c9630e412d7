package filter

import "math"

const defaultQ = 1 / math.Sqrt2

// ButterworthHP designs a highpass Butterworth cascade.
//
// For odd orders, the final section is first-order (B2=A2=0).
// Returns ErrInvalidParameter for non-positive cutoff, sample rate, or order.
// A cutoff at or above Nyquist must be clamped by the caller before design;
// here it is rejected.
func ButterworthHP(freq float64, order int, sampleRate float64) ([]Coefficients, error) {
	if err := validateDesign(freq, sampleRate); err != nil {
		return nil, err
	}
	if order <= 0 {
		return nil, ErrInvalidParameter
	}
	if freq >= sampleRate/2 {
		return nil, ErrInvalidParameter
	}

	sections := make([]Coefficients, 0, (order+1)/2)

	n2 := order / 2
	for i := n2 - 1; i >= 0; i-- {
		q := butterworthQ(order, i)
		sections = append(sections, highpassRBJ(freq, q, sampleRate))
	}
	if order%2 != 0 {
		sections = append(sections, firstOrderHP(freq, sampleRate))
	}

	return sections, nil
}

// Notch designs a notch biquad centered at freq (Hz) with quality factor q.
// Returns ErrInvalidParameter if the design is degenerate (non-positive or
// non-finite freq, q or sample rate); a notch at or above Nyquist cannot be
// realized and is rejected (callers treat that case as a no-op stage
// instead).
func Notch(freq, q, sampleRate float64) (Coefficients, error) {
	if err := validateDesign(freq, sampleRate); err != nil {
		return Coefficients{}, err
	}
	if freq >= sampleRate/2 {
		return Coefficients{}, ErrInvalidParameter
	}
	if q <= 0 || math.IsNaN(q) || math.IsInf(q, 0) {
		return Coefficients{}, ErrInvalidParameter
	}

	w0 := 2 * math.Pi * freq / sampleRate

	cw := math.Cos(w0)
	sw := math.Sin(w0)
	alpha := sw / (2 * q)

	b0 := 1.0
	b1 := -2 * cw
	b2 := 1.0
	a0 := 1 + alpha
	a1 := -2 * cw
	a2 := 1 - alpha

	return normalizeBiquad(b0, b1, b2, a0, a1, a2), nil
}

// butterworthQ returns the quality factor for a Butterworth filter section.
// index ranges from 0 to (order/2 - 1) for the biquad sections.
func butterworthQ(order, index int) float64 {
	theta := math.Pi * float64(2*index+1) / (2 * float64(order))

	s := math.Sin(theta)
	if s == 0 {
		return defaultQ
	}

	return 1 / (2 * s)
}

// highpassRBJ designs a highpass biquad at freq (Hz) with quality factor q
// using the RBJ cookbook formula.
func highpassRBJ(freq, q, sampleRate float64) Coefficients {
	w0 := 2 * math.Pi * freq / sampleRate
	cw := math.Cos(w0)
	sw := math.Sin(w0)
	alpha := sw / (2 * q)

	b0 := (1 + cw) / 2
	b1 := -(1 + cw)
	b2 := (1 + cw) / 2
	a0 := 1 + alpha
	a1 := -2 * cw
	a2 := 1 - alpha

	return normalizeBiquad(b0, b1, b2, a0, a1, a2)
}

// firstOrderHP designs a first-order highpass section.
// Used for odd-order Butterworth cascades.
func firstOrderHP(freq, sampleRate float64) Coefficients {
	k := math.Tan(math.Pi * freq / sampleRate)
	norm := 1 / (1 + k)

	return Coefficients{
		B0: norm,
		B1: -norm,
		B2: 0,
		A1: (k - 1) * norm,
		A2: 0,
	}
}

func normalizeBiquad(b0, b1, b2, a0, a1, a2 float64) Coefficients {
	if a0 == 0 || math.IsNaN(a0) || math.IsInf(a0, 0) {
		return Coefficients{}
	}

	return Coefficients{
		B0: b0 / a0,
		B1: b1 / a0,
		B2: b2 / a0,
		A1: a1 / a0,
		A2: a2 / a0,
	}
}
