package filter

import (
	"errors"
	"fmt"
)

// ErrInvalidParameter reports a degenerate filter design request, such as a
// non-positive cutoff or sample rate. Callers must not receive silently
// propagating NaNs from a bad design.
var ErrInvalidParameter = errors.New("invalid filter parameter")

func validateDesign(freq, sampleRate float64) error {
	if sampleRate <= 0 {
		return fmt.Errorf("%w: sample rate must be > 0: %f", ErrInvalidParameter, sampleRate)
	}
	if freq <= 0 {
		return fmt.Errorf("%w: frequency must be > 0: %f", ErrInvalidParameter, freq)
	}
	return nil
}
