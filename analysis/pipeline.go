package analysis

import (
	"fmt"
	"strings"

	"github.com/cwbudde/algo-ephys/detect"
	"github.com/cwbudde/algo-ephys/dsp/filter"
	"github.com/cwbudde/algo-ephys/dsp/savgol"
)

const (
	highpassOrder = 3

	// Cutoffs at or above Nyquist are clamped this far below it instead of
	// producing a degenerate design.
	nyquistMarginHz = 0.1

	smoothPolyorder = 2
)

// ProcessingConfig is the per-recompute snapshot of the signal conditioning
// parameters. The high-pass stage always runs; notch and smoothing are
// optional.
type ProcessingConfig struct {
	HighpassHz float64

	NotchEnabled bool
	NotchFreqHz  float64
	NotchQ       float64

	SmoothEnabled bool
	SmoothWindow  int // forced odd before use
}

// Process runs the conditioning pipeline over a raw trace and returns the
// working signal, always the same length as the input.
//
// The high-pass is a zero-phase order-3 Butterworth; a cutoff at or above
// Nyquist is clamped just below it. The notch stage is skipped entirely when
// its frequency reaches Nyquist, and smoothing is skipped when the input is
// shorter than the window. Degenerate designs return ErrInvalidParameter
// instead of propagating NaNs.
func Process(raw []float64, sampleRate float64, cfg ProcessingConfig) ([]float64, error) {
	if sampleRate <= 0 {
		return nil, fmt.Errorf("%w: sampling rate must be > 0: %g", filter.ErrInvalidParameter, sampleRate)
	}
	nyquist := sampleRate / 2

	cutoff := cfg.HighpassHz
	if cutoff >= nyquist {
		cutoff = nyquist - nyquistMarginHz
	}

	coeffs, err := filter.ButterworthHP(cutoff, highpassOrder, sampleRate)
	if err != nil {
		return nil, err
	}
	out := filter.ZeroPhase(coeffs, raw)

	if cfg.NotchEnabled && cfg.NotchFreqHz < nyquist {
		notch, err := filter.Notch(cfg.NotchFreqHz, cfg.NotchQ, sampleRate)
		if err != nil {
			return nil, err
		}
		out = filter.ZeroPhase([]filter.Coefficients{notch}, out)
	}

	if cfg.SmoothEnabled {
		window := cfg.SmoothWindow
		if window%2 == 0 {
			window++
		}

		if window >= 3 && len(out) >= window {
			polyorder := smoothPolyorder
			if polyorder > window-1 {
				polyorder = window - 1
			}

			out, err = savgol.Smooth(out, window, polyorder)
			if err != nil {
				return nil, err
			}
		}
	}

	return out, nil
}

// FilterDescription returns a short human-readable summary of the active
// pipeline stages, used in export metadata and the CLI info view.
func FilterDescription(proc ProcessingConfig, det detect.Config) string {
	parts := []string{fmt.Sprintf("HP %gHz", proc.HighpassHz)}

	if proc.NotchEnabled {
		parts = append(parts, fmt.Sprintf("Notch %gHz", proc.NotchFreqHz))
	}
	if proc.SmoothEnabled {
		parts = append(parts, fmt.Sprintf("Smooth %d", proc.SmoothWindow))
	}
	if det.Polarity != detect.Positive {
		parts = append(parts, fmt.Sprintf("%s peaks", det.Polarity))
	}

	return strings.Join(parts, ", ")
}
