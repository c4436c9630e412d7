// Package spectrum computes the time-frequency decomposition of a working
// signal and band-limited power traces derived from it.
package spectrum

import (
	"fmt"

	"github.com/cwbudde/algo-ephys/dsp/window"
	algofft "github.com/cwbudde/algo-fft"
	"github.com/cwbudde/algo-vecmath"
)

// tukeyAlpha is the taper fraction of the per-segment analysis window.
const tukeyAlpha = 0.25

// Result holds a one-sided power spectrogram.
type Result struct {
	Frequencies []float64   // bin center frequencies in Hz, DC..Nyquist
	Times       []float64   // segment center times in seconds
	Power       [][]float64 // power spectral density, indexed [frequency][time]
}

// SegmentLength returns the analysis segment length for a signal of n
// samples: 0.2 s worth of samples, at most a quarter of the signal, and
// never below 4 samples.
func SegmentLength(n int, sampleRate float64) int {
	nperseg := int(0.2*sampleRate + 0.5)
	if quarter := n / 4; nperseg > quarter {
		nperseg = quarter
	}
	if nperseg < 4 {
		nperseg = 4
	}

	return nperseg
}

// Compute returns the power spectrogram of the signal.
//
// Segments of SegmentLength samples overlap by an eighth of their length,
// are detrended by mean removal and shaped with a Tukey(0.25) window, and
// the squared spectrum is scaled to a one-sided power spectral density.
func Compute(signal []float64, sampleRate float64) (*Result, error) {
	if sampleRate <= 0 {
		return nil, fmt.Errorf("spectrogram sample rate must be > 0: %f", sampleRate)
	}

	nperseg := SegmentLength(len(signal), sampleRate)
	if len(signal) < nperseg {
		return nil, fmt.Errorf("spectrogram input too short: %d < %d samples", len(signal), nperseg)
	}

	noverlap := nperseg / 8
	step := nperseg - noverlap
	nfft := nextPowerOf2(nperseg)
	binCount := nfft/2 + 1

	win, err := window.Tukey(nperseg, tukeyAlpha)
	if err != nil {
		return nil, err
	}
	psdNorm := sampleRate * window.SumSquares(win)

	plan, err := algofft.NewPlan64(nfft)
	if err != nil {
		return nil, fmt.Errorf("spectrogram fft plan: %w", err)
	}

	segCount := (len(signal)-nperseg)/step + 1

	res := &Result{
		Frequencies: make([]float64, binCount),
		Times:       make([]float64, segCount),
		Power:       make([][]float64, binCount),
	}
	for k := range res.Frequencies {
		res.Frequencies[k] = float64(k) * sampleRate / float64(nfft)
	}
	for k := range res.Power {
		res.Power[k] = make([]float64, segCount)
	}

	in := make([]complex128, nfft)
	out := make([]complex128, nfft)
	re := make([]float64, binCount)
	im := make([]float64, binCount)
	pow := make([]float64, binCount)

	for s := 0; s < segCount; s++ {
		start := s * step
		seg := signal[start : start+nperseg]

		mean := 0.0
		for _, v := range seg {
			mean += v
		}
		mean /= float64(nperseg)

		for i := range in {
			in[i] = 0
		}
		for i, v := range seg {
			in[i] = complex((v-mean)*win[i], 0)
		}

		if err := plan.Forward(out, in); err != nil {
			return nil, fmt.Errorf("spectrogram fft: %w", err)
		}

		for k := 0; k < binCount; k++ {
			re[k] = real(out[k])
			im[k] = imag(out[k])
		}
		vecmath.Power(pow, re, im)

		for k := 0; k < binCount; k++ {
			p := pow[k] / psdNorm
			if k > 0 && k < binCount-1 {
				p *= 2 // one-sided spectrum carries both halves
			}
			res.Power[k][s] = p
		}

		res.Times[s] = (float64(start) + float64(nperseg)/2) / sampleRate
	}

	return res, nil
}

// BandPower returns the mean power across all frequency bins inside
// [lowF, hiF] for each time bin. If no bin falls inside the band, the
// returned series is all zeros with one entry per time bin.
func BandPower(res *Result, lowF, hiF float64) []float64 {
	out := make([]float64, len(res.Times))

	var rows []int
	for k, f := range res.Frequencies {
		if f >= lowF && f <= hiF {
			rows = append(rows, k)
		}
	}
	if len(rows) == 0 {
		return out
	}

	for t := range out {
		sum := 0.0
		for _, k := range rows {
			sum += res.Power[k][t]
		}
		out[t] = sum / float64(len(rows))
	}

	return out
}

func nextPowerOf2(n int) int {
	p := 1
	for p < n {
		p <<= 1
	}
	return p
}
