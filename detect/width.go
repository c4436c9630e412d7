package detect

import "github.com/cwbudde/algo-ephys/measure"

// FilterByWidth keeps only the candidates whose FWHM falls inside
// [minWidthS, maxWidthS] seconds, preserving relative order. Widths are
// measured against the local baseline on the same working signal the
// candidates were detected on.
func FilterByWidth(signal []float64, candidates []Candidate, sampleRate, minWidthS, maxWidthS float64) []Candidate {
	if len(candidates) == 0 {
		return candidates
	}

	out := make([]Candidate, 0, len(candidates))
	for _, c := range candidates {
		w := measure.FWHM(signal, c.Index, sampleRate)
		if w >= minWidthS && w <= maxWidthS {
			out = append(out, c)
		}
	}

	return out
}
