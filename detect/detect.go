// Package detect finds candidate peaks on a working signal subject to
// prominence and minimum-separation constraints.
package detect

import (
	"math"
	"sort"
)

// Polarity selects which signal extrema qualify as peaks.
type Polarity int

const (
	Positive Polarity = iota // local maxima only
	Negative                 // local minima only
	Both                     // maxima and minima, merged by position
)

// String returns the polarity name as shown to the operator.
func (p Polarity) String() string {
	switch p {
	case Negative:
		return "Negative"
	case Both:
		return "Both"
	default:
		return "Positive"
	}
}

// Config holds the peak detection and width acceptance parameters.
type Config struct {
	Prominence    float64  // minimum prominence for a candidate
	MinDistanceMS float64  // minimum inter-peak separation in milliseconds
	Polarity      Polarity // which extrema to detect
	MinWidthMS    float64  // FWHM acceptance window, lower bound
	MaxWidthMS    float64  // FWHM acceptance window, upper bound
}

// Candidate is a detected peak: a sample index into the working signal and
// the prominence it was detected with. Candidates are positionally indexed
// by their rank in the returned array; the rank is not stable across
// detection runs.
type Candidate struct {
	Index      int
	Prominence float64
}

// Detect returns candidate peaks ordered by sample index.
//
// The minimum separation is floor(MinDistanceMS/1000 * sampleRate) samples.
// In Both mode, maxima and minima are detected independently and merged in
// ascending index order, maxima winning hypothetical index ties.
// Returns ErrNoSampleRate when the sampling rate is unknown; detection is
// never run against a guessed rate.
func Detect(signal []float64, sampleRate float64, cfg Config) ([]Candidate, error) {
	if sampleRate <= 0 || math.IsNaN(sampleRate) {
		return nil, ErrNoSampleRate
	}

	distance := int(cfg.MinDistanceMS / 1000 * sampleRate)

	switch cfg.Polarity {
	case Negative:
		return detectOne(negate(signal), distance, cfg.Prominence), nil
	case Both:
		pos := detectOne(signal, distance, cfg.Prominence)
		neg := detectOne(negate(signal), distance, cfg.Prominence)
		return mergeByIndex(pos, neg), nil
	default:
		return detectOne(signal, distance, cfg.Prominence), nil
	}
}

// detectOne runs the positive-peak algorithm: local maxima, then distance
// pruning (highest peaks keep their neighborhood), then the prominence
// threshold.
func detectOne(x []float64, distance int, minProminence float64) []Candidate {
	peaks := localMaxima(x)

	if distance > 1 {
		peaks = selectByDistance(x, peaks, distance)
	}

	out := make([]Candidate, 0, len(peaks))
	for _, p := range peaks {
		prom := prominence(x, p)
		if prom >= minProminence {
			out = append(out, Candidate{Index: p, Prominence: prom})
		}
	}

	return out
}

// localMaxima returns the indices of strict local maxima. A flat plateau
// bounded by lower samples on both sides counts once, at its midpoint.
func localMaxima(x []float64) []int {
	var peaks []int

	i := 1
	for i < len(x)-1 {
		if x[i-1] >= x[i] {
			i++
			continue
		}

		// Ascend found; scan across any plateau.
		j := i
		for j < len(x)-1 && x[j+1] == x[i] {
			j++
		}

		if j < len(x)-1 && x[j+1] < x[i] {
			peaks = append(peaks, (i+j)/2)
		}

		i = j + 1
	}

	return peaks
}

// prominence measures how far the peak rises above its surrounding bases.
// Each side is scanned until the signal exceeds the peak value or the
// boundary is hit; the higher of the two side minima is the reference base.
func prominence(x []float64, p int) float64 {
	leftBase := x[p]
	for i := p - 1; i >= 0 && x[i] <= x[p]; i-- {
		if x[i] < leftBase {
			leftBase = x[i]
		}
	}

	rightBase := x[p]
	for i := p + 1; i < len(x) && x[i] <= x[p]; i++ {
		if x[i] < rightBase {
			rightBase = x[i]
		}
	}

	return x[p] - math.Max(leftBase, rightBase)
}

// selectByDistance removes peaks closer than distance samples to a higher
// peak. Peaks are visited from highest to lowest; each survivor clears its
// neighborhood.
func selectByDistance(x []float64, peaks []int, distance int) []int {
	n := len(peaks)

	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return x[peaks[order[a]]] < x[peaks[order[b]]]
	})

	keep := make([]bool, n)
	for i := range keep {
		keep[i] = true
	}

	for i := n - 1; i >= 0; i-- {
		j := order[i]
		if !keep[j] {
			continue
		}

		for k := j - 1; k >= 0 && peaks[j]-peaks[k] < distance; k-- {
			keep[k] = false
		}
		for k := j + 1; k < n && peaks[k]-peaks[j] < distance; k++ {
			keep[k] = false
		}
	}

	out := peaks[:0:0]
	for i, p := range peaks {
		if keep[i] {
			out = append(out, p)
		}
	}

	return out
}

// mergeByIndex merges two index-sorted candidate lists into one, preserving
// ascending order. At equal indices the first list wins.
func mergeByIndex(a, b []Candidate) []Candidate {
	out := make([]Candidate, 0, len(a)+len(b))

	i, j := 0, 0
	for i < len(a) && j < len(b) {
		if a[i].Index <= b[j].Index {
			out = append(out, a[i])
			i++
		} else {
			out = append(out, b[j])
			j++
		}
	}
	out = append(out, a[i:]...)
	out = append(out, b[j:]...)

	return out
}

func negate(x []float64) []float64 {
	out := make([]float64, len(x))
	for i, v := range x {
		out[i] = -v
	}
	return out
}
