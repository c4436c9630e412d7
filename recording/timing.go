package recording

import "fmt"

// Timing method tags reported alongside absolute times.
const (
	MethodNative        = "native"         // flat recording, times already absolute
	MethodSegmentTimes  = "segment_times"  // explicit per-segment start table
	MethodSegmentLength = "segment_length" // uniform segment duration metadata
	MethodCalculated    = "calculated"     // duration derived from samples and rate
	MethodRelativeOnly  = "relative_only"  // no usable timing source
)

// timingStrategy computes the absolute start offset of a segment. Each
// strategy fails with a typed error instead of raising; the reconstructor
// tries them in priority order.
type timingStrategy struct {
	method string
	offset func(r *Recording, segment int) (float64, error)
}

var timingStrategies = []timingStrategy{
	{MethodSegmentTimes, segmentTableOffset},
	{MethodSegmentLength, segmentLengthOffset},
	{MethodCalculated, calculatedOffset},
}

// AbsoluteTimes maps segment-relative peak times to absolute experiment
// time and reports which timing source was used.
//
// Flat recordings return the input unchanged under "native". Segmented
// recordings try the explicit start-time table, then the uniform segment
// length, then a duration derived from samples and rate; if every source
// fails, the relative times are returned unchanged under "relative_only".
func AbsoluteTimes(r *Recording, relative []float64, segment int) ([]float64, string) {
	out := append([]float64(nil), relative...)

	if !r.IsSegmented() {
		return out, MethodNative
	}

	for _, s := range timingStrategies {
		offset, err := s.offset(r, segment)
		if err != nil {
			continue
		}

		for i := range out {
			out[i] += offset
		}
		return out, s.method
	}

	return out, MethodRelativeOnly
}

func segmentTableOffset(r *Recording, segment int) (float64, error) {
	if len(r.SegmentStarts) == 0 {
		return 0, fmt.Errorf("no segment start table")
	}
	if segment < 0 || segment >= len(r.SegmentStarts) {
		return 0, fmt.Errorf("segment %d outside start table of %d", segment, len(r.SegmentStarts))
	}

	return r.SegmentStarts[segment], nil
}

func segmentLengthOffset(r *Recording, segment int) (float64, error) {
	if r.SegmentLengthSec <= 0 {
		return 0, fmt.Errorf("no uniform segment length")
	}

	return float64(segment) * r.SegmentLengthSec, nil
}

func calculatedOffset(r *Recording, segment int) (float64, error) {
	if r.SampleRate <= 0 {
		return 0, fmt.Errorf("sampling rate unknown")
	}

	samples := r.SamplesPerSegment()
	if samples == 0 {
		return 0, fmt.Errorf("no segment data")
	}

	return float64(segment) * float64(samples) / r.SampleRate, nil
}
