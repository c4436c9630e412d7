// Package recording loads voltage traces from flat tabular files and
// multi-segment EDF recordings, and reconstructs absolute experiment time
// for peaks detected inside one segment.
package recording

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Trace is an ordered sequence of uniformly sampled (time, voltage) pairs.
type Trace struct {
	Times  []float64
	Values []float64
}

// Len returns the number of samples.
func (t Trace) Len() int { return len(t.Values) }

// DeriveSampleRate returns 1/mean(delta t) over the time stamps, or 0 when
// fewer than two samples exist.
func (t Trace) DeriveSampleRate() float64 {
	if len(t.Times) < 2 {
		return 0
	}

	span := t.Times[len(t.Times)-1] - t.Times[0]
	if span <= 0 {
		return 0
	}

	return float64(len(t.Times)-1) / span
}

// Recording is one loaded data source. A flat recording holds one or more
// independent traces; a segmented recording holds per-channel segment data
// sharing a single sampling rate, addressable by (channel, segment).
type Recording struct {
	Source     string
	SampleRate float64

	// Flat mode.
	Traces []Trace

	// Segmented mode. segments is indexed [channel][segment].
	ChannelCount int
	SegmentCount int
	segments     [][][]float64

	// Optional timing metadata for segmented recordings.
	SegmentStarts    []float64 // explicit per-segment start times in seconds
	SegmentLengthSec float64   // uniform segment duration, 0 if unknown
}

// NewSegmented builds a segmented recording from per-channel segment data,
// indexed [channel][segment].
func NewSegmented(sampleRate float64, segments [][][]float64) (*Recording, error) {
	if len(segments) == 0 || len(segments[0]) == 0 {
		return nil, fmt.Errorf("segmented recording needs at least one channel and segment")
	}

	segmentCount := len(segments[0])
	for ch, channel := range segments {
		if len(channel) != segmentCount {
			return nil, fmt.Errorf("channel %d has %d segments, want %d", ch, len(channel), segmentCount)
		}
	}

	return &Recording{
		SampleRate:   sampleRate,
		ChannelCount: len(segments),
		SegmentCount: segmentCount,
		segments:     segments,
	}, nil
}

// IsSegmented reports whether the recording is addressed by
// (channel, segment) rather than by trace index.
func (r *Recording) IsSegmented() bool {
	return r.SegmentCount > 0
}

// Trace returns the flat trace at the given index.
func (r *Recording) Trace(index int) (Trace, error) {
	if r.IsSegmented() {
		return Trace{}, fmt.Errorf("recording %s is segmented; address it by (channel, segment)", r.Source)
	}
	if index < 0 || index >= len(r.Traces) {
		return Trace{}, fmt.Errorf("trace index out of range: %d of %d", index, len(r.Traces))
	}

	return r.Traces[index], nil
}

// Segment returns the trace of one segment of one channel, with time stamps
// relative to the segment start.
func (r *Recording) Segment(channel, segment int) (Trace, error) {
	if !r.IsSegmented() {
		return Trace{}, fmt.Errorf("recording %s is not segmented", r.Source)
	}
	if channel < 0 || channel >= r.ChannelCount {
		return Trace{}, fmt.Errorf("channel out of range: %d of %d", channel, r.ChannelCount)
	}
	if segment < 0 || segment >= r.SegmentCount {
		return Trace{}, fmt.Errorf("segment out of range: %d of %d", segment, r.SegmentCount)
	}

	values := r.segments[channel][segment]
	times := make([]float64, len(values))
	if r.SampleRate > 0 {
		for i := range times {
			times[i] = float64(i) / r.SampleRate
		}
	}

	return Trace{Times: times, Values: values}, nil
}

// SamplesPerSegment returns the sample count of the first segment, or 0 for
// flat recordings.
func (r *Recording) SamplesPerSegment() int {
	if !r.IsSegmented() || r.ChannelCount == 0 || r.SegmentCount == 0 {
		return 0
	}

	return len(r.segments[0][0])
}

// Load reads a recording from disk, dispatching on the file extension.
// Unrecognized extensions return ErrUnsupportedFormat.
func Load(path string) (*Recording, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return LoadCSV(path)
	case ".edf":
		return LoadEDF(path)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, filepath.Ext(path))
	}
}
