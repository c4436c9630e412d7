package analysis

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"
)

// Row is one exported curated peak.
type Row struct {
	PeakIndex    int     // sample index into the working signal
	RelativeTime float64 // seconds within the trace or segment
	AbsoluteTime float64 // seconds from experiment start
	Amplitude    float64
	Unit         string
	WidthMS      float64
	TimingMethod string

	// Populated for segmented recordings only.
	Segment    int
	Channel    int
	SampleRate float64
}

// ExportRows converts the curated measurements of a state into export rows.
// Returns ErrEmptySelection when no curated peaks exist.
func ExportRows(sel Selection, state *AnalysisState) ([]Row, error) {
	if state == nil || len(state.Measurements) == 0 {
		return nil, ErrEmptySelection
	}

	segmented := sel.Recording != nil && sel.Recording.IsSegmented()

	rows := make([]Row, len(state.Measurements))
	for i, m := range state.Measurements {
		rows[i] = Row{
			PeakIndex:    m.SampleIndex,
			RelativeTime: m.RelativeTime,
			AbsoluteTime: m.AbsoluteTime,
			Amplitude:    m.Amplitude,
			Unit:         m.Unit,
			WidthMS:      m.WidthMS,
			TimingMethod: state.TimingMethod,
		}
		if segmented {
			rows[i].Segment = sel.Segment
			rows[i].Channel = sel.Channel
			rows[i].SampleRate = state.SampleRate
		}
	}

	return rows, nil
}

// WriteCSV writes the curated peak table: a block of #-prefixed metadata
// lines followed by a header row and one row per peak.
func WriteCSV(w io.Writer, sel Selection, p Params, state *AnalysisState, removed int, now time.Time) error {
	rows, err := ExportRows(sel, state)
	if err != nil {
		return err
	}

	for _, line := range metadataLines(sel, p, state, removed, now) {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return fmt.Errorf("write export metadata: %w", err)
		}
	}

	segmented := sel.Recording != nil && sel.Recording.IsSegmented()

	header := []string{
		"peak_index",
		"time_relative_s",
		"time_absolute_s",
		"amplitude_" + state.Unit,
		"width_ms",
		"timing_method",
	}
	if segmented {
		header = append(header, "segment", "channel", "sampling_rate_hz")
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("write export header: %w", err)
	}

	for _, row := range rows {
		record := []string{
			strconv.Itoa(row.PeakIndex),
			formatFloat(row.RelativeTime),
			formatFloat(row.AbsoluteTime),
			formatFloat(row.Amplitude),
			formatFloat(row.WidthMS),
			row.TimingMethod,
		}
		if segmented {
			record = append(record,
				strconv.Itoa(row.Segment),
				strconv.Itoa(row.Channel),
				formatFloat(row.SampleRate))
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("write export row: %w", err)
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("write export rows: %w", err)
	}

	return nil
}

// metadataLines builds the #-prefixed header block describing how the
// exported peaks were produced.
func metadataLines(sel Selection, p Params, state *AnalysisState, removed int, now time.Time) []string {
	source := "Unknown"
	if sel.Recording != nil && sel.Recording.Source != "" {
		source = sel.Recording.Source
	}

	lines := []string{
		"# Peak Detection Results",
		"# Generated by: peakcurate",
		"# Export time: " + now.Format("2006-01-02 15:04:05"),
		"# Source file: " + source,
		"#",
		"# Signal Processing Pipeline:",
		fmt.Sprintf("# - High-pass filter: %g Hz", p.Processing.HighpassHz),
	}

	if p.Processing.NotchEnabled {
		lines = append(lines, fmt.Sprintf("# - Notch filter: %g Hz (Q=%g)",
			p.Processing.NotchFreqHz, p.Processing.NotchQ))
	}
	if p.Processing.SmoothEnabled {
		lines = append(lines, fmt.Sprintf("# - Smoothing: Savitzky-Golay window=%d",
			p.Processing.SmoothWindow))
	}

	lines = append(lines,
		"#",
		"# Peak Detection Parameters:",
		fmt.Sprintf("# - Peak polarity: %s", p.Detection.Polarity),
		fmt.Sprintf("# - Prominence threshold: %g %s", p.Detection.Prominence, state.Unit),
		fmt.Sprintf("# - Minimum distance: %g ms", p.Detection.MinDistanceMS),
		fmt.Sprintf("# - Width range: %g-%g ms", p.Detection.MinWidthMS, p.Detection.MaxWidthMS),
		fmt.Sprintf("# - Sampling rate: %g Hz", state.SampleRate),
		fmt.Sprintf("# - Amplitude units: %s (from processed signal)", state.Unit),
		fmt.Sprintf("# - Units conversion: %s", p.Units),
		"#",
		"# Results:",
		fmt.Sprintf("# - Total peaks exported: %d", len(state.Measurements)),
		fmt.Sprintf("# - Peaks removed by user: %d", removed),
		fmt.Sprintf("# - Timing method: %s", state.TimingMethod),
		"#",
		"# Measurement Details:",
		fmt.Sprintf("# - Processing: %s", FilterDescription(p.Processing, p.Detection)),
		"# - Amplitudes: baseline-corrected from processed signal",
		"# - Width: FWHM (full width at half maximum) with local baseline",
		fmt.Sprintf("# - Only peaks within width range [%g-%gms] are included",
			p.Detection.MinWidthMS, p.Detection.MaxWidthMS),
	)

	if sel.Recording != nil && sel.Recording.IsSegmented() {
		lines = append(lines,
			"#",
			"# Recording Details:",
			fmt.Sprintf("# - Current segment: %d", sel.Segment),
			fmt.Sprintf("# - Current channel: %d", sel.Channel),
			fmt.Sprintf("# - Total segments: %d", sel.Recording.SegmentCount),
			fmt.Sprintf("# - Total channels: %d", sel.Recording.ChannelCount),
			"#",
			"# Timing Explanation:",
			"# - time_relative_s: time within the current segment",
			"# - time_absolute_s: absolute time from experiment start",
			"#   Example: a peak at 7s in segment 3 with 30s segments = (30x3)+7 = 97s",
		)
	}

	return lines
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
