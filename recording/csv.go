package recording

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
)

// fallbackSampleRate is assumed when a flat file is too short to derive a
// rate from its time stamps.
const fallbackSampleRate = 1000.0

// LoadCSV reads a flat tabular recording: a header row followed by
// time,voltage columns. Two columns yield a single trace; four or more
// yield two traces from the first two column pairs.
func LoadCSV(path string) (*Recording, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open recording: %w", err)
	}
	defer f.Close()

	rec, err := ReadCSV(f)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", filepath.Base(path), err)
	}
	rec.Source = filepath.Base(path)

	return rec, nil
}

// ReadCSV parses flat tabular trace data from r.
func ReadCSV(r io.Reader) (*Recording, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse csv: %w", err)
	}

	// A leading non-numeric row is a header.
	if len(records) > 0 && !isNumericRow(records[0]) {
		records = records[1:]
	}

	if len(records) == 0 {
		return nil, fmt.Errorf("csv contains no data rows")
	}

	cols := len(records[0])
	if cols < 2 {
		return nil, fmt.Errorf("csv must have at least 2 columns (time, voltage), got %d", cols)
	}

	pairs := 1
	if cols >= 4 {
		pairs = 2
	} else if cols != 2 {
		return nil, fmt.Errorf("unexpected csv layout: %d columns", cols)
	}

	traces := make([]Trace, pairs)
	for p := 0; p < pairs; p++ {
		traces[p].Times = make([]float64, 0, len(records))
		traces[p].Values = make([]float64, 0, len(records))
	}

	for i, row := range records {
		if len(row) < cols {
			return nil, fmt.Errorf("row %d has %d fields, want %d", i+1, len(row), cols)
		}

		for p := 0; p < pairs; p++ {
			tv, err := strconv.ParseFloat(row[2*p], 64)
			if err != nil {
				return nil, fmt.Errorf("row %d column %d: %w", i+1, 2*p+1, err)
			}
			vv, err := strconv.ParseFloat(row[2*p+1], 64)
			if err != nil {
				return nil, fmt.Errorf("row %d column %d: %w", i+1, 2*p+2, err)
			}

			traces[p].Times = append(traces[p].Times, tv)
			traces[p].Values = append(traces[p].Values, vv)
		}
	}

	rec := &Recording{Traces: traces}

	rec.SampleRate = traces[0].DeriveSampleRate()
	if rec.SampleRate == 0 {
		rec.SampleRate = fallbackSampleRate
	}

	return rec, nil
}

func isNumericRow(row []string) bool {
	for _, field := range row {
		if _, err := strconv.ParseFloat(field, 64); err != nil {
			return false
		}
	}
	return len(row) > 0
}
