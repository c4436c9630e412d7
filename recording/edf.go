package recording

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// edfSignal holds the per-signal calibration parsed from an EDF header.
type edfSignal struct {
	label            string
	physMin, physMax float64
	digMin, digMax   int
	samplesPerRecord int
}

// LoadEDF reads a multi-segment EDF recording. Each data record becomes one
// segment (sweep) and each signal one channel; all channels share the
// sampling rate derived from the record duration.
func LoadEDF(path string) (*Recording, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open recording: %w", err)
	}
	defer f.Close()

	rec, err := ReadEDF(f)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", filepath.Base(path), err)
	}
	rec.Source = filepath.Base(path)

	return rec, nil
}

// ReadEDF parses EDF data from r into segmented form.
func ReadEDF(r io.Reader) (*Recording, error) {
	br := bufio.NewReader(r)

	b := make([]byte, 256)
	if _, err := io.ReadFull(br, b); err != nil {
		return nil, fmt.Errorf("error reading header: %w", err)
	}

	version := strings.TrimSpace(string(b[0:8]))
	if version != "0" {
		return nil, fmt.Errorf("%w: edf version %q", ErrUnsupportedFormat, version)
	}

	dataRecords, err := strconv.Atoi(strings.TrimSpace(string(b[236:244])))
	if err != nil {
		return nil, fmt.Errorf("error parsing number of data records: %w", err)
	}

	recordDuration, err := strconv.ParseFloat(strings.TrimSpace(string(b[244:252])), 64)
	if err != nil {
		return nil, fmt.Errorf("error parsing data record duration: %w", err)
	}

	signalCount, err := strconv.Atoi(strings.TrimSpace(string(b[252:256])))
	if err != nil {
		return nil, fmt.Errorf("error parsing signal count: %w", err)
	}
	if signalCount <= 0 {
		return nil, fmt.Errorf("%w: no signals", ErrUnsupportedFormat)
	}

	signals, err := readSignalHeaders(br, signalCount)
	if err != nil {
		return nil, err
	}

	samplesPerRecord := signals[0].samplesPerRecord
	for _, sig := range signals {
		if sig.samplesPerRecord != samplesPerRecord {
			return nil, fmt.Errorf("%w: signals with mixed per-record sample counts", ErrUnsupportedFormat)
		}
	}
	if samplesPerRecord <= 0 || recordDuration <= 0 {
		return nil, fmt.Errorf("%w: degenerate record geometry", ErrUnsupportedFormat)
	}

	segments, err := readDataRecords(br, signals, dataRecords)
	if err != nil {
		return nil, err
	}

	return &Recording{
		SampleRate:       float64(samplesPerRecord) / recordDuration,
		ChannelCount:     signalCount,
		SegmentCount:     len(segments[0]),
		segments:         segments,
		SegmentLengthSec: recordDuration,
	}, nil
}

// readSignalHeaders parses the per-signal header arrays. EDF stores each
// field for all signals consecutively, not per signal.
func readSignalHeaders(br *bufio.Reader, count int) ([]edfSignal, error) {
	signals := make([]edfSignal, count)

	read := func(width int, assign func(i int, field string)) error {
		b := make([]byte, width)
		for i := 0; i < count; i++ {
			if _, err := io.ReadFull(br, b); err != nil {
				return fmt.Errorf("error reading signal headers: %w", err)
			}
			assign(i, strings.TrimSpace(string(b)))
		}
		return nil
	}

	steps := []struct {
		width  int
		assign func(i int, field string)
	}{
		{16, func(i int, f string) { signals[i].label = f }},
		{80, func(int, string) {}}, // transducer type
		{8, func(int, string) {}},  // physical dimension
		{8, func(i int, f string) { signals[i].physMin, _ = strconv.ParseFloat(f, 64) }},
		{8, func(i int, f string) { signals[i].physMax, _ = strconv.ParseFloat(f, 64) }},
		{8, func(i int, f string) { signals[i].digMin, _ = strconv.Atoi(f) }},
		{8, func(i int, f string) { signals[i].digMax, _ = strconv.Atoi(f) }},
		{80, func(int, string) {}}, // prefiltering
		{8, func(i int, f string) { signals[i].samplesPerRecord, _ = strconv.Atoi(f) }},
		{32, func(int, string) {}}, // reserved
	}

	for _, step := range steps {
		if err := read(step.width, step.assign); err != nil {
			return nil, err
		}
	}

	return signals, nil
}

// readDataRecords reads calibrated sample data, one segment per record per
// channel. A record count of -1 means unknown; records are read until EOF.
func readDataRecords(br *bufio.Reader, signals []edfSignal, dataRecords int) ([][][]float64, error) {
	segments := make([][][]float64, len(signals))

	buf := make([]byte, signals[0].samplesPerRecord*2)

	for record := 0; dataRecords < 0 || record < dataRecords; record++ {
		for ch, sig := range signals {
			if _, err := io.ReadFull(br, buf); err != nil {
				if err == io.EOF && ch == 0 && dataRecords < 0 {
					return segments, nil
				}
				return nil, fmt.Errorf("error reading record %d: %w", record, err)
			}

			values := make([]float64, sig.samplesPerRecord)
			for i := range values {
				digital := int16(binary.LittleEndian.Uint16(buf[2*i:]))
				values[i] = digitalToPhysical(digital, sig)
			}
			segments[ch] = append(segments[ch], values)
		}
	}

	return segments, nil
}

// digitalToPhysical applies the linear calibration from the signal header.
func digitalToPhysical(digital int16, sig edfSignal) float64 {
	if sig.digMax == sig.digMin {
		return 0
	}

	scale := (sig.physMax - sig.physMin) / float64(sig.digMax-sig.digMin)

	return sig.physMin + (float64(digital)-float64(sig.digMin))*scale
}
