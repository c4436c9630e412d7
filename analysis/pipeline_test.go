package analysis

import (
	"errors"
	"testing"

	"github.com/cwbudde/algo-ephys/detect"
	"github.com/cwbudde/algo-ephys/dsp/filter"
	"github.com/cwbudde/algo-ephys/internal/testutil"
)

func TestProcessPreservesLength(t *testing.T) {
	const fs = 1000.0
	raw := testutil.DeterministicNoise(7, 1.0, 2048)

	configs := []ProcessingConfig{
		{HighpassHz: 0.2},
		{HighpassHz: 1, NotchEnabled: true, NotchFreqHz: 50, NotchQ: 30},
		{HighpassHz: 1, SmoothEnabled: true, SmoothWindow: 11},
		{HighpassHz: 1, NotchEnabled: true, NotchFreqHz: 50, NotchQ: 30, SmoothEnabled: true, SmoothWindow: 21},
	}

	for i, cfg := range configs {
		out, err := Process(raw, fs, cfg)
		if err != nil {
			t.Fatalf("config %d: unexpected error: %v", i, err)
		}
		if len(out) != len(raw) {
			t.Fatalf("config %d: length changed from %d to %d", i, len(raw), len(out))
		}
	}
}

func TestProcessRemovesDC(t *testing.T) {
	const fs = 1000.0
	raw := testutil.DC(5.0, 4096)

	out, err := Process(raw, fs, ProcessingConfig{HighpassHz: 1})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if rms := testutil.RMS(out[1000:3000]); rms > 0.05 {
		t.Fatalf("high-pass left DC in place, interior RMS = %g", rms)
	}
}

func TestProcessClampsCutoffAtNyquist(t *testing.T) {
	const fs = 100.0
	raw := testutil.DeterministicNoise(3, 1.0, 512)

	// Cutoff above Nyquist must be clamped, not rejected.
	out, err := Process(raw, fs, ProcessingConfig{HighpassHz: 80})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(out) != len(raw) {
		t.Fatalf("length changed from %d to %d", len(raw), len(out))
	}
}

func TestProcessSkipsNotchAtNyquist(t *testing.T) {
	const fs = 80.0
	raw := testutil.DeterministicSine(10, fs, 1.0, 1024)

	with, err := Process(raw, fs, ProcessingConfig{HighpassHz: 1, NotchEnabled: true, NotchFreqHz: 50, NotchQ: 30})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	without, err := Process(raw, fs, ProcessingConfig{HighpassHz: 1})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for i := range with {
		if with[i] != without[i] {
			t.Fatalf("notch at %g Hz above Nyquist %g Hz modified sample %d", 50.0, fs/2, i)
		}
	}
}

func TestProcessForcesOddSmoothWindow(t *testing.T) {
	const fs = 1000.0
	raw := testutil.DeterministicNoise(11, 1.0, 1024)

	even, err := Process(raw, fs, ProcessingConfig{HighpassHz: 1, SmoothEnabled: true, SmoothWindow: 10})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	odd, err := Process(raw, fs, ProcessingConfig{HighpassHz: 1, SmoothEnabled: true, SmoothWindow: 11})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for i := range even {
		if even[i] != odd[i] {
			t.Fatalf("window 10 and 11 diverge at sample %d: %g vs %g", i, even[i], odd[i])
		}
	}
}

func TestProcessSkipsSmoothingOnShortInput(t *testing.T) {
	const fs = 1000.0
	raw := testutil.DeterministicNoise(5, 1.0, 7)

	with, err := Process(raw, fs, ProcessingConfig{HighpassHz: 1, SmoothEnabled: true, SmoothWindow: 11})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	without, err := Process(raw, fs, ProcessingConfig{HighpassHz: 1})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for i := range with {
		if with[i] != without[i] {
			t.Fatalf("smoothing ran on input shorter than the window, sample %d differs", i)
		}
	}
}

func TestProcessRejectsDegenerateDesign(t *testing.T) {
	raw := testutil.DeterministicNoise(1, 1.0, 256)

	if _, err := Process(raw, 1000, ProcessingConfig{HighpassHz: 0}); !errors.Is(err, filter.ErrInvalidParameter) {
		t.Fatalf("cutoff 0: got %v, want ErrInvalidParameter", err)
	}
	if _, err := Process(raw, 0, ProcessingConfig{HighpassHz: 1}); !errors.Is(err, filter.ErrInvalidParameter) {
		t.Fatalf("rate 0: got %v, want ErrInvalidParameter", err)
	}
	cfg := ProcessingConfig{HighpassHz: 1, NotchEnabled: true, NotchFreqHz: 50, NotchQ: 0}
	if _, err := Process(raw, 1000, cfg); !errors.Is(err, filter.ErrInvalidParameter) {
		t.Fatalf("notch q 0: got %v, want ErrInvalidParameter", err)
	}
}

func TestFilterDescription(t *testing.T) {
	proc := ProcessingConfig{HighpassHz: 0.2, NotchEnabled: true, NotchFreqHz: 50, SmoothEnabled: true, SmoothWindow: 11}
	det := detect.Config{Polarity: detect.Negative}

	got := FilterDescription(proc, det)
	want := "HP 0.2Hz, Notch 50Hz, Smooth 11, Negative peaks"
	if got != want {
		t.Fatalf("description = %q, want %q", got, want)
	}

	got = FilterDescription(ProcessingConfig{HighpassHz: 1}, detect.Config{Polarity: detect.Positive})
	if got != "HP 1Hz" {
		t.Fatalf("description = %q, want %q", got, "HP 1Hz")
	}
}
