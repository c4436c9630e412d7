package detect

import (
	"errors"
	"reflect"
	"testing"

	"github.com/cwbudde/algo-ephys/internal/testutil"
	"github.com/cwbudde/algo-ephys/measure"
)

func recomputedWidth(signal []float64, p int, sampleRate float64) float64 {
	return measure.FWHM(signal, p, sampleRate)
}

// ---------------------------------------------------------------------------
// Detection
// ---------------------------------------------------------------------------

func TestDetect_RefusesUnknownSampleRate(t *testing.T) {
	_, v := testutil.GaussianBumps(1000, 1, []testutil.Bump{{CenterSec: 0.5, Amplitude: 1, SigmaSec: 0.01}})

	if _, err := Detect(v, 0, Config{Prominence: 0.1}); !errors.Is(err, ErrNoSampleRate) {
		t.Fatalf("err = %v, want ErrNoSampleRate", err)
	}
	if _, err := Detect(v, -1, Config{Prominence: 0.1}); !errors.Is(err, ErrNoSampleRate) {
		t.Fatalf("err = %v, want ErrNoSampleRate", err)
	}
}

func TestDetect_FindsInjectedBumps(t *testing.T) {
	sr := 1000.0
	bumps := []testutil.Bump{
		{CenterSec: 1, Amplitude: 1.0, SigmaSec: 0.02},
		{CenterSec: 3, Amplitude: 0.8, SigmaSec: 0.02},
		{CenterSec: 5, Amplitude: 1.2, SigmaSec: 0.02},
	}
	_, v := testutil.GaussianBumps(sr, 7, bumps)

	cands, err := Detect(v, sr, Config{Prominence: 0.1, MinDistanceMS: 50})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(cands) != 3 {
		t.Fatalf("found %d candidates, want 3", len(cands))
	}

	for i, want := range []int{1000, 3000, 5000} {
		if got := cands[i].Index; got < want-2 || got > want+2 {
			t.Fatalf("candidate %d at sample %d, want ~%d", i, got, want)
		}
	}
}

func TestDetect_Idempotent(t *testing.T) {
	sr := 1000.0
	_, v := testutil.GaussianBumps(sr, 5, []testutil.Bump{
		{CenterSec: 1, Amplitude: 1, SigmaSec: 0.02},
		{CenterSec: 2.5, Amplitude: 0.5, SigmaSec: 0.03},
	})
	noise := testutil.DeterministicNoise(9, 0.02, len(v))
	for i := range v {
		v[i] += noise[i]
	}

	cfg := Config{Prominence: 0.2, MinDistanceMS: 50}

	first, err := Detect(v, sr, cfg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := Detect(v, sr, cfg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !reflect.DeepEqual(first, second) {
		t.Fatal("detection is not idempotent")
	}
}

func TestDetect_ProminenceThreshold(t *testing.T) {
	sr := 1000.0
	_, v := testutil.GaussianBumps(sr, 5, []testutil.Bump{
		{CenterSec: 1, Amplitude: 1.0, SigmaSec: 0.02},
		{CenterSec: 3, Amplitude: 0.1, SigmaSec: 0.02},
	})

	cands, err := Detect(v, sr, Config{Prominence: 0.5, MinDistanceMS: 50})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(cands) != 1 {
		t.Fatalf("found %d candidates, want only the tall bump", len(cands))
	}
	if got := cands[0].Index; got < 998 || got > 1002 {
		t.Fatalf("candidate at %d, want ~1000", got)
	}
}

func TestDetect_DistanceSuppression(t *testing.T) {
	sr := 1000.0
	// Two bumps 30 ms apart; a 50 ms separation keeps only the taller one.
	_, v := testutil.GaussianBumps(sr, 2, []testutil.Bump{
		{CenterSec: 1.0, Amplitude: 1.0, SigmaSec: 0.004},
		{CenterSec: 1.03, Amplitude: 0.6, SigmaSec: 0.004},
	})

	cands, err := Detect(v, sr, Config{Prominence: 0.1, MinDistanceMS: 50})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(cands) != 1 {
		t.Fatalf("found %d candidates, want 1", len(cands))
	}
	if got := cands[0].Index; got < 998 || got > 1002 {
		t.Fatalf("survivor at %d, want the taller bump ~1000", got)
	}
}

func TestDetect_NegativePolarity(t *testing.T) {
	sr := 1000.0
	_, v := testutil.GaussianBumps(sr, 3, []testutil.Bump{{CenterSec: 1.5, Amplitude: -1, SigmaSec: 0.02}})

	none, err := Detect(v, sr, Config{Prominence: 0.1, MinDistanceMS: 50, Polarity: Positive})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(none) != 0 {
		t.Fatalf("positive mode found %d candidates on a trough", len(none))
	}

	cands, err := Detect(v, sr, Config{Prominence: 0.1, MinDistanceMS: 50, Polarity: Negative})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(cands) != 1 {
		t.Fatalf("negative mode found %d candidates, want 1", len(cands))
	}
	if got := cands[0].Index; got < 1498 || got > 1502 {
		t.Fatalf("trough at %d, want ~1500", got)
	}
	if cands[0].Prominence < 0.5 {
		t.Fatalf("trough prominence %v, want the inverted height", cands[0].Prominence)
	}
}

func TestDetect_BothPolaritySortedByIndex(t *testing.T) {
	sr := 1000.0
	_, v := testutil.GaussianBumps(sr, 5, []testutil.Bump{
		{CenterSec: 1, Amplitude: 1, SigmaSec: 0.02},
		{CenterSec: 2, Amplitude: -1, SigmaSec: 0.02},
		{CenterSec: 3, Amplitude: 1, SigmaSec: 0.02},
	})

	cands, err := Detect(v, sr, Config{Prominence: 0.1, MinDistanceMS: 50, Polarity: Both})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(cands) != 3 {
		t.Fatalf("found %d candidates, want 3", len(cands))
	}
	for i := 1; i < len(cands); i++ {
		if cands[i].Index <= cands[i-1].Index {
			t.Fatalf("candidates not ascending: %d then %d", cands[i-1].Index, cands[i].Index)
		}
	}
}

func TestLocalMaxima_PlateauMidpoint(t *testing.T) {
	x := []float64{0, 1, 2, 2, 2, 1, 0}

	got := localMaxima(x)
	want := []int{3}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("plateau maxima = %v, want %v", got, want)
	}
}

func TestLocalMaxima_EndpointsExcluded(t *testing.T) {
	x := []float64{5, 1, 0, 1, 6}

	if got := localMaxima(x); len(got) != 0 {
		t.Fatalf("endpoint samples reported as maxima: %v", got)
	}
}

func TestProminence_BoundedByHigherNeighbor(t *testing.T) {
	// Small peak at 5 between a deep valley (0.0) and a saddle (0.5) before
	// a taller peak. Prominence is measured to the higher of the two bases.
	x := []float64{0, 0, 1, 0.5, 0.5, 2, 0.5, 0.5, 3, 0, 0}

	got := prominence(x, 5)
	if got != 1.5 {
		t.Fatalf("prominence = %v, want 1.5", got)
	}
}

// ---------------------------------------------------------------------------
// Width filter
// ---------------------------------------------------------------------------

func TestFilterByWidth_KeepsInRange(t *testing.T) {
	sr := 1000.0
	// Sigma 20 ms -> FWHM ~47 ms; sigma 1 ms -> FWHM ~2.4 ms.
	_, v := testutil.GaussianBumps(sr, 5, []testutil.Bump{
		{CenterSec: 1, Amplitude: 1, SigmaSec: 0.02},
		{CenterSec: 3, Amplitude: 1, SigmaSec: 0.001},
	})

	cands, err := Detect(v, sr, Config{Prominence: 0.1, MinDistanceMS: 50})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(cands) != 2 {
		t.Fatalf("found %d candidates, want 2", len(cands))
	}

	kept := FilterByWidth(v, cands, sr, 0.005, 0.5)
	if len(kept) != 1 {
		t.Fatalf("kept %d candidates, want 1", len(kept))
	}
	if got := kept[0].Index; got < 998 || got > 1002 {
		t.Fatalf("kept candidate at %d, want the wide bump ~1000", got)
	}
}

func TestFilterByWidth_NeverReturnsOutOfRange(t *testing.T) {
	sr := 1000.0
	_, v := testutil.GaussianBumps(sr, 10, []testutil.Bump{
		{CenterSec: 1, Amplitude: 1, SigmaSec: 0.002},
		{CenterSec: 3, Amplitude: 1, SigmaSec: 0.01},
		{CenterSec: 5, Amplitude: 1, SigmaSec: 0.05},
		{CenterSec: 7, Amplitude: 1, SigmaSec: 0.1},
	})
	noise := testutil.DeterministicNoise(4, 0.01, len(v))
	for i := range v {
		v[i] += noise[i]
	}

	cands, err := Detect(v, sr, Config{Prominence: 0.3, MinDistanceMS: 100})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	minW, maxW := 0.01, 0.2
	for _, c := range FilterByWidth(v, cands, sr, minW, maxW) {
		w := recomputedWidth(v, c.Index, sr)
		if w < minW || w > maxW {
			t.Fatalf("candidate %d survived with width %v outside [%v, %v]", c.Index, w, minW, maxW)
		}
	}
}

func TestFilterByWidth_EmptyInput(t *testing.T) {
	if got := FilterByWidth(nil, nil, 1000, 0.005, 0.5); len(got) != 0 {
		t.Fatalf("expected empty result, got %v", got)
	}
}
