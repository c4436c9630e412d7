package measure

import (
	"math"
	"testing"

	"github.com/cwbudde/algo-ephys/internal/testutil"
)

// ---------------------------------------------------------------------------
// Amplitudes and widths
// ---------------------------------------------------------------------------

func TestAmplitude_BaselineCorrected(t *testing.T) {
	sr := 1000.0
	_, v := testutil.GaussianBumps(sr, 4, []testutil.Bump{{CenterSec: 2, Amplitude: 1.5, SigmaSec: 0.02}})

	// Shift the whole trace; the baseline correction must remove the offset.
	for i := range v {
		v[i] += 10
	}

	got := Amplitude(v, 2000, sr)
	if math.Abs(got-1.5) > 0.05 {
		t.Fatalf("amplitude = %v, want ~1.5 despite +10 offset", got)
	}
}

func TestAmplitudes_Length(t *testing.T) {
	sr := 1000.0
	_, v := testutil.GaussianBumps(sr, 4, []testutil.Bump{
		{CenterSec: 1, Amplitude: 1, SigmaSec: 0.02},
		{CenterSec: 3, Amplitude: 2, SigmaSec: 0.02},
	})

	amps := Amplitudes(v, []int{1000, 3000}, sr)
	if len(amps) != 2 {
		t.Fatalf("got %d amplitudes, want 2", len(amps))
	}
	if math.Abs(amps[0]-1) > 0.05 || math.Abs(amps[1]-2) > 0.1 {
		t.Fatalf("amplitudes %v, want ~[1, 2]", amps)
	}
}

func TestFWHM_GaussianWidth(t *testing.T) {
	sr := 1000.0
	sigma := 0.02
	_, v := testutil.GaussianBumps(sr, 4, []testutil.Bump{{CenterSec: 2, Amplitude: 1, SigmaSec: sigma}})

	got := FWHM(v, 2000, sr)
	want := 2 * math.Sqrt(2*math.Ln2) * sigma // ~47.1 ms
	if math.Abs(got-want) > 0.005 {
		t.Fatalf("FWHM = %v s, want ~%v s", got, want)
	}
}

func TestFWHM_ZeroForUnknownRate(t *testing.T) {
	_, v := testutil.GaussianBumps(1000, 1, []testutil.Bump{{CenterSec: 0.5, Amplitude: 1, SigmaSec: 0.01}})

	if got := FWHM(v, 500, 0); got != 0 {
		t.Fatalf("FWHM = %v, want 0", got)
	}
}

func TestFWHM_BoundedSearchUnderestimates(t *testing.T) {
	sr := 1000.0
	// A peak right at the edge: the search bound is the distance to the
	// boundary, so the width is clipped, not an error.
	v := make([]float64, 100)
	v[3] = 1

	got := FWHM(v, 3, sr)
	if got < 0 || got > 6.0/sr {
		t.Fatalf("edge FWHM = %v, want within the 3-sample bound", got)
	}
}

func TestLocalBaseline_MedianIgnoresOutliers(t *testing.T) {
	sr := 1000.0
	n := 1000
	v := testutil.DC(2, n)
	v[500] = 10 // the peak itself
	v[450] = 50 // an outlier inside the baseline window

	got := localBaseline(v, 500, sr, widthWindowFloor, widthGuardFloor)
	if got != 2 {
		t.Fatalf("baseline = %v, want median 2", got)
	}
}

func TestLocalBaseline_FallbackNearEdges(t *testing.T) {
	// Too short for any flanking window: falls back to the +/-5 mean.
	v := []float64{1, 1, 1, 7, 1, 1, 1}

	got := localBaseline(v, 3, 1000, widthWindowFloor, widthGuardFloor)
	want := (1.0*6 + 7) / 7
	if math.Abs(got-want) > 1e-12 {
		t.Fatalf("fallback baseline = %v, want %v", got, want)
	}
}

// ---------------------------------------------------------------------------
// Unit conversion
// ---------------------------------------------------------------------------

func TestConvertUnits_AutoBands(t *testing.T) {
	cases := []struct {
		name  string
		in    []float64
		want  []float64
		label string
	}{
		{"microvolt scale", []float64{1500, -1200}, []float64{1.5, -1.2}, "mV"},
		{"millivolt scale", []float64{5, -3}, []float64{5, -3}, "mV"},
		{"volt scale", []float64{0.5, -0.2}, []float64{500, -200}, "mV"},
		{"tiny values", []float64{0.001, -0.002}, []float64{1, -2}, "mV"},
	}

	for _, tc := range cases {
		got, label := ConvertUnits(tc.in, UnitAuto)
		if label != tc.label {
			t.Fatalf("%s: label %q, want %q", tc.name, label, tc.label)
		}
		for i := range tc.want {
			if math.Abs(got[i]-tc.want[i]) > 1e-9 {
				t.Fatalf("%s: got %v, want %v", tc.name, got, tc.want)
			}
		}
	}
}

func TestConvertUnits_ExplicitPassThrough(t *testing.T) {
	in := []float64{1234, -0.5}

	for _, unit := range []string{UnitMicrovolts, UnitMillivolts, UnitVolts} {
		got, label := ConvertUnits(in, unit)
		if label != unit {
			t.Fatalf("label %q, want %q", label, unit)
		}
		for i := range in {
			if got[i] != in[i] {
				t.Fatalf("unit %s: values changed: %v", unit, got)
			}
		}
	}
}

func TestConvertUnits_DoesNotMutateInput(t *testing.T) {
	in := []float64{1500, -1200}
	ConvertUnits(in, UnitAuto)
	if in[0] != 1500 || in[1] != -1200 {
		t.Fatalf("input mutated: %v", in)
	}
}

func TestConvertUnits_UnknownSelection(t *testing.T) {
	got, label := ConvertUnits([]float64{1}, "furlongs")
	if label != "units" || got[0] != 1 {
		t.Fatalf("got %v %q, want pass-through with label \"units\"", got, label)
	}
}

func TestConvertUnits_EmptyInput(t *testing.T) {
	got, label := ConvertUnits(nil, UnitAuto)
	if len(got) != 0 || label != "mV" {
		t.Fatalf("got %v %q for empty input", got, label)
	}
}
