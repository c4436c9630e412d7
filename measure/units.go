package measure

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

// Unit selection names as shown to the operator.
const (
	UnitAuto       = "Auto"
	UnitMicrovolts = "µV"
	UnitMillivolts = "mV"
	UnitVolts      = "V"
)

// ConvertUnits converts amplitude values for presentation and returns the
// converted copy with its unit label.
//
// Auto mode inspects max(|values|) and assumes the most plausible source
// unit: values above 1000 are taken as µV and divided down to mV; values
// above 10 are taken as mV already; anything smaller is taken as V and
// multiplied up to mV. The two lowest bands intentionally apply the same
// transform and label; downstream consumers depend on that historical
// behavior.
//
// Explicit unit selections pass the values through unchanged under that
// label. Unknown selections pass through labeled "units".
func ConvertUnits(values []float64, unit string) ([]float64, string) {
	out := append([]float64(nil), values...)

	switch unit {
	case UnitAuto:
		maxVal := 1.0
		if len(values) > 0 {
			maxVal = floats.Norm(out, math.Inf(1))
		}

		switch {
		case maxVal > 1000:
			floats.Scale(1.0/1000, out)
			return out, UnitMillivolts
		case maxVal > 10:
			return out, UnitMillivolts
		case maxVal > 0.01:
			floats.Scale(1000, out)
			return out, UnitMillivolts
		default:
			floats.Scale(1000, out)
			return out, UnitMillivolts
		}

	case UnitMicrovolts, UnitMillivolts, UnitVolts:
		return out, unit
	}

	return out, "units"
}
