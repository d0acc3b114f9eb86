package indicators

import (
	"math"

	"github.com/jmcarbo/clioscope/internal/contracts"
)

// Normalize maps a raw indicator value onto [0,1] under the
// indicator's rule. It is total: any real input, including NaN and
// infinities, yields a value in [0,1].
func Normalize(def contracts.IndicatorDef, raw float64) float64 {
	if math.IsNaN(raw) {
		return 0
	}

	var v float64
	switch def.Norm.Kind {
	case contracts.NormPercent:
		ceiling := def.Norm.Ceiling
		if ceiling <= 0 {
			ceiling = 100
		}
		v = raw / ceiling
	case contracts.NormGovernance:
		// World Governance Indicators sit on [-2.5, 2.5].
		v = (raw + 2.5) / 5.0
	case contracts.NormBounded:
		v = raw
	case contracts.NormLog:
		ceiling := def.Norm.Ceiling
		if ceiling <= 0 {
			ceiling = 1
		}
		if raw < 0 {
			raw = 0
		}
		v = math.Log1p(raw) / math.Log1p(ceiling)
	default:
		v = 0
	}

	return clamp01(v)
}

func clamp01(v float64) float64 {
	if math.IsNaN(v) || v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
