package forecast

import (
	"math"
	"sort"

	"github.com/jmcarbo/clioscope/internal/contracts"
)

// minPoints is the minimum history length for model-based projection.
// Shorter series fall through to last-value persistence.
const minPoints = 5

// Forecast projects a series stepsAhead periods past its last
// observation. It walks a fixed fallback chain and always returns a
// finite value, never an error:
//
//  1. fewer than minPoints observations: last observed value
//  2. degenerate series (flat, outlier jumps, sparse periods): last value
//  3. autoregression on the log1p-transformed series
//  4. simple exponential smoothing
//  5. moving average of the most recent observations
//  6. the caller's fallback value
func Forecast(series contracts.Series, stepsAhead int, fallback float64) float64 {
	values := series.Values()
	if len(values) == 0 {
		return fallback
	}
	if stepsAhead < 1 {
		stepsAhead = 1
	}

	last := values[len(values)-1]
	if len(values) < minPoints {
		return last
	}
	if degenerate(series, values) {
		return last
	}

	if v, ok := autoregress(values, stepsAhead); ok {
		return v
	}
	if v, ok := exponentialSmoothing(values); ok {
		return v
	}
	if v, ok := movingAverage(values); ok {
		return v
	}

	return fallback
}

// degenerate flags series where model fitting would be meaningless or
// unstable: near-zero variance, a jump beyond three robust standard
// deviations, or periods so sparse that most of the span is gaps.
func degenerate(series contracts.Series, values []float64) bool {
	m := mean(values)
	if stddev(values, m) < 1e-9 {
		return true
	}

	// A robust scale keeps one huge outlier from masking itself.
	scale := 1.4826 * medianAbsDeviation(values)
	for i := 1; i < len(values); i++ {
		jump := math.Abs(values[i] - values[i-1])
		if scale < 1e-9 {
			if jump > 1e-9 {
				return true
			}
			continue
		}
		if jump > 3*scale {
			return true
		}
	}

	periods := series.Periods()
	span := periods[len(periods)-1] - periods[0] + 1
	if span > 2*len(periods) {
		return true
	}

	return false
}

// exponentialSmoothing runs single exponential smoothing and returns
// the final level as a flat forecast.
func exponentialSmoothing(values []float64) (float64, bool) {
	const alpha = 0.3

	level := values[0]
	for _, v := range values[1:] {
		level = alpha*v + (1-alpha)*level
	}

	if !isFinite(level) {
		return 0, false
	}
	return level, true
}

// movingAverage returns the mean of the last three observations, or of
// all of them when fewer exist.
func movingAverage(values []float64) (float64, bool) {
	window := 3
	if len(values) < window {
		window = len(values)
	}
	if window == 0 {
		return 0, false
	}

	avg := mean(values[len(values)-window:])
	if !isFinite(avg) {
		return 0, false
	}
	return avg, true
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

func stddev(values []float64, m float64) float64 {
	if len(values) < 2 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		d := v - m
		sum += d * d
	}
	return math.Sqrt(sum / float64(len(values)-1))
}

func median(values []float64) float64 {
	n := len(values)
	if n == 0 {
		return 0
	}
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)
	if n%2 == 1 {
		return sorted[n/2]
	}
	return (sorted[n/2-1] + sorted[n/2]) / 2
}

func medianAbsDeviation(values []float64) float64 {
	m := median(values)
	devs := make([]float64, len(values))
	for i, v := range values {
		devs[i] = math.Abs(v - m)
	}
	return median(devs)
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
