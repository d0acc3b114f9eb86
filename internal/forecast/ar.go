package forecast

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

// arOrder is one autoregression candidate: p lags on the d-times
// differenced series. Candidates are tried in order until one fits.
type arOrder struct {
	p, d int
}

var arOrders = []arOrder{
	{p: 2, d: 1},
	{p: 1, d: 1},
	{p: 1, d: 0},
}

// autoregress fits a small AR model to the log1p-transformed series and
// projects it stepsAhead periods forward. The log transform keeps
// multiplicative series (prices, rates) roughly linear; it is skipped
// when any value falls outside its domain.
func autoregress(values []float64, stepsAhead int) (float64, bool) {
	logScale := true
	for _, v := range values {
		if v <= -1 {
			logScale = false
			break
		}
	}

	work := make([]float64, len(values))
	for i, v := range values {
		if logScale {
			work[i] = math.Log1p(v)
		} else {
			work[i] = v
		}
	}

	for _, order := range arOrders {
		forecast, ok := fitAndProject(work, order, stepsAhead)
		if !ok {
			continue
		}
		if logScale {
			forecast = math.Expm1(forecast)
		}
		if !isFinite(forecast) {
			continue
		}
		return forecast, true
	}

	return 0, false
}

// fitAndProject estimates an AR(p) on the d-times differenced series by
// least squares and iterates the fitted recurrence forward, undoing the
// differencing at the end.
func fitAndProject(series []float64, order arOrder, stepsAhead int) (float64, bool) {
	z := series
	tails := make([]float64, 0, order.d)
	for i := 0; i < order.d; i++ {
		if len(z) < 2 {
			return 0, false
		}
		tails = append(tails, z[len(z)-1])
		z = diff(z)
	}

	coefs, intercept, ok := fitAR(z, order.p)
	if !ok {
		return 0, false
	}

	// Iterate the recurrence forward on the differenced scale.
	history := append([]float64(nil), z...)
	projected := make([]float64, 0, stepsAhead)
	for step := 0; step < stepsAhead; step++ {
		next := intercept
		for lag := 1; lag <= order.p; lag++ {
			next += coefs[lag-1] * history[len(history)-lag]
		}
		if !isFinite(next) {
			return 0, false
		}
		history = append(history, next)
		projected = append(projected, next)
	}

	// Undo each differencing level with a cumulative sum anchored at
	// that level's last observed value.
	for i := len(tails) - 1; i >= 0; i-- {
		level := tails[i]
		for k, dv := range projected {
			level += dv
			projected[k] = level
		}
	}

	forecast := projected[len(projected)-1]
	return forecast, isFinite(forecast)
}

// fitAR solves the least-squares system for an AR(p) with intercept.
func fitAR(z []float64, p int) (coefs []float64, intercept float64, ok bool) {
	n := len(z) - p
	if n < p+2 {
		return nil, 0, false
	}

	x := mat.NewDense(n, p+1, nil)
	y := mat.NewVecDense(n, nil)
	for row := 0; row < n; row++ {
		t := row + p
		x.Set(row, 0, 1.0)
		for lag := 1; lag <= p; lag++ {
			x.Set(row, lag, z[t-lag])
		}
		y.SetVec(row, z[t])
	}

	var qr mat.QR
	qr.Factorize(x)

	beta := mat.NewVecDense(p+1, nil)
	if err := qr.SolveVecTo(beta, false, y); err != nil {
		return nil, 0, false
	}

	intercept = beta.AtVec(0)
	coefs = make([]float64, p)
	sum := 0.0
	for i := 0; i < p; i++ {
		coefs[i] = beta.AtVec(i + 1)
		if !isFinite(coefs[i]) {
			return nil, 0, false
		}
		sum += math.Abs(coefs[i])
	}
	if !isFinite(intercept) {
		return nil, 0, false
	}

	// Reject clearly explosive fits; the next stage handles these better.
	if sum > 1.5 {
		return nil, 0, false
	}

	return coefs, intercept, true
}

func diff(values []float64) []float64 {
	out := make([]float64, len(values)-1)
	for i := 1; i < len(values); i++ {
		out[i-1] = values[i] - values[i-1]
	}
	return out
}
