package indicators

import (
	"context"
	"math"

	"github.com/jmcarbo/clioscope/internal/cache"
	"github.com/jmcarbo/clioscope/internal/contracts"
	"github.com/jmcarbo/clioscope/internal/forecast"
	"github.com/jmcarbo/clioscope/pkg/logger"
)

// Resolution is the outcome of resolving one indicator for one entity:
// the raw value, where it came from, and the series behind it (for
// trend and projection penalties). Cache hits carry the persisted
// observation history, so a cached resolution scores the same as the
// provider-served one it replays.
type Resolution struct {
	Value  float64
	Source contracts.ResolutionSource
	Series contracts.Series
}

// Delta returns the latest-minus-previous change in the underlying
// series. ok is false with fewer than two observations.
func (r Resolution) Delta() (float64, bool) {
	values := r.Series.Values()
	if len(values) < 2 {
		return 0, false
	}
	return values[len(values)-1] - values[len(values)-2], true
}

// Resolver turns indicator definitions into concrete values. It never
// returns an error: the fallback ladder (fresh cache, providers in
// priority order, forecast from stale history, defaults) always
// terminates in a finite value.
type Resolver struct {
	providers    map[string]contracts.Provider
	cache        *cache.Store
	historyYears int
	logger       *logger.Logger
}

// NewResolver creates a resolver over the given providers.
func NewResolver(providers []contracts.Provider, store *cache.Store, historyYears int, log *logger.Logger) *Resolver {
	byName := make(map[string]contracts.Provider, len(providers))
	for _, p := range providers {
		byName[p.Name()] = p
	}
	return &Resolver{
		providers:    byName,
		cache:        store,
		historyYears: historyYears,
		logger:       log.WithField("component", "resolver"),
	}
}

// Resolve produces a finite value for one entity and indicator at the
// given current period.
func (r *Resolver) Resolve(ctx context.Context, entityCode string, def contracts.IndicatorDef, currentPeriod int) Resolution {
	if entry, ok := r.cache.GetFresh(entityCode, def.Name); ok {
		// Rehydrate the cached observations so trend and projection
		// inputs match what the original resolution produced.
		series := contracts.NewSeries(entityCode, def.Name)
		for period, value := range entry.History {
			series.Points[period] = value
		}
		return Resolution{
			Value:  entry.Value,
			Source: contracts.SourceCache,
			Series: series,
		}
	}

	merged := r.fetchAll(ctx, entityCode, def, currentPeriod)

	res := r.pick(entityCode, def, merged, currentPeriod)
	if math.IsNaN(res.Value) || math.IsInf(res.Value, 0) {
		res.Value = DefaultFor(def, entityCode)
		res.Source = contracts.SourceDefault
	}

	r.cache.PutSeries(entityCode, def.Name, res.Value, def.Frequency, res.Series.Points)

	return res
}

// fetchAll queries the indicator's providers in priority order and
// merges their series, later providers overriding shared periods.
// Provider failures degrade to an empty contribution.
func (r *Resolver) fetchAll(ctx context.Context, entityCode string, def contracts.IndicatorDef, currentPeriod int) contracts.Series {
	merged := contracts.NewSeries(entityCode, def.Name)

	fromYear := currentPeriod - r.historyYears
	for _, ref := range def.Providers {
		provider, ok := r.providers[ref.Provider]
		if !ok {
			r.logger.WithFields(map[string]interface{}{
				"provider":  ref.Provider,
				"indicator": def.Name,
			}).Warn("No such provider registered")
			continue
		}

		series, err := provider.Fetch(ctx, entityCode, ref.Code, fromYear, currentPeriod)
		if err != nil {
			r.logger.WithFields(map[string]interface{}{
				"provider":  ref.Provider,
				"indicator": def.Name,
				"entity":    entityCode,
			}).WithError(err).Warn("Provider fetch failed")
			continue
		}
		merged.Merge(series)
	}

	return merged
}

// pick selects a value from the merged series: the current or the
// immediately preceding period directly, anything older through the
// projection chain, and the defaults table when nothing came back.
func (r *Resolver) pick(entityCode string, def contracts.IndicatorDef, merged contracts.Series, currentPeriod int) Resolution {
	if v, ok := merged.Points[currentPeriod]; ok {
		return Resolution{Value: v, Source: contracts.SourceProvider, Series: merged}
	}
	if v, ok := merged.Points[currentPeriod-1]; ok {
		return Resolution{Value: v, Source: contracts.SourceProvider, Series: merged}
	}

	if !merged.IsEmpty() {
		latest, _, _ := merged.Latest()
		steps := currentPeriod - latest
		value := forecast.Forecast(merged, steps, DefaultFor(def, entityCode))
		return Resolution{Value: value, Source: contracts.SourceForecast, Series: merged}
	}

	return Resolution{
		Value:  DefaultFor(def, entityCode),
		Source: contracts.SourceDefault,
		Series: merged,
	}
}
