package indicators

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmcarbo/clioscope/internal/cache"
	"github.com/jmcarbo/clioscope/internal/contracts"
	"github.com/jmcarbo/clioscope/pkg/config"
	"github.com/jmcarbo/clioscope/pkg/logger"
)

// fakeProvider serves canned series or a fixed error.
type fakeProvider struct {
	name   string
	points map[int]float64
	err    error
	calls  int
}

func (f *fakeProvider) Name() string { return f.name }

func (f *fakeProvider) Fetch(_ context.Context, entityCode, indicatorCode string, _, _ int) (contracts.Series, error) {
	f.calls++
	series := contracts.NewSeries(entityCode, indicatorCode)
	if f.err != nil {
		return series, f.err
	}
	for p, v := range f.points {
		series.Points[p] = v
	}
	return series, nil
}

func testResolver(t *testing.T, providers ...contracts.Provider) (*Resolver, *cache.Store) {
	t.Helper()
	log := logger.New(&config.Config{LogLevel: "error", LogFormat: "json"})
	store := cache.NewStore(filepath.Join(t.TempDir(), "cache.json"), log)
	return NewResolver(providers, store, 6, log), store
}

func annualDef(name string, providers ...contracts.ProviderRef) contracts.IndicatorDef {
	return contracts.IndicatorDef{
		Name:      name,
		Providers: providers,
		Frequency: contracts.FreqAnnual,
		Norm:      contracts.NormRule{Kind: contracts.NormPercent, Ceiling: 100},
		Default:   20.0,
	}
}

func TestResolveCurrentPeriodFromProvider(t *testing.T) {
	wb := &fakeProvider{name: "worldbank", points: map[int]float64{2024: 12.5, 2025: 13.0}}
	r, _ := testResolver(t, wb)

	def := annualDef("youth_unemployment", contracts.ProviderRef{Provider: "worldbank", Code: "SL.UEM.1524.ZS"})
	res := r.Resolve(context.Background(), "ESP", def, 2025)

	assert.Equal(t, 13.0, res.Value)
	assert.Equal(t, contracts.SourceProvider, res.Source)
}

func TestResolvePreviousPeriodIsDirect(t *testing.T) {
	wb := &fakeProvider{name: "worldbank", points: map[int]float64{2024: 12.5}}
	r, _ := testResolver(t, wb)

	def := annualDef("youth_unemployment", contracts.ProviderRef{Provider: "worldbank", Code: "SL.UEM.1524.ZS"})
	res := r.Resolve(context.Background(), "ESP", def, 2025)

	assert.Equal(t, 12.5, res.Value)
	assert.Equal(t, contracts.SourceProvider, res.Source)
}

func TestResolveStaleHistoryGoesThroughProjection(t *testing.T) {
	// A single observation three years back: the projection chain has
	// nothing to fit and passes the value through unchanged.
	wb := &fakeProvider{name: "worldbank", points: map[int]float64{2022: 9.9}}
	r, _ := testResolver(t, wb)

	def := annualDef("neet_ratio", contracts.ProviderRef{Provider: "worldbank", Code: "SL.UEM.NEET.ZS"})
	res := r.Resolve(context.Background(), "ESP", def, 2025)

	assert.Equal(t, 9.9, res.Value)
	assert.Equal(t, contracts.SourceForecast, res.Source)
}

func TestResolveColdCacheAllProvidersFailYieldsExactDefault(t *testing.T) {
	wb := &fakeProvider{name: "worldbank", err: errors.New("boom")}
	im := &fakeProvider{name: "imf", err: errors.New("boom")}
	r, _ := testResolver(t, wb, im)

	def := annualDef("youth_unemployment",
		contracts.ProviderRef{Provider: "worldbank", Code: "SL.UEM.1524.ZS"},
		contracts.ProviderRef{Provider: "imf", Code: "LUR_SA_X_PT"},
	)
	res := r.Resolve(context.Background(), "ESP", def, 2025)

	assert.Equal(t, 20.0, res.Value)
	assert.Equal(t, contracts.SourceDefault, res.Source)
}

func TestResolveEntitySpecificDefault(t *testing.T) {
	wb := &fakeProvider{name: "worldbank", err: errors.New("boom")}
	r, _ := testResolver(t, wb)

	def := CatalogByName()["gini_coefficient"]
	res := r.Resolve(context.Background(), "USA", def, 2025)

	assert.Equal(t, 40.0, res.Value)
	assert.Equal(t, contracts.SourceDefault, res.Source)
}

func TestResolveLaterProviderOverridesSharedPeriods(t *testing.T) {
	wb := &fakeProvider{name: "worldbank", points: map[int]float64{2024: 3.0, 2025: 3.1}}
	im := &fakeProvider{name: "imf", points: map[int]float64{2025: 2.8}}
	r, _ := testResolver(t, wb, im)

	def := annualDef("inflation_annual",
		contracts.ProviderRef{Provider: "worldbank", Code: "FP.CPI.TOTL.ZG"},
		contracts.ProviderRef{Provider: "imf", Code: "PCPI_A_SA_X_PCT"},
	)
	res := r.Resolve(context.Background(), "ESP", def, 2025)

	assert.Equal(t, 2.8, res.Value)
	delta, ok := res.Delta()
	require.True(t, ok)
	assert.InDelta(t, -0.2, delta, 1e-9)
}

func TestResolveFreshCacheShortCircuitsProviders(t *testing.T) {
	wb := &fakeProvider{name: "worldbank", points: map[int]float64{2025: 99.0}}
	r, store := testResolver(t, wb)
	store.Put("ESP", "youth_unemployment", 11.1, contracts.FreqAnnual)

	def := annualDef("youth_unemployment", contracts.ProviderRef{Provider: "worldbank", Code: "SL.UEM.1524.ZS"})
	res := r.Resolve(context.Background(), "ESP", def, 2025)

	assert.Equal(t, 11.1, res.Value)
	assert.Equal(t, contracts.SourceCache, res.Source)
	assert.Equal(t, 0, wb.calls)
}

func TestResolveCacheHitKeepsTrendInputs(t *testing.T) {
	// The second resolution is served from the staged cache entry and
	// must replay the same observation history as the first, so trend
	// deltas and projections do not vanish on warm reruns.
	wb := &fakeProvider{name: "worldbank", points: map[int]float64{2023: 10.0, 2024: 11.0, 2025: 12.0}}
	r, _ := testResolver(t, wb)

	def := annualDef("youth_unemployment", contracts.ProviderRef{Provider: "worldbank", Code: "SL.UEM.1524.ZS"})

	first := r.Resolve(context.Background(), "ESP", def, 2025)
	firstDelta, ok := first.Delta()
	require.True(t, ok)

	second := r.Resolve(context.Background(), "ESP", def, 2025)
	assert.Equal(t, contracts.SourceCache, second.Source)
	assert.Equal(t, 1, wb.calls)

	assert.Equal(t, first.Value, second.Value)
	assert.Equal(t, first.Series.Values(), second.Series.Values())
	secondDelta, ok := second.Delta()
	require.True(t, ok)
	assert.InDelta(t, firstDelta, secondDelta, 1e-9)
}

func TestResolveStagesFetchedValues(t *testing.T) {
	wb := &fakeProvider{name: "worldbank", points: map[int]float64{2025: 13.0}}
	r, store := testResolver(t, wb)

	def := annualDef("youth_unemployment", contracts.ProviderRef{Provider: "worldbank", Code: "SL.UEM.1524.ZS"})
	r.Resolve(context.Background(), "ESP", def, 2025)

	assert.Equal(t, 1, store.Staged())
	entry, ok := store.Get("ESP", "youth_unemployment")
	require.True(t, ok)
	assert.Equal(t, 13.0, entry.Value)
}

func TestResolveNoProvidersFallsToDefault(t *testing.T) {
	r, _ := testResolver(t)

	def := CatalogByName()["social_cohesion_index"]
	res := r.Resolve(context.Background(), "JPN", def, 2025)

	assert.Equal(t, 0.5, res.Value)
	assert.Equal(t, contracts.SourceDefault, res.Source)
}
