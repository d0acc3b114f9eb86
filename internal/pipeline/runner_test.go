package pipeline

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmcarbo/clioscope/internal/borders"
	"github.com/jmcarbo/clioscope/internal/cache"
	"github.com/jmcarbo/clioscope/internal/contracts"
	"github.com/jmcarbo/clioscope/internal/indicators"
	"github.com/jmcarbo/clioscope/internal/scoring"
	"github.com/jmcarbo/clioscope/pkg/config"
	"github.com/jmcarbo/clioscope/pkg/logger"
)

// fixedProvider returns the same series for every entity and indicator
// it is asked for: the single value at the current period, or the trend
// values ending at the current period when trend is set.
type fixedProvider struct {
	name  string
	value float64
	trend []float64
	delay time.Duration
}

func (f *fixedProvider) Name() string { return f.name }

func (f *fixedProvider) Fetch(ctx context.Context, entityCode, indicatorCode string, _, toYear int) (contracts.Series, error) {
	if f.delay > 0 {
		select {
		case <-time.After(f.delay):
		case <-ctx.Done():
			return contracts.NewSeries(entityCode, indicatorCode), ctx.Err()
		}
	}
	series := contracts.NewSeries(entityCode, indicatorCode)
	if len(f.trend) > 0 {
		for i, v := range f.trend {
			series.Points[toYear-len(f.trend)+1+i] = v
		}
	} else {
		series.Points[toYear] = f.value
	}
	return series, nil
}

// captureSink records what the runner persisted.
type captureSink struct {
	summary   contracts.RunSummary
	snapshots []*contracts.Snapshot
	calls     int
}

func (c *captureSink) SaveRun(summary contracts.RunSummary, snapshots []*contracts.Snapshot) error {
	c.summary = summary
	c.snapshots = snapshots
	c.calls++
	return nil
}

func testRunner(t *testing.T, entities []string, providers []contracts.Provider, cfg Config) (*Runner, *captureSink, *cache.Store) {
	t.Helper()
	log := logger.New(&config.Config{LogLevel: "error", LogFormat: "json"})

	store := cache.NewStore(filepath.Join(t.TempDir(), "cache.json"), log)
	resolver := indicators.NewResolver(providers, store, 6, log)
	engine := scoring.NewEngine(scoring.DefaultConfig(), indicators.CatalogByName(), log)
	sink := &captureSink{}

	cfg.Entities = entities
	runner := NewRunner(resolver, engine, store, borders.DefaultGraph(),
		nil, nil, nil, sink, nil, cfg, log)

	return runner, sink, store
}

func defaultProviders(value float64) []contracts.Provider {
	return []contracts.Provider{
		&fixedProvider{name: "worldbank", value: value},
		&fixedProvider{name: "imf", value: value},
		&fixedProvider{name: "gdelt", value: value / 100},
	}
}

func TestRunScoresEveryEntity(t *testing.T) {
	entities := []string{"USA", "CAN", "MEX"}
	runner, sink, _ := testRunner(t, entities, defaultProviders(10.0), Config{Workers: 2})

	summary, err := runner.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 3, summary.EntitiesScored)
	assert.Equal(t, 0, summary.EntitiesDropped)
	require.Len(t, sink.snapshots, 3)

	for _, snap := range sink.snapshots {
		assert.GreaterOrEqual(t, snap.Instability.Value, 0.0)
		assert.LessOrEqual(t, snap.Instability.Value, 1.0)
		assert.GreaterOrEqual(t, snap.Stability.Value, 1.0)
		assert.LessOrEqual(t, snap.Stability.Value, 10.0)
		assert.GreaterOrEqual(t, snap.Eudaimonia, 0.0)
		assert.LessOrEqual(t, snap.Eudaimonia, 100.0)
	}
}

func TestRunOutputOrderIsStable(t *testing.T) {
	entities := []string{"USA", "CAN", "MEX", "FRA", "DEU"}
	runner, sink, _ := testRunner(t, entities, defaultProviders(10.0), Config{Workers: 4})

	_, err := runner.Run(context.Background())
	require.NoError(t, err)

	got := make([]string, 0, len(sink.snapshots))
	for _, snap := range sink.snapshots {
		got = append(got, snap.Entity)
	}
	assert.Equal(t, entities, got)
}

func TestRunBorderPressureMatchesNeighborMean(t *testing.T) {
	// CAN's only neighbor is USA, so its pressure must equal USA's
	// first-pass instability exactly.
	entities := []string{"USA", "CAN"}
	runner, sink, _ := testRunner(t, entities, defaultProviders(30.0), Config{Workers: 2})

	_, err := runner.Run(context.Background())
	require.NoError(t, err)

	byCode := make(map[string]*contracts.Snapshot)
	for _, snap := range sink.snapshots {
		byCode[snap.Entity] = snap
	}

	usaFirstPass := byCode["USA"].Instability.Value -
		scoring.DefaultConfig().Instability.Weights[scoring.BorderPressureKey]*byCode["USA"].BorderPressure
	assert.InDelta(t, usaFirstPass, byCode["CAN"].BorderPressure, 1e-9)
}

func TestRunAllProvidersFailFallsBackToDefaults(t *testing.T) {
	// No providers registered at all: every indicator resolves from
	// the defaults table and the run still completes.
	runner, sink, _ := testRunner(t, []string{"USA"}, nil, Config{Workers: 1})

	summary, err := runner.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, summary.EntitiesScored)
	require.Len(t, sink.snapshots, 1)
	snap := sink.snapshots[0]

	assert.Equal(t, 40.0, snap.Raw["gini_coefficient"])
	assert.Equal(t, len(indicators.Catalog()), snap.CountSources(contracts.SourceDefault))
}

func TestRunIsIdempotentAcrossConsecutiveRuns(t *testing.T) {
	// Rising multi-point series so trend deltas and projections are in
	// play: the warm-cache rerun must reproduce the penalty inputs, not
	// just the resolved values.
	providers := []contracts.Provider{
		&fixedProvider{name: "worldbank", trend: []float64{8, 9, 10, 11, 12, 13}},
		&fixedProvider{name: "imf", trend: []float64{8, 9, 10, 11, 12, 13}},
		&fixedProvider{name: "gdelt", value: 0.15},
	}
	runner, sink, _ := testRunner(t, []string{"USA", "CAN"}, providers, Config{Workers: 2})

	_, err := runner.Run(context.Background())
	require.NoError(t, err)
	firstInstability := make(map[string]float64)
	firstStability := make(map[string]float64)
	for _, snap := range sink.snapshots {
		firstInstability[snap.Entity] = snap.Instability.Value
		firstStability[snap.Entity] = snap.Stability.Value
		require.NotEmpty(t, snap.Deltas, "trend inputs must be present on the cold run")
	}

	// Second run resolves from the warm cache; scores must not move.
	_, err = runner.Run(context.Background())
	require.NoError(t, err)
	for _, snap := range sink.snapshots {
		assert.Greater(t, snap.CountSources(contracts.SourceCache), 0)
		assert.InDelta(t, firstInstability[snap.Entity], snap.Instability.Value, 1e-9,
			"entity %s instability drifted between identical runs", snap.Entity)
		assert.InDelta(t, firstStability[snap.Entity], snap.Stability.Value, 1e-9,
			"entity %s stability drifted between identical runs", snap.Entity)
	}
}

func TestRunSecondRunServesFromCache(t *testing.T) {
	runner, sink, _ := testRunner(t, []string{"USA"}, defaultProviders(15.0), Config{Workers: 1})

	_, err := runner.Run(context.Background())
	require.NoError(t, err)
	assert.Greater(t, sink.summary.FreshIndicators, 0)

	_, err = runner.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, sink.summary.FreshIndicators)
	assert.Greater(t, sink.summary.CachedIndicators, 0)
}

func TestRunDropsEntityOnTimeout(t *testing.T) {
	providers := []contracts.Provider{
		&fixedProvider{name: "worldbank", value: 10.0, delay: 50 * time.Millisecond},
	}
	runner, _, _ := testRunner(t, []string{"USA"}, providers, Config{
		Workers:       1,
		EntityTimeout: 5 * time.Millisecond,
	})

	summary, err := runner.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, summary.EntitiesScored)
	assert.Equal(t, 1, summary.EntitiesDropped)
}

func TestRunFlushesCacheOnce(t *testing.T) {
	runner, _, store := testRunner(t, []string{"USA"}, defaultProviders(15.0), Config{Workers: 1})

	_, err := runner.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, store.Staged())
}
