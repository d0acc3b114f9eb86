package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmcarbo/clioscope/internal/contracts"
	"github.com/jmcarbo/clioscope/internal/indicators"
	"github.com/jmcarbo/clioscope/pkg/config"
	"github.com/jmcarbo/clioscope/pkg/logger"
)

func testEngine(t *testing.T) *Engine {
	t.Helper()
	log := logger.New(&config.Config{LogLevel: "error", LogFormat: "json"})
	return NewEngine(DefaultConfig(), indicators.CatalogByName(), log)
}

func snapshotWith(values map[string]float64) *contracts.Snapshot {
	snap := contracts.NewSnapshot("USA")
	for name, v := range values {
		snap.Indicators[name] = v
	}
	return snap
}

func TestDefaultConfigIsValid(t *testing.T) {
	require.NoError(t, DefaultConfig().Validate())
}

func TestValidateRejectsBadWeightSum(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Instability.Weights["gini_coefficient"] = 0.5
	assert.Error(t, cfg.Validate())
}

func TestValidateRejectsNegativeWeight(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Instability.Weights["gini_coefficient"] = -0.2
	cfg.Instability.Weights["youth_unemployment"] = 0.6
	assert.Error(t, cfg.Validate())
}

func TestConfigHashIsStable(t *testing.T) {
	a, err := DefaultConfig().Hash()
	require.NoError(t, err)
	b, err := DefaultConfig().Hash()
	require.NoError(t, err)
	assert.Equal(t, a, b)

	changed := DefaultConfig()
	changed.Stability.BaseScore = 5.5
	c, err := changed.Hash()
	require.NoError(t, err)
	assert.NotEqual(t, a, c)
}

func TestInstabilityAllZeroIsStable(t *testing.T) {
	e := testEngine(t)
	got := e.Instability(snapshotWith(nil), 0)
	assert.Equal(t, 0.0, got.Value)
	assert.Equal(t, contracts.StatusStable, got.Status)
}

func TestInstabilityAllMaxClampsToOne(t *testing.T) {
	e := testEngine(t)
	values := make(map[string]float64)
	for name := range DefaultConfig().Instability.Weights {
		values[name] = 1.0
	}
	got := e.Instability(snapshotWith(values), 1.0)
	assert.Equal(t, 1.0, got.Value)
	assert.Equal(t, contracts.StatusCritical, got.Status)
}

func TestInstabilityThresholdsAreInclusive(t *testing.T) {
	e := testEngine(t)
	assert.Equal(t, contracts.StatusStable, e.instabilityStatus(0.39999))
	assert.Equal(t, contracts.StatusAlert, e.instabilityStatus(0.4))
	assert.Equal(t, contracts.StatusAlert, e.instabilityStatus(0.59999))
	assert.Equal(t, contracts.StatusCritical, e.instabilityStatus(0.6))
}

func TestInstabilityBorderTermIsExactlyLinear(t *testing.T) {
	e := testEngine(t)
	snap := snapshotWith(map[string]float64{
		"gini_coefficient":   0.41,
		"youth_unemployment": 0.27,
	})

	without := e.Instability(snap, 0)
	with := e.Instability(snap, 0.6)

	weight := DefaultConfig().Instability.Weights[BorderPressureKey]
	assert.InDelta(t, weight*0.6, with.Value-without.Value, 1e-9)
}

func TestInstabilityTrendPenaltyIsCapped(t *testing.T) {
	e := testEngine(t)
	snap := snapshotWith(nil)
	for name, def := range indicators.CatalogByName() {
		if def.HigherIsWorse {
			snap.Deltas[name] = 1.0
		}
	}

	got := e.Instability(snap, 0)
	assert.InDelta(t, DefaultConfig().Instability.TrendPenalty.Cap, got.Value, 1e-9)
}

func TestStabilityNeutralSnapshotSitsAtBase(t *testing.T) {
	e := testEngine(t)
	// Centered fundamentals, no adverse readings, no shocks.
	snap := snapshotWith(map[string]float64{
		"gdp_per_capita":           0.5,
		"government_effectiveness": 0.5,
	})

	got := e.Stability(snap)
	// Group means are zero, so risk is zero and the multiplier pins at 1.5.
	assert.InDelta(t, 9.0, got.Value, 1e-9)
	assert.Equal(t, contracts.StatusStable, got.Status)
}

func TestStabilityIsAlwaysInRange(t *testing.T) {
	e := testEngine(t)

	worst := snapshotWith(nil)
	for name := range indicators.CatalogByName() {
		worst.Indicators[name] = 1.0
	}
	worst.Indicators["gdp_per_capita"] = 0.0
	worst.Indicators["government_effectiveness"] = 0.0
	worst.EventVolume = 500
	worst.FragilityIndex = 1.0
	worst.CrisisProbability = 1.0

	got := e.Stability(worst)
	assert.GreaterOrEqual(t, got.Value, 1.0)
	assert.LessOrEqual(t, got.Value, 10.0)
	assert.Equal(t, contracts.StatusCritical, got.Status)
}

func TestStabilityStatusCutoffs(t *testing.T) {
	e := testEngine(t)
	assert.Equal(t, contracts.StatusCritical, e.stabilityStatus(3.99))
	assert.Equal(t, contracts.StatusAlert, e.stabilityStatus(4.0))
	assert.Equal(t, contracts.StatusAlert, e.stabilityStatus(5.99))
	assert.Equal(t, contracts.StatusStable, e.stabilityStatus(6.0))
}

func TestShockMultiplierTiers(t *testing.T) {
	e := testEngine(t)
	assert.Equal(t, 1.0, e.shockMultiplier(0))
	assert.Equal(t, 1.0, e.shockMultiplier(49))
	assert.Equal(t, 1.8, e.shockMultiplier(50))
	assert.Equal(t, 1.8, e.shockMultiplier(149))
	assert.Equal(t, 2.5, e.shockMultiplier(150))
	assert.Equal(t, 2.5, e.shockMultiplier(10000))
}

func TestEudaimoniaBounds(t *testing.T) {
	assert.Equal(t, 100.0, Eudaimonia(0, 0))
	assert.Equal(t, 0.0, Eudaimonia(1, 1))
	assert.InDelta(t, 50.0, Eudaimonia(0.5, 0.5), 1e-9)
	// Out-of-range inputs clamp instead of escaping the scale.
	assert.Equal(t, 0.0, Eudaimonia(5, 5))
}
