package cache

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmcarbo/clioscope/internal/contracts"
	"github.com/jmcarbo/clioscope/pkg/config"
	"github.com/jmcarbo/clioscope/pkg/logger"
)

func testLogger(t *testing.T) *logger.Logger {
	t.Helper()
	return logger.New(&config.Config{LogLevel: "error", LogFormat: "json"})
}

func testStore(t *testing.T) *Store {
	t.Helper()
	return NewStore(filepath.Join(t.TempDir(), "cache.json"), testLogger(t))
}

func fixedClock(s string) func() time.Time {
	return func() time.Time {
		ts, err := time.Parse("2006-01-02", s)
		if err != nil {
			panic(err)
		}
		return ts
	}
}

func TestStoreMissAndHit(t *testing.T) {
	store := testStore(t)

	_, ok := store.Get("USA", "gini_coefficient")
	assert.False(t, ok)

	store.Put("USA", "gini_coefficient", 41.5, contracts.FreqAnnual)

	entry, ok := store.Get("USA", "gini_coefficient")
	require.True(t, ok)
	assert.Equal(t, 41.5, entry.Value)
	assert.Equal(t, contracts.FreqAnnual, entry.Frequency)
}

func TestAnnualFreshnessTracksCalendarYear(t *testing.T) {
	store := testStore(t).WithClock(fixedClock("2025-12-30"))
	store.Put("DEU", "gini_coefficient", 31.7, contracts.FreqAnnual)

	_, ok := store.GetFresh("DEU", "gini_coefficient")
	assert.True(t, ok, "same calendar year must be fresh")

	// Two days later the year has rolled over.
	store.WithClock(fixedClock("2026-01-01"))
	_, ok = store.GetFresh("DEU", "gini_coefficient")
	assert.False(t, ok, "new calendar year must force a refresh")
}

func TestWeeklyFreshnessExpiresOnDayEight(t *testing.T) {
	store := testStore(t).WithClock(fixedClock("2025-06-01"))
	store.Put("FRA", "social_polarization", 0.22, contracts.FreqWeekly)

	store.WithClock(fixedClock("2025-06-08"))
	_, ok := store.GetFresh("FRA", "social_polarization")
	assert.True(t, ok, "day seven must still be fresh")

	store.WithClock(fixedClock("2025-06-09"))
	_, ok = store.GetFresh("FRA", "social_polarization")
	assert.False(t, ok, "day eight must be stale")
}

func TestStaticEntriesNeverExpire(t *testing.T) {
	store := testStore(t).WithClock(fixedClock("2020-01-01"))
	store.Put("JPN", "traditional_vs_secular", 1.3, contracts.FreqStatic)

	store.WithClock(fixedClock("2026-08-25"))
	entry, ok := store.GetFresh("JPN", "traditional_vs_secular")
	require.True(t, ok)
	assert.Equal(t, 1.3, entry.Value)
}

func TestPutSeriesHistorySurvivesFlush(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "cache.json")

	store := NewStore(path, testLogger(t))
	store.PutSeries("USA", "inflation_annual", 3.1, contracts.FreqAnnual,
		map[int]float64{2023: 4.1, 2024: 3.4, 2025: 3.1})
	require.NoError(t, store.Flush())

	reloaded := NewStore(path, testLogger(t))
	require.NoError(t, reloaded.Load())

	entry, ok := reloaded.GetFresh("USA", "inflation_annual")
	require.True(t, ok)
	assert.Equal(t, 3.1, entry.Value)
	assert.Equal(t, map[int]float64{2023: 4.1, 2024: 3.4, 2025: 3.1}, entry.History)
}

func TestPutSeriesCopiesHistory(t *testing.T) {
	store := testStore(t)

	history := map[int]float64{2024: 9.0, 2025: 9.5}
	store.PutSeries("DEU", "neet_ratio", 9.5, contracts.FreqAnnual, history)
	history[2025] = 99.0

	entry, ok := store.Get("DEU", "neet_ratio")
	require.True(t, ok)
	assert.Equal(t, 9.5, entry.History[2025])
}

func TestFlushRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "cache.json")

	store := NewStore(path, testLogger(t))
	store.Put("USA", "gini_coefficient", 41.5, contracts.FreqAnnual)
	store.Put("USA", "social_polarization", 0.3, contracts.FreqWeekly)
	require.NoError(t, store.Flush())
	assert.Equal(t, 0, store.Staged())

	reloaded := NewStore(path, testLogger(t))
	require.NoError(t, reloaded.Load())

	entry, ok := reloaded.Get("USA", "gini_coefficient")
	require.True(t, ok)
	assert.Equal(t, 41.5, entry.Value)
}

func TestLoadMissingFileIsEmptyCache(t *testing.T) {
	store := NewStore(filepath.Join(t.TempDir(), "nope.json"), testLogger(t))
	require.NoError(t, store.Load())
	_, ok := store.Get("USA", "gini_coefficient")
	assert.False(t, ok)
}

func TestLoadRejectsCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	store := NewStore(path, testLogger(t))
	assert.Error(t, store.Load())
}

func TestStagedEntriesShadowPersisted(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "cache.json")

	store := NewStore(path, testLogger(t))
	store.Put("USA", "gini_coefficient", 40.0, contracts.FreqAnnual)
	require.NoError(t, store.Flush())

	store.Put("USA", "gini_coefficient", 42.0, contracts.FreqAnnual)
	entry, ok := store.Get("USA", "gini_coefficient")
	require.True(t, ok)
	assert.Equal(t, 42.0, entry.Value)
}
