package results

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmcarbo/clioscope/internal/contracts"
	"github.com/jmcarbo/clioscope/pkg/config"
	"github.com/jmcarbo/clioscope/pkg/database"
)

// setupTestDB connects to the database named by TEST_DATABASE_URL and
// prepares empty run tables. Skipped in short mode and when no test
// database is configured.
func setupTestDB(t *testing.T) *database.DB {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping database integration test in short mode")
	}
	url := os.Getenv("TEST_DATABASE_URL")
	if url == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	cfg := &config.Config{LogLevel: "error", LogFormat: "json"}
	cfg.Database.URL = url
	cfg.Database.MaxConns = 2
	cfg.Database.MinConns = 1
	cfg.Database.MaxConnLifetime = time.Hour
	cfg.Database.MaxConnIdleTime = 30 * time.Minute

	db, err := database.New(cfg)
	require.NoError(t, err)
	t.Cleanup(db.Close)

	ctx := context.Background()
	_, err = db.Pool.Exec(ctx, `
		DROP TABLE IF EXISTS entity_scores;
		DROP TABLE IF EXISTS runs;
		CREATE TABLE runs (
			id                   BIGSERIAL PRIMARY KEY,
			processed_at         TIMESTAMPTZ NOT NULL,
			duration_seconds     DOUBLE PRECISION NOT NULL,
			entities_total       INT NOT NULL,
			entities_scored      INT NOT NULL,
			entities_dropped     INT NOT NULL,
			fresh_indicators     INT NOT NULL,
			cached_indicators    INT NOT NULL,
			defaulted_indicators INT NOT NULL
		);
		CREATE TABLE entity_scores (
			id                 BIGSERIAL PRIMARY KEY,
			run_id             BIGINT NOT NULL REFERENCES runs(id),
			entity_code        TEXT NOT NULL,
			instability        DOUBLE PRECISION NOT NULL,
			instability_status TEXT NOT NULL,
			stability          DOUBLE PRECISION NOT NULL,
			stability_status   TEXT NOT NULL,
			border_pressure    DOUBLE PRECISION NOT NULL,
			eudaimonia         DOUBLE PRECISION NOT NULL,
			event_volume       INT NOT NULL,
			fragility_index    DOUBLE PRECISION NOT NULL,
			payload            JSONB NOT NULL
		)`)
	require.NoError(t, err)

	return db
}

func TestRepositorySaveAndLatestRun(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRepository(db, testLogger(t))
	ctx := context.Background()

	summary := contracts.RunSummary{
		ProcessedAt:      time.Now().UTC().Truncate(time.Millisecond),
		DurationSeconds:  12.5,
		EntitiesTotal:    2,
		EntitiesScored:   2,
		FreshIndicators:  20,
		CachedIndicators: 4,
	}

	usa := contracts.NewSnapshot("USA")
	usa.Instability = contracts.ScoreResult{Value: 0.31, Status: contracts.StatusStable}
	usa.Stability = contracts.ScoreResult{Value: 7.2, Status: contracts.StatusStable}
	usa.BorderPressure = 0.28

	can := contracts.NewSnapshot("CAN")
	can.Instability = contracts.ScoreResult{Value: 0.22, Status: contracts.StatusStable}
	can.Stability = contracts.ScoreResult{Value: 8.1, Status: contracts.StatusStable}

	require.NoError(t, repo.SaveRun(ctx, summary, []*contracts.Snapshot{usa, can}))

	got, ok, err := repo.LatestRun(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, summary.EntitiesScored, got.EntitiesScored)
	assert.Equal(t, summary.FreshIndicators, got.FreshIndicators)
	assert.WithinDuration(t, summary.ProcessedAt, got.ProcessedAt, time.Second)

	var rows int
	require.NoError(t, db.Pool.QueryRow(ctx, `SELECT COUNT(*) FROM entity_scores`).Scan(&rows))
	assert.Equal(t, 2, rows)
}

func TestRepositoryLatestRunEmpty(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRepository(db, testLogger(t))

	_, ok, err := repo.LatestRun(context.Background())
	require.NoError(t, err)
	assert.False(t, ok)
}
