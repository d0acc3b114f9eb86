package results

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jmcarbo/clioscope/internal/contracts"
	"github.com/jmcarbo/clioscope/pkg/database"
	"github.com/jmcarbo/clioscope/pkg/logger"
)

// Repository persists runs to Postgres alongside the JSON document.
// It is optional: the pipeline skips it when no database is wired.
type Repository struct {
	db     *database.DB
	logger *logger.Logger
}

// NewRepository creates a run repository over the shared pool.
func NewRepository(db *database.DB, log *logger.Logger) *Repository {
	return &Repository{
		db:     db,
		logger: log.WithField("component", "run_repository"),
	}
}

// SaveRun stores the run summary and one row per entity snapshot in a
// single transaction.
func (r *Repository) SaveRun(ctx context.Context, summary contracts.RunSummary, snapshots []*contracts.Snapshot) error {
	tx, err := r.db.Pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var runID int64
	err = tx.QueryRow(ctx, `
		INSERT INTO runs (
			processed_at, duration_seconds, entities_total, entities_scored,
			entities_dropped, fresh_indicators, cached_indicators, defaulted_indicators
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id`,
		summary.ProcessedAt, summary.DurationSeconds, summary.EntitiesTotal,
		summary.EntitiesScored, summary.EntitiesDropped, summary.FreshIndicators,
		summary.CachedIndicators, summary.DefaultedValues,
	).Scan(&runID)
	if err != nil {
		return fmt.Errorf("failed to insert run: %w", err)
	}

	batch := &pgx.Batch{}
	for _, snap := range snapshots {
		payload, err := json.Marshal(snap)
		if err != nil {
			return fmt.Errorf("failed to encode snapshot for %s: %w", snap.Entity, err)
		}
		batch.Queue(`
			INSERT INTO entity_scores (
				run_id, entity_code, instability, instability_status,
				stability, stability_status, border_pressure,
				eudaimonia, event_volume, fragility_index, payload
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
			runID, snap.Entity, snap.Instability.Value, snap.Instability.Status,
			snap.Stability.Value, snap.Stability.Status, snap.BorderPressure,
			snap.Eudaimonia, snap.EventVolume, snap.FragilityIndex, payload,
		)
	}

	results := tx.SendBatch(ctx, batch)
	for range snapshots {
		if _, err := results.Exec(); err != nil {
			results.Close()
			return fmt.Errorf("failed to insert entity score: %w", err)
		}
	}
	if err := results.Close(); err != nil {
		return fmt.Errorf("failed to close batch: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit run: %w", err)
	}

	r.logger.WithFields(map[string]interface{}{
		"run_id":   runID,
		"entities": len(snapshots),
	}).Info("Persisted run to database")

	return nil
}

// LatestRun returns the most recent run summary.
func (r *Repository) LatestRun(ctx context.Context) (contracts.RunSummary, bool, error) {
	var summary contracts.RunSummary
	err := r.db.Pool.QueryRow(ctx, `
		SELECT processed_at, duration_seconds, entities_total, entities_scored,
		       entities_dropped, fresh_indicators, cached_indicators, defaulted_indicators
		FROM runs
		ORDER BY processed_at DESC
		LIMIT 1`,
	).Scan(
		&summary.ProcessedAt, &summary.DurationSeconds, &summary.EntitiesTotal,
		&summary.EntitiesScored, &summary.EntitiesDropped, &summary.FreshIndicators,
		&summary.CachedIndicators, &summary.DefaultedValues,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return contracts.RunSummary{}, false, nil
		}
		return contracts.RunSummary{}, false, fmt.Errorf("failed to query latest run: %w", err)
	}

	return summary, true, nil
}
