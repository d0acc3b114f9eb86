package contracts

import "context"

// RunRepository persists completed runs to durable storage. A nil-safe
// no-op implementation is used when no database is configured.
type RunRepository interface {
	// SaveRun stores the run summary and all entity snapshots.
	SaveRun(ctx context.Context, summary RunSummary, snapshots []*Snapshot) error

	// LatestRun returns the most recent run summary, or ok=false when
	// no run has been recorded.
	LatestRun(ctx context.Context) (RunSummary, bool, error)
}
