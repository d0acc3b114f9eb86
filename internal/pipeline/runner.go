package pipeline

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/jmcarbo/clioscope/internal/borders"
	"github.com/jmcarbo/clioscope/internal/cache"
	"github.com/jmcarbo/clioscope/internal/contracts"
	"github.com/jmcarbo/clioscope/internal/forecast"
	"github.com/jmcarbo/clioscope/internal/indicators"
	"github.com/jmcarbo/clioscope/internal/scoring"
	"github.com/jmcarbo/clioscope/pkg/logger"
)

// ErrEntityTimeout marks an entity dropped because its per-entity
// budget ran out before all indicators resolved.
var ErrEntityTimeout = errors.New("entity processing timed out")

// eventWindowDays is the trailing window for the shock-factor event
// volume.
const eventWindowDays = 7

// CorruptionSource serves the 0-100 corruption reading feeding the
// wellbeing predictor.
type CorruptionSource interface {
	CorruptionIndex(ctx context.Context, entityCode string) (float64, error)
}

// Config bounds one pipeline run.
type Config struct {
	Workers       int
	EntityTimeout time.Duration
	Entities      []string
}

// Runner executes the full acquisition-and-scoring pipeline: a
// concurrent per-entity resolution pass, local scoring, a sequential
// border-propagation pass, then persistence.
type Runner struct {
	resolver   *indicators.Resolver
	engine     *scoring.Engine
	store      *cache.Store
	graph      borders.Graph
	events     contracts.EventVolumeProvider
	fragility  contracts.FragilityProvider
	corruption CorruptionSource
	sink       ResultSink
	repo       contracts.RunRepository
	cfg        Config
	logger     *logger.Logger

	now func() time.Time

	// onComplete fires after a successful run, outside the run lock.
	onComplete func(contracts.RunSummary)
}

// ResultSink receives the merged output of a completed run.
type ResultSink interface {
	SaveRun(summary contracts.RunSummary, snapshots []*contracts.Snapshot) error
}

// NewRunner wires a runner. repo may be nil when no database is
// configured; events, fragility and corruption may be nil in tests.
func NewRunner(
	resolver *indicators.Resolver,
	engine *scoring.Engine,
	store *cache.Store,
	graph borders.Graph,
	events contracts.EventVolumeProvider,
	fragility contracts.FragilityProvider,
	corruption CorruptionSource,
	sink ResultSink,
	repo contracts.RunRepository,
	cfg Config,
	log *logger.Logger,
) *Runner {
	if cfg.Workers < 1 {
		cfg.Workers = 1
	}
	return &Runner{
		resolver:   resolver,
		engine:     engine,
		store:      store,
		graph:      graph,
		events:     events,
		fragility:  fragility,
		corruption: corruption,
		sink:       sink,
		repo:       repo,
		cfg:        cfg,
		logger:     log.WithField("component", "pipeline"),
		now:        time.Now,
	}
}

// OnComplete registers a hook fired after each successful run.
func (r *Runner) OnComplete(fn func(contracts.RunSummary)) {
	r.onComplete = fn
}

// Run executes one full pipeline pass and returns its summary.
func (r *Runner) Run(ctx context.Context) (contracts.RunSummary, error) {
	started := r.now()
	currentPeriod := started.Year()

	entityCodes := r.cfg.Entities
	if len(entityCodes) == 0 {
		entityCodes = indicators.Codes()
	}

	r.logger.WithFields(map[string]interface{}{
		"entities": len(entityCodes),
		"workers":  r.cfg.Workers,
		"period":   currentPeriod,
	}).Info("Starting pipeline run")

	snapshots, dropped := r.firstPass(ctx, entityCodes, currentPeriod)

	r.propagate(snapshots)

	if err := r.store.Flush(); err != nil {
		r.logger.WithError(err).Error("Failed to flush indicator cache")
	}

	summary := r.summarize(started, len(entityCodes), snapshots, dropped)

	if r.sink != nil {
		if err := r.sink.SaveRun(summary, snapshots); err != nil {
			return summary, fmt.Errorf("failed to persist results: %w", err)
		}
	}
	if r.repo != nil {
		if err := r.repo.SaveRun(ctx, summary, snapshots); err != nil {
			r.logger.WithError(err).Error("Failed to persist run to database")
		}
	}

	r.logger.WithFields(map[string]interface{}{
		"scored":   summary.EntitiesScored,
		"dropped":  summary.EntitiesDropped,
		"duration": summary.Duration.Round(time.Millisecond).String(),
	}).Info("Pipeline run complete")

	if r.onComplete != nil {
		r.onComplete(summary)
	}

	return summary, nil
}

// firstPass resolves and locally scores every entity on a worker pool.
func (r *Runner) firstPass(ctx context.Context, entityCodes []string, currentPeriod int) ([]*contracts.Snapshot, int) {
	type result struct {
		snap *contracts.Snapshot
		err  error
		code string
	}

	entityCh := make(chan string, len(entityCodes))
	resultCh := make(chan result, len(entityCodes))

	var wg sync.WaitGroup
	for i := 0; i < r.cfg.Workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for code := range entityCh {
				snap, err := r.processEntity(ctx, code, currentPeriod)
				resultCh <- result{snap: snap, err: err, code: code}
			}
		}()
	}

	for _, code := range entityCodes {
		entityCh <- code
	}
	close(entityCh)

	wg.Wait()
	close(resultCh)

	// Collect in input order so output is reproducible.
	byCode := make(map[string]*contracts.Snapshot, len(entityCodes))
	dropped := 0
	for res := range resultCh {
		if res.err != nil {
			dropped++
			r.logger.WithField("entity", res.code).WithError(res.err).Warn("Dropped entity")
			continue
		}
		byCode[res.code] = res.snap
	}

	snapshots := make([]*contracts.Snapshot, 0, len(byCode))
	for _, code := range entityCodes {
		if snap, ok := byCode[code]; ok {
			snapshots = append(snapshots, snap)
		}
	}

	return snapshots, dropped
}

// processEntity resolves every tracked indicator for one entity under
// its time budget and computes the local scores.
func (r *Runner) processEntity(ctx context.Context, entityCode string, currentPeriod int) (*contracts.Snapshot, error) {
	entityCtx := ctx
	if r.cfg.EntityTimeout > 0 {
		var cancel context.CancelFunc
		entityCtx, cancel = context.WithTimeout(ctx, r.cfg.EntityTimeout)
		defer cancel()
	}

	snap := contracts.NewSnapshot(entityCode)
	snap.ProcessedAt = r.now()

	for _, def := range indicators.Catalog() {
		if err := entityCtx.Err(); err != nil {
			return nil, fmt.Errorf("%w: %s", ErrEntityTimeout, entityCode)
		}

		res := r.resolver.Resolve(entityCtx, entityCode, def, currentPeriod)
		snap.Raw[def.Name] = res.Value
		snap.Indicators[def.Name] = indicators.Normalize(def, res.Value)
		snap.Sources[def.Name] = res.Source

		if delta, ok := res.Delta(); ok {
			snap.Deltas[def.Name] = delta
		}
		if !res.Series.IsEmpty() {
			latest, _, _ := res.Series.Latest()
			steps := currentPeriod - latest + 1
			snap.Projected[def.Name] = forecast.Forecast(res.Series, steps, res.Value)
		}
	}

	r.enrich(entityCtx, snap)

	if err := entityCtx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrEntityTimeout, entityCode)
	}

	r.engine.ScoreLocal(snap)
	snap.Eudaimonia = r.eudaimonia(entityCtx, snap)

	return snap, nil
}

// enrich attaches the auxiliary signals. Failures degrade to neutral
// values rather than dropping the entity.
func (r *Runner) enrich(ctx context.Context, snap *contracts.Snapshot) {
	if r.events != nil {
		volume, err := r.events.RecentEventVolume(ctx, snap.Entity, eventWindowDays)
		if err != nil {
			r.logger.WithField("entity", snap.Entity).WithError(err).Warn("Event volume unavailable")
		} else {
			snap.EventVolume = volume
		}
	}

	if r.fragility != nil {
		fragility, err := r.fragility.Fragility(ctx, snap.Entity)
		if err != nil {
			r.logger.WithField("entity", snap.Entity).WithError(err).Warn("Fragility unavailable")
			snap.FragilityIndex = 0.5
		} else {
			snap.FragilityIndex = fragility
		}
	}
}

// eudaimonia combines the corruption reading with the local tension
// level. Without a corruption source the tension level stands in.
func (r *Runner) eudaimonia(ctx context.Context, snap *contracts.Snapshot) float64 {
	tension := snap.Instability.Value

	if r.corruption == nil {
		return scoring.Eudaimonia(tension, tension)
	}

	index, err := r.corruption.CorruptionIndex(ctx, snap.Entity)
	if err != nil {
		r.logger.WithField("entity", snap.Entity).WithError(err).Warn("Corruption index unavailable")
		return scoring.Eudaimonia(tension, tension)
	}

	return scoring.Eudaimonia(index/100.0, tension)
}

// propagate runs the single border-pressure pass: neighbor pressure is
// computed from first-pass instability only, then each entity is
// re-scored once with its pressure term.
func (r *Runner) propagate(snapshots []*contracts.Snapshot) {
	firstPass := make(map[string]float64, len(snapshots))
	for _, snap := range snapshots {
		firstPass[snap.Entity] = snap.Instability.Value
	}

	for _, snap := range snapshots {
		pressure := borders.Pressure(snap.Entity, r.graph, firstPass)
		snap.BorderPressure = pressure
		snap.Instability = r.engine.Instability(snap, pressure)
	}
}

// summarize builds the run summary from the collected snapshots.
func (r *Runner) summarize(started time.Time, total int, snapshots []*contracts.Snapshot, dropped int) contracts.RunSummary {
	summary := contracts.RunSummary{
		ProcessedAt:     started,
		Duration:        r.now().Sub(started),
		EntitiesTotal:   total,
		EntitiesScored:  len(snapshots),
		EntitiesDropped: dropped,
	}
	summary.DurationSeconds = summary.Duration.Seconds()

	for _, snap := range snapshots {
		summary.FreshIndicators += snap.CountSources(contracts.SourceProvider)
		summary.CachedIndicators += snap.CountSources(contracts.SourceCache)
		summary.DefaultedValues += snap.CountSources(contracts.SourceDefault)
	}

	return summary
}
