package scoring

import (
	"math"

	"github.com/jmcarbo/clioscope/internal/contracts"
	"github.com/jmcarbo/clioscope/pkg/logger"
)

// Engine computes the two composite indices from a resolved snapshot.
// It is stateless and safe for concurrent use.
type Engine struct {
	cfg     Config
	catalog map[string]contracts.IndicatorDef
	logger  *logger.Logger
}

// NewEngine creates an engine over a validated config and the tracked
// indicator definitions.
func NewEngine(cfg Config, catalog map[string]contracts.IndicatorDef, log *logger.Logger) *Engine {
	return &Engine{
		cfg:     cfg,
		catalog: catalog,
		logger:  log.WithField("component", "scoring"),
	}
}

// ScoreLocal computes both indices from the entity's own indicators,
// with the neighborhood term at zero. The propagation pass re-scores
// instability once neighbor results exist.
func (e *Engine) ScoreLocal(snap *contracts.Snapshot) {
	snap.Instability = e.Instability(snap, 0)
	snap.Stability = e.Stability(snap)
}

// Instability computes the [0,1] instability index: the weighted sum
// of normalized adverse indicators plus the border pressure term, with
// trend and projection penalties on top.
func (e *Engine) Instability(snap *contracts.Snapshot, borderPressure float64) contracts.ScoreResult {
	score := 0.0
	for name, weight := range e.cfg.Instability.Weights {
		if name == BorderPressureKey {
			score += weight * clamp(borderPressure, 0, 1)
			continue
		}
		score += weight * clamp(snap.Indicators[name], 0, 1)
	}

	score += e.adversePenalty(snap, e.cfg.Instability.TrendPenalty, e.cfg.Instability.ForecastPenalty)
	score = clamp(score, 0, 1)

	return contracts.ScoreResult{
		Value:  score,
		Status: e.instabilityStatus(score),
	}
}

// instabilityStatus applies the inclusive tier cutoffs.
func (e *Engine) instabilityStatus(score float64) string {
	switch {
	case score >= e.cfg.Instability.CriticalThreshold:
		return contracts.StatusCritical
	case score >= e.cfg.Instability.AlertThreshold:
		return contracts.StatusAlert
	default:
		return contracts.StatusStable
	}
}

// Stability computes the [1,10] stability score: a fundamentals-driven
// base damped by a systemic risk multiplier.
func (e *Engine) Stability(snap *contracts.Snapshot) contracts.ScoreResult {
	base := e.baseScore(snap)
	risk := e.systemicRisk(snap)

	multiplier := clamp(1.5-risk, 0.5, 1.5)
	score := clamp(base*multiplier, 1, 10)

	return contracts.ScoreResult{
		Value:  score,
		Status: e.stabilityStatus(score),
	}
}

// baseScore anchors the score and shifts it by wealth and governance
// fundamentals. Both enter centered so average fundamentals leave the
// anchor untouched.
func (e *Engine) baseScore(snap *contracts.Snapshot) float64 {
	cfg := e.cfg.Stability

	base := cfg.BaseScore
	base += (snap.Indicators["gdp_per_capita"] - 0.5) * cfg.GDPAdjustScale
	base += (snap.Indicators["government_effectiveness"] - 0.5) * cfg.GovAdjustScale

	return clamp(base, 1, 10)
}

// systemicRisk accumulates the risk mass that dampens the base score:
// per-indicator threshold crossings, group means of adverse readings,
// a shock multiplier from recent event volume, an external fragility
// addend, and trend/projection penalties.
func (e *Engine) systemicRisk(snap *contracts.Snapshot) float64 {
	cfg := e.cfg.Stability

	risk := 0.0
	for name, def := range e.catalog {
		if !def.HigherIsWorse {
			continue
		}
		v := snap.Indicators[name]
		switch {
		case v >= cfg.IndicatorCritical:
			risk += cfg.CriticalPoints
		case v >= cfg.IndicatorAlert:
			risk += cfg.AlertPoints
		}
	}

	for group, weight := range cfg.GroupWeights {
		if m, ok := e.groupMean(snap, contracts.IndicatorGroup(group)); ok {
			risk += m * weight
		}
	}

	risk *= e.shockMultiplier(snap.EventVolume)

	fragility := cfg.FragilityWeight * (snap.FragilityIndex + snap.CrisisProbability)
	if fragility > cfg.FragilityCap {
		fragility = cfg.FragilityCap
	}
	risk += fragility

	risk += e.adversePenalty(snap, cfg.TrendPenalty, cfg.ForecastPenalty)

	return risk
}

// groupMean averages the normalized adverse indicators of one group.
func (e *Engine) groupMean(snap *contracts.Snapshot, group contracts.IndicatorGroup) (float64, bool) {
	sum, n := 0.0, 0
	for name, def := range e.catalog {
		if def.Group != group || !def.HigherIsWorse {
			continue
		}
		sum += clamp(snap.Indicators[name], 0, 1)
		n++
	}
	if n == 0 {
		return 0, false
	}
	return sum / float64(n), true
}

// shockMultiplier picks the highest tier whose event floor is met.
func (e *Engine) shockMultiplier(eventVolume int) float64 {
	multiplier := 1.0
	for _, tier := range e.cfg.Stability.ShockTiers {
		if eventVolume >= tier.MinEvents {
			multiplier = tier.Multiplier
		}
	}
	return multiplier
}

// adversePenalty adds a capped per-indicator charge for adverse
// indicators that worsened recently (trend) or are projected to worsen
// (forecast).
func (e *Engine) adversePenalty(snap *contracts.Snapshot, trend, projection PenaltyConfig) float64 {
	trendHits, projectionHits := 0, 0
	for name, def := range e.catalog {
		if !def.HigherIsWorse {
			continue
		}
		if delta, ok := snap.Deltas[name]; ok && delta > 0 {
			trendHits++
		}
		if projected, ok := snap.Projected[name]; ok && projected > snap.Raw[name] {
			projectionHits++
		}
	}

	penalty := math.Min(float64(trendHits)*trend.PerIndicator, trend.Cap)
	penalty += math.Min(float64(projectionHits)*projection.PerIndicator, projection.Cap)
	return penalty
}

// stabilityStatus applies the tier cutoffs: below the low cutoff is
// critical, below the mid cutoff alert.
func (e *Engine) stabilityStatus(score float64) string {
	switch {
	case score < e.cfg.Stability.CriticalBelow:
		return contracts.StatusCritical
	case score < e.cfg.Stability.AlertBelow:
		return contracts.StatusAlert
	default:
		return contracts.StatusStable
	}
}

func clamp(v, lo, hi float64) float64 {
	if math.IsNaN(v) {
		return lo
	}
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
