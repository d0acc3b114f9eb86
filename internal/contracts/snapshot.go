package contracts

import "time"

// Status tiers shared by both composite indices. Cutoffs are inclusive
// lower bounds: a value exactly at the alert cutoff is alert, exactly at
// the critical cutoff is critical.
const (
	StatusStable   = "stable"
	StatusAlert    = "alert"
	StatusCritical = "critical"
)

// ResolutionSource records where a resolved indicator value came from.
type ResolutionSource string

const (
	SourceCache    ResolutionSource = "cache"
	SourceProvider ResolutionSource = "provider"
	SourceForecast ResolutionSource = "forecast"
	SourceDefault  ResolutionSource = "default"
)

// ScoreResult is a composite index value with its status tier.
type ScoreResult struct {
	Value  float64 `json:"value"`
	Status string  `json:"status"`
}

// Snapshot is the per-entity working state for one pipeline run. It is
// created fresh each run and mutated in two passes: local scoring, then
// border propagation. It is never persisted mid-run.
type Snapshot struct {
	Entity string `json:"country_code"`

	// Raw holds resolved indicator values before normalization.
	Raw map[string]float64 `json:"raw_indicators"`

	// Indicators holds normalized values in [0,1].
	Indicators map[string]float64 `json:"indicators"`

	// Sources records per-indicator provenance.
	Sources map[string]ResolutionSource `json:"sources,omitempty"`

	// Deltas holds recent historical changes (latest minus previous)
	// for trend penalties; Projected holds one-step-ahead forecasts for
	// forecast penalties. Both keyed by indicator name, optional.
	Deltas    map[string]float64 `json:"-"`
	Projected map[string]float64 `json:"-"`

	// EventVolume is the recent event count feeding the shock factor.
	EventVolume int `json:"event_volume"`

	// FragilityIndex is the geopolitical fragility lookup in [0,1].
	FragilityIndex float64 `json:"fragility_index"`

	// CrisisProbability is an externally forecast crisis probability in
	// [0,1]. No built-in component produces it: it is reserved for
	// callers that inject an external model's output before scoring,
	// and stays zero otherwise.
	CrisisProbability float64 `json:"crisis_probability"`

	Stability      ScoreResult `json:"stability"`
	Instability    ScoreResult `json:"instability"`
	BorderPressure float64     `json:"border_pressure"`

	// Eudaimonia is the inverse corruption/tension predictor on a
	// 0-100 scale.
	Eudaimonia float64 `json:"eudaimonia_predictor"`

	ProcessedAt time.Time `json:"processed_at"`
}

// NewSnapshot returns an initialized snapshot for an entity.
func NewSnapshot(entity string) *Snapshot {
	return &Snapshot{
		Entity:     entity,
		Raw:        make(map[string]float64),
		Indicators: make(map[string]float64),
		Sources:    make(map[string]ResolutionSource),
		Deltas:     make(map[string]float64),
		Projected:  make(map[string]float64),
	}
}

// CountSources returns how many indicators came from the given source.
func (s *Snapshot) CountSources(src ResolutionSource) int {
	n := 0
	for _, got := range s.Sources {
		if got == src {
			n++
		}
	}
	return n
}

// RunSummary is the metadata attached to each completed pipeline run.
type RunSummary struct {
	ProcessedAt      time.Time     `json:"processing_date"`
	Duration         time.Duration `json:"-"`
	DurationSeconds  float64       `json:"duration_seconds"`
	EntitiesTotal    int           `json:"entities_total"`
	EntitiesScored   int           `json:"countries_processed"`
	EntitiesDropped  int           `json:"entities_dropped"`
	FreshIndicators  int           `json:"fresh_indicators"`
	CachedIndicators int           `json:"cached_indicators"`
	DefaultedValues  int           `json:"defaulted_indicators"`
}
