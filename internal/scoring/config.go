package scoring

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"math"
	"os"

	"gopkg.in/yaml.v3"
)

// Config carries every tunable of the two composite indices. It is
// loaded once at startup; a config hash ties persisted runs to the
// exact parameter set that produced them.
type Config struct {
	Instability InstabilityConfig `yaml:"instability" json:"instability"`
	Stability   StabilityConfig   `yaml:"stability" json:"stability"`
}

// PenaltyConfig is a per-indicator additive penalty with a cap.
type PenaltyConfig struct {
	PerIndicator float64 `yaml:"per_indicator" json:"per_indicator"`
	Cap          float64 `yaml:"cap" json:"cap"`
}

// BorderPressureKey is the reserved weight key for the propagated
// neighborhood term.
const BorderPressureKey = "border_pressure"

// InstabilityConfig parameterizes the [0,1] instability index.
type InstabilityConfig struct {
	// Weights maps indicator names (plus BorderPressureKey) to their
	// share of the weighted sum. Weights must sum to 1.
	Weights map[string]float64 `yaml:"weights" json:"weights"`

	// Tier cutoffs are inclusive lower bounds.
	AlertThreshold    float64 `yaml:"alert_threshold" json:"alert_threshold"`
	CriticalThreshold float64 `yaml:"critical_threshold" json:"critical_threshold"`

	TrendPenalty    PenaltyConfig `yaml:"trend_penalty" json:"trend_penalty"`
	ForecastPenalty PenaltyConfig `yaml:"forecast_penalty" json:"forecast_penalty"`
}

// ShockTier maps a recent-event volume floor to a risk multiplier.
type ShockTier struct {
	MinEvents  int     `yaml:"min_events" json:"min_events"`
	Multiplier float64 `yaml:"multiplier" json:"multiplier"`
}

// StabilityConfig parameterizes the [1,10] stability score.
type StabilityConfig struct {
	// BaseScore anchors the pre-risk score before fundamentals shift it.
	BaseScore       float64 `yaml:"base_score" json:"base_score"`
	GDPAdjustScale  float64 `yaml:"gdp_adjust_scale" json:"gdp_adjust_scale"`
	GovAdjustScale  float64 `yaml:"gov_adjust_scale" json:"gov_adjust_scale"`

	// Normalized per-indicator cutoffs feeding the systemic risk sum.
	IndicatorAlert    float64 `yaml:"indicator_alert" json:"indicator_alert"`
	IndicatorCritical float64 `yaml:"indicator_critical" json:"indicator_critical"`
	AlertPoints       float64 `yaml:"alert_points" json:"alert_points"`
	CriticalPoints    float64 `yaml:"critical_points" json:"critical_points"`

	// GroupWeights scale the per-group means of adverse indicators.
	GroupWeights map[string]float64 `yaml:"group_weights" json:"group_weights"`

	// ShockTiers must be ordered by ascending MinEvents; the highest
	// matching tier wins.
	ShockTiers []ShockTier `yaml:"shock_tiers" json:"shock_tiers"`

	FragilityWeight float64 `yaml:"fragility_weight" json:"fragility_weight"`
	FragilityCap    float64 `yaml:"fragility_cap" json:"fragility_cap"`

	TrendPenalty    PenaltyConfig `yaml:"trend_penalty" json:"trend_penalty"`
	ForecastPenalty PenaltyConfig `yaml:"forecast_penalty" json:"forecast_penalty"`

	// Tier cutoffs: scores below CriticalBelow are critical, below
	// AlertBelow alert, anything else stable.
	CriticalBelow float64 `yaml:"critical_below" json:"critical_below"`
	AlertBelow    float64 `yaml:"alert_below" json:"alert_below"`
}

// DefaultConfig returns the shipped parameter set.
func DefaultConfig() Config {
	return Config{
		Instability: InstabilityConfig{
			Weights: map[string]float64{
				"youth_unemployment":     0.20,
				"gini_coefficient":       0.20,
				"elite_overproduction":   0.15,
				"social_polarization":    0.125,
				"institutional_distrust": 0.125,
				"neet_ratio":             0.10,
				BorderPressureKey:        0.10,
			},
			AlertThreshold:    0.4,
			CriticalThreshold: 0.6,
			TrendPenalty:      PenaltyConfig{PerIndicator: 0.02, Cap: 0.08},
			ForecastPenalty:   PenaltyConfig{PerIndicator: 0.01, Cap: 0.04},
		},
		Stability: StabilityConfig{
			BaseScore:         6.0,
			GDPAdjustScale:    2.0,
			GovAdjustScale:    2.0,
			IndicatorAlert:    0.6,
			IndicatorCritical: 0.8,
			AlertPoints:       0.05,
			CriticalPoints:    0.10,
			GroupWeights: map[string]float64{
				"economic":    0.15,
				"social":      0.15,
				"demographic": 0.10,
			},
			ShockTiers: []ShockTier{
				{MinEvents: 0, Multiplier: 1.0},
				{MinEvents: 50, Multiplier: 1.8},
				{MinEvents: 150, Multiplier: 2.5},
			},
			FragilityWeight: 0.2,
			FragilityCap:    0.3,
			TrendPenalty:    PenaltyConfig{PerIndicator: 0.02, Cap: 0.10},
			ForecastPenalty: PenaltyConfig{PerIndicator: 0.01, Cap: 0.05},
			CriticalBelow:   4.0,
			AlertBelow:      6.0,
		},
	}
}

// Load reads a YAML parameter file. Unknown fields fail fast so typos
// never silently fall back to defaults.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("failed to read scoring config: %w", err)
	}

	cfg := DefaultConfig()
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse scoring config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// Validate checks the structural invariants of a parameter set.
func (c Config) Validate() error {
	sum := 0.0
	for name, w := range c.Instability.Weights {
		if w < 0 {
			return fmt.Errorf("instability weight %q is negative", name)
		}
		sum += w
	}
	if math.Abs(sum-1.0) > 1e-6 {
		return fmt.Errorf("instability weights sum to %.6f, want 1.0", sum)
	}

	if c.Instability.AlertThreshold > c.Instability.CriticalThreshold {
		return fmt.Errorf("instability alert threshold above critical threshold")
	}

	if c.Stability.BaseScore < 1 || c.Stability.BaseScore > 10 {
		return fmt.Errorf("stability base score %.2f outside [1,10]", c.Stability.BaseScore)
	}
	if c.Stability.CriticalBelow > c.Stability.AlertBelow {
		return fmt.Errorf("stability critical cutoff above alert cutoff")
	}

	prev := -1
	for _, tier := range c.Stability.ShockTiers {
		if tier.MinEvents <= prev {
			return fmt.Errorf("shock tiers not in ascending event order")
		}
		if tier.Multiplier <= 0 {
			return fmt.Errorf("shock tier multiplier must be positive")
		}
		prev = tier.MinEvents
	}

	return nil
}

// Hash returns a stable SHA256 over the canonical JSON encoding of the
// config, tying persisted runs to their parameter set.
func (c Config) Hash() (string, error) {
	jsonBytes, err := json.Marshal(c)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(jsonBytes)
	return hex.EncodeToString(sum[:]), nil
}
