package contracts

// FrequencyClass determines how long a cached indicator value stays fresh.
type FrequencyClass string

const (
	// FreqStatic values never auto-refresh (survey-style constants).
	FreqStatic FrequencyClass = "static"
	// FreqAnnual values refresh once per new calendar year.
	FreqAnnual FrequencyClass = "annual"
	// FreqWeekly values refresh after 7 days.
	FreqWeekly FrequencyClass = "weekly"
)

// IndicatorGroup partitions indicators for the systemic risk group means.
type IndicatorGroup string

const (
	GroupEconomic    IndicatorGroup = "economic"
	GroupSocial      IndicatorGroup = "social"
	GroupDemographic IndicatorGroup = "demographic"
	GroupGovernance  IndicatorGroup = "governance"
)

// NormKind selects the normalization rule for an indicator.
type NormKind string

const (
	// NormPercent divides by a ceiling (default 100) and clamps.
	NormPercent NormKind = "percent"
	// NormGovernance maps the [-2.5, 2.5] governance scale onto [0,1].
	NormGovernance NormKind = "governance"
	// NormBounded passes already-bounded values through, clamped.
	NormBounded NormKind = "bounded"
	// NormLog compresses unbounded magnitudes with log1p before clamping.
	NormLog NormKind = "log"
)

// NormRule is an indicator-specific normalization rule. Every rule is a
// total function over the reals with output clamped to [0,1].
type NormRule struct {
	Kind    NormKind
	Ceiling float64 // percent: divisor; log: magnitude mapped to 1.0
}

// ProviderRef names one (provider, code) pair for an indicator, in
// priority order.
type ProviderRef struct {
	Provider string
	Code     string
}

// IndicatorDef describes a single tracked indicator. Definitions are
// immutable and fixed at startup.
type IndicatorDef struct {
	Name      string
	Providers []ProviderRef
	Frequency FrequencyClass
	Norm      NormRule
	Group     IndicatorGroup

	// Default is the global fallback value when no provider and no
	// entity-specific default yields data.
	Default float64

	// HigherIsWorse marks indicators whose positive deltas worsen the
	// outlook; trend and forecast penalties apply only to these.
	HigherIsWorse bool
}
