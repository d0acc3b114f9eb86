package indicators

import (
	"github.com/jmcarbo/clioscope/internal/contracts"
	"github.com/jmcarbo/clioscope/internal/external/gdelt"
	"github.com/jmcarbo/clioscope/internal/external/imf"
	"github.com/jmcarbo/clioscope/internal/external/worldbank"
)

// catalog is the fixed set of tracked indicators. Provider refs are in
// priority order; later providers override earlier ones for shared
// periods when both return data.
var catalog = []contracts.IndicatorDef{
	{
		Name: "gini_coefficient",
		Providers: []contracts.ProviderRef{
			{Provider: worldbank.ProviderName, Code: "SI.POV.GINI"},
		},
		Frequency:     contracts.FreqAnnual,
		Norm:          contracts.NormRule{Kind: contracts.NormPercent, Ceiling: 100},
		Group:         contracts.GroupEconomic,
		Default:       40.0,
		HigherIsWorse: true,
	},
	{
		Name: "youth_unemployment",
		Providers: []contracts.ProviderRef{
			{Provider: worldbank.ProviderName, Code: "SL.UEM.1524.ZS"},
		},
		Frequency:     contracts.FreqAnnual,
		Norm:          contracts.NormRule{Kind: contracts.NormPercent, Ceiling: 100},
		Group:         contracts.GroupEconomic,
		Default:       20.0,
		HigherIsWorse: true,
	},
	{
		Name: "unemployment_rate",
		Providers: []contracts.ProviderRef{
			{Provider: imf.ProviderName, Code: "LUR_SA_X_PT"},
		},
		Frequency:     contracts.FreqAnnual,
		Norm:          contracts.NormRule{Kind: contracts.NormPercent, Ceiling: 100},
		Group:         contracts.GroupEconomic,
		Default:       5.0,
		HigherIsWorse: true,
	},
	{
		Name: "inflation_annual",
		Providers: []contracts.ProviderRef{
			{Provider: worldbank.ProviderName, Code: "FP.CPI.TOTL.ZG"},
			{Provider: imf.ProviderName, Code: "PCPI_A_SA_X_PCT"},
		},
		Frequency: contracts.FreqAnnual,
		// Anything past 50% annual inflation reads as fully saturated.
		Norm:          contracts.NormRule{Kind: contracts.NormPercent, Ceiling: 50},
		Group:         contracts.GroupEconomic,
		Default:       3.0,
		HigherIsWorse: true,
	},
	{
		Name: "gdp_per_capita",
		Providers: []contracts.ProviderRef{
			{Provider: imf.ProviderName, Code: "NGDPDPC_SA_XDC"},
		},
		Frequency: contracts.FreqAnnual,
		Norm:      contracts.NormRule{Kind: contracts.NormLog, Ceiling: 150000},
		Group:     contracts.GroupEconomic,
		Default:   10000.0,
	},
	{
		Name: "real_gdp_growth",
		Providers: []contracts.ProviderRef{
			{Provider: imf.ProviderName, Code: "NGDP_RPCH"},
		},
		Frequency: contracts.FreqAnnual,
		Norm:      contracts.NormRule{Kind: contracts.NormPercent, Ceiling: 10},
		Group:     contracts.GroupEconomic,
		Default:   2.0,
	},
	{
		Name: "neet_ratio",
		Providers: []contracts.ProviderRef{
			{Provider: worldbank.ProviderName, Code: "SL.UEM.NEET.ZS"},
		},
		Frequency:     contracts.FreqAnnual,
		Norm:          contracts.NormRule{Kind: contracts.NormPercent, Ceiling: 100},
		Group:         contracts.GroupDemographic,
		Default:       10.0,
		HigherIsWorse: true,
	},
	{
		Name: "tertiary_education",
		Providers: []contracts.ProviderRef{
			{Provider: worldbank.ProviderName, Code: "SE.TER.ENRR"},
		},
		Frequency: contracts.FreqAnnual,
		Norm:      contracts.NormRule{Kind: contracts.NormPercent, Ceiling: 100},
		Group:     contracts.GroupDemographic,
		Default:   60.0,
	},
	{
		Name: "government_effectiveness",
		Providers: []contracts.ProviderRef{
			{Provider: worldbank.ProviderName, Code: "GE.EST"},
		},
		Frequency: contracts.FreqAnnual,
		Norm:      contracts.NormRule{Kind: contracts.NormGovernance},
		Group:     contracts.GroupGovernance,
		Default:   0.0,
	},
	{
		Name: "political_stability",
		Providers: []contracts.ProviderRef{
			{Provider: worldbank.ProviderName, Code: "PV.EST"},
		},
		Frequency: contracts.FreqAnnual,
		Norm:      contracts.NormRule{Kind: contracts.NormGovernance},
		Group:     contracts.GroupGovernance,
		Default:   0.0,
	},
	{
		Name: "control_of_corruption",
		Providers: []contracts.ProviderRef{
			{Provider: worldbank.ProviderName, Code: "CC.EST"},
		},
		Frequency: contracts.FreqAnnual,
		Norm:      contracts.NormRule{Kind: contracts.NormGovernance},
		Group:     contracts.GroupGovernance,
		Default:   0.0,
	},
	{
		Name: "voice_accountability",
		Providers: []contracts.ProviderRef{
			{Provider: worldbank.ProviderName, Code: "VA.EST"},
		},
		Frequency: contracts.FreqAnnual,
		Norm:      contracts.NormRule{Kind: contracts.NormGovernance},
		Group:     contracts.GroupGovernance,
		Default:   0.0,
	},
	{
		Name: "rule_of_law",
		Providers: []contracts.ProviderRef{
			{Provider: worldbank.ProviderName, Code: "RL.EST"},
		},
		Frequency: contracts.FreqAnnual,
		Norm:      contracts.NormRule{Kind: contracts.NormGovernance},
		Group:     contracts.GroupGovernance,
		Default:   0.0,
	},
	{
		Name: "regulatory_quality",
		Providers: []contracts.ProviderRef{
			{Provider: worldbank.ProviderName, Code: "RQ.EST"},
		},
		Frequency: contracts.FreqAnnual,
		Norm:      contracts.NormRule{Kind: contracts.NormGovernance},
		Group:     contracts.GroupGovernance,
		Default:   0.0,
	},
	{
		Name: "social_polarization",
		Providers: []contracts.ProviderRef{
			{Provider: gdelt.ProviderName, Code: gdelt.CodeSocialPolarization},
		},
		Frequency:     contracts.FreqWeekly,
		Norm:          contracts.NormRule{Kind: contracts.NormBounded},
		Group:         contracts.GroupSocial,
		Default:       0.3,
		HigherIsWorse: true,
	},
	{
		Name: "institutional_distrust",
		Providers: []contracts.ProviderRef{
			{Provider: gdelt.ProviderName, Code: gdelt.CodeInstitutionalDistrust},
		},
		Frequency:     contracts.FreqWeekly,
		Norm:          contracts.NormRule{Kind: contracts.NormBounded},
		Group:         contracts.GroupSocial,
		Default:       0.3,
		HigherIsWorse: true,
	},
	{
		Name: "elite_overproduction",
		Providers: []contracts.ProviderRef{
			{Provider: gdelt.ProviderName, Code: gdelt.CodeEliteOverproduction},
		},
		Frequency:     contracts.FreqWeekly,
		Norm:          contracts.NormRule{Kind: contracts.NormBounded},
		Group:         contracts.GroupSocial,
		Default:       0.3,
		HigherIsWorse: true,
	},
	{
		Name: "wealth_concentration",
		Providers: []contracts.ProviderRef{
			{Provider: gdelt.ProviderName, Code: gdelt.CodeWealthConcentration},
		},
		Frequency:     contracts.FreqWeekly,
		Norm:          contracts.NormRule{Kind: contracts.NormBounded},
		Group:         contracts.GroupEconomic,
		Default:       0.3,
		HigherIsWorse: true,
	},
	{
		Name: "suicide_rate",
		Providers: []contracts.ProviderRef{
			{Provider: gdelt.ProviderName, Code: gdelt.CodeSuicideRate},
		},
		Frequency:     contracts.FreqWeekly,
		Norm:          contracts.NormRule{Kind: contracts.NormBounded},
		Group:         contracts.GroupSocial,
		Default:       0.2,
		HigherIsWorse: true,
	},
	// Survey-derived cultural constants. No live provider serves these;
	// they resolve from cache or defaults and never auto-refresh.
	{
		Name:      "traditional_vs_secular",
		Frequency: contracts.FreqStatic,
		Norm:      contracts.NormRule{Kind: contracts.NormGovernance},
		Group:     contracts.GroupSocial,
		Default:   0.0,
	},
	{
		Name:      "survival_vs_self_expression",
		Frequency: contracts.FreqStatic,
		Norm:      contracts.NormRule{Kind: contracts.NormGovernance},
		Group:     contracts.GroupSocial,
		Default:   0.0,
	},
	{
		Name:      "social_cohesion_index",
		Frequency: contracts.FreqStatic,
		Norm:      contracts.NormRule{Kind: contracts.NormBounded},
		Group:     contracts.GroupSocial,
		Default:   0.5,
	},
}

// entityDefaults carries entity-specific fallback values that override
// an indicator's global default.
var entityDefaults = map[string]map[string]float64{
	"gini_coefficient": {
		"USA": 40.0,
	},
}

// Catalog returns the tracked indicator definitions in stable order.
func Catalog() []contracts.IndicatorDef {
	out := make([]contracts.IndicatorDef, len(catalog))
	copy(out, catalog)
	return out
}

// CatalogByName returns the definitions keyed by indicator name.
func CatalogByName() map[string]contracts.IndicatorDef {
	byName := make(map[string]contracts.IndicatorDef, len(catalog))
	for _, def := range catalog {
		byName[def.Name] = def
	}
	return byName
}

// DefaultFor returns the fallback value for one entity and indicator,
// preferring an entity-specific default over the global one.
func DefaultFor(def contracts.IndicatorDef, entityCode string) float64 {
	if byEntity, ok := entityDefaults[def.Name]; ok {
		if v, ok := byEntity[entityCode]; ok {
			return v
		}
	}
	return def.Default
}
