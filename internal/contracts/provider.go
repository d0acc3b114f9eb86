package contracts

import "context"

// Provider is the uniform contract over one external data source.
// Implementations return a classified error (transient or permanent per
// pkg/httputil) on failure; an empty series with a nil error means the
// provider answered but has no data.
type Provider interface {
	// Name identifies the provider in indicator definitions and logs.
	Name() string

	// Fetch retrieves the historical series for one entity and
	// indicator code over [fromYear, toYear].
	Fetch(ctx context.Context, entityCode, indicatorCode string, fromYear, toYear int) (Series, error)
}

// EventVolumeProvider supplies the short-term event-intensity proxy used
// for the shock factor.
type EventVolumeProvider interface {
	// RecentEventVolume returns the recent event count for an entity.
	RecentEventVolume(ctx context.Context, entityCode string, days int) (int, error)
}

// FragilityProvider supplies the geopolitical fragility lookup.
type FragilityProvider interface {
	// Fragility returns a [0,1] fragility value for an entity.
	Fragility(ctx context.Context, entityCode string) (float64, error)
}
