package contracts

import "sort"

// Series is a historical indicator series for one entity. Periods are
// calendar years. An empty series is a valid "no data" result, not an
// error.
type Series struct {
	Entity    string
	Indicator string
	Points    map[int]float64
}

// NewSeries returns an empty series for the given entity and indicator.
func NewSeries(entity, indicator string) Series {
	return Series{
		Entity:    entity,
		Indicator: indicator,
		Points:    make(map[int]float64),
	}
}

// IsEmpty reports whether the series carries no points.
func (s Series) IsEmpty() bool {
	return len(s.Points) == 0
}

// Periods returns the series periods in ascending order.
func (s Series) Periods() []int {
	periods := make([]int, 0, len(s.Points))
	for p := range s.Points {
		periods = append(periods, p)
	}
	sort.Ints(periods)
	return periods
}

// Values returns the series values in ascending period order.
func (s Series) Values() []float64 {
	periods := s.Periods()
	values := make([]float64, len(periods))
	for i, p := range periods {
		values[i] = s.Points[p]
	}
	return values
}

// Latest returns the most recent period and its value. ok is false for
// an empty series.
func (s Series) Latest() (period int, value float64, ok bool) {
	for p, v := range s.Points {
		if !ok || p > period {
			period = p
			value = v
			ok = true
		}
	}
	return period, value, ok
}

// Merge overlays other on top of s: values from other win for shared
// periods. Used when a later provider is considered more authoritative.
func (s *Series) Merge(other Series) {
	if s.Points == nil {
		s.Points = make(map[int]float64)
	}
	for p, v := range other.Points {
		s.Points[p] = v
	}
}
