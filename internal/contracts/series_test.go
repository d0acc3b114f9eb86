package contracts

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSeriesPeriodsAndValuesSorted(t *testing.T) {
	s := NewSeries("USA", "gini_coefficient")
	s.Points[2023] = 41.0
	s.Points[2019] = 39.5
	s.Points[2021] = 40.2

	assert.Equal(t, []int{2019, 2021, 2023}, s.Periods())
	assert.Equal(t, []float64{39.5, 40.2, 41.0}, s.Values())
}

func TestSeriesLatest(t *testing.T) {
	s := NewSeries("DEU", "inflation_annual")
	s.Points[2020] = 0.5
	s.Points[2024] = 2.4
	s.Points[2022] = 8.6

	period, value, ok := s.Latest()
	assert.True(t, ok)
	assert.Equal(t, 2024, period)
	assert.Equal(t, 2.4, value)
}

func TestSeriesLatestEmpty(t *testing.T) {
	s := NewSeries("FRA", "neet_ratio")

	_, _, ok := s.Latest()
	assert.False(t, ok)
	assert.True(t, s.IsEmpty())
}

func TestSeriesMergeLaterProviderWins(t *testing.T) {
	base := NewSeries("BRA", "unemployment_rate")
	base.Points[2022] = 9.3
	base.Points[2023] = 8.0

	override := NewSeries("BRA", "unemployment_rate")
	override.Points[2023] = 7.8
	override.Points[2024] = 7.5

	base.Merge(override)

	assert.Equal(t, 9.3, base.Points[2022])
	assert.Equal(t, 7.8, base.Points[2023])
	assert.Equal(t, 7.5, base.Points[2024])
}

func TestSeriesMergeIntoNilPoints(t *testing.T) {
	var base Series
	override := NewSeries("IND", "gdp_per_capita")
	override.Points[2024] = 2700.0

	base.Merge(override)

	assert.Equal(t, 2700.0, base.Points[2024])
}
