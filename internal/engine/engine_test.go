package engine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"GasSentinel/internal/calculator"
	"GasSentinel/internal/model"
	"GasSentinel/internal/report"
)

func series(start time.Time, levels ...float64) []model.Observation {
	out := make([]model.Observation, len(levels))
	for i, l := range levels {
		out[i] = model.Observation{Date: start.AddDate(0, 0, i), FillLevelPct: l}
	}
	return out
}

var start = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

func TestCompute_DepletingSeries(t *testing.T) {
	s := series(start, 40, 39, 38.5, 37.5, 37)
	run, err := Compute(s, Params{LookbackDays: 30, MinimumPct: 30, OptimisticFactor: 0.8, PessimisticFactor: 1.2},
		report.RunMeta{ID: "abc", Source: model.SourceCache})
	require.NoError(t, err)

	assert.Equal(t, "abc", run.ID)
	assert.Equal(t, model.SourceCache, run.Source)
	assert.Equal(t, 30, run.LookbackDays)
	assert.Equal(t, "2026-01-05", run.AsOf.Format(model.DateLayout))
	assert.Equal(t, 37.0, run.CurrentPct)
	assert.InDelta(t, -0.5, run.Rates.RateMin, 1e-9)
	assert.InDelta(t, -1.0, run.Rates.RateMax, 1e-9)
	assert.InDelta(t, -0.75, run.Rates.RateAvg, 1e-9)

	require.Len(t, run.Projections, 5)
	for i, kind := range model.ScenarioOrder {
		assert.Equal(t, kind, run.Projections[i].Scenario.Kind)
	}

	// 7 points above the minimum at 0.4/day -> 17.5 -> 18 days.
	days, ok := run.Projections[0].Outcome.DaysToMin()
	require.True(t, ok)
	assert.Equal(t, 18, days)
}

func TestCompute_UsesLookbackWindow(t *testing.T) {
	// A steep early drop that falls outside a three-observation window.
	s := series(start, 90, 50, 49, 48)
	run, err := Compute(s, Params{LookbackDays: 3, MinimumPct: 20, OptimisticFactor: 0.8, PessimisticFactor: 1.2}, report.RunMeta{})
	require.NoError(t, err)
	assert.InDelta(t, -1.0, run.Rates.RateMax, 1e-9)
}

func TestCompute_AtMinimumEveryScenarioIsDue(t *testing.T) {
	s := series(start, 21, 20.5, 20)
	run, err := Compute(s, DefaultParams(), report.RunMeta{})
	require.NoError(t, err)
	for _, p := range run.Projections {
		days, ok := p.Outcome.DaysToMin()
		require.True(t, ok)
		assert.Equal(t, 0, days)
		target, _ := p.Outcome.Target()
		assert.True(t, target.Equal(run.AsOf))
	}
}

func TestCompute_FlatSeriesIsUnreachable(t *testing.T) {
	run, err := Compute(series(start, 50, 50, 50), DefaultParams(), report.RunMeta{})
	require.NoError(t, err)
	for _, p := range run.Projections {
		assert.True(t, p.Outcome.IsUnreachable(), p.Scenario.Kind.Key())
	}
}

func TestCompute_InsufficientData(t *testing.T) {
	_, err := Compute(series(start, 50), DefaultParams(), report.RunMeta{})
	require.ErrorIs(t, err, calculator.ErrInsufficientData)
}

func TestParams_Validate(t *testing.T) {
	require.NoError(t, DefaultParams().Validate())

	bad := []Params{
		{LookbackDays: 1, MinimumPct: 20, OptimisticFactor: 0.8, PessimisticFactor: 1.2},
		{LookbackDays: 30, MinimumPct: -1, OptimisticFactor: 0.8, PessimisticFactor: 1.2},
		{LookbackDays: 30, MinimumPct: 101, OptimisticFactor: 0.8, PessimisticFactor: 1.2},
		{LookbackDays: 30, MinimumPct: 20, OptimisticFactor: 0, PessimisticFactor: 1.2},
		{LookbackDays: 30, MinimumPct: 20, OptimisticFactor: 0.8, PessimisticFactor: -1},
	}
	for _, p := range bad {
		assert.ErrorIs(t, p.Validate(), ErrInvalidParams)
	}
}

func TestCompute_InvalidThresholdKeepsKind(t *testing.T) {
	p := DefaultParams()
	p.MinimumPct = 120
	_, err := Compute(series(start, 50, 49), p, report.RunMeta{})
	require.ErrorIs(t, err, calculator.ErrInvalidThreshold)
}
