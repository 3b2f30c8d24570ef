package calculator

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"GasSentinel/internal/model"
)

var asOf = time.Date(2026, 2, 15, 0, 0, 0, 0, time.UTC)

func TestProject_WorkedExample(t *testing.T) {
	tests := []struct {
		name   string
		rate   float64
		days   int
		target string
	}{
		{"optimistic", -0.30 * 0.8, 15, "2026-03-02"},
		{"smallest", -0.30, 12, "2026-02-27"},
		{"average", -0.638, 6, "2026-02-21"},
		{"largest", -1.02, 4, "2026-02-19"},
		{"pessimistic", -1.02 * 1.2, 3, "2026-02-18"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := Project(23.54, 20, tt.rate, asOf)
			require.NoError(t, err)

			days, ok := out.DaysToMin()
			require.True(t, ok)
			assert.Equal(t, tt.days, days)

			target, _ := out.Target()
			assert.Equal(t, tt.target, target.Format(model.DateLayout))
		})
	}
}

func TestProject_ExactQuotientDoesNotRoundUp(t *testing.T) {
	out, err := Project(22.0, 20.0, -0.5, asOf)
	require.NoError(t, err)
	days, _ := out.DaysToMin()
	assert.Equal(t, 4, days)
}

func TestProject_AtOrBelowMinimum(t *testing.T) {
	for _, rate := range []float64{-1, 0, 0.5} {
		for _, level := range []float64{20, 19.5} {
			out, err := Project(level, 20, rate, asOf)
			require.NoError(t, err)
			days, ok := out.DaysToMin()
			require.True(t, ok)
			assert.Equal(t, 0, days)
			target, _ := out.Target()
			assert.True(t, target.Equal(asOf))
		}
	}
}

func TestProject_NonDepletingIsUnreachable(t *testing.T) {
	for _, rate := range []float64{0, 0.1, math.Copysign(0, -1)} {
		out, err := Project(40, 20, rate, asOf)
		require.NoError(t, err)
		assert.True(t, out.IsUnreachable())
		_, ok := out.Target()
		assert.False(t, ok)
		_, ok = out.DaysToMin()
		assert.False(t, ok)
	}
}

func TestProject_SlowDepletionIsStillReached(t *testing.T) {
	out, err := Project(50, 20, -0.0005, asOf)
	require.NoError(t, err)
	require.True(t, out.IsReached())

	days, ok := out.DaysToMin()
	require.True(t, ok)
	assert.Equal(t, 60000, days)
	target, _ := out.Target()
	assert.True(t, target.Equal(asOf.AddDate(0, 0, 60000)))
}

func TestProject_RateTooCloseToZeroFails(t *testing.T) {
	_, err := Project(40, 20, -1e-12, asOf)
	assert.ErrorIs(t, err, ErrInvalidRate)
}

func TestProject_CeilingOnlyAbsorbsFloatNoise(t *testing.T) {
	// float noise around an exact quotient of 6
	out, err := Project(23.54, 20, -0.59, asOf)
	require.NoError(t, err)
	days, _ := out.DaysToMin()
	assert.Equal(t, 6, days)

	// a genuine fraction above a whole day is the next day
	out, err = Project(23.0000000005, 20, -1, asOf)
	require.NoError(t, err)
	days, _ = out.DaysToMin()
	assert.Equal(t, 4, days)
}

func TestProject_InvalidInputs(t *testing.T) {
	_, err := Project(40, -1, -0.5, asOf)
	assert.ErrorIs(t, err, ErrInvalidThreshold)

	_, err = Project(40, 100.5, -0.5, asOf)
	assert.ErrorIs(t, err, ErrInvalidThreshold)

	_, err = Project(40, math.NaN(), -0.5, asOf)
	assert.ErrorIs(t, err, ErrInvalidThreshold)

	_, err = Project(40, 20, math.NaN(), asOf)
	assert.ErrorIs(t, err, ErrInvalidRate)

	_, err = Project(40, 20, math.Inf(-1), asOf)
	assert.ErrorIs(t, err, ErrInvalidRate)
}

func TestProjectScenario_CarriesScenario(t *testing.T) {
	s := model.Scenario{Kind: model.ScenarioPessimistic, Factor: 1.2, RatePctPerDay: -1.224}
	p, err := ProjectScenario(23.54, 20, asOf, s)
	require.NoError(t, err)
	assert.Equal(t, s, p.Scenario)
	assert.True(t, p.Outcome.IsReached())
}
