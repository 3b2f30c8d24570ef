// Package engine turns an ordered storage series into a ProjectionRun. It
// performs no I/O and keeps no state between calls.
package engine

import (
	"errors"
	"fmt"
	"math"

	"GasSentinel/internal/calculator"
	"GasSentinel/internal/model"
	"GasSentinel/internal/report"
	"GasSentinel/internal/scenario"
)

var ErrInvalidParams = errors.New("invalid projection parameters")

// Params configures one projection.
type Params struct {
	LookbackDays      int
	MinimumPct        float64
	OptimisticFactor  float64
	PessimisticFactor float64
}

// DefaultParams returns the parameters used when nothing is configured.
func DefaultParams() Params {
	return Params{
		LookbackDays:      30,
		MinimumPct:        20,
		OptimisticFactor:  scenario.DefaultOptimisticFactor,
		PessimisticFactor: scenario.DefaultPessimisticFactor,
	}
}

// Validate checks the parameters before any computation.
func (p Params) Validate() error {
	if p.LookbackDays < 2 {
		return fmt.Errorf("%w: lookback_days must be at least 2, got %d", ErrInvalidParams, p.LookbackDays)
	}
	if math.IsNaN(p.MinimumPct) || p.MinimumPct < 0 || p.MinimumPct > 100 {
		return fmt.Errorf("%w: %w", ErrInvalidParams, calculator.ErrInvalidThreshold)
	}
	if !(p.OptimisticFactor > 0) || math.IsInf(p.OptimisticFactor, 0) {
		return fmt.Errorf("%w: optimistic_factor must be positive", ErrInvalidParams)
	}
	if !(p.PessimisticFactor > 0) || math.IsInf(p.PessimisticFactor, 0) {
		return fmt.Errorf("%w: pessimistic_factor must be positive", ErrInvalidParams)
	}
	return nil
}

// Compute runs the projection over series, which must be sorted by date
// with unique dates. The latest observation is the projection anchor.
func Compute(series []model.Observation, p Params, meta report.RunMeta) (*model.ProjectionRun, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}

	window := calculator.Window(series, p.LookbackDays)
	rates, err := calculator.ComputeRates(window)
	if err != nil {
		return nil, fmt.Errorf("compute rates: %w", err)
	}

	latest := window[len(window)-1]
	scenarios := scenario.Build(rates, p.OptimisticFactor, p.PessimisticFactor)

	projections := make([]model.Projection, 0, len(scenarios))
	for _, s := range scenarios {
		proj, err := calculator.ProjectScenario(latest.FillLevelPct, p.MinimumPct, latest.Date, s)
		if err != nil {
			return nil, fmt.Errorf("project %s: %w", s.Kind, err)
		}
		projections = append(projections, proj)
	}

	meta.LookbackDays = p.LookbackDays
	return report.Assemble(meta, latest.Date, latest.FillLevelPct, rates, p.MinimumPct, scenarios, projections)
}
