package report

import (
	"errors"
	"fmt"
	"time"

	"GasSentinel/internal/model"
)

var ErrAssembledStateMismatch = errors.New("scenarios and projections do not line up")

// RunMeta carries the run metadata that is not derived from the series.
type RunMeta struct {
	ID           string
	RunAt        time.Time
	Source       model.SourceMode
	SourceURL    string
	LookbackDays int
}

// Assemble combines already computed values into a ProjectionRun. It does
// not recompute anything; it only checks that every projection belongs to
// the scenario at the same position.
func Assemble(meta RunMeta, asOf time.Time, current float64, rates model.RateSet, minimum float64,
	scenarios []model.Scenario, projections []model.Projection) (*model.ProjectionRun, error) {
	if len(scenarios) != len(projections) {
		return nil, fmt.Errorf("%w: %d scenarios, %d projections",
			ErrAssembledStateMismatch, len(scenarios), len(projections))
	}
	for i := range scenarios {
		if projections[i].Scenario != scenarios[i] {
			return nil, fmt.Errorf("%w: position %d holds %s, want %s",
				ErrAssembledStateMismatch, i, projections[i].Scenario.Kind, scenarios[i].Kind)
		}
	}

	ps := make([]model.Projection, len(projections))
	copy(ps, projections)

	return &model.ProjectionRun{
		ID:           meta.ID,
		RunAt:        meta.RunAt.UTC(),
		Source:       meta.Source,
		SourceURL:    meta.SourceURL,
		LookbackDays: meta.LookbackDays,
		AsOf:         model.Day(asOf),
		CurrentPct:   current,
		MinimumPct:   minimum,
		Rates:        rates,
		Projections:  ps,
	}, nil
}
