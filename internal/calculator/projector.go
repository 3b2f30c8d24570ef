package calculator

import (
	"fmt"
	"math"
	"time"

	"GasSentinel/internal/model"
)

// ceilTolerance is relative to the quotient and absorbs float noise such as
// 6.000000000000001 so that an exact quotient is not pushed to the next day.
const ceilTolerance = 1e-12

// MaxProjectableDays is the largest day count that still converts to an int
// and a calendar date.
const MaxProjectableDays = 1 << 40

// Project computes when a level falling at rate percentage points per day
// crosses minimum, counted from asOf.
func Project(current, minimum, rate float64, asOf time.Time) (model.Outcome, error) {
	if math.IsNaN(minimum) || minimum < 0 || minimum > 100 {
		return model.Outcome{}, ErrInvalidThreshold
	}
	if math.IsNaN(rate) || math.IsInf(rate, 0) {
		return model.Outcome{}, ErrInvalidRate
	}

	if current <= minimum {
		return model.Reached(asOf, 0), nil
	}
	if rate >= 0 {
		return model.Unreachable(), nil
	}

	exact := (current - minimum) / -rate
	if exact > MaxProjectableDays {
		return model.Outcome{}, fmt.Errorf("%w: %g %%/day puts the minimum beyond any representable date", ErrInvalidRate, rate)
	}
	days := int(math.Ceil(exact - exact*ceilTolerance))
	if days < 1 {
		days = 1
	}
	return model.Reached(model.Day(asOf).AddDate(0, 0, days), days), nil
}

// ProjectScenario applies Project to one scenario.
func ProjectScenario(current, minimum float64, asOf time.Time, s model.Scenario) (model.Projection, error) {
	outcome, err := Project(current, minimum, s.RatePctPerDay, asOf)
	if err != nil {
		return model.Projection{}, err
	}
	return model.Projection{Scenario: s, Outcome: outcome}, nil
}
