package model

import (
	"fmt"
	"time"

	"github.com/goccy/go-json"
)

// RateSet holds the daily rates of change over a lookback window, in
// percentage points per day. RateMin is the slowest depletion, RateMax the
// fastest, so for a depleting series RateMax <= RateAvg <= RateMin.
type RateSet struct {
	RateMin float64 `json:"rate_min_pct_per_day"`
	RateAvg float64 `json:"rate_avg_pct_per_day"`
	RateMax float64 `json:"rate_max_pct_per_day"`
}

// ScenarioKind identifies one of the canonical scenarios.
type ScenarioKind int

const (
	ScenarioOptimistic ScenarioKind = iota
	ScenarioSmallestWithdrawal
	ScenarioAverageWithdrawal
	ScenarioLargestWithdrawal
	ScenarioPessimistic
)

// ScenarioOrder is the canonical scenario order used everywhere.
var ScenarioOrder = []ScenarioKind{
	ScenarioOptimistic,
	ScenarioSmallestWithdrawal,
	ScenarioAverageWithdrawal,
	ScenarioLargestWithdrawal,
	ScenarioPessimistic,
}

// Key is the stable column prefix of the scenario in history rows.
func (k ScenarioKind) Key() string {
	switch k {
	case ScenarioOptimistic:
		return "optimistic"
	case ScenarioSmallestWithdrawal:
		return "smallest_withdrawal"
	case ScenarioAverageWithdrawal:
		return "average_withdrawal"
	case ScenarioLargestWithdrawal:
		return "largest_withdrawal"
	case ScenarioPessimistic:
		return "pessimistic"
	default:
		return "unknown"
	}
}

func (k ScenarioKind) String() string { return k.Key() }

func (k ScenarioKind) MarshalText() ([]byte, error) { return []byte(k.Key()), nil }

func (k *ScenarioKind) UnmarshalText(b []byte) error {
	for _, kind := range ScenarioOrder {
		if kind.Key() == string(b) {
			*k = kind
			return nil
		}
	}
	return fmt.Errorf("unknown scenario %q", b)
}

// Scenario is a named daily-rate assumption.
type Scenario struct {
	Kind          ScenarioKind `json:"name"`
	Factor        float64      `json:"factor"`
	RatePctPerDay float64      `json:"rate_pct_per_day"`
}

type outcomeKind int

const (
	outcomeReached outcomeKind = iota + 1
	outcomeUnreachable
)

// Outcome is either Reached(date, days) or Unreachable. The zero value is
// neither and reports false from both accessors.
type Outcome struct {
	kind outcomeKind
	date time.Time
	days int
}

// Reached returns the outcome of a scenario that hits the minimum on date,
// days calendar days after the anchor.
func Reached(date time.Time, days int) Outcome {
	return Outcome{kind: outcomeReached, date: Day(date), days: days}
}

// Unreachable returns the outcome of a scenario that never hits the minimum.
func Unreachable() Outcome {
	return Outcome{kind: outcomeUnreachable}
}

func (o Outcome) IsReached() bool     { return o.kind == outcomeReached }
func (o Outcome) IsUnreachable() bool { return o.kind == outcomeUnreachable }

// Target returns the date the minimum is reached.
func (o Outcome) Target() (time.Time, bool) {
	if o.kind != outcomeReached {
		return time.Time{}, false
	}
	return o.date, true
}

// DaysToMin returns the number of days until the minimum is reached.
func (o Outcome) DaysToMin() (int, bool) {
	if o.kind != outcomeReached {
		return 0, false
	}
	return o.days, true
}

func (o Outcome) MarshalJSON() ([]byte, error) {
	out := struct {
		Reached    bool    `json:"reached"`
		TargetDate *string `json:"target_date"`
		DaysToMin  *int    `json:"days_to_min"`
	}{}
	if d, ok := o.Target(); ok {
		s := d.Format(DateLayout)
		n := o.days
		out.Reached = true
		out.TargetDate = &s
		out.DaysToMin = &n
	}
	return json.Marshal(out)
}

func (o *Outcome) UnmarshalJSON(b []byte) error {
	var in struct {
		Reached    bool    `json:"reached"`
		TargetDate *string `json:"target_date"`
		DaysToMin  *int    `json:"days_to_min"`
	}
	if err := json.Unmarshal(b, &in); err != nil {
		return err
	}
	if !in.Reached {
		*o = Unreachable()
		return nil
	}
	if in.TargetDate == nil || in.DaysToMin == nil {
		return fmt.Errorf("reached outcome needs target_date and days_to_min")
	}
	d, err := time.Parse(DateLayout, *in.TargetDate)
	if err != nil {
		return fmt.Errorf("target_date: %w", err)
	}
	*o = Reached(d, *in.DaysToMin)
	return nil
}

// Projection is the outcome of one scenario.
type Projection struct {
	Scenario Scenario `json:"scenario"`
	Outcome  Outcome  `json:"outcome"`
}

// ProjectionRun is the complete result of one invocation. It is built once
// by report.Assemble and must be treated as read-only afterwards.
type ProjectionRun struct {
	ID           string       `json:"id"`
	RunAt        time.Time    `json:"run_at"`
	Source       SourceMode   `json:"source"`
	SourceURL    string       `json:"source_url,omitempty"`
	LookbackDays int          `json:"lookback_days"`
	AsOf         time.Time    `json:"as_of"`
	CurrentPct   float64      `json:"current_fill_level_pct"`
	MinimumPct   float64      `json:"minimum_threshold_pct"`
	Rates        RateSet      `json:"rates"`
	Projections  []Projection `json:"projections"`
}
