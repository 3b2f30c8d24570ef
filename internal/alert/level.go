// Package alert grades projections by how close the minimum is.
package alert

import "GasSentinel/internal/model"

// Level is the urgency of a projection.
type Level int

const (
	LevelNone Level = iota
	LevelWatch
	LevelWarning
	LevelCritical
)

func (l Level) String() string {
	switch l {
	case LevelWatch:
		return "watch"
	case LevelWarning:
		return "warning"
	case LevelCritical:
		return "critical"
	default:
		return "none"
	}
}

// Tiers maps days to minimum onto a level, checked in order.
var Tiers = []struct {
	MaxDays int
	Level   Level
}{
	{14, LevelCritical},
	{45, LevelWarning},
	{120, LevelWatch},
}

// Classify returns the level of a single scenario outcome.
func Classify(o model.Outcome) Level {
	days, ok := o.DaysToMin()
	if !ok {
		return LevelNone
	}
	for _, t := range Tiers {
		if days <= t.MaxDays {
			return t.Level
		}
	}
	return LevelNone
}

// ForRun grades a run by its average-withdrawal scenario, which tracks the
// observed trend without scaling.
func ForRun(run *model.ProjectionRun) Level {
	for _, p := range run.Projections {
		if p.Scenario.Kind == model.ScenarioAverageWithdrawal {
			return Classify(p.Outcome)
		}
	}
	return LevelNone
}
