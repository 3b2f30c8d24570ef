package report

import (
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"GasSentinel/internal/model"
)

// Field is one named cell of a history row.
type Field struct {
	Name  string
	Value string
}

// Columns returns the fixed column layout produced by Row.
func Columns() []string {
	cols := []string{
		"run_id",
		"run_timestamp_utc",
		"run_date_berlin",
		"data_source_mode",
		"source_url",
		"lookback_days",
		"minimum_threshold_pct",
		"latest_data_date",
		"current_fill_level_pct",
		"rate_min_pct_per_day",
		"rate_avg_pct_per_day",
		"rate_max_pct_per_day",
	}
	for _, kind := range model.ScenarioOrder {
		cols = append(cols,
			kind.Key()+"_rate_pct_per_day",
			kind.Key()+"_target_date",
			kind.Key()+"_days_to_min",
		)
	}
	return cols
}

// Row flattens a run into one history row. Unreachable scenarios keep their
// columns with empty values so every row has the same layout.
func Row(run *model.ProjectionRun) []Field {
	row := []Field{
		{"run_id", run.ID},
		{"run_timestamp_utc", run.RunAt.UTC().Format(time.RFC3339)},
		{"run_date_berlin", BerlinDate(run.RunAt)},
		{"data_source_mode", string(run.Source)},
		{"source_url", run.SourceURL},
		{"lookback_days", strconv.Itoa(run.LookbackDays)},
		{"minimum_threshold_pct", number(run.MinimumPct, 4)},
		{"latest_data_date", run.AsOf.Format(model.DateLayout)},
		{"current_fill_level_pct", number(run.CurrentPct, 4)},
		{"rate_min_pct_per_day", number(run.Rates.RateMin, 6)},
		{"rate_avg_pct_per_day", number(run.Rates.RateAvg, 6)},
		{"rate_max_pct_per_day", number(run.Rates.RateMax, 6)},
	}
	for _, p := range run.Projections {
		key := p.Scenario.Kind.Key()
		target, days := "", ""
		if d, ok := p.Outcome.Target(); ok {
			target = d.Format(model.DateLayout)
		}
		if n, ok := p.Outcome.DaysToMin(); ok {
			days = strconv.Itoa(n)
		}
		row = append(row,
			Field{key + "_rate_pct_per_day", number(p.Scenario.RatePctPerDay, 6)},
			Field{key + "_target_date", target},
			Field{key + "_days_to_min", days},
		)
	}
	return row
}

func number(v float64, places int32) string {
	return decimal.NewFromFloat(v).Round(places).String()
}
