package report

import (
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"GasSentinel/internal/model"
)

var (
	testAsOf  = time.Date(2026, 2, 15, 0, 0, 0, 0, time.UTC)
	testRunAt = time.Date(2026, 2, 16, 9, 30, 0, 0, time.UTC)
)

func testScenarios() []model.Scenario {
	return []model.Scenario{
		{Kind: model.ScenarioOptimistic, Factor: 0.8, RatePctPerDay: -0.24},
		{Kind: model.ScenarioSmallestWithdrawal, Factor: 1, RatePctPerDay: -0.30},
		{Kind: model.ScenarioAverageWithdrawal, Factor: 1, RatePctPerDay: 0},
		{Kind: model.ScenarioLargestWithdrawal, Factor: 1, RatePctPerDay: -1.02},
		{Kind: model.ScenarioPessimistic, Factor: 1.2, RatePctPerDay: -1.224},
	}
}

func testRun(t *testing.T) *model.ProjectionRun {
	t.Helper()
	scenarios := testScenarios()
	days := []int{15, 12, 0, 4, 3}
	projections := make([]model.Projection, len(scenarios))
	for i, s := range scenarios {
		out := model.Reached(testAsOf.AddDate(0, 0, days[i]), days[i])
		if s.Kind == model.ScenarioAverageWithdrawal {
			out = model.Unreachable()
		}
		projections[i] = model.Projection{Scenario: s, Outcome: out}
	}
	run, err := Assemble(RunMeta{
		ID:           "run-1",
		RunAt:        testRunAt,
		Source:       model.SourceNetwork,
		SourceURL:    "https://example.invalid/csv",
		LookbackDays: 30,
	}, testAsOf, 23.54, model.RateSet{RateMin: -0.30, RateAvg: 0, RateMax: -1.02}, 20, scenarios, projections)
	require.NoError(t, err)
	return run
}

func TestAssemble_LengthMismatch(t *testing.T) {
	scenarios := testScenarios()
	_, err := Assemble(RunMeta{}, testAsOf, 30, model.RateSet{}, 20, scenarios, nil)
	require.ErrorIs(t, err, ErrAssembledStateMismatch)
}

func TestAssemble_OrderMismatch(t *testing.T) {
	scenarios := testScenarios()
	projections := make([]model.Projection, len(scenarios))
	for i := range scenarios {
		projections[len(scenarios)-1-i] = model.Projection{Scenario: scenarios[i], Outcome: model.Unreachable()}
	}
	_, err := Assemble(RunMeta{}, testAsOf, 30, model.RateSet{}, 20, scenarios, projections)
	require.ErrorIs(t, err, ErrAssembledStateMismatch)
}

func TestAssemble_CopiesProjections(t *testing.T) {
	scenarios := testScenarios()
	projections := make([]model.Projection, len(scenarios))
	for i, s := range scenarios {
		projections[i] = model.Projection{Scenario: s, Outcome: model.Unreachable()}
	}
	run, err := Assemble(RunMeta{}, testAsOf, 30, model.RateSet{}, 20, scenarios, projections)
	require.NoError(t, err)

	projections[0].Outcome = model.Reached(testAsOf, 0)
	assert.True(t, run.Projections[0].Outcome.IsUnreachable())
}

func TestRow_StableLayout(t *testing.T) {
	row := Row(testRun(t))

	names := make([]string, len(row))
	for i, f := range row {
		names[i] = f.Name
	}
	if diff := cmp.Diff(Columns(), names); diff != "" {
		t.Errorf("row layout mismatch (-want +got):\n%s", diff)
	}
}

func TestColumns_ScenarioKeysDoNotDependOnFactors(t *testing.T) {
	cols := Columns()
	assert.Contains(t, cols, "source_url")
	for _, key := range []string{"optimistic", "smallest_withdrawal", "average_withdrawal", "largest_withdrawal", "pessimistic"} {
		assert.Contains(t, cols, key+"_rate_pct_per_day")
		assert.Contains(t, cols, key+"_target_date")
		assert.Contains(t, cols, key+"_days_to_min")
	}
	for _, c := range cols {
		assert.NotContains(t, c, "20pct", "column names must not encode a factor")
	}
}

func TestRow_Values(t *testing.T) {
	values := map[string]string{}
	for _, f := range Row(testRun(t)) {
		values[f.Name] = f.Value
	}

	assert.Equal(t, "2026-02-16T09:30:00Z", values["run_timestamp_utc"])
	assert.Equal(t, "2026-02-16", values["run_date_berlin"])
	assert.Equal(t, "network", values["data_source_mode"])
	assert.Equal(t, "2026-02-15", values["latest_data_date"])
	assert.Equal(t, "23.54", values["current_fill_level_pct"])
	assert.Equal(t, "-0.24", values["optimistic_rate_pct_per_day"])
	assert.Equal(t, "2026-03-02", values["optimistic_target_date"])
	assert.Equal(t, "15", values["optimistic_days_to_min"])
	assert.Equal(t, "-1.224", values["pessimistic_rate_pct_per_day"])
	assert.Equal(t, "", values["average_withdrawal_target_date"])
	assert.Equal(t, "", values["average_withdrawal_days_to_min"])
}

func TestRenderSummary_English(t *testing.T) {
	out := RenderSummary(testRun(t), SummaryOptions{Language: English})

	want := strings.Join([]string{
		"Projection German gas storage of 2026-02-16",
		"Fill level 23.54% on 2026-02-15 (minimum 20.00%)",
		"Source data loaded from: network",
		"",
		"Scenarios - minimum reached on:",
		"- Optimistic (20% less withdrawal): 2026-03-02 | Rate -0.240%/day | days to minimum 15",
		"- Smallest withdrawal: 2026-02-27 | Rate -0.300%/day | days to minimum 12",
		"- Average withdrawal: not reached | Rate 0.000%/day | days to minimum -",
		"- Largest withdrawal: 2026-02-19 | Rate -1.020%/day | days to minimum 4",
		"- Pessimistic (20% more withdrawal): 2026-02-18 | Rate -1.224%/day | days to minimum 3",
		"",
	}, "\n")
	assert.Equal(t, want, out)
}

func TestRenderSummary_GermanWithFooter(t *testing.T) {
	run := testRun(t)
	out := RenderSummary(run, SummaryOptions{Language: German, Footer: []string{"Datenquelle: @bnetza"}})

	assert.Contains(t, out, "Projektion #Gasspeicher DE vom 2026-02-16\n")
	assert.Contains(t, out, "- Optimistisch (20% weniger Entnahme): 2026-03-02 | Rate -0.240%/Tag | Tage bis Minimum 15\n")
	assert.Contains(t, out, "- Durchschnittliche Entnahme: nicht erreicht")
	assert.True(t, strings.HasSuffix(out, "\nDatenquelle: @bnetza\n"))

	assert.Equal(t, out, RenderSummary(run, SummaryOptions{Language: German, Footer: []string{"Datenquelle: @bnetza"}}))
}

func TestLabel_UnknownLanguageFallsBackToEnglish(t *testing.T) {
	s := model.Scenario{Kind: model.ScenarioLargestWithdrawal, Factor: 1}
	assert.Equal(t, "Largest withdrawal", Label(s, Language("fr")))
}
