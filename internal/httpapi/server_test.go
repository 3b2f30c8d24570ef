package httpapi

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"GasSentinel/internal/model"
	"GasSentinel/internal/recorder"
	"GasSentinel/internal/report"
)

type stubRuns struct{ run *model.ProjectionRun }

func (s stubRuns) Latest() (*model.ProjectionRun, bool) { return s.run, s.run != nil }

type stubHistory struct {
	runs []recorder.RunSummary
	err  error
	got  int
}

func (s *stubHistory) Recent(_ context.Context, limit int) ([]recorder.RunSummary, error) {
	s.got = limit
	return s.runs, s.err
}

func sampleRun() *model.ProjectionRun {
	asOf := time.Date(2026, 2, 15, 0, 0, 0, 0, time.UTC)
	return &model.ProjectionRun{
		ID:           "run-1",
		RunAt:        time.Date(2026, 2, 16, 9, 0, 0, 0, time.UTC),
		Source:       model.SourceNetwork,
		LookbackDays: 30,
		AsOf:         asOf,
		CurrentPct:   23.54,
		MinimumPct:   20,
		Projections: []model.Projection{
			{
				Scenario: model.Scenario{Kind: model.ScenarioAverageWithdrawal, Factor: 1, RatePctPerDay: -0.59},
				Outcome:  model.Reached(asOf.AddDate(0, 0, 6), 6),
			},
			{
				Scenario: model.Scenario{Kind: model.ScenarioOptimistic, Factor: 0.8, RatePctPerDay: 0.1},
				Outcome:  model.Unreachable(),
			},
		},
	}
}

func newTestServer(run *model.ProjectionRun, history HistorySource) *Server {
	reg := prometheus.NewRegistry()
	reg.MustRegister(prometheus.NewCounter(prometheus.CounterOpts{Name: "gassentinel_test_total", Help: "test"}))
	return NewServer(DefaultConfig(":0"), stubRuns{run: run}, history, reg,
		report.SummaryOptions{Language: report.English}, zerolog.Nop())
}

func do(t *testing.T, s *Server, path string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func TestHealthAndReadiness(t *testing.T) {
	empty := newTestServer(nil, nil)
	assert.Equal(t, http.StatusOK, do(t, empty, "/healthz").Code)
	assert.Equal(t, http.StatusServiceUnavailable, do(t, empty, "/readyz").Code)

	ready := newTestServer(sampleRun(), nil)
	rec := do(t, ready, "/readyz")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
}

func TestLatest(t *testing.T) {
	assert.Equal(t, http.StatusNotFound, do(t, newTestServer(nil, nil), "/api/v1/projection/latest").Code)

	rec := do(t, newTestServer(sampleRun(), nil), "/api/v1/projection/latest")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var body struct {
		ID          string `json:"id"`
		Source      string `json:"source"`
		Projections []struct {
			Scenario struct {
				Name string `json:"name"`
			} `json:"scenario"`
			Outcome struct {
				Reached    bool    `json:"reached"`
				TargetDate *string `json:"target_date"`
				DaysToMin  *int    `json:"days_to_min"`
			} `json:"outcome"`
		} `json:"projections"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "run-1", body.ID)
	assert.Equal(t, "network", body.Source)
	require.Len(t, body.Projections, 2)
	assert.Equal(t, "average_withdrawal", body.Projections[0].Scenario.Name)
	require.NotNil(t, body.Projections[0].Outcome.TargetDate)
	assert.Equal(t, "2026-02-21", *body.Projections[0].Outcome.TargetDate)
	assert.False(t, body.Projections[1].Outcome.Reached)
	assert.Nil(t, body.Projections[1].Outcome.DaysToMin)
}

func TestLatestSummary(t *testing.T) {
	rec := do(t, newTestServer(sampleRun(), nil), "/api/v1/projection/latest/summary")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.HasPrefix(rec.Body.String(), "Projection German gas storage of 2026-02-16"))
	assert.Contains(t, rec.Body.String(), "not reached")
}

func TestHistory(t *testing.T) {
	assert.Equal(t, http.StatusNotFound, do(t, newTestServer(nil, nil), "/api/v1/projection/history").Code)

	h := &stubHistory{runs: []recorder.RunSummary{{ID: "a", AsOf: "2026-02-15", CurrentPct: 23.54}}}
	s := newTestServer(nil, h)

	rec := do(t, s, "/api/v1/projection/history?limit=5")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 5, h.got)
	assert.Contains(t, rec.Body.String(), `"id":"a"`)

	assert.Equal(t, http.StatusBadRequest, do(t, s, "/api/v1/projection/history?limit=0").Code)

	h.err = errors.New("db locked")
	assert.Equal(t, http.StatusInternalServerError, do(t, s, "/api/v1/projection/history").Code)
	assert.Equal(t, 30, h.got)
}

func TestMetricsAndNotFound(t *testing.T) {
	s := newTestServer(nil, nil)
	rec := do(t, s, "/metrics")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "gassentinel_test_total")

	assert.Equal(t, http.StatusNotFound, do(t, s, "/nope").Code)
}
