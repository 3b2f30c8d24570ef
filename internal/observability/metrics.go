package observability

import (
	"github.com/prometheus/client_golang/prometheus"

	"GasSentinel/internal/alert"
	"GasSentinel/internal/model"
)

// Metrics holds the Prometheus collectors for projection runs.
type Metrics struct {
	// Runs is labelled by outcome (success, error).
	Runs *prometheus.CounterVec
	// FetchSource is labelled by source (network, cache, file).
	FetchSource  *prometheus.CounterVec
	FillLevel    prometheus.Gauge
	MinimumLevel prometheus.Gauge
	// DaysToMinimum is -1 for scenarios that never reach the minimum.
	DaysToMinimum *prometheus.GaugeVec
	ScenarioRate  *prometheus.GaugeVec
	LastSuccess   prometheus.Gauge
	RunDuration   prometheus.Histogram
	// AlertLevel is 0 (none) to 3 (critical), see alert.Level.
	AlertLevel prometheus.Gauge
}

// NewMetrics creates the metrics and registers them with reg. Tests pass a
// fresh prometheus.NewRegistry to avoid duplicate registration panics.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "gassentinel",
			Name:      "runs_total",
			Help:      "Projection runs by outcome.",
		}, []string{"outcome"}),
		FetchSource: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "gassentinel",
			Name:      "fetch_source_total",
			Help:      "Where the source series of a run was loaded from.",
		}, []string{"source"}),
		FillLevel: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "gassentinel",
			Name:      "fill_level_pct",
			Help:      "Latest observed storage fill level in percent.",
		}),
		MinimumLevel: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "gassentinel",
			Name:      "minimum_threshold_pct",
			Help:      "Configured critical minimum in percent.",
		}),
		DaysToMinimum: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "gassentinel",
			Name:      "days_to_minimum",
			Help:      "Projected days until the minimum is reached, -1 when unreachable.",
		}, []string{"scenario"}),
		ScenarioRate: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "gassentinel",
			Name:      "scenario_rate_pct_per_day",
			Help:      "Daily rate assumed by each scenario.",
		}, []string{"scenario"}),
		LastSuccess: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "gassentinel",
			Name:      "last_success_timestamp_seconds",
			Help:      "Unix time of the last successful run.",
		}),
		RunDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "gassentinel",
			Name:      "run_duration_seconds",
			Help:      "Duration of a complete fetch-project-record cycle.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}),
		AlertLevel: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "gassentinel",
			Name:      "alert_level",
			Help:      "Urgency of the average-withdrawal projection, 0 none to 3 critical.",
		}),
	}

	reg.MustRegister(
		m.Runs,
		m.FetchSource,
		m.FillLevel,
		m.MinimumLevel,
		m.DaysToMinimum,
		m.ScenarioRate,
		m.LastSuccess,
		m.RunDuration,
		m.AlertLevel,
	)
	return m
}

// ObserveRun updates the gauges from a finished run.
func (m *Metrics) ObserveRun(run *model.ProjectionRun) {
	m.FillLevel.Set(run.CurrentPct)
	m.MinimumLevel.Set(run.MinimumPct)
	m.LastSuccess.Set(float64(run.RunAt.Unix()))
	m.FetchSource.WithLabelValues(string(run.Source)).Inc()
	m.AlertLevel.Set(float64(alert.ForRun(run)))
	for _, p := range run.Projections {
		key := p.Scenario.Kind.Key()
		m.ScenarioRate.WithLabelValues(key).Set(p.Scenario.RatePctPerDay)
		days := -1.0
		if n, ok := p.Outcome.DaysToMin(); ok {
			days = float64(n)
		}
		m.DaysToMinimum.WithLabelValues(key).Set(days)
	}
}
