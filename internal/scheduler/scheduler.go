package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"GasSentinel/internal/alert"
	"GasSentinel/internal/collector"
	"GasSentinel/internal/document"
	"GasSentinel/internal/engine"
	"GasSentinel/internal/model"
	"GasSentinel/internal/notifier"
	"GasSentinel/internal/observability"
	"GasSentinel/internal/recorder"
	"GasSentinel/internal/report"
	"GasSentinel/internal/state"
)

// DocumentTarget names a file whose marker section receives the summary.
type DocumentTarget struct {
	Path        string
	BeginMarker string
	EndMarker   string
}

// Options wires the collaborators of a Scheduler. Notifier, Metrics, State
// and Document.Path are optional.
type Options struct {
	Collector *collector.Collector
	Recorder  recorder.Recorder
	Notifier  notifier.Notifier
	Metrics   *observability.Metrics
	State     *state.Store
	Clock     clockwork.Clock
	Params    engine.Params
	Summary   report.SummaryOptions
	Document  DocumentTarget
	Logger    zerolog.Logger
}

// Scheduler runs the projection task on a cron schedule and on demand.
type Scheduler struct {
	Cron      *cron.Cron
	Collector *collector.Collector
	Recorder  recorder.Recorder
	Notifier  notifier.Notifier
	Metrics   *observability.Metrics
	State     *state.Store
	Ctx       context.Context

	clock    clockwork.Clock
	params   engine.Params
	summary  report.SummaryOptions
	document DocumentTarget
	logger   zerolog.Logger

	runMu    sync.Mutex
	latestMu sync.RWMutex
	latest   *model.ProjectionRun
}

// NewScheduler creates a new Scheduler. ctx bounds scheduled runs.
func NewScheduler(ctx context.Context, opts Options) *Scheduler {
	clock := opts.Clock
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	rec := opts.Recorder
	if rec == nil {
		rec = recorder.NewNoopRecorder()
	}
	cronLog := observability.CronLogger{Logger: opts.Logger}
	s := &Scheduler{
		Cron: cron.New(
			cron.WithSeconds(),
			cron.WithLogger(cronLog),
			cron.WithChain(cron.Recover(cronLog), cron.SkipIfStillRunning(cronLog)),
		),
		Collector: opts.Collector,
		Recorder:  rec,
		Notifier:  opts.Notifier,
		Metrics:   opts.Metrics,
		State:     opts.State,
		Ctx:       ctx,
		clock:     clock,
		params:    opts.Params,
		summary:   opts.Summary,
		document:  opts.Document,
		logger:    opts.Logger.With().Str("component", "scheduler").Logger(),
	}
	if s.State != nil {
		if run, ok := s.State.Latest(); ok {
			s.latest = run
			s.logger.Info().Str("run_id", run.ID).Msg("restored latest projection")
		}
	}
	return s
}

// Register adds the projection task under the given cron spec.
func (s *Scheduler) Register(spec string) error {
	if _, err := s.Cron.AddFunc(spec, s.scheduledRun); err != nil {
		return fmt.Errorf("register projection task: %w", err)
	}
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.Cron.Start()
	s.logger.Info().Int("entries", len(s.Cron.Entries())).Msg("scheduler started")
}

// Stop stops the cron scheduler and waits for a running task to finish.
func (s *Scheduler) Stop() {
	<-s.Cron.Stop().Done()
	s.logger.Info().Msg("scheduler stopped")
}

// Latest returns the most recent successful run.
func (s *Scheduler) Latest() (*model.ProjectionRun, bool) {
	s.latestMu.RLock()
	defer s.latestMu.RUnlock()
	return s.latest, s.latest != nil
}

// Ready reports whether at least one run has succeeded.
func (s *Scheduler) Ready() bool {
	_, ok := s.Latest()
	return ok
}

func (s *Scheduler) scheduledRun() {
	if _, err := s.RunNow(s.Ctx); err != nil {
		s.logger.Error().Err(err).Msg("scheduled projection run failed")
	}
}

// RunNow performs one fetch, project, record cycle. Only a failure to
// collect, compute or record fails the run; the document and the
// notification are best effort. Concurrent calls are serialised.
func (s *Scheduler) RunNow(ctx context.Context) (*model.ProjectionRun, error) {
	s.runMu.Lock()
	defer s.runMu.Unlock()

	start := s.clock.Now()
	runID := uuid.NewString()
	log := s.logger.With().Str("run_id", runID).Logger()
	log.Info().Msg("projection run started")

	run, err := s.project(ctx, runID, start)
	if s.Metrics != nil {
		s.Metrics.RunDuration.Observe(s.clock.Since(start).Seconds())
	}
	if err != nil {
		s.observeOutcome("error")
		return nil, err
	}

	summary := report.RenderSummary(run, s.summary)
	s.patchDocument(log, summary)
	s.notify(ctx, log, summary)

	if s.Metrics != nil {
		s.Metrics.ObserveRun(run)
	}
	s.observeOutcome("success")

	s.latestMu.Lock()
	s.latest = run
	s.latestMu.Unlock()
	if s.State != nil {
		if err := s.State.Save(run); err != nil {
			log.Error().Err(err).Msg("persist latest projection failed")
		}
	}

	log.Info().
		Str("source", string(run.Source)).
		Str("as_of", run.AsOf.Format(model.DateLayout)).
		Float64("current_pct", run.CurrentPct).
		Stringer("alert", alert.ForRun(run)).
		Dur("took", s.clock.Since(start)).
		Msg("projection run finished")
	return run, nil
}

func (s *Scheduler) project(ctx context.Context, runID string, start time.Time) (*model.ProjectionRun, error) {
	series, err := s.Collector.Collect(ctx)
	if err != nil {
		return nil, fmt.Errorf("collect: %w", err)
	}
	run, err := engine.Compute(series.Observations, s.params, report.RunMeta{
		ID:           runID,
		RunAt:        start.UTC(),
		Source:       series.Source,
		SourceURL:    series.URL,
		LookbackDays: s.params.LookbackDays,
	})
	if err != nil {
		return nil, fmt.Errorf("compute projection: %w", err)
	}
	if err := s.Recorder.Record(ctx, run); err != nil {
		return nil, fmt.Errorf("record projection: %w", err)
	}
	return run, nil
}

func (s *Scheduler) patchDocument(log zerolog.Logger, summary string) {
	if s.document.Path == "" {
		return
	}
	changed, err := document.PatchFile(s.document.Path, s.document.BeginMarker, s.document.EndMarker, summary)
	if err != nil {
		log.Error().Err(err).Str("path", s.document.Path).Msg("update document failed")
		return
	}
	log.Debug().Bool("changed", changed).Str("path", s.document.Path).Msg("document section updated")
}

func (s *Scheduler) notify(ctx context.Context, log zerolog.Logger, summary string) {
	if s.Notifier == nil {
		return
	}
	err := s.Notifier.SendWithRetry(ctx, summary, 3)
	switch {
	case err == nil:
	case errors.Is(err, notifier.ErrDisabled):
		log.Debug().Msg("notifier disabled, summary not sent")
	default:
		log.Error().Err(err).Msg("send notification failed")
	}
}

func (s *Scheduler) observeOutcome(outcome string) {
	if s.Metrics != nil {
		s.Metrics.Runs.WithLabelValues(outcome).Inc()
	}
}

// HandleCommand processes a chat command and returns a reply.
func (s *Scheduler) HandleCommand(ctx context.Context, command string) string {
	switch command {
	case "/latest", "/status":
		run, ok := s.Latest()
		if !ok {
			return "No projection has been computed yet."
		}
		return report.RenderSummary(run, s.summary)
	case "/run":
		// a successful run already delivers its summary
		if _, err := s.RunNow(ctx); err != nil {
			return fmt.Sprintf("Projection failed: %v", err)
		}
		return ""
	default:
		return "Commands:\n/latest - last projection\n/run - compute a fresh projection\n/help - this text"
	}
}
