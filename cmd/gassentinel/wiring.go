package main

import (
	"context"
	"fmt"
	"os"

	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"GasSentinel/internal/collector"
	"GasSentinel/internal/notifier"
	"GasSentinel/internal/observability"
	"GasSentinel/internal/recorder"
	"GasSentinel/internal/scheduler"
	"GasSentinel/internal/state"
)

// services bundles the collaborators shared by run and serve.
type services struct {
	sched    *scheduler.Scheduler
	registry *prometheus.Registry
	telegram *notifier.TelegramNotifier
	sqlite   *recorder.SQLiteRecorder
	closers  []func() error
}

type buildOptions struct {
	inputFile string
	dryRun    bool
	notify    bool
}

func (s *services) Close() {
	for i := len(s.closers) - 1; i >= 0; i-- {
		_ = s.closers[i]()
	}
}

func (a *app) build(ctx context.Context, opts buildOptions) (*services, error) {
	cfg := a.cfg
	rt := &services{registry: prometheus.NewRegistry()}
	rt.registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics := observability.NewMetrics(rt.registry)

	if err := os.MkdirAll(cfg.Storage.DataDir, 0o755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}

	input := opts.inputFile
	if input == "" {
		input = cfg.Source.InputFile
	}
	var fetcher collector.Fetcher
	switch {
	case input != "":
		fetcher = &collector.FileFetcher{Path: input}
	case cfg.Source.DisableCaching:
		fetcher = collector.NewBNetzAFetcher(cfg.Source.URL, cfg.Proxy, cfg.Source.Timeout)
	default:
		fetcher = collector.NewCachedFetcher(
			collector.NewBNetzAFetcher(cfg.Source.URL, cfg.Proxy, cfg.Source.Timeout),
			cfg.CachePath(), a.logger)
	}
	a.logger.Info().Str("fetcher", fetcher.Name()).Msg("data source configured")

	var rec recorder.Recorder = recorder.NewNoopRecorder()
	if !opts.dryRun {
		recs := &recorder.MultiRecorder{
			Primary: recorder.NewCSVRecorder(cfg.ProjectionsPath(), a.logger),
			Logger:  a.logger,
		}
		if path := cfg.SQLitePath(); path != "" {
			sr, err := recorder.NewSQLiteRecorder(path, a.logger)
			if err != nil {
				a.logger.Warn().Err(err).Msg("init sqlite recorder failed, continuing with CSV only")
			} else {
				rt.sqlite = sr
				recs.Secondary = append(recs.Secondary, sr)
			}
		}
		rec = recs
		rt.closers = append(rt.closers, rec.Close)
	}

	var notif notifier.Notifier
	rt.telegram = notifier.NewTelegramNotifier(cfg.Telegram.BotToken, cfg.Telegram.ChatID, cfg.Proxy, a.logger)
	if opts.notify && !opts.dryRun && rt.telegram.Enabled() {
		notif = rt.telegram
	}

	doc := scheduler.DocumentTarget{
		BeginMarker: cfg.Document.BeginMarker,
		EndMarker:   cfg.Document.EndMarker,
	}
	if !opts.dryRun {
		doc.Path = cfg.Document.Path
	}

	var store *state.Store
	if !opts.dryRun {
		st, err := state.Open(cfg.StatePath())
		if err != nil {
			a.logger.Warn().Err(err).Msg("load latest run failed, starting without it")
			st = state.New(cfg.StatePath())
		}
		store = st
	}

	rt.sched = scheduler.NewScheduler(ctx, scheduler.Options{
		Collector: collector.NewCollector(fetcher, a.logger),
		Recorder:  rec,
		Notifier:  notif,
		Metrics:   metrics,
		State:     store,
		Clock:     clockwork.NewRealClock(),
		Params:    cfg.Params(),
		Summary:   cfg.SummaryOptions(),
		Document:  doc,
		Logger:    a.logger,
	})
	return rt, nil
}
