package main

import (
	"context"
	"time"

	"github.com/spf13/cobra"

	"GasSentinel/internal/httpapi"
)

func newServeCmd(a *app) *cobra.Command {
	var runOnStart bool
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the projection on a cron schedule and serve health, metrics and results",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			rt, err := a.build(ctx, buildOptions{notify: true})
			if err != nil {
				return err
			}
			defer rt.Close()

			if err := rt.sched.Register(a.cfg.Schedule.Cron); err != nil {
				return err
			}
			rt.sched.Start()
			defer rt.sched.Stop()

			var history httpapi.HistorySource
			if rt.sqlite != nil {
				history = rt.sqlite
			}
			srv := httpapi.NewServer(httpapi.DefaultConfig(a.cfg.HTTP.Addr), rt.sched, history,
				rt.registry, a.cfg.SummaryOptions(), a.logger)
			errCh := make(chan error, 1)
			go func() { errCh <- srv.Start() }()

			if rt.telegram.Enabled() {
				go rt.telegram.StartPolling(ctx, rt.sched.HandleCommand)
				a.logger.Info().Msg("telegram polling started")
			}

			if runOnStart || a.cfg.Schedule.RunOnStart {
				a.logger.Info().Msg("run on start enabled, executing projection now")
				go func() {
					if _, err := rt.sched.RunNow(ctx); err != nil {
						a.logger.Error().Err(err).Msg("initial projection run failed")
					}
				}()
			}

			a.logger.Info().Str("cron", a.cfg.Schedule.Cron).Msg("gassentinel is running")
			select {
			case <-ctx.Done():
				a.logger.Info().Msg("shutdown signal received, stopping")
			case err := <-errCh:
				if err != nil {
					return err
				}
			}

			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	}
	cmd.Flags().BoolVar(&runOnStart, "run-on-start", false, "compute a projection immediately after start")
	return cmd
}
