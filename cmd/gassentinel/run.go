package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/goccy/go-json"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"GasSentinel/internal/alert"
	"GasSentinel/internal/model"
	"GasSentinel/internal/report"
)

func newRunCmd(a *app) *cobra.Command {
	var (
		opts    buildOptions
		asJSON  bool
		noColor bool
	)
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Fetch the series, project once and print the summary",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if noColor {
				color.NoColor = true
			}
			rt, err := a.build(cmd.Context(), opts)
			if err != nil {
				return err
			}
			defer rt.Close()

			run, err := rt.sched.RunNow(cmd.Context())
			if err != nil {
				return err
			}

			if path := a.cfg.Metrics.TextfilePath; path != "" && !opts.dryRun {
				if err := prometheus.WriteToTextfile(path, rt.registry); err != nil {
					a.logger.Warn().Err(err).Str("path", path).Msg("write metrics textfile failed")
				}
			}

			out := cmd.OutOrStdout()
			if asJSON {
				body, err := json.MarshalIndent(run, "", "  ")
				if err != nil {
					return fmt.Errorf("encode run: %w", err)
				}
				_, err = fmt.Fprintln(out, string(body))
				return err
			}
			printSummary(out, run, report.RenderSummary(run, a.cfg.SummaryOptions()))
			return nil
		},
	}
	f := cmd.Flags()
	f.StringVar(&opts.inputFile, "input", "", "read the export from a local CSV file instead of downloading it")
	f.BoolVar(&opts.dryRun, "dry-run", false, "compute and print without writing history, document or notifications")
	f.BoolVar(&opts.notify, "notify", false, "send the summary to Telegram")
	f.BoolVar(&asJSON, "json", false, "print the run as JSON")
	f.BoolVar(&noColor, "no-color", false, "disable colored output")
	return cmd
}

// printSummary writes the summary, highlighting scenario lines by how soon
// the minimum is reached.
func printSummary(w io.Writer, run *model.ProjectionRun, summary string) {
	bold := color.New(color.Bold)
	lines := strings.Split(strings.TrimRight(summary, "\n"), "\n")
	scenario := 0
	for i, line := range lines {
		switch {
		case i == 0:
			bold.Fprintln(w, line)
		case strings.HasPrefix(line, "- ") && scenario < len(run.Projections):
			scenarioColor(run.Projections[scenario].Outcome).Fprintln(w, line)
			scenario++
		default:
			fmt.Fprintln(w, line)
		}
	}
}

func scenarioColor(o model.Outcome) *color.Color {
	switch alert.Classify(o) {
	case alert.LevelCritical:
		return color.New(color.FgRed, color.Bold)
	case alert.LevelWarning:
		return color.New(color.FgYellow)
	case alert.LevelWatch:
		return color.New(color.FgCyan)
	default:
		return color.New(color.FgGreen)
	}
}
