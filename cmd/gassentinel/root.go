package main

import (
	"fmt"
	"os"
	"slices"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"GasSentinel/internal/config"
	"GasSentinel/internal/observability"
)

// app carries what every subcommand needs after flag parsing.
type app struct {
	cfgPath string
	cfg     *config.Config
	logger  zerolog.Logger

	minimum         float64
	lookbackDays    int
	dataDir         string
	cacheFile       string
	projectionsFile string
	documentPath    string
	language        string
	logLevel        string
}

func newRootCmd() *cobra.Command {
	a := &app{}
	defaultCfg := "configs/config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		defaultCfg = v
	}

	root := &cobra.Command{
		Use:           "gassentinel",
		Short:         "Project when German gas storage reaches its critical minimum",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if cmd.Name() == "version" {
				return nil
			}
			return a.load(cmd)
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&a.cfgPath, "config", defaultCfg, "path to the YAML config file")
	pf.Float64Var(&a.minimum, "minimum", 0, "critical minimum fill level in percent")
	pf.IntVar(&a.lookbackDays, "lookback-days", 0, "number of latest observations used for the rates")
	pf.StringVar(&a.dataDir, "data-dir", "", "directory for cache and history files")
	pf.StringVar(&a.cacheFile, "cache-file", "", "cache file name inside the data dir")
	pf.StringVar(&a.projectionsFile, "projections-file", "", "CSV history file name inside the data dir")
	pf.StringVar(&a.documentPath, "document", "", "file whose marker section receives the summary")
	pf.StringVar(&a.language, "lang", "", "summary language (de or en)")
	pf.StringVar(&a.logLevel, "log-level", "", "log level (debug, info, warn, error)")

	root.AddCommand(newRunCmd(a), newServeCmd(a), newVersionCmd())
	return root
}

// load reads the config and applies the flags that were set explicitly.
func (a *app) load(cmd *cobra.Command) error {
	cfg, err := config.Load(a.cfgPath)
	if err != nil {
		return err
	}

	flags := cmd.Flags()
	if flags.Changed("minimum") {
		cfg.Projection.MinimumPct = a.minimum
	}
	if flags.Changed("lookback-days") {
		cfg.Projection.LookbackDays = a.lookbackDays
	}
	if flags.Changed("data-dir") {
		cfg.Storage.DataDir = a.dataDir
	}
	if flags.Changed("cache-file") {
		cfg.Storage.CacheFile = a.cacheFile
	}
	if flags.Changed("projections-file") {
		cfg.Storage.ProjectionsFile = a.projectionsFile
	}
	if flags.Changed("document") {
		cfg.Document.Path = a.documentPath
	}
	if flags.Changed("lang") {
		cfg.Summary.Language = a.language
		if a.language != "de" && slices.Equal(cfg.Summary.Footer, config.DefaultGermanFooter) {
			cfg.Summary.Footer = nil
		}
	}
	if flags.Changed("log-level") {
		cfg.Log.Level = a.logLevel
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("config validation: %w", err)
	}
	a.cfg = cfg
	a.logger = observability.NewLogger(cfg.Log.Level, cfg.Log.Format)
	return nil
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintln(cmd.OutOrStdout(), "gassentinel", version)
		},
	}
}
