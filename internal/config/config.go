package config

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"time"

	"github.com/robfig/cron/v3"
	"gopkg.in/yaml.v3"

	"GasSentinel/internal/collector"
	"GasSentinel/internal/document"
	"GasSentinel/internal/engine"
	"GasSentinel/internal/report"
	"GasSentinel/internal/scenario"
)

// DefaultGermanFooter attributes the data source in the German summary.
var DefaultGermanFooter = []string{"Datenquelle: @bnetza"}

// Config holds all application configuration.
type Config struct {
	Source struct {
		URL            string        `yaml:"url"`
		Timeout        time.Duration `yaml:"timeout"`
		InputFile      string        `yaml:"input_file"`
		DisableCaching bool          `yaml:"disable_caching"`
	} `yaml:"source"`
	Projection struct {
		MinimumPct        float64 `yaml:"minimum_pct"`
		LookbackDays      int     `yaml:"lookback_days"`
		OptimisticFactor  float64 `yaml:"optimistic_factor"`
		PessimisticFactor float64 `yaml:"pessimistic_factor"`
	} `yaml:"projection"`
	Storage struct {
		DataDir         string `yaml:"data_dir"`
		CacheFile       string `yaml:"cache_file"`
		ProjectionsFile string `yaml:"projections_file"`
		SQLiteFile      string `yaml:"sqlite_file"`
		StateFile       string `yaml:"state_file"`
	} `yaml:"storage"`
	Document struct {
		Path        string `yaml:"path"`
		BeginMarker string `yaml:"begin_marker"`
		EndMarker   string `yaml:"end_marker"`
	} `yaml:"document"`
	Telegram struct {
		BotToken string `yaml:"bot_token"`
		ChatID   string `yaml:"chat_id"`
	} `yaml:"telegram"`
	Schedule struct {
		Cron       string `yaml:"cron"`
		RunOnStart bool   `yaml:"run_on_start"`
	} `yaml:"schedule"`
	HTTP struct {
		Addr string `yaml:"addr"`
	} `yaml:"http"`
	Log struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"`
	} `yaml:"log"`
	Metrics struct {
		TextfilePath string `yaml:"textfile_path"`
	} `yaml:"metrics"`
	Summary struct {
		Language string   `yaml:"language"`
		Footer   []string `yaml:"footer"`
	} `yaml:"summary"`
	Proxy string `yaml:"proxy"`
}

// Load reads config from a YAML file, then applies environment variable overrides.
// A missing file is not an error; defaults fill in whatever is left unset.
// Numeric projection defaults are set before decoding, so an explicit 0
// (a valid minimum) is kept.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	cfg.Projection.MinimumPct = 20
	cfg.Projection.LookbackDays = 30
	cfg.Projection.OptimisticFactor = scenario.DefaultOptimisticFactor
	cfg.Projection.PessimisticFactor = scenario.DefaultPessimisticFactor

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil && !os.IsNotExist(err) {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if len(data) > 0 {
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parse config: %w", err)
			}
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	cfg.applyDefaults()
	return cfg, nil
}

func (c *Config) applyEnv() error {
	if v := os.Getenv("TELEGRAM_BOT_TOKEN"); v != "" {
		c.Telegram.BotToken = v
	}
	if v := os.Getenv("TELEGRAM_CHAT_ID"); v != "" {
		c.Telegram.ChatID = v
	}
	if v := os.Getenv("GASSENTINEL_SOURCE_URL"); v != "" {
		c.Source.URL = v
	}
	if v := os.Getenv("GASSENTINEL_DATA_DIR"); v != "" {
		c.Storage.DataDir = v
	}
	if v := os.Getenv("GASSENTINEL_DOCUMENT"); v != "" {
		c.Document.Path = v
	}
	if v := os.Getenv("GASSENTINEL_CRON"); v != "" {
		c.Schedule.Cron = v
	}
	if v := os.Getenv("GASSENTINEL_HTTP_ADDR"); v != "" {
		c.HTTP.Addr = v
	}
	if v := os.Getenv("GASSENTINEL_LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
	if v := os.Getenv("HTTPS_PROXY"); v != "" {
		c.Proxy = v
	}
	if v := os.Getenv("GASSENTINEL_MINIMUM_PCT"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("GASSENTINEL_MINIMUM_PCT: %w", err)
		}
		c.Projection.MinimumPct = f
	}
	if v := os.Getenv("GASSENTINEL_LOOKBACK_DAYS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("GASSENTINEL_LOOKBACK_DAYS: %w", err)
		}
		c.Projection.LookbackDays = n
	}
	if v := os.Getenv("RUN_ON_START"); v != "" {
		c.Schedule.RunOnStart = v == "true"
	}
	return nil
}

func (c *Config) applyDefaults() {
	if c.Source.URL == "" {
		c.Source.URL = collector.DefaultURL
	}
	if c.Source.Timeout == 0 {
		c.Source.Timeout = 30 * time.Second
	}
	if c.Storage.DataDir == "" {
		c.Storage.DataDir = "data"
	}
	if c.Storage.CacheFile == "" {
		c.Storage.CacheFile = "bnetza_cache.csv"
	}
	if c.Storage.ProjectionsFile == "" {
		c.Storage.ProjectionsFile = "projections.csv"
	}
	if c.Storage.SQLiteFile == "" {
		c.Storage.SQLiteFile = "projections.db"
	}
	if c.Storage.StateFile == "" {
		c.Storage.StateFile = "latest_run.json"
	}
	if c.Document.BeginMarker == "" {
		c.Document.BeginMarker = document.DefaultBeginMarker
	}
	if c.Document.EndMarker == "" {
		c.Document.EndMarker = document.DefaultEndMarker
	}
	if c.Schedule.Cron == "" {
		c.Schedule.Cron = "0 30 10 * * *"
	}
	if c.HTTP.Addr == "" {
		c.HTTP.Addr = ":8080"
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "console"
	}
	if c.Summary.Language == "" {
		c.Summary.Language = string(report.German)
	}
	if c.Summary.Footer == nil && c.Summary.Language == string(report.German) {
		c.Summary.Footer = slices.Clone(DefaultGermanFooter)
	}
}

// Validate checks that all fields hold usable values.
func (c *Config) Validate() error {
	if err := c.Params().Validate(); err != nil {
		return err
	}
	if _, err := cron.NewParser(cron.Second | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow).Parse(c.Schedule.Cron); err != nil {
		return fmt.Errorf("schedule.cron: %w", err)
	}
	switch report.Language(c.Summary.Language) {
	case report.English, report.German:
	default:
		return fmt.Errorf("summary.language must be %q or %q, got %q", report.English, report.German, c.Summary.Language)
	}
	if (c.Telegram.BotToken == "") != (c.Telegram.ChatID == "") {
		return fmt.Errorf("telegram.bot_token and telegram.chat_id must be set together")
	}
	if c.Document.BeginMarker == c.Document.EndMarker {
		return fmt.Errorf("document.begin_marker and document.end_marker must differ")
	}
	if c.Source.Timeout < 0 {
		return fmt.Errorf("source.timeout must not be negative")
	}
	return nil
}

// Params returns the engine parameters for this configuration.
func (c *Config) Params() engine.Params {
	return engine.Params{
		LookbackDays:      c.Projection.LookbackDays,
		MinimumPct:        c.Projection.MinimumPct,
		OptimisticFactor:  c.Projection.OptimisticFactor,
		PessimisticFactor: c.Projection.PessimisticFactor,
	}
}

// SummaryOptions returns the rendering options for the human summary.
func (c *Config) SummaryOptions() report.SummaryOptions {
	return report.SummaryOptions{Language: report.Language(c.Summary.Language), Footer: c.Summary.Footer}
}

// CachePath is the local copy of the last successful download.
func (c *Config) CachePath() string { return c.resolve(c.Storage.CacheFile) }

// ProjectionsPath is the CSV projection history.
func (c *Config) ProjectionsPath() string { return c.resolve(c.Storage.ProjectionsFile) }

// SQLitePath is the SQLite projection history. Empty disables it.
func (c *Config) SQLitePath() string {
	if c.Storage.SQLiteFile == "-" {
		return ""
	}
	return c.resolve(c.Storage.SQLiteFile)
}

// StatePath is the JSON snapshot of the latest successful run.
func (c *Config) StatePath() string { return c.resolve(c.Storage.StateFile) }

func (c *Config) resolve(name string) string {
	if filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(c.Storage.DataDir, name)
}
