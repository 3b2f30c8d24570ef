package recorder

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
	_ "modernc.org/sqlite"

	"GasSentinel/internal/model"
)

// SQLiteRecorder persists projection history to a SQLite database.
type SQLiteRecorder struct {
	db     *sql.DB
	logger zerolog.Logger
	mu     sync.Mutex
}

// NewSQLiteRecorder opens (or creates) the SQLite database and runs migrations.
func NewSQLiteRecorder(dbPath string, logger zerolog.Logger) (*SQLiteRecorder, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// pragmas below are per connection
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}

	r := &SQLiteRecorder{db: db, logger: logger}
	if err := r.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	logger.Info().Str("path", dbPath).Msg("sqlite recorder opened")
	return r, nil
}

func (r *SQLiteRecorder) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS projection_runs (
			id                TEXT PRIMARY KEY,
			run_at            INTEGER NOT NULL,
			source            TEXT,
			source_url        TEXT,
			lookback_days     INTEGER,
			as_of             TEXT NOT NULL,
			current_level_pct REAL,
			minimum_pct       REAL,
			rate_min          REAL,
			rate_avg          REAL,
			rate_max          REAL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_runs_run_at ON projection_runs(run_at)`,

		`CREATE TABLE IF NOT EXISTS scenario_projections (
			run_id        TEXT NOT NULL REFERENCES projection_runs(id) ON DELETE CASCADE,
			position      INTEGER NOT NULL,
			scenario      TEXT NOT NULL,
			factor        REAL,
			rate_pct_day  REAL,
			target_date   TEXT,
			days_to_min   INTEGER,
			PRIMARY KEY (run_id, position)
		)`,
	}

	for _, s := range stmts {
		if _, err := r.db.Exec(s); err != nil {
			return fmt.Errorf("exec %q: %w", s[:40], err)
		}
	}
	return nil
}

func (r *SQLiteRecorder) Record(ctx context.Context, run *model.ProjectionRun) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	_, err = tx.ExecContext(ctx, `INSERT INTO projection_runs
		(id, run_at, source, source_url, lookback_days, as_of,
		 current_level_pct, minimum_pct, rate_min, rate_avg, rate_max)
		VALUES (?,?,?,?,?,?,?,?,?,?,?)`,
		run.ID, run.RunAt.Unix(), string(run.Source), run.SourceURL, run.LookbackDays,
		run.AsOf.Format(model.DateLayout), run.CurrentPct, run.MinimumPct,
		run.Rates.RateMin, run.Rates.RateAvg, run.Rates.RateMax,
	)
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}

	for i, p := range run.Projections {
		var target sql.NullString
		var days sql.NullInt64
		if d, ok := p.Outcome.Target(); ok {
			target = sql.NullString{String: d.Format(model.DateLayout), Valid: true}
		}
		if n, ok := p.Outcome.DaysToMin(); ok {
			days = sql.NullInt64{Int64: int64(n), Valid: true}
		}
		_, err = tx.ExecContext(ctx, `INSERT INTO scenario_projections
			(run_id, position, scenario, factor, rate_pct_day, target_date, days_to_min)
			VALUES (?,?,?,?,?,?,?)`,
			run.ID, i, p.Scenario.Kind.Key(), p.Scenario.Factor, p.Scenario.RatePctPerDay, target, days,
		)
		if err != nil {
			return fmt.Errorf("insert projection %s: %w", p.Scenario.Kind, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// RunSummary is one row of the stored run history.
type RunSummary struct {
	ID         string    `json:"id"`
	RunAt      time.Time `json:"run_at"`
	AsOf       string    `json:"as_of"`
	CurrentPct float64   `json:"current_level_pct"`
}

// Recent returns the latest runs, newest first.
func (r *SQLiteRecorder) Recent(ctx context.Context, limit int) ([]RunSummary, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, run_at, as_of, current_level_pct FROM projection_runs ORDER BY run_at DESC, rowid DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var out []RunSummary
	for rows.Next() {
		var s RunSummary
		var ts int64
		if err := rows.Scan(&s.ID, &ts, &s.AsOf, &s.CurrentPct); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		s.RunAt = time.Unix(ts, 0).UTC()
		out = append(out, s)
	}
	return out, rows.Err()
}

func (r *SQLiteRecorder) Close() error {
	r.logger.Info().Msg("closing sqlite recorder")
	return r.db.Close()
}
