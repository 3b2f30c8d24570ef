package recorder

import (
	"context"
	"encoding/csv"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"GasSentinel/internal/engine"
	"GasSentinel/internal/model"
	"GasSentinel/internal/report"
)

func testRun(t *testing.T, id string, levels ...float64) *model.ProjectionRun {
	t.Helper()
	start := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	series := make([]model.Observation, len(levels))
	for i, l := range levels {
		series[i] = model.Observation{Date: start.AddDate(0, 0, i), FillLevelPct: l}
	}
	run, err := engine.Compute(series, engine.DefaultParams(), report.RunMeta{
		ID:     id,
		RunAt:  time.Date(2026, 2, 10, 8, 0, 0, 0, time.UTC),
		Source: model.SourceNetwork,
	})
	require.NoError(t, err)
	return run
}

func readCSV(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	records, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	return records
}

func TestCSVRecorder_AppendsRows(t *testing.T) {
	path := filepath.Join(t.TempDir(), "projections.csv")
	rec := NewCSVRecorder(path, zerolog.Nop())

	require.NoError(t, rec.Record(context.Background(), testRun(t, "a", 30, 29, 28)))
	require.NoError(t, rec.Record(context.Background(), testRun(t, "b", 30, 30, 30)))

	records := readCSV(t, path)
	require.Len(t, records, 3)
	assert.Equal(t, report.Columns(), records[0])
	assert.Equal(t, "a", records[1][0])
	assert.Equal(t, "b", records[2][0])
	for _, r := range records {
		assert.Len(t, r, len(report.Columns()))
	}
}

func TestCSVRecorder_MergesLegacyHeader(t *testing.T) {
	path := filepath.Join(t.TempDir(), "projections.csv")
	require.NoError(t, os.WriteFile(path, []byte("run_id,legacy_column\nold,x\n"), 0o644))

	rec := NewCSVRecorder(path, zerolog.Nop())
	require.NoError(t, rec.Record(context.Background(), testRun(t, "new", 30, 29)))

	records := readCSV(t, path)
	require.Len(t, records, 3)
	header := records[0]
	assert.Equal(t, "run_id", header[0])
	assert.Equal(t, "legacy_column", header[1])
	assert.Len(t, header, len(report.Columns())+1)

	assert.Equal(t, "old", records[1][0])
	assert.Equal(t, "x", records[1][1])
	assert.Equal(t, "", records[1][2])

	assert.Equal(t, "new", records[2][0])
	assert.Equal(t, "", records[2][1])
}

func TestSQLiteRecorder_RecordAndRecent(t *testing.T) {
	rec, err := NewSQLiteRecorder(filepath.Join(t.TempDir(), "history.db"), zerolog.Nop())
	require.NoError(t, err)
	defer rec.Close()

	ctx := context.Background()
	require.NoError(t, rec.Record(ctx, testRun(t, "depleting", 30, 29, 28)))
	require.NoError(t, rec.Record(ctx, testRun(t, "flat", 30, 30)))

	runs, err := rec.Recent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, "flat", runs[0].ID)
	assert.Equal(t, "2026-02-02", runs[0].AsOf)

	var nulls int
	err = rec.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM scenario_projections WHERE run_id = ? AND target_date IS NULL AND days_to_min IS NULL`,
		"flat").Scan(&nulls)
	require.NoError(t, err)
	assert.Equal(t, 5, nulls, "unreachable scenarios are stored as NULL")
}

func TestSQLiteRecorder_DuplicateRunIsRejectedAtomically(t *testing.T) {
	rec, err := NewSQLiteRecorder(filepath.Join(t.TempDir(), "history.db"), zerolog.Nop())
	require.NoError(t, err)
	defer rec.Close()

	ctx := context.Background()
	run := testRun(t, "same", 30, 29)
	require.NoError(t, rec.Record(ctx, run))
	require.Error(t, rec.Record(ctx, run))

	var n int
	require.NoError(t, rec.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM scenario_projections`).Scan(&n))
	assert.Equal(t, 5, n)
}

type failingRecorder struct {
	err   error
	calls int
}

func (f *failingRecorder) Record(context.Context, *model.ProjectionRun) error {
	f.calls++
	return f.err
}
func (f *failingRecorder) Close() error { return nil }

func TestMultiRecorder_SecondaryFailureKeepsSingleRow(t *testing.T) {
	path := filepath.Join(t.TempDir(), "projections.csv")
	secondary := &failingRecorder{err: errors.New("sqlite down")}
	m := &MultiRecorder{
		Primary:   NewCSVRecorder(path, zerolog.Nop()),
		Secondary: []Recorder{secondary},
		Logger:    zerolog.Nop(),
	}

	require.NoError(t, m.Record(context.Background(), testRun(t, "x", 30, 29)))
	assert.Equal(t, 1, secondary.calls)

	records := readCSV(t, path)
	require.Len(t, records, 2, "header plus exactly one data row")
	assert.Equal(t, "x", records[1][0])
	assert.NoError(t, m.Close())
}

func TestMultiRecorder_PrimaryFailureWritesNothing(t *testing.T) {
	path := filepath.Join(t.TempDir(), "projections.csv")
	boom := errors.New("disk full")
	m := &MultiRecorder{
		Primary:   &failingRecorder{err: boom},
		Secondary: []Recorder{NewCSVRecorder(path, zerolog.Nop())},
		Logger:    zerolog.Nop(),
	}

	err := m.Record(context.Background(), testRun(t, "x", 30, 29))
	require.ErrorIs(t, err, boom)
	assert.NoFileExists(t, path)
}
