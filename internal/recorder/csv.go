package recorder

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"sync"

	"github.com/rs/zerolog"

	"GasSentinel/internal/fsutil"
	"GasSentinel/internal/model"
	"GasSentinel/internal/report"
)

// CSVRecorder appends runs to a CSV history file. The file is rewritten as
// a whole through a temp file, so a crash never leaves a half-written row.
type CSVRecorder struct {
	path   string
	logger zerolog.Logger
	mu     sync.Mutex
}

// NewCSVRecorder creates a recorder for the history file at path.
func NewCSVRecorder(path string, logger zerolog.Logger) *CSVRecorder {
	return &CSVRecorder{path: path, logger: logger}
}

func (r *CSVRecorder) Record(_ context.Context, run *model.ProjectionRun) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	header, rows, err := r.load()
	if err != nil {
		return err
	}

	fields := report.Row(run)
	header, rows = mergeHeader(header, rows, fields)

	index := make(map[string]int, len(header))
	for i, h := range header {
		index[h] = i
	}
	row := make([]string, len(header))
	for _, f := range fields {
		row[index[f.Name]] = f.Value
	}
	rows = append(rows, row)

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	if err := w.WriteAll(rows); err != nil {
		return fmt.Errorf("write rows: %w", err)
	}
	if err := fsutil.WriteFileAtomic(r.path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("write history: %w", err)
	}

	r.logger.Info().Str("path", r.path).Int("rows", len(rows)).Msg("history row appended")
	return nil
}

func (r *CSVRecorder) Close() error { return nil }

// load reads the existing history. A missing or empty file yields no header.
func (r *CSVRecorder) load() ([]string, [][]string, error) {
	data, err := os.ReadFile(r.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil, nil
		}
		return nil, nil, fmt.Errorf("read history: %w", err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, nil, nil
	}

	reader := csv.NewReader(bytes.NewReader(data))
	reader.FieldsPerRecord = -1
	records, err := reader.ReadAll()
	if err != nil {
		return nil, nil, fmt.Errorf("parse history: %w", err)
	}
	return records[0], records[1:], nil
}

// mergeHeader appends columns of fields that the existing header lacks and
// pads every existing row to the new width. Existing column order is kept.
func mergeHeader(header []string, rows [][]string, fields []report.Field) ([]string, [][]string) {
	known := make(map[string]bool, len(header))
	for _, h := range header {
		known[h] = true
	}
	merged := append([]string(nil), header...)
	for _, f := range fields {
		if !known[f.Name] {
			merged = append(merged, f.Name)
			known[f.Name] = true
		}
	}
	for i, row := range rows {
		if len(row) < len(merged) {
			padded := make([]string, len(merged))
			copy(padded, row)
			rows[i] = padded
		}
	}
	return merged, rows
}
