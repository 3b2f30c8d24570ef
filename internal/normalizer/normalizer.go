// Package normalizer turns the BNetzA storage CSV export into an ordered,
// de-duplicated observation series.
package normalizer

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"sort"
	"strconv"
	"strings"
	"time"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"GasSentinel/internal/model"
)

var (
	ErrEmptyInput     = errors.New("csv is empty")
	ErrColumnNotFound = errors.New("fill level column not found")
	ErrNoObservations = errors.New("no usable rows found")
)

var dateLayouts = []string{"02.01.2006", "2006-01-02", "02.01.2006 15:04", "2006-01-02T15:04:05Z07:00"}

// Stats counts what the parser did with the input rows.
type Stats struct {
	Rows       int
	Skipped    int
	Duplicates int
}

// NormalizeColumn folds a header to lower-case ASCII with '%' spelled as
// "pct" and whitespace runs joined by '_', e.g. "Füllstand (%)" becomes
// "fullstand_(pct)".
func NormalizeColumn(name string) string {
	t := transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)))
	folded, _, err := transform.String(t, name)
	if err != nil {
		folded = name
	}
	var b strings.Builder
	for _, r := range folded {
		if r <= unicode.MaxASCII {
			b.WriteRune(r)
		}
	}
	s := strings.ToLower(b.String())
	s = strings.ReplaceAll(s, "%", "pct")
	return strings.Join(strings.Fields(s), "_")
}

// FindFillColumn returns the index of the fill level column.
func FindFillColumn(header []string) (int, error) {
	for i, h := range header {
		key := NormalizeColumn(h)
		if strings.HasPrefix(key, "fullstand") || strings.Contains(key, "fill") {
			return i, nil
		}
	}
	return -1, fmt.Errorf("%w in header %q", ErrColumnNotFound, header)
}

// Parse reads a semicolon separated export with comma decimals. The first
// column is the day. Unusable rows are skipped; for duplicate days the last
// row wins.
func Parse(r io.Reader) ([]model.Observation, Stats, error) {
	var stats Stats

	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, stats, fmt.Errorf("read csv: %w", err)
	}
	raw = bytes.TrimPrefix(raw, []byte("\xef\xbb\xbf"))
	if len(bytes.TrimSpace(raw)) == 0 {
		return nil, stats, ErrEmptyInput
	}

	reader := csv.NewReader(bytes.NewReader(raw))
	reader.Comma = ';'
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, stats, fmt.Errorf("read header: %w", err)
	}
	fillCol, err := FindFillColumn(header)
	if err != nil {
		return nil, stats, err
	}

	byDay := make(map[time.Time]float64)
	for {
		rec, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, stats, fmt.Errorf("read row %d: %w", stats.Rows+1, err)
		}
		stats.Rows++

		if len(rec) <= fillCol {
			stats.Skipped++
			continue
		}
		day, ok := parseDay(rec[0])
		if !ok {
			stats.Skipped++
			continue
		}
		level, ok := parseLevel(rec[fillCol])
		if !ok {
			stats.Skipped++
			continue
		}
		if _, seen := byDay[day]; seen {
			stats.Duplicates++
		}
		byDay[day] = level
	}

	if len(byDay) == 0 {
		return nil, stats, ErrNoObservations
	}

	series := make([]model.Observation, 0, len(byDay))
	for day, level := range byDay {
		series = append(series, model.Observation{Date: day, FillLevelPct: level})
	}
	sort.Slice(series, func(i, j int) bool { return series[i].Date.Before(series[j].Date) })
	return series, stats, nil
}

func parseDay(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return model.Day(t), true
		}
	}
	return time.Time{}, false
}

func parseLevel(s string) (float64, bool) {
	s = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(s), "%"))
	if s == "" {
		return 0, false
	}
	s = strings.ReplaceAll(s, ",", ".")
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || v < 0 || v > 100 {
		return 0, false
	}
	return v, true
}
