package model

import "time"

// DateLayout is the ISO-8601 calendar date layout used in every output.
const DateLayout = "2006-01-02"

// Observation is one daily storage reading.
type Observation struct {
	Date         time.Time `json:"date"`
	FillLevelPct float64   `json:"fill_level_pct"`
}

// Day truncates t to its calendar date at UTC midnight.
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// DaysBetween returns the number of calendar days from a to b.
func DaysBetween(a, b time.Time) int {
	return int(Day(b).Sub(Day(a)).Hours() / 24)
}

// SourceMode tells where the raw series of a run came from.
type SourceMode string

const (
	SourceNetwork SourceMode = "network"
	SourceCache   SourceMode = "cache"
	SourceFile    SourceMode = "file"
)
