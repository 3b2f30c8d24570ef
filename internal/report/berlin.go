package report

import (
	"time"
	_ "time/tzdata"

	"GasSentinel/internal/model"
)

var berlin = loadBerlin()

func loadBerlin() *time.Location {
	loc, err := time.LoadLocation("Europe/Berlin")
	if err != nil {
		return time.UTC
	}
	return loc
}

// BerlinDate returns the calendar date of t in Europe/Berlin.
func BerlinDate(t time.Time) string {
	return t.In(berlin).Format(model.DateLayout)
}
