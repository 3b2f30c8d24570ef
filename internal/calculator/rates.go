package calculator

import (
	"fmt"
	"math"

	"GasSentinel/internal/model"
)

// minWindow is the smallest window that yields at least one step.
const minWindow = 2

// Window returns the trailing n observations of series, or the whole series
// when it is shorter than n.
func Window(series []model.Observation, n int) []model.Observation {
	if n <= 0 || n >= len(series) {
		return series
	}
	return series[len(series)-n:]
}

// StepRates returns the daily rate of every consecutive pair in window,
// normalised by the calendar days actually elapsed between the two dates.
func StepRates(window []model.Observation) ([]float64, error) {
	if len(window) < minWindow {
		return nil, &InsufficientDataError{Got: len(window), Need: minWindow}
	}
	rates := make([]float64, 0, len(window)-1)
	for i := 1; i < len(window); i++ {
		prev, cur := window[i-1], window[i]
		days := model.DaysBetween(prev.Date, cur.Date)
		if days <= 0 {
			return nil, fmt.Errorf("%w: %s follows %s", ErrUnorderedSeries,
				cur.Date.Format(model.DateLayout), prev.Date.Format(model.DateLayout))
		}
		rates = append(rates, (cur.FillLevelPct-prev.FillLevelPct)/float64(days))
	}
	return rates, nil
}

// ComputeRates derives the slowest, average and fastest depletion rate of
// the window. A rising step counts as a positive rate.
func ComputeRates(window []model.Observation) (model.RateSet, error) {
	steps, err := StepRates(window)
	if err != nil {
		return model.RateSet{}, err
	}

	slowest := math.Inf(-1)
	fastest := math.Inf(1)
	sum := 0.0
	for _, r := range steps {
		if r > slowest {
			slowest = r
		}
		if r < fastest {
			fastest = r
		}
		sum += r
	}

	return model.RateSet{
		RateMin: slowest,
		RateAvg: sum / float64(len(steps)),
		RateMax: fastest,
	}, nil
}
