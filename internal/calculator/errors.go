package calculator

import (
	"errors"
	"fmt"
)

var (
	ErrInsufficientData = errors.New("insufficient data")
	ErrUnorderedSeries  = errors.New("series is not strictly ordered by date")
	ErrInvalidThreshold = errors.New("minimum threshold must be within [0, 100]")
	ErrInvalidRate      = errors.New("rate must be finite")
)

// InsufficientDataError reports a window too short to derive a rate from.
type InsufficientDataError struct {
	Got  int
	Need int
}

func (e *InsufficientDataError) Error() string {
	return fmt.Sprintf("insufficient data: got %d observations, need at least %d", e.Got, e.Need)
}

func (e *InsufficientDataError) Unwrap() error { return ErrInsufficientData }
