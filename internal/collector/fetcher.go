package collector

import (
	"context"

	"GasSentinel/internal/model"
)

// Payload is the raw export as returned by a Fetcher.
type Payload struct {
	Body   []byte
	Source model.SourceMode
	URL    string
}

// Fetcher defines the interface for loading the raw storage export.
type Fetcher interface {
	Fetch(ctx context.Context) (Payload, error)
	Name() string
}
