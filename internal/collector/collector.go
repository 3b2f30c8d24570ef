package collector

import (
	"bytes"
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"GasSentinel/internal/model"
	"GasSentinel/internal/normalizer"
)

// Series is a normalised observation series plus where it came from.
type Series struct {
	Observations []model.Observation
	Source       model.SourceMode
	URL          string
	Stats        normalizer.Stats
}

// Latest returns the most recent observation.
func (s Series) Latest() model.Observation {
	return s.Observations[len(s.Observations)-1]
}

// Collector orchestrates fetching and normalisation.
type Collector struct {
	Fetcher Fetcher
	logger  zerolog.Logger
}

// NewCollector creates a new Collector.
func NewCollector(fetcher Fetcher, logger zerolog.Logger) *Collector {
	return &Collector{Fetcher: fetcher, logger: logger}
}

// Collect fetches the export and turns it into an ordered series.
func (c *Collector) Collect(ctx context.Context) (*Series, error) {
	p, err := c.Fetcher.Fetch(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", c.Fetcher.Name(), err)
	}

	obs, stats, err := normalizer.Parse(bytes.NewReader(p.Body))
	if err != nil {
		return nil, fmt.Errorf("parse %s export: %w", p.Source, err)
	}
	if stats.Skipped > 0 || stats.Duplicates > 0 {
		c.logger.Debug().
			Int("rows", stats.Rows).
			Int("skipped", stats.Skipped).
			Int("duplicates", stats.Duplicates).
			Msg("normalised export with dropped rows")
	}

	s := &Series{Observations: obs, Source: p.Source, URL: p.URL, Stats: stats}
	c.logger.Info().
		Str("source", string(p.Source)).
		Int("observations", len(obs)).
		Str("latest", s.Latest().Date.Format(model.DateLayout)).
		Msg("series collected")
	return s, nil
}
