package collector

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/rs/zerolog"

	"GasSentinel/internal/fsutil"
	"GasSentinel/internal/model"
)

var ErrNoCache = errors.New("fetch failed and no cache exists")

// CachedFetcher stores every successful download on disk and serves the
// stored copy when the upstream fetch fails.
type CachedFetcher struct {
	inner  Fetcher
	path   string
	logger zerolog.Logger
}

// NewCachedFetcher wraps inner with a cache file at path.
func NewCachedFetcher(inner Fetcher, path string, logger zerolog.Logger) *CachedFetcher {
	return &CachedFetcher{inner: inner, path: path, logger: logger}
}

func (c *CachedFetcher) Name() string { return c.inner.Name() + "+cache" }

func (c *CachedFetcher) Fetch(ctx context.Context) (Payload, error) {
	p, fetchErr := c.inner.Fetch(ctx)
	if fetchErr == nil {
		if err := fsutil.WriteFileAtomic(c.path, p.Body, 0o644); err != nil {
			c.logger.Warn().Err(err).Str("path", c.path).Msg("write cache failed")
		}
		return p, nil
	}
	if ctx.Err() != nil {
		return Payload{}, ctx.Err()
	}

	body, err := os.ReadFile(c.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Payload{}, fmt.Errorf("%w at %s: %w", ErrNoCache, c.path, fetchErr)
		}
		return Payload{}, fmt.Errorf("read cache: %w (fetch error: %v)", err, fetchErr)
	}

	c.logger.Warn().Err(fetchErr).Str("path", c.path).Msg("network fetch failed, using cache")
	return Payload{Body: body, Source: model.SourceCache, URL: p.URL}, nil
}
