package collector

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/sony/gobreaker"

	"GasSentinel/internal/model"
)

// DefaultURL is the BNetzA CSV export of the German storage fill level.
const DefaultURL = "https://www.bundesnetzagentur.de/_tools/SVG/js2/_functions/csv_export.html?view=renderCSV&id=870306"

// maxBodyBytes caps the export size; the full history is a few hundred KB.
const maxBodyBytes = 16 << 20

// BNetzAFetcher implements Fetcher over HTTP. Calls go through a circuit
// breaker so a dead upstream is skipped quickly and callers fall back to the
// cache.
type BNetzAFetcher struct {
	URL     string
	Client  *http.Client
	breaker *gobreaker.CircuitBreaker
}

// NewBNetzAFetcher creates a fetcher with optional proxy support.
func NewBNetzAFetcher(rawURL, proxyURL string, timeout time.Duration) *BNetzAFetcher {
	transport := &http.Transport{Proxy: http.ProxyFromEnvironment}
	if proxyURL != "" {
		if u, err := url.Parse(proxyURL); err == nil {
			transport.Proxy = http.ProxyURL(u)
		}
	}
	if timeout <= 0 {
		timeout = 20 * time.Second
	}
	return &BNetzAFetcher{
		URL: rawURL,
		Client: &http.Client{
			Timeout:   timeout,
			Transport: transport,
		},
		breaker: gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:    "bnetza",
			Timeout: 10 * time.Minute,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= 3
			},
		}),
	}
}

func (f *BNetzAFetcher) Name() string { return "bnetza" }

func (f *BNetzAFetcher) Fetch(ctx context.Context) (Payload, error) {
	body, err := f.breaker.Execute(func() (interface{}, error) {
		return f.get(ctx)
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return Payload{URL: f.URL}, fmt.Errorf("bnetza: upstream disabled after repeated failures: %w", err)
		}
		return Payload{URL: f.URL}, err
	}
	return Payload{Body: body.([]byte), Source: model.SourceNetwork, URL: f.URL}, nil
}

func (f *BNetzAFetcher) get(ctx context.Context) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.URL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", "GasSentinel/1.0")
	req.Header.Set("Accept", "text/csv, text/plain;q=0.9, */*;q=0.1")

	resp, err := f.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("bnetza fetch: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("bnetza read body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("bnetza: status %d, body: %.200s", resp.StatusCode, string(body))
	}
	if len(body) == 0 {
		return nil, errors.New("bnetza: empty body")
	}
	return body, nil
}
