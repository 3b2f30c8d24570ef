package collector

import (
	"context"
	"fmt"
	"os"
	"sync/atomic"

	"GasSentinel/internal/model"
)

// MockFetcher returns controllable fixed data for development and testing.
type MockFetcher struct {
	Body  []byte
	Err   error
	calls atomic.Int64
}

func (m *MockFetcher) Name() string { return "mock" }

func (m *MockFetcher) Fetch(_ context.Context) (Payload, error) {
	m.calls.Add(1)
	if m.Err != nil {
		return Payload{}, m.Err
	}
	return Payload{Body: m.Body, Source: model.SourceNetwork, URL: "mock://"}, nil
}

// Calls reports how often Fetch was invoked.
func (m *MockFetcher) Calls() int { return int(m.calls.Load()) }

// FileFetcher reads a local export, used for offline runs.
type FileFetcher struct {
	Path string
}

func (f *FileFetcher) Name() string { return "file" }

func (f *FileFetcher) Fetch(_ context.Context) (Payload, error) {
	body, err := os.ReadFile(f.Path)
	if err != nil {
		return Payload{}, fmt.Errorf("read input file: %w", err)
	}
	return Payload{Body: body, Source: model.SourceFile, URL: "file://" + f.Path}, nil
}
