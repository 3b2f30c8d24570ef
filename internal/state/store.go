// Package state persists the latest successful projection run so a
// restarted daemon can serve it before its next scheduled run.
package state

import (
	"fmt"
	"os"
	"sync"

	"github.com/goccy/go-json"

	"GasSentinel/internal/fsutil"
	"GasSentinel/internal/model"
)

// Store holds the latest run in memory and mirrors it to a JSON file.
type Store struct {
	mu       sync.Mutex
	run      *model.ProjectionRun
	filePath string
}

// New returns an empty store that writes to filePath.
func New(filePath string) *Store {
	return &Store{filePath: filePath}
}

// Open loads the store from filePath. A missing file yields an empty store.
func Open(filePath string) (*Store, error) {
	run, err := load(filePath)
	if err != nil {
		return nil, err
	}
	return &Store{run: run, filePath: filePath}, nil
}

func load(filePath string) (*model.ProjectionRun, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read state: %w", err)
	}
	var run model.ProjectionRun
	if err := json.Unmarshal(data, &run); err != nil {
		return nil, fmt.Errorf("decode state %s: %w", filePath, err)
	}
	return &run, nil
}

// Latest returns the stored run.
func (s *Store) Latest() (*model.ProjectionRun, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.run, s.run != nil
}

// Save replaces the stored run and writes it to disk.
func (s *Store) Save(run *model.ProjectionRun) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := json.MarshalIndent(run, "", "  ")
	if err != nil {
		return fmt.Errorf("encode state: %w", err)
	}
	if err := fsutil.WriteFileAtomic(s.filePath, data, 0o644); err != nil {
		return fmt.Errorf("write state: %w", err)
	}
	s.run = run
	return nil
}
