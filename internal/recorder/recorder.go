package recorder

import (
	"context"
	"errors"

	"github.com/rs/zerolog"

	"GasSentinel/internal/model"
)

// Recorder persists one history entry per projection run.
type Recorder interface {
	Record(ctx context.Context, run *model.ProjectionRun) error
	Close() error
}

// MultiRecorder writes a run to Primary and then to each Secondary. Only
// Primary decides whether the run is recorded: a secondary failure is
// logged, so a retried run never appends the same row to Primary twice.
type MultiRecorder struct {
	Primary   Recorder
	Secondary []Recorder
	Logger    zerolog.Logger
}

func (m *MultiRecorder) Record(ctx context.Context, run *model.ProjectionRun) error {
	if err := m.Primary.Record(ctx, run); err != nil {
		return err
	}
	for _, r := range m.Secondary {
		if err := r.Record(ctx, run); err != nil {
			m.Logger.Error().Err(err).Str("run_id", run.ID).Msg("secondary history write failed")
		}
	}
	return nil
}

func (m *MultiRecorder) Close() error {
	errs := []error{m.Primary.Close()}
	for _, r := range m.Secondary {
		errs = append(errs, r.Close())
	}
	return errors.Join(errs...)
}
