package recorder

import (
	"context"

	"GasSentinel/internal/model"
)

// NoopRecorder is a no-op implementation used for dry runs.
type NoopRecorder struct{}

func NewNoopRecorder() *NoopRecorder { return &NoopRecorder{} }

func (n *NoopRecorder) Record(_ context.Context, _ *model.ProjectionRun) error { return nil }
func (n *NoopRecorder) Close() error                                          { return nil }
