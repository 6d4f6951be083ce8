// Package progress holds the live percentage of running uploads.
package progress

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

type Tracker interface {
	Set(ctx context.Context, uploadID uuid.UUID, percent int) error
	// Get reports false when nothing was recorded for the upload.
	Get(ctx context.Context, uploadID uuid.UUID) (int, bool, error)
}

// MemoryTracker keeps progress in process; enough for a single instance.
type MemoryTracker struct {
	values sync.Map // uploadID -> int
}

func NewMemoryTracker() *MemoryTracker {
	return &MemoryTracker{}
}

func (t *MemoryTracker) Set(_ context.Context, uploadID uuid.UUID, percent int) error {
	t.values.Store(uploadID, percent)
	return nil
}

func (t *MemoryTracker) Get(_ context.Context, uploadID uuid.UUID) (int, bool, error) {
	v, ok := t.values.Load(uploadID)
	if !ok {
		return 0, false, nil
	}
	return v.(int), true, nil
}
