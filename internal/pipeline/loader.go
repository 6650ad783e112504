package pipeline

import (
	"context"
	"fmt"

	"github.com/couchcryptid/fire-detection-etl/internal/domain"
)

// MultiLoader fans a batch out to several loaders in order. The first failure
// aborts the load so the batch is retried as a whole; every loader must be
// idempotent on replay.
type MultiLoader struct {
	loaders []BatchLoader
}

// NewMultiLoader creates a MultiLoader over the given loaders, skipping nils.
func NewMultiLoader(loaders ...BatchLoader) *MultiLoader {
	m := &MultiLoader{}
	for _, l := range loaders {
		if l != nil {
			m.loaders = append(m.loaders, l)
		}
	}
	return m
}

func (m *MultiLoader) LoadBatch(ctx context.Context, detections []domain.Detection) error {
	for i, l := range m.loaders {
		if err := l.LoadBatch(ctx, detections); err != nil {
			return fmt.Errorf("loader %d: %w", i, err)
		}
	}
	return nil
}
