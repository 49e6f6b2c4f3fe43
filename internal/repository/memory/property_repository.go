package memory

import (
	"context"
	"sync"

	"listing-progress/internal/domain"
)

// PropertyRepository serves the property catalog from memory.
type PropertyRepository struct {
	mu         sync.RWMutex
	properties []domain.Property
}

func NewPropertyRepository(seed []domain.Property) *PropertyRepository {
	return &PropertyRepository{properties: append([]domain.Property(nil), seed...)}
}

func (r *PropertyRepository) Init(ctx context.Context) error {
	return nil
}

func (r *PropertyRepository) List(ctx context.Context) ([]domain.Property, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]domain.Property(nil), r.properties...), nil
}

func (r *PropertyRepository) ReplaceAll(ctx context.Context, properties []domain.Property) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.properties = append([]domain.Property(nil), properties...)
	return nil
}
