package repository

import (
	"context"

	"listing-progress/internal/domain"
)

// PropertyRepository exposes the read-only property catalog.
type PropertyRepository interface {
	Init(ctx context.Context) error
	List(ctx context.Context) ([]domain.Property, error)
	ReplaceAll(ctx context.Context, properties []domain.Property) error
}
