package repository

import (
	"context"
	"errors"

	"listing-progress/internal/domain"
)

// ErrNotFound is returned when the requested record does not exist.
var ErrNotFound = errors.New("record not found")

// ProgressRepository persists one progress record per user.
type ProgressRepository interface {
	Init(ctx context.Context) error
	// Get returns ErrNotFound when the user has no record.
	Get(ctx context.Context, userID string) (*domain.Progress, error)
	// Upsert replaces the whole record keyed by progress.UserID in one step.
	Upsert(ctx context.Context, progress *domain.Progress) error
}
