package memory

import (
	"context"
	"fmt"
	"sync"

	"listing-progress/internal/domain"
	"listing-progress/internal/repository"
)

// ProgressRepository keeps progress records in process memory.
type ProgressRepository struct {
	mu      sync.RWMutex
	records map[string]*domain.Progress
}

func NewProgressRepository() *ProgressRepository {
	return &ProgressRepository{records: make(map[string]*domain.Progress)}
}

func (r *ProgressRepository) Init(ctx context.Context) error {
	return nil
}

func (r *ProgressRepository) Get(ctx context.Context, userID string) (*domain.Progress, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.records[userID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return p.Clone(), nil
}

func (r *ProgressRepository) Upsert(ctx context.Context, progress *domain.Progress) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if progress == nil || progress.UserID == "" {
		return fmt.Errorf("upsert progress: user id is required")
	}

	stored := progress.Clone()
	r.mu.Lock()
	defer r.mu.Unlock()
	if prev, ok := r.records[stored.UserID]; ok {
		stored.ID = prev.ID
	}
	r.records[stored.UserID] = stored
	return nil
}
