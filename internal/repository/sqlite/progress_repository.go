package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"listing-progress/internal/domain"
	"listing-progress/internal/repository"
)

const createProgressTable = `
CREATE TABLE IF NOT EXISTS listing_progress (
	user_id TEXT PRIMARY KEY,
	id TEXT NOT NULL,
	current_step TEXT NOT NULL,
	progress_data TEXT NOT NULL DEFAULT '{}',
	updated_at DATETIME NOT NULL
);
`

type ProgressRepository struct {
	db *sql.DB
}

func NewProgressRepository(db *sql.DB) repository.ProgressRepository {
	return &ProgressRepository{db: db}
}

func (r *ProgressRepository) Init(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, createProgressTable); err != nil {
		return fmt.Errorf("create listing_progress table: %w", err)
	}
	return nil
}

func (r *ProgressRepository) Get(ctx context.Context, userID string) (*domain.Progress, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT id, user_id, current_step, progress_data, updated_at
FROM listing_progress
WHERE user_id = ?`,
		userID,
	)

	var (
		progress domain.Progress
		rawData  string
	)
	if err := row.Scan(
		&progress.ID,
		&progress.UserID,
		&progress.CurrentStep,
		&rawData,
		&progress.UpdatedAt,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("scan progress: %w", err)
	}

	if err := json.Unmarshal([]byte(rawData), &progress.Data); err != nil {
		return nil, fmt.Errorf("decode progress data: %w", err)
	}
	if progress.Data == nil {
		progress.Data = domain.ProgressData{}
	}
	return &progress, nil
}

func (r *ProgressRepository) Upsert(ctx context.Context, progress *domain.Progress) error {
	if progress == nil || progress.UserID == "" {
		return fmt.Errorf("upsert progress: user id is required")
	}

	data := progress.Data
	if data == nil {
		data = domain.ProgressData{}
	}
	encoded, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("encode progress data: %w", err)
	}

	updatedAt := progress.UpdatedAt
	if updatedAt.IsZero() {
		updatedAt = time.Now().UTC()
	}

	// id is fixed by the first insert
	if _, err := r.db.ExecContext(ctx, `
INSERT INTO listing_progress (user_id, id, current_step, progress_data, updated_at)
VALUES (?, ?, ?, ?, ?)
ON CONFLICT(user_id) DO UPDATE SET
	current_step = excluded.current_step,
	progress_data = excluded.progress_data,
	updated_at = excluded.updated_at`,
		progress.UserID,
		progress.ID,
		progress.CurrentStep,
		string(encoded),
		updatedAt,
	); err != nil {
		return fmt.Errorf("upsert progress: %w", err)
	}
	return nil
}
