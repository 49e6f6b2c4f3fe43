package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"listing-progress/internal/domain"
	"listing-progress/internal/repository"
)

const createPropertiesTable = `
CREATE TABLE IF NOT EXISTS properties (
	id TEXT PRIMARY KEY,
	position INTEGER NOT NULL,
	address TEXT NOT NULL DEFAULT '',
	city TEXT NOT NULL DEFAULT '',
	state TEXT NOT NULL DEFAULT '',
	zip TEXT NOT NULL DEFAULT '',
	bedrooms INTEGER NOT NULL DEFAULT 0,
	bathrooms REAL NOT NULL DEFAULT 0,
	sqft INTEGER NOT NULL DEFAULT 0,
	estimated_value INTEGER NOT NULL DEFAULT 0
);
`

type PropertyRepository struct {
	db *sql.DB
}

func NewPropertyRepository(db *sql.DB) repository.PropertyRepository {
	return &PropertyRepository{db: db}
}

func (r *PropertyRepository) Init(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, createPropertiesTable); err != nil {
		return fmt.Errorf("create properties table: %w", err)
	}
	return nil
}

func (r *PropertyRepository) List(ctx context.Context) ([]domain.Property, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT id, address, city, state, zip, bedrooms, bathrooms, sqft, estimated_value
FROM properties
ORDER BY position ASC`)
	if err != nil {
		return nil, fmt.Errorf("query properties: %w", err)
	}
	defer rows.Close()

	var properties []domain.Property
	for rows.Next() {
		var p domain.Property
		if err := rows.Scan(
			&p.ID,
			&p.Address,
			&p.City,
			&p.State,
			&p.Zip,
			&p.Bedrooms,
			&p.Bathrooms,
			&p.Sqft,
			&p.EstimatedValue,
		); err != nil {
			return nil, fmt.Errorf("scan property: %w", err)
		}
		properties = append(properties, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate properties: %w", err)
	}
	return properties, nil
}

func (r *PropertyRepository) ReplaceAll(ctx context.Context, properties []domain.Property) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if _, err := tx.ExecContext(ctx, `DELETE FROM properties`); err != nil {
		return fmt.Errorf("clear properties: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
INSERT INTO properties (id, position, address, city, state, zip, bedrooms, bathrooms, sqft, estimated_value)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare property insert: %w", err)
	}
	defer stmt.Close()

	for i, p := range properties {
		if _, err := stmt.ExecContext(ctx,
			p.ID,
			i,
			p.Address,
			p.City,
			p.State,
			p.Zip,
			p.Bedrooms,
			p.Bathrooms,
			p.Sqft,
			p.EstimatedValue,
		); err != nil {
			return fmt.Errorf("insert property %s: %w", p.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit properties: %w", err)
	}
	return nil
}
