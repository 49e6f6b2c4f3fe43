package storage

import (
	"context"

	"listing-progress/internal/domain"
)

// CatalogSource supplies the property catalog from outside the database.
type CatalogSource interface {
	LoadProperties(ctx context.Context) ([]domain.Property, error)
}

// CatalogLocation points at the JSON document holding the catalog.
type CatalogLocation struct {
	Bucket string
	Key    string
}
