package service

import (
	"context"
	"fmt"
	"strings"

	"listing-progress/internal/domain"
	"listing-progress/internal/repository"
)

// PropertyService serves the property catalog.
type PropertyService interface {
	ListProperties(ctx context.Context) ([]domain.Property, error)
	ReplaceCatalog(ctx context.Context, properties []domain.Property) error
	// SeedIfEmpty stores properties only when the catalog has none.
	SeedIfEmpty(ctx context.Context, properties []domain.Property) (bool, error)
}

type propertyService struct {
	properties repository.PropertyRepository
}

func NewPropertyService(properties repository.PropertyRepository) PropertyService {
	return &propertyService{properties: properties}
}

func (s *propertyService) ListProperties(ctx context.Context) ([]domain.Property, error) {
	properties, err := s.properties.List(ctx)
	if err != nil {
		return nil, storageError("list properties", err)
	}
	if properties == nil {
		properties = []domain.Property{}
	}
	return properties, nil
}

func (s *propertyService) ReplaceCatalog(ctx context.Context, properties []domain.Property) error {
	seen := make(map[string]struct{}, len(properties))
	for i, p := range properties {
		id := strings.TrimSpace(p.ID)
		if id == "" {
			return fmt.Errorf("property %d: id is required", i)
		}
		if _, dup := seen[id]; dup {
			return fmt.Errorf("property %s: duplicate id", id)
		}
		seen[id] = struct{}{}
	}

	if err := s.properties.ReplaceAll(ctx, properties); err != nil {
		return storageError("replace properties", err)
	}
	return nil
}

func (s *propertyService) SeedIfEmpty(ctx context.Context, properties []domain.Property) (bool, error) {
	existing, err := s.properties.List(ctx)
	if err != nil {
		return false, storageError("list properties", err)
	}
	if len(existing) > 0 {
		return false, nil
	}
	if err := s.ReplaceCatalog(ctx, properties); err != nil {
		return false, err
	}
	return true, nil
}
