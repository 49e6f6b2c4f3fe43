package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"listing-progress/internal/domain"
)

// S3Catalog reads the property catalog from a JSON array stored in Amazon S3 (or
// compatible APIs).
type S3Catalog struct {
	downloader *manager.Downloader
	location   CatalogLocation
}

func NewS3Catalog(client manager.DownloadAPIClient, location CatalogLocation) *S3Catalog {
	return &S3Catalog{
		downloader: manager.NewDownloader(client),
		location:   location,
	}
}

type catalogEntry struct {
	ID             string  `json:"id"`
	Address        string  `json:"address"`
	City           string  `json:"city"`
	State          string  `json:"state"`
	Zip            string  `json:"zip"`
	Bedrooms       int     `json:"bedrooms"`
	Bathrooms      float64 `json:"bathrooms"`
	Sqft           int     `json:"sqft"`
	EstimatedValue int64   `json:"estimated_value"`
}

func (s *S3Catalog) LoadProperties(ctx context.Context) ([]domain.Property, error) {
	if s.location.Bucket == "" {
		return nil, fmt.Errorf("catalog bucket is required")
	}
	if s.location.Key == "" {
		return nil, fmt.Errorf("catalog key is required")
	}

	buf := manager.NewWriteAtBuffer(nil)
	if _, err := s.downloader.Download(ctx, buf, &s3.GetObjectInput{
		Bucket: aws.String(s.location.Bucket),
		Key:    aws.String(s.location.Key),
	}); err != nil {
		return nil, fmt.Errorf("download catalog s3://%s/%s: %w", s.location.Bucket, s.location.Key, err)
	}

	return decodeCatalog(buf.Bytes())
}

func decodeCatalog(data []byte) ([]domain.Property, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()

	var entries []catalogEntry
	if err := dec.Decode(&entries); err != nil {
		return nil, fmt.Errorf("decode catalog: %w", err)
	}

	properties := make([]domain.Property, 0, len(entries))
	for i, e := range entries {
		if e.ID == "" {
			return nil, fmt.Errorf("catalog entry %d: id is required", i)
		}
		properties = append(properties, domain.Property{
			ID:             e.ID,
			Address:        e.Address,
			City:           e.City,
			State:          e.State,
			Zip:            e.Zip,
			Bedrooms:       e.Bedrooms,
			Bathrooms:      e.Bathrooms,
			Sqft:           e.Sqft,
			EstimatedValue: e.EstimatedValue,
		})
	}
	return properties, nil
}
