package service

import (
	"errors"
	"fmt"
)

// ErrStorage wraps every failure reported by a repository.
var ErrStorage = errors.New("storage failure")

// ValidationKind classifies a rejected request field.
type ValidationKind string

const (
	MissingField ValidationKind = "missing_field"
	InvalidType  ValidationKind = "invalid_type"
)

// ValidationError reports a request field that failed validation before any storage access.
type ValidationError struct {
	Field string
	Kind  ValidationKind
	// Expected names the required type for InvalidType errors.
	Expected string
}

func (e *ValidationError) Error() string {
	switch e.Kind {
	case MissingField:
		return fmt.Sprintf("%s is required", e.Field)
	case InvalidType:
		if e.Expected != "" {
			return fmt.Sprintf("%s must be %s", e.Field, e.Expected)
		}
		return fmt.Sprintf("%s has an invalid type", e.Field)
	default:
		return fmt.Sprintf("%s is invalid", e.Field)
	}
}

func missingField(field string) error {
	return &ValidationError{Field: field, Kind: MissingField}
}

func invalidType(field, expected string) error {
	return &ValidationError{Field: field, Kind: InvalidType, Expected: expected}
}

func storageError(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrStorage, op, err)
}
