package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"listing-progress/internal/domain"
	"listing-progress/internal/repository"
)

// ProgressUpdate is a validated request to advance a user's wizard.
type ProgressUpdate struct {
	CurrentStep string
	Data        domain.ProgressData
}

// ProgressService reads and merges per-user wizard progress.
type ProgressService interface {
	// GetProgress returns nil without error when the user has no record yet.
	GetProgress(ctx context.Context, userID string) (*domain.Progress, error)
	// UpdateProgress shallow-merges update.Data into the stored record, creating it on
	// first write. Updates for the same user are serialized.
	UpdateProgress(ctx context.Context, userID string, update ProgressUpdate) (*domain.Progress, error)
}

type progressService struct {
	progress repository.ProgressRepository
	locks    *keyedLocker
	logger   *logrus.Entry
	now      func() time.Time
	newID    func() string
}

func NewProgressService(progress repository.ProgressRepository, logger *logrus.Logger) ProgressService {
	if logger == nil {
		logger = logrus.New()
	}
	return &progressService{
		progress: progress,
		locks:    newKeyedLocker(),
		logger:   logger.WithField("component", "progress"),
		now:      time.Now,
		newID:    uuid.NewString,
	}
}

func (s *progressService) GetProgress(ctx context.Context, userID string) (*domain.Progress, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, errors.New("user id is required")
	}

	progress, err := s.progress.Get(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, nil
		}
		return nil, storageError("load progress", err)
	}
	return progress, nil
}

func (s *progressService) UpdateProgress(ctx context.Context, userID string, update ProgressUpdate) (*domain.Progress, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, errors.New("user id is required")
	}
	if strings.TrimSpace(update.CurrentStep) == "" {
		return nil, missingField("currentStep")
	}
	if update.Data == nil {
		return nil, missingField("progressData")
	}

	unlock := s.locks.Lock(userID)
	defer unlock()

	var existing domain.ProgressData
	id := ""
	current, err := s.progress.Get(ctx, userID)
	switch {
	case err == nil:
		existing = current.Data
		id = current.ID
	case errors.Is(err, repository.ErrNotFound):
		id = s.newID()
	default:
		return nil, storageError("load progress", err)
	}

	record := &domain.Progress{
		ID:          id,
		UserID:      userID,
		CurrentStep: update.CurrentStep,
		Data:        domain.MergeProgressData(existing, update.Data),
		UpdatedAt:   s.now().UTC(),
	}
	if err := s.progress.Upsert(ctx, record); err != nil {
		return nil, storageError("save progress", err)
	}

	entry := s.logger.WithFields(logrus.Fields{
		"user_id": userID,
		"step":    record.CurrentStep,
		"created": current == nil,
	})
	if steps, err := record.Data.CompletedSteps(); err == nil {
		entry = entry.WithField("completed_steps", len(steps))
	}
	entry.Info("progress updated")

	return record, nil
}

// ParseProgressUpdate decodes a {"currentStep": ..., "progressData": ...} body. Any other
// field, including a caller-supplied user id, is ignored.
func ParseProgressUpdate(body []byte) (ProgressUpdate, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(body, &raw); err != nil || raw == nil {
		return ProgressUpdate{}, invalidType("request body", "a JSON object")
	}

	step, err := parseCurrentStep(raw["currentStep"])
	if err != nil {
		return ProgressUpdate{}, err
	}
	data, err := parseProgressData(raw["progressData"])
	if err != nil {
		return ProgressUpdate{}, err
	}
	return ProgressUpdate{CurrentStep: step, Data: data}, nil
}

func parseCurrentStep(raw json.RawMessage) (string, error) {
	if isAbsent(raw) {
		return "", missingField("currentStep")
	}
	var step string
	if err := json.Unmarshal(raw, &step); err != nil {
		return "", invalidType("currentStep", "a string")
	}
	if strings.TrimSpace(step) == "" {
		return "", missingField("currentStep")
	}
	return step, nil
}

func parseProgressData(raw json.RawMessage) (domain.ProgressData, error) {
	if isAbsent(raw) {
		return nil, missingField("progressData")
	}
	if trimmed := bytes.TrimSpace(raw); len(trimmed) == 0 || trimmed[0] != '{' {
		return nil, invalidType("progressData", "an object")
	}
	if !utf8.Valid(raw) {
		return nil, invalidType("progressData", "valid UTF-8 JSON")
	}
	var data domain.ProgressData
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, invalidType("progressData", "an object")
	}
	if data == nil {
		data = domain.ProgressData{}
	}
	return data, nil
}

func isAbsent(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null"))
}
