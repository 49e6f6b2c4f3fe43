package http

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"listing-progress/internal/domain"
	"listing-progress/internal/service"
)

const maxProgressBodyBytes = 1 << 20

type ProgressResponse struct {
	ID           string                     `json:"id"`
	UserID       string                     `json:"user_id"`
	CurrentStep  string                     `json:"current_step"`
	ProgressData map[string]json.RawMessage `json:"progress_data"`
	UpdatedAt    string                     `json:"updated_at"`
}

type PropertyResponse struct {
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

func (h *Handler) getProgress(c *gin.Context) {
	identity, ok := identityFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	progress, err := h.progress.GetProgress(c.Request.Context(), identity.UserID)
	if err != nil {
		h.writeError(c, err, "Failed to fetch progress")
		return
	}

	var resp *ProgressResponse
	if progress != nil {
		r := progressToResponse(*progress)
		resp = &r
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "progress": resp})
}

func (h *Handler) updateProgress(c *gin.Context) {
	identity, ok := identityFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	body, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, maxProgressBodyBytes))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	update, err := service.ParseProgressUpdate(body)
	if err != nil {
		h.writeError(c, err, "Failed to save progress")
		return
	}

	progress, err := h.progress.UpdateProgress(c.Request.Context(), identity.UserID, update)
	if err != nil {
		h.writeError(c, err, "Failed to save progress")
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "progress": progressToResponse(*progress)})
}

func (h *Handler) listProperties(c *gin.Context) {
	properties, err := h.properties.ListProperties(c.Request.Context())
	if err != nil {
		h.writeError(c, err, "Failed to fetch properties")
		return
	}

	resp := make([]PropertyResponse, len(properties))
	for i := range properties {
		resp[i] = propertyToResponse(properties[i])
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "properties": resp})
}

// writeError maps service errors to status codes. Storage and unexpected failures are
// logged in full and answered with a generic message.
func (h *Handler) writeError(c *gin.Context, err error, storageMessage string) {
	var verr *service.ValidationError
	if errors.As(err, &verr) {
		c.JSON(http.StatusBadRequest, gin.H{"error": verr.Error()})
		return
	}

	entry := h.logger.WithFields(logrus.Fields{
		"method": c.Request.Method,
		"path":   c.Request.URL.Path,
	}).WithError(err)
	if identity, ok := identityFrom(c); ok {
		entry = entry.WithField("user_id", identity.UserID)
	}

	if errors.Is(err, service.ErrStorage) {
		entry.Error("storage failure")
		c.JSON(http.StatusInternalServerError, gin.H{"error": storageMessage})
		return
	}
	entry.Error("unexpected failure")
	c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
}

func progressToResponse(p domain.Progress) ProgressResponse {
	data := map[string]json.RawMessage(p.Data)
	if data == nil {
		data = map[string]json.RawMessage{}
	}
	return ProgressResponse{
		ID:           p.ID,
		UserID:       p.UserID,
		CurrentStep:  p.CurrentStep,
		ProgressData: data,
		UpdatedAt:    p.UpdatedAt.UTC().Format(time.RFC3339Nano),
	}
}

func propertyToResponse(p domain.Property) PropertyResponse {
	return PropertyResponse{
		ID:             p.ID,
		Address:        p.Address,
		City:           p.City,
		State:          p.State,
		Zip:            p.Zip,
		Bedrooms:       p.Bedrooms,
		Bathrooms:      p.Bathrooms,
		Sqft:           p.Sqft,
		EstimatedValue: p.EstimatedValue,
	}
}
