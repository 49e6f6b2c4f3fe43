package http

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"listing-progress/internal/auth"
	"listing-progress/internal/domain"
	"listing-progress/internal/repository"
	"listing-progress/internal/repository/memory"
	"listing-progress/internal/service"
)

// tokenProvider maps fixed tokens to identities.
type tokenProvider map[string]auth.Identity

func (p tokenProvider) Verify(ctx context.Context, token string) (auth.Identity, error) {
	identity, ok := p[token]
	if !ok {
		return auth.Identity{}, auth.ErrInvalidCredential
	}
	return identity, nil
}

// countingRepository records storage access and can be told to fail.
type countingRepository struct {
	repository.ProgressRepository
	calls int
	err   error
}

func (r *countingRepository) Get(ctx context.Context, userID string) (*domain.Progress, error) {
	r.calls++
	if r.err != nil {
		return nil, r.err
	}
	return r.ProgressRepository.Get(ctx, userID)
}

func (r *countingRepository) Upsert(ctx context.Context, progress *domain.Progress) error {
	r.calls++
	if r.err != nil {
		return r.err
	}
	return r.ProgressRepository.Upsert(ctx, progress)
}

type testServer struct {
	router *gin.Engine
	repo   *countingRepository
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	logger := logrus.New()
	logger.SetOutput(io.Discard)

	repo := &countingRepository{ProgressRepository: memory.NewProgressRepository()}
	resolver := auth.NewResolver(tokenProvider{
		"mock-access-token": {UserID: "test-user-123", Email: "candidate@example.com"},
		"other-token":       {UserID: "other-user"},
	})
	handler := NewHandler(
		service.NewProgressService(repo, logger),
		service.NewPropertyService(memory.NewPropertyRepository(domain.DefaultProperties())),
		resolver,
		logger,
	)

	router := gin.New()
	router.Use(gin.Recovery())
	handler.RegisterRoutes(router)
	return &testServer{router: router, repo: repo}
}

func (s *testServer) do(t *testing.T, method, path, token, body string) (int, map[string]any) {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)

	var decoded map[string]any
	if rec.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &decoded), rec.Body.String())
	}
	return rec.Code, decoded
}

func TestProgressScenario(t *testing.T) {
	srv := newTestServer(t)

	code, body := srv.do(t, http.MethodGet, "/api/progress", "mock-access-token", "")
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, true, body["success"])
	assert.Nil(t, body["progress"])

	code, body = srv.do(t, http.MethodPut, "/api/progress", "mock-access-token", `{
		"currentStep": "step-1",
		"progressData": {"completedSteps": ["step-1"], "step1": {"selectedPropertyId": "prop-456", "sqft": 1500}}
	}`)
	require.Equal(t, http.StatusOK, code, body)
	progress := body["progress"].(map[string]any)
	assert.Equal(t, "test-user-123", progress["user_id"])
	assert.Equal(t, "step-1", progress["current_step"])
	assert.NotEmpty(t, progress["id"])
	assert.NotEmpty(t, progress["updated_at"])
	firstID := progress["id"]

	code, body = srv.do(t, http.MethodPut, "/api/progress", "mock-access-token", `{
		"currentStep": "step-2",
		"progressData": {"step2": {"confirmedSqft": 1600}}
	}`)
	require.Equal(t, http.StatusOK, code, body)
	progress = body["progress"].(map[string]any)
	assert.Equal(t, firstID, progress["id"])
	assert.Equal(t, "step-2", progress["current_step"])
	data := progress["progress_data"].(map[string]any)
	assert.Equal(t, map[string]any{"selectedPropertyId": "prop-456", "sqft": float64(1500)}, data["step1"])
	assert.Equal(t, map[string]any{"confirmedSqft": float64(1600)}, data["step2"])
	assert.Equal(t, []any{"step-1"}, data["completedSteps"])

	code, body = srv.do(t, http.MethodGet, "/api/progress", "mock-access-token", "")
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, progress, body["progress"])
}

func TestUpdateProgressIgnoresPayloadIdentity(t *testing.T) {
	srv := newTestServer(t)

	code, body := srv.do(t, http.MethodPut, "/api/progress?userId=other-user", "mock-access-token",
		`{"userId":"other-user","user_id":"other-user","currentStep":"step-1","progressData":{"step1":{}}}`)
	require.Equal(t, http.StatusOK, code, body)
	assert.Equal(t, "test-user-123", body["progress"].(map[string]any)["user_id"])

	code, body = srv.do(t, http.MethodGet, "/api/progress", "other-token", "")
	require.Equal(t, http.StatusOK, code)
	assert.Nil(t, body["progress"])
}

func TestAuthFailuresNeverTouchStorage(t *testing.T) {
	srv := newTestServer(t)

	requests := []struct {
		method, path, token, body string
	}{
		{http.MethodGet, "/api/progress", "", ""},
		{http.MethodGet, "/api/progress", "invalid-token", ""},
		{http.MethodPut, "/api/progress", "", `{"currentStep":"step-1","progressData":{}}`},
		{http.MethodPut, "/api/progress", "invalid-token", `{"currentStep":"step-1","progressData":{}}`},
		{http.MethodGet, "/api/listing/properties", "", ""},
		{http.MethodGet, "/api/properties", "invalid-token", ""},
	}
	for _, r := range requests {
		code, body := srv.do(t, r.method, r.path, r.token, r.body)
		assert.Equal(t, http.StatusUnauthorized, code, "%s %s", r.method, r.path)
		assert.NotEmpty(t, body["error"])
	}
	assert.Zero(t, srv.repo.calls)
}

func TestUnauthorizedMessageIsGeneric(t *testing.T) {
	srv := newTestServer(t)

	_, missing := srv.do(t, http.MethodGet, "/api/progress", "", "")
	assert.Equal(t, "No authorization token provided", missing["error"])

	_, invalid := srv.do(t, http.MethodGet, "/api/progress", "invalid-token", "")
	assert.Equal(t, "Unauthorized", invalid["error"])
}

func TestUpdateProgressValidation(t *testing.T) {
	srv := newTestServer(t)

	code, _ := srv.do(t, http.MethodPut, "/api/progress", "mock-access-token",
		`{"currentStep":"step-1","progressData":{"step1":{"sqft":1500}}}`)
	require.Equal(t, http.StatusOK, code)
	callsBefore := srv.repo.calls

	cases := map[string]string{
		`{"currentStep":"","progressData":{"step2":{}}}`:          "currentStep is required",
		`{"progressData":{"step2":{}}}`:                           "currentStep is required",
		`{"currentStep":7,"progressData":{}}`:                     "currentStep must be a string",
		`{"currentStep":"step-2"}`:                                "progressData is required",
		`{"currentStep":"step-2","progressData":"not-an-object"}`: "progressData must be an object",
		`{"currentStep":"step-2","progressData":["step1"]}`:       "progressData must be an object",
		`{"currentStep":"step-2",`:                                "request body must be a JSON object",
	}
	for payload, message := range cases {
		code, body := srv.do(t, http.MethodPut, "/api/progress", "mock-access-token", payload)
		assert.Equal(t, http.StatusBadRequest, code, payload)
		assert.Equal(t, message, body["error"], payload)
	}

	code, body := srv.do(t, http.MethodPut, "/api/progress", "mock-access-token",
		"{\"currentStep\":\"step-2\",\"progressData\":{\"k\":\"\xff\"}}")
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "progressData must be valid UTF-8 JSON", body["error"])

	oversized := `{"currentStep":"step-2","progressData":{"blob":"` + strings.Repeat("a", maxProgressBodyBytes) + `"}}`
	code, body = srv.do(t, http.MethodPut, "/api/progress", "mock-access-token", oversized)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "invalid request body", body["error"])

	assert.Equal(t, callsBefore, srv.repo.calls)

	_, body = srv.do(t, http.MethodGet, "/api/progress", "mock-access-token", "")
	progress := body["progress"].(map[string]any)
	assert.Equal(t, "step-1", progress["current_step"])
	assert.Len(t, progress["progress_data"], 1)
}

func TestStorageFailureIsGeneric500(t *testing.T) {
	srv := newTestServer(t)
	srv.repo.err = errors.New("sqlite: database is locked at /var/secret/path")

	code, body := srv.do(t, http.MethodGet, "/api/progress", "mock-access-token", "")
	assert.Equal(t, http.StatusInternalServerError, code)
	assert.Equal(t, "Failed to fetch progress", body["error"])

	code, body = srv.do(t, http.MethodPut, "/api/progress", "mock-access-token",
		`{"currentStep":"step-1","progressData":{}}`)
	assert.Equal(t, http.StatusInternalServerError, code)
	assert.Equal(t, "Failed to save progress", body["error"])
	assert.NotContains(t, body["error"], "secret")
}

func TestListProperties(t *testing.T) {
	srv := newTestServer(t)

	for _, path := range []string{"/api/listing/properties", "/api/properties"} {
		code, body := srv.do(t, http.MethodGet, path, "mock-access-token", "")
		require.Equal(t, http.StatusOK, code)
		assert.Equal(t, true, body["success"])
		properties := body["properties"].([]any)
		require.Len(t, properties, 2)
		first := properties[0].(map[string]any)
		assert.Equal(t, "prop-456", first["id"])
		assert.Equal(t, float64(850000), first["estimated_value"])
		assert.Equal(t, "94102", first["zip"])
	}
}

func TestHealthAndCORS(t *testing.T) {
	srv := newTestServer(t)

	code, body := srv.do(t, http.MethodGet, "/api/health", "", "")
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "ok", body["ok"])

	req := httptest.NewRequest(http.MethodOptions, "/api/progress", nil)
	rec := httptest.NewRecorder()
	srv.router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, rec.Header().Get("Access-Control-Allow-Headers"), "Authorization")
}
