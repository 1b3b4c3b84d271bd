package handler

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"livepoll/internal/domain"
	"livepoll/internal/middleware"
	"livepoll/pkg/errors"
	"livepoll/pkg/logger"
)

func testLogger(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.New("error")
	require.NoError(t, err)
	return log
}

func TestRespondError_AppError(t *testing.T) {
	log := testLogger(t)
	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/api/polls/ab12cd", nil)

	respondError(w, r, log, errors.NewNotFoundError("Poll not found"))

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))

	var resp errors.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.False(t, resp.Success)
	assert.Equal(t, errors.ErrorTypeNotFound, resp.Error.Type)
	assert.Equal(t, "Poll not found", resp.Error.Message)
	assert.NotEmpty(t, resp.Error.Timestamp)
}

func TestRespondError_UnknownErrorBecomesInternal(t *testing.T) {
	log := testLogger(t)
	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/api/polls", nil)

	respondError(w, r, log, stderrors.New("pq: connection refused"))

	assert.Equal(t, http.StatusInternalServerError, w.Code)

	var resp errors.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, errors.ErrorTypeInternal, resp.Error.Type)
	// Raw driver errors must never leak to the client.
	assert.NotContains(t, resp.Error.Message, "connection refused")
}

func TestRespondError_IncludesRequestID(t *testing.T) {
	log := testLogger(t)
	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/api/polls", nil)
	ctx := context.WithValue(r.Context(), middleware.RequestIDContextKey, "req-123")

	respondError(w, r.WithContext(ctx), log, errors.NewConflictError("Poll is closed"))

	var resp errors.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "req-123", resp.Error.RequestID)
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestUserID(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/api/polls", nil)

	_, ok := userID(r)
	assert.False(t, ok, "request without claims should have no user")

	claims := &domain.AuthClaims{UserID: 42, Username: "demo"}
	ctx := context.WithValue(r.Context(), middleware.UserContextKey, claims)

	id, ok := userID(r.WithContext(ctx))
	assert.True(t, ok)
	assert.Equal(t, int64(42), id)
}
