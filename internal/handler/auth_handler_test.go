package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"livepoll/internal/domain"
	"livepoll/pkg/errors"
)

type fakeAuthService struct {
	registered map[string]string
}

func newFakeAuthService() *fakeAuthService {
	return &fakeAuthService{registered: map[string]string{}}
}

func (f *fakeAuthService) Register(ctx context.Context, username, password string) (*domain.User, error) {
	if len(password) < 8 {
		return nil, errors.NewValidationError("Password must be at least 8 characters", nil)
	}
	if _, exists := f.registered[username]; exists {
		return nil, errors.NewConflictError("Username is already taken")
	}
	f.registered[username] = password
	return &domain.User{ID: 1, Username: username, CreatedAt: time.Now()}, nil
}

func (f *fakeAuthService) Login(ctx context.Context, username, password string) (string, error) {
	if f.registered[username] != password {
		return "", errors.NewAuthenticationError("Invalid username or password")
	}
	return "token-" + username, nil
}

func (f *fakeAuthService) ValidateToken(ctx context.Context, token string) (*domain.AuthClaims, error) {
	if !strings.HasPrefix(token, "token-") {
		return nil, errors.NewAuthenticationError("Invalid token")
	}
	return &domain.AuthClaims{UserID: 1, Username: strings.TrimPrefix(token, "token-")}, nil
}

func TestAuthHandler_Register(t *testing.T) {
	h := NewAuthHandler(newFakeAuthService(), testLogger(t))

	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodPost, "/api/auth/register",
		strings.NewReader(`{"username":"demo","password":"changeme123"}`))

	h.Register(w, r)

	assert.Equal(t, http.StatusCreated, w.Code)

	var user domain.User
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &user))
	assert.Equal(t, "demo", user.Username)
	// The hashed password must never appear in responses.
	assert.NotContains(t, w.Body.String(), "password")
}

func TestAuthHandler_RegisterInvalidBody(t *testing.T) {
	h := NewAuthHandler(newFakeAuthService(), testLogger(t))

	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodPost, "/api/auth/register", strings.NewReader(`{not json`))

	h.Register(w, r)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAuthHandler_RegisterDuplicate(t *testing.T) {
	svc := newFakeAuthService()
	svc.registered["demo"] = "changeme123"
	h := NewAuthHandler(svc, testLogger(t))

	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodPost, "/api/auth/register",
		strings.NewReader(`{"username":"demo","password":"changeme123"}`))

	h.Register(w, r)

	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestAuthHandler_Login(t *testing.T) {
	svc := newFakeAuthService()
	svc.registered["demo"] = "changeme123"
	h := NewAuthHandler(svc, testLogger(t))

	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodPost, "/api/auth/login",
		strings.NewReader(`{"username":"demo","password":"changeme123"}`))

	h.Login(w, r)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp domain.TokenResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "token-demo", resp.AccessToken)
	assert.Equal(t, "bearer", resp.TokenType)
}

func TestAuthHandler_LoginBadCredentials(t *testing.T) {
	svc := newFakeAuthService()
	svc.registered["demo"] = "changeme123"
	h := NewAuthHandler(svc, testLogger(t))

	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodPost, "/api/auth/login",
		strings.NewReader(`{"username":"demo","password":"wrong"}`))

	h.Login(w, r)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
