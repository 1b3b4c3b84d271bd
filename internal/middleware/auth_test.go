package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"livepoll/internal/domain"
	"livepoll/pkg/errors"
	"livepoll/pkg/logger"
)

type stubAuthService struct {
	claims *domain.AuthClaims
}

func (s *stubAuthService) Register(ctx context.Context, username, password string) (*domain.User, error) {
	return nil, errors.NewInternalError("not implemented", nil)
}

func (s *stubAuthService) Login(ctx context.Context, username, password string) (string, error) {
	return "", errors.NewInternalError("not implemented", nil)
}

func (s *stubAuthService) ValidateToken(ctx context.Context, token string) (*domain.AuthClaims, error) {
	if token == "valid-token" && s.claims != nil {
		return s.claims, nil
	}
	return nil, errors.NewAuthenticationError("Invalid token")
}

func testLogger(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.New("error")
	require.NoError(t, err)
	return log
}

func TestAuth_ValidToken(t *testing.T) {
	svc := &stubAuthService{claims: &domain.AuthClaims{UserID: 7, Username: "demo"}}

	var gotClaims *domain.AuthClaims
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotClaims, _ = r.Context().Value(UserContextKey).(*domain.AuthClaims)
		w.WriteHeader(http.StatusOK)
	})

	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/api/polls", nil)
	r.Header.Set("Authorization", "Bearer valid-token")

	Auth(svc, testLogger(t))(next).ServeHTTP(w, r)

	assert.Equal(t, http.StatusOK, w.Code)
	require.NotNil(t, gotClaims)
	assert.Equal(t, int64(7), gotClaims.UserID)
}

func TestAuth_Rejections(t *testing.T) {
	svc := &stubAuthService{claims: &domain.AuthClaims{UserID: 7, Username: "demo"}}
	handler := Auth(svc, testLogger(t))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("next handler should not be called")
	}))

	tests := []struct {
		name   string
		header string
	}{
		{name: "missing header", header: ""},
		{name: "not bearer", header: "Basic dXNlcjpwYXNz"},
		{name: "empty token", header: "Bearer "},
		{name: "invalid token", header: "Bearer garbage"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			r := httptest.NewRequest(http.MethodGet, "/api/polls", nil)
			if tt.header != "" {
				r.Header.Set("Authorization", tt.header)
			}

			handler.ServeHTTP(w, r)

			assert.Equal(t, http.StatusUnauthorized, w.Code)
			assert.Contains(t, w.Body.String(), "authentication")
		})
	}
}

func TestRequestID(t *testing.T) {
	var ctxID string
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctxID, _ = r.Context().Value(RequestIDContextKey).(string)
	})

	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/health", nil)

	RequestID(testLogger(t))(next).ServeHTTP(w, r)

	assert.NotEmpty(t, ctxID)
	assert.Equal(t, ctxID, w.Header().Get("X-Request-ID"))
}

func TestCORS_Preflight(t *testing.T) {
	cfg := DefaultCORSConfig()
	cfg.AllowedOrigins = []string{"http://localhost:5173"}

	handler := CORS(cfg, testLogger(t))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("preflight must not reach the next handler")
	}))

	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodOptions, "/api/polls", nil)
	r.Header.Set("Origin", "http://localhost:5173")

	handler.ServeHTTP(w, r)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "http://localhost:5173", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "86400", w.Header().Get("Access-Control-Max-Age"))
}

func TestCORS_DisallowedOrigin(t *testing.T) {
	cfg := DefaultCORSConfig()
	cfg.AllowedOrigins = []string{"http://localhost:5173"}

	handler := CORS(cfg, testLogger(t))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/api/polls", nil)
	r.Header.Set("Origin", "http://evil.example.com")

	handler.ServeHTTP(w, r)

	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
}
