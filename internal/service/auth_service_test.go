package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	apperrors "livepoll/pkg/errors"
)

func newTestAuthService(t *testing.T) (AuthService, *fakeUserRepo) {
	t.Helper()
	users := &fakeUserRepo{}
	svc := NewAuthService(users, "test-secret", time.Hour, zap.NewNop())
	return svc, users
}

func TestAuthService_RegisterLoginValidate(t *testing.T) {
	svc, _ := newTestAuthService(t)
	ctx := context.Background()

	user, err := svc.Register(ctx, "presenter", "correct horse battery")
	require.NoError(t, err)
	assert.NotZero(t, user.ID)
	assert.NotEqual(t, "correct horse battery", user.HashedPassword)

	token, err := svc.Login(ctx, "presenter", "correct horse battery")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := svc.ValidateToken(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.UserID)
	assert.Equal(t, "presenter", claims.Username)
}

func TestAuthService_Register_Validation(t *testing.T) {
	svc, _ := newTestAuthService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, "", "long enough password")
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrorTypeValidation, apperrors.AsAppError(err).Type)

	_, err = svc.Register(ctx, "presenter", "short")
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrorTypeValidation, apperrors.AsAppError(err).Type)
}

func TestAuthService_Register_DuplicateUsername(t *testing.T) {
	svc, _ := newTestAuthService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, "presenter", "long enough password")
	require.NoError(t, err)

	_, err = svc.Register(ctx, "presenter", "another password!")
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrorTypeConflict, apperrors.AsAppError(err).Type)
}

func TestAuthService_Login_BadCredentials(t *testing.T) {
	svc, _ := newTestAuthService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, "presenter", "long enough password")
	require.NoError(t, err)

	_, err = svc.Login(ctx, "presenter", "wrong password!!")
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrorTypeAuthentication, apperrors.AsAppError(err).Type)

	_, err = svc.Login(ctx, "nobody", "long enough password")
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrorTypeAuthentication, apperrors.AsAppError(err).Type)
}

func TestAuthService_ValidateToken_Invalid(t *testing.T) {
	svc, _ := newTestAuthService(t)
	ctx := context.Background()

	_, err := svc.ValidateToken(ctx, "not-a-token")
	require.Error(t, err)

	// A token signed with a different secret must be rejected
	other := NewAuthService(&fakeUserRepo{}, "other-secret", time.Hour, zap.NewNop())
	_, err = other.Register(ctx, "presenter", "long enough password")
	require.NoError(t, err)
	token, err := other.Login(ctx, "presenter", "long enough password")
	require.NoError(t, err)

	_, err = svc.ValidateToken(ctx, token)
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrorTypeAuthentication, apperrors.AsAppError(err).Type)
}

func TestAuthService_ValidateToken_Expired(t *testing.T) {
	users := &fakeUserRepo{}
	svc := NewAuthService(users, "test-secret", -time.Minute, zap.NewNop())
	ctx := context.Background()

	_, err := svc.Register(ctx, "presenter", "long enough password")
	require.NoError(t, err)
	token, err := svc.Login(ctx, "presenter", "long enough password")
	require.NoError(t, err)

	_, err = svc.ValidateToken(ctx, token)
	require.Error(t, err)
}
