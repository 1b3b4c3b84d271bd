package service

import (
	"context"

	"livepoll/internal/domain"
)

// ChangeNotifier signals subscribed viewers that a poll changed. Invoked by
// every mutating operation after its storage write committed, never before.
// Implementations must not block the caller and must swallow delivery
// failures.
type ChangeNotifier interface {
	Changed(slug string, pollID int64)
}

// AuthService defines the interface for presenter authentication
type AuthService interface {
	// Register creates a presenter account with a hashed password
	Register(ctx context.Context, username, password string) (*domain.User, error)

	// Login verifies credentials and returns a signed bearer token
	Login(ctx context.Context, username, password string) (string, error)

	// ValidateToken parses and verifies a bearer token
	ValidateToken(ctx context.Context, token string) (*domain.AuthClaims, error)
}
