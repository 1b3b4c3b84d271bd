package service

import (
	"context"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"livepoll/internal/domain"
	"livepoll/internal/repository"
	apperrors "livepoll/pkg/errors"
)

const minPasswordLength = 8

// authService issues and validates presenter bearer tokens, HMAC-signed
type authService struct {
	users  repository.UserRepository
	secret []byte
	ttl    time.Duration
	logger *zap.Logger
}

// NewAuthService creates an AuthService backed by the user repository
func NewAuthService(users repository.UserRepository, secret string, ttl time.Duration, logger *zap.Logger) AuthService {
	return &authService{
		users:  users,
		secret: []byte(secret),
		ttl:    ttl,
		logger: logger,
	}
}

// Register creates a presenter account with a bcrypt-hashed password
func (s *authService) Register(ctx context.Context, username, password string) (*domain.User, error) {
	if username == "" {
		return nil, apperrors.NewValidationError("Username is required", nil)
	}
	if len(password) < minPasswordLength {
		return nil, apperrors.NewValidationError(
			fmt.Sprintf("Password must be at least %d characters", minPasswordLength), nil)
	}

	existing, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		return nil, apperrors.NewInternalError("Failed to check username", err)
	}
	if existing != nil {
		return nil, apperrors.NewConflictError("Username is already taken")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, apperrors.NewInternalError("Failed to hash password", err)
	}

	user := &domain.User{
		Username:       username,
		HashedPassword: string(hash),
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, apperrors.NewInternalError("Failed to create user", err)
	}

	s.logger.Info("presenter registered", zap.String("username", username))
	return user, nil
}

// Login verifies credentials and returns a signed bearer token
func (s *authService) Login(ctx context.Context, username, password string) (string, error) {
	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		return "", apperrors.NewInternalError("Failed to get user", err)
	}
	if user == nil {
		return "", apperrors.NewAuthenticationError("Invalid username or password")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.HashedPassword), []byte(password)); err != nil {
		return "", apperrors.NewAuthenticationError("Invalid username or password")
	}

	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":      fmt.Sprintf("%d", user.ID),
		"username": user.Username,
		"iat":      now.Unix(),
		"exp":      now.Add(s.ttl).Unix(),
	})

	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", apperrors.NewInternalError("Failed to sign token", err)
	}
	return signed, nil
}

// ValidateToken parses and verifies a bearer token
func (s *authService) ValidateToken(ctx context.Context, tokenString string) (*domain.AuthClaims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil || !token.Valid {
		return nil, apperrors.NewAuthenticationError("Invalid or expired token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, apperrors.NewAuthenticationError("Invalid token claims")
	}

	sub, _ := claims["sub"].(string)
	var userID int64
	if _, err := fmt.Sscanf(sub, "%d", &userID); err != nil || userID <= 0 {
		return nil, apperrors.NewAuthenticationError("Invalid token subject")
	}

	username, _ := claims["username"].(string)

	return &domain.AuthClaims{
		UserID:   userID,
		Username: username,
	}, nil
}
