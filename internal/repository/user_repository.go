package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"livepoll/internal/domain"
	"livepoll/pkg/database"
)

type UserRepo struct {
	db *database.PostgresDB
}

func NewUserRepository(db *database.PostgresDB) *UserRepo {
	return &UserRepo{db: db}
}

// Create inserts a user and fills its ID and CreatedAt
func (r *UserRepo) Create(ctx context.Context, user *domain.User) error {
	err := r.db.Pool.QueryRow(ctx, `
		INSERT INTO users (username, hashed_password)
		VALUES ($1, $2)
		RETURNING id, created_at
	`, user.Username, user.HashedPassword).Scan(&user.ID, &user.CreatedAt)

	if err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

// GetByUsername retrieves a user, (nil, nil) when absent
func (r *UserRepo) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	var user domain.User
	err := r.db.Pool.QueryRow(ctx, `
		SELECT id, username, hashed_password, created_at
		FROM users
		WHERE username = $1
	`, username).Scan(&user.ID, &user.Username, &user.HashedPassword, &user.CreatedAt)

	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return &user, nil
}
