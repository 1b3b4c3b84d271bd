package domain

import "time"

// User is a presenter account that owns polls
type User struct {
	ID             int64     `json:"id"`
	Username       string    `json:"username"`
	HashedPassword string    `json:"-"`
	CreatedAt      time.Time `json:"created_at"`
}

// AuthClaims is the validated content of a presenter's bearer token
type AuthClaims struct {
	UserID   int64  `json:"user_id"`
	Username string `json:"username"`
}

// CredentialsRequest is the payload for register and login
type CredentialsRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// TokenResponse is returned by a successful login
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}
