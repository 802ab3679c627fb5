package auth

import (
	"time"

	"github.com/google/uuid"

	"github.com/hairtrack/hairtrack-api/internal/middleware"
)

// SignUpRequest for POST /auth/sign-up
type SignUpRequest struct {
	Email    string `json:"email" validate:"required,email,max=255"`
	Password string `json:"password" validate:"required,min=6,max=128"`
	Name     string `json:"name" validate:"required,max=100"`
}

// SignInRequest for POST /auth/sign-in
type SignInRequest struct {
	Email    string `json:"email" validate:"required,email,max=255"`
	Password string `json:"password" validate:"required,max=128"`
}

// RefreshRequest for POST /auth/refresh and /auth/sign-out
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

// AuthResponse returned after sign-in/sign-up
type AuthResponse struct {
	User   UserResponse   `json:"user"`
	Tokens TokensResponse `json:"tokens"`
}

// UserResponse represents user in API response
type UserResponse struct {
	ID        uuid.UUID `json:"id"`
	Email     string    `json:"email"`
	CreatedAt string    `json:"created_at"`
}

// TokensResponse represents tokens in API response
type TokensResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int    `json:"expires_in"` // seconds until access token expires
	TokenType    string `json:"token_type"`
}

// SessionResponse answers GET /auth/session
type SessionResponse struct {
	State middleware.State `json:"state"`
	User  *UserResponse    `json:"user,omitempty"`
}

// NewUserResponse creates UserResponse from user data
func NewUserResponse(id uuid.UUID, email string, createdAt time.Time) UserResponse {
	return UserResponse{
		ID:        id,
		Email:     email,
		CreatedAt: createdAt.Format(time.RFC3339),
	}
}
