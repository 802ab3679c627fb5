package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/hairtrack/hairtrack-api/internal/domain/user"
	"github.com/hairtrack/hairtrack-api/internal/pkg/jwt"
	"github.com/hairtrack/hairtrack-api/internal/pkg/password"
)

const refreshKeyPrefix = "refresh:"

// ProfileCreator creates the profile that belongs to a new account.
type ProfileCreator interface {
	CreateDefault(ctx context.Context, userID uuid.UUID, fullName string) error
}

// Service handles authentication business logic
type Service struct {
	userRepo   user.Repository
	profiles   ProfileCreator
	jwtService *jwt.Service
	redis      *redis.Client // nil if Redis disabled
	hashCost   int
}

// NewService creates auth service
func NewService(userRepo user.Repository, profiles ProfileCreator, jwtService *jwt.Service, redis *redis.Client) *Service {
	return &Service{
		userRepo:   userRepo,
		profiles:   profiles,
		jwtService: jwtService,
		redis:      redis,
		hashCost:   password.DefaultCost,
	}
}

// SignUp creates an account with its profile and signs it in
func (s *Service) SignUp(ctx context.Context, req *SignUpRequest) (*AuthResponse, error) {
	req.Email = normalizeEmail(req.Email)

	existing, err := s.userRepo.GetByEmail(ctx, req.Email)
	if err != nil {
		return nil, fmt.Errorf("sign-up lookup: %w", err)
	}
	if existing != nil {
		return nil, ErrEmailAlreadyExists
	}

	hash, err := password.HashWithCost(req.Password, s.hashCost)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	u := &user.User{
		ID:           uuid.New(),
		Email:        req.Email,
		PasswordHash: hash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.userRepo.Create(ctx, u); err != nil {
		if errors.Is(err, user.ErrEmailAlreadyExists) {
			return nil, ErrEmailAlreadyExists
		}
		return nil, fmt.Errorf("sign-up create user: %w", err)
	}

	if err := s.profiles.CreateDefault(ctx, u.ID, strings.TrimSpace(req.Name)); err != nil {
		// Rollback: delete user if profile creation fails
		_ = s.userRepo.Delete(ctx, u.ID)
		return nil, fmt.Errorf("sign-up create profile: %w", err)
	}

	return s.generateTokens(ctx, u)
}

// SignIn authenticates user
func (s *Service) SignIn(ctx context.Context, req *SignInRequest) (*AuthResponse, error) {
	req.Email = normalizeEmail(req.Email)

	u, err := s.userRepo.GetByEmail(ctx, req.Email)
	if err != nil || u == nil {
		return nil, ErrInvalidCredentials
	}
	if !password.Verify(req.Password, u.PasswordHash) {
		return nil, ErrInvalidCredentials
	}

	return s.generateTokens(ctx, u)
}

// Refresh rotates the refresh token and issues a new access token
func (s *Service) Refresh(ctx context.Context, refreshToken string) (*AuthResponse, error) {
	if refreshToken == "" {
		return nil, ErrRefreshTokenRequired
	}

	claims, err := s.jwtService.ValidateRefreshToken(refreshToken)
	if err != nil {
		return nil, ErrInvalidRefreshToken
	}

	refreshHash := jwt.HashRefreshToken(refreshToken)
	if err := s.checkRefreshToken(ctx, refreshHash, claims.UserID); err != nil {
		return nil, err
	}

	u, err := s.userRepo.GetByID(ctx, claims.UserID)
	if err != nil || u == nil {
		return nil, ErrUserNotFound
	}

	// Token rotation
	_ = s.deleteRefreshToken(ctx, refreshHash)

	return s.generateTokens(ctx, u)
}

// SignOut invalidates refresh token
func (s *Service) SignOut(ctx context.Context, refreshToken string) error {
	if refreshToken == "" {
		return nil
	}
	return s.deleteRefreshToken(ctx, jwt.HashRefreshToken(refreshToken))
}

// GetCurrentUser returns current user by ID
func (s *Service) GetCurrentUser(ctx context.Context, userID uuid.UUID) (*UserResponse, error) {
	u, err := s.userRepo.GetByID(ctx, userID)
	if err != nil || u == nil {
		return nil, ErrUserNotFound
	}

	resp := NewUserResponse(u.ID, u.Email, u.CreatedAt)
	return &resp, nil
}

func (s *Service) generateTokens(ctx context.Context, u *user.User) (*AuthResponse, error) {
	accessToken, err := s.jwtService.GenerateAccessToken(u.ID)
	if err != nil {
		return nil, err
	}

	refreshToken, _, err := s.jwtService.GenerateRefreshToken(u.ID)
	if err != nil {
		return nil, err
	}

	if err := s.storeRefreshToken(ctx, jwt.HashRefreshToken(refreshToken), u.ID); err != nil {
		return nil, err
	}

	return &AuthResponse{
		User: NewUserResponse(u.ID, u.Email, u.CreatedAt),
		Tokens: TokensResponse{
			AccessToken:  accessToken,
			RefreshToken: refreshToken,
			ExpiresIn:    int(s.jwtService.GetAccessTTL().Seconds()),
			TokenType:    "Bearer",
		},
	}, nil
}

// Redis helpers. Without Redis refresh tokens are stateless: a valid
// signature is enough and sign-out cannot revoke them.
func (s *Service) storeRefreshToken(ctx context.Context, hash string, userID uuid.UUID) error {
	if s.redis == nil {
		return nil
	}
	return s.redis.Set(ctx, refreshKeyPrefix+hash, userID.String(), s.jwtService.GetRefreshTTL()).Err()
}

func (s *Service) checkRefreshToken(ctx context.Context, hash string, userID uuid.UUID) error {
	if s.redis == nil {
		return nil
	}
	val, err := s.redis.Get(ctx, refreshKeyPrefix+hash).Result()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			log.Warn().Err(err).Msg("refresh token lookup failed")
		}
		return ErrInvalidRefreshToken
	}
	if val != userID.String() {
		return ErrInvalidRefreshToken
	}
	return nil
}

func (s *Service) deleteRefreshToken(ctx context.Context, hash string) error {
	if s.redis == nil {
		return nil
	}
	return s.redis.Del(ctx, refreshKeyPrefix+hash).Err()
}
