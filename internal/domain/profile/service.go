package profile

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/hairtrack/hairtrack-api/internal/domain/user"
)

// Service handles profile business logic
type Service struct {
	repo     Repository
	userRepo user.Repository
}

// NewService creates profile service
func NewService(repo Repository, userRepo user.Repository) *Service {
	return &Service{repo: repo, userRepo: userRepo}
}

// Get returns the profile of userID
func (s *Service) Get(ctx context.Context, userID uuid.UUID) (*Profile, error) {
	p, err := s.repo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, ErrProfileNotFound
	}
	return p, nil
}

// Update applies the non-nil fields of req
func (s *Service) Update(ctx context.Context, userID uuid.UUID, req *UpdateProfileRequest) (*Profile, error) {
	p, err := s.Get(ctx, userID)
	if err != nil {
		return nil, err
	}

	if req.FullName != nil {
		name := strings.TrimSpace(*req.FullName)
		p.FullName = sql.NullString{String: name, Valid: name != ""}
	}
	if req.Age != nil {
		p.Age = sql.NullInt32{Int32: int32(*req.Age), Valid: *req.Age > 0}
	}
	if req.HairType != nil {
		p.HairType = sql.NullString{String: *req.HairType, Valid: *req.HairType != ""}
	}
	if req.FamilyHistoryHairLoss != nil {
		p.FamilyHistoryHairLoss = *req.FamilyHistoryHairLoss
	}
	if req.WeeklyReminder != nil {
		p.WeeklyReminder = *req.WeeklyReminder
	}
	p.UpdatedAt = time.Now()

	if err := s.repo.Update(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// DeleteAccount removes the user. Sessions, photos and the profile cascade.
func (s *Service) DeleteAccount(ctx context.Context, userID uuid.UUID) error {
	return s.userRepo.Delete(ctx, userID)
}
