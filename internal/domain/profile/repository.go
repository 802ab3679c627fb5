package profile

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// Repository defines profile data access interface
type Repository interface {
	Create(ctx context.Context, profile *Profile) error
	CreateDefault(ctx context.Context, userID uuid.UUID, fullName string) error
	GetByUserID(ctx context.Context, userID uuid.UUID) (*Profile, error)
	Update(ctx context.Context, profile *Profile) error
}

type repository struct {
	db *sqlx.DB
}

// NewRepository creates profile repository
func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, p *Profile) error {
	query := r.db.Rebind(`
		INSERT INTO profiles (user_id, full_name, age, hair_type, family_history_hair_loss, weekly_reminder, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`)
	_, err := r.db.ExecContext(ctx, query,
		p.UserID, p.FullName, p.Age, p.HairType,
		p.FamilyHistoryHairLoss, p.WeeklyReminder,
		p.CreatedAt.UTC(), p.UpdatedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("profile repository create: %w", err)
	}
	return nil
}

// CreateDefault creates the profile made at sign-up.
func (r *repository) CreateDefault(ctx context.Context, userID uuid.UUID, fullName string) error {
	now := time.Now()
	return r.Create(ctx, &Profile{
		UserID:         userID,
		FullName:       sql.NullString{String: fullName, Valid: fullName != ""},
		WeeklyReminder: true,
		CreatedAt:      now,
		UpdatedAt:      now,
	})
}

func (r *repository) GetByUserID(ctx context.Context, userID uuid.UUID) (*Profile, error) {
	query := r.db.Rebind(`
		SELECT user_id, full_name, age, hair_type, family_history_hair_loss, weekly_reminder, created_at, updated_at
		FROM profiles WHERE user_id = ?
	`)
	var p Profile
	if err := r.db.GetContext(ctx, &p, query, userID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &p, nil
}

func (r *repository) Update(ctx context.Context, p *Profile) error {
	query := r.db.Rebind(`
		UPDATE profiles
		SET full_name = ?, age = ?, hair_type = ?, family_history_hair_loss = ?, weekly_reminder = ?, updated_at = ?
		WHERE user_id = ?
	`)
	res, err := r.db.ExecContext(ctx, query,
		p.FullName, p.Age, p.HairType, p.FamilyHistoryHairLoss, p.WeeklyReminder,
		p.UpdatedAt.UTC(), p.UserID,
	)
	if err != nil {
		return fmt.Errorf("profile repository update: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrProfileNotFound
	}
	return nil
}
