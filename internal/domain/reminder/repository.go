package reminder

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// Recipient is a user who opted into weekly reminders.
type Recipient struct {
	UserID   uuid.UUID      `db:"user_id"`
	Email    string         `db:"email"`
	FullName sql.NullString `db:"full_name"`
}

// Repository reads reminder recipients
type Repository interface {
	ListOptedIn(ctx context.Context) ([]Recipient, error)
}

type repository struct {
	db *sqlx.DB
}

// NewRepository creates reminder repository
func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

func (r *repository) ListOptedIn(ctx context.Context) ([]Recipient, error) {
	query := `
		SELECT u.id AS user_id, u.email, p.full_name
		FROM users u
		JOIN profiles p ON p.user_id = u.id
		WHERE p.weekly_reminder = ?
		ORDER BY u.email`

	var out []Recipient
	if err := r.db.SelectContext(ctx, &out, r.db.Rebind(query), true); err != nil {
		return nil, err
	}
	return out, nil
}
