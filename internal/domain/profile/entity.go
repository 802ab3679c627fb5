package profile

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
)

// Profile holds the personal details of a user (matches profiles table)
type Profile struct {
	UserID                uuid.UUID      `db:"user_id"`
	FullName              sql.NullString `db:"full_name"`
	Age                   sql.NullInt32  `db:"age"`
	HairType              sql.NullString `db:"hair_type"`
	FamilyHistoryHairLoss bool           `db:"family_history_hair_loss"`
	WeeklyReminder        bool           `db:"weekly_reminder"`
	CreatedAt             time.Time      `db:"created_at"`
	UpdatedAt             time.Time      `db:"updated_at"`
}
