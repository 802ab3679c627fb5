package analysis

import (
	"database/sql"
	"time"

	"github.com/google/uuid"

	"github.com/hairtrack/hairtrack-api/internal/pkg/classifier"
)

// Session is one completed analysis (matches analysis_sessions table).
// Sessions are append-only.
type Session struct {
	ID              uuid.UUID      `db:"id"`
	UserID          uuid.UUID      `db:"user_id"`
	OverallScore    int            `db:"overall_score"`
	DensityScore    int            `db:"density_score"`
	HairlineScore   int            `db:"hairline_score"`
	CrownScore      int            `db:"crown_score"`
	AISummary       string         `db:"ai_summary"`
	ComparisonNotes sql.NullString `db:"comparison_notes"`
	AlertTriggered  bool           `db:"alert_triggered"`
	CreatedAt       time.Time      `db:"created_at"`
}

// Scores returns the four scores as classifier comparison context.
func (s *Session) Scores() classifier.Scores {
	return classifier.Scores{
		Overall:  s.OverallScore,
		Density:  s.DensityScore,
		Hairline: s.HairlineScore,
		Crown:    s.CrownScore,
	}
}

// NewSession builds the row for a classifier result.
func NewSession(userID uuid.UUID, res *classifier.Result, createdAt time.Time) *Session {
	s := &Session{
		ID:             uuid.New(),
		UserID:         userID,
		OverallScore:   res.OverallScore,
		DensityScore:   res.DensityScore,
		HairlineScore:  res.HairlineScore,
		CrownScore:     res.CrownScore,
		AISummary:      res.AISummary,
		AlertTriggered: res.AlertTriggered,
		CreatedAt:      createdAt.UTC(),
	}
	if res.ComparisonNotes != nil && *res.ComparisonNotes != "" {
		s.ComparisonNotes = sql.NullString{String: *res.ComparisonNotes, Valid: true}
	}
	return s
}

// Photo is a stored photo of a session (matches analysis_photos table).
// PhotoURL holds the storage key; viewers re-sign it.
type Photo struct {
	ID        uuid.UUID `db:"id"`
	SessionID uuid.UUID `db:"session_id"`
	UserID    uuid.UUID `db:"user_id"`
	Angle     Angle     `db:"angle"`
	PhotoURL  string    `db:"photo_url"`
}
