package history

import (
	"time"

	"github.com/google/uuid"

	"github.com/hairtrack/hairtrack-api/internal/domain/analysis"
)

// PhotoResponse is a stored photo with a fresh viewing URL.
type PhotoResponse struct {
	ID    uuid.UUID      `json:"id"`
	Angle analysis.Angle `json:"angle"`
	Label string         `json:"label"`
	URL   string         `json:"url"`
}

// SessionResponse represents a session in API response
type SessionResponse struct {
	ID              uuid.UUID       `json:"id"`
	CreatedAt       time.Time       `json:"created_at"`
	OverallScore    int             `json:"overall_score"`
	DensityScore    int             `json:"density_score"`
	HairlineScore   int             `json:"hairline_score"`
	CrownScore      int             `json:"crown_score"`
	AISummary       string          `json:"ai_summary"`
	ComparisonNotes *string         `json:"comparison_notes,omitempty"`
	AlertTriggered  bool            `json:"alert_triggered"`
	Delta           *Delta          `json:"delta,omitempty"`
	Photos          []PhotoResponse `json:"photos,omitempty"`
}

// SessionResponseFromEntity converts entity to response. delta may be nil.
func SessionResponseFromEntity(s *analysis.Session, delta *Delta) SessionResponse {
	resp := SessionResponse{
		ID:             s.ID,
		CreatedAt:      s.CreatedAt,
		OverallScore:   s.OverallScore,
		DensityScore:   s.DensityScore,
		HairlineScore:  s.HairlineScore,
		CrownScore:     s.CrownScore,
		AISummary:      s.AISummary,
		AlertTriggered: s.AlertTriggered,
		Delta:          delta,
	}
	if s.ComparisonNotes.Valid {
		notes := s.ComparisonNotes.String
		resp.ComparisonNotes = &notes
	}
	return resp
}

// CompareResponse pairs two sessions. Diff is B minus A.
type CompareResponse struct {
	A    SessionResponse `json:"a"`
	B    SessionResponse `json:"b"`
	Diff Delta           `json:"diff"`
}

// TrendResponse is the chart with streak and statistics.
type TrendResponse struct {
	Series []Point `json:"series"`
	Streak int     `json:"streak"`
	Stats  Stats   `json:"stats"`
}
