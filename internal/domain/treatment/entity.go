package treatment

import (
	"database/sql"

	"github.com/google/uuid"
)

// Category groups treatments by how they are delivered.
type Category string

const (
	CategoryTopical      Category = "topical"
	CategorySupplement   Category = "supplement"
	CategoryLifestyle    Category = "lifestyle"
	CategoryProfessional Category = "professional"
)

// Level rates cost and commitment.
type Level string

const (
	LevelLow    Level = "low"
	LevelMedium Level = "medium"
	LevelHigh   Level = "high"
)

// Treatment entity (matches treatments table)
type Treatment struct {
	ID              uuid.UUID      `db:"id"`
	Name            string         `db:"name"`
	Description     string         `db:"description"`
	Category        Category       `db:"category"`
	CostLevel       Level          `db:"cost_level"`
	CommitmentLevel Level          `db:"commitment_level"`
	EvidenceRating  int            `db:"evidence_rating"`
	AffiliateURL    sql.NullString `db:"affiliate_url"`
}

// CategoryLabel is the display name of c.
func CategoryLabel(c Category) string {
	if c == "" {
		return ""
	}
	s := string(c)
	return string(s[0]-'a'+'A') + s[1:]
}

// CostLabel renders a cost level as dollar signs.
func CostLabel(l Level) string {
	switch l {
	case LevelLow:
		return "$"
	case LevelMedium:
		return "$$"
	case LevelHigh:
		return "$$$"
	default:
		return "-"
	}
}

// CommitmentLabel renders a commitment level.
func CommitmentLabel(l Level) string {
	switch l {
	case LevelLow:
		return "Low effort"
	case LevelMedium:
		return "Regular"
	case LevelHigh:
		return "High effort"
	default:
		return "-"
	}
}
