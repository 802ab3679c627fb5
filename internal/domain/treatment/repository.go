package treatment

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
)

// Filter narrows the catalog. Empty fields match everything.
type Filter struct {
	Category   Category
	Cost       Level
	Commitment Level
}

// Repository defines treatment data access interface
type Repository interface {
	// List returns matching treatments, strongest evidence first.
	List(ctx context.Context, filter Filter) ([]Treatment, error)
	Count(ctx context.Context) (int, error)
}

type repository struct {
	db *sqlx.DB
}

// NewRepository creates treatment repository
func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

func (r *repository) List(ctx context.Context, filter Filter) ([]Treatment, error) {
	var (
		where []string
		args  []interface{}
	)
	if filter.Category != "" {
		where = append(where, "category = ?")
		args = append(args, filter.Category)
	}
	if filter.Cost != "" {
		where = append(where, "cost_level = ?")
		args = append(args, filter.Cost)
	}
	if filter.Commitment != "" {
		where = append(where, "commitment_level = ?")
		args = append(args, filter.Commitment)
	}

	query := `SELECT id, name, description, category, cost_level, commitment_level, evidence_rating, affiliate_url FROM treatments`
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, " AND ")
	}
	query += ` ORDER BY evidence_rating DESC, name ASC`

	var treatments []Treatment
	if err := r.db.SelectContext(ctx, &treatments, r.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("treatment repository list: %w", err)
	}
	return treatments, nil
}

func (r *repository) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db.GetContext(ctx, &n, `SELECT COUNT(*) FROM treatments`); err != nil {
		return 0, fmt.Errorf("treatment repository count: %w", err)
	}
	return n, nil
}
