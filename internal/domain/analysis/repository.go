package analysis

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// Repository defines analysis data access interface
type Repository interface {
	// CreateWithPhotos writes the session and its photos in one transaction.
	CreateWithPhotos(ctx context.Context, session *Session, photos []Photo) error
	GetLatest(ctx context.Context, userID uuid.UUID) (*Session, error)
	GetByID(ctx context.Context, userID, id uuid.UUID) (*Session, error)
	// ListByUser returns sessions newest first; limit <= 0 returns all.
	ListByUser(ctx context.Context, userID uuid.UUID, limit int) ([]Session, error)
	ListPhotos(ctx context.Context, sessionID uuid.UUID) ([]Photo, error)
	ListPhotosBySessions(ctx context.Context, sessionIDs []uuid.UUID) (map[uuid.UUID][]Photo, error)
}

type repository struct {
	db *sqlx.DB
}

// NewRepository creates analysis repository
func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

const sessionColumns = `id, user_id, overall_score, density_score, hairline_score, crown_score,
	ai_summary, comparison_notes, alert_triggered, created_at`

const photoColumns = `id, session_id, user_id, angle, photo_url`

func (r *repository) CreateWithPhotos(ctx context.Context, s *Session, photos []Photo) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("analysis repository begin: %w", err)
	}
	defer tx.Rollback()

	insertSession := r.db.Rebind(`
		INSERT INTO analysis_sessions (` + sessionColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if _, err := tx.ExecContext(ctx, insertSession,
		s.ID, s.UserID, s.OverallScore, s.DensityScore, s.HairlineScore, s.CrownScore,
		s.AISummary, s.ComparisonNotes, s.AlertTriggered, s.CreatedAt.UTC(),
	); err != nil {
		return fmt.Errorf("analysis repository insert session: %w", err)
	}

	insertPhoto := r.db.Rebind(`INSERT INTO analysis_photos (` + photoColumns + `) VALUES (?, ?, ?, ?, ?)`)
	for i := range photos {
		p := &photos[i]
		if p.ID == uuid.Nil {
			p.ID = uuid.New()
		}
		p.SessionID = s.ID
		p.UserID = s.UserID
		if _, err := tx.ExecContext(ctx, insertPhoto, p.ID, p.SessionID, p.UserID, p.Angle, p.PhotoURL); err != nil {
			return fmt.Errorf("analysis repository insert photo %s: %w", p.Angle, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("analysis repository commit: %w", err)
	}
	return nil
}

func (r *repository) GetLatest(ctx context.Context, userID uuid.UUID) (*Session, error) {
	query := r.db.Rebind(`SELECT ` + sessionColumns + ` FROM analysis_sessions
		WHERE user_id = ? ORDER BY created_at DESC LIMIT 1`)
	return r.getOne(ctx, query, userID)
}

func (r *repository) GetByID(ctx context.Context, userID, id uuid.UUID) (*Session, error) {
	query := r.db.Rebind(`SELECT ` + sessionColumns + ` FROM analysis_sessions WHERE id = ? AND user_id = ?`)
	return r.getOne(ctx, query, id, userID)
}

func (r *repository) getOne(ctx context.Context, query string, args ...interface{}) (*Session, error) {
	var s Session
	if err := r.db.GetContext(ctx, &s, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &s, nil
}

func (r *repository) ListByUser(ctx context.Context, userID uuid.UUID, limit int) ([]Session, error) {
	query := `SELECT ` + sessionColumns + ` FROM analysis_sessions WHERE user_id = ? ORDER BY created_at DESC`
	args := []interface{}{userID}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	var sessions []Session
	if err := r.db.SelectContext(ctx, &sessions, r.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("analysis repository list: %w", err)
	}
	return sessions, nil
}

func (r *repository) ListPhotos(ctx context.Context, sessionID uuid.UUID) ([]Photo, error) {
	var photos []Photo
	query := r.db.Rebind(`SELECT ` + photoColumns + ` FROM analysis_photos WHERE session_id = ?`)
	if err := r.db.SelectContext(ctx, &photos, query, sessionID); err != nil {
		return nil, fmt.Errorf("analysis repository list photos: %w", err)
	}
	sortByAngle(photos)
	return photos, nil
}

func (r *repository) ListPhotosBySessions(ctx context.Context, sessionIDs []uuid.UUID) (map[uuid.UUID][]Photo, error) {
	out := make(map[uuid.UUID][]Photo, len(sessionIDs))
	if len(sessionIDs) == 0 {
		return out, nil
	}

	query, args, err := sqlx.In(`SELECT `+photoColumns+` FROM analysis_photos WHERE session_id IN (?)`, sessionIDs)
	if err != nil {
		return nil, err
	}
	var photos []Photo
	if err := r.db.SelectContext(ctx, &photos, r.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("analysis repository list photos: %w", err)
	}
	sortByAngle(photos)
	for _, p := range photos {
		out[p.SessionID] = append(out[p.SessionID], p)
	}
	return out, nil
}

func sortByAngle(photos []Photo) {
	sort.SliceStable(photos, func(i, j int) bool {
		return photos[i].Angle.Index() < photos[j].Angle.Index()
	})
}
