package history

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"

	"github.com/hairtrack/hairtrack-api/internal/domain/analysis"
	"github.com/hairtrack/hairtrack-api/internal/pkg/logger"
)

// Signer mints viewing URLs for stored photo keys.
type Signer interface {
	Sign(ctx context.Context, key string) (string, error)
}

// Service derives history views from stored sessions. It never writes.
type Service struct {
	repo   analysis.Repository
	signer Signer
	now    func() time.Time
}

// NewService creates history service
func NewService(repo analysis.Repository, signer Signer) *Service {
	return &Service{repo: repo, signer: signer, now: time.Now}
}

// List returns sessions newest first, each with its delta.
func (s *Service) List(ctx context.Context, userID uuid.UUID) ([]SessionResponse, error) {
	sessions, err := s.repo.ListByUser(ctx, userID, 0)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	deltas := Deltas(sessions)

	out := make([]SessionResponse, 0, len(sessions))
	for i := range sessions {
		out = append(out, SessionResponseFromEntity(&sessions[i], deltaPtr(deltas, sessions[i].ID)))
	}
	return out, nil
}

// Get returns one session with its delta and signed photos.
func (s *Service) Get(ctx context.Context, userID, id uuid.UUID) (*SessionResponse, error) {
	sessions, err := s.repo.ListByUser(ctx, userID, 0)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	return s.detail(ctx, sessions, Deltas(sessions), id)
}

// Compare returns two sessions side by side with their photos.
func (s *Service) Compare(ctx context.Context, userID, a, b uuid.UUID) (*CompareResponse, error) {
	if a == b {
		return nil, ErrSameSession
	}
	sessions, err := s.repo.ListByUser(ctx, userID, 0)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	deltas := Deltas(sessions)

	left, err := s.detail(ctx, sessions, deltas, a)
	if err != nil {
		return nil, err
	}
	right, err := s.detail(ctx, sessions, deltas, b)
	if err != nil {
		return nil, err
	}
	return &CompareResponse{
		A: *left,
		B: *right,
		Diff: Delta{
			Overall:  right.OverallScore - left.OverallScore,
			Density:  right.DensityScore - left.DensityScore,
			Hairline: right.HairlineScore - left.HairlineScore,
			Crown:    right.CrownScore - left.CrownScore,
		},
	}, nil
}

// Trend returns the chart series, the weekly streak and score statistics.
func (s *Service) Trend(ctx context.Context, userID uuid.UUID) (*TrendResponse, error) {
	sessions, err := s.repo.ListByUser(ctx, userID, 0)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	return &TrendResponse{
		Series: Series(sessions),
		Streak: Streak(sessions, s.now()),
		Stats:  Summarize(sessions),
	}, nil
}

// Report renders the markdown report of one session.
func (s *Service) Report(ctx context.Context, userID, id uuid.UUID) (string, error) {
	sessions, err := s.repo.ListByUser(ctx, userID, 0)
	if err != nil {
		return "", fmt.Errorf("list sessions: %w", err)
	}
	session := find(sessions, id)
	if session == nil {
		return "", ErrSessionNotFound
	}
	photos, err := s.repo.ListPhotos(ctx, id)
	if err != nil {
		return "", fmt.Errorf("list photos: %w", err)
	}
	return Report(session, deltaPtr(Deltas(sessions), id), photos), nil
}

// Export writes every session of the user as Parquet.
func (s *Service) Export(ctx context.Context, userID uuid.UUID, w io.Writer) (int, error) {
	sessions, err := s.repo.ListByUser(ctx, userID, 0)
	if err != nil {
		return 0, fmt.Errorf("list sessions: %w", err)
	}
	ordered := Chronological(sessions)
	ids := make([]uuid.UUID, 0, len(ordered))
	for _, sess := range ordered {
		ids = append(ids, sess.ID)
	}
	photos, err := s.repo.ListPhotosBySessions(ctx, ids)
	if err != nil {
		return 0, fmt.Errorf("list photos: %w", err)
	}
	if err := WriteParquet(w, ordered, Deltas(ordered), photos); err != nil {
		return 0, err
	}
	return len(ordered), nil
}

func (s *Service) detail(ctx context.Context, sessions []analysis.Session, deltas map[uuid.UUID]Delta, id uuid.UUID) (*SessionResponse, error) {
	session := find(sessions, id)
	if session == nil {
		return nil, ErrSessionNotFound
	}
	photos, err := s.repo.ListPhotos(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("list photos: %w", err)
	}

	resp := SessionResponseFromEntity(session, deltaPtr(deltas, id))
	resp.Photos = s.signPhotos(ctx, photos)
	return &resp, nil
}

func (s *Service) signPhotos(ctx context.Context, photos []analysis.Photo) []PhotoResponse {
	out := make([]PhotoResponse, 0, len(photos))
	for _, p := range photos {
		url, err := s.signer.Sign(ctx, p.PhotoURL)
		if err != nil {
			logger.LogWarn(ctx, "photo url could not be signed", "photo_id", p.ID.String(), "error", err.Error())
			continue
		}
		out = append(out, PhotoResponse{ID: p.ID, Angle: p.Angle, Label: p.Angle.Label(), URL: url})
	}
	return out
}

func find(sessions []analysis.Session, id uuid.UUID) *analysis.Session {
	for i := range sessions {
		if sessions[i].ID == id {
			return &sessions[i]
		}
	}
	return nil
}

func deltaPtr(deltas map[uuid.UUID]Delta, id uuid.UUID) *Delta {
	if d, ok := deltas[id]; ok {
		return &d
	}
	return nil
}
