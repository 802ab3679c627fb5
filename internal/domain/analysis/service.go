package analysis

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/hairtrack/hairtrack-api/internal/pkg/classifier"
	"github.com/hairtrack/hairtrack-api/internal/pkg/logger"
)

// MsgSaveFailed is reported when a valid result cannot be stored.
const MsgSaveFailed = "Failed to save analysis results"

// MsgUploadFailed is reported when no photo ends up with a readable URL.
const MsgUploadFailed = "Failed to upload photos"

// Outcome is a persisted analysis.
type Outcome struct {
	Session *Session
	Photos  []Photo
	Result  *classifier.Result
}

// Pipeline runs one submission: uploads, one classifier call, one transaction.
type Pipeline struct {
	repo       Repository
	uploads    *UploadStage
	classifier classifier.Classifier
	now        func() time.Time
}

// NewPipeline creates the analysis pipeline
func NewPipeline(repo Repository, uploads *UploadStage, c classifier.Classifier) *Pipeline {
	return &Pipeline{repo: repo, uploads: uploads, classifier: c, now: time.Now}
}

// Run executes the chain sequentially. Every returned error carries a
// classifier.Kind.
func (p *Pipeline) Run(ctx context.Context, userID uuid.UUID, photos []PendingPhoto) (*Outcome, error) {
	if len(photos) == 0 {
		return nil, ErrNoPhotos
	}
	uploaded, err := p.uploads.Run(ctx, userID, photos)
	if err != nil {
		return nil, err
	}
	if len(uploaded) == 0 {
		return nil, classifier.NewError(classifier.KindUpload, MsgUploadFailed, nil)
	}

	req := classifier.Request{Photos: make([]classifier.PhotoURL, 0, len(uploaded))}
	for _, u := range uploaded {
		req.Photos = append(req.Photos, classifier.PhotoURL{URL: u.URL, Angle: string(u.Angle)})
	}

	prev, err := p.repo.GetLatest(ctx, userID)
	if err != nil {
		logger.LogWarn(ctx, "previous scores unavailable", "user_id", userID.String(), "error", err.Error())
	} else if prev != nil {
		scores := prev.Scores()
		req.Previous = &scores
	}

	result, err := p.classifier.Analyze(ctx, req)
	if err != nil {
		return nil, err
	}
	if err := classifier.Validate(result); err != nil {
		return nil, err
	}

	session := NewSession(userID, result, p.now())
	rows := make([]Photo, 0, len(uploaded))
	for _, u := range uploaded {
		rows = append(rows, Photo{Angle: u.Angle, PhotoURL: u.Key})
	}
	if err := p.repo.CreateWithPhotos(ctx, session, rows); err != nil {
		return nil, classifier.NewError(classifier.KindUnknown, MsgSaveFailed, fmt.Errorf("persist session: %w", err))
	}

	logger.LogInfo(ctx, "Analysis session saved",
		"user_id", userID.String(),
		"session_id", session.ID.String(),
		"photos", len(rows),
		"alert", session.AlertTriggered,
	)
	return &Outcome{Session: session, Photos: rows, Result: result}, nil
}
