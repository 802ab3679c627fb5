package capture

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/hairtrack/hairtrack-api/internal/domain/analysis"
	"github.com/hairtrack/hairtrack-api/internal/pkg/classifier"
	"github.com/hairtrack/hairtrack-api/internal/pkg/logger"
)

// EventWizardState is pushed after every wizard change.
const EventWizardState = "wizard_state"

// MsgInterrupted is the failure recorded for an analysis whose process went away.
const MsgInterrupted = "Analysis was interrupted"

// Analyzer runs one submission end to end.
type Analyzer interface {
	Run(ctx context.Context, userID uuid.UUID, photos []analysis.PendingPhoto) (*analysis.Outcome, error)
}

// Notifier pushes wizard changes to connected clients.
type Notifier interface {
	Notify(userID uuid.UUID, eventType string, data interface{})
}

// Service handles capture business logic
type Service struct {
	store    Store
	lock     Locker
	acquirer *Acquirer
	analyzer Analyzer
	notifier Notifier
	now      func() time.Time
}

// NewService creates capture service. notifier may be nil.
func NewService(store Store, lock Locker, acquirer *Acquirer, analyzer Analyzer, notifier Notifier) *Service {
	return &Service{
		store:    store,
		lock:     lock,
		acquirer: acquirer,
		analyzer: analyzer,
		notifier: notifier,
		now:      time.Now,
	}
}

// Current returns the user's wizard, creating one at Intro if needed.
// A wizard left in Analyzing with no chain holding the lock is moved to Error.
func (s *Service) Current(ctx context.Context, userID uuid.UUID) (*Wizard, error) {
	w, err := s.store.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	if w != nil {
		if w.Step == StepAnalyzing {
			return s.recoverOrphan(ctx, w)
		}
		return w, nil
	}
	w = NewWizard(userID, s.now().UTC())
	if err := s.store.Save(ctx, w); err != nil {
		return nil, fmt.Errorf("save wizard: %w", err)
	}
	return w, nil
}

func (s *Service) recoverOrphan(ctx context.Context, w *Wizard) (*Wizard, error) {
	acquired, err := s.lock.Acquire(ctx, w.UserID)
	if err != nil {
		return nil, fmt.Errorf("acquire analyzing lock: %w", err)
	}
	if !acquired {
		return w, nil
	}
	defer func() {
		if err := s.lock.Release(ctx, w.UserID); err != nil {
			logger.LogError(ctx, err, "release analyzing lock failed", "user_id", w.UserID.String())
		}
	}()

	_ = w.Fail(classifier.NewError(classifier.KindUnknown, MsgInterrupted, nil), s.now().UTC())
	logger.LogWarn(ctx, "orphaned analysis moved to error", "user_id", w.UserID.String(), "attempt", w.Attempts)
	return s.save(ctx, w)
}

// Fire dispatches a client event. Submit and retry run the analysis chain.
func (s *Service) Fire(ctx context.Context, userID uuid.UUID, ev Event) (*Wizard, error) {
	switch ev {
	case EventSubmit:
		return s.Submit(ctx, userID)
	case EventRetry:
		return s.Retry(ctx, userID)
	}

	w, err := s.Current(ctx, userID)
	if err != nil {
		return nil, err
	}
	if err := w.Apply(ev, s.now().UTC()); err != nil {
		return nil, err
	}
	if ev == EventReset {
		if err := s.store.Delete(ctx, userID); err != nil {
			return nil, fmt.Errorf("discard wizard: %w", err)
		}
		w = NewWizard(userID, w.UpdatedAt)
	}
	return s.save(ctx, w)
}

// SetPhoto validates up and fills the slot for angle.
// A rejected file returns *RejectionError and the stored wizard is not touched.
func (s *Service) SetPhoto(ctx context.Context, userID uuid.UUID, angle analysis.Angle, up Upload) (*Wizard, error) {
	w, err := s.Current(ctx, userID)
	if err != nil {
		return nil, err
	}
	if err := w.editable(); err != nil {
		return nil, err
	}

	photo, err := s.acquirer.Accept(angle, up)
	if err != nil {
		return nil, err
	}
	if err := w.SetPhoto(photo, s.now().UTC()); err != nil {
		return nil, err
	}
	return s.save(ctx, w)
}

// RemovePhoto clears the slot for angle.
func (s *Service) RemovePhoto(ctx context.Context, userID uuid.UUID, angle analysis.Angle) (*Wizard, error) {
	w, err := s.Current(ctx, userID)
	if err != nil {
		return nil, err
	}
	if err := w.RemovePhoto(angle, s.now().UTC()); err != nil {
		return nil, err
	}
	return s.save(ctx, w)
}

// Submit moves Review to Analyzing and runs the chain.
func (s *Service) Submit(ctx context.Context, userID uuid.UUID) (*Wizard, error) {
	return s.analyze(ctx, userID, EventSubmit)
}

// Retry re-runs the chain from Error with the same photo set.
func (s *Service) Retry(ctx context.Context, userID uuid.UUID) (*Wizard, error) {
	return s.analyze(ctx, userID, EventRetry)
}

// EditPhotos returns from Error to Review with every slot intact.
func (s *Service) EditPhotos(ctx context.Context, userID uuid.UUID) (*Wizard, error) {
	return s.Fire(ctx, userID, EventEditPhotos)
}

// Reset discards the wizard and starts again at Intro.
func (s *Service) Reset(ctx context.Context, userID uuid.UUID) (*Wizard, error) {
	return s.Fire(ctx, userID, EventReset)
}

func (s *Service) analyze(ctx context.Context, userID uuid.UUID, ev Event) (*Wizard, error) {
	w, err := s.Current(ctx, userID)
	if err != nil {
		return nil, err
	}
	// Gate before touching the lock so an invalid submit never leaves the process.
	if err := w.Apply(ev, s.now().UTC()); err != nil {
		return nil, err
	}

	acquired, err := s.lock.Acquire(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("acquire analyzing lock: %w", err)
	}
	if !acquired {
		return nil, ErrSubmissionInProgress
	}

	// The chain is not cancellable once started.
	runCtx := context.WithoutCancel(ctx)
	defer func() {
		if err := s.lock.Release(runCtx, userID); err != nil {
			logger.LogError(runCtx, err, "release analyzing lock failed", "user_id", userID.String())
		}
	}()

	if w, err = s.save(runCtx, w); err != nil {
		return nil, err
	}

	photos := make([]analysis.PendingPhoto, 0, len(w.Photos))
	for _, p := range w.Filled() {
		photos = append(photos, analysis.PendingPhoto{
			Angle:       p.Angle,
			Filename:    p.Filename,
			ContentType: p.ContentType,
			Data:        p.Data,
		})
	}

	outcome, runErr := s.analyzer.Run(runCtx, userID, photos)
	now := s.now().UTC()
	if runErr != nil {
		_ = w.Fail(runErr, now)
		logger.LogError(runCtx, runErr, "analysis failed",
			"user_id", userID.String(),
			"kind", string(w.Failure.Kind),
			"attempt", w.Attempts,
		)
	} else {
		_ = w.Succeed(outcome.Session.ID, outcome.Result, now)
	}
	return s.save(runCtx, w)
}

func (s *Service) save(ctx context.Context, w *Wizard) (*Wizard, error) {
	if err := s.store.Save(ctx, w); err != nil {
		return nil, fmt.Errorf("save wizard: %w", err)
	}
	if s.notifier != nil {
		s.notifier.Notify(w.UserID, EventWizardState, WizardResponseFromEntity(w))
	}
	return w, nil
}
