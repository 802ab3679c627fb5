package capture

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/hairtrack/hairtrack-api/internal/domain/analysis"
	"github.com/hairtrack/hairtrack-api/internal/pkg/classifier"
)

// Step is the wizard position. Steps 1 through 5 capture one angle each.
type Step int

const (
	StepIntro     Step = 0
	StepReview    Step = 6
	StepAnalyzing Step = 7
	StepResults   Step = 8
	StepError     Step = 9

	firstCaptureStep Step = 1
	lastCaptureStep  Step = 5
)

// MinPhotos is the smallest set that may be submitted.
const MinPhotos = 2

// IsCapture reports whether s is one of the per-angle capture steps.
func (s Step) IsCapture() bool {
	return s >= firstCaptureStep && s <= lastCaptureStep
}

// Name is the wire name of s.
func (s Step) Name() string {
	switch {
	case s == StepIntro:
		return "intro"
	case s.IsCapture():
		return "capture"
	case s == StepReview:
		return "review"
	case s == StepAnalyzing:
		return "analyzing"
	case s == StepResults:
		return "results"
	case s == StepError:
		return "error"
	default:
		return fmt.Sprintf("step_%d", int(s))
	}
}

// Angle returns the angle captured at s, or "" outside the capture steps.
func (s Step) Angle() analysis.Angle {
	if !s.IsCapture() {
		return ""
	}
	return analysis.Angles()[int(s-firstCaptureStep)].Angle
}

// Event drives the wizard.
type Event string

const (
	EventStart      Event = "start"
	EventNext       Event = "next"
	EventSkip       Event = "skip"
	EventBack       Event = "back"
	EventSubmit     Event = "submit"
	EventRetry      Event = "retry"
	EventEditPhotos Event = "edit_photos"
	EventReset      Event = "reset"
)

// ParseEvent validates a client event name.
func ParseEvent(s string) (Event, error) {
	switch e := Event(s); e {
	case EventStart, EventNext, EventSkip, EventBack, EventSubmit, EventRetry, EventEditPhotos, EventReset:
		return e, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownEvent, s)
}

// Method is how a photo was acquired.
type Method string

const (
	MethodCamera  Method = "camera"
	MethodGallery Method = "gallery"
	MethodFile    Method = "file"
)

// Photo fills one angle slot.
type Photo struct {
	Angle       analysis.Angle `json:"angle"`
	Method      Method         `json:"method"`
	Filename    string         `json:"filename"`
	ContentType string         `json:"content_type"`
	Data        []byte         `json:"data"`
	Preview     string         `json:"preview"`
	CapturedAt  time.Time      `json:"captured_at"`
}

// Failure is the classified outcome of a failed submission.
type Failure struct {
	Kind     classifier.Kind `json:"kind"`
	Message  string          `json:"message"`
	Guidance string          `json:"guidance"`
}

// Wizard is one user's capture flow.
type Wizard struct {
	ID        uuid.UUID                 `json:"id"`
	UserID    uuid.UUID                 `json:"user_id"`
	Step      Step                      `json:"step"`
	Photos    map[analysis.Angle]*Photo `json:"photos"`
	SessionID *uuid.UUID                `json:"session_id,omitempty"`
	Result    *classifier.Result        `json:"result,omitempty"`
	Failure   *Failure                  `json:"failure,omitempty"`
	Attempts  int                       `json:"attempts"`
	CreatedAt time.Time                 `json:"created_at"`
	UpdatedAt time.Time                 `json:"updated_at"`
}

// NewWizard returns a wizard at Intro with no photos.
func NewWizard(userID uuid.UUID, now time.Time) *Wizard {
	return &Wizard{
		ID:        uuid.New(),
		UserID:    userID,
		Step:      StepIntro,
		Photos:    make(map[analysis.Angle]*Photo),
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Filled returns the filled slots in angle order.
func (w *Wizard) Filled() []*Photo {
	out := make([]*Photo, 0, len(w.Photos))
	for _, info := range analysis.Angles() {
		if p, ok := w.Photos[info.Angle]; ok && p != nil {
			out = append(out, p)
		}
	}
	return out
}

// CanSubmit reports whether enough slots are filled.
func (w *Wizard) CanSubmit() bool {
	return len(w.Filled()) >= MinPhotos
}

// Apply performs a client event. Failed events leave w untouched.
func (w *Wizard) Apply(ev Event, now time.Time) error {
	if w.Step == StepAnalyzing {
		return ErrSubmissionInProgress
	}

	next, err := w.target(ev)
	if err != nil {
		return err
	}

	switch ev {
	case EventReset:
		w.ID = uuid.New()
		w.Photos = make(map[analysis.Angle]*Photo)
		w.SessionID = nil
		w.Result = nil
		w.Failure = nil
		w.Attempts = 0
	case EventSubmit, EventRetry:
		w.Failure = nil
		w.Attempts++
	case EventEditPhotos:
		w.Failure = nil
	}
	w.Step = next
	w.UpdatedAt = now
	return nil
}

func (w *Wizard) target(ev Event) (Step, error) {
	s := w.Step
	switch ev {
	case EventStart:
		if s == StepIntro {
			return firstCaptureStep, nil
		}
	case EventNext, EventSkip:
		if s == lastCaptureStep {
			return StepReview, nil
		}
		if s.IsCapture() {
			return s + 1, nil
		}
	case EventBack:
		if s == firstCaptureStep {
			return StepIntro, nil
		}
		if s.IsCapture() {
			return s - 1, nil
		}
		if s == StepReview {
			return lastCaptureStep, nil
		}
	case EventSubmit:
		if s == StepReview {
			if !w.CanSubmit() {
				return s, ErrNotEnoughPhotos
			}
			return StepAnalyzing, nil
		}
	case EventRetry:
		if s == StepError {
			return StepAnalyzing, nil
		}
	case EventEditPhotos:
		if s == StepError {
			return StepReview, nil
		}
	case EventReset:
		return StepIntro, nil
	default:
		return s, fmt.Errorf("%w: %q", ErrUnknownEvent, ev)
	}
	return s, fmt.Errorf("%w: %s from %s", ErrInvalidTransition, ev, s.Name())
}

// Succeed moves an analyzing wizard to Results.
func (w *Wizard) Succeed(sessionID uuid.UUID, result *classifier.Result, now time.Time) error {
	if w.Step != StepAnalyzing {
		return ErrInvalidTransition
	}
	w.Step = StepResults
	w.SessionID = &sessionID
	w.Result = result
	w.Failure = nil
	w.UpdatedAt = now
	return nil
}

// Fail moves an analyzing wizard to Error. Slots are kept for retry.
func (w *Wizard) Fail(err error, now time.Time) error {
	if w.Step != StepAnalyzing {
		return ErrInvalidTransition
	}
	kind := classifier.KindOf(err)
	w.Step = StepError
	w.Failure = &Failure{
		Kind:     kind,
		Message:  classifier.MessageOf(err),
		Guidance: classifier.Guidance(kind),
	}
	w.UpdatedAt = now
	return nil
}

// editable reports whether slots may change in the current step.
func (w *Wizard) editable() error {
	switch {
	case w.Step == StepAnalyzing:
		return ErrSubmissionInProgress
	case w.Step.IsCapture(), w.Step == StepReview:
		return nil
	default:
		return fmt.Errorf("%w: photos are locked in %s", ErrInvalidTransition, w.Step.Name())
	}
}

// SetPhoto fills a slot.
func (w *Wizard) SetPhoto(p *Photo, now time.Time) error {
	if err := w.editable(); err != nil {
		return err
	}
	if w.Photos == nil {
		w.Photos = make(map[analysis.Angle]*Photo)
	}
	w.Photos[p.Angle] = p
	w.UpdatedAt = now
	return nil
}

// RemovePhoto clears a slot, including its preview.
func (w *Wizard) RemovePhoto(angle analysis.Angle, now time.Time) error {
	if err := w.editable(); err != nil {
		return err
	}
	delete(w.Photos, angle)
	w.UpdatedAt = now
	return nil
}
