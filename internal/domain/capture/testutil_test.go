package capture

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/hairtrack/hairtrack-api/internal/domain/analysis"
	"github.com/hairtrack/hairtrack-api/internal/pkg/classifier"
	"github.com/hairtrack/hairtrack-api/internal/pkg/imaging"
)

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, color.RGBA{uint8(x), uint8(y), 120, 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	return buf.Bytes()
}

type stubAnalyzer struct {
	mu     sync.Mutex
	calls  [][]analysis.PendingPhoto
	ctxErr []error
	err    error
	block  chan struct{}
}

func (s *stubAnalyzer) Run(ctx context.Context, userID uuid.UUID, photos []analysis.PendingPhoto) (*analysis.Outcome, error) {
	s.mu.Lock()
	s.calls = append(s.calls, photos)
	s.ctxErr = append(s.ctxErr, ctx.Err())
	block, err := s.block, s.err
	s.mu.Unlock()

	if block != nil {
		<-block
	}
	if err != nil {
		return nil, err
	}
	res := &classifier.Result{OverallScore: 70, DensityScore: 65, HairlineScore: 72, CrownScore: 60, AISummary: "Stable."}
	return &analysis.Outcome{
		Session: analysis.NewSession(userID, res, time.Now()),
		Result:  res,
	}, nil
}

func (s *stubAnalyzer) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.calls)
}

type recordingNotifier struct {
	mu     sync.Mutex
	events []WizardResponse
}

func (n *recordingNotifier) Notify(userID uuid.UUID, eventType string, data interface{}) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if w, ok := data.(WizardResponse); ok && eventType == EventWizardState {
		n.events = append(n.events, w)
	}
}

type fixture struct {
	svc      *Service
	store    Store
	lock     Locker
	analyzer *stubAnalyzer
	notifier *recordingNotifier
	userID   uuid.UUID
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		store:    NewMemoryStore(),
		lock:     NewMemoryLocker(),
		analyzer: &stubAnalyzer{},
		notifier: &recordingNotifier{},
		userID:   uuid.New(),
	}
	acq := NewAcquirer(imaging.NewProcessor(imaging.DefaultConfig()))
	f.svc = NewService(f.store, f.lock, acq, f.analyzer, f.notifier)
	return f
}

func (f *fixture) fire(t *testing.T, events ...Event) *Wizard {
	t.Helper()
	var w *Wizard
	for _, ev := range events {
		var err error
		w, err = f.svc.Fire(context.Background(), f.userID, ev)
		if err != nil {
			t.Fatalf("fire %s: %v", ev, err)
		}
	}
	return w
}

func (f *fixture) addPhoto(t *testing.T, angle analysis.Angle) {
	t.Helper()
	_, err := f.svc.SetPhoto(context.Background(), f.userID, angle, Upload{
		Method:      MethodFile,
		Filename:    string(angle) + ".png",
		ContentType: "image/png",
		Data:        pngBytes(t, 40, 30),
	})
	if err != nil {
		t.Fatalf("set photo %s: %v", angle, err)
	}
}

// toReview fills the given angles while walking through all five capture steps.
func (f *fixture) toReview(t *testing.T, angles ...analysis.Angle) *Wizard {
	t.Helper()
	f.fire(t, EventStart)
	for _, a := range analysis.Angles() {
		for _, want := range angles {
			if want == a.Angle {
				f.addPhoto(t, a.Angle)
			}
		}
		f.fire(t, EventNext)
	}
	w, err := f.store.Get(context.Background(), f.userID)
	if err != nil || w.Step != StepReview {
		t.Fatalf("expected review, got %+v %v", w, err)
	}
	return w
}
