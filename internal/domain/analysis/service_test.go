package analysis

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/hairtrack/hairtrack-api/internal/pkg/classifier"
	"github.com/hairtrack/hairtrack-api/internal/pkg/database/dbtest"
)

func TestPipelineCreatesOneSessionAndNPhotos(t *testing.T) {
	all := []Angle{AngleTop, AngleHairline, AngleLeftTemple, AngleRightTemple, AngleCrown}
	for n := 2; n <= 5; n++ {
		db := dbtest.Open(t)
		repo := NewRepository(db)
		userID := createUser(t, db)
		stub := &stubClassifier{result: okResult(70)}
		p := NewPipeline(repo, NewUploadStage(newMemStore(), "", 0), stub)

		out, err := p.Run(context.Background(), userID, pending(all[:n]...))
		if err != nil {
			t.Fatalf("n=%d: run: %v", n, err)
		}

		var sessions, photos int
		if err := db.Get(&sessions, `SELECT COUNT(*) FROM analysis_sessions`); err != nil {
			t.Fatal(err)
		}
		if err := db.Get(&photos, db.Rebind(`SELECT COUNT(*) FROM analysis_photos WHERE session_id = ?`), out.Session.ID); err != nil {
			t.Fatal(err)
		}
		if sessions != 1 || photos != n {
			t.Fatalf("n=%d: expected 1 session and %d photos, got %d and %d", n, n, sessions, photos)
		}
		if len(stub.calls) != 1 || len(stub.calls[0].Photos) != n {
			t.Fatalf("n=%d: expected one classifier call with %d urls", n, n)
		}
		if stub.calls[0].Previous != nil {
			t.Fatalf("n=%d: expected no previous scores for first session", n)
		}
	}
}

func TestPipelinePassesPreviousScores(t *testing.T) {
	db := dbtest.Open(t)
	repo := NewRepository(db)
	userID := createUser(t, db)
	stub := &stubClassifier{result: okResult(65)}
	p := NewPipeline(repo, NewUploadStage(newMemStore(), "", 0), stub)
	p.now = func() time.Time { return time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC) }

	if _, err := p.Run(context.Background(), userID, pending(AngleTop, AngleCrown)); err != nil {
		t.Fatalf("first run: %v", err)
	}
	stub.result = okResult(70)
	p.now = func() time.Time { return time.Date(2024, 1, 8, 10, 0, 0, 0, time.UTC) }
	if _, err := p.Run(context.Background(), userID, pending(AngleTop, AngleCrown)); err != nil {
		t.Fatalf("second run: %v", err)
	}

	prev := stub.calls[1].Previous
	if prev == nil || prev.Overall != 65 || prev.Density != 60 || prev.Hairline != 70 || prev.Crown != 55 {
		t.Fatalf("expected previous scores from first session, got %+v", prev)
	}
}

func TestPipelineFailuresPersistNothing(t *testing.T) {
	cases := []struct {
		name  string
		store func() *memStore
		stub  *stubClassifier
		kind  classifier.Kind
	}{
		{"upload", func() *memStore { s := newMemStore(); s.failUpload = "_top."; return s }, &stubClassifier{result: okResult(1)}, classifier.KindUpload},
		{"nothing signed", func() *memStore { s := newMemStore(); s.failSign = "_"; return s }, &stubClassifier{result: okResult(1)}, classifier.KindUpload},
		{"rate limit", newMemStore, &stubClassifier{err: classifier.NewError(classifier.KindRateLimit, classifier.MsgRateLimit, nil)}, classifier.KindRateLimit},
		{"out of range", newMemStore, &stubClassifier{result: okResult(101)}, classifier.KindUnknown},
		{"untagged", newMemStore, &stubClassifier{err: errors.New("socket closed")}, classifier.KindUnknown},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			db := dbtest.Open(t)
			userID := createUser(t, db)
			p := NewPipeline(NewRepository(db), NewUploadStage(tc.store(), "", 0), tc.stub)

			out, err := p.Run(context.Background(), userID, pending(AngleTop, AngleCrown))
			if out != nil || classifier.KindOf(err) != tc.kind {
				t.Fatalf("expected %s failure, got out=%v err=%v", tc.kind, out, err)
			}
			var n int
			if err := db.Get(&n, `SELECT COUNT(*) FROM analysis_sessions`); err != nil || n != 0 {
				t.Fatalf("expected nothing persisted, got %d %v", n, err)
			}
			if tc.kind == classifier.KindUpload && len(tc.stub.calls) != 0 {
				t.Fatal("classifier must not be called after an upload failure")
			}
		})
	}
}

func TestPipelineRejectsEmptySubmission(t *testing.T) {
	stub := &stubClassifier{result: okResult(70)}
	p := NewPipeline(nil, NewUploadStage(newMemStore(), "", 0), stub)

	if _, err := p.Run(context.Background(), uuid.New(), nil); !errors.Is(err, ErrNoPhotos) {
		t.Fatalf("expected ErrNoPhotos, got %v", err)
	}
	if len(stub.calls) != 0 {
		t.Fatal("classifier must not be called")
	}
}
