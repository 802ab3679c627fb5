package analysis

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/hairtrack/hairtrack-api/internal/pkg/classifier"
)

type memStore struct {
	mu         sync.Mutex
	objects    map[string][]byte
	uploads    []string
	failUpload string // key substring
	failSign   string
}

func newMemStore() *memStore {
	return &memStore{objects: map[string][]byte{}}
}

func (m *memStore) Upload(ctx context.Context, bucket, key string, data []byte, contentType string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.uploads = append(m.uploads, key)
	if m.failUpload != "" && strings.Contains(key, m.failUpload) {
		return errors.New("storage unavailable")
	}
	m.objects[bucket+"/"+key] = data
	return nil
}

func (m *memStore) CreateSignedURL(ctx context.Context, bucket, key string, ttl time.Duration) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failSign != "" && strings.Contains(key, m.failSign) {
		return "", errors.New("sign failed")
	}
	if _, ok := m.objects[bucket+"/"+key]; !ok {
		return "", errors.New("object not found")
	}
	return "https://signed.test/" + bucket + "/" + key + "?ttl=" + ttl.String(), nil
}

func (m *memStore) Delete(ctx context.Context, bucket, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.objects, bucket+"/"+key)
	return nil
}

type stubClassifier struct {
	calls  []classifier.Request
	result *classifier.Result
	err    error
}

func (s *stubClassifier) Analyze(ctx context.Context, req classifier.Request) (*classifier.Result, error) {
	s.calls = append(s.calls, req)
	if s.err != nil {
		return nil, s.err
	}
	res := *s.result
	return &res, nil
}

func okResult(overall int) *classifier.Result {
	return &classifier.Result{
		OverallScore:  overall,
		DensityScore:  60,
		HairlineScore: 70,
		CrownScore:    55,
		AISummary:     "Density looks stable across angles.",
	}
}

func createUser(t *testing.T, db *sqlx.DB) uuid.UUID {
	t.Helper()
	id := uuid.New()
	_, err := db.Exec(db.Rebind(`INSERT INTO users (id, email, password_hash, created_at, updated_at) VALUES (?, ?, ?, ?, ?)`),
		id, id.String()+"@example.com", "x", time.Now().UTC(), time.Now().UTC())
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	return id
}

func pending(angles ...Angle) []PendingPhoto {
	out := make([]PendingPhoto, 0, len(angles))
	for _, a := range angles {
		out = append(out, PendingPhoto{Angle: a, Filename: string(a) + ".jpg", ContentType: "image/jpeg", Data: []byte("jpeg-" + a)})
	}
	return out
}
