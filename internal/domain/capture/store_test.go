package capture

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/hairtrack/hairtrack-api/internal/domain/analysis"
)

func newRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return mr, client
}

func TestStoresRoundTrip(t *testing.T) {
	mr, client := newRedis(t)
	stores := map[string]Store{
		"memory": NewStore(nil, 0),
		"redis":  NewStore(client, time.Hour),
	}

	for name, store := range stores {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			userID := uuid.New()

			missing, err := store.Get(ctx, userID)
			if err != nil || missing != nil {
				t.Fatalf("expected nil wizard, got %v %v", missing, err)
			}

			w := NewWizard(userID, time.Now().UTC().Truncate(time.Second))
			w.Step = StepReview
			w.Photos[analysis.AngleTop] = &Photo{Angle: analysis.AngleTop, Method: MethodCamera, Data: []byte{1, 2, 3}, Preview: "data:image/jpeg;base64,AA=="}
			if err := store.Save(ctx, w); err != nil {
				t.Fatalf("save: %v", err)
			}

			got, err := store.Get(ctx, userID)
			if err != nil {
				t.Fatalf("get: %v", err)
			}
			if got.ID != w.ID || got.Step != StepReview || string(got.Photos[analysis.AngleTop].Data) != "\x01\x02\x03" {
				t.Fatalf("round trip mismatch: %+v", got)
			}

			got.Step = StepIntro
			again, _ := store.Get(ctx, userID)
			if again.Step != StepReview {
				t.Fatal("stored wizard must not alias returned values")
			}

			if err := store.Delete(ctx, userID); err != nil {
				t.Fatalf("delete: %v", err)
			}
			if gone, _ := store.Get(ctx, userID); gone != nil {
				t.Fatal("expected wizard deleted")
			}
		})
	}

	userID := uuid.New()
	_ = stores["redis"].Save(context.Background(), NewWizard(userID, time.Now()))
	if ttl := mr.TTL(wizardKeyPrefix + userID.String()); ttl != time.Hour {
		t.Fatalf("expected 1h ttl, got %s", ttl)
	}
}

func TestLockers(t *testing.T) {
	_, client := newRedis(t)
	lockers := map[string]Locker{
		"memory": NewLocker(nil),
		"redis":  NewLocker(client),
	}

	for name, l := range lockers {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			userID := uuid.New()

			ok, err := l.Acquire(ctx, userID)
			if err != nil || !ok {
				t.Fatalf("first acquire: %v %v", ok, err)
			}
			ok, _ = l.Acquire(ctx, userID)
			if ok {
				t.Fatal("second acquire must fail while held")
			}
			if ok, _ := l.Acquire(ctx, uuid.New()); !ok {
				t.Fatal("locks are per user")
			}
			if err := l.Release(ctx, userID); err != nil {
				t.Fatalf("release: %v", err)
			}
			if ok, _ := l.Acquire(ctx, userID); !ok {
				t.Fatal("expected acquire after release")
			}
		})
	}
}
