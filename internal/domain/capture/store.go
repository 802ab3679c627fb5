package capture

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// DefaultWizardTTL bounds how long an idle wizard is kept.
const DefaultWizardTTL = 24 * time.Hour

const wizardKeyPrefix = "capture:wizard:"

// Store keeps one wizard per user.
type Store interface {
	// Get returns nil, nil when the user has no wizard.
	Get(ctx context.Context, userID uuid.UUID) (*Wizard, error)
	Save(ctx context.Context, w *Wizard) error
	Delete(ctx context.Context, userID uuid.UUID) error
}

// NewStore picks the Redis store when a client is available.
func NewStore(client *redis.Client, ttl time.Duration) Store {
	if client == nil {
		return NewMemoryStore()
	}
	return NewRedisStore(client, ttl)
}

type redisStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisStore stores wizards as JSON with a sliding TTL.
func NewRedisStore(client *redis.Client, ttl time.Duration) Store {
	if ttl <= 0 {
		ttl = DefaultWizardTTL
	}
	return &redisStore{client: client, ttl: ttl}
}

func (s *redisStore) Get(ctx context.Context, userID uuid.UUID) (*Wizard, error) {
	data, err := s.client.Get(ctx, wizardKeyPrefix+userID.String()).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load wizard: %w", err)
	}
	var w Wizard
	if err := json.Unmarshal(data, &w); err != nil {
		return nil, fmt.Errorf("decode wizard: %w", err)
	}
	return &w, nil
}

func (s *redisStore) Save(ctx context.Context, w *Wizard) error {
	data, err := json.Marshal(w)
	if err != nil {
		return fmt.Errorf("encode wizard: %w", err)
	}
	return s.client.Set(ctx, wizardKeyPrefix+w.UserID.String(), data, s.ttl).Err()
}

func (s *redisStore) Delete(ctx context.Context, userID uuid.UUID) error {
	return s.client.Del(ctx, wizardKeyPrefix+userID.String()).Err()
}

type memoryStore struct {
	mu      sync.Mutex
	wizards map[uuid.UUID][]byte
}

// NewMemoryStore keeps wizards in process. Values are copied on every access.
func NewMemoryStore() Store {
	return &memoryStore{wizards: make(map[uuid.UUID][]byte)}
}

func (s *memoryStore) Get(ctx context.Context, userID uuid.UUID) (*Wizard, error) {
	s.mu.Lock()
	data, ok := s.wizards[userID]
	s.mu.Unlock()
	if !ok {
		return nil, nil
	}
	var w Wizard
	if err := json.Unmarshal(data, &w); err != nil {
		return nil, err
	}
	return &w, nil
}

func (s *memoryStore) Save(ctx context.Context, w *Wizard) error {
	data, err := json.Marshal(w)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.wizards[w.UserID] = data
	s.mu.Unlock()
	return nil
}

func (s *memoryStore) Delete(ctx context.Context, userID uuid.UUID) error {
	s.mu.Lock()
	delete(s.wizards, userID)
	s.mu.Unlock()
	return nil
}
