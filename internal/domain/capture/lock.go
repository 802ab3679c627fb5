package capture

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// analyzingLockTTL only reclaims locks left by a crashed instance.
const analyzingLockTTL = 15 * time.Minute

const analyzingKeyPrefix = "capture:analyzing:"

// Locker guards the Analyzing step per user across instances.
type Locker interface {
	// Acquire reports false when another submission holds the lock.
	Acquire(ctx context.Context, userID uuid.UUID) (bool, error)
	Release(ctx context.Context, userID uuid.UUID) error
}

// NewLocker picks the Redis lock when a client is available.
func NewLocker(client *redis.Client) Locker {
	if client == nil {
		return NewMemoryLocker()
	}
	return &redisLocker{client: client}
}

type redisLocker struct {
	client *redis.Client
}

func (l *redisLocker) Acquire(ctx context.Context, userID uuid.UUID) (bool, error) {
	return l.client.SetNX(ctx, analyzingKeyPrefix+userID.String(), time.Now().UTC().Format(time.RFC3339), analyzingLockTTL).Result()
}

func (l *redisLocker) Release(ctx context.Context, userID uuid.UUID) error {
	return l.client.Del(ctx, analyzingKeyPrefix+userID.String()).Err()
}

type memoryLocker struct {
	mu   sync.Mutex
	held map[uuid.UUID]bool
}

// NewMemoryLocker returns a process-local lock.
func NewMemoryLocker() Locker {
	return &memoryLocker{held: make(map[uuid.UUID]bool)}
}

func (l *memoryLocker) Acquire(ctx context.Context, userID uuid.UUID) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.held[userID] {
		return false, nil
	}
	l.held[userID] = true
	return true, nil
}

func (l *memoryLocker) Release(ctx context.Context, userID uuid.UUID) error {
	l.mu.Lock()
	delete(l.held, userID)
	l.mu.Unlock()
	return nil
}
