package lock

import (
	"context"
	"errors"
	"fmt"
	"time"

	"fivebells/internal/domain/world"
	"fivebells/pkg/id"

	"github.com/redis/go-redis/v9"
)

var ErrLockFailed = errors.New("lock is held by another owner")

// unlockScript deletes the key only while it still carries our token.
var unlockScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// refreshScript extends the expiry only while the key still carries our token.
var refreshScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("PEXPIRE", KEYS[1], ARGV[2])
end
return 0
`)

// DistributedLock is a SET NX lease on one key. The token identifies the
// holder so an expired holder cannot release a successor's lease.
type DistributedLock struct {
	client     *redis.Client
	key        string
	token      string
	expiration time.Duration
}

func NewDistributedLock(client *redis.Client, key, token string, expiration time.Duration) *DistributedLock {
	return &DistributedLock{client: client, key: key, token: token, expiration: expiration}
}

// TryLock does not block.
func (l *DistributedLock) TryLock(ctx context.Context) (bool, error) {
	return l.client.SetNX(ctx, l.key, l.token, l.expiration).Result()
}

// Lock retries TryLock every retryInterval, at most maxRetries times.
func (l *DistributedLock) Lock(ctx context.Context, retryInterval time.Duration, maxRetries int) error {
	for i := 0; i < maxRetries; i++ {
		ok, err := l.TryLock(ctx)
		if err != nil {
			return err
		}
		if ok {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(retryInterval):
		}
	}
	return ErrLockFailed
}

func (l *DistributedLock) Unlock(ctx context.Context) error {
	return unlockScript.Run(ctx, l.client, []string{l.key}, l.token).Err()
}

// Refresh resets the expiry of a lease we still hold. It returns
// ErrLockFailed when the lease expired or changed hands.
func (l *DistributedLock) Refresh(ctx context.Context) error {
	n, err := refreshScript.Run(ctx, l.client, []string{l.key}, l.token, l.expiration.Milliseconds()).Int64()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%w: %s expired", ErrLockFailed, l.key)
	}
	return nil
}

// WorldLocker hands out one lease per world so two triggers never evaluate
// the same world at once. The ttl must outlast a single tick; the evaluator
// renews the lease between ticks.
type WorldLocker struct {
	client *redis.Client
	ttl    time.Duration
}

func NewWorldLocker(client *redis.Client, ttl time.Duration) *WorldLocker {
	if ttl <= 0 {
		ttl = time.Minute
	}
	return &WorldLocker{client: client, ttl: ttl}
}

func WorldKey(worldID uint64) string { return fmt.Sprintf("fivebells:lock:world:%d", worldID) }

// Acquire fails fast with ErrLockFailed when the world is already locked.
func (w *WorldLocker) Acquire(ctx context.Context, worldID uint64) (world.Lease, error) {
	l := NewDistributedLock(w.client, WorldKey(worldID), id.NewID32(), w.ttl)
	ok, err := l.TryLock(ctx)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%w: world %d", ErrLockFailed, worldID)
	}
	return worldLease{l}, nil
}

type worldLease struct{ *DistributedLock }

func (l worldLease) Renew(ctx context.Context) error   { return l.Refresh(ctx) }
func (l worldLease) Release(ctx context.Context) error { return l.Unlock(ctx) }
