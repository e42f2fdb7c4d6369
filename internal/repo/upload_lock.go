package repo

import (
	"GoLocker/config"
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// lockPollInterval is how often a contended lock is re-attempted.
const lockPollInterval = 50 * time.Millisecond

// UploadLocker serializes uploads per user so the quota check-then-write
// window cannot be raced by a second upload from the same user.
type UploadLocker struct {
	rdb  *redis.Client
	ttl  time.Duration
	wait time.Duration
}

// NewUploadLocker builds an UploadLocker on a Redis client.
func NewUploadLocker(rdb *redis.Client) *UploadLocker {
	ttl := config.AppConfig.UploadLockTTL
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	wait := config.AppConfig.UploadLockWait
	if wait < 0 {
		wait = 0
	}
	return &UploadLocker{rdb: rdb, ttl: ttl, wait: wait}
}

// Lock acquires the per-user upload lock and returns its release function.
// A contended lock is retried until wait elapses, so a second upload from
// the same user briefly queues instead of skipping the serialization.
func (l *UploadLocker) Lock(ctx context.Context, userID uint64) (func(), error) {
	lock := NewRedisLock(l.rdb, fmt.Sprintf("upload:user:%d", userID), l.ttl)
	if err := waitForLock(ctx, lock.Lock, l.wait, lockPollInterval); err != nil {
		return nil, err
	}
	return func() { _ = lock.Unlock(context.Background()) }, nil
}

// waitForLock retries a busy lock until wait elapses. Any error other than
// ErrLockBusy aborts immediately.
func waitForLock(ctx context.Context, attempt func(context.Context) error, wait, interval time.Duration) error {
	deadline := time.Now().Add(wait)
	for {
		err := attempt(ctx)
		if err == nil || !errors.Is(err, ErrLockBusy) {
			return err
		}
		if !time.Now().Add(interval).Before(deadline) {
			return err
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(interval):
		}
	}
}
