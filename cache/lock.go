package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// ActionLock stops the same mutating request from being submitted twice
// while the first is still in flight.
type ActionLock struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewActionLock(rdb *redis.Client, ttl time.Duration) *ActionLock {
	return &ActionLock{rdb: rdb, ttl: ttl}
}

func lockKey(userID, action string) string { return fmt.Sprintf("inv:submit:%s:%s", userID, action) }

// Acquire returns false when the lock is already held. The TTL bounds how
// long a crashed holder can block the action.
func (l *ActionLock) Acquire(ctx context.Context, userID, action string) (bool, error) {
	return l.rdb.SetNX(ctx, lockKey(userID, action), "1", l.ttl).Result()
}

func (l *ActionLock) Release(ctx context.Context, userID, action string) error {
	return l.rdb.Del(ctx, lockKey(userID, action)).Err()
}
