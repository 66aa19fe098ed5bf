package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/lezatlabs/scheduling-backend/pkg/config"
)

// NewRedisClient creates a Redis client and verifies connectivity.
func NewRedisClient(cfg *config.Config) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.GetRedisAddr(),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	return client, nil
}

// BackfillLock serializes backfill runs per meeting across instances
// using SET NX with a TTL.
type BackfillLock struct {
	client *redis.Client
}

// NewBackfillLock creates a Redis-backed backfill lock.
func NewBackfillLock(client *redis.Client) *BackfillLock {
	return &BackfillLock{client: client}
}

func backfillLockKey(meetingID string) string {
	return "backfill:lock:" + meetingID
}

// Acquire returns false when another backfill currently holds the
// meeting. The TTL guards against locks abandoned by a crashed run.
func (l *BackfillLock) Acquire(ctx context.Context, meetingID string, ttl time.Duration) (bool, error) {
	return l.client.SetNX(ctx, backfillLockKey(meetingID), "1", ttl).Result()
}

// Release frees the lock for the meeting.
func (l *BackfillLock) Release(ctx context.Context, meetingID string) error {
	return l.client.Del(ctx, backfillLockKey(meetingID)).Err()
}
