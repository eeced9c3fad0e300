package spinlimit

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// Redis is a Tracker backed by a shared Redis counter per key, so the cap
// holds across service instances. INCR is atomic; an increment that
// overshoots the limit is rolled back with DECR, so concurrent callers for
// the same key can never take more than limit reservations between them.
type Redis struct {
	client *redis.Client
}

// NewRedis creates a Redis-backed tracker.
func NewRedis(client *redis.Client) *Redis {
	return &Redis{client: client}
}

// TryReserve implements Tracker.
func (r *Redis) TryReserve(ctx context.Context, campaignID, userID string, limit int) (bool, error) {
	k := key(campaignID, userID)

	n, err := r.client.Incr(ctx, k).Result()
	if err != nil {
		return false, fmt.Errorf("increment spin count: %w", err)
	}

	if n > int64(limit) {
		if err := r.client.Decr(ctx, k).Err(); err != nil {
			return false, fmt.Errorf("roll back spin count: %w", err)
		}
		return false, nil
	}

	return true, nil
}

// Used implements Tracker.
func (r *Redis) Used(ctx context.Context, campaignID, userID string) (int, error) {
	n, err := r.client.Get(ctx, key(campaignID, userID)).Int()
	if err == redis.Nil {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("get spin count: %w", err)
	}
	return n, nil
}

// ResetCampaign implements Tracker. Keys are removed in batches via SCAN so
// large campaigns do not block Redis.
func (r *Redis) ResetCampaign(ctx context.Context, campaignID string) error {
	pattern := key(campaignID, "*")

	iter := r.client.Scan(ctx, 0, pattern, 100).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
		if len(keys) == 100 {
			if err := r.client.Del(ctx, keys...).Err(); err != nil {
				return fmt.Errorf("delete spin counts: %w", err)
			}
			keys = keys[:0]
		}
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("scan spin counts: %w", err)
	}
	if len(keys) > 0 {
		if err := r.client.Del(ctx, keys...).Err(); err != nil {
			return fmt.Errorf("delete spin counts: %w", err)
		}
	}
	return nil
}
