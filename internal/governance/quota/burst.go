package quota

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const burstKeyPrefix = "generation:burst:"

// BurstLimiter caps how many generation requests a user may start within a
// sliding window, independent of the monthly allowance. It is backed by a
// Redis sorted set per user.
type BurstLimiter struct {
	rdb    redis.Cmdable
	max    int
	window time.Duration
	now    func() time.Time
}

func NewBurstLimiter(rdb redis.Cmdable, max int, window time.Duration) *BurstLimiter {
	return &BurstLimiter{rdb: rdb, max: max, window: window, now: time.Now}
}

// Allow records a request for userID and reports whether it fits the window.
// Rejected requests are not recorded.
func (b *BurstLimiter) Allow(ctx context.Context, userID uuid.UUID) (bool, error) {
	key := burstKeyPrefix + userID.String()
	now := b.now()
	cutoff := strconv.FormatInt(now.Add(-b.window).UnixMilli(), 10)

	pipe := b.rdb.Pipeline()
	pipe.ZRemRangeByScore(ctx, key, "-inf", "("+cutoff)
	countCmd := pipe.ZCard(ctx, key)
	if _, err := pipe.Exec(ctx); err != nil {
		return false, fmt.Errorf("burst limiter (trim+count): %w", err)
	}
	if countCmd.Val() >= int64(b.max) {
		return false, nil
	}

	pipe = b.rdb.Pipeline()
	pipe.ZAdd(ctx, key, redis.Z{
		Score:  float64(now.UnixMilli()),
		Member: fmt.Sprintf("%d:%d", now.UnixNano(), countCmd.Val()),
	})
	pipe.Expire(ctx, key, b.window+30*time.Second)
	if _, err := pipe.Exec(ctx); err != nil {
		return false, fmt.Errorf("burst limiter (add): %w", err)
	}
	return true, nil
}

// InWindow returns the number of requests recorded in the current window.
func (b *BurstLimiter) InWindow(ctx context.Context, userID uuid.UUID) (int, error) {
	key := burstKeyPrefix + userID.String()
	now := b.now()
	n, err := b.rdb.ZCount(ctx, key,
		strconv.FormatInt(now.Add(-b.window).UnixMilli(), 10),
		strconv.FormatInt(now.UnixMilli(), 10),
	).Result()
	if err != nil {
		return 0, fmt.Errorf("counting burst window: %w", err)
	}
	return int(n), nil
}
