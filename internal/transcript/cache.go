package transcript

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/viralscript/viralscript/internal/video"
)

const cacheKeyPrefix = "transcript:"

// CachedSource memoizes successful fetches of the wrapped source in Redis.
// Redis failures are logged and the wrapped source is used directly.
type CachedSource struct {
	next  Source
	redis *redis.Client
	ttl   time.Duration
}

func NewCachedSource(next Source, rdb *redis.Client, ttl time.Duration) *CachedSource {
	return &CachedSource{next: next, redis: rdb, ttl: ttl}
}

func cacheKey(url string) string {
	sum := sha256.Sum256([]byte(url))
	return cacheKeyPrefix + hex.EncodeToString(sum[:])
}

func (c *CachedSource) Fetch(ctx context.Context, ref video.Reference) (string, error) {
	key := cacheKey(ref.URL)

	cached, err := c.redis.Get(ctx, key).Result()
	switch {
	case err == nil:
		slog.Debug("transcript cache hit", "url", ref.URL)
		return cached, nil
	case !errors.Is(err, redis.Nil):
		slog.Warn("transcript cache read failed", "error", err)
	}

	text, err := c.next.Fetch(ctx, ref)
	if err != nil {
		return "", err
	}

	if err := c.redis.Set(ctx, key, text, c.ttl).Err(); err != nil {
		slog.Warn("transcript cache write failed", "error", err)
	}
	return text, nil
}
