package service

import (
	"context"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

type LimitResult struct {
	Allowed    bool
	Remaining  int
	RetryAfter time.Duration
	Reset      time.Time
}

// LoginLimiter admits or rejects a login attempt for an ip:email identifier.
type LoginLimiter interface {
	Limit(ctx context.Context, identifier string) (LimitResult, error)
}

// RedisLoginLimiter counts attempts in a trailing window using a sorted set
// scored by attempt time. Entries older than the window are trimmed on every
// call and the key expires on its own once traffic stops.
type RedisLoginLimiter struct {
	client *redis.Client
	limit  int
	window time.Duration
	prefix string
	clock  Clock
}

func NewRedisLoginLimiter(client *redis.Client, limit int, window time.Duration) *RedisLoginLimiter {
	if limit <= 0 {
		limit = 5
	}
	if window <= 0 {
		window = time.Minute
	}
	return &RedisLoginLimiter{
		client: client,
		limit:  limit,
		window: window,
		prefix: "ratelimit:login:",
		clock:  RealClock{},
	}
}

func (l *RedisLoginLimiter) Limit(ctx context.Context, identifier string) (LimitResult, error) {
	key := l.prefix + identifier
	now := l.clock.Now()
	windowStart := now.Add(-l.window)

	pipe := l.client.Pipeline()
	pipe.ZRemRangeByScore(ctx, key, "0", strconv.FormatInt(windowStart.UnixNano(), 10))
	countCmd := pipe.ZCard(ctx, key)
	if _, err := pipe.Exec(ctx); err != nil {
		return LimitResult{}, err
	}

	count := int(countCmd.Val())
	if count >= l.limit {
		oldest, err := l.client.ZRangeWithScores(ctx, key, 0, 0).Result()
		if err != nil {
			return LimitResult{}, err
		}
		reset := now.Add(l.window)
		if len(oldest) > 0 {
			reset = time.Unix(0, int64(oldest[0].Score)).Add(l.window)
		}
		retryAfter := reset.Sub(now)
		if retryAfter < time.Second {
			retryAfter = time.Second
		}
		return LimitResult{Allowed: false, Remaining: 0, RetryAfter: retryAfter, Reset: reset}, nil
	}

	record := l.client.Pipeline()
	record.ZAdd(ctx, key, redis.Z{
		Score:  float64(now.UnixNano()),
		Member: uuid.NewString(),
	})
	record.Expire(ctx, key, l.window)
	if _, err := record.Exec(ctx); err != nil {
		return LimitResult{}, err
	}

	return LimitResult{
		Allowed:   true,
		Remaining: l.limit - count - 1,
		Reset:     now.Add(l.window),
	}, nil
}
