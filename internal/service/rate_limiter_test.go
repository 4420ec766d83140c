package service

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLimiter(t *testing.T, limit int, window time.Duration) (*RedisLoginLimiter, *fakeClock) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	limiter := NewRedisLoginLimiter(client, limit, window)
	clock := &fakeClock{now: time.Date(2026, time.March, 1, 12, 0, 0, 0, time.UTC)}
	limiter.clock = clock
	return limiter, clock
}

func TestLimiterAllowsUpToLimit(t *testing.T) {
	limiter, _ := newTestLimiter(t, 5, time.Minute)

	for i := 0; i < 5; i++ {
		result, err := limiter.Limit(context.Background(), "1.2.3.4:jo@example.com")
		require.NoError(t, err)
		assert.True(t, result.Allowed, "attempt %d should be admitted", i+1)
		assert.Equal(t, 4-i, result.Remaining)
	}

	result, err := limiter.Limit(context.Background(), "1.2.3.4:jo@example.com")
	require.NoError(t, err)
	assert.False(t, result.Allowed)
	assert.Zero(t, result.Remaining)
	assert.Positive(t, result.RetryAfter)
	assert.LessOrEqual(t, result.RetryAfter, time.Minute)
}

func TestLimiterWindowSlides(t *testing.T) {
	limiter, clock := newTestLimiter(t, 5, time.Minute)
	id := "1.2.3.4:jo@example.com"

	for i := 0; i < 5; i++ {
		_, err := limiter.Limit(context.Background(), id)
		require.NoError(t, err)
	}
	denied, err := limiter.Limit(context.Background(), id)
	require.NoError(t, err)
	require.False(t, denied.Allowed)

	// once the oldest attempt ages out the next one is admitted again
	clock.Advance(61 * time.Second)
	result, err := limiter.Limit(context.Background(), id)
	require.NoError(t, err)
	assert.True(t, result.Allowed)
}

func TestLimiterRetryAfterTracksOldestAttempt(t *testing.T) {
	limiter, clock := newTestLimiter(t, 2, time.Minute)
	id := "1.2.3.4:jo@example.com"

	_, err := limiter.Limit(context.Background(), id)
	require.NoError(t, err)
	clock.Advance(40 * time.Second)
	_, err = limiter.Limit(context.Background(), id)
	require.NoError(t, err)

	result, err := limiter.Limit(context.Background(), id)
	require.NoError(t, err)
	require.False(t, result.Allowed)
	// oldest attempt is 40s old, so the window reopens in ~20s
	assert.InDelta(t, (20 * time.Second).Seconds(), result.RetryAfter.Seconds(), 1)
}

func TestLimiterKeysAreIndependent(t *testing.T) {
	limiter, _ := newTestLimiter(t, 1, time.Minute)

	_, err := limiter.Limit(context.Background(), "1.2.3.4:jo@example.com")
	require.NoError(t, err)
	denied, err := limiter.Limit(context.Background(), "1.2.3.4:jo@example.com")
	require.NoError(t, err)
	assert.False(t, denied.Allowed)

	// a different ip:email pair has its own budget
	other, err := limiter.Limit(context.Background(), "5.6.7.8:jo@example.com")
	require.NoError(t, err)
	assert.True(t, other.Allowed)
}
