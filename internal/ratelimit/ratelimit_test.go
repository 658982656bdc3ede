package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/smallbiznis/spendlens/internal/clock"
	"github.com/smallbiznis/spendlens/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func TestMemoryBucketRefills(t *testing.T) {
	fake := clock.NewFakeClock(time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC))
	bucket := NewMemoryBucket(fake.Now)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		res, err := bucket.Allow(ctx, "k", 0.5, 2)
		require.NoError(t, err)
		assert.True(t, res.Allowed)
	}

	res, err := bucket.Allow(ctx, "k", 0.5, 2)
	require.NoError(t, err)
	assert.False(t, res.Allowed)
	assert.Equal(t, 2*time.Second, res.RetryAfter)

	other, err := bucket.Allow(ctx, "other", 0.5, 2)
	require.NoError(t, err)
	assert.True(t, other.Allowed)

	fake.Advance(2 * time.Second)
	res, err = bucket.Allow(ctx, "k", 0.5, 2)
	require.NoError(t, err)
	assert.True(t, res.Allowed)
}

func TestBucketRejectsBadArguments(t *testing.T) {
	bucket := NewMemoryBucket(nil)
	ctx := context.Background()

	_, err := bucket.Allow(ctx, "", 1, 1)
	assert.Error(t, err)
	_, err = bucket.Allow(ctx, "k", 0, 1)
	assert.Error(t, err)
	_, err = bucket.Allow(ctx, "k", 1, 0)
	assert.Error(t, err)
}

func TestMemoryLocker(t *testing.T) {
	fake := clock.NewFakeClock(time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC))
	locker := NewMemoryLocker(fake.Now)
	ctx := context.Background()

	token, ok, err := locker.TryLock(ctx, "k", time.Minute)
	require.NoError(t, err)
	require.True(t, ok)

	_, ok, err = locker.TryLock(ctx, "k", time.Minute)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, locker.Release(ctx, "k", "someone-else"))
	_, ok, _ = locker.TryLock(ctx, "k", time.Minute)
	assert.False(t, ok)

	require.NoError(t, locker.Release(ctx, "k", token))
	_, ok, _ = locker.TryLock(ctx, "k", time.Minute)
	assert.True(t, ok)

	fake.Advance(2 * time.Minute)
	_, ok, _ = locker.TryLock(ctx, "k", time.Minute)
	assert.True(t, ok, "expired locks are reclaimable")
}

func TestNewChatLimiter(t *testing.T) {
	log := zaptest.NewLogger(t)

	limiter, err := NewChatLimiter(nil, config.Config{}, log)
	require.NoError(t, err)
	assert.False(t, limiter.Enabled())

	res, err := limiter.AllowClient(context.Background(), "1.2.3.4")
	require.NoError(t, err)
	assert.True(t, res.Allowed)

	_, err = NewChatLimiter(nil, config.Config{RateLimit: config.RateLimitConfig{Enabled: true}}, log)
	assert.Error(t, err)

	limiter, err = NewChatLimiter(nil, config.Config{RateLimit: config.RateLimitConfig{
		Enabled:   true,
		ChatRate:  1,
		ChatBurst: 1,
	}}, log)
	require.NoError(t, err)
	require.True(t, limiter.Enabled())

	res, err = limiter.AllowClient(context.Background(), "1.2.3.4")
	require.NoError(t, err)
	assert.True(t, res.Allowed)
	res, err = limiter.AllowClient(context.Background(), "1.2.3.4")
	require.NoError(t, err)
	assert.False(t, res.Allowed)
}

func TestCastHelpers(t *testing.T) {
	assert.Equal(t, 1.5, castToFloat("1.5"))
	assert.Equal(t, 2.0, castToFloat(int64(2)))
	assert.Equal(t, 0.0, castToFloat("nope"))
	assert.EqualValues(t, 1, castToInt(int64(1)))
	assert.Equal(t, 20*time.Second, defaultBucketTTL(0.5, 5))
}
