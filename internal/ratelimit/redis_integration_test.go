//go:build integration

package ratelimit

import (
	"context"
	"testing"
	"time"

	redis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tcRedis "github.com/testcontainers/testcontainers-go/modules/redis"
)

func newRedisClient(t *testing.T) *redis.Client {
	t.Helper()
	ctx := context.Background()

	rdC, err := tcRedis.Run(ctx, "redis:7-alpine")
	require.NoError(t, err)
	t.Cleanup(func() { _ = rdC.Terminate(ctx) })

	uri, err := rdC.ConnectionString(ctx)
	require.NoError(t, err)
	opts, err := redis.ParseURL(uri)
	require.NoError(t, err)

	client := redis.NewClient(opts)
	t.Cleanup(func() { _ = client.Close() })
	return client
}

func TestRedisTokenBucket(t *testing.T) {
	bucket := NewTokenBucket(newRedisClient(t))
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		res, err := bucket.Allow(ctx, "chat:client:test", 0.5, 2)
		require.NoError(t, err)
		assert.True(t, res.Allowed, "request %d", i)
	}

	res, err := bucket.Allow(ctx, "chat:client:test", 0.5, 2)
	require.NoError(t, err)
	assert.False(t, res.Allowed)
	assert.Equal(t, 2, res.Limit)
	assert.Greater(t, res.RetryAfter, time.Duration(0))
}

func TestRedisLocker(t *testing.T) {
	locker := NewRedisLocker(newRedisClient(t))
	ctx := context.Background()

	token, ok, err := locker.TryLock(ctx, "chat:lock:test", 10*time.Second)
	require.NoError(t, err)
	require.True(t, ok)

	_, ok, err = locker.TryLock(ctx, "chat:lock:test", 10*time.Second)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, locker.Release(ctx, "chat:lock:test", "someone-else"))
	_, ok, err = locker.TryLock(ctx, "chat:lock:test", 10*time.Second)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, locker.Release(ctx, "chat:lock:test", token))
	_, ok, err = locker.TryLock(ctx, "chat:lock:test", 10*time.Second)
	require.NoError(t, err)
	assert.True(t, ok)
}
