package ratelimit

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	redis "github.com/redis/go-redis/v9"
	"github.com/smallbiznis/spendlens/internal/config"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

const (
	keyChatClient     = "chat:client:%s"
	keyChatClientLock = "chat:lock:%s"
)

// ChatLimiter throttles chat requests per client and allows one in-flight
// request per client. A nil *ChatLimiter allows everything.
type ChatLimiter struct {
	bucket  Bucket
	locker  Locker
	rate    float64
	burst   int
	lockTTL time.Duration
}

func NewChatLimiter(lc fx.Lifecycle, cfg config.Config, log *zap.Logger) (*ChatLimiter, error) {
	limitCfg := cfg.RateLimit
	if !limitCfg.Enabled {
		return nil, nil
	}
	if limitCfg.ChatRate <= 0 || limitCfg.ChatBurst <= 0 {
		return nil, errors.New("chat rate limit must be positive")
	}
	log = log.Named("ratelimit")

	addr := strings.TrimSpace(limitCfg.RedisAddr)
	if addr == "" {
		log.Warn("rate limit redis addr not set; using in-process buckets")
		return NewChatLimiterWith(NewMemoryBucket(nil), NewMemoryLocker(nil), limitCfg), nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: strings.TrimSpace(limitCfg.RedisPassword),
		DB:       limitCfg.RedisDB,
	})
	if lc != nil {
		lc.Append(fx.Hook{
			OnStop: func(context.Context) error {
				return client.Close()
			},
		})
	}

	log.Info("chat rate limit enabled",
		zap.String("redis_addr", addr),
		zap.Float64("rate", limitCfg.ChatRate),
		zap.Int("burst", limitCfg.ChatBurst),
	)
	return NewChatLimiterWith(NewTokenBucket(client), NewRedisLocker(client), limitCfg), nil
}

func NewChatLimiterWith(bucket Bucket, locker Locker, cfg config.RateLimitConfig) *ChatLimiter {
	ttl := cfg.ChatLockTTL
	if ttl <= 0 {
		ttl = 45 * time.Second
	}
	return &ChatLimiter{
		bucket:  bucket,
		locker:  locker,
		rate:    cfg.ChatRate,
		burst:   cfg.ChatBurst,
		lockTTL: ttl,
	}
}

func (l *ChatLimiter) Enabled() bool {
	return l != nil && l.bucket != nil
}

func (l *ChatLimiter) AllowClient(ctx context.Context, clientKey string) (*RateLimitResult, error) {
	if !l.Enabled() {
		return &RateLimitResult{Allowed: true}, nil
	}
	return l.bucket.Allow(ctx, fmt.Sprintf(keyChatClient, strings.TrimSpace(clientKey)), l.rate, l.burst)
}

func (l *ChatLimiter) TryLockClient(ctx context.Context, clientKey string) (string, bool, error) {
	if !l.Enabled() || l.locker == nil {
		return "", true, nil
	}
	return l.locker.TryLock(ctx, fmt.Sprintf(keyChatClientLock, strings.TrimSpace(clientKey)), l.lockTTL)
}

func (l *ChatLimiter) ReleaseClient(ctx context.Context, clientKey, token string) error {
	if !l.Enabled() || l.locker == nil || token == "" {
		return nil
	}
	return l.locker.Release(ctx, fmt.Sprintf(keyChatClientLock, strings.TrimSpace(clientKey)), token)
}
