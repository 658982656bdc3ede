package server

import (
	"context"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/smallbiznis/spendlens/internal/observability/logger"
	obsmetrics "github.com/smallbiznis/spendlens/internal/observability/metrics"
	"github.com/smallbiznis/spendlens/internal/ratelimit"
	"go.uber.org/zap"
)

const (
	rateLimitReasonClientRate        = "client-rate"
	rateLimitReasonClientConcurrency = "client-concurrency"
)

// ChatRateLimit throttles chat requests per client IP and holds a per-client
// lock for the duration of the request.
func (s *Server) ChatRateLimit() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !s.chatLimiter.Enabled() {
			c.Next()
			return
		}

		ctx := c.Request.Context()
		endpoint := normalizeRateLimitEndpoint(c)
		client := strings.TrimSpace(c.ClientIP())
		if client == "" {
			client = "unknown"
		}

		result, err := s.chatLimiter.AllowClient(ctx, client)
		if err != nil {
			logger.FromContext(ctx).Warn("chat rate limit check failed", zap.Error(err))
			AbortWithError(c, ErrServiceUnavailable)
			return
		}
		setRateLimitHeaders(c, result)
		if !result.Allowed {
			denyChatRateLimit(c, endpoint, rateLimitReasonClientRate, result.RetryAfter, s.obsMetrics)
			return
		}

		lockToken, allowed, err := s.chatLimiter.TryLockClient(ctx, client)
		if err != nil {
			logger.FromContext(ctx).Warn("chat concurrency lock failed", zap.Error(err))
			AbortWithError(c, ErrServiceUnavailable)
			return
		}
		if !allowed {
			denyChatRateLimit(c, endpoint, rateLimitReasonClientConcurrency, time.Second, s.obsMetrics)
			return
		}
		defer func() {
			// The request context may already be cancelled here.
			releaseCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 2*time.Second)
			defer cancel()
			if err := s.chatLimiter.ReleaseClient(releaseCtx, client, lockToken); err != nil {
				logger.FromContext(ctx).Warn("chat concurrency unlock failed", zap.Error(err))
			}
		}()

		s.obsMetrics.RecordRateLimitAllowed(ctx, endpoint)
		c.Next()
	}
}

func setRateLimitHeaders(c *gin.Context, result *ratelimit.RateLimitResult) {
	if result == nil || result.Limit <= 0 {
		return
	}
	c.Header("X-RateLimit-Limit", strconv.Itoa(result.Limit))
	c.Header("X-RateLimit-Remaining", strconv.Itoa(max(result.Remaining, 0)))
}

func denyChatRateLimit(c *gin.Context, endpoint, reason string, retryAfter time.Duration, metrics *obsmetrics.Metrics) {
	ctx := c.Request.Context()
	logger.FromContext(ctx).Warn("chat rate limit exceeded",
		zap.String("reason", reason),
		zap.String("endpoint", endpoint),
	)
	metrics.RecordRateLimitDenied(ctx, endpoint, reason)

	c.Header("Retry-After", strconv.Itoa(retryAfterSeconds(retryAfter)))
	c.Header("X-Rate-Limited-Reason", reason)
	AbortWithError(c, ErrRateLimited)
}

func retryAfterSeconds(d time.Duration) int {
	if d <= 0 {
		return 1
	}
	return int(math.Ceil(d.Seconds()))
}

func normalizeRateLimitEndpoint(c *gin.Context) string {
	if c == nil {
		return "unknown"
	}
	endpoint := strings.TrimSpace(c.FullPath())
	if endpoint == "" {
		endpoint = strings.TrimSpace(c.Request.URL.Path)
	}
	if endpoint == "" {
		endpoint = "unknown"
	}
	return endpoint
}
