package ratelimit

import (
	"context"
	"math"
	"sync"
	"time"
)

type memoryState struct {
	tokens float64
	ts     time.Time
}

// MemoryBucket is the single-process fallback used when no redis address is
// configured. Idle buckets are dropped once they would be full again.
type MemoryBucket struct {
	mu      sync.Mutex
	now     func() time.Time
	buckets map[string]*memoryState
}

func NewMemoryBucket(now func() time.Time) *MemoryBucket {
	if now == nil {
		now = time.Now
	}
	return &MemoryBucket{
		now:     now,
		buckets: make(map[string]*memoryState),
	}
}

func (m *MemoryBucket) Allow(_ context.Context, key string, rate float64, burst int) (*RateLimitResult, error) {
	if err := validateBucket(key, rate, burst); err != nil {
		return &RateLimitResult{Allowed: false}, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	m.evict(now, rate, burst)

	state, ok := m.buckets[key]
	if !ok {
		state = &memoryState{tokens: float64(burst), ts: now}
		m.buckets[key] = state
	} else {
		delta := now.Sub(state.ts).Seconds()
		if delta < 0 {
			delta = 0
		}
		state.tokens = math.Min(float64(burst), state.tokens+delta*rate)
		state.ts = now
	}

	allowed := false
	if state.tokens >= 1 {
		allowed = true
		state.tokens--
	}
	return buildResult(allowed, state.tokens, rate, burst), nil
}

func (m *MemoryBucket) evict(now time.Time, rate float64, burst int) {
	idle := defaultBucketTTL(rate, burst)
	for key, state := range m.buckets {
		if now.Sub(state.ts) > idle {
			delete(m.buckets, key)
		}
	}
}
