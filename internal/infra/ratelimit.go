// Package infra provides shared infrastructure components used across
// the application: rate limiting and HTTP utilities.
package infra

import (
	"context"
	"sync"
	"time"
)

// GlobalKey is the bucket key used when a caller has no identity.
const GlobalKey = "global"

// --- Rate limiter ---

// RateLimiter provides simple token-bucket rate limiting.
type RateLimiter struct {
	mu         sync.Mutex
	tokens     int
	maxTokens  int
	refillRate time.Duration
	lastRefill time.Time
	now        func() time.Time
}

// NewRateLimiter creates a rate limiter that allows maxTokens requests and
// refills one token every refillRate.
func NewRateLimiter(maxTokens int, refillRate time.Duration) *RateLimiter {
	return newRateLimiter(maxTokens, refillRate, time.Now)
}

func newRateLimiter(maxTokens int, refillRate time.Duration, now func() time.Time) *RateLimiter {
	return &RateLimiter{
		tokens:     maxTokens,
		maxTokens:  maxTokens,
		refillRate: refillRate,
		lastRefill: now(),
		now:        now,
	}
}

// TryTake consumes a token if one is available. It never blocks.
func (rl *RateLimiter) TryTake() bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	rl.refill()
	if rl.tokens > 0 {
		rl.tokens--
		return true
	}
	return false
}

// Wait blocks until a token is available or context is cancelled.
func (rl *RateLimiter) Wait(ctx context.Context) error {
	for {
		if rl.TryTake() {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(100 * time.Millisecond):
			// Check again after a short sleep.
		}
	}
}

// Available returns the number of tokens currently in the bucket.
func (rl *RateLimiter) Available() int {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	rl.refill()
	return rl.tokens
}

// refill adds tokens based on elapsed time. Must be called with mu held.
func (rl *RateLimiter) refill() {
	now := rl.now()
	elapsed := now.Sub(rl.lastRefill)
	if elapsed >= rl.refillRate {
		periods := int(elapsed / rl.refillRate)
		rl.tokens += periods
		if rl.tokens > rl.maxTokens {
			rl.tokens = rl.maxTokens
		}
		rl.lastRefill = rl.lastRefill.Add(time.Duration(periods) * rl.refillRate)
	}
	if rl.tokens == rl.maxTokens {
		// A full bucket does not bank elapsed time.
		rl.lastRefill = now
	}
}

// --- Keyed token bucket ---

// TokenBucket keeps one RateLimiter per caller key. Buckets are created on
// first use and live for the life of the process. capacity tokens refill
// evenly over window.
type TokenBucket struct {
	mu       sync.Mutex
	buckets  map[string]*RateLimiter
	capacity int
	interval time.Duration
	now      func() time.Time
}

// NewTokenBucket creates a keyed limiter allowing capacity calls per window.
func NewTokenBucket(capacity int, window time.Duration) *TokenBucket {
	return NewTokenBucketWithClock(capacity, window, time.Now)
}

// NewTokenBucketWithClock is NewTokenBucket with an injected clock.
func NewTokenBucketWithClock(capacity int, window time.Duration, now func() time.Time) *TokenBucket {
	if capacity <= 0 {
		capacity = 1
	}
	interval := window / time.Duration(capacity)
	if interval <= 0 {
		interval = time.Nanosecond
	}
	return &TokenBucket{
		buckets:  make(map[string]*RateLimiter),
		capacity: capacity,
		interval: interval,
		now:      now,
	}
}

// Allow consumes one token from key's bucket and reports whether the call is
// within budget. An empty key shares the global bucket.
func (tb *TokenBucket) Allow(key string) bool {
	return tb.bucket(key).TryTake()
}

// Remaining reports the tokens left for key without consuming any.
func (tb *TokenBucket) Remaining(key string) int {
	return tb.bucket(key).Available()
}

// Capacity returns the per-key capacity.
func (tb *TokenBucket) Capacity() int { return tb.capacity }

func (tb *TokenBucket) bucket(key string) *RateLimiter {
	if key == "" {
		key = GlobalKey
	}
	tb.mu.Lock()
	defer tb.mu.Unlock()
	rl, ok := tb.buckets[key]
	if !ok {
		rl = newRateLimiter(tb.capacity, tb.interval, tb.now)
		tb.buckets[key] = rl
	}
	return rl
}
