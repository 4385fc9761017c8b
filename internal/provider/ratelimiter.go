package provider

import (
	"context"
	"sync"
	"time"
)

// RateLimiter is a token bucket guarding the CoinGecko free tier.
type RateLimiter struct {
	mu         sync.Mutex
	tokens     int
	maxTokens  int
	refillGap  time.Duration
	lastRefill time.Time
}

// NewRateLimiter allows maxTokens calls per refillGap window.
func NewRateLimiter(maxTokens int, refillGap time.Duration) *RateLimiter {
	return &RateLimiter{
		tokens:     maxTokens,
		maxTokens:  maxTokens,
		refillGap:  refillGap,
		lastRefill: time.Now(),
	}
}

// Wait blocks until a token is available or ctx is cancelled.
func (r *RateLimiter) Wait(ctx context.Context) error {
	for {
		if r.tryAcquire() {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(r.refillGap):
		}
	}
}

func (r *RateLimiter) tryAcquire() bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.refill()
	if r.tokens > 0 {
		r.tokens--
		return true
	}
	return false
}

func (r *RateLimiter) refill() {
	elapsed := time.Since(r.lastRefill)
	refills := int(elapsed / r.refillGap)
	if refills > 0 {
		r.tokens += refills
		if r.tokens > r.maxTokens {
			r.tokens = r.maxTokens
		}
		r.lastRefill = r.lastRefill.Add(time.Duration(refills) * r.refillGap)
	}
}
