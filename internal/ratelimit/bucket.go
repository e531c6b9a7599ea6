// Package ratelimit implements the token-bucket admission gate shared by all
// generation callers. Refill is computed lazily on each call; there is no
// background goroutine to coordinate.
package ratelimit

import (
	"sync"
	"time"
)

// Bucket is a token bucket holding at most capacity tokens, refilled at a
// constant rate of capacity tokens per window. Safe for concurrent use.
type Bucket struct {
	mu         sync.Mutex
	capacity   float64
	window     time.Duration
	tokens     float64
	lastRefill time.Time
	now        func() time.Time
}

// NewBucket creates a full bucket. Non-positive capacity or window fall back
// to 1 so a misconfigured limiter degrades to "one request per second"
// instead of dividing by zero.
func NewBucket(capacity int, window time.Duration) *Bucket {
	if capacity <= 0 {
		capacity = 1
	}
	if window <= 0 {
		window = time.Second
	}
	b := &Bucket{
		capacity: float64(capacity),
		window:   window,
		tokens:   float64(capacity),
		now:      time.Now,
	}
	b.lastRefill = b.now()
	return b
}

// TryAdmit refills and, when at least one token is present, deducts one and
// returns true. A false return is an immediate rejection; it never blocks.
func (b *Bucket) TryAdmit() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.refillLocked()
	if b.tokens >= 1 {
		b.tokens--
		return true
	}
	return false
}

// Remaining refills and reports the current token count without deducting.
func (b *Bucket) Remaining() float64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.refillLocked()
	return b.tokens
}

// Capacity returns the configured burst size.
func (b *Bucket) Capacity() int {
	return int(b.capacity)
}

// Window returns the configured refill window.
func (b *Bucket) Window() time.Duration {
	return b.window
}

func (b *Bucket) refillLocked() {
	now := b.now()
	elapsed := now.Sub(b.lastRefill)
	if elapsed <= 0 {
		return
	}
	b.tokens += elapsed.Seconds() * (b.capacity / b.window.Seconds())
	if b.tokens > b.capacity {
		b.tokens = b.capacity
	}
	b.lastRefill = now
}
