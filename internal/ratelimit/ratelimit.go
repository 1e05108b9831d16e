// Package ratelimit implements the per-key token-bucket rate limiter
// used to throttle cursor updates and, potentially, other
// high-frequency client actions. It mirrors the bucket used by
// MattFrayser-whiteboard-backend (golang.org/x/time/rate per user),
// wrapped in the bookkeeping (tokensOf, waitTimeMs, idle cleanup, mute
// escalation) the collaborative whiteboard protocol needs.
package ratelimit

import (
	"math"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// Limiter is a thread-safe collection of per-key token buckets sharing
// one refill rate and capacity. New keys start full, allowing an
// initial burst up to capacity.
type Limiter struct {
	mu          sync.Mutex
	refillRate  float64
	capacity    float64
	buckets     map[string]*bucket
}

type bucket struct {
	limiter    *rate.Limiter
	lastUsed   time.Time
}

// New returns a Limiter that refills refillRate tokens per second up to
// capacity tokens per key.
func New(refillRate, capacity float64) *Limiter {
	return &Limiter{
		refillRate: refillRate,
		capacity:   capacity,
		buckets:    make(map[string]*bucket),
	}
}

func (l *Limiter) getOrCreate(key string) *bucket {
	b, ok := l.buckets[key]
	if !ok {
		b = &bucket{
			limiter: rate.NewLimiter(rate.Limit(l.refillRate), int(l.capacity)),
		}
		l.buckets[key] = b
	}
	b.lastUsed = time.Now()
	return b
}

// TryConsume attempts to take n tokens from key's bucket.
// It returns true and deducts the tokens if enough were available.
func (l *Limiter) TryConsume(key string, n float64) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	b := l.getOrCreate(key)
	return b.limiter.AllowN(time.Now(), int(n))
}

// CanConsume reports whether one token is currently available for key,
// without consuming it.
func (l *Limiter) CanConsume(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	b := l.getOrCreate(key)
	return b.limiter.TokensAt(time.Now()) >= 1
}

// TokensOf returns the current token count for key and whether a
// bucket exists for it.
func (l *Limiter) TokensOf(key string) (float64, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	b, ok := l.buckets[key]
	if !ok {
		return 0, false
	}
	return b.limiter.TokensAt(time.Now()), true
}

// Reset restores key's bucket to full capacity, if it exists.
func (l *Limiter) Reset(key string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if b, ok := l.buckets[key]; ok {
		b.limiter = rate.NewLimiter(rate.Limit(l.refillRate), int(l.capacity))
		b.lastUsed = time.Now()
	}
}

// Remove drops key's bucket entirely.
func (l *Limiter) Remove(key string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.buckets, key)
}

// Size returns the number of tracked keys.
func (l *Limiter) Size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.buckets)
}

// Clear drops every tracked bucket.
func (l *Limiter) Clear() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.buckets = make(map[string]*bucket)
}

// WaitTimeMs returns the number of milliseconds until key's bucket will
// have at least one token available, or 0 if one is available now.
func (l *Limiter) WaitTimeMs(key string) int64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	b := l.getOrCreate(key)
	tokens := b.limiter.TokensAt(time.Now())
	if tokens >= 1 {
		return 0
	}
	secondsToWait := (1 - tokens) / l.refillRate
	return int64(math.Ceil(secondsToWait * 1000))
}

// Cleanup drops every bucket whose key has been idle longer than
// maxIdle.
func (l *Limiter) Cleanup(maxIdle time.Duration) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	cutoff := time.Now().Add(-maxIdle)
	removed := 0
	for key, b := range l.buckets {
		if b.lastUsed.Before(cutoff) {
			delete(l.buckets, key)
			removed++
		}
	}
	return removed
}
