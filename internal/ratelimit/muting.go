package ratelimit

import (
	"sync"
	"time"
)

// MutingLimiter wraps a base Limiter with escalating mutes: a key that
// has been rate limited violationsBeforeMute times is muted for
// muteDuration. Successful consumes do not reset the violation count;
// only the end of a mute (or Remove/Clear) does. It is not currently
// wired into the presence path (spec keeps the plain base limiter on
// cursor moves) but is exercised standalone and available for a future
// endpoint that needs abuse escalation.
type MutingLimiter struct {
	mu                  sync.Mutex
	base                *Limiter
	muteDuration        time.Duration
	violationsBeforeMute int
	violations          map[string]int
	mutedUntil          map[string]time.Time
}

// NewMuting returns a MutingLimiter built on a base Limiter with the
// given refill rate and capacity.
func NewMuting(refillRate, capacity float64, muteDuration time.Duration, violationsBeforeMute int) *MutingLimiter {
	return &MutingLimiter{
		base:                 New(refillRate, capacity),
		muteDuration:         muteDuration,
		violationsBeforeMute: violationsBeforeMute,
		violations:           make(map[string]int),
		mutedUntil:           make(map[string]time.Time),
	}
}

// TryConsume consumes one token for key, tracking violations and
// escalating to a mute once violationsBeforeMute failures have accrued
// since the key's last mute ended.
func (m *MutingLimiter) TryConsume(key string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := time.Now()
	if until, muted := m.mutedUntil[key]; muted {
		if now.Before(until) {
			return false
		}
		delete(m.mutedUntil, key)
		delete(m.violations, key)
	}

	if m.base.TryConsume(key, 1) {
		return true
	}

	m.violations[key]++
	if m.violations[key] >= m.violationsBeforeMute {
		m.mutedUntil[key] = now.Add(m.muteDuration)
	}
	return false
}

// IsMuted reports whether key is currently muted.
func (m *MutingLimiter) IsMuted(key string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	until, ok := m.mutedUntil[key]
	if !ok {
		return false
	}
	if time.Now().After(until) {
		delete(m.mutedUntil, key)
		delete(m.violations, key)
		return false
	}
	return true
}

// MuteTimeRemainingMs returns the milliseconds left in key's mute, or 0
// if key is not muted.
func (m *MutingLimiter) MuteTimeRemainingMs(key string) int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	until, ok := m.mutedUntil[key]
	if !ok {
		return 0
	}
	remaining := until.Sub(time.Now())
	if remaining <= 0 {
		delete(m.mutedUntil, key)
		return 0
	}
	return remaining.Milliseconds()
}

// Remove drops all tracking for key: its base bucket, violation count,
// and mute state.
func (m *MutingLimiter) Remove(key string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.base.Remove(key)
	delete(m.violations, key)
	delete(m.mutedUntil, key)
}

// Clear drops all tracked state for every key.
func (m *MutingLimiter) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.base.Clear()
	m.violations = make(map[string]int)
	m.mutedUntil = make(map[string]time.Time)
}
