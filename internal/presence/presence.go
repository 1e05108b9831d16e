// Package presence implements cursor updates and ghost detection: the
// thin layer that rate-limits and broadcasts pointer movement, and
// flags participants whose activity has gone stale. Grounded on the
// reference implementation's presence_service.hpp, using the base
// (non-muting) token-bucket limiter as that reference does.
package presence

import (
	"time"

	"github.com/tanmaysharma2001/collabboard/internal/protocol"
	"github.com/tanmaysharma2001/collabboard/internal/ratelimit"
	"github.com/tanmaysharma2001/collabboard/internal/room"
)

// Service owns the single rate limiter shared by every room's cursor
// traffic, keyed by userId so a reconnect always starts with a fresh
// bucket.
type Service struct {
	limiter *ratelimit.Limiter
}

// New returns a Service preset to the protocol's cursor rate (20 Hz,
// burst 5).
func New() *Service {
	return &Service{limiter: ratelimit.New(protocol.CursorUpdatesPerSecond, protocol.RateLimitBurstSize)}
}

// HandleCursorMove consumes one token for userID; on exhaustion it
// returns false and the move is silently dropped, per spec. On success
// it updates the room's cursor state and broadcasts the new position
// with a fresh sequence number.
func (s *Service) HandleCursorMove(r *room.Room, userID string, x, y float32) bool {
	if !s.limiter.TryConsume(userID, 1) {
		return false
	}
	r.UpdateCursor(userID, x, y)
	msg := protocol.BuildCursorMove(userID, x, y, r.NextSequence())
	r.Broadcast(msg, userID)
	return true
}

// GhostUsers returns the userIds of every participant whose last
// activity is older than timeout.
func GhostUsers(r *room.Room, timeout time.Duration) []string {
	now := time.Now()
	var ghosts []string
	for _, p := range r.Participants() {
		if now.Sub(p.LastActivity) > timeout {
			ghosts = append(ghosts, p.UserID)
		}
	}
	return ghosts
}

// MarkGhostsInactive flips IsActive to false for every current ghost,
// without broadcasting anything.
func MarkGhostsInactive(r *room.Room, timeout time.Duration) {
	for _, userID := range GhostUsers(r, timeout) {
		r.MarkInactive(userID)
	}
}

// RemoveUser drops userID's rate-limit bucket, called from the leave
// path so a departed user leaves no state behind in the limiter.
func (s *Service) RemoveUser(userID string) {
	s.limiter.Remove(userID)
}

// Cleanup drops every rate-limit bucket idle longer than maxIdle,
// returning the number removed. Intended to run on a ticker so buckets
// for users who disconnected without a clean leave don't accumulate.
func (s *Service) Cleanup(maxIdle time.Duration) int {
	return s.limiter.Cleanup(maxIdle)
}
