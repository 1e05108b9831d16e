package presence

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tanmaysharma2001/collabboard/internal/room"
)

type capturingConn struct{ sent [][]byte }

func (c *capturingConn) Send(message []byte) error {
	c.sent = append(c.sent, message)
	return nil
}
func (c *capturingConn) Close() error  { return nil }
func (c *capturingConn) IsAlive() bool { return true }

func join(r *room.Room, userID string) *capturingConn {
	conn := &capturingConn{}
	r.AddParticipant(&room.UserInfo{UserID: userID, Connection: conn, LastActivity: time.Now(), IsActive: true})
	return conn
}

func TestHandleCursorMoveRateLimitsSixthCallThenRefills(t *testing.T) {
	r := room.New("r1", "")
	join(r, "u1")
	other := join(r, "u2")
	svc := New()

	for i := 0; i < 5; i++ {
		ok := svc.HandleCursorMove(r, "u1", float32(i), float32(i))
		require.True(t, ok, "call %d should be allowed by the initial burst", i)
	}
	assert.False(t, svc.HandleCursorMove(r, "u1", 99, 99), "sixth call exceeds the burst of 5")
	assert.Len(t, other.sent, 5, "only the five accepted moves should broadcast")

	time.Sleep(250 * time.Millisecond) // ~5 tokens refilled at 20Hz
	assert.True(t, svc.HandleCursorMove(r, "u1", 100, 100))
}

func TestHandleCursorMoveUpdatesRoomCursor(t *testing.T) {
	r := room.New("r1", "")
	join(r, "u1")
	svc := New()

	svc.HandleCursorMove(r, "u1", 3, 4)
	cursors := r.Cursors()
	require.Len(t, cursors, 1)
	assert.Equal(t, float32(3), cursors[0].X)
	assert.Equal(t, float32(4), cursors[0].Y)
}

func TestGhostUsersDetectsStaleActivity(t *testing.T) {
	r := room.New("r1", "")
	r.AddParticipant(&room.UserInfo{UserID: "stale", LastActivity: time.Now().Add(-10 * time.Second), IsActive: true})
	r.AddParticipant(&room.UserInfo{UserID: "fresh", LastActivity: time.Now(), IsActive: true})

	ghosts := GhostUsers(r, 3*time.Second)
	assert.Equal(t, []string{"stale"}, ghosts)
}

func TestMarkGhostsInactiveDoesNotBroadcast(t *testing.T) {
	r := room.New("r1", "")
	conn := join(r, "stale")
	r.UpdateCursor("stale", 0, 0)
	// Rather than rewinding the participant's activity, pass a negative
	// timeout so every participant counts as a ghost.
	MarkGhostsInactive(r, -time.Second)

	info, ok := r.Participant("stale")
	require.True(t, ok)
	assert.False(t, info.IsActive)
	assert.Empty(t, conn.sent)
}

func TestRemoveUserDropsBucket(t *testing.T) {
	svc := New()
	r := room.New("r1", "")
	join(r, "u1")
	svc.HandleCursorMove(r, "u1", 0, 0)
	svc.RemoveUser("u1")
	assert.Equal(t, 0, svc.limiter.Size())
}
