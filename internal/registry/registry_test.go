package registry

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tanmaysharma2001/collabboard/internal/protocol"
	"github.com/tanmaysharma2001/collabboard/internal/room"
)

type capturingConn struct {
	sent  [][]byte
	alive bool
}

func newConn() *capturingConn { return &capturingConn{alive: true} }

func (c *capturingConn) Send(message []byte) error {
	c.sent = append(c.sent, message)
	return nil
}
func (c *capturingConn) Close() error  { c.alive = false; return nil }
func (c *capturingConn) IsAlive() bool { return c.alive }

func decodeType(t *testing.T, raw []byte) protocol.MessageType {
	t.Helper()
	var env struct {
		Type protocol.MessageType `json:"type"`
	}
	require.NoError(t, json.Unmarshal(raw, &env))
	return env.Type
}

func TestSoloJoinThenSnapshot(t *testing.T) {
	reg := New(0)
	conn := newConn()

	result, errCode := reg.Join("R", "Alice", "", conn)
	require.Empty(t, errCode)
	require.NotEmpty(t, result.UserID)
	require.NotEmpty(t, result.Color)

	require.Len(t, conn.sent, 2)
	assert.Equal(t, protocol.Welcome, decodeType(t, conn.sent[0]))
	assert.Equal(t, protocol.RoomState, decodeType(t, conn.sent[1]))

	var welcome struct {
		Seq  uint64 `json:"seq"`
		Data struct {
			UserID string                  `json:"userId"`
			Users  []protocol.UserSummary `json:"users"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(conn.sent[0], &welcome))
	require.Len(t, welcome.Data.Users, 1, "welcome.users must include the joiner")
	assert.Equal(t, result.UserID, welcome.Data.Users[0].UserID)

	var state struct {
		Seq  uint64 `json:"seq"`
		Data struct {
			Strokes     []protocol.StrokeSnapshot `json:"strokes"`
			SnapshotSeq uint64                     `json:"snapshotSeq"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(conn.sent[1], &state))
	assert.Empty(t, state.Data.Strokes)
	assert.Equal(t, welcome.Seq, state.Seq, "join's room_state reads the counter left by welcome, it does not draw a third sequence number")
	assert.Equal(t, welcome.Seq, state.Data.SnapshotSeq)
}

func TestCapacityRejectsSixteenthJoiner(t *testing.T) {
	reg := New(0)
	for i := 0; i < protocol.MaxUsersPerRoom-1; i++ {
		_, errCode := reg.Join("R", "user", "", newConn())
		require.Empty(t, errCode)
	}

	observer := newConn()
	reg.Join("R", "observer", "", observer)
	observer.sent = nil

	rejected := newConn()
	_, errCode := reg.Join("R", "overflow", "", rejected)
	assert.Equal(t, protocol.ErrRoomFull, errCode)
	assert.Empty(t, rejected.sent)
	assert.Empty(t, observer.sent, "no user_joined broadcast for a rejected join")
}

func TestPasswordMismatchThenCorrectPassword(t *testing.T) {
	reg := New(0)
	_, errCode := reg.Join("P", "owner", "secret", newConn())
	require.Empty(t, errCode)

	_, errCode = reg.Join("P", "x", "wrong", newConn())
	assert.Equal(t, protocol.ErrInvalidPassword, errCode)

	_, errCode = reg.Join("P", "x", "secret", newConn())
	assert.Empty(t, errCode)
}

func TestFirstCallerSetsPasswordOnNotYetExistingRoom(t *testing.T) {
	reg := New(0)
	_, errCode := reg.Join("fresh", "first", "mypass", newConn())
	require.Empty(t, errCode)

	_, errCode = reg.Join("fresh", "second", "wrong", newConn())
	assert.Equal(t, protocol.ErrInvalidPassword, errCode)
}

func TestEmptyRoomGraceExpiryReturnsFreshRoom(t *testing.T) {
	reg := New(20 * time.Millisecond)
	conn := newConn()
	result, errCode := reg.Join("R", "solo", "", conn)
	require.Empty(t, errCode)

	reg.Leave("R", result.UserID)
	assert.True(t, reg.RoomExists("R"), "room must still exist immediately after emptying")

	time.Sleep(40 * time.Millisecond)
	fresh := reg.GetOrCreateRoom("R", "")
	assert.Empty(t, fresh.Strokes(), "room recreated after grace expiry must be empty")
}

func TestJoinBeforeGraceExpiryReusesSameRoom(t *testing.T) {
	reg := New(time.Minute)
	first := newConn()
	result, _ := reg.Join("R", "solo", "", first)
	r1, _ := reg.Room("R")
	r1.AddStroke(&room.Stroke{StrokeID: "s1"})

	reg.Leave("R", result.UserID)
	require.True(t, reg.RoomExists("R"))

	second := newConn()
	reg.Join("R", "rejoiner", "", second)
	r2, _ := reg.Room("R")
	assert.Same(t, r1, r2, "rejoin before grace expiry must reuse the same room instance")
	assert.Len(t, r2.Strokes(), 1, "strokes survive across the grace window")
}

func TestLeaveBroadcastsUserLeftToRemainingParticipants(t *testing.T) {
	reg := New(0)
	a := newConn()
	resultA, _ := reg.Join("R", "a", "", a)
	b := newConn()
	reg.Join("R", "b", "", b)
	a.sent, b.sent = nil, nil

	reg.Leave("R", resultA.UserID)

	require.Len(t, b.sent, 1)
	assert.Equal(t, protocol.UserLeft, decodeType(t, b.sent[0]))
	assert.Empty(t, a.sent, "the leaver itself receives nothing")
}

func TestLeaveOnUnknownRoomIsNoop(t *testing.T) {
	reg := New(0)
	reg.Leave("does-not-exist", "nobody")
}
