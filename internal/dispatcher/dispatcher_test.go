package dispatcher

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tanmaysharma2001/collabboard/internal/protocol"
	"github.com/tanmaysharma2001/collabboard/internal/registry"
)

type capturingConn struct{ sent [][]byte }

func (c *capturingConn) Send(message []byte) error {
	c.sent = append(c.sent, message)
	return nil
}
func (c *capturingConn) Close() error  { return nil }
func (c *capturingConn) IsAlive() bool { return true }

func lastType(t *testing.T, raw []byte) protocol.MessageType {
	t.Helper()
	var env struct {
		Type protocol.MessageType `json:"type"`
	}
	require.NoError(t, json.Unmarshal(raw, &env))
	return env.Type
}

func errorCode(t *testing.T, raw []byte) protocol.ErrorCode {
	t.Helper()
	var env struct {
		Data struct {
			Code protocol.ErrorCode `json:"code"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(raw, &env))
	return env.Data.Code
}

func TestDispatchMalformedJSONRepliesWithError(t *testing.T) {
	d := New(registry.New(0))
	conn := &capturingConn{}
	state := &ConnState{}

	d.Dispatch(conn, state, []byte(`{not json`))

	require.Len(t, conn.sent, 1)
	assert.Equal(t, protocol.Error, lastType(t, conn.sent[0]))
	assert.Equal(t, protocol.ErrMalformedMessage, errorCode(t, conn.sent[0]))
}

func TestDispatchUnknownTypeRepliesWithError(t *testing.T) {
	d := New(registry.New(0))
	conn := &capturingConn{}
	state := &ConnState{}

	d.Dispatch(conn, state, []byte(`{"type":"not_a_real_type","data":{}}`))

	require.Len(t, conn.sent, 1)
	assert.Equal(t, protocol.ErrInvalidMessageType, errorCode(t, conn.sent[0]))
}

func TestDispatchJoinRoomMissingFieldReplies(t *testing.T) {
	d := New(registry.New(0))
	conn := &capturingConn{}
	state := &ConnState{}

	d.Dispatch(conn, state, []byte(`{"type":"join_room","data":{"roomId":"r1"}}`))

	require.Len(t, conn.sent, 1)
	assert.Equal(t, protocol.ErrMissingField, errorCode(t, conn.sent[0]))
	assert.False(t, state.Joined())
}

func TestDispatchJoinRoomSuccessStampsState(t *testing.T) {
	d := New(registry.New(0))
	conn := &capturingConn{}
	state := &ConnState{}

	d.Dispatch(conn, state, []byte(`{"type":"join_room","data":{"roomId":"r1","userName":"alice"}}`))

	require.True(t, state.Joined())
	assert.Equal(t, "r1", state.RoomID)
	require.Len(t, conn.sent, 2)
	assert.Equal(t, protocol.Welcome, lastType(t, conn.sent[0]))
	assert.Equal(t, protocol.RoomState, lastType(t, conn.sent[1]))
}

func TestDispatchSecondJoinRoomReplyAlreadyInRoom(t *testing.T) {
	d := New(registry.New(0))
	conn := &capturingConn{}
	state := &ConnState{}
	d.Dispatch(conn, state, []byte(`{"type":"join_room","data":{"roomId":"r1","userName":"alice"}}`))
	conn.sent = nil

	d.Dispatch(conn, state, []byte(`{"type":"join_room","data":{"roomId":"r1","userName":"alice"}}`))

	require.Len(t, conn.sent, 1)
	assert.Equal(t, protocol.ErrAlreadyInRoom, errorCode(t, conn.sent[0]))
}

func TestDispatchPerRoomOpFromUnjoinedConnectionIsSilentlyDropped(t *testing.T) {
	d := New(registry.New(0))
	conn := &capturingConn{}
	state := &ConnState{}

	d.Dispatch(conn, state, []byte(`{"type":"cursor_move","data":{"x":1,"y":1}}`))

	assert.Empty(t, conn.sent)
}

func TestDispatchPingRepliesPongWithSameSeq(t *testing.T) {
	d := New(registry.New(0))
	conn := &capturingConn{}
	state := &ConnState{}

	d.Dispatch(conn, state, []byte(`{"type":"ping","seq":42,"data":{}}`))

	require.Len(t, conn.sent, 1)
	var env struct {
		Type protocol.MessageType `json:"type"`
		Seq  uint64               `json:"seq"`
	}
	require.NoError(t, json.Unmarshal(conn.sent[0], &env))
	assert.Equal(t, protocol.Pong, env.Type)
	assert.EqualValues(t, 42, env.Seq)
}

func TestDispatchCursorMoveBroadcastsAfterJoin(t *testing.T) {
	d := New(registry.New(0))
	a := &capturingConn{}
	stateA := &ConnState{}
	d.Dispatch(a, stateA, []byte(`{"type":"join_room","data":{"roomId":"r1","userName":"a"}}`))

	b := &capturingConn{}
	stateB := &ConnState{}
	d.Dispatch(b, stateB, []byte(`{"type":"join_room","data":{"roomId":"r1","userName":"b"}}`))
	a.sent, b.sent = nil, nil

	d.Dispatch(a, stateA, []byte(`{"type":"cursor_move","data":{"x":1,"y":2}}`))

	assert.Empty(t, a.sent)
	require.Len(t, b.sent, 1)
	assert.Equal(t, protocol.CursorMove, lastType(t, b.sent[0]))
}

func TestDispatchStrokeStartRejectsInvalidColor(t *testing.T) {
	d := New(registry.New(0))
	a := &capturingConn{}
	stateA := &ConnState{}
	d.Dispatch(a, stateA, []byte(`{"type":"join_room","data":{"roomId":"r1","userName":"a"}}`))
	b := &capturingConn{}
	stateB := &ConnState{}
	d.Dispatch(b, stateB, []byte(`{"type":"join_room","data":{"roomId":"r1","userName":"b"}}`))
	a.sent, b.sent = nil, nil

	d.Dispatch(a, stateA, []byte(`{"type":"stroke_start","data":{"strokeId":"s1","color":"not-a-color","width":2}}`))

	assert.Empty(t, b.sent, "invalid color stroke_start must not be broadcast")
}

func TestHandleDisconnectRunsLeavePath(t *testing.T) {
	d := New(registry.New(0))
	a := &capturingConn{}
	stateA := &ConnState{}
	d.Dispatch(a, stateA, []byte(`{"type":"join_room","data":{"roomId":"r1","userName":"a"}}`))
	b := &capturingConn{}
	stateB := &ConnState{}
	d.Dispatch(b, stateB, []byte(`{"type":"join_room","data":{"roomId":"r1","userName":"b"}}`))
	b.sent = nil

	d.HandleDisconnect(stateA)

	require.Len(t, b.sent, 1)
	assert.Equal(t, protocol.UserLeft, lastType(t, b.sent[0]))
}
