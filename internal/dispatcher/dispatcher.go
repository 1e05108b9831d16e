// Package dispatcher routes parsed wire frames to the board, presence,
// and registry sub-services, and is the only place that turns a
// sub-service's outcome into an error frame (or silence) on the wire.
// Grounded on the reference implementation's message_handler.hpp and
// the teacher's HandleWebSocket entry point, generalized from HTTP
// upgrade handling to a transport-agnostic per-connection dispatch
// function.
package dispatcher

import (
	"github.com/tanmaysharma2001/collabboard/internal/board"
	"github.com/tanmaysharma2001/collabboard/internal/protocol"
	"github.com/tanmaysharma2001/collabboard/internal/registry"
	"github.com/tanmaysharma2001/collabboard/internal/room"
	"github.com/tanmaysharma2001/collabboard/pkg/logger"
)

// ConnState is the per-connection membership the transport layer must
// keep alongside its Connection: which room and userId, if any, this
// connection has joined. A zero-value ConnState has joined nothing.
type ConnState struct {
	RoomID string
	UserID string
}

// Joined reports whether the connection has completed a join_room.
func (s *ConnState) Joined() bool {
	return s.RoomID != "" && s.UserID != ""
}

// Dispatcher wires the message dispatcher (component H) to the room
// registry and holds no per-connection state of its own; ConnState is
// threaded in by the caller on every Dispatch call.
type Dispatcher struct {
	registry *registry.Registry
}

// New returns a Dispatcher backed by reg.
func New(reg *registry.Registry) *Dispatcher {
	return &Dispatcher{registry: reg}
}

// Dispatch parses raw and routes it, mutating state in place when a
// join_room succeeds. It never panics on malformed input: every
// failure path either replies with an error frame or drops the
// message silently, per the protocol's error-handling partition.
func (d *Dispatcher) Dispatch(conn room.Connection, state *ConnState, raw []byte) {
	env, errCode := protocol.Parse(raw)
	if errCode == protocol.ErrMalformedMessage {
		_ = conn.Send(protocol.BuildError(errCode, 0))
		return
	}
	if errCode == protocol.ErrInvalidMessageType {
		_ = conn.Send(protocol.BuildError(errCode, 0))
		return
	}

	switch env.Type {
	case protocol.JoinRoom:
		d.handleJoinRoom(conn, state, env)
	case protocol.Ping:
		_ = conn.Send(protocol.BuildPong(env.Seq))
	case protocol.CursorMove, protocol.StrokeStart, protocol.StrokeAdd, protocol.StrokeEnd, protocol.StrokeMove:
		if !state.Joined() {
			// Connection never joined a room; dropped silently, same
			// as the reference MessageHandler.
			return
		}
		d.handleRoomOperation(state, env)
	default:
		// Welcome/user_joined/user_left/room_state/pong/error are
		// server-to-client only; a client that sends one is ignored.
	}
}

func (d *Dispatcher) handleJoinRoom(conn room.Connection, state *ConnState, env *protocol.Envelope) {
	if state.Joined() {
		_ = conn.Send(protocol.BuildError(protocol.ErrAlreadyInRoom, 0))
		return
	}

	roomID, userName, password, ok := protocol.JoinRoomFields(env.Data)
	if !ok {
		_ = conn.Send(protocol.BuildError(protocol.ErrMissingField, 0))
		return
	}

	result, errCode := d.registry.Join(roomID, userName, password, conn)
	if errCode != "" {
		_ = conn.Send(protocol.BuildError(errCode, 0))
		return
	}

	state.RoomID = roomID
	state.UserID = result.UserID
	logger.Info("user %s joined room %s", result.UserID, roomID)
}

func (d *Dispatcher) handleRoomOperation(state *ConnState, env *protocol.Envelope) {
	r, ok := d.registry.Room(state.RoomID)
	if !ok {
		// ROOM_NOT_FOUND is a routing error: dropped, no reply,
		// because the message was not join_room.
		return
	}

	switch env.Type {
	case protocol.CursorMove:
		x, y, ok := protocol.CursorMoveFields(env.Data)
		if !ok {
			return
		}
		d.registry.Presence.HandleCursorMove(r, state.UserID, x, y)

	case protocol.StrokeStart:
		strokeID, color, width, ok := protocol.StrokeStartFields(env.Data)
		if !ok || !protocol.ValidHexColor(color) {
			return
		}
		board.HandleStrokeStart(r, state.UserID, strokeID, color, width)

	case protocol.StrokeAdd:
		strokeID, points, ok := protocol.StrokeAddFields(env.Data)
		if !ok {
			return
		}
		if code := board.HandleStrokeAdd(r, state.UserID, strokeID, points); code != "" {
			logger.Debug("stroke_add rejected for user %s: %s", state.UserID, code)
		}

	case protocol.StrokeEnd:
		strokeID, ok := protocol.StrokeEndFields(env.Data)
		if !ok {
			return
		}
		if code := board.HandleStrokeEnd(r, state.UserID, strokeID); code != "" {
			logger.Debug("stroke_end rejected for user %s: %s", state.UserID, code)
		}

	case protocol.StrokeMove:
		strokeID, dx, dy, ok := protocol.StrokeMoveFields(env.Data)
		if !ok {
			return
		}
		if code := board.HandleStrokeMove(r, state.UserID, strokeID, dx, dy); code != "" {
			logger.Debug("stroke_move rejected for user %s: %s", state.UserID, code)
		}
	}
}

// HandleDisconnect runs the leave path for a closing connection. It is
// a no-op if the connection never joined a room.
func (d *Dispatcher) HandleDisconnect(state *ConnState) {
	if !state.Joined() {
		return
	}
	d.registry.Leave(state.RoomID, state.UserID)
	logger.Info("user %s left room %s", state.UserID, state.RoomID)
}
