// Package registry implements the room lookup/create/delete lifecycle
// and the join/leave orchestration that wires a connection's presence
// into a room.Room: color allocation, password checks, capacity
// checks, and the welcome/room_state/user_joined/user_left broadcast
// sequencing. Grounded on the reference implementation's
// room_service.hpp, adapted to Go's map+mutex idiom the way the
// teacher's internal/websocket.Manager guards its hub map.
package registry

import (
	"sync"
	"time"

	"github.com/tanmaysharma2001/collabboard/internal/idgen"
	"github.com/tanmaysharma2001/collabboard/internal/presence"
	"github.com/tanmaysharma2001/collabboard/internal/protocol"
	"github.com/tanmaysharma2001/collabboard/internal/room"
)

// colorPalette is the fixed 15-entry rotation every room allocates
// from, carried verbatim from the reference service so clients
// observe the same assignment order.
var colorPalette = [...]string{
	"#FF5733", "#33FF57", "#3357FF", "#FF33F5", "#F5FF33",
	"#33FFF5", "#FF8C33", "#8C33FF", "#33FF8C", "#FF338C",
	"#338CFF", "#8CFF33", "#FF3333", "#33FF33", "#3333FF",
}

// JoinResult is the outcome of a successful Join.
type JoinResult struct {
	UserID string
	Color  string
}

// Registry owns every live room plus the set of rooms pending lazy
// deletion after their grace period. Its mutex is distinct from, and
// always acquired before, any individual room's mutex.
type Registry struct {
	mu              sync.Mutex
	rooms           map[string]*room.Room
	pendingDeletion map[string]time.Time
	nextColorIndex  int
	emptyRoomGrace  time.Duration

	Presence *presence.Service
}

// New returns an empty Registry with the protocol's default empty-room
// grace period. grace overrides it when positive, letting tests and
// internal/config tune the reclamation delay.
func New(grace time.Duration) *Registry {
	if grace <= 0 {
		grace = protocol.EmptyRoomGraceSeconds * time.Second
	}
	return &Registry{
		rooms:           make(map[string]*room.Room),
		pendingDeletion: make(map[string]time.Time),
		emptyRoomGrace:  grace,
		Presence:        presence.New(),
	}
}

// cleanupExpired drops every pending-deletion entry whose grace
// deadline has passed, along with its now-unreachable Room. Callers
// must hold reg.mu.
func (reg *Registry) cleanupExpired(now time.Time) {
	for roomID, deadline := range reg.pendingDeletion {
		if !now.Before(deadline) {
			delete(reg.pendingDeletion, roomID)
			delete(reg.rooms, roomID)
		}
	}
}

// GetOrCreateRoom returns the room for roomID, creating it with
// password if it does not yet exist. Any pending deletion for roomID
// is cancelled as a side effect, since a fresh access means the room
// is wanted again.
func (reg *Registry) GetOrCreateRoom(roomID, password string) *room.Room {
	reg.mu.Lock()
	defer reg.mu.Unlock()

	reg.cleanupExpired(time.Now())
	delete(reg.pendingDeletion, roomID)

	r, ok := reg.rooms[roomID]
	if !ok {
		r = room.New(roomID, password)
		reg.rooms[roomID] = r
	}
	return r
}

// Room returns the room for roomID without creating one, applying the
// same lazy-expiry cleanup as GetOrCreateRoom.
func (reg *Registry) Room(roomID string) (*room.Room, bool) {
	reg.mu.Lock()
	defer reg.mu.Unlock()
	reg.cleanupExpired(time.Now())
	r, ok := reg.rooms[roomID]
	return r, ok
}

// RoomExists reports whether roomID currently names a live room,
// without running the lazy-cleanup pass (used by tests that want to
// observe the pending-deletion window itself).
func (reg *Registry) RoomExists(roomID string) bool {
	reg.mu.Lock()
	defer reg.mu.Unlock()
	_, ok := reg.rooms[roomID]
	return ok
}

func (reg *Registry) nextColor() string {
	reg.mu.Lock()
	defer reg.mu.Unlock()
	c := colorPalette[reg.nextColorIndex%len(colorPalette)]
	reg.nextColorIndex++
	return c
}

// Join resolves roomID (creating it if absent), validates password and
// capacity, allocates a userId and color, registers the participant,
// and sends the welcome + room_state frames to conn before
// broadcasting user_joined to everyone else. err is empty on success.
func (reg *Registry) Join(roomID, userName, password string, conn room.Connection) (JoinResult, protocol.ErrorCode) {
	r := reg.GetOrCreateRoom(roomID, password)

	if roomPassword := r.Password(); roomPassword != "" && password != roomPassword {
		return JoinResult{}, protocol.ErrInvalidPassword
	}
	if r.IsFull() {
		return JoinResult{}, protocol.ErrRoomFull
	}

	userID := idgen.NewUserID()
	color := reg.nextColor()
	info := &room.UserInfo{
		UserID:       userID,
		DisplayName:  userName,
		Color:        color,
		Connection:   conn,
		LastActivity: time.Now(),
		IsActive:     true,
	}
	if !r.AddParticipant(info) {
		return JoinResult{}, protocol.ErrRoomFull
	}

	users := make([]protocol.UserSummary, 0, r.ParticipantCount())
	for _, p := range r.Participants() {
		users = append(users, protocol.UserSummary{UserID: p.UserID, Name: p.DisplayName, Color: p.Color})
	}
	r.SendTo(userID, protocol.BuildWelcome(userID, color, users, r.NextSequence()))
	r.SendTo(userID, buildJoinRoomState(r))

	r.Broadcast(protocol.BuildUserJoined(userID, userName, color, r.NextSequence()), userID)

	return JoinResult{UserID: userID, Color: color}, ""
}

// buildJoinRoomState builds the room_state frame sent as the second
// half of a join. Its seq is a read of the counter as left by the
// welcome frame just above, not a new draw: join only ever takes two
// fresh sequence numbers (welcome, then the user_joined broadcast),
// the same rule board.Snapshot follows for the standalone resync path.
func buildJoinRoomState(r *room.Room) []byte {
	strokes := r.StrokeSnapshot(protocol.SnapshotStrokeLimit)
	snaps := make([]protocol.StrokeSnapshot, len(strokes))
	for i, s := range strokes {
		snaps[i] = protocol.StrokeSnapshot{
			StrokeID: s.StrokeID,
			UserID:   s.AuthorUserID,
			Color:    s.Color,
			Width:    s.Width,
			Points:   s.Points,
			Complete: s.Complete,
		}
	}
	return protocol.BuildRoomState(snaps, r.CurrentSequence())
}

// Leave removes userID from roomID, drops its rate-limit bucket, and
// broadcasts user_left to the remaining participants. If the room
// becomes empty it is scheduled for lazy deletion after the registry's
// grace period; it is a no-op if the room does not exist.
func (reg *Registry) Leave(roomID, userID string) {
	r, ok := reg.Room(roomID)
	if !ok {
		return
	}

	r.RemoveParticipant(userID)
	reg.Presence.RemoveUser(userID)
	r.Broadcast(protocol.BuildUserLeft(userID, r.NextSequence()), "")

	if r.ParticipantCount() == 0 {
		reg.mu.Lock()
		reg.pendingDeletion[roomID] = time.Now().Add(reg.emptyRoomGrace)
		reg.mu.Unlock()
	}
}
