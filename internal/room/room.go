// Package room implements the authoritative, in-memory state for a
// single collaboration space: participants, cursors, strokes, and the
// sequence counter that orders every frame broadcast to them. It is
// grounded on the concurrency shape of the teacher's
// internal/websocket.Hub (one mutable owner per room, broadcast copies
// handles before sending) generalized from a channel-driven event loop
// to a directly-called, mutex-guarded API, because the whiteboard's
// board/presence sub-services need synchronous read-modify-write access
// to room state rather than a fire-and-forget broadcast channel.
package room

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/tanmaysharma2001/collabboard/internal/protocol"
)

// Connection is the abstract, non-owning send capability a Room holds
// for each participant. The room never extends a connection's
// lifetime: it calls IsAlive before every send and treats a dead
// connection as unreachable rather than an error.
type Connection interface {
	Send(message []byte) error
	Close() error
	IsAlive() bool
}

// UserInfo describes one participant. Connection is a non-owning
// reference in spirit: Room stores the interface value, which keeps the
// object reachable while the participant is listed, but never keeps the
// underlying connection open and skips it once IsAlive reports false.
type UserInfo struct {
	UserID       string
	DisplayName  string
	Color        string
	Connection   Connection
	LastActivity time.Time
	IsActive     bool
}

// CursorState is the last known pointer position for a participant.
type CursorState struct {
	UserID     string
	X          float32
	Y          float32
	LastUpdate time.Time
	Visible    bool
}

// Stroke is one ordered polyline. Points is only ever appended to or
// translated in place by internal/board, under the owning Room's lock.
type Stroke struct {
	StrokeID     string
	AuthorUserID string
	Color        string
	Width        float32
	Points       []protocol.Point
	Complete     bool
	Seq          uint64
}

// Room owns one collaboration space's participants, cursors, and
// strokes behind a single mutex. Every method is safe for concurrent
// use by unrelated callers.
type Room struct {
	mu       sync.Mutex
	roomID   string
	password string
	maxUsers int
	maxStrok int

	participants map[string]*UserInfo
	cursors      map[string]*CursorState
	strokes      []*Stroke
	strokeIndex  map[string]*Stroke

	nextSeq uint64
}

// New returns an empty Room with the protocol's default capacity caps.
func New(roomID, password string) *Room {
	return &Room{
		roomID:       roomID,
		password:     password,
		maxUsers:     protocol.MaxUsersPerRoom,
		maxStrok:     protocol.MaxStrokesPerRoom,
		participants: make(map[string]*UserInfo),
		cursors:      make(map[string]*CursorState),
		strokeIndex:  make(map[string]*Stroke),
	}
}

// RoomID returns the room's immutable identifier.
func (r *Room) RoomID() string { return r.roomID }

// Password returns the room's shared password, possibly empty.
func (r *Room) Password() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.password
}

// AddParticipant inserts info and a zero-initialized cursor atomically,
// returning false without modifying state if the room is already at
// capacity.
func (r *Room) AddParticipant(info *UserInfo) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.participants) >= r.maxUsers {
		return false
	}
	r.participants[info.UserID] = info
	r.cursors[info.UserID] = &CursorState{UserID: info.UserID, Visible: true, LastUpdate: info.LastActivity}
	return true
}

// RemoveParticipant drops the participant and its cursor together. It
// is idempotent: removing an absent userId is a no-op.
func (r *Room) RemoveParticipant(userID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.participants, userID)
	delete(r.cursors, userID)
}

// ParticipantCount returns the current number of participants.
func (r *Room) ParticipantCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.participants)
}

// IsFull reports whether the room is at its user capacity.
func (r *Room) IsFull() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.participants) >= r.maxUsers
}

// Participant returns a value copy of one participant's info.
func (r *Room) Participant(userID string) (UserInfo, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	info, ok := r.participants[userID]
	if !ok {
		return UserInfo{}, false
	}
	return *info, true
}

// Participants returns an independent snapshot of every participant.
// Subsequent mutation of room state does not affect the returned
// slice.
func (r *Room) Participants() []UserInfo {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]UserInfo, 0, len(r.participants))
	for _, info := range r.participants {
		out = append(out, *info)
	}
	return out
}

// Cursors returns an independent snapshot of every cursor.
func (r *Room) Cursors() []CursorState {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]CursorState, 0, len(r.cursors))
	for _, c := range r.cursors {
		out = append(out, *c)
	}
	return out
}

// UpdateCursor moves userID's cursor and refreshes its participant's
// last-activity timestamp. It is a no-op if the user is not a current
// participant.
func (r *Room) UpdateCursor(userID string, x, y float32) {
	r.mu.Lock()
	defer r.mu.Unlock()
	cursor, ok := r.cursors[userID]
	if !ok {
		return
	}
	now := time.Now()
	cursor.X = x
	cursor.Y = y
	cursor.LastUpdate = now
	if info, ok := r.participants[userID]; ok {
		info.LastActivity = now
	}
}

// Touch refreshes userID's last-activity timestamp without moving its
// cursor, used by the board path so drawing also counts as activity
// for ghost detection.
func (r *Room) Touch(userID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if info, ok := r.participants[userID]; ok {
		info.LastActivity = time.Now()
	}
}

// MarkInactive flips IsActive to false for userID without removing it,
// used by presence ghost sweeps; it never broadcasts.
func (r *Room) MarkInactive(userID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if info, ok := r.participants[userID]; ok {
		info.IsActive = false
	}
}

func strokeCopy(s *Stroke) Stroke {
	points := make([]protocol.Point, len(s.Points))
	copy(points, s.Points)
	out := *s
	out.Points = points
	return out
}

// AddStroke appends a new stroke, then evicts strokes from the front
// until the room's cap holds (oldest-first FIFO pruning).
func (r *Room) AddStroke(s *Stroke) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.strokes = append(r.strokes, s)
	r.strokeIndex[s.StrokeID] = s
	for len(r.strokes) > r.maxStrok {
		evicted := r.strokes[0]
		r.strokes = r.strokes[1:]
		delete(r.strokeIndex, evicted.StrokeID)
	}
}

// Strokes returns an independent snapshot of every retained stroke, in
// insertion order.
func (r *Room) Strokes() []Stroke {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Stroke, len(r.strokes))
	for i, s := range r.strokes {
		out[i] = strokeCopy(s)
	}
	return out
}

// StrokeSnapshot returns up to the most recent limit strokes, in
// insertion order. If the room holds limit or fewer strokes, all of
// them are returned.
func (r *Room) StrokeSnapshot(limit int) []Stroke {
	r.mu.Lock()
	defer r.mu.Unlock()
	start := 0
	if len(r.strokes) > limit {
		start = len(r.strokes) - limit
	}
	slice := r.strokes[start:]
	out := make([]Stroke, len(slice))
	for i, s := range slice {
		out[i] = strokeCopy(s)
	}
	return out
}

// Stroke returns a value copy of the stroke with the given id.
func (r *Room) Stroke(strokeID string) (Stroke, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.strokeIndex[strokeID]
	if !ok {
		return Stroke{}, false
	}
	return strokeCopy(s), true
}

// WithStroke runs fn with direct, lock-held access to the live stroke
// identified by strokeID, so board can validate ownership and mutate
// points/completion atomically. It returns false if no such stroke
// exists, in which case fn is not called.
func (r *Room) WithStroke(strokeID string, fn func(s *Stroke)) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.strokeIndex[strokeID]
	if !ok {
		return false
	}
	fn(s)
	return true
}

// NextSequence atomically allocates the next sequence number for a
// broadcast from this room, starting at 1.
func (r *Room) NextSequence() uint64 {
	return atomic.AddUint64(&r.nextSeq, 1)
}

// CurrentSequence reads the most recently allocated sequence number
// without allocating a new one.
func (r *Room) CurrentSequence() uint64 {
	return atomic.LoadUint64(&r.nextSeq)
}

// Broadcast sends message to every participant except excludeUserID
// whose connection is currently alive. Handles are copied out under
// the room lock and sent after it is released, so a slow or closing
// recipient cannot block the room or re-enter it.
func (r *Room) Broadcast(message []byte, excludeUserID string) {
	r.mu.Lock()
	conns := make([]Connection, 0, len(r.participants))
	for uid, info := range r.participants {
		if uid == excludeUserID {
			continue
		}
		if info.Connection != nil && info.Connection.IsAlive() {
			conns = append(conns, info.Connection)
		}
	}
	r.mu.Unlock()

	for _, c := range conns {
		_ = c.Send(message)
	}
}

// SendTo sends message to a single participant if it is still
// connected.
func (r *Room) SendTo(userID string, message []byte) {
	r.mu.Lock()
	info, ok := r.participants[userID]
	var conn Connection
	if ok {
		conn = info.Connection
	}
	r.mu.Unlock()

	if conn != nil && conn.IsAlive() {
		_ = conn.Send(message)
	}
}
