package protocol

// UserSummary is the per-user shape embedded in a welcome frame's
// users list and used as the user_joined payload.
type UserSummary struct {
	UserID string `json:"userId"`
	Name   string `json:"name"`
	Color  string `json:"color"`
}

// StrokeSnapshot is the shape of a single stroke inside a room_state
// frame.
type StrokeSnapshot struct {
	StrokeID string  `json:"strokeId"`
	UserID   string  `json:"userId"`
	Color    string  `json:"color"`
	Width    float32 `json:"width"`
	Points   []Point `json:"points"`
	Complete bool    `json:"complete"`
}

// BuildWelcome builds the frame sent to a newly joined user: their own
// id and color plus the full roster of the room they just entered
// (including themselves).
func BuildWelcome(userID, color string, users []UserSummary, seq uint64) []byte {
	return buildFrame(Welcome, seq, struct {
		UserID string        `json:"userId"`
		Color  string        `json:"color"`
		Users  []UserSummary `json:"users"`
	}{userID, color, users})
}

// BuildUserJoined builds the broadcast announcing a new participant to
// everyone already in the room.
func BuildUserJoined(userID, name, color string, seq uint64) []byte {
	return buildFrame(UserJoined, seq, UserSummary{UserID: userID, Name: name, Color: color})
}

// BuildUserLeft builds the broadcast announcing a participant's
// departure.
func BuildUserLeft(userID string, seq uint64) []byte {
	return buildFrame(UserLeft, seq, struct {
		UserID string `json:"userId"`
	}{userID})
}

// BuildCursorMove builds a cursor position broadcast.
func BuildCursorMove(userID string, x, y float32, seq uint64) []byte {
	return buildFrame(CursorMove, seq, struct {
		UserID string  `json:"userId"`
		X      float32 `json:"x"`
		Y      float32 `json:"y"`
	}{userID, x, y})
}

// BuildStrokeStart builds the broadcast opening a new stroke.
func BuildStrokeStart(strokeID, userID, color string, width float32, seq uint64) []byte {
	return buildFrame(StrokeStart, seq, struct {
		StrokeID string  `json:"strokeId"`
		UserID   string  `json:"userId"`
		Color    string  `json:"color"`
		Width    float32 `json:"width"`
	}{strokeID, userID, color, width})
}

// BuildStrokeAdd builds the broadcast appending points to an
// in-progress stroke.
func BuildStrokeAdd(strokeID, userID string, points []Point, seq uint64) []byte {
	return buildFrame(StrokeAdd, seq, struct {
		StrokeID string  `json:"strokeId"`
		UserID   string  `json:"userId"`
		Points   []Point `json:"points"`
	}{strokeID, userID, points})
}

// BuildStrokeEnd builds the broadcast completing a stroke.
func BuildStrokeEnd(strokeID, userID string, seq uint64) []byte {
	return buildFrame(StrokeEnd, seq, struct {
		StrokeID string `json:"strokeId"`
		UserID   string `json:"userId"`
	}{strokeID, userID})
}

// BuildStrokeMove builds the broadcast translating a completed stroke.
func BuildStrokeMove(strokeID, userID string, dx, dy float32, seq uint64) []byte {
	return buildFrame(StrokeMove, seq, struct {
		StrokeID string  `json:"strokeId"`
		UserID   string  `json:"userId"`
		Dx       float32 `json:"dx"`
		Dy       float32 `json:"dy"`
	}{strokeID, userID, dx, dy})
}

// BuildRoomState builds a full-board snapshot. snapshotSeq is used both
// as the frame-level seq and as the embedded snapshotSeq field: the
// snapshot is the single authoritative cut of the room's sequence
// counter at the moment it was taken, so there is no second counter
// draw. The roster is carried separately by welcome/user_joined, not
// here.
func BuildRoomState(strokes []StrokeSnapshot, snapshotSeq uint64) []byte {
	return buildFrame(RoomState, snapshotSeq, struct {
		Strokes     []StrokeSnapshot `json:"strokes"`
		SnapshotSeq uint64           `json:"snapshotSeq"`
	}{strokes, snapshotSeq})
}

// BuildPong builds a heartbeat reply.
func BuildPong(seq uint64) []byte {
	return buildFrame(Pong, seq, struct{}{})
}

// BuildError builds an error frame carrying code's stable identifier
// and fixed human-readable message.
func BuildError(code ErrorCode, seq uint64) []byte {
	return buildFrame(Error, seq, struct {
		Code    ErrorCode `json:"code"`
		Message string    `json:"message"`
	}{code, code.Message()})
}
