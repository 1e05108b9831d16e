// Package protocol defines the wire vocabulary shared by every
// connected client: message types, error codes, frame shape, and the
// protocol-wide constants. It mirrors the JSON envelope used by the
// teacher's internal/models/websocket.go, generalized to the
// whiteboard's richer message set and grounded on the exact strings
// and constants of the reference implementation's message_types.hpp.
package protocol

// MessageType is the lowercase snake-case "type" tag on every frame.
type MessageType string

const (
	JoinRoom    MessageType = "join_room"
	Welcome     MessageType = "welcome"
	UserJoined  MessageType = "user_joined"
	UserLeft    MessageType = "user_left"
	CursorMove  MessageType = "cursor_move"
	StrokeStart MessageType = "stroke_start"
	StrokeAdd   MessageType = "stroke_add"
	StrokeEnd   MessageType = "stroke_end"
	StrokeMove  MessageType = "stroke_move"
	RoomState   MessageType = "room_state"
	Ping        MessageType = "ping"
	Pong        MessageType = "pong"
	Error       MessageType = "error"
	Unknown     MessageType = ""
)

// ParseMessageType maps a raw "type" string onto a MessageType,
// returning Unknown for anything not in the table.
func ParseMessageType(s string) MessageType {
	switch MessageType(s) {
	case JoinRoom, Welcome, UserJoined, UserLeft, CursorMove,
		StrokeStart, StrokeAdd, StrokeEnd, StrokeMove,
		RoomState, Ping, Pong, Error:
		return MessageType(s)
	default:
		return Unknown
	}
}

// ErrorCode is the stable machine-readable code carried by error frames.
type ErrorCode string

const (
	ErrRoomNotFound       ErrorCode = "ROOM_NOT_FOUND"
	ErrRoomFull           ErrorCode = "ROOM_FULL"
	ErrInvalidPassword    ErrorCode = "INVALID_PASSWORD"
	ErrMalformedMessage   ErrorCode = "MALFORMED_MESSAGE"
	ErrInvalidMessageType ErrorCode = "INVALID_MESSAGE_TYPE"
	ErrMissingField       ErrorCode = "MISSING_FIELD"
	ErrInvalidField       ErrorCode = "INVALID_FIELD"
	ErrRateLimited        ErrorCode = "RATE_LIMITED"
	ErrInvalidStroke      ErrorCode = "INVALID_STROKE"
	ErrStrokeTooLarge     ErrorCode = "STROKE_TOO_LARGE"
	ErrNotInRoom          ErrorCode = "NOT_IN_ROOM"
	ErrAlreadyInRoom      ErrorCode = "ALREADY_IN_ROOM"
	ErrInternalError      ErrorCode = "INTERNAL_ERROR"
)

var errorMessages = map[ErrorCode]string{
	ErrRoomNotFound:       "The requested room does not exist",
	ErrRoomFull:           "Room has reached maximum capacity (15 users)",
	ErrInvalidPassword:    "Incorrect room password",
	ErrMalformedMessage:   "Message format is invalid",
	ErrInvalidMessageType: "Unknown message type",
	ErrMissingField:       "Required field is missing",
	ErrInvalidField:       "Field value is invalid",
	ErrRateLimited:        "Too many messages, please slow down",
	ErrInvalidStroke:      "Stroke not found or not owned by you",
	ErrStrokeTooLarge:     "Stroke contains too many points",
	ErrNotInRoom:          "You must join a room first",
	ErrAlreadyInRoom:      "You are already in a room",
	ErrInternalError:      "An unexpected error occurred",
}

// Message returns the fixed human-readable text for code, falling back
// to the internal-error message for unrecognized codes.
func (c ErrorCode) Message() string {
	if msg, ok := errorMessages[c]; ok {
		return msg
	}
	return errorMessages[ErrInternalError]
}

// Protocol-wide constants, wire-visible per spec.md §6.
const (
	MaxUsersPerRoom         = 15
	MaxStrokesPerRoom       = 1000
	SnapshotStrokeLimit     = 500
	MaxPointsPerStroke      = 10000
	MaxMessageSize          = 64 * 1024
	HeartbeatIntervalMs     = 10000
	HeartbeatTimeoutMs      = 30000
	GhostCursorTimeoutMs    = 3000
	CursorUpdatesPerSecond  = 20.0
	RateLimitBurstSize      = 5.0
	RateLimitMuteDurationMs = 10000
	EmptyRoomGraceSeconds   = 60
)

// Point is a single (x, y) coordinate in a stroke.
type Point struct {
	X float32 `json:"x"`
	Y float32 `json:"y"`
}
