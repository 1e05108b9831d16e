package protocol

import (
	"encoding/json"
	"time"
)

// Envelope is a parsed incoming frame: the common type/seq/timestamp
// header plus the raw data payload as a generic map, ready for the
// per-type validators below.
type Envelope struct {
	Type      MessageType
	Seq       uint64
	Timestamp int64
	Data      map[string]interface{}
}

// Parse decodes a raw frame. It returns (envelope, "") on success, or a
// non-empty ErrorCode describing why the frame was rejected:
// ErrMalformedMessage for oversize or invalid JSON, ErrInvalidMessageType
// for a missing or unrecognized "type" field.
func Parse(raw []byte) (*Envelope, ErrorCode) {
	if len(raw) > MaxMessageSize {
		return nil, ErrMalformedMessage
	}

	var wire struct {
		Type      string                 `json:"type"`
		Seq       uint64                 `json:"seq"`
		Timestamp int64                  `json:"timestamp"`
		Data      map[string]interface{} `json:"data"`
	}
	if err := json.Unmarshal(raw, &wire); err != nil {
		return nil, ErrMalformedMessage
	}

	data := wire.Data
	if data == nil {
		data = map[string]interface{}{}
	}

	mt := ParseMessageType(wire.Type)
	env := &Envelope{Type: mt, Seq: wire.Seq, Timestamp: wire.Timestamp, Data: data}
	if mt == Unknown {
		return env, ErrInvalidMessageType
	}
	return env, ""
}

func nowMs() int64 {
	return time.Now().UnixMilli()
}

type frame struct {
	Type      MessageType `json:"type"`
	Seq       uint64      `json:"seq"`
	Timestamp int64       `json:"timestamp"`
	Data      interface{} `json:"data"`
}

func buildFrame(t MessageType, seq uint64, data interface{}) []byte {
	b, err := json.Marshal(frame{Type: t, Seq: seq, Timestamp: nowMs(), Data: data})
	if err != nil {
		// Every data payload below is built from primitives and
		// slices of primitives; Marshal cannot fail on them.
		panic(err)
	}
	return b
}
