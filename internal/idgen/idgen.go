// Package idgen generates the identifiers the whiteboard protocol hands
// out: UUID v4 user IDs and short hex IDs for rooms and strokes.
package idgen

import (
	"encoding/hex"
	"crypto/rand"

	"github.com/google/uuid"
)

// NewUserID returns a server-assigned user identifier, "user-" followed
// by a UUID v4.
func NewUserID() string {
	return "user-" + uuid.New().String()
}

// NewRoomID returns "room-" followed by an 8 hex digit short ID.
func NewRoomID() string {
	return "room-" + newShortID()
}

// NewStrokeID returns "stroke-" followed by an 8 hex digit short ID.
func NewStrokeID() string {
	return "stroke-" + newShortID()
}

func newShortID() string {
	var buf [4]byte
	if _, err := rand.Read(buf[:]); err != nil {
		// crypto/rand.Read only fails if the OS entropy source is
		// broken; fall back to a uuid-derived short id. uuid.New reads
		// the same source and panics if that read fails as well.
		return uuid.New().String()[:8]
	}
	return hex.EncodeToString(buf[:])
}

// IsValidUUID reports whether s is a syntactically valid UUID v4:
// 36 characters, dashes at positions 8/13/18/23, version nibble '4' at
// position 14, and a variant nibble in {8,9,a,b,A,B} at position 19.
func IsValidUUID(s string) bool {
	if len(s) != 36 {
		return false
	}
	for _, i := range []int{8, 13, 18, 23} {
		if s[i] != '-' {
			return false
		}
	}
	if s[14] != '4' {
		return false
	}
	switch s[19] {
	case '8', '9', 'a', 'b', 'A', 'B':
	default:
		return false
	}
	for i := 0; i < len(s); i++ {
		switch i {
		case 8, 13, 18, 23:
			continue
		}
		c := s[i]
		isHex := (c >= '0' && c <= '9') || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')
		if !isHex {
			return false
		}
	}
	return true
}
