package idgen

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewUserIDIsValidUUID(t *testing.T) {
	id := NewUserID()
	require.True(t, strings.HasPrefix(id, "user-"))
	assert.True(t, IsValidUUID(strings.TrimPrefix(id, "user-")))
}

func TestNewRoomAndStrokeIDFormat(t *testing.T) {
	room := NewRoomID()
	stroke := NewStrokeID()

	assert.True(t, strings.HasPrefix(room, "room-"))
	assert.Len(t, strings.TrimPrefix(room, "room-"), 8)

	assert.True(t, strings.HasPrefix(stroke, "stroke-"))
	assert.Len(t, strings.TrimPrefix(stroke, "stroke-"), 8)
}

func TestNewUserIDNoCollisions(t *testing.T) {
	seen := make(map[string]bool, 10000)
	for i := 0; i < 10000; i++ {
		id := NewUserID()
		require.False(t, seen[id], "collision on %s", id)
		seen[id] = true
	}
}

func TestIsValidUUIDRejectsMalformed(t *testing.T) {
	cases := []string{
		"",
		"not-a-uuid",
		"f47ac10b-58cc-5372-a567-0e02b2c3d479", // wrong version nibble
		"f47ac10b-58cc-4372-c567-0e02b2c3d479", // wrong variant nibble
		"f47ac10b58cc4372a5670e02b2c3d479",     // missing dashes
		"zzzac10b-58cc-4372-a567-0e02b2c3d479", // non-hex
	}
	for _, c := range cases {
		assert.False(t, IsValidUUID(c), "expected %q to be invalid", c)
	}
}

func TestIsValidUUIDAcceptsWellFormed(t *testing.T) {
	for i := 0; i < 1000; i++ {
		raw := strings.TrimPrefix(NewUserID(), "user-")
		assert.True(t, IsValidUUID(raw))
	}
}
