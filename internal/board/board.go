// Package board implements the stroke lifecycle rules layered on top
// of a room.Room: starting, extending, completing, and translating
// strokes, plus the full-board snapshot sent to late joiners. It is
// grounded on the reference implementation's board_service.hpp, ported
// to Go's ownership-check-then-mutate idiom using room.Room.WithStroke
// in place of the reference's mutex-guarded map access.
package board

import (
	"github.com/tanmaysharma2001/collabboard/internal/protocol"
	"github.com/tanmaysharma2001/collabboard/internal/room"
)

// HandleStrokeStart registers a new stroke authored by userID and
// broadcasts it to every other participant. The stroke's own seq and
// the broadcast's seq are independent draws from the room's counter.
func HandleStrokeStart(r *room.Room, userID, strokeID, color string, width float32) {
	stroke := &room.Stroke{
		StrokeID:     strokeID,
		AuthorUserID: userID,
		Color:        color,
		Width:        width,
		Seq:          r.NextSequence(),
	}
	r.AddStroke(stroke)
	r.Touch(userID)

	msg := protocol.BuildStrokeStart(strokeID, userID, color, width, r.NextSequence())
	r.Broadcast(msg, userID)
}

// HandleStrokeAdd appends points to an in-progress stroke owned by
// userID and broadcasts the addition. It returns ErrInvalidStroke if
// the stroke does not exist, is not owned by userID, or is already
// complete; ErrStrokeTooLarge if the append would exceed the
// per-stroke point cap. A zero-value ErrorCode means success.
func HandleStrokeAdd(r *room.Room, userID, strokeID string, points []protocol.Point) protocol.ErrorCode {
	var outcome protocol.ErrorCode
	found := r.WithStroke(strokeID, func(s *room.Stroke) {
		if s.AuthorUserID != userID || s.Complete {
			outcome = protocol.ErrInvalidStroke
			return
		}
		if len(s.Points)+len(points) > protocol.MaxPointsPerStroke {
			outcome = protocol.ErrStrokeTooLarge
			return
		}
		s.Points = append(s.Points, points...)
	})
	if !found {
		return protocol.ErrInvalidStroke
	}
	if outcome != "" {
		return outcome
	}

	r.Touch(userID)
	msg := protocol.BuildStrokeAdd(strokeID, userID, points, r.NextSequence())
	r.Broadcast(msg, userID)
	return ""
}

// HandleStrokeEnd marks a stroke complete and broadcasts the
// completion. Only ownership is checked; ending an already-complete
// stroke is accepted idempotently rather than rejected.
func HandleStrokeEnd(r *room.Room, userID, strokeID string) protocol.ErrorCode {
	var outcome protocol.ErrorCode
	found := r.WithStroke(strokeID, func(s *room.Stroke) {
		if s.AuthorUserID != userID {
			outcome = protocol.ErrInvalidStroke
			return
		}
		s.Complete = true
	})
	if !found {
		return protocol.ErrInvalidStroke
	}
	if outcome != "" {
		return outcome
	}

	r.Touch(userID)
	msg := protocol.BuildStrokeEnd(strokeID, userID, r.NextSequence())
	r.Broadcast(msg, userID)
	return ""
}

// HandleStrokeMove translates a completed stroke's points by (dx, dy)
// and broadcasts the move. Moving a stroke that is not yet complete is
// rejected, matching the reference's requirement that only finished
// strokes may be repositioned as a whole.
func HandleStrokeMove(r *room.Room, userID, strokeID string, dx, dy float32) protocol.ErrorCode {
	var outcome protocol.ErrorCode
	found := r.WithStroke(strokeID, func(s *room.Stroke) {
		if s.AuthorUserID != userID || !s.Complete {
			outcome = protocol.ErrInvalidStroke
			return
		}
		for i := range s.Points {
			s.Points[i].X += dx
			s.Points[i].Y += dy
		}
	})
	if !found {
		return protocol.ErrInvalidStroke
	}
	if outcome != "" {
		return outcome
	}

	r.Touch(userID)
	msg := protocol.BuildStrokeMove(strokeID, userID, dx, dy, r.NextSequence())
	r.Broadcast(msg, userID)
	return ""
}

// Snapshot builds a room_state frame carrying up to the protocol's
// snapshot stroke limit and the room's current sequence value, read
// without allocating a new one.
func Snapshot(r *room.Room) []byte {
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
