package protocol

import (
	colorful "github.com/lucasb-eyer/go-colorful"
)

// ValidHexColor reports whether s parses as a CSS-style hex color
// ("#rrggbb"), grounded on the same check the whiteboard reference
// backend runs against user-supplied stroke colors.
func ValidHexColor(s string) bool {
	_, err := colorful.Hex(s)
	return err == nil
}

func getString(data map[string]interface{}, key string) (string, bool) {
	v, ok := data[key]
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

func getFloat(data map[string]interface{}, key string) (float64, bool) {
	v, ok := data[key]
	if !ok {
		return 0, false
	}
	f, ok := v.(float64)
	return f, ok
}

// JoinRoomFields extracts and validates the payload of a join_room
// frame: roomId and userName are required non-empty strings, password
// is optional and defaults to "".
func JoinRoomFields(data map[string]interface{}) (roomID, userName, password string, ok bool) {
	roomID, ok1 := getString(data, "roomId")
	userName, ok2 := getString(data, "userName")
	if !ok1 || !ok2 || roomID == "" || userName == "" {
		return "", "", "", false
	}
	password, _ = getString(data, "password")
	return roomID, userName, password, true
}

// CursorMoveFields extracts and validates an x/y coordinate pair.
func CursorMoveFields(data map[string]interface{}) (x, y float32, ok bool) {
	fx, ok1 := getFloat(data, "x")
	fy, ok2 := getFloat(data, "y")
	if !ok1 || !ok2 {
		return 0, 0, false
	}
	return float32(fx), float32(fy), true
}

// StrokeStartFields extracts and validates a stroke_start payload:
// strokeId and color are required strings, width is a required
// positive number.
func StrokeStartFields(data map[string]interface{}) (strokeID, color string, width float32, ok bool) {
	strokeID, ok1 := getString(data, "strokeId")
	color, ok2 := getString(data, "color")
	w, ok3 := getFloat(data, "width")
	if !ok1 || !ok2 || !ok3 || strokeID == "" || color == "" || w <= 0 {
		return "", "", 0, false
	}
	return strokeID, color, float32(w), true
}

// ExtractPoints reads a "points" array of [x, y] pairs out of data,
// tolerating floats or integers in either slot.
func ExtractPoints(data map[string]interface{}) ([]Point, bool) {
	raw, ok := data["points"]
	if !ok {
		return nil, false
	}
	arr, ok := raw.([]interface{})
	if !ok || len(arr) == 0 {
		return nil, false
	}
	points := make([]Point, 0, len(arr))
	for _, el := range arr {
		pair, ok := el.([]interface{})
		if !ok || len(pair) < 2 {
			return nil, false
		}
		x, ok1 := pair[0].(float64)
		y, ok2 := pair[1].(float64)
		if !ok1 || !ok2 {
			return nil, false
		}
		points = append(points, Point{X: float32(x), Y: float32(y)})
	}
	return points, true
}

// StrokeAddFields extracts and validates a stroke_add payload:
// strokeId plus a non-empty points array.
func StrokeAddFields(data map[string]interface{}) (strokeID string, points []Point, ok bool) {
	strokeID, ok1 := getString(data, "strokeId")
	if !ok1 || strokeID == "" {
		return "", nil, false
	}
	points, ok2 := ExtractPoints(data)
	if !ok2 {
		return "", nil, false
	}
	return strokeID, points, true
}

// StrokeEndFields extracts and validates a stroke_end payload.
func StrokeEndFields(data map[string]interface{}) (strokeID string, ok bool) {
	strokeID, ok = getString(data, "strokeId")
	if !ok || strokeID == "" {
		return "", false
	}
	return strokeID, true
}

// StrokeMoveFields extracts and validates a stroke_move payload:
// strokeId plus a dx/dy translation.
func StrokeMoveFields(data map[string]interface{}) (strokeID string, dx, dy float32, ok bool) {
	strokeID, ok1 := getString(data, "strokeId")
	fdx, ok2 := getFloat(data, "dx")
	fdy, ok3 := getFloat(data, "dy")
	if !ok1 || !ok2 || !ok3 || strokeID == "" {
		return "", 0, 0, false
	}
	return strokeID, float32(fdx), float32(fdy), true
}
