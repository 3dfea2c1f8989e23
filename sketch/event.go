package sketch

import "fmt"

// EventKind names the things a user can do to the canvas.
type EventKind int

const (
	// PointerDown starts a gesture.
	PointerDown EventKind = iota
	// PointerMove continues a gesture.
	PointerMove
	// PointerUp ends a gesture.
	PointerUp
	// ClearRequested empties the canvas.
	ClearRequested
	// PredictRequested asks for a classification of the current drawing.
	PredictRequested
)

// String returns the name of the event kind.
func (k EventKind) String() string {
	switch k {
	case PointerDown:
		return "pointer_down"
	case PointerMove:
		return "pointer_move"
	case PointerUp:
		return "pointer_up"
	case ClearRequested:
		return "clear"
	case PredictRequested:
		return "predict"
	default:
		return fmt.Sprintf("event(%d)", int(k))
	}
}

// Event is a single user action. Point is only meaningful for pointer events.
type Event struct {
	Kind  EventKind
	Point Point
}

// Apply returns the session that results from handling ev. Pointer events
// outside the canvas are ignored. PredictRequested leaves the session
// unchanged.
//
// Arguments:
//   - s: The current session.
//   - ev: The event to apply.
//
// Returns:
//   - Session: The updated session.
func Apply(s Session, ev Event) Session {
	switch ev.Kind {
	case PointerDown:
		if !s.Contains(ev.Point) {
			return s
		}
		s = s.withPoints(ev.Point)
		s.Drawing = true
		return s
	case PointerMove:
		if !s.Drawing || !s.Contains(ev.Point) {
			return s
		}
		if len(s.Points) == 0 {
			return s.withPoints(ev.Point)
		}
		last := s.Points[len(s.Points)-1]
		return s.withPoints(interpolate(last, ev.Point, s.MaxGap)...)
	case PointerUp:
		s.Drawing = false
		return s
	case ClearRequested:
		s.Points = nil
		s.Drawing = false
		return s
	default:
		return s
	}
}
