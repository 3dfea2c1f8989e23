// Package sketch - Drawing session state and the events that change it.
package sketch

import "math"

const (
	// DefaultSize is the logical width and height of the canvas.
	DefaultSize = 28.0
	// DefaultMaxGap is the largest distance between two recorded points of a
	// gesture before intermediate points are filled in.
	DefaultMaxGap = 0.5
)

// Point is a coordinate in canvas space. The origin is the bottom-left
// corner and y grows upwards.
type Point struct {
	X float64 `json:"x" yaml:"x"`
	Y float64 `json:"y" yaml:"y"`
}

// Session is the state of one drawing canvas. It is a value type, Apply
// returns a new Session instead of changing the one it is given.
type Session struct {
	// Width is the logical width of the canvas.
	Width float64
	// Height is the logical height of the canvas.
	Height float64
	// MaxGap is the interpolation step used while the pointer moves.
	MaxGap float64
	// Points is the stroke buffer.
	Points []Point
	// Drawing is true while the pointer is held down.
	Drawing bool
}

// NewSession creates an empty session for a canvas of the given size.
//
// Arguments:
//   - width: The logical canvas width, DefaultSize when not positive.
//   - height: The logical canvas height, DefaultSize when not positive.
//
// Returns:
//   - Session: The empty session.
func NewSession(width, height float64) Session {
	if width <= 0 {
		width = DefaultSize
	}
	if height <= 0 {
		height = DefaultSize
	}
	return Session{Width: width, Height: height, MaxGap: DefaultMaxGap}
}

// Empty reports whether nothing has been drawn.
func (s Session) Empty() bool {
	return len(s.Points) == 0
}

// Contains reports whether p lies on the canvas.
func (s Session) Contains(p Point) bool {
	return p.X >= 0 && p.Y >= 0 && p.X <= s.Width && p.Y <= s.Height &&
		!math.IsNaN(p.X) && !math.IsNaN(p.Y)
}

// withPoints returns a copy of s whose buffer is extended by pts. The
// result never shares spare capacity with s, so older sessions stay intact.
func (s Session) withPoints(pts ...Point) Session {
	next := make([]Point, len(s.Points), len(s.Points)+len(pts))
	copy(next, s.Points)
	s.Points = append(next, pts...)
	return s
}

// interpolate returns the points strictly after from up to and including to,
// spaced at most step apart.
func interpolate(from, to Point, step float64) []Point {
	if step <= 0 {
		return []Point{to}
	}
	dist := math.Hypot(to.X-from.X, to.Y-from.Y)
	n := int(math.Ceil(dist / step))
	if n <= 1 {
		return []Point{to}
	}
	pts := make([]Point, 0, n)
	for i := 1; i <= n; i++ {
		t := float64(i) / float64(n)
		pts = append(pts, Point{
			X: from.X + (to.X-from.X)*t,
			Y: from.Y + (to.Y-from.Y)*t,
		})
	}
	return pts
}
