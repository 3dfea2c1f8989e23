package sketch

import (
	"image"
	"image/color"
	"image/draw"
	"math"

	"golang.org/x/image/vector"
)

const (
	// DefaultPixels is the side of the rendered snapshot, a 6 inch figure
	// saved at 28 dpi.
	DefaultPixels = 168
	// DefaultMarkerRadius is the radius, in pixels, of the disk drawn for
	// each recorded point.
	DefaultMarkerRadius = 6.0

	markerSegments = 24
)

// Renderer rasterizes a stroke buffer into a grayscale snapshot with dark ink
// on a white background, the way the canvas looks on screen.
type Renderer struct {
	// Width is the snapshot width in pixels.
	Width int
	// Height is the snapshot height in pixels.
	Height int
	// MarkerRadius is the radius of each point's disk in pixels.
	MarkerRadius float64
}

// NewRenderer creates a renderer, zero values take the defaults.
func NewRenderer(width, height int, markerRadius float64) *Renderer {
	if width <= 0 {
		width = DefaultPixels
	}
	if height <= 0 {
		height = DefaultPixels
	}
	if markerRadius <= 0 {
		markerRadius = DefaultMarkerRadius
	}
	return &Renderer{Width: width, Height: height, MarkerRadius: markerRadius}
}

// Render draws every point of s as a filled disk.
//
// Arguments:
//   - s: The session to render. It is not modified.
//
// Returns:
//   - *image.Gray: The snapshot.
func (r *Renderer) Render(s Session) *image.Gray {
	dst := image.NewGray(image.Rect(0, 0, r.Width, r.Height))
	draw.Draw(dst, dst.Bounds(), image.White, image.Point{}, draw.Src)

	if len(s.Points) == 0 {
		return dst
	}

	z := vector.NewRasterizer(r.Width, r.Height)
	for _, p := range s.Points {
		cx, cy := r.ToPixel(s, p)
		if cx+r.MarkerRadius < 0 || cy+r.MarkerRadius < 0 ||
			cx-r.MarkerRadius > float64(r.Width) || cy-r.MarkerRadius > float64(r.Height) {
			continue
		}
		addDisk(z, cx, cy, r.MarkerRadius)
	}
	z.Draw(dst, dst.Bounds(), image.NewUniform(color.Black), image.Point{})

	return dst
}

// ToPixel maps a canvas point to pixel space, flipping the y axis.
//
// Arguments:
//   - s: The session whose canvas size defines the mapping.
//   - p: The canvas point.
//
// Returns:
//   - float64: The pixel x coordinate.
//   - float64: The pixel y coordinate.
func (r *Renderer) ToPixel(s Session, p Point) (float64, float64) {
	x := p.X / s.Width * float64(r.Width)
	y := (s.Height - p.Y) / s.Height * float64(r.Height)
	return x, y
}

func addDisk(z *vector.Rasterizer, cx, cy, radius float64) {
	for i := 0; i <= markerSegments; i++ {
		theta := 2 * math.Pi * float64(i) / markerSegments
		x := float32(cx + radius*math.Cos(theta))
		y := float32(cy + radius*math.Sin(theta))
		if i == 0 {
			z.MoveTo(x, y)
			continue
		}
		z.LineTo(x, y)
	}
	z.ClosePath()
}
