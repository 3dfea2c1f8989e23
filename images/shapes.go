// Package images - Image processing utilities
package images

import "image"

// Rect is a lightweight bounding box.
type Rect struct {
	// X2,Y2 are exclusive (like image.Rectangle).
	X1, Y1, X2, Y2 int
}

// RectFromImage converts an image.Rectangle to a Rect.
func RectFromImage(r image.Rectangle) Rect {
	return Rect{X1: r.Min.X, Y1: r.Min.Y, X2: r.Max.X, Y2: r.Max.Y}
}

// Image converts the box to an image.Rectangle.
func (r Rect) Image() image.Rectangle {
	return image.Rect(r.X1, r.Y1, r.X2, r.Y2)
}

// Dx returns the width of the box.
func (r Rect) Dx() int { return r.X2 - r.X1 }

// Dy returns the height of the box.
func (r Rect) Dy() int { return r.Y2 - r.Y1 }

// Empty reports whether the box covers no pixels.
func (r Rect) Empty() bool {
	return r.X1 >= r.X2 || r.Y1 >= r.Y2
}

// Expand grows the box by pad pixels before it and pad-1 pixels after it,
// the margin a slice [min-pad : max+pad] gives over inclusive pixel indices.
// The box itself is always kept, so a pad of zero returns it unchanged. The
// result is clamped to limit.
//
// Arguments:
//   - pad: The margin to add before the box.
//   - limit: The box the result must stay within, usually the image bounds.
//
// Returns:
//   - Rect: The expanded and clamped box.
func (r Rect) Expand(pad int, limit Rect) Rect {
	after := max(pad-1, 0)
	return Rect{
		X1: Clamp(r.X1-pad, limit.X1, limit.X2),
		Y1: Clamp(r.Y1-pad, limit.Y1, limit.Y2),
		X2: Clamp(r.X2+after, limit.X1, limit.X2),
		Y2: Clamp(r.Y2+after, limit.Y1, limit.Y2),
	}
}

// ForegroundBounds finds the smallest box enclosing every non-zero pixel.
//
// Arguments:
//   - img: A grayscale image where foreground is any non-zero intensity.
//
// Returns:
//   - Rect: The enclosing box, in the coordinates of img.
//   - bool: False when the image has no foreground at all.
func ForegroundBounds(img *image.Gray) (Rect, bool) {
	bounds := img.Bounds()
	box := Rect{X1: bounds.Max.X, Y1: bounds.Max.Y, X2: bounds.Min.X, Y2: bounds.Min.Y}
	found := false

	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		row := img.Pix[img.PixOffset(bounds.Min.X, y):]
		for x := 0; x < bounds.Dx(); x++ {
			if row[x] == 0 {
				continue
			}
			found = true
			px := bounds.Min.X + x
			box.X1 = min(box.X1, px)
			box.X2 = max(box.X2, px+1)
			box.Y1 = min(box.Y1, y)
			box.Y2 = max(box.Y2, y+1)
		}
	}

	if !found {
		return Rect{}, false
	}
	return box, true
}

// Crop copies the pixels of img inside r into a new image whose origin is
// (0, 0).
//
// Arguments:
//   - img: The source image.
//   - r: The region to copy, clipped to the image bounds.
//
// Returns:
//   - *image.Gray: The cropped copy.
func Crop(img *image.Gray, r Rect) *image.Gray {
	region := r.Image().Intersect(img.Bounds())
	dst := image.NewGray(image.Rect(0, 0, region.Dx(), region.Dy()))
	for y := 0; y < region.Dy(); y++ {
		srcOff := img.PixOffset(region.Min.X, region.Min.Y+y)
		copy(dst.Pix[y*dst.Stride:(y+1)*dst.Stride], img.Pix[srcOff:srcOff+region.Dx()])
	}
	return dst
}
