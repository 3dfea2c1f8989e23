package images

import (
	"image"
	"math"

	"github.com/nfnt/resize"
)

// FitLongestSide resizes img so that its longer side equals side while
// keeping the aspect ratio. The shorter side is rounded to the nearest pixel
// and never drops below one.
//
// Arguments:
//   - img: The grayscale image to resize.
//   - side: The target length of the longer side.
//
// Returns:
//   - *image.Gray: The resized image, origin at (0, 0).
func FitLongestSide(img *image.Gray, side int) *image.Gray {
	width, height := FitDimensions(img.Bounds().Dx(), img.Bounds().Dy(), side)
	if width == 0 || height == 0 {
		return image.NewGray(image.Rect(0, 0, 0, 0))
	}

	resized := resize.Resize(uint(width), uint(height), img, resize.Bicubic)
	return toGray(resized)
}

// Thumbnail shrinks img so that its longer side is at most side, keeping the
// aspect ratio. Images that already fit are returned unchanged.
//
// Arguments:
//   - img: The grayscale image to shrink.
//   - side: The largest allowed length of the longer side.
//
// Returns:
//   - *image.Gray: The image, origin at (0, 0).
func Thumbnail(img *image.Gray, side int) *image.Gray {
	bounds := img.Bounds()
	if max(bounds.Dx(), bounds.Dy()) <= side {
		return toGray(img)
	}
	return FitLongestSide(img, side)
}

// FitDimensions computes the aspect-preserving size whose longer side is
// side.
//
// Arguments:
//   - width: The source width.
//   - height: The source height.
//   - side: The target length of the longer side.
//
// Returns:
//   - int: The target width.
//   - int: The target height.
func FitDimensions(width, height, side int) (int, int) {
	if width <= 0 || height <= 0 || side <= 0 {
		return 0, 0
	}
	if width >= height {
		h := int(math.Round(float64(height) * float64(side) / float64(width)))
		return side, max(h, 1)
	}
	w := int(math.Round(float64(width) * float64(side) / float64(height)))
	return max(w, 1), side
}

// PasteCentered places img in the middle of a zero-filled size x size canvas
// at offset floor((size-w)/2), floor((size-h)/2). Images larger than the
// canvas are clipped.
//
// Arguments:
//   - img: The image to paste.
//   - size: The side of the square canvas.
//
// Returns:
//   - *image.Gray: The new canvas.
func PasteCentered(img *image.Gray, size int) *image.Gray {
	dst := image.NewGray(image.Rect(0, 0, size, size))
	bounds := img.Bounds()
	offX := (size - bounds.Dx()) / 2
	offY := (size - bounds.Dy()) / 2

	for y := 0; y < bounds.Dy(); y++ {
		dy := offY + y
		if dy < 0 || dy >= size {
			continue
		}
		for x := 0; x < bounds.Dx(); x++ {
			dx := offX + x
			if dx < 0 || dx >= size {
				continue
			}
			dst.Pix[dst.PixOffset(dx, dy)] = img.Pix[img.PixOffset(bounds.Min.X+x, bounds.Min.Y+y)]
		}
	}

	return dst
}

func toGray(img image.Image) *image.Gray {
	if g, ok := img.(*image.Gray); ok && g.Bounds().Min == (image.Point{}) {
		return g
	}
	return Grayscale(img)
}
