package images

import (
	"image"
	"image/color"
)

// Grayscale converts an image to 8-bit grayscale using the ITU-R BT.601 luma
// coefficients (0.299, 0.587, 0.114). Transparent pixels are flattened onto
// a white background so an unpainted canvas reads as paper, not ink.
//
// Arguments:
//   - img: The source image.
//
// Returns:
//   - *image.Gray: A new grayscale image with its origin at (0, 0).
func Grayscale(img image.Image) *image.Gray {
	bounds := img.Bounds()
	dst := image.NewGray(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))

	// Fast path, copy rows.
	if src, ok := img.(*image.Gray); ok {
		for y := 0; y < bounds.Dy(); y++ {
			srcOff := src.PixOffset(bounds.Min.X, bounds.Min.Y+y)
			copy(dst.Pix[y*dst.Stride:y*dst.Stride+bounds.Dx()], src.Pix[srcOff:srcOff+bounds.Dx()])
		}
		return dst
	}

	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			// RGBA() is alpha-premultiplied, adding the uncovered part of the
			// white background keeps fully transparent pixels at 0xffff.
			r, g, b, a := img.At(x, y).RGBA()
			bg := 0xffff - a
			r += bg
			g += bg
			b += bg

			lum := (19595*r + 38470*g + 7471*b + 1<<15) >> 24
			dst.SetGray(x-bounds.Min.X, y-bounds.Min.Y, color.Gray{Y: uint8(lum)})
		}
	}

	return dst
}

// Invert maps every intensity v to 255-v.
//
// Arguments:
//   - img: The grayscale image to invert.
//
// Returns:
//   - *image.Gray: A new inverted image.
func Invert(img *image.Gray) *image.Gray {
	return mapPixels(img, func(v uint8) uint8 { return 255 - v })
}

// Threshold binarizes a grayscale image. Pixels at or above level become 255,
// everything below becomes 0.
//
// Arguments:
//   - img: The grayscale image.
//   - level: The cut-off intensity.
//
// Returns:
//   - *image.Gray: A new binary image.
func Threshold(img *image.Gray, level uint8) *image.Gray {
	return mapPixels(img, func(v uint8) uint8 {
		if v >= level {
			return 255
		}
		return 0
	})
}

// mapPixels applies fn to every pixel of img, row by row so sub-images with a
// wider stride are handled.
func mapPixels(img *image.Gray, fn func(uint8) uint8) *image.Gray {
	bounds := img.Bounds()
	dst := image.NewGray(bounds)
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		src := img.Pix[img.PixOffset(bounds.Min.X, y):]
		out := dst.Pix[dst.PixOffset(bounds.Min.X, y):]
		for x := 0; x < bounds.Dx(); x++ {
			out[x] = fn(src[x])
		}
	}
	return dst
}

// Clamp restricts a value to the specified range [min, max].
//
// Arguments:
//   - value: The value to clamp.
//   - min: The minimum allowed value.
//   - max: The maximum allowed value.
//
// Returns:
//   - The clamped value.
func Clamp(value, min, max int) int {
	if value < min {
		return min
	}
	if value > max {
		return max
	}
	return value
}
