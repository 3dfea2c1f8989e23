// Package images - Raster primitives for turning sketches into model input.
package images

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"path/filepath"
	"strings"

	"github.com/chai2010/webp"
	"github.com/pkg/errors"
)

// Image represents an encoded image with a format, data, width, and height.
type Image struct {
	// The format of the image.
	Format ImageFormat `json:"format" yaml:"format"`
	// The data of the image.
	Data []byte `json:"data" yaml:"data"`
	// The width of the image, zero when unknown.
	Width int `json:"width" yaml:"width"`
	// The height of the image, zero when unknown.
	Height int `json:"height" yaml:"height"`
}

// ImageFormat represents supported image formats
type ImageFormat string

// ImageFormat constants
const (
	// FormatJPEG is the JPEG image format.
	FormatJPEG ImageFormat = "jpeg"
	// FormatWebP is the WebP image format.
	FormatWebP ImageFormat = "webp"
	// FormatPNG is the PNG image format.
	FormatPNG ImageFormat = "png"
)

// FormatFromPath maps a file extension to a supported image format.
//
// Arguments:
//   - path: The file path to inspect.
//
// Returns:
//   - ImageFormat: The matching format.
//   - error: An error if the extension is not supported.
func FormatFromPath(path string) (ImageFormat, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".png":
		return FormatPNG, nil
	case ".jpg", ".jpeg":
		return FormatJPEG, nil
	case ".webp":
		return FormatWebP, nil
	default:
		return "", fmt.Errorf("unsupported file extension: %q", filepath.Ext(path))
	}
}

// Decode decodes the image data into an image.Image and fills in the
// dimensions of img.
//
// Arguments:
//   - img: The encoded image.
//
// Returns:
//   - image.Image: The decoded image.
//   - error: An error if the data is empty or cannot be decoded.
func Decode(img *Image) (image.Image, error) {
	if img == nil {
		return nil, errors.New("image is nil")
	}
	if len(img.Data) == 0 {
		return nil, errors.New("image data is empty")
	}

	reader := bytes.NewReader(img.Data)

	var (
		decoded image.Image
		err     error
	)
	switch img.Format {
	case FormatPNG:
		decoded, err = png.Decode(reader)
	case FormatJPEG:
		decoded, err = jpeg.Decode(reader)
	case FormatWebP:
		decoded, err = webp.Decode(reader)
	default:
		return nil, fmt.Errorf("unsupported image format: %q", img.Format)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "failed to decode %s image", img.Format)
	}

	img.Width = decoded.Bounds().Dx()
	img.Height = decoded.Bounds().Dy()
	return decoded, nil
}
