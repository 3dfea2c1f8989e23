// Package preprocess turns a rendered sketch into the normalized tensor an
// MNIST-style classifier expects.
package preprocess

import (
	"fmt"
	"image"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"gorgonia.org/tensor"

	"github.com/nvr-ai/go-digits/images"
	"github.com/nvr-ai/go-digits/sketch"
)

const (
	// DefaultThreshold is the binarization level, the midpoint of the 8-bit
	// range.
	DefaultThreshold = 128
	// DefaultPadding is the margin kept around the digit before cropping.
	DefaultPadding = 2
	// DefaultDigitSize is the largest length of the digit's longer side.
	DefaultDigitSize = 20
	// DefaultCanvasSize is the side of the square model input.
	DefaultCanvasSize = 28
	// MaxIntensity is the divisor used to map 8-bit pixels to [0, 1].
	MaxIntensity = 255.0
)

var (
	// ErrEmptyInput is returned when prediction is requested with nothing drawn.
	ErrEmptyInput = errors.New("please draw a digit first")
	// ErrNoDigit is returned when the rendered canvas has no foreground after
	// thresholding.
	ErrNoDigit = errors.New("no digit detected")
)

// Config defines the preprocessing constants.
type Config struct {
	// Threshold is the binarization level (pixels >= Threshold are foreground).
	Threshold uint8 `json:"threshold" yaml:"threshold" toml:"threshold"`
	// Padding is the margin added around the bounding box before cropping.
	Padding int `json:"padding" yaml:"padding" toml:"padding"`
	// DigitSize bounds the longer side of the digit; larger crops shrink to it.
	DigitSize int `json:"digit_size" yaml:"digit_size" toml:"digit_size"`
	// CanvasSize is the side of the square output image.
	CanvasSize int `json:"canvas_size" yaml:"canvas_size" toml:"canvas_size"`
}

// DefaultConfig returns the MNIST constants.
func DefaultConfig() *Config {
	return &Config{
		Threshold:  DefaultThreshold,
		Padding:    DefaultPadding,
		DigitSize:  DefaultDigitSize,
		CanvasSize: DefaultCanvasSize,
	}
}

// Result contains the model input and the intermediate images that produced
// it.
type Result struct {
	// Tensor is the float32 model input with shape (1, CanvasSize, CanvasSize, 1).
	Tensor *tensor.Dense
	// Image is the centered CanvasSize x CanvasSize digit before normalization.
	Image *image.Gray
	// Bounds is the foreground bounding box in snapshot coordinates.
	Bounds images.Rect
	// Crop is the padded region that was cropped from the snapshot.
	Crop images.Rect
}

// Preprocessor converts snapshots of the canvas into model input.
type Preprocessor struct {
	config *Config
	logger zerolog.Logger
}

// NewPreprocessor creates a new preprocessor with the given configuration.
//
// Arguments:
//   - config: The preprocessing constants, nil takes DefaultConfig. Threshold
//     and Padding are used as given, zero included. Non-positive sizes take
//     the defaults and a negative padding is treated as zero.
//
// Returns:
//   - *Preprocessor: The configured preprocessor.
func NewPreprocessor(config *Config) *Preprocessor {
	cfg := DefaultConfig()
	if config != nil {
		cfg.Threshold = config.Threshold
		cfg.Padding = max(config.Padding, 0)
		if config.DigitSize > 0 {
			cfg.DigitSize = config.DigitSize
		}
		if config.CanvasSize > 0 {
			cfg.CanvasSize = config.CanvasSize
		}
	}
	if cfg.DigitSize > cfg.CanvasSize {
		cfg.DigitSize = cfg.CanvasSize
	}

	return &Preprocessor{config: cfg, logger: zerolog.Nop()}
}

// WithLogger sets the logger used for debug output.
func (p *Preprocessor) WithLogger(logger zerolog.Logger) *Preprocessor {
	p.logger = logger
	return p
}

// Config returns the effective configuration.
func (p *Preprocessor) Config() Config {
	return *p.config
}

// Shape returns the tensor shape produced by Preprocess.
func (p *Preprocessor) Shape() tensor.Shape {
	return tensor.Shape{1, p.config.CanvasSize, p.config.CanvasSize, 1}
}

// Preprocess checks that something was drawn and converts the snapshot.
//
// Arguments:
//   - snapshot: The rendered canvas, dark ink on a light background.
//   - strokes: The stroke buffer the snapshot was rendered from. It is only
//     read.
//
// Returns:
//   - *Result: The model input.
//   - error: ErrEmptyInput when strokes is empty, ErrNoDigit when the
//     snapshot has no foreground.
func (p *Preprocessor) Preprocess(snapshot image.Image, strokes []sketch.Point) (*Result, error) {
	if len(strokes) == 0 {
		return nil, ErrEmptyInput
	}
	return p.PreprocessImage(snapshot)
}

// PreprocessImage runs the raster pipeline: grayscale, invert, threshold,
// crop to the padded bounding box, shrink crops whose longer side exceeds
// DigitSize, center on a CanvasSize square and normalize. Crops that already
// fit keep their size.
//
// Arguments:
//   - snapshot: The image to convert.
//
// Returns:
//   - *Result: The model input.
//   - error: ErrNoDigit when the image has no foreground.
func (p *Preprocessor) PreprocessImage(snapshot image.Image) (*Result, error) {
	if snapshot == nil || snapshot.Bounds().Empty() {
		return nil, ErrNoDigit
	}

	binary := images.Threshold(images.Invert(images.Grayscale(snapshot)), p.config.Threshold)

	bounds, ok := images.ForegroundBounds(binary)
	if !ok {
		return nil, ErrNoDigit
	}

	crop := bounds.Expand(p.config.Padding, images.RectFromImage(binary.Bounds()))
	digit := images.Thumbnail(images.Crop(binary, crop), p.config.DigitSize)
	centered := images.PasteCentered(digit, p.config.CanvasSize)

	p.logger.Debug().
		Str("snapshot", fmt.Sprintf("%dx%d", snapshot.Bounds().Dx(), snapshot.Bounds().Dy())).
		Interface("bounds", bounds).
		Interface("crop", crop).
		Str("digit", fmt.Sprintf("%dx%d", digit.Bounds().Dx(), digit.Bounds().Dy())).
		Msg("preprocessed sketch")

	return &Result{
		Tensor: p.toTensor(centered),
		Image:  centered,
		Bounds: bounds,
		Crop:   crop,
	}, nil
}

// toTensor normalizes the centered image into a (1, H, W, 1) float32 tensor.
func (p *Preprocessor) toTensor(img *image.Gray) *tensor.Dense {
	size := p.config.CanvasSize
	data := make([]float32, size*size)
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			data[y*size+x] = float32(img.Pix[img.PixOffset(x, y)]) / MaxIntensity
		}
	}
	return tensor.New(
		tensor.WithShape(p.Shape()...),
		tensor.Of(tensor.Float32),
		tensor.WithBacking(data),
	)
}
