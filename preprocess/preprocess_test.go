package preprocess

import (
	"image"
	"image/color"
	"image/draw"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nvr-ai/go-digits/images"
	"github.com/nvr-ai/go-digits/sketch"
)

// someStrokes stands in for a stroke buffer whose content does not matter
// to the raster pipeline.
var someStrokes = []sketch.Point{{X: 14, Y: 14}}

// whiteCanvas creates a rendered canvas: white paper, no ink.
func whiteCanvas(size int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, size, size))
	draw.Draw(img, img.Bounds(), image.White, image.Point{}, draw.Src)
	return img
}

// inkDisk paints a black disk centered at (cx, cy).
func inkDisk(img *image.RGBA, cx, cy, radius float64) {
	b := img.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			dx := float64(x) + 0.5 - cx
			dy := float64(y) + 0.5 - cy
			if dx*dx+dy*dy <= radius*radius {
				img.Set(x, y, color.Black)
			}
		}
	}
}

// inkRect paints a black rectangle.
func inkRect(img *image.RGBA, r image.Rectangle) {
	draw.Draw(img, r, image.Black, image.Point{}, draw.Src)
}

func tensorData(t *testing.T, res *Result) []float32 {
	t.Helper()
	data, ok := res.Tensor.Data().([]float32)
	require.True(t, ok, "tensor should be backed by float32")
	return data
}

// TestPreprocessShapeAndRange validates the tensor contract for any input
// with foreground.
func TestPreprocessShapeAndRange(t *testing.T) {
	tests := []struct {
		name string
		draw func(img *image.RGBA)
	}{
		{"Central disk", func(img *image.RGBA) { inkDisk(img, 14, 14, 5) }},
		{"Single pixel", func(img *image.RGBA) { inkRect(img, image.Rect(3, 3, 4, 4)) }},
		{"Tall bar at the edge", func(img *image.RGBA) { inkRect(img, image.Rect(0, 0, 2, 28)) }},
		{"Wide bar", func(img *image.RGBA) { inkRect(img, image.Rect(2, 20, 26, 23)) }},
		{"Full canvas", func(img *image.RGBA) { inkRect(img, img.Bounds()) }},
	}

	p := NewPreprocessor(nil)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			img := whiteCanvas(28)
			tt.draw(img)

			res, err := p.Preprocess(img, someStrokes)
			require.NoError(t, err)
			require.NotNil(t, res)

			assert.Equal(t, []int{1, 28, 28, 1}, []int(res.Tensor.Shape()), "tensor shape should match the model input")
			data := tensorData(t, res)
			require.Len(t, data, 28*28)
			for i, v := range data {
				if v < 0 || v > 1 {
					t.Fatalf("value %v at %d is outside [0, 1]", v, i)
				}
			}
			assert.Greater(t, sum(data), float32(0), "some foreground should survive")
		})
	}
}

// TestPreprocessCentersDisk runs the end-to-end disk scenario and checks the
// center of mass of the output.
func TestPreprocessCentersDisk(t *testing.T) {
	img := whiteCanvas(28)
	inkDisk(img, 14, 14, 5)

	res, err := NewPreprocessor(nil).Preprocess(img, someStrokes)
	require.NoError(t, err)

	data := tensorData(t, res)
	var mass, mx, my float64
	for y := 0; y < 28; y++ {
		for x := 0; x < 28; x++ {
			v := float64(data[y*28+x])
			mass += v
			mx += v * (float64(x) + 0.5)
			my += v * (float64(y) + 0.5)
		}
	}
	require.Greater(t, mass, 0.0)
	assert.InDelta(t, 14, mx/mass, 1, "mass should be centered horizontally")
	assert.InDelta(t, 14, my/mass, 1, "mass should be centered vertically")

	assert.Equal(t, 10, res.Bounds.Dx(), "the disk spans ten pixels")
	assert.Equal(t, res.Bounds.Dx()+3, res.Crop.Dx(), "padding adds two pixels before the box and one after")
}

// inkedGray builds the expected binary output: r at full intensity on a zero
// 28x28 canvas.
func inkedGray(r image.Rectangle) *image.Gray {
	img := image.NewGray(image.Rect(0, 0, 28, 28))
	draw.Draw(img, r, image.NewUniform(color.Gray{Y: 255}), image.Point{}, draw.Src)
	return img
}

// TestPreprocessCenteredShapesMapToThemselves validates that centered shapes
// small enough to skip resizing come out of the pipeline where they went in.
func TestPreprocessCenteredShapesMapToThemselves(t *testing.T) {
	tests := []struct {
		name    string
		shape   image.Rectangle
		padding int
	}{
		{"Centered square", image.Rect(9, 9, 19, 19), DefaultPadding},
		{"Tall rectangle", image.Rect(11, 8, 17, 20), DefaultPadding},
		{"Wide rectangle", image.Rect(8, 12, 20, 16), DefaultPadding},
		{"Centered square without padding", image.Rect(9, 9, 19, 19), 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			img := whiteCanvas(28)
			inkRect(img, tt.shape)

			cfg := DefaultConfig()
			cfg.Padding = tt.padding
			res, err := NewPreprocessor(cfg).Preprocess(img, someStrokes)
			require.NoError(t, err)

			expected := inkedGray(tt.shape)
			assert.Equal(t, expected.Pix, res.Image.Pix, "the shape should map to itself")

			data := tensorData(t, res)
			for i, v := range expected.Pix {
				if data[i] != float32(v)/MaxIntensity {
					t.Fatalf("tensor value %v at %d, expected %v", data[i], i, float32(v)/MaxIntensity)
				}
			}
		})
	}
}

// TestPreprocessSymmetricSquare checks that a centered square stays
// symmetric under mirroring.
func TestPreprocessSymmetricSquare(t *testing.T) {
	img := whiteCanvas(28)
	inkRect(img, image.Rect(9, 9, 19, 19))

	res, err := NewPreprocessor(nil).Preprocess(img, someStrokes)
	require.NoError(t, err)

	data := tensorData(t, res)
	at := func(x, y int) float64 { return float64(data[y*28+x]) }
	for y := 0; y < 28; y++ {
		for x := 0; x < 28; x++ {
			assert.InDelta(t, at(x, y), at(27-x, y), 0.02, "horizontal mirror at (%d,%d)", x, y)
			assert.InDelta(t, at(x, y), at(x, 27-y), 0.02, "vertical mirror at (%d,%d)", x, y)
		}
	}
}

func TestPreprocessEmptyInput(t *testing.T) {
	img := whiteCanvas(28)
	inkDisk(img, 14, 14, 5)

	res, err := NewPreprocessor(nil).Preprocess(img, nil)
	assert.ErrorIs(t, err, ErrEmptyInput)
	assert.Nil(t, res)
}

func TestPreprocessNoDigit(t *testing.T) {
	p := NewPreprocessor(nil)

	res, err := p.Preprocess(whiteCanvas(28), someStrokes)
	assert.ErrorIs(t, err, ErrNoDigit, "a blank render with strokes is a distinct failure")
	assert.NotErrorIs(t, err, ErrEmptyInput)
	assert.Nil(t, res)

	// Light anti-aliasing below the threshold is not a digit either.
	faint := whiteCanvas(28)
	draw.Draw(faint, image.Rect(5, 5, 10, 10), image.NewUniform(color.Gray{Y: 200}), image.Point{}, draw.Src)
	_, err = p.Preprocess(faint, someStrokes)
	assert.ErrorIs(t, err, ErrNoDigit)

	_, err = p.PreprocessImage(nil)
	assert.ErrorIs(t, err, ErrNoDigit)
}

func TestPreprocessDoesNotMutateStrokes(t *testing.T) {
	strokes := []sketch.Point{{X: 1, Y: 2}, {X: 3, Y: 4}}
	img := whiteCanvas(28)
	inkDisk(img, 10, 10, 4)

	_, err := NewPreprocessor(nil).Preprocess(img, strokes)
	require.NoError(t, err)
	assert.Equal(t, []sketch.Point{{X: 1, Y: 2}, {X: 3, Y: 4}}, strokes)
}

func TestPreprocessRenderedSession(t *testing.T) {
	s := sketch.NewSession(28, 28)
	s = sketch.Apply(s, sketch.Event{Kind: sketch.PointerDown, Point: sketch.Point{X: 14, Y: 6}})
	s = sketch.Apply(s, sketch.Event{Kind: sketch.PointerMove, Point: sketch.Point{X: 14, Y: 22}})
	s = sketch.Apply(s, sketch.Event{Kind: sketch.PointerUp})

	snap := sketch.NewRenderer(0, 0, 0).Render(s)
	res, err := NewPreprocessor(nil).Preprocess(snap, s.Points)
	require.NoError(t, err)

	// A vertical stroke becomes a tall, narrow digit inside the 20 pixel box.
	box, ok := images.ForegroundBounds(res.Image)
	require.True(t, ok)
	assert.LessOrEqual(t, box.Dy(), 20, "the longer side is resized to 20 pixels")
	assert.Greater(t, box.Dy(), box.Dx(), "aspect ratio is preserved")
	assert.Greater(t, res.Crop.Dy(), res.Crop.Dx())
}

func TestNewPreprocessorDefaults(t *testing.T) {
	assert.Equal(t, *DefaultConfig(), NewPreprocessor(nil).Config())

	cfg := NewPreprocessor(&Config{Threshold: 100, Padding: 3}).Config()
	assert.Equal(t, uint8(100), cfg.Threshold)
	assert.Equal(t, 3, cfg.Padding)
	assert.Equal(t, DefaultDigitSize, cfg.DigitSize)
	assert.Equal(t, DefaultCanvasSize, cfg.CanvasSize)

	zero := NewPreprocessor(&Config{Threshold: 0, Padding: 0}).Config()
	assert.Equal(t, uint8(0), zero.Threshold, "an explicit zero threshold is kept")
	assert.Equal(t, 0, zero.Padding, "an explicit zero padding is kept")

	assert.Equal(t, 0, NewPreprocessor(&Config{Padding: -4}).Config().Padding)

	clamped := NewPreprocessor(&Config{Threshold: DefaultThreshold, DigitSize: 40}).Config()
	assert.Equal(t, DefaultCanvasSize, clamped.DigitSize, "the digit never exceeds the canvas")
}

// TestPreprocessZeroThreshold validates that a zero threshold marks every
// pixel as foreground instead of falling back to the default.
func TestPreprocessZeroThreshold(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Threshold = 0

	res, err := NewPreprocessor(cfg).Preprocess(whiteCanvas(28), someStrokes)
	require.NoError(t, err)
	assert.Equal(t, images.Rect{X1: 0, Y1: 0, X2: 28, Y2: 28}, res.Bounds)

	box, ok := images.ForegroundBounds(res.Image)
	require.True(t, ok)
	assert.Equal(t, 20, box.Dx(), "a full canvas crop shrinks to the digit size")
	assert.Equal(t, 20, box.Dy())
}

func sum(values []float32) float32 {
	var s float32
	for _, v := range values {
		s += v
	}
	return s
}
