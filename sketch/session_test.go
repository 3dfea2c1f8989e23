package sketch

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nvr-ai/go-digits/images"
)

func TestApplyGesture(t *testing.T) {
	s := NewSession(0, 0)
	require.True(t, s.Empty())
	assert.Equal(t, DefaultSize, s.Width)

	s = Apply(s, Event{Kind: PointerMove, Point: Point{X: 5, Y: 5}})
	assert.True(t, s.Empty(), "moves without a press are ignored")

	s = Apply(s, Event{Kind: PointerDown, Point: Point{X: 10, Y: 10}})
	assert.True(t, s.Drawing)
	assert.Len(t, s.Points, 1)

	s = Apply(s, Event{Kind: PointerMove, Point: Point{X: 10.25, Y: 10}})
	assert.Len(t, s.Points, 2, "short moves add a single point")

	s = Apply(s, Event{Kind: PointerMove, Point: Point{X: 12.25, Y: 10}})
	assert.Len(t, s.Points, 6, "long moves are filled in at MaxGap spacing")
	assert.Equal(t, Point{X: 12.25, Y: 10}, s.Points[len(s.Points)-1])

	s = Apply(s, Event{Kind: PointerMove, Point: Point{X: 40, Y: 10}})
	assert.Len(t, s.Points, 6, "points off the canvas are dropped")

	s = Apply(s, Event{Kind: PointerUp})
	assert.False(t, s.Drawing)

	s = Apply(s, Event{Kind: PointerMove, Point: Point{X: 3, Y: 3}})
	assert.Len(t, s.Points, 6, "moves after release are ignored")

	s = Apply(s, Event{Kind: PredictRequested})
	assert.Len(t, s.Points, 6, "predict does not touch the buffer")

	s = Apply(s, Event{Kind: ClearRequested})
	assert.True(t, s.Empty())
	assert.False(t, s.Drawing)
}

func TestApplyDoesNotMutateInput(t *testing.T) {
	s := NewSession(28, 28)
	s = Apply(s, Event{Kind: PointerDown, Point: Point{X: 1, Y: 1}})
	before := s

	after := Apply(before, Event{Kind: PointerMove, Point: Point{X: 1.2, Y: 1}})
	require.Len(t, after.Points, 2)
	assert.Len(t, before.Points, 1, "the previous session keeps its buffer")

	other := Apply(before, Event{Kind: PointerMove, Point: Point{X: 1, Y: 1.3}})
	assert.Equal(t, Point{X: 1.2, Y: 1}, after.Points[1], "sibling sessions do not share storage")
	assert.Equal(t, Point{X: 1, Y: 1.3}, other.Points[1])
}

func TestEventKindString(t *testing.T) {
	assert.Equal(t, "pointer_down", PointerDown.String())
	assert.Equal(t, "predict", PredictRequested.String())
	assert.Equal(t, "event(42)", EventKind(42).String())
}

func TestRender(t *testing.T) {
	r := NewRenderer(0, 0, 0)
	s := NewSession(28, 28)

	blank := r.Render(s)
	_, found := images.ForegroundBounds(images.Invert(blank))
	assert.False(t, found, "an empty session renders a white canvas")

	// Bottom-left in canvas space is bottom-left in the snapshot.
	s = Apply(s, Event{Kind: PointerDown, Point: Point{X: 4, Y: 4}})
	snap := r.Render(s)
	require.Equal(t, DefaultPixels, snap.Bounds().Dx())

	x, y := r.ToPixel(s, Point{X: 4, Y: 4})
	assert.InDelta(t, 24, x, 1e-9)
	assert.InDelta(t, 144, y, 1e-9)
	assert.Equal(t, uint8(0), snap.GrayAt(24, 144).Y, "ink is drawn at the point")
	assert.Equal(t, uint8(255), snap.GrayAt(144, 24).Y, "the mirrored corner stays blank")

	box, found := images.ForegroundBounds(images.Threshold(images.Invert(snap), 128))
	require.True(t, found)
	assert.InDelta(t, 2*DefaultMarkerRadius, box.Dx(), 2, "the disk has the configured radius")
}
