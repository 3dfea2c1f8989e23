// Package tui provides the Bubble Tea drawing canvas.
package tui

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
	"github.com/rs/zerolog"

	"github.com/nvr-ai/go-digits/controller"
	"github.com/nvr-ai/go-digits/inference"
	"github.com/nvr-ai/go-digits/sketch"
)

const (
	// DefaultCols is the canvas width in terminal cells.
	DefaultCols = 56
	// DefaultRows is the canvas height in terminal cells. Cells are about
	// twice as tall as wide, so 56x28 cells look square.
	DefaultRows = 28

	// The canvas content starts below the title and inside the border.
	canvasTop  = 2
	canvasLeft = 1

	clearLabel   = "[ Clear ]"
	predictLabel = "[ Predict ]"
	buttonGap    = 2
)

// Config sizes the canvas on screen.
type Config struct {
	Cols int
	Rows int
	// MarkerRadius is the ink radius in snapshot pixels and Pixels the
	// snapshot side, used to draw the on-screen ink in proportion.
	MarkerRadius float64
	Pixels       int
}

// button is a clickable label on the buttons row.
type button struct {
	label string
	start int
	kind  sketch.EventKind
}

// Model implements the Bubble Tea drawing UI.
type Model struct {
	ctx      context.Context
	ctrl     *controller.Controller
	screen   *sketch.Renderer
	cols     int
	rows     int
	buttons  []button
	status   string
	failed   bool
	outcome  *controller.Outcome
	pressing bool
	keys     keyMap
	help     help.Model
	logger   zerolog.Logger

	width  int
	height int
}

// NewModel constructs a drawing TUI model around ctrl.
//
// Arguments:
//   - ctx: Passed to every prediction.
//   - ctrl: Owns the session and runs predictions.
//   - cfg: Canvas size, zero values take the defaults.
//   - logger: Receives UI traces.
//
// Returns:
//   - *Model: The model.
func NewModel(ctx context.Context, ctrl *controller.Controller, cfg Config, logger zerolog.Logger) *Model {
	if cfg.Cols <= 0 {
		cfg.Cols = DefaultCols
	}
	if cfg.Rows <= 0 {
		cfg.Rows = DefaultRows
	}
	if cfg.Pixels <= 0 {
		cfg.Pixels = sketch.DefaultPixels
	}
	if cfg.MarkerRadius <= 0 {
		cfg.MarkerRadius = sketch.DefaultMarkerRadius
	}

	// Half-blocks give two pixels per row.
	radius := cfg.MarkerRadius * float64(cfg.Cols) / float64(cfg.Pixels)
	m := &Model{
		ctx:    ctx,
		ctrl:   ctrl,
		screen: sketch.NewRenderer(cfg.Cols, cfg.Rows*2, radius),
		cols:   cfg.Cols,
		rows:   cfg.Rows,
		status: "Draw a digit with the mouse, then press Predict.",
		keys:   defaultKeys,
		help:   help.New(),
		logger: logger,
	}
	start := canvasLeft
	for _, b := range []button{
		{label: clearLabel, kind: sketch.ClearRequested},
		{label: predictLabel, kind: sketch.PredictRequested},
	} {
		b.start = start
		m.buttons = append(m.buttons, b)
		start += len(b.label) + buttonGap
	}
	return m
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, m.keys.Clear):
			m.dispatch(sketch.Event{Kind: sketch.ClearRequested})
		case key.Matches(msg, m.keys.Predict):
			m.dispatch(sketch.Event{Kind: sketch.PredictRequested})
		}
		return m, nil
	case tea.MouseMsg:
		m.handleMouse(msg)
		return m, nil
	default:
		return m, nil
	}
}

func (m *Model) handleMouse(msg tea.MouseMsg) {
	switch msg.Action {
	case tea.MouseActionPress:
		if msg.Button != tea.MouseButtonLeft {
			return
		}
		if kind, ok := m.buttonAt(msg.X, msg.Y); ok {
			m.dispatch(sketch.Event{Kind: kind})
			return
		}
		if p, ok := m.canvasPoint(msg.X, msg.Y); ok {
			m.pressing = true
			m.dispatch(sketch.Event{Kind: sketch.PointerDown, Point: p})
		}
	case tea.MouseActionMotion:
		if !m.pressing {
			return
		}
		if p, ok := m.canvasPoint(msg.X, msg.Y); ok {
			m.dispatch(sketch.Event{Kind: sketch.PointerMove, Point: p})
		}
	case tea.MouseActionRelease:
		if m.pressing {
			m.pressing = false
			m.dispatch(sketch.Event{Kind: sketch.PointerUp})
		}
	}
}

func (m *Model) dispatch(ev sketch.Event) {
	m.logger.Trace().Stringer("event", ev.Kind).Float64("x", ev.Point.X).Float64("y", ev.Point.Y).Msg("canvas event")

	out := m.ctrl.Dispatch(m.ctx, ev)
	switch ev.Kind {
	case sketch.ClearRequested:
		m.outcome = nil
		m.failed = false
		m.status = "Canvas cleared."
	case sketch.PredictRequested:
		m.outcome = out
		if out != nil {
			m.status = out.Message()
			m.failed = !out.OK()
		}
	}
}

// canvasPoint maps a terminal cell to canvas space, sampling the cell center.
func (m *Model) canvasPoint(x, y int) (sketch.Point, bool) {
	cx, cy := x-canvasLeft, y-canvasTop
	if cx < 0 || cy < 0 || cx >= m.cols || cy >= m.rows {
		return sketch.Point{}, false
	}
	s := m.ctrl.Session()
	return sketch.Point{
		X: (float64(cx) + 0.5) / float64(m.cols) * s.Width,
		Y: s.Height - (float64(cy)+0.5)/float64(m.rows)*s.Height,
	}, true
}

// buttonsRow is below the canvas and its bottom border.
func (m *Model) buttonsRow() int {
	return canvasTop + m.rows + 1
}

func (m *Model) buttonAt(x, y int) (sketch.EventKind, bool) {
	if y != m.buttonsRow() {
		return 0, false
	}
	for _, b := range m.buttons {
		if x >= b.start && x < b.start+len(b.label) {
			return b.kind, true
		}
	}
	return 0, false
}

// View implements tea.Model.
func (m *Model) View() string {
	canvas := canvasStyle.Render(strings.Join(halfBlocks(m.screen.Render(m.ctrl.Session()), darkInk), "\n"))

	labels := make([]string, 0, len(m.buttons))
	for _, b := range m.buttons {
		labels = append(labels, buttonStyle.Render(b.label))
	}
	buttons := strings.Repeat(" ", canvasLeft) + strings.Join(labels, strings.Repeat(" ", buttonGap))

	// The status line never grows wider than the bordered canvas.
	line := runewidth.Truncate(m.status, m.cols+2, "…")
	status := statusStyle.Render(line)
	if m.failed {
		status = failureStyle.Render(line)
	}

	left := lipgloss.JoinVertical(lipgloss.Left, canvas, buttons, status)
	body := lipgloss.JoinHorizontal(lipgloss.Top, left, "   ", m.resultPanel())
	return titleStyle.Render("go-digits") + "  " + m.help.View(m.keys) + "\n" + body
}

func (m *Model) resultPanel() string {
	if m.outcome == nil || m.outcome.Processed == nil {
		return ""
	}
	lines := []string{labelStyle.Render("model input")}
	lines = append(lines, halfBlocks(m.outcome.Processed, brightInk)...)
	if p := m.outcome.Prediction; p != nil {
		lines = append(lines, "", digitStyle.Render(m.outcome.Message()), "")
		lines = append(lines, probabilityBars(inference.Labels, p.Probabilities, p.Digit)...)
	}
	return strings.Join(lines, "\n")
}
