package tui

import (
	"fmt"
	"image"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

const (
	barWidth   = 20
	inkCutoff  = 128
	barFilled  = "█"
	barPending = "░"
)

var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#C89A3A"))
	canvasStyle  = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("#6E6E6E"))
	buttonStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0"))
	statusStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C"))
	failureStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F"))
	digitStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#52C41A"))
	barStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#C89A3A"))
	topBarStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#52C41A"))
	labelStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
)

// halfBlocks draws img with one character per column and two pixel rows per
// line. ink decides whether a pixel is drawn.
func halfBlocks(img *image.Gray, ink func(v uint8) bool) []string {
	b := img.Bounds()
	lines := make([]string, 0, (b.Dy()+1)/2)
	for y := b.Min.Y; y < b.Max.Y; y += 2 {
		var sb strings.Builder
		for x := b.Min.X; x < b.Max.X; x++ {
			top := ink(img.GrayAt(x, y).Y)
			bottom := y+1 < b.Max.Y && ink(img.GrayAt(x, y+1).Y)
			switch {
			case top && bottom:
				sb.WriteString("█")
			case top:
				sb.WriteString("▀")
			case bottom:
				sb.WriteString("▄")
			default:
				sb.WriteByte(' ')
			}
		}
		lines = append(lines, sb.String())
	}
	return lines
}

// darkInk matches black strokes on white paper.
func darkInk(v uint8) bool { return v < inkCutoff }

// brightInk matches the white digit on black of a processed image.
func brightInk(v uint8) bool { return v >= inkCutoff }

// bar renders a horizontal bar for a probability in [0, 1].
func bar(p float32, width int) string {
	if p < 0 {
		p = 0
	}
	if p > 1 {
		p = 1
	}
	filled := int(p*float32(width) + 0.5)
	return strings.Repeat(barFilled, filled) + strings.Repeat(barPending, width-filled)
}

// probabilityBars renders one labelled bar per class, highlighting top.
func probabilityBars(labels []string, probs []float32, top int) []string {
	lines := make([]string, 0, len(probs))
	for i, p := range probs {
		style := barStyle
		if i == top {
			style = topBarStyle
		}
		lines = append(lines, fmt.Sprintf("%s %s %s",
			labelStyle.Render(labels[i]),
			style.Render(bar(p, barWidth)),
			labelStyle.Render(fmt.Sprintf("%.2f", p)),
		))
	}
	return lines
}
