package ui

import (
	"fmt"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/windflow/systems"
)

// Renderer handles all UI drawing with consistent styling.
type Renderer struct {
	Theme Theme
}

// NewRenderer creates a renderer with the default theme.
func NewRenderer() *Renderer {
	return &Renderer{Theme: DefaultTheme()}
}

// DrawPanel draws a panel background with border.
func (r *Renderer) DrawPanel(x, y, width, height int32) {
	rl.DrawRectangle(x, y, width, height, r.Theme.PanelBg)
	rl.DrawRectangleLines(x, y, width, height, r.Theme.PanelBorder)
}

// DrawSectionHeader draws a section header and returns the new Y position.
func (r *Renderer) DrawSectionHeader(x, y int32, title string) int32 {
	rl.DrawText(title, x, y, r.Theme.HeaderFontSize, r.Theme.SectionHeader)
	return y + r.Theme.LineHeight
}

// DrawLabelValue draws a label and value on the same line.
func (r *Renderer) DrawLabelValue(x, y int32, label, value string) int32 {
	rl.DrawText(label+":", x, y, r.Theme.FontSize, r.Theme.LabelColor)
	rl.DrawText(value, x+r.Theme.LabelWidth, y, r.Theme.FontSize, r.Theme.ValueColor)
	return y + r.Theme.LineHeight
}

// DrawBar draws a progress bar for [0, 1] values.
func (r *Renderer) DrawBar(x, y int32, label string, value float32, width int32) int32 {
	value = min(max(value, 0), 1)

	barX := x + r.Theme.LabelWidth
	barWidth := width - r.Theme.LabelWidth - 50

	rl.DrawText(label+":", x, y, r.Theme.FontSize, r.Theme.LabelColor)
	rl.DrawRectangle(barX, y+2, barWidth, r.Theme.BarHeight, r.Theme.BarBg)
	rl.DrawRectangle(barX, y+2, int32(float32(barWidth)*value), r.Theme.BarHeight, r.Theme.BarFill)
	rl.DrawText(fmt.Sprintf("%.2f", value), barX+barWidth+5, y, r.Theme.FontSize, r.Theme.ValueColor)

	return y + r.Theme.LineHeight + 2
}

// DrawIndicator draws an on/off square followed by a label.
func (r *Renderer) DrawIndicator(x, y int32, label string, on bool) {
	c := r.Theme.InactiveColor
	nameColor := r.Theme.LabelColor
	if on {
		c = r.Theme.ActiveColor
		nameColor = rl.White
	}
	rl.DrawRectangle(x, y+2, 8, 8, c)
	rl.DrawText(label, x+14, y, r.Theme.FontSize, nameColor)
}

// RampStops returns n evenly spaced speeds across [0, maxSpeed] with their
// colors, used for the legend.
func RampStops(n int, maxSpeed float64) ([]float64, []rl.Color) {
	if n < 2 {
		n = 2
	}
	speeds := make([]float64, n)
	colors := make([]rl.Color, n)
	for i := range n {
		s := maxSpeed * float64(i) / float64(n-1)
		speeds[i] = s
		colors[i] = rl.Color(systems.WindColor(s))
	}
	return speeds, colors
}

// DrawRampLegend draws the speed color ramp as a horizontal strip with
// labels at both ends and at the band edges.
func (r *Renderer) DrawRampLegend(x, y, width int32, maxSpeed float64) int32 {
	const height = 10
	if maxSpeed <= 0 || width < 2 {
		return y
	}
	_, colors := RampStops(int(width), maxSpeed)
	for i, c := range colors {
		rl.DrawRectangle(x+int32(i), y, 1, height, c)
	}
	rl.DrawRectangleLines(x, y, width, height, r.Theme.PanelBorder)

	ty := y + height + 3
	for _, s := range []float64{0, 0.3, 0.6, maxSpeed} {
		if s > maxSpeed {
			continue
		}
		tx := x + int32(float64(width-1)*s/maxSpeed)
		rl.DrawLine(tx, y+height, tx, y+height+2, r.Theme.LabelColor)
		rl.DrawText(fmt.Sprintf("%.1f", s), tx-6, ty, 10, r.Theme.LabelColor)
	}
	return ty + r.Theme.LineHeight
}
