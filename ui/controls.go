package ui

import (
	"fmt"
	"math"

	gui "github.com/gen2brain/raylib-go/raygui"
	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/windflow/config"
)

// Settings are the view options the user can change at runtime.
type Settings struct {
	Renderer  string
	Animate   bool
	Density   int
	Particles int
}

// Changes flags which settings differ between two snapshots.
type Changes struct {
	Renderer  bool
	Animate   bool
	Density   bool
	Particles bool
}

// Diff compares s against prev.
func (s Settings) Diff(prev Settings) Changes {
	return Changes{
		Renderer:  s.Renderer != prev.Renderer,
		Animate:   s.Animate != prev.Animate,
		Density:   s.Density != prev.Density,
		Particles: s.Particles != prev.Particles,
	}
}

// Any reports whether anything changed.
func (c Changes) Any() bool {
	return c.Renderer || c.Animate || c.Density || c.Particles
}

// Renderers lists the selectable renderers in display order.
var Renderers = []string{config.RendererCanvas, config.RendererInstanced, config.RendererGPU}

// Limits bounds the slider ranges.
type Limits struct {
	MaxDensity   int
	MinParticles int
	MaxParticles int
}

// SnapParticles rounds a slider value to a step that keeps the readout
// stable while dragging.
func SnapParticles(v float32, lim Limits) int {
	step := 100.0
	if lim.MaxParticles > 20000 {
		step = 1024
	}
	n := int(math.Round(float64(v)/step) * step)
	return min(max(n, lim.MinParticles), lim.MaxParticles)
}

// SnapDensity rounds a slider value to a whole grid density.
func SnapDensity(v float32, lim Limits) int {
	return min(max(int(math.Round(float64(v))), 1), lim.MaxDensity)
}

// ControlsPanel renders the left-side panel with renderer buttons, sliders
// and overlay toggles.
type ControlsPanel struct {
	renderer *Renderer
	x, y     int32
	width    int32
	visible  bool

	lastHeight int32
}

// NewControlsPanel creates a new controls panel.
func NewControlsPanel(x, y, width int32) *ControlsPanel {
	return &ControlsPanel{
		renderer: NewRenderer(),
		x:        x,
		y:        y,
		width:    width,
		visible:  true,
	}
}

// SetVisible shows or hides the panel.
func (c *ControlsPanel) SetVisible(visible bool) {
	c.visible = visible
}

// IsVisible returns whether the panel is shown.
func (c *ControlsPanel) IsVisible() bool {
	return c.visible
}

// Toggle switches panel visibility.
func (c *ControlsPanel) Toggle() bool {
	c.visible = !c.visible
	return c.visible
}

// Contains reports whether a screen point is over the panel, so map input can
// ignore clicks meant for the controls.
func (c *ControlsPanel) Contains(p rl.Vector2) bool {
	if !c.visible {
		return false
	}
	return rl.CheckCollisionPointRec(p, rl.Rectangle{
		X: float32(c.x), Y: float32(c.y), Width: float32(c.width), Height: float32(c.lastHeight),
	})
}

func (c *ControlsPanel) height(overlays *OverlayRegistry) int32 {
	t := c.renderer.Theme
	rows := len(overlays.All()) + len(overlays.Categories())
	return t.Padding*2 + 24 + 40 + 36 + 2*52 + 8 + int32(rows)*t.LineHeight
}

// Draw renders the panel and returns the settings after this frame's input.
func (c *ControlsPanel) Draw(s Settings, lim Limits, overlays *OverlayRegistry) Settings {
	if !c.visible {
		return s
	}

	r := c.renderer
	padding := r.Theme.Padding
	lineHeight := r.Theme.LineHeight
	inner := float32(c.width - padding*2)
	x := float32(c.x + padding)

	c.lastHeight = c.height(overlays)
	r.DrawPanel(c.x, c.y, c.width, c.lastHeight)
	y := c.y + padding

	rl.DrawText("Wind Map", c.x+padding, y, 16, rl.White)
	y += 24

	// Renderer selection
	bw := (inner - 8) / float32(len(Renderers))
	for i, name := range Renderers {
		label := name
		if name == s.Renderer {
			label = "[" + name + "]"
		}
		if gui.Button(rl.Rectangle{X: x + float32(i)*(bw+4), Y: float32(y), Width: bw, Height: 28}, label) {
			s.Renderer = name
		}
	}
	y += 40

	if gui.Button(rl.Rectangle{X: x, Y: float32(y), Width: inner, Height: 28}, toggleText(s.Animate, "Stop", "Animate")) {
		s.Animate = !s.Animate
	}
	y += 36

	// Density slider
	rl.DrawText(fmt.Sprintf("Grid density: %d", s.Density), c.x+padding, y, r.Theme.FontSize, r.Theme.LabelColor)
	y += 18
	newDensity := gui.SliderBar(
		rl.Rectangle{X: x, Y: float32(y), Width: inner - 40, Height: 20},
		"", fmt.Sprint(lim.MaxDensity),
		float32(s.Density), 1, float32(lim.MaxDensity),
	)
	s.Density = SnapDensity(newDensity, lim)
	y += 34

	// Particle slider
	rl.DrawText(fmt.Sprintf("Particles: %d", s.Particles), c.x+padding, y, r.Theme.FontSize, r.Theme.LabelColor)
	y += 18
	newCount := gui.SliderBar(
		rl.Rectangle{X: x, Y: float32(y), Width: inner - 40, Height: 20},
		"", fmt.Sprint(lim.MaxParticles),
		float32(s.Particles), float32(lim.MinParticles), float32(lim.MaxParticles),
	)
	if n := SnapParticles(newCount, lim); n != s.Particles && newCount != float32(s.Particles) {
		s.Particles = n
	}
	y += 34 + 8

	for _, category := range overlays.Categories() {
		rl.DrawText(categoryLabel(category), c.x+padding, y, r.Theme.HeaderFontSize, r.Theme.SectionHeader)
		y += lineHeight
		for _, desc := range overlays.ByCategory(category) {
			c.drawToggle(c.x+padding, y, desc, overlays.IsEnabled(desc.ID), c.width-padding*2)
			y += lineHeight
		}
	}

	return s
}

// drawToggle draws a single overlay toggle line.
func (c *ControlsPanel) drawToggle(x, y int32, desc OverlayDescriptor, enabled bool, width int32) {
	r := c.renderer
	r.DrawIndicator(x, y, desc.Name, enabled)

	if desc.KeyLabel != "" {
		keyText := fmt.Sprintf("[%s]", desc.KeyLabel)
		keyWidth := rl.MeasureText(keyText, r.Theme.FontSize)
		rl.DrawText(keyText, x+width-keyWidth, y, r.Theme.FontSize, rl.Color{R: 150, G: 150, B: 150, A: 255})
	}
}

// categoryLabel returns a display label for a category.
func categoryLabel(cat string) string {
	switch cat {
	case "map":
		return "Map"
	case "debug":
		return "Debug"
	default:
		return cat
	}
}

func toggleText(on bool, onText, offText string) string {
	if on {
		return onText
	}
	return offText
}
