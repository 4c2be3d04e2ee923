// Package inspector is the wind probe. Right-click a point on the map to see
// the nearest field sample and the nearest live particle.
package inspector

import (
	"math"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/windflow/systems"
)

// Panel dimensions
const (
	PanelWidth   = 320
	PanelPadding = 10
	HeaderHeight = 30
)

// Panel colors
var (
	ColorPanelBg     = rl.Color{R: 30, G: 30, B: 35, A: 240}
	ColorPanelHeader = rl.Color{R: 45, G: 45, B: 55, A: 255}
	ColorPanelBorder = rl.Color{R: 70, G: 70, B: 80, A: 255}
	ColorHeaderText  = rl.Color{R: 255, G: 255, B: 255, A: 255}
	ColorCloseBtn    = rl.Color{R: 180, G: 80, B: 80, A: 255}
	ColorSection     = rl.Color{R: 50, G: 50, B: 60, A: 255}
	ColorSectionText = rl.Color{R: 200, G: 200, B: 220, A: 255}
)

// Selection is the result of probing one map point.
type Selection struct {
	At systems.LngLat

	Sample    systems.WindSample
	HasSample bool

	Particle      systems.Particle
	ParticleIndex int
	HasParticle   bool
	Distance      float64 // degrees from At to the particle
}

// SampleView is the field sample section of the panel.
type SampleView struct {
	Position  systems.LngLat
	Direction float32 `inspect:"angle"`
	Speed     float32 `inspect:"bar,max:1.2,ramp:true"`
	Band      string
}

// ParticleView is the particle section of the panel.
type ParticleView struct {
	Slot      int
	Position  systems.LngLat
	Direction float32 `inspect:"angle,name:Heading"`
	Speed     float32 `inspect:"bar,max:1.2,ramp:true"`
	Life      float32 `inspect:"bar,max:1"`
	Age       int32   `inspect:"label,name:Age (frames)"`
	Recycles  uint32
	Distance  float64 `inspect:"label,fmt:%.3f deg"`
}

// Probe finds the sample nearest to at and the nearest particle within
// pickRadius degrees. A pickRadius <= 0 accepts any particle.
func Probe(field systems.WindField, particles []systems.Particle, at systems.LngLat, pickRadius float64) Selection {
	sel := Selection{At: at, ParticleIndex: -1}
	sel.Sample, sel.HasSample = systems.Nearest(field, at)

	best := math.Inf(1)
	for i := range particles {
		dx := particles[i].Geo.Lng - at.Lng
		dy := particles[i].Geo.Lat - at.Lat
		d := dx*dx + dy*dy
		if d < best {
			best = d
			sel.ParticleIndex = i
		}
	}
	if sel.ParticleIndex < 0 {
		return sel
	}
	dist := math.Sqrt(best)
	if pickRadius > 0 && dist > pickRadius {
		sel.ParticleIndex = -1
		return sel
	}
	sel.Particle = particles[sel.ParticleIndex]
	sel.HasParticle = true
	sel.Distance = dist
	return sel
}

// NewSampleView builds the panel view for a field sample.
func NewSampleView(s systems.WindSample) SampleView {
	return SampleView{
		Position:  s.Position,
		Direction: float32(s.Direction),
		Speed:     float32(s.Speed),
		Band:      systems.SpeedBand(s.Speed),
	}
}

// NewParticleView builds the panel view for the particle in slot.
func NewParticleView(p systems.Particle, slot int, distance float64) ParticleView {
	return ParticleView{
		Slot:      slot,
		Position:  p.Geo,
		Direction: float32(p.Direction),
		Speed:     float32(p.Speed),
		Life:      p.LifeRatio(),
		Age:       p.Age,
		Recycles:  p.Recycles,
		Distance:  distance,
	}
}

// Inspector tracks the probed point and draws its panel.
type Inspector struct {
	sel         Selection
	hasSelected bool
	panelX      int32
	panelY      int32
	pickRadius  float64
}

// NewInspector creates an inspector for a screen of the given width.
func NewInspector(screenWidth, screenHeight int32) *Inspector {
	ins := &Inspector{pickRadius: 1.0}
	ins.Resize(screenWidth, screenHeight)
	return ins
}

// Resize keeps the panel anchored to the right edge under the HUD.
func (ins *Inspector) Resize(screenWidth, screenHeight int32) {
	ins.panelX = screenWidth - PanelWidth - 10
	ins.panelY = 90
}

// HandleInput selects on right click and deselects on Backspace or the
// close button. Escape stays the window's exit key. blocked is true when
// the cursor is over another panel.
func (ins *Inspector) HandleInput(proj systems.Projector, field systems.WindField, particles []systems.Particle, blocked bool) {
	if rl.IsKeyPressed(rl.KeyBackspace) {
		ins.Deselect()
		return
	}

	mouse := rl.GetMousePosition()
	if ins.hasSelected && rl.IsMouseButtonPressed(rl.MouseButtonLeft) {
		closeX := ins.panelX + PanelWidth - 25
		closeY := ins.panelY + 5
		if int32(mouse.X) >= closeX && int32(mouse.X) <= closeX+20 &&
			int32(mouse.Y) >= closeY && int32(mouse.Y) <= closeY+20 {
			ins.Deselect()
		}
		return
	}

	if blocked || !rl.IsMouseButtonPressed(rl.MouseButtonRight) {
		return
	}
	if ins.hasSelected && ins.overPanel(mouse) {
		return
	}

	at, err := proj.Unproject(systems.Vec2{X: mouse.X, Y: mouse.Y})
	if err != nil {
		return
	}
	ins.Select(Probe(field, particles, at, ins.pickRadius))
}

func (ins *Inspector) overPanel(p rl.Vector2) bool {
	return int32(p.X) >= ins.panelX && int32(p.X) <= ins.panelX+PanelWidth && int32(p.Y) >= ins.panelY
}

// Select replaces the current selection.
func (ins *Inspector) Select(sel Selection) {
	ins.sel = sel
	ins.hasSelected = true
}

// Deselect clears the current selection.
func (ins *Inspector) Deselect() {
	ins.sel = Selection{}
	ins.hasSelected = false
}

// Selected returns the current selection.
func (ins *Inspector) Selected() (Selection, bool) {
	return ins.sel, ins.hasSelected
}

// Refresh follows the selected particle slot and re-reads the sample after a
// field reset. The particle is dropped once its slot no longer exists.
func (ins *Inspector) Refresh(field systems.WindField, particles []systems.Particle) {
	if !ins.hasSelected {
		return
	}
	ins.sel.Sample, ins.sel.HasSample = systems.Nearest(field, ins.sel.At)
	if !ins.sel.HasParticle {
		return
	}
	i := ins.sel.ParticleIndex
	if i < 0 || i >= len(particles) {
		ins.sel.HasParticle = false
		ins.sel.ParticleIndex = -1
		return
	}
	ins.sel.Particle = particles[i]
	dx := particles[i].Geo.Lng - ins.sel.At.Lng
	dy := particles[i].Geo.Lat - ins.sel.At.Lat
	ins.sel.Distance = math.Hypot(dx, dy)
}

// Draw renders the probe markers and the panel.
func (ins *Inspector) Draw(proj systems.Projector) {
	if !ins.hasSelected {
		return
	}
	sel := ins.sel

	if v, err := proj.Project(sel.At); err == nil {
		rl.DrawCircleLines(int32(v.X), int32(v.Y), 4, rl.White)
	}
	if sel.HasSample {
		if v, err := proj.Project(sel.Sample.Position); err == nil {
			rl.DrawCircleLines(int32(v.X), int32(v.Y), 8, rl.Yellow)
		}
	}
	if sel.HasParticle {
		if v, err := proj.Project(sel.Particle.Geo); err == nil {
			rl.DrawCircleLines(int32(v.X), int32(v.Y), 6, rl.SkyBlue)
		}
	}

	var sampleFields, particleFields []Field
	if sel.HasSample {
		sampleFields = ExtractFields(NewSampleView(sel.Sample))
	}
	if sel.HasParticle {
		particleFields = ExtractFields(NewParticleView(sel.Particle, sel.ParticleIndex, sel.Distance))
	}

	panelHeight := ins.panelHeight(sampleFields, particleFields)
	rl.DrawRectangle(ins.panelX, ins.panelY, PanelWidth, panelHeight, ColorPanelBg)
	rl.DrawRectangleLinesEx(
		rl.Rectangle{X: float32(ins.panelX), Y: float32(ins.panelY), Width: PanelWidth, Height: float32(panelHeight)},
		1,
		ColorPanelBorder,
	)

	rl.DrawRectangle(ins.panelX, ins.panelY, PanelWidth, HeaderHeight, ColorPanelHeader)
	rl.DrawText("WIND PROBE", ins.panelX+PanelPadding, ins.panelY+7, 16, ColorHeaderText)

	closeX := ins.panelX + PanelWidth - 25
	closeY := ins.panelY + 5
	rl.DrawRectangle(closeX, closeY, 20, 20, ColorCloseBtn)
	rl.DrawText("X", closeX+6, closeY+3, 14, rl.White)

	x := ins.panelX + PanelPadding
	y := ins.panelY + HeaderHeight + PanelPadding

	y += DrawLabel(x, y, "Probe", sel.At, nil)
	y += 4

	ins.drawSectionHeader(x, y, "FIELD SAMPLE")
	y += 20
	if len(sampleFields) == 0 {
		rl.DrawText("(empty field)", x, y, 12, ColorTextDim)
		y += 16
	}
	for _, f := range sampleFields {
		y += DrawField(x, y, f)
	}
	y += 4

	ins.drawSectionHeader(x, y, "PARTICLE")
	y += 20
	if len(particleFields) == 0 {
		rl.DrawText("(none nearby)", x, y, 12, ColorTextDim)
	}
	for _, f := range particleFields {
		y += DrawField(x, y, f)
	}
}

// drawSectionHeader renders a section title.
func (ins *Inspector) drawSectionHeader(x, y int32, title string) {
	rl.DrawRectangle(x-2, y-2, PanelWidth-2*PanelPadding+4, 18, ColorSection)
	rl.DrawText(title, x+2, y, 14, ColorSectionText)
}

func (ins *Inspector) panelHeight(sample, particle []Field) int32 {
	h := int32(HeaderHeight + PanelPadding)
	h += 18 + 4 // probe line
	h += 20     // sample header
	if len(sample) == 0 {
		h += 16
	}
	for _, f := range sample {
		h += FieldHeight(f)
	}
	h += 4 + 20 // particle header
	if len(particle) == 0 {
		h += 16
	}
	for _, f := range particle {
		h += FieldHeight(f)
	}
	return h + PanelPadding
}
