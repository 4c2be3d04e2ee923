package game

import (
	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/windflow/basemap"
	"github.com/pthm-cable/windflow/config"
	"github.com/pthm-cable/windflow/systems"
	"github.com/pthm-cable/windflow/ui"
)

var (
	regionColor = rl.Color{R: 255, G: 160, B: 60, A: 160}
	domainColor = rl.Color{R: 120, G: 255, B: 160, A: 160}
)

// drawOverlays renders the debug overlays above the wind layer.
func (g *Game) drawOverlays() {
	if g.overlays.IsEnabled(ui.OverlayFieldGrid) {
		g.drawFieldGrid()
	}
	if g.overlays.IsEnabled(ui.OverlayRegion) {
		g.drawBox(g.region, regionColor)
		g.drawBox(g.domain, domainColor)
	}
}

// drawFieldGrid draws every field sample as an arrow in its wind color.
func (g *Game) drawFieldGrid() {
	cfg := config.Cfg()
	var pts []rl.Vector2
	for _, s := range g.field.Samples {
		arrow := systems.ArrowPath(s, cfg.Instanced.ArrowLength, cfg.Derived.ArrowSpreadRad)
		col := rl.Color(systems.WindColor(s.Speed))
		for _, strip := range basemap.ProjectRing(g.camera, arrow[:]) {
			pts = pts[:0]
			for _, v := range strip {
				pts = append(pts, rl.Vector2{X: v.X, Y: v.Y})
			}
			rl.DrawLineStrip(pts, col)
		}
	}
}

// drawBox outlines a geographic box.
func (g *Game) drawBox(b systems.Bounds, col rl.Color) {
	if b.Empty() {
		return
	}
	nw, err := g.camera.Project(systems.LngLat{Lng: b.West, Lat: b.North})
	if err != nil {
		return
	}
	se, err := g.camera.Project(systems.LngLat{Lng: b.East, Lat: b.South})
	if err != nil {
		return
	}
	rl.DrawRectangleLinesEx(rl.Rectangle{X: nw.X, Y: nw.Y, Width: se.X - nw.X, Height: se.Y - nw.Y}, 2, col)
}

// drawUI renders the HUD and panels and returns the settings after this
// frame's control input.
func (g *Game) drawUI() ui.Settings {
	w, h := int32(g.screenWidth), int32(g.screenHeight)

	data := ui.HUDData{
		Renderer:     g.settings.Renderer,
		Animate:      g.settings.Animate,
		Particles:    g.particleCount(),
		FieldSamples: g.field.Len(),
		Density:      g.settings.Density,
		Zoom:         g.camera.Zoom,
		Center:       g.camera.Center(),
		Frame:        g.frame,
		FPS:          rl.GetFPS(),
		Notice:       g.Notice(),
		ScreenWidth:  w,
		ScreenHeight: h,
	}
	if s, ok := g.layer.(statsLayer); ok {
		data.Stats = s.LastStats()
	}
	mouse := rl.GetMousePosition()
	if p, err := g.camera.Unproject(systems.Vec2{X: mouse.X, Y: mouse.Y}); err == nil {
		data.Cursor = &p
	}
	g.hud.Draw(data)
	g.hud.DrawControls(h, controlsHelp)

	if g.overlays.IsEnabled(ui.OverlayLegend) {
		g.hud.DrawLegend(w, h, systems.SaturationSpeed)
	}
	if g.overlays.IsEnabled(ui.OverlayPerf) {
		g.perfPanel.Draw(g.perfCollector.Stats())
	}

	lim := limitsFor(g.settings.Renderer)
	return g.controls.Draw(g.settings, ui.Limits{
		MaxDensity:   g.synth.MaxDensity,
		MinParticles: lim.min,
		MaxParticles: lim.max,
	}, g.overlays)
}
