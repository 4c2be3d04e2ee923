// Package game hosts the wind map: it owns the map adapter, the current wind
// field and the single attached renderer layer, and drives them once per
// frame.
package game

import (
	"fmt"
	"log/slog"
	"math/rand"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/windflow/basemap"
	"github.com/pthm-cable/windflow/camera"
	"github.com/pthm-cable/windflow/config"
	"github.com/pthm-cable/windflow/inspector"
	"github.com/pthm-cable/windflow/renderer"
	"github.com/pthm-cable/windflow/systems"
	"github.com/pthm-cable/windflow/telemetry"
	"github.com/pthm-cable/windflow/ui"
)

// DT is the nominal frame time in seconds.
const DT = 1.0 / 60.0

// Game holds the complete map state.
type Game struct {
	rng     *rand.Rand
	rngSeed int64

	camera *camera.Map
	synth  *systems.FieldSynthesizer
	region systems.Bounds

	// Current field and the particle domain it covers
	field  systems.WindField
	domain systems.Bounds

	settings ui.Settings
	counts   map[string]int // particle count per renderer

	layer  renderer.Layer
	anim   *renderer.Animation
	device *renderer.RaylibDevice

	basemap   *basemap.Basemap
	overlays  *ui.OverlayRegistry
	controls  *ui.ControlsPanel
	hud       *ui.HUD
	perfPanel *ui.PerfPanel
	probe     *inspector.Inspector

	perfCollector *telemetry.PerfCollector
	collector     *telemetry.Collector
	outputManager *telemetry.OutputManager
	logStats      bool

	frame    int64
	resets   int
	headless bool

	// HUD notice shown until frame noticeUntil
	notice      string
	noticeUntil int64

	// Input state
	dragging  bool
	wheelIdle int
	panEvery  int
	panPx     float32

	screenWidth, screenHeight float32
}

// NewGameWithOptions creates a game. In graphical mode the raylib window must
// already be open. A renderer that fails to attach is returned as an error.
func NewGameWithOptions(opts Options) (*Game, error) {
	cfg := config.Cfg()

	w, h := cfg.Derived.ScreenW32, cfg.Derived.ScreenH32
	if !opts.Headless {
		w, h = float32(rl.GetScreenWidth()), float32(rl.GetScreenHeight())
	}

	bm, err := basemap.Load()
	if err != nil {
		return nil, fmt.Errorf("loading basemap: %w", err)
	}

	m := camera.New(w, h, cfg.Map.CenterLng, cfg.Map.CenterLat, cfg.Map.Zoom)
	m.MinZoom, m.MaxZoom = cfg.Map.MinZoom, cfg.Map.MaxZoom

	g := &Game{
		rng:           rand.New(rand.NewSource(opts.Seed)),
		rngSeed:       opts.Seed,
		camera:        m,
		synth:         systems.NewFieldSynthesizer(cfg.Field.MaxDensity, cfg.Field.MaxSamples),
		region:        regionBounds(cfg.Region),
		basemap:       bm,
		overlays:      ui.NewOverlayRegistry(),
		controls:      ui.NewControlsPanel(10, 10, 240),
		hud:           ui.NewHUD(),
		perfPanel:     ui.NewPerfPanel(10, int32(h)-160),
		probe:         inspector.NewInspector(int32(w), int32(h)),
		perfCollector: telemetry.NewPerfCollector(cfg.Telemetry.PerfWindow),
		collector:     telemetry.NewCollector(cfg.Telemetry.WindowFrames, DT),
		logStats:      opts.LogStats,
		headless:      opts.Headless,
		panEvery:      opts.HeadlessPanEvery,
		panPx:         opts.HeadlessPanPx,
		screenWidth:   w,
		screenHeight:  h,
		counts: map[string]int{
			config.RendererCanvas:    cfg.Particles.Count,
			config.RendererInstanced: cfg.Particles.Count,
			config.RendererGPU:       cfg.Derived.GPUParticles,
		},
	}

	g.settings = ui.Settings{
		Renderer: cfg.Render.Renderer,
		Animate:  cfg.Render.Animate && !opts.Static,
		Density:  min(max(cfg.Field.Density, 1), g.synth.MaxDensity),
	}
	if opts.Renderer != "" {
		g.settings.Renderer = opts.Renderer
	}
	if g.headless && g.settings.Renderer != config.RendererCanvas {
		slog.Warn("headless runs use the canvas renderer", "requested", g.settings.Renderer)
		g.settings.Renderer = config.RendererCanvas
	}
	if opts.Particles > 0 {
		lim := limitsFor(g.settings.Renderer)
		g.counts[g.settings.Renderer] = min(max(opts.Particles, lim.min), lim.max)
	}
	g.settings.Particles = g.counts[g.settings.Renderer]

	if !g.headless {
		g.device = renderer.NewRaylibDevice()
	}

	g.outputManager, err = telemetry.NewOutputManager(opts.OutputDir)
	if err != nil {
		return nil, fmt.Errorf("creating output: %w", err)
	}
	if err := g.outputManager.WriteConfig(cfg); err != nil {
		slog.Error("failed to write config", "error", err)
	}

	if err := g.attach(g.settings.Renderer); err != nil {
		g.outputManager.Close()
		return nil, err
	}

	m.OnLoad(func() { g.resetField(m.Bounds()) })
	m.OnMoveEnd(g.resetField)
	m.Load()

	return g, nil
}

// regionBounds converts the configured region limit.
func regionBounds(r config.RegionConfig) systems.Bounds {
	return systems.Bounds{West: r.West, South: r.South, East: r.East, North: r.North}
}

// Update processes input and settles viewport changes. It opens the frame's
// timing, so input and any field reset it triggers count as field work.
func (g *Game) Update() {
	g.perfCollector.StartFrame()
	g.perfCollector.StartPhase(telemetry.PhaseField)
	g.handleInput()
}

// Draw renders the frame opened by Update and records its telemetry.
func (g *Game) Draw() {
	rl.BeginDrawing()
	rl.ClearBackground(rl.Color{R: 12, G: 18, B: 30, A: 255})

	if g.overlays.IsEnabled(ui.OverlayGraticule) {
		g.basemap.DrawGraticule(g.camera, g.camera.Bounds())
	}

	g.anim.Tick(g.perfCollector)

	g.perfCollector.StartPhase(telemetry.PhaseTelemetry)
	if g.overlays.IsEnabled(ui.OverlayCountries) {
		g.basemap.DrawOutlines(g.camera)
	}
	g.drawOverlays()
	g.probe.Refresh(g.field, g.particles())
	g.probe.Draw(g.camera)

	next := g.drawUI()
	rl.EndDrawing()

	g.perfCollector.EndFrame()
	g.perfCollector.RecordFrame()
	g.endFrame()

	// Settings apply between frames so the next frame sees a consistent layer
	g.applySettings(next)
}

// UpdateHeadless advances one frame without drawing.
func (g *Game) UpdateHeadless() {
	g.perfCollector.StartFrame()
	g.perfCollector.StartPhase(telemetry.PhaseField)
	if g.panEvery > 0 && g.frame > 0 && g.frame%int64(g.panEvery) == 0 {
		g.camera.Pan(g.panPx, 0)
		g.camera.EndMove()
	}

	g.perfCollector.StartPhase(telemetry.PhaseAdvance)
	g.anim.Step()

	g.perfCollector.EndFrame()
	g.perfCollector.RecordFrame()
	g.endFrame()
}

// endFrame counts the frame and feeds the collector.
func (g *Game) endFrame() {
	g.frame++
	if s, ok := g.layer.(statsLayer); ok && g.settings.Animate {
		g.collector.RecordFrame(s.LastStats())
	}
	g.flushTelemetry()
}

// Unload releases all resources.
func (g *Game) Unload() {
	g.anim.Cancel()
	if g.device != nil {
		g.device.Unload()
	}
	if err := g.outputManager.Close(); err != nil {
		slog.Error("failed to close output", "error", err)
	}
}

// Frame returns the number of frames run.
func (g *Game) Frame() int64 {
	return g.frame
}

// Field returns the current wind field.
func (g *Game) Field() systems.WindField {
	return g.field
}

// Domain returns the current particle domain.
func (g *Game) Domain() systems.Bounds {
	return g.domain
}

// Settings returns the current view settings.
func (g *Game) Settings() ui.Settings {
	return g.settings
}

// Layer returns the attached renderer layer.
func (g *Game) Layer() renderer.Layer {
	return g.layer
}

// Camera returns the map adapter.
func (g *Game) Camera() *camera.Map {
	return g.camera
}

// Resets returns how many times the field has been synthesized.
func (g *Game) Resets() int {
	return g.resets
}

// Probe returns the wind probe.
func (g *Game) Probe() *inspector.Inspector {
	return g.probe
}
