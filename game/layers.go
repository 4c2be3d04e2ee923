package game

import (
	"fmt"
	"log/slog"

	"github.com/pthm-cable/windflow/config"
	"github.com/pthm-cable/windflow/renderer"
	"github.com/pthm-cable/windflow/systems"
	"github.com/pthm-cable/windflow/ui"
)

// statsLayer is a layer with CPU-side advection counters.
type statsLayer interface {
	LastStats() systems.FrameStats
}

// populationLayer is a layer with CPU-side particles.
type populationLayer interface {
	Population() *systems.Population
}

// countedLayer is a layer whose population size can change before a re-seed.
type countedLayer interface {
	SetCount(n int)
}

// newLayer builds the named renderer with the current particle count.
func (g *Game) newLayer(name string) (renderer.Layer, error) {
	cfg := config.Cfg()
	n := g.counts[name]
	switch name {
	case config.RendererCanvas:
		return renderer.NewCanvasLayer(g.camera, g.rng, cfg.Particles, cfg.Canvas, g.region, n), nil
	case config.RendererInstanced:
		return renderer.NewInstancedLayer(g.camera, g.rng, cfg.Particles, cfg.Instanced, g.region, n), nil
	case config.RendererGPU:
		if g.device == nil {
			return nil, fmt.Errorf("renderer %q needs a window", name)
		}
		return renderer.NewGPULayer(g.device, g.camera, g.rng, cfg.GPU, n), nil
	default:
		return nil, fmt.Errorf("unknown renderer %q", name)
	}
}

// attach detaches the current layer, then builds, attaches and seeds the
// named one. On failure no layer is attached.
func (g *Game) attach(name string) error {
	layer, err := g.newLayer(name)
	if err != nil {
		return err
	}

	g.anim.Cancel()
	g.anim, g.layer = nil, nil

	anim, err := renderer.Start(layer)
	if err != nil {
		return fmt.Errorf("attaching %s renderer: %w", name, err)
	}
	g.anim, g.layer = anim, layer

	// The GPU layer rounds its count to a square texture
	if gl, ok := layer.(*renderer.GPULayer); ok {
		g.counts[name] = gl.NumParticles()
	}
	g.settings.Renderer = name
	g.settings.Particles = g.counts[name]

	layer.SetAnimate(g.settings.Animate)
	if g.resets > 0 {
		layer.Seed(g.field, g.domain)
	}
	return nil
}

// noticeFrames is how long a HUD notice stays up.
const noticeFrames = 300

// switchRenderer hot-swaps the attached layer. A layer that fails to attach
// falls back to the canvas renderer so the map keeps animating.
func (g *Game) switchRenderer(name string) {
	if g.headless && name != config.RendererCanvas {
		slog.Warn("renderer unavailable in headless mode", "renderer", name)
		return
	}
	prev := g.settings.Renderer
	if err := g.attach(name); err != nil {
		g.fallbackToCanvas(prev, name, err)
		return
	}
	g.clearNotice()
	slog.Info("renderer switched", "from", prev, "to", name)
}

// fallbackToCanvas attaches the canvas renderer after name failed and tells
// the user on the HUD.
func (g *Game) fallbackToCanvas(prev, name string, cause error) {
	slog.Error("renderer switch failed", "from", prev, "to", name, "error", cause)
	if err := g.attach(config.RendererCanvas); err != nil {
		slog.Error("canvas fallback failed", "error", err)
		g.setNotice(fmt.Sprintf("%s renderer failed, no fallback available", name))
		return
	}
	g.setNotice(fmt.Sprintf("%s renderer failed, using canvas", name))
}

func (g *Game) setNotice(text string) {
	g.notice = text
	g.noticeUntil = g.frame + noticeFrames
}

func (g *Game) clearNotice() {
	g.notice = ""
	g.noticeUntil = 0
}

// Notice returns the HUD notice still on screen, or "".
func (g *Game) Notice() string {
	if g.frame >= g.noticeUntil {
		return ""
	}
	return g.notice
}

// applySettings applies the difference between next and the current
// settings.
func (g *Game) applySettings(next ui.Settings) {
	ch := next.Diff(g.settings)
	if !ch.Any() {
		return
	}

	if ch.Animate {
		g.settings.Animate = next.Animate
		if g.layer != nil {
			g.layer.SetAnimate(next.Animate)
		}
	}

	if ch.Renderer {
		g.switchRenderer(next.Renderer)
		// Slider values belong to the previous renderer
		return
	}

	if ch.Density {
		g.settings.Density = next.Density
		g.resetField(g.camera.Bounds())
	}

	if ch.Particles {
		g.setParticles(next.Particles)
	}
}

// setParticles changes the active renderer's population size and re-seeds.
func (g *Game) setParticles(n int) {
	lim := limitsFor(g.settings.Renderer)
	n = min(max(n, lim.min), lim.max)
	g.counts[g.settings.Renderer] = n
	g.settings.Particles = n

	if cl, ok := g.layer.(countedLayer); ok {
		cl.SetCount(n)
		g.layer.Seed(g.field, g.domain)
		return
	}
	// GPU state textures are sized by the count, so the layer is rebuilt
	g.switchRenderer(g.settings.Renderer)
}

// particles returns the CPU-side particles of the attached layer, or nil for
// the GPU layer.
func (g *Game) particles() []systems.Particle {
	if pl, ok := g.layer.(populationLayer); ok {
		return pl.Population().Particles()
	}
	return nil
}

// particleCount returns the attached population size.
func (g *Game) particleCount() int {
	if pl, ok := g.layer.(populationLayer); ok {
		return pl.Population().Len()
	}
	return g.settings.Particles
}
