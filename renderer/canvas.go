package renderer

import (
	"image/color"
	"log/slog"
	"math/rand"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/windflow/config"
	"github.com/pthm-cable/windflow/systems"
)

// CanvasLayer advects particles in screen space and draws each one as a
// short trail plus a head disc on a transparent surface cleared every frame.
type CanvasLayer struct {
	cfg     config.CanvasConfig
	count   int
	animate bool

	pop  *systems.Population
	last systems.FrameStats

	surface     rl.RenderTexture2D
	width       int32
	height      int32
	initialized bool

	strokes []stroke
}

// stroke is one particle's drawable geometry.
type stroke struct {
	Head, Tail rl.Vector2
	Color      color.RGBA
}

// NewCanvasLayer creates a canvas layer over proj.
func NewCanvasLayer(proj systems.Projector, rng *rand.Rand, particles config.ParticlesConfig, cfg config.CanvasConfig, region systems.Bounds, count int) *CanvasLayer {
	engine := systems.NewEngine(systems.EngineParams{
		Space:           systems.ScreenSpace,
		StepScale:       cfg.StepScale,
		SpeedMultiplier: particles.SpeedMultiplier,
		MinAge:          particles.MinAge,
		MaxAge:          particles.MaxAge,
		SpawnRetries:    particles.SpawnRetries,
		MarginPx:        float32(particles.MarginPx),
		Region:          region,
	}, proj, rng)

	w, h := proj.Viewport()
	return &CanvasLayer{
		cfg:     cfg,
		count:   count,
		animate: true,
		pop:     systems.NewPopulation(engine),
		width:   int32(w),
		height:  int32(h),
	}
}

// Name implements Layer.
func (c *CanvasLayer) Name() string { return config.RendererCanvas }

// OnAttach implements Layer. The surface is created on first Render so the
// layer also runs without a window.
func (c *CanvasLayer) OnAttach() error {
	slog.Info("renderer attached", "renderer", c.Name(), "particles", c.count)
	return nil
}

// Init creates the drawing surface (must be called after the raylib window is created).
func (c *CanvasLayer) Init() {
	if c.initialized {
		return
	}
	c.surface = rl.LoadRenderTexture(c.width, c.height)
	c.initialized = true
}

// Seed implements Layer.
func (c *CanvasLayer) Seed(field systems.WindField, domain systems.Bounds) {
	n := c.pop.Seed(field, domain, c.count)
	slog.Info("population seeded",
		"renderer", c.Name(),
		"requested", c.count,
		"spawned", n,
		"samples", field.Len(),
	)
}

// Advance implements Layer.
func (c *CanvasLayer) Advance() {
	if !c.animate {
		return
	}
	c.last = c.pop.Advance()
}

// Render implements Layer.
func (c *CanvasLayer) Render() {
	if !c.initialized {
		c.Init()
	}

	c.strokes = buildStrokes(c.strokes[:0], c.pop.Particles(), c.cfg)

	rl.BeginTextureMode(c.surface)
	rl.ClearBackground(rl.Blank)
	width := float32(c.cfg.LineWidth)
	radius := float32(c.cfg.HeadRadius)
	for _, s := range c.strokes {
		rl.DrawLineEx(s.Tail, s.Head, width, s.Color)
		rl.DrawCircleV(s.Head, radius, s.Color)
	}
	rl.EndTextureMode()

	// Render textures are stored upside down
	src := rl.Rectangle{X: 0, Y: 0, Width: float32(c.width), Height: -float32(c.height)}
	rl.DrawTextureRec(c.surface.Texture, src, rl.Vector2{}, rl.White)
}

// buildStrokes appends one stroke per visible particle to dst.
func buildStrokes(dst []stroke, particles []systems.Particle, cfg config.CanvasConfig) []stroke {
	for i := range particles {
		p := &particles[i]
		col := p.Color(cfg.Opacity)
		if col.A == 0 {
			continue
		}
		tail := p.TrailTail(cfg.TrailLength)
		dst = append(dst, stroke{
			Head:  rl.Vector2{X: p.Screen.X, Y: p.Screen.Y},
			Tail:  rl.Vector2{X: tail.X, Y: tail.Y},
			Color: col,
		})
	}
	return dst
}

// SetAnimate implements Layer.
func (c *CanvasLayer) SetAnimate(animate bool) { c.animate = animate }

// SetCount changes the population size used by the next Seed.
func (c *CanvasLayer) SetCount(n int) { c.count = n }

// Resize implements Layer. The surface is recreated at the next Render.
func (c *CanvasLayer) Resize(w, h float32) {
	if int32(w) == c.width && int32(h) == c.height {
		return
	}
	c.release()
	c.width, c.height = int32(w), int32(h)
}

// OnDetach implements Layer.
func (c *CanvasLayer) OnDetach() {
	c.release()
	slog.Info("renderer detached", "renderer", c.Name())
}

func (c *CanvasLayer) release() {
	if c.initialized {
		rl.UnloadRenderTexture(c.surface)
		c.initialized = false
	}
}

// Population returns the layer's particles.
func (c *CanvasLayer) Population() *systems.Population { return c.pop }

// LastStats returns the counters from the most recent Advance.
func (c *CanvasLayer) LastStats() systems.FrameStats { return c.last }
