package renderer

import (
	"fmt"
	"log/slog"
	"math/rand"

	"github.com/pthm-cable/windflow/config"
	"github.com/pthm-cable/windflow/systems"
)

// colorRampSide is the side of the texture holding the 256-entry color ramp.
const colorRampSide = 16

// GPULayer runs the particle simulation in textures. Particle positions live
// in two state textures that swap after every update pass, and the output
// accumulates in two screen textures that swap after every drawn frame.
type GPULayer struct {
	dev     Device
	cfg     config.GPUConfig
	proj    systems.Projector
	rng     *rand.Rand
	side    int
	animate bool

	width, height int

	updateProg Program
	drawProg   Program
	screenProg Program

	stateCur, stateNext Target
	screenCur, screenPrev Target
	windTex, rampTex      Target

	wind   systems.WindTexture
	domain systems.Bounds

	attached    bool
	seeded      bool
	staticDrawn bool
	updates     uint64
}

// NewGPULayer creates a GPU layer on dev. The particle count is rounded up
// to the next perfect square.
func NewGPULayer(dev Device, proj systems.Projector, rng *rand.Rand, cfg config.GPUConfig, numParticles int) *GPULayer {
	w, h := proj.Viewport()
	return &GPULayer{
		dev:     dev,
		cfg:     cfg,
		proj:    proj,
		rng:     rng,
		side:    config.ParticleSide(numParticles),
		animate: true,
		width:   int(w),
		height:  int(h),
	}
}

// Name implements Layer.
func (g *GPULayer) Name() string { return config.RendererGPU }

// Side returns the particle state texture side.
func (g *GPULayer) Side() int { return g.side }

// NumParticles returns the rounded particle count.
func (g *GPULayer) NumParticles() int { return g.side * g.side }

// OnAttach implements Layer. Any failure releases what was already created.
func (g *GPULayer) OnAttach() error {
	if g.attached {
		return nil
	}
	if err := g.attach(); err != nil {
		g.release()
		return err
	}
	g.attached = true
	slog.Info("renderer attached",
		"renderer", g.Name(),
		"particles", g.NumParticles(),
		"state_side", g.side,
	)
	return nil
}

func (g *GPULayer) attach() error {
	var err error
	if g.updateProg, err = g.compile("update", "", "update.fs", "u_particles", "u_wind"); err != nil {
		return err
	}
	if g.drawProg, err = g.compile("draw", "draw.vs", "draw.fs", "u_particles", "u_wind", "u_color_ramp"); err != nil {
		return err
	}
	if g.screenProg, err = g.compile("screen", "", "screen.fs", "u_screen"); err != nil {
		return err
	}

	state := systems.RandomParticleState(g.side, g.rng)
	if g.stateCur, err = g.dev.CreateTarget(g.side, g.side, state); err != nil {
		return fmt.Errorf("creating particle state: %w", err)
	}
	if g.stateNext, err = g.dev.CreateTarget(g.side, g.side, state); err != nil {
		return fmt.Errorf("creating particle state: %w", err)
	}

	size := g.cfg.WindTextureSize
	if g.windTex, err = g.dev.CreateTarget(size, size, nil); err != nil {
		return fmt.Errorf("creating wind texture: %w", err)
	}
	ramp := systems.ColorRamp(colorRampSide*colorRampSide, 1.2)
	if g.rampTex, err = g.dev.CreateTarget(colorRampSide, colorRampSide, ramp); err != nil {
		return fmt.Errorf("creating color ramp: %w", err)
	}

	return g.createScreens()
}

func (g *GPULayer) compile(name, vsFile, fsFile string, samplers ...string) (Program, error) {
	var vs string
	if vsFile != "" {
		src, err := shaderSource(vsFile)
		if err != nil {
			return 0, fmt.Errorf("%w: %s: %v", ErrShaderCompile, name, err)
		}
		vs = src
	}
	fs, err := shaderSource(fsFile)
	if err != nil {
		return 0, fmt.Errorf("%w: %s: %v", ErrShaderCompile, name, err)
	}
	return g.dev.CompileProgram(name, vs, fs, samplers)
}

func (g *GPULayer) createScreens() error {
	var err error
	if g.screenCur, err = g.dev.CreateTarget(g.width, g.height, nil); err != nil {
		return fmt.Errorf("creating screen texture: %w", err)
	}
	if g.screenPrev, err = g.dev.CreateTarget(g.width, g.height, nil); err != nil {
		return fmt.Errorf("creating screen texture: %w", err)
	}
	g.staticDrawn = false
	return nil
}

// Seed implements Layer. The wind field is rasterized into the wind texture
// and every particle gets a fresh random position.
func (g *GPULayer) Seed(field systems.WindField, domain systems.Bounds) {
	if !g.attached {
		return
	}
	g.domain = domain
	size := g.cfg.WindTextureSize
	// Rasterize over the particle domain so texture space and particle space agree
	clipped := field
	clipped.Bounds = domain
	g.wind = systems.BuildWindTexture(clipped, size, size)
	g.dev.Upload(g.windTex, g.wind.Pixels)

	maxSpeed := g.wind.MaxSpeed()
	if maxSpeed <= 0 {
		maxSpeed = 1.2
	}
	g.dev.Upload(g.rampTex, systems.ColorRamp(colorRampSide*colorRampSide, maxSpeed))
	g.dev.Upload(g.stateCur, systems.RandomParticleState(g.side, g.rng))

	g.dev.Run(Pass{Name: "clear", Kind: PassClear, Dst: g.screenCur, Clear: true})
	g.dev.Run(Pass{Name: "clear", Kind: PassClear, Dst: g.screenPrev, Clear: true})

	g.seeded = field.Len() > 0 && !domain.Empty()
	g.staticDrawn = false

	slog.Info("population seeded",
		"renderer", g.Name(),
		"particles", g.NumParticles(),
		"samples", field.Len(),
		"max_speed", maxSpeed,
	)
}

// Advance implements Layer: one update pass from the current state texture
// into the next, then the two swap roles.
func (g *GPULayer) Advance() {
	if !g.animate || !g.seeded {
		return
	}
	g.dev.Run(Pass{
		Name:    "update",
		Kind:    PassQuad,
		Program: g.updateProg,
		Dst:     g.stateNext,
		Blend:   BlendReplace,
		Samplers: []Sampler{
			{Name: "u_particles", Target: g.stateCur},
			{Name: "u_wind", Target: g.windTex},
		},
		Uniforms: append(g.windUniforms(),
			Uniform{Name: "u_particles_res", Value: []float32{float32(g.side), float32(g.side)}},
			Uniform{Name: "u_rand_seed", Value: []float32{g.rng.Float32()}},
			Uniform{Name: "u_speed_factor", Value: []float32{float32(g.cfg.SpeedFactor)}},
			Uniform{Name: "u_drop_rate", Value: []float32{float32(g.cfg.DropRate)}},
			Uniform{Name: "u_drop_rate_bump", Value: []float32{float32(g.cfg.DropRateBump)}},
		),
	})
	g.stateCur, g.stateNext = g.stateNext, g.stateCur
	g.updates++
}

// Render implements Layer. Animated frames fade the previous screen into the
// current one, draw the particles on top, present and swap. Static frames
// draw the particles once and keep presenting that image.
func (g *GPULayer) Render() {
	if !g.seeded {
		return
	}
	if !g.animate {
		if !g.staticDrawn {
			if !g.drawParticles(g.screenCur, true) {
				return
			}
			g.staticDrawn = true
		}
		g.dev.Present(g.screenCur)
		return
	}

	g.dev.Run(Pass{
		Name:     "fade",
		Kind:     PassQuad,
		Program:  g.screenProg,
		Dst:      g.screenCur,
		Clear:    true,
		Blend:    BlendReplace,
		Samplers: []Sampler{{Name: "u_screen", Target: g.screenPrev}},
		Uniforms: []Uniform{
			{Name: "u_resolution", Value: []float32{float32(g.width), float32(g.height)}},
			{Name: "u_opacity", Value: []float32{float32(g.cfg.FadeOpacity)}},
		},
	})
	g.drawParticles(g.screenCur, false)
	g.dev.Present(g.screenCur)
	g.screenCur, g.screenPrev = g.screenPrev, g.screenCur
}

// drawParticles runs the points pass into dst. It reports false when the
// domain cannot be placed on screen.
func (g *GPULayer) drawParticles(dst Target, clear bool) bool {
	nw, err := g.proj.Project(systems.LngLat{Lng: g.domain.West, Lat: g.domain.North})
	if err != nil {
		return false
	}
	se, err := g.proj.Project(systems.LngLat{Lng: g.domain.East, Lat: g.domain.South})
	if err != nil {
		return false
	}

	g.dev.Run(Pass{
		Name:    "draw",
		Kind:    PassPoints,
		Program: g.drawProg,
		Dst:     dst,
		Clear:   clear,
		Blend:   BlendAlpha,
		Samplers: []Sampler{
			{Name: "u_particles", Target: g.stateCur},
			{Name: "u_wind", Target: g.windTex},
			{Name: "u_color_ramp", Target: g.rampTex},
		},
		Uniforms: append(g.windUniforms(),
			Uniform{Name: "u_screen_x", Value: []float32{nw.X, se.X}},
			Uniform{Name: "u_screen_y", Value: []float32{nw.Y, se.Y}},
		),
		Points:    g.NumParticles(),
		PointSide: g.side,
		PointSize: float32(g.cfg.PointSize),
	})
	return true
}

func (g *GPULayer) windUniforms() []Uniform {
	w := g.wind
	return []Uniform{
		{Name: "u_wind_res", Value: []float32{float32(w.Width), float32(w.Height)}},
		{Name: "u_wind_min", Value: []float32{float32(w.UMin), float32(w.VMin)}},
		{Name: "u_wind_max", Value: []float32{float32(w.UMax), float32(w.VMax)}},
		{Name: "u_max_speed", Value: []float32{float32(w.MaxSpeed())}},
		{Name: "u_lat_range", Value: []float32{float32(g.domain.South), float32(g.domain.North)}},
	}
}

// SetAnimate implements Layer.
func (g *GPULayer) SetAnimate(animate bool) {
	if g.animate == animate {
		return
	}
	g.animate = animate
	g.staticDrawn = false
}

// Resize implements Layer. Screen-sized textures are recreated.
func (g *GPULayer) Resize(w, h float32) {
	if int(w) == g.width && int(h) == g.height {
		return
	}
	g.width, g.height = int(w), int(h)
	if !g.attached {
		return
	}
	g.releaseTarget(&g.screenCur)
	g.releaseTarget(&g.screenPrev)
	if err := g.createScreens(); err != nil {
		slog.Error("recreating screen textures", "error", err)
		g.seeded = false
	}
}

// OnDetach implements Layer.
func (g *GPULayer) OnDetach() {
	if !g.attached {
		return
	}
	g.release()
	g.attached = false
	g.seeded = false
	slog.Info("renderer detached", "renderer", g.Name(), "updates", g.updates)
}

func (g *GPULayer) release() {
	for _, t := range []*Target{&g.stateCur, &g.stateNext, &g.screenCur, &g.screenPrev, &g.windTex, &g.rampTex} {
		g.releaseTarget(t)
	}
	for _, p := range []*Program{&g.updateProg, &g.drawProg, &g.screenProg} {
		if *p != 0 {
			g.dev.ReleaseProgram(*p)
			*p = 0
		}
	}
}

func (g *GPULayer) releaseTarget(t *Target) {
	if *t != 0 {
		g.dev.ReleaseTarget(*t)
		*t = 0
	}
}

// StateTargets returns the current and next particle state textures.
func (g *GPULayer) StateTargets() (cur, next Target) { return g.stateCur, g.stateNext }

// ScreenTargets returns the screen texture drawn next and the one holding
// the previous frame.
func (g *GPULayer) ScreenTargets() (cur, prev Target) { return g.screenCur, g.screenPrev }

// StateSpread reads the current state texture back from the device and
// decodes every particle position. It is zero before attach.
func (g *GPULayer) StateSpread() systems.PositionSpread {
	if !g.attached {
		return systems.PositionSpread{}
	}
	return systems.MeasureState(g.dev.ReadPixels(g.stateCur))
}

// Updates returns the number of update passes run.
func (g *GPULayer) Updates() uint64 { return g.updates }

// Device returns the layer's device.
func (g *GPULayer) Device() Device { return g.dev }
