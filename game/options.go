package game

import "github.com/pthm-cable/windflow/config"

// Options configures a Game beyond the loaded config.
type Options struct {
	Seed      int64
	Renderer  string // Overrides render.renderer when non-empty
	Static    bool   // Start with animation off
	Particles int    // Overrides the active renderer's particle count when > 0
	Headless  bool
	OutputDir string
	LogStats  bool

	// HeadlessPanEvery pans the headless map east every N frames and settles
	// the move, exercising the viewport reset path. Zero disables it.
	HeadlessPanEvery int
	HeadlessPanPx    float32
}

// Particle slider ranges per renderer family.
var (
	cpuLimits = particleLimits{min: 100, max: 20000}
	gpuLimits = particleLimits{min: 1024, max: 262144}
)

type particleLimits struct {
	min, max int
}

func limitsFor(renderer string) particleLimits {
	if renderer == config.RendererGPU {
		return gpuLimits
	}
	return cpuLimits
}

// wheelSettleFrames is how many frames without wheel input end a zoom.
const wheelSettleFrames = 12

// controlsHelp is shown along the bottom edge.
const controlsHelp = "drag: pan | wheel: zoom | 1/2/3: renderer | space: animate | R: reset view | tab: panel | right-click: probe | C/G/L/F/B/P: overlays"
