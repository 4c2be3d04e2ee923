// Package config provides configuration loading and access for the wind map.
package config

import (
	_ "embed"
	"fmt"
	"math"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// Config holds all wind map configuration parameters.
type Config struct {
	Screen    ScreenConfig    `yaml:"screen"`
	Map       MapConfig       `yaml:"map"`
	Region    RegionConfig    `yaml:"region"`
	Field     FieldConfig     `yaml:"field"`
	Particles ParticlesConfig `yaml:"particles"`
	Canvas    CanvasConfig    `yaml:"canvas"`
	Instanced InstancedConfig `yaml:"instanced"`
	GPU       GPUConfig       `yaml:"gpu"`
	Render    RenderConfig    `yaml:"render"`
	Telemetry TelemetryConfig `yaml:"telemetry"`

	// Derived values computed after loading
	Derived DerivedConfig `yaml:"-"`
}

// ScreenConfig holds display settings.
type ScreenConfig struct {
	Width     int `yaml:"width"`
	Height    int `yaml:"height"`
	TargetFPS int `yaml:"target_fps"`
}

// MapConfig holds the initial map view.
type MapConfig struct {
	CenterLng float64 `yaml:"center_lng"`
	CenterLat float64 `yaml:"center_lat"`
	Zoom      float64 `yaml:"zoom"`     // Web Mercator zoom level (256px tiles)
	MinZoom   float64 `yaml:"min_zoom"`
	MaxZoom   float64 `yaml:"max_zoom"`
}

// RegionConfig is the outer region limit in degrees.
// The active field and particle domain never extend past it.
type RegionConfig struct {
	West  float64 `yaml:"west"`
	South float64 `yaml:"south"`
	East  float64 `yaml:"east"`
	North float64 `yaml:"north"`
}

// FieldConfig holds wind field synthesis parameters.
type FieldConfig struct {
	Density    int `yaml:"density"`     // Requested grid resolution
	MaxDensity int `yaml:"max_density"` // Density is clamped to this
	MaxSamples int `yaml:"max_samples"` // Hard cap on emitted samples
}

// ParticlesConfig holds the shared particle life-cycle parameters.
type ParticlesConfig struct {
	Count           int     `yaml:"count"`
	MinAge          int     `yaml:"min_age"`          // Lower bound for a particle's randomized lifetime (frames)
	MaxAge          int     `yaml:"max_age"`          // Upper bound (inclusive)
	SpeedMultiplier float64 `yaml:"speed_multiplier"` // Visual scale applied to sampled speed
	SpawnRetries    int     `yaml:"spawn_retries"`    // Attempts per particle before giving up
	MarginPx        float64 `yaml:"margin_px"`        // Outward screen margin before a particle is out of bounds
}

// CanvasConfig holds screen-space renderer parameters.
type CanvasConfig struct {
	StepScale   float64 `yaml:"step_scale"`   // Pixels per frame at speed 1
	TrailLength float64 `yaml:"trail_length"` // Trail length in pixels at speed 1
	LineWidth   float64 `yaml:"line_width"`
	HeadRadius  float64 `yaml:"head_radius"`
	Opacity     float64 `yaml:"opacity"` // Overall opacity multiplier
}

// InstancedConfig holds geographic-space layer parameters.
type InstancedConfig struct {
	StepScale      float64 `yaml:"step_scale"`   // Degrees per frame at speed 1
	PointRadius    float64 `yaml:"point_radius"` // Pixels
	TrailLength    float64 `yaml:"trail_length"` // Degrees at speed 1
	LineWidth      float64 `yaml:"line_width"`
	Brighten       float64 `yaml:"brighten"` // Path color lift relative to the point color, 0..1
	ArrowLength    float64 `yaml:"arrow_length"`
	ArrowSpreadDeg float64 `yaml:"arrow_spread_deg"`
}

// GPUConfig holds GPU texture simulation parameters.
type GPUConfig struct {
	NumParticles    int     `yaml:"num_particles"`
	FadeOpacity     float64 `yaml:"fade_opacity"`
	SpeedFactor     float64 `yaml:"speed_factor"`
	DropRate        float64 `yaml:"drop_rate"`
	DropRateBump    float64 `yaml:"drop_rate_bump"`
	WindTextureSize int     `yaml:"wind_texture_size"`
	PointSize       float64 `yaml:"point_size"`
}

// RenderConfig selects the renderer.
type RenderConfig struct {
	Renderer string `yaml:"renderer"` // canvas | instanced | gpu
	Animate  bool   `yaml:"animate"`
}

// TelemetryConfig holds telemetry parameters.
type TelemetryConfig struct {
	WindowFrames int `yaml:"window_frames"`
	PerfWindow   int `yaml:"perf_window"`
}

// DerivedConfig holds computed values derived from the loaded config.
type DerivedConfig struct {
	ScreenW32      float32
	ScreenH32      float32
	ParticleSide   int // GPU state texture side, ceil(sqrt(num_particles))
	GPUParticles   int // ParticleSide squared
	ArrowSpreadRad float64
}

// Renderer names.
const (
	RendererCanvas    = "canvas"
	RendererInstanced = "instanced"
	RendererGPU       = "gpu"
)

// global holds the loaded configuration.
var global *Config

// Init loads configuration from the given path, or uses embedded defaults if path is empty.
// Must be called before Cfg().
func Init(path string) error {
	cfg, err := Load(path)
	if err != nil {
		return err
	}
	global = cfg
	return nil
}

// MustInit is like Init but panics on error.
func MustInit(path string) {
	if err := Init(path); err != nil {
		panic(fmt.Sprintf("config: failed to initialize: %v", err))
	}
}

// Cfg returns the global configuration. Panics if Init was not called.
func Cfg() *Config {
	if global == nil {
		panic("config: Cfg() called before Init()")
	}
	return global
}

// Load loads configuration from a YAML file, merging with embedded defaults.
// If path is empty, only embedded defaults are used.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		// Only overwrites fields present in the file
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	cfg.computeDerived()

	return cfg, nil
}

// validate rejects settings that would make the engine misbehave.
func (c *Config) validate() error {
	switch c.Render.Renderer {
	case RendererCanvas, RendererInstanced, RendererGPU:
	default:
		return fmt.Errorf("render.renderer: unknown renderer %q", c.Render.Renderer)
	}
	if c.Region.East <= c.Region.West || c.Region.North <= c.Region.South {
		return fmt.Errorf("region: empty region limit %+v", c.Region)
	}
	if c.Particles.MinAge < 1 || c.Particles.MaxAge < c.Particles.MinAge {
		return fmt.Errorf("particles: invalid age range [%d,%d]", c.Particles.MinAge, c.Particles.MaxAge)
	}
	if c.Field.MaxSamples < 0 || c.Field.MaxDensity < 0 {
		return fmt.Errorf("field: negative caps")
	}
	return nil
}

// computeDerived calculates values derived from loaded config.
func (c *Config) computeDerived() {
	c.Derived.ScreenW32 = float32(c.Screen.Width)
	c.Derived.ScreenH32 = float32(c.Screen.Height)

	side := ParticleSide(c.GPU.NumParticles)
	c.Derived.ParticleSide = side
	c.Derived.GPUParticles = side * side

	c.Derived.ArrowSpreadRad = c.Instanced.ArrowSpreadDeg * math.Pi / 180
}

// ParticleSide returns the smallest square texture side holding n particles.
func ParticleSide(n int) int {
	if n < 1 {
		n = 1
	}
	side := int(math.Ceil(math.Sqrt(float64(n))))
	// Guard against float rounding just above a perfect square
	for side > 1 && (side-1)*(side-1) >= n {
		side--
	}
	return side
}

// WriteYAML writes the configuration to a YAML file.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}
