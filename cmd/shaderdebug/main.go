// Shader debug tool - runs the GPU wind simulation for a number of frames in a
// hidden window and writes the screen and particle state textures to PNG.
// The decoded particle positions are checked against the unit square.
//
// Usage: go run ./cmd/shaderdebug -frames 120 -out debug.png -state state.png
package main

import (
	"flag"
	"fmt"
	"math/rand"
	"os"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/windflow/camera"
	"github.com/pthm-cable/windflow/config"
	"github.com/pthm-cable/windflow/renderer"
	"github.com/pthm-cable/windflow/systems"
)

func main() {
	configPath := flag.String("config", "", "Path to config.yaml (empty = use defaults)")
	outPath := flag.String("out", "debug.png", "Output PNG path for the screen texture")
	statePath := flag.String("state", "", "Output PNG path for the particle state texture (empty = skip)")
	width := flag.Int("width", 1024, "Render width")
	height := flag.Int("height", 640, "Render height")
	frames := flag.Int("frames", 120, "Frames to simulate")
	particles := flag.Int("particles", 0, "Particle count (0 = use config)")
	static := flag.Bool("static", false, "Draw a single static frame")
	seed := flag.Int64("seed", 1, "RNG seed")
	flag.Parse()

	if err := config.Init(*configPath); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}
	cfg := config.Cfg()

	n := cfg.GPU.NumParticles
	if *particles > 0 {
		n = *particles
	}

	// Initialize raylib with hidden window
	rl.SetConfigFlags(rl.FlagWindowHidden)
	rl.InitWindow(int32(*width), int32(*height), "Shader Debug")
	defer rl.CloseWindow()

	m := camera.New(float32(*width), float32(*height), cfg.Map.CenterLng, cfg.Map.CenterLat, cfg.Map.Zoom)
	region := systems.Bounds{West: cfg.Region.West, South: cfg.Region.South, East: cfg.Region.East, North: cfg.Region.North}
	domain := m.Bounds().Intersect(region)
	field := systems.NewFieldSynthesizer(cfg.Field.MaxDensity, cfg.Field.MaxSamples).Synthesize(domain, cfg.Field.Density)

	dev := renderer.NewRaylibDevice()
	defer dev.Unload()

	layer := renderer.NewGPULayer(dev, m, rand.New(rand.NewSource(*seed)), cfg.GPU, n)
	anim, err := renderer.Start(layer)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to attach GPU layer: %v\n", err)
		os.Exit(1)
	}
	defer anim.Cancel()

	layer.SetAnimate(!*static)
	layer.Seed(field, domain)

	for i := 0; i < *frames; i++ {
		rl.BeginDrawing()
		rl.ClearBackground(rl.Black)
		anim.Tick(nil)
		rl.EndDrawing()
	}

	// Animated frames swap after presenting, so the last image is the previous screen
	cur, prev := layer.ScreenTargets()
	shown := prev
	if *static {
		shown = cur
	}
	if err := dev.ExportTarget(shown, *outPath); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to export image: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Wind rendered to: %s (%dx%d, %d particles, %d samples, %d updates)\n",
		*outPath, *width, *height, layer.NumParticles(), field.Len(), layer.Updates())

	ps := layer.StateSpread()
	fmt.Printf("Particle state: x [%.4f, %.4f] mean %.4f, y [%.4f, %.4f] mean %.4f\n",
		ps.MinX, ps.MaxX, ps.MeanX, ps.MinY, ps.MaxY, ps.MeanY)

	if *statePath != "" {
		state, _ := layer.StateTargets()
		if err := dev.ExportTarget(state, *statePath); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to export state: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Particle state written to: %s (%dx%d)\n", *statePath, layer.Side(), layer.Side())
	}

	if ps.OutOfRange > 0 {
		fmt.Fprintf(os.Stderr, "%d of %d particle positions outside [0,1)\n", ps.OutOfRange, ps.Count)
		os.Exit(1)
	}
}
