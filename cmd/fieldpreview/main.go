// Wind field preview tool - interactive view of the synthesized field with
// sliders for the grid density, sample cap and bounds.
//
// Usage: go run ./cmd/fieldpreview [-snapshot out/field_0000.json]
package main

import (
	"flag"
	"fmt"
	"math"
	"os"

	gui "github.com/gen2brain/raylib-go/raygui"
	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/windflow/basemap"
	"github.com/pthm-cable/windflow/config"
	"github.com/pthm-cable/windflow/systems"
	"github.com/pthm-cable/windflow/telemetry"
)

const (
	windowWidth  = 1100
	windowHeight = 720
	previewW     = 640
	previewH     = 520
	panelWidth   = windowWidth - previewW - 30
)

// FieldParams holds the synthesis inputs.
type FieldParams struct {
	Density    int
	MaxSamples int
	Bounds     systems.Bounds
	ArrowLen   float32
}

// previewProjector maps bounds linearly onto the preview rectangle.
type previewProjector struct {
	bounds systems.Bounds
	x, y   float32
	w, h   float32
}

func (p previewProjector) Project(g systems.LngLat) (systems.Vec2, error) {
	u, v := p.bounds.Normalize(g)
	return systems.Vec2{X: p.x + float32(u)*p.w, Y: p.y + (1-float32(v))*p.h}, nil
}

func (p previewProjector) Unproject(s systems.Vec2) (systems.LngLat, error) {
	u := float64((s.X - p.x) / p.w)
	v := 1 - float64((s.Y-p.y)/p.h)
	if u < 0 || u > 1 || v < 0 || v > 1 {
		return systems.LngLat{}, systems.ErrProjection
	}
	return p.bounds.Lerp(u, v), nil
}

func (p previewProjector) Viewport() (float32, float32) { return p.w, p.h }

func defaultParams(cfg *config.Config) FieldParams {
	return FieldParams{
		Density:    cfg.Field.Density,
		MaxSamples: cfg.Field.MaxSamples,
		Bounds:     systems.Bounds{West: cfg.Region.West, South: cfg.Region.South, East: cfg.Region.East, North: cfg.Region.North},
		ArrowLen:   float32(cfg.Instanced.ArrowLength),
	}
}

func main() {
	configPath := flag.String("config", "", "Path to config.yaml (empty = use defaults)")
	snapshotPath := flag.String("snapshot", "", "Field snapshot to show instead of a synthesized field")
	flag.Parse()

	if err := config.Init(*configPath); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}
	cfg := config.Cfg()

	var snap *telemetry.FieldSnapshot
	if *snapshotPath != "" {
		var err error
		if snap, err = telemetry.LoadSnapshot(*snapshotPath); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to load snapshot: %v\n", err)
			os.Exit(1)
		}
	}

	rl.InitWindow(windowWidth, windowHeight, "Wind Field Preview")
	defer rl.CloseWindow()
	rl.SetTargetFPS(30)

	bm, err := basemap.Load()
	if err != nil {
		panic(err)
	}

	region := defaultParams(cfg).Bounds
	params := defaultParams(cfg)

	var field systems.WindField
	needsRegen := true

	// A snapshot is shown until a slider changes the field
	if snap != nil {
		field = snap.Field()
		if !field.Bounds.Empty() {
			params.Bounds = field.Bounds
		}
		params.Density = max(field.Density, 1)
		needsRegen = false
	}

	for !rl.WindowShouldClose() {
		// Regenerate if needed
		if needsRegen {
			field = systems.NewFieldSynthesizer(cfg.Field.MaxDensity, params.MaxSamples).Synthesize(params.Bounds, params.Density)
			needsRegen = false
			snap = nil
		}

		proj := previewProjector{bounds: params.Bounds, x: 10, y: 10, w: previewW, h: previewH}

		rl.BeginDrawing()
		rl.ClearBackground(rl.Color{R: 12, G: 18, B: 30, A: 255})

		// Draw preview
		rl.DrawRectangleLines(10, 10, previewW, previewH, rl.DarkGray)
		rl.BeginScissorMode(10, 10, previewW, previewH)
		bm.Draw(proj, params.Bounds)
		drawArrows(proj, field, float64(params.ArrowLen), cfg.Derived.ArrowSpreadRad)
		rl.EndScissorMode()

		// Nearest sample under the cursor
		mouse := rl.GetMousePosition()
		if p, err := proj.Unproject(systems.Vec2{X: mouse.X, Y: mouse.Y}); err == nil {
			if s, ok := systems.Nearest(field, p); ok {
				sp, _ := proj.Project(s.Position)
				rl.DrawCircleLines(int32(sp.X), int32(sp.Y), 6, rl.White)
				rl.DrawText(fmt.Sprintf("%.2f,%.2f  dir %.0f deg  speed %.2f",
					s.Position.Lng, s.Position.Lat, s.Direction*180/math.Pi, s.Speed),
					15, previewH+60, 16, rl.LightGray)
			}
		}

		// Draw stats
		minSpeed, maxSpeed, avgSpeed, bands := fieldStats(field)
		statsY := int32(previewH + 20)
		rl.DrawText(fmt.Sprintf("Samples: %d  Density: %d", field.Len(), field.Density), 15, statsY, 16, rl.LightGray)
		if snap != nil {
			rl.DrawText(fmt.Sprintf("Snapshot: frame %d, %s renderer, seed %d", snap.Frame, snap.Renderer, snap.RNGSeed),
				15, statsY+60, 16, rl.Gold)
		}
		rl.DrawText(fmt.Sprintf("Speed min %.2f  max %.2f  avg %.2f  | light %d  medium %d  strong %d",
			minSpeed, maxSpeed, avgSpeed, bands[0], bands[1], bands[2]), 15, statsY+20, 16, rl.LightGray)

		// Control panel
		panelX := float32(previewW + 20)
		panelY := float32(10)

		rl.DrawText("Wind Field Parameters", int32(panelX), int32(panelY), 20, rl.RayWhite)
		panelY += 35

		slider := func(label, text string, value, lo, hi float32) float32 {
			rl.DrawText(label, int32(panelX), int32(panelY), 14, rl.Gray)
			panelY += 18
			v := gui.SliderBar(
				rl.Rectangle{X: panelX, Y: panelY, Width: float32(panelWidth - 80), Height: 20},
				fmt.Sprint(lo), fmt.Sprint(hi),
				value, lo, hi,
			)
			rl.DrawText(text, int32(panelX+float32(panelWidth-70)), int32(panelY+2), 16, rl.LightGray)
			panelY += 35
			return v
		}

		if d := int(math.Round(float64(slider("Density (grid resolution)", fmt.Sprint(params.Density),
			float32(params.Density), 1, float32(cfg.Field.MaxDensity))))); d != params.Density {
			params.Density = d
			needsRegen = true
		}
		if n := int(slider("Max samples", fmt.Sprint(params.MaxSamples),
			float32(params.MaxSamples), 10, 1000)); n != params.MaxSamples {
			params.MaxSamples = n
			needsRegen = true
		}

		// Separator
		rl.DrawLine(int32(panelX), int32(panelY), int32(panelX)+int32(panelWidth)-20, int32(panelY), rl.DarkGray)
		panelY += 15

		b := params.Bounds
		b.West = float64(slider("West", fmt.Sprintf("%.1f", b.West), float32(b.West), float32(region.West), float32(region.East)))
		b.East = float64(slider("East", fmt.Sprintf("%.1f", b.East), float32(b.East), float32(region.West), float32(region.East)))
		b.South = float64(slider("South", fmt.Sprintf("%.1f", b.South), float32(b.South), float32(region.South), float32(region.North)))
		b.North = float64(slider("North", fmt.Sprintf("%.1f", b.North), float32(b.North), float32(region.South), float32(region.North)))
		if b != params.Bounds && !b.Empty() {
			params.Bounds = b
			needsRegen = true
		}

		params.ArrowLen = slider("Arrow length (degrees)", fmt.Sprintf("%.2f", params.ArrowLen), params.ArrowLen, 0.2, 3)
		panelY += 10

		// Buttons
		if gui.Button(rl.Rectangle{X: panelX, Y: panelY, Width: 120, Height: 30}, "Full Region") {
			params.Bounds = region
			needsRegen = true
		}
		if gui.Button(rl.Rectangle{X: panelX + 130, Y: panelY, Width: 120, Height: 30}, "Reset All") {
			params = defaultParams(cfg)
			needsRegen = true
		}
		panelY += 55

		// Output YAML
		rl.DrawText("YAML Config:", int32(panelX), int32(panelY), 16, rl.RayWhite)
		panelY += 25
		for _, line := range yamlLines(params, cfg.Field.MaxDensity) {
			rl.DrawText(line, int32(panelX), int32(panelY), 14, rl.Gray)
			panelY += 16
		}

		// Instructions
		rl.DrawText("Press C to copy YAML to clipboard", int32(panelX), int32(windowHeight-30), 12, rl.DarkGray)

		// Copy to clipboard on C key
		if rl.IsKeyPressed(rl.KeyC) {
			var yaml string
			for _, line := range yamlLines(params, cfg.Field.MaxDensity) {
				yaml += line + "\n"
			}
			rl.SetClipboardText(yaml)
		}

		rl.EndDrawing()
	}
}

func yamlLines(p FieldParams, maxDensity int) []string {
	return []string{
		"field:",
		fmt.Sprintf("  density: %d", p.Density),
		fmt.Sprintf("  max_density: %d", maxDensity),
		fmt.Sprintf("  max_samples: %d", p.MaxSamples),
		"instanced:",
		fmt.Sprintf("  arrow_length: %.2f", p.ArrowLen),
	}
}

// drawArrows draws each sample as an arrow in its wind color.
func drawArrows(proj systems.Projector, field systems.WindField, length, spread float64) {
	pts := make([]rl.Vector2, 0, 5)
	for _, s := range field.Samples {
		arrow := systems.ArrowPath(s, length, spread)
		pts = pts[:0]
		for _, g := range arrow {
			v, _ := proj.Project(g)
			pts = append(pts, rl.Vector2{X: v.X, Y: v.Y})
		}
		rl.DrawLineStrip(pts, rl.Color(systems.WindColor(s.Speed)))
	}
}

// fieldStats returns the speed range, mean and the sample count per color
// band (light, medium, strong).
func fieldStats(field systems.WindField) (lo, hi, avg float64, bands [3]int) {
	if field.Len() == 0 {
		return 0, 0, 0, bands
	}
	lo = math.Inf(1)
	for _, s := range field.Samples {
		lo = min(lo, s.Speed)
		hi = max(hi, s.Speed)
		avg += s.Speed
		switch systems.SpeedBand(s.Speed) {
		case "light":
			bands[0]++
		case "medium":
			bands[1]++
		default:
			bands[2]++
		}
	}
	return lo, hi, avg / float64(field.Len()), bands
}
