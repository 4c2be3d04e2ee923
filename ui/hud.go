package ui

import (
	"fmt"
	"sort"
	"time"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/windflow/systems"
	"github.com/pthm-cable/windflow/telemetry"
)

// HUDData holds all the data needed to render the main HUD.
type HUDData struct {
	Renderer     string
	Animate      bool
	Particles    int
	FieldSamples int
	Density      int
	Zoom         float64
	Center       systems.LngLat
	Cursor       *systems.LngLat // nil when the cursor is off the map
	Frame        int64
	FPS          int32
	Stats        systems.FrameStats
	Notice       string // transient warning, e.g. a renderer fallback
	ScreenWidth  int32
	ScreenHeight int32
}

// HUD renders the main heads-up display along the top-right edge.
type HUD struct {
	renderer *Renderer
}

// NewHUD creates a new HUD renderer.
func NewHUD() *HUD {
	return &HUD{
		renderer: NewRenderer(),
	}
}

// StatusLine formats the renderer state.
func StatusLine(d HUDData) string {
	mode := "animated"
	if !d.Animate {
		mode = "static"
	}
	return fmt.Sprintf("%s | %s | %d particles | %d samples (density %d)",
		d.Renderer, mode, d.Particles, d.FieldSamples, d.Density)
}

// ViewLine formats the map position.
func ViewLine(d HUDData) string {
	s := fmt.Sprintf("%s | zoom %.2f", FormatLngLat(d.Center), d.Zoom)
	if d.Cursor != nil {
		s += " | cursor " + FormatLngLat(*d.Cursor)
	}
	return s
}

// FormatLngLat formats a coordinate with hemisphere letters.
func FormatLngLat(p systems.LngLat) string {
	ew, ns := 'E', 'N'
	lng, lat := p.Lng, p.Lat
	if lng < 0 {
		ew, lng = 'W', -lng
	}
	if lat < 0 {
		ns, lat = 'S', -lat
	}
	return fmt.Sprintf("%.2f°%c %.2f°%c", lat, ns, lng, ew)
}

// Draw renders the HUD.
func (h *HUD) Draw(data HUDData) {
	right := func(text string, y, size int32, c rl.Color) {
		w := rl.MeasureText(text, size)
		rl.DrawText(text, data.ScreenWidth-w-10, y, size, c)
	}

	right(StatusLine(data), 10, 16, rl.White)
	right(ViewLine(data), 30, 14, rl.LightGray)
	right(fmt.Sprintf("frame %d | %d fps | recycled %d | fallback %d",
		data.Frame, data.FPS, data.Stats.Recycled, data.Stats.Fallbacks), 48, 14, rl.LightGray)

	y := int32(66)
	if !data.Animate {
		right("STATIC", y, 16, rl.Yellow)
		y += 18
	}
	if line := NoticeLine(data); line != "" {
		right(line, y, 16, rl.Orange)
	}
}

// NoticeLine formats the HUD notice, or "" when there is none.
func NoticeLine(d HUDData) string {
	if d.Notice == "" {
		return ""
	}
	return "! " + d.Notice
}

// DrawControls renders the control legend at the bottom of the screen.
func (h *HUD) DrawControls(screenHeight int32, controls string) {
	rl.DrawText(controls, 10, screenHeight-25, 14, rl.Gray)
}

// DrawLegend renders the speed ramp panel in the bottom-right corner.
func (h *HUD) DrawLegend(screenWidth, screenHeight int32, maxSpeed float64) {
	r := h.renderer
	const width = 220
	x := screenWidth - width - 10
	y := screenHeight - 70
	r.DrawPanel(x, y, width, 60)
	rl.DrawText("Wind speed", x+r.Theme.Padding, y+6, r.Theme.FontSize, r.Theme.LabelColor)
	r.DrawRampLegend(x+r.Theme.Padding, y+24, width-2*r.Theme.Padding, maxSpeed)
}

// PerfPanel renders the frame phase timing panel.
type PerfPanel struct {
	renderer *Renderer
	x, y     int32
}

// NewPerfPanel creates a new performance panel.
func NewPerfPanel(x, y int32) *PerfPanel {
	return &PerfPanel{
		renderer: NewRenderer(),
		x:        x,
		y:        y,
	}
}

// SetPosition updates the panel position.
func (p *PerfPanel) SetPosition(x, y int32) {
	p.x = x
	p.y = y
}

// SortedPhases returns phase names by descending average time.
func SortedPhases(stats telemetry.PerfStats) []string {
	names := make([]string, 0, len(stats.PhaseAvg))
	for name := range stats.PhaseAvg {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		a, b := stats.PhaseAvg[names[i]], stats.PhaseAvg[names[j]]
		if a != b {
			return a > b
		}
		return names[i] < names[j]
	})
	return names
}

// Draw renders the performance panel.
func (p *PerfPanel) Draw(stats telemetry.PerfStats) {
	x := p.x
	y := p.y

	rl.DrawText("Frame Performance", x, y, 16, rl.White)
	y += 20

	rl.DrawText(fmt.Sprintf("Work: %s (max %s)", stats.AvgWork.Round(time.Microsecond), stats.MaxWork.Round(time.Microsecond)),
		x, y, 14, rl.Yellow)
	y += 16

	for _, name := range SortedPhases(stats) {
		pct := stats.PhasePct[name]

		color := rl.LightGray
		if pct > 60 {
			color = rl.Red
		} else if pct > 30 {
			color = rl.Orange
		}

		rl.DrawText(
			fmt.Sprintf("%-10s %8s %5.1f%%", name, stats.PhaseAvg[name].Round(time.Microsecond), pct),
			x, y, 12, color,
		)
		y += 14
	}
}
