package ui

import (
	"strings"
	"testing"
	"time"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/windflow/systems"
	"github.com/pthm-cable/windflow/telemetry"
)

func TestOverlayDefaults(t *testing.T) {
	reg := NewOverlayRegistry()

	if !reg.IsEnabled(OverlayCountries) || !reg.IsEnabled(OverlayLegend) {
		t.Error("map overlays should start enabled")
	}
	if reg.IsEnabled(OverlayFieldGrid) || reg.IsEnabled(OverlayPerf) {
		t.Error("debug overlays should start disabled")
	}

	cats := reg.Categories()
	if len(cats) != 2 || cats[0] != "map" || cats[1] != "debug" {
		t.Errorf("categories = %v, want [map debug]", cats)
	}
}

func TestOverlayKeyPress(t *testing.T) {
	reg := NewOverlayRegistry()

	id, on, ok := reg.HandleKeyPress(rl.KeyF)
	if !ok || id != OverlayFieldGrid || !on {
		t.Fatalf("HandleKeyPress(F) = %v, %v, %v", id, on, ok)
	}
	if _, _, ok := reg.HandleKeyPress(rl.KeyH); ok {
		t.Error("unbound key should not toggle")
	}

	reg.Toggle(OverlayFieldGrid)
	if reg.IsEnabled(OverlayFieldGrid) {
		t.Error("second toggle should disable")
	}
}

func TestOverlayExclusive(t *testing.T) {
	reg := NewOverlayRegistry()
	reg.Register(OverlayDescriptor{ID: "a", Category: "debug"})
	reg.Register(OverlayDescriptor{ID: "b", Category: "debug", Exclusive: []OverlayID{"a"}})

	reg.SetEnabled("a", true)
	reg.Toggle("b")
	if reg.IsEnabled("a") {
		t.Error("enabling b should disable a")
	}
}

func TestSettingsDiff(t *testing.T) {
	a := Settings{Renderer: "canvas", Animate: true, Density: 15, Particles: 3000}

	if a.Diff(a).Any() {
		t.Error("identical settings reported changes")
	}

	b := a
	b.Renderer = "gpu"
	b.Density = 20
	c := b.Diff(a)
	if !c.Renderer || !c.Density || c.Animate || c.Particles {
		t.Errorf("changes = %+v", c)
	}
}

func TestSnapSliders(t *testing.T) {
	cpu := Limits{MaxDensity: 30, MinParticles: 100, MaxParticles: 10000}
	if got := SnapParticles(3049, cpu); got != 3000 {
		t.Errorf("SnapParticles(3049) = %d, want 3000", got)
	}
	if got := SnapParticles(20, cpu); got != 100 {
		t.Errorf("SnapParticles(20) = %d, want clamp to 100", got)
	}

	gpu := Limits{MaxDensity: 30, MinParticles: 1024, MaxParticles: 262144}
	if got := SnapParticles(65300, gpu); got != 65536 {
		t.Errorf("SnapParticles(65300) = %d, want 65536", got)
	}

	if got := SnapDensity(45, cpu); got != 30 {
		t.Errorf("SnapDensity(45) = %d, want 30", got)
	}
	if got := SnapDensity(0.2, cpu); got != 1 {
		t.Errorf("SnapDensity(0.2) = %d, want 1", got)
	}
}

func TestRampStops(t *testing.T) {
	speeds, colors := RampStops(5, 1.2)
	if len(speeds) != 5 || speeds[0] != 0 || speeds[4] != 1.2 {
		t.Fatalf("speeds = %v", speeds)
	}
	if colors[0] != rl.Color(systems.WindColor(0)) {
		t.Errorf("first stop = %v", colors[0])
	}
}

func TestFormatLines(t *testing.T) {
	if got := FormatLngLat(systems.LngLat{Lng: 106.7, Lat: -6.2}); got != "6.20°S 106.70°E" {
		t.Errorf("FormatLngLat = %q", got)
	}

	d := HUDData{Renderer: "gpu", Animate: false, Particles: 65536, FieldSamples: 256, Density: 15}
	if s := StatusLine(d); !strings.Contains(s, "static") || !strings.Contains(s, "65536") {
		t.Errorf("StatusLine = %q", s)
	}

	cursor := systems.LngLat{Lng: 100, Lat: 10}
	d.Cursor = &cursor
	if s := ViewLine(d); !strings.Contains(s, "cursor") {
		t.Errorf("ViewLine = %q", s)
	}
}

func TestNoticeLine(t *testing.T) {
	if s := NoticeLine(HUDData{}); s != "" {
		t.Errorf("NoticeLine without notice = %q, want empty", s)
	}
	d := HUDData{Notice: "gpu renderer failed, using canvas"}
	if s := NoticeLine(d); s != "! gpu renderer failed, using canvas" {
		t.Errorf("NoticeLine = %q", s)
	}
}

func TestSortedPhases(t *testing.T) {
	stats := telemetry.PerfStats{PhaseAvg: map[string]time.Duration{
		telemetry.PhaseAdvance: 2 * time.Millisecond,
		telemetry.PhaseRender:  5 * time.Millisecond,
		telemetry.PhaseField:   0,
	}}
	got := SortedPhases(stats)
	want := []string{telemetry.PhaseRender, telemetry.PhaseAdvance, telemetry.PhaseField}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("SortedPhases = %v, want %v", got, want)
		}
	}
}
