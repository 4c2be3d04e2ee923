package inspector

import (
	"math"
	"testing"

	"github.com/pthm-cable/windflow/systems"
)

func TestParseTag(t *testing.T) {
	w, opts := ParseTag("bar,max:1.2,ramp:true")
	if w != WidgetBar {
		t.Errorf("expected WidgetBar, got %v", w)
	}
	if opts["max"] != "1.2" || opts["ramp"] != "true" {
		t.Errorf("unexpected options %v", opts)
	}
	if GetMax(opts) != 1.2 {
		t.Errorf("GetMax = %v, want 1.2", GetMax(opts))
	}

	if w, _ := ParseTag(""); w != WidgetAuto {
		t.Errorf("empty tag: expected WidgetAuto, got %v", w)
	}
	if w, opts := ParseTag("label,fmt:%.3f deg"); w != WidgetLabel || opts["fmt"] != "%.3f deg" {
		t.Errorf("label tag parsed as %v %v", w, opts)
	}
}

func TestExtractFields(t *testing.T) {
	view := NewParticleView(systems.Particle{
		Geo:       systems.LngLat{Lng: 110, Lat: 5},
		Direction: math.Pi / 2,
		Speed:     0.5,
		Age:       10,
		MaxAge:    40,
	}, 3, 0.25)

	fields := ExtractFields(view)
	byName := make(map[string]Field, len(fields))
	for _, f := range fields {
		byName[f.Name] = f
	}

	if len(fields) != 8 {
		t.Fatalf("expected 8 fields, got %d", len(fields))
	}
	if f := byName["Position"]; f.Widget != WidgetCoord {
		t.Errorf("Position widget = %v, want coord", f.Widget)
	}
	if f := byName["Heading"]; f.Widget != WidgetAngle {
		t.Errorf("Heading widget = %v, want angle", f.Widget)
	}
	if f, ok := byName["Age (frames)"]; !ok || f.Value.(int32) != 10 {
		t.Errorf("expected renamed age field, got %+v", f)
	}
	if v, ok := GetFloatValue(byName["Life"].Value); !ok || math.Abs(float64(v)-0.75) > 1e-6 {
		t.Errorf("Life = %v, want 0.75", v)
	}

	if ExtractFields(42) != nil {
		t.Error("expected nil fields for a non-struct")
	}
}

func TestFormatValue(t *testing.T) {
	if got := FormatValue(systems.LngLat{Lng: 100.5, Lat: -2.25}, ""); got != "100.500, -2.250" {
		t.Errorf("coord = %q", got)
	}
	if got := FormatValue(float32(0.456), ""); got != "0.46" {
		t.Errorf("float = %q", got)
	}
	if got := FormatValue(0.1234, "%.3f deg"); got != "0.123 deg" {
		t.Errorf("custom fmt = %q", got)
	}
}

func TestCompassLabel(t *testing.T) {
	tests := []struct {
		rad  float64
		want string
	}{
		{0, "0 deg E"},
		{math.Pi / 2, "90 deg N"},
		{math.Pi, "180 deg W"},
		{-math.Pi / 4, "315 deg SE"},
	}
	for _, tt := range tests {
		if got := CompassLabel(tt.rad); got != tt.want {
			t.Errorf("CompassLabel(%v) = %q, want %q", tt.rad, got, tt.want)
		}
	}
}

func testField() systems.WindField {
	return systems.WindField{
		Bounds:  systems.Bounds{West: 100, South: 0, East: 102, North: 2},
		Density: 1,
		Samples: []systems.WindSample{
			{Position: systems.LngLat{Lng: 100, Lat: 0}, Speed: 0.1},
			{Position: systems.LngLat{Lng: 102, Lat: 0}, Speed: 0.4},
			{Position: systems.LngLat{Lng: 100, Lat: 2}, Speed: 0.7},
			{Position: systems.LngLat{Lng: 102, Lat: 2}, Speed: 1.0},
		},
	}
}

func TestProbe(t *testing.T) {
	particles := []systems.Particle{
		{Geo: systems.LngLat{Lng: 100.2, Lat: 0.2}},
		{Geo: systems.LngLat{Lng: 101.8, Lat: 1.9}},
	}

	sel := Probe(testField(), particles, systems.LngLat{Lng: 101.7, Lat: 1.6}, 1)
	if !sel.HasSample || sel.Sample.Speed != 1.0 {
		t.Errorf("expected the north-east sample, got %+v", sel.Sample)
	}
	if !sel.HasParticle || sel.ParticleIndex != 1 {
		t.Fatalf("expected particle 1, got %+v", sel)
	}
	want := math.Hypot(0.1, 0.3)
	if math.Abs(sel.Distance-want) > 1e-9 {
		t.Errorf("distance = %v, want %v", sel.Distance, want)
	}
}

func TestProbePickRadius(t *testing.T) {
	particles := []systems.Particle{{Geo: systems.LngLat{Lng: 100, Lat: 0}}}

	sel := Probe(testField(), particles, systems.LngLat{Lng: 102, Lat: 2}, 0.5)
	if sel.HasParticle || sel.ParticleIndex != -1 {
		t.Errorf("expected no particle inside the pick radius, got %+v", sel)
	}
	if !sel.HasSample {
		t.Error("expected a sample regardless of the pick radius")
	}

	sel = Probe(testField(), particles, systems.LngLat{Lng: 102, Lat: 2}, 0)
	if !sel.HasParticle {
		t.Error("expected any particle with an unlimited radius")
	}
}

func TestProbeEmpty(t *testing.T) {
	sel := Probe(systems.WindField{}, nil, systems.LngLat{Lng: 110, Lat: 5}, 1)
	if sel.HasSample || sel.HasParticle {
		t.Errorf("expected an empty selection, got %+v", sel)
	}
}

func TestRefreshDropsMissingSlot(t *testing.T) {
	ins := NewInspector(1280, 800)
	particles := []systems.Particle{
		{Geo: systems.LngLat{Lng: 100, Lat: 0}},
		{Geo: systems.LngLat{Lng: 101, Lat: 1}},
	}
	ins.Select(Probe(testField(), particles, systems.LngLat{Lng: 101, Lat: 1}, 0))

	particles[1].Geo = systems.LngLat{Lng: 101.5, Lat: 1}
	ins.Refresh(testField(), particles)
	sel, ok := ins.Selected()
	if !ok || !sel.HasParticle || sel.Particle.Geo.Lng != 101.5 {
		t.Fatalf("expected the moved particle, got %+v", sel)
	}

	ins.Refresh(systems.WindField{}, particles[:1])
	sel, _ = ins.Selected()
	if sel.HasParticle || sel.HasSample {
		t.Errorf("expected slot and sample dropped, got %+v", sel)
	}

	ins.Deselect()
	if _, ok := ins.Selected(); ok {
		t.Error("expected no selection after Deselect")
	}
}
