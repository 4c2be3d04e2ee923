package systems

import (
	"math"
	"testing"
)

var seAsia = Bounds{West: 92, South: -11, East: 141, North: 28}

func TestSynthesizeSampleCap(t *testing.T) {
	s := NewFieldSynthesizer(DefaultMaxDensity, DefaultMaxSamples)

	for _, density := range []int{1, 5, 15, 21, 22, 30, 100, 10000} {
		field := s.Synthesize(seAsia, density)
		if field.Len() > DefaultMaxSamples {
			t.Errorf("density %d: expected at most %d samples, got %d", density, DefaultMaxSamples, field.Len())
		}
		if field.Density > DefaultMaxDensity {
			t.Errorf("density %d: expected clamp to %d, got %d", density, DefaultMaxDensity, field.Density)
		}
	}
}

func TestSynthesizeGridShape(t *testing.T) {
	s := NewFieldSynthesizer(30, 500)
	field := s.Synthesize(seAsia, 15)

	if field.Len() != 16*16 {
		t.Fatalf("expected 256 lattice nodes, got %d", field.Len())
	}

	first := field.Samples[0].Position
	if first.Lng != seAsia.West || first.Lat != seAsia.South {
		t.Errorf("expected first sample at south-west corner, got %+v", first)
	}

	// Latitude-major: the second sample moves east, not north
	second := field.Samples[1].Position
	if second.Lat != first.Lat || second.Lng <= first.Lng {
		t.Errorf("expected longitude-minor order, got %+v then %+v", first, second)
	}

	last := field.Samples[field.Len()-1].Position
	if math.Abs(last.Lng-seAsia.East) > 1e-9 || math.Abs(last.Lat-seAsia.North) > 1e-9 {
		t.Errorf("expected last sample at north-east corner, got %+v", last)
	}
}

func TestSynthesizeStopsEarlyAtCap(t *testing.T) {
	s := NewFieldSynthesizer(30, 40)
	field := s.Synthesize(seAsia, 10) // 121 nodes requested

	if field.Len() != 40 {
		t.Fatalf("expected partial field of 40 samples, got %d", field.Len())
	}
	// Partial field is still the south-most rows in order
	if field.Samples[39].Position.Lat <= field.Samples[0].Position.Lat {
		t.Errorf("expected partial field to climb northward")
	}
}

func TestSynthesizeDeterministic(t *testing.T) {
	s := NewFieldSynthesizer(30, 500)
	a := s.Synthesize(seAsia, 20)
	b := s.Synthesize(seAsia, 20)

	if a.Len() != b.Len() {
		t.Fatalf("length mismatch %d vs %d", a.Len(), b.Len())
	}
	for i := range a.Samples {
		if a.Samples[i] != b.Samples[i] {
			t.Fatalf("sample %d differs: %+v vs %+v", i, a.Samples[i], b.Samples[i])
		}
	}
}

func TestSynthesizeZeroSizeBounds(t *testing.T) {
	s := NewFieldSynthesizer(30, 500)
	field := s.Synthesize(Bounds{West: 10, South: 5, East: 10, North: 5}, 15)

	if field.Len() > 1 {
		t.Errorf("expected empty or single-sample field, got %d samples", field.Len())
	}
	if _, ok := Nearest(field, LngLat{Lng: 10, Lat: 5}); ok && field.Len() == 0 {
		t.Error("expected Nearest to report an empty field")
	}
}

func TestSynthesizeTwoRegimes(t *testing.T) {
	north, _ := syntheticWind(120, 20)
	south, _ := syntheticWind(120, 0)

	// North regime blows towards the south-west quadrant, south regime towards the north-east
	if math.Cos(north) >= 0 || math.Sin(north) >= 0 {
		t.Errorf("expected south-westward flow north of the split, got %.2f rad", north)
	}
	if math.Cos(south) <= 0 {
		t.Errorf("expected eastward flow south of the split, got %.2f rad", south)
	}
}

func TestSynthesizeSmooth(t *testing.T) {
	// Neighbouring points within one regime differ only slightly
	for _, lat := range []float64{-5, 3, 15, 24} {
		d1, s1 := syntheticWind(110, lat)
		d2, s2 := syntheticWind(110.1, lat+0.1)
		if math.Abs(d1-d2) > 0.05 || math.Abs(s1-s2) > 0.05 {
			t.Errorf("lat %.0f: expected smooth variation, got Δdir=%.3f Δspeed=%.3f", lat, d1-d2, s1-s2)
		}
	}
}

func TestSynthesizeSpeedRange(t *testing.T) {
	s := NewFieldSynthesizer(30, 500)
	field := s.Synthesize(seAsia, 30)
	for _, sample := range field.Samples {
		if sample.Speed < 0 || sample.Speed > 1.2 {
			t.Errorf("speed %.3f at %+v outside [0, 1.2]", sample.Speed, sample.Position)
		}
	}
}
