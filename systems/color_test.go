package systems

import (
	"image/color"
	"testing"
)

func TestWindColorLightBandConstant(t *testing.T) {
	base := WindColor(0)
	for _, s := range []float64{0.05, 0.1, 0.2, 0.29} {
		if c := WindColor(s); c != base {
			t.Errorf("speed %.2f: expected constant light color %v, got %v", s, base, c)
		}
	}
}

func TestWindColorStrongBandCoolsGreen(t *testing.T) {
	c06 := WindColor(0.6)
	c09 := WindColor(0.9)
	if c09.G >= c06.G {
		t.Errorf("expected g(0.9)=%d below g(0.6)=%d", c09.G, c06.G)
	}
}

func TestWindColorMediumBandLinear(t *testing.T) {
	a := WindColor(0.3)
	b := WindColor(0.45)
	c := WindColor(0.59)
	if !(a.R < b.R && b.R < c.R) {
		t.Errorf("expected red to rise across the medium band, got %d, %d, %d", a.R, b.R, c.R)
	}
	if a == WindColor(0.29) {
		t.Error("expected a band change at 0.3")
	}
}

func TestWindColorSaturates(t *testing.T) {
	if WindColor(1.2) != WindColor(5) {
		t.Error("expected the ramp to saturate past 1.2")
	}
}

func TestWithAlpha(t *testing.T) {
	c := WithAlpha(color.RGBA{R: 10, G: 20, B: 30, A: 255}, 0.5)
	if c.A != 128 || c.R != 10 {
		t.Errorf("unexpected color %v", c)
	}
	if WithAlpha(c, 2).A != 255 || WithAlpha(c, -1).A != 0 {
		t.Error("expected alpha to clamp")
	}
}

func TestBrighten(t *testing.T) {
	c := color.RGBA{R: 100, G: 100, B: 100, A: 40}
	b := Brighten(c, 0.5)
	if b.R <= c.R || b.A != c.A {
		t.Errorf("expected brighter color with same alpha, got %v", b)
	}
}

func TestColorRamp(t *testing.T) {
	ramp := ColorRamp(256, 1.2)
	if len(ramp) != 256 {
		t.Fatalf("expected 256 entries, got %d", len(ramp))
	}
	if ramp[0] != WindColor(0) || ramp[255] != WindColor(1.2) {
		t.Error("expected ramp endpoints to match WindColor")
	}
}

func TestSpeedBand(t *testing.T) {
	tests := []struct {
		speed float64
		want  string
	}{
		{0, "light"},
		{0.29, "light"},
		{0.3, "medium"},
		{0.59, "medium"},
		{0.6, "strong"},
		{5, "strong"},
	}
	for _, tt := range tests {
		if got := SpeedBand(tt.speed); got != tt.want {
			t.Errorf("SpeedBand(%v) = %q, want %q", tt.speed, got, tt.want)
		}
	}
}
