package systems

import (
	"image/color"

	"github.com/lucasb-eyer/go-colorful"
)

// Speed band edges for the wind color ramp.
const (
	lightWindMax  = 0.3
	mediumWindMax = 0.6
	strongWindEnd = 1.2
)

// SaturationSpeed is the speed where the ramp reaches its final red.
const SaturationSpeed = strongWindEnd

var (
	lightWind  = colorful.Color{R: 120 / 255.0, G: 200 / 255.0, B: 1}
	mediumLow  = colorful.Color{R: 100 / 255.0, G: 1, B: 140 / 255.0}
	mediumHigh = colorful.Color{R: 1, G: 1, B: 90 / 255.0}
	strongHigh = colorful.Color{R: 1, G: 55 / 255.0, B: 40 / 255.0}
)

// WindColor maps a speed to an opaque color.
// [0,0.3) is a constant light blue, [0.3,0.6) runs green to yellow and
// [0.6,∞) runs yellow to red, saturating at 1.2.
func WindColor(speed float64) color.RGBA {
	var c colorful.Color
	switch {
	case speed < lightWindMax:
		c = lightWind
	case speed < mediumWindMax:
		t := (speed - lightWindMax) / (mediumWindMax - lightWindMax)
		c = mediumLow.BlendRgb(mediumHigh, t)
	default:
		t := (speed - mediumWindMax) / (strongWindEnd - mediumWindMax)
		if t > 1 {
			t = 1
		}
		c = mediumHigh.BlendRgb(strongHigh, t)
	}
	r, g, b := c.Clamped().RGB255()
	return color.RGBA{R: r, G: g, B: b, A: 255}
}

// SpeedBand names the ramp band speed falls in.
func SpeedBand(speed float64) string {
	switch {
	case speed < lightWindMax:
		return "light"
	case speed < mediumWindMax:
		return "medium"
	default:
		return "strong"
	}
}

// WithAlpha returns c with alpha scaled to a in [0,1].
func WithAlpha(c color.RGBA, a float64) color.RGBA {
	if a < 0 {
		a = 0
	}
	if a > 1 {
		a = 1
	}
	c.A = uint8(a*255 + 0.5)
	return c
}

// Brighten lifts c towards white by amount in [0,1].
func Brighten(c color.RGBA, amount float64) color.RGBA {
	base := colorful.Color{R: float64(c.R) / 255, G: float64(c.G) / 255, B: float64(c.B) / 255}
	r, g, b := base.BlendRgb(colorful.Color{R: 1, G: 1, B: 1}, amount).Clamped().RGB255()
	return color.RGBA{R: r, G: g, B: b, A: c.A}
}

// ColorRamp renders WindColor over [0, maxSpeed] into n entries.
// The GPU variant packs 256 entries into a 16x16 texture.
func ColorRamp(n int, maxSpeed float64) []color.RGBA {
	ramp := make([]color.RGBA, n)
	for i := range ramp {
		t := 0.0
		if n > 1 {
			t = float64(i) / float64(n-1)
		}
		ramp[i] = WindColor(t * maxSpeed)
	}
	return ramp
}
