package systems

import (
	"image/color"
	"math"
)

// Space selects which coordinate representation drives advection.
type Space uint8

const (
	// ScreenSpace particles move in pixels; Geo is recomputed by unprojecting.
	ScreenSpace Space = iota
	// GeoSpace particles move in degrees; screen positions are derived at draw time.
	GeoSpace
)

func (s Space) String() string {
	if s == GeoSpace {
		return "geo"
	}
	return "screen"
}

// Particle is one flow tracer. Slots in a population are never removed;
// recycling overwrites the content in place.
type Particle struct {
	Screen Vec2
	Geo    LngLat

	Age    int32
	MaxAge int32

	// Speed is the sampled speed scaled for visibility; SampleSpeed is the
	// raw value used for coloring.
	Speed       float64
	SampleSpeed float64
	Direction   float64

	Alpha float32

	// Recycles counts how many times this slot has been respawned.
	Recycles uint32
}

// LifeRatio returns the remaining life fraction, 1 at birth and 0 at expiry.
func (p *Particle) LifeRatio() float32 {
	if p.MaxAge <= 0 {
		return 0
	}
	r := 1 - float32(p.Age)/float32(p.MaxAge)
	if r < 0 {
		return 0
	}
	return r
}

// Color returns the ramp color for the particle's speed with alpha from its
// remaining life, scaled by opacity.
func (p *Particle) Color(opacity float64) color.RGBA {
	return WithAlpha(WindColor(p.SampleSpeed), float64(p.Alpha)*opacity)
}

// Heading returns the unit displacement for the particle's direction in the
// given space. Screen y grows downward, so north is negative y there.
func (p *Particle) Heading(space Space) (dx, dy float64) {
	dx = math.Cos(p.Direction)
	dy = math.Sin(p.Direction)
	if space == ScreenSpace {
		dy = -dy
	}
	return dx, dy
}

// TrailTail returns the screen endpoint of the particle's trail, found by
// stepping back along its heading by Speed*lengthFactor pixels.
func (p *Particle) TrailTail(lengthFactor float64) Vec2 {
	dx, dy := p.Heading(ScreenSpace)
	l := p.Speed * lengthFactor
	return Vec2{
		X: p.Screen.X - float32(dx*l),
		Y: p.Screen.Y - float32(dy*l),
	}
}

// GeoTrailTail is TrailTail in degree space.
func (p *Particle) GeoTrailTail(lengthFactor float64) LngLat {
	dx, dy := p.Heading(GeoSpace)
	l := p.Speed * lengthFactor
	return LngLat{Lng: p.Geo.Lng - dx*l, Lat: p.Geo.Lat - dy*l}
}
