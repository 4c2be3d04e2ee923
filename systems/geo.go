package systems

import "errors"

// LngLat is a geographic coordinate in degrees.
type LngLat struct {
	Lng, Lat float64
}

// Vec2 is a screen position in pixels.
type Vec2 struct {
	X, Y float32
}

// Bounds is a geographic box in degrees.
type Bounds struct {
	West, South, East, North float64
}

// Width returns the longitudinal extent in degrees.
func (b Bounds) Width() float64 { return b.East - b.West }

// Height returns the latitudinal extent in degrees.
func (b Bounds) Height() float64 { return b.North - b.South }

// Empty reports whether the box has no area.
func (b Bounds) Empty() bool {
	return !(b.East > b.West) || !(b.North > b.South)
}

// Contains reports whether p lies inside the box, edges included.
func (b Bounds) Contains(p LngLat) bool {
	return p.Lng >= b.West && p.Lng <= b.East && p.Lat >= b.South && p.Lat <= b.North
}

// Intersect clips b to limit. The result may be Empty when they do not overlap.
func (b Bounds) Intersect(limit Bounds) Bounds {
	return Bounds{
		West:  max(b.West, limit.West),
		South: max(b.South, limit.South),
		East:  min(b.East, limit.East),
		North: min(b.North, limit.North),
	}
}

// Lerp maps (u, v) in [0,1]² onto the box, u west→east and v south→north.
func (b Bounds) Lerp(u, v float64) LngLat {
	return LngLat{
		Lng: b.West + u*b.Width(),
		Lat: b.South + v*b.Height(),
	}
}

// Normalize is the inverse of Lerp.
func (b Bounds) Normalize(p LngLat) (u, v float64) {
	w, h := b.Width(), b.Height()
	if w > 0 {
		u = (p.Lng - b.West) / w
	}
	if h > 0 {
		v = (p.Lat - b.South) / h
	}
	return u, v
}

// ErrProjection is returned by a Projector that cannot map a point.
var ErrProjection = errors.New("projection failed")

// Projector converts between screen pixels and geographic coordinates.
// It is the only view of the host map the particle engine has.
type Projector interface {
	Project(p LngLat) (Vec2, error)
	Unproject(v Vec2) (LngLat, error)
	Viewport() (w, h float32)
}
