// Package camera provides a Web-Mercator pan/zoom map that hosts the wind
// layers. It converts between geographic coordinates and screen pixels and
// notifies subscribers when the view settles.
package camera

import (
	"errors"
	"math"

	"github.com/pthm-cable/windflow/systems"
)

// TileSize is the world size in pixels at zoom 0.
const TileSize = 256

// MaxLatitude is the Web-Mercator latitude limit in degrees.
const MaxLatitude = 85.05112878

// ErrOffSurface is returned when a pixel lies outside the projected world.
var ErrOffSurface = errors.New("point is off the map surface")

var _ systems.Projector = (*Map)(nil)

// Map controls the viewport onto a single, non-wrapping Mercator world.
type Map struct {
	// Center of the view in degrees
	CenterLng, CenterLat float64

	// Zoom level (world is TileSize*2^Zoom pixels wide)
	Zoom             float64
	MinZoom, MaxZoom float64

	// Viewport dimensions (screen size)
	ViewportW, ViewportH float32

	homeLng, homeLat, homeZoom float64

	loaded bool
	moving bool

	onLoad    []func()
	onMoveEnd []func(systems.Bounds)
}

// New creates a map centered on (lng, lat) at the given zoom.
func New(viewportW, viewportH float32, lng, lat, zoom float64) *Map {
	m := &Map{
		CenterLng: lng,
		CenterLat: clampf(lat, -MaxLatitude, MaxLatitude),
		Zoom:      zoom,
		MinZoom:   0,
		MaxZoom:   20,
		ViewportW: viewportW,
		ViewportH: viewportH,
		homeLng:   lng,
		homeLat:   lat,
		homeZoom:  zoom,
	}
	return m
}

// worldSize returns the world width in pixels at the current zoom.
func (m *Map) worldSize() float64 {
	return TileSize * math.Exp2(m.Zoom)
}

// toWorld projects a coordinate onto the [0,1]² Mercator square.
func toWorld(p systems.LngLat) (x, y float64) {
	lat := clampf(p.Lat, -MaxLatitude, MaxLatitude) * math.Pi / 180
	x = (p.Lng + 180) / 360
	y = (1 - math.Log(math.Tan(lat)+1/math.Cos(lat))/math.Pi) / 2
	return x, y
}

func fromWorld(x, y float64) systems.LngLat {
	lng := x*360 - 180
	n := math.Pi * (1 - 2*y)
	lat := math.Atan(math.Sinh(n)) * 180 / math.Pi
	return systems.LngLat{Lng: lng, Lat: lat}
}

// Project converts a geographic coordinate to screen pixels.
func (m *Map) Project(p systems.LngLat) (systems.Vec2, error) {
	if math.IsNaN(p.Lng) || math.IsNaN(p.Lat) || math.Abs(p.Lat) > MaxLatitude {
		return systems.Vec2{}, ErrOffSurface
	}
	size := m.worldSize()
	wx, wy := toWorld(p)
	cx, cy := toWorld(systems.LngLat{Lng: m.CenterLng, Lat: m.CenterLat})
	return systems.Vec2{
		X: m.ViewportW/2 + float32((wx-cx)*size),
		Y: m.ViewportH/2 + float32((wy-cy)*size),
	}, nil
}

// Unproject converts screen pixels to a geographic coordinate.
// Pixels outside the world square return ErrOffSurface.
func (m *Map) Unproject(v systems.Vec2) (systems.LngLat, error) {
	size := m.worldSize()
	cx, cy := toWorld(systems.LngLat{Lng: m.CenterLng, Lat: m.CenterLat})
	wx := cx + float64(v.X-m.ViewportW/2)/size
	wy := cy + float64(v.Y-m.ViewportH/2)/size
	if wx < 0 || wx > 1 || wy < 0 || wy > 1 || math.IsNaN(wx) || math.IsNaN(wy) {
		return systems.LngLat{}, ErrOffSurface
	}
	return fromWorld(wx, wy), nil
}

// Viewport returns the screen size in pixels.
func (m *Map) Viewport() (w, h float32) {
	return m.ViewportW, m.ViewportH
}

// Bounds returns the visible geographic box, clipped to the world surface.
func (m *Map) Bounds() systems.Bounds {
	size := m.worldSize()
	cx, cy := toWorld(systems.LngLat{Lng: m.CenterLng, Lat: m.CenterLat})
	halfW := float64(m.ViewportW) / 2 / size
	halfH := float64(m.ViewportH) / 2 / size

	nw := fromWorld(clampf(cx-halfW, 0, 1), clampf(cy-halfH, 0, 1))
	se := fromWorld(clampf(cx+halfW, 0, 1), clampf(cy+halfH, 0, 1))
	return systems.Bounds{West: nw.Lng, South: se.Lat, East: se.Lng, North: nw.Lat}
}

// Center returns the view center.
func (m *Map) Center() systems.LngLat {
	return systems.LngLat{Lng: m.CenterLng, Lat: m.CenterLat}
}

// Resize updates viewport dimensions.
func (m *Map) Resize(viewportW, viewportH float32) {
	if viewportW == m.ViewportW && viewportH == m.ViewportH {
		return
	}
	m.ViewportW = viewportW
	m.ViewportH = viewportH
	m.moving = true
}

// Pan moves the view by the given delta in screen pixels.
// Positive dx moves the view east, positive dy moves it south.
func (m *Map) Pan(dx, dy float32) {
	if dx == 0 && dy == 0 {
		return
	}
	size := m.worldSize()
	cx, cy := toWorld(m.Center())
	cx = clampf(cx+float64(dx)/size, 0, 1)
	cy = clampf(cy+float64(dy)/size, 0, 1)
	c := fromWorld(cx, cy)
	m.CenterLng, m.CenterLat = c.Lng, c.Lat
	m.moving = true
}

// SetZoom sets the zoom level, clamped to min/max.
func (m *Map) SetZoom(zoom float64) {
	z := clampf(zoom, m.MinZoom, m.MaxZoom)
	if z == m.Zoom {
		return
	}
	m.Zoom = z
	m.moving = true
}

// ZoomBy adds delta zoom levels.
func (m *Map) ZoomBy(delta float64) {
	m.SetZoom(m.Zoom + delta)
}

// ZoomAt zooms by delta levels keeping the geographic point under the
// screen position (sx, sy) fixed.
func (m *Map) ZoomAt(delta float64, sx, sy float32) {
	anchor, err := m.Unproject(systems.Vec2{X: sx, Y: sy})
	m.ZoomBy(delta)
	if err != nil {
		return
	}
	after, err := m.Project(anchor)
	if err != nil {
		return
	}
	m.Pan(after.X-sx, after.Y-sy)
}

// Reset returns the map to its initial center and zoom.
func (m *Map) Reset() {
	m.CenterLng, m.CenterLat = m.homeLng, m.homeLat
	m.Zoom = m.homeZoom
	m.moving = true
}

// Moving reports whether the view changed since the last EndMove.
func (m *Map) Moving() bool { return m.moving }

// OnLoad registers fn to run once when the map finishes loading.
// Registering after Load runs fn immediately.
func (m *Map) OnLoad(fn func()) {
	if m.loaded {
		fn()
		return
	}
	m.onLoad = append(m.onLoad, fn)
}

// OnMoveEnd registers fn to run with the new bounds each time a pan, zoom or
// resize settles.
func (m *Map) OnMoveEnd(fn func(systems.Bounds)) {
	m.onMoveEnd = append(m.onMoveEnd, fn)
}

// Load marks the map ready and fires the load subscribers once.
func (m *Map) Load() {
	if m.loaded {
		return
	}
	m.loaded = true
	m.moving = false
	for _, fn := range m.onLoad {
		fn()
	}
	m.onLoad = nil
}

// EndMove fires the move-end subscribers if the view changed.
// Returns whether any change was pending.
func (m *Map) EndMove() bool {
	if !m.moving || !m.loaded {
		return false
	}
	m.moving = false
	b := m.Bounds()
	for _, fn := range m.onMoveEnd {
		fn(b)
	}
	return true
}

// clampf restricts a value to a range.
func clampf(x, lo, hi float64) float64 {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}
