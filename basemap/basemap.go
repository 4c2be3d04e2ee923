// Package basemap draws coarse country outlines and a graticule beneath the
// wind layers.
package basemap

import (
	_ "embed"
	"fmt"
	"image/color"

	rl "github.com/gen2brain/raylib-go/raylib"
	geojson "github.com/paulmach/go.geojson"

	"github.com/pthm-cable/windflow/systems"
)

//go:embed countries.geojson
var countriesGeoJSON []byte

// Colors used by Draw.
var (
	OutlineColor   = color.RGBA{120, 132, 150, 200}
	GraticuleColor = color.RGBA{50, 58, 72, 140}
)

// Country is one named outline made of closed rings.
type Country struct {
	Name  string
	ISO   string
	Rings [][]systems.LngLat
}

// Basemap holds the parsed outlines.
type Basemap struct {
	Countries []Country

	// Graticule spacing in degrees; 0 disables it
	GraticuleStep float64

	scratch []rl.Vector2
}

// Load parses the embedded Southeast Asia outlines.
func Load() (*Basemap, error) {
	return Parse(countriesGeoJSON)
}

// Parse reads a GeoJSON FeatureCollection. Polygon and MultiPolygon features
// become countries; other geometry types are ignored.
func Parse(data []byte) (*Basemap, error) {
	fc, err := geojson.UnmarshalFeatureCollection(data)
	if err != nil {
		return nil, fmt.Errorf("parsing basemap: %w", err)
	}

	bm := &Basemap{GraticuleStep: 5}
	for _, f := range fc.Features {
		if f.Geometry == nil {
			continue
		}
		c := Country{
			Name: f.PropertyMustString("name", ""),
			ISO:  f.PropertyMustString("iso", ""),
		}
		switch {
		case f.Geometry.IsPolygon():
			c.Rings = appendRings(c.Rings, f.Geometry.Polygon)
		case f.Geometry.IsMultiPolygon():
			for _, poly := range f.Geometry.MultiPolygon {
				c.Rings = appendRings(c.Rings, poly)
			}
		default:
			continue
		}
		if len(c.Rings) > 0 {
			bm.Countries = append(bm.Countries, c)
		}
	}
	return bm, nil
}

// appendRings converts GeoJSON rings, closing any ring that is left open.
func appendRings(dst [][]systems.LngLat, rings [][][]float64) [][]systems.LngLat {
	for _, ring := range rings {
		if len(ring) < 3 {
			continue
		}
		pts := make([]systems.LngLat, 0, len(ring)+1)
		for _, pos := range ring {
			if len(pos) < 2 {
				continue
			}
			pts = append(pts, systems.LngLat{Lng: pos[0], Lat: pos[1]})
		}
		if len(pts) < 3 {
			continue
		}
		if pts[0] != pts[len(pts)-1] {
			pts = append(pts, pts[0])
		}
		dst = append(dst, pts)
	}
	return dst
}

// Country returns the outline with the given name.
func (b *Basemap) Country(name string) (Country, bool) {
	for _, c := range b.Countries {
		if c.Name == name {
			return c, true
		}
	}
	return Country{}, false
}

// Bounds returns the box around every ring.
func (b *Basemap) Bounds() systems.Bounds {
	first := true
	var out systems.Bounds
	for _, c := range b.Countries {
		for _, ring := range c.Rings {
			for _, p := range ring {
				if first {
					out = systems.Bounds{West: p.Lng, South: p.Lat, East: p.Lng, North: p.Lat}
					first = false
					continue
				}
				out.West = min(out.West, p.Lng)
				out.East = max(out.East, p.Lng)
				out.South = min(out.South, p.Lat)
				out.North = max(out.North, p.Lat)
			}
		}
	}
	return out
}

// ProjectRing converts a ring to screen space. A point that fails to project
// ends the current strip, so the result is a set of unbroken strips.
func ProjectRing(proj systems.Projector, ring []systems.LngLat) [][]systems.Vec2 {
	var strips [][]systems.Vec2
	var cur []systems.Vec2
	for _, p := range ring {
		v, err := proj.Project(p)
		if err != nil {
			if len(cur) > 1 {
				strips = append(strips, cur)
			}
			cur = nil
			continue
		}
		cur = append(cur, v)
	}
	if len(cur) > 1 {
		strips = append(strips, cur)
	}
	return strips
}

// GraticuleLines returns parallels and meridians every step degrees inside
// bounds, each densified so it bends with the projection.
func GraticuleLines(bounds systems.Bounds, step float64) [][]systems.LngLat {
	if step <= 0 || bounds.Empty() {
		return nil
	}
	const segments = 32
	var lines [][]systems.LngLat

	for lat := ceilTo(bounds.South, step); lat <= bounds.North; lat += step {
		line := make([]systems.LngLat, 0, segments+1)
		for i := 0; i <= segments; i++ {
			lng := bounds.West + bounds.Width()*float64(i)/segments
			line = append(line, systems.LngLat{Lng: lng, Lat: lat})
		}
		lines = append(lines, line)
	}
	for lng := ceilTo(bounds.West, step); lng <= bounds.East; lng += step {
		line := make([]systems.LngLat, 0, segments+1)
		for i := 0; i <= segments; i++ {
			lat := bounds.South + bounds.Height()*float64(i)/segments
			line = append(line, systems.LngLat{Lng: lng, Lat: lat})
		}
		lines = append(lines, line)
	}
	return lines
}

func ceilTo(x, step float64) float64 {
	n := int(x / step)
	v := float64(n) * step
	if v < x {
		v += step
	}
	return v
}

// Draw renders the graticule over view and every country outline.
func (b *Basemap) Draw(proj systems.Projector, view systems.Bounds) {
	b.DrawGraticule(proj, view)
	b.DrawOutlines(proj)
}

// DrawGraticule renders the lat/lng grid covering view.
func (b *Basemap) DrawGraticule(proj systems.Projector, view systems.Bounds) {
	for _, line := range GraticuleLines(view, b.GraticuleStep) {
		b.drawStrips(ProjectRing(proj, line), GraticuleColor)
	}
}

// DrawOutlines renders every country outline.
func (b *Basemap) DrawOutlines(proj systems.Projector) {
	for _, c := range b.Countries {
		for _, ring := range c.Rings {
			b.drawStrips(ProjectRing(proj, ring), OutlineColor)
		}
	}
}

func (b *Basemap) drawStrips(strips [][]systems.Vec2, col color.RGBA) {
	for _, strip := range strips {
		b.scratch = b.scratch[:0]
		for _, v := range strip {
			b.scratch = append(b.scratch, rl.Vector2{X: v.X, Y: v.Y})
		}
		rl.DrawLineStrip(b.scratch, col)
	}
}
