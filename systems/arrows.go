package systems

import "math"

// ArrowPath returns the 5-point arrow for a sample in degree space:
// start, tip, first barb, tip again, second barb.
// The shaft grows with speed; barbs open at ±spread from the reversed shaft.
func ArrowPath(s WindSample, length, spread float64) [5]LngLat {
	shaft := length * (0.3 + s.Speed)
	cos, sin := math.Cos(s.Direction), math.Sin(s.Direction)

	start := s.Position
	tip := LngLat{Lng: start.Lng + cos*shaft, Lat: start.Lat + sin*shaft}

	barb := shaft * 0.3
	back := s.Direction + math.Pi
	left := LngLat{
		Lng: tip.Lng + math.Cos(back-spread)*barb,
		Lat: tip.Lat + math.Sin(back-spread)*barb,
	}
	right := LngLat{
		Lng: tip.Lng + math.Cos(back+spread)*barb,
		Lat: tip.Lat + math.Sin(back+spread)*barb,
	}
	return [5]LngLat{start, tip, left, tip, right}
}
