package systems

import "errors"

// ErrEmptyField is returned when a field has no samples to offer.
var ErrEmptyField = errors.New("wind field is empty")

// Nearest returns the sample closest to p by squared Euclidean distance in
// degree space. The first sample reaching the minimum wins.
// The boolean is false only for an empty field.
func Nearest(field WindField, p LngLat) (WindSample, bool) {
	if len(field.Samples) == 0 {
		return WindSample{}, false
	}

	best := 0
	bestDist := distSqLngLat(field.Samples[0].Position, p)
	for i := 1; i < len(field.Samples); i++ {
		d := distSqLngLat(field.Samples[i].Position, p)
		if d < bestDist {
			best = i
			bestDist = d
		}
	}
	return field.Samples[best], true
}

// Lookup is Nearest reporting ErrEmptyField instead of a boolean.
func Lookup(field WindField, p LngLat) (WindSample, error) {
	s, ok := Nearest(field, p)
	if !ok {
		return WindSample{}, ErrEmptyField
	}
	return s, nil
}

func distSqLngLat(a, b LngLat) float64 {
	dx := a.Lng - b.Lng
	dy := a.Lat - b.Lat
	return dx*dx + dy*dy
}
