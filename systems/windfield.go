package systems

import "math"

// Default synthesis caps.
const (
	DefaultMaxDensity = 30
	DefaultMaxSamples = 500
)

// monsoonLat splits the two synthetic flow regimes.
// North of it the flow is a north-easterly with zonal ripples, south of it a
// westerly band that turns with latitude.
const monsoonLat = 10.0

// WindSample is the wind at one fixed location.
// Direction is in radians, 0 = east, counter-clockwise towards north.
type WindSample struct {
	Position  LngLat
	Direction float64
	Speed     float64
}

// WindField is a regular lattice of samples over Bounds, latitude-major.
// It is immutable once synthesized; a bounds change produces a new field.
type WindField struct {
	Bounds  Bounds
	Density int
	Samples []WindSample
}

// Len returns the sample count.
func (f WindField) Len() int { return len(f.Samples) }

// FieldSynthesizer builds synthetic wind fields with bounded cost.
type FieldSynthesizer struct {
	MaxDensity int
	MaxSamples int
}

// NewFieldSynthesizer creates a synthesizer with the given caps.
// Non-positive caps fall back to the defaults.
func NewFieldSynthesizer(maxDensity, maxSamples int) *FieldSynthesizer {
	if maxDensity <= 0 {
		maxDensity = DefaultMaxDensity
	}
	if maxSamples <= 0 {
		maxSamples = DefaultMaxSamples
	}
	return &FieldSynthesizer{MaxDensity: maxDensity, MaxSamples: maxSamples}
}

// Synthesize emits samples on a (density+1)² lattice covering bounds, from the
// south-west corner upward, stopping early once MaxSamples is reached.
// Zero-area bounds yield an empty field.
func (s *FieldSynthesizer) Synthesize(bounds Bounds, density int) WindField {
	if density > s.MaxDensity {
		density = s.MaxDensity
	}
	field := WindField{Bounds: bounds, Density: density}
	if density < 1 || bounds.Empty() {
		return field
	}

	lngStep := bounds.Width() / float64(density)
	latStep := bounds.Height() / float64(density)

	nodes := (density + 1) * (density + 1)
	field.Samples = make([]WindSample, 0, min(nodes, s.MaxSamples))

	for i := 0; i <= density; i++ {
		lat := bounds.South + float64(i)*latStep
		for j := 0; j <= density; j++ {
			if len(field.Samples) >= s.MaxSamples {
				return field
			}
			lng := bounds.West + float64(j)*lngStep
			dir, speed := syntheticWind(lng, lat)
			field.Samples = append(field.Samples, WindSample{
				Position:  LngLat{Lng: lng, Lat: lat},
				Direction: dir,
				Speed:     speed,
			})
		}
	}
	return field
}

// syntheticWind returns a smooth, plausible direction and speed for a point.
func syntheticWind(lng, lat float64) (direction, speed float64) {
	latR := lat * math.Pi / 180
	lngR := lng * math.Pi / 180

	if lat >= monsoonLat {
		direction = 1.25*math.Pi + 0.35*math.Sin(latR*6) + 0.25*math.Cos(lngR*4)
		speed = 0.55 + 0.3*math.Sin(latR*5)*math.Cos(lngR*3) + 0.1*math.Cos(lngR*7)
	} else {
		direction = 0.15*math.Pi + 0.5*math.Cos(latR*8) + 0.3*math.Sin(lngR*5)
		speed = 0.45 + 0.35*math.Cos(latR*6+lngR*2) + 0.08*math.Sin(lngR*9)
	}
	if speed < 0 {
		speed = 0
	}
	return direction, speed
}
