// Package components defines ECS components for the instanced wind layer.
package components

import (
	"image/color"

	"github.com/pthm-cable/windflow/systems"
)

// Slot ties an instance entity to a particle slot of the population.
// Stamp is the layer timestamp the instance was last rebuilt for.
type Slot struct {
	Index int32
	Stamp uint64
}

// Point is the point sub-layer instance: one disc per particle.
type Point struct {
	Position systems.LngLat
	Radius   float32
	Color    color.RGBA
}

// Path is the trail sub-layer instance: one short segment per particle.
type Path struct {
	From, To systems.LngLat
	Width    float32
	Color    color.RGBA
}

// Arrow is one static wind arrow drawn from a field sample.
type Arrow struct {
	Points [5]systems.LngLat
	Color  color.RGBA
}
