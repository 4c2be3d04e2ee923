package telemetry

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/pthm-cable/windflow/systems"
)

// SnapshotVersion is incremented when the format changes.
const SnapshotVersion = 1

// FieldSnapshot records a synthesized field and the view that produced it,
// so a frame can be reproduced from the same seed.
type FieldSnapshot struct {
	Version int   `json:"version"`
	RNGSeed int64 `json:"rng_seed"`
	Frame   int64 `json:"frame"`

	Renderer string `json:"renderer"`

	View    BoundsState `json:"view"`
	Domain  BoundsState `json:"domain"`
	Density int         `json:"density"`

	Samples []SampleState `json:"samples"`
}

// BoundsState is the JSON form of systems.Bounds.
type BoundsState struct {
	West  float64 `json:"west"`
	South float64 `json:"south"`
	East  float64 `json:"east"`
	North float64 `json:"north"`
}

// SampleState is one wind sample.
type SampleState struct {
	Lng       float64 `json:"lng"`
	Lat       float64 `json:"lat"`
	Direction float64 `json:"dir"`
	Speed     float64 `json:"speed"`
}

func boundsState(b systems.Bounds) BoundsState {
	return BoundsState{West: b.West, South: b.South, East: b.East, North: b.North}
}

// Bounds converts back to systems.Bounds.
func (b BoundsState) Bounds() systems.Bounds {
	return systems.Bounds{West: b.West, South: b.South, East: b.East, North: b.North}
}

// NewFieldSnapshot captures field as seen through view.
func NewFieldSnapshot(seed, frame int64, renderer string, view systems.Bounds, field systems.WindField) *FieldSnapshot {
	snap := &FieldSnapshot{
		Version:  SnapshotVersion,
		RNGSeed:  seed,
		Frame:    frame,
		Renderer: renderer,
		View:     boundsState(view),
		Domain:   boundsState(field.Bounds),
		Density:  field.Density,
		Samples:  make([]SampleState, len(field.Samples)),
	}
	for i, s := range field.Samples {
		snap.Samples[i] = SampleState{
			Lng:       s.Position.Lng,
			Lat:       s.Position.Lat,
			Direction: s.Direction,
			Speed:     s.Speed,
		}
	}
	return snap
}

// Field rebuilds the wind field.
func (s *FieldSnapshot) Field() systems.WindField {
	field := systems.WindField{
		Bounds:  s.Domain.Bounds(),
		Density: s.Density,
		Samples: make([]systems.WindSample, len(s.Samples)),
	}
	for i, ss := range s.Samples {
		field.Samples[i] = systems.WindSample{
			Position:  systems.LngLat{Lng: ss.Lng, Lat: ss.Lat},
			Direction: ss.Direction,
			Speed:     ss.Speed,
		}
	}
	return field
}

// SaveSnapshot writes the snapshot as indented JSON.
func SaveSnapshot(snap *FieldSnapshot, path string) error {
	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling snapshot: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing snapshot: %w", err)
	}
	return nil
}

// LoadSnapshot reads a snapshot written by SaveSnapshot.
func LoadSnapshot(path string) (*FieldSnapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading snapshot: %w", err)
	}
	var snap FieldSnapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("parsing snapshot: %w", err)
	}
	if snap.Version != SnapshotVersion {
		return nil, fmt.Errorf("snapshot version %d, want %d", snap.Version, SnapshotVersion)
	}
	return &snap, nil
}
