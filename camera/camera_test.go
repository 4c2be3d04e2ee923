package camera

import (
	"errors"
	"math"
	"testing"

	"github.com/pthm-cable/windflow/systems"
)

func TestNew(t *testing.T) {
	m := New(1280, 800, 113.5, 9, 4.3)

	if m.CenterLng != 113.5 || m.CenterLat != 9 {
		t.Errorf("expected center (113.5, 9), got (%f, %f)", m.CenterLng, m.CenterLat)
	}
	if m.Zoom != 4.3 {
		t.Errorf("expected zoom 4.3, got %f", m.Zoom)
	}
}

func TestProjectCentered(t *testing.T) {
	m := New(1280, 800, 113.5, 9, 4.3)

	// Map center should land on screen center
	v, err := m.Project(m.Center())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if math.Abs(float64(v.X-640)) > 0.01 || math.Abs(float64(v.Y-400)) > 0.01 {
		t.Errorf("expected screen center (640, 400), got (%f, %f)", v.X, v.Y)
	}
}

func TestUnprojectRoundtrip(t *testing.T) {
	m := New(1280, 800, 113.5, 9, 4.3)

	testCases := []systems.Vec2{
		{X: 640, Y: 400},  // center
		{X: 100, Y: 100},  // top-left
		{X: 1200, Y: 700}, // near bottom-right
	}

	for _, tc := range testCases {
		geo, err := m.Unproject(tc)
		if err != nil {
			t.Fatalf("unproject %+v: %v", tc, err)
		}
		v, err := m.Project(geo)
		if err != nil {
			t.Fatalf("project %+v: %v", geo, err)
		}
		if math.Abs(float64(v.X-tc.X)) > 0.01 || math.Abs(float64(v.Y-tc.Y)) > 0.01 {
			t.Errorf("roundtrip failed: %+v -> %+v -> %+v", tc, geo, v)
		}
	}
}

func TestNorthIsUp(t *testing.T) {
	m := New(1280, 800, 113.5, 9, 4.3)

	north, _ := m.Project(systems.LngLat{Lng: 113.5, Lat: 20})
	south, _ := m.Project(systems.LngLat{Lng: 113.5, Lat: 0})
	if north.Y >= south.Y {
		t.Errorf("expected north above south, got y=%f vs %f", north.Y, south.Y)
	}
}

func TestUnprojectOffSurface(t *testing.T) {
	// At zoom 0 the whole world is 256px; most of the viewport is off it
	m := New(1280, 800, 0, 0, 0)

	if _, err := m.Unproject(systems.Vec2{X: 5, Y: 5}); !errors.Is(err, ErrOffSurface) {
		t.Errorf("expected ErrOffSurface, got %v", err)
	}
	if _, err := m.Unproject(systems.Vec2{X: 640, Y: 400}); err != nil {
		t.Errorf("expected center to be on surface, got %v", err)
	}
	if _, err := m.Project(systems.LngLat{Lng: 0, Lat: 89}); !errors.Is(err, ErrOffSurface) {
		t.Errorf("expected ErrOffSurface beyond the Mercator limit, got %v", err)
	}
}

func TestBoundsContainCenter(t *testing.T) {
	m := New(1280, 800, 113.5, 9, 4.3)
	b := m.Bounds()

	if b.Empty() {
		t.Fatal("expected non-empty bounds")
	}
	if !b.Contains(m.Center()) {
		t.Errorf("expected bounds %+v to contain center", b)
	}

	m.ZoomBy(-1)
	wider := m.Bounds()
	if wider.Width() <= b.Width() || wider.Height() <= b.Height() {
		t.Errorf("expected zooming out to widen bounds, got %+v then %+v", b, wider)
	}
}

func TestBoundsClippedToSurface(t *testing.T) {
	m := New(1280, 800, 0, 0, 0)
	b := m.Bounds()

	if b.West < -180 || b.East > 180 || b.North > MaxLatitude+1e-9 || b.South < -MaxLatitude-1e-9 {
		t.Errorf("expected bounds clipped to world, got %+v", b)
	}
}

func TestPanMovesCenter(t *testing.T) {
	m := New(1280, 800, 113.5, 9, 4.3)

	m.Pan(100, 0)
	if m.CenterLng <= 113.5 {
		t.Errorf("expected center to move east, got %f", m.CenterLng)
	}
	m.Pan(0, -100)
	if m.CenterLat <= 9 {
		t.Errorf("expected center to move north, got %f", m.CenterLat)
	}
}

func TestZoomClamp(t *testing.T) {
	m := New(1280, 800, 113.5, 9, 4.3)
	m.MinZoom, m.MaxZoom = 3, 9

	m.SetZoom(0.5) // Below min
	if m.Zoom != 3 {
		t.Errorf("expected zoom clamped to 3, got %f", m.Zoom)
	}

	m.SetZoom(12) // Above max
	if m.Zoom != 9 {
		t.Errorf("expected zoom clamped to 9, got %f", m.Zoom)
	}
}

func TestZoomAtKeepsAnchor(t *testing.T) {
	m := New(1280, 800, 113.5, 9, 4.3)
	anchor := systems.Vec2{X: 300, Y: 200}
	before, _ := m.Unproject(anchor)

	m.ZoomAt(1, anchor.X, anchor.Y)

	after, err := m.Project(before)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if math.Abs(float64(after.X-anchor.X)) > 0.5 || math.Abs(float64(after.Y-anchor.Y)) > 0.5 {
		t.Errorf("expected anchor to stay at %+v, got %+v", anchor, after)
	}
}

func TestLoadFiresOnce(t *testing.T) {
	m := New(1280, 800, 113.5, 9, 4.3)
	calls := 0
	m.OnLoad(func() { calls++ })

	m.Load()
	m.Load()
	if calls != 1 {
		t.Errorf("expected one load callback, got %d", calls)
	}

	// Late subscribers run immediately
	late := false
	m.OnLoad(func() { late = true })
	if !late {
		t.Error("expected late subscriber to run immediately")
	}
}

func TestMoveEndAfterChange(t *testing.T) {
	m := New(1280, 800, 113.5, 9, 4.3)
	var got []systems.Bounds
	m.OnMoveEnd(func(b systems.Bounds) { got = append(got, b) })
	m.Load()

	if m.EndMove() {
		t.Error("expected no move end without a change")
	}

	m.Pan(50, 0)
	m.ZoomBy(0.5)
	if !m.EndMove() {
		t.Fatal("expected move end after pan and zoom")
	}
	if len(got) != 1 {
		t.Fatalf("expected exactly one notification, got %d", len(got))
	}
	if got[0] != m.Bounds() {
		t.Errorf("expected notification with current bounds, got %+v", got[0])
	}

	m.Resize(1024, 768)
	m.EndMove()
	if len(got) != 2 {
		t.Errorf("expected resize to notify, got %d notifications", len(got))
	}
}

func TestReset(t *testing.T) {
	m := New(1280, 800, 113.5, 9, 4.3)
	m.Pan(300, 300)
	m.ZoomBy(2)

	m.Reset()

	if m.CenterLng != 113.5 || m.CenterLat != 9 {
		t.Errorf("expected center (113.5, 9), got (%f, %f)", m.CenterLng, m.CenterLat)
	}
	if m.Zoom != 4.3 {
		t.Errorf("expected zoom 4.3, got %f", m.Zoom)
	}
}
