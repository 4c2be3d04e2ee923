package systems

import (
	"errors"
	"math"
	"math/rand"
	"testing"
)

// gridProjector is an equirectangular projection of bounds onto a w×h viewport.
type gridProjector struct {
	bounds Bounds
	w, h   float32

	failUnproject bool
	failProject   bool
	panicAll      bool

	// projectOnly, when set, limits Project to points inside it
	projectOnly Bounds
}

func (g *gridProjector) Project(p LngLat) (Vec2, error) {
	if g.panicAll {
		panic("projection unavailable")
	}
	if g.failProject || (!g.projectOnly.Empty() && !g.projectOnly.Contains(p)) {
		return Vec2{}, ErrProjection
	}
	u, v := g.bounds.Normalize(p)
	return Vec2{X: float32(u) * g.w, Y: float32(1-v) * g.h}, nil
}

func (g *gridProjector) Unproject(s Vec2) (LngLat, error) {
	if g.panicAll {
		panic("projection unavailable")
	}
	if g.failUnproject {
		return LngLat{}, ErrProjection
	}
	return g.bounds.Lerp(float64(s.X/g.w), 1-float64(s.Y/g.h)), nil
}

func (g *gridProjector) Viewport() (float32, float32) { return g.w, g.h }

func testField() WindField {
	return NewFieldSynthesizer(30, 500).Synthesize(seAsia, 15)
}

func screenEngine(proj Projector, seed int64) *Engine {
	return NewEngine(EngineParams{
		Space:           ScreenSpace,
		StepScale:       1.2,
		SpeedMultiplier: 1.5,
		MinAge:          50,
		MaxAge:          150,
		SpawnRetries:    3,
		MarginPx:        20,
		Region:          seAsia,
	}, proj, rand.New(rand.NewSource(seed)))
}

func geoEngine(seed int64) *Engine {
	return NewEngine(EngineParams{
		Space:           GeoSpace,
		StepScale:       0.02,
		SpeedMultiplier: 1.5,
		MinAge:          50,
		MaxAge:          150,
		SpawnRetries:    3,
		Region:          seAsia,
	}, nil, rand.New(rand.NewSource(seed)))
}

func TestSpawnCountAndAges(t *testing.T) {
	proj := &gridProjector{bounds: seAsia, w: 800, h: 600}
	e := screenEngine(proj, 1)
	particles := e.Spawn(testField(), seAsia, 3000)

	if len(particles) != 3000 {
		t.Fatalf("expected 3000 particles, got %d", len(particles))
	}
	for i, p := range particles {
		if p.MaxAge < 50 || p.MaxAge > 150 {
			t.Fatalf("particle %d: max age %d outside [50,150]", i, p.MaxAge)
		}
		if p.Age < 0 || p.Age >= p.MaxAge {
			t.Fatalf("particle %d: age %d outside [0,%d)", i, p.Age, p.MaxAge)
		}
		if !seAsia.Contains(p.Geo) {
			t.Fatalf("particle %d spawned outside the domain at %+v", i, p.Geo)
		}
	}
}

func TestSpawnEmptyField(t *testing.T) {
	e := geoEngine(1)
	if got := e.Spawn(WindField{}, seAsia, 100); len(got) != 0 {
		t.Errorf("expected no particles for an empty field, got %d", len(got))
	}
}

func TestSpawnBudgetExhausted(t *testing.T) {
	proj := &gridProjector{bounds: seAsia, w: 800, h: 600, failUnproject: true}
	e := screenEngine(proj, 1)

	particles := e.Spawn(testField(), seAsia, 500)
	if len(particles) != 0 {
		t.Errorf("expected spawn to give up with no valid positions, got %d", len(particles))
	}
}

func TestSpawnPartialDomain(t *testing.T) {
	// Only the southern half of the viewport maps into the domain
	proj := &gridProjector{bounds: seAsia, w: 800, h: 600}
	e := screenEngine(proj, 3)
	domain := Bounds{West: 92, South: -11, East: 141, North: 8.5}

	particles := e.Spawn(testField(), domain, 1000)
	if len(particles) == 0 || len(particles) > 1000 {
		t.Fatalf("expected a partial population, got %d", len(particles))
	}
	for _, p := range particles {
		if !domain.Contains(p.Geo) {
			t.Fatalf("particle outside domain at %+v", p.Geo)
		}
	}
}

func TestAdvancePopulationSizeInvariant(t *testing.T) {
	proj := &gridProjector{bounds: seAsia, w: 800, h: 600}
	e := screenEngine(proj, 2)
	field := testField()
	particles := e.Spawn(field, seAsia, 1000)
	n := len(particles)

	for frame := 0; frame < 400; frame++ {
		particles = e.Advance(particles, field, seAsia)
		if len(particles) != n {
			t.Fatalf("frame %d: population changed from %d to %d", frame, n, len(particles))
		}
	}
}

func TestAdvanceAgesMonotonically(t *testing.T) {
	e := geoEngine(4)
	field := testField()
	particles := e.Spawn(field, seAsia, 200)

	prevAge := make([]int32, len(particles))
	prevRecycles := make([]uint32, len(particles))
	for i, p := range particles {
		prevAge[i], prevRecycles[i] = p.Age, p.Recycles
	}

	for frame := 0; frame < 300; frame++ {
		particles = e.Advance(particles, field, seAsia)
		for i, p := range particles {
			if p.Recycles == prevRecycles[i] && p.Age != prevAge[i]+1 {
				t.Fatalf("frame %d particle %d: age %d after %d without recycle", frame, i, p.Age, prevAge[i])
			}
			if p.Recycles != prevRecycles[i] && p.Age != 0 {
				t.Fatalf("frame %d particle %d: recycled particle has age %d", frame, i, p.Age)
			}
			prevAge[i], prevRecycles[i] = p.Age, p.Recycles
		}
	}
}

func TestAdvanceFullRespawnCycle(t *testing.T) {
	e := NewEngine(EngineParams{
		Space:        GeoSpace,
		StepScale:    0,
		MinAge:       10,
		MaxAge:       10,
		SpawnRetries: 3,
		Region:       seAsia,
	}, nil, rand.New(rand.NewSource(5)))
	field := testField()

	particles := e.Spawn(field, seAsia, 100)
	if len(particles) != 100 {
		t.Fatalf("expected 100 particles, got %d", len(particles))
	}

	for frame := 0; frame < 10; frame++ {
		particles = e.Advance(particles, field, seAsia)
	}
	for i, p := range particles {
		if p.Recycles == 0 {
			t.Errorf("particle %d was never recycled within its lifetime", i)
		}
	}
}

func TestAdvanceBoundaryContainment(t *testing.T) {
	domain := Bounds{West: 100, South: 0, East: 110, North: 10}
	e := geoEngine(6)
	field := NewFieldSynthesizer(30, 500).Synthesize(domain, 10)
	particles := e.Spawn(field, domain, 500)

	for frame := 0; frame < 500; frame++ {
		particles = e.Advance(particles, field, domain)
		for i, p := range particles {
			if !domain.Contains(p.Geo) {
				t.Fatalf("frame %d particle %d outside domain at %+v", frame, i, p.Geo)
			}
		}
	}
}

func TestAdvanceScreenStaysNearViewport(t *testing.T) {
	proj := &gridProjector{bounds: seAsia, w: 800, h: 600}
	e := screenEngine(proj, 7)
	field := testField()
	particles := e.Spawn(field, seAsia, 500)

	for frame := 0; frame < 300; frame++ {
		particles = e.Advance(particles, field, seAsia)
		for i, p := range particles {
			if p.Screen.X < -20 || p.Screen.X > 820 || p.Screen.Y < -20 || p.Screen.Y > 620 {
				t.Fatalf("frame %d particle %d left the margin at %+v", frame, i, p.Screen)
			}
		}
	}
}

func TestAdvanceSurvivesProjectionFailure(t *testing.T) {
	proj := &gridProjector{bounds: seAsia, w: 800, h: 600}
	e := screenEngine(proj, 8)
	field := testField()
	particles := e.Spawn(field, seAsia, 300)

	// The projection stops working mid-animation
	proj.failUnproject = true
	proj.failProject = true
	for frame := 0; frame < 200; frame++ {
		particles = e.Advance(particles, field, seAsia)
	}
	if len(particles) != 300 {
		t.Fatalf("expected population of 300, got %d", len(particles))
	}
	if e.LastStats().Kept == 0 {
		t.Error("expected failing projection to keep particles in place")
	}
}

func TestKeptParticleResyncsScreen(t *testing.T) {
	last := LngLat{Lng: 110, Lat: 5}
	proj := &gridProjector{
		bounds:        seAsia,
		w:             800,
		h:             600,
		failUnproject: true,
		projectOnly:   Bounds{West: 109.99, South: 4.99, East: 110.01, North: 5.01},
	}
	e := screenEngine(proj, 10)
	particles := []Particle{{
		Screen: Vec2{X: -500, Y: -500},
		Geo:    last,
		MaxAge: 100,
		Speed:  0.5,
	}}

	particles = e.Advance(particles, testField(), seAsia)
	if e.LastStats().Kept != 1 {
		t.Fatalf("expected the particle to be kept, got stats %+v", e.LastStats())
	}
	p := particles[0]
	if p.Age != 0 || p.Recycles != 1 {
		t.Errorf("expected age reset and one recycle, got age %d recycles %d", p.Age, p.Recycles)
	}
	if p.Geo != last {
		t.Errorf("expected geo to stay at %+v, got %+v", last, p.Geo)
	}
	want, _ := (&gridProjector{bounds: seAsia, w: 800, h: 600}).Project(last)
	if p.Screen != want {
		t.Errorf("expected screen resynced to %+v, got %+v", want, p.Screen)
	}
	if e.offScreen(p.Screen) {
		t.Errorf("kept particle still off screen at %+v", p.Screen)
	}
}

func TestAdvanceRecoversProjectionPanic(t *testing.T) {
	proj := &gridProjector{bounds: seAsia, w: 800, h: 600}
	e := screenEngine(proj, 9)
	field := testField()
	particles := e.Spawn(field, seAsia, 100)

	proj.panicAll = true
	for frame := 0; frame < 50; frame++ {
		particles = e.Advance(particles, field, seAsia)
	}
	if len(particles) != 100 {
		t.Fatalf("expected population of 100, got %d", len(particles))
	}
}

func TestAdvanceEmptyFieldRecyclesCalm(t *testing.T) {
	e := geoEngine(10)
	particles := e.Spawn(testField(), seAsia, 50)
	for i := range particles {
		particles[i].Age = particles[i].MaxAge - 1
	}

	particles = e.Advance(particles, WindField{}, seAsia)
	for i, p := range particles {
		if p.Speed != 0 {
			t.Errorf("particle %d: expected calm recycle, got speed %.3f", i, p.Speed)
		}
	}
}

func TestAdvanceAlphaTracksLife(t *testing.T) {
	e := geoEngine(11)
	field := testField()
	particles := e.Spawn(field, seAsia, 50)
	particles = e.Advance(particles, field, seAsia)

	for i, p := range particles {
		if p.Alpha != p.LifeRatio() {
			t.Errorf("particle %d: alpha %.3f, life ratio %.3f", i, p.Alpha, p.LifeRatio())
		}
	}
}

func TestScreenHeadingInvertsY(t *testing.T) {
	p := Particle{Direction: 1.5707963267948966} // north
	_, dyScreen := p.Heading(ScreenSpace)
	_, dyGeo := p.Heading(GeoSpace)
	if dyScreen >= 0 || dyGeo <= 0 {
		t.Errorf("expected north to be -y on screen and +lat in geo, got %.2f / %.2f", dyScreen, dyGeo)
	}
}

func TestUnprojectNaNIsFailure(t *testing.T) {
	e := NewEngine(EngineParams{Space: ScreenSpace}, nanProjector{}, rand.New(rand.NewSource(1)))
	if _, err := e.unproject(Vec2{X: 1, Y: 1}); !errors.Is(err, ErrProjection) {
		t.Errorf("expected ErrProjection for NaN result, got %v", err)
	}
}

type nanProjector struct{}

func (nanProjector) Project(LngLat) (Vec2, error) { return Vec2{}, nil }
func (nanProjector) Unproject(Vec2) (LngLat, error) {
	return LngLat{Lng: math.NaN(), Lat: math.NaN()}, nil
}
func (nanProjector) Viewport() (float32, float32) { return 10, 10 }
