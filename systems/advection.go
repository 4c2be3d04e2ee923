package systems

import (
	"math"
	"math/rand"
)

// EngineParams tunes the spawn/advect/recycle cycle.
type EngineParams struct {
	Space           Space
	StepScale       float64 // Pixels (ScreenSpace) or degrees (GeoSpace) per frame at speed 1
	SpeedMultiplier float64
	MinAge, MaxAge  int   // Lifetime range in frames, inclusive
	SpawnRetries    int   // Attempts per particle
	MarginPx        float32
	Region          Bounds // Canonical region used for the unchecked fallback position
}

// FrameStats counts what happened during the last Advance.
type FrameStats struct {
	Expired     int
	OutOfBounds int
	Recycled    int // Respawned through the regular retry path
	Fallbacks   int // Respawned at an unchecked point in Region
	Kept        int // Could not be moved at all; age reset in place
}

// Total returns the number of particles terminated this frame.
func (s FrameStats) Total() int { return s.Expired + s.OutOfBounds }

// Engine seeds and advects particle populations through a wind field.
// It holds no population itself; callers own the slice and pass it in.
// Engine is not safe for concurrent use.
type Engine struct {
	params EngineParams
	proj   Projector
	rng    *rand.Rand
	last   FrameStats
}

// NewEngine creates an engine. proj may be nil for GeoSpace engines.
func NewEngine(params EngineParams, proj Projector, rng *rand.Rand) *Engine {
	if params.SpawnRetries < 1 {
		params.SpawnRetries = 1
	}
	if params.MinAge < 1 {
		params.MinAge = 1
	}
	if params.MaxAge < params.MinAge {
		params.MaxAge = params.MinAge
	}
	if params.SpeedMultiplier == 0 {
		params.SpeedMultiplier = 1
	}
	return &Engine{params: params, proj: proj, rng: rng}
}

// Params returns the engine parameters.
func (e *Engine) Params() EngineParams { return e.params }

// LastStats returns the counters from the most recent Advance.
func (e *Engine) LastStats() FrameStats { return e.last }

// Spawn seeds up to count particles inside domain. The attempt budget is
// count*SpawnRetries; when it runs out fewer particles are returned.
// An empty field seeds nothing.
func (e *Engine) Spawn(field WindField, domain Bounds, count int) []Particle {
	if count <= 0 || field.Len() == 0 || domain.Empty() {
		return nil
	}

	particles := make([]Particle, 0, count)
	budget := count * e.params.SpawnRetries
	for attempt := 0; attempt < budget && len(particles) < count; attempt++ {
		geo, screen, ok := e.candidate(domain)
		if !ok {
			continue
		}
		p := e.newParticle(field, geo, screen)
		// Stagger ages so the population never resets in lockstep
		p.Age = int32(e.rng.Intn(int(p.MaxAge)))
		p.Alpha = p.LifeRatio()
		particles = append(particles, p)
	}
	return particles
}

// Advance moves every particle one frame, ages it and recycles the ones that
// expired or left the domain. The slice is updated in place and returned;
// its length never changes.
func (e *Engine) Advance(particles []Particle, field WindField, domain Bounds) []Particle {
	e.last = FrameStats{}
	step := e.params.StepScale

	for i := range particles {
		p := &particles[i]

		dx, dy := p.Heading(e.params.Space)
		dist := p.Speed * step
		out := false

		switch e.params.Space {
		case ScreenSpace:
			p.Screen.X += float32(dx * dist)
			p.Screen.Y += float32(dy * dist)
			out = e.offScreen(p.Screen)
			if !out {
				geo, err := e.unproject(p.Screen)
				if err != nil {
					out = true
				} else {
					p.Geo = geo
				}
			}
		case GeoSpace:
			p.Geo.Lng += dx * dist
			p.Geo.Lat += dy * dist
		}
		p.Age++

		if !out && !domain.Contains(p.Geo) {
			out = true
		}

		switch {
		case p.Age >= p.MaxAge:
			e.last.Expired++
		case out:
			e.last.OutOfBounds++
		default:
			p.Alpha = p.LifeRatio()
			continue
		}
		e.recycle(p, field, domain)
	}
	return particles
}

// recycle overwrites p in place with a fresh particle. It tries the regular
// spawn path first, then an unchecked point in the region, and finally keeps
// the old particle with its age reset.
func (e *Engine) recycle(p *Particle, field WindField, domain Bounds) {
	recycles := p.Recycles + 1

	for attempt := 0; attempt < e.params.SpawnRetries; attempt++ {
		geo, screen, ok := e.candidate(domain)
		if !ok {
			continue
		}
		*p = e.newParticle(field, geo, screen)
		p.Recycles = recycles
		e.last.Recycled++
		return
	}

	region := e.params.Region
	if region.Empty() {
		region = domain
	}
	geo := region.Lerp(e.rng.Float64(), e.rng.Float64())
	var screen Vec2
	if e.params.Space == ScreenSpace {
		v, err := e.project(geo)
		if err != nil {
			e.keep(p, recycles)
			return
		}
		screen = v
	}
	*p = e.newParticle(field, geo, screen)
	p.Recycles = recycles
	e.last.Fallbacks++
}

// keep restarts p where it is. Geo still holds the last position that
// unprojected cleanly, so Screen is re-derived from it. When that projection
// fails too, Screen keeps its off-screen value and the particle is recycled
// again next frame.
func (e *Engine) keep(p *Particle, recycles uint32) {
	if v, err := e.project(p.Geo); err == nil {
		p.Screen = v
	}
	p.Age = 0
	p.Alpha = 1
	p.Recycles = recycles
	e.last.Kept++
}

// candidate picks one random spawn position. ScreenSpace engines draw a
// random pixel and unproject it; GeoSpace engines draw directly in domain.
func (e *Engine) candidate(domain Bounds) (LngLat, Vec2, bool) {
	if e.params.Space == GeoSpace || e.proj == nil {
		geo := domain.Lerp(e.rng.Float64(), e.rng.Float64())
		return geo, Vec2{}, !domain.Empty()
	}

	w, h := e.proj.Viewport()
	if w <= 0 || h <= 0 {
		return LngLat{}, Vec2{}, false
	}
	screen := Vec2{X: e.rng.Float32() * w, Y: e.rng.Float32() * h}
	geo, err := e.unproject(screen)
	if err != nil || !domain.Contains(geo) {
		return LngLat{}, Vec2{}, false
	}
	return geo, screen, true
}

func (e *Engine) newParticle(field WindField, geo LngLat, screen Vec2) Particle {
	p := Particle{
		Screen: screen,
		Geo:    geo,
		MaxAge: int32(e.params.MinAge + e.rng.Intn(e.params.MaxAge-e.params.MinAge+1)),
		Alpha:  1,
	}
	// An empty field leaves the particle calm rather than failing the frame
	if s, ok := Nearest(field, geo); ok {
		p.Direction = s.Direction
		p.SampleSpeed = s.Speed
		p.Speed = s.Speed * e.params.SpeedMultiplier
	}
	return p
}

func (e *Engine) offScreen(v Vec2) bool {
	if e.proj == nil {
		return false
	}
	w, h := e.proj.Viewport()
	m := e.params.MarginPx
	return v.X < -m || v.X > w+m || v.Y < -m || v.Y > h+m
}

// unproject converts a screen point, treating NaN results and panics from
// the host projection as failures.
func (e *Engine) unproject(v Vec2) (geo LngLat, err error) {
	if e.proj == nil {
		return LngLat{}, ErrProjection
	}
	defer func() {
		if r := recover(); r != nil {
			err = ErrProjection
		}
	}()
	geo, err = e.proj.Unproject(v)
	if err == nil && (math.IsNaN(geo.Lng) || math.IsNaN(geo.Lat)) {
		err = ErrProjection
	}
	return geo, err
}

func (e *Engine) project(geo LngLat) (v Vec2, err error) {
	if e.proj == nil {
		return Vec2{}, ErrProjection
	}
	defer func() {
		if r := recover(); r != nil {
			err = ErrProjection
		}
	}()
	v, err = e.proj.Project(geo)
	if err == nil && (math.IsNaN(float64(v.X)) || math.IsNaN(float64(v.Y))) {
		err = ErrProjection
	}
	return v, err
}
