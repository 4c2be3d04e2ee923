package systems

// Population owns a fixed-size particle set together with the field and
// domain it was seeded for. Its size changes only through Seed.
type Population struct {
	engine    *Engine
	field     WindField
	domain    Bounds
	particles []Particle
}

// NewPopulation creates an empty population driven by engine.
func NewPopulation(engine *Engine) *Population {
	return &Population{engine: engine}
}

// Seed discards the current particles and spawns up to count new ones.
// It returns the number actually spawned.
func (p *Population) Seed(field WindField, domain Bounds, count int) int {
	p.field = field
	p.domain = domain
	p.particles = p.engine.Spawn(field, domain, count)
	return len(p.particles)
}

// Advance moves the population one frame.
func (p *Population) Advance() FrameStats {
	p.particles = p.engine.Advance(p.particles, p.field, p.domain)
	return p.engine.LastStats()
}

// Particles returns the live particle slice. Callers must not retain it
// across Seed.
func (p *Population) Particles() []Particle { return p.particles }

// Len returns the population size.
func (p *Population) Len() int { return len(p.particles) }

// Field returns the field the population was seeded with.
func (p *Population) Field() WindField { return p.field }

// Domain returns the active particle domain.
func (p *Population) Domain() Bounds { return p.domain }

// Engine returns the advection engine.
func (p *Population) Engine() *Engine { return p.engine }
