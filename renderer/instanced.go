package renderer

import (
	"log/slog"
	"math"
	"math/rand"

	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/windflow/components"
	"github.com/pthm-cable/windflow/config"
	"github.com/pthm-cable/windflow/systems"
)

// InstancedLayer advects particles in geographic space and keeps one ECS
// entity per particle slot holding its point and path instances. When not
// animating it shows static arrows built from the field samples instead.
type InstancedLayer struct {
	cfg     config.InstancedConfig
	count   int
	animate bool
	proj    systems.Projector

	pop   *systems.Population
	last  systems.FrameStats
	field systems.WindField

	world       *ecs.World
	instMapper  *ecs.Map3[components.Slot, components.Point, components.Path]
	instFilter  *ecs.Filter3[components.Slot, components.Point, components.Path]
	arrowMapper *ecs.Map1[components.Arrow]
	arrowFilter *ecs.Filter1[components.Arrow]
	instances   []ecs.Entity
	arrows      []ecs.Entity

	// timestamp is the update trigger shared by both sub-layers
	timestamp uint64

	scratch []rl.Vector2
}

// NewInstancedLayer creates an instanced layer drawn through proj.
func NewInstancedLayer(proj systems.Projector, rng *rand.Rand, particles config.ParticlesConfig, cfg config.InstancedConfig, region systems.Bounds, count int) *InstancedLayer {
	engine := systems.NewEngine(systems.EngineParams{
		Space:           systems.GeoSpace,
		StepScale:       cfg.StepScale,
		SpeedMultiplier: particles.SpeedMultiplier,
		MinAge:          particles.MinAge,
		MaxAge:          particles.MaxAge,
		SpawnRetries:    particles.SpawnRetries,
		Region:          region,
	}, nil, rng)

	world := ecs.NewWorld()
	return &InstancedLayer{
		cfg:         cfg,
		count:       count,
		animate:     true,
		proj:        proj,
		pop:         systems.NewPopulation(engine),
		world:       world,
		instMapper:  ecs.NewMap3[components.Slot, components.Point, components.Path](world),
		instFilter:  ecs.NewFilter3[components.Slot, components.Point, components.Path](world),
		arrowMapper: ecs.NewMap1[components.Arrow](world),
		arrowFilter: ecs.NewFilter1[components.Arrow](world),
	}
}

// Name implements Layer.
func (l *InstancedLayer) Name() string { return config.RendererInstanced }

// OnAttach implements Layer.
func (l *InstancedLayer) OnAttach() error {
	slog.Info("renderer attached", "renderer", l.Name(), "particles", l.count)
	return nil
}

// Seed implements Layer. Instances and arrows are rebuilt from scratch.
func (l *InstancedLayer) Seed(field systems.WindField, domain systems.Bounds) {
	l.field = field
	n := l.pop.Seed(field, domain, l.count)

	l.removeAll()
	for i := 0; i < n; i++ {
		slot := components.Slot{Index: int32(i)}
		var point components.Point
		var path components.Path
		l.instances = append(l.instances, l.instMapper.NewEntity(&slot, &point, &path))
	}
	l.buildArrows()
	l.timestamp++

	slog.Info("population seeded",
		"renderer", l.Name(),
		"requested", l.count,
		"spawned", n,
		"samples", field.Len(),
		"arrows", len(l.arrows),
	)
}

// buildArrows creates one arrow entity per field sample.
func (l *InstancedLayer) buildArrows() {
	spread := l.cfg.ArrowSpreadDeg * math.Pi / 180
	for _, s := range l.field.Samples {
		arrow := components.Arrow{
			Points: systems.ArrowPath(s, l.cfg.ArrowLength, spread),
			Color:  systems.WindColor(s.Speed),
		}
		l.arrows = append(l.arrows, l.arrowMapper.NewEntity(&arrow))
	}
}

func (l *InstancedLayer) removeAll() {
	for _, e := range l.instances {
		l.world.RemoveEntity(e)
	}
	for _, e := range l.arrows {
		l.world.RemoveEntity(e)
	}
	l.instances = l.instances[:0]
	l.arrows = l.arrows[:0]
}

// Advance implements Layer.
func (l *InstancedLayer) Advance() {
	if !l.animate {
		return
	}
	l.last = l.pop.Advance()
	l.timestamp++
}

// sync rebuilds every instance whose stamp lags the layer timestamp.
// It returns the number of instances rebuilt.
func (l *InstancedLayer) sync() int {
	particles := l.pop.Particles()
	rebuilt := 0
	query := l.instFilter.Query()
	for query.Next() {
		slot, point, path := query.Get()
		if slot.Stamp == l.timestamp || int(slot.Index) >= len(particles) {
			continue
		}
		p := &particles[slot.Index]
		*point = pointInstance(p, l.cfg)
		*path = pathInstance(p, l.cfg)
		slot.Stamp = l.timestamp
		rebuilt++
	}
	return rebuilt
}

// pointInstance is the point accessor: radius and fill from particle state.
func pointInstance(p *systems.Particle, cfg config.InstancedConfig) components.Point {
	return components.Point{
		Position: p.Geo,
		Radius:   float32(cfg.PointRadius),
		Color:    p.Color(1),
	}
}

// pathInstance is the path accessor: a trail segment brightened relative to
// the point.
func pathInstance(p *systems.Particle, cfg config.InstancedConfig) components.Path {
	return components.Path{
		From:  p.GeoTrailTail(cfg.TrailLength),
		To:    p.Geo,
		Width: float32(cfg.LineWidth),
		Color: systems.Brighten(p.Color(1), cfg.Brighten),
	}
}

// Render implements Layer.
func (l *InstancedLayer) Render() {
	if !l.animate {
		l.renderArrows()
		return
	}
	l.sync()

	// Path sub-layer below the point sub-layer
	query := l.instFilter.Query()
	for query.Next() {
		_, _, path := query.Get()
		from, err1 := l.proj.Project(path.From)
		to, err2 := l.proj.Project(path.To)
		if err1 != nil || err2 != nil {
			continue
		}
		rl.DrawLineEx(rl.Vector2{X: from.X, Y: from.Y}, rl.Vector2{X: to.X, Y: to.Y}, path.Width, path.Color)
	}

	query = l.instFilter.Query()
	for query.Next() {
		_, point, _ := query.Get()
		v, err := l.proj.Project(point.Position)
		if err != nil {
			continue
		}
		rl.DrawCircleV(rl.Vector2{X: v.X, Y: v.Y}, point.Radius, point.Color)
	}
}

func (l *InstancedLayer) renderArrows() {
	query := l.arrowFilter.Query()
	for query.Next() {
		arrow := query.Get()
		pts, ok := l.projectPath(arrow.Points[:])
		if !ok {
			continue
		}
		rl.DrawLineStrip(pts, arrow.Color)
	}
}

func (l *InstancedLayer) projectPath(path []systems.LngLat) ([]rl.Vector2, bool) {
	l.scratch = l.scratch[:0]
	for _, p := range path {
		v, err := l.proj.Project(p)
		if err != nil {
			return nil, false
		}
		l.scratch = append(l.scratch, rl.Vector2{X: v.X, Y: v.Y})
	}
	return l.scratch, true
}

// SetAnimate implements Layer. Switching mode bumps the timestamp so both
// sub-layers refresh.
func (l *InstancedLayer) SetAnimate(animate bool) {
	if l.animate == animate {
		return
	}
	l.animate = animate
	l.timestamp++
}

// SetCount changes the population size used by the next Seed.
func (l *InstancedLayer) SetCount(n int) { l.count = n }

// Resize implements Layer. Instances are in degrees, so nothing to rebuild.
func (l *InstancedLayer) Resize(w, h float32) {}

// OnDetach implements Layer.
func (l *InstancedLayer) OnDetach() {
	l.removeAll()
	slog.Info("renderer detached", "renderer", l.Name())
}

// Timestamp returns the current update trigger value.
func (l *InstancedLayer) Timestamp() uint64 { return l.timestamp }

// Population returns the layer's particles.
func (l *InstancedLayer) Population() *systems.Population { return l.pop }

// LastStats returns the counters from the most recent Advance.
func (l *InstancedLayer) LastStats() systems.FrameStats { return l.last }

// Counts returns the live instance and arrow entity counts.
func (l *InstancedLayer) Counts() (instances, arrows int) {
	return len(l.instances), len(l.arrows)
}
