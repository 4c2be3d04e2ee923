package game

import (
	"errors"
	"log/slog"

	"github.com/pthm-cable/windflow/systems"
	"github.com/pthm-cable/windflow/telemetry"
)

const emptyViewNotice = "no wind data in this view"

// resetField synthesizes a new field for view and re-seeds the attached
// layer. The domain is the view clipped to the region limit, so a view
// outside the region yields an empty field and no particles.
func (g *Game) resetField(view systems.Bounds) {
	g.domain = view.Intersect(g.region)
	g.field = g.synth.Synthesize(g.domain, g.settings.Density)
	g.resets++
	g.collector.RecordReset()

	if g.layer != nil {
		g.layer.Seed(g.field, g.domain)
	}

	center, err := systems.Lookup(g.field, view.Lerp(0.5, 0.5))
	if errors.Is(err, systems.ErrEmptyField) {
		slog.Warn("view outside the wind region",
			"frame", g.frame,
			"west", view.West,
			"south", view.South,
			"east", view.East,
			"north", view.North,
		)
		g.setNotice(emptyViewNotice)
	} else if g.notice == emptyViewNotice {
		g.clearNotice()
	}

	slog.Info("field synthesized",
		"frame", g.frame,
		"density", g.settings.Density,
		"samples", g.field.Len(),
		"center_speed", center.Speed,
		"west", g.domain.West,
		"south", g.domain.South,
		"east", g.domain.East,
		"north", g.domain.North,
	)

	g.saveSnapshot(view)
}

// saveSnapshot writes the current field when output is enabled.
func (g *Game) saveSnapshot(view systems.Bounds) {
	if g.outputManager == nil {
		return
	}
	snap := telemetry.NewFieldSnapshot(g.rngSeed, g.frame, g.settings.Renderer, view, g.field)
	path, err := g.outputManager.WriteSnapshot(snap)
	if err != nil {
		slog.Error("failed to save snapshot", "error", err)
		return
	}
	slog.Info("snapshot saved", "path", path, "frame", g.frame)
}
