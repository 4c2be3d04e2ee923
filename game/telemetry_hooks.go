package game

import (
	"log/slog"

	"github.com/pthm-cable/windflow/telemetry"
)

// flushTelemetry checks if the stats window should be flushed.
func (g *Game) flushTelemetry() {
	if !g.collector.ShouldFlush(g.frame) {
		return
	}

	state := telemetry.WindowState{
		Renderer:     g.settings.Renderer,
		Animate:      g.settings.Animate,
		FieldSamples: g.field.Len(),
		Count:        g.settings.Particles,
	}
	if pl, ok := g.layer.(populationLayer); ok {
		state.Particles = pl.Population().Particles()
	}

	stats := g.collector.Flush(g.frame, state)
	perfStats := g.perfCollector.Stats()

	// Log stats if enabled (console output)
	if g.logStats {
		stats.LogStats()
		perfStats.LogStats()
	}

	// Write to CSV if output manager is enabled
	if g.outputManager != nil {
		if err := g.outputManager.WriteFrames(stats); err != nil {
			slog.Error("failed to write frames", "error", err)
		}
		if err := g.outputManager.WritePerf(perfStats, stats.WindowEndFrame); err != nil {
			slog.Error("failed to write perf", "error", err)
		}
	}
}
