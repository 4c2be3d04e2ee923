// Package telemetry provides frame timing, particle life-cycle statistics and
// run output for the wind map.
package telemetry

import "github.com/pthm-cable/windflow/systems"

// Collector accumulates per-frame particle events within windows of frames
// and produces WindowStats.
type Collector struct {
	windowFrames int64
	dt           float64

	windowStartFrame int64

	// Counters for the current window
	expired     int
	outOfBounds int
	recycled    int
	fallbacks   int
	kept        int
	resets      int
	frames      int
}

// NewCollector creates a new stats collector.
// windowFrames: frames per window
// dt: seconds per frame (used for frame-to-time conversion)
func NewCollector(windowFrames int, dt float64) *Collector {
	if windowFrames < 1 {
		windowFrames = 1
	}
	return &Collector{
		windowFrames: int64(windowFrames),
		dt:           dt,
	}
}

// RecordFrame adds one frame's advection counters.
func (c *Collector) RecordFrame(fs systems.FrameStats) {
	c.expired += fs.Expired
	c.outOfBounds += fs.OutOfBounds
	c.recycled += fs.Recycled
	c.fallbacks += fs.Fallbacks
	c.kept += fs.Kept
	c.frames++
}

// RecordReset records a field re-synthesis.
func (c *Collector) RecordReset() {
	c.resets++
}

// ShouldFlush returns true if enough frames have passed to flush the window.
func (c *Collector) ShouldFlush(currentFrame int64) bool {
	return currentFrame-c.windowStartFrame >= c.windowFrames
}

// WindowState describes the view at the moment a window is flushed.
type WindowState struct {
	Renderer     string
	Animate      bool
	FieldSamples int
	Particles    []systems.Particle
	// Population size for renderers without CPU-side particles
	Count int
}

// Flush produces a WindowStats and resets counters for the next window.
func (c *Collector) Flush(currentFrame int64, state WindowState) WindowStats {
	count := state.Count
	if len(state.Particles) > 0 {
		count = len(state.Particles)
	}

	speeds := make([]float64, len(state.Particles))
	var life float64
	for i := range state.Particles {
		speeds[i] = state.Particles[i].SampleSpeed
		life += float64(state.Particles[i].LifeRatio())
	}
	if len(state.Particles) > 0 {
		life /= float64(len(state.Particles))
	}
	mean, std, p50, p90 := ComputeSpeedStats(speeds)

	var turnover float64
	if count > 0 && c.frames > 0 {
		turnover = float64(c.expired+c.outOfBounds) / float64(count) / float64(c.frames)
	}

	stats := WindowStats{
		WindowStartFrame: c.windowStartFrame,
		WindowEndFrame:   currentFrame,
		ElapsedSec:       float64(currentFrame) * c.dt,
		Renderer:         state.Renderer,
		Animate:          state.Animate,

		Particles:    count,
		FieldSamples: state.FieldSamples,

		Expired:     c.expired,
		OutOfBounds: c.outOfBounds,
		Recycled:    c.recycled,
		Fallbacks:   c.fallbacks,
		Kept:        c.kept,
		Resets:      c.resets,

		TurnoverRate: turnover,

		SpeedMean: mean,
		SpeedStd:  std,
		SpeedP50:  p50,
		SpeedP90:  p90,

		LifeMean: life,
	}

	c.windowStartFrame = currentFrame
	c.expired = 0
	c.outOfBounds = 0
	c.recycled = 0
	c.fallbacks = 0
	c.kept = 0
	c.resets = 0
	c.frames = 0

	return stats
}

// WindowFrames returns the number of frames per window.
func (c *Collector) WindowFrames() int64 {
	return c.windowFrames
}
