package telemetry

import (
	"math"
	"testing"

	"github.com/pthm-cable/windflow/systems"
)

func TestCollectorFlushCountsAndResets(t *testing.T) {
	c := NewCollector(10, 1.0/60)

	for f := int64(0); f < 10; f++ {
		if c.ShouldFlush(f) {
			t.Fatalf("flush requested early at frame %d", f)
		}
		c.RecordFrame(systems.FrameStats{Expired: 2, OutOfBounds: 1, Recycled: 3})
	}
	c.RecordReset()

	if !c.ShouldFlush(10) {
		t.Fatal("expected flush after 10 frames")
	}

	particles := []systems.Particle{
		{SampleSpeed: 0.2, Age: 0, MaxAge: 10},
		{SampleSpeed: 0.4, Age: 5, MaxAge: 10},
	}
	s := c.Flush(10, WindowState{Renderer: "canvas", Animate: true, FieldSamples: 256, Particles: particles})

	if s.Expired != 20 || s.OutOfBounds != 10 || s.Recycled != 30 {
		t.Errorf("counts = %d/%d/%d, want 20/10/30", s.Expired, s.OutOfBounds, s.Recycled)
	}
	if s.Resets != 1 {
		t.Errorf("resets = %d, want 1", s.Resets)
	}
	if s.Particles != 2 || s.FieldSamples != 256 {
		t.Errorf("particles = %d, samples = %d", s.Particles, s.FieldSamples)
	}
	// 30 terminations / 2 particles / 10 frames
	if math.Abs(s.TurnoverRate-1.5) > 1e-9 {
		t.Errorf("turnover = %v, want 1.5", s.TurnoverRate)
	}
	if math.Abs(s.SpeedMean-0.3) > 1e-9 {
		t.Errorf("speed mean = %v, want 0.3", s.SpeedMean)
	}
	if math.Abs(s.LifeMean-0.75) > 1e-6 {
		t.Errorf("life mean = %v, want 0.75", s.LifeMean)
	}
	if math.Abs(s.ElapsedSec-10.0/60) > 1e-9 {
		t.Errorf("elapsed = %v", s.ElapsedSec)
	}

	if c.ShouldFlush(15) {
		t.Error("window should restart at the flush frame")
	}
	next := c.Flush(20, WindowState{Count: 4096})
	if next.Expired != 0 || next.Resets != 0 {
		t.Error("counters not reset after flush")
	}
	if next.Particles != 4096 || next.WindowStartFrame != 10 {
		t.Errorf("particles = %d, start = %d", next.Particles, next.WindowStartFrame)
	}
}
