package renderer

import (
	"github.com/pthm-cable/windflow/systems"
)

// Phase names reported to a PhaseTimer during Tick.
const (
	PhaseAdvance = "advance"
	PhaseRender  = "render"
)

// Layer is one wind rendering back-end. The host owns exactly one attached
// layer at a time and drives it through an Animation.
type Layer interface {
	// Name returns the renderer name used in config and logs.
	Name() string

	// OnAttach acquires the layer's resources. A non-nil error means the
	// layer is unusable.
	OnAttach() error

	// Seed replaces the layer state for a new field and particle domain.
	Seed(field systems.WindField, domain systems.Bounds)

	// Advance moves the simulation one frame. It is a no-op when the layer
	// is not animating.
	Advance()

	// Render draws the current state onto the active framebuffer.
	Render()

	// SetAnimate switches between the animated and the static presentation.
	SetAnimate(animate bool)

	// Resize follows a change of the output surface size.
	Resize(w, h float32)

	// OnDetach releases everything acquired by OnAttach.
	OnDetach()
}

// PhaseTimer receives phase boundaries from Tick. telemetry.PerfCollector
// satisfies it.
type PhaseTimer interface {
	StartPhase(phase string)
}

// Animation is the frame handle for an attached layer. Tick runs at most one
// advance+render cycle; after Cancel every Tick is a no-op.
type Animation struct {
	layer     Layer
	frames    uint64
	cancelled bool
}

// Start attaches layer and returns its animation handle.
func Start(layer Layer) (*Animation, error) {
	if err := layer.OnAttach(); err != nil {
		return nil, err
	}
	return &Animation{layer: layer}, nil
}

// Layer returns the animated layer.
func (a *Animation) Layer() Layer { return a.layer }

// Tick advances and renders one frame. timer may be nil.
// It reports whether the frame ran.
func (a *Animation) Tick(timer PhaseTimer) bool {
	if a == nil || a.cancelled {
		return false
	}
	if timer != nil {
		timer.StartPhase(PhaseAdvance)
	}
	a.layer.Advance()
	if timer != nil {
		timer.StartPhase(PhaseRender)
	}
	a.layer.Render()
	a.frames++
	return true
}

// Step advances one frame without drawing, for headless runs.
func (a *Animation) Step() bool {
	if a == nil || a.cancelled {
		return false
	}
	a.layer.Advance()
	a.frames++
	return true
}

// Frames returns the number of frames run.
func (a *Animation) Frames() uint64 { return a.frames }

// Active reports whether the handle still drives its layer.
func (a *Animation) Active() bool { return a != nil && !a.cancelled }

// Cancel stops the animation and detaches the layer. Safe to call twice.
func (a *Animation) Cancel() {
	if a == nil || a.cancelled {
		return
	}
	a.cancelled = true
	a.layer.OnDetach()
}
