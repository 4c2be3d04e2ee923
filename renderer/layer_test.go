package renderer

import (
	"errors"
	"testing"

	"github.com/pthm-cable/windflow/systems"
)

// countingLayer records lifecycle calls.
type countingLayer struct {
	attachErr                         error
	attached, detached                int
	advanced, rendered, seeded, sized int
	phases                            []string
}

func (c *countingLayer) Name() string                           { return "counting" }
func (c *countingLayer) OnAttach() error                        { c.attached++; return c.attachErr }
func (c *countingLayer) Seed(systems.WindField, systems.Bounds) { c.seeded++ }
func (c *countingLayer) Advance()                               { c.advanced++ }
func (c *countingLayer) Render()                                { c.rendered++ }
func (c *countingLayer) SetAnimate(bool)                        {}
func (c *countingLayer) Resize(w, h float32)                    { c.sized++ }
func (c *countingLayer) OnDetach()                              { c.detached++ }

type phaseLog []string

func (p *phaseLog) StartPhase(phase string) { *p = append(*p, phase) }

func TestAnimationTick(t *testing.T) {
	layer := &countingLayer{}
	anim, err := Start(layer)
	if err != nil {
		t.Fatalf("start: %v", err)
	}

	var phases phaseLog
	for i := 0; i < 3; i++ {
		if !anim.Tick(&phases) {
			t.Fatal("expected tick to run")
		}
	}
	if layer.advanced != 3 || layer.rendered != 3 || anim.Frames() != 3 {
		t.Errorf("expected 3 cycles, got advance=%d render=%d frames=%d", layer.advanced, layer.rendered, anim.Frames())
	}
	if len(phases) != 6 || phases[0] != PhaseAdvance || phases[1] != PhaseRender {
		t.Errorf("unexpected phases %v", phases)
	}
}

func TestAnimationCancelIdempotent(t *testing.T) {
	layer := &countingLayer{}
	anim, _ := Start(layer)

	anim.Cancel()
	anim.Cancel()

	if layer.detached != 1 {
		t.Errorf("expected one detach, got %d", layer.detached)
	}
	if anim.Active() {
		t.Error("expected cancelled animation to be inactive")
	}
	if anim.Tick(nil) || anim.Step() {
		t.Error("expected no frames after cancel")
	}
	if layer.advanced != 0 {
		t.Errorf("expected no advance after cancel, got %d", layer.advanced)
	}
}

func TestAnimationStartFailure(t *testing.T) {
	want := errors.New("boom")
	anim, err := Start(&countingLayer{attachErr: want})
	if !errors.Is(err, want) || anim != nil {
		t.Errorf("expected attach error and nil handle, got %v, %v", anim, err)
	}

	// A nil handle is inert
	if anim.Tick(nil) || anim.Active() {
		t.Error("expected nil animation to do nothing")
	}
	anim.Cancel()
}

func TestAnimationStepSkipsRender(t *testing.T) {
	layer := &countingLayer{}
	anim, _ := Start(layer)
	anim.Step()
	if layer.advanced != 1 || layer.rendered != 0 {
		t.Errorf("expected advance without render, got %d/%d", layer.advanced, layer.rendered)
	}
}
