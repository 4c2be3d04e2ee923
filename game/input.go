package game

import (
	"log/slog"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/windflow/config"
)

// handleInput processes keyboard and mouse input.
func (g *Game) handleInput() {
	// Window resize propagation
	g.handleResize()

	// Fullscreen toggle
	if rl.IsKeyPressed(rl.KeyF11) {
		rl.ToggleFullscreen()
	}

	next := g.settings
	if rl.IsKeyPressed(rl.KeySpace) {
		next.Animate = !next.Animate
	}
	switch {
	case rl.IsKeyPressed(rl.KeyOne):
		next.Renderer = config.RendererCanvas
	case rl.IsKeyPressed(rl.KeyTwo):
		next.Renderer = config.RendererInstanced
	case rl.IsKeyPressed(rl.KeyThree):
		next.Renderer = config.RendererGPU
	}
	g.applySettings(next)

	if rl.IsKeyPressed(rl.KeyTab) {
		g.controls.Toggle()
	}
	if rl.IsKeyPressed(rl.KeyR) {
		g.camera.Reset()
		g.camera.EndMove()
	}

	for _, key := range []int32{rl.KeyC, rl.KeyG, rl.KeyL, rl.KeyF, rl.KeyB, rl.KeyP} {
		if rl.IsKeyPressed(key) {
			if id, on, ok := g.overlays.HandleKeyPress(key); ok {
				slog.Debug("overlay toggled", "overlay", id, "enabled", on)
			}
		}
	}

	g.probe.HandleInput(g.camera, g.field, g.particles(), g.controls.Contains(rl.GetMousePosition()))

	// Camera controls
	g.handleCameraInput()
}

// handleResize checks for window resize and propagates new dimensions.
// The field is reset once the resize settles like any other move.
func (g *Game) handleResize() {
	if !rl.IsWindowResized() {
		return
	}
	w := float32(rl.GetScreenWidth())
	h := float32(rl.GetScreenHeight())
	if w == g.screenWidth && h == g.screenHeight {
		return
	}
	g.screenWidth = w
	g.screenHeight = h

	g.camera.Resize(w, h)
	if g.layer != nil {
		g.layer.Resize(w, h)
	}
	g.perfPanel.SetPosition(10, int32(h)-160)
	g.probe.Resize(int32(w), int32(h))
	g.camera.EndMove()
}

// handleCameraInput pans on left-drag and zooms on the wheel around the
// cursor. A move ends on mouse release or once the wheel has been idle.
func (g *Game) handleCameraInput() {
	mouse := rl.GetMousePosition()

	if rl.IsMouseButtonPressed(rl.MouseButtonLeft) && !g.controls.Contains(mouse) {
		g.dragging = true
	}
	if g.dragging && rl.IsMouseButtonDown(rl.MouseButtonLeft) {
		d := rl.GetMouseDelta()
		g.camera.Pan(-d.X, -d.Y)
	}
	if g.dragging && rl.IsMouseButtonReleased(rl.MouseButtonLeft) {
		g.dragging = false
		g.camera.EndMove()
	}

	wheel := rl.GetMouseWheelMove()
	if wheel != 0 && !g.controls.Contains(mouse) {
		g.camera.ZoomAt(float64(wheel)*0.25, mouse.X, mouse.Y)
		g.wheelIdle = 0
	} else {
		g.wheelIdle++
	}

	// Keyboard zoom
	if rl.IsKeyPressed(rl.KeyEqual) {
		g.camera.ZoomBy(0.5)
		g.wheelIdle = 0
	}
	if rl.IsKeyPressed(rl.KeyMinus) {
		g.camera.ZoomBy(-0.5)
		g.wheelIdle = 0
	}

	if !g.dragging && g.wheelIdle >= wheelSettleFrames {
		g.camera.EndMove()
	}
}
