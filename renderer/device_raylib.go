package renderer

import (
	"fmt"
	"image/color"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/windflow/systems"
)

// pointBatch bounds the quads submitted between sampler rebinds. rlgl resets
// its texture units whenever a batch is flushed.
const pointBatch = 4096

type raylibProgram struct {
	shader rl.Shader
	locs   map[string]int32
}

func (p *raylibProgram) loc(name string) int32 {
	if l, ok := p.locs[name]; ok {
		return l
	}
	l := rl.GetShaderLocation(p.shader, name)
	p.locs[name] = l
	return l
}

// RaylibDevice implements Device with raylib shaders and render textures
// (must be created after the raylib window).
type RaylibDevice struct {
	programs map[Program]*raylibProgram
	targets  map[Target]rl.RenderTexture2D
	next     uint32
}

// NewRaylibDevice creates a device on the current raylib context.
func NewRaylibDevice() *RaylibDevice {
	return &RaylibDevice{
		programs: make(map[Program]*raylibProgram),
		targets:  make(map[Target]rl.RenderTexture2D),
	}
}

// CompileProgram implements Device. raylib falls back to its default shader
// on failure, so a program missing any required sampler is rejected.
func (d *RaylibDevice) CompileProgram(name, vertex, fragment string, samplers []string) (Program, error) {
	shader := rl.LoadShaderFromMemory(vertex, fragment)
	if !rl.IsShaderValid(shader) {
		return 0, fmt.Errorf("%w: %s", ErrShaderCompile, name)
	}
	prog := &raylibProgram{shader: shader, locs: make(map[string]int32)}
	for _, s := range samplers {
		if prog.loc(s) < 0 {
			rl.UnloadShader(shader)
			return 0, fmt.Errorf("%w: %s: sampler %s not found", ErrShaderCompile, name, s)
		}
	}
	d.next++
	id := Program(d.next)
	d.programs[id] = prog
	return id, nil
}

// CreateTarget implements Device.
func (d *RaylibDevice) CreateTarget(w, h int, pixels []color.RGBA) (Target, error) {
	if w < 1 || h < 1 {
		return 0, fmt.Errorf("invalid target size %dx%d", w, h)
	}
	rt := rl.LoadRenderTexture(int32(w), int32(h))
	if !rl.IsRenderTextureValid(rt) {
		return 0, fmt.Errorf("render texture %dx%d could not be created", w, h)
	}
	rl.SetTextureFilter(rt.Texture, rl.FilterPoint)
	rl.SetTextureWrap(rt.Texture, rl.WrapClamp)

	if pixels != nil {
		rl.UpdateTexture(rt.Texture, pixels)
	} else {
		rl.BeginTextureMode(rt)
		rl.ClearBackground(rl.Blank)
		rl.EndTextureMode()
	}

	d.next++
	id := Target(d.next)
	d.targets[id] = rt
	return id, nil
}

// Upload implements Device.
func (d *RaylibDevice) Upload(t Target, pixels []color.RGBA) {
	rt, ok := d.targets[t]
	if !ok || len(pixels) < int(rt.Texture.Width*rt.Texture.Height) {
		return
	}
	rl.UpdateTexture(rt.Texture, pixels)
}

// Run implements Device.
func (d *RaylibDevice) Run(p Pass) {
	rt, ok := d.targets[p.Dst]
	if !ok {
		return
	}
	rl.BeginTextureMode(rt)
	defer rl.EndTextureMode()

	if p.Clear {
		rl.ClearBackground(rl.Blank)
	}
	if p.Kind == PassClear {
		return
	}
	prog, ok := d.programs[p.Program]
	if !ok {
		return
	}

	if p.Blend == BlendReplace {
		rl.SetBlendFactors(rl.One, rl.Zero, rl.FuncAdd)
		rl.BeginBlendMode(rl.BlendCustom)
	} else {
		rl.BeginBlendMode(rl.BlendAlpha)
	}
	rl.BeginShaderMode(prog.shader)

	for _, u := range p.Uniforms {
		if loc := prog.loc(u.Name); loc >= 0 && len(u.Value) > 0 {
			rl.SetShaderValue(prog.shader, loc, u.Value, uniformType(len(u.Value)))
		}
	}

	switch p.Kind {
	case PassQuad:
		d.bindSamplers(prog, p.Samplers)
		rl.DrawRectangle(0, 0, rt.Texture.Width, rt.Texture.Height, rl.White)
	case PassPoints:
		d.drawPoints(prog, p)
	}

	rl.EndShaderMode()
	rl.EndBlendMode()
}

func (d *RaylibDevice) bindSamplers(prog *raylibProgram, samplers []Sampler) {
	for _, s := range samplers {
		rt, ok := d.targets[s.Target]
		if !ok {
			continue
		}
		if loc := prog.loc(s.Name); loc >= 0 {
			rl.SetShaderValueTexture(prog.shader, loc, rt.Texture)
		}
	}
}

// drawPoints submits one quad per particle. The texcoord addresses the
// particle's state texel and the vertex carries its corner offset.
func (d *RaylibDevice) drawPoints(prog *raylibProgram, p Pass) {
	s := p.PointSize
	if s <= 0 {
		s = 1
	}
	for start := 0; start < p.Points; start += pointBatch {
		end := min(start+pointBatch, p.Points)
		d.bindSamplers(prog, p.Samplers)
		rl.Begin(rl.Quads)
		for i := start; i < end; i++ {
			u, v := systems.ParticleTexCoord(i, p.PointSide)
			rl.TexCoord2f(u, v)
			rl.Vertex2f(-s, -s)
			rl.TexCoord2f(u, v)
			rl.Vertex2f(-s, s)
			rl.TexCoord2f(u, v)
			rl.Vertex2f(s, s)
			rl.TexCoord2f(u, v)
			rl.Vertex2f(s, -s)
		}
		rl.End()
		rl.DrawRenderBatchActive()
	}
}

// Present implements Device.
func (d *RaylibDevice) Present(t Target) {
	rt, ok := d.targets[t]
	if !ok {
		return
	}
	// Render textures are stored upside down
	src := rl.Rectangle{X: 0, Y: 0, Width: float32(rt.Texture.Width), Height: -float32(rt.Texture.Height)}
	rl.DrawTextureRec(rt.Texture, src, rl.Vector2{}, rl.White)
}

// ReadPixels implements Device.
func (d *RaylibDevice) ReadPixels(t Target) []color.RGBA {
	rt, ok := d.targets[t]
	if !ok {
		return nil
	}
	img := rl.LoadImageFromTexture(rt.Texture)
	defer rl.UnloadImage(img)

	colors := rl.LoadImageColors(img)
	out := make([]color.RGBA, len(colors))
	copy(out, colors)
	rl.UnloadImageColors(colors)
	return out
}

// ExportTarget writes t to an image file, flipped to top-down row order.
func (d *RaylibDevice) ExportTarget(t Target, path string) error {
	rt, ok := d.targets[t]
	if !ok {
		return fmt.Errorf("exporting target %d: unknown target", t)
	}
	img := rl.LoadImageFromTexture(rt.Texture)
	defer rl.UnloadImage(img)

	rl.ImageFlipVertical(img)
	if !rl.ExportImage(*img, path) {
		return fmt.Errorf("exporting target %d to %s", t, path)
	}
	return nil
}

// ReleaseTarget implements Device.
func (d *RaylibDevice) ReleaseTarget(t Target) {
	if rt, ok := d.targets[t]; ok {
		rl.UnloadRenderTexture(rt)
		delete(d.targets, t)
	}
}

// ReleaseProgram implements Device.
func (d *RaylibDevice) ReleaseProgram(p Program) {
	if prog, ok := d.programs[p]; ok {
		rl.UnloadShader(prog.shader)
		delete(d.programs, p)
	}
}

// Unload releases everything still held by the device.
func (d *RaylibDevice) Unload() {
	for t := range d.targets {
		d.ReleaseTarget(t)
	}
	for p := range d.programs {
		d.ReleaseProgram(p)
	}
}

func uniformType(n int) rl.ShaderUniformDataType {
	switch n {
	case 2:
		return rl.ShaderUniformVec2
	case 3:
		return rl.ShaderUniformVec3
	case 4:
		return rl.ShaderUniformVec4
	default:
		return rl.ShaderUniformFloat
	}
}
