package renderer

import (
	"embed"
	"errors"
	"image/color"
)

//go:embed shaders/*
var shaderFS embed.FS

// ErrShaderCompile is returned when a GPU program fails to compile or link.
var ErrShaderCompile = errors.New("shader compile failed")

// Program is a compiled GPU program handle.
type Program uint32

// Target is a texture handle that can be sampled and rendered into.
// Zero is never a valid target.
type Target uint32

// PassKind selects the geometry a pass draws.
type PassKind uint8

const (
	// PassClear only clears the destination.
	PassClear PassKind = iota
	// PassQuad covers the destination with one rectangle. Fragment shaders
	// address their inputs through gl_FragCoord.
	PassQuad
	// PassPoints draws one quad per particle of a state texture.
	PassPoints
)

// BlendMode selects how a pass combines with the destination.
type BlendMode uint8

const (
	// BlendReplace writes fragment values unchanged.
	BlendReplace BlendMode = iota
	// BlendAlpha composites with source alpha.
	BlendAlpha
)

// Sampler binds a target to a named sampler uniform.
type Sampler struct {
	Name   string
	Target Target
}

// Uniform is a float uniform of 1 to 4 components.
type Uniform struct {
	Name  string
	Value []float32
}

// Pass is one draw call into a target.
type Pass struct {
	Name     string
	Kind     PassKind
	Program  Program
	Dst      Target
	Clear    bool
	Blend    BlendMode
	Samplers []Sampler
	Uniforms []Uniform

	// PassPoints only
	Points    int
	PointSide int
	PointSize float32
}

// Reads reports whether the pass samples t.
func (p Pass) Reads(t Target) bool {
	for _, s := range p.Samplers {
		if s.Target == t {
			return true
		}
	}
	return false
}

// Device is the GPU surface the texture simulation runs on.
type Device interface {
	// CompileProgram builds a program. An empty vertex source selects the
	// default vertex stage. samplers lists uniforms that must resolve.
	CompileProgram(name, vertex, fragment string, samplers []string) (Program, error)

	// CreateTarget allocates a w×h RGBA8 target, filled with pixels or
	// cleared to transparent when pixels is nil.
	CreateTarget(w, h int, pixels []color.RGBA) (Target, error)

	// Upload replaces the contents of t.
	Upload(t Target, pixels []color.RGBA)

	// Run executes one pass.
	Run(p Pass)

	// Present draws t over the whole output surface with alpha blending.
	Present(t Target)

	// ReadPixels copies t back to memory.
	ReadPixels(t Target) []color.RGBA

	ReleaseTarget(t Target)
	ReleaseProgram(p Program)
}

// shaderSource returns an embedded shader file.
func shaderSource(name string) (string, error) {
	b, err := shaderFS.ReadFile("shaders/" + name)
	if err != nil {
		return "", err
	}
	return string(b), nil
}
