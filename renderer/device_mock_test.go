package renderer

import (
	"fmt"
	"image/color"
)

// recordingDevice is a Device that keeps textures in memory and records every
// pass, upload and present in order.
type recordingDevice struct {
	next     uint32
	targets  map[Target][2]int
	programs map[Program]string
	passes   []Pass
	presents []Target
	uploads  []Target
	pixels   map[Target][]color.RGBA

	failProgram string
}

func newRecordingDevice() *recordingDevice {
	return &recordingDevice{
		targets:  make(map[Target][2]int),
		programs: make(map[Program]string),
		pixels:   make(map[Target][]color.RGBA),
	}
}

func (d *recordingDevice) CompileProgram(name, vertex, fragment string, samplers []string) (Program, error) {
	if name == d.failProgram {
		return 0, fmt.Errorf("%w: %s", ErrShaderCompile, name)
	}
	if fragment == "" {
		return 0, fmt.Errorf("%w: %s: empty fragment stage", ErrShaderCompile, name)
	}
	d.next++
	p := Program(d.next)
	d.programs[p] = name
	return p, nil
}

func (d *recordingDevice) CreateTarget(w, h int, pixels []color.RGBA) (Target, error) {
	if pixels != nil && len(pixels) != w*h {
		return 0, fmt.Errorf("pixel count %d for %dx%d", len(pixels), w, h)
	}
	d.next++
	t := Target(d.next)
	d.targets[t] = [2]int{w, h}
	d.pixels[t] = make([]color.RGBA, w*h)
	copy(d.pixels[t], pixels)
	return t, nil
}

func (d *recordingDevice) Upload(t Target, pixels []color.RGBA) {
	d.uploads = append(d.uploads, t)
	copy(d.pixels[t], pixels)
}

func (d *recordingDevice) Run(p Pass) { d.passes = append(d.passes, p) }

func (d *recordingDevice) Present(t Target) { d.presents = append(d.presents, t) }

func (d *recordingDevice) ReadPixels(t Target) []color.RGBA {
	out := make([]color.RGBA, len(d.pixels[t]))
	copy(out, d.pixels[t])
	return out
}

func (d *recordingDevice) ReleaseTarget(t Target) {
	delete(d.targets, t)
	delete(d.pixels, t)
}

func (d *recordingDevice) ReleaseProgram(p Program) { delete(d.programs, p) }

// passesNamed returns the recorded passes with the given name.
func (d *recordingDevice) passesNamed(name string) []Pass {
	var out []Pass
	for _, p := range d.passes {
		if p.Name == name {
			out = append(out, p)
		}
	}
	return out
}

func (d *recordingDevice) reset() {
	d.passes = nil
	d.presents = nil
	d.uploads = nil
}

// samplerTarget returns the target bound to the named sampler, or 0.
func samplerTarget(p Pass, name string) Target {
	for _, s := range p.Samplers {
		if s.Name == name {
			return s.Target
		}
	}
	return 0
}
