package systems

import (
	"image/color"
	"math"
	"math/rand"
)

// EncodePosition packs a normalized position (x, y in [0,1)) into one RGBA8
// texel with 16-bit fixed point per axis: R/G hold the fractional byte and
// B/A the integer byte, matching the particle update shader. Both bytes are
// truncated, so a decoded position never reaches 1.
func EncodePosition(x, y float64) color.RGBA {
	x = clampUnit(x)
	y = clampUnit(y)
	xi, xf := math.Modf(x * 255)
	yi, yf := math.Modf(y * 255)
	return color.RGBA{
		R: uint8(xf * 255),
		G: uint8(yf * 255),
		B: uint8(xi),
		A: uint8(yi),
	}
}

// DecodePosition is the inverse of EncodePosition, pos = R/255² + B/255.
func DecodePosition(c color.RGBA) (x, y float64) {
	x = float64(c.R)/(255*255) + float64(c.B)/255
	y = float64(c.G)/(255*255) + float64(c.A)/255
	return x, y
}

// RandomParticleState fills side² texels with uniformly random positions.
func RandomParticleState(side int, rng *rand.Rand) []color.RGBA {
	state := make([]color.RGBA, side*side)
	for i := range state {
		state[i] = EncodePosition(rng.Float64(), rng.Float64())
	}
	return state
}

// PositionSpread summarizes decoded particle positions.
// OutOfRange counts texels that decode outside [0,1).
type PositionSpread struct {
	Count        int
	OutOfRange   int
	MinX, MaxX   float64
	MinY, MaxY   float64
	MeanX, MeanY float64
}

// MeasureState decodes every texel of a particle state texture.
func MeasureState(pixels []color.RGBA) PositionSpread {
	ps := PositionSpread{Count: len(pixels)}
	if len(pixels) == 0 {
		return ps
	}
	ps.MinX, ps.MinY = math.Inf(1), math.Inf(1)
	ps.MaxX, ps.MaxY = math.Inf(-1), math.Inf(-1)
	for _, c := range pixels {
		x, y := DecodePosition(c)
		if x < 0 || x >= 1 || y < 0 || y >= 1 {
			ps.OutOfRange++
		}
		ps.MinX, ps.MaxX = min(ps.MinX, x), max(ps.MaxX, x)
		ps.MinY, ps.MaxY = min(ps.MinY, y), max(ps.MaxY, y)
		ps.MeanX += x
		ps.MeanY += y
	}
	ps.MeanX /= float64(len(pixels))
	ps.MeanY /= float64(len(pixels))
	return ps
}

// ParticleTexCoord returns the texel-center coordinate of particle i in a
// side×side state texture.
func ParticleTexCoord(i, side int) (u, v float32) {
	u = (float32(i%side) + 0.5) / float32(side)
	v = (float32(i/side) + 0.5) / float32(side)
	return u, v
}

// WindTexture is a wind field rasterized for GPU sampling. Row 0 is north.
// R and G hold u and v scaled from [Min, Max] into [0,255].
type WindTexture struct {
	Width, Height int
	Pixels        []color.RGBA
	UMin, UMax    float64
	VMin, VMax    float64
	Bounds        Bounds
}

// BuildWindTexture resamples field onto a width×height grid by nearest sample.
func BuildWindTexture(field WindField, width, height int) WindTexture {
	wt := WindTexture{
		Width:  width,
		Height: height,
		Pixels: make([]color.RGBA, width*height),
		Bounds: field.Bounds,
	}
	if field.Len() == 0 || width < 1 || height < 1 {
		return wt
	}

	us := make([]float64, width*height)
	vs := make([]float64, width*height)
	wt.UMin, wt.VMin = math.Inf(1), math.Inf(1)
	wt.UMax, wt.VMax = math.Inf(-1), math.Inf(-1)

	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			p := field.Bounds.Lerp(gridFrac(x, width), 1-gridFrac(y, height))
			s, _ := Nearest(field, p)
			u := s.Speed * math.Cos(s.Direction)
			v := s.Speed * math.Sin(s.Direction)
			i := y*width + x
			us[i], vs[i] = u, v
			wt.UMin, wt.UMax = min(wt.UMin, u), max(wt.UMax, u)
			wt.VMin, wt.VMax = min(wt.VMin, v), max(wt.VMax, v)
		}
	}

	for i := range wt.Pixels {
		wt.Pixels[i] = color.RGBA{
			R: scaleByte(us[i], wt.UMin, wt.UMax),
			G: scaleByte(vs[i], wt.VMin, wt.VMax),
			A: 255,
		}
	}
	return wt
}

// MaxSpeed returns the largest representable speed, used to normalize
// speeds before the color ramp lookup.
func (wt WindTexture) MaxSpeed() float64 {
	mu := max(math.Abs(wt.UMin), math.Abs(wt.UMax))
	mv := max(math.Abs(wt.VMin), math.Abs(wt.VMax))
	return math.Hypot(mu, mv)
}

func gridFrac(i, n int) float64 {
	if n < 2 {
		return 0.5
	}
	return float64(i) / float64(n-1)
}

func scaleByte(x, lo, hi float64) uint8 {
	if hi-lo < 1e-12 {
		return 0
	}
	return uint8(math.Round((x - lo) / (hi - lo) * 255))
}

func clampUnit(x float64) float64 {
	if x < 0 {
		return 0
	}
	if x >= 1 {
		return math.Nextafter(1, 0)
	}
	return x
}
