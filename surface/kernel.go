package surface

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// Kernel is the software counterpart of a fragment program. It is called once per draw
// with the bound state and returns the per fragment function. The returned Shade is
// called from several goroutines and must not mutate shared state.
type Kernel func(env *Env) Shade

// Shade computes the color of the fragment at texture coordinate uv.
type Shade func(uv mgl32.Vec2) mgl32.Vec4

// Env exposes the program constants, uniforms and samplers of one draw.
// Unset uniforms read as zero, like freshly linked GL programs.
type Env struct {
	consts   map[string]float64
	uniforms map[string]any
	units    []*swTexture
	width    int
	height   int
}

// Const returns an int or float constant declared in the program source.
func (e *Env) Const(name string) int {
	return int(e.consts[name])
}

func (e *Env) ConstFloat(name string) float32 {
	return float32(e.consts[name])
}

// TargetSize is the viewport of the draw.
func (e *Env) TargetSize() (int, int) {
	return e.width, e.height
}

func (e *Env) Float(name string) float32 {
	switch v := e.uniforms[name].(type) {
	case float32:
		return v
	case float64:
		return float32(v)
	case int:
		return float32(v)
	case int32:
		return float32(v)
	case bool:
		if v {
			return 1
		}
	}
	return 0
}

func (e *Env) Int(name string) int {
	switch v := e.uniforms[name].(type) {
	case int:
		return v
	case int32:
		return int(v)
	case bool:
		if v {
			return 1
		}
	case float32:
		return int(v)
	case float64:
		return int(v)
	}
	return 0
}

func (e *Env) Bool(name string) bool {
	return e.Float(name) != 0
}

func (e *Env) Vec2(name string) mgl32.Vec2 {
	v, _ := e.uniforms[name].(mgl32.Vec2)
	return v
}

func (e *Env) Vec3(name string) mgl32.Vec3 {
	v, _ := e.uniforms[name].(mgl32.Vec3)
	return v
}

func (e *Env) Vec4(name string) mgl32.Vec4 {
	v, _ := e.uniforms[name].(mgl32.Vec4)
	return v
}

// Sampler returns the texture bound to the unit named by the sampler uniform.
func (e *Env) Sampler(name string) Sampler {
	unit := e.Int(name)
	if unit < 0 || unit >= len(e.units) {
		return Sampler{}
	}
	return Sampler{tex: e.units[unit]}
}

// Sampler reads a texture with clamp to edge addressing and the texture's filter mode.
type Sampler struct {
	tex *swTexture
}

// Size matches GLSL textureSize; an unbound sampler has size 0x0.
func (s Sampler) Size() (int, int) {
	if s.tex == nil {
		return 0, 0
	}
	return s.tex.width, s.tex.height
}

// At matches GLSL texture(sampler, uv). An unbound sampler reads opaque black.
func (s Sampler) At(uv mgl32.Vec2) mgl32.Vec4 {
	t := s.tex
	if t == nil || t.width == 0 || t.height == 0 {
		return mgl32.Vec4{0, 0, 0, 1}
	}
	if t.filter == Linear {
		return t.sampleBilinear(uv[0], uv[1])
	}
	return t.sampleNearest(uv[0], uv[1])
}

type swTexture struct {
	width, height int
	pix           []float32
	filter        Filter
	// normalized textures store unsigned normalized values, writes are clamped to [0, 1]
	normalized bool
	deleted    bool
}

func newSwTexture(width, height int, normalized bool) *swTexture {
	return &swTexture{
		width:      width,
		height:     height,
		pix:        make([]float32, width*height*4),
		normalized: normalized,
	}
}

func (t *swTexture) Width() int {
	return t.width
}

func (t *swTexture) Height() int {
	return t.height
}

func (t *swTexture) texel(x, y int) mgl32.Vec4 {
	i := (y*t.width + x) * 4
	return mgl32.Vec4{t.pix[i], t.pix[i+1], t.pix[i+2], t.pix[i+3]}
}

func (t *swTexture) store(x, y int, c mgl32.Vec4) {
	i := (y*t.width + x) * 4
	if t.normalized {
		for k := 0; k < 4; k++ {
			c[k] = math32.Max(0, math32.Min(1, c[k]))
		}
	}
	copy(t.pix[i:i+4], c[:])
}

func clampIndex(i, n int) int {
	if i < 0 {
		return 0
	}
	if i >= n {
		return n - 1
	}
	return i
}

func (t *swTexture) sampleNearest(u, v float32) mgl32.Vec4 {
	x := clampIndex(int(math32.Floor(u*float32(t.width))), t.width)
	y := clampIndex(int(math32.Floor(v*float32(t.height))), t.height)
	return t.texel(x, y)
}

func (t *swTexture) sampleBilinear(u, v float32) mgl32.Vec4 {
	// -0.5 to adjust for the pixel center offset
	u = u*float32(t.width) - 0.5
	v = v*float32(t.height) - 0.5
	uf := math32.Floor(u)
	vf := math32.Floor(v)
	ufrac, vfrac := u-uf, v-vf
	x0, y0 := int(uf), int(vf)
	x1, y1 := clampIndex(x0+1, t.width), clampIndex(y0+1, t.height)
	x0, y0 = clampIndex(x0, t.width), clampIndex(y0, t.height)

	c00, c10 := t.texel(x0, y0), t.texel(x1, y0)
	c01, c11 := t.texel(x0, y1), t.texel(x1, y1)
	top := c00.Mul(1 - ufrac).Add(c10.Mul(ufrac))
	bottom := c01.Mul(1 - ufrac).Add(c11.Mul(ufrac))
	return top.Mul(1 - vfrac).Add(bottom.Mul(vfrac))
}
