package surface

import (
	"fmt"
	"image"
	"runtime"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
	"golang.org/x/sync/errgroup"

	"github.com/lonnibesancon/Arkangel/libgl"
	"github.com/lonnibesancon/Arkangel/libutil"
)

const swTextureUnits = 8

type swProgram struct {
	name       string
	fragment   *glslUnit
	kernel     Kernel
	uniforms   []declaration
	attributes []declaration
	values     map[int]any
}

func (p *swProgram) Name() string {
	return p.name
}

func (p *swProgram) UniformLocation(name string) int {
	for i, u := range p.uniforms {
		if u.name == name {
			return i
		}
	}
	return -1
}

func (p *swProgram) AttributeLocation(name string) int {
	for i, a := range p.attributes {
		if a.name == name {
			return i
		}
	}
	return -1
}

type swFramebuffer struct {
	texture *swTexture
}

func (fb *swFramebuffer) Texture() Texture {
	if fb.texture == nil {
		return nil
	}
	return fb.texture
}

// SoftwareOptions configure the software surface.
type SoftwareOptions struct {
	// Workers bounds the goroutines shading one draw; 0 means GOMAXPROCS.
	Workers int
}

type swSurface struct {
	kernels  map[string]Kernel
	workers  int
	display  *swTexture
	bound    *swFramebuffer
	program  *swProgram
	units    [swTextureUnits]*swTexture
	released bool
}

// NewSoftware returns a surface that runs fragment programs as Go kernels, looked up
// by the `//meta:name` of the fragment source. Sources are still checked for
// unresolved placeholders and malformed constants, so a broken specialization
// fails to compile the same way it would on a GPU.
func NewSoftware(kernels map[string]Kernel, opts SoftwareOptions) Surface {
	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	return &swSurface{
		kernels: kernels,
		workers: workers,
	}
}

func (s *swSurface) Size() (int, int) {
	if s.display == nil {
		return 0, 0
	}
	return s.display.width, s.display.height
}

func (s *swSurface) Resize(width, height int) error {
	if s.released {
		return ErrReleased
	}
	if width <= 0 || height <= 0 {
		return fmt.Errorf("invalid display size %dx%d", width, height)
	}
	if s.display != nil && s.display.width == width && s.display.height == height {
		return nil
	}
	s.display = newSwTexture(width, height, true)
	return nil
}

func (s *swSurface) NewTexture(width, height int) Texture {
	return newSwTexture(width, height, false)
}

func (s *swSurface) UploadImage(img *image.NRGBA) Texture {
	w, h := img.Rect.Dx(), img.Rect.Dy()
	tex := newSwTexture(w, h, true)
	for y := 0; y < h; y++ {
		row := img.Pix[y*img.Stride : y*img.Stride+w*4]
		for i, b := range row {
			tex.pix[y*w*4+i] = float32(b) / 255
		}
	}
	return tex
}

func (s *swSurface) SetFilter(tex Texture, mode Filter) {
	tex.(*swTexture).filter = mode
}

func (s *swSurface) DeleteTexture(tex Texture) {
	t := tex.(*swTexture)
	for i, u := range s.units {
		if u == t {
			s.units[i] = nil
		}
	}
	t.deleted = true
	t.pix = nil
}

func (s *swSurface) CompileShader(kind ShaderKind, source string) (Shader, error) {
	unit, err := parseGLSL(kind, source)
	if err != nil {
		return nil, fmt.Errorf("failed to compile %v shader, log: %w", libgl.ShaderName(source), err)
	}
	return unit, nil
}

func (s *swSurface) LinkProgram(vertex, fragment Shader) (Program, error) {
	vs, ok := vertex.(*glslUnit)
	if !ok || vs.kind != VertexShader {
		return nil, fmt.Errorf("failed to link program, log: vertex stage missing")
	}
	fs, ok := fragment.(*glslUnit)
	if !ok || fs.kind != FragmentShader {
		return nil, fmt.Errorf("failed to link program, log: fragment stage missing")
	}
	name := vs.name + "+" + fs.name
	kernel, ok := s.kernels[fs.name]
	if !ok {
		return nil, fmt.Errorf("failed to link %v program, log: no kernel for fragment program %q", name, fs.name)
	}

	prog := &swProgram{
		name:       name,
		fragment:   fs,
		kernel:     kernel,
		attributes: vs.attributes,
		values:     map[int]any{},
	}
	seen := map[string]bool{}
	for _, u := range append(append([]declaration{}, vs.uniforms...), fs.uniforms...) {
		if seen[u.name] {
			continue
		}
		seen[u.name] = true
		prog.uniforms = append(prog.uniforms, u)
	}
	return prog, nil
}

func (s *swSurface) DeleteShader(Shader) {}

func (s *swSurface) DeleteProgram(p Program) {
	if s.program == p {
		s.program = nil
	}
}

func (s *swSurface) NewFramebuffer() Framebuffer {
	return &swFramebuffer{}
}

func (s *swSurface) AttachTexture(fb Framebuffer, tex Texture) {
	fb.(*swFramebuffer).texture = tex.(*swTexture)
}

func (s *swSurface) DeleteFramebuffer(fb Framebuffer) {
	f := fb.(*swFramebuffer)
	if s.bound == f {
		s.bound = nil
	}
	f.texture = nil
}

func (s *swSurface) BindFramebuffer(fb Framebuffer) {
	if fb == nil {
		s.bound = nil
		return
	}
	s.bound = fb.(*swFramebuffer)
}

// target is the texture draws currently land in.
func (s *swSurface) target() *swTexture {
	if s.bound != nil {
		return s.bound.texture
	}
	return s.display
}

func (s *swSurface) UseProgram(p Program) {
	s.program = p.(*swProgram)
}

func (s *swSurface) BindTexture(unit int, tex Texture) {
	s.units[unit] = tex.(*swTexture)
}

func (s *swSurface) SetUniform(p Program, location int, value any) {
	prog := p.(*swProgram)
	if location < 0 || location >= len(prog.uniforms) {
		return
	}
	prog.values[location] = value
}

func (s *swSurface) Clear(color mgl32.Vec4) {
	t := s.target()
	if t == nil {
		return
	}
	for y := 0; y < t.height; y++ {
		for x := 0; x < t.width; x++ {
			t.store(x, y, color)
		}
	}
}

func (s *swSurface) DrawQuad(q libutil.Quad, position, texCoord int) {
	t, prog := s.target(), s.program
	if t == nil || t.deleted || prog == nil || position < 0 {
		return
	}

	env := &Env{
		consts:   prog.fragment.consts,
		uniforms: make(map[string]any, len(prog.values)),
		units:    make([]*swTexture, swTextureUnits),
		width:    t.width,
		height:   t.height,
	}
	for loc, v := range prog.values {
		env.uniforms[prog.uniforms[loc].name] = v
	}
	for i, u := range s.units {
		if u == t {
			// reading the render target is undefined on a GPU; give the kernel a stable copy
			c := *u
			c.pix = append([]float32(nil), u.pix...)
			u = &c
		}
		env.units[i] = u
	}
	shade := prog.kernel(env)

	min, max := q.Bounds()
	x0, x1 := coverage(min[0], max[0], t.width)
	y0, y1 := coverage(min[1], max[1], t.height)
	if x0 >= x1 || y0 >= y1 {
		return
	}
	interp := newTexCoordInterpolator(q, min, max, texCoord >= 0)

	g := new(errgroup.Group)
	rows := y1 - y0
	bands := libutil.Min(s.workers, rows)
	for b := 0; b < bands; b++ {
		from := y0 + rows*b/bands
		to := y0 + rows*(b+1)/bands
		g.Go(func() error {
			for y := from; y < to; y++ {
				ny := (float32(y)+0.5)/float32(t.height)*2 - 1
				for x := x0; x < x1; x++ {
					nx := (float32(x)+0.5)/float32(t.width)*2 - 1
					t.store(x, y, shade(interp.at(nx, ny)))
				}
			}
			return nil
		})
	}
	_ = g.Wait()
}

// coverage returns the pixel range whose centers fall in [lo, hi) in NDC.
func coverage(lo, hi float32, n int) (int, int) {
	from := int(math32.Ceil((lo+1)/2*float32(n) - 0.5))
	to := int(math32.Ceil((hi+1)/2*float32(n) - 0.5))
	return libutil.Clamp(from, 0, n), libutil.Clamp(to, 0, n)
}

// texCoordInterpolator maps NDC positions inside an axis aligned quad to texture coordinates.
type texCoordInterpolator struct {
	min, size          mgl32.Vec2
	t00, t10, t01, t11 mgl32.Vec2
	enabled            bool
}

func newTexCoordInterpolator(q libutil.Quad, min, max mgl32.Vec2, enabled bool) texCoordInterpolator {
	ti := texCoordInterpolator{min: min, size: max.Sub(min), enabled: enabled}
	for i, p := range q.Positions {
		left, bottom := p[0] == min[0], p[1] == min[1]
		switch {
		case left && bottom:
			ti.t00 = q.TexCoords[i]
		case !left && bottom:
			ti.t10 = q.TexCoords[i]
		case left && !bottom:
			ti.t01 = q.TexCoords[i]
		default:
			ti.t11 = q.TexCoords[i]
		}
	}
	return ti
}

func (ti texCoordInterpolator) at(nx, ny float32) mgl32.Vec2 {
	if !ti.enabled {
		return mgl32.Vec2{}
	}
	u := (nx - ti.min[0]) / ti.size[0]
	v := (ny - ti.min[1]) / ti.size[1]
	bottom := ti.t00.Mul(1 - u).Add(ti.t10.Mul(u))
	top := ti.t01.Mul(1 - u).Add(ti.t11.Mul(u))
	return bottom.Mul(1 - v).Add(top.Mul(v))
}

func (s *swSurface) Flush() {}

func (s *swSurface) ReadPixels() (*image.NRGBA, error) {
	if s.released {
		return nil, ErrReleased
	}
	if s.display == nil {
		return nil, fmt.Errorf("display target not allocated")
	}
	d := s.display
	img := image.NewNRGBA(image.Rect(0, 0, d.width, d.height))
	for i, v := range d.pix {
		img.Pix[i] = uint8(math32.Round(math32.Max(0, math32.Min(1, v)) * 255))
	}
	return img, nil
}

func (s *swSurface) Release() error {
	if s.released {
		return ErrReleased
	}
	s.released = true
	s.display, s.bound, s.program = nil, nil, nil
	s.units = [swTextureUnits]*swTexture{}
	return nil
}
