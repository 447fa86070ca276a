package surface

import (
	"fmt"
	"image"
	"unsafe"

	"github.com/go-gl/gl/v4.5-core/gl"
	"github.com/go-gl/glfw/v3.3/glfw"
	"github.com/go-gl/mathgl/mgl32"

	"github.com/lonnibesancon/Arkangel/libgl"
	"github.com/lonnibesancon/Arkangel/libutil"
)

type glTexture struct {
	libgl.UnboundTexture
}

type glShader struct {
	libgl.Shader
	kind ShaderKind
}

func (s *glShader) Kind() ShaderKind {
	return s.kind
}

type glProgram struct {
	libgl.Program
}

func (p *glProgram) UniformLocation(name string) int {
	return int(p.Program.UniformLocation(name))
}

func (p *glProgram) AttributeLocation(name string) int {
	return int(p.Program.AttributeLocation(name))
}

type glFramebuffer struct {
	libgl.UnboundFramebuffer
	texture Texture
}

func (fb *glFramebuffer) Texture() Texture {
	return fb.texture
}

type glSurface struct {
	window  *glfw.Window
	screen  libgl.UnboundFramebuffer
	display libgl.UnboundTexture
	quad    *libutil.QuadMesh
	width   int
	height  int
}

// OpenGLOptions configure the hidden context window.
type OpenGLOptions struct {
	Debug bool
}

// NewOpenGL creates a hidden 4.5 core context and makes it current on the calling thread.
// The caller must keep using the surface from that OS thread (see runtime.LockOSThread).
func NewOpenGL(opts OpenGLOptions) (Surface, error) {
	if err := glfw.Init(); err != nil {
		return nil, fmt.Errorf("init glfw: %w", err)
	}
	glfw.WindowHint(glfw.Visible, glfw.False)
	glfw.WindowHint(glfw.OpenGLProfile, glfw.OpenGLCoreProfile)
	glfw.WindowHint(glfw.OpenGLForwardCompatible, glfw.True)
	glfw.WindowHint(glfw.ContextVersionMajor, 4)
	glfw.WindowHint(glfw.ContextVersionMinor, 5)
	if opts.Debug {
		glfw.WindowHint(glfw.OpenGLDebugContext, glfw.True)
	}
	window, err := glfw.CreateWindow(64, 64, "arkangel", nil, nil)
	if err != nil {
		glfw.Terminate()
		return nil, fmt.Errorf("create context window: %w", err)
	}
	window.MakeContextCurrent()

	err = gl.InitWithProcAddrFunc(func(name string) unsafe.Pointer {
		addr := glfw.GetProcAddress(name)
		if addr == nil {
			return unsafe.Pointer(^uintptr(0))
		}
		return addr
	})
	if err != nil {
		window.Destroy()
		glfw.Terminate()
		return nil, fmt.Errorf("load gl functions: %w", err)
	}

	libgl.Env = libgl.GetEnvironment()
	libgl.State = libgl.NewStateManager()
	if opts.Debug {
		libgl.EnableDebugOutput()
	}
	libgl.State.Disable(libgl.Dither)
	libgl.State.ClearColor(0, 0, 0, 1)

	s := &glSurface{
		window: window,
		screen: libgl.NewFramebuffer(),
		quad:   libutil.NewQuadMesh(),
	}
	s.screen.SetDebugLabel("display")
	return s, nil
}

func (s *glSurface) Size() (int, int) {
	return s.width, s.height
}

func (s *glSurface) Resize(width, height int) error {
	if s.display != nil && width == s.width && height == s.height {
		return nil
	}
	if width <= 0 || height <= 0 {
		return fmt.Errorf("invalid display size %dx%d", width, height)
	}
	if s.display != nil {
		s.display.Delete()
	}
	s.display = libgl.NewTexture()
	s.display.Allocate(gl.RGBA8, width, height)
	s.screen.AttachTexture(s.display)
	if err := s.screen.Check(gl.FRAMEBUFFER); err != nil {
		return fmt.Errorf("display framebuffer: %w", err)
	}
	s.width, s.height = width, height
	return nil
}

func newGlTexture(internalFormat uint32, width, height int) *glTexture {
	tex := libgl.NewTexture()
	tex.Allocate(internalFormat, width, height)
	tex.FilterMode(gl.NEAREST, gl.NEAREST)
	tex.WrapMode(gl.CLAMP_TO_EDGE, gl.CLAMP_TO_EDGE)
	return &glTexture{tex}
}

func (s *glSurface) NewTexture(width, height int) Texture {
	return newGlTexture(gl.RGBA32F, width, height)
}

func (s *glSurface) UploadImage(img *image.NRGBA) Texture {
	w, h := img.Rect.Dx(), img.Rect.Dy()
	tex := newGlTexture(gl.RGBA8, w, h)
	pix := img.Pix
	if img.Stride != w*4 {
		pix = make([]byte, 0, w*h*4)
		for y := 0; y < h; y++ {
			pix = append(pix, img.Pix[y*img.Stride:y*img.Stride+w*4]...)
		}
	}
	tex.Load(w, h, gl.RGBA, pix)
	return tex
}

func (s *glSurface) SetFilter(tex Texture, mode Filter) {
	filter := int32(gl.NEAREST)
	if mode == Linear {
		filter = gl.LINEAR
	}
	tex.(*glTexture).FilterMode(filter, filter)
}

func (s *glSurface) DeleteTexture(tex Texture) {
	tex.(*glTexture).Delete()
}

func (s *glSurface) CompileShader(kind ShaderKind, source string) (Shader, error) {
	stage := uint32(gl.VERTEX_SHADER)
	if kind == FragmentShader {
		stage = gl.FRAGMENT_SHADER
	}
	sh, err := libgl.CompileShader(stage, source)
	if err != nil {
		return nil, err
	}
	return &glShader{Shader: sh, kind: kind}, nil
}

func (s *glSurface) LinkProgram(vertex, fragment Shader) (Program, error) {
	prog, err := libgl.LinkProgram(vertex.(*glShader), fragment.(*glShader))
	if err != nil {
		return nil, err
	}
	prog.SetDebugLabel(prog.Name())
	return &glProgram{prog}, nil
}

func (s *glSurface) DeleteShader(sh Shader) {
	sh.(*glShader).Delete()
}

func (s *glSurface) DeleteProgram(p Program) {
	p.(*glProgram).Delete()
}

func (s *glSurface) NewFramebuffer() Framebuffer {
	return &glFramebuffer{UnboundFramebuffer: libgl.NewFramebuffer()}
}

func (s *glSurface) AttachTexture(fb Framebuffer, tex Texture) {
	f := fb.(*glFramebuffer)
	f.texture = tex
	f.AttachTexture(tex.(*glTexture))
}

func (s *glSurface) DeleteFramebuffer(fb Framebuffer) {
	fb.(*glFramebuffer).Delete()
}

func (s *glSurface) BindFramebuffer(fb Framebuffer) {
	if fb == nil {
		s.screen.Bind(gl.FRAMEBUFFER)
		libgl.State.Viewport(0, 0, s.width, s.height)
		return
	}
	f := fb.(*glFramebuffer)
	f.Bind(gl.FRAMEBUFFER)
	libgl.State.Viewport(0, 0, f.texture.Width(), f.texture.Height())
}

func (s *glSurface) UseProgram(p Program) {
	p.(*glProgram).Use()
}

func (s *glSurface) BindTexture(unit int, tex Texture) {
	tex.(*glTexture).Bind(unit)
}

func (s *glSurface) SetUniform(p Program, location int, value any) {
	p.(*glProgram).SetUniform(int32(location), value)
}

func (s *glSurface) Clear(color mgl32.Vec4) {
	libgl.State.ClearColor(color[0], color[1], color[2], color[3])
	gl.Clear(gl.COLOR_BUFFER_BIT)
}

func (s *glSurface) DrawQuad(q libutil.Quad, position, texCoord int) {
	s.quad.Draw(q, int32(position), int32(texCoord))
}

func (s *glSurface) Flush() {
	gl.Finish()
}

func (s *glSurface) ReadPixels() (*image.NRGBA, error) {
	if s.display == nil {
		return nil, fmt.Errorf("display target not allocated")
	}
	img := image.NewNRGBA(image.Rect(0, 0, s.width, s.height))
	s.screen.ReadPixels(0, 0, s.width, s.height, gl.RGBA, img.Pix)
	if code := gl.GetError(); code != gl.NO_ERROR {
		return nil, fmt.Errorf("read display pixels: gl error 0x%x", code)
	}
	return img, nil
}

func (s *glSurface) Release() error {
	if s.window == nil {
		return ErrReleased
	}
	s.quad.Delete()
	if s.display != nil {
		s.display.Delete()
	}
	s.screen.Delete()
	s.window.Destroy()
	s.window = nil
	glfw.Terminate()
	return nil
}
