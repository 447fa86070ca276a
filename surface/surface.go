// Package surface is the rendering target the stylization stages draw on.
// Two implementations exist: an OpenGL 4.5 one backed by a hidden glfw window and
// a software one that runs Go fragment kernels over float32 buffers.
package surface

import (
	"errors"
	"image"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/lonnibesancon/Arkangel/libutil"
)

var ErrReleased = errors.New("surface released")

type Filter int

const (
	Nearest Filter = iota
	Linear
)

func (f Filter) String() string {
	if f == Linear {
		return "linear"
	}
	return "nearest"
}

type ShaderKind int

const (
	VertexShader ShaderKind = iota
	FragmentShader
)

func (k ShaderKind) String() string {
	if k == FragmentShader {
		return "fragment"
	}
	return "vertex"
}

// Texture is a 2D RGBA image living on the surface. Row 0 is sampled at t=0.
type Texture interface {
	Width() int
	Height() int
}

type Shader interface {
	Kind() ShaderKind
	Name() string
}

type Program interface {
	Name() string
	// UniformLocation returns -1 when the program does not use the uniform.
	UniformLocation(name string) int
	// AttributeLocation returns -1 when the program does not use the attribute.
	AttributeLocation(name string) int
}

// Framebuffer routes draws into its attached texture.
type Framebuffer interface {
	Texture() Texture
}

// Surface owns every object it creates. It is not safe for concurrent use.
type Surface interface {
	// Size reports the display target dimensions.
	Size() (width, height int)
	// Resize reallocates the display target.
	Resize(width, height int) error

	// NewTexture allocates an uninitialized float texture with nearest filtering.
	NewTexture(width, height int) Texture
	// UploadImage creates a texture holding img, rows top first, with nearest filtering.
	UploadImage(img *image.NRGBA) Texture
	SetFilter(tex Texture, mode Filter)
	DeleteTexture(tex Texture)

	// CompileShader reports compiler diagnostics in the error.
	CompileShader(kind ShaderKind, source string) (Shader, error)
	// LinkProgram reports linker diagnostics in the error.
	LinkProgram(vertex, fragment Shader) (Program, error)
	DeleteShader(s Shader)
	DeleteProgram(p Program)

	NewFramebuffer() Framebuffer
	AttachTexture(fb Framebuffer, tex Texture)
	DeleteFramebuffer(fb Framebuffer)

	// BindFramebuffer selects the render target and sets the viewport to cover it.
	// nil selects the display target.
	BindFramebuffer(fb Framebuffer)
	UseProgram(p Program)
	BindTexture(unit int, tex Texture)
	// SetUniform accepts float32, float64, int, int32, bool and mgl32 vectors.
	SetUniform(p Program, location int, value any)
	Clear(color mgl32.Vec4)
	// DrawQuad draws q with the program in use. Attribute locations of -1 are left unfed.
	DrawQuad(q libutil.Quad, position, texCoord int)
	// Flush blocks until every submitted draw has completed.
	Flush()
	// ReadPixels returns the display target, row 0 first.
	ReadPixels() (*image.NRGBA, error)
	Release() error
}
