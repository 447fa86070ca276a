package npr

import (
	"github.com/sirupsen/logrus"

	"github.com/lonnibesancon/Arkangel/libutil"
	"github.com/lonnibesancon/Arkangel/surface"
)

// Uniforms sets values on the program of one stage. Names the program does not use
// are reported once per link and skipped.
type Uniforms struct {
	surf    surface.Surface
	program surface.Program
	log     logrus.FieldLogger
	warned  map[string]bool
}

func newUniforms(surf surface.Surface, program surface.Program, log logrus.FieldLogger) *Uniforms {
	return &Uniforms{
		surf:    surf,
		program: program,
		log:     log,
		warned:  map[string]bool{},
	}
}

func (u *Uniforms) Set(name string, value any) {
	loc := u.program.UniformLocation(name)
	if loc < 0 {
		if !u.warned[name] {
			u.warned[name] = true
			u.log.WithField("uniform", name).Warn("uniform location not found")
		}
		return
	}
	u.surf.SetUniform(u.program, loc, value)
}

// Texture binds tex to unit and points the sampler uniform name at it.
func (u *Uniforms) Texture(name string, unit int, tex surface.Texture) {
	if tex == nil {
		u.log.WithField("uniform", name).Warn("no texture for sampler")
		return
	}
	u.surf.BindTexture(unit, tex)
	u.Set(name, unit)
}

// Execution is the draw state handed to a stage's execute hook.
type Execution struct {
	surf        surface.Surface
	framebuffer surface.Framebuffer
	input       surface.Texture
	// dest is the texture the stage renders into, nil for the display
	dest     surface.Texture
	position int
	texCoord int

	Uniforms *Uniforms
	Quad     libutil.Quad
}

// Input binds tex as the primary input on unit 0.
func (x *Execution) Input(tex surface.Texture) {
	x.surf.BindTexture(0, tex)
}

// Target redirects the following draws into tex. nil restores the stage's destination.
func (x *Execution) Target(tex surface.Texture) {
	if tex == nil {
		tex = x.dest
	}
	if tex == nil {
		x.surf.BindFramebuffer(nil)
		return
	}
	x.surf.AttachTexture(x.framebuffer, tex)
	x.surf.BindFramebuffer(x.framebuffer)
}

func (x *Execution) Draw() {
	x.surf.DrawQuad(x.Quad, x.position, x.texCoord)
}
