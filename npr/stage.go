package npr

import (
	"math"
	"strconv"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/sirupsen/logrus"

	"github.com/lonnibesancon/Arkangel/libutil"
	"github.com/lonnibesancon/Arkangel/surface"
)

const (
	defaultVertex     = "default_vs"
	positionAttribute = "vPosition"
	texCoordAttribute = "vTexCoord"
)

// Args are the per call inputs a stage needs besides its primary input texture.
type Args struct {
	// Flow is the tensor flow map for orientation aligned stages.
	Flow   surface.Texture
	Edges  surface.Texture
	Source surface.Texture
	// Iterations of the bilateral filter.
	Iterations int
	Horizontal bool
}

// pass is everything a hook may read for one invocation.
type pass struct {
	args   Args
	params *Parameters
	width  int
	height int
}

// scale adapts a pixel distance tuned for default_size to the current texture size.
func (ps pass) scale(v float64) float64 {
	ref := ps.params.Float(DefaultSize)
	if ref <= 0 {
		return v
	}
	return v * float64(libutil.Max(ps.width, ps.height)) / ref
}

func (ps pass) imgSize() mgl32.Vec2 {
	return mgl32.Vec2{float32(ps.width), float32(ps.height)}
}

func halfWidth(sigma float64) int {
	return int(math.Ceil(2 * sigma))
}

func halfWidthPlaceholders(hw int) Placeholders {
	return Placeholders{"halfWidth": strconv.Itoa(hw)}
}

// variant is the behavior that differs between stages.
type variant interface {
	placeholders(ps pass) (vertex, fragment Placeholders)
	bypass(ps pass) bool
	setUniforms(u *Uniforms, ps pass)
	execute(x *Execution, ps pass)
}

type baseVariant struct{}

func (baseVariant) placeholders(pass) (Placeholders, Placeholders) { return nil, nil }
func (baseVariant) bypass(pass) bool                               { return false }
func (baseVariant) setUniforms(*Uniforms, pass)                    {}
func (baseVariant) execute(x *Execution, _ pass)                   { x.Draw() }

// Stage renders one step of the stylization graph with its own program and framebuffer.
type Stage struct {
	name         string
	vertexName   string
	fragmentName string
	variant      variant

	programs *ProgramCache
	textures *TextureManager
	surf     surface.Surface
	log      logrus.FieldLogger

	prepared     bool
	vertex       surface.Shader
	fragment     surface.Shader
	lastVertex   Placeholders
	lastFragment Placeholders
	program      surface.Program
	uniforms     *Uniforms
	position     int
	texCoord     int
	framebuffer  surface.Framebuffer
}

func newStage(name, fragmentName string, v variant, programs *ProgramCache, textures *TextureManager, surf surface.Surface, log logrus.FieldLogger) *Stage {
	return &Stage{
		name:         name,
		vertexName:   defaultVertex,
		fragmentName: fragmentName,
		variant:      v,
		programs:     programs,
		textures:     textures,
		surf:         surf,
		log:          log.WithField("stage", name),
		framebuffer:  surf.NewFramebuffer(),
	}
}

func (s *Stage) Name() string {
	return s.name
}

// Program returns the linked program, nil before the first render or after a failure.
func (s *Stage) Program() surface.Program {
	return s.program
}

func (s *Stage) pass(args Args, p *Parameters) pass {
	w, h := s.textures.Size()
	return pass{args: args, params: p, width: w, height: h}
}

// RenderToTexture renders input into a new scratch texture. A bypassed stage returns input itself.
func (s *Stage) RenderToTexture(input surface.Texture, args Args, p *Parameters) surface.Texture {
	ps := s.pass(args, p)
	if s.variant.bypass(ps) {
		return input
	}
	out := s.textures.ScratchTexture()
	s.surf.AttachTexture(s.framebuffer, out)
	s.surf.BindFramebuffer(s.framebuffer)
	s.render(input, out, ps)
	return out
}

// RenderToDisplay renders input onto the surface's display target.
func (s *Stage) RenderToDisplay(input surface.Texture, args Args, p *Parameters) {
	ps := s.pass(args, p)
	if s.variant.bypass(ps) {
		return
	}
	s.surf.BindFramebuffer(nil)
	s.render(input, nil, ps)
}

func (s *Stage) render(input, dest surface.Texture, ps pass) {
	prog := s.prepare(ps)
	if prog == nil {
		s.log.Debug("no program, skipping")
		return
	}

	s.surf.UseProgram(prog)
	s.surf.Clear(mgl32.Vec4{0, 0, 0, 1})
	s.surf.BindTexture(0, input)
	s.uniforms.Set("img", 0)
	s.variant.setUniforms(s.uniforms, ps)

	s.variant.execute(&Execution{
		surf:        s.surf,
		framebuffer: s.framebuffer,
		input:       input,
		dest:        dest,
		position:    s.position,
		texCoord:    s.texCoord,
		Uniforms:    s.uniforms,
		Quad:        libutil.FullScreen,
	}, ps)
}

// prepare returns the program for the placeholders of ps, relinking only when they changed.
func (s *Stage) prepare(ps pass) surface.Program {
	vph, fph := s.variant.placeholders(ps)
	relink := false
	if !s.prepared || !vph.Equal(s.lastVertex) {
		s.dropShader(s.vertex, s.lastVertex)
		s.vertex = s.programs.Vertex(s.vertexName, vph)
		s.lastVertex = vph
		relink = true
	}
	if !s.prepared || !fph.Equal(s.lastFragment) {
		s.dropShader(s.fragment, s.lastFragment)
		s.fragment = s.programs.Fragment(s.fragmentName, fph)
		s.lastFragment = fph
		relink = true
	}
	s.prepared = true
	if !relink {
		return s.program
	}

	s.dropProgram()
	if s.vertex == nil || s.fragment == nil {
		return nil
	}
	prog, err := s.surf.LinkProgram(s.vertex, s.fragment)
	if err != nil {
		s.log.WithError(err).Error("program failed to link")
		return nil
	}
	s.program = prog
	s.uniforms = newUniforms(s.surf, prog, s.log)
	s.position = s.attribute(positionAttribute)
	s.texCoord = s.attribute(texCoordAttribute)
	return prog
}

func (s *Stage) attribute(name string) int {
	loc := s.program.AttributeLocation(name)
	if loc < 0 {
		s.log.WithField("attribute", name).Warn("attribute location not found")
	}
	return loc
}

func (s *Stage) dropShader(sh surface.Shader, ph Placeholders) {
	if sh != nil && !s.programs.Owned(ph) {
		s.surf.DeleteShader(sh)
	}
}

func (s *Stage) dropProgram() {
	if s.program != nil {
		s.surf.DeleteProgram(s.program)
		s.program = nil
		s.uniforms = nil
	}
}

// Release deletes the stage's program, its specialized shaders and its framebuffer.
func (s *Stage) Release() {
	s.dropProgram()
	s.dropShader(s.vertex, s.lastVertex)
	s.dropShader(s.fragment, s.lastFragment)
	s.vertex, s.fragment = nil, nil
	s.prepared = false
	if r, ok := s.variant.(interface{ release(*TextureManager) }); ok {
		r.release(s.textures)
	}
	s.surf.DeleteFramebuffer(s.framebuffer)
}
