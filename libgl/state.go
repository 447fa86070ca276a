package libgl

import (
	"strings"

	"github.com/go-gl/gl/v4.5-core/gl"
)

type GlCapability uint32

const (
	Blend       GlCapability = gl.BLEND
	DepthTest   GlCapability = gl.DEPTH_TEST
	CullFace    GlCapability = gl.CULL_FACE
	ScissorTest GlCapability = gl.SCISSOR_TEST
	Dither      GlCapability = gl.DITHER
)

// StateManager mirrors the bits of GL state the filters touch and skips redundant calls.
type StateManager struct {
	Caps            map[GlCapability]bool
	TextureUnits    []uint32
	DrawFramebuffer uint32
	ReadFramebuffer uint32
	VertexArray     uint32
	Program         uint32
	ViewportRect    [4]int
	ClearColorRGBA  [4]float32
}

var State *StateManager

func NewStateManager() *StateManager {
	return &StateManager{
		Caps:         map[GlCapability]bool{},
		TextureUnits: make([]uint32, 32),
	}
}

func (s *StateManager) Enable(cap GlCapability) {
	if s.Caps[cap] {
		return
	}
	gl.Enable(uint32(cap))
	s.Caps[cap] = true
}

func (s *StateManager) Disable(cap GlCapability) {
	if v, ok := s.Caps[cap]; ok && !v {
		return
	}
	gl.Disable(uint32(cap))
	s.Caps[cap] = false
}

func (s *StateManager) BindTextureUnit(unit int, texture uint32) {
	if s.TextureUnits[unit] == texture {
		return
	}
	gl.BindTextureUnit(uint32(unit), texture)
	s.TextureUnits[unit] = texture
}

// ForgetTexture drops every cached reference to a deleted texture, so a recycled name is bound again.
func (s *StateManager) ForgetTexture(texture uint32) {
	for i, t := range s.TextureUnits {
		if t == texture {
			s.TextureUnits[i] = 0
		}
	}
}

func (s *StateManager) BindFramebuffer(target, framebuffer uint32) {
	switch target {
	case gl.DRAW_FRAMEBUFFER:
		s.BindDrawFramebuffer(framebuffer)
	case gl.READ_FRAMEBUFFER:
		s.BindReadFramebuffer(framebuffer)
	default:
		if framebuffer == s.DrawFramebuffer && framebuffer == s.ReadFramebuffer {
			return
		}
		gl.BindFramebuffer(gl.FRAMEBUFFER, framebuffer)
		s.DrawFramebuffer = framebuffer
		s.ReadFramebuffer = framebuffer
	}
}

func (s *StateManager) BindDrawFramebuffer(framebuffer uint32) {
	if s.DrawFramebuffer == framebuffer {
		return
	}
	gl.BindFramebuffer(gl.DRAW_FRAMEBUFFER, framebuffer)
	s.DrawFramebuffer = framebuffer
}

func (s *StateManager) BindReadFramebuffer(framebuffer uint32) {
	if s.ReadFramebuffer == framebuffer {
		return
	}
	gl.BindFramebuffer(gl.READ_FRAMEBUFFER, framebuffer)
	s.ReadFramebuffer = framebuffer
}

func (s *StateManager) BindVertexArray(array uint32) {
	if s.VertexArray == array {
		return
	}
	gl.BindVertexArray(array)
	s.VertexArray = array
}

func (s *StateManager) UseProgram(program uint32) {
	if s.Program == program {
		return
	}
	gl.UseProgram(program)
	s.Program = program
}

func (s *StateManager) Viewport(x, y, w, h int) {
	if s.ViewportRect == [4]int{x, y, w, h} {
		return
	}
	gl.Viewport(int32(x), int32(y), int32(w), int32(h))
	s.ViewportRect = [4]int{x, y, w, h}
}

func (s *StateManager) ClearColor(r, g, b, a float32) {
	if s.ClearColorRGBA == [4]float32{r, g, b, a} {
		return
	}
	gl.ClearColor(r, g, b, a)
	s.ClearColorRGBA = [4]float32{r, g, b, a}
}

var Env *Environment

type Environment struct {
	Vendor   string
	Renderer string
	Version  string
}

const (
	VendorIntel   = "intel"
	VendorNvidia  = "nvidia"
	VendorAmd     = "ati"
	VendorMesa    = "mesa"
	VendorUnknown = "unknown"
)

func GetEnvironment() *Environment {
	vendor := strings.ToLower(gl.GoStr(gl.GetString(gl.VENDOR)))
	switch {
	case strings.Contains(vendor, "intel"):
		vendor = VendorIntel
	case strings.Contains(vendor, "nvidia"):
		vendor = VendorNvidia
	case strings.Contains(vendor, "ati ") || strings.Contains(vendor, "amd"):
		vendor = VendorAmd
	case strings.Contains(vendor, "mesa"):
		vendor = VendorMesa
	default:
		vendor = VendorUnknown
	}
	return &Environment{
		Vendor:   vendor,
		Renderer: gl.GoStr(gl.GetString(gl.RENDERER)),
		Version:  gl.GoStr(gl.GetString(gl.VERSION)),
	}
}
