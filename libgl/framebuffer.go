package libgl

import (
	"fmt"

	"github.com/go-gl/gl/v4.5-core/gl"
)

type framebuffer struct {
	glId    uint32
	texture UnboundTexture
}

// UnboundFramebuffer is a framebuffer with a single color attachment.
type UnboundFramebuffer interface {
	LabeledGlObject
	Id() uint32
	// target must be GL_DRAW_FRAMEBUFFER, GL_READ_FRAMEBUFFER or GL_FRAMEBUFFER
	Bind(target uint32) BoundFramebuffer
	// target must be GL_DRAW_FRAMEBUFFER, GL_READ_FRAMEBUFFER or GL_FRAMEBUFFER
	Check(target uint32) error
	AttachTexture(texture UnboundTexture)
	GetTexture() UnboundTexture
	ReadPixels(x, y, width, height int, format uint32, data any)
	Delete()
}

type BoundFramebuffer interface {
	UnboundFramebuffer
}

func NewFramebuffer() UnboundFramebuffer {
	var id uint32
	gl.CreateFramebuffers(1, &id)
	return &framebuffer{
		glId: id,
	}
}

func (fb *framebuffer) Id() uint32 {
	return fb.glId
}

func (fb *framebuffer) SetDebugLabel(label string) {
	setObjectLabel(gl.FRAMEBUFFER, fb.glId, label)
}

func (fb *framebuffer) Check(target uint32) error {
	status := gl.CheckNamedFramebufferStatus(fb.glId, target)
	switch status {
	case gl.FRAMEBUFFER_COMPLETE:
		return nil
	case gl.FRAMEBUFFER_INCOMPLETE_ATTACHMENT:
		return fmt.Errorf("an attachment is framebuffer incomplete (GL_FRAMEBUFFER_INCOMPLETE_ATTACHMENT)")
	case gl.FRAMEBUFFER_INCOMPLETE_MISSING_ATTACHMENT:
		return fmt.Errorf("the framebuffer has no attachments (GL_FRAMEBUFFER_INCOMPLETE_MISSING_ATTACHMENT)")
	case gl.FRAMEBUFFER_INCOMPLETE_DRAW_BUFFER:
		return fmt.Errorf("the object type of a draw attachment is none (GL_FRAMEBUFFER_INCOMPLETE_DRAW_BUFFER)")
	case gl.FRAMEBUFFER_UNSUPPORTED:
		return fmt.Errorf("the combination of internal formats of the attachments is not supported (GL_FRAMEBUFFER_UNSUPPORTED)")
	}
	return fmt.Errorf("unknown framebuffer status: %X", status)
}

func (fb *framebuffer) Bind(target uint32) BoundFramebuffer {
	State.BindFramebuffer(target, fb.glId)
	return BoundFramebuffer(fb)
}

func (fb *framebuffer) AttachTexture(texture UnboundTexture) {
	fb.texture = texture
	var id uint32
	if texture != nil {
		id = texture.Id()
	}
	gl.NamedFramebufferTexture(fb.glId, gl.COLOR_ATTACHMENT0, id, 0)
}

func (fb *framebuffer) GetTexture() UnboundTexture {
	return fb.texture
}

// ReadPixels reads from the color attachment. Rows are returned bottom first.
func (fb *framebuffer) ReadPixels(x, y, width, height int, format uint32, data any) {
	fb.Bind(gl.READ_FRAMEBUFFER)
	gl.NamedFramebufferReadBuffer(fb.glId, gl.COLOR_ATTACHMENT0)
	dataType := getGlType(data)
	size := width * height * channels(format) * sizeOf(dataType)
	gl.ReadnPixels(int32(x), int32(y), int32(width), int32(height), format, dataType, int32(size), Pointer(data))
}

func (fb *framebuffer) Delete() {
	if fb.glId == 0 {
		return
	}
	if State.DrawFramebuffer == fb.glId {
		State.DrawFramebuffer = 0
	}
	if State.ReadFramebuffer == fb.glId {
		State.ReadFramebuffer = 0
	}
	gl.DeleteFramebuffers(1, &fb.glId)
	fb.glId = 0
	fb.texture = nil
}
