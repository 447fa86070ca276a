package libgl

import (
	"log"

	"github.com/go-gl/gl/v4.5-core/gl"
	"github.com/go-gl/mathgl/mgl32"
)

type texture struct {
	glId           uint32
	internalFormat uint32
	width          int
	height         int
	minFilter      int32
	magFilter      int32
}

type UnboundTexture interface {
	LabeledGlObject
	Id() uint32
	Width() int
	Height() int
	InternalFormat() uint32
	Bind(unit int) BoundTexture
	Allocate(internalFormat uint32, width, height int)
	Load(width, height int, format uint32, data any)
	FilterMode(min, mag int32)
	WrapMode(s, t int32)
	Read(format uint32, data any)
	Delete()
}

type BoundTexture interface {
	UnboundTexture
}

// NewTexture creates an unallocated 2D texture.
func NewTexture() UnboundTexture {
	var id uint32
	gl.CreateTextures(gl.TEXTURE_2D, 1, &id)
	return &texture{
		glId: id,
	}
}

func (tex *texture) Id() uint32 {
	return tex.glId
}

func (tex *texture) Width() int {
	return tex.width
}

func (tex *texture) Height() int {
	return tex.height
}

func (tex *texture) InternalFormat() uint32 {
	return tex.internalFormat
}

func (tex *texture) SetDebugLabel(label string) {
	setObjectLabel(gl.TEXTURE, tex.glId, label)
}

func (tex *texture) Bind(unit int) BoundTexture {
	State.BindTextureUnit(unit, tex.glId)
	return BoundTexture(tex)
}

// Allocate creates immutable single level storage.
func (tex *texture) Allocate(internalFormat uint32, width, height int) {
	tex.width = width
	tex.height = height
	tex.internalFormat = internalFormat
	gl.TextureStorage2D(tex.glId, 1, internalFormat, int32(width), int32(height))
}

func (tex *texture) Load(width, height int, format uint32, data any) {
	dataType := getGlType(data)
	gl.TextureSubImage2D(tex.glId, 0, 0, 0, int32(width), int32(height), format, dataType, Pointer(data))
}

func (tex *texture) FilterMode(min, mag int32) {
	if min != 0 && min != tex.minFilter {
		gl.TextureParameteri(tex.glId, gl.TEXTURE_MIN_FILTER, min)
		tex.minFilter = min
	}
	if mag != 0 && mag != tex.magFilter {
		gl.TextureParameteri(tex.glId, gl.TEXTURE_MAG_FILTER, mag)
		tex.magFilter = mag
	}
}

func (tex *texture) WrapMode(s, t int32) {
	if s != 0 {
		gl.TextureParameteri(tex.glId, gl.TEXTURE_WRAP_S, s)
	}
	if t != 0 {
		gl.TextureParameteri(tex.glId, gl.TEXTURE_WRAP_T, t)
	}
}

// Read copies level 0 into data, which must be large enough for the whole image.
func (tex *texture) Read(format uint32, data any) {
	dataType := getGlType(data)
	size := tex.width * tex.height * channels(format) * sizeOf(dataType)
	gl.GetTextureImage(tex.glId, 0, format, dataType, int32(size), Pointer(data))
}

func (tex *texture) Delete() {
	if tex.glId == 0 {
		return
	}
	State.ForgetTexture(tex.glId)
	gl.DeleteTextures(1, &tex.glId)
	tex.glId = 0
}

func getGlType(data any) uint32 {
	switch data.(type) {
	case []byte, *byte:
		return gl.UNSIGNED_BYTE
	case []uint16, *uint16:
		return gl.UNSIGNED_SHORT
	case []float32, *float32, []mgl32.Vec4:
		return gl.FLOAT
	}
	log.Panicf("invalid type: %T", data)
	return 0
}

func channels(format uint32) int {
	switch format {
	case gl.RED:
		return 1
	case gl.RG:
		return 2
	case gl.RGB:
		return 3
	}
	return 4
}

func sizeOf(dataType uint32) int {
	switch dataType {
	case gl.UNSIGNED_SHORT:
		return 2
	case gl.FLOAT:
		return 4
	}
	return 1
}
