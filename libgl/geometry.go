package libgl

import (
	"encoding/binary"
	"log"

	"github.com/go-gl/gl/v4.5-core/gl"
)

type buffer struct {
	glId uint32
	size int
}

type UnboundBuffer interface {
	Id() uint32
	// Allocate creates immutable storage that can still be rewritten with Write.
	Allocate(data any)
	Write(offset int, data any)
	Delete()
}

func NewBuffer() UnboundBuffer {
	var id uint32
	gl.CreateBuffers(1, &id)
	return &buffer{
		glId: id,
	}
}

func (vbo *buffer) Id() uint32 {
	return vbo.glId
}

func (vbo *buffer) Allocate(data any) {
	if vbo.size != 0 {
		log.Panicf("buffer %d is immutable", vbo.glId)
	}
	size := binary.Size(data)
	if size <= 0 {
		log.Panicf("%T does not have a fixed, non zero size", data)
	}
	gl.NamedBufferStorage(vbo.glId, size, Pointer(data), gl.DYNAMIC_STORAGE_BIT)
	vbo.size = size
}

func (vbo *buffer) Write(offset int, data any) {
	size := binary.Size(data)
	if size == -1 {
		log.Panicf("%T does not have a fixed size", data)
	}
	if offset+size > vbo.size {
		log.Panicf("write of %d bytes at %d overflows buffer of %d bytes", size, offset, vbo.size)
	}
	gl.NamedBufferSubData(vbo.glId, offset, size, Pointer(data))
}

func (vbo *buffer) Delete() {
	gl.DeleteBuffers(1, &vbo.glId)
	vbo.glId = 0
}

type vertexArray struct {
	glId uint32
}

type UnboundVertexArray interface {
	Id() uint32
	Layout(bufferIndex int, attributeIndex int, size int, dataType int, normalized bool, offset int)
	DisableAttribute(attributeIndex int)
	BindBuffer(bufferIndex int, vbo UnboundBuffer, offset int, stride int)
	Bind() BoundVertexArray
	Delete()
}

type BoundVertexArray interface {
	UnboundVertexArray
}

func NewVertexArray() UnboundVertexArray {
	var id uint32
	gl.CreateVertexArrays(1, &id)
	return &vertexArray{
		glId: id,
	}
}

func (vao *vertexArray) Id() uint32 {
	return vao.glId
}

func (vao *vertexArray) Bind() BoundVertexArray {
	State.BindVertexArray(vao.glId)
	return BoundVertexArray(vao)
}

func (vao *vertexArray) Layout(bufferIndex int, attributeIndex int, size int, dataType int, normalized bool, offset int) {
	gl.EnableVertexArrayAttrib(vao.glId, uint32(attributeIndex))
	gl.VertexArrayAttribFormat(vao.glId, uint32(attributeIndex), int32(size), uint32(dataType), normalized, uint32(offset))
	gl.VertexArrayAttribBinding(vao.glId, uint32(attributeIndex), uint32(bufferIndex))
}

func (vao *vertexArray) DisableAttribute(attributeIndex int) {
	gl.DisableVertexArrayAttrib(vao.glId, uint32(attributeIndex))
}

func (vao *vertexArray) BindBuffer(bufferIndex int, vbo UnboundBuffer, offset int, stride int) {
	gl.VertexArrayVertexBuffer(vao.glId, uint32(bufferIndex), vbo.Id(), offset, int32(stride))
}

func (vao *vertexArray) Delete() {
	if State.VertexArray == vao.glId {
		State.VertexArray = 0
	}
	gl.DeleteVertexArrays(1, &vao.glId)
	vao.glId = 0
}
