package libgl

import (
	"log"
	"unsafe"

	"github.com/go-gl/gl/v4.5-core/gl"
)

type LabeledGlObject interface {
	SetDebugLabel(string)
}

func setObjectLabel(namespace, id uint32, label string) {
	if label == "" {
		return
	}
	bytes := []byte(label)
	gl.ObjectLabel(namespace, id, int32(len(bytes)), (*uint8)(unsafe.Pointer(&bytes[0])))
}

// PushDebugGroup opens a named group in the GL debug output; the returned func closes it.
func PushDebugGroup(name string) func() {
	gl.PushDebugGroup(gl.DEBUG_SOURCE_APPLICATION, 0, -1, gl.Str(name+"\x00"))
	return gl.PopDebugGroup
}

// EnableDebugOutput forwards driver messages of medium or high severity to the standard logger.
func EnableDebugOutput() {
	State.Enable(gl.DEBUG_OUTPUT)
	State.Enable(gl.DEBUG_OUTPUT_SYNCHRONOUS)
	gl.DebugMessageCallback(func(source, gltype, id, severity uint32, length int32, message string, userParam unsafe.Pointer) {
		if severity == gl.DEBUG_SEVERITY_NOTIFICATION || severity == gl.DEBUG_SEVERITY_LOW {
			return
		}
		log.Printf("GL: %v\n", message)
	}, nil)
}
