package libgl

import (
	"fmt"
	"log"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-gl/gl/v4.5-core/gl"
	"github.com/go-gl/mathgl/mgl32"
)

var shaderMetaPattern = regexp.MustCompile(`(?m)^\/\/meta:(\w+)(.+)$`)

// ShaderName returns the value of the `//meta:name` header line, or "untitled".
func ShaderName(source string) string {
	for _, match := range shaderMetaPattern.FindAllStringSubmatch(source, -1) {
		if strings.EqualFold(match[1], "name") {
			return strings.TrimSpace(match[2])
		}
	}
	return "untitled"
}

type shader struct {
	glId  uint32
	stage uint32
	name  string
}

type Shader interface {
	Id() uint32
	Name() string
	Stage() uint32
	Delete()
}

// CompileShader compiles one shader object. stage must be GL_VERTEX_SHADER or GL_FRAGMENT_SHADER.
// A failed compile is deleted and reported with its info log.
func CompileShader(stage uint32, source string) (Shader, error) {
	name := ShaderName(source)
	id := gl.CreateShader(stage)
	cStrs, free := gl.Strs(source + "\x00")
	gl.ShaderSource(id, 1, cStrs, nil)
	free()
	gl.CompileShader(id)

	var ok int32
	gl.GetShaderiv(id, gl.COMPILE_STATUS, &ok)
	if ok == gl.FALSE {
		infoLog := readShaderInfoLog(id)
		gl.DeleteShader(id)
		return nil, fmt.Errorf("failed to compile %v shader, log: %v", name, infoLog)
	}
	return &shader{glId: id, stage: stage, name: name}, nil
}

func (s *shader) Id() uint32 {
	return s.glId
}

func (s *shader) Name() string {
	return s.name
}

func (s *shader) Stage() uint32 {
	return s.stage
}

func (s *shader) Delete() {
	gl.DeleteShader(s.glId)
	s.glId = 0
}

func readShaderInfoLog(id uint32) string {
	var logLength int32
	gl.GetShaderiv(id, gl.INFO_LOG_LENGTH, &logLength)
	log := strings.Repeat("\x00", int(logLength+1))
	gl.GetShaderInfoLog(id, logLength, nil, gl.Str(log))
	return strings.TrimRight(log, "\x00")
}

type program struct {
	glId               uint32
	name               string
	uniformLocations   map[string]int32
	attributeLocations map[string]int32
}

type Program interface {
	LabeledGlObject
	Id() uint32
	Name() string
	Use()
	// UniformLocation returns -1 when the program has no active uniform of that name.
	UniformLocation(name string) int32
	// AttributeLocation returns -1 when the program has no active attribute of that name.
	AttributeLocation(name string) int32
	SetUniform(location int32, value any)
	Delete()
}

// LinkProgram links the shaders into a program named after them.
func LinkProgram(shaders ...Shader) (Program, error) {
	names := make([]string, len(shaders))
	id := gl.CreateProgram()
	for i, s := range shaders {
		gl.AttachShader(id, s.Id())
		names[i] = s.Name()
	}
	gl.LinkProgram(id)
	for _, s := range shaders {
		gl.DetachShader(id, s.Id())
	}
	name := strings.Join(names, "+")

	var ok int32
	gl.GetProgramiv(id, gl.LINK_STATUS, &ok)
	if ok == gl.FALSE {
		infoLog := readProgramInfoLog(id)
		gl.DeleteProgram(id)
		return nil, fmt.Errorf("failed to link %v program, log: %v", name, infoLog)
	}

	return &program{
		glId:               id,
		name:               name,
		uniformLocations:   map[string]int32{},
		attributeLocations: map[string]int32{},
	}, nil
}

func readProgramInfoLog(id uint32) string {
	var logLength int32
	gl.GetProgramiv(id, gl.INFO_LOG_LENGTH, &logLength)
	log := strings.Repeat("\x00", int(logLength+1))
	gl.GetProgramInfoLog(id, logLength, nil, gl.Str(log))
	return strings.TrimRight(log, "\x00")
}

func (prog *program) Id() uint32 {
	return prog.glId
}

func (prog *program) Name() string {
	return prog.name
}

func (prog *program) SetDebugLabel(label string) {
	setObjectLabel(gl.PROGRAM, prog.glId, label)
}

func (prog *program) Use() {
	State.UseProgram(prog.glId)
}

func (prog *program) UniformLocation(name string) int32 {
	if location, ok := prog.uniformLocations[name]; ok {
		return location
	}
	location := gl.GetUniformLocation(prog.glId, gl.Str(name+"\x00"))
	prog.uniformLocations[name] = location
	return location
}

func (prog *program) AttributeLocation(name string) int32 {
	if location, ok := prog.attributeLocations[name]; ok {
		return location
	}
	location := gl.GetAttribLocation(prog.glId, gl.Str(name+"\x00"))
	prog.attributeLocations[name] = location
	return location
}

func (prog *program) SetUniform(location int32, value any) {
	if location == -1 {
		return
	}
	setProgramUniformAny(prog.glId, location, value)
}

func (prog *program) Delete() {
	if State.Program == prog.glId {
		State.Program = 0
	}
	gl.DeleteProgram(prog.glId)
	prog.glId = 0
}

func setProgramUniformAny(prog uint32, location int32, value any) {
	for refVal := reflect.ValueOf(value); refVal.Kind() == reflect.Ptr; refVal = reflect.ValueOf(value) {
		value = refVal.Elem().Interface()
	}

	switch v := value.(type) {
	case float64:
		gl.ProgramUniform1f(prog, location, float32(v))
	case float32:
		gl.ProgramUniform1f(prog, location, v)
	case int:
		gl.ProgramUniform1i(prog, location, int32(v))
	case int32:
		gl.ProgramUniform1i(prog, location, v)
	case bool:
		var i int32
		if v {
			i = 1
		}
		gl.ProgramUniform1i(prog, location, i)
	case mgl32.Vec2:
		gl.ProgramUniform2f(prog, location, v.X(), v.Y())
	case mgl32.Vec3:
		gl.ProgramUniform3f(prog, location, v.X(), v.Y(), v.Z())
	case mgl32.Vec4:
		gl.ProgramUniform4f(prog, location, v.X(), v.Y(), v.Z(), v.W())
	default:
		log.Panicf("Unsupported type %T", value)
	}
}
