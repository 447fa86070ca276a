package surface

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/lonnibesancon/Arkangel/libgl"
)

var (
	placeholderPattern = regexp.MustCompile(`\$\w+\$`)
	constPattern       = regexp.MustCompile(`(?m)^\s*const\s+(int|float)\s+(\w+)\s*=\s*([^;]+);`)
	uniformPattern     = regexp.MustCompile(`(?m)^\s*uniform\s+(\w+)\s+(\w+)\s*;`)
	attributePattern   = regexp.MustCompile(`(?m)^\s*in\s+(\w+)\s+(\w+)\s*;`)
	mainPattern        = regexp.MustCompile(`\bvoid\s+main\s*\(\s*\)`)
)

type declaration struct {
	typ  string
	name string
}

// glslUnit is what the software surface keeps of a shader source: its declarations.
type glslUnit struct {
	kind       ShaderKind
	name       string
	consts     map[string]float64
	uniforms   []declaration
	attributes []declaration
}

func (u *glslUnit) Kind() ShaderKind {
	return u.kind
}

func (u *glslUnit) Name() string {
	return u.name
}

// parseGLSL checks the parts of a GLSL source the software surface depends on.
// Error messages follow the driver style of "0:line: message".
func parseGLSL(kind ShaderKind, source string) (*glslUnit, error) {
	if loc := placeholderPattern.FindStringIndex(source); loc != nil {
		return nil, fmt.Errorf("0:%d: unresolved placeholder %s", lineOf(source, loc[0]), source[loc[0]:loc[1]])
	}
	if !mainPattern.MatchString(source) {
		return nil, fmt.Errorf("0:0: missing entry point 'void main()'")
	}

	unit := &glslUnit{
		kind:   kind,
		name:   libgl.ShaderName(source),
		consts: map[string]float64{},
	}

	for _, m := range constPattern.FindAllStringSubmatchIndex(source, -1) {
		typ, name, raw := source[m[2]:m[3]], source[m[4]:m[5]], strings.TrimSpace(source[m[6]:m[7]])
		var v float64
		var err error
		if typ == "int" {
			var i int64
			i, err = strconv.ParseInt(raw, 10, 32)
			v = float64(i)
		} else {
			v, err = strconv.ParseFloat(raw, 64)
		}
		if err != nil {
			return nil, fmt.Errorf("0:%d: '%s' : invalid %s constant initializer %q", lineOf(source, m[0]), name, typ, raw)
		}
		unit.consts[name] = v
	}

	for _, m := range uniformPattern.FindAllStringSubmatch(source, -1) {
		unit.uniforms = append(unit.uniforms, declaration{typ: m[1], name: m[2]})
	}
	if kind == VertexShader {
		for _, m := range attributePattern.FindAllStringSubmatch(source, -1) {
			unit.attributes = append(unit.attributes, declaration{typ: m[1], name: m[2]})
		}
	}
	return unit, nil
}

func lineOf(source string, offset int) int {
	return strings.Count(source[:offset], "\n") + 1
}
