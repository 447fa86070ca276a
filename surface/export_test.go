package surface

// these functions are only exported when running tests

var Coverage = coverage

func ShaderConsts(s Shader) map[string]float64 {
	return s.(*glslUnit).consts
}

func ShaderUniforms(s Shader) []string {
	var names []string
	for _, u := range s.(*glslUnit).uniforms {
		names = append(names, u.typ+" "+u.name)
	}
	return names
}

func ShaderAttributes(s Shader) []string {
	var names []string
	for _, a := range s.(*glslUnit).attributes {
		names = append(names, a.typ+" "+a.name)
	}
	return names
}
