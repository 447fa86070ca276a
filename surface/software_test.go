package surface_test

import (
	"image"
	"strings"
	"testing"

	"github.com/alecthomas/assert/v2"
	"github.com/go-gl/mathgl/mgl32"

	"github.com/lonnibesancon/Arkangel/libutil"
	"github.com/lonnibesancon/Arkangel/surface"
)

func TestSwCompileReportsPlaceholderLine(t *testing.T) {
	s := surface.NewSoftware(testKernels, surface.SoftwareOptions{})
	_, err := s.CompileShader(surface.FragmentShader, testFragment)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "tint_fs")
	assert.Contains(t, err.Error(), "0:5: unresolved placeholder $steps$")
}

func TestSwCompileRejectsBadConstant(t *testing.T) {
	s := surface.NewSoftware(testKernels, surface.SoftwareOptions{})
	_, err := s.CompileShader(surface.FragmentShader, strings.ReplaceAll(testFragment, "$steps$", "two"))
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "invalid int constant")
}

func TestSwCompileRequiresMain(t *testing.T) {
	s := surface.NewSoftware(testKernels, surface.SoftwareOptions{})
	_, err := s.CompileShader(surface.VertexShader, "#version 450 core\nin vec3 vPosition;\n")
	assert.Error(t, err)
}

func TestSwDeclarations(t *testing.T) {
	s := surface.NewSoftware(testKernels, surface.SoftwareOptions{})
	vs, err := s.CompileShader(surface.VertexShader, testVertex)
	assert.NoError(t, err)
	assert.Equal(t, "test_vs", vs.Name())
	assert.Equal(t, []string{"vec3 vPosition", "vec2 vTexCoord"}, surface.ShaderAttributes(vs))

	fs, err := s.CompileShader(surface.FragmentShader, strings.ReplaceAll(testFragment, "$steps$", "3"))
	assert.NoError(t, err)
	assert.Equal(t, surface.FragmentShader, fs.Kind())
	assert.Equal(t, map[string]float64{"steps": 3}, surface.ShaderConsts(fs))
	assert.Equal(t, []string{"sampler2D img", "vec4 tint"}, surface.ShaderUniforms(fs))
	assert.Equal(t, 0, len(surface.ShaderAttributes(fs)))
}

func TestSwLinkRequiresKernel(t *testing.T) {
	s := surface.NewSoftware(map[string]surface.Kernel{}, surface.SoftwareOptions{})
	vs, err := s.CompileShader(surface.VertexShader, testVertex)
	assert.NoError(t, err)
	fs, err := s.CompileShader(surface.FragmentShader, strings.ReplaceAll(testFragment, "$steps$", "1"))
	assert.NoError(t, err)
	_, err = s.LinkProgram(vs, fs)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), `no kernel for fragment program "tint_fs"`)

	_, err = s.LinkProgram(fs, vs)
	assert.Error(t, err)
}

func TestSwLinearFilter(t *testing.T) {
	s := surface.NewSoftware(testKernels, surface.SoftwareOptions{Workers: 1})
	defer s.Release()
	assert.NoError(t, s.Resize(4, 1))

	src := image.NewNRGBA(image.Rect(0, 0, 2, 1))
	src.Pix = []byte{0, 0, 0, 255, 200, 200, 200, 255}
	tex := s.UploadImage(src)
	s.SetFilter(tex, surface.Linear)
	prog := compileTint(t, s, "1")

	s.BindFramebuffer(nil)
	s.BindTexture(0, tex)
	s.SetUniform(prog, prog.UniformLocation("tint"), mgl32.Vec4{1, 1, 1, 1})
	draw(s, prog, libutil.FullScreen)

	out, err := s.ReadPixels()
	assert.NoError(t, err)
	// texel centers of the 2 pixel source sit at output pixels 0.5 and 2.5
	got := []byte{out.Pix[0], out.Pix[4], out.Pix[8], out.Pix[12]}
	assert.Equal(t, []byte{0, 50, 150, 200}, got)
}

func TestSwCoverage(t *testing.T) {
	from, to := surface.Coverage(-1, 1, 10)
	assert.Equal(t, 0, from)
	assert.Equal(t, 10, to)
	from, to = surface.Coverage(-0.5, 0.5, 4)
	assert.Equal(t, 1, from)
	assert.Equal(t, 3, to)
	from, to = surface.Coverage(-3, 3, 4)
	assert.Equal(t, 0, from)
	assert.Equal(t, 4, to)
}

func TestSwReleaseTwice(t *testing.T) {
	s := surface.NewSoftware(testKernels, surface.SoftwareOptions{})
	assert.NoError(t, s.Release())
	assert.IsError(t, s.Release(), surface.ErrReleased)
	_, err := s.ReadPixels()
	assert.IsError(t, err, surface.ErrReleased)
}
