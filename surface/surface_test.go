package surface_test

import (
	"image"
	"image/color"
	"strings"
	"testing"

	"github.com/alecthomas/assert/v2"
	"github.com/go-gl/mathgl/mgl32"

	"github.com/lonnibesancon/Arkangel/libutil"
	"github.com/lonnibesancon/Arkangel/surface"
)

func testImage() *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, 2, 2))
	img.SetNRGBA(0, 0, color.NRGBA{R: 255, G: 10, B: 0, A: 255})
	img.SetNRGBA(1, 0, color.NRGBA{R: 0, G: 20, B: 255, A: 255})
	img.SetNRGBA(0, 1, color.NRGBA{R: 100, G: 30, B: 50, A: 255})
	img.SetNRGBA(1, 1, color.NRGBA{R: 7, G: 40, B: 200, A: 128})
	return img
}

func compileTint(t *testing.T, s surface.Surface, steps string) surface.Program {
	t.Helper()
	vs, err := s.CompileShader(surface.VertexShader, testVertex)
	assert.NoError(t, err)
	fs, err := s.CompileShader(surface.FragmentShader, strings.ReplaceAll(testFragment, "$steps$", steps))
	assert.NoError(t, err)
	prog, err := s.LinkProgram(vs, fs)
	assert.NoError(t, err)
	s.DeleteShader(vs)
	s.DeleteShader(fs)
	return prog
}

func draw(s surface.Surface, prog surface.Program, q libutil.Quad) {
	s.UseProgram(prog)
	s.DrawQuad(q, prog.AttributeLocation("vPosition"), prog.AttributeLocation("vTexCoord"))
}

// forEachSurface runs fn on the software surface and, when available, on OpenGL.
func forEachSurface(t *testing.T, fn func(t *testing.T, s surface.Surface)) {
	t.Run("software", func(t *testing.T) {
		s := surface.NewSoftware(testKernels, surface.SoftwareOptions{Workers: 3})
		defer s.Release()
		fn(t, s)
	})
	t.Run("opengl", func(t *testing.T) {
		if glSurface == nil {
			t.Skipf("no OpenGL context: %v", glError)
		}
		runOnMain(func() { fn(t, glSurface) })
	})
}

func TestUnresolvedPlaceholderFailsToCompile(t *testing.T) {
	forEachSurface(t, func(t *testing.T, s surface.Surface) {
		_, err := s.CompileShader(surface.FragmentShader, testFragment)
		assert.Error(t, err)
	})
}

func TestProgramLocations(t *testing.T) {
	forEachSurface(t, func(t *testing.T, s surface.Surface) {
		prog := compileTint(t, s, "1")
		defer s.DeleteProgram(prog)
		assert.NotEqual(t, -1, prog.UniformLocation("tint"))
		assert.NotEqual(t, -1, prog.AttributeLocation("vPosition"))
		assert.NotEqual(t, -1, prog.AttributeLocation("vTexCoord"))
		assert.Equal(t, -1, prog.UniformLocation("missing"))
		assert.Equal(t, -1, prog.AttributeLocation("missing"))
	})
}

func TestDrawToDisplay(t *testing.T) {
	forEachSurface(t, func(t *testing.T, s surface.Surface) {
		src := testImage()
		assert.NoError(t, s.Resize(2, 2))
		tex := s.UploadImage(src)
		defer s.DeleteTexture(tex)
		prog := compileTint(t, s, "1")
		defer s.DeleteProgram(prog)

		s.BindFramebuffer(nil)
		s.Clear(mgl32.Vec4{0, 0, 0, 1})
		s.BindTexture(0, tex)
		s.SetUniform(prog, prog.UniformLocation("img"), 0)
		s.SetUniform(prog, prog.UniformLocation("tint"), mgl32.Vec4{1, 0, 1, 1})
		draw(s, prog, libutil.FullScreen)
		s.Flush()

		out, err := s.ReadPixels()
		assert.NoError(t, err)
		assert.Equal(t, image.Rect(0, 0, 2, 2), out.Rect)
		for y := 0; y < 2; y++ {
			for x := 0; x < 2; x++ {
				want := src.NRGBAAt(x, y)
				want.G = 0
				assert.Equal(t, want, out.NRGBAAt(x, y))
			}
		}
	})
}

func TestFloatTexturesAreNotClamped(t *testing.T) {
	forEachSurface(t, func(t *testing.T, s surface.Surface) {
		src := testImage()
		assert.NoError(t, s.Resize(2, 2))
		tex := s.UploadImage(src)
		defer s.DeleteTexture(tex)
		scratch := s.NewTexture(2, 2)
		defer s.DeleteTexture(scratch)
		fb := s.NewFramebuffer()
		defer s.DeleteFramebuffer(fb)
		s.AttachTexture(fb, scratch)

		double := compileTint(t, s, "2")
		defer s.DeleteProgram(double)
		s.BindFramebuffer(fb)
		s.BindTexture(0, tex)
		s.SetUniform(double, double.UniformLocation("tint"), mgl32.Vec4{1, 1, 1, 1})
		draw(s, double, libutil.FullScreen)

		half := compileTint(t, s, "1")
		defer s.DeleteProgram(half)
		s.BindFramebuffer(nil)
		s.BindTexture(0, scratch)
		s.SetUniform(half, half.UniformLocation("tint"), mgl32.Vec4{0.5, 0.5, 0.5, 0.5})
		draw(s, half, libutil.FullScreen)

		out, err := s.ReadPixels()
		assert.NoError(t, err)
		assert.Equal(t, src.Pix, out.Pix)
	})
}

func TestPartialQuadKeepsClearColor(t *testing.T) {
	forEachSurface(t, func(t *testing.T, s surface.Surface) {
		assert.NoError(t, s.Resize(4, 2))
		white := image.NewNRGBA(image.Rect(0, 0, 1, 1))
		white.Pix = []byte{255, 255, 255, 255}
		tex := s.UploadImage(white)
		defer s.DeleteTexture(tex)
		prog := compileTint(t, s, "1")
		defer s.DeleteProgram(prog)

		left := libutil.FullScreen
		for i := range left.Positions {
			if left.Positions[i][0] > 0 {
				left.Positions[i][0] = 0
			}
		}
		s.BindFramebuffer(nil)
		s.Clear(mgl32.Vec4{0, 0, 0, 1})
		s.BindTexture(0, tex)
		s.SetUniform(prog, prog.UniformLocation("tint"), mgl32.Vec4{1, 1, 1, 1})
		draw(s, prog, left)

		out, err := s.ReadPixels()
		assert.NoError(t, err)
		for y := 0; y < 2; y++ {
			assert.Equal(t, color.NRGBA{255, 255, 255, 255}, out.NRGBAAt(0, y))
			assert.Equal(t, color.NRGBA{255, 255, 255, 255}, out.NRGBAAt(1, y))
			assert.Equal(t, color.NRGBA{0, 0, 0, 255}, out.NRGBAAt(2, y))
			assert.Equal(t, color.NRGBA{0, 0, 0, 255}, out.NRGBAAt(3, y))
		}
	})
}
