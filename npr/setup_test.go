package npr_test

import (
	"image"
	"image/color"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"

	"github.com/lonnibesancon/Arkangel/npr"
	"github.com/lonnibesancon/Arkangel/surface"
)

// countingSurface records the compile, link and texture traffic of the surface it wraps.
type countingSurface struct {
	surface.Surface
	compiles int
	links    int
	deletes  int
}

func (c *countingSurface) CompileShader(kind surface.ShaderKind, source string) (surface.Shader, error) {
	c.compiles++
	return c.Surface.CompileShader(kind, source)
}

func (c *countingSurface) LinkProgram(vertex, fragment surface.Shader) (surface.Program, error) {
	c.links++
	return c.Surface.LinkProgram(vertex, fragment)
}

func (c *countingSurface) DeleteTexture(tex surface.Texture) {
	c.deletes++
	c.Surface.DeleteTexture(tex)
}

func newCounting() *countingSurface {
	return &countingSurface{Surface: surface.NewSoftware(npr.Kernels(), surface.SoftwareOptions{Workers: 4})}
}

// newEngine returns an engine on a counting software surface and the hook capturing its log.
func newEngine(t *testing.T, opts ...npr.Option) (*npr.Engine, *countingSurface, *test.Hook) {
	t.Helper()
	log, hook := test.NewNullLogger()
	log.SetLevel(logrus.DebugLevel)
	cs := newCounting()
	opts = append([]npr.Option{npr.WithLogger(log)}, opts...)
	e := npr.NewEngine(func() (surface.Surface, error) { return cs, nil }, opts...)
	t.Cleanup(func() { e.Release() })
	return e, cs, hook
}

// testImage is a smooth gradient with a dark disc, enough structure for edges to appear.
func testImage(w, h int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	cx, cy, r := w/2, h/2, h/3
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			c := color.NRGBA{
				R: uint8(40 + 200*x/w),
				G: uint8(60 + 150*y/h),
				B: uint8(220 - 180*x/w),
				A: 255,
			}
			if dx, dy := x-cx, y-cy; dx*dx+dy*dy < r*r {
				c.R, c.G, c.B = 20, 30, 90
			}
			img.SetNRGBA(x, y, c)
		}
	}
	return img
}

func entriesWith(hook *test.Hook, level logrus.Level, msg string) []*logrus.Entry {
	var found []*logrus.Entry
	for _, e := range hook.AllEntries() {
		if e.Level == level && e.Message == msg {
			found = append(found, e)
		}
	}
	return found
}
