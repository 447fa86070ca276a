package npr

import (
	"testing"

	"github.com/alecthomas/assert/v2"
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

func TestLabRoundTrip(t *testing.T) {
	colors := []mgl32.Vec3{
		{0, 0, 0},
		{1, 1, 1},
		{1, 0, 0},
		{0, 1, 0},
		{0, 0, 1},
		{0.2, 0.5, 0.8},
		{0.9, 0.7, 0.1},
	}
	for _, c := range colors {
		got := labToRgb(rgbToLab(c))
		for i := range c {
			assert.True(t, math32.Abs(got[i]-c[i]) < 2e-3, "%v became %v", c, got)
		}
	}
}

func TestLabPacking(t *testing.T) {
	white := rgbToLab(mgl32.Vec3{1, 1, 1})
	assert.True(t, math32.Abs(white[0]-1) < 1e-3)
	assert.True(t, math32.Abs(white[1]-0.5) < 1e-3)
	assert.True(t, math32.Abs(white[2]-0.5) < 1e-3)

	black := rgbToLab(mgl32.Vec3{})
	assert.True(t, math32.Abs(black[0]) < 1e-4)

	// red has a positive a channel
	assert.True(t, rgbToLab(mgl32.Vec3{1, 0, 0})[1] > 0.5)
}

func TestHalfWidth(t *testing.T) {
	assert.Equal(t, 0, halfWidth(0))
	assert.Equal(t, 1, halfWidth(0.1))
	assert.Equal(t, 2, halfWidth(1))
	assert.Equal(t, 4, halfWidth(1.6))
}

func TestPassScale(t *testing.T) {
	p := NewParameters()
	ps := pass{params: p, width: 512, height: 256}
	assert.Equal(t, 1.0, ps.scale(2))

	assert.NoError(t, p.Set(DefaultSize, 0))
	assert.Equal(t, 2.0, ps.scale(2))
}
