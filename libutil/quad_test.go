package libutil_test

import (
	"testing"

	"github.com/alecthomas/assert/v2"
	"github.com/go-gl/mathgl/mgl32"

	"github.com/lonnibesancon/Arkangel/libutil"
)

func TestLetterboxSameAspectIsFullScreen(t *testing.T) {
	q := libutil.Letterbox(100, 50, 200, 100)
	assert.Equal(t, libutil.FullScreen, q)
}

func TestLetterboxWide(t *testing.T) {
	q := libutil.Letterbox(200, 50, 100, 100)
	min, max := q.Bounds()
	assert.Equal(t, mgl32.Vec2{-1, -0.25}, min)
	assert.Equal(t, mgl32.Vec2{1, 0.25}, max)
	assert.Equal(t, libutil.FullScreen.TexCoords, q.TexCoords)
}

func TestLetterboxTall(t *testing.T) {
	q := libutil.Letterbox(50, 100, 100, 100)
	min, max := q.Bounds()
	assert.Equal(t, mgl32.Vec2{-0.5, -1}, min)
	assert.Equal(t, mgl32.Vec2{0.5, 1}, max)
}

func TestLetterboxDropsSubpixelBorder(t *testing.T) {
	// 3000x2001 fitted into 1024 wide rounds to 683 rows
	q := libutil.Letterbox(1024, 683, 3000, 2001)
	assert.Equal(t, libutil.FullScreen, q)
}

func TestLetterboxDegenerate(t *testing.T) {
	assert.Equal(t, libutil.FullScreen, libutil.Letterbox(0, 10, 10, 10))
}

func TestInterleaved(t *testing.T) {
	data := libutil.FullScreen.Interleaved()
	assert.Equal(t, 20, len(data))
	assert.Equal(t, []float32{1, -1, 0, 1, 0}, data[:5])
	assert.Equal(t, []float32{-1, 1, 0, 0, 1}, data[15:])
}
