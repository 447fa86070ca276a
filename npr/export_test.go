package npr

import (
	"image"

	"github.com/lonnibesancon/Arkangel/surface"
)

var FitSize = fitSize

// PingPongSchedule lists the slots read and written by each phase of n iterations.
// -1 is the source for reads and the destination for writes.
func PingPongSchedule(n int) (reads, writes []int) {
	a, b := &struct{ surface.Texture }{}, &struct{ surface.Texture }{}
	pp := pingPong{slots: [2]surface.Texture{a, b}}
	slot := func(tex surface.Texture) int {
		switch tex {
		case a:
			return 0
		case b:
			return 1
		}
		return -1
	}
	for ; pp.phase < 2*n; pp.phase++ {
		reads = append(reads, slot(pp.read(nil)))
		writes = append(writes, slot(pp.write(2*n)))
	}
	return reads, writes
}

// Upload prepares a run on img the way Render does and returns the source texture.
func (e *Engine) Upload(img image.Image, p *Parameters) (surface.Texture, error) {
	b := img.Bounds()
	if err := e.surf.Resize(b.Dx(), b.Dy()); err != nil {
		return nil, err
	}
	e.textures.UploadImage(img)
	e.textures.BeginRun()
	return e.textures.SourceTexture(p)
}

func (e *Engine) Textures() *TextureManager {
	return e.textures
}

func (e *Engine) Surface() surface.Surface {
	return e.surf
}
