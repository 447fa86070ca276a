package npr

import (
	"errors"
	"hash/maphash"
	"image"
	"math"

	"golang.org/x/image/draw"

	"github.com/lonnibesancon/Arkangel/libutil"
	"github.com/lonnibesancon/Arkangel/surface"
)

var (
	ErrNoImage    = errors.New("no source image uploaded")
	ErrEmptyImage = errors.New("source image has a zero dimension")
)

type sourceKey struct {
	hash          uint64
	width, height int
}

// TextureManager owns the source image, its texture and the scratch targets of a run.
type TextureManager struct {
	surf   surface.Surface
	seed   maphash.Seed
	image  *image.NRGBA
	hash   uint64
	source surface.Texture
	key    sourceKey
	// dimensions of the last source texture, the size of every scratch target
	width, height int
	transient     []surface.Texture
	persistent    map[surface.Texture]bool
}

func NewTextureManager(surf surface.Surface) *TextureManager {
	return &TextureManager{
		surf:       surf,
		seed:       maphash.MakeSeed(),
		persistent: map[surface.Texture]bool{},
	}
}

// UploadImage replaces the source image. The cached source texture survives only
// when the new image has the same content and dimensions.
func (tm *TextureManager) UploadImage(img image.Image) {
	b := img.Bounds()
	nrgba := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(nrgba, nrgba.Rect, img, b.Min, draw.Src)

	var h maphash.Hash
	h.SetSeed(tm.seed)
	h.Write(nrgba.Pix)
	sum := h.Sum64()

	if tm.image == nil || sum != tm.hash || !tm.image.Rect.Eq(nrgba.Rect) {
		tm.dropSource()
	}
	tm.image = nrgba
	tm.hash = sum
}

// NaturalSize is the size of the uploaded image.
func (tm *TextureManager) NaturalSize() (int, int) {
	if tm.image == nil {
		return 0, 0
	}
	return tm.image.Rect.Dx(), tm.image.Rect.Dy()
}

// fitSize scales w x h down so the larger side equals max, keeping the aspect ratio.
func fitSize(w, h, max int) (int, int) {
	if max <= 0 || (w <= max && h <= max) {
		return w, h
	}
	if w >= h {
		return max, libutil.Max(1, int(math.Round(float64(h)*float64(max)/float64(w))))
	}
	return libutil.Max(1, int(math.Round(float64(w)*float64(max)/float64(h)))), max
}

// SourceTexture returns the uploaded image as a texture no larger than max_size.
// The texture is rebuilt only when the image or the target size changed.
func (tm *TextureManager) SourceTexture(p *Parameters) (surface.Texture, error) {
	if tm.image == nil {
		return nil, ErrNoImage
	}
	nw, nh := tm.NaturalSize()
	if nw == 0 || nh == 0 {
		return nil, ErrEmptyImage
	}
	w, h := fitSize(nw, nh, p.Int(MaxSize))
	tm.width, tm.height = w, h

	key := sourceKey{tm.hash, w, h}
	if tm.source == nil || key != tm.key {
		tm.dropSource()
		img := tm.image
		if w != nw || h != nh {
			img = image.NewNRGBA(image.Rect(0, 0, w, h))
			draw.CatmullRom.Scale(img, img.Rect, tm.image, tm.image.Rect, draw.Src, nil)
		}
		tm.source = tm.surf.UploadImage(img)
		tm.key = key
	}
	// stages switch filters on their inputs; every run starts from the same state
	tm.surf.SetFilter(tm.source, surface.Nearest)
	return tm.source, nil
}

// Size reports the dimensions scratch textures are allocated with.
func (tm *TextureManager) Size() (int, int) {
	return tm.width, tm.height
}

// ScratchTexture allocates an uninitialized render target at Size. It is deleted
// by the next BeginRun unless marked Persistent.
func (tm *TextureManager) ScratchTexture() surface.Texture {
	tex := tm.surf.NewTexture(tm.width, tm.height)
	tm.transient = append(tm.transient, tex)
	return tex
}

// Persistent exempts tex from run cleanup. The caller deletes it with DeleteTexture.
func (tm *TextureManager) Persistent(tex surface.Texture) {
	for i, t := range tm.transient {
		if t == tex {
			tm.transient = append(tm.transient[:i], tm.transient[i+1:]...)
			break
		}
	}
	tm.persistent[tex] = true
}

func (tm *TextureManager) SetFilter(tex surface.Texture, mode surface.Filter) {
	tm.surf.SetFilter(tex, mode)
}

func (tm *TextureManager) DeleteTexture(tex surface.Texture) {
	delete(tm.persistent, tex)
	tm.surf.DeleteTexture(tex)
}

// BeginRun deletes the scratch textures of the previous run.
func (tm *TextureManager) BeginRun() {
	for _, tex := range tm.transient {
		tm.surf.DeleteTexture(tex)
	}
	tm.transient = tm.transient[:0]
}

// Release deletes every texture the manager handed out.
func (tm *TextureManager) Release() {
	tm.BeginRun()
	for tex := range tm.persistent {
		tm.surf.DeleteTexture(tex)
	}
	tm.persistent = map[surface.Texture]bool{}
	tm.dropSource()
	tm.image = nil
}

func (tm *TextureManager) dropSource() {
	if tm.source != nil {
		tm.surf.DeleteTexture(tm.source)
		tm.source = nil
	}
}
