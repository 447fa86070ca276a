package npr

import (
	"fmt"
	"image"
	"image/png"
	"io"
	"path/filepath"
	"strings"

	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"
)

// Encoder writes the rendered image in some still image format.
type Encoder interface {
	Encode(w io.Writer, img image.Image) error
}

type EncoderFunc func(w io.Writer, img image.Image) error

func (f EncoderFunc) Encode(w io.Writer, img image.Image) error {
	return f(w, img)
}

var (
	PNG  Encoder = EncoderFunc(png.Encode)
	BMP  Encoder = EncoderFunc(bmp.Encode)
	TIFF Encoder = EncoderFunc(func(w io.Writer, img image.Image) error {
		return tiff.Encode(w, img, &tiff.Options{Compression: tiff.Deflate, Predictor: true})
	})
)

// EncoderFor picks an encoder from a file name's extension.
func EncoderFor(path string) (Encoder, error) {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".png":
		return PNG, nil
	case ".bmp":
		return BMP, nil
	case ".tif", ".tiff":
		return TIFF, nil
	default:
		return nil, fmt.Errorf("no encoder for %q files", ext)
	}
}
