package images

import (
	"image"
	"image/gif"
	"image/jpeg"
	"image/png"
	"io"

	"github.com/chai2010/webp"
	bmp "github.com/sergeymakinen/go-bmp"
	"golang.org/x/image/tiff"
)

// codec pairs the decode entry points of one format.
type codec struct {
	decode       func(r io.Reader) (image.Image, error)
	decodeConfig func(r io.Reader) (image.Config, error)
}

// codecs is keyed by the format reported by Detect. Dispatch is explicit rather
// than through image.Decode because more than one imported package registers
// itself for "bmp".
var codecs = map[ImageFormat]codec{
	FormatJPEG: {jpeg.Decode, jpeg.DecodeConfig},
	FormatPNG:  {png.Decode, png.DecodeConfig},
	FormatGIF:  {gif.Decode, gif.DecodeConfig},
	FormatBMP:  {bmp.Decode, bmp.DecodeConfig},
	FormatTIFF: {tiff.Decode, tiff.DecodeConfig},
	FormatWebP: {decodeWebP, webp.DecodeConfig},
}

// decodeWebP returns the libwebp buffer as *image.NRGBA. webp.Decode labels it
// *image.RGBA but the samples are not premultiplied.
func decodeWebP(r io.Reader) (image.Image, error) {
	m, err := webp.Decode(r)
	if err != nil {
		return nil, err
	}
	if rgba, ok := m.(*image.RGBA); ok {
		return &image.NRGBA{Pix: rgba.Pix, Stride: rgba.Stride, Rect: rgba.Rect}, nil
	}
	return m, nil
}

func codecFor(f ImageFormat) (codec, bool) {
	c, ok := codecs[f]
	return c, ok
}
