package images

import (
	"image"
	"image/color"

	"golang.org/x/image/draw"
)

// ToRGB converts src to an opaque 24-bit RGB raster stored as *image.RGBA with
// every alpha byte set to 0xff.
//
// When matte is nil the alpha channel is discarded and the straight colour
// values are kept, so a fully transparent red pixel becomes red. When matte is
// set the source is composited over it instead.
//
// Arguments:
//   - src: Any decoded image.
//   - matte: Optional background colour. Its own alpha is ignored.
//
// Returns:
//   - *image.RGBA: A new image whose bounds start at (0, 0).
func ToRGB(src image.Image, matte color.Color) *image.RGBA {
	b := src.Bounds()
	dst := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))

	if matte != nil {
		r, g, bl, _ := matte.RGBA()
		bg := color.RGBA{R: uint8(r >> 8), G: uint8(g >> 8), B: uint8(bl >> 8), A: 0xff}
		draw.Draw(dst, dst.Bounds(), image.NewUniform(bg), image.Point{}, draw.Src)
		draw.Draw(dst, dst.Bounds(), src, b.Min, draw.Over)
		return dst
	}

	// Straight-alpha rasters are copied channel by channel. Going through
	// color.Color would premultiply and lose the colour of transparent pixels.
	switch n := src.(type) {
	case *image.NRGBA:
		for y := 0; y < b.Dy(); y++ {
			si := n.PixOffset(b.Min.X, b.Min.Y+y)
			di := dst.PixOffset(0, y)
			for x := 0; x < b.Dx(); x++ {
				dst.Pix[di+0] = n.Pix[si+0]
				dst.Pix[di+1] = n.Pix[si+1]
				dst.Pix[di+2] = n.Pix[si+2]
				dst.Pix[di+3] = 0xff
				si += 4
				di += 4
			}
		}
		return dst
	case *image.NRGBA64:
		// Big-endian 16-bit samples, keep the high byte.
		for y := 0; y < b.Dy(); y++ {
			si := n.PixOffset(b.Min.X, b.Min.Y+y)
			di := dst.PixOffset(0, y)
			for x := 0; x < b.Dx(); x++ {
				dst.Pix[di+0] = n.Pix[si+0]
				dst.Pix[di+1] = n.Pix[si+2]
				dst.Pix[di+2] = n.Pix[si+4]
				dst.Pix[di+3] = 0xff
				si += 8
				di += 4
			}
		}
		return dst
	}

	for y := 0; y < b.Dy(); y++ {
		di := dst.PixOffset(0, y)
		for x := 0; x < b.Dx(); x++ {
			c := color.NRGBAModel.Convert(src.At(b.Min.X+x, b.Min.Y+y)).(color.NRGBA)
			dst.Pix[di+0] = c.R
			dst.Pix[di+1] = c.G
			dst.Pix[di+2] = c.B
			dst.Pix[di+3] = 0xff
			di += 4
		}
	}
	return dst
}

// IsRGB reports whether m is already an opaque RGBA raster anchored at the
// origin, i.e. whether ToRGB would only copy it.
func IsRGB(m image.Image) bool {
	r, ok := m.(*image.RGBA)
	return ok && r.Rect.Min == (image.Point{}) && r.Opaque()
}
