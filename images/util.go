package images

import (
	"crypto/md5"
	"fmt"
	"image"
)

// Checksum generates a deterministic checksum over the 24-bit RGB content of
// an image, ignoring alpha and the bounds origin.
//
// Arguments:
// - m: The image to compute the checksum for.
//
// Returns:
// - A hex-encoded MD5 checksum string.
//
// Example:
//
// ```go
//
//	checksum := Checksum(texture)
//	fmt.Printf("Texture checksum: %s\n", checksum)
//
// ```
func Checksum(m image.Image) string {
	b := m.Bounds()
	if b.Empty() {
		return "empty"
	}

	var rgb *image.RGBA
	if IsRGB(m) {
		rgb = m.(*image.RGBA)
	} else {
		rgb = ToRGB(m, nil)
	}

	hash := md5.New()
	fmt.Fprintf(hash, "%dx%d;", rgb.Rect.Dx(), rgb.Rect.Dy())
	row := make([]byte, 0, 3*rgb.Rect.Dx())
	for y := 0; y < rgb.Rect.Dy(); y++ {
		row = row[:0]
		off := rgb.PixOffset(0, y)
		for x := 0; x < rgb.Rect.Dx(); x++ {
			row = append(row, rgb.Pix[off], rgb.Pix[off+1], rgb.Pix[off+2])
			off += 4
		}
		hash.Write(row)
	}
	return fmt.Sprintf("%x", hash.Sum(nil))
}
