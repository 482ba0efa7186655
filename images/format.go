package images

import (
	"bytes"

	"github.com/pkg/errors"
)

// ImageFormat represents supported image formats
type ImageFormat string

// ImageFormat constants
const (
	// FormatJPEG is the JPEG image format.
	FormatJPEG ImageFormat = "jpeg"
	// FormatPNG is the PNG image format.
	FormatPNG ImageFormat = "png"
	// FormatGIF is the GIF image format. Only the first frame is used.
	FormatGIF ImageFormat = "gif"
	// FormatBMP is the Windows bitmap format.
	FormatBMP ImageFormat = "bmp"
	// FormatTIFF is the TIFF image format.
	FormatTIFF ImageFormat = "tiff"
	// FormatWebP is the WebP image format.
	FormatWebP ImageFormat = "webp"
)

// ErrUnsupportedFormat is returned when the leading bytes of a file match none
// of the known image signatures.
var ErrUnsupportedFormat = errors.New("unsupported image format")

// sniffLen is the number of leading bytes Detect needs to recognise every
// supported signature.
const sniffLen = 12

type signature struct {
	format ImageFormat
	match  func(b []byte) bool
}

func prefix(p string) func(b []byte) bool {
	return func(b []byte) bool { return bytes.HasPrefix(b, []byte(p)) }
}

var signatures = []signature{
	{FormatJPEG, prefix("\xff\xd8\xff")},
	{FormatPNG, prefix("\x89PNG\r\n\x1a\n")},
	{FormatGIF, prefix("GIF87a")},
	{FormatGIF, prefix("GIF89a")},
	{FormatBMP, prefix("BM")},
	{FormatTIFF, prefix("II*\x00")},
	{FormatTIFF, prefix("MM\x00*")},
	{FormatWebP, func(b []byte) bool {
		// RIFF <size:4> WEBP
		return len(b) >= 12 && string(b[0:4]) == "RIFF" && string(b[8:12]) == "WEBP"
	}},
}

// Detect identifies the image format from the leading bytes of a file.
//
// Arguments:
//   - header: At least the first 12 bytes of the file. Shorter input is
//     accepted but may fail to match.
//
// Returns:
//   - ImageFormat: The detected format.
//   - error: ErrUnsupportedFormat when nothing matches.
func Detect(header []byte) (ImageFormat, error) {
	for _, s := range signatures {
		if s.match(header) {
			return s.format, nil
		}
	}
	return "", ErrUnsupportedFormat
}

// Formats lists every supported input format in detection order.
func Formats() []ImageFormat {
	seen := make(map[ImageFormat]bool, len(signatures))
	var out []ImageFormat
	for _, s := range signatures {
		if !seen[s.format] {
			seen[s.format] = true
			out = append(out, s.format)
		}
	}
	return out
}
