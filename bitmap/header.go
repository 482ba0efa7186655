package bitmap

import (
	"encoding/binary"
	"io"

	"github.com/pkg/errors"
)

// ErrNotBitmap is returned by Inspect when the file signature is not "BM".
var ErrNotBitmap = errors.New("not a bitmap file")

// Compression values of BITMAPINFOHEADER.biCompression.
const (
	CompressionRGB       uint32 = 0
	CompressionRLE8      uint32 = 1
	CompressionRLE4      uint32 = 2
	CompressionBitfields uint32 = 3
)

// FileHeader mirrors BITMAPFILEHEADER.
type FileHeader struct {
	Type      [2]byte // "BM"
	Size      uint32  // Size of the file in bytes.
	Reserved1 uint16
	Reserved2 uint16
	OffBits   uint32 // Offset of the pixel array.
}

// InfoHeader mirrors the leading fields of BITMAPINFOHEADER, which every later
// header version (V4, V5) extends without reordering.
type InfoHeader struct {
	Size            uint32 // Size of this header in bytes.
	Width           int32
	Height          int32 // Negative for top-down bitmaps.
	Planes          uint16
	BitCount        uint16 // Bits per pixel.
	Compression     uint32
	SizeImage       uint32
	XPixelsPerM     int32
	YPixelsPerM     int32
	ColorsUsed      uint32
	ColorsImportant uint32
}

// Header is the decoded summary of a bitmap's headers.
type Header struct {
	File FileHeader
	Info InfoHeader
}

// Width returns the image width in pixels.
func (h Header) Width() int { return int(h.Info.Width) }

// Height returns the absolute image height in pixels.
func (h Header) Height() int {
	if h.Info.Height < 0 {
		return -int(h.Info.Height)
	}
	return int(h.Info.Height)
}

// TopDown reports whether rows are stored top to bottom.
func (h Header) TopDown() bool { return h.Info.Height < 0 }

// Is24Bit reports whether the pixel array is uncompressed 24-bit BGR, the
// layout texture loaders expect.
func (h Header) Is24Bit() bool {
	return h.Info.BitCount == 24 && h.Info.Compression == CompressionRGB
}

// CompressionName returns a readable name for the compression field.
func (h Header) CompressionName() string {
	switch h.Info.Compression {
	case CompressionRGB:
		return "none"
	case CompressionRLE8:
		return "rle8"
	case CompressionRLE4:
		return "rle4"
	case CompressionBitfields:
		return "bitfields"
	default:
		return "unknown"
	}
}

// Inspect reads the file and info headers from the start of r.
//
// Arguments:
//   - r: A reader positioned at the start of a BMP file.
//
// Returns:
//   - Header: The decoded headers.
//   - error: ErrNotBitmap for a wrong signature, or a read error.
func Inspect(r io.Reader) (Header, error) {
	var h Header
	if err := binary.Read(r, binary.LittleEndian, &h.File); err != nil {
		return Header{}, errors.Wrap(err, "failed to read file header")
	}
	if h.File.Type != [2]byte{'B', 'M'} {
		return Header{}, ErrNotBitmap
	}
	if err := binary.Read(r, binary.LittleEndian, &h.Info); err != nil {
		return Header{}, errors.Wrap(err, "failed to read info header")
	}
	if h.Info.Size < 40 {
		return Header{}, errors.Errorf("unsupported info header size %d", h.Info.Size)
	}
	return h, nil
}
