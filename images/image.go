// Package images - source image loading, format detection and pixel conversion
// for texture processing.
package images

import (
	"bytes"
	"image"
	"os"

	"github.com/pkg/errors"
)

// ErrEmptyImage is returned for images with zero width or height.
var ErrEmptyImage = errors.New("image has no pixels")

// Image represents an image with a format, data, width, and height.
type Image struct {
	// The format of the image.
	Format ImageFormat `json:"format" yaml:"format"`
	// The data of the image.
	Data []byte `json:"data" yaml:"data"`
	// The width of the image.
	Width int `json:"width" yaml:"width"`
	// The height of the image.
	Height int `json:"height" yaml:"height"`
}

// NewImage detects the format of data and reads its dimensions from the
// header. The pixels are not decoded until Decode is called.
//
// Arguments:
//   - data: The raw bytes of an encoded image.
//
// Returns:
//   - *Image: The image descriptor.
//   - error: ErrUnsupportedFormat, ErrEmptyImage, or a header decode error.
func NewImage(data []byte) (*Image, error) {
	header := data
	if len(header) > sniffLen {
		header = header[:sniffLen]
	}
	format, err := Detect(header)
	if err != nil {
		return nil, err
	}

	c, ok := codecFor(format)
	if !ok {
		return nil, errors.Wrapf(ErrUnsupportedFormat, "no decoder for %s", format)
	}
	cfg, err := c.decodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read %s header", format)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return nil, errors.Wrapf(ErrEmptyImage, "%s header reports %dx%d", format, cfg.Width, cfg.Height)
	}

	return &Image{
		Format: format,
		Data:   data,
		Width:  cfg.Width,
		Height: cfg.Height,
	}, nil
}

// Load reads the file at path and returns its descriptor.
func Load(path string) (*Image, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read image")
	}
	img, err := NewImage(data)
	if err != nil {
		return nil, errors.Wrapf(err, "%s", path)
	}
	return img, nil
}

// Decode decodes the pixel data. For animated GIFs only the first frame is
// returned.
func (i *Image) Decode() (image.Image, error) {
	c, ok := codecFor(i.Format)
	if !ok {
		return nil, errors.Wrapf(ErrUnsupportedFormat, "no decoder for %q", i.Format)
	}
	m, err := c.decode(bytes.NewReader(i.Data))
	if err != nil {
		return nil, errors.Wrapf(err, "failed to decode %s image", i.Format)
	}
	b := m.Bounds()
	if b.Dx() <= 0 || b.Dy() <= 0 {
		return nil, ErrEmptyImage
	}
	return m, nil
}
