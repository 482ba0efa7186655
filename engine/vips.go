//go:build vips

package engine

import (
	"bytes"
	"context"
	"image/png"
	"log/slog"
	"os"
	"time"

	"github.com/cshum/vipsgen/vips"
	"github.com/nvr-ai/texconv/bitmap"
	"github.com/nvr-ai/texconv/images"
	"github.com/pkg/errors"
)

// VipsName is the registry name of the libvips engine.
const VipsName = "vips"

func init() {
	Register(VipsName, func(logger *slog.Logger) Engine {
		return &Vips{logger: logger}
	})
}

// Vips decodes and resizes with libvips, which reads formats the Go codecs do
// not (HEIF, AVIF, JPEG 2000, ...). The pixels are handed back to Go through a
// lossless PNG buffer and written with the bitmap package.
//
// Resizing uses libvips thumbnailing, which fits the image inside the
// requested box and keeps the aspect ratio.
type Vips struct {
	logger *slog.Logger
}

// Name returns the registry name of the engine.
func (e *Vips) Name() string { return VipsName }

// Convert loads the input with libvips, optionally thumbnails it, and writes
// a 24-bit bitmap.
func (e *Vips) Convert(ctx context.Context, req Request) (*Result, error) {
	start := time.Now()
	if err := req.Validate(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(req.Input)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read image")
	}

	// Load the image from buffer.
	img, err := vips.NewImageFromBuffer(data, &vips.LoadOptions{
		Access: vips.AccessSequential,
	})
	if err != nil {
		return nil, errors.Wrapf(err, "failed to load %s", req.Input)
	}
	defer img.Close()
	srcW, srcH := img.Width(), img.Height()
	format := sniffFile(req.Input)
	e.logger.Debug("loaded source", "path", req.Input, "format", format, "width", srcW, "height", srcH)

	if req.Options.Resize.Enabled() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		w, h := targetSize(srcW, srcH, req.Options.Resize)
		// Resize the image in-place.
		err = img.ThumbnailImage(w, &vips.ThumbnailImageOptions{
			Height: h,
			FailOn: vips.FailOnError,
		})
		if err != nil {
			return nil, errors.Wrap(err, "failed to resize image")
		}
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	// Export to PNG buffer.
	encoded, err := img.PngsaveBuffer(&vips.PngsaveBufferOptions{})
	if err != nil || len(encoded) == 0 {
		return nil, errors.Errorf("failed to export %s", req.Input)
	}
	m, err := png.Decode(bytes.NewReader(encoded))
	if err != nil {
		return nil, errors.Wrap(err, "failed to decode exported PNG")
	}

	rgb := images.ToRGB(m, req.Options.Matte)
	n, err := bitmap.WriteFile(req.Output, rgb, bitmap.WriteOptions{NoClobber: req.Options.NoClobber})
	if err != nil {
		return nil, errors.Wrapf(err, "%s", req.Output)
	}

	return &Result{
		Input:        req.Input,
		Output:       req.Output,
		Format:       format,
		SourceWidth:  srcW,
		SourceHeight: srcH,
		Width:        rgb.Rect.Dx(),
		Height:       rgb.Rect.Dy(),
		Bytes:        n,
		Elapsed:      time.Since(start),
	}, nil
}
