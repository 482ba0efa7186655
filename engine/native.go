package engine

import (
	"context"
	"image"
	"image/color"
	"log/slog"
	"time"

	"github.com/nvr-ai/texconv/bitmap"
	"github.com/nvr-ai/texconv/images"
	"github.com/nvr-ai/texconv/profiler"
	"github.com/pkg/errors"
)

// NativeName is the registry name of the pure Go engine.
const NativeName = "native"

func init() {
	Register(NativeName, func(logger *slog.Logger) Engine {
		return &Native{logger: logger}
	})
}

// Native converts images with Go codecs only and needs no system libraries.
type Native struct {
	logger *slog.Logger
}

// Name returns the registry name of the engine.
func (e *Native) Name() string { return NativeName }

// Convert loads, decodes, converts to RGB, optionally resizes and writes the
// bitmap. The context is checked between steps.
func (e *Native) Convert(ctx context.Context, req Request) (*Result, error) {
	start := time.Now()
	if err := req.Validate(); err != nil {
		return nil, err
	}

	var stages profiler.Stages

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	done := stages.Start("load")
	src, err := images.Load(req.Input)
	done()
	if err != nil {
		return nil, err
	}
	e.logger.Debug("loaded source",
		"path", req.Input, "format", src.Format, "width", src.Width, "height", src.Height, "bytes", len(src.Data))

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	done = stages.Start("decode")
	m, err := src.Decode()
	done()
	if err != nil {
		return nil, errors.Wrapf(err, "%s", req.Input)
	}
	// Release the encoded bytes before the raster copies are made.
	src.Data = nil

	// Alpha is dropped or composited before resampling so the filter never
	// sees premultiplied transparent pixels.
	done = stages.Start("convert")
	rgb := toRGB(m, req.Options.Matte)
	done()

	if req.Options.Resize.Enabled() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		done = stages.Start("resize")
		resized, err := images.Resize(rgb, req.Options.Resize)
		if err == nil {
			rgb = toRGB(resized, nil)
		}
		done()
		if err != nil {
			return nil, err
		}
		e.logger.Debug("resized", "width", rgb.Rect.Dx(), "height", rgb.Rect.Dy(), "filter", req.Options.Resize.Filter)
	}
	if rgb.Rect.Empty() {
		return nil, errors.Wrapf(images.ErrEmptyImage, "%s after resize", req.Input)
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	done = stages.Start("encode")
	n, err := bitmap.WriteFile(req.Output, rgb, bitmap.WriteOptions{NoClobber: req.Options.NoClobber})
	done()
	if err != nil {
		return nil, errors.Wrapf(err, "%s", req.Output)
	}

	res := &Result{
		Input:        req.Input,
		Output:       req.Output,
		Format:       src.Format,
		SourceWidth:  src.Width,
		SourceHeight: src.Height,
		Width:        rgb.Rect.Dx(),
		Height:       rgb.Rect.Dy(),
		Bytes:        n,
		Elapsed:      time.Since(start),
		Stages:       stages.List(),
	}
	e.logger.Debug("wrote bitmap", "path", res.Output, "bytes", res.Bytes, "stages", &stages)
	return res, nil
}

// toRGB returns m itself when it already is an opaque RGB raster.
func toRGB(m image.Image, matte color.Color) *image.RGBA {
	if matte == nil && images.IsRGB(m) {
		return m.(*image.RGBA)
	}
	return images.ToRGB(m, matte)
}
