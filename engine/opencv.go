//go:build opencv

package engine

import (
	"context"
	"image"
	"log/slog"
	"os"
	"time"

	"github.com/nvr-ai/texconv/bitmap"
	"github.com/nvr-ai/texconv/images"
	"github.com/pkg/errors"
	"gocv.io/x/gocv"
)

// OpenCVName is the registry name of the OpenCV engine.
const OpenCVName = "opencv"

func init() {
	Register(OpenCVName, func(logger *slog.Logger) Engine {
		return &OpenCV{logger: logger}
	})
}

// OpenCV converts images with OpenCV's imgcodecs. It reads every format the
// local OpenCV build supports and always loads three 8-bit BGR channels, so
// the alpha channel is dropped on read.
type OpenCV struct {
	logger *slog.Logger
}

// Name returns the registry name of the engine.
func (e *OpenCV) Name() string { return OpenCVName }

var cvInterpolation = map[string]gocv.InterpolationFlags{
	"nearest":  gocv.InterpolationNearestNeighbor,
	"bilinear": gocv.InterpolationLinear,
	"bicubic":  gocv.InterpolationCubic,
	"mitchell": gocv.InterpolationCubic,
	"lanczos2": gocv.InterpolationLanczos4,
	"lanczos3": gocv.InterpolationLanczos4,
}

// Convert reads the input with IMRead, optionally resizes it and writes it
// with IMWrite.
func (e *OpenCV) Convert(ctx context.Context, req Request) (*Result, error) {
	start := time.Now()
	if err := req.Validate(); err != nil {
		return nil, err
	}
	if req.Options.Matte != nil {
		return nil, errors.Wrap(ErrUnsupportedOption, "matte")
	}
	if req.Options.NoClobber {
		if _, err := os.Lstat(req.Output); err == nil {
			return nil, errors.Wrapf(bitmap.ErrExists, "%s", req.Output)
		}
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	format := sniffFile(req.Input)
	mat := gocv.IMRead(req.Input, gocv.IMReadColor)
	if mat.Empty() {
		mat.Close()
		return nil, errors.Errorf("failed to decode %s", req.Input)
	}
	defer mat.Close()
	srcW, srcH := mat.Cols(), mat.Rows()
	e.logger.Debug("loaded source", "path", req.Input, "format", format, "width", srcW, "height", srcH)

	out := mat
	if req.Options.Resize.Enabled() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		w, h := targetSize(srcW, srcH, req.Options.Resize)
		if w <= 0 || h <= 0 {
			return nil, errors.Wrapf(images.ErrEmptyImage, "%s after resize", req.Input)
		}
		filter := req.Options.Resize.Filter
		if filter == "" {
			filter = images.DefaultFilter
		}
		resized := gocv.NewMat()
		defer resized.Close()
		gocv.Resize(mat, &resized, image.Point{X: w, Y: h}, 0, 0, cvInterpolation[filter])
		out = resized
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	// IMWrite truncates the reserved file, so it keeps the mode CreateTemp set.
	tmp, err := bitmap.CreateTemp(req.Output, 0)
	if err != nil {
		return nil, err
	}
	tmpName := tmp.Name()
	tmp.Close()
	defer os.Remove(tmpName)

	if !gocv.IMWrite(tmpName, out) {
		return nil, errors.Errorf("failed to encode %s", req.Output)
	}
	info, err := os.Stat(tmpName)
	if err != nil {
		return nil, errors.Wrap(err, "failed to stat output")
	}
	if err := os.Rename(tmpName, req.Output); err != nil {
		return nil, errors.Wrap(err, "failed to move output into place")
	}

	return &Result{
		Input:        req.Input,
		Output:       req.Output,
		Format:       format,
		SourceWidth:  srcW,
		SourceHeight: srcH,
		Width:        out.Cols(),
		Height:       out.Rows(),
		Bytes:        info.Size(),
		Elapsed:      time.Since(start),
	}, nil
}
