package images

import (
	"image"
	"sort"

	"github.com/nfnt/resize"
	"github.com/pkg/errors"
)

// ErrUnknownFilter is returned for a resample filter name that is not in
// Filters.
var ErrUnknownFilter = errors.New("unknown resample filter")

// ResizeOptions describes an optional resample step.
type ResizeOptions struct {
	// Width is the target width. 0 derives it from Height keeping the aspect ratio.
	Width int `json:"width" yaml:"width"`
	// Height is the target height. 0 derives it from Width keeping the aspect ratio.
	Height int `json:"height" yaml:"height"`
	// Filter is the resample filter name, see Filters. Empty means lanczos3.
	Filter string `json:"filter" yaml:"filter"`
}

// Enabled reports whether any target dimension is set.
func (o ResizeOptions) Enabled() bool {
	return o.Width > 0 || o.Height > 0
}

// DefaultFilter is used when ResizeOptions.Filter is empty.
const DefaultFilter = "lanczos3"

var filters = map[string]resize.InterpolationFunction{
	"nearest":  resize.NearestNeighbor,
	"bilinear": resize.Bilinear,
	"bicubic":  resize.Bicubic,
	"mitchell": resize.MitchellNetravali,
	"lanczos2": resize.Lanczos2,
	"lanczos3": resize.Lanczos3,
}

// Filters returns the supported filter names, sorted.
func Filters() []string {
	names := make([]string, 0, len(filters))
	for name := range filters {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// LookupFilter resolves a filter name. The empty name resolves to DefaultFilter.
func LookupFilter(name string) (resize.InterpolationFunction, error) {
	if name == "" {
		name = DefaultFilter
	}
	f, ok := filters[name]
	if !ok {
		return 0, errors.Wrapf(ErrUnknownFilter, "%q", name)
	}
	return f, nil
}

// Resize resamples src according to opts. When opts is not Enabled src is
// returned unchanged.
//
// Arguments:
//   - src: The image to resize.
//   - opts: Target dimensions and filter.
//
// Returns:
//   - image.Image: The resized image.
//   - error: ErrUnknownFilter, or an error for negative dimensions.
func Resize(src image.Image, opts ResizeOptions) (image.Image, error) {
	if opts.Width < 0 || opts.Height < 0 {
		return nil, errors.Errorf("invalid dimensions: width=%d, height=%d", opts.Width, opts.Height)
	}
	if !opts.Enabled() {
		return src, nil
	}
	f, err := LookupFilter(opts.Filter)
	if err != nil {
		return nil, err
	}
	return resize.Resize(uint(opts.Width), uint(opts.Height), src, f), nil
}
