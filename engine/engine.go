// Package engine - conversion engines that turn a source image into a 24-bit
// BMP texture, and the registry used to select one by name.
package engine

import (
	"context"
	"image/color"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/nvr-ai/texconv/images"
	"github.com/nvr-ai/texconv/profiler"
	"github.com/pkg/errors"
)

var (
	// ErrUnknownEngine is returned by New for a name that was never registered.
	ErrUnknownEngine = errors.New("unknown engine")
	// ErrOutputExtension is returned when the output path does not end in .bmp.
	ErrOutputExtension = errors.New("output file must have a .bmp extension")
	// ErrSamePath is returned when input and output name the same file.
	ErrSamePath = errors.New("input and output are the same file")
	// ErrNoInput is returned for an empty input path.
	ErrNoInput = errors.New("no input file given")
	// ErrUnsupportedOption is returned when an engine cannot honour an option.
	ErrUnsupportedOption = errors.New("option not supported by engine")
)

// Engine converts one source image into a 24-bit BMP.
type Engine interface {
	// Name returns the registry name of the engine.
	Name() string
	// Convert runs the whole decode, convert, encode sequence for req.
	Convert(ctx context.Context, req Request) (*Result, error)
}

// Options are the optional processing steps applied between decode and encode.
type Options struct {
	// Resize is an optional resample step.
	Resize images.ResizeOptions
	// Matte, when set, is the background transparent pixels are composited
	// over. When nil alpha is simply dropped.
	Matte color.Color
	// NoClobber refuses to replace an existing output file.
	NoClobber bool
}

// Request names the files of one conversion.
type Request struct {
	// Input is the source image path.
	Input string
	// Output is the destination bitmap path.
	Output string
	// Options are the processing options.
	Options Options
}

// Result describes a completed conversion.
type Result struct {
	// Input is the source image path.
	Input string
	// Output is the written bitmap path.
	Output string
	// Format is the detected source format, empty if the engine decoded a
	// format images.Detect does not know.
	Format images.ImageFormat
	// SourceWidth and SourceHeight are the decoded source dimensions.
	SourceWidth  int
	SourceHeight int
	// Width and Height are the dimensions of the written bitmap.
	Width  int
	Height int
	// Bytes is the size of the written file.
	Bytes int64
	// Elapsed is the wall time of the conversion.
	Elapsed time.Duration
	// Stages holds per-step timings when the engine records them.
	Stages []profiler.Stage
}

// Validate checks the paths of the request.
func (r Request) Validate() error {
	if strings.TrimSpace(r.Input) == "" {
		return ErrNoInput
	}
	if !strings.EqualFold(filepath.Ext(r.Output), ".bmp") {
		return errors.Wrapf(ErrOutputExtension, "%q", r.Output)
	}
	in, err := filepath.Abs(r.Input)
	if err != nil {
		return errors.Wrap(err, "failed to resolve input path")
	}
	out, err := filepath.Abs(r.Output)
	if err != nil {
		return errors.Wrap(err, "failed to resolve output path")
	}
	if in == out {
		return errors.Wrapf(ErrSamePath, "%s", in)
	}
	if r.Options.Resize.Width < 0 || r.Options.Resize.Height < 0 {
		return errors.Errorf("invalid dimensions: width=%d, height=%d", r.Options.Resize.Width, r.Options.Resize.Height)
	}
	if _, err := images.LookupFilter(r.Options.Resize.Filter); err != nil {
		return err
	}
	return nil
}

// Factory builds an engine that logs to logger.
type Factory func(logger *slog.Logger) Engine

var (
	registryMu sync.RWMutex
	registry   = map[string]Factory{}
)

// Register makes an engine available under name. It panics on a duplicate
// name, like the standard library's driver registries.
func Register(name string, f Factory) {
	registryMu.Lock()
	defer registryMu.Unlock()
	if _, dup := registry[name]; dup {
		panic("engine: Register called twice for " + name)
	}
	registry[name] = f
}

// New creates the engine registered under name.
//
// Arguments:
//   - name: The engine name, see Names.
//   - logger: Logger for the engine. nil uses slog.Default().
//
// Returns:
//   - Engine: The engine.
//   - error: ErrUnknownEngine if name is not registered.
func New(name string, logger *slog.Logger) (Engine, error) {
	registryMu.RLock()
	f, ok := registry[name]
	registryMu.RUnlock()
	if !ok {
		return nil, errors.Wrapf(ErrUnknownEngine, "%q (available: %s)", name, strings.Join(Names(), ", "))
	}
	if logger == nil {
		logger = slog.Default()
	}
	return f(logger.With("engine", name)), nil
}

// Names returns the registered engine names, sorted.
func Names() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// targetSize computes the resize target for a w x h source. A zero dimension
// follows the aspect ratio, rounded the way nfnt/resize rounds it.
func targetSize(w, h int, o images.ResizeOptions) (int, int) {
	switch {
	case !o.Enabled():
		return w, h
	case o.Width > 0 && o.Height > 0:
		return o.Width, o.Height
	case o.Width > 0:
		return o.Width, int(0.7 + float64(h)*float64(o.Width)/float64(w))
	default:
		return int(0.7 + float64(w)*float64(o.Height)/float64(h)), o.Height
	}
}

// sniffFile detects the format of the file at path, returning "" when it is
// unreadable or unknown.
func sniffFile(path string) images.ImageFormat {
	f, err := os.Open(path)
	if err != nil {
		return ""
	}
	defer f.Close()

	buf := make([]byte, 12)
	n, _ := io.ReadFull(f, buf)
	format, err := images.Detect(buf[:n])
	if err != nil {
		return ""
	}
	return format
}
