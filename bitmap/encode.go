// Package bitmap writes and inspects the 24-bit uncompressed BMP files used as
// renderer textures.
package bitmap

import (
	"bufio"
	"image"
	"io"
	"math/rand/v2"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"golang.org/x/image/bmp"
)

var (
	// ErrNotOpaque is returned when the raster has translucent pixels, which
	// would make the encoder emit a 32-bit bitmap.
	ErrNotOpaque = errors.New("raster is not opaque")
	// ErrEmptyImage is returned for rasters with zero width or height.
	ErrEmptyImage = errors.New("raster has no pixels")
	// ErrExists is returned by WriteFile with NoClobber when the path exists.
	ErrExists = errors.New("output file already exists")
)

// Encode writes m as a 24-bit uncompressed BMP.
func Encode(w io.Writer, m *image.RGBA) error {
	if m.Rect.Empty() {
		return ErrEmptyImage
	}
	if !m.Opaque() {
		return ErrNotOpaque
	}
	if err := bmp.Encode(w, m); err != nil {
		return errors.Wrap(err, "failed to encode bitmap")
	}
	return nil
}

// WriteOptions configures WriteFile.
type WriteOptions struct {
	// NoClobber refuses to replace an existing file.
	NoClobber bool
	// Perm is the mode of a newly created file before the umask. Zero keeps
	// the mode of the file being replaced, or 0644 for a new one.
	Perm os.FileMode
}

// WriteFile encodes m into path. The bitmap is written to a temporary file in
// the same directory and renamed over path once complete, so a failure never
// leaves a partial file behind.
//
// Arguments:
//   - path: Destination file path.
//   - m: Opaque raster to encode.
//   - opts: Overwrite policy and file mode.
//
// Returns:
//   - int64: The number of bytes written.
//   - error: ErrExists, ErrNotOpaque, ErrEmptyImage or an I/O error.
func WriteFile(path string, m *image.RGBA, opts WriteOptions) (int64, error) {
	if opts.NoClobber {
		if _, err := os.Lstat(path); err == nil {
			return 0, errors.Wrapf(ErrExists, "%s", path)
		} else if !os.IsNotExist(err) {
			return 0, errors.Wrap(err, "failed to stat output")
		}
	}

	tmp, err := CreateTemp(path, opts.Perm)
	if err != nil {
		return 0, err
	}
	tmpName := tmp.Name()
	defer func() {
		// No-op once the rename succeeded.
		_ = os.Remove(tmpName)
	}()

	bw := bufio.NewWriter(tmp)
	if err := Encode(bw, m); err != nil {
		tmp.Close()
		return 0, err
	}
	if err := bw.Flush(); err != nil {
		tmp.Close()
		return 0, errors.Wrap(err, "failed to write output")
	}
	info, err := tmp.Stat()
	if err != nil {
		tmp.Close()
		return 0, errors.Wrap(err, "failed to stat output")
	}
	if err := tmp.Close(); err != nil {
		return 0, errors.Wrap(err, "failed to close output")
	}
	if err := os.Rename(tmpName, path); err != nil {
		return 0, errors.Wrap(err, "failed to move output into place")
	}
	return info.Size(), nil
}

// CreateTemp creates a hidden temporary file next to path for a write that is
// later renamed over path. A zero perm keeps the mode of an existing file at
// path and otherwise uses 0644. The process umask applies to new modes, as it
// does for os.Create.
func CreateTemp(path string, perm os.FileMode) (*os.File, error) {
	var keep os.FileMode
	if perm == 0 {
		perm = 0o644
		if info, err := os.Stat(path); err == nil && info.Mode().IsRegular() {
			keep = info.Mode().Perm()
		}
	}

	// The temporary name keeps the extension for encoders that pick the
	// format from it.
	dir, base := filepath.Split(path)
	ext := filepath.Ext(base)
	stem := strings.TrimSuffix(base, ext)
	for try := 0; ; try++ {
		name := filepath.Join(dir, "."+stem+"-"+strconv.FormatUint(rand.Uint64(), 36)+ext)
		f, err := os.OpenFile(name, os.O_RDWR|os.O_CREATE|os.O_EXCL, perm)
		if os.IsExist(err) && try < 100 {
			continue
		}
		if err != nil {
			return nil, errors.Wrap(err, "failed to create output")
		}
		if keep != 0 {
			if err := f.Chmod(keep); err != nil {
				f.Close()
				os.Remove(name)
				return nil, errors.Wrap(err, "failed to set output mode")
			}
		}
		return f, nil
	}
}
