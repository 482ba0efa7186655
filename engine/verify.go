package engine

import (
	"io"
	"os"

	"github.com/nvr-ai/texconv/bitmap"
	"github.com/pkg/errors"
	"golang.org/x/image/bmp"
)

// ErrVerify is returned when a written bitmap does not match expectations.
var ErrVerify = errors.New("bitmap verification failed")

// Verify re-reads the bitmap at path and checks that it is an uncompressed
// 24-bit BMP of width x height that decodes cleanly.
func Verify(path string, width, height int) error {
	f, err := os.Open(path)
	if err != nil {
		return errors.Wrap(err, "failed to open output")
	}
	defer f.Close()

	h, err := bitmap.Inspect(f)
	if err != nil {
		return errors.Wrapf(ErrVerify, "%s: %v", path, err)
	}
	if !h.Is24Bit() {
		return errors.Wrapf(ErrVerify, "%s: %d bits per pixel, compression %s", path, h.Info.BitCount, h.CompressionName())
	}
	if h.Width() != width || h.Height() != height {
		return errors.Wrapf(ErrVerify, "%s: header reports %dx%d, want %dx%d", path, h.Width(), h.Height(), width, height)
	}

	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return errors.Wrap(err, "failed to rewind output")
	}
	m, err := bmp.Decode(f)
	if err != nil {
		return errors.Wrapf(ErrVerify, "%s: %v", path, err)
	}
	if b := m.Bounds(); b.Dx() != width || b.Dy() != height {
		return errors.Wrapf(ErrVerify, "%s: decoded %dx%d, want %dx%d", path, b.Dx(), b.Dy(), width, height)
	}
	return nil
}

// VerifyResult verifies the output of a conversion against its reported size.
func VerifyResult(r *Result) error {
	return Verify(r.Output, r.Width, r.Height)
}
