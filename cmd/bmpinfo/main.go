// Command bmpinfo prints the header summary of BMP files and whether each one
// is a 24-bit texture.
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/nvr-ai/texconv/bitmap"
	"github.com/pkg/errors"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintf(os.Stderr, "Usage: bmpinfo FILE.bmp...\n")
		os.Exit(2)
	}
	if failed := report(os.Stdout, os.Stderr, os.Args[1:]); failed > 0 {
		os.Exit(1)
	}
}

// report describes every file on w and returns the number of files that could
// not be read.
func report(w, errW io.Writer, paths []string) int {
	failed := 0
	for _, path := range paths {
		h, err := inspectFile(path)
		if err != nil {
			fmt.Fprintf(errW, "%s: %v\n", path, err)
			failed++
			continue
		}
		orientation := "bottom-up"
		if h.TopDown() {
			orientation = "top-down"
		}
		texture := "no"
		if h.Is24Bit() {
			texture = "yes"
		}
		fmt.Fprintf(w, "%s: %dx%d, %d bpp, compression %s, %s, 24-bit texture: %s\n",
			path, h.Width(), h.Height(), h.Info.BitCount, h.CompressionName(), orientation, texture)
	}
	return failed
}

func inspectFile(path string) (bitmap.Header, error) {
	f, err := os.Open(path)
	if err != nil {
		return bitmap.Header{}, errors.Wrap(err, "failed to open")
	}
	defer f.Close()
	return bitmap.Inspect(f)
}
