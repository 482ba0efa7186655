package images

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func getTestImage() image.Image {
	// Create a simple 100x100 red image.
	img := image.NewRGBA(image.Rect(0, 0, 100, 100))
	for y := 0; y < 100; y++ {
		for x := 0; x < 100; x++ {
			img.Set(x, y, color.RGBA{R: 255, G: 0, B: 0, A: 255})
		}
	}

	return img
}

// TestResize validates the Resize function for resizing and error cases.
func TestResize(t *testing.T) {
	tests := []struct {
		name       string
		opts       ResizeOptions
		wantW      int
		wantH      int
		shouldFail bool
	}{
		{
			name:  "Both dimensions",
			opts:  ResizeOptions{Width: 64, Height: 32},
			wantW: 64, wantH: 32,
		},
		{
			name:  "Width only keeps aspect",
			opts:  ResizeOptions{Width: 50},
			wantW: 50, wantH: 50,
		},
		{
			name:  "Height only keeps aspect",
			opts:  ResizeOptions{Height: 25, Filter: "nearest"},
			wantW: 25, wantH: 25,
		},
		{
			name:  "Disabled is a no-op",
			opts:  ResizeOptions{},
			wantW: 100, wantH: 100,
		},
		{
			name:       "Negative dimensions",
			opts:       ResizeOptions{Width: -10, Height: 50},
			shouldFail: true,
		},
		{
			name:       "Unknown filter",
			opts:       ResizeOptions{Width: 10, Filter: "sinc"},
			shouldFail: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			img, err := Resize(getTestImage(), tt.opts)
			if tt.shouldFail {
				assert.Error(t, err, "Resize should fail")
				assert.Nil(t, img, "Image should be nil on error")
				return
			}
			require.NoError(t, err, "Resize should succeed")
			assert.Equal(t, tt.wantW, img.Bounds().Dx(), "Image should have correct width")
			assert.Equal(t, tt.wantH, img.Bounds().Dy(), "Image should have correct height")
		})
	}
}

func TestResizeKeepsColor(t *testing.T) {
	img, err := Resize(getTestImage(), ResizeOptions{Width: 10, Height: 10, Filter: "bilinear"})
	require.NoError(t, err)

	r, g, b, _ := img.At(5, 5).RGBA()
	assert.Equal(t, uint8(255), uint8(r>>8))
	assert.Equal(t, uint8(0), uint8(g>>8))
	assert.Equal(t, uint8(0), uint8(b>>8))
}

func TestLookupFilter(t *testing.T) {
	for _, name := range Filters() {
		_, err := LookupFilter(name)
		assert.NoError(t, err, "filter %s should resolve", name)
	}

	_, err := LookupFilter("")
	assert.NoError(t, err, "empty name should resolve to the default filter")

	_, err = LookupFilter("box")
	assert.ErrorIs(t, err, ErrUnknownFilter)
}
