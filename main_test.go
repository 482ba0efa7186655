package main

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/nvr-ai/texconv/bitmap"
	"github.com/nvr-ai/texconv/engine"
	"github.com/nvr-ai/texconv/prompt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTestPNG(t *testing.T, path string, w, h int) {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, color.NRGBA{R: 200, G: 100, B: 50, A: uint8(255 - x)})
		}
	}
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()
	require.NoError(t, png.Encode(f, img))
}

func inspect(t *testing.T, path string) bitmap.Header {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	h, err := bitmap.Inspect(f)
	require.NoError(t, err)
	return h
}

// TestRun_Interactive covers the plain workflow: two prompted file names,
// then "done".
func TestRun_Interactive(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "brick.png")
	out := filepath.Join(dir, "brick.bmp")
	writeTestPNG(t, in, 12, 7)

	stdin := strings.NewReader(in + "\n" + out + "\n")
	var stdout, stderr bytes.Buffer

	err := run(context.Background(), nil, stdin, &stdout, &stderr)
	require.NoError(t, err, stderr.String())

	assert.Equal(t, prompt.InputQuestion+prompt.OutputQuestion+"done\n", stdout.String())
	h := inspect(t, out)
	assert.True(t, h.Is24Bit())
	assert.Equal(t, 12, h.Width())
	assert.Equal(t, 7, h.Height())
}

func TestRun_Arguments(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "sky.png")
	out := filepath.Join(dir, "sky.bmp")
	writeTestPNG(t, in, 40, 20)

	var stdout, stderr bytes.Buffer
	err := run(context.Background(), []string{"-width", "10", "-verify", "-v", in, out}, strings.NewReader(""), &stdout, &stderr)
	require.NoError(t, err, stderr.String())

	assert.Equal(t, "done\n", stdout.String(), "no prompts when both names are given")
	assert.Contains(t, stderr.String(), "level=DEBUG")
	h := inspect(t, out)
	assert.Equal(t, 10, h.Width())
	assert.Equal(t, 5, h.Height())
}

func TestRun_PromptsForMissingOutput(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "a.png")
	writeTestPNG(t, in, 3, 3)

	var stdout, stderr bytes.Buffer
	err := run(context.Background(), []string{"-in", in}, strings.NewReader(filepath.Join(dir, "a.bmp")+"\n"), &stdout, &stderr)
	require.NoError(t, err, stderr.String())
	assert.Equal(t, prompt.OutputQuestion+"done\n", stdout.String())
}

func TestRun_FlagAndPositional(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "a.png")
	out := filepath.Join(dir, "a.bmp")
	writeTestPNG(t, in, 3, 3)

	var stdout, stderr bytes.Buffer
	err := run(context.Background(), []string{"-in", in, out}, strings.NewReader(""), &stdout, &stderr)
	require.NoError(t, err, stderr.String())
	assert.Equal(t, "done\n", stdout.String(), "positional argument fills the missing output")
	assert.True(t, inspect(t, out).Is24Bit())

	in2 := filepath.Join(dir, "b.png")
	out2 := filepath.Join(dir, "b.bmp")
	writeTestPNG(t, in2, 3, 3)
	stdout.Reset()
	err = run(context.Background(), []string{"-out", out2, in2}, strings.NewReader(""), &stdout, &stderr)
	require.NoError(t, err, stderr.String())
	assert.Equal(t, "done\n", stdout.String(), "positional argument fills the missing input")
	assert.Equal(t, 3, inspect(t, out2).Width())
}

func TestRun_ConfigAndTextureDir(t *testing.T) {
	dir := t.TempDir()
	textures := filepath.Join(dir, "texture")
	require.NoError(t, os.Mkdir(textures, 0o755))
	writeTestPNG(t, filepath.Join(textures, "wood.png"), 8, 8)

	cfgPath := filepath.Join(dir, "texconv.hcl")
	require.NoError(t, os.WriteFile(cfgPath, []byte(`
texture_dir = "texture"
matte       = "#000000"
log_format  = "json"
resize {
  height = 4
}
`), 0o600))

	var stdout, stderr bytes.Buffer
	err := run(context.Background(), []string{"-config", cfgPath, "-height", "2", "wood.png", "wood.bmp"},
		strings.NewReader(""), &stdout, &stderr)
	require.NoError(t, err, stderr.String())

	h := inspect(t, filepath.Join(textures, "wood.bmp"))
	assert.Equal(t, 2, h.Height(), "flag overrides the config file")
	assert.Equal(t, 2, h.Width())
	assert.Contains(t, stderr.String(), `"msg":"converted"`)
}

func TestRun_Errors(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "a.png")
	writeTestPNG(t, in, 3, 3)

	tests := []struct {
		name     string
		args     []string
		stdin    string
		wantCode int
		wantErr  error
	}{
		{name: "Unknown flag", args: []string{"-colour"}, wantCode: 2},
		{name: "Too many arguments", args: []string{"a", "b", "c"}, wantCode: 2},
		{name: "Extra positional argument", args: []string{"-in", in, "-out", filepath.Join(dir, "x.bmp"), "y.bmp"}, wantCode: 2},
		{name: "Unknown engine", args: []string{"-engine", "gimp", in, filepath.Join(dir, "x.bmp")}, wantCode: 2},
		{name: "Bad filter", args: []string{"-filter", "sinc", in, filepath.Join(dir, "x.bmp")}, wantCode: 2},
		{name: "Missing config", args: []string{"-config", filepath.Join(dir, "none.hcl")}, wantCode: 2},
		{name: "Wrong extension", args: []string{in, filepath.Join(dir, "x.png")}, wantErr: engine.ErrOutputExtension},
		{name: "Missing input", args: []string{filepath.Join(dir, "nope.png"), filepath.Join(dir, "x.bmp")}, wantErr: os.ErrNotExist},
		{name: "No answer", stdin: "", wantErr: prompt.ErrNoAnswer},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var stdout, stderr bytes.Buffer
			err := run(context.Background(), tt.args, strings.NewReader(tt.stdin), &stdout, &stderr)
			require.Error(t, err)
			if tt.wantCode != 0 {
				var exitErr *ExitError
				require.ErrorAs(t, err, &exitErr)
				assert.Equal(t, tt.wantCode, exitErr.Code)
			}
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			}
			assert.NotContains(t, stdout.String(), "done")
		})
	}
}

func TestRun_Help(t *testing.T) {
	var stdout, stderr bytes.Buffer
	err := run(context.Background(), []string{"-h"}, strings.NewReader(""), &stdout, &stderr)
	require.NoError(t, err)
	assert.Contains(t, stderr.String(), "Usage:")
	assert.Contains(t, stderr.String(), "native")
	assert.Empty(t, stdout.String())
}
