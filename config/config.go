// Package config - runtime configuration for texture conversion, loaded from
// defaults, an optional HCL file and command-line flags, in that order.
package config

import (
	"encoding/hex"
	"image/color"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/nvr-ai/texconv/images"
	"github.com/pkg/errors"
)

// Config holds every tunable of a conversion run.
type Config struct {
	// Engine is the conversion engine name.
	Engine string `json:"engine" yaml:"engine"`
	// TextureDir, when set, is the directory relative input and output paths
	// are resolved against.
	TextureDir string `json:"texture_dir" yaml:"texture_dir"`
	// Resize is the optional resample step.
	Resize images.ResizeOptions `json:"resize" yaml:"resize"`
	// Matte is a #rrggbb background for transparent pixels. Empty drops alpha.
	Matte string `json:"matte" yaml:"matte"`
	// Verify re-reads the written bitmap and checks its header and size.
	Verify bool `json:"verify" yaml:"verify"`
	// NoClobber refuses to replace an existing output file.
	NoClobber bool `json:"no_clobber" yaml:"no_clobber"`
	// LogLevel is one of debug, info, warn, error.
	LogLevel string `json:"log_level" yaml:"log_level"`
	// LogFormat is text or json.
	LogFormat string `json:"log_format" yaml:"log_format"`
}

// Default returns the configuration used when nothing is overridden.
func Default() Config {
	return Config{
		Engine:    "native",
		Resize:    images.ResizeOptions{Filter: images.DefaultFilter},
		LogLevel:  "info",
		LogFormat: "text",
	}
}

// fileConfig is the HCL shape of a config file. Pointer fields stay nil when
// the attribute is absent so the defaults survive.
type fileConfig struct {
	Engine     *string     `hcl:"engine,optional"`
	TextureDir *string     `hcl:"texture_dir,optional"`
	Matte      *string     `hcl:"matte,optional"`
	Verify     *bool       `hcl:"verify,optional"`
	NoClobber  *bool       `hcl:"no_clobber,optional"`
	LogLevel   *string     `hcl:"log_level,optional"`
	LogFormat  *string     `hcl:"log_format,optional"`
	Resize     *fileResize `hcl:"resize,block"`
}

type fileResize struct {
	Width  *int    `hcl:"width,optional"`
	Height *int    `hcl:"height,optional"`
	Filter *string `hcl:"filter,optional"`
}

// Load parses the HCL file at path over base.
//
// Arguments:
//   - path: Path to an .hcl file.
//   - base: The configuration the file's attributes override.
//
// Returns:
//   - Config: The merged configuration. It is not validated.
//   - error: A parse or decode error carrying the HCL diagnostics.
func Load(path string, base Config) (Config, error) {
	parser := hclparse.NewParser()
	file, diags := parser.ParseHCLFile(path)
	if diags.HasErrors() {
		return base, errors.Wrapf(diags, "failed to parse config file %s", path)
	}

	var fc fileConfig
	if diags := gohcl.DecodeBody(file.Body, nil, &fc); diags.HasErrors() {
		return base, errors.Wrapf(diags, "failed to decode config file %s", path)
	}

	cfg := base
	setString(&cfg.Engine, fc.Engine)
	setString(&cfg.TextureDir, fc.TextureDir)
	setString(&cfg.Matte, fc.Matte)
	setString(&cfg.LogLevel, fc.LogLevel)
	setString(&cfg.LogFormat, fc.LogFormat)
	if fc.Verify != nil {
		cfg.Verify = *fc.Verify
	}
	if fc.NoClobber != nil {
		cfg.NoClobber = *fc.NoClobber
	}
	if r := fc.Resize; r != nil {
		if r.Width != nil {
			cfg.Resize.Width = *r.Width
		}
		if r.Height != nil {
			cfg.Resize.Height = *r.Height
		}
		setString(&cfg.Resize.Filter, r.Filter)
	}
	// Relative texture directories are relative to the config file.
	if fc.TextureDir != nil && cfg.TextureDir != "" && !filepath.IsAbs(cfg.TextureDir) {
		cfg.TextureDir = filepath.Join(filepath.Dir(path), cfg.TextureDir)
	}
	return cfg, nil
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}

// Validate checks every field that can be checked without touching the file
// system. Engine names are checked by the engine registry.
func (c Config) Validate() error {
	if c.Engine == "" {
		return errors.New("engine must not be empty")
	}
	if c.Resize.Width < 0 || c.Resize.Height < 0 {
		return errors.Errorf("invalid resize dimensions: width=%d, height=%d", c.Resize.Width, c.Resize.Height)
	}
	if _, err := images.LookupFilter(c.Resize.Filter); err != nil {
		return err
	}
	if _, err := c.MatteColor(); err != nil {
		return err
	}
	if _, err := c.Level(); err != nil {
		return err
	}
	switch strings.ToLower(c.LogFormat) {
	case "text", "json":
	default:
		return errors.Errorf("invalid log format %q: must be 'text' or 'json'", c.LogFormat)
	}
	return nil
}

// MatteColor parses Matte. It returns nil when no matte is configured.
func (c Config) MatteColor() (color.Color, error) {
	if c.Matte == "" {
		return nil, nil
	}
	s := strings.TrimPrefix(c.Matte, "#")
	if len(s) != 6 {
		return nil, errors.Errorf("invalid matte %q: want #rrggbb", c.Matte)
	}
	b, err := hex.DecodeString(s)
	if err != nil {
		return nil, errors.Wrapf(err, "invalid matte %q", c.Matte)
	}
	return color.RGBA{R: b[0], G: b[1], B: b[2], A: 0xff}, nil
}

// Level parses LogLevel.
func (c Config) Level() (slog.Level, error) {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug, nil
	case "info", "":
		return slog.LevelInfo, nil
	case "warn":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return 0, errors.Errorf("invalid log level %q: must be 'debug', 'info', 'warn', or 'error'", c.LogLevel)
	}
}

// Resolve joins a relative path to TextureDir. Absolute paths, and all paths
// when TextureDir is empty, are returned unchanged.
func (c Config) Resolve(path string) string {
	if c.TextureDir == "" || path == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(c.TextureDir, path)
}
