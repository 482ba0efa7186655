package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/nvr-ai/texconv/config"
	"github.com/nvr-ai/texconv/engine"
	"github.com/nvr-ai/texconv/images"
	"github.com/nvr-ai/texconv/profiler"
	"github.com/nvr-ai/texconv/prompt"
	"github.com/pkg/errors"
)

// ExitError is an error that carries a specific exit code.
type ExitError struct {
	Code    int
	Message string
}

// Error implements the error interface for ExitError.
func (e *ExitError) Error() string {
	return e.Message
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := run(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr)
	stop()
	if err != nil {
		var exitErr *ExitError
		if errors.As(err, &exitErr) {
			fmt.Fprintln(os.Stderr, exitErr.Message)
			os.Exit(exitErr.Code)
		}
		fmt.Fprintln(os.Stderr, "texconv:", err)
		os.Exit(1)
	}
}

// run parses args, asks for any missing file names on stdin and converts one
// image. Prompts and the final "done" go to stdout, everything else to stderr.
func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("texconv", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() {
		fmt.Fprintf(stderr, `texconv - convert an image to a 24-bit BMP texture.

Usage:
  texconv [options] [INPUT [OUTPUT]]

File names not given as arguments or flags are asked for interactively.
Supported inputs (native engine): %s.
Engines: %s.

Options:
`, joinFormats(images.Formats()), strings.Join(engine.Names(), ", "))
		fs.PrintDefaults()
	}

	var (
		configPath = fs.String("config", "", "Path to an HCL config file.")
		engineName = fs.String("engine", "", "Conversion engine.")
		inPath     = fs.String("in", "", "Input image file.")
		outPath    = fs.String("out", "", "Output bitmap file (.bmp).")
		textureDir = fs.String("texture-dir", "", "Directory relative file names are resolved against.")
		width      = fs.Int("width", 0, "Resize to this width. 0 keeps the aspect ratio.")
		height     = fs.Int("height", 0, "Resize to this height. 0 keeps the aspect ratio.")
		filter     = fs.String("filter", "", "Resample filter: "+strings.Join(images.Filters(), ", ")+".")
		matte      = fs.String("matte", "", "Composite transparent pixels over this #rrggbb colour instead of dropping alpha.")
		verify     = fs.Bool("verify", false, "Re-read the written bitmap and check it.")
		noClobber  = fs.Bool("no-clobber", false, "Refuse to overwrite an existing output file.")
		logFormat  = fs.String("log-format", "", "Log output format: text or json.")
		verbose    = fs.Bool("v", false, "Enable debug logging.")
	)
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil
		}
		return &ExitError{Code: 2, Message: err.Error()}
	}
	if fs.NArg() > 2 {
		fs.Usage()
		return &ExitError{Code: 2, Message: "too many arguments"}
	}

	cfg := config.Default()
	if *configPath != "" {
		var err error
		if cfg, err = config.Load(*configPath, cfg); err != nil {
			return &ExitError{Code: 2, Message: err.Error()}
		}
	}
	// Only flags given on the command line override the config file.
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "engine":
			cfg.Engine = *engineName
		case "texture-dir":
			cfg.TextureDir = *textureDir
		case "width":
			cfg.Resize.Width = *width
		case "height":
			cfg.Resize.Height = *height
		case "filter":
			cfg.Resize.Filter = *filter
		case "matte":
			cfg.Matte = *matte
		case "verify":
			cfg.Verify = *verify
		case "no-clobber":
			cfg.NoClobber = *noClobber
		case "log-format":
			cfg.LogFormat = *logFormat
		case "v":
			if *verbose {
				cfg.LogLevel = "debug"
			}
		}
	})
	if err := cfg.Validate(); err != nil {
		return &ExitError{Code: 2, Message: err.Error()}
	}

	logger := newLogger(stderr, cfg)
	conv, err := engine.New(cfg.Engine, logger)
	if err != nil {
		return &ExitError{Code: 2, Message: err.Error()}
	}
	matteColor, _ := cfg.MatteColor()

	// Positional arguments fill whichever of -in and -out were not given.
	input, output := *inPath, *outPath
	rest := fs.Args()
	if input == "" && len(rest) > 0 {
		input, rest = rest[0], rest[1:]
	}
	if output == "" && len(rest) > 0 {
		output, rest = rest[0], rest[1:]
	}
	if len(rest) > 0 {
		fs.Usage()
		return &ExitError{Code: 2, Message: "too many arguments"}
	}
	p := prompt.New(stdin, stdout)
	if input == "" {
		if input, err = p.Ask(prompt.InputQuestion); err != nil {
			return err
		}
	}
	if output == "" {
		if output, err = p.Ask(prompt.OutputQuestion); err != nil {
			return err
		}
	}

	req := engine.Request{
		Input:  cfg.Resolve(input),
		Output: cfg.Resolve(output),
		Options: engine.Options{
			Resize:    cfg.Resize,
			Matte:     matteColor,
			NoClobber: cfg.NoClobber,
		},
	}
	logger.Debug("converting", "input", req.Input, "output", req.Output)

	res, err := conv.Convert(ctx, req)
	if err != nil {
		return err
	}
	if cfg.Verify {
		if err := engine.VerifyResult(res); err != nil {
			return err
		}
		logger.Debug("verified", "output", res.Output)
	}
	logger.Info("converted",
		"input", res.Input,
		"format", res.Format,
		"output", res.Output,
		"width", res.Width,
		"height", res.Height,
		"size", profiler.FormatBytes(uint64(res.Bytes)),
		"elapsed", res.Elapsed)

	fmt.Fprintln(stdout, "done")
	return nil
}

func newLogger(w io.Writer, cfg config.Config) *slog.Logger {
	level, _ := cfg.Level()
	opts := &slog.HandlerOptions{Level: level}
	if strings.EqualFold(cfg.LogFormat, "json") {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

func joinFormats(formats []images.ImageFormat) string {
	s := make([]string, len(formats))
	for i, f := range formats {
		s[i] = string(f)
	}
	return strings.Join(s, ", ")
}
