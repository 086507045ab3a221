// Command generate-dfield converts a bitmap into a .dfield signed
// distance field.
//
// Usage:
//
//	generate-dfield [flags] OUTPUT_FILE INPUT_FILE
//
// The input is a raw headerless bitmap (one byte per pixel, nonzero is
// set), a netpbm bitmap (.pbm) or an image in any format imageio decodes.
// Raw inputs need -I or --input-width/--input-height; other inputs take
// their size from the file.
package main

import (
	"errors"
	"flag"
	"fmt"
	"image"
	"io"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/gogpu/dfield"
	"github.com/gogpu/dfield/imageio"
)

// Exit codes.
const (
	exitOK    = 0
	exitError = 1
	exitUsage = 2
)

func main() {
	os.Exit(run(os.Args[1:], os.Stderr))
}

// sizeFlag is a flag.Value accepting integers in [1, MaxInt32], in any
// base strconv recognises ("0x100" is 256).
type sizeFlag struct {
	n *int
}

func (s sizeFlag) String() string {
	if s.n == nil || *s.n == 0 {
		return ""
	}
	return strconv.Itoa(*s.n)
}

func (s sizeFlag) Set(v string) error {
	n, err := strconv.ParseUint(v, 0, 32)
	if err != nil || n == 0 || n > math.MaxInt32 {
		return fmt.Errorf("want an integer in [1, %d]", math.MaxInt32)
	}
	*s.n = int(n)
	return nil
}

// pairFlag sets both components of a size at once, as -O and -I do.
type pairFlag struct {
	w, h *int
}

func (p pairFlag) String() string { return "" }

func (p pairFlag) Set(v string) error {
	if err := (sizeFlag{p.w}).Set(v); err != nil {
		return err
	}
	*p.h = *p.w
	return nil
}

type config struct {
	output, input string
	outW, outH    int
	inW, inH      int
	spread        int
	format        string
	threshold     uint
	invert, debug bool
}

// parseArgs parses the command line. Flags apply in order, so a later
// --output-width overrides the width set by an earlier -O.
func parseArgs(args []string, stderr io.Writer) (config, error) {
	var c config
	fs := flag.NewFlagSet("generate-dfield", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() {
		fmt.Fprintln(stderr, "Usage: generate-dfield [flags] OUTPUT_FILE INPUT_FILE")
		fs.PrintDefaults()
	}

	for _, name := range []string{"O", "output-size"} {
		fs.Var(pairFlag{&c.outW, &c.outH}, name, "output width and height")
	}
	for _, name := range []string{"I", "input-size"} {
		fs.Var(pairFlag{&c.inW, &c.inH}, name, "input width and height (raw input only)")
	}
	for _, name := range []string{"S", "spread"} {
		fs.Var(sizeFlag{&c.spread}, name, "search radius in input pixels (required)")
	}
	fs.Var(sizeFlag{&c.outW}, "output-width", "output width")
	fs.Var(sizeFlag{&c.outH}, "output-height", "output height")
	fs.Var(sizeFlag{&c.inW}, "input-width", "input width")
	fs.Var(sizeFlag{&c.inH}, "input-height", "input height")
	fs.StringVar(&c.format, "format", "auto", "input format: raw, image, pbm or auto")
	fs.UintVar(&c.threshold, "threshold", 127, "luma above which an image pixel is set (0-255, image input only)")
	fs.BoolVar(&c.invert, "invert", false, "swap set and unset pixels (for images, dark pixels become set)")
	fs.BoolVar(&c.debug, "v", false, "log debug output")

	if err := fs.Parse(args); err != nil {
		return c, err
	}
	if fs.NArg() != 2 {
		fs.Usage()
		return c, errors.New("expected OUTPUT_FILE and INPUT_FILE")
	}
	c.output, c.input = fs.Arg(0), fs.Arg(1)

	switch {
	case c.outW == 0 || c.outH == 0:
		return c, errors.New("output size not specified (no default)")
	case c.spread == 0:
		return c, errors.New("spread not specified (no default)")
	case c.threshold > math.MaxUint8:
		return c, fmt.Errorf("threshold %d out of range [0, 255]", c.threshold)
	}

	c.format = strings.ToLower(c.format)
	if c.format == "auto" {
		c.format = detectFormat(c.input)
	}
	switch c.format {
	case "raw":
		if c.inW == 0 || c.inH == 0 {
			return c, errors.New("input size not specified (required for raw input)")
		}
	case "image", "pbm":
	default:
		return c, fmt.Errorf("unknown format %q", c.format)
	}

	if c.format != "image" && flagSet(fs, "threshold") {
		return c, fmt.Errorf("--threshold applies only to image input, not %s", c.format)
	}
	return c, nil
}

func flagSet(fs *flag.FlagSet, name string) bool {
	found := false
	fs.Visit(func(f *flag.Flag) {
		if f.Name == name {
			found = true
		}
	})
	return found
}

// detectFormat picks an input format from the file extension.
func detectFormat(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".pbm":
		return "pbm"
	case ".png", ".jpg", ".jpeg", ".gif", ".bmp", ".tif", ".tiff", ".webp":
		return "image"
	default:
		return "raw"
	}
}

func run(args []string, stderr io.Writer) int {
	c, err := parseArgs(args, stderr)
	if errors.Is(err, flag.ErrHelp) {
		return exitOK
	}

	level := slog.LevelInfo
	if c.debug {
		level = slog.LevelDebug
	}
	log := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))

	if err != nil {
		log.Error("invalid arguments", "err", err)
		return exitUsage
	}

	src, err := loadInput(c)
	if err != nil {
		log.Error("reading input failed", "path", c.input, "kind", errorKind(err), "err", err)
		return exitError
	}
	log.Debug("input loaded", "path", c.input, "format", c.format, "width", src.Width, "height", src.Height)

	f, err := dfield.Generate(src, c.outW, c.outH, c.spread)
	if err != nil {
		log.Error("generating field failed", "kind", errorKind(err), "err", err)
		return exitError
	}
	if err := dfield.Save(c.output, f); err != nil {
		log.Error("saving field failed", "path", c.output, "kind", errorKind(err), "err", err)
		return exitError
	}
	log.Debug("field saved", "path", c.output, "width", f.Width(), "height", f.Height(), "spread", c.spread)
	return exitOK
}

func loadInput(c config) (dfield.Bitmap, error) {
	opts := imageio.Options{Threshold: uint8(c.threshold), Invert: c.invert} //nolint:gosec // checked in parseArgs

	var (
		bm  dfield.Bitmap
		err error
	)
	switch c.format {
	case "raw":
		bm, err = dfield.LoadBitmap(c.input, c.inW, c.inH)
	case "pbm":
		bm, err = loadPBM(c.input)
	default:
		bm, err = imageio.LoadBitmap(c.input, opts)
	}
	if err != nil {
		return dfield.Bitmap{}, err
	}
	// Images apply Invert while thresholding.
	if c.invert && c.format != "image" {
		invert(bm)
	}

	if (c.inW != 0 && c.inW != bm.Width) || (c.inH != 0 && c.inH != bm.Height) {
		return dfield.Bitmap{}, &dfield.ParamError{
			Param: "input size",
			Value: c.inW,
			Err: fmt.Errorf("%w: file is %dx%d, flags ask for %dx%d",
				dfield.ErrInvalidInputSize, bm.Width, bm.Height, c.inW, c.inH),
		}
	}
	return bm, nil
}

// invert swaps set and unset pixels in place.
func invert(bm dfield.Bitmap) {
	for i := range bm.Pix[:bm.Width*bm.Height] {
		if bm.Pix[i] != 0 {
			bm.Pix[i] = 0
		} else {
			bm.Pix[i] = 255
		}
	}
}

// loadPBM decodes path as netpbm whatever its extension.
func loadPBM(path string) (dfield.Bitmap, error) {
	f, err := os.Open(filepath.Clean(path))
	if err != nil {
		return dfield.Bitmap{}, &dfield.IOError{Op: "open", Path: path, Err: err}
	}
	defer f.Close()
	return imageio.DecodePBM(f)
}

// errorKind names the class of err for log output.
func errorKind(err error) string {
	var (
		ioErr     *dfield.IOError
		formatErr *dfield.FormatError
		paramErr  *dfield.ParamError
	)
	switch {
	case errors.As(err, &ioErr):
		return "io"
	case errors.As(err, &formatErr):
		return "format"
	case errors.As(err, &paramErr):
		return "parameter"
	case errors.Is(err, image.ErrFormat), errors.Is(err, imageio.ErrNotPBM),
		errors.Is(err, imageio.ErrPBMSyntax), errors.Is(err, imageio.ErrTooLarge):
		return "format"
	default:
		return "other"
	}
}
