// Command dfield-inspect prints a summary of .dfield files and can export
// a preview image.
//
// Usage:
//
//	dfield-inspect [--png OUT.png] [--heatmap] FILE...
package main

import (
	"errors"
	"flag"
	"fmt"
	"image"
	"io"
	"math"
	"os"
	"strconv"

	"github.com/charmbracelet/lipgloss"

	"github.com/gogpu/dfield"
	"github.com/gogpu/dfield/imageio"
)

const (
	exitOK    = 0
	exitError = 1
	exitUsage = 2
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

// summary describes the samples of one field.
type summary struct {
	Width, Height int
	Min, Max      int8

	// Inside, Outside and Boundary count negative, positive and zero
	// samples.
	Inside, Outside, Boundary int

	// Saturated counts samples at ±127, and -128 if a file holds it.
	Saturated int
}

func summarize(f *dfield.Field) summary {
	s := summary{
		Width:  f.Width(),
		Height: f.Height(),
		Min:    math.MaxInt8,
		Max:    math.MinInt8,
	}
	for _, v := range f.Data() {
		s.Min = min(s.Min, v)
		s.Max = max(s.Max, v)
		switch {
		case v < 0:
			s.Inside++
		case v > 0:
			s.Outside++
		default:
			s.Boundary++
		}
		if v == 127 || v <= -127 {
			s.Saturated++
		}
	}
	return s
}

// SaturatedFraction returns the share of samples at ±127.
func (s summary) SaturatedFraction() float64 {
	n := s.Width * s.Height
	if n == 0 {
		return 0
	}
	return float64(s.Saturated) / float64(n)
}

type styles struct {
	title, label, value, warn lipgloss.Style
}

func newStyles(w io.Writer) styles {
	r := lipgloss.NewRenderer(w)
	return styles{
		title: r.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1),
		label: r.NewStyle().
			Foreground(lipgloss.Color("#666666")).
			Width(12),
		value: r.NewStyle().
			Foreground(lipgloss.Color("#87CEEB")),
		warn: r.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B")),
	}
}

func (st styles) render(path string, s summary) string {
	row := func(label, value string) string {
		return lipgloss.JoinHorizontal(lipgloss.Top, st.label.Render(label), st.value.Render(value))
	}
	return lipgloss.JoinVertical(lipgloss.Left,
		st.title.Render(path),
		row("size", fmt.Sprintf("%dx%d", s.Width, s.Height)),
		row("range", fmt.Sprintf("%d..%d", s.Min, s.Max)),
		row("inside", strconv.Itoa(s.Inside)),
		row("outside", strconv.Itoa(s.Outside)),
		row("boundary", strconv.Itoa(s.Boundary)),
		row("saturated", fmt.Sprintf("%.1f%%", 100*s.SaturatedFraction())),
	)
}

func run(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("dfield-inspect", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() {
		fmt.Fprintln(stderr, "Usage: dfield-inspect [--png OUT.png] [--heatmap] FILE...")
		fs.PrintDefaults()
	}
	pngPath := fs.String("png", "", "write a preview of FILE to this PNG")
	heatmap := fs.Bool("heatmap", false, "colour the preview instead of grayscale")

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return exitOK
		}
		return exitUsage
	}
	if fs.NArg() == 0 || (*pngPath != "" && fs.NArg() != 1) {
		fs.Usage()
		return exitUsage
	}

	st := newStyles(stdout)
	errSt := newStyles(stderr)
	code := exitOK
	for i, path := range fs.Args() {
		f, err := dfield.Load(path)
		if err != nil {
			fmt.Fprintln(stderr, errSt.warn.Render(err.Error()))
			if dfield.IsLegacy(err) {
				fmt.Fprintln(stderr, "  file looks like a headerless field; regenerate it with generate-dfield")
			}
			code = exitError
			continue
		}
		if i > 0 {
			fmt.Fprintln(stdout)
		}
		fmt.Fprintln(stdout, st.render(path, summarize(f)))

		if *pngPath != "" {
			var img image.Image = imageio.Gray(f)
			if *heatmap {
				img = imageio.Heatmap(f, imageio.DefaultInside, imageio.DefaultOutside)
			}
			if err := imageio.SavePNG(*pngPath, img); err != nil {
				fmt.Fprintln(stderr, errSt.warn.Render(err.Error()))
				code = exitError
			}
		}
	}
	return code
}
