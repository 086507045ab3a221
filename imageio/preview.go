package imageio

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/gogpu/dfield"
)

// Default heat-map colours.
var (
	DefaultInside  = color.RGBA{R: 0x1f, G: 0x4e, B: 0xb4, A: 0xff}
	DefaultOutside = color.RGBA{R: 0xd9, G: 0x48, B: 0x1c, A: 0xff}
)

// Gray renders f as a grayscale image with sample v at level 128+v:
// inside is dark, outside light and the boundary mid-gray.
func Gray(f *dfield.Field) *image.Gray {
	w, h := f.Width(), f.Height()
	img := image.NewGray(image.Rect(0, 0, w, h))
	for i, v := range f.Data() {
		img.Pix[i] = uint8(int(v) + 128) //nolint:gosec // v in [-127, 127]
	}
	return img
}

// Heatmap renders f with the boundary in white, fading in CIE-Lab towards
// inside for negative samples and outside for positive ones. Saturated
// samples, including -128, get the full colour.
func Heatmap(f *dfield.Field, inside, outside color.Color) *image.RGBA {
	in, _ := colorful.MakeColor(inside)
	out, _ := colorful.MakeColor(outside)
	edge := colorful.Color{R: 1, G: 1, B: 1}

	// Only 255 distinct samples exist, so blend each once.
	var lut [256]color.RGBA
	for v := -127; v <= 127; v++ {
		target := out
		if v < 0 {
			target = in
		}
		t := float64(abs(v)) / 127
		r, g, b := edge.BlendLab(target, t).Clamped().RGB255()
		lut[uint8(int8(v))] = color.RGBA{R: r, G: g, B: b, A: 0xff}
	}
	// -128 never comes out of the generator but a stored file may hold it.
	lut[0x80] = lut[0x81]

	w, h := f.Width(), f.Height()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for i, v := range f.Data() {
		c := lut[uint8(v)]
		o := i * 4
		img.Pix[o], img.Pix[o+1], img.Pix[o+2], img.Pix[o+3] = c.R, c.G, c.B, c.A
	}
	return img
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

// SavePNG writes img to path as PNG.
func SavePNG(path string, img image.Image) error {
	f, err := os.Create(filepath.Clean(path))
	if err != nil {
		return fmt.Errorf("imageio: create file: %w", err)
	}

	if err := png.Encode(f, img); err != nil {
		_ = f.Close()
		return fmt.Errorf("imageio: encode PNG: %w", err)
	}
	return f.Close()
}
