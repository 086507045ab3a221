// Package glyph rasterizes font glyphs into bitmaps for distance-field
// generation, so card text and symbols can get outline and glow effects.
package glyph

import (
	"errors"
	"fmt"
	"image"
	"sync"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/font/sfnt"
	"golang.org/x/image/math/fixed"

	"github.com/gogpu/dfield"
)

var (
	// ErrNoGlyph is returned when the font has no glyph for a rune.
	ErrNoGlyph = errors.New("glyph: rune not in font")

	// ErrEmptyGlyph is returned alongside a blank bitmap when a glyph has
	// no ink, such as a space.
	ErrEmptyGlyph = errors.New("glyph: glyph has no ink")
)

// Options controls rasterization.
type Options struct {
	// Size is the font size in pixels per em. Default: 64.
	Size float64

	// Padding is the blank margin added on every side, in pixels. The
	// distance field needs room to fall off outside the glyph.
	// Default: Size/8.
	Padding int

	// Threshold is the coverage above which a pixel is set. Default: 127.
	Threshold uint8
}

// DefaultOptions returns the default rasterization options.
func DefaultOptions() Options {
	return Options{Size: 64, Padding: 8, Threshold: 127}
}

func (o Options) withDefaults() Options {
	if o.Size <= 0 {
		o.Size = 64
	}
	if o.Padding <= 0 {
		o.Padding = max(int(o.Size/8), 1)
	}
	if o.Threshold == 0 {
		o.Threshold = 127
	}
	return o
}

// Rasterizer renders glyphs from one font.
//
// A Rasterizer is safe for concurrent use.
type Rasterizer struct {
	font *opentype.Font

	mu  sync.Mutex
	buf sfnt.Buffer
}

// NewRasterizer parses an OpenType or TrueType font.
func NewRasterizer(data []byte) (*Rasterizer, error) {
	f, err := opentype.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("glyph: parse font: %w", err)
	}
	return &Rasterizer{font: f}, nil
}

var defaultRasterizer = sync.OnceValues(func() (*Rasterizer, error) {
	return NewRasterizer(goregular.TTF)
})

// Rasterize renders r in the Go Regular font.
func Rasterize(r rune, opts Options) (dfield.Bitmap, error) {
	rz, err := defaultRasterizer()
	if err != nil {
		return dfield.Bitmap{}, err
	}
	return rz.Rasterize(r, opts)
}

// Rasterize renders r into a bitmap cropped to the glyph's ink plus
// Padding on every side.
func (rz *Rasterizer) Rasterize(r rune, opts Options) (dfield.Bitmap, error) {
	opts = opts.withDefaults()

	rz.mu.Lock()
	idx, err := rz.font.GlyphIndex(&rz.buf, r)
	rz.mu.Unlock()
	if err != nil || idx == 0 {
		return dfield.Bitmap{}, fmt.Errorf("%w: %q", ErrNoGlyph, r)
	}

	face, err := opentype.NewFace(rz.font, &opentype.FaceOptions{
		Size:    opts.Size,
		DPI:     72,
		Hinting: font.HintingNone,
	})
	if err != nil {
		return dfield.Bitmap{}, fmt.Errorf("glyph: new face: %w", err)
	}
	defer func() { _ = face.Close() }()

	bounds, _, ok := face.GlyphBounds(r)
	if !ok {
		return dfield.Bitmap{}, fmt.Errorf("%w: %q", ErrNoGlyph, r)
	}

	pad := opts.Padding
	minX, minY := bounds.Min.X.Floor(), bounds.Min.Y.Floor()
	maxX, maxY := bounds.Max.X.Ceil(), bounds.Max.Y.Ceil()
	if maxX <= minX || maxY <= minY {
		side := 2 * pad
		blank, _ := dfield.NewBitmap(side, side, make([]byte, side*side))
		return blank, fmt.Errorf("%w: %q", ErrEmptyGlyph, r)
	}

	w, h := maxX-minX+2*pad, maxY-minY+2*pad
	mask := image.NewAlpha(image.Rect(0, 0, w, h))
	d := font.Drawer{
		Dst:  mask,
		Src:  image.Opaque,
		Face: face,
		Dot:  fixed.P(pad-minX, pad-minY),
	}
	d.DrawString(string(r))

	pix := make([]byte, w*h)
	for i, a := range mask.Pix {
		if a > opts.Threshold {
			pix[i] = 255
		}
	}
	return dfield.NewBitmap(w, h, pix)
}
