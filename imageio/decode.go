package imageio

import (
	"bufio"
	"errors"
	"fmt"
	"image"
	"image/color"
	_ "image/gif"  // register GIF
	_ "image/jpeg" // register JPEG
	_ "image/png"  // register PNG
	"io"
	"os"
	"path/filepath"
	"strings"

	_ "golang.org/x/image/bmp"  // register BMP
	_ "golang.org/x/image/tiff" // register TIFF
	_ "golang.org/x/image/webp" // register WebP

	"github.com/gogpu/dfield"
)

// MaxPixels bounds the size of a decoded bitmap.
const MaxPixels = 1 << 28

// ErrTooLarge is returned when an image exceeds MaxPixels.
var ErrTooLarge = errors.New("imageio: image too large")

// Options controls how pixels are classified as set or unset.
type Options struct {
	// Threshold is the 8-bit coverage above which a pixel is set.
	// Coverage is luminance multiplied by alpha.
	Threshold uint8

	// Invert marks dark pixels as set instead of light ones, for
	// black-on-white artwork.
	Invert bool
}

// DecodeBitmap decodes an image from r and thresholds it into a bitmap.
// It returns the name of the detected format.
func DecodeBitmap(r io.Reader, opts Options) (dfield.Bitmap, string, error) {
	img, format, err := image.Decode(r)
	if err != nil {
		return dfield.Bitmap{}, "", fmt.Errorf("imageio: decode: %w", err)
	}
	bm, err := Threshold(img, opts)
	return bm, format, err
}

// Threshold converts img into a bitmap. Fully transparent pixels are always
// unset, whatever Invert says.
func Threshold(img image.Image, opts Options) (dfield.Bitmap, error) {
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	if w <= 0 || h <= 0 {
		return dfield.Bitmap{}, fmt.Errorf("imageio: empty image: %w", dfield.ErrInvalidInputSize)
	}
	if w > MaxPixels/h {
		return dfield.Bitmap{}, ErrTooLarge
	}

	pix := make([]byte, w*h)
	for y := range h {
		for x := range w {
			if covered(img.At(bounds.Min.X+x, bounds.Min.Y+y), opts) {
				pix[y*w+x] = 255
			}
		}
	}
	return dfield.NewBitmap(w, h, pix)
}

func covered(c color.Color, opts Options) bool {
	_, _, _, a := c.RGBA()
	if a == 0 {
		return false
	}
	// Gray16Model works on premultiplied values, so this is luma*alpha.
	luma := color.Gray16Model.Convert(c).(color.Gray16).Y
	if opts.Invert {
		luma = uint16(a) - min(luma, uint16(a)) //nolint:gosec // a <= 0xffff
	}
	return uint8(luma>>8) > opts.Threshold
}

// LoadBitmap reads the image or netpbm file at path and thresholds it.
// Files ending in .pbm are read as netpbm; everything else goes through
// image.Decode.
func LoadBitmap(path string, opts Options) (dfield.Bitmap, error) {
	f, err := os.Open(filepath.Clean(path))
	if err != nil {
		return dfield.Bitmap{}, &dfield.IOError{Op: "open", Path: path, Err: err}
	}
	defer func() { _ = f.Close() }()

	if strings.EqualFold(filepath.Ext(path), ".pbm") {
		return DecodePBM(f)
	}
	bm, _, err := DecodeBitmap(bufio.NewReader(f), opts)
	return bm, err
}
