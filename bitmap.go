package dfield

import (
	"io"
	"os"
	"path/filepath"
)

// Bitmap is a black and white source image, one byte per pixel, row-major.
// A pixel is set when its byte is nonzero. Generate only reads Pix.
type Bitmap struct {
	Width  int
	Height int
	Pix    []byte
}

// NewBitmap wraps pix as a width x height bitmap without copying it.
func NewBitmap(width, height int, pix []byte) (Bitmap, error) {
	if width <= 0 || height <= 0 {
		return Bitmap{}, &ParamError{Param: "input size", Value: min(width, height), Err: ErrInvalidInputSize}
	}
	if len(pix) < width*height {
		return Bitmap{}, &ParamError{Param: "len(pix)", Value: len(pix), Err: ErrShortSource}
	}
	return Bitmap{Width: width, Height: height, Pix: pix}, nil
}

// Set reports whether the pixel at (x, y) is set.
func (b Bitmap) Set(x, y int) bool {
	return b.Pix[y*b.Width+x] != 0
}

// LoadBitmap reads a raw, headerless width x height bitmap from path.
// The file must hold at least width*height bytes; only that many are read.
func LoadBitmap(path string, width, height int) (Bitmap, error) {
	if width <= 0 || height <= 0 {
		return Bitmap{}, &ParamError{Param: "input size", Value: min(width, height), Err: ErrInvalidInputSize}
	}

	file, err := os.Open(filepath.Clean(path))
	if err != nil {
		return Bitmap{}, &IOError{Op: "open", Path: path, Err: err}
	}
	defer func() { _ = file.Close() }()

	pix := make([]byte, width*height)
	if _, err := io.ReadFull(file, pix); err != nil {
		return Bitmap{}, &FormatError{Op: "read bitmap", Path: path, Kind: ErrTruncatedPayload, Err: err}
	}
	return Bitmap{Width: width, Height: height, Pix: pix}, nil
}
