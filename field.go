package dfield

import (
	"bytes"
	"math"
	"unsafe"
)

// Field is a quantized signed distance field.
//
// Samples are stored row-major with the origin at the top-left. Negative
// samples are inside the source shape, positive samples are outside, and
// the magnitude is the clamped, quantized distance to the nearest boundary
// in [-127, 127]. A zero threshold recovers the shape.
//
// A Field is immutable once constructed and always has positive
// dimensions. The zero Field is not valid; use NewField, Generate or Load.
type Field struct {
	width  int32
	height int32
	data   []int8
}

// NewField creates a Field from a copy of data.
// The returned Field never aliases data.
func NewField(width, height int, data []int8) (*Field, error) {
	if width <= 0 || height <= 0 || width > math.MaxInt32 || height > math.MaxInt32 {
		return nil, ErrInvalidDimensions
	}
	if len(data) != width*height {
		return nil, ErrDataLength
	}
	buf := make([]int8, len(data))
	copy(buf, data)
	return &Field{width: int32(width), height: int32(height), data: buf}, nil
}

// Width returns the raster width in pixels.
func (f *Field) Width() int { return int(f.width) }

// Height returns the raster height in pixels.
func (f *Field) Height() int { return int(f.height) }

// Data returns the samples. The slice is shared with f and must not be
// modified.
func (f *Field) Data() []int8 { return f.data }

// At returns the sample at (x, y).
func (f *Field) At(x, y int) int8 {
	return f.data[y*int(f.width)+x]
}

// Inside reports whether (x, y) lies inside the source shape.
func (f *Field) Inside(x, y int) bool {
	return f.At(x, y) < 0
}

// Bytes returns a copy of the samples reinterpreted as bytes, as they are
// stored on disk.
func (f *Field) Bytes() []byte {
	out := make([]byte, len(f.data))
	copy(out, asBytes(f.data))
	return out
}

// Equal reports whether f and other have the same dimensions and samples.
func (f *Field) Equal(other *Field) bool {
	if f == nil || other == nil {
		return f == other
	}
	return f.width == other.width && f.height == other.height &&
		bytes.Equal(asBytes(f.data), asBytes(other.data))
}

// valid reports whether f satisfies the Field invariants.
func (f *Field) valid() bool {
	return f != nil && f.width > 0 && f.height > 0 &&
		len(f.data) == int(f.width)*int(f.height)
}

// asBytes views an int8 slice as bytes without copying.
func asBytes(s []int8) []byte {
	if len(s) == 0 {
		return nil
	}
	return unsafe.Slice((*byte)(unsafe.Pointer(&s[0])), len(s))
}

// asInt8s views a byte slice as int8 samples without copying.
func asInt8s(b []byte) []int8 {
	if len(b) == 0 {
		return nil
	}
	return unsafe.Slice((*int8)(unsafe.Pointer(&b[0])), len(b))
}
