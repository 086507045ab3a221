package dfield

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"errors"
	"io"
	"math"
	"os"
	"path/filepath"
)

// Container layout:
//
//	offset  size  field
//	0       2     magic "DF"
//	2       4     width, little-endian int32, > 0
//	6       4     height, little-endian int32, > 0
//	10      w*h   samples, row-major int8
const (
	Magic      = "DF"
	HeaderSize = len(Magic) + 8
)

// payloadChunk bounds the first allocation made for a payload. The buffer
// grows only as bytes actually arrive, so a corrupt header cannot force a
// large allocation.
const payloadChunk = 1 << 16

// Decode reads a Field from r.
//
// Errors are *FormatError values whose Kind is ErrBadMagic,
// ErrTruncatedHeader, ErrInvalidDimensions or ErrTruncatedPayload.
// No Field is returned on error. Bytes following the payload are not read.
func Decode(r io.Reader) (*Field, error) {
	var hdr [HeaderSize]byte

	n, _ := io.ReadFull(r, hdr[:len(Magic)])
	if n < len(Magic) || string(hdr[:len(Magic)]) != Magic {
		return nil, badMagic(r, hdr[:n])
	}

	if _, err := io.ReadFull(r, hdr[len(Magic):]); err != nil {
		return nil, &FormatError{Op: "decode", Kind: ErrTruncatedHeader, Err: err}
	}

	width := int32(binary.LittleEndian.Uint32(hdr[2:6]))  //nolint:gosec // two's complement reinterpretation
	height := int32(binary.LittleEndian.Uint32(hdr[6:10])) //nolint:gosec // two's complement reinterpretation
	if width <= 0 || height <= 0 {
		return nil, &FormatError{Op: "decode", Kind: ErrInvalidDimensions}
	}

	size := int64(width) * int64(height)
	if size > math.MaxInt {
		return nil, &FormatError{Op: "decode", Kind: ErrInvalidDimensions}
	}

	var buf bytes.Buffer
	buf.Grow(int(min(size, payloadChunk)))
	copied, err := io.CopyN(&buf, r, size)
	if copied != size {
		if errors.Is(err, io.EOF) {
			err = nil
		}
		return nil, &FormatError{Op: "decode", Kind: ErrTruncatedPayload, Err: err}
	}

	return &Field{width: width, height: height, data: asInt8s(buf.Bytes())}, nil
}

// badMagic builds the ErrBadMagic error, noting when the leading bytes look
// like the width of a headerless legacy file.
func badMagic(r io.Reader, lead []byte) error {
	fe := &FormatError{Op: "decode", Kind: ErrBadMagic}
	if len(lead) < len(Magic) {
		return fe
	}
	var rest [2]byte
	if _, err := io.ReadFull(r, rest[:]); err != nil {
		return fe
	}
	var word [4]byte
	copy(word[:], lead)
	copy(word[len(Magic):], rest[:])
	if w := binary.LittleEndian.Uint32(word[:]); w > 0 && w <= math.MaxUint16 {
		fe.Err = errLegacyLayout
	}
	return fe
}

// Encode writes f to w. Each of the magic, width, height and payload writes
// must complete in full, otherwise the error has Kind ErrWrite.
// An invalid field is rejected with ErrInvalidDimensions before anything is
// written.
func Encode(w io.Writer, f *Field) error {
	if !f.valid() {
		return &FormatError{Op: "encode", Kind: ErrInvalidDimensions}
	}

	var width, height [4]byte
	binary.LittleEndian.PutUint32(width[:], uint32(f.width))   //nolint:gosec // positive by invariant
	binary.LittleEndian.PutUint32(height[:], uint32(f.height)) //nolint:gosec // positive by invariant
	chunks := [][]byte{
		[]byte(Magic),
		width[:],
		height[:],
		asBytes(f.data),
	}
	for _, p := range chunks {
		if err := writeFull(w, p); err != nil {
			return &FormatError{Op: "encode", Kind: ErrWrite, Err: err}
		}
	}
	return nil
}

func writeFull(w io.Writer, p []byte) error {
	n, err := w.Write(p)
	if err == nil && n != len(p) {
		err = io.ErrShortWrite
	}
	return err
}

// Load reads a Field from the file at path.
//
// An open failure is reported as *IOError; anything wrong with the contents
// as *FormatError. The file is always closed.
func Load(path string) (*Field, error) {
	file, err := os.Open(filepath.Clean(path))
	if err != nil {
		return nil, &IOError{Op: "open", Path: path, Err: err}
	}
	defer func() { _ = file.Close() }()

	f, err := Decode(bufio.NewReader(file))
	if err != nil {
		return nil, withPath(err, "load", path)
	}
	return f, nil
}

// Save writes f to the file at path, creating or truncating it.
//
// An invalid field is rejected before the file is touched. A failure to
// flush or close the file is reported as ErrWrite, since the artifact on
// disk would otherwise be silently short.
func Save(path string, f *Field) error {
	if !f.valid() {
		return &FormatError{Op: "save", Path: path, Kind: ErrInvalidDimensions}
	}

	file, err := os.Create(filepath.Clean(path))
	if err != nil {
		return &IOError{Op: "create", Path: path, Err: err}
	}

	bw := bufio.NewWriter(file)
	if err := Encode(bw, f); err != nil {
		_ = file.Close()
		return withPath(err, "save", path)
	}
	if err := bw.Flush(); err != nil {
		_ = file.Close()
		return &FormatError{Op: "save", Path: path, Kind: ErrWrite, Err: err}
	}
	if err := file.Close(); err != nil {
		return &FormatError{Op: "save", Path: path, Kind: ErrWrite, Err: err}
	}
	return nil
}

func withPath(err error, op, path string) error {
	var fe *FormatError
	if errors.As(err, &fe) {
		fe.Op = op
		fe.Path = path
	}
	return err
}
