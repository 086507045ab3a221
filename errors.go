package dfield

import (
	"errors"
	"strconv"
)

// Format errors. These are the Kind values carried by FormatError.
var (
	// ErrBadMagic is returned when the "DF" tag is missing or mismatched.
	ErrBadMagic = errors.New("dfield: bad magic")

	// ErrTruncatedHeader is returned when the width/height header is short.
	ErrTruncatedHeader = errors.New("dfield: truncated header")

	// ErrInvalidDimensions is returned when a width or height is not positive.
	ErrInvalidDimensions = errors.New("dfield: invalid dimensions")

	// ErrTruncatedPayload is returned when fewer than width*height samples follow the header.
	ErrTruncatedPayload = errors.New("dfield: truncated payload")

	// ErrWrite is returned when a header or payload write is short or fails.
	ErrWrite = errors.New("dfield: write error")

	// ErrDataLength is returned by NewField when len(data) != width*height.
	ErrDataLength = errors.New("dfield: data length does not match dimensions")
)

// Generator parameter errors. These are carried by ParamError.
var (
	ErrInvalidInputSize  = errors.New("dfield: invalid input size")
	ErrInvalidOutputSize = errors.New("dfield: invalid output size")
	ErrInvalidSpread     = errors.New("dfield: invalid spread")

	// ErrShortSource is returned when the source bitmap holds fewer than
	// width*height bytes.
	ErrShortSource = errors.New("dfield: source shorter than input size")
)

// IOError reports a file that could not be opened or created.
type IOError struct {
	Op   string
	Path string
	Err  error
}

func (e *IOError) Error() string {
	return "dfield: " + e.Op + " " + e.Path + ": " + e.Err.Error()
}

func (e *IOError) Unwrap() error { return e.Err }

// FormatError reports a structural problem with a persisted container.
// Kind is one of ErrBadMagic, ErrTruncatedHeader, ErrInvalidDimensions,
// ErrTruncatedPayload or ErrWrite. Err, if set, is the underlying cause.
type FormatError struct {
	Op   string
	Path string
	Kind error
	Err  error
}

func (e *FormatError) Error() string {
	s := e.Kind.Error() + " (" + e.Op
	if e.Path != "" {
		s += " " + e.Path
	}
	s += ")"
	if e.Err != nil {
		s += ": " + e.Err.Error()
	}
	return s
}

// Unwrap exposes both the kind and the cause to errors.Is and errors.As.
func (e *FormatError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

// ParamError reports an invalid argument to Generate.
type ParamError struct {
	Param string
	Value int
	Err   error
}

func (e *ParamError) Error() string {
	return e.Err.Error() + ": " + e.Param + "=" + strconv.Itoa(e.Value)
}

func (e *ParamError) Unwrap() error { return e.Err }

// IsLegacy reports whether err came from reading a file that may be in the
// legacy headerless layout (width and height with no magic). Such files are
// still unsupported; this is a hint for diagnostics only.
func IsLegacy(err error) bool {
	var fe *FormatError
	if !errors.As(err, &fe) {
		return false
	}
	return fe.Kind == ErrBadMagic && fe.Err == errLegacyLayout
}

// errLegacyLayout is attached as the cause of ErrBadMagic when the first
// four bytes read as a plausible positive little-endian width.
var errLegacyLayout = errors.New("looks like a headerless legacy field")
