package dfield

import (
	"bytes"
	"errors"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"testing"
)

func sampleField(t *testing.T, w, h int) *Field {
	t.Helper()
	data := make([]int8, w*h)
	for i := range data {
		data[i] = int8(i%255 - 127)
	}
	f, err := NewField(w, h, data)
	if err != nil {
		t.Fatalf("NewField error: %v", err)
	}
	return f
}

func TestEncodeLayout(t *testing.T) {
	f, err := NewField(2, 1, []int8{-1, 5})
	if err != nil {
		t.Fatalf("NewField error: %v", err)
	}

	var buf bytes.Buffer
	if err := Encode(&buf, f); err != nil {
		t.Fatalf("Encode error: %v", err)
	}

	want := []byte{'D', 'F', 2, 0, 0, 0, 1, 0, 0, 0, 0xff, 0x05}
	if !bytes.Equal(buf.Bytes(), want) {
		t.Errorf("Encode = % x, want % x", buf.Bytes(), want)
	}
}

func TestRoundTrip(t *testing.T) {
	sizes := [][2]int{{1, 1}, {3, 2}, {16, 16}, {255, 3}, {300, 301}}

	for _, size := range sizes {
		f := sampleField(t, size[0], size[1])

		var buf bytes.Buffer
		if err := Encode(&buf, f); err != nil {
			t.Fatalf("Encode %v error: %v", size, err)
		}
		if buf.Len() != HeaderSize+size[0]*size[1] {
			t.Errorf("encoded length = %d, want %d", buf.Len(), HeaderSize+size[0]*size[1])
		}

		got, err := Decode(&buf)
		if err != nil {
			t.Fatalf("Decode %v error: %v", size, err)
		}
		if !got.Equal(f) {
			t.Errorf("%v: decoded field differs from encoded field", size)
		}
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "card.dfield")

	src := randomBitmap(40, 30, 0.5, 11)
	f, err := Generate(src, 20, 15, 2)
	if err != nil {
		t.Fatalf("Generate error: %v", err)
	}

	if err := Save(path, f); err != nil {
		t.Fatalf("Save error: %v", err)
	}

	got, err := Load(path)
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if !got.Equal(f) {
		t.Error("loaded field differs from saved field")
	}
}

func header(w, h int32) []byte {
	return []byte{
		'D', 'F',
		byte(w), byte(w >> 8), byte(w >> 16), byte(w >> 24),
		byte(h), byte(h >> 8), byte(h >> 16), byte(h >> 24),
	}
}

func TestDecodeErrors(t *testing.T) {
	tests := []struct {
		name string
		data []byte
		want error
	}{
		{"empty", nil, ErrBadMagic},
		{"one byte", []byte("D"), ErrBadMagic},
		{"wrong magic", append([]byte("XX"), header(1, 1)[2:]...), ErrBadMagic},
		{"swapped magic", append([]byte("FD"), header(1, 1)[2:]...), ErrBadMagic},
		{"png", []byte("\x89PNG\r\n\x1a\n"), ErrBadMagic},
		{"magic only", []byte("DF"), ErrTruncatedHeader},
		{"partial width", []byte("DF\x01\x00\x00"), ErrTruncatedHeader},
		{"partial height", header(1, 1)[:9], ErrTruncatedHeader},
		{"zero width", header(0, 4), ErrInvalidDimensions},
		{"zero height", header(4, 0), ErrInvalidDimensions},
		{"negative width", header(-1, 4), ErrInvalidDimensions},
		{"negative height", header(4, -2), ErrInvalidDimensions},
		{"no payload", header(2, 2), ErrTruncatedPayload},
		{"short payload", append(header(2, 2), 1, 2, 3), ErrTruncatedPayload},
		{"huge claimed size", append(header(0x7fffffff, 0x7fffffff), make([]byte, 10)...), ErrTruncatedPayload},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, err := Decode(bytes.NewReader(tt.data))
			if f != nil {
				t.Error("Decode returned a field on error")
			}
			if !errors.Is(err, tt.want) {
				t.Fatalf("Decode error = %v, want %v", err, tt.want)
			}
			var fe *FormatError
			if !errors.As(err, &fe) {
				t.Fatalf("Decode error %T is not *FormatError", err)
			}
			if fe.Kind != tt.want {
				t.Errorf("FormatError.Kind = %v, want %v", fe.Kind, tt.want)
			}
		})
	}
}

func TestDecodeIgnoresTrailingBytes(t *testing.T) {
	data := append(header(2, 1), 0x81, 0x7f, 0xde, 0xad)

	f, err := Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("Decode error: %v", err)
	}
	if f.At(0, 0) != -127 || f.At(1, 0) != 127 {
		t.Errorf("samples = %v, want [-127 127]", f.Data())
	}
}

func TestDecodeLegacyHint(t *testing.T) {
	// Legacy files start directly with width and height.
	legacy := []byte{4, 0, 0, 0, 4, 0, 0, 0}
	legacy = append(legacy, make([]byte, 16)...)

	_, err := Decode(bytes.NewReader(legacy))
	if !errors.Is(err, ErrBadMagic) {
		t.Fatalf("Decode(legacy) error = %v, want ErrBadMagic", err)
	}
	if !IsLegacy(err) {
		t.Error("IsLegacy(legacy) = false, want true")
	}

	_, err = Decode(bytes.NewReader([]byte("\x89PNG\r\n\x1a\n")))
	if IsLegacy(err) {
		t.Error("IsLegacy(png) = true, want false")
	}
	if IsLegacy(nil) {
		t.Error("IsLegacy(nil) = true, want false")
	}
}

// shortWriter accepts at most limit bytes in total and then reports short
// writes without an error.
type shortWriter struct {
	limit int
	n     int
}

func (w *shortWriter) Write(p []byte) (int, error) {
	room := max(w.limit-w.n, 0)
	n := min(room, len(p))
	w.n += n
	return n, nil
}

type failWriter struct{ after int }

var errDiskFull = errors.New("disk full")

func (w *failWriter) Write(p []byte) (int, error) {
	if w.after <= 0 {
		return 0, errDiskFull
	}
	w.after--
	return len(p), nil
}

func TestEncodeErrors(t *testing.T) {
	f := sampleField(t, 4, 4)

	t.Run("short header", func(t *testing.T) {
		err := Encode(&shortWriter{limit: 5}, f)
		if !errors.Is(err, ErrWrite) {
			t.Fatalf("Encode error = %v, want ErrWrite", err)
		}
		if !errors.Is(err, io.ErrShortWrite) {
			t.Errorf("Encode error = %v, want cause io.ErrShortWrite", err)
		}
	})

	t.Run("short payload", func(t *testing.T) {
		if err := Encode(&shortWriter{limit: HeaderSize + 3}, f); !errors.Is(err, ErrWrite) {
			t.Fatalf("Encode error = %v, want ErrWrite", err)
		}
	})

	t.Run("failing writer", func(t *testing.T) {
		err := Encode(&failWriter{after: 3}, f)
		if !errors.Is(err, ErrWrite) || !errors.Is(err, errDiskFull) {
			t.Fatalf("Encode error = %v, want ErrWrite caused by %v", err, errDiskFull)
		}
	})

	t.Run("invalid field", func(t *testing.T) {
		var buf bytes.Buffer
		for _, bad := range []*Field{nil, {}, {width: 2, height: -1}, {width: 2, height: 2, data: make([]int8, 3)}} {
			if err := Encode(&buf, bad); !errors.Is(err, ErrInvalidDimensions) {
				t.Errorf("Encode(%+v) error = %v, want ErrInvalidDimensions", bad, err)
			}
		}
		if buf.Len() != 0 {
			t.Errorf("Encode wrote %d bytes for invalid fields", buf.Len())
		}
	})
}

func TestLoadMissingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing.dfield")

	f, err := Load(path)
	if f != nil {
		t.Error("Load returned a field on error")
	}
	var ioErr *IOError
	if !errors.As(err, &ioErr) {
		t.Fatalf("Load error %T is not *IOError", err)
	}
	if ioErr.Path != path {
		t.Errorf("IOError.Path = %q, want %q", ioErr.Path, path)
	}
	if !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("Load error = %v, want fs.ErrNotExist cause", err)
	}
}

func TestLoadFormatErrorCarriesPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.dfield")
	if err := os.WriteFile(path, append(header(3, 3), 1, 2), 0o600); err != nil {
		t.Fatal(err)
	}

	_, err := Load(path)
	var fe *FormatError
	if !errors.As(err, &fe) {
		t.Fatalf("Load error %T is not *FormatError", err)
	}
	if fe.Kind != ErrTruncatedPayload {
		t.Errorf("Kind = %v, want ErrTruncatedPayload", fe.Kind)
	}
	if fe.Op != "load" || fe.Path != path {
		t.Errorf("Op, Path = %q, %q, want %q, %q", fe.Op, fe.Path, "load", path)
	}
}

func TestSaveInvalidFieldLeavesFileUntouched(t *testing.T) {
	path := filepath.Join(t.TempDir(), "keep.dfield")
	orig := []byte("existing contents")
	if err := os.WriteFile(path, orig, 0o600); err != nil {
		t.Fatal(err)
	}

	if err := Save(path, &Field{}); !errors.Is(err, ErrInvalidDimensions) {
		t.Fatalf("Save error = %v, want ErrInvalidDimensions", err)
	}

	got, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(got, orig) {
		t.Errorf("file contents = %q, want %q", got, orig)
	}
}

func TestSaveUncreatablePath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "no", "such", "dir", "x.dfield")

	err := Save(path, sampleField(t, 2, 2))
	var ioErr *IOError
	if !errors.As(err, &ioErr) {
		t.Fatalf("Save error %T is not *IOError", err)
	}
	if ioErr.Op != "create" {
		t.Errorf("IOError.Op = %q, want create", ioErr.Op)
	}
}

func TestFormatErrorMessage(t *testing.T) {
	err := &FormatError{Op: "load", Path: "a.dfield", Kind: ErrTruncatedPayload, Err: io.ErrUnexpectedEOF}
	want := "dfield: truncated payload (load a.dfield): unexpected EOF"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}

	err = &FormatError{Op: "decode", Kind: ErrBadMagic}
	if got := err.Error(); got != "dfield: bad magic (decode)" {
		t.Errorf("Error() = %q", got)
	}
}
