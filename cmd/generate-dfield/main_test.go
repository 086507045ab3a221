package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gogpu/dfield"
)

func TestParseArgs(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		want    config
		wantErr string
	}{
		{
			name: "short flags",
			args: []string{"-O", "64", "-I", "256", "-S", "8", "out.dfield", "in.raw"},
			want: config{output: "out.dfield", input: "in.raw", outW: 64, outH: 64, inW: 256, inH: 256, spread: 8, format: "raw", threshold: 127},
		},
		{
			name: "long flags and hex",
			args: []string{"--output-size=0x40", "--input-width=300", "--input-height", "200", "--spread=4", "o", "i.bin"},
			want: config{output: "o", input: "i.bin", outW: 64, outH: 64, inW: 300, inH: 200, spread: 4, format: "raw", threshold: 127},
		},
		{
			name: "later flag overrides",
			args: []string{"-O", "64", "--output-height", "32", "-S", "1", "o", "i.png"},
			want: config{output: "o", input: "i.png", outW: 64, outH: 32, spread: 1, format: "image", threshold: 127},
		},
		{
			name: "pbm needs no input size",
			args: []string{"-O", "16", "-S", "2", "-invert", "-v", "o", "shape.PBM"},
			want: config{output: "o", input: "shape.PBM", outW: 16, outH: 16, spread: 2, format: "pbm", threshold: 127, invert: true, debug: true},
		},
		{
			name: "image threshold",
			args: []string{"-O", "16", "-S", "2", "-threshold", "10", "o", "shape.png"},
			want: config{output: "o", input: "shape.png", outW: 16, outH: 16, spread: 2, format: "image", threshold: 10},
		},
		{
			name: "forced format",
			args: []string{"-O", "16", "-S", "2", "--format", "PBM", "o", "shape.txt"},
			want: config{output: "o", input: "shape.txt", outW: 16, outH: 16, spread: 2, format: "pbm", threshold: 127},
		},
		{name: "missing output size", args: []string{"-I", "8", "-S", "1", "o", "i"}, wantErr: "output size"},
		{name: "missing spread", args: []string{"-O", "8", "-I", "8", "o", "i"}, wantErr: "spread"},
		{name: "raw without input size", args: []string{"-O", "8", "-S", "1", "o", "i.raw"}, wantErr: "input size"},
		{name: "zero size", args: []string{"-O", "0", "-S", "1", "o", "i"}, wantErr: "invalid value"},
		{name: "negative spread", args: []string{"-O", "8", "-S", "-1", "o", "i"}, wantErr: "invalid value"},
		{name: "too large", args: []string{"-O", "0x80000000", "-S", "1", "o", "i"}, wantErr: "invalid value"},
		{name: "not a number", args: []string{"-O", "big", "-S", "1", "o", "i"}, wantErr: "invalid value"},
		{name: "threshold out of range", args: []string{"-O", "8", "-S", "1", "-threshold", "256", "o", "i.png"}, wantErr: "threshold"},
		{name: "threshold with pbm", args: []string{"-O", "8", "-S", "1", "-threshold", "10", "o", "i.pbm"}, wantErr: "--threshold applies only to image input"},
		{name: "threshold with raw", args: []string{"-O", "8", "-I", "8", "-S", "1", "-threshold", "127", "o", "i.raw"}, wantErr: "--threshold applies only to image input"},
		{name: "unknown format", args: []string{"-O", "8", "-S", "1", "--format", "svg", "o", "i"}, wantErr: "unknown format"},
		{name: "one positional", args: []string{"-O", "8", "-S", "1", "o"}, wantErr: "OUTPUT_FILE"},
		{name: "three positionals", args: []string{"-O", "8", "-S", "1", "o", "i", "x"}, wantErr: "OUTPUT_FILE"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var stderr bytes.Buffer
			got, err := parseArgs(tt.args, &stderr)
			if tt.wantErr != "" {
				if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
					t.Fatalf("parseArgs error = %v, want it to mention %q", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("parseArgs error: %v", err)
			}
			if got != tt.want {
				t.Errorf("parseArgs =\n %+v\nwant\n %+v", got, tt.want)
			}
		})
	}
}

func TestDetectFormat(t *testing.T) {
	tests := map[string]string{
		"a.pbm":       "pbm",
		"A.PBM":       "pbm",
		"card.png":    "image",
		"card.JPEG":   "image",
		"card.webp":   "image",
		"card.tiff":   "image",
		"card.raw":    "raw",
		"card":        "raw",
		"dir.png/raw": "raw",
	}
	for path, want := range tests {
		if got := detectFormat(path); got != want {
			t.Errorf("detectFormat(%q) = %q, want %q", path, got, want)
		}
	}
}

func squareBitmap() []byte {
	pix := make([]byte, 64)
	for y := 2; y < 6; y++ {
		for x := 2; x < 6; x++ {
			pix[y*8+x] = 1
		}
	}
	return pix
}

func TestRunRaw(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "square.raw")
	out := filepath.Join(dir, "square.dfield")
	if err := os.WriteFile(in, squareBitmap(), 0o600); err != nil {
		t.Fatal(err)
	}

	var stderr bytes.Buffer
	if code := run([]string{"-O", "4", "-I", "8", "-S", "2", out, in}, &stderr); code != exitOK {
		t.Fatalf("run = %d, want %d; stderr:\n%s", code, exitOK, stderr.String())
	}

	src, err := dfield.NewBitmap(8, 8, squareBitmap())
	if err != nil {
		t.Fatal(err)
	}
	want, err := dfield.Generate(src, 4, 4, 2)
	if err != nil {
		t.Fatal(err)
	}
	got, err := dfield.Load(out)
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if !got.Equal(want) {
		t.Errorf("output = %v, want %v", got.Data(), want.Data())
	}
}

func TestRunPBM(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "bar.pbm")
	out := filepath.Join(dir, "bar.dfield")
	if err := os.WriteFile(in, []byte("P1\n4 1\n0 1 1 0\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	var stderr bytes.Buffer
	if code := run([]string{"-O", "4", "--output-height", "1", "-S", "1", "-v", out, in}, &stderr); code != exitOK {
		t.Fatalf("run = %d; stderr:\n%s", code, stderr.String())
	}
	if !strings.Contains(stderr.String(), "field saved") {
		t.Errorf("-v should log debug output, got:\n%s", stderr.String())
	}

	f, err := dfield.Load(out)
	if err != nil {
		t.Fatal(err)
	}
	if f.Width() != 4 || f.Height() != 1 {
		t.Errorf("size = %dx%d, want 4x1", f.Width(), f.Height())
	}
}

func TestRunInvert(t *testing.T) {
	dir := t.TempDir()
	pbm := filepath.Join(dir, "bar.pbm")
	if err := os.WriteFile(pbm, []byte("P1\n4 1\n0 1 1 0\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	raw := filepath.Join(dir, "bar.raw")
	if err := os.WriteFile(raw, []byte{0, 1, 1, 0}, 0o600); err != nil {
		t.Fatal(err)
	}

	src, err := dfield.NewBitmap(4, 1, []byte{255, 0, 0, 255})
	if err != nil {
		t.Fatal(err)
	}
	want, err := dfield.Generate(src, 4, 1, 1)
	if err != nil {
		t.Fatal(err)
	}

	for _, in := range []string{pbm, raw} {
		out := in + ".dfield"
		args := []string{"-O", "4", "--output-height", "1", "-I", "4", "--input-height", "1", "-S", "1", "-invert", out, in}
		var stderr bytes.Buffer
		if code := run(args, &stderr); code != exitOK {
			t.Fatalf("run(%s) = %d; stderr:\n%s", in, code, stderr.String())
		}
		got, err := dfield.Load(out)
		if err != nil {
			t.Fatal(err)
		}
		if !got.Equal(want) {
			t.Errorf("%s: -invert output = %v, want %v", filepath.Base(in), got.Data(), want.Data())
		}
	}
}

func TestRunErrors(t *testing.T) {
	dir := t.TempDir()
	pbm := filepath.Join(dir, "bar.pbm")
	if err := os.WriteFile(pbm, []byte("P1\n4 1\n0 1 1 0\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	out := filepath.Join(dir, "out.dfield")

	tests := []struct {
		name     string
		args     []string
		wantCode int
		wantLog  string
	}{
		{"usage", []string{"-S", "1", out, pbm}, exitUsage, "invalid arguments"},
		{"unknown flag", []string{"--bogus", out, pbm}, exitUsage, "bogus"},
		{"missing input", []string{"-O", "4", "-I", "4", "-S", "1", out, filepath.Join(dir, "none.raw")}, exitError, "kind=io"},
		{"short raw input", []string{"-O", "4", "-I", "8", "-S", "1", "--format", "raw", out, pbm}, exitError, "kind=format"},
		{"size mismatch", []string{"-O", "4", "-I", "5", "-S", "1", "--format", "pbm", out, pbm}, exitError, "kind=parameter"},
		{"bad pbm", []string{"-O", "4", "-S", "1", "--format", "pbm", out, out + ".missing"}, exitError, "kind=io"},
		{"unwritable output", []string{"-O", "4", "-S", "1", filepath.Join(dir, "no", "out.dfield"), pbm}, exitError, "saving field failed"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var stderr bytes.Buffer
			if code := run(tt.args, &stderr); code != tt.wantCode {
				t.Errorf("run = %d, want %d", code, tt.wantCode)
			}
			if !strings.Contains(stderr.String(), tt.wantLog) {
				t.Errorf("stderr missing %q:\n%s", tt.wantLog, stderr.String())
			}
		})
	}
}

func TestRunHelp(t *testing.T) {
	var stderr bytes.Buffer
	if code := run([]string{"-h"}, &stderr); code != exitOK {
		t.Errorf("run(-h) = %d, want %d", code, exitOK)
	}
	if !strings.Contains(stderr.String(), "Usage: generate-dfield") {
		t.Errorf("help output missing usage line:\n%s", stderr.String())
	}
}
