package imageio

import (
	"bufio"
	"errors"
	"fmt"
	"io"

	"github.com/32bitkid/bitreader"

	"github.com/gogpu/dfield"
)

// PBM errors.
var (
	// ErrNotPBM is returned when the input does not start with P1 or P4.
	ErrNotPBM = errors.New("imageio: not a PBM bitmap")

	// ErrPBMSyntax is returned for a malformed PBM header or raster.
	ErrPBMSyntax = errors.New("imageio: malformed PBM")
)

// DecodePBM reads a netpbm bitmap in plain (P1) or raw (P4) form.
// PBM uses 1 for black; black pixels become set pixels.
func DecodePBM(r io.Reader) (dfield.Bitmap, error) {
	br := bufio.NewReader(r)

	var magic [2]byte
	if _, err := io.ReadFull(br, magic[:]); err != nil || magic[0] != 'P' || (magic[1] != '1' && magic[1] != '4') {
		return dfield.Bitmap{}, ErrNotPBM
	}

	w, err := readHeaderInt(br)
	if err != nil {
		return dfield.Bitmap{}, err
	}
	h, err := readHeaderInt(br)
	if err != nil {
		return dfield.Bitmap{}, err
	}
	if w <= 0 || h <= 0 {
		return dfield.Bitmap{}, fmt.Errorf("%w: size %dx%d", ErrPBMSyntax, w, h)
	}
	if w > MaxPixels/h {
		return dfield.Bitmap{}, ErrTooLarge
	}

	pix := make([]byte, w*h)
	if magic[1] == '4' {
		err = readRaw(br, pix, w)
	} else {
		err = readPlain(br, pix)
	}
	if err != nil {
		return dfield.Bitmap{}, err
	}
	return dfield.NewBitmap(w, h, pix)
}

// readRaw unpacks P4 rows: one bit per pixel, most significant bit first,
// each row padded to a whole byte.
func readRaw(r io.Reader, pix []byte, width int) error {
	bits := bitreader.NewReader(r)
	pad := (8 - width%8) % 8

	for row := 0; row < len(pix); row += width {
		for x := range width {
			bit, err := bits.Read1()
			if err != nil {
				return fmt.Errorf("%w: raster: %w", ErrPBMSyntax, err)
			}
			if bit {
				pix[row+x] = 255
			}
		}
		for range pad {
			if _, err := bits.Read1(); err != nil {
				return fmt.Errorf("%w: raster: %w", ErrPBMSyntax, err)
			}
		}
	}
	return nil
}

// readPlain reads P1 pixels written as '0' and '1' characters, which may
// be separated by whitespace and comments.
func readPlain(br *bufio.Reader, pix []byte) error {
	for i := range pix {
		c, err := skipSpace(br)
		if err != nil {
			return fmt.Errorf("%w: raster: %w", ErrPBMSyntax, err)
		}
		switch c {
		case '1':
			pix[i] = 255
		case '0':
		default:
			return fmt.Errorf("%w: unexpected %q in raster", ErrPBMSyntax, c)
		}
	}
	return nil
}

// readHeaderInt reads a decimal header field. The single whitespace byte
// that ends it is consumed, which leaves a P4 reader at the raster.
func readHeaderInt(br *bufio.Reader) (int, error) {
	c, err := skipSpace(br)
	if err != nil {
		return 0, fmt.Errorf("%w: header: %w", ErrPBMSyntax, err)
	}

	n, digits := 0, 0
	for ; c >= '0' && c <= '9'; digits++ {
		if digits == 9 {
			return 0, fmt.Errorf("%w: header value too long", ErrPBMSyntax)
		}
		n = n*10 + int(c-'0')
		if c, err = br.ReadByte(); err != nil {
			return 0, fmt.Errorf("%w: header: %w", ErrPBMSyntax, err)
		}
	}
	if digits == 0 || !isSpace(c) {
		return 0, fmt.Errorf("%w: unexpected %q in header", ErrPBMSyntax, c)
	}
	return n, nil
}

// skipSpace returns the next byte that is neither whitespace nor part of a
// '#' comment.
func skipSpace(br *bufio.Reader) (byte, error) {
	for {
		c, err := br.ReadByte()
		if err != nil {
			return 0, err
		}
		switch {
		case c == '#':
			if _, err := br.ReadString('\n'); err != nil {
				return 0, err
			}
		case !isSpace(c):
			return c, nil
		}
	}
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r' || c == '\v' || c == '\f'
}
