// Package dfield generates signed distance fields from bitmaps and reads
// and writes them in the .dfield container format.
//
// # Overview
//
// A distance field stores, for every sample, how far it is from the edge
// of a shape: negative inside, positive outside, zero on the edge. Fields
// are quantized to int8 in [-127, 127], so a renderer can sample them as
// 8-bit textures and threshold at zero for crisp edges at any scale.
//
// # Quick Start
//
//	src, err := dfield.NewBitmap(256, 256, pix) // nonzero bytes are inside
//	if err != nil {
//	    return err
//	}
//	f, err := dfield.Generate(src, 64, 64, 8)
//	if err != nil {
//	    return err
//	}
//	return dfield.Save("card.dfield", f)
//
// Reuse a [Generator] when producing many fields; it keeps its workers
// between calls:
//
//	g := dfield.NewGenerator(dfield.WithWorkers(4))
//	defer g.Close()
//
// # File format
//
// A .dfield file is a 10-byte header followed by the samples:
//
//	offset  size  field
//	0       2     magic "DF"
//	2       4     width, int32 little-endian
//	6       4     height, int32 little-endian
//	10      w*h   samples, int8, row-major, top row first
//
// # Errors
//
// Failures are reported as [*IOError], [*FormatError] or [*ParamError].
// Each unwraps to one of the package's sentinel errors, so callers test
// them with [errors.Is]:
//
//	f, err := dfield.Load(path)
//	if errors.Is(err, dfield.ErrTruncatedPayload) {
//	    // the file was cut short
//	}
//
// # Related packages
//
//   - imageio decodes images and netpbm bitmaps into a [Bitmap] and renders
//     fields as previews
//   - glyph rasterizes font glyphs into a [Bitmap]
//   - assets caches loaded fields and runs batch builds
//
// The package does no logging; only the assets package and the commands
// log.
package dfield
