package dfield

import (
	"math"

	"github.com/gogpu/dfield/internal/parallel"
)

// MaxSpread is the largest accepted search radius. It keeps 2*spread*spread
// within int32, matching the range existing assets were generated with.
const MaxSpread = 32768

// normScale is the divisor applied to the raw distance: spread*√2*128.
// Stored fields depend on this exact constant.
func normScale(spread int) float64 {
	return float64(spread) * math.Sqrt2 * 128
}

// Generator produces distance fields from bitmaps. It owns a pool of
// workers, so reuse one Generator for many fields and Close it when done.
//
// A Generator is safe for concurrent use.
type Generator struct {
	pool       *parallel.WorkerPool
	bandHeight int
}

// NewGenerator creates a Generator.
func NewGenerator(opts ...Option) *Generator {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return &Generator{
		pool:       parallel.NewWorkerPool(o.workers),
		bandHeight: o.bandHeight,
	}
}

// Workers returns the number of goroutines the generator spreads rows over.
func (g *Generator) Workers() int {
	return g.pool.Workers()
}

// Close releases the generator's workers. A closed Generator still works,
// computing on the calling goroutine.
func (g *Generator) Close() {
	g.pool.Close()
}

// Generate computes a width x height distance field from src using a
// temporary Generator. See Generator.Generate.
func Generate(src Bitmap, width, height, spread int) (*Field, error) {
	g := NewGenerator()
	defer g.Close()
	return g.Generate(src, width, height, spread)
}

// Generate computes a width x height distance field from src.
//
// Each output pixel maps to the nearest input pixel on each axis. The
// square window of input pixels within spread of it is searched for the
// closest pixel of the opposite state. The Euclidean distance to that
// pixel, negated inside the shape, is divided by spread*√2*128, rounded
// and clamped to [-127, 127]. When the window holds no opposite pixel the
// sample saturates to ±127. Spread is measured in input pixels and may be
// zero, in which case every sample saturates.
//
// Arguments are validated before any allocation; errors are *ParamError
// wrapping ErrInvalidInputSize, ErrInvalidOutputSize, ErrInvalidSpread or
// ErrShortSource.
func (g *Generator) Generate(src Bitmap, width, height, spread int) (*Field, error) {
	if err := validate(src, width, height, spread); err != nil {
		return nil, err
	}

	k := kernel{
		src:    src,
		width:  width,
		height: height,
		spread: spread,
		norm:   normScale(spread),
		out:    make([]int8, width*height),
	}

	g.pool.ForEachBand(height, g.bandHeight, func(b parallel.Band) {
		for y := b.Start; y < b.End; y++ {
			k.row(y)
		}
	})

	return &Field{width: int32(width), height: int32(height), data: k.out}, nil //nolint:gosec // bounded by validate
}

func validate(src Bitmap, width, height, spread int) error {
	switch {
	case src.Width <= 0 || src.Width > math.MaxInt32:
		return &ParamError{Param: "input width", Value: src.Width, Err: ErrInvalidInputSize}
	case src.Height <= 0 || src.Height > math.MaxInt32:
		return &ParamError{Param: "input height", Value: src.Height, Err: ErrInvalidInputSize}
	case width <= 0 || width > math.MaxInt32:
		return &ParamError{Param: "output width", Value: width, Err: ErrInvalidOutputSize}
	case height <= 0 || height > math.MaxInt32:
		return &ParamError{Param: "output height", Value: height, Err: ErrInvalidOutputSize}
	case spread < 0 || spread > MaxSpread:
		return &ParamError{Param: "spread", Value: spread, Err: ErrInvalidSpread}
	case len(src.Pix) < src.Width*src.Height:
		return &ParamError{Param: "len(source)", Value: len(src.Pix), Err: ErrShortSource}
	}
	return nil
}

// kernel holds the read-only inputs of one Generate call. Rows write
// disjoint parts of out, so any number of rows may run at once.
type kernel struct {
	src           Bitmap
	width, height int
	spread        int
	norm          float64
	out           []int8
}

func (k *kernel) row(y int) {
	yIn := resample(y, k.src.Height, k.height)
	line := k.out[y*k.width : (y+1)*k.width]
	for x := range line {
		xIn := resample(x, k.src.Width, k.width)
		line[x] = k.sample(xIn, yIn)
	}
}

// resample maps output coordinate v to round(v*in/out), rounding half away
// from zero, in exact integer arithmetic. Upsampling by more than 2x would
// round the last coordinate to in, so the result is clamped to in-1.
func resample(v, in, out int) int {
	n := (2*int64(v)*int64(in) + int64(out)) / (2 * int64(out))
	return int(min(n, int64(in-1)))
}

// sample computes the quantized signed distance for input pixel (cx, cy).
func (k *kernel) sample(cx, cy int) int8 {
	src := k.src
	state := src.Pix[cy*src.Width+cx] != 0

	best := int64(math.MaxInt64)
	for i := -k.spread; i <= k.spread; i++ {
		y := cy + i
		if y < 0 {
			continue
		}
		if y >= src.Height {
			break
		}
		row := src.Pix[y*src.Width : (y+1)*src.Width]
		for j := -k.spread; j <= k.spread; j++ {
			x := cx + j
			if x < 0 {
				continue
			}
			if x >= src.Width {
				break
			}
			if (row[x] != 0) != state {
				if d := int64(i)*int64(i) + int64(j)*int64(j); d < best {
					best = d
				}
			}
		}
	}

	dist := math.Inf(1)
	if best != math.MaxInt64 {
		dist = math.Sqrt(float64(best))
	}
	if state {
		dist = -dist
	}
	return quantize(dist / k.norm)
}

// quantize clamps v to [-127, 127] before rounding, so infinities never
// reach the integer conversion.
func quantize(v float64) int8 {
	switch {
	case v >= 127:
		return 127
	case v <= -127:
		return -127
	case math.IsNaN(v):
		return 0
	}
	return int8(math.Round(v))
}
