package tinypng

import (
	"math"

	"github.com/pkg/errors"
)

// Filter types, one byte in front of every scanline.
const (
	ftNone    = 0
	ftSub     = 1
	ftUp      = 2
	ftAverage = 3
	ftPaeth   = 4
)

// Geometry describes how decompressed image data is laid out in scanlines.
type Geometry struct {
	Width    int
	Height   int
	Channels int
	BitDepth int
}

// BytesPerPixel is the filter stride: channels times whole bytes per sample.
func (g Geometry) BytesPerPixel() int {
	return g.Channels * ((g.BitDepth + 7) / 8)
}

// RowBytes is the unfiltered length of one scanline. Samples narrower than
// a byte are packed.
func (g Geometry) RowBytes() int {
	return (g.Width*g.Channels*g.BitDepth + 7) / 8
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

// paeth returns whichever of a, b, c is closest to a+b-c, preferring a
// then b on ties.
func paeth(a, b, c uint8) uint8 {
	p := int(a) + int(b) - int(c)
	pa := abs(p - int(a))
	pb := abs(p - int(b))
	pc := abs(p - int(c))
	if pa <= pb && pa <= pc {
		return a
	}
	if pb <= pc {
		return b
	}
	return c
}

// Unfilter reverses the per-scanline filters in data and returns the raw
// pixel bytes, Height rows of RowBytes each.
func Unfilter(data []byte, g Geometry) ([]byte, error) {
	bpp := g.BytesPerPixel()
	cols := g.RowBytes()
	rows := g.Height

	if bpp <= 0 || cols < 0 || rows < 0 || (rows > 0 && cols+1 > math.MaxInt/rows) {
		return nil, stageError(StageUnfilter, 0, errors.Wrapf(ErrUnsupported, "geometry %+v", g))
	}
	if need := rows * (cols + 1); len(data) < need {
		return nil, stageError(StageUnfilter, len(data), errors.Wrapf(ErrUnexpectedEOF, "have %d bytes, need %d", len(data), need))
	}

	out := make([]byte, rows*cols)
	var prev []byte
	for i := 0; i < rows; i++ {
		in := data[i*(cols+1) : (i+1)*(cols+1)]
		ft, in := in[0], in[1:]
		cur := out[i*cols : (i+1)*cols]
		if ft > ftPaeth {
			return nil, stageError(StageUnfilter, i*(cols+1), errors.Wrapf(ErrFilterType, "filter %d on row %d", ft, i))
		}

		for j, x := range in {
			var a, b, c uint8
			if j >= bpp {
				a = cur[j-bpp]
			}
			if prev != nil {
				b = prev[j]
				if j >= bpp {
					c = prev[j-bpp]
				}
			}

			switch ft {
			case ftNone:
				cur[j] = x
			case ftSub:
				cur[j] = x + a
			case ftUp:
				cur[j] = x + b
			case ftAverage:
				cur[j] = x + uint8((int(a)+int(b))/2)
			case ftPaeth:
				cur[j] = x + paeth(a, b, c)
			}
		}

		prev = cur
	}

	return out, nil
}
