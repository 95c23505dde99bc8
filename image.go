package tinypng

import (
	"image"
)

// sample8 returns sample i of a row scaled or truncated to 8 bits. 16-bit
// samples keep their high byte.
func sample8(row []byte, i, depth int) uint8 {
	switch depth {
	case 8:
		return row[i]
	case 16:
		return row[2*i]
	}

	bit := i * depth
	mask := byte(1)<<uint(depth) - 1
	v := row[bit/8] >> uint(8-depth-bit%8) & mask
	return v * (255 / mask)
}

// NRGBA converts the decoded samples to an 8-bit image. Greyscale is spread
// over the three colour channels; types without alpha come out opaque.
func (img *Image) NRGBA() *image.NRGBA {
	g := img.Header.Geometry()
	dst := image.NewNRGBA(image.Rect(0, 0, g.Width, g.Height))
	stride := g.RowBytes()

	for y := 0; y < g.Height; y++ {
		row := img.Pix[y*stride : (y+1)*stride]
		px := dst.Pix[y*dst.Stride : y*dst.Stride+4*g.Width]

		for x := 0; x < g.Width; x++ {
			s := x * g.Channels
			p := px[4*x : 4*x+4]
			p[3] = 0xff

			switch img.Header.ColorType {
			case Greyscale:
				v := sample8(row, s, g.BitDepth)
				p[0], p[1], p[2] = v, v, v
			case GreyscaleAlpha:
				v := sample8(row, s, g.BitDepth)
				p[0], p[1], p[2] = v, v, v
				p[3] = sample8(row, s+1, g.BitDepth)
			case Truecolour:
				p[0] = sample8(row, s, g.BitDepth)
				p[1] = sample8(row, s+1, g.BitDepth)
				p[2] = sample8(row, s+2, g.BitDepth)
			case TruecolourAlpha:
				p[0] = sample8(row, s, g.BitDepth)
				p[1] = sample8(row, s+1, g.BitDepth)
				p[2] = sample8(row, s+2, g.BitDepth)
				p[3] = sample8(row, s+3, g.BitDepth)
			}
		}
	}

	return dst
}
