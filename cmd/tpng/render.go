package main

import (
	"bufio"
	"fmt"
	"image"
	"io"

	"golang.org/x/image/draw"
)

// areaKernel is a box filter. x/image/draw widens kernels by the scale
// factor when shrinking, so each output pixel averages the source area it
// covers.
var areaKernel = &draw.Kernel{
	Support: 0.5,
	At:      func(t float64) float64 { return 1 },
}

func scalerFor(resample string) draw.Scaler {
	if resample == "nearest" {
		return draw.NearestNeighbor
	}
	return areaKernel
}

type renderer struct {
	w      io.Writer
	width  int
	scaler draw.Scaler
}

func newRenderer(w io.Writer, width int, resample string) *renderer {
	return &renderer{w: w, width: width, scaler: scalerFor(resample)}
}

func (r *renderer) Render(img *image.NRGBA) error {
	return printHalfBlocks(r.w, resize(img, r.width, r.scaler))
}

// resize scales img down to width columns keeping its aspect ratio. Images
// that already fit are returned as is.
func resize(img *image.NRGBA, width int, s draw.Scaler) *image.NRGBA {
	b := img.Bounds()
	if width <= 0 || b.Dx() <= width {
		return img
	}

	height := b.Dy() * width / b.Dx()
	if height < 1 {
		height = 1
	}

	dst := image.NewNRGBA(image.Rect(0, 0, width, height))
	s.Scale(dst, dst.Bounds(), img, b, draw.Src, nil)
	return dst
}

// printHalfBlocks draws two image rows per terminal line: the upper pixel as
// the foreground of '▀', the lower one as its background. Alpha is ignored.
func printHalfBlocks(w io.Writer, img *image.NRGBA) error {
	bw := bufio.NewWriter(w)
	b := img.Bounds()

	y := b.Min.Y
	for ; y+1 < b.Max.Y; y += 2 {
		for x := b.Min.X; x < b.Max.X; x++ {
			up, lo := img.NRGBAAt(x, y), img.NRGBAAt(x, y+1)
			fmt.Fprintf(bw, "\x1b[38;2;%d;%d;%dm\x1b[48;2;%d;%d;%dm▀", up.R, up.G, up.B, lo.R, lo.G, lo.B)
		}
		bw.WriteString("\x1b[0m\n")
	}

	if y < b.Max.Y {
		for x := b.Min.X; x < b.Max.X; x++ {
			px := img.NRGBAAt(x, y)
			fmt.Fprintf(bw, "\x1b[38;2;%d;%d;%dm▀", px.R, px.G, px.B)
		}
		bw.WriteString("\x1b[0m\n")
	}

	return bw.Flush()
}
