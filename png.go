package tinypng

import (
	"hash/crc32"

	"github.com/pkg/errors"
)

const pngSignature = "\x89PNG\r\n\x1a\n"

type ColorType uint8

const (
	Greyscale       ColorType = 0
	Truecolour      ColorType = 2
	GreyscaleAlpha  ColorType = 4
	TruecolourAlpha ColorType = 6
)

// Channels is the number of samples per pixel, 0 for unsupported types.
func (c ColorType) Channels() int {
	switch c {
	case Greyscale:
		return 1
	case GreyscaleAlpha:
		return 2
	case Truecolour:
		return 3
	case TruecolourAlpha:
		return 4
	}
	return 0
}

func (c ColorType) String() string {
	switch c {
	case Greyscale:
		return "greyscale"
	case GreyscaleAlpha:
		return "greyscale+alpha"
	case Truecolour:
		return "truecolour"
	case TruecolourAlpha:
		return "truecolour+alpha"
	}
	return "unknown"
}

// Header is the content of the IHDR chunk.
type Header struct {
	Width     uint32
	Height    uint32
	BitDepth  uint8
	ColorType ColorType
	Interlace uint8
}

func (h Header) Geometry() Geometry {
	return Geometry{
		Width:    int(h.Width),
		Height:   int(h.Height),
		Channels: h.ColorType.Channels(),
		BitDepth: int(h.BitDepth),
	}
}

// Image is a decoded PNG: Pix holds Height unfiltered rows of
// Geometry().RowBytes() bytes, samples in file order (big-endian for 16 bit).
type Image struct {
	Header        Header
	BytesPerPixel int
	Pix           []byte
}

type chunk struct {
	typ  string
	data []byte
	crc  uint32
}

func be32(b []byte) uint32 {
	return uint32(b[0])<<24 | uint32(b[1])<<16 | uint32(b[2])<<8 | uint32(b[3])
}

// readChunk parses the chunk starting at src[off:] and returns it with the
// offset of the chunk that follows.
func readChunk(src []byte, off int) (chunk, int, error) {
	if len(src)-off < 12 {
		return chunk{}, 0, ErrUnexpectedEOF
	}
	n := int(be32(src[off:]))
	if n < 0 || n > len(src)-off-12 {
		return chunk{}, 0, errors.Wrapf(ErrUnexpectedEOF, "chunk claims %d bytes", n)
	}

	c := chunk{
		typ:  string(src[off+4 : off+8]),
		data: src[off+8 : off+8+n],
		crc:  be32(src[off+8+n:]),
	}
	return c, off + 12 + n, nil
}

func (c chunk) checkCRC() error {
	h := crc32.NewIEEE()
	h.Write([]byte(c.typ))
	h.Write(c.data)
	if sum := h.Sum32(); sum != c.crc {
		return errors.Wrapf(ErrChecksum, "%s crc %08x, want %08x", c.typ, sum, c.crc)
	}
	return nil
}

func validBitDepth(ct ColorType, depth uint8) bool {
	switch depth {
	case 8, 16:
		return true
	case 1, 2, 4:
		return ct == Greyscale
	}
	return false
}

func parseIHDR(data []byte) (Header, error) {
	if len(data) != 13 {
		return Header{}, errors.Wrapf(ErrChunk, "IHDR is %d bytes", len(data))
	}

	h := Header{
		Width:     be32(data[0:4]),
		Height:    be32(data[4:8]),
		BitDepth:  data[8],
		ColorType: ColorType(data[9]),
		Interlace: data[12],
	}

	if h.Width == 0 || h.Height == 0 || h.Width > 1<<31-1 || h.Height > 1<<31-1 {
		return Header{}, errors.Wrapf(ErrChunk, "dimensions %dx%d", h.Width, h.Height)
	}
	if h.ColorType.Channels() == 0 {
		return Header{}, errors.Wrapf(ErrColorType, "colour type %d", data[9])
	}
	if !validBitDepth(h.ColorType, h.BitDepth) {
		return Header{}, errors.Wrapf(ErrBitDepth, "%d bits for %s", h.BitDepth, h.ColorType)
	}
	if data[10] != 0 || data[11] != 0 {
		return Header{}, errors.Wrapf(ErrUnsupported, "compression method %d, filter method %d", data[10], data[11])
	}
	if h.Interlace != 0 {
		return Header{}, errors.Wrap(ErrUnsupported, "interlaced image")
	}

	return h, nil
}

// Decode decodes a complete PNG file held in memory.
func Decode(src []byte) (*Image, error) {
	return defaultDecoder.Decode(src)
}

// Decode decodes a complete PNG file held in memory.
func (d *Decoder) Decode(src []byte) (*Image, error) {
	h, idat, err := d.readChunks(src)
	if err != nil {
		return nil, err
	}

	g := h.Geometry()
	raw, err := d.decompress(idat, g.Height*(g.RowBytes()+1))
	if err != nil {
		return nil, err
	}

	pix, err := Unfilter(raw, g)
	if err != nil {
		return nil, err
	}

	return &Image{Header: h, BytesPerPixel: g.BytesPerPixel(), Pix: pix}, nil
}

// readChunks returns the image header and the IDAT payloads joined in
// file order.
func (d *Decoder) readChunks(src []byte) (Header, []byte, error) {
	if len(src) < len(pngSignature) || string(src[:len(pngSignature)]) != pngSignature {
		return Header{}, nil, stageError(StagePNG, 0, ErrSignature)
	}

	var (
		h       Header
		seenHdr bool
		idat    []byte
		nidat   int
	)

	off := len(pngSignature)
	for off < len(src) {
		c, next, err := readChunk(src, off)
		if err != nil {
			return Header{}, nil, stageError(StagePNG, off, err)
		}
		if d.Strict {
			if err := c.checkCRC(); err != nil {
				return Header{}, nil, stageError(StagePNG, off, err)
			}
		}

		if !seenHdr && c.typ != "IHDR" {
			return Header{}, nil, stageError(StagePNG, off, errors.Wrapf(ErrChunk, "%q before IHDR", c.typ))
		}

		switch c.typ {
		case "IHDR":
			if seenHdr {
				return Header{}, nil, stageError(StagePNG, off, errors.Wrap(ErrChunk, "second IHDR"))
			}
			if h, err = parseIHDR(c.data); err != nil {
				return Header{}, nil, stageError(StagePNG, off, err)
			}
			seenHdr = true
		case "IDAT":
			idat = append(idat, c.data...)
			nidat++
		}

		off = next
		if c.typ == "IEND" {
			break
		}
	}

	if !seenHdr {
		return Header{}, nil, stageError(StagePNG, off, errors.Wrap(ErrChunk, "no IHDR"))
	}
	if nidat == 0 {
		return Header{}, nil, stageError(StagePNG, off, errors.Wrap(ErrChunk, "no IDAT"))
	}

	return h, idat, nil
}
