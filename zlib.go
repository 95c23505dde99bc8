package tinypng

import (
	"hash/adler32"

	"github.com/pkg/errors"
)

// ZlibHeader is the framing around a DEFLATE stream.
type ZlibHeader struct {
	CMF     byte
	FLG     byte
	Adler32 uint32
}

// UnwrapZlib strips the 2-byte header and the 4-byte Adler-32 trailer and
// returns the raw DEFLATE payload. The header is not validated.
func UnwrapZlib(src []byte) (ZlibHeader, []byte, error) {
	if len(src) < 6 {
		return ZlibHeader{}, nil, stageError(StageZlib, len(src), ErrUnexpectedEOF)
	}

	t := src[len(src)-4:]
	h := ZlibHeader{
		CMF:     src[0],
		FLG:     src[1],
		Adler32: uint32(t[0])<<24 | uint32(t[1])<<16 | uint32(t[2])<<8 | uint32(t[3]),
	}

	return h, src[2 : len(src)-4], nil
}

func (h ZlibHeader) check() error {
	if h.CMF&0x0f != 8 {
		return errors.Wrapf(ErrZlibHeader, "compression method %d", h.CMF&0x0f)
	}
	if h.CMF>>4 > 7 {
		return errors.Wrapf(ErrZlibHeader, "window size 2^%d", 8+h.CMF>>4)
	}
	if (uint(h.CMF)<<8|uint(h.FLG))%31 != 0 {
		return errors.Wrap(ErrZlibHeader, "header check bits")
	}
	if h.FLG&0x20 != 0 {
		return errors.Wrap(ErrZlibHeader, "preset dictionary")
	}
	return nil
}

// Decompress decodes a zlib stream.
func Decompress(src []byte) ([]byte, error) {
	return defaultDecoder.Decompress(src)
}

// Decompress decodes a zlib stream.
func (d *Decoder) Decompress(src []byte) ([]byte, error) {
	return d.decompress(src, 0)
}

func (d *Decoder) decompress(src []byte, sizeHint int) ([]byte, error) {
	h, payload, err := UnwrapZlib(src)
	if err != nil {
		return nil, err
	}

	if d.Strict {
		if err := h.check(); err != nil {
			return nil, stageError(StageZlib, 0, err)
		}
	}

	out, err := d.inflate(payload, sizeHint)
	if err != nil {
		return nil, err
	}

	if d.Strict {
		if sum := adler32.Checksum(out); sum != h.Adler32 {
			return nil, stageError(StageZlib, len(src)-4,
				errors.Wrapf(ErrChecksum, "adler32 %08x, want %08x", sum, h.Adler32))
		}
	}

	return out, nil
}
