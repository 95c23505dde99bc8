// Package tinypng decodes PNG images with a self-contained zlib/DEFLATE
// decompressor.
//
// Checksums (zlib Adler-32, chunk CRC-32, stored block NLEN) are read but
// ignored unless a Decoder is created with Strict set.
package tinypng

// Decoder holds decoding options. The zero value is lenient and safe for
// concurrent use.
type Decoder struct {
	// Strict enables verification of the zlib header check bits, the
	// Adler-32 trailer, stored block NLEN fields and PNG chunk CRCs.
	Strict bool
}

var defaultDecoder = &Decoder{}

const (
	// headers can claim any size; only trust them this far when preallocating
	maxSizeHint = 64 << 20

	// upper bound on DEFLATE output per input byte (258 byte matches
	// coded in as little as two bits)
	maxExpansion = 1032
)

// Inflate decodes a raw DEFLATE stream.
func (d *Decoder) Inflate(src []byte) ([]byte, error) {
	return d.inflate(src, 0)
}

// inflate decodes src, preallocating sizeHint bytes of output.
func (d *Decoder) inflate(src []byte, sizeHint int) ([]byte, error) {
	sizeHint = clampSizeHint(sizeHint, len(src))
	f := &inflater{
		br:     newBitReader(src),
		out:    make([]byte, 0, sizeHint),
		strict: d.Strict,
	}
	if err := f.run(); err != nil {
		return nil, stageError(StageInflate, f.br.offset(), err)
	}
	return f.out, nil
}

// clampSizeHint bounds a claimed output size by what n input bytes can
// produce. Negative hints come from overflowed header arithmetic.
func clampSizeHint(sizeHint, n int) int {
	if sizeHint <= 0 {
		return 0
	}
	if sizeHint > maxSizeHint {
		sizeHint = maxSizeHint
	}
	if n < maxSizeHint/maxExpansion && sizeHint > n*maxExpansion {
		sizeHint = n * maxExpansion
	}
	return sizeHint
}
