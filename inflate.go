package tinypng

import (
	"github.com/pkg/errors"
)

const (
	endOfBlock     = 256
	maxLitLenCodes = 286
	maxDistCodes   = 30
	numCodeLengths = 19
)

var (
	lengthBase  = [...]int{3, 4, 5, 6, 7, 8, 9, 10, 11, 13, 15, 17, 19, 23, 27, 31, 35, 43, 51, 59, 67, 83, 99, 115, 131, 163, 195, 227, 258}
	lengthExtra = [...]uint{0, 0, 0, 0, 0, 0, 0, 0, 1, 1, 1, 1, 2, 2, 2, 2, 3, 3, 3, 3, 4, 4, 4, 4, 5, 5, 5, 5, 0}

	distBase  = [...]int{1, 2, 3, 4, 5, 7, 9, 13, 17, 25, 33, 49, 65, 97, 129, 193, 257, 385, 513, 769, 1025, 1537, 2049, 3073, 4097, 6145, 8193, 12289, 16385, 24577}
	distExtra = [...]uint{0, 0, 0, 0, 1, 1, 2, 2, 3, 3, 4, 4, 5, 5, 6, 6, 7, 7, 8, 8, 9, 9, 10, 10, 11, 11, 12, 12, 13, 13}

	// order in which code length code lengths are transmitted
	codeLengthOrder = [numCodeLengths]int{16, 17, 18, 0, 8, 7, 9, 6, 10, 5, 11, 4, 12, 3, 13, 2, 14, 1, 15}
)

var fixedLitLen, fixedDist = fixedCodes()

func fixedCodes() (*huffmanCode, *huffmanCode) {
	var lit [288]uint8
	for i := range lit {
		switch {
		case i < 144:
			lit[i] = 8
		case i < 256:
			lit[i] = 9
		case i < 280:
			lit[i] = 7
		default:
			lit[i] = 8
		}
	}

	var dist [32]uint8
	for i := range dist {
		dist[i] = 5
	}

	l, err := newHuffmanCode(lit[:])
	if err != nil {
		panic(err)
	}
	d, err := newHuffmanCode(dist[:])
	if err != nil {
		panic(err)
	}
	return l, d
}

type inflater struct {
	br     *bitReader
	out    []byte
	strict bool
}

// Inflate decodes a raw DEFLATE stream.
func Inflate(src []byte) ([]byte, error) {
	return defaultDecoder.Inflate(src)
}

func (f *inflater) run() error {
	for {
		final, err := f.block()
		if err != nil {
			return err
		}
		if final {
			return nil
		}
	}
}

func (f *inflater) block() (final bool, err error) {
	bfinal, err := f.br.readBit()
	if err != nil {
		return false, err
	}
	btype, err := f.br.readBits(2)
	if err != nil {
		return false, err
	}

	switch btype {
	case 0:
		err = f.stored()
	case 1:
		err = f.decodeSymbols(fixedLitLen, fixedDist)
	case 2:
		var lit, dist *huffmanCode
		lit, dist, err = f.dynamicHeader()
		if err == nil {
			err = f.decodeSymbols(lit, dist)
		}
	default:
		err = ErrBlockType
	}

	return bfinal == 1, err
}

func (f *inflater) stored() error {
	var hdr [4]byte
	for i := range hdr {
		b, err := f.br.readByte()
		if err != nil {
			return err
		}
		hdr[i] = b
	}
	n := int(hdr[0]) | int(hdr[1])<<8
	nn := int(hdr[2]) | int(hdr[3])<<8
	if f.strict && n != ^nn&0xffff {
		return errors.Wrapf(ErrStoredLength, "LEN %#04x NLEN %#04x", n, nn)
	}

	b, err := f.br.readBytes(n)
	if err != nil {
		return err
	}
	f.out = append(f.out, b...)
	return nil
}

func (f *inflater) dynamicHeader() (lit, dist *huffmanCode, err error) {
	hlit, err := f.br.readBits(5)
	if err != nil {
		return nil, nil, err
	}
	hdist, err := f.br.readBits(5)
	if err != nil {
		return nil, nil, err
	}
	hclen, err := f.br.readBits(4)
	if err != nil {
		return nil, nil, err
	}

	nlit := int(hlit) + 257
	ndist := int(hdist) + 1
	if nlit > maxLitLenCodes || ndist > maxDistCodes {
		return nil, nil, errors.Wrapf(ErrBlockHeader, "%d literal/length and %d distance codes", nlit, ndist)
	}

	var clens [numCodeLengths]uint8
	for i := 0; i < int(hclen)+4; i++ {
		v, err := f.br.readBits(3)
		if err != nil {
			return nil, nil, err
		}
		clens[codeLengthOrder[i]] = uint8(v)
	}
	clcode, err := newHuffmanCode(clens[:])
	if err != nil {
		return nil, nil, err
	}
	if clcode.empty() {
		return nil, nil, errors.Wrap(ErrEmptyCode, "code length code")
	}

	lengths, err := f.codeLengths(clcode, nlit+ndist)
	if err != nil {
		return nil, nil, err
	}
	if lengths[endOfBlock] == 0 {
		return nil, nil, errors.Wrap(ErrBlockHeader, "no code for end of block")
	}

	if lit, err = newHuffmanCode(lengths[:nlit]); err != nil {
		return nil, nil, err
	}
	if dist, err = newHuffmanCode(lengths[nlit:]); err != nil {
		return nil, nil, err
	}

	return lit, dist, nil
}

// codeLengths decodes the run-length coded lengths of n symbols.
func (f *inflater) codeLengths(clcode *huffmanCode, n int) ([]uint8, error) {
	lengths := make([]uint8, 0, n)
	for len(lengths) < n {
		sym, err := clcode.decode(f.br)
		if err != nil {
			return nil, err
		}
		if lengths, err = f.codeLengthRun(sym, lengths); err != nil {
			return nil, err
		}
		if len(lengths) > n {
			return nil, errors.Wrapf(ErrCodeLengths, "run overflows %d lengths", n)
		}
	}
	return lengths, nil
}

// codeLengthRun appends the lengths produced by one code length symbol.
func (f *inflater) codeLengthRun(sym uint16, lengths []uint8) ([]uint8, error) {
	var (
		repeat uint8
		count  int
	)

	switch {
	case sym < 16:
		return append(lengths, uint8(sym)), nil
	case sym == 16:
		if len(lengths) == 0 {
			return nil, errors.Wrap(ErrCodeLengths, "repeat with no previous length")
		}
		v, err := f.br.readBits(2)
		if err != nil {
			return nil, err
		}
		repeat, count = lengths[len(lengths)-1], 3+int(v)
	case sym == 17:
		v, err := f.br.readBits(3)
		if err != nil {
			return nil, err
		}
		count = 3 + int(v)
	case sym == 18:
		v, err := f.br.readBits(7)
		if err != nil {
			return nil, err
		}
		count = 11 + int(v)
	default:
		return nil, errors.Wrapf(ErrInvalidSymbol, "code length symbol %d", sym)
	}

	for i := 0; i < count; i++ {
		lengths = append(lengths, repeat)
	}
	return lengths, nil
}

func (f *inflater) decodeSymbols(lit, dist *huffmanCode) error {
	for {
		sym, err := lit.decode(f.br)
		if err != nil {
			return err
		}

		switch {
		case sym < endOfBlock:
			f.out = append(f.out, byte(sym))
			continue
		case sym == endOfBlock:
			return nil
		case int(sym) >= 257+len(lengthBase):
			return errors.Wrapf(ErrInvalidSymbol, "literal/length symbol %d", sym)
		}

		i := int(sym) - 257
		extra, err := f.br.readBits(lengthExtra[i])
		if err != nil {
			return err
		}
		length := lengthBase[i] + int(extra)

		dsym, err := dist.decode(f.br)
		if err != nil {
			return err
		}
		if int(dsym) >= len(distBase) {
			return errors.Wrapf(ErrInvalidSymbol, "distance symbol %d", dsym)
		}
		extra, err = f.br.readBits(distExtra[dsym])
		if err != nil {
			return err
		}
		distance := distBase[dsym] + int(extra)

		if err := f.copyBack(distance, length); err != nil {
			return err
		}
	}
}

// copyBack appends length bytes starting distance bytes before the end of
// the output. The copy runs forward one byte at a time, so with
// distance < length it reads bytes it has just written.
func (f *inflater) copyBack(distance, length int) error {
	if distance > len(f.out) {
		return errors.Wrapf(ErrDistance, "distance %d with %d bytes of output", distance, len(f.out))
	}
	start := len(f.out) - distance
	for i := 0; i < length; i++ {
		f.out = append(f.out, f.out[start+i])
	}
	return nil
}
