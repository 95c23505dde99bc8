package tinypng

// bitReader reads DEFLATE's bit order: bits are taken from the least
// significant end of each byte first.
type bitReader struct {
	data []byte
	pos  int  // index of the byte bits are currently taken from
	nbit uint // bits of data[pos] already consumed, 0..8
}

func newBitReader(data []byte) *bitReader {
	return &bitReader{data: data}
}

func (br *bitReader) readBit() (uint32, error) {
	if br.nbit == 8 {
		br.pos++
		br.nbit = 0
	}
	if br.pos >= len(br.data) {
		return 0, ErrUnexpectedEOF
	}
	b := uint32(br.data[br.pos]>>br.nbit) & 1
	br.nbit++
	return b, nil
}

// readBits reads n bits, the first one read ending up as bit 0 of the result.
func (br *bitReader) readBits(n uint) (uint32, error) {
	var v uint32
	for i := uint(0); i < n; i++ {
		b, err := br.readBit()
		if err != nil {
			return 0, err
		}
		v |= b << i
	}
	return v, nil
}

// align drops whatever is left of a partially consumed byte.
func (br *bitReader) align() {
	if br.nbit > 0 {
		br.pos++
		br.nbit = 0
	}
}

func (br *bitReader) readByte() (byte, error) {
	br.align()
	if br.pos >= len(br.data) {
		return 0, ErrUnexpectedEOF
	}
	b := br.data[br.pos]
	br.pos++
	return b, nil
}

// readBytes returns the next n whole bytes. The result aliases the input.
func (br *bitReader) readBytes(n int) ([]byte, error) {
	br.align()
	if n > len(br.data)-br.pos {
		return nil, ErrUnexpectedEOF
	}
	b := br.data[br.pos : br.pos+n]
	br.pos += n
	return b, nil
}

func (br *bitReader) offset() int {
	return br.pos
}
