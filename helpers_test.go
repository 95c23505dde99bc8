package tinypng

import (
	"bytes"
	"compress/zlib"
	"hash/adler32"
	"hash/crc32"
)

// bitWriter packs bits the way DEFLATE expects: fields LSB first, Huffman
// codes starting from their most significant bit.
type bitWriter struct {
	buf  []byte
	nbit uint
}

func (w *bitWriter) writeBits(v uint32, n uint) {
	for i := uint(0); i < n; i++ {
		if w.nbit%8 == 0 {
			w.buf = append(w.buf, 0)
		}
		w.buf[len(w.buf)-1] |= byte((v>>i)&1) << (w.nbit % 8)
		w.nbit++
	}
}

func (w *bitWriter) writeCode(code uint32, n uint) {
	for i := int(n) - 1; i >= 0; i-- {
		w.writeBits(code>>uint(i), 1)
	}
}

// writeFixed writes sym with the fixed literal/length code.
func (w *bitWriter) writeFixed(sym int) {
	switch {
	case sym < 144:
		w.writeCode(uint32(0x30+sym), 8)
	case sym < 256:
		w.writeCode(uint32(0x190+sym-144), 9)
	case sym < 280:
		w.writeCode(uint32(sym-256), 7)
	default:
		w.writeCode(uint32(0xc0+sym-280), 8)
	}
}

func (w *bitWriter) bytes() []byte {
	return w.buf
}

// storedZlib wraps data in a zlib stream made of one final stored block.
func storedZlib(data []byte) []byte {
	n := len(data)
	out := []byte{0x78, 0x01, 0x01, byte(n), byte(n >> 8), ^byte(n), ^byte(n >> 8)}
	out = append(out, data...)
	sum := adler32.Checksum(data)
	return append(out, byte(sum>>24), byte(sum>>16), byte(sum>>8), byte(sum))
}

func zlibCompress(data []byte, level int) []byte {
	var buf bytes.Buffer
	w, err := zlib.NewWriterLevel(&buf, level)
	if err != nil {
		panic(err)
	}
	w.Write(data)
	w.Close()
	return buf.Bytes()
}

func pngChunk(typ string, data []byte) []byte {
	n := len(data)
	out := []byte{byte(n >> 24), byte(n >> 16), byte(n >> 8), byte(n)}
	out = append(out, typ...)
	out = append(out, data...)
	sum := crc32.ChecksumIEEE(out[4:])
	return append(out, byte(sum>>24), byte(sum>>16), byte(sum>>8), byte(sum))
}

func ihdr(width, height uint32, depth uint8, ct ColorType, interlace uint8) []byte {
	return pngChunk("IHDR", []byte{
		byte(width >> 24), byte(width >> 16), byte(width >> 8), byte(width),
		byte(height >> 24), byte(height >> 16), byte(height >> 8), byte(height),
		depth, byte(ct), 0, 0, interlace,
	})
}

func pngFile(chunks ...[]byte) []byte {
	out := []byte(pngSignature)
	for _, c := range chunks {
		out = append(out, c...)
	}
	return append(out, pngChunk("IEND", nil)...)
}
