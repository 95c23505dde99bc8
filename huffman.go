package tinypng

import (
	"github.com/pkg/errors"
)

const maxCodeLength = 15

type codeword struct {
	symbol uint16
	code   uint16
	length uint8
}

// canonicalCodes assigns the canonical prefix code described by lengths,
// where lengths[sym] is the code length of sym and 0 means sym is unused.
func canonicalCodes(lengths []uint8) ([]codeword, error) {
	var blCount [maxCodeLength + 1]int
	for sym, l := range lengths {
		if l > maxCodeLength {
			return nil, errors.Wrapf(ErrCodeLengths, "symbol %d has length %d", sym, l)
		}
		blCount[l]++
	}
	blCount[0] = 0

	var nextCode [maxCodeLength + 1]int
	code := 0
	for bits := 1; bits <= maxCodeLength; bits++ {
		code = (code + blCount[bits-1]) << 1
		nextCode[bits] = code
		if nextCode[bits]+blCount[bits] > 1<<bits {
			return nil, errors.Wrapf(ErrCodeLengths, "over-subscribed at length %d", bits)
		}
	}

	codes := make([]codeword, 0, len(lengths))
	for sym, l := range lengths {
		if l == 0 {
			continue
		}
		codes = append(codes, codeword{symbol: uint16(sym), code: uint16(nextCode[l]), length: l})
		nextCode[l]++
	}

	return codes, nil
}

type huffmanNode struct {
	child  [2]int32 // 0 = no child; the root is never anyone's child
	symbol uint16
	leaf   bool
}

// huffmanCode is a binary trie kept in a flat arena. nodes[0] is the root.
type huffmanCode struct {
	nodes []huffmanNode
}

func newHuffmanCode(lengths []uint8) (*huffmanCode, error) {
	codes, err := canonicalCodes(lengths)
	if err != nil {
		return nil, err
	}

	h := &huffmanCode{nodes: make([]huffmanNode, 1, 2*len(codes)+1)}
	for _, c := range codes {
		if err := h.insert(c); err != nil {
			return nil, err
		}
	}

	return h, nil
}

func (h *huffmanCode) insert(c codeword) error {
	cur := int32(0)
	for i := int(c.length) - 1; i >= 0; i-- {
		if h.nodes[cur].leaf {
			return errors.Wrapf(ErrCodeLengths, "code for symbol %d extends another code", c.symbol)
		}
		bit := (c.code >> uint(i)) & 1
		next := h.nodes[cur].child[bit]
		if next == 0 {
			h.nodes = append(h.nodes, huffmanNode{})
			next = int32(len(h.nodes) - 1)
			h.nodes[cur].child[bit] = next
		}
		cur = next
	}

	n := &h.nodes[cur]
	if n.leaf || n.child[0] != 0 || n.child[1] != 0 {
		return errors.Wrapf(ErrCodeLengths, "code for symbol %d collides", c.symbol)
	}
	n.leaf = true
	n.symbol = c.symbol

	return nil
}

func (h *huffmanCode) empty() bool {
	return len(h.nodes) == 1
}

// decode walks the trie one bit at a time: 1 goes right, 0 goes left.
func (h *huffmanCode) decode(br *bitReader) (uint16, error) {
	cur := int32(0)
	for {
		b, err := br.readBit()
		if err != nil {
			return 0, err
		}
		next := h.nodes[cur].child[b]
		if next == 0 {
			return 0, ErrInvalidCode
		}
		cur = next
		if h.nodes[cur].leaf {
			return h.nodes[cur].symbol, nil
		}
	}
}
