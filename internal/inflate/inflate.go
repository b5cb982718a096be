// Package inflate implements a from-scratch RFC 1951 (DEFLATE) decompressor,
// driven by an LSB-first bit cursor, for extracting files from GP7's
// archive container.
package inflate

import (
	"github.com/intuitionamiga/gptab/internal/bitcursor"
)

// CorruptError reports any RFC 1951 stream violation.
type CorruptError struct {
	Detail string
}

func (e *CorruptError) Error() string {
	return "corrupt deflate stream: " + e.Detail
}

func corrupt(detail string) error {
	return &CorruptError{Detail: detail}
}

// codeLengthOrder is the fixed order in which dynamic-block code-length
// alphabet lengths are transmitted (RFC 1951 §3.2.7).
var codeLengthOrder = [19]int{16, 17, 18, 0, 8, 7, 9, 6, 10, 5, 11, 4, 12, 3, 13, 2, 14, 1, 15}

// lengthBase/lengthExtraBits give the base match length and extra-bit count
// for length symbols 257..285 (RFC 1951 §3.2.5).
var lengthBase = [29]int{3, 4, 5, 6, 7, 8, 9, 10, 11, 13, 15, 17, 19, 23, 27, 31, 35, 43, 51, 59, 67, 83, 99, 115, 131, 163, 195, 227, 258}
var lengthExtraBits = [29]int{0, 0, 0, 0, 0, 0, 0, 0, 1, 1, 1, 1, 2, 2, 2, 2, 3, 3, 3, 3, 4, 4, 4, 4, 5, 5, 5, 5, 0}

// distBase/distExtraBits give the base copy distance and extra-bit count for
// distance symbols 0..29.
var distBase = [30]int{1, 2, 3, 4, 5, 7, 9, 13, 17, 25, 33, 49, 65, 97, 129, 193, 257, 385, 513, 769, 1025, 1537, 2049, 3073, 4097, 6145, 8193, 12289, 16385, 24577}
var distExtraBits = [30]int{0, 0, 0, 0, 1, 1, 2, 2, 3, 3, 4, 4, 5, 5, 6, 6, 7, 7, 8, 8, 9, 9, 10, 10, 11, 11, 12, 12, 13, 13}

const endOfBlock = 256
const maxBits = 15

// huffman is a canonical Huffman decode table built from an array of code
// lengths (length 0 = symbol unused), following the standard counts/offsets
// construction.
type huffman struct {
	counts  [maxBits + 1]int
	symbols []int
}

func buildHuffman(lengths []int) (*huffman, error) {
	h := &huffman{symbols: make([]int, len(lengths))}
	for _, l := range lengths {
		if l < 0 || l > maxBits {
			return nil, corrupt("code length out of range")
		}
		h.counts[l]++
	}
	h.counts[0] = 0

	var offsets [maxBits + 2]int
	for l := 1; l <= maxBits; l++ {
		offsets[l+1] = offsets[l] + h.counts[l]
	}
	next := offsets
	for sym, l := range lengths {
		if l == 0 {
			continue
		}
		h.symbols[next[l]] = sym
		next[l]++
	}
	return h, nil
}

// decode reads one symbol from br using h, bit by bit, matching the
// MSB-first packing order Huffman codes use within the LSB-first bitstream.
func decode(br *bitcursor.LSB, h *huffman) (int, error) {
	code, first, index := 0, 0, 0
	for length := 1; length <= maxBits; length++ {
		bit, err := br.Read(1)
		if err != nil {
			return 0, err
		}
		code |= int(bit)
		count := h.counts[length]
		if code-first < count {
			return h.symbols[index+(code-first)], nil
		}
		index += count
		first += count
		first <<= 1
		code <<= 1
	}
	return 0, corrupt("huffman code not found")
}

var fixedLit *huffman
var fixedDist *huffman

func init() {
	litLengths := make([]int, 288)
	for i := 0; i < 144; i++ {
		litLengths[i] = 8
	}
	for i := 144; i < 256; i++ {
		litLengths[i] = 9
	}
	for i := 256; i < 280; i++ {
		litLengths[i] = 7
	}
	for i := 280; i < 288; i++ {
		litLengths[i] = 8
	}
	var err error
	fixedLit, err = buildHuffman(litLengths)
	if err != nil {
		panic(err)
	}

	distLengths := make([]int, 30)
	for i := range distLengths {
		distLengths[i] = 5
	}
	fixedDist, err = buildHuffman(distLengths)
	if err != nil {
		panic(err)
	}
}

// Inflate decompresses a raw DEFLATE stream. sizeHint, if positive, is used
// to preallocate the output buffer (the caller's declared uncompressed
// size); decoding always continues until the BFINAL bit regardless of
// sizeHint.
func Inflate(data []byte, sizeHint int) ([]byte, error) {
	if sizeHint < 0 {
		sizeHint = 0
	}
	br := bitcursor.NewLSB(data)
	out := make([]byte, 0, sizeHint)

	for {
		final, err := br.Read(1)
		if err != nil {
			return nil, err
		}
		btype, err := br.Read(2)
		if err != nil {
			return nil, err
		}

		switch btype {
		case 0:
			out, err = inflateStored(br, out)
		case 1:
			out, err = inflateHuffman(br, out, fixedLit, fixedDist)
		case 2:
			var lit, dist *huffman
			lit, dist, err = readDynamicTables(br)
			if err == nil {
				out, err = inflateHuffman(br, out, lit, dist)
			}
		default:
			err = corrupt("invalid block type 3")
		}
		if err != nil {
			return nil, err
		}

		if final == 1 {
			return out, nil
		}
	}
}

func inflateStored(br *bitcursor.LSB, out []byte) ([]byte, error) {
	br.AlignToByte()
	lenLo, err := br.ReadByte()
	if err != nil {
		return nil, err
	}
	lenHi, err := br.ReadByte()
	if err != nil {
		return nil, err
	}
	// NLEN (one's complement of LEN) follows but is not cross-checked; the
	// container already carries an authoritative declared size.
	if _, err := br.ReadByte(); err != nil {
		return nil, err
	}
	if _, err := br.ReadByte(); err != nil {
		return nil, err
	}
	n := int(lenLo) | int(lenHi)<<8
	for i := 0; i < n; i++ {
		b, err := br.ReadByte()
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, nil
}

func inflateHuffman(br *bitcursor.LSB, out []byte, lit, dist *huffman) ([]byte, error) {
	for {
		sym, err := decode(br, lit)
		if err != nil {
			return nil, err
		}
		if sym == endOfBlock {
			return out, nil
		}
		if sym < endOfBlock {
			out = append(out, byte(sym))
			continue
		}

		idx := sym - 257
		if idx < 0 || idx >= len(lengthBase) {
			return nil, corrupt("invalid length symbol")
		}
		length := lengthBase[idx]
		if extra := lengthExtraBits[idx]; extra > 0 {
			bits, err := br.Read(extra)
			if err != nil {
				return nil, err
			}
			length += int(bits)
		}

		distSym, err := decode(br, dist)
		if err != nil {
			return nil, err
		}
		if distSym < 0 || distSym >= len(distBase) {
			return nil, corrupt("invalid distance symbol")
		}
		distance := distBase[distSym]
		if extra := distExtraBits[distSym]; extra > 0 {
			bits, err := br.Read(extra)
			if err != nil {
				return nil, err
			}
			distance += int(bits)
		}

		if distance > len(out) {
			return nil, corrupt("back-reference distance exceeds decoded output")
		}
		start := len(out) - distance
		for i := 0; i < length; i++ {
			out = append(out, out[start+i])
		}
	}
}

func readDynamicTables(br *bitcursor.LSB) (lit *huffman, dist *huffman, err error) {
	hlitBits, err := br.Read(5)
	if err != nil {
		return nil, nil, err
	}
	hdistBits, err := br.Read(5)
	if err != nil {
		return nil, nil, err
	}
	hclenBits, err := br.Read(4)
	if err != nil {
		return nil, nil, err
	}
	hlit := int(hlitBits) + 257
	hdist := int(hdistBits) + 1
	hclen := int(hclenBits) + 4

	clLengths := make([]int, 19)
	for i := 0; i < hclen; i++ {
		v, err := br.Read(3)
		if err != nil {
			return nil, nil, err
		}
		clLengths[codeLengthOrder[i]] = int(v)
	}
	clHuff, err := buildHuffman(clLengths)
	if err != nil {
		return nil, nil, err
	}

	total := hlit + hdist
	lengths := make([]int, 0, total)
	var prev int
	for len(lengths) < total {
		sym, err := decode(br, clHuff)
		if err != nil {
			return nil, nil, err
		}
		switch {
		case sym <= 15:
			lengths = append(lengths, sym)
			prev = sym
		case sym == 16:
			bits, err := br.Read(2)
			if err != nil {
				return nil, nil, err
			}
			repeat := int(bits) + 3
			if len(lengths) == 0 {
				return nil, nil, corrupt("repeat code 16 with no previous length")
			}
			for i := 0; i < repeat; i++ {
				lengths = append(lengths, prev)
			}
		case sym == 17:
			bits, err := br.Read(3)
			if err != nil {
				return nil, nil, err
			}
			repeat := int(bits) + 3
			for i := 0; i < repeat; i++ {
				lengths = append(lengths, 0)
			}
			prev = 0
		case sym == 18:
			bits, err := br.Read(7)
			if err != nil {
				return nil, nil, err
			}
			repeat := int(bits) + 11
			for i := 0; i < repeat; i++ {
				lengths = append(lengths, 0)
			}
			prev = 0
		default:
			return nil, nil, corrupt("code-length overrun past alphabet")
		}
	}
	if len(lengths) != total {
		return nil, nil, corrupt("code-length overrun past alphabet")
	}

	lit, err = buildHuffman(lengths[:hlit])
	if err != nil {
		return nil, nil, err
	}
	dist, err = buildHuffman(lengths[hlit:])
	if err != nil {
		return nil, nil, err
	}
	return lit, dist, nil
}
