// Package gpx decodes the GPX container: a BCFZ-compressed (custom LZ) or
// BCFS (raw) sector-based virtual filesystem that wraps a score.gpif XML
// document.
package gpx

import (
	"errors"

	"github.com/intuitionamiga/gptab/internal/bitcursor"
	"github.com/intuitionamiga/gptab/internal/bytecursor"
)

// HeaderError means the magic bytes did not match BCFZ or BCFS.
type HeaderError struct{ Detail string }

func (e *HeaderError) Error() string { return "gpx: bad header: " + e.Detail }

// ContainerError means the container was well-formed but score.gpif could
// not be located inside it.
type ContainerError struct{ Detail string }

func (e *ContainerError) Error() string { return "gpx: bad container: " + e.Detail }

const sectorSize = 0x1000
const scoreFileName = "score.gpif"

// Decode takes a whole GPX file and returns the raw UTF-8 bytes of the
// embedded score.gpif document.
func Decode(data []byte) ([]byte, error) {
	if len(data) < 4 {
		return nil, &HeaderError{Detail: "file shorter than magic"}
	}
	magic := string(data[0:4])

	var image []byte
	switch magic {
	case "BCFZ":
		if len(data) < 8 {
			return nil, &HeaderError{Detail: "BCFZ header truncated before length field"}
		}
		declaredLen := int(data[4]) | int(data[5])<<8 | int(data[6])<<16 | int(data[7])<<24
		decompressed, err := decompressBCFZ(data[8:], declaredLen)
		if err != nil {
			return nil, err
		}
		if len(decompressed) < 4 {
			image = decompressed
		} else {
			image = decompressed[4:]
		}
	case "BCFS":
		image = data[4:]
	default:
		return nil, &HeaderError{Detail: "magic is neither BCFZ nor BCFS"}
	}

	return extractScoreGpif(image)
}

// decompressBCFZ runs the GPX LZ stream (an MSB-first bit stream) until
// targetLen bytes have been produced or the stream runs out, whichever
// comes first; a truncated trailing block is tolerated and whatever has
// already been written is returned.
func decompressBCFZ(stream []byte, targetLen int) ([]byte, error) {
	if targetLen < 0 {
		targetLen = 0
	}
	out := make([]byte, 0, targetLen)
	br := bitcursor.NewMSB(stream)

	for len(out) < targetLen {
		flagBit, err := br.Read(1)
		if err != nil {
			break // tolerated: partial stream at a block boundary
		}
		if flagBit == 1 {
			wordSizeBits, err := br.Read(4)
			if err != nil {
				break
			}
			wordSize := int(wordSizeBits)
			offsetV, err := br.ReadReversed(wordSize)
			if err != nil {
				break
			}
			sizeV, err := br.ReadReversed(wordSize)
			if err != nil {
				break
			}
			offset := int(offsetV)
			size := int(sizeV)
			n := size
			if offset < n {
				n = offset
			}
			if offset <= 0 || offset > len(out) {
				break
			}
			start := len(out) - offset
			for i := 0; i < n && len(out) < targetLen; i++ {
				out = append(out, out[start+i])
			}
		} else {
			sizeV, err := br.ReadReversed(2)
			if err != nil {
				break
			}
			size := int(sizeV)
			for i := 0; i < size && len(out) < targetLen; i++ {
				b, err := br.Read(8)
				if err != nil {
					return out, nil
				}
				out = append(out, byte(b))
			}
		}
	}
	return out, nil
}

// extractScoreGpif walks the BCFS sector VFS looking for a file entry named
// score.gpif.
func extractScoreGpif(image []byte) ([]byte, error) {
	for base := sectorSize; base+4 <= len(image); base += sectorSize {
		c := bytecursor.New(image)
		c.Seek(base)
		kind, err := c.U32()
		if err != nil {
			break
		}
		if kind != 2 {
			continue
		}

		nameCursor := bytecursor.New(image)
		nameCursor.Seek(base + 0x04)
		name, err := readCString(nameCursor, 127)
		if err != nil {
			continue
		}

		sizeCursor := bytecursor.New(image)
		sizeCursor.Seek(base + 0x8C)
		declaredSize, err := sizeCursor.U32()
		if err != nil {
			continue
		}

		if name != scoreFileName {
			continue
		}

		blockIDs, err := readBlockIDs(image, base+0x94)
		if err != nil {
			return nil, err
		}
		payload, err := assemblePayload(image, blockIDs, int(declaredSize))
		if err != nil {
			return nil, err
		}
		return payload, nil
	}
	return nil, &ContainerError{Detail: "score.gpif not found in BCFS image"}
}

func readCString(c *bytecursor.Cursor, maxLen int) (string, error) {
	var raw []byte
	for i := 0; i < maxLen; i++ {
		b, err := c.U8()
		if err != nil {
			return "", err
		}
		if b == 0 {
			break
		}
		raw = append(raw, b)
	}
	return string(raw), nil
}

func readBlockIDs(image []byte, offset int) ([]int, error) {
	c := bytecursor.New(image)
	c.Seek(offset)
	var ids []int
	for {
		id, err := c.U32()
		if err != nil {
			return nil, errors.New("gpx: block id list runs past end of image")
		}
		if id == 0 {
			break
		}
		ids = append(ids, int(id))
	}
	return ids, nil
}

func assemblePayload(image []byte, blockIDs []int, declaredSize int) ([]byte, error) {
	out := make([]byte, 0, declaredSize)
	for _, id := range blockIDs {
		if len(out) >= declaredSize {
			break
		}
		start := id * sectorSize
		remaining := declaredSize - len(out)
		n := sectorSize
		if remaining < n {
			n = remaining
		}
		end := start + n
		if start < 0 || end > len(image) {
			return nil, &ContainerError{Detail: "file payload block out of range"}
		}
		out = append(out, image[start:end]...)
	}
	return out, nil
}
