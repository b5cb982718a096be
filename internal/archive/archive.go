// Package archive reads GP7's zip-compatible container far enough to pull a
// single named entry out of it: a backward end-of-central-directory scan,
// the central directory itself, and the one local file header it points at.
package archive

import (
	"encoding/binary"

	"github.com/intuitionamiga/gptab/internal/inflate"
)

// HeaderError reports that no end-of-central-directory record could be
// found, or that a header's magic did not match what was expected there.
type HeaderError struct{ Detail string }

func (e *HeaderError) Error() string { return "archive: bad header: " + e.Detail }

// UnsupportedCompressionError reports a central directory entry using a
// compression method other than stored or deflate.
type UnsupportedCompressionError struct{ Method uint16 }

func (e *UnsupportedCompressionError) Error() string {
	return "archive: unsupported compression method"
}

const (
	eocdSignature       = 0x06054B50
	centralDirSignature = 0x02014B50
	localHeaderSignature = 0x04034B50

	methodStored  = 0
	methodDeflate = 8
)

type centralDirEntry struct {
	name             string
	method           uint16
	compressedSize   uint32
	uncompressedSize uint32
	localHeaderOff   uint32
}

// Extract locates entryName inside a GP7 archive and returns its
// decompressed bytes.
func Extract(data []byte, entryName string) ([]byte, error) {
	eocdOff, err := findEOCD(data)
	if err != nil {
		return nil, err
	}
	if eocdOff+20 > len(data) {
		return nil, &HeaderError{Detail: "EOCD record truncated"}
	}
	entryCount := binary.LittleEndian.Uint16(data[eocdOff+10:])
	cdOffset := binary.LittleEndian.Uint32(data[eocdOff+16:])

	entries, err := readCentralDirectory(data, int(cdOffset), int(entryCount))
	if err != nil {
		return nil, err
	}

	for _, e := range entries {
		if e.name != entryName {
			continue
		}
		return extractEntry(data, e)
	}
	return nil, &HeaderError{Detail: "entry not found: " + entryName}
}

// findEOCD scans backward for the end-of-central-directory signature, which
// may be preceded by a variable-length comment field.
func findEOCD(data []byte) (int, error) {
	const minEOCD = 22
	if len(data) < minEOCD {
		return 0, &HeaderError{Detail: "file shorter than EOCD record"}
	}
	maxCommentLen := 0xFFFF
	searchStart := len(data) - minEOCD - maxCommentLen
	if searchStart < 0 {
		searchStart = 0
	}
	for i := len(data) - minEOCD; i >= searchStart; i-- {
		if binary.LittleEndian.Uint32(data[i:]) == eocdSignature {
			return i, nil
		}
	}
	return 0, &HeaderError{Detail: "end-of-central-directory signature not found"}
}

func readCentralDirectory(data []byte, offset, count int) ([]centralDirEntry, error) {
	entries := make([]centralDirEntry, 0, count)
	pos := offset
	for i := 0; i < count; i++ {
		if pos+46 > len(data) {
			return nil, &HeaderError{Detail: "central directory entry truncated"}
		}
		if binary.LittleEndian.Uint32(data[pos:]) != centralDirSignature {
			return nil, &HeaderError{Detail: "central directory entry signature mismatch"}
		}
		method := binary.LittleEndian.Uint16(data[pos+10:])
		compSize := binary.LittleEndian.Uint32(data[pos+20:])
		uncompSize := binary.LittleEndian.Uint32(data[pos+24:])
		nameLen := int(binary.LittleEndian.Uint16(data[pos+28:]))
		extraLen := int(binary.LittleEndian.Uint16(data[pos+30:]))
		commentLen := int(binary.LittleEndian.Uint16(data[pos+32:]))
		localOff := binary.LittleEndian.Uint32(data[pos+42:])

		nameStart := pos + 46
		if nameStart+nameLen > len(data) {
			return nil, &HeaderError{Detail: "central directory entry name truncated"}
		}
		name := string(data[nameStart : nameStart+nameLen])

		entries = append(entries, centralDirEntry{
			name:             name,
			method:           method,
			compressedSize:   compSize,
			uncompressedSize: uncompSize,
			localHeaderOff:   localOff,
		})

		pos = nameStart + nameLen + extraLen + commentLen
	}
	return entries, nil
}

func extractEntry(data []byte, e centralDirEntry) ([]byte, error) {
	off := int(e.localHeaderOff)
	if off+30 > len(data) {
		return nil, &HeaderError{Detail: "local file header truncated"}
	}
	if binary.LittleEndian.Uint32(data[off:]) != localHeaderSignature {
		return nil, &HeaderError{Detail: "local file header signature mismatch"}
	}
	nameLen := int(binary.LittleEndian.Uint16(data[off+26:]))
	extraLen := int(binary.LittleEndian.Uint16(data[off+28:]))
	dataStart := off + 30 + nameLen + extraLen
	dataEnd := dataStart + int(e.compressedSize)
	if dataEnd > len(data) {
		return nil, &HeaderError{Detail: "local file payload truncated"}
	}
	payload := data[dataStart:dataEnd]

	switch e.method {
	case methodStored:
		return payload, nil
	case methodDeflate:
		return inflate.Inflate(payload, int(e.uncompressedSize))
	default:
		return nil, &UnsupportedCompressionError{Method: e.method}
	}
}
