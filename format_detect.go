package gptab

import (
	"bytes"
	"strings"

	"github.com/intuitionamiga/gptab/internal/gp35"
)

// Format identifies which on-disk container a set of bytes decodes as.
type Format int

const (
	FormatUnknown Format = iota
	FormatGPX
	FormatGP7
	FormatGP5
	FormatGP3
)

func (f Format) String() string {
	switch f {
	case FormatGPX:
		return "GPX"
	case FormatGP7:
		return "GP7"
	case FormatGP5:
		return "GP5"
	case FormatGP3:
		return "GP3"
	default:
		return "UNKNOWN"
	}
}

// minDetectableLen is the shortest input DetectFormat can confidently rule
// every magic out for: the BCFZ/BCFS container magic, the longest of the
// fixed magics this package checks.
const minDetectableLen = 4

// DetectFormat classifies raw file bytes, consulting filename as a fallback
// when the magic bytes alone do not decide (spec §4.9). An input too short
// to rule out every known magic fails TRUNCATED rather than
// UNRECOGNIZED_FORMAT.
func DetectFormat(data []byte, filename string) (Format, error) {
	if bytes.HasPrefix(data, []byte("BCFZ")) || bytes.HasPrefix(data, []byte("BCFS")) {
		return FormatGPX, nil
	}
	if len(data) >= 2 && data[0] == 0x50 && data[1] == 0x4B {
		return FormatGP7, nil
	}
	if f, ok := sniffSequentialVersion(data); ok {
		return f, nil
	}

	lower := strings.ToLower(filename)
	switch {
	case strings.HasSuffix(lower, ".gpx"):
		return FormatGPX, nil
	case strings.HasSuffix(lower, ".gp5"), strings.HasSuffix(lower, ".gp4"), strings.HasSuffix(lower, ".gp3"):
		if f, ok := sniffSequentialVersion(data); ok {
			return f, nil
		}
		return FormatGP5, nil
	case strings.HasSuffix(lower, ".gp"):
		return FormatGP7, nil
	}

	if len(data) < minDetectableLen {
		return FormatUnknown, newErr(ErrTruncated, "detect", "too few bytes to rule out every known format magic")
	}
	return FormatUnknown, newErr(ErrUnrecognizedFormat, "detect", "no recognizable format magic or filename suffix")
}

// sniffSequentialVersion reads the leading length-prefixed version string a
// GP3/GP5 file opens with (without consuming a cursor the decoder itself
// needs) and classifies it by its "GUITAR PRO" substring and vN.
func sniffSequentialVersion(data []byte) (Format, bool) {
	if len(data) < 1 {
		return FormatUnknown, false
	}
	l := int(data[0])
	if l <= 10 || l >= 50 {
		return FormatUnknown, false
	}
	end := 1 + l
	if end > len(data) {
		return FormatUnknown, false
	}
	head := string(data[1:end])
	check := head
	if len(check) > 40 {
		check = check[:40]
	}
	if !strings.Contains(check, "GUITAR PRO") {
		return FormatUnknown, false
	}
	if gp35.VersionSelectsGp3(head) {
		return FormatGP3, true
	}
	return FormatGP5, true
}
