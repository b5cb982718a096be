package gp35

import (
	"regexp"
	"strconv"

	"github.com/intuitionamiga/gptab/internal/bytecursor"
	"github.com/intuitionamiga/gptab/internal/model"
)

var versionRe = regexp.MustCompile(`[vV](\d+)\.(\d+)`)

// parseVersion extracts the major.minor pair from a version string like
// "FICHIER GUITAR PRO v5.10".
func parseVersion(s string) (major, minor int, ok bool) {
	m := versionRe.FindStringSubmatch(s)
	if m == nil {
		return 0, 0, false
	}
	maj, errMaj := strconv.Atoi(m[1])
	min, errMin := strconv.Atoi(m[2])
	if errMaj != nil || errMin != nil {
		return 0, 0, false
	}
	return maj, min, true
}

// VersionSelectsGp3 reports whether a version string selects the GP3
// decoder rather than GP5 (a "v3" major version, per spec.md's detection
// rule). Exported for the root package's format sniffing; DecodeGp5 and
// DecodeGp3 check the major version through parseVersion directly.
func VersionSelectsGp3(s string) bool {
	major, _, ok := parseVersion(s)
	return ok && major == 3
}

// fretClamp clamps a raw fret reading to the 0..99 range GP5 uses for
// out-of-range values.
func fretClamp(fret int) int {
	if fret < 0 {
		return 0
	}
	if fret > 99 {
		return 99
	}
	return fret
}

// stringMaskBits reads one string-mask byte (bits 6..0 marking GP strings
// 1..7, where GP string 1 is the highest-pitch string = output index 0) and
// returns the 0-based output-model string indices present, highest string
// first.
func stringMaskBits(mask byte) []int {
	var indices []int
	for bit := 6; bit >= 0; bit-- {
		if mask&(1<<uint(bit)) != 0 {
			indices = append(indices, 6-bit)
		}
	}
	return indices
}

// readBend reads a GP5/GP3 bend structure: sbyte type, int32 value, int32
// pointCount, then pointCount x {int32 position, int32 value, bool vibrato}.
// Only origin/destination/middle values are kept (the type byte and exact
// point timeline are cosmetic detail the Song model does not carry).
func readBend(c *bytecursor.Cursor) (*model.Bend, error) {
	if _, err := c.I8(); err != nil {
		return nil, err
	}
	if _, err := c.I32(); err != nil {
		return nil, err
	}
	pointCount, err := c.I32()
	if err != nil {
		return nil, err
	}
	bend := &model.Bend{}
	for i := 0; i < int(pointCount); i++ {
		if _, err := c.I32(); err != nil {
			return nil, err
		}
		v, err := c.I32()
		if err != nil {
			return nil, err
		}
		if _, err := c.Bool(); err != nil {
			return nil, err
		}
		val := float64(v)
		switch i {
		case 0:
			bend.Origin = val
		case int(pointCount) - 1:
			bend.Destination = val
		default:
			bend.Middle = val
		}
	}
	return bend, nil
}
