package gp35

import "github.com/intuitionamiga/gptab/internal/bytecursor"

// trackHeaderInfo is the subset of a GP5/GP3 track header the Song model
// needs.
type trackHeaderInfo struct {
	name       string
	tuningMidi []int
	capoFret   int
}

// readGp5TrackHeaders reads count track headers. minor gates the RSE
// instrument/equalizer shape that differs between GP5.0 and GP5.1+.
func readGp5TrackHeaders(c *bytecursor.Cursor, count int, minor int) ([]trackHeaderInfo, error) {
	headers := make([]trackHeaderInfo, count)

	if err := c.Skip(1); err != nil { // leading blank byte, always present
		return nil, err
	}

	for i := 0; i < count; i++ {
		if i > 0 && minor == 0 {
			if err := c.Skip(1); err != nil {
				return nil, err
			}
		}

		if _, err := c.U8(); err != nil { // flags1 (bit0 percussion)
			return nil, err
		}
		name, err := c.ByteSizeString(40)
		if err != nil {
			return nil, err
		}
		numStrings, err := c.I32()
		if err != nil {
			return nil, err
		}
		tuning := make([]int, 0, numStrings)
		for s := 0; s < 7; s++ {
			v, err := c.I32()
			if err != nil {
				return nil, err
			}
			if s < int(numStrings) {
				tuning = append(tuning, int(v))
			}
		}
		if _, err := c.I32(); err != nil { // port
			return nil, err
		}
		if _, err := c.I32(); err != nil { // channel index (1-based)
			return nil, err
		}
		if _, err := c.I32(); err != nil { // effect channel (1-based)
			return nil, err
		}
		if _, err := c.I32(); err != nil { // fret count
			return nil, err
		}
		capoFret, err := c.I32()
		if err != nil {
			return nil, err
		}
		if err := c.Skip(4); err != nil { // colour
			return nil, err
		}
		if _, err := c.I16(); err != nil { // display flags
			return nil, err
		}
		if err := c.Skip(2); err != nil { // auto accent, MIDI bank
			return nil, err
		}
		if _, err := c.U8(); err != nil { // RSE humanize
			return nil, err
		}
		if err := c.Skip(24); err != nil {
			return nil, err
		}
		if minor == 0 {
			if err := c.Skip(4 * 4); err != nil { // RSE instrument: 4 x int32
				return nil, err
			}
		} else {
			if err := c.Skip(4 + 2 + 2); err != nil { // RSE instrument: int32 + int16 + pad
				return nil, err
			}
			if err := c.Skip(5); err != nil { // 4-band equaliser + master gain
				return nil, err
			}
			if _, err := c.IntByteSizeString(); err != nil { // RSE instrument effect
				return nil, err
			}
			if _, err := c.IntByteSizeString(); err != nil { // RSE instrument effect category
				return nil, err
			}
		}

		headers[i] = trackHeaderInfo{name: name, tuningMidi: tuning, capoFret: int(capoFret)}
	}

	if minor > 0 {
		if err := c.Skip(1); err != nil {
			return nil, err
		}
	} else {
		if err := c.Skip(2); err != nil {
			return nil, err
		}
	}

	return headers, nil
}
