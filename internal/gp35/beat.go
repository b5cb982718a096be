package gp35

import (
	"github.com/intuitionamiga/gptab/internal/bytecursor"
	"github.com/intuitionamiga/gptab/internal/model"
)

// readGp5Beat reads one GP5 beat.
func readGp5Beat(c *bytecursor.Cursor, tuningMidi []int, capoFret int, minor int) (model.Beat, error) {
	beat := model.Beat{Notes: map[int]model.Note{}}

	flags, err := c.U8()
	if err != nil {
		return beat, err
	}

	statusRest := false
	if flags&0x40 != 0 {
		status, err := c.U8()
		if err != nil {
			return beat, err
		}
		statusRest = status == 2
	}

	durCode, err := c.I8()
	if err != nil {
		return beat, err
	}
	beat.Duration = durationFromCode(int(durCode))

	if flags&0x01 != 0 {
		beat.Dotted = 1
	}

	if flags&0x20 != 0 {
		tupletCode, err := c.I32()
		if err != nil {
			return beat, err
		}
		beat.Tuplet = tupletFromCode(int(tupletCode))
	}

	if flags&0x02 != 0 {
		if err := skipChordDiagram(c); err != nil {
			return beat, err
		}
	}
	if flags&0x04 != 0 {
		if _, err := c.IntByteSizeString(); err != nil {
			return beat, err
		}
	}
	if flags&0x08 != 0 {
		if err := skipBeatEffects(c, minor); err != nil {
			return beat, err
		}
	}
	if flags&0x10 != 0 {
		if err := skipMixTableChange(c, minor); err != nil {
			return beat, err
		}
	}

	mask, err := c.U8()
	if err != nil {
		return beat, err
	}
	for _, stringIdx := range stringMaskBits(mask) {
		n, err := readGp5Note(c, stringIdx, tuningMidi, capoFret)
		if err != nil {
			return beat, err
		}
		beat.Notes[stringIdx] = n
	}

	flags2, err := c.I16()
	if err != nil {
		return beat, err
	}
	if flags2&0x0800 != 0 {
		if _, err := c.U8(); err != nil {
			return beat, err
		}
	}

	beat.IsRest = statusRest || len(beat.Notes) == 0
	return beat, nil
}
