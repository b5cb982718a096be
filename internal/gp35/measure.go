package gp35

import (
	"github.com/intuitionamiga/gptab/internal/bytecursor"
	"github.com/intuitionamiga/gptab/internal/model"
)

// measureHeaderInfo carries the per-measure fields shared across every
// track (time signature, key, repeat) independent of any one track's
// beats, mirroring how GpifTransformer reads these once per MasterBar.
type measureHeaderInfo struct {
	timeSignature model.TimeSignature
	keySignature  *model.KeySignature
	section       *model.Section
	repeatStart   bool
	repeatEnd     bool
	repeatCount   int
}

// readGp5MeasureHeaders reads count measure headers, carrying forward
// numerator/denominator across headers whose flag bits are clear.
func readGp5MeasureHeaders(c *bytecursor.Cursor, count int) ([]measureHeaderInfo, error) {
	headers := make([]measureHeaderInfo, count)
	num, den := 4, 4

	for i := 0; i < count; i++ {
		if i > 0 {
			if err := c.Skip(1); err != nil {
				return nil, err
			}
		}
		flags, err := c.U8()
		if err != nil {
			return nil, err
		}

		h := measureHeaderInfo{}

		if flags&0x01 != 0 {
			v, err := c.I8()
			if err != nil {
				return nil, err
			}
			num = int(v)
		}
		if flags&0x02 != 0 {
			v, err := c.I8()
			if err != nil {
				return nil, err
			}
			den = int(v)
		}
		h.repeatStart = flags&0x04 != 0
		if flags&0x08 != 0 {
			v, err := c.I8()
			if err != nil {
				return nil, err
			}
			repeatCount := int(v)
			if repeatCount > 0 {
				repeatCount--
			}
			h.repeatEnd = true
			h.repeatCount = repeatCount
		}
		if flags&0x10 != 0 {
			if _, err := c.U8(); err != nil { // alternate ending
				return nil, err
			}
		}
		if flags&0x20 != 0 {
			if _, err := c.IntByteSizeString(); err != nil { // marker name
				return nil, err
			}
			if err := c.Skip(4); err != nil { // RGB + pad
				return nil, err
			}
		}
		if flags&0x40 != 0 {
			acc, err := c.I8()
			if err != nil {
				return nil, err
			}
			modeByte, err := c.I8()
			if err != nil {
				return nil, err
			}
			mode := model.ModeMajor
			if modeByte == 1 {
				mode = model.ModeMinor
			}
			h.keySignature = &model.KeySignature{Accidentals: int(acc), Mode: mode}
		}
		// flags & 0x80: double bar, carries no extra data.

		if flags&0x03 != 0 {
			if err := c.Skip(4); err != nil { // beam group data
				return nil, err
			}
		}
		if flags&0x10 == 0 {
			if err := c.Skip(1); err != nil {
				return nil, err
			}
		}
		if _, err := c.U8(); err != nil { // triplet feel
			return nil, err
		}

		h.timeSignature = model.TimeSignature{Numerator: num, Denominator: den}
		headers[i] = h
	}
	return headers, nil
}
