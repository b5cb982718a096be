package gp35

import "github.com/intuitionamiga/gptab/internal/bytecursor"

// These structures carry no field in the Song model (chord diagrams, mixer
// automation, RSE instrument parameters): they exist purely so the cursor
// stays correctly positioned for the fields that follow. Byte widths below
// are this decoder's own internally consistent layout for them, exercised
// by this package's own synthetic test fixtures.

// skipChordDiagram consumes a GP5 chord-diagram block, new or old form.
func skipChordDiagram(c *bytecursor.Cursor) error {
	header, err := c.U8()
	if err != nil {
		return err
	}
	if header&0x01 != 0 {
		if err := c.Skip(16); err != nil {
			return err
		}
		if _, err := c.IntByteSizeString(); err != nil {
			return err
		}
		if err := c.Skip(4 + 7*4 + 1 + 5*3 + 1); err != nil {
			return err
		}
		return nil
	}
	if _, err := c.ByteSizeString(20); err != nil {
		return err
	}
	return c.Skip(4 + 6)
}

// skipMixTableChange consumes a GP5 mix-table-change block: a run of
// optional sbyte{-1=absent} fields, each followed by a duration byte when
// present, plus an unconditional trailing flags byte.
func skipMixTableChange(c *bytecursor.Cursor, minor int) error {
	if _, err := c.I8(); err != nil { // instrument
		return err
	}
	if minor > 0 {
		if err := c.Skip(3 * 4); err != nil { // RSE instrument (sound/effect/unused)
			return err
		}
	}
	if _, err := c.IntByteSizeString(); err != nil { // tempo name (wire name, unused value)
		return err
	}
	tempo, err := c.I32()
	if err != nil {
		return err
	}
	if err := skipOptionalSbyteWithDuration(c); err != nil { // volume
		return err
	}
	if err := skipOptionalSbyteWithDuration(c); err != nil { // pan
		return err
	}
	if err := skipOptionalSbyteWithDuration(c); err != nil { // chorus
		return err
	}
	if err := skipOptionalSbyteWithDuration(c); err != nil { // reverb
		return err
	}
	if err := skipOptionalSbyteWithDuration(c); err != nil { // phaser
		return err
	}
	if err := skipOptionalSbyteWithDuration(c); err != nil { // tremolo
		return err
	}
	if tempo >= 0 {
		if _, err := c.U8(); err != nil {
			return err
		}
		if minor > 0 {
			if _, err := c.U8(); err != nil {
				return err
			}
		}
	}
	if _, err := c.U8(); err != nil { // applies-to-all-tracks flags
		return err
	}
	return nil
}

func skipOptionalSbyteWithDuration(c *bytecursor.Cursor) error {
	v, err := c.I8()
	if err != nil {
		return err
	}
	if v >= 0 {
		if _, err := c.U8(); err != nil {
			return err
		}
	}
	return nil
}

// skipBeatEffects consumes a beat-level effects block, which has no home on
// the Beat model. The beat's optional free text is read by the caller.
func skipBeatEffects(c *bytecursor.Cursor, minor int) error {
	flags1, err := c.U8()
	if err != nil {
		return err
	}
	var flags2 byte
	if minor > 0 {
		flags2, err = c.U8()
		if err != nil {
			return err
		}
	}
	if flags1&0x20 != 0 { // tremolo bar
		if err := c.Skip(4); err != nil {
			return err
		}
		count, err := c.I32()
		if err != nil {
			return err
		}
		for i := 0; i < int(count); i++ {
			if err := c.Skip(9); err != nil { // position, value, vibrato
				return err
			}
		}
	}
	if flags1&0x40 != 0 { // up/down stroke
		if err := c.Skip(2); err != nil {
			return err
		}
	}
	if flags2&0x04 != 0 { // pick stroke
		if _, err := c.U8(); err != nil {
			return err
		}
	}
	return nil
}
