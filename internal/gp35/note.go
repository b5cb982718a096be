package gp35

import (
	"github.com/intuitionamiga/gptab/internal/bytecursor"
	"github.com/intuitionamiga/gptab/internal/model"
)

// harmonicByCode maps GP5's signed-byte harmonic type code to HarmonicType.
var harmonicByCode = map[int]model.HarmonicType{
	1: model.HarmonicNatural,
	2: model.HarmonicArtificial,
	3: model.HarmonicTapped,
	4: model.HarmonicPinch,
	5: model.HarmonicSemi,
}

// readGp5NoteEffects reads the two-flag-byte GP5 note effects block,
// mutating n in place. Per the documented GP5/GP3 limitation, hammer-on and
// pull-off share one bit; PullOff is left false (see package gp35's
// decision note in this repository's design ledger).
func readGp5NoteEffects(c *bytecursor.Cursor, n *model.Note) error {
	flags1, err := c.U8()
	if err != nil {
		return err
	}
	flags2, err := c.U8()
	if err != nil {
		return err
	}

	if flags1&0x01 != 0 {
		bend, err := readBend(c)
		if err != nil {
			return err
		}
		n.Bend = bend
	}
	if flags1&0x02 != 0 {
		n.HammerOn = true
	}
	if flags1&0x08 != 0 {
		n.LetRing = true
	}
	if flags1&0x10 != 0 { // grace note
		if err := c.Skip(5); err != nil {
			return err
		}
	}

	if flags2&0x02 != 0 {
		n.PalmMute = true
	}
	if flags2&0x04 != 0 { // tremolo picking
		if _, err := c.I8(); err != nil {
			return err
		}
	}
	if flags2&0x08 != 0 { // slide
		v, err := c.I8()
		if err != nil {
			return err
		}
		sv := int(v)
		n.Slide = &sv
	}
	if flags2&0x10 != 0 { // harmonic
		typ, err := c.I8()
		if err != nil {
			return err
		}
		switch typ {
		case 2:
			if err := c.Skip(3); err != nil {
				return err
			}
		case 3:
			if err := c.Skip(1); err != nil {
				return err
			}
		}
		if h, ok := harmonicByCode[int(typ)]; ok {
			n.Harmonic = &h
		}
	}
	if flags2&0x20 != 0 { // trill
		if err := c.Skip(2); err != nil {
			return err
		}
	}
	if flags2&0x40 != 0 {
		n.Vibrato = true
	}

	return nil
}

// readGp5Note reads one GP5 note for string stringIdx (0-based, highest
// string first) and returns its resolved Note.
func readGp5Note(c *bytecursor.Cursor, stringIdx int, tuningMidi []int, capoFret int) (model.Note, error) {
	n := model.Note{String: stringIdx}

	flags, err := c.U8()
	if err != nil {
		return n, err
	}
	if flags&0x02 != 0 || flags&0x40 != 0 {
		n.Accent = true
	}

	if flags&0x20 != 0 {
		noteType, err := c.U8()
		if err != nil {
			return n, err
		}
		switch noteType {
		case 2:
			n.Tie.Destination = true
		case 3:
			n.Muted = true
		}
	}
	if flags&0x10 != 0 {
		if _, err := c.I8(); err != nil { // velocity
			return n, err
		}
	}
	if flags&0x20 != 0 {
		fret, err := c.I8()
		if err != nil {
			return n, err
		}
		n.Fret = fretClamp(int(fret))
	}
	if flags&0x80 != 0 { // fingerings
		if err := c.Skip(2); err != nil {
			return n, err
		}
	}
	if flags&0x01 != 0 { // duration percent
		if err := c.Skip(8); err != nil {
			return n, err
		}
	}
	if _, err := c.U8(); err != nil { // GP5 note flags2
		return n, err
	}
	if flags&0x08 != 0 {
		if err := readGp5NoteEffects(c, &n); err != nil {
			return n, err
		}
	}

	n.PitchClass = model.FretPitchClass(tuningMidi, stringIdx, capoFret, n.Fret)
	n.NoteName = model.NoteNameForPitchClass(n.PitchClass, false)
	return n, nil
}
