package gptab

import "github.com/intuitionamiga/gptab/internal/model"

// midiToPitchClass reduces a MIDI note number (or any signed offset) to the
// range [0, 12).
func midiToPitchClass(n int) int { return model.MidiToPitchClass(n) }

// noteNameForPitchClass renders pc in [0, 12) as a note name, preferring
// sharp spellings unless flats is requested.
func noteNameForPitchClass(pc int, flats bool) string { return model.NoteNameForPitchClass(pc, flats) }

// noteFromPitchClass builds a standalone Note carrying just the pitch
// identity (no string/fret) for a given pitch class, e.g. for tuning entries.
func noteFromPitchClass(pc int, midi int, flats bool) Note {
	pc = midiToPitchClass(pc)
	return Note{
		PitchClass: pc,
		NoteName:   noteNameForPitchClass(pc, flats),
	}
}

// fretPitchClass computes the sounding pitch class of a fretted note per
// invariant (I2): (tuningMidi[string] + capoFret + fret) mod 12.
func fretPitchClass(tuningMidi []int, stringIdx, capoFret, fret int) int {
	return model.FretPitchClass(tuningMidi, stringIdx, capoFret, fret)
}

// defaultTuningMidi is GPIF's fallback six-string standard tuning (low to
// high: E2 A2 D3 G3 B3 E4), used when a track's Properties omit tuning.
var defaultTuningMidi = model.DefaultTuningMidi
