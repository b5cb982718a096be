// Package model holds the resolved song aggregate shared by every decode
// path (GP3/GP5, GPX, GP7): the types live here, rather than in the root
// gptab package, so the internal decoders can construct them directly
// without an import cycle back through gptab.
package model

// Duration is one of the eight symbolic note-length values a beat can carry.
type Duration int

const (
	DurationWhole Duration = iota
	DurationHalf
	DurationQuarter
	DurationEighth
	Duration16th
	Duration32nd
	Duration64th
	Duration128th
)

// BaseBeats gives each Duration's base length in quarter-note beats (whole = 4).
var BaseBeats = [...]float64{
	DurationWhole:   4,
	DurationHalf:    2,
	DurationQuarter: 1,
	DurationEighth:  0.5,
	Duration16th:    0.25,
	Duration32nd:    0.125,
	Duration64th:    0.0625,
	Duration128th:   0.03125,
}

// Tuplet states that Num notes occupy the time normally taken by Den.
type Tuplet struct {
	Num int
	Den int
}

// TimeSignature is a bar's numerator/denominator pair, e.g. 4/4.
type TimeSignature struct {
	Numerator   int
	Denominator int
}

// Mode is the tonality of a KeySignature.
type Mode int

const (
	ModeMajor Mode = iota
	ModeMinor
)

// KeySignature carries the accidental count (negative = flats, positive =
// sharps) and tonality active at a bar.
type KeySignature struct {
	Accidentals int
	Mode        Mode
}

// Section marks a rehearsal-mark annotation on a bar.
type Section struct {
	Letter string
	Text   string
}

// Bend describes a pitch bend's shape: origin, destination, and an optional
// middle point, each in quarter-tones (matching the GPIF/GP5 bend encodings).
type Bend struct {
	Origin      float64
	Destination float64
	Middle      float64
}

// Tie marks whether a note's pitch carries from/into an adjacent note.
type Tie struct {
	Origin      bool
	Destination bool
}

// HarmonicType distinguishes the handful of harmonic techniques GP files encode.
type HarmonicType int

const (
	HarmonicNatural HarmonicType = iota
	HarmonicArtificial
	HarmonicTapped
	HarmonicPinch
	HarmonicSemi
)

// Note is a single fretted (or rest-adjacent) pitch within a Beat.
type Note struct {
	String     int // 0-based; 0 = highest-pitch string
	Fret       int
	PitchClass int
	NoteName   string

	Slide    *int // slide type code, nil if absent
	Harmonic *HarmonicType

	PalmMute bool
	Muted    bool
	LetRing  bool

	Bend *Bend
	Tie  Tie

	Vibrato bool

	HammerOn bool
	PullOff  bool
	Tapped   bool

	Accent bool
}

// Beat is a rhythmic moment in a bar: zero or more simultaneous Notes plus a duration.
type Beat struct {
	Index    int // global within the track
	BarIndex int

	Notes map[int]Note // keyed by string index

	Duration Duration
	Tuplet   *Tuplet
	Dotted   int

	IsRest bool

	Dynamic string
	Tempo   int
}

// Bar (measure) groups Beats under one time signature.
type Bar struct {
	Index int

	TimeSignature TimeSignature
	KeySignature  *KeySignature
	Section       *Section

	Beats []Beat

	RepeatStart bool
	RepeatEnd   bool
	RepeatCount int
}

// Track is one instrument's part: tuning, capo, and an ordered sequence of Bars.
type Track struct {
	ID         int
	Name       string
	ShortName  string
	Instrument string

	Tuning     []Note // highest-pitch string at index 0; Fret/PitchClass unused here
	TuningMidi []int  // same order, MIDI note numbers

	CapoFret int

	Bars []Bar
}

// Song is the fully resolved top-level aggregate returned by a parse call.
type Song struct {
	Title  string
	Artist string
	Album  string
	Tempo  int

	Tracks []Track
}

// DefaultTuningMidi is standard six-string tuning, low string first
// (E2 A2 D3 G3 B3 E4), matching the order GPIF stores it in.
var DefaultTuningMidi = []int{40, 45, 50, 55, 59, 64}

var sharpNames = [12]string{"C", "C♯", "D", "D♯", "E", "F", "F♯", "G", "G♯", "A", "A♯", "B"}
var flatNames = [12]string{"C", "D♭", "D", "E♭", "E", "F", "G♭", "G", "A♭", "A", "B♭", "B"}

// MidiToPitchClass reduces a MIDI note number to a pitch class in [0,12).
func MidiToPitchClass(n int) int {
	pc := n % 12
	if pc < 0 {
		pc += 12
	}
	return pc
}

// NoteNameForPitchClass renders a pitch class with sharp or flat spelling.
func NoteNameForPitchClass(pc int, flats bool) string {
	pc = MidiToPitchClass(pc)
	if flats {
		return flatNames[pc]
	}
	return sharpNames[pc]
}

// FretPitchClass implements invariant I2: pitchClass == (tuningMidi[string] +
// capoFret + fret) mod 12. Returns 0 if stringIdx is out of range.
func FretPitchClass(tuningMidi []int, stringIdx, capoFret, fret int) int {
	if stringIdx < 0 || stringIdx >= len(tuningMidi) {
		return 0
	}
	return MidiToPitchClass(tuningMidi[stringIdx] + capoFret + fret)
}
