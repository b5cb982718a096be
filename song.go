// Package gptab decodes Guitar Pro tablature files (GP3, GP5, GPX, GP7) into
// a single unified in-memory song model.
package gptab

import "github.com/intuitionamiga/gptab/internal/model"

// The song model's types live in internal/model so the internal decoders
// (gpif, gp35) can construct them directly without importing this package
// (which would make a cycle, since gptab imports them). These aliases keep
// the public surface exactly gptab.Song/Track/Bar/Beat/Note as named in
// the package doc above.

type Duration = model.Duration

const (
	DurationWhole   = model.DurationWhole
	DurationHalf    = model.DurationHalf
	DurationQuarter = model.DurationQuarter
	DurationEighth  = model.DurationEighth
	Duration16th    = model.Duration16th
	Duration32nd    = model.Duration32nd
	Duration64th    = model.Duration64th
	Duration128th   = model.Duration128th
)

type Tuplet = model.Tuplet
type TimeSignature = model.TimeSignature
type Mode = model.Mode

const (
	ModeMajor = model.ModeMajor
	ModeMinor = model.ModeMinor
)

type KeySignature = model.KeySignature
type Section = model.Section
type Bend = model.Bend
type Tie = model.Tie
type HarmonicType = model.HarmonicType

const (
	HarmonicNatural    = model.HarmonicNatural
	HarmonicArtificial = model.HarmonicArtificial
	HarmonicTapped     = model.HarmonicTapped
	HarmonicPinch      = model.HarmonicPinch
	HarmonicSemi       = model.HarmonicSemi
)

type Note = model.Note
type Beat = model.Beat
type Bar = model.Bar
type Track = model.Track
type Song = model.Song

// baseBeats gives each Duration's base length in quarter-note beats (whole = 4).
var baseBeats = model.BaseBeats
