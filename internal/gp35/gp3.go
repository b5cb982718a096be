package gp35

import (
	"github.com/intuitionamiga/gptab/internal/bytecursor"
	"github.com/intuitionamiga/gptab/internal/model"
)

// DecodeGp3 decodes a GP3 file into a Song. GP3 drops lyrics, RSE, page
// setup and directions blocks relative to GP5, reads tempo/key directly
// after a single global triplet-feel bool, and carries one voice per
// measure with simpler beat/note effect encodings.
func DecodeGp3(data []byte) (*model.Song, error) {
	c := bytecursor.New(data)

	versionStr, err := c.ByteSizeString(30)
	if err != nil {
		return nil, err
	}
	major, _, ok := parseVersion(versionStr)
	if !ok || major != 3 {
		return nil, &VersionError{Detail: versionStr}
	}

	song := &model.Song{Tempo: 120}

	if err := readGp3ScoreInfo(c, song); err != nil {
		return nil, err
	}
	if _, err := c.Bool(); err != nil { // triplet feel
		return nil, err
	}
	tempo, err := c.I32()
	if err != nil {
		return nil, err
	}
	song.Tempo = int(tempo)
	if _, err := c.I32(); err != nil { // key
		return nil, err
	}

	measureCount, err := c.I32()
	if err != nil {
		return nil, err
	}
	trackCount, err := c.I32()
	if err != nil {
		return nil, err
	}

	measureHeaders, err := readGp3MeasureHeaders(c, int(measureCount))
	if err != nil {
		return nil, err
	}
	trackHeaders, err := readGp5TrackHeaders(c, int(trackCount), 0)
	if err != nil {
		return nil, err
	}

	tracks := make([]model.Track, len(trackHeaders))
	for i, th := range trackHeaders {
		tracks[i] = model.Track{
			ID:         i,
			Name:       th.name,
			TuningMidi: th.tuningMidi,
			CapoFret:   th.capoFret,
			Bars:       make([]model.Bar, len(measureHeaders)),
		}
		for bi, mh := range measureHeaders {
			tracks[i].Bars[bi] = model.Bar{
				Index:         bi,
				TimeSignature: mh.timeSignature,
				KeySignature:  mh.keySignature,
				Section:       mh.section,
				RepeatStart:   mh.repeatStart,
				RepeatEnd:     mh.repeatEnd,
				RepeatCount:   mh.repeatCount,
			}
		}
	}

	beatCounters := make([]int, len(tracks))
	for mi := range measureHeaders {
		for ti := range tracks {
			beats, err := readGp3Voice(c, tracks[ti].TuningMidi, tracks[ti].CapoFret)
			if err != nil {
				return nil, err
			}
			for bi := range beats {
				beats[bi].BarIndex = mi
				beats[bi].Index = beatCounters[ti]
				beats[bi].Tempo = song.Tempo
				beatCounters[ti]++
			}
			tracks[ti].Bars[mi].Beats = beats
		}
	}

	song.Tracks = tracks
	return song, nil
}

func readGp3Voice(c *bytecursor.Cursor, tuningMidi []int, capoFret int) ([]model.Beat, error) {
	beatCount, err := c.I32()
	if err != nil {
		return nil, err
	}
	beats := make([]model.Beat, 0, beatCount)
	for i := 0; i < int(beatCount); i++ {
		b, err := readGp3Beat(c, tuningMidi, capoFret)
		if err != nil {
			return nil, err
		}
		beats = append(beats, b)
	}
	return beats, nil
}

func readGp3ScoreInfo(c *bytecursor.Cursor, song *model.Song) error {
	fieldCount := 8 // one fewer than GP5's 9
	values := make([]string, fieldCount)
	for i := 0; i < fieldCount; i++ {
		v, err := c.IntByteSizeString()
		if err != nil {
			return err
		}
		values[i] = v
	}
	// Order: title, subtitle, artist, album, words, copyright, tab, instructions.
	song.Title = values[0]
	song.Artist = values[2]
	song.Album = values[3]

	noticeCount, err := c.I32()
	if err != nil {
		return err
	}
	for i := 0; i < int(noticeCount); i++ {
		if _, err := c.IntByteSizeString(); err != nil {
			return err
		}
	}
	return nil
}

// readGp3MeasureHeaders mirrors readGp5MeasureHeaders but without the
// per-header trailing triplet-feel byte, since GP3 reads that once globally.
func readGp3MeasureHeaders(c *bytecursor.Cursor, count int) ([]measureHeaderInfo, error) {
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

		h.timeSignature = model.TimeSignature{Numerator: num, Denominator: den}
		headers[i] = h
	}
	return headers, nil
}

// readGp3Beat reads one GP3 beat. Duration is a two-signed-byte field (the
// second byte carries no attribute this decoder surfaces); beat effects and
// note effects collapse to a single flag byte each, and there is no
// trailing beat flags2.
func readGp3Beat(c *bytecursor.Cursor, tuningMidi []int, capoFret int) (model.Beat, error) {
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
	if _, err := c.I8(); err != nil { // second duration byte
		return beat, err
	}

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
		if err := skipGp3ChordDiagram(c); err != nil {
			return beat, err
		}
	}
	if flags&0x04 != 0 {
		if _, err := c.IntByteSizeString(); err != nil {
			return beat, err
		}
	}
	if flags&0x08 != 0 {
		if err := skipGp3BeatEffects(c); err != nil {
			return beat, err
		}
	}
	if flags&0x10 != 0 {
		if err := skipMixTableChange(c, 0); err != nil {
			return beat, err
		}
	}

	mask, err := c.U8()
	if err != nil {
		return beat, err
	}
	for _, stringIdx := range stringMaskBits(mask) {
		n, err := readGp3Note(c, stringIdx, tuningMidi, capoFret)
		if err != nil {
			return beat, err
		}
		beat.Notes[stringIdx] = n
	}

	beat.IsRest = statusRest || len(beat.Notes) == 0
	return beat, nil
}

// skipGp3ChordDiagram consumes GP3's short or long chord-diagram form.
func skipGp3ChordDiagram(c *bytecursor.Cursor) error {
	header, err := c.U8()
	if err != nil {
		return err
	}
	if header&0x01 != 0 { // long form
		if err := c.Skip(16); err != nil {
			return err
		}
		if _, err := c.ByteSizeString(20); err != nil {
			return err
		}
		return c.Skip(4 + 7*4 + 1 + 5*3)
	}
	// short form
	if _, err := c.ByteSizeString(20); err != nil {
		return err
	}
	return c.Skip(4 + 6)
}

// skipGp3BeatEffects consumes GP3's single-flag-byte beat effects block;
// its tremolo bar is one int32 dip rather than GP5's point array.
func skipGp3BeatEffects(c *bytecursor.Cursor) error {
	flags, err := c.U8()
	if err != nil {
		return err
	}
	if flags&0x20 != 0 { // tremolo bar dip
		if _, err := c.I32(); err != nil {
			return err
		}
	}
	if flags&0x40 != 0 { // up/down stroke
		if err := c.Skip(2); err != nil {
			return err
		}
	}
	return nil
}

// readGp3Note reads one GP3 note. It shares the GP5 note flags byte shape
// but has no unconditional trailing flags2 byte.
func readGp3Note(c *bytecursor.Cursor, stringIdx int, tuningMidi []int, capoFret int) (model.Note, error) {
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
	if flags&0x08 != 0 {
		if err := readGp3NoteEffects(c, &n); err != nil {
			return n, err
		}
	}

	n.PitchClass = model.FretPitchClass(tuningMidi, stringIdx, capoFret, n.Fret)
	n.NoteName = model.NoteNameForPitchClass(n.PitchClass, false)
	return n, nil
}

// readGp3NoteEffects reads GP3's single-flag-byte note effects. Hammer-on
// and pull-off share one bit, as in GP5; PullOff is left false.
func readGp3NoteEffects(c *bytecursor.Cursor, n *model.Note) error {
	flags, err := c.U8()
	if err != nil {
		return err
	}

	if flags&0x01 != 0 {
		bend, err := readBend(c)
		if err != nil {
			return err
		}
		n.Bend = bend
	}
	if flags&0x02 != 0 {
		n.HammerOn = true
	}
	if flags&0x04 != 0 {
		n.LetRing = true
	}
	if flags&0x08 != 0 {
		n.PalmMute = true
	}
	if flags&0x10 != 0 { // slide
		v, err := c.I8()
		if err != nil {
			return err
		}
		sv := int(v)
		n.Slide = &sv
	}
	if flags&0x20 != 0 { // harmonic
		typ, err := c.I8()
		if err != nil {
			return err
		}
		if h, ok := harmonicByCode[int(typ)]; ok {
			n.Harmonic = &h
		}
	}
	if flags&0x40 != 0 {
		n.Vibrato = true
	}
	return nil
}
