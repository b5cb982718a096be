package gp35

import (
	"github.com/intuitionamiga/gptab/internal/bytecursor"
	"github.com/intuitionamiga/gptab/internal/model"
)

// DecodeGp5 decodes a GP5 file into a Song.
func DecodeGp5(data []byte) (*model.Song, error) {
	c := bytecursor.New(data)

	versionStr, err := c.ByteSizeString(30)
	if err != nil {
		return nil, err
	}
	major, minor, ok := parseVersion(versionStr)
	if !ok || major != 5 {
		return nil, &VersionError{Detail: versionStr}
	}

	song := &model.Song{Tempo: 120}

	if err := readGp5ScoreInfo(c, song); err != nil {
		return nil, err
	}
	if err := skipGp5Lyrics(c); err != nil {
		return nil, err
	}
	if err := c.Skip(4 + 4 + 11); err != nil { // RSE master
		return nil, err
	}
	if err := skipGp5PageSetup(c); err != nil {
		return nil, err
	}

	if _, err := c.IntByteSizeString(); err != nil { // tempo name
		return nil, err
	}
	tempo, err := c.I32()
	if err != nil {
		return nil, err
	}
	song.Tempo = int(tempo)
	if minor > 0 {
		if _, err := c.Bool(); err != nil { // hideTempo
			return nil, err
		}
	}

	if _, err := c.I8(); err != nil { // key
		return nil, err
	}
	if _, err := c.I32(); err != nil { // octave
		return nil, err
	}

	for i := 0; i < 64; i++ {
		if _, err := c.I32(); err != nil { // instrument
			return nil, err
		}
		if err := c.Skip(6 + 2); err != nil {
			return nil, err
		}
	}

	if err := c.Skip(19 * 2); err != nil { // directions
		return nil, err
	}
	if _, err := c.I32(); err != nil { // master reverb
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

	measureHeaders, err := readGp5MeasureHeaders(c, int(measureCount))
	if err != nil {
		return nil, err
	}
	trackHeaders, err := readGp5TrackHeaders(c, int(trackCount), minor)
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
			voice1, err := readGp5Voice(c, tracks[ti].TuningMidi, tracks[ti].CapoFret, minor)
			if err != nil {
				return nil, err
			}
			voice2, err := readGp5Voice(c, tracks[ti].TuningMidi, tracks[ti].CapoFret, minor)
			if err != nil {
				return nil, err
			}
			if err := c.Skip(1); err != nil { // line break
				return nil, err
			}

			beats := voice1
			if len(beats) == 0 {
				beats = voice2
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

func readGp5Voice(c *bytecursor.Cursor, tuningMidi []int, capoFret int, minor int) ([]model.Beat, error) {
	beatCount, err := c.I32()
	if err != nil {
		return nil, err
	}
	beats := make([]model.Beat, 0, beatCount)
	for i := 0; i < int(beatCount); i++ {
		b, err := readGp5Beat(c, tuningMidi, capoFret, minor)
		if err != nil {
			return nil, err
		}
		beats = append(beats, b)
	}
	return beats, nil
}

func readGp5ScoreInfo(c *bytecursor.Cursor, song *model.Song) error {
	fieldCount := 9
	values := make([]string, fieldCount)
	for i := 0; i < fieldCount; i++ {
		v, err := c.IntByteSizeString()
		if err != nil {
			return err
		}
		values[i] = v
	}
	// Order: title, subtitle, artist, album, words, music, copyright, tab, instructions.
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

func skipGp5Lyrics(c *bytecursor.Cursor) error {
	if _, err := c.I32(); err != nil { // track
		return err
	}
	for i := 0; i < 5; i++ {
		if _, err := c.I32(); err != nil { // start bar
			return err
		}
		if _, err := c.IntString(); err != nil {
			return err
		}
	}
	return nil
}

func skipGp5PageSetup(c *bytecursor.Cursor) error {
	if err := c.Skip(7 * 4); err != nil {
		return err
	}
	if _, err := c.I16(); err != nil {
		return err
	}
	for i := 0; i < 10; i++ {
		if _, err := c.IntByteSizeString(); err != nil {
			return err
		}
	}
	return nil
}
