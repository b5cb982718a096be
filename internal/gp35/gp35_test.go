package gp35

import (
	"encoding/binary"
	"testing"

	"github.com/intuitionamiga/gptab/internal/model"
)

// buf is a small byte-buffer builder mirroring bytecursor's field encodings,
// used to hand-construct synthetic GP3/GP5 files for these tests.
type buf struct {
	b []byte
}

func (w *buf) u8(v byte)   { w.b = append(w.b, v) }
func (w *buf) i8(v int8)   { w.u8(byte(v)) }
func (w *buf) zeros(n int) { w.b = append(w.b, make([]byte, n)...) }

func (w *buf) u16(v uint16) {
	var tmp [2]byte
	binary.LittleEndian.PutUint16(tmp[:], v)
	w.b = append(w.b, tmp[:]...)
}

func (w *buf) i16(v int16) { w.u16(uint16(v)) }

func (w *buf) u32(v uint32) {
	var tmp [4]byte
	binary.LittleEndian.PutUint32(tmp[:], v)
	w.b = append(w.b, tmp[:]...)
}

func (w *buf) i32(v int32) { w.u32(uint32(v)) }

// byteSizeString writes {u8 len, len bytes, pad to fixedLen}.
func (w *buf) byteSizeString(s string, fixedLen int) {
	w.u8(byte(len(s)))
	w.b = append(w.b, []byte(s)...)
	w.zeros(fixedLen - len(s))
}

// intByteSizeString writes {int32 totalSize, u8 len, len bytes} with no padding.
func (w *buf) intByteSizeString(s string) {
	w.i32(int32(len(s) + 1))
	w.u8(byte(len(s)))
	w.b = append(w.b, []byte(s)...)
}

// intString writes {int32 len, len bytes}.
func (w *buf) intString(s string) {
	w.i32(int32(len(s)))
	w.b = append(w.b, []byte(s)...)
}

// buildGp5Song hand-constructs a minimal synthetic GP5 file with one note on
// string 0, fret 3. noteType is the note status byte read when the note's
// flags have 0x20 set (0 = plain, 2 = tied, 3 = dead).
func buildGp5Song(t *testing.T, noteType byte) []byte {
	t.Helper()
	w := &buf{}

	version := "FICHIER GUITAR PRO v5.10"
	w.byteSizeString(version, 30)

	// Score info: 9 fields.
	w.intByteSizeString("Test Song") // title
	w.intByteSizeString("")          // subtitle
	w.intByteSizeString("Test Artist")
	w.intByteSizeString("Test Album")
	w.intByteSizeString("") // words
	w.intByteSizeString("") // music
	w.intByteSizeString("") // copyright
	w.intByteSizeString("") // tab
	w.intByteSizeString("") // instructions
	w.i32(0)                // notice count

	// Lyrics.
	w.i32(0) // track
	for i := 0; i < 5; i++ {
		w.i32(0) // start bar
		w.intString("")
	}

	// RSE master.
	w.i32(0)
	w.i32(0)
	w.zeros(11)

	// Page setup.
	w.zeros(7 * 4)
	w.i16(0)
	for i := 0; i < 10; i++ {
		w.intByteSizeString("")
	}

	// Tempo.
	w.intByteSizeString("")
	w.i32(140) // tempo
	w.u8(0)    // hideTempo (minor > 0)

	w.i8(0)  // key
	w.i32(0) // octave

	for i := 0; i < 64; i++ {
		w.i32(0)
		w.zeros(6 + 2)
	}

	w.zeros(19 * 2) // directions
	w.i32(0)        // master reverb

	w.i32(1) // measure count
	w.i32(1) // track count

	// Measure header: flags = 0, no leading skip since i == 0.
	w.u8(0x00)
	w.u8(0x00) // flags&0x10==0 -> skip(1)
	w.u8(0x00) // triplet feel

	// Track header.
	w.u8(0x00)                           // leading blank byte
	w.u8(0x00)                           // flags1
	w.byteSizeString("Track 1", 40)      // name
	w.i32(6)                             // numStrings
	tuning := []int32{64, 59, 55, 50, 45, 40, 0}
	for _, v := range tuning {
		w.i32(v)
	}
	w.i32(1)  // port
	w.i32(1)  // channelIndex
	w.i32(1)  // effectChannel
	w.i32(24) // fretCount
	w.i32(0)  // capoFret
	w.zeros(4)
	w.i16(0)
	w.zeros(2)
	w.u8(0) // RSE humanize
	w.zeros(24)
	w.zeros(4 + 2 + 2) // RSE instrument (minor > 0)
	w.zeros(5)         // equaliser
	w.intByteSizeString("")
	w.intByteSizeString("")
	w.u8(0) // trailing skip(1) since minor > 0

	// Measure 1, track 1: voice 1 with one beat, voice 2 empty, line break.
	w.i32(1) // voice1 beat count

	// Beat: flags=0, no status, duration quarter, string mask selects string 0.
	w.u8(0x00)
	w.i8(0)    // duration code: quarter
	w.u8(0x40) // string mask: bit 6 -> string index 0

	// Note on string 0: flags = 0x20 (has type + fret).
	w.u8(0x20)
	w.u8(noteType)
	w.i8(3) // fret
	w.u8(0) // GP5 note flags2
	w.i16(0) // beat flags2

	w.i32(0) // voice2 beat count
	w.u8(0)  // line break

	return w.b
}

func TestDecodeGp5BasicSong(t *testing.T) {
	data := buildGp5Song(t, 0)
	song, err := DecodeGp5(data)
	if err != nil {
		t.Fatalf("DecodeGp5: %v", err)
	}
	if song.Title != "Test Song" || song.Artist != "Test Artist" || song.Album != "Test Album" {
		t.Fatalf("unexpected header: %+v", song)
	}
	if song.Tempo != 140 {
		t.Fatalf("tempo = %d, want 140", song.Tempo)
	}
	if len(song.Tracks) != 1 {
		t.Fatalf("tracks = %d, want 1", len(song.Tracks))
	}
	track := song.Tracks[0]
	if track.Name != "Track 1" {
		t.Fatalf("track name = %q", track.Name)
	}
	wantTuning := []int{64, 59, 55, 50, 45, 40}
	if len(track.TuningMidi) != len(wantTuning) {
		t.Fatalf("tuning = %v", track.TuningMidi)
	}
	for i, v := range wantTuning {
		if track.TuningMidi[i] != v {
			t.Fatalf("tuning[%d] = %d, want %d", i, track.TuningMidi[i], v)
		}
	}
	if len(track.Bars) != 1 {
		t.Fatalf("bars = %d, want 1", len(track.Bars))
	}
	bar := track.Bars[0]
	if bar.TimeSignature != (model.TimeSignature{Numerator: 4, Denominator: 4}) {
		t.Fatalf("time signature = %+v", bar.TimeSignature)
	}
	if len(bar.Beats) != 1 {
		t.Fatalf("beats = %d, want 1", len(bar.Beats))
	}
	beat := bar.Beats[0]
	if beat.Duration != model.DurationQuarter {
		t.Fatalf("duration = %v", beat.Duration)
	}
	if beat.IsRest {
		t.Fatal("beat should not be a rest")
	}
	note, ok := beat.Notes[0]
	if !ok {
		t.Fatal("expected a note on string 0")
	}
	if note.Fret != 3 {
		t.Fatalf("fret = %d, want 3", note.Fret)
	}
	wantPC := model.FretPitchClass(track.TuningMidi, 0, 0, 3)
	if note.PitchClass != wantPC {
		t.Fatalf("pitchClass = %d, want %d", note.PitchClass, wantPC)
	}
}

func TestDecodeGp5NoteTied(t *testing.T) {
	data := buildGp5Song(t, 2)
	song, err := DecodeGp5(data)
	if err != nil {
		t.Fatalf("DecodeGp5: %v", err)
	}
	note, ok := song.Tracks[0].Bars[0].Beats[0].Notes[0]
	if !ok {
		t.Fatal("expected a note on string 0")
	}
	if !note.Tie.Destination {
		t.Fatal("expected Tie.Destination to be true for note type 2")
	}
	if note.Muted {
		t.Fatal("tied note should not be marked muted")
	}
}

func TestDecodeGp5NoteDead(t *testing.T) {
	data := buildGp5Song(t, 3)
	song, err := DecodeGp5(data)
	if err != nil {
		t.Fatalf("DecodeGp5: %v", err)
	}
	note, ok := song.Tracks[0].Bars[0].Beats[0].Notes[0]
	if !ok {
		t.Fatal("expected a note on string 0")
	}
	if !note.Muted {
		t.Fatal("expected Muted to be true for note type 3")
	}
	if note.Tie.Destination {
		t.Fatal("dead note should not be marked tied")
	}
}

func TestDecodeGp5RejectsWrongMajorVersion(t *testing.T) {
	w := &buf{}
	w.byteSizeString("FICHIER GUITAR PRO v3.02", 30)
	if _, err := DecodeGp5(w.b); err == nil {
		t.Fatal("expected a version error for a GP3 version string")
	}
}

// buildGp3Song hand-constructs a minimal synthetic GP3 file with one note on
// string 0, fret 5. noteType is the note status byte read when the note's
// flags have 0x20 set (0 = plain, 2 = tied, 3 = dead).
func buildGp3Song(t *testing.T, noteType byte) []byte {
	t.Helper()
	w := &buf{}

	w.byteSizeString("FICHIER GUITAR PRO v3.02", 30)

	// Score info: 8 fields (one fewer than GP5).
	w.intByteSizeString("GP3 Song")
	w.intByteSizeString("")
	w.intByteSizeString("GP3 Artist")
	w.intByteSizeString("GP3 Album")
	w.intByteSizeString("")
	w.intByteSizeString("")
	w.intByteSizeString("")
	w.intByteSizeString("")
	w.i32(0) // notice count

	w.u8(0)    // triplet feel bool
	w.i32(110) // tempo
	w.i32(0)   // key

	w.i32(1) // measure count
	w.i32(1) // track count

	// Measure header (GP3: no trailing triplet-feel byte).
	w.u8(0x00)
	w.u8(0x00) // flags&0x10==0 -> skip(1)

	// Track header (minor treated as 0). i == 0, so no extra per-track
	// blank byte (that only applies when i > 0 && minor == 0).
	w.u8(0x00) // leading blank byte
	w.u8(0x00) // flags1
	w.byteSizeString("GP3 Track", 40)
	w.i32(6)
	tuning := []int32{64, 59, 55, 50, 45, 40, 0}
	for _, v := range tuning {
		w.i32(v)
	}
	w.i32(1)
	w.i32(1)
	w.i32(1)
	w.i32(24)
	w.i32(0)
	w.zeros(4)
	w.i16(0)
	w.zeros(2)
	w.u8(0)
	w.zeros(24)
	w.zeros(4 * 4) // RSE instrument, minor == 0 shape
	w.zeros(2)     // trailing skip(2) since minor == 0

	// One measure, one track, one voice.
	w.i32(1) // beat count

	w.u8(0x00)
	w.i8(0) // duration code
	w.i8(0) // second duration byte
	w.u8(0x40) // string mask: string 0

	w.u8(0x20) // note flags: has type + fret
	w.u8(noteType)
	w.i8(5) // fret

	return w.b
}

func TestDecodeGp3BasicSong(t *testing.T) {
	data := buildGp3Song(t, 0)
	song, err := DecodeGp3(data)
	if err != nil {
		t.Fatalf("DecodeGp3: %v", err)
	}
	if song.Title != "GP3 Song" || song.Artist != "GP3 Artist" || song.Album != "GP3 Album" {
		t.Fatalf("unexpected header: %+v", song)
	}
	if song.Tempo != 110 {
		t.Fatalf("tempo = %d, want 110", song.Tempo)
	}
	if len(song.Tracks) != 1 {
		t.Fatalf("tracks = %d, want 1", len(song.Tracks))
	}
	track := song.Tracks[0]
	if len(track.Bars) != 1 || len(track.Bars[0].Beats) != 1 {
		t.Fatalf("unexpected bar/beat shape: %+v", track.Bars)
	}
	note, ok := track.Bars[0].Beats[0].Notes[0]
	if !ok {
		t.Fatal("expected a note on string 0")
	}
	if note.Fret != 5 {
		t.Fatalf("fret = %d, want 5", note.Fret)
	}
}

func TestDecodeGp3NoteTied(t *testing.T) {
	data := buildGp3Song(t, 2)
	song, err := DecodeGp3(data)
	if err != nil {
		t.Fatalf("DecodeGp3: %v", err)
	}
	note, ok := song.Tracks[0].Bars[0].Beats[0].Notes[0]
	if !ok {
		t.Fatal("expected a note on string 0")
	}
	if !note.Tie.Destination {
		t.Fatal("expected Tie.Destination to be true for note type 2")
	}
	if note.Muted {
		t.Fatal("tied note should not be marked muted")
	}
}

func TestDecodeGp3NoteDead(t *testing.T) {
	data := buildGp3Song(t, 3)
	song, err := DecodeGp3(data)
	if err != nil {
		t.Fatalf("DecodeGp3: %v", err)
	}
	note, ok := song.Tracks[0].Bars[0].Beats[0].Notes[0]
	if !ok {
		t.Fatal("expected a note on string 0")
	}
	if !note.Muted {
		t.Fatal("expected Muted to be true for note type 3")
	}
	if note.Tie.Destination {
		t.Fatal("dead note should not be marked tied")
	}
}

func TestParseVersion(t *testing.T) {
	major, minor, ok := parseVersion("FICHIER GUITAR PRO v5.10")
	if !ok || major != 5 || minor != 10 {
		t.Fatalf("got (%d,%d,%v)", major, minor, ok)
	}
	if _, _, ok := parseVersion("not a version string"); ok {
		t.Fatal("expected no match")
	}
}

func TestStringMaskBits(t *testing.T) {
	got := stringMaskBits(0x41) // bits 6 and 0 -> strings 1 and 7 -> indices 0, 6
	want := []int{0, 6}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got %v, want %v", got, want)
		}
	}
}

func TestFretClamp(t *testing.T) {
	if fretClamp(-1) != 0 {
		t.Fatal("negative fret should clamp to 0")
	}
	if fretClamp(150) != 99 {
		t.Fatal("out-of-range fret should clamp to 99")
	}
	if fretClamp(12) != 12 {
		t.Fatal("in-range fret should pass through")
	}
}

func TestDurationFromCode(t *testing.T) {
	if durationFromCode(-2) != model.DurationWhole {
		t.Fatal("code -2 should be whole")
	}
	if durationFromCode(5) != model.Duration128th {
		t.Fatal("code 5 should be 128th")
	}
	if durationFromCode(99) != model.DurationQuarter {
		t.Fatal("unknown code should default to quarter")
	}
}
