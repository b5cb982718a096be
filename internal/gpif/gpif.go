// Package gpif transforms a parsed GPIF XML document (the score.gpif entity
// graph shared by the GPX and GP7 decode paths) into a resolved Song.
package gpif

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/intuitionamiga/gptab/internal/model"
)

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

var durationByName = map[string]Duration{
	"Whole":   DurationWhole,
	"Half":    DurationHalf,
	"Quarter": DurationQuarter,
	"Eighth":  DurationEighth,
	"16th":    Duration16th,
	"32nd":    Duration32nd,
	"64th":    Duration64th,
	"128th":   Duration128th,
}

var capoFreeTextRe = regexp.MustCompile(`(?i)capo\s+(\d+)`)

// Transform resolves a parsed GPIF document tree into a Song.
func Transform(root *Node) (*Song, error) {
	song := &Song{Tempo: 120}

	if score := root.Child("Score"); score != nil {
		song.Title = score.ChildText("Title")
		song.Artist = score.ChildText("Artist")
		song.Album = score.ChildText("Album")
	}

	tempoPoints := readTempoAutomations(root)
	song.Tempo = tempoAtBar(tempoPoints, 0)

	idx := buildIndexes(root)

	trackNodes := []*Node{}
	if tracksNode := root.Child("Tracks"); tracksNode != nil {
		trackNodes = tracksNode.ChildrenNamed("Track")
	}

	masterBarNodes := []*Node{}
	if mbs := root.Child("MasterBars"); mbs != nil {
		masterBarNodes = mbs.ChildrenNamed("MasterBar")
	}

	for trackPos, trackNode := range trackNodes {
		track := Track{
			ID:         attrInt(trackNode, "id", trackPos),
			Name:       trackNode.ChildText("Name"),
			ShortName:  trackNode.ChildText("ShortName"),
			Instrument: resolveInstrument(trackNode),
		}
		track.TuningMidi, track.CapoFret = resolveTuningAndCapo(trackNode)
		track.Tuning = make([]Note, len(track.TuningMidi))

		var freeTexts []string
		beatCounter := 0

		for mbIdx, mb := range masterBarNodes {
			barID := pickPositionalID(mb.ChildText("Bars"), trackPos)
			barNode := idx.bars[barID]

			bar := Bar{
				Index:         mbIdx,
				TimeSignature: parseTimeSignature(mb.ChildText("Time")),
				KeySignature:  parseKeySignature(mb),
				Section:       parseSection(mb),
			}
			bar.RepeatStart, bar.RepeatEnd, bar.RepeatCount = parseRepeat(mb)

			if barNode != nil {
				voiceNode := firstVoice(barNode, idx)
				if voiceNode != nil {
					beatIDs := fields(voiceNode.ChildText("Beats"))
					for _, bid := range beatIDs {
						beatNode, ok := idx.beats[bid]
						if !ok {
							continue
						}
						beat := resolveBeat(beatNode, idx, track.TuningMidi, track.CapoFret, tempoPoints, mbIdx)
						beat.Index = beatCounter
						beat.BarIndex = mbIdx
						beatCounter++
						bar.Beats = append(bar.Beats, beat)
						if ft := beatNode.ChildText("FreeText"); ft != "" {
							freeTexts = append(freeTexts, ft)
						}
					}
				}
			}

			track.Bars = append(track.Bars, bar)
		}

		if track.CapoFret == 0 {
			track.CapoFret = capoFromFreeText(freeTexts)
		}

		reverseStringAxis(&track)
		song.Tracks = append(song.Tracks, track)
	}

	return song, nil
}

type indexes struct {
	notes   map[string]*Node
	beats   map[string]*Node
	voices  map[string]*Node
	bars    map[string]*Node
	rhythms map[string]*Node
}

func buildIndexes(root *Node) *indexes {
	idx := &indexes{
		notes:   map[string]*Node{},
		beats:   map[string]*Node{},
		voices:  map[string]*Node{},
		bars:    map[string]*Node{},
		rhythms: map[string]*Node{},
	}
	indexByID(root.Child("Notes"), idx.notes)
	indexByID(root.Child("Beats"), idx.beats)
	indexByID(root.Child("Voices"), idx.voices)
	indexByID(root.Child("Bars"), idx.bars)
	indexByID(root.Child("Rhythms"), idx.rhythms)
	return idx
}

func indexByID(parent *Node, into map[string]*Node) {
	if parent == nil {
		return
	}
	for _, c := range parent.Children {
		if id, ok := c.Attr("id"); ok {
			into[id] = c
		}
	}
}

func attrInt(n *Node, name string, fallback int) int {
	v, ok := n.Attr(name)
	if !ok {
		return fallback
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return i
}

func resolveInstrument(trackNode *Node) string {
	if inst := trackNode.Child("Instrument"); inst != nil {
		if ref, ok := inst.Attr("ref"); ok && ref != "" {
			return ref
		}
		return inst.TrimmedText()
	}
	return ""
}

// resolveTuningAndCapo reads tuning/capo from the track's own Properties,
// falling back to its first Staff's Properties, defaulting to standard
// six-string tuning and no capo.
func resolveTuningAndCapo(trackNode *Node) ([]int, int) {
	props := trackNode.Child("Properties")
	tuning, capo, found := tuningCapoFromProperties(props)
	if found {
		return tuning, capo
	}
	if staves := trackNode.Child("Staves"); staves != nil {
		for _, staff := range staves.ChildrenNamed("Staff") {
			tuning, capo, found = tuningCapoFromProperties(staff.Child("Properties"))
			if found {
				return tuning, capo
			}
		}
	}
	out := make([]int, len(model.DefaultTuningMidi))
	copy(out, model.DefaultTuningMidi)
	return out, 0
}

func tuningCapoFromProperties(props *Node) ([]int, int, bool) {
	if props == nil {
		return nil, 0, false
	}
	var tuning []int
	capo := 0
	found := false
	for _, p := range props.ChildrenNamed("Property") {
		name, _ := p.Attr("name")
		switch name {
		case "Tuning":
			if pitches := p.ChildText("Pitches"); pitches != "" {
				for _, f := range fields(pitches) {
					if v, err := strconv.Atoi(f); err == nil {
						tuning = append(tuning, v)
					}
				}
				found = true
			}
		case "CapoFret":
			if fret := p.ChildText("Fret"); fret != "" {
				if v, err := strconv.Atoi(fret); err == nil {
					capo = v
				}
			}
		}
	}
	return tuning, capo, found
}

// pickPositionalID returns the idsList's trackPos'th space-separated ID,
// falling back to its first entry if trackPos is out of range.
func pickPositionalID(idsList string, trackPos int) string {
	ids := fields(idsList)
	if len(ids) == 0 {
		return ""
	}
	if trackPos >= 0 && trackPos < len(ids) {
		return ids[trackPos]
	}
	return ids[0]
}

func firstVoice(barNode *Node, idx *indexes) *Node {
	for _, vID := range fields(barNode.ChildText("Voices")) {
		if vID == "-1" {
			continue
		}
		if v, ok := idx.voices[vID]; ok {
			return v
		}
	}
	return nil
}

func parseTimeSignature(text string) TimeSignature {
	parts := strings.SplitN(text, "/", 2)
	if len(parts) != 2 {
		return TimeSignature{Numerator: 4, Denominator: 4}
	}
	num, errN := strconv.Atoi(strings.TrimSpace(parts[0]))
	den, errD := strconv.Atoi(strings.TrimSpace(parts[1]))
	if errN != nil || errD != nil {
		return TimeSignature{Numerator: 4, Denominator: 4}
	}
	return TimeSignature{Numerator: num, Denominator: den}
}

func parseKeySignature(mb *Node) *KeySignature {
	key := mb.Child("Key")
	if key == nil {
		return nil
	}
	acc, err := strconv.Atoi(key.ChildText("AccidentalCount"))
	if err != nil {
		acc = 0
	}
	mode := ModeMajor
	if strings.EqualFold(key.ChildText("Mode"), "Minor") {
		mode = ModeMinor
	}
	return &KeySignature{Accidentals: acc, Mode: mode}
}

func parseSection(mb *Node) *Section {
	sec := mb.Child("Section")
	if sec == nil {
		return nil
	}
	return &Section{Letter: sec.ChildText("Letter"), Text: sec.ChildText("Text")}
}

func parseRepeat(mb *Node) (start, end bool, count int) {
	rep := mb.Child("Repeat")
	if rep == nil {
		return false, false, 0
	}
	start = attrBool(rep, "start")
	end = attrBool(rep, "end")
	count = attrInt(rep, "count", 0)
	return
}

func attrBool(n *Node, name string) bool {
	v, ok := n.Attr(name)
	if !ok {
		return false
	}
	return v == "true" || v == "1"
}

func readTempoAutomations(root *Node) []tempoPoint {
	mt := root.Child("MasterTrack")
	if mt == nil {
		return nil
	}
	autos := mt.Child("Automations")
	if autos == nil {
		return nil
	}
	var points []tempoPoint
	for _, a := range autos.ChildrenNamed("Automation") {
		if !strings.EqualFold(a.ChildText("Type"), "Tempo") {
			continue
		}
		bar, errB := strconv.Atoi(a.ChildText("Bar"))
		if errB != nil {
			continue
		}
		valueField := strings.Fields(a.ChildText("Value"))
		if len(valueField) == 0 {
			continue
		}
		value, errV := strconv.Atoi(valueField[0])
		if errV != nil {
			continue
		}
		points = append(points, tempoPoint{bar: bar, value: value})
	}
	return points
}

type tempoPoint struct {
	bar   int
	value int
}

// tempoAtBar returns the value of the most recent automation at or before
// bar, the automation at bar 0, or the default 120.
func tempoAtBar(points []tempoPoint, bar int) int {
	best := -1
	bestVal := 120
	haveAny := false
	for _, p := range points {
		if p.bar <= bar && p.bar > best {
			best = p.bar
			bestVal = p.value
			haveAny = true
		}
	}
	if haveAny {
		return bestVal
	}
	for _, p := range points {
		if p.bar == 0 {
			return p.value
		}
	}
	return 120
}

func resolveBeat(beatNode *Node, idx *indexes, tuningMidi []int, capo int, tempoPoints []tempoPoint, barIdx int) Beat {
	beat := Beat{
		Notes:   map[int]Note{},
		Dynamic: beatNode.ChildText("Dynamic"),
		Tempo:   tempoAtBar(tempoPoints, barIdx),
	}

	if rhythmNode := resolveRhythmRef(beatNode, idx); rhythmNode != nil {
		beat.Duration, beat.Dotted, beat.Tuplet = resolveRhythm(rhythmNode)
	} else {
		beat.Duration = DurationQuarter
	}

	for _, nID := range fields(beatNode.ChildText("Notes")) {
		noteNode, ok := idx.notes[nID]
		if !ok {
			continue
		}
		n := resolveNote(noteNode, tuningMidi, capo)
		beat.Notes[n.String] = n
	}
	beat.IsRest = len(beat.Notes) == 0

	return beat
}

func resolveRhythmRef(beatNode *Node, idx *indexes) *Node {
	rhythmRef := beatNode.Child("Rhythm")
	if rhythmRef == nil {
		return nil
	}
	ref, ok := rhythmRef.Attr("ref")
	if !ok {
		ref, ok = rhythmRef.Attr("id")
		if !ok {
			return nil
		}
	}
	return idx.rhythms[ref]
}

func resolveRhythm(rhythmNode *Node) (Duration, int, *Tuplet) {
	d := DurationQuarter
	if nv, ok := durationByName[rhythmNode.ChildText("NoteValue")]; ok {
		d = nv
	}

	dots := 0
	if dot := rhythmNode.Child("AugmentationDot"); dot != nil {
		dots = attrInt(dot, "count", 0)
	}

	var tuplet *Tuplet
	if pt := rhythmNode.Child("PrimaryTuplet"); pt != nil {
		num := attrInt(pt, "num", 1)
		den := attrInt(pt, "den", 1)
		if num != 1 || den != 1 {
			tuplet = &Tuplet{Num: num, Den: den}
		}
	}

	return d, dots, tuplet
}

func resolveNote(noteNode *Node, tuningMidi []int, capo int) Note {
	n := Note{}

	props := noteNode.Child("Properties")
	if propertyEnabled(props, "Bended") {
		n.Bend = &Bend{
			Origin:      propertyFloat(props, "BendOriginValue"),
			Destination: propertyFloat(props, "BendDestinationValue"),
			Middle:      propertyFloat(props, "BendMiddleValue"),
		}
	}

	n.String = propertyInt(props, "String", "String", 0)
	n.Fret = propertyInt(props, "Fret", "Fret", 0)

	if slideProp := findProperty(props, "Slide"); slideProp != nil {
		if v, err := strconv.Atoi(slideProp.ChildText("Flags")); err == nil {
			n.Slide = &v
		}
	}
	if harmProp := findProperty(props, "HarmonicType"); harmProp != nil {
		if h, ok := parseHarmonicType(harmProp.ChildText("HType")); ok {
			n.Harmonic = &h
		}
	}

	n.PalmMute = propertyEnabled(props, "PalmMuted")
	n.Muted = propertyEnabled(props, "Muted")
	n.Tapped = propertyEnabled(props, "Tapped")
	n.HammerOn = propertyEnabled(props, "HopoOrigin")
	n.PullOff = propertyEnabled(props, "HopoDestination")

	n.LetRing = noteNode.Child("LetRing") != nil
	n.Vibrato = noteNode.Child("Vibrato") != nil
	n.Accent = noteNode.Child("Accent") != nil

	if tie := noteNode.Child("Tie"); tie != nil {
		n.Tie = Tie{Origin: attrBool(tie, "origin"), Destination: attrBool(tie, "destination")}
	}

	n.PitchClass = fretPitchClass(tuningMidi, n.String, capo, n.Fret)
	n.NoteName = noteNameForPitchClass(n.PitchClass, false)

	return n
}

func findProperty(props *Node, name string) *Node {
	if props == nil {
		return nil
	}
	for _, p := range props.ChildrenNamed("Property") {
		if n, ok := p.Attr("name"); ok && n == name {
			return p
		}
	}
	return nil
}

func propertyEnabled(props *Node, name string) bool {
	p := findProperty(props, name)
	return p != nil && p.Child("Enable") != nil
}

func propertyFloat(props *Node, name string) float64 {
	p := findProperty(props, name)
	if p == nil {
		return 0
	}
	v, err := strconv.ParseFloat(p.ChildText("Float"), 64)
	if err != nil {
		return 0
	}
	return v
}

func propertyInt(props *Node, propName, childName string, fallback int) int {
	p := findProperty(props, propName)
	if p == nil {
		return fallback
	}
	v, err := strconv.Atoi(p.ChildText(childName))
	if err != nil {
		return fallback
	}
	return v
}

func parseHarmonicType(s string) (HarmonicType, bool) {
	switch strings.ToLower(s) {
	case "":
		return 0, false
	case "natural":
		return HarmonicNatural, true
	case "artificial":
		return HarmonicArtificial, true
	case "tapped":
		return HarmonicTapped, true
	case "pinch":
		return HarmonicPinch, true
	case "semi", "semiharmonic":
		return HarmonicSemi, true
	default:
		return HarmonicNatural, true
	}
}

func fretPitchClass(tuningMidi []int, stringIdx, capoFret, fret int) int {
	return model.FretPitchClass(tuningMidi, stringIdx, capoFret, fret)
}

func noteNameForPitchClass(pc int, flats bool) string {
	return model.NoteNameForPitchClass(pc, flats)
}

func capoFromFreeText(freeTexts []string) int {
	for _, t := range freeTexts {
		m := capoFreeTextRe.FindStringSubmatch(t)
		if m == nil {
			continue
		}
		v, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}
		if v >= 1 && v <= 24 {
			return v
		}
	}
	return 0
}

// reverseStringAxis flips GPIF's low-to-high string numbering to the
// output model's high-to-low convention and recomputes every note's
// pitch class against the reversed tuning.
func reverseStringAxis(track *Track) {
	stringCount := len(track.TuningMidi)
	if stringCount == 0 {
		return
	}

	reversedMidi := make([]int, stringCount)
	for i, v := range track.TuningMidi {
		reversedMidi[stringCount-1-i] = v
	}
	track.TuningMidi = reversedMidi

	track.Tuning = make([]Note, stringCount)
	for i, midi := range reversedMidi {
		pc := ((midi % 12) + 12) % 12
		track.Tuning[i] = Note{String: i, PitchClass: pc, NoteName: noteNameForPitchClass(pc, false)}
	}

	for bi := range track.Bars {
		for beatI := range track.Bars[bi].Beats {
			beat := &track.Bars[bi].Beats[beatI]
			if len(beat.Notes) == 0 {
				continue
			}
			newNotes := make(map[int]Note, len(beat.Notes))
			for oldString, n := range beat.Notes {
				newString := stringCount - 1 - oldString
				n.String = newString
				n.PitchClass = fretPitchClass(reversedMidi, newString, track.CapoFret, n.Fret)
				n.NoteName = noteNameForPitchClass(n.PitchClass, false)
				newNotes[newString] = n
			}
			beat.Notes = newNotes
		}
	}
}
