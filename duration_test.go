package gptab

import "testing"

func TestDurationToBeats(t *testing.T) {
	cases := []struct {
		name    string
		d       Duration
		dots    int
		tuplet  *Tuplet
		want    float64
	}{
		{"whole no dots", DurationWhole, 0, nil, 4},
		{"dotted quarter", DurationQuarter, 1, nil, 1.5},
		{"quarter triplet", DurationQuarter, 0, &Tuplet{Num: 3, Den: 2}, 2.0 / 3.0},
		{"dotted quarter triplet", DurationQuarter, 1, &Tuplet{Num: 3, Den: 2}, 1.0},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got := durationToBeats(c.d, c.dots, c.tuplet)
			if diff := got - c.want; diff > 1e-9 || diff < -1e-9 {
				t.Fatalf("durationToBeats(%v, %d, %v) = %v, want %v", c.d, c.dots, c.tuplet, got, c.want)
			}
		})
	}
}

func TestBeatDurationMsQuarterAt120(t *testing.T) {
	b := Beat{Duration: DurationQuarter, Tempo: 120}
	got := beatDurationMs(b)
	if got != 500 {
		t.Fatalf("beatDurationMs = %v, want 500", got)
	}
}

func TestBeatDurationMsEighthAt60(t *testing.T) {
	b := Beat{Duration: DurationEighth, Tempo: 60}
	got := beatDurationMs(b)
	if got != 500 {
		t.Fatalf("beatDurationMs = %v, want 500", got)
	}
}

func TestBeatDurationMsZeroTempo(t *testing.T) {
	b := Beat{Duration: DurationQuarter, Tempo: 0}
	if got := beatDurationMs(b); got != 0 {
		t.Fatalf("beatDurationMs with zero tempo = %v, want 0", got)
	}
}
