package gp35

import "github.com/intuitionamiga/gptab/internal/model"

// durationByCode maps GP5/GP3's signed-byte duration code (-2..5) to a
// Duration; the code's zero point sits at quarter notes.
var durationByCode = map[int]model.Duration{
	-2: model.DurationWhole,
	-1: model.DurationHalf,
	0:  model.DurationQuarter,
	1:  model.DurationEighth,
	2:  model.Duration16th,
	3:  model.Duration32nd,
	4:  model.Duration64th,
	5:  model.Duration128th,
}

// tupletByCode maps a beat's int32 tuplet code to its (num, den) pair.
var tupletByCode = map[int]model.Tuplet{
	3:  {Num: 3, Den: 2},
	5:  {Num: 5, Den: 4},
	6:  {Num: 6, Den: 4},
	7:  {Num: 7, Den: 4},
	9:  {Num: 9, Den: 8},
	10: {Num: 10, Den: 8},
	11: {Num: 11, Den: 8},
	12: {Num: 12, Den: 8},
	13: {Num: 13, Den: 8},
}

func durationFromCode(code int) model.Duration {
	if d, ok := durationByCode[code]; ok {
		return d
	}
	return model.DurationQuarter
}

func tupletFromCode(code int) *model.Tuplet {
	if t, ok := tupletByCode[code]; ok {
		return &t
	}
	return nil
}
