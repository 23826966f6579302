package transition

import "github.com/cancun/autodj/internal/model"

// AcapellaPhases builds the supplemented acapella stem-blend preset
// (spec §9): rather than crossing every stem at once, A's vocal rides
// alone over B's rising instrumental for the middle two quarters before
// the blend completes, used when resolveVocalClash finds a SPARSE (not
// FULL) clash — both tracks carry some vocal presence, but not enough
// to be unresolvable.
func AcapellaPhases(bars int) []model.Phase {
	q := bars / 4
	full := model.StemLevels{Drums: 1, Bass: 1, Other: 1, Vocals: 1}
	zero := model.StemLevels{}
	return []model.Phase{
		{BarStart: 1, BarEnd: q, A: full, B: model.StemLevels{Drums: 0.2, Bass: 0.2, Other: 0.3}},
		{BarStart: q + 1, BarEnd: 2 * q, A: model.StemLevels{Vocals: 1, Drums: 0.4, Bass: 0.3, Other: 0.3}, B: model.StemLevels{Drums: 0.7, Bass: 0.6, Other: 0.6}},
		{BarStart: 2*q + 1, BarEnd: 3 * q, A: model.StemLevels{Vocals: 0.6, Other: 0.2}, B: model.StemLevels{Drums: 1, Bass: 1, Other: 0.8, Vocals: 0.2}},
		{BarStart: 3*q + 1, BarEnd: bars, A: zero, B: full},
	}
}
