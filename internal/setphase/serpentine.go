package setphase

import (
	"sort"

	"github.com/cancun/autodj/internal/model"
)

// SerpentineRatio is the number of high-energy tracks played before a
// breather, ported from the original's apply_serpentine_flow default.
const SerpentineRatio = 5

// HighEnergyThreshold is the energy level considered "high" for the
// serpentine split.
const HighEnergyThreshold = 0.7

// SerpentinePlan reorders a draft set into an oscillating (not strictly
// monotonic) energy curve: up to SerpentineRatio high-energy tracks in a
// row, then one lower-energy "breather" track, repeating until one group
// is exhausted. This is the supplemented alternative to the default
// four-phase WARMUP/BUILD/PEAK/COOLDOWN ladder, selected when the caller
// wants oscillation instead of a single monotonic arc (spec §9
// "serpentine energy flow").
func SerpentinePlan(analyses []*model.TrackAnalysis) []*model.TrackAnalysis {
	if len(analyses) < 3 {
		return analyses
	}

	var high, medium []*model.TrackAnalysis
	for _, a := range analyses {
		if a.Energy >= HighEnergyThreshold {
			high = append(high, a)
		} else {
			medium = append(medium, a)
		}
	}
	if len(high) == 0 || len(medium) == 0 {
		return analyses
	}

	sort.SliceStable(high, func(i, j int) bool { return high[i].Energy > high[j].Energy })
	sort.SliceStable(medium, func(i, j int) bool { return medium[i].Energy < medium[j].Energy })

	result := make([]*model.TrackAnalysis, 0, len(analyses))
	hi, mi, consecutiveHigh := 0, 0, 0

	for hi < len(high) || mi < len(medium) {
		switch {
		case consecutiveHigh < SerpentineRatio && hi < len(high):
			result = append(result, high[hi])
			hi++
			consecutiveHigh++
		case mi < len(medium):
			result = append(result, medium[mi])
			mi++
			consecutiveHigh = 0
		default:
			result = append(result, high[hi])
			hi++
		}
	}
	return result
}
