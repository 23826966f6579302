package stretch

import "github.com/cancun/autodj/internal/theory"

// RatioFor computes the stretch ratio that brings fromBPM to targetBPM,
// applying the same half/double-tempo correction theory.CompareBPM uses so
// a track at 140 BPM stretches toward a 70 BPM target by running at half
// speed rather than refusing as out-of-range.
func RatioFor(fromBPM, targetBPM float64) float64 {
	compat := theory.CompareBPM(targetBPM, fromBPM)
	effectiveFrom := fromBPM * compat.FactorApplied
	if effectiveFrom <= 0 {
		return 1.0
	}
	return targetBPM / effectiveFrom
}

// SnapToBeat returns the beat timestamp (seconds) in beats closest to t.
func SnapToBeat(beats []float64, t float64) float64 {
	return snapNearest(beats, t)
}

// SnapToDownbeat returns the downbeat timestamp closest to t.
func SnapToDownbeat(downbeats []float64, t float64) float64 {
	return snapNearest(downbeats, t)
}

// SnapToPhraseStart returns the phrase-start timestamp closest to t.
func SnapToPhraseStart(phraseStarts []float64, t float64) float64 {
	return snapNearest(phraseStarts, t)
}

func snapNearest(grid []float64, t float64) float64 {
	if len(grid) == 0 {
		return t
	}
	best := grid[0]
	bestDist := absF(t - best)
	for _, g := range grid[1:] {
		d := absF(t - g)
		if d < bestDist {
			bestDist = d
			best = g
		}
	}
	return best
}

func absF(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
