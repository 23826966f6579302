package analysis

// Downbeats picks every 4th beat as a downbeat, choosing the phase offset
// (0..3) whose beats land on the strongest average onset strength, per
// spec §4.3's "downbeats are every 4th beat" rule.
func Downbeats(o *onsetCurve, beats []float64) []float64 {
	if len(beats) < 4 {
		return append([]float64(nil), beats...)
	}
	bestPhase := 0
	bestScore := -1.0
	for phase := 0; phase < 4; phase++ {
		score := 0.0
		count := 0
		for i := phase; i < len(beats); i += 4 {
			score += onsetStrengthAt(o, beats[i])
			count++
		}
		if count > 0 {
			score /= float64(count)
		}
		if score > bestScore {
			bestScore = score
			bestPhase = phase
		}
	}
	var downbeats []float64
	for i := bestPhase; i < len(beats); i += 4 {
		downbeats = append(downbeats, beats[i])
	}
	return downbeats
}

// onsetStrengthAt returns the onset strength nearest timeMs.
func onsetStrengthAt(o *onsetCurve, timeMs float64) float64 {
	if len(o.strengths) == 0 {
		return 0
	}
	idx := int(timeMs / (float64(o.hop) / float64(o.sampleRate) * 1000))
	if idx < 0 {
		idx = 0
	}
	if idx >= len(o.strengths) {
		idx = len(o.strengths) - 1
	}
	return o.strengths[idx]
}

// BarMs returns the duration of one 4-beat bar at the given BPM.
func BarMs(bpm float64) float64 {
	if bpm <= 0 {
		return 0
	}
	return 4 * 60000 / bpm
}

// SnapToNearest returns the value in grid closest to t.
func SnapToNearest(grid []float64, t float64) float64 {
	if len(grid) == 0 {
		return t
	}
	best := grid[0]
	bestDist := absF(t - best)
	for _, g := range grid[1:] {
		if d := absF(t - g); d < bestDist {
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
