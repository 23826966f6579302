package theory

import "math"

// BPMScore implements the Δ%-bucketed BPM compatibility table in spec §4.1.
func BPMScore(deltaPercent float64) int {
	d := math.Abs(deltaPercent)
	switch {
	case d <= 2:
		return 100
	case d <= 4:
		return 85
	case d <= 6:
		return 70
	case d <= 8:
		return 55
	default:
		return 25
	}
}

// BPMCompat holds the result of comparing two tempos, including whether a
// half/double-time factor produced a better score than the raw comparison.
type BPMCompat struct {
	Score        int
	DeltaPercent float64
	// FactorApplied is 1.0 for a direct comparison, 2.0 if bpmB should be
	// doubled to match bpmA, or 0.5 if bpmB should be halved.
	FactorApplied float64
}

// CompareBPM scores bpmA against bpmB, applying the half/double-tempo
// check spec §4.1 describes: if treating bpmB at double or half speed
// yields a strictly better score, that comparison wins and the caller is
// told which factor to apply before stretching.
func CompareBPM(bpmA, bpmB float64) BPMCompat {
	direct := deltaPercent(bpmA, bpmB)
	best := BPMCompat{Score: BPMScore(direct), DeltaPercent: direct, FactorApplied: 1.0}

	if bpmB > 0 {
		doubled := deltaPercent(bpmA, bpmB*2)
		if s := BPMScore(doubled); s > best.Score {
			best = BPMCompat{Score: s, DeltaPercent: doubled, FactorApplied: 2.0}
		}
		halved := deltaPercent(bpmA, bpmB/2)
		if s := BPMScore(halved); s > best.Score {
			best = BPMCompat{Score: s, DeltaPercent: halved, FactorApplied: 0.5}
		}
	}
	return best
}

func deltaPercent(bpmA, bpmB float64) float64 {
	if bpmA == 0 {
		return 100
	}
	return math.Abs(bpmA-bpmB) / bpmA * 100
}

// EnergyProximity scores how close two [0,1] energy levels are, 1.0 for
// identical and 0.0 for maximally distant.
func EnergyProximity(a, b float64) float64 {
	return 1 - math.Abs(a-b)
}

// Compatibility is the overall 0..100 compatibility score for a track pair,
// combining harmonic, BPM, and energy per spec §4.1:
// 0.5*harmonic + 0.3*bpm + 0.2*energy_proximity.
type Compatibility struct {
	Harmonic int
	BPM      BPMCompat
	Energy   float64
	Overall  float64
}

// Compare scores a full track pair using Camelot keys, BPMs, and energies.
// If either key fails to parse, Harmonic falls back to 30 (the "otherwise"
// bucket) rather than failing the whole comparison.
func Compare(keyA, keyB string, bpmA, bpmB, energyA, energyB float64) Compatibility {
	harmonic := 30
	if ca, ok := KeyToCamelot(keyA); ok {
		if cb, ok := KeyToCamelot(keyB); ok {
			harmonic = HarmonicScore(ca, cb)
		}
	}
	bpmCompat := CompareBPM(bpmA, bpmB)
	energy := EnergyProximity(energyA, energyB)

	overall := 0.5*float64(harmonic) + 0.3*float64(bpmCompat.Score) + 0.2*(energy*100)
	return Compatibility{Harmonic: harmonic, BPM: bpmCompat, Energy: energy, Overall: overall}
}
