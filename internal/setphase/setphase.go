// Package setphase implements the C11 set-level energy controller: it
// maps a track's position in the running order to a phase (WARMUP,
// BUILD, PEAK, COOLDOWN), each carrying a preferred transition-duration
// range, preferred transition modes, and an energy target band (spec
// §4.9), and validates a proposed sequence for energy discontinuities.
package setphase

import (
	"fmt"

	"github.com/cancun/autodj/internal/model"
)

// Phase is one of the four set-level energy stages.
type Phase string

const (
	Warmup   Phase = "WARMUP"
	Build    Phase = "BUILD"
	Peak     Phase = "PEAK"
	Cooldown Phase = "COOLDOWN"
)

// Spec describes one phase's preferences.
type Spec struct {
	Phase           Phase
	MinBars, MaxBars int
	PreferredModes  []model.TransitionType
	EnergyLow, EnergyHigh float64
}

var phaseTable = []Spec{
	{Warmup, 32, 64, []model.TransitionType{model.StemBlend, model.Crossfade}, 0.0, 0.45},
	{Build, 16, 32, []model.TransitionType{model.StemBlend, model.Crossfade}, 0.35, 0.7},
	{Peak, 8, 16, []model.TransitionType{model.StemBlend, model.HardCut}, 0.6, 1.0},
	{Cooldown, 32, 64, []model.TransitionType{model.Crossfade, model.FilterSweep, model.EchoOut}, 0.0, 0.5},
}

// PhaseFor maps (trackIndex, totalTracks) to its phase per spec §4.9's
// progress buckets: [0,0.25) WARMUP, [0.25,0.5) BUILD, [0.5,0.75) PEAK,
// [0.75,1] COOLDOWN.
func PhaseFor(trackIndex, totalTracks int) Spec {
	if totalTracks <= 0 {
		totalTracks = 1
	}
	progress := float64(trackIndex) / float64(totalTracks)
	switch {
	case progress < 0.25:
		return phaseTable[0]
	case progress < 0.5:
		return phaseTable[1]
	case progress < 0.75:
		return phaseTable[2]
	default:
		return phaseTable[3]
	}
}

// AdjustDuration scales a rule-based duration (in bars) by a factor in
// [0.5, 2.0] to land within the phase's preferred bar range, per spec
// §4.7's "set-phase adjustments... widen or narrow the duration by a
// factor in [0.5, 2.0]".
func (s Spec) AdjustDuration(bars int) int {
	if bars >= s.MinBars && bars <= s.MaxBars {
		return bars
	}
	mid := (s.MinBars + s.MaxBars) / 2
	factor := float64(mid) / float64(bars)
	if factor > 2.0 {
		factor = 2.0
	}
	if factor < 0.5 {
		factor = 0.5
	}
	adjusted := int(float64(bars) * factor)
	if adjusted < s.MinBars {
		adjusted = s.MinBars
	}
	if adjusted > s.MaxBars {
		adjusted = s.MaxBars
	}
	return adjusted
}

// ForcesHardCut reports whether the incoming energy drop at this phase
// exceeds spec §4.7's 0.2 peak-energy-jump threshold, which forces
// HARD_CUT regardless of the rule-based table's pick.
func (s Spec) ForcesHardCut(fromEnergy, toEnergy float64) bool {
	return s.Phase == Peak && (fromEnergy-toEnergy) > 0.2
}

// PreferredMode reports whether typ is one of this phase's preferred
// transition modes.
func (s Spec) PreferredMode(typ model.TransitionType) bool {
	for _, m := range s.PreferredModes {
		if m == typ {
			return true
		}
	}
	return false
}

// ViolationTag names one of the sequence-validation problems spec §4.9
// calls out.
type ViolationTag string

const (
	EnergyJumpTooLarge      ViolationTag = "ENERGY_JUMP_TOO_LARGE"
	LowEnergyDuringPeak     ViolationTag = "LOW_ENERGY_TRACK_DURING_PEAK"
)

// Violation is one flagged problem at a specific position in the sequence.
type Violation struct {
	Tag   ViolationTag
	Index int
	Detail string
}

// ValidateSequence walks a proposed track order and reports every phase
// violation: an energy jump larger than 0.3 between adjacent tracks, or a
// track with energy below 0.4 scheduled during PEAK.
func ValidateSequence(analyses []*model.TrackAnalysis) []Violation {
	var violations []Violation
	total := len(analyses)
	for i, a := range analyses {
		phase := PhaseFor(i, total)
		if phase.Phase == Peak && a.Energy < 0.4 {
			violations = append(violations, Violation{
				Tag:    LowEnergyDuringPeak,
				Index:  i,
				Detail: fmt.Sprintf("track %s has energy %.2f during PEAK", a.TrackID, a.Energy),
			})
		}
		if i == 0 {
			continue
		}
		delta := a.Energy - analyses[i-1].Energy
		if delta < 0 {
			delta = -delta
		}
		if delta > 0.3 {
			violations = append(violations, Violation{
				Tag:    EnergyJumpTooLarge,
				Index:  i,
				Detail: fmt.Sprintf("energy jump of %.2f between track %d and %d", delta, i-1, i),
			})
		}
	}
	return violations
}
