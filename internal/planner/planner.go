// Package planner implements the C9 transition planner: a pure function
// over (track_a, track_b, compatibility, set_context) producing a
// TransitionPlan for the renderer (spec §4.7). An optional LLM port can
// be consulted first; its output is always advisory and is discarded on
// any shape-validation failure, falling back to the rule-based table.
package planner

import (
	"context"
	"log/slog"

	"github.com/cancun/autodj/internal/llmplan"
	"github.com/cancun/autodj/internal/model"
	"github.com/cancun/autodj/internal/setphase"
	"github.com/cancun/autodj/internal/theory"
)

// Options controls how PlanTransition behaves.
type Options struct {
	LLM         llmplan.Planner // nil disables the LLM port entirely
	SetPhase    setphase.Spec
	TrackIndex  int
	TotalTracks int
	PrevEnergy  float64 // energy of the track preceding track_a, for the peak-drop check
	Logger      *slog.Logger
}

// PlanTransition produces a transition plan for the pair (a, b). If
// opts.LLM is non-nil and both tracks' keys are known, it is consulted
// first; its output is shape-validated via model.TransitionPlan.Validate
// and used only if that passes, otherwise the rule-based table decides
// (spec §4.7's decision rule).
func PlanTransition(ctx context.Context, a, b *model.TrackAnalysis, opts Options) (*model.TransitionPlan, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	compat := theory.Compare(a.Key, b.Key, a.BPM, b.BPM, a.Energy, b.Energy)

	if opts.LLM != nil && a.Key != "" && b.Key != "" {
		setCtx := llmplan.SetContext{
			Phase:         string(opts.SetPhase.Phase),
			ProgressInSet: progressInSet(opts.TrackIndex, opts.TotalTracks),
			EnergyTarget:  (opts.SetPhase.EnergyLow + opts.SetPhase.EnergyHigh) / 2,
		}
		plan, err := opts.LLM.Plan(ctx, a, b, compat.Overall, setCtx)
		if err == nil && plan != nil {
			if verr := plan.Validate(); verr == nil {
				logger.Debug("planner: using LLM-proposed plan", "track_a", a.TrackID, "track_b", b.TrackID)
				return plan, nil
			}
			logger.Warn("planner: discarding invalid LLM plan, falling back to rule-based", "track_a", a.TrackID, "track_b", b.TrackID)
		} else if err != nil {
			logger.Debug("planner: LLM port unavailable, falling back to rule-based", "error", err)
		}
	}

	return ruleBasedPlan(a, b, compat, opts), nil
}

// ruleBasedPlan implements the table in spec §4.7, then applies the
// set-phase duration adjustment and the PEAK energy-drop override.
func ruleBasedPlan(a, b *model.TrackAnalysis, compat theory.Compatibility, opts Options) *model.TransitionPlan {
	harmonic := compat.Harmonic
	bpmDeltaPct := compat.BPM.DeltaPercent

	var typ model.TransitionType
	var bars int
	var warnings []model.Warning

	switch {
	case harmonic >= 85 && bpmDeltaPct <= 2:
		typ, bars = model.StemBlend, 16
	case harmonic >= 70 && bpmDeltaPct <= 4:
		typ, bars = model.StemBlend, 8
	case harmonic >= 60 && bpmDeltaPct <= 5:
		typ, bars = model.Crossfade, 8
	case harmonic >= 50 && bpmDeltaPct <= 6:
		typ, bars = model.FilterSweep, 8
	default:
		typ, bars = model.HardCut, 0
	}

	// StretchOutOfRange: spec §7 — ratio beyond ±8% lowers the BPM score to
	// 25 and forces HARD_CUT regardless of the table above.
	if compat.BPM.DeltaPercent > 8 {
		typ, bars = model.HardCut, 0
		warnings = append(warnings, model.Warning{Tag: "STRETCH_OUT_OF_RANGE", Detail: "bpm delta exceeds the 8% stretch bound"})
	}

	if opts.SetPhase.Phase != "" && bars > 0 {
		bars = opts.SetPhase.AdjustDuration(bars)
	}

	if opts.SetPhase.ForcesHardCut(opts.PrevEnergy, a.Energy) {
		typ, bars = model.HardCut, 0
		warnings = append(warnings, model.Warning{Tag: "SET_PHASE_FORCED_HARD_CUT", Detail: "incoming energy drop exceeds 0.2 at PEAK"})
	}

	plan := &model.TransitionPlan{
		Type:         typ,
		DurationBars: bars,
		StartTimeInA: startTimeInA(a, bars),
		StartFromB:   0,
		Confidence:   compat.Overall / 100,
		Warnings:     warnings,
	}

	if typ == model.StemBlend {
		plan.BassSwapBar = bars / 2
		if doubleDropEligible(a, b, harmonic) {
			plan.Phases = doubleDropPhases(bars, plan.BassSwapBar)
			plan.Warnings = append(plan.Warnings, model.Warning{Tag: "DOUBLE_DROP", Detail: "both tracks share 32-bar phrases at very high harmonic score"})
		}
	}
	if typ == model.HardCut {
		plan.EffectTrackA = &model.TailEffect{Type: model.TailReverb, Params: map[string]float64{"decay_sec": 4.0, "wet": 0.35}}
	}

	return plan
}

func progressInSet(idx, total int) float64 {
	if total <= 0 {
		return 0
	}
	return float64(idx) / float64(total)
}

// startTimeInA picks the transition's start point inside track A: the
// earlier of (outro_start) and (duration - transition length), clamped to
// non-negative, so the transition always fits inside the track.
func startTimeInA(a *model.TrackAnalysis, bars int) float64 {
	barSec := 4 * 60 / a.BPM
	transitionSec := float64(bars) * barSec
	outroStart := float64(a.OutroStartMs) / 1000
	start := outroStart
	if start > a.DurationSec-transitionSec {
		start = a.DurationSec - transitionSec
	}
	if start < 0 {
		start = 0
	}
	return start
}

// doubleDropEligible mirrors the original's selection heuristic for the
// supplemented DOUBLE_DROP stem-blend preset (spec §9): both tracks
// expose 32-bar phrases at the transition point and harmonic score is
// very high.
func doubleDropEligible(a, b *model.TrackAnalysis, harmonic int) bool {
	if harmonic < 90 {
		return false
	}
	return hasPhraseLength(a, 32) && hasPhraseLength(b, 32)
}

// doubleDropPhases builds the DOUBLE_DROP stem-blend preset (spec §9):
// both tracks' drums and bass phase out together in the bars leading up
// to the swap bar, rather than progressively crossing as
// internal/transition's default curve does; after the swap bar A is
// silent and B plays in full.
func doubleDropPhases(bars, swapBar int) []model.Phase {
	full := model.StemLevels{Drums: 1, Bass: 1, Other: 1, Vocals: 1}
	hollow := model.StemLevels{Other: 0.2}
	lead := swapBar - 1
	if lead < 1 {
		lead = 1
	}
	return []model.Phase{
		{BarStart: 1, BarEnd: lead, A: full, B: hollow},
		{BarStart: lead + 1, BarEnd: swapBar, A: model.StemLevels{Other: 0.15}, B: model.StemLevels{Other: 0.15}},
		{BarStart: swapBar + 1, BarEnd: bars, A: model.StemLevels{}, B: full},
	}
}

func hasPhraseLength(a *model.TrackAnalysis, bars int) bool {
	for _, p := range a.Phrases {
		if p.BarCount == bars {
			return true
		}
	}
	return false
}
