package transition

import (
	"context"

	"github.com/cancun/autodj/internal/audio"
	"github.com/cancun/autodj/internal/effects"
	"github.com/cancun/autodj/internal/model"
	"github.com/cancun/autodj/internal/separator"
)

// Result is the renderer's output: the rendered transition audio plus the
// cut points the assembler needs and any warnings accumulated along the
// downgrade ladder.
type Result struct {
	Audio         *audio.Buffer
	TrackACutMs   int64
	TrackBStartMs int64
	Warnings      []model.Warning
}

// Render dispatches plan.Type to the matching mode and applies the
// limiter/normalize finishing stage common to every mode. If ctx is
// cancelled mid-render it returns a *Error{Kind: ErrCancelled}. A
// STEM_BLEND whose stems are unavailable or whose vocal clash can't be
// resolved downgrades to CROSSFADE automatically, recording a warning,
// per spec §4.8's downgrade ladder.
func Render(ctx context.Context, plan *model.TransitionPlan, trackA, trackB *audio.Buffer, analysisA, analysisB *model.TrackAnalysis, sep separator.Separator) (*Result, error) {
	seg, err := prepareSegments(plan, trackA, trackB, analysisA, analysisB)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, &Error{Kind: ErrCancelled, Cause: err}
	}

	var out *audio.Buffer
	warnings := append([]model.Warning(nil), seg.warnings...)
	effectiveType := plan.Type

	switch plan.Type {
	case model.StemBlend:
		clash, _ := resolveVocalClash(analysisA, analysisB, plan.StartTimeInA, plan.StartFromB, transitionSeconds(plan, seg.targetBPM))
		activePlan := plan
		if clash == clashSparse && len(plan.Phases) == 0 {
			preset := *plan
			preset.Phases = AcapellaPhases(plan.DurationBars)
			activePlan = &preset
		}
		out, warnings, err = stemBlend(ctx, activePlan, seg, sep)
		if err != nil || clash == clashFull {
			if clash == clashFull {
				warnings = append(warnings, model.Warning{Tag: "VOCAL_CLASH_DOWNGRADED", Detail: "both tracks carry full vocals through the blend window"})
			} else {
				warnings = append(warnings, model.Warning{Tag: "SEPARATION_UNAVAILABLE_DOWNGRADED", Detail: err.Error()})
			}
			out = crossfadeEqualPower(seg.a, seg.b)
			effectiveType = model.Crossfade
		} else if clash == clashSparse {
			warnings = append(warnings, model.Warning{Tag: "ACAPELLA_PRESET_APPLIED", Detail: "isolated A's vocal over B's instrumental to avoid a sparse vocal clash"})
		}
	case model.Crossfade:
		out = crossfadeEqualPower(seg.a, seg.b)
	case model.HardCut:
		if hasWarningTag(plan.Warnings, "STRETCH_OUT_OF_RANGE") && hasLoopableRegion(analysisA) && hasLoopableRegion(analysisB) {
			out = loopMixFallback(seg)
			if out != nil {
				warnings = append(warnings, model.Warning{Tag: "LOOP_MIX_APPLIED", Detail: "looped A's tail under B's intro instead of an instant cut"})
			}
		}
		if out == nil {
			out = hardCut(seg.a, seg.b, plan.EffectTrackA)
		}
	case model.FilterSweep:
		out = filterSweep(seg.a, seg.b, plan.Filter)
	case model.EchoOut:
		out = echoOut(seg.a, seg.b, seg.targetBPM)
	default:
		return nil, &Error{Kind: ErrPlanInvalid, Cause: errUnknownType(plan.Type)}
	}

	finish(out)

	if effectiveType != plan.Type {
		warnings = append(warnings, model.Warning{Tag: "DOWNGRADED", Detail: string(plan.Type) + " -> " + string(effectiveType)})
	}

	return &Result{
		Audio:         out,
		TrackACutMs:   seg.trackACutMs,
		TrackBStartMs: seg.trackBStartMs,
		Warnings:      warnings,
	}, nil
}

func transitionSeconds(plan *model.TransitionPlan, bpm float64) float64 {
	barMs := 4 * 60000 / bpm
	if plan.DurationBars == 0 {
		return 8 * barMs / 1000
	}
	return float64(plan.DurationBars) * barMs / 1000
}

// finish runs the shared final stage every mode passes through: peak
// limiting at -1dBFS followed by a scale-down-only normalize, matching
// spec §4.6 step 11's "limiter, then normalize" closing step. Testable
// property #6 requires max|samples| <= 10^(-1/20); Normalize never
// boosts, so this never pushes a quieter transition up toward ceiling.
func finish(buf *audio.Buffer) {
	for _, ch := range buf.Channels {
		block := toF64(ch)
		lim := effects.NewLimiter(buf.SampleRate, effects.NegOneDBFS, 5, 50)
		lim.ProcessInPlace(block)
		effects.Normalize(block, effects.NegOneDBFS)
		copy(ch, toF32(block))
	}
}

type unknownTypeError string

func (e unknownTypeError) Error() string { return "unknown transition type " + string(e) }

func errUnknownType(t model.TransitionType) error { return unknownTypeError(t) }
