package transition

import (
	"context"

	"github.com/cancun/autodj/internal/audio"
	"github.com/cancun/autodj/internal/bassswap"
	"github.com/cancun/autodj/internal/model"
	"github.com/cancun/autodj/internal/separator"
)

// defaultPhases builds the canonical four-phase stem-blend automation
// curve spec §4.8 describes when the plan doesn't supply its own: A runs
// full through phase 1, B's drums+bass enter in phase 2, the bass swap
// and B's other/vocals arrive in phase 3, and A fades out entirely by the
// end of phase 4.
func defaultPhases(bars int) []model.Phase {
	q := bars / 4
	full := model.StemLevels{Drums: 1, Bass: 1, Other: 1, Vocals: 1}
	zero := model.StemLevels{}
	return []model.Phase{
		{BarStart: 1, BarEnd: q, A: full, B: model.StemLevels{Drums: 0.3}},
		{BarStart: q + 1, BarEnd: 2 * q, A: full, B: model.StemLevels{Drums: 0.8, Bass: 0.5, Other: 0.3}},
		{BarStart: 2*q + 1, BarEnd: 3 * q, A: model.StemLevels{Drums: 0.6, Other: 0.6, Vocals: 0.4}, B: model.StemLevels{Drums: 1, Bass: 1, Other: 0.7, Vocals: 0.3}},
		{BarStart: 3*q + 1, BarEnd: bars, A: zero, B: full},
	}
}

// gainAt linearly interpolates StemLevels across phase boundaries for bar
// position barPos (fractional).
func gainAt(phases []model.Phase, barPos float64) (a, b model.StemLevels) {
	for i, ph := range phases {
		if barPos < float64(ph.BarStart)-1 || barPos > float64(ph.BarEnd) {
			continue
		}
		if i+1 >= len(phases) {
			return ph.A, ph.B
		}
		span := float64(ph.BarEnd-ph.BarStart) + 1
		t := (barPos - float64(ph.BarStart) + 1) / span
		next := phases[i+1]
		return lerpLevels(ph.A, next.A, t), lerpLevels(ph.B, next.B, t)
	}
	if len(phases) == 0 {
		return model.StemLevels{}, model.StemLevels{}
	}
	last := phases[len(phases)-1]
	return last.A, last.B
}

func lerpLevels(a, b model.StemLevels, t float64) model.StemLevels {
	return model.StemLevels{
		Drums:  a.Drums + (b.Drums-a.Drums)*t,
		Bass:   a.Bass + (b.Bass-a.Bass)*t,
		Other:  a.Other + (b.Other-a.Other)*t,
		Vocals: a.Vocals + (b.Vocals-a.Vocals)*t,
	}
}

// vocalClash classifies how much two tracks' vocals overlap across a
// transition window.
type vocalClash int

const (
	clashNone vocalClash = iota
	// clashSparse: both tracks carry some vocal presence but never both
	// FULL at once — resolvable with the acapella preset (spec §9).
	clashSparse
	// clashFull: both tracks carry FULL vocals simultaneously at some
	// point — unresolvable, the caller downgrades to CROSSFADE.
	clashFull
)

// resolveVocalClash implements spec §4.6 step 7's vocal clash state
// machine: FULL-FULL overlap anywhere in the window is unresolvable,
// any lesser simultaneous vocal presence is a SPARSE clash the acapella
// phase preset can resolve, and no simultaneous vocal presence at all
// needs no special handling.
func resolveVocalClash(a, b *model.TrackAnalysis, segStartA, segStartB, transitionSec float64) (vocalClash, error) {
	steps := 32
	clash := clashNone
	for i := 0; i <= steps; i++ {
		t := transitionSec * float64(i) / float64(steps)
		va := a.VocalAt(segStartA + t)
		vb := b.VocalAt(segStartB + t)
		if va == model.VocalFull && vb == model.VocalFull {
			return clashFull, nil
		}
		if vocalPresent(va) && vocalPresent(vb) && clash < clashSparse {
			clash = clashSparse
		}
	}
	return clash, nil
}

func vocalPresent(v model.VocalIntensity) bool {
	return v == model.VocalSparse || v == model.VocalFull
}

// stemBlend runs the full STEM_BLEND pipeline: separate both segments
// into stems, evaluate the phase curve to get per-sample per-stem gains,
// swap bass at the plan's designated bar, and sum everything down.
func stemBlend(ctx context.Context, plan *model.TransitionPlan, seg *segments, sep separator.Separator) (*audio.Buffer, []model.Warning, error) {
	var warnings []model.Warning

	stemsA, err := sep.Separate(ctx, seg.a)
	if err != nil {
		return nil, nil, err
	}
	stemsB, err := sep.Separate(ctx, seg.b)
	if err != nil {
		return nil, nil, err
	}

	phases := plan.Phases
	if len(phases) == 0 {
		phases = defaultPhases(plan.DurationBars)
	}

	barMs := 4 * 60000 / seg.targetBPM
	n := seg.a.NumFrames()
	sampleRate := seg.a.SampleRate

	numChans := len(seg.a.Channels)
	mixed := make([][]float32, numChans)
	for c := range mixed {
		mixed[c] = make([]float32, n)
	}

	bassSwapSample := int(float64(plan.BassSwapBar-1) * barMs / 1000 * float64(sampleRate))
	barSamples := int(barMs / 1000 * float64(sampleRate))

	for c := 0; c < numChans; c++ {
		bassA := toF64(stemChannel(stemsA.Bass, c, n))
		bassB := toF64(stemChannel(stemsB.Bass, c, n))
		swapResult, swapSample, ok := bassswap.ReswapOrDowngrade(bassA, bassB, sampleRate, seg.targetBPM, bassSwapSample, barSamples, bassswap.StyleOneBar, 4)
		if !ok {
			warnings = append(warnings, model.Warning{Tag: "BASS_SWAP_DOWNGRADED", Detail: "could not satisfy the 2-beat sacred rule at the requested bar"})
			swapResult, _ = bassswap.Swap(bassA, bassB, sampleRate, bassSwapSample, bassswap.StyleInstant, barSamples)
			swapSample = bassSwapSample
		}
		_ = swapSample

		drumsA := stemChannel(stemsA.Drums, c, n)
		drumsB := stemChannel(stemsB.Drums, c, n)
		otherA := stemChannel(stemsA.Other, c, n)
		otherB := stemChannel(stemsB.Other, c, n)
		vocalsA := stemChannel(stemsA.Vocals, c, n)
		vocalsB := stemChannel(stemsB.Vocals, c, n)

		for i := 0; i < n; i++ {
			barPos := float64(i) / float64(sampleRate) * 1000 / barMs
			gA, gB := gainAt(phases, barPos)
			v := gA.Drums*float64(drumsA[i]) + gB.Drums*float64(drumsB[i]) +
				float64(swapResult.Combined[i]) +
				gA.Other*float64(otherA[i]) + gB.Other*float64(otherB[i]) +
				gA.Vocals*float64(vocalsA[i]) + gB.Vocals*float64(vocalsB[i])
			mixed[c][i] = float32(v)
		}
	}

	return &audio.Buffer{SampleRate: sampleRate, Channels: mixed}, warnings, nil
}

func stemChannel(buf *audio.Buffer, c, n int) []float32 {
	if buf == nil || c >= len(buf.Channels) {
		return make([]float32, n)
	}
	ch := buf.Channels[c]
	if len(ch) >= n {
		return ch[:n]
	}
	out := make([]float32, n)
	copy(out, ch)
	return out
}
