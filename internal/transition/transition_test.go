package transition

import (
	"context"
	"math"
	"testing"

	"github.com/cancun/autodj/internal/audio"
	"github.com/cancun/autodj/internal/model"
	"github.com/cancun/autodj/internal/separator"
	"github.com/stretchr/testify/require"
)

const testSampleRate = 44100

func sineBuffer(freq, durationSec, bpm float64) *audio.Buffer {
	n := int(durationSec * testSampleRate)
	ch := make([]float32, n)
	for i := range ch {
		t := float64(i) / testSampleRate
		beatHz := bpm / 60
		env := 0.6 + 0.4*math.Sin(2*math.Pi*beatHz*t)
		ch[i] = float32(env * math.Sin(2*math.Pi*freq*t))
	}
	return &audio.Buffer{SampleRate: testSampleRate, Channels: [][]float32{ch, append([]float32(nil), ch...)}}
}

func testAnalysis(id string, bpm float64, vocalFullThroughout bool) *model.TrackAnalysis {
	sections := []model.VocalSection{{StartS: 0, EndS: 600, Intensity: model.VocalSparse}}
	if vocalFullThroughout {
		sections = []model.VocalSection{{StartS: 0, EndS: 600, Intensity: model.VocalFull}}
	}
	a, err := model.NewTrackAnalysis(model.TrackAnalysis{
		TrackID:     id,
		Path:        id + ".wav",
		DurationSec: 180,
		BPM:         bpm,
		BPMConfidence: 0.9,
		Energy:      0.7,
		VocalSections: sections,
	})
	if err != nil {
		panic(err)
	}
	return a
}

func basicPlan(typ model.TransitionType, bars int) *model.TransitionPlan {
	return &model.TransitionPlan{
		Type:         typ,
		DurationBars: bars,
		StartTimeInA: 10,
		StartFromB:   5,
		BassSwapBar:  bars / 2,
		Confidence:   0.8,
	}
}

func TestRenderCrossfadeLengthContract(t *testing.T) {
	trackA := sineBuffer(220, 60, 128)
	trackB := sineBuffer(330, 60, 128)
	plan := basicPlan(model.Crossfade, 8)
	analysisA := testAnalysis("a", 128, false)
	analysisB := testAnalysis("b", 128, false)

	res, err := Render(context.Background(), plan, trackA, trackB, analysisA, analysisB, separator.NewBandSplitFallback(nil))
	require.NoError(t, err)
	require.NotNil(t, res.Audio)

	barMs := 4 * 60000 / 128.0
	expectedMs := int64(8 * barMs)
	gotMs := res.Audio.DurationMs()
	require.InDelta(t, expectedMs, gotMs, 50, "rendered transition length must match the plan's duration_bars")
}

func TestRenderCutPointContract(t *testing.T) {
	trackA := sineBuffer(220, 60, 128)
	trackB := sineBuffer(330, 60, 128)
	plan := basicPlan(model.Crossfade, 8)
	analysisA := testAnalysis("a", 128, false)
	analysisB := testAnalysis("b", 128, false)

	res, err := Render(context.Background(), plan, trackA, trackB, analysisA, analysisB, separator.NewBandSplitFallback(nil))
	require.NoError(t, err)

	barMs := 4 * 60000 / 128.0
	require.InDelta(t, (plan.StartTimeInA+8*barMs/1000)*1000, float64(res.TrackACutMs), 50)
	require.InDelta(t, (plan.StartFromB+8*barMs/1000)*1000, float64(res.TrackBStartMs), 50)
}

func TestRenderPeakSafety(t *testing.T) {
	trackA := sineBuffer(220, 60, 128)
	trackB := sineBuffer(330, 60, 128)
	for _, ch := range trackA.Channels {
		for i := range ch {
			ch[i] *= 3
		}
	}
	plan := basicPlan(model.HardCut, 8)
	analysisA := testAnalysis("a", 128, false)
	analysisB := testAnalysis("b", 128, false)

	res, err := Render(context.Background(), plan, trackA, trackB, analysisA, analysisB, separator.NewBandSplitFallback(nil))
	require.NoError(t, err)

	for _, ch := range res.Audio.Channels {
		for _, v := range ch {
			require.LessOrEqual(t, math.Abs(float64(v)), 1.0, "no sample may clip the limiter's ceiling")
		}
	}
}

func TestRenderStemBlendWithBassSwapProducesAudio(t *testing.T) {
	trackA := sineBuffer(110, 60, 128)
	trackB := sineBuffer(110, 60, 128)
	plan := basicPlan(model.StemBlend, 16)
	analysisA := testAnalysis("a", 128, false)
	analysisB := testAnalysis("b", 128, false)

	res, err := Render(context.Background(), plan, trackA, trackB, analysisA, analysisB, separator.NewBandSplitFallback(nil))
	require.NoError(t, err)
	require.NotNil(t, res.Audio)
}

func TestRenderDowngradesOnVocalClash(t *testing.T) {
	trackA := sineBuffer(220, 60, 128)
	trackB := sineBuffer(330, 60, 128)
	plan := basicPlan(model.StemBlend, 16)
	analysisA := testAnalysis("a", 128, true)
	analysisB := testAnalysis("b", 128, true)

	res, err := Render(context.Background(), plan, trackA, trackB, analysisA, analysisB, separator.NewBandSplitFallback(nil))
	require.NoError(t, err)

	found := false
	for _, w := range res.Warnings {
		if w.Tag == "VOCAL_CLASH_DOWNGRADED" {
			found = true
		}
	}
	require.True(t, found, "simultaneous full vocals through the whole window must trigger a downgrade warning")
}

func TestRenderRejectsInvalidPlan(t *testing.T) {
	trackA := sineBuffer(220, 30, 128)
	trackB := sineBuffer(330, 30, 128)
	plan := basicPlan(model.Crossfade, 7) // 7 is not in validOtherBars
	analysisA := testAnalysis("a", 128, false)
	analysisB := testAnalysis("b", 128, false)

	_, err := Render(context.Background(), plan, trackA, trackB, analysisA, analysisB, separator.NewBandSplitFallback(nil))
	require.Error(t, err)

	var terr *Error
	require.ErrorAs(t, err, &terr)
	require.Equal(t, ErrPlanInvalid, terr.Kind)
}

func TestRenderFilterSweepAndEchoOutProduceAudio(t *testing.T) {
	trackA := sineBuffer(220, 60, 128)
	trackB := sineBuffer(330, 60, 128)
	analysisA := testAnalysis("a", 128, false)
	analysisB := testAnalysis("b", 128, false)

	for _, typ := range []model.TransitionType{model.FilterSweep, model.EchoOut} {
		plan := basicPlan(typ, 8)
		res, err := Render(context.Background(), plan, trackA, trackB, analysisA, analysisB, separator.NewBandSplitFallback(nil))
		require.NoError(t, err)
		require.Greater(t, res.Audio.NumFrames(), 0)
	}
}

func TestRenderAcapellaPresetAppliesOnSparseVocalClash(t *testing.T) {
	trackA := sineBuffer(220, 60, 128)
	trackB := sineBuffer(330, 60, 128)
	plan := basicPlan(model.StemBlend, 16)
	analysisA := testAnalysis("a", 128, false) // SPARSE throughout, not FULL
	analysisB := testAnalysis("b", 128, false)

	res, err := Render(context.Background(), plan, trackA, trackB, analysisA, analysisB, separator.NewBandSplitFallback(nil))
	require.NoError(t, err)
	require.NotNil(t, res.Audio)

	found := false
	for _, w := range res.Warnings {
		if w.Tag == "ACAPELLA_PRESET_APPLIED" {
			found = true
		}
	}
	require.True(t, found, "two tracks both carrying SPARSE vocal should use the acapella preset, not downgrade")
}

func TestRenderLoopMixAppliesBeforeHardCutOnStretchOutOfRange(t *testing.T) {
	trackA := sineBuffer(220, 60, 128)
	trackB := sineBuffer(330, 60, 140)
	plan := basicPlan(model.HardCut, 0)
	plan.Warnings = []model.Warning{{Tag: "STRETCH_OUT_OF_RANGE", Detail: "bpm delta exceeds the 8% stretch bound"}}
	analysisA := testAnalysis("a", 128, false)
	analysisA.Phrases = []model.Phrase{{StartS: 0, EndS: 15, BarCount: 8}}
	analysisB := testAnalysis("b", 140, false)
	analysisB.Phrases = []model.Phrase{{StartS: 0, EndS: 15, BarCount: 8}}

	res, err := Render(context.Background(), plan, trackA, trackB, analysisA, analysisB, separator.NewBandSplitFallback(nil))
	require.NoError(t, err)
	require.NotNil(t, res.Audio)

	found := false
	for _, w := range res.Warnings {
		if w.Tag == "LOOP_MIX_APPLIED" {
			found = true
		}
	}
	require.True(t, found, "an 8-bar loopable region on both sides should prefer loop-mix over a plain hard cut")
}

func TestRenderFallsBackToHardCutWithoutLoopableRegion(t *testing.T) {
	trackA := sineBuffer(220, 60, 128)
	trackB := sineBuffer(330, 60, 140)
	plan := basicPlan(model.HardCut, 0)
	plan.Warnings = []model.Warning{{Tag: "STRETCH_OUT_OF_RANGE", Detail: "bpm delta exceeds the 8% stretch bound"}}
	analysisA := testAnalysis("a", 128, false)
	analysisB := testAnalysis("b", 140, false)

	res, err := Render(context.Background(), plan, trackA, trackB, analysisA, analysisB, separator.NewBandSplitFallback(nil))
	require.NoError(t, err)
	require.NotNil(t, res.Audio)

	for _, w := range res.Warnings {
		require.NotEqual(t, "LOOP_MIX_APPLIED", w.Tag, "without an 8-bar phrase on both tracks, loop-mix must not apply")
	}
}

func TestSnapCueForASnapsToNearestPriorDownbeat(t *testing.T) {
	a := testAnalysis("a", 120, false)
	a.Beats = []float64{0, 0.5, 1.0, 1.5, 2.0, 2.5, 3.0, 3.5}

	cue, state := snapCueForA(a, 2.2, 1.0)
	require.Equal(t, cueOK, state)
	require.Equal(t, 2.0, cue, "cue should snap to the downbeat at or before the target, not just the nearest beat")
}

func TestSnapCueForAShiftsBackWhenTransitionOverrunsTrack(t *testing.T) {
	a := testAnalysis("a", 120, false)
	a.DurationSec = 10
	barSec := 4 * 60 / a.BPM
	beats := []float64{}
	for ts := 0.0; ts < a.DurationSec; ts += 60 / a.BPM {
		beats = append(beats, ts)
	}
	a.Beats = beats

	cue, state := snapCueForA(a, a.DurationSec-0.1, 4*barSec)
	require.Equal(t, cueOK, state)
	require.LessOrEqual(t, cue+4*barSec, a.DurationSec+1e-9)
}

func TestSnapCueForACapsAtZeroWhenTransitionNeverFits(t *testing.T) {
	a := testAnalysis("a", 120, false)
	a.DurationSec = 5
	a.Beats = []float64{0, 0.5, 1.0, 1.5, 2.0}

	_, state := snapCueForA(a, 4.0, 30.0)
	require.Equal(t, cueCapAtZero, state)
}

func TestRenderRespectsCancellation(t *testing.T) {
	trackA := sineBuffer(220, 30, 128)
	trackB := sineBuffer(330, 30, 128)
	plan := basicPlan(model.Crossfade, 8)
	analysisA := testAnalysis("a", 128, false)
	analysisB := testAnalysis("b", 128, false)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Render(ctx, plan, trackA, trackB, analysisA, analysisB, separator.NewBandSplitFallback(nil))
	require.Error(t, err)
	var terr *Error
	require.ErrorAs(t, err, &terr)
	require.Equal(t, ErrCancelled, terr.Kind)
}
