package planner

import (
	"context"
	"errors"
	"testing"

	"github.com/cancun/autodj/internal/llmplan"
	"github.com/cancun/autodj/internal/model"
	"github.com/cancun/autodj/internal/setphase"
	"github.com/stretchr/testify/require"
)

func track(id string, bpm float64, key string, energy float64) *model.TrackAnalysis {
	a, err := model.NewTrackAnalysis(model.TrackAnalysis{
		TrackID:     id,
		DurationSec: 240,
		BPM:         bpm,
		Key:         key,
		Energy:      energy,
	})
	if err != nil {
		panic(err)
	}
	return a
}

func TestPlanTransitionHighCompatibilityUsesLongStemBlend(t *testing.T) {
	a := track("a", 124, "8A", 0.6)
	b := track("b", 124, "8A", 0.6)

	plan, err := PlanTransition(context.Background(), a, b, Options{})
	require.NoError(t, err)
	require.Equal(t, model.StemBlend, plan.Type)
	require.Equal(t, 16, plan.DurationBars)
	require.NoError(t, plan.Validate())
}

func TestPlanTransitionLowCompatibilityFallsBackToHardCut(t *testing.T) {
	a := track("a", 120, "1A", 0.5)
	b := track("b", 180, "6B", 0.5)

	plan, err := PlanTransition(context.Background(), a, b, Options{})
	require.NoError(t, err)
	require.Equal(t, model.HardCut, plan.Type)
	require.NotNil(t, plan.EffectTrackA)
	require.NoError(t, plan.Validate())
}

func TestPlanTransitionStretchOutOfRangeForcesHardCut(t *testing.T) {
	a := track("a", 120, "8A", 0.6)
	b := track("b", 132, "8A", 0.6) // 10% delta, beyond the 8% stretch bound

	plan, err := PlanTransition(context.Background(), a, b, Options{})
	require.NoError(t, err)
	require.Equal(t, model.HardCut, plan.Type)
	found := false
	for _, w := range plan.Warnings {
		if w.Tag == "STRETCH_OUT_OF_RANGE" {
			found = true
		}
	}
	require.True(t, found)
}

func TestPlanTransitionPeakEnergyDropForcesHardCut(t *testing.T) {
	a := track("a", 124, "8A", 0.5)
	b := track("b", 124, "8A", 0.5)

	plan, err := PlanTransition(context.Background(), a, b, Options{
		SetPhase:   setphase.PhaseFor(5, 10), // PEAK
		PrevEnergy: 0.9,
	})
	require.NoError(t, err)
	require.Equal(t, model.HardCut, plan.Type)
}

func TestPlanTransitionAdjustsDurationToPhaseRange(t *testing.T) {
	a := track("a", 124, "8A", 0.6)
	b := track("b", 124, "8A", 0.6)

	plan, err := PlanTransition(context.Background(), a, b, Options{
		SetPhase: setphase.PhaseFor(6, 10), // PEAK, prefers [8,16]
	})
	require.NoError(t, err)
	require.GreaterOrEqual(t, plan.DurationBars, 8)
	require.LessOrEqual(t, plan.DurationBars, 16)
}

// fakeLLMPlanner lets tests control whether the LLM port "succeeds" with a
// given plan or returns ErrUnavailable.
type fakeLLMPlanner struct {
	plan *model.TransitionPlan
	err  error
}

func (f fakeLLMPlanner) Plan(ctx context.Context, a, b *model.TrackAnalysis, compat float64, setCtx llmplan.SetContext) (*model.TransitionPlan, error) {
	return f.plan, f.err
}
func (f fakeLLMPlanner) Reorder(ctx context.Context, analyses []*model.TrackAnalysis, instruction string) ([]string, error) {
	return nil, errors.New("not implemented")
}

func TestPlanTransitionUsesValidLLMOutput(t *testing.T) {
	a := track("a", 124, "8A", 0.6)
	b := track("b", 124, "8A", 0.6)

	llmPlan := &model.TransitionPlan{Type: model.Crossfade, DurationBars: 8, Confidence: 0.9}
	llm := fakeLLMPlanner{plan: llmPlan}

	plan, err := PlanTransition(context.Background(), a, b, Options{LLM: llm})
	require.NoError(t, err)
	require.Equal(t, model.Crossfade, plan.Type)
	require.Equal(t, 8, plan.DurationBars)
}

func TestPlanTransitionDiscardsInvalidLLMOutputAndFallsBack(t *testing.T) {
	a := track("a", 124, "8A", 0.6)
	b := track("b", 124, "8A", 0.6)

	// STEM_BLEND with an out-of-range duration_bars: Validate() rejects it.
	llmPlan := &model.TransitionPlan{Type: model.StemBlend, DurationBars: 99, BassSwapBar: 1}
	llm := fakeLLMPlanner{plan: llmPlan}

	plan, err := PlanTransition(context.Background(), a, b, Options{LLM: llm})
	require.NoError(t, err)
	require.Equal(t, model.StemBlend, plan.Type)
	require.Equal(t, 16, plan.DurationBars) // rule-based result for this highly-compatible pair
}

func TestPlanTransitionDoubleDropPresetOn32BarPhraseMatch(t *testing.T) {
	a := track("a", 124, "8A", 0.6)
	a.Phrases = []model.Phrase{{StartS: 0, EndS: 60, BarCount: 32}}
	b := track("b", 124, "8A", 0.6)
	b.Phrases = []model.Phrase{{StartS: 0, EndS: 60, BarCount: 32}}

	plan, err := PlanTransition(context.Background(), a, b, Options{})
	require.NoError(t, err)
	require.Equal(t, model.StemBlend, plan.Type)
	require.NotEmpty(t, plan.Phases, "double-drop eligible pair should get an explicit phase curve")
	require.NoError(t, plan.Validate())

	found := false
	for _, w := range plan.Warnings {
		if w.Tag == "DOUBLE_DROP" {
			found = true
		}
	}
	require.True(t, found)
}

func TestPlanTransitionNoDoubleDropWithoutMatchingPhrases(t *testing.T) {
	a := track("a", 124, "8A", 0.6)
	b := track("b", 124, "8A", 0.6)

	plan, err := PlanTransition(context.Background(), a, b, Options{})
	require.NoError(t, err)
	require.Equal(t, model.StemBlend, plan.Type)
	require.Empty(t, plan.Phases, "without 32-bar phrases the renderer should use its own default curve")
}

func TestPlanTransitionFallsBackWhenLLMUnavailable(t *testing.T) {
	a := track("a", 124, "8A", 0.6)
	b := track("b", 124, "8A", 0.6)

	llm := fakeLLMPlanner{err: llmplan.ErrUnavailable}
	plan, err := PlanTransition(context.Background(), a, b, Options{LLM: llm})
	require.NoError(t, err)
	require.Equal(t, model.StemBlend, plan.Type)
}
