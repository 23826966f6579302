package model

import "fmt"

// TransitionType is one of the five realization modes a plan can request.
type TransitionType string

const (
	StemBlend   TransitionType = "STEM_BLEND"
	Crossfade   TransitionType = "CROSSFADE"
	HardCut     TransitionType = "HARD_CUT"
	FilterSweep TransitionType = "FILTER_SWEEP"
	EchoOut     TransitionType = "ECHO_OUT"
)

// StemLevels carries the per-stem gain at one phase boundary, all in [0,1].
type StemLevels struct {
	Drums float64 `json:"drums"`
	Bass  float64 `json:"bass"`
	Other float64 `json:"other"`
	Vocals float64 `json:"vocals"`
}

// Phase is one contiguous bar range of the stem-blend automation.
type Phase struct {
	BarStart int        `json:"bar_start"`
	BarEnd   int         `json:"bar_end"`
	A        StemLevels `json:"a"`
	B        StemLevels `json:"b"`
}

// TailEffectType names the effect tail attached to a HARD_CUT or ECHO_OUT.
type TailEffectType string

const (
	TailNone  TailEffectType = "none"
	TailReverb TailEffectType = "reverb"
	TailDelay TailEffectType = "delay"
)

// TailEffect configures the optional reverb/delay tail on track A.
type TailEffect struct {
	Type   TailEffectType `json:"type"`
	Params map[string]float64 `json:"params,omitempty"`
}

// FilterSweepConfig configures the A-hpf / B-lpf sweep pair.
type FilterSweepConfig struct {
	HPFStartAHz float64 `json:"hpf_start_a"`
	HPFEndAHz   float64 `json:"hpf_end_a"`
	LPFStartBHz float64 `json:"lpf_start_b"`
	LPFEndBHz   float64 `json:"lpf_end_b"`
}

// Warning is a typed tag attached to a plan or render result describing a
// downgrade or other notable deviation from the requested behavior.
type Warning struct {
	Tag    string `json:"tag"`
	Detail string `json:"detail,omitempty"`
}

// TransitionPlan is the planner's output and the renderer's input.
type TransitionPlan struct {
	Type          TransitionType     `json:"type"`
	DurationBars  int                `json:"duration_bars"`
	StartTimeInA  float64            `json:"start_time_in_a"`
	StartFromB    float64            `json:"start_from_b"`
	BassSwapBar   int                `json:"bass_swap_bar,omitempty"`
	Phases        []Phase            `json:"phases,omitempty"`
	EffectTrackA  *TailEffect        `json:"effects_track_a,omitempty"`
	Filter        *FilterSweepConfig `json:"filter,omitempty"`
	Confidence    float64            `json:"confidence"`
	Warnings      []Warning          `json:"warnings,omitempty"`
}

var validStemBlendBars = map[int]bool{8: true, 16: true, 24: true, 32: true}
var validOtherBars = map[int]bool{4: true, 8: true, 16: true}

// Validate checks the invariants spec §3 places on a transition plan.
func (p *TransitionPlan) Validate() error {
	switch p.Type {
	case StemBlend:
		if !validStemBlendBars[p.DurationBars] {
			return fmt.Errorf("model: STEM_BLEND duration_bars %d invalid", p.DurationBars)
		}
		if p.BassSwapBar < 1 || p.BassSwapBar > p.DurationBars {
			return fmt.Errorf("model: bass_swap_bar %d out of [1,%d]", p.BassSwapBar, p.DurationBars)
		}
		if err := p.validatePhaseCover(); err != nil {
			return err
		}
	case Crossfade, HardCut, FilterSweep, EchoOut:
		if p.DurationBars != 0 && !validOtherBars[p.DurationBars] {
			return fmt.Errorf("model: %s duration_bars %d invalid", p.Type, p.DurationBars)
		}
	default:
		return fmt.Errorf("model: unknown transition type %q", p.Type)
	}
	if p.Confidence < 0 || p.Confidence > 1 {
		return fmt.Errorf("model: confidence %f out of [0,1]", p.Confidence)
	}
	return nil
}

func (p *TransitionPlan) validatePhaseCover() error {
	if len(p.Phases) == 0 {
		return nil // renderer supplies the default four-phase curve
	}
	expectStart := 1
	for i, ph := range p.Phases {
		if ph.BarStart != expectStart {
			return fmt.Errorf("model: phase %d starts at bar %d, expected %d", i, ph.BarStart, expectStart)
		}
		if ph.BarEnd < ph.BarStart {
			return fmt.Errorf("model: phase %d has end < start", i)
		}
		for _, lvl := range []float64{ph.A.Drums, ph.A.Bass, ph.A.Other, ph.A.Vocals, ph.B.Drums, ph.B.Bass, ph.B.Other, ph.B.Vocals} {
			if lvl < 0 || lvl > 1 {
				return fmt.Errorf("model: phase %d has stem level %f out of [0,1]", i, lvl)
			}
		}
		expectStart = ph.BarEnd + 1
	}
	last := p.Phases[len(p.Phases)-1]
	if last.BarEnd != p.DurationBars {
		return fmt.Errorf("model: phases cover up to bar %d, expected %d", last.BarEnd, p.DurationBars)
	}
	return nil
}
