package transition

import (
	"github.com/cancun/autodj/internal/audio"
	"github.com/cancun/autodj/internal/effects"
	"github.com/cancun/autodj/internal/model"
)

// filterSweep runs track A through a rising highpass and track B through
// a falling lowpass while crossfading between them, spec §4.8's
// FILTER_SWEEP mode — the classic "filter roll" DJ transition.
func filterSweep(a, b *audio.Buffer, cfg *model.FilterSweepConfig) *audio.Buffer {
	if cfg == nil {
		cfg = &model.FilterSweepConfig{HPFStartAHz: 20, HPFEndAHz: 2000, LPFStartBHz: 18000, LPFEndBHz: 500}
	}
	filteredA := &audio.Buffer{SampleRate: a.SampleRate, Channels: make([][]float32, len(a.Channels))}
	for c, ch := range a.Channels {
		block := toF64(ch)
		block = effects.FilterSweep(effects.KindHighpass, a.SampleRate, block, cfg.HPFStartAHz, cfg.HPFEndAHz, 0.707)
		filteredA.Channels[c] = toF32(block)
	}
	filteredB := &audio.Buffer{SampleRate: b.SampleRate, Channels: make([][]float32, len(b.Channels))}
	for c, ch := range b.Channels {
		block := toF64(ch)
		block = effects.FilterSweep(effects.KindLowpass, b.SampleRate, block, cfg.LPFStartBHz, cfg.LPFEndBHz, 0.707)
		filteredB.Channels[c] = toF32(block)
	}
	return crossfadeEqualPower(filteredA, filteredB)
}

func toF64(x []float32) []float64 {
	out := make([]float64, len(x))
	for i, v := range x {
		out[i] = float64(v)
	}
	return out
}

func toF32(x []float64) []float32 {
	out := make([]float32, len(x))
	for i, v := range x {
		out[i] = float32(v)
	}
	return out
}
