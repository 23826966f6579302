// Package effects implements the transition renderer's effects library
// (spec §4.6, C6): filtering, filter sweeps, delay, reverb, limiting, and
// normalization, built on RBJ biquad coefficient designers (a separate
// copy of the ones internal/separator's fallback band-split uses) and on
// gonum's FFT for convolution reverb.
package effects

import (
	"math"

	"github.com/cwbudde/algo-dsp/dsp/filter/biquad"
)

// FilterKind selects which RBJ filter shape Filter builds.
type FilterKind string

const (
	KindHighpass FilterKind = "hpf"
	KindLowpass  FilterKind = "lpf"
	KindBandpass FilterKind = "bandpass"
)

// Filter wraps a biquad.Chain tuned to one of the three shapes the
// renderer needs: high-pass (to thin out track A during a filter sweep),
// low-pass (to thin out track B), and bandpass (used by the separator
// fallback and available here for symmetry).
type Filter struct {
	kind       FilterKind
	sampleRate float64
	q          float64
	chain      *biquad.Chain
}

// NewFilter constructs a filter of the given kind at the given cutoff.
func NewFilter(kind FilterKind, sampleRate int, cutoffHz, q float64) *Filter {
	if q <= 0 {
		q = 0.707
	}
	f := &Filter{kind: kind, sampleRate: float64(sampleRate), q: q}
	f.SetCutoff(cutoffHz)
	return f
}

// SetCutoff retunes the filter in place, used by FilterSweep to animate
// the cutoff frequency across a transition.
func (f *Filter) SetCutoff(cutoffHz float64) {
	var coeffs biquad.Coefficients
	switch f.kind {
	case KindHighpass:
		coeffs = rbjHighpass(f.sampleRate, cutoffHz, f.q)
	case KindBandpass:
		coeffs = rbjBandpass(f.sampleRate, cutoffHz, f.q)
	default:
		coeffs = rbjLowpass(f.sampleRate, cutoffHz, f.q)
	}
	if f.chain == nil {
		f.chain = biquad.NewChain([]biquad.Coefficients{coeffs})
		return
	}
	f.chain.Section(0).Coefficients = coeffs
}

// ProcessInPlace filters block (float64, mutated in place).
func (f *Filter) ProcessInPlace(block []float64) {
	f.chain.ProcessBlock(block)
}

func rbjLowpass(sampleRate, cutoffHz, q float64) biquad.Coefficients {
	w0 := 2 * math.Pi * cutoffHz / sampleRate
	cosW0, sinW0 := math.Cos(w0), math.Sin(w0)
	alpha := sinW0 / (2 * q)
	b0, b1, b2 := (1-cosW0)/2, 1-cosW0, (1-cosW0)/2
	a0, a1, a2 := 1+alpha, -2*cosW0, 1-alpha
	return normalize(b0, b1, b2, a0, a1, a2)
}

func rbjHighpass(sampleRate, cutoffHz, q float64) biquad.Coefficients {
	w0 := 2 * math.Pi * cutoffHz / sampleRate
	cosW0, sinW0 := math.Cos(w0), math.Sin(w0)
	alpha := sinW0 / (2 * q)
	b0, b1, b2 := (1+cosW0)/2, -(1+cosW0), (1+cosW0)/2
	a0, a1, a2 := 1+alpha, -2*cosW0, 1-alpha
	return normalize(b0, b1, b2, a0, a1, a2)
}

func rbjBandpass(sampleRate, centerHz, q float64) biquad.Coefficients {
	w0 := 2 * math.Pi * centerHz / sampleRate
	cosW0, sinW0 := math.Cos(w0), math.Sin(w0)
	alpha := sinW0 / (2 * q)
	b0, b1, b2 := alpha, 0.0, -alpha
	a0, a1, a2 := 1+alpha, -2*cosW0, 1-alpha
	return normalize(b0, b1, b2, a0, a1, a2)
}

func normalize(b0, b1, b2, a0, a1, a2 float64) biquad.Coefficients {
	return biquad.Coefficients{
		B0: b0 / a0, B1: b1 / a0, B2: b2 / a0,
		A1: a1 / a0, A2: a2 / a0,
	}
}
