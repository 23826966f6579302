package separator

import (
	"math"

	"github.com/cwbudde/algo-dsp/dsp/filter/biquad"
)

// rbjLowpass/rbjHighpass/rbjBandpass implement Robert Bristow-Johnson's
// widely used biquad cookbook formulas. biquad.Chain (from algo-dsp) only
// exposes direct-form coefficients, not a frequency-to-coefficient
// designer, so the normalized-frequency trigonometry here is the
// narrowest stdlib-only surface needed to drive it; see DESIGN.md.
func rbjLowpass(sampleRate, cutoffHz, q float64) biquad.Coefficients {
	w0 := 2 * math.Pi * cutoffHz / sampleRate
	cosW0, sinW0 := math.Cos(w0), math.Sin(w0)
	alpha := sinW0 / (2 * q)

	b0 := (1 - cosW0) / 2
	b1 := 1 - cosW0
	b2 := (1 - cosW0) / 2
	a0 := 1 + alpha
	a1 := -2 * cosW0
	a2 := 1 - alpha
	return normalize(b0, b1, b2, a0, a1, a2)
}

func rbjHighpass(sampleRate, cutoffHz, q float64) biquad.Coefficients {
	w0 := 2 * math.Pi * cutoffHz / sampleRate
	cosW0, sinW0 := math.Cos(w0), math.Sin(w0)
	alpha := sinW0 / (2 * q)

	b0 := (1 + cosW0) / 2
	b1 := -(1 + cosW0)
	b2 := (1 + cosW0) / 2
	a0 := 1 + alpha
	a1 := -2 * cosW0
	a2 := 1 - alpha
	return normalize(b0, b1, b2, a0, a1, a2)
}

func rbjBandpass(sampleRate, centerHz, q float64) biquad.Coefficients {
	w0 := 2 * math.Pi * centerHz / sampleRate
	cosW0, sinW0 := math.Cos(w0), math.Sin(w0)
	alpha := sinW0 / (2 * q)

	b0 := alpha
	b1 := 0.0
	b2 := -alpha
	a0 := 1 + alpha
	a1 := -2 * cosW0
	a2 := 1 - alpha
	return normalize(b0, b1, b2, a0, a1, a2)
}

func normalize(b0, b1, b2, a0, a1, a2 float64) biquad.Coefficients {
	return biquad.Coefficients{
		B0: b0 / a0, B1: b1 / a0, B2: b2 / a0,
		A1: a1 / a0, A2: a2 / a0,
	}
}
