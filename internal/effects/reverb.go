package effects

import (
	"math"
	"math/rand"

	"gonum.org/v1/gonum/dsp/fourier"
)

// Reverb is an FFT-convolution reverb: the impulse response is a short
// cluster of early reflections followed by an exponentially decaying
// noise tail, matching spec §4.6's "early reflections + decaying tail"
// description. Convolution runs via gonum's FFT (overlap-add over the
// input in one shot, sized to input+impulse length), the same
// fourier.NewFFT/Coefficients pattern used throughout the retrieval
// pack's spectral analysis code.
type Reverb struct {
	impulse []float64
}

// NewReverb builds a reverb with the given decay time; the wet mix is
// chosen per call to Process. seed controls the deterministic noise tail so renders are reproducible.
func NewReverb(sampleRate int, decaySec float64, seed int64) *Reverb {
	rng := rand.New(rand.NewSource(seed))
	n := int(float64(sampleRate) * decaySec)
	if n < 1 {
		n = 1
	}
	impulse := make([]float64, n)

	// A handful of early reflections in the first 30ms.
	earlyTaps := int(0.03 * float64(sampleRate))
	if earlyTaps > n {
		earlyTaps = n
	}
	for i := 0; i < 6 && i < earlyTaps; i++ {
		pos := rng.Intn(earlyTaps)
		impulse[pos] += 0.6 * math.Pow(0.8, float64(i))
	}

	// Decaying noise tail.
	for i := earlyTaps; i < n; i++ {
		t := float64(i) / float64(sampleRate)
		decay := math.Exp(-t / (decaySec / 4))
		impulse[i] = (rng.Float64()*2 - 1) * decay
	}
	return &Reverb{impulse: impulse}
}

// Process convolves dry with the impulse response and mixes wet*result
// with (1-wet)*dry, renormalizing the wet signal's peak to match the dry
// signal's peak first so the tail doesn't dominate the mix.
func (r *Reverb) Process(dry []float64, wet float64) []float64 {
	wetSignal := fftConvolve(dry, r.impulse)
	wetSignal = renormalizePeak(wetSignal, peakAbs(dry))

	out := make([]float64, len(wetSignal))
	for i := range out {
		d := 0.0
		if i < len(dry) {
			d = dry[i]
		}
		out[i] = d*(1-wet) + wetSignal[i]*wet
	}
	return out
}

// Tail returns just the reverb's decay past the end of the input, for
// extending a HARD_CUT transition with a trailing wash (spec §4.8).
func (r *Reverb) Tail(dry []float64) []float64 {
	full := fftConvolve(dry, r.impulse)
	if len(full) <= len(dry) {
		return nil
	}
	tail := full[len(dry):]
	return renormalizePeak(tail, peakAbs(dry))
}

func fftConvolve(a, b []float64) []float64 {
	n := nextPow2(len(a) + len(b) - 1)
	fft := fourier.NewFFT(n)

	ap := make([]float64, n)
	bp := make([]float64, n)
	copy(ap, a)
	copy(bp, b)

	ca := fft.Coefficients(nil, ap)
	cb := fft.Coefficients(nil, bp)
	for i := range ca {
		ca[i] *= cb[i]
	}
	result := fft.Sequence(nil, ca)
	for i := range result {
		result[i] /= float64(n)
	}
	return result[:len(a)+len(b)-1]
}

func nextPow2(n int) int {
	p := 1
	for p < n {
		p <<= 1
	}
	return p
}

func peakAbs(x []float64) float64 {
	peak := 0.0
	for _, v := range x {
		if math.Abs(v) > peak {
			peak = math.Abs(v)
		}
	}
	return peak
}

func renormalizePeak(x []float64, targetPeak float64) []float64 {
	peak := peakAbs(x)
	if peak == 0 || targetPeak == 0 {
		return x
	}
	scale := targetPeak / peak
	out := make([]float64, len(x))
	for i, v := range x {
		out[i] = v * scale
	}
	return out
}
