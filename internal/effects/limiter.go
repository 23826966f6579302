package effects

import "math"

// Limiter is a lookahead-free peak limiter, applied as the final rendering
// stage (spec §4.8) so no downgrade path or effect tail can push the
// output above ceiling.
type Limiter struct {
	ceiling      float64
	attackSamp   int
	releaseSamp  int
	gainState    float64
}

// NegOneDBFS is the linear peak for -1 dBFS (10^(-1/20)), the ceiling
// spec §4.5/§4.8 pin the finishing limiter and normalizer to.
const NegOneDBFS = 0.8912509381337456

// NewLimiter builds a limiter at ceiling (linear, e.g. NegOneDBFS for
// -1dBFS) with the given attack/release times.
func NewLimiter(sampleRate int, ceiling, attackMs, releaseMs float64) *Limiter {
	return &Limiter{
		ceiling:     ceiling,
		attackSamp:  max(1, int(float64(sampleRate)*attackMs/1000)),
		releaseSamp: max(1, int(float64(sampleRate)*releaseMs/1000)),
		gainState:   1.0,
	}
}

// ProcessInPlace applies lookahead-free peak limiting (a fast envelope
// follower driving the gain) to block.
func (l *Limiter) ProcessInPlace(block []float64) {
	attackCoeff := math.Exp(-1 / float64(l.attackSamp))
	releaseCoeff := math.Exp(-1 / float64(l.releaseSamp))

	for i, s := range block {
		target := 1.0
		mag := math.Abs(s)
		if mag > l.ceiling {
			target = l.ceiling / mag
		}
		if target < l.gainState {
			l.gainState = attackCoeff*l.gainState + (1-attackCoeff)*target
		} else {
			l.gainState = releaseCoeff*l.gainState + (1-releaseCoeff)*target
		}
		if mag*l.gainState > l.ceiling {
			l.gainState = l.ceiling / mag
		}
		block[i] = s * l.gainState
	}
}

// Normalize scales samples down to targetPeak when their peak exceeds it;
// it never boosts a quieter signal, preserving the dynamics of
// already-mastered material (spec §4.5). A no-op on silence or on
// material already at or under targetPeak.
func Normalize(samples []float64, targetPeak float64) {
	peak := peakAbs(samples)
	if peak == 0 {
		return
	}
	scale := targetPeak / peak
	if scale >= 1 {
		return
	}
	for i := range samples {
		samples[i] *= scale
	}
}
