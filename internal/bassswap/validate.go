package bassswap

import "math"

const windowMs = 100

// presenceThreshold is the fraction of a window's peak RMS (across the
// whole bass stem) above which that window counts as "bass present",
// mirroring the relative-RMS approach internal/analysis uses for vocals.
const presenceThreshold = 0.15

// Validate checks the sacred rule against a completed swap: it windows
// the two tracks' gain-shaped contributions into 100ms RMS windows and
// measures how many beats have both present simultaneously. Returns the
// measured overlap in beats and a *ViolationError if it exceeds
// MaxOverlapBeats.
func Validate(r *Result, sampleRate int, bpm float64) (float64, error) {
	windowSamples := sampleRate * windowMs / 1000
	if windowSamples < 1 {
		windowSamples = 1
	}
	n := min(len(r.GainedA), len(r.GainedB))
	numWindows := n / windowSamples
	if numWindows == 0 {
		return 0, nil
	}

	rmsA := make([]float64, numWindows)
	rmsB := make([]float64, numWindows)
	for w := 0; w < numWindows; w++ {
		start := w * windowSamples
		end := start + windowSamples
		rmsA[w] = windowRMS(r.GainedA[start:end])
		rmsB[w] = windowRMS(r.GainedB[start:end])
	}
	peakA, peakB := peakOf(rmsA), peakOf(rmsB)
	if peakA == 0 || peakB == 0 {
		return 0, nil
	}

	overlapWindows := 0
	for w := 0; w < numWindows; w++ {
		if rmsA[w] > presenceThreshold*peakA && rmsB[w] > presenceThreshold*peakB {
			overlapWindows++
		}
	}
	overlapMs := float64(overlapWindows) * windowMs
	overlapBeats := overlapMs / (60000 / bpm)

	if overlapBeats > MaxOverlapBeats {
		return overlapBeats, &ViolationError{OverlapBeats: overlapBeats}
	}
	return overlapBeats, nil
}

func windowRMS(x []float64) float64 {
	if len(x) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range x {
		sum += v * v
	}
	return math.Sqrt(sum / float64(len(x)))
}

func peakOf(x []float64) float64 {
	peak := 0.0
	for _, v := range x {
		if v > peak {
			peak = v
		}
	}
	return peak
}

// ReswapOrDowngrade retries the swap at progressively earlier swap points
// (shifting earlier by one beat each attempt) looking for a point where
// Validate passes; it reports the swap point it settled on, or ok=false
// if every attempt within maxAttempts still violates the rule, signaling
// the caller to downgrade STEM_BLEND to CROSSFADE (spec §4.7/§4.8's
// downgrade ladder).
func ReswapOrDowngrade(trackABass, trackBBass []float64, sampleRate int, bpm float64, initialSwapSample, barSamples int, style Style, maxAttempts int) (result *Result, swapSample int, ok bool) {
	beatSamples := int(60 / bpm * float64(sampleRate))
	swapSample = initialSwapSample
	for attempt := 0; attempt < maxAttempts; attempt++ {
		r, err := Swap(trackABass, trackBBass, sampleRate, swapSample, style, barSamples)
		if err != nil {
			return nil, 0, false
		}
		if _, verr := Validate(r, sampleRate, bpm); verr == nil {
			return r, swapSample, true
		}
		swapSample -= beatSamples
		if swapSample < 0 {
			break
		}
	}
	return nil, 0, false
}
