package analysis

import (
	"math"
	"sort"

	"github.com/cancun/autodj/internal/model"
)

// validPhraseBars are the bar lengths a detected phrase is quantized to,
// per spec §4.3, biased toward the most common 16-bar phrase.
var validPhraseBars = []int{8, 16, 32}

const minPhraseBars = 6

// rmsPerBar computes the RMS energy of samples within each bar window
// defined by downbeats, used as the novelty feature for phrase boundaries.
func rmsPerBar(samples []float32, sampleRate int, downbeats []float64, durationMs float64) []float64 {
	bounds := append(append([]float64{}, downbeats...), durationMs)
	out := make([]float64, 0, len(bounds)-1)
	for i := 0; i+1 < len(bounds); i++ {
		start := int(bounds[i] / 1000 * float64(sampleRate))
		end := int(bounds[i+1] / 1000 * float64(sampleRate))
		if start < 0 {
			start = 0
		}
		if end > len(samples) {
			end = len(samples)
		}
		if end <= start {
			out = append(out, 0)
			continue
		}
		sumSq := 0.0
		for _, s := range samples[start:end] {
			sumSq += float64(s) * float64(s)
		}
		out = append(out, math.Sqrt(sumSq/float64(end-start)))
	}
	return out
}

// smooth applies a simple 3-tap moving average, matching the "smoothed"
// novelty-curve construction spec §4.3 calls for.
func smooth(x []float64) []float64 {
	if len(x) < 3 {
		return append([]float64(nil), x...)
	}
	out := make([]float64, len(x))
	for i := range x {
		lo, hi := i-1, i+1
		if lo < 0 {
			lo = 0
		}
		if hi >= len(x) {
			hi = len(x) - 1
		}
		sum := 0.0
		for j := lo; j <= hi; j++ {
			sum += x[j]
		}
		out[i] = sum / float64(hi-lo+1)
	}
	return out
}

// quantizeBarCount snaps n to the nearest value in validPhraseBars, biased
// toward 16 when two candidates tie.
func quantizeBarCount(n int) int {
	best := validPhraseBars[0]
	bestDist := absInt(n - best)
	for _, v := range validPhraseBars[1:] {
		d := absInt(n - v)
		if d < bestDist || (d == bestDist && v == 16) {
			bestDist = d
			best = v
		}
	}
	return best
}

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

// DetectPhrases finds phrase boundaries as local maxima of the smoothed
// per-bar energy-change curve, snapped to the nearest downbeat and
// quantized to {8,16,32} bars, discarding any boundary that would produce
// a phrase shorter than minPhraseBars.
func DetectPhrases(samples []float32, sampleRate int, downbeats []float64, durationMs, bpm float64) []model.Phrase {
	if len(downbeats) < minPhraseBars {
		return nil
	}
	bars := rmsPerBar(samples, sampleRate, downbeats, durationMs)
	smoothed := smooth(bars)

	change := make([]float64, len(smoothed))
	for i := 1; i < len(smoothed); i++ {
		change[i] = math.Abs(smoothed[i] - smoothed[i-1])
	}

	type candidate struct {
		barIdx int
		score  float64
	}
	var candidates []candidate
	for i := 1; i+1 < len(change); i++ {
		if change[i] > change[i-1] && change[i] >= change[i+1] {
			candidates = append(candidates, candidate{barIdx: i, score: change[i]})
		}
	}
	sort.Slice(candidates, func(i, j int) bool { return candidates[i].score > candidates[j].score })

	boundaryBars := map[int]bool{0: true, len(downbeats): true}
	for _, c := range candidates {
		boundaryBars[c.barIdx] = true
	}
	var sortedBars []int
	for b := range boundaryBars {
		sortedBars = append(sortedBars, b)
	}
	sort.Ints(sortedBars)

	barMs := BarMs(bpm)
	var phrases []model.Phrase
	for i := 0; i+1 < len(sortedBars); i++ {
		startBar, endBar := sortedBars[i], sortedBars[i+1]
		span := endBar - startBar
		if span < minPhraseBars {
			continue
		}
		q := quantizeBarCount(span)
		startS := float64(startBar) * barMs / 1000
		endS := startS + float64(q)*barMs/1000
		phrases = append(phrases, model.Phrase{StartS: startS, EndS: endS, BarCount: q})
	}
	return phrases
}
