package analysis

import (
	"math"
	"sort"

	"github.com/cancun/autodj/internal/model"
	"gonum.org/v1/gonum/dsp/fourier"
)

// vocalBandLowHz and vocalBandHighHz bound the frequency range where lead
// vocals carry most of their energy; used as a pre-separation heuristic
// ahead of the real stem separator (C5).
const (
	vocalBandLowHz  = 200
	vocalBandHighHz = 4000
)

// vocalBandRMS computes, per hop, the RMS of the FFT energy restricted to
// the vocal band, following the same windowed-FFT frame loop as the onset
// curve but isolating a frequency band instead of computing flux.
func vocalBandRMS(samples []float32, sampleRate int) []float64 {
	fft := fourier.NewFFT(fftSize)
	window := hannWindow(fftSize)
	numFrames := (len(samples) - fftSize) / hopSize
	if numFrames < 1 {
		return nil
	}
	lowBin := int(vocalBandLowHz * fftSize / sampleRate)
	highBin := int(vocalBandHighHz * fftSize / sampleRate)

	windowed := make([]float64, fftSize)
	out := make([]float64, 0, numFrames)
	for i := 0; i < numFrames; i++ {
		start := i * hopSize
		for j := 0; j < fftSize; j++ {
			windowed[j] = float64(samples[start+j]) * window[j]
		}
		coeffs := fft.Coefficients(nil, windowed)
		sumSq := 0.0
		n := 0
		for k := lowBin; k <= highBin && k < len(coeffs); k++ {
			mag := math.Hypot(real(coeffs[k]), imag(coeffs[k]))
			sumSq += mag * mag
			n++
		}
		if n == 0 {
			out = append(out, 0)
			continue
		}
		out = append(out, math.Sqrt(sumSq/float64(n)))
	}
	return out
}

// DetectVocalSections applies spec §4.3's relative-RMS vocal heuristic: a
// hop is "present" if its vocal-band RMS exceeds 0.15*max_rms (and max_rms
// itself clears an absolute noise floor), then runs of presence are
// classified by level and cleaned up (drop short blips, bridge short gaps,
// merge adjacent runs).
func DetectVocalSections(samples []float32, sampleRate int) []model.VocalSection {
	rms := vocalBandRMS(samples, sampleRate)
	if len(rms) == 0 {
		return nil
	}
	maxRMS := 0.0
	for _, v := range rms {
		if v > maxRMS {
			maxRMS = v
		}
	}
	if maxRMS <= 5e-3 {
		return nil
	}

	hopMs := float64(hopSize) / float64(sampleRate) * 1000
	threshold := 0.15 * maxRMS

	type run struct {
		startIdx, endIdx int
	}
	var runs []run
	inRun := false
	var cur run
	for i, v := range rms {
		present := v > threshold
		if present && !inRun {
			cur = run{startIdx: i, endIdx: i}
			inRun = true
		} else if present && inRun {
			cur.endIdx = i
		} else if !present && inRun {
			runs = append(runs, cur)
			inRun = false
		}
	}
	if inRun {
		runs = append(runs, cur)
	}

	// Drop runs shorter than 0.5s.
	var filtered []run
	for _, r := range runs {
		durMs := float64(r.endIdx-r.startIdx+1) * hopMs
		if durMs >= 500 {
			filtered = append(filtered, r)
		}
	}

	// Bridge gaps shorter than 0.3s between consecutive surviving runs.
	var bridged []run
	for _, r := range filtered {
		if len(bridged) > 0 {
			gapMs := float64(r.startIdx-bridged[len(bridged)-1].endIdx) * hopMs
			if gapMs < 300 {
				bridged[len(bridged)-1].endIdx = r.endIdx
				continue
			}
		}
		bridged = append(bridged, r)
	}

	// Merge runs within 1s of each other into one section (level taken
	// from the loudest sub-run).
	var merged []run
	for _, r := range bridged {
		if len(merged) > 0 {
			gapMs := float64(r.startIdx-merged[len(merged)-1].endIdx) * hopMs
			if gapMs < 1000 {
				merged[len(merged)-1].endIdx = r.endIdx
				continue
			}
		}
		merged = append(merged, r)
	}

	sections := make([]model.VocalSection, 0, len(merged))
	for _, r := range merged {
		peak := 0.0
		for i := r.startIdx; i <= r.endIdx; i++ {
			if rms[i] > peak {
				peak = rms[i]
			}
		}
		rel := peak / maxRMS
		intensity := model.VocalBackground
		switch {
		case rel >= 0.50:
			intensity = model.VocalFull
		case rel >= 0.25:
			intensity = model.VocalSparse
		}
		sections = append(sections, model.VocalSection{
			StartS:    float64(r.startIdx) * hopMs / 1000,
			EndS:      float64(r.endIdx) * hopMs / 1000,
			Intensity: intensity,
		})
	}
	sort.Slice(sections, func(i, j int) bool { return sections[i].StartS < sections[j].StartS })
	return sections
}
