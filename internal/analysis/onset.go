// Package analysis implements beat, phrase, vocal, and mix-point detection
// over decoded PCM (spec §4.3, C3). It windows audio through an FFT,
// derives an onset-strength curve from spectral flux, and autocorrelates
// that curve to estimate tempo and a beat grid, following the windowed
// spectral-analysis pattern used throughout the retrieval pack's audio
// feature extractors.
package analysis

import (
	"math"

	"gonum.org/v1/gonum/dsp/fourier"
)

const (
	fftSize = 2048
	hopSize = 512
)

// onsetCurve holds the per-hop spectral-flux onset strength and the
// sample-rate/hop needed to convert hop indices back to time.
type onsetCurve struct {
	strengths []float64
	sampleRate int
	hop        int
}

// timeMs converts hop index i to milliseconds.
func (o *onsetCurve) timeMs(i int) float64 {
	return float64(i*o.hop) / float64(o.sampleRate) * 1000
}

// computeOnsetCurve windows mono samples through a Hann-windowed FFT and
// returns the half-wave-rectified spectral flux per hop, the standard
// onset-detection-function construction.
func computeOnsetCurve(samples []float32, sampleRate int) *onsetCurve {
	fft := fourier.NewFFT(fftSize)
	window := hannWindow(fftSize)

	numFrames := (len(samples) - fftSize) / hopSize
	if numFrames < 1 {
		return &onsetCurve{sampleRate: sampleRate, hop: hopSize}
	}

	prevSpectrum := make([]float64, fftSize/2+1)
	strengths := make([]float64, 0, numFrames)
	windowed := make([]float64, fftSize)

	for i := 0; i < numFrames; i++ {
		start := i * hopSize
		for j := 0; j < fftSize; j++ {
			windowed[j] = float64(samples[start+j]) * window[j]
		}
		coeffs := fft.Coefficients(nil, windowed)
		spectrum := make([]float64, len(coeffs))
		flux := 0.0
		for k, c := range coeffs {
			mag := math.Hypot(real(c), imag(c))
			spectrum[k] = mag
			d := mag - prevSpectrum[k]
			if d > 0 {
				flux += d
			}
		}
		strengths = append(strengths, flux)
		prevSpectrum = spectrum
	}
	return &onsetCurve{strengths: strengths, sampleRate: sampleRate, hop: hopSize}
}

func hannWindow(n int) []float64 {
	w := make([]float64, n)
	for i := range w {
		w[i] = 0.5 * (1 - math.Cos(2*math.Pi*float64(i)/float64(n-1)))
	}
	return w
}

// EstimateBPM autocorrelates the onset curve over the plausible DJ tempo
// range (60-200 BPM) and returns the lag with the strongest periodicity.
func EstimateBPM(o *onsetCurve) float64 {
	if len(o.strengths) < 4 {
		return 0
	}
	hopMs := float64(o.hop) / float64(o.sampleRate) * 1000
	minLag := int(60000 / 200 / hopMs)
	maxLag := int(60000 / 60 / hopMs)
	if minLag < 1 {
		minLag = 1
	}
	if maxLag >= len(o.strengths) {
		maxLag = len(o.strengths) - 1
	}

	mean := 0.0
	for _, v := range o.strengths {
		mean += v
	}
	mean /= float64(len(o.strengths))
	centered := make([]float64, len(o.strengths))
	for i, v := range o.strengths {
		centered[i] = v - mean
	}

	bestLag := minLag
	bestScore := math.Inf(-1)
	for lag := minLag; lag <= maxLag; lag++ {
		score := 0.0
		for i := 0; i+lag < len(centered); i++ {
			score += centered[i] * centered[i+lag]
		}
		if score > bestScore {
			bestScore = score
			bestLag = lag
		}
	}
	if bestLag == 0 {
		return 0
	}
	periodMs := float64(bestLag) * hopMs
	return 60000 / periodMs
}

// BeatGrid lays down beat timestamps (in ms) at the given BPM starting from
// the first strong onset, spanning durationMs.
func BeatGrid(o *onsetCurve, bpm float64, durationMs float64) []float64 {
	if bpm <= 0 {
		return nil
	}
	periodMs := 60000 / bpm
	firstBeat := firstStrongOnsetMs(o)
	var beats []float64
	for t := firstBeat; t < durationMs; t += periodMs {
		beats = append(beats, t)
	}
	return beats
}

func firstStrongOnsetMs(o *onsetCurve) float64 {
	if len(o.strengths) == 0 {
		return 0
	}
	threshold := 0.0
	for _, v := range o.strengths {
		threshold += v
	}
	threshold = threshold / float64(len(o.strengths)) * 1.5
	for i, v := range o.strengths {
		if v >= threshold {
			return o.timeMs(i)
		}
	}
	return 0
}
