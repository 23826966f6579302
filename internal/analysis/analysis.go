package analysis

import (
	"fmt"
	"math"

	"github.com/cancun/autodj/internal/audio"
	"github.com/cancun/autodj/internal/model"
)

// UnderdeterminedError is returned when the onset curve is too weak to
// produce a confident BPM estimate, matching the AnalysisUnderdetermined
// taxonomy entry in spec §7.
type UnderdeterminedError struct {
	TrackID string
	Reason  string
}

func (e *UnderdeterminedError) Error() string {
	return fmt.Sprintf("analysis: %s underdetermined: %s", e.TrackID, e.Reason)
}

// Analyze runs the full C3 pipeline over a decoded track and produces a
// validated TrackAnalysis. trackID and path are carried through untouched
// for the caller's bookkeeping; key is supplied externally (key detection
// is out of scope per spec §4.3's non-goals) and defaults to "" if unknown.
func Analyze(trackID, path string, buf *audio.Buffer, key string) (*model.TrackAnalysis, error) {
	mono := buf.Mono()
	durationMs := buf.DurationMs()
	durationSec := float64(durationMs) / 1000

	curve := computeOnsetCurve(mono, buf.SampleRate)
	bpm := EstimateBPM(curve)
	if bpm <= 0 {
		return nil, &UnderdeterminedError{TrackID: trackID, Reason: "no usable periodicity in onset curve"}
	}

	beats := BeatGrid(curve, bpm, float64(durationMs))
	downbeats := Downbeats(curve, beats)
	if len(downbeats) < minPhraseBars {
		return nil, &UnderdeterminedError{TrackID: trackID, Reason: "too few downbeats to segment phrases"}
	}

	phrases := DetectPhrases(mono, buf.SampleRate, downbeats, float64(durationMs), bpm)
	vocalSections := DetectVocalSections(mono, buf.SampleRate)

	barEnergy := rmsPerBar(mono, buf.SampleRate, downbeats, float64(durationMs))
	phraseEnergy := aggregatePhraseEnergy(phrases, downbeats, barEnergy)

	energy := overallEnergy(barEnergy)
	loudnessDB := loudnessDBFS(mono)

	introEndS := 0.0
	outroStartS := durationSec
	if len(phrases) > 0 {
		introEndS = phrases[0].EndS
		outroStartS = phrases[len(phrases)-1].StartS
	}

	inPts, outPts := DetectMixPoints(phrases, introEndS, outroStartS, phraseEnergy)

	beatsSec := make([]float64, len(beats))
	for i, b := range beats {
		beatsSec[i] = b / 1000
	}

	confidence := bpmConfidence(curve, bpm)

	analysis, err := model.NewTrackAnalysis(model.TrackAnalysis{
		TrackID:       trackID,
		Path:          path,
		DurationSec:   durationSec,
		BPM:           bpm,
		BPMConfidence: confidence,
		Beats:         beatsSec,
		Key:           key,
		Energy:        energy,
		LoudnessDB:    loudnessDB,
		IntroEndMs:    int64(introEndS * 1000),
		OutroStartMs:  int64(outroStartS * 1000),
		HasVocals:     len(vocalSections) > 0,
		VocalSections: vocalSections,
		Phrases:       phrases,
		MixInPoints:   inPts,
		MixOutPoints:  outPts,
	})
	if err != nil {
		return nil, fmt.Errorf("analysis: %s produced invalid analysis: %w", trackID, err)
	}
	analysis.Mixability = Mixability(analysis)
	return analysis, nil
}

func aggregatePhraseEnergy(phrases []model.Phrase, downbeats []float64, barEnergy []float64) []float64 {
	out := make([]float64, len(phrases))
	for i, p := range phrases {
		startBar := nearestBarIndex(downbeats, p.StartS*1000)
		endBar := nearestBarIndex(downbeats, p.EndS*1000)
		if endBar > len(barEnergy) {
			endBar = len(barEnergy)
		}
		if endBar <= startBar {
			continue
		}
		sum := 0.0
		for _, e := range barEnergy[startBar:endBar] {
			sum += e
		}
		out[i] = sum / float64(endBar-startBar)
	}
	return out
}

func nearestBarIndex(downbeats []float64, tMs float64) int {
	for i, d := range downbeats {
		if d >= tMs {
			return i
		}
	}
	return len(downbeats)
}

func overallEnergy(barEnergy []float64) float64 {
	if len(barEnergy) == 0 {
		return 0
	}
	max := 0.0
	sum := 0.0
	for _, e := range barEnergy {
		sum += e
		if e > max {
			max = e
		}
	}
	if max == 0 {
		return 0
	}
	mean := sum / float64(len(barEnergy))
	rel := mean / max
	if rel > 1 {
		rel = 1
	}
	return rel
}

func loudnessDBFS(samples []float32) float64 {
	if len(samples) == 0 {
		return -96
	}
	sumSq := 0.0
	for _, s := range samples {
		sumSq += float64(s) * float64(s)
	}
	rms := math.Sqrt(sumSq / float64(len(samples)))
	if rms <= 0 {
		return -96
	}
	return 20 * math.Log10(rms)
}

func bpmConfidence(o *onsetCurve, bpm float64) float64 {
	if bpm <= 0 || len(o.strengths) == 0 {
		return 0
	}
	mean := 0.0
	for _, v := range o.strengths {
		mean += v
	}
	mean /= float64(len(o.strengths))
	variance := 0.0
	for _, v := range o.strengths {
		d := v - mean
		variance += d * d
	}
	variance /= float64(len(o.strengths))
	if mean == 0 {
		return 0.5
	}
	cv := math.Sqrt(variance) / mean
	conf := cv / (1 + cv)
	if conf > 1 {
		conf = 1
	}
	if conf < 0.3 {
		conf = 0.3
	}
	return conf
}

// Mixability scores how DJ-friendly a track's own structure is: it rewards
// a clear intro/outro, a confidently detected tempo, and phrases that
// quantized cleanly, and is a supplemented feature (SPEC_FULL.md §9). It
// is stored on the analysis and reported in the analyze result; the
// planner does not read it.
func Mixability(a *model.TrackAnalysis) float64 {
	score := 0.4 * a.BPMConfidence
	if a.IntroEndMs > 0 {
		score += 0.2
	}
	if a.OutroStartMs < int64(a.DurationSec*1000) {
		score += 0.2
	}
	if len(a.Phrases) >= 2 {
		score += 0.2
	}
	if score > 1 {
		score = 1
	}
	return score
}
