package analysis

import (
	"math"
	"testing"

	"github.com/cancun/autodj/internal/audio"
)

// clickTrack synthesizes a mono click track at the given BPM: a short
// decaying burst at every beat, silence otherwise, matching the teacher's
// synthetic click-track fixtures used to test tempo recovery.
func clickTrack(sampleRate int, bpm float64, beats int) *audio.Buffer {
	periodSamples := int(60.0 / bpm * float64(sampleRate))
	total := periodSamples * beats
	ch := make([]float32, total)
	burstLen := sampleRate / 50
	for b := 0; b < beats; b++ {
		start := b * periodSamples
		for i := 0; i < burstLen && start+i < total; i++ {
			decay := math.Exp(-float64(i) / float64(burstLen) * 6)
			ch[start+i] = float32(math.Sin(2*math.Pi*1000*float64(i)/float64(sampleRate)) * decay)
		}
	}
	return &audio.Buffer{SampleRate: sampleRate, Channels: [][]float32{ch}}
}

func TestEstimateBPMRecoversClickTempo(t *testing.T) {
	buf := clickTrack(44100, 128, 64)
	curve := computeOnsetCurve(buf.Mono(), buf.SampleRate)
	got := EstimateBPM(curve)
	if math.Abs(got-128) > 3 {
		t.Errorf("EstimateBPM = %f, want ~128", got)
	}
}

func TestBeatGridSpacing(t *testing.T) {
	buf := clickTrack(44100, 120, 32)
	curve := computeOnsetCurve(buf.Mono(), buf.SampleRate)
	beats := BeatGrid(curve, 120, float64(buf.DurationMs()))
	if len(beats) < 10 {
		t.Fatalf("too few beats detected: %d", len(beats))
	}
	wantPeriod := 500.0 // ms, 120 BPM
	for i := 1; i < len(beats); i++ {
		period := beats[i] - beats[i-1]
		if math.Abs(period-wantPeriod) > wantPeriod*0.1 {
			t.Errorf("beat %d period = %f, want ~%f", i, period, wantPeriod)
		}
	}
}

func TestDownbeatsEveryFourthBeat(t *testing.T) {
	buf := clickTrack(44100, 128, 64)
	curve := computeOnsetCurve(buf.Mono(), buf.SampleRate)
	beats := BeatGrid(curve, 128, float64(buf.DurationMs()))
	downbeats := Downbeats(curve, beats)
	if len(beats) >= 4 && len(downbeats) == 0 {
		t.Fatal("expected at least one downbeat")
	}
	for _, db := range downbeats {
		found := false
		for _, b := range beats {
			if b == db {
				found = true
			}
		}
		if !found {
			t.Errorf("downbeat %f is not one of the detected beats", db)
		}
	}
}

func TestDetectVocalSectionsEmptyOnSilence(t *testing.T) {
	buf := &audio.Buffer{SampleRate: 44100, Channels: [][]float32{make([]float32, 44100*4)}}
	sections := DetectVocalSections(buf.Mono(), buf.SampleRate)
	if len(sections) != 0 {
		t.Errorf("expected no vocal sections on silence, got %d", len(sections))
	}
}

func TestQuantizeBarCountBiasesToward16(t *testing.T) {
	if got := quantizeBarCount(12); got != 16 {
		t.Errorf("quantizeBarCount(12) = %d, want 16 (tie broken toward 16)", got)
	}
	if got := quantizeBarCount(7); got != 8 {
		t.Errorf("quantizeBarCount(7) = %d, want 8", got)
	}
	if got := quantizeBarCount(30); got != 32 {
		t.Errorf("quantizeBarCount(30) = %d, want 32", got)
	}
}
