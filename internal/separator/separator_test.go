package separator

import (
	"context"
	"math"
	"testing"

	"github.com/cancun/autodj/internal/audio"
)

func toneBuffer(freq float64) *audio.Buffer {
	n := 44100
	ch := make([]float32, n)
	for i := range ch {
		ch[i] = float32(math.Sin(2 * math.Pi * freq * float64(i) / 44100))
	}
	return &audio.Buffer{SampleRate: 44100, Channels: [][]float32{ch}}
}

func rms(ch []float32) float64 {
	sum := 0.0
	for _, v := range ch {
		sum += float64(v) * float64(v)
	}
	return math.Sqrt(sum / float64(len(ch)))
}

func TestBandSplitFallbackBassIsolatesLowFreq(t *testing.T) {
	f := NewBandSplitFallback(nil)
	low := toneBuffer(60) // well inside the bass band
	stems, err := f.Separate(context.Background(), low)
	if err != nil {
		t.Fatalf("Separate: %v", err)
	}
	bassEnergy := rms(stems.Bass.Channels[0])
	drumsEnergy := rms(stems.Drums.Channels[0])
	if bassEnergy <= drumsEnergy {
		t.Errorf("a 60Hz tone should carry more energy in Bass (%f) than Drums (%f)", bassEnergy, drumsEnergy)
	}
}

func TestBandSplitFallbackDrumsIsolatesHighFreq(t *testing.T) {
	f := NewBandSplitFallback(nil)
	high := toneBuffer(8000)
	stems, err := f.Separate(context.Background(), high)
	if err != nil {
		t.Fatalf("Separate: %v", err)
	}
	drumsEnergy := rms(stems.Drums.Channels[0])
	bassEnergy := rms(stems.Bass.Channels[0])
	if drumsEnergy <= bassEnergy {
		t.Errorf("an 8kHz tone should carry more energy in Drums (%f) than Bass (%f)", drumsEnergy, bassEnergy)
	}
}

func TestBandSplitFallbackAllFourStemsPresent(t *testing.T) {
	f := NewBandSplitFallback(nil)
	stems, err := f.Separate(context.Background(), toneBuffer(440))
	if err != nil {
		t.Fatalf("Separate: %v", err)
	}
	if stems.Bass == nil || stems.Drums == nil || stems.Other == nil || stems.Vocals == nil {
		t.Fatal("expected all four stems populated")
	}
}
