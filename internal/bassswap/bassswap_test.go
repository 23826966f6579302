package bassswap

import (
	"math"
	"testing"
)

func toneTrack(n int, freq float64, sampleRate int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = math.Sin(2 * math.Pi * freq * float64(i) / float64(sampleRate))
	}
	return out
}

func TestSwapInstantStaysWithinSacredRule(t *testing.T) {
	sampleRate := 44100
	n := sampleRate * 4
	a := toneTrack(n, 55, sampleRate)
	b := toneTrack(n, 55, sampleRate)

	swapAt := n / 2
	r, err := Swap(a, b, sampleRate, swapAt, StyleInstant, 0)
	if err != nil {
		t.Fatalf("Swap: %v", err)
	}
	overlap, err := Validate(r, sampleRate, 128)
	if err != nil {
		t.Fatalf("instant swap should satisfy the sacred rule, got overlap=%f: %v", overlap, err)
	}
}

func TestSwapOneBarCanViolateSacredRule(t *testing.T) {
	sampleRate := 44100
	bpm := 128.0
	barSamples := int(4 * 60 / bpm * float64(sampleRate))
	n := sampleRate * 4
	a := toneTrack(n, 55, sampleRate)
	b := toneTrack(n, 55, sampleRate)

	swapAt := n / 2
	r, err := Swap(a, b, sampleRate, swapAt, StyleOneBar, barSamples)
	if err != nil {
		t.Fatalf("Swap: %v", err)
	}
	_, err = Validate(r, sampleRate, bpm)
	if err == nil {
		t.Fatal("a full one-bar (4 beat) crossfade of two continuously loud tones should violate the 2-beat sacred rule")
	}
	var ve *ViolationError
	if v, ok := err.(*ViolationError); ok {
		ve = v
	}
	if ve == nil {
		t.Fatalf("expected *ViolationError, got %T", err)
	}
}

func TestReswapOrDowngradeFindsValidPointOrFails(t *testing.T) {
	sampleRate := 44100
	bpm := 128.0
	n := sampleRate * 8
	a := toneTrack(n, 55, sampleRate)
	b := toneTrack(n, 55, sampleRate)

	_, _, ok := ReswapOrDowngrade(a, b, sampleRate, bpm, n/2, 0, StyleInstant, 5)
	if !ok {
		t.Error("instant-style swap should find a valid point within a few attempts")
	}
}
