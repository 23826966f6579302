package stretch

import (
	"math"
	"testing"
)

func sine(n int, freq, sampleRate float64) []float32 {
	out := make([]float32, n)
	for i := range out {
		out[i] = float32(math.Sin(2 * math.Pi * freq * float64(i) / sampleRate))
	}
	return out
}

func TestStretchOutOfRangeRejected(t *testing.T) {
	samples := sine(44100, 440, 44100)
	_, err := Stretch(samples, 1.5)
	if err == nil {
		t.Fatal("expected OutOfRangeError for ratio 1.5")
	}
	var target *OutOfRangeError
	if oe, ok := err.(*OutOfRangeError); ok {
		target = oe
	}
	if target == nil {
		t.Fatalf("expected *OutOfRangeError, got %T", err)
	}
}

func TestStretchIdentityRatio(t *testing.T) {
	samples := sine(4096, 440, 44100)
	out, err := Stretch(samples, 1.0)
	if err != nil {
		t.Fatalf("Stretch: %v", err)
	}
	if len(out) != len(samples) {
		t.Errorf("identity stretch changed length: %d -> %d", len(samples), len(out))
	}
}

func TestStretchChangesLengthProportionally(t *testing.T) {
	samples := sine(44100*2, 440, 44100)
	out, err := Stretch(samples, 1.05)
	if err != nil {
		t.Fatalf("Stretch: %v", err)
	}
	wantLen := float64(len(samples)) * 1.05
	ratio := float64(len(out)) / wantLen
	if ratio < 0.85 || ratio > 1.15 {
		t.Errorf("stretched length %d not proportional to expected ~%f", len(out), wantLen)
	}
}

func TestRatioForDirectMatch(t *testing.T) {
	r := RatioFor(128, 128)
	if math.Abs(r-1.0) > 1e-9 {
		t.Errorf("RatioFor(128,128) = %f, want 1.0", r)
	}
}

func TestRatioForHalfTime(t *testing.T) {
	// A 70 BPM target against a 140 BPM source should use the half-time
	// factor, producing a ratio near 1.0 rather than 0.5.
	r := RatioFor(140, 70)
	if math.Abs(r-1.0) > 0.05 {
		t.Errorf("RatioFor(140,70) = %f, want ~1.0 (half-time correction)", r)
	}
}

func TestSnapToBeatPicksClosest(t *testing.T) {
	beats := []float64{0, 0.5, 1.0, 1.5, 2.0}
	if got := SnapToBeat(beats, 1.2); got != 1.0 {
		t.Errorf("SnapToBeat(1.2) = %f, want 1.0", got)
	}
	if got := SnapToBeat(beats, 1.3); got != 1.5 {
		t.Errorf("SnapToBeat(1.3) = %f, want 1.5", got)
	}
}
