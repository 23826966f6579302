package effects

import (
	"math"
	"testing"
)

func sine(n int, freq, sampleRate float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = math.Sin(2 * math.Pi * freq * float64(i) / sampleRate)
	}
	return out
}

func rmsOf(x []float64) float64 {
	sum := 0.0
	for _, v := range x {
		sum += v * v
	}
	return math.Sqrt(sum / float64(len(x)))
}

func TestLowpassAttenuatesHighFreq(t *testing.T) {
	f := NewFilter(KindLowpass, 44100, 300, 0.707)
	high := sine(4410, 8000, 44100)
	f.ProcessInPlace(high)
	if rmsOf(high) > 0.3 {
		t.Errorf("8kHz tone through a 300Hz lowpass should be heavily attenuated, rms=%f", rmsOf(high))
	}
}

func TestHighpassAttenuatesLowFreq(t *testing.T) {
	f := NewFilter(KindHighpass, 44100, 4000, 0.707)
	low := sine(4410, 60, 44100)
	f.ProcessInPlace(low)
	if rmsOf(low) > 0.3 {
		t.Errorf("60Hz tone through a 4kHz highpass should be heavily attenuated, rms=%f", rmsOf(low))
	}
}

func TestFilterSweepPreservesLength(t *testing.T) {
	in := sine(44100, 440, 44100)
	out := FilterSweep(KindLowpass, 44100, in, 8000, 200, 0.707)
	if len(out) != len(in) {
		t.Errorf("FilterSweep changed length: %d -> %d", len(in), len(out))
	}
}

func TestDelayAddsEcho(t *testing.T) {
	d := NewDelay(44100, 100, 0.4, 0.5)
	impulse := make([]float64, 44100/2)
	impulse[0] = 1
	d.ProcessInPlace(impulse)
	delaySamples := 44100 * 100 / 1000
	if impulse[delaySamples] == 0 {
		t.Errorf("expected nonzero echo at delay offset %d", delaySamples)
	}
}

func TestReverbTailDecays(t *testing.T) {
	r := NewReverb(44100, 1.0, 42)
	dry := sine(4410, 440, 44100)
	tail := r.Tail(dry)
	if len(tail) == 0 {
		t.Fatal("expected a nonempty reverb tail")
	}
	firstHalf := rmsOf(tail[:len(tail)/2])
	secondHalf := rmsOf(tail[len(tail)/2:])
	if secondHalf > firstHalf {
		t.Errorf("reverb tail should decay: first half rms=%f, second half rms=%f", firstHalf, secondHalf)
	}
}

func TestLimiterCapsCeiling(t *testing.T) {
	l := NewLimiter(44100, NegOneDBFS, 5, 50)
	loud := sine(44100, 440, 44100)
	for i := range loud {
		loud[i] *= 2.0
	}
	l.ProcessInPlace(loud)
	peak := peakAbs(loud)
	if peak > NegOneDBFS+0.02 {
		t.Errorf("limiter should cap peak near the -1dBFS ceiling (%f), got %f", NegOneDBFS, peak)
	}
}

func TestNormalizeScalesDownOverTarget(t *testing.T) {
	x := []float64{0.4, -0.8, 0.2}
	Normalize(x, 0.5)
	if math.Abs(peakAbs(x)-0.5) > 1e-9 {
		t.Errorf("Normalize peak = %f, want 0.5", peakAbs(x))
	}
}

func TestNormalizeNeverBoosts(t *testing.T) {
	x := []float64{0.1, -0.2, 0.05}
	Normalize(x, 1.0)
	if math.Abs(peakAbs(x)-0.2) > 1e-9 {
		t.Errorf("Normalize should not boost a quiet signal, peak changed to %f", peakAbs(x))
	}
}
