package audio

import (
	"math"
	"os"
	"path/filepath"
	"testing"
)

func sineBuffer(sampleRate int, freq float64, seconds float64) *Buffer {
	n := int(float64(sampleRate) * seconds)
	ch := make([]float32, n)
	for i := range ch {
		ch[i] = float32(math.Sin(2 * math.Pi * freq * float64(i) / float64(sampleRate)))
	}
	return &Buffer{SampleRate: sampleRate, Channels: [][]float32{ch}}
}

func TestWAVRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "tone.wav")
	src := sineBuffer(44100, 440, 0.25)

	if err := EncodeWAV(path, src); err != nil {
		t.Fatalf("EncodeWAV: %v", err)
	}
	got, err := Decode(path)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if got.SampleRate != 44100 {
		t.Fatalf("sample rate = %d, want 44100", got.SampleRate)
	}
	if n := got.NumFrames(); n < src.NumFrames()-1 || n > src.NumFrames()+1 {
		t.Fatalf("frame count drifted: got %d, want ~%d", n, src.NumFrames())
	}

	// 16-bit round trip should preserve the waveform shape closely.
	maxDiff := float32(0)
	for i := range got.Channels[0] {
		d := got.Channels[0][i] - src.Channels[0][i]
		if d < 0 {
			d = -d
		}
		if d > maxDiff {
			maxDiff = d
		}
	}
	if maxDiff > 0.01 {
		t.Errorf("round trip distortion too high: maxDiff=%f", maxDiff)
	}
}

func TestResampleIdentity(t *testing.T) {
	src := sineBuffer(44100, 440, 0.1)
	out := Resample(src, 44100)
	if out != src {
		t.Fatalf("Resample at identical rate should return the same buffer")
	}
}

func TestResampleChangesFrameCount(t *testing.T) {
	src := sineBuffer(48000, 440, 1.0)
	out := Resample(src, 44100)
	if out.SampleRate != 44100 {
		t.Fatalf("sample rate = %d, want 44100", out.SampleRate)
	}
	wantFrames := int(float64(src.NumFrames()) * 44100.0 / 48000.0)
	if diff := out.NumFrames() - wantFrames; diff < -2 || diff > 2 {
		t.Errorf("frame count = %d, want ~%d", out.NumFrames(), wantFrames)
	}
}

func TestBufferMono(t *testing.T) {
	left := []float32{1, 1, 1}
	right := []float32{-1, -1, -1}
	b := &Buffer{SampleRate: 44100, Channels: [][]float32{left, right}}
	mono := b.Mono()
	for _, v := range mono {
		if v != 0 {
			t.Errorf("mono mix of +1/-1 should be 0, got %f", v)
		}
	}
}

func TestDecodeUnsupportedExtension(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "track.flac")
	if err := os.WriteFile(path, []byte("not audio"), 0o644); err != nil {
		t.Fatal(err)
	}
	_, err := Decode(path)
	if err == nil {
		t.Fatal("expected error decoding unsupported extension")
	}
	var decErr *DecodeError
	if !asDecodeError(err, &decErr) {
		t.Fatalf("expected *DecodeError, got %T", err)
	}
}

func asDecodeError(err error, target **DecodeError) bool {
	if de, ok := err.(*DecodeError); ok {
		*target = de
		return true
	}
	return false
}
