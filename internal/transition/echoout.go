package transition

import (
	"github.com/cancun/autodj/internal/audio"
	"github.com/cancun/autodj/internal/effects"
)

// echoOut fades track A out into a BPM-synced, decaying echo while track
// B enters underneath, spec §4.8's ECHO_OUT mode: a more dramatic cousin
// of HARD_CUT that trades the reverb/delay tail for the transition's
// entire duration instead of a short extension.
func echoOut(a, b *audio.Buffer, bpm float64) *audio.Buffer {
	delayMs := effects.DelayMsForBeats(bpm, 0.5)
	n := min(a.NumFrames(), b.NumFrames())
	numChans := max(len(a.Channels), len(b.Channels))
	out := &audio.Buffer{SampleRate: a.SampleRate, Channels: make([][]float32, numChans)}

	for c := 0; c < numChans; c++ {
		var aCh, bCh []float32
		if c < len(a.Channels) {
			aCh = a.Channels[c]
		}
		if c < len(b.Channels) {
			bCh = b.Channels[c]
		}
		block := toF64(aCh[:min(len(aCh), n)])
		d := effects.NewDelay(a.SampleRate, delayMs, 0.5, 0.7)
		d.ProcessInPlace(block)

		mixed := make([]float32, n)
		for i := 0; i < n; i++ {
			t := float64(i) / float64(max(n-1, 1))
			gainA := 1 - t
			gainB := t
			var bv float32
			if i < len(bCh) {
				bv = bCh[i]
			}
			mixed[i] = float32(block[i]*gainA) + float32(float64(bv)*gainB)
		}
		out.Channels[c] = mixed
	}
	return out
}
