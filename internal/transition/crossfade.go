package transition

import (
	"math"

	"github.com/cancun/autodj/internal/audio"
)

// crossfadeEqualPower mixes a (fading out) and b (fading in) with an
// equal-power curve so the perceived loudness stays constant across the
// blend, the standard crossfade shape and spec §4.8's CROSSFADE mode.
func crossfadeEqualPower(a, b *audio.Buffer) *audio.Buffer {
	n := min(a.NumFrames(), b.NumFrames())
	numChans := max(len(a.Channels), len(b.Channels))
	out := &audio.Buffer{SampleRate: a.SampleRate, Channels: make([][]float32, numChans)}
	for c := 0; c < numChans; c++ {
		mixed := make([]float32, n)
		for i := 0; i < n; i++ {
			t := float64(i) / float64(max(n-1, 1))
			gainA := math.Cos(t * math.Pi / 2)
			gainB := math.Sin(t * math.Pi / 2)
			var av, bv float32
			if c < len(a.Channels) {
				av = a.Channels[c][i]
			}
			if c < len(b.Channels) {
				bv = b.Channels[c][i]
			}
			mixed[i] = float32(float64(av)*gainA + float64(bv)*gainB)
		}
		out.Channels[c] = mixed
	}
	return out
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}
