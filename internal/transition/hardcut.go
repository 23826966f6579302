package transition

import (
	"github.com/cancun/autodj/internal/audio"
	"github.com/cancun/autodj/internal/effects"
	"github.com/cancun/autodj/internal/model"
)

const hardCutContextSec = 4.0
const hardCutSafetyFadeMs = 2.0

// hardCut takes the last hardCutContextSec of a and the first
// hardCutContextSec of b, applies a short safety fade at the cut point to
// avoid a click, and optionally extends the cut with a reverb or delay
// tail on a, per spec §4.8's HARD_CUT mode.
func hardCut(a, b *audio.Buffer, tail *model.TailEffect) *audio.Buffer {
	n := a.SampleRate
	contextSamplesA := min(int(hardCutContextSec*float64(a.SampleRate)), a.NumFrames())
	contextSamplesB := min(int(hardCutContextSec*float64(b.SampleRate)), b.NumFrames())
	_ = n

	aTail := sliceLastN(a, contextSamplesA)
	bHead := sliceFirstN(b, contextSamplesB)

	applySafetyFade(aTail, hardCutSafetyFadeMs, false)
	applySafetyFade(bHead, hardCutSafetyFadeMs, true)

	out := concat(aTail, bHead)

	if tail != nil {
		switch tail.Type {
		case model.TailReverb:
			out = appendTail(out, reverbTailFor(aTail, tail))
		case model.TailDelay:
			out = appendTail(out, delayTailFor(aTail, tail))
		}
	}
	return out
}

func sliceLastN(buf *audio.Buffer, n int) *audio.Buffer {
	out := &audio.Buffer{SampleRate: buf.SampleRate, Channels: make([][]float32, len(buf.Channels))}
	for c, ch := range buf.Channels {
		start := len(ch) - n
		if start < 0 {
			start = 0
		}
		out.Channels[c] = append([]float32(nil), ch[start:]...)
	}
	return out
}

func sliceFirstN(buf *audio.Buffer, n int) *audio.Buffer {
	out := &audio.Buffer{SampleRate: buf.SampleRate, Channels: make([][]float32, len(buf.Channels))}
	for c, ch := range buf.Channels {
		end := n
		if end > len(ch) {
			end = len(ch)
		}
		out.Channels[c] = append([]float32(nil), ch[:end]...)
	}
	return out
}

func applySafetyFade(buf *audio.Buffer, ms float64, fadeIn bool) {
	n := int(ms / 1000 * float64(buf.SampleRate))
	for _, ch := range buf.Channels {
		fadeLen := n
		if fadeLen > len(ch) {
			fadeLen = len(ch)
		}
		for i := 0; i < fadeLen; i++ {
			var g float64
			if fadeIn {
				g = float64(i) / float64(fadeLen)
			} else {
				idx := len(ch) - fadeLen + i
				g = 1 - float64(i)/float64(fadeLen)
				ch[idx] = float32(float64(ch[idx]) * g)
				continue
			}
			ch[i] = float32(float64(ch[i]) * g)
		}
	}
}

func concat(a, b *audio.Buffer) *audio.Buffer {
	out := &audio.Buffer{SampleRate: a.SampleRate, Channels: make([][]float32, len(a.Channels))}
	for c := range out.Channels {
		combined := make([]float32, 0, len(a.Channels[c])+len(b.Channels[c]))
		combined = append(combined, a.Channels[c]...)
		combined = append(combined, b.Channels[c]...)
		out.Channels[c] = combined
	}
	return out
}

func appendTail(buf *audio.Buffer, tail [][]float64) *audio.Buffer {
	if tail == nil {
		return buf
	}
	for c := range buf.Channels {
		if c >= len(tail) {
			continue
		}
		extra := make([]float32, len(tail[c]))
		for i, v := range tail[c] {
			extra[i] = float32(v)
		}
		buf.Channels[c] = append(buf.Channels[c], extra...)
	}
	return buf
}

func reverbTailFor(aTail *audio.Buffer, tail *model.TailEffect) [][]float64 {
	decaySec := tail.Params["decay_sec"]
	if decaySec <= 0 {
		decaySec = 4.0
	}
	wet := tail.Params["wet"]
	if wet <= 0 {
		wet = 0.35
	}
	out := make([][]float64, len(aTail.Channels))
	for c, ch := range aTail.Channels {
		dry := make([]float64, len(ch))
		for i, v := range ch {
			dry[i] = float64(v)
		}
		r := effects.NewReverb(aTail.SampleRate, decaySec, int64(c)+1)
		out[c] = r.Tail(dry)
	}
	return out
}

func delayTailFor(aTail *audio.Buffer, tail *model.TailEffect) [][]float64 {
	delayMs := tail.Params["delay_ms"]
	if delayMs <= 0 {
		delayMs = 375
	}
	feedback := tail.Params["feedback"]
	if feedback <= 0 {
		feedback = 0.35
	}
	tailLenMs := tail.Params["tail_ms"]
	if tailLenMs <= 0 {
		tailLenMs = 1500
	}
	out := make([][]float64, len(aTail.Channels))
	for c := range aTail.Channels {
		d := effects.NewDelay(aTail.SampleRate, delayMs, feedback, 0.6)
		n := int(tailLenMs / 1000 * float64(aTail.SampleRate))
		out[c] = d.Tail(n)
	}
	return out
}
