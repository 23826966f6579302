package transition

import (
	"github.com/cancun/autodj/internal/audio"
	"github.com/cancun/autodj/internal/model"
)

const loopMixRepeats = 4

// loopMixFallback repeats a one-bar loop of A's tail under B's intro,
// each repeat fading A out and B in, instead of the instant silence-gap
// of an unadorned HARD_CUT. It is tried before HARD_CUT when the BPM
// delta is too large to stretch (StretchOutOfRange) and both tracks
// expose an 8-bar loopable phrase; returns nil if either segment is too
// short to fill the loop window, in which case the caller falls back to
// a plain hardCut.
func loopMixFallback(seg *segments) *audio.Buffer {
	barSamples := int(4 * 60 / seg.targetBPM * float64(seg.a.SampleRate))
	if barSamples < 1 {
		return nil
	}
	loopLen := barSamples * loopMixRepeats

	aLoop := sliceLastN(seg.a, barSamples)
	bIntro := sliceFirstN(seg.b, loopLen)
	if aLoop.NumFrames() < barSamples || bIntro.NumFrames() < loopLen {
		return nil
	}

	numChans := len(seg.a.Channels)
	mixed := make([][]float32, numChans)
	for c := 0; c < numChans; c++ {
		mixed[c] = make([]float32, loopLen)
		for r := 0; r < loopMixRepeats; r++ {
			aGain := 1 - float64(r)/float64(loopMixRepeats)
			bGain := float64(r+1) / float64(loopMixRepeats)
			for i := 0; i < barSamples; i++ {
				idx := r*barSamples + i
				av := float64(aLoop.Channels[c][i]) * aGain
				bv := float64(bIntro.Channels[c][idx]) * bGain
				mixed[c][idx] = float32(av + bv)
			}
		}
	}
	loopBuf := &audio.Buffer{SampleRate: seg.a.SampleRate, Channels: mixed}

	bRest := &audio.Buffer{SampleRate: seg.b.SampleRate, Channels: make([][]float32, numChans)}
	for c := 0; c < numChans; c++ {
		ch := seg.b.Channels[c]
		if loopLen < len(ch) {
			bRest.Channels[c] = append([]float32(nil), ch[loopLen:]...)
		} else {
			bRest.Channels[c] = nil
		}
	}

	return concat(loopBuf, bRest)
}

func hasLoopableRegion(a *model.TrackAnalysis) bool {
	for _, p := range a.Phrases {
		if p.BarCount == 8 {
			return true
		}
	}
	return false
}

func hasWarningTag(warnings []model.Warning, tag string) bool {
	for _, w := range warnings {
		if w.Tag == tag {
			return true
		}
	}
	return false
}
