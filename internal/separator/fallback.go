package separator

import (
	"context"
	"log/slog"

	"github.com/cancun/autodj/internal/audio"
	"github.com/cwbudde/algo-dsp/dsp/filter/biquad"
)

// BandSplitFallback produces a crude four-way split using fixed-frequency
// biquad filters instead of a learned separation model: low frequencies
// become "bass", a vocal-presence band becomes "vocals", high frequencies
// become "drums" (cymbals/hats dominate that band), and everything left
// over becomes "other". It exists so the renderer's STEM_BLEND pipeline
// degrades gracefully instead of failing outright when no real separator
// is configured (spec §4.5/§7's SeparationUnavailable handling).
type BandSplitFallback struct {
	Logger *slog.Logger
}

// NewBandSplitFallback constructs the fallback separator.
func NewBandSplitFallback(logger *slog.Logger) *BandSplitFallback {
	if logger == nil {
		logger = slog.Default()
	}
	return &BandSplitFallback{Logger: logger}
}

func (f *BandSplitFallback) Separate(_ context.Context, buf *audio.Buffer) (*Stems, error) {
	f.Logger.Warn("using band-split fallback separator, not a learned model")

	bass := filterEachChannel(buf, lowpassCoeffs(buf.SampleRate, 150))
	vocals := filterEachChannel(buf, bandpassCoeffs(buf.SampleRate, 300, 4000))
	drums := filterEachChannel(buf, highpassCoeffs(buf.SampleRate, 4000))
	other := residual(buf, bass, vocals, drums)

	return &Stems{Drums: drums, Bass: bass, Other: other, Vocals: vocals}, nil
}

func filterEachChannel(buf *audio.Buffer, coeffs biquad.Coefficients) *audio.Buffer {
	out := &audio.Buffer{SampleRate: buf.SampleRate, Channels: make([][]float32, len(buf.Channels))}
	for c, ch := range buf.Channels {
		chain := biquad.NewChain([]biquad.Coefficients{coeffs})
		block := make([]float64, len(ch))
		for i, v := range ch {
			block[i] = float64(v)
		}
		chain.ProcessBlock(block)
		filtered := make([]float32, len(block))
		for i, v := range block {
			filtered[i] = float32(v)
		}
		out.Channels[c] = filtered
	}
	return out
}

func residual(full, bass, vocals, drums *audio.Buffer) *audio.Buffer {
	out := &audio.Buffer{SampleRate: full.SampleRate, Channels: make([][]float32, len(full.Channels))}
	for c, ch := range full.Channels {
		res := make([]float32, len(ch))
		for i := range ch {
			res[i] = ch[i] - bass.Channels[c][i] - vocals.Channels[c][i] - drums.Channels[c][i]
		}
		out.Channels[c] = res
	}
	return out
}

// The coefficient builders below use the standard RBJ biquad cookbook
// second-order forms (Q=0.707 for low- and high-pass; the bandpass Q comes
// from the band edges), expressed directly
// as biquad.Coefficients since the pack's retrieved algo-dsp usage didn't
// surface a ready-made "design a lowpass from Hz" constructor.
func lowpassCoeffs(sampleRate int, cutoffHz float64) biquad.Coefficients {
	return rbjLowpass(float64(sampleRate), cutoffHz, 0.707)
}

func highpassCoeffs(sampleRate int, cutoffHz float64) biquad.Coefficients {
	return rbjHighpass(float64(sampleRate), cutoffHz, 0.707)
}

func bandpassCoeffs(sampleRate int, lowHz, highHz float64) biquad.Coefficients {
	centerHz := (lowHz + highHz) / 2
	bw := highHz - lowHz
	q := centerHz / bw
	return rbjBandpass(float64(sampleRate), centerHz, q)
}
