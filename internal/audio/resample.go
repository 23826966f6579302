package audio

// Resample converts buf to targetRate using linear interpolation. The pack
// carries no dedicated Go resampling library (see DESIGN.md), so this is
// one of the few stdlib-only components; the transition engine never
// resamples more than a few cents of drift in practice since source
// material is normalized to WorkingSampleRate once at decode time.
func Resample(buf *Buffer, targetRate int) *Buffer {
	if buf.SampleRate == targetRate || buf.SampleRate == 0 {
		return buf
	}
	ratio := float64(targetRate) / float64(buf.SampleRate)
	srcFrames := buf.NumFrames()
	dstFrames := int(float64(srcFrames) * ratio)

	out := make([][]float32, len(buf.Channels))
	for c, ch := range buf.Channels {
		resampled := make([]float32, dstFrames)
		for i := 0; i < dstFrames; i++ {
			srcPos := float64(i) / ratio
			idx := int(srcPos)
			frac := srcPos - float64(idx)
			if idx+1 < len(ch) {
				resampled[i] = ch[idx] + float32(frac)*(ch[idx+1]-ch[idx])
			} else if idx < len(ch) {
				resampled[i] = ch[idx]
			}
		}
		out[c] = resampled
	}
	return &Buffer{SampleRate: targetRate, Channels: out}
}
