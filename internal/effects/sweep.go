package effects

// FilterSweep animates a filter's cutoff from startHz to endHz across
// samples, re-tuning every chunkMs (spec §4.6: 50ms chunks) and
// crossfading crossfadeSamples (spec §4.6: 64 samples) between
// consecutive chunks so the retuning doesn't click.
func FilterSweep(kind FilterKind, sampleRate int, samples []float64, startHz, endHz, q float64) []float64 {
	const chunkMs = 50
	const crossfadeSamples = 64

	chunkLen := sampleRate * chunkMs / 1000
	if chunkLen <= crossfadeSamples {
		chunkLen = crossfadeSamples + 1
	}
	numChunks := (len(samples) + chunkLen - 1) / chunkLen
	out := make([]float64, 0, len(samples))

	var prevTail []float64
	for c := 0; c < numChunks; c++ {
		start := c * chunkLen
		end := start + chunkLen
		if end > len(samples) {
			end = len(samples)
		}
		t := float64(c) / float64(max(numChunks-1, 1))
		cutoff := startHz + (endHz-startHz)*t

		f := NewFilter(kind, sampleRate, cutoff, q)
		chunk := make([]float64, end-start)
		copy(chunk, samples[start:end])
		f.ProcessInPlace(chunk)

		if prevTail != nil {
			n := min(len(prevTail), len(chunk))
			for i := 0; i < n; i++ {
				w := float64(i) / float64(n)
				chunk[i] = prevTail[i]*(1-w) + chunk[i]*w
			}
		}
		out = append(out, chunk...)

		tailLen := min(crossfadeSamples, len(chunk))
		prevTail = append([]float64(nil), chunk[len(chunk)-tailLen:]...)
	}
	return out
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}
