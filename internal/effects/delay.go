package effects

// Delay is a BPM-synced feedback delay line, used for the ECHO_OUT tail
// effect (spec §4.6/§4.8).
type Delay struct {
	buffer   []float64
	writePos int
	feedback float64
	mix      float64
}

// NewDelay builds a delay line sized to delayMs at sampleRate.
func NewDelay(sampleRate int, delayMs, feedback, mix float64) *Delay {
	n := int(float64(sampleRate) * delayMs / 1000)
	if n < 1 {
		n = 1
	}
	return &Delay{buffer: make([]float64, n), feedback: feedback, mix: mix}
}

// DelayMsForBeats returns the delay time in ms for the given number of
// beats at bpm — e.g. 0.5 for an eighth-note echo, 1.0 for a quarter note.
func DelayMsForBeats(bpm float64, beats float64) float64 {
	if bpm <= 0 {
		return 0
	}
	return beats * 60000 / bpm
}

// ProcessInPlace runs the delay over block.
func (d *Delay) ProcessInPlace(block []float64) {
	for i, dry := range block {
		delayed := d.buffer[d.writePos]
		block[i] = dry + delayed*d.mix
		d.buffer[d.writePos] = dry + delayed*d.feedback
		d.writePos++
		if d.writePos >= len(d.buffer) {
			d.writePos = 0
		}
	}
}

// Tail renders n additional samples of the decaying echo with no new
// input, used to extend a HARD_CUT or ECHO_OUT transition past the cut
// point so the echo doesn't abruptly disappear.
func (d *Delay) Tail(n int) []float64 {
	out := make([]float64, n)
	silence := make([]float64, n)
	copy(out, silence)
	d.ProcessInPlace(out)
	return out
}
