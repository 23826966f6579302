package audio

import "encoding/binary"

// WaveformTile downsamples buf to a fixed-size peak envelope: windowFrames
// consecutive frames collapse to one (min, max) pair of the mono signal,
// encoded as big-endian int16 pairs. This is the preview data a UI would
// render instead of re-decoding the source file, and the unit PutBlob
// stores content-addressed in internal/storage's blobs table.
func WaveformTile(buf *Buffer, windowFrames int) []byte {
	if windowFrames < 1 {
		windowFrames = 1
	}
	mono := buf.Mono()
	n := len(mono)
	if n == 0 {
		return nil
	}

	numWindows := (n + windowFrames - 1) / windowFrames
	out := make([]byte, 0, numWindows*4)
	for w := 0; w < numWindows; w++ {
		start := w * windowFrames
		end := start + windowFrames
		if end > n {
			end = n
		}
		min, max := mono[start], mono[start]
		for _, v := range mono[start:end] {
			if v < min {
				min = v
			}
			if v > max {
				max = v
			}
		}
		out = binary.BigEndian.AppendUint16(out, uint16(int16(min*32767)))
		out = binary.BigEndian.AppendUint16(out, uint16(int16(max*32767)))
	}
	return out
}
