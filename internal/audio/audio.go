// Package audio implements file I/O and resampling for the transition
// engine: decoding WAV/MP3 source material into a normalized float32 PCM
// buffer at a single working sample rate, and encoding rendered transitions
// back out to WAV or MP3 (spec §4.2).
package audio

import "fmt"

// WorkingSampleRate is the sample rate all analysis and rendering operates
// at internally. Source material at any other rate is resampled on decode.
const WorkingSampleRate = 44100

// Buffer is de-interleaved float32 PCM in [-1, 1], one slice per channel,
// all channels the same length.
type Buffer struct {
	SampleRate int
	Channels   [][]float32
}

// NumFrames returns the number of sample frames, 0 if there are no channels.
func (b *Buffer) NumFrames() int {
	if len(b.Channels) == 0 {
		return 0
	}
	return len(b.Channels[0])
}

// DurationMs returns the buffer's length in milliseconds.
func (b *Buffer) DurationMs() int64 {
	if b.SampleRate == 0 {
		return 0
	}
	return int64(float64(b.NumFrames()) / float64(b.SampleRate) * 1000)
}

// Mono collapses a multi-channel buffer to a single averaged channel,
// returning the buffer unchanged if it is already mono.
func (b *Buffer) Mono() []float32 {
	if len(b.Channels) == 1 {
		return b.Channels[0]
	}
	if len(b.Channels) == 0 {
		return nil
	}
	n := b.NumFrames()
	out := make([]float32, n)
	for _, ch := range b.Channels {
		for i, v := range ch {
			out[i] += v
		}
	}
	inv := float32(1) / float32(len(b.Channels))
	for i := range out {
		out[i] *= inv
	}
	return out
}

// DecodeError wraps a decode failure with the path and underlying cause,
// matching the DecodeError taxonomy entry in spec §7.
type DecodeError struct {
	Path string
	Err  error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("audio: decode %s: %v", e.Path, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// EncodeError wraps an encode failure, matching the EncodeError taxonomy
// entry in spec §7.
type EncodeError struct {
	Path string
	Err  error
}

func (e *EncodeError) Error() string {
	return fmt.Sprintf("audio: encode %s: %v", e.Path, e.Err)
}

func (e *EncodeError) Unwrap() error { return e.Err }
