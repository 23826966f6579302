package audio

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-audio/wav"
	"github.com/hajimehoshi/go-mp3"
)

// Decode reads a WAV or MP3 file (by extension) and returns it resampled to
// WorkingSampleRate. The channel count is preserved from the source file.
func Decode(path string) (*Buffer, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &DecodeError{Path: path, Err: err}
	}
	defer f.Close()

	var buf *Buffer
	switch strings.ToLower(filepath.Ext(path)) {
	case ".wav":
		buf, err = decodeWAV(f)
	case ".mp3":
		buf, err = decodeMP3(f)
	default:
		err = fmt.Errorf("unsupported extension %q", filepath.Ext(path))
	}
	if err != nil {
		return nil, &DecodeError{Path: path, Err: err}
	}

	if buf.SampleRate != WorkingSampleRate {
		buf = Resample(buf, WorkingSampleRate)
	}
	return buf, nil
}

func decodeWAV(f *os.File) (*Buffer, error) {
	dec := wav.NewDecoder(f)
	if !dec.IsValidFile() {
		return nil, fmt.Errorf("not a valid WAV file")
	}
	pcm, err := dec.FullPCMBuffer()
	if err != nil {
		return nil, fmt.Errorf("read PCM buffer: %w", err)
	}
	numChans := pcm.Format.NumChannels
	if numChans < 1 {
		numChans = 1
	}
	frames := len(pcm.Data) / numChans
	channels := make([][]float32, numChans)
	for c := range channels {
		channels[c] = make([]float32, frames)
	}
	maxAmp := float32(pcm.SourceBitDepth)
	if maxAmp <= 0 {
		maxAmp = 16
	}
	scale := float32(1) / float32(int32(1)<<(uint(maxAmp)-1))
	for i := 0; i < frames; i++ {
		for c := 0; c < numChans; c++ {
			channels[c][i] = float32(pcm.Data[i*numChans+c]) * scale
		}
	}
	return &Buffer{SampleRate: pcm.Format.SampleRate, Channels: channels}, nil
}

func decodeMP3(f *os.File) (*Buffer, error) {
	dec, err := mp3.NewDecoder(f)
	if err != nil {
		return nil, fmt.Errorf("create mp3 decoder: %w", err)
	}
	sampleRate := dec.SampleRate()

	// go-mp3 always decodes to interleaved 16-bit stereo PCM.
	raw := make([]byte, 0, dec.Length())
	chunk := make([]byte, 32*1024)
	for {
		n, rerr := dec.Read(chunk)
		if n > 0 {
			raw = append(raw, chunk[:n]...)
		}
		if rerr != nil {
			break
		}
	}
	frames := len(raw) / 4
	left := make([]float32, frames)
	right := make([]float32, frames)
	const scale = float32(1) / 32768
	for i := 0; i < frames; i++ {
		l := int16(uint16(raw[i*4]) | uint16(raw[i*4+1])<<8)
		r := int16(uint16(raw[i*4+2]) | uint16(raw[i*4+3])<<8)
		left[i] = float32(l) * scale
		right[i] = float32(r) * scale
	}
	return &Buffer{SampleRate: sampleRate, Channels: [][]float32{left, right}}, nil
}
