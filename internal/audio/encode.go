package audio

import (
	"bytes"
	"fmt"
	"os"
	"os/exec"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

// EncodeWAV writes buf to path as 16-bit PCM WAV.
func EncodeWAV(path string, buf *Buffer) error {
	f, err := os.Create(path)
	if err != nil {
		return &EncodeError{Path: path, Err: err}
	}
	defer f.Close()

	numChans := len(buf.Channels)
	if numChans == 0 {
		return &EncodeError{Path: path, Err: fmt.Errorf("buffer has no channels")}
	}
	enc := wav.NewEncoder(f, buf.SampleRate, 16, numChans, 1)

	frames := buf.NumFrames()
	ints := make([]int, frames*numChans)
	for i := 0; i < frames; i++ {
		for c := 0; c < numChans; c++ {
			v := buf.Channels[c][i]
			if v > 1 {
				v = 1
			} else if v < -1 {
				v = -1
			}
			ints[i*numChans+c] = int(v * 32767)
		}
	}
	ib := &audio.IntBuffer{
		Format:         &audio.Format{NumChannels: numChans, SampleRate: buf.SampleRate},
		Data:           ints,
		SourceBitDepth: 16,
	}
	if err := enc.Write(ib); err != nil {
		return &EncodeError{Path: path, Err: fmt.Errorf("write PCM: %w", err)}
	}
	if err := enc.Close(); err != nil {
		return &EncodeError{Path: path, Err: fmt.Errorf("close encoder: %w", err)}
	}
	return nil
}

// MP3Encoder encodes a WAV file to 320kbps CBR MP3 by shelling out to an
// external encoder. It tries the primary encoder first and falls back to
// the secondary on failure, matching the "external encoder with CBR
// fallback" description in spec §4.2/§6.
type MP3Encoder struct {
	// PrimaryCmd is the primary encoder binary, default "lame".
	PrimaryCmd string
	// FallbackCmd is used if PrimaryCmd is unavailable or fails, default "ffmpeg".
	FallbackCmd string
}

// DefaultMP3Encoder returns the standard lame-primary, ffmpeg-fallback encoder.
func DefaultMP3Encoder() *MP3Encoder {
	return &MP3Encoder{PrimaryCmd: "lame", FallbackCmd: "ffmpeg"}
}

// EncodeMP3 renders buf to a WAV temp file and shells out to convert it to
// a 320kbps CBR MP3 at dstPath.
func (e *MP3Encoder) EncodeMP3(dstPath string, buf *Buffer) error {
	tmp, err := os.CreateTemp("", "autodj-*.wav")
	if err != nil {
		return &EncodeError{Path: dstPath, Err: err}
	}
	tmpPath := tmp.Name()
	tmp.Close()
	defer os.Remove(tmpPath)

	if err := EncodeWAV(tmpPath, buf); err != nil {
		return err
	}

	primary := e.PrimaryCmd
	if primary == "" {
		primary = "lame"
	}
	fallback := e.FallbackCmd
	if fallback == "" {
		fallback = "ffmpeg"
	}

	if err := runLame(primary, tmpPath, dstPath); err == nil {
		return nil
	}
	if err := runFFmpegMP3(fallback, tmpPath, dstPath); err != nil {
		return &EncodeError{Path: dstPath, Err: fmt.Errorf("both encoders failed, last error: %w", err)}
	}
	return nil
}

func runLame(cmdName, srcWAV, dstMP3 string) error {
	var stderr bytes.Buffer
	cmd := exec.Command(cmdName, "-b", "320", "--cbr", srcWAV, dstMP3)
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("%s: %w: %s", cmdName, err, stderr.String())
	}
	return nil
}

func runFFmpegMP3(cmdName, srcWAV, dstMP3 string) error {
	var stderr bytes.Buffer
	cmd := exec.Command(cmdName, "-y", "-i", srcWAV, "-codec:a", "libmp3lame", "-b:a", "320k", dstMP3)
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("%s: %w: %s", cmdName, err, stderr.String())
	}
	return nil
}
