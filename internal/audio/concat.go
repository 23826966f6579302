package audio

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
)

// NewFFmpegConcatenator returns a function that losslessly concatenates
// already-encoded MP3 files with ffmpeg's concat demuxer (stream copy, no
// re-encode), matching the "merge the two neighbouring renderings only at
// export, by concatenation" step spec.md §4.8 describes for a collapsed
// solo segment. The returned closure matches
// internal/assembler.Concatenator's shape.
func NewFFmpegConcatenator(ffmpegCmd string) func(ctx context.Context, paths ...string) (string, error) {
	if ffmpegCmd == "" {
		ffmpegCmd = "ffmpeg"
	}
	return func(ctx context.Context, paths ...string) (string, error) {
		if len(paths) == 0 {
			return "", fmt.Errorf("audio: concat requires at least one input")
		}
		if len(paths) == 1 {
			return paths[0], nil
		}

		listFile, err := os.CreateTemp("", "autodj-concat-*.txt")
		if err != nil {
			return "", &EncodeError{Path: "", Err: err}
		}
		defer os.Remove(listFile.Name())
		for _, p := range paths {
			fmt.Fprintf(listFile, "file '%s'\n", p)
		}
		listFile.Close()

		out, err := os.CreateTemp("", "autodj-concat-*.mp3")
		if err != nil {
			return "", &EncodeError{Path: "", Err: err}
		}
		outPath := out.Name()
		out.Close()

		cmd := exec.CommandContext(ctx, ffmpegCmd, "-y", "-f", "concat", "-safe", "0", "-i", listFile.Name(), "-c", "copy", outPath)
		if combined, err := cmd.CombinedOutput(); err != nil {
			os.Remove(outPath)
			return "", &EncodeError{Path: outPath, Err: fmt.Errorf("%s: %v: %s", ffmpegCmd, err, combined)}
		}

		return outPath, nil
	}
}

// JoinDir returns name joined under dir, used to keep concat scratch
// files alongside the rest of a project's rendered transitions instead of
// the OS temp dir when a caller wants a stable on-disk location.
func JoinDir(dir, name string) string {
	return filepath.Join(dir, name)
}
