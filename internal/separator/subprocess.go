package separator

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"time"

	"github.com/cancun/autodj/internal/audio"
)

// SubprocessSeparator shells out to an external stem-separation process
// (a Demucs-family model in production) that reads a WAV file and writes
// four stem WAVs into an output directory. This mirrors the teacher's
// real-backend client (internal/analyzer/client.go): a thin wrapper that
// times the call and logs the outcome, with the actual model run
// out-of-process.
type SubprocessSeparator struct {
	Command string // binary name or path, e.g. "demucs-cli"
	Args    []string // extra args appended before "<input> <outdir>"
	Logger  *slog.Logger
}

// NewSubprocessSeparator constructs a separator invoking cmd with args.
func NewSubprocessSeparator(cmd string, args []string, logger *slog.Logger) *SubprocessSeparator {
	if logger == nil {
		logger = slog.Default()
	}
	return &SubprocessSeparator{Command: cmd, Args: args, Logger: logger}
}

// Separate writes buf to a temp WAV, invokes the external separator, and
// decodes the four resulting stem WAVs back into memory.
func (s *SubprocessSeparator) Separate(ctx context.Context, buf *audio.Buffer) (*Stems, error) {
	tmpDir, err := os.MkdirTemp("", "autodj-separate-*")
	if err != nil {
		return nil, &UnavailableError{Reason: err.Error()}
	}
	defer os.RemoveAll(tmpDir)

	inputPath := filepath.Join(tmpDir, "input.wav")
	if err := audio.EncodeWAV(inputPath, buf); err != nil {
		return nil, &UnavailableError{Reason: fmt.Sprintf("write input: %v", err)}
	}

	outDir := filepath.Join(tmpDir, "out")
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return nil, &UnavailableError{Reason: err.Error()}
	}

	args := append(append([]string{}, s.Args...), inputPath, outDir)
	cmd := exec.CommandContext(ctx, s.Command, args...)

	start := time.Now()
	out, err := cmd.CombinedOutput()
	if err != nil {
		s.Logger.Error("stem separation failed", "command", s.Command, "error", err, "output", string(out))
		return nil, &UnavailableError{Reason: fmt.Sprintf("%s: %v", s.Command, err)}
	}
	s.Logger.Info("stem separation complete", "command", s.Command, "duration", time.Since(start))

	stems := &Stems{}
	for name, dst := range map[string]**audio.Buffer{
		"drums.wav":  &stems.Drums,
		"bass.wav":   &stems.Bass,
		"other.wav":  &stems.Other,
		"vocals.wav": &stems.Vocals,
	} {
		b, err := audio.Decode(filepath.Join(outDir, name))
		if err != nil {
			return nil, &UnavailableError{Reason: fmt.Sprintf("missing stem %s: %v", name, err)}
		}
		*dst = b
	}
	return stems, nil
}
