package transition

import (
	"errors"
	"fmt"

	"github.com/cancun/autodj/internal/audio"
	"github.com/cancun/autodj/internal/model"
	"github.com/cancun/autodj/internal/stretch"
)

// segments holds the two equal-length, tempo-matched audio windows the
// mode-specific renderers blend, plus the cut points to report back.
type segments struct {
	a, b          *audio.Buffer
	trackACutMs   int64
	trackBStartMs int64
	targetBPM     float64
	warnings      []model.Warning
}

// cueState names the terminal state of the cue-point safety loop (spec
// §4.10): cueOK means the snapped cue fits before track A's end,
// cueCapAtZero means even shifted all the way back to 0 the transition
// still runs past the end of A.
type cueState string

const (
	cueOK        cueState = "OK"
	cueCapAtZero cueState = "CAP_AT_ZERO"
)

// downbeatsFor derives A's downbeat grid from its beat grid, assuming 4/4
// time: every fourth beat starting at the first one.
func downbeatsFor(a *model.TrackAnalysis) []float64 {
	if len(a.Beats) == 0 {
		return nil
	}
	out := make([]float64, 0, len(a.Beats)/4+1)
	for i := 0; i < len(a.Beats); i += 4 {
		out = append(out, a.Beats[i])
	}
	return out
}

// snapCueForA implements spec §4.6 step 2 / §4.10's cue-point safety loop:
// snap startSec to the nearest downbeat at or before it, then shift back
// four bars at a time while the transition would overrun the end of the
// track, until it fits or the cue bottoms out at zero.
func snapCueForA(a *model.TrackAnalysis, startSec, transitionSec float64) (float64, cueState) {
	downbeats := downbeatsFor(a)

	cue := -1.0
	for _, d := range downbeats {
		if d <= startSec && d > cue {
			cue = d
		}
	}
	if cue < 0 {
		cue = stretch.SnapToDownbeat(downbeats, startSec)
	}

	barSec := 4 * 60 / a.BPM
	for cue+transitionSec > a.DurationSec && cue > 0 {
		cue -= 4 * barSec
		if cue < 0 {
			cue = 0
		}
	}
	if cue+transitionSec > a.DurationSec {
		return 0, cueCapAtZero
	}
	return cue, cueOK
}

// prepareSegments implements the common prologue every render mode shares
// (spec §4.8): stretch track B onto track A's tempo, extract the matching
// windows from the plan's cue points, and report the cut points the
// assembler needs to stitch the timeline.
func prepareSegments(plan *model.TransitionPlan, trackA, trackB *audio.Buffer, a, b *model.TrackAnalysis) (*segments, error) {
	if err := plan.Validate(); err != nil {
		return nil, &Error{Kind: ErrPlanInvalid, Cause: err}
	}

	targetBPM := a.BPM
	ratio := stretch.RatioFor(b.BPM, targetBPM)

	stretchedB, err := stretchBuffer(trackB, ratio)
	var outOfRange *stretch.OutOfRangeError
	if errors.As(err, &outOfRange) && plan.Type == model.HardCut {
		// A HARD_CUT needs no tempo match, so B keeps its own tempo.
		stretchedB, err = trackB, nil
	}
	if err != nil {
		return nil, &Error{Kind: ErrPlanInvalid, Cause: fmt.Errorf("stretching track B: %w", err)}
	}

	barMs := 4 * 60000 / targetBPM
	transitionSec := float64(plan.DurationBars) * barMs / 1000
	if plan.DurationBars == 0 {
		transitionSec = 8 * barMs / 1000 // CROSSFADE/HARD_CUT/etc default to 8 bars if unspecified
	}

	cueInA, state := snapCueForA(a, plan.StartTimeInA, transitionSec)
	var warnings []model.Warning
	if state == cueCapAtZero {
		warnings = append(warnings, model.Warning{Tag: "CUE_CAPPED_AT_ZERO", Detail: "transition does not fit track A even shifted back to its start"})
	}

	aSeg, err := extractWindow(trackA, cueInA, transitionSec)
	if err != nil {
		return nil, &Error{Kind: ErrPlanInvalid, Cause: err}
	}
	bSeg, err := extractWindow(stretchedB, plan.StartFromB, transitionSec)
	if err != nil {
		return nil, &Error{Kind: ErrPlanInvalid, Cause: err}
	}

	n := min(aSeg.NumFrames(), bSeg.NumFrames())
	aSeg = truncate(aSeg, n)
	bSeg = truncate(bSeg, n)

	return &segments{
		a:             aSeg,
		b:             bSeg,
		trackACutMs:   int64((cueInA + transitionSec) * 1000),
		trackBStartMs: int64((plan.StartFromB + transitionSec) * 1000),
		targetBPM:     targetBPM,
		warnings:      warnings,
	}, nil
}

func stretchBuffer(buf *audio.Buffer, ratio float64) (*audio.Buffer, error) {
	out := &audio.Buffer{SampleRate: buf.SampleRate, Channels: make([][]float32, len(buf.Channels))}
	for c, ch := range buf.Channels {
		stretched, err := stretch.Stretch(ch, ratio)
		if err != nil {
			return nil, err
		}
		out.Channels[c] = stretched
	}
	return out, nil
}

func extractWindow(buf *audio.Buffer, startSec, durSec float64) (*audio.Buffer, error) {
	start := int(startSec * float64(buf.SampleRate))
	n := int(durSec * float64(buf.SampleRate))
	if start < 0 {
		return nil, fmt.Errorf("window start %fs is negative", startSec)
	}
	out := &audio.Buffer{SampleRate: buf.SampleRate, Channels: make([][]float32, len(buf.Channels))}
	for c, ch := range buf.Channels {
		end := start + n
		if start >= len(ch) {
			out.Channels[c] = make([]float32, n)
			continue
		}
		if end > len(ch) {
			end = len(ch)
		}
		seg := make([]float32, n)
		copy(seg, ch[start:end])
		out.Channels[c] = seg
	}
	return out, nil
}

func truncate(buf *audio.Buffer, n int) *audio.Buffer {
	out := &audio.Buffer{SampleRate: buf.SampleRate, Channels: make([][]float32, len(buf.Channels))}
	for c, ch := range buf.Channels {
		if n > len(ch) {
			n = len(ch)
		}
		out.Channels[c] = ch[:n]
	}
	return out
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}
