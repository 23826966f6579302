// Package assembler implements the C10 mix assembler: it stitches an
// ordered list of tracks' solo spans and their in-between transition
// renderings into a single timeline, narrowing each solo's bounds by the
// renderer's reported cut points and dropping any solo that collapses to
// zero or negative duration (spec §4.8). The assembler never mixes
// audio itself; BuildTimeline only arranges segment metadata, and Export
// performs the final concatenation of any transitions left adjacent by a
// dropped solo.
package assembler

import (
	"context"
	"fmt"

	"github.com/cancun/autodj/internal/model"
)

// ErrorKind enumerates the assembler-specific entries in spec §7's error
// taxonomy.
type ErrorKind string

const (
	ErrEmptyTrackList ErrorKind = "EMPTY_TRACK_LIST"
	ErrRenderFailed   ErrorKind = "RENDER_FAILED"
	ErrCancelled      ErrorKind = "CANCELLED"
)

// Error is the assembler's typed error.
type Error struct {
	Kind  ErrorKind
	Cause error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("assembler: %s: %v", e.Kind, e.Cause)
	}
	return fmt.Sprintf("assembler: %s", e.Kind)
}

func (e *Error) Unwrap() error { return e.Cause }

// Rendering is what the renderer (internal/transition, via a queued job)
// reports back for one adjacent track pair: where the transition audio
// lives, how long it runs, and the two cut points the assembler uses to
// narrow the surrounding solos.
type Rendering struct {
	AudioPath     string
	DurationMs    int64
	TrackACutMs   int64
	TrackBStartMs int64
}

// RenderFunc renders the transition between two adjacent tracks. Callers
// typically implement this by enqueuing a "render transition" job and
// blocking on its result (spec §6 "render_transition"), or by calling
// internal/transition.Render directly for in-process use.
type RenderFunc func(ctx context.Context, a, b *model.TrackAnalysis) (Rendering, error)

// BuildTimeline assembles the segment list for an ordered set of tracks,
// per spec §4.8: one SOLO segment per track (bounded by intro_end and
// outro_start — defaulted to 16 bars from each end by
// internal/model.NewTrackAnalysis — the first starting at 0 and the last
// ending at its duration), with a TRANSITION segment rendered between
// every adjacent pair. Each transition's reported cut points narrow the
// surrounding solos. The returned list may contain a solo with
// duration <= 0, left in place for Export to drop and merge around.
func BuildTimeline(ctx context.Context, tracks []*model.TrackAnalysis, render RenderFunc) ([]model.Segment, error) {
	if len(tracks) == 0 {
		return nil, &Error{Kind: ErrEmptyTrackList}
	}

	solos := make([]model.Segment, len(tracks))
	for i, t := range tracks {
		start := t.IntroEndMs
		if i == 0 {
			start = 0
		}
		end := t.OutroStartMs
		if i == len(tracks)-1 {
			end = int64(t.DurationSec * 1000)
		}
		solos[i] = model.Segment{Kind: model.SegmentSolo, TrackID: t.TrackID, StartMs: start, EndMs: end}
	}

	if len(tracks) == 1 {
		return solos, nil
	}

	timeline := make([]model.Segment, 0, 2*len(tracks)-1)
	timeline = append(timeline, solos[0])

	for i := 0; i < len(tracks)-1; i++ {
		select {
		case <-ctx.Done():
			return nil, &Error{Kind: ErrCancelled, Cause: ctx.Err()}
		default:
		}

		a, b := tracks[i], tracks[i+1]
		r, err := render(ctx, a, b)
		if err != nil {
			return nil, &Error{Kind: ErrRenderFailed, Cause: err}
		}

		timeline[len(timeline)-1].EndMs = r.TrackACutMs
		solos[i+1].StartMs = r.TrackBStartMs

		timeline = append(timeline, model.Segment{
			Kind:          model.SegmentTransition,
			FromTrackID:   a.TrackID,
			ToTrackID:     b.TrackID,
			AudioPath:     r.AudioPath,
			DurationMs:    r.DurationMs,
			TrackACutMs:   r.TrackACutMs,
			TrackBStartMs: r.TrackBStartMs,
		})
		timeline = append(timeline, solos[i+1])
	}

	for i := range timeline {
		timeline[i].Position = i
	}
	return timeline, nil
}

// Concatenator joins the PCM content at the given transition audio paths,
// in order, into one new file and returns its path. Implementations
// typically delegate to internal/audio for the actual PCM span copy.
type Concatenator func(ctx context.Context, paths ...string) (string, error)

// Export drops every solo whose duration has collapsed to <= 0 and
// merges the pair of TRANSITION segments it leaves adjacent into a
// single TRANSITION segment spanning from the dropped solo's left
// neighbour to its right neighbour, concatenating their audio via cat.
// The result always satisfies model.ValidateTimeline's alternation
// invariant.
func Export(ctx context.Context, timeline []model.Segment, cat Concatenator) ([]model.Segment, error) {
	if len(timeline) == 0 {
		return nil, nil
	}

	out := make([]model.Segment, 0, len(timeline))
	out = append(out, timeline[0])

	for i := 1; i < len(timeline); i++ {
		seg := timeline[i]
		if seg.Kind != model.SegmentSolo {
			out = append(out, seg)
			continue
		}
		if seg.SoloDurationMs() > 0 {
			out = append(out, seg)
			continue
		}

		// Dropped solo: merge the TRANSITION just appended with the one
		// that follows this solo in the source timeline.
		if i+1 >= len(timeline) || timeline[i+1].Kind != model.SegmentTransition {
			continue // malformed input; nothing to merge with, just drop the solo
		}
		left := out[len(out)-1]
		right := timeline[i+1]

		merged := left
		merged.ToTrackID = right.ToTrackID
		merged.DurationMs = left.DurationMs + right.DurationMs
		merged.TrackBStartMs = right.TrackBStartMs

		path, err := cat(ctx, left.AudioPath, right.AudioPath)
		if err != nil {
			return nil, &Error{Kind: ErrRenderFailed, Cause: err}
		}
		merged.AudioPath = path

		out[len(out)-1] = merged
		i++ // skip the right-hand transition; it has been folded in
	}

	for i := range out {
		out[i].Position = i
	}
	if err := model.ValidateTimeline(out); err != nil {
		return nil, &Error{Kind: ErrRenderFailed, Cause: err}
	}
	return out, nil
}
