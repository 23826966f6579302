package model

import "fmt"

// SegmentKind distinguishes a standalone solo span from a transition span.
type SegmentKind string

const (
	SegmentSolo       SegmentKind = "SOLO"
	SegmentTransition SegmentKind = "TRANSITION"
)

// Segment is one entry in the assembled mix timeline. Depending on Kind,
// only the SOLO fields or only the TRANSITION fields are meaningful.
type Segment struct {
	Position int         `json:"position"`
	Kind     SegmentKind `json:"kind"`

	// SOLO fields.
	TrackID    string `json:"track_id,omitempty"`
	StartMs    int64  `json:"start_ms,omitempty"`
	EndMs      int64  `json:"end_ms,omitempty"`

	// TRANSITION fields.
	FromTrackID  string `json:"from_track_id,omitempty"`
	ToTrackID    string `json:"to_track_id,omitempty"`
	AudioPath    string `json:"audio_path,omitempty"`
	DurationMs   int64  `json:"duration_ms,omitempty"`
	TrackACutMs  int64  `json:"track_a_cut_ms,omitempty"`
	TrackBStartMs int64 `json:"track_b_start_ms,omitempty"`
}

// SoloDurationMs returns EndMs-StartMs for a SOLO segment.
func (s *Segment) SoloDurationMs() int64 {
	return s.EndMs - s.StartMs
}

// ValidateTimeline checks the alternation and cut-point contract spec §3
// places on a segment list (testable property 3 in spec §8).
func ValidateTimeline(segs []Segment) error {
	if len(segs) == 0 {
		return nil
	}
	if segs[0].Kind != SegmentSolo {
		return fmt.Errorf("model: timeline must start with SOLO")
	}
	if segs[len(segs)-1].Kind != SegmentSolo {
		return fmt.Errorf("model: timeline must end with SOLO")
	}
	for i := 1; i < len(segs); i++ {
		if segs[i].Kind == segs[i-1].Kind {
			return fmt.Errorf("model: segments %d and %d have the same kind, expected alternation", i-1, i)
		}
	}
	for i := 1; i+1 < len(segs); i += 2 {
		soloA, trans, soloB := segs[i-1], segs[i], segs[i+1]
		if trans.Kind != SegmentTransition {
			continue
		}
		if soloA.EndMs != trans.TrackACutMs {
			return fmt.Errorf("model: solo %d end_ms %d != transition track_a_cut_ms %d", i-1, soloA.EndMs, trans.TrackACutMs)
		}
		if soloB.StartMs != trans.TrackBStartMs {
			return fmt.Errorf("model: solo %d start_ms %d != transition track_b_start_ms %d", i+1, soloB.StartMs, trans.TrackBStartMs)
		}
	}
	return nil
}
