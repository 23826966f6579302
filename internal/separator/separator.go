// Package separator implements the C5 stem-separator port: an interface
// abstracting the backend, a real implementation that shells out to an
// external separation process, and an in-process fallback for
// environments without one, following the same
// real-backend/CPU-fallback split the teacher uses for its analyzer port
// (internal/analyzer/{client,fallback}.go in the teacher repo).
package separator

import (
	"context"
	"fmt"

	"github.com/cancun/autodj/internal/audio"
)

// Stems holds the four-way source separation the transition renderer
// blends between: drums, bass, other (melodic/harmonic), and vocals.
type Stems struct {
	Drums *audio.Buffer
	Bass  *audio.Buffer
	Other *audio.Buffer
	Vocals *audio.Buffer
}

// UnavailableError is returned when no separation backend could produce
// stems, matching the SeparationUnavailable taxonomy entry in spec §7.
// The renderer treats this as a signal to downgrade STEM_BLEND to
// CROSSFADE rather than fail the whole transition.
type UnavailableError struct {
	Reason string
}

func (e *UnavailableError) Error() string {
	return fmt.Sprintf("separator: unavailable: %s", e.Reason)
}

// Separator abstracts the stem-separation backend so the renderer can be
// tested against a fast fallback and run against a real model in
// production.
type Separator interface {
	Separate(ctx context.Context, buf *audio.Buffer) (*Stems, error)
}
