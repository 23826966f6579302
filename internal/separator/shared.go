package separator

import (
	"context"
	"log/slog"
	"sync"

	"github.com/cancun/autodj/internal/audio"
)

// Shared lazily constructs a single Separator instance shared by every
// worker goroutine, the way the teacher dials its one Swift analyzer
// connection once in main and passes it down. Construction happens at
// most once: the first caller to Get pays the (possibly failing)
// initialization cost, and every later caller observes the same
// Separator or the same error, never re-running the constructor.
type Shared struct {
	once sync.Once
	sep  Separator
	err  error
	new  func() (Separator, error)
}

// NewShared wraps a constructor so its result is computed at most once.
func NewShared(constructor func() (Separator, error)) *Shared {
	return &Shared{new: constructor}
}

// Get returns the shared Separator, running the constructor on first
// call only. A failed construction is cached too: every subsequent call
// returns the same error rather than retrying.
func (s *Shared) Get() (Separator, error) {
	s.once.Do(func() {
		s.sep, s.err = s.new()
	})
	return s.sep, s.err
}

// NewDefaultShared builds the standard worker separator: a subprocess
// backend if cmd is non-empty, falling back to the band-split estimator
// whenever the subprocess fails to produce stems. The fallback
// decision happens per-call inside downgradingSeparator.Separate rather than at
// construction time, since a transient subprocess failure shouldn't
// permanently poison the shared instance for the rest of the run.
func NewDefaultShared(cmd string, args []string, logger *slog.Logger) *Shared {
	return NewShared(func() (Separator, error) {
		if cmd == "" {
			return NewBandSplitFallback(logger), nil
		}
		return &downgradingSeparator{
			primary:  NewSubprocessSeparator(cmd, args, logger),
			fallback: NewBandSplitFallback(logger),
			logger:   logger,
		}, nil
	})
}

// downgradingSeparator tries the subprocess backend first and falls back
// to the band-split estimator on failure, logging the downgrade. It
// never returns an UnavailableError itself: the renderer's STEM_BLEND
// downgrade ladder only needs to see a usable (if crude) set of stems.
type downgradingSeparator struct {
	primary  *SubprocessSeparator
	fallback *BandSplitFallback
	logger   *slog.Logger
}

func (d *downgradingSeparator) Separate(ctx context.Context, buf *audio.Buffer) (*Stems, error) {
	stems, err := d.primary.Separate(ctx, buf)
	if err == nil {
		return stems, nil
	}
	d.logger.Warn("subprocess separator failed, downgrading to band-split fallback", "error", err)
	return d.fallback.Separate(ctx, buf)
}
