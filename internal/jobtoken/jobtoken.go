// Package jobtoken implements the cancellation token the worker threads
// through every pipeline stage (decode, separate-A, separate-B, mix,
// encode), per spec §5 ("Cancellation"): a long operation is associated
// with a token, the worker checks it between stages, and on
// cancellation any partial artifacts are deleted via a registered
// cleanup function.
package jobtoken

import (
	"context"
	"sync"
)

// Token wraps a context.Context with a cheap Cancelled() fast path and a
// set of cleanup callbacks to run exactly once if the job is cancelled
// or fails.
type Token struct {
	ctx context.Context

	mu       sync.Mutex
	cleanups []func()
	ran      bool
}

// New wraps ctx in a Token. The caller is still responsible for
// cancelling ctx (e.g. via context.WithCancel) when the job should
// stop.
func New(ctx context.Context) *Token {
	return &Token{ctx: ctx}
}

// Context returns the underlying context, for passing to functions that
// take one directly (I/O, subprocess calls).
func (t *Token) Context() context.Context { return t.ctx }

// Cancelled reports whether the token's context has been cancelled.
// Callers check this between pipeline stages rather than on every
// sample, since per-stage granularity is what spec §5 asks for.
func (t *Token) Cancelled() bool {
	select {
	case <-t.ctx.Done():
		return true
	default:
		return false
	}
}

// CheckStage returns ctx.Err() if the token has been cancelled, nil
// otherwise. Call between decode/separate-A/separate-B/mix/encode.
func (t *Token) CheckStage() error {
	select {
	case <-t.ctx.Done():
		return t.ctx.Err()
	default:
		return nil
	}
}

// OnCleanup registers a function to run when Cleanup is called (once,
// the first time). Typical use: delete a partial output file written by
// the stage currently in flight.
func (t *Token) OnCleanup(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.cleanups = append(t.cleanups, fn)
}

// Cleanup runs every registered cleanup function, most-recently
// registered first, exactly once regardless of how many times it is
// called.
func (t *Token) Cleanup() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.ran {
		return
	}
	t.ran = true
	for i := len(t.cleanups) - 1; i >= 0; i-- {
		t.cleanups[i]()
	}
}
