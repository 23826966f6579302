// Package queue implements the worker's job-queue transport: four named
// work streams plus a results stream and a progress pub/sub channel, all
// backed by Redis (spec §6 "Work ingress"/"Result egress"). Payloads are
// JSON, matching the shapes spec §6 names exactly.
package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"
)

// Stream names spec §6 lists under "Work ingress".
const (
	StreamAnalyze         = "analyze"
	StreamTransition      = "transition"
	StreamDraftTransition = "draft_transition"
	StreamMix             = "mix"
)

// Results is the single results list spec §6 calls "Result egress".
const Results = "results"

// Progress is the pub/sub channel progress messages are published on.
const Progress = "progress"

// Client wraps a Redis connection with the LPUSH/BRPOP queue semantics
// the worker needs: one blocking-pop consumer loop per stream, pushing
// job payloads in and results/progress out.
type Client struct {
	rdb    *redis.Client
	logger *slog.Logger
}

// NewClient dials Redis at addr (optionally authenticating with
// password) and returns a ready-to-use Client. It does not block on
// connectivity; the first command surfaces any connection error.
func NewClient(addr, password string, db int, logger *slog.Logger) *Client {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	return &Client{rdb: rdb, logger: logger}
}

// Close releases the underlying Redis connection pool.
func (c *Client) Close() error { return c.rdb.Close() }

// Enqueue JSON-marshals payload and pushes it onto the named stream.
func (c *Client) Enqueue(ctx context.Context, stream string, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("queue: marshal payload for %s: %w", stream, err)
	}
	if err := c.rdb.LPush(ctx, stream, body).Err(); err != nil {
		return fmt.Errorf("queue: lpush %s: %w", stream, err)
	}
	return nil
}

// Dequeue blocks until a job is available on stream (or ctx is done) and
// returns its raw JSON payload.
func (c *Client) Dequeue(ctx context.Context, stream string) ([]byte, error) {
	res, err := c.rdb.BRPop(ctx, 0, stream).Result()
	if err != nil {
		return nil, fmt.Errorf("queue: brpop %s: %w", stream, err)
	}
	// BRPop returns [key, value]; we asked for exactly one key.
	return []byte(res[1]), nil
}

// PublishResult pushes a result envelope onto the results list, per
// spec §6: {type, projectId?, trackId?, transitionId?, draftId?,
// result|error}.
func (c *Client) PublishResult(ctx context.Context, r ResultMessage) error {
	return c.Enqueue(ctx, Results, r)
}

// PublishProgress publishes a {stage, percent, message} progress update
// on the progress pub/sub channel. Publish failures are non-fatal to
// the caller's pipeline, so this is usually invoked best-effort.
func (c *Client) PublishProgress(ctx context.Context, p ProgressMessage) error {
	body, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("queue: marshal progress: %w", err)
	}
	if err := c.rdb.Publish(ctx, Progress, body).Err(); err != nil {
		return fmt.Errorf("queue: publish progress: %w", err)
	}
	return nil
}

// ResultMessage is the results-list envelope spec §6 describes.
type ResultMessage struct {
	Type         string          `json:"type"`
	ProjectID    string          `json:"projectId,omitempty"`
	TrackID      string          `json:"trackId,omitempty"`
	TransitionID string          `json:"transitionId,omitempty"`
	DraftID      string          `json:"draftId,omitempty"`
	Result       json.RawMessage `json:"result,omitempty"`
	Error        string          `json:"error,omitempty"`
}

// ProgressMessage is the progress pub/sub payload spec §6 describes.
type ProgressMessage struct {
	Stage   string  `json:"stage"`
	Percent float64 `json:"percent"`
	Message string  `json:"message,omitempty"`
}
