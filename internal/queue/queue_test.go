package queue

import (
	"context"
	"encoding/json"
	"log/slog"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T) *Client {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return &Client{rdb: rdb, logger: slog.Default()}
}

func TestEnqueueDequeueRoundTrips(t *testing.T) {
	c := newTestClient(t)
	ctx := context.Background()

	job := AnalyzeJob{ProjectID: "p1", TrackID: "t1", FilePath: "/tmp/a.wav"}
	require.NoError(t, c.Enqueue(ctx, StreamAnalyze, job))

	raw, err := c.Dequeue(ctx, StreamAnalyze)
	require.NoError(t, err)

	var got AnalyzeJob
	require.NoError(t, json.Unmarshal(raw, &got))
	require.Equal(t, job, got)
}

func TestPublishResultAppendsToResultsList(t *testing.T) {
	c := newTestClient(t)
	ctx := context.Background()

	require.NoError(t, c.PublishResult(ctx, ResultMessage{Type: "analyze", ProjectID: "p1", TrackID: "t1"}))

	raw, err := c.Dequeue(ctx, Results)
	require.NoError(t, err)
	var got ResultMessage
	require.NoError(t, json.Unmarshal(raw, &got))
	require.Equal(t, "analyze", got.Type)
	require.Equal(t, "p1", got.ProjectID)
}

func TestConsumerDispatchesRegisteredHandler(t *testing.T) {
	c := newTestClient(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	received := make(chan AnalyzeJob, 1)
	consumer := NewConsumer(c, slog.Default())
	consumer.Register(StreamAnalyze, func(ctx context.Context, payload []byte) error {
		var job AnalyzeJob
		if err := json.Unmarshal(payload, &job); err != nil {
			return err
		}
		received <- job
		return nil
	})

	go consumer.Run(ctx)

	job := AnalyzeJob{ProjectID: "p2", TrackID: "t2", FilePath: "/tmp/b.wav"}
	require.NoError(t, c.Enqueue(context.Background(), StreamAnalyze, job))

	select {
	case got := <-received:
		require.Equal(t, job, got)
	case <-time.After(2 * time.Second):
		t.Fatal("handler was never invoked")
	}
}

func TestConsumerSurvivesHandlerPanic(t *testing.T) {
	c := newTestClient(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	recovered := make(chan struct{}, 1)
	consumer := NewConsumer(c, slog.Default())
	consumer.Register(StreamAnalyze, func(ctx context.Context, payload []byte) error {
		defer func() { recovered <- struct{}{} }()
		panic("boom")
	})

	go consumer.Run(ctx)

	require.NoError(t, c.Enqueue(context.Background(), StreamAnalyze, AnalyzeJob{TrackID: "t3"}))

	select {
	case <-recovered:
	case <-time.After(2 * time.Second):
		t.Fatal("handler was never invoked")
	}
}
