package scanner

import (
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/require"

	"github.com/cancun/autodj/internal/queue"
	"github.com/cancun/autodj/internal/storage"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
}

func TestScanDiscoversSupportedFormatsOnly(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "a.wav"), []byte("wav-data"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "notes.txt"), []byte("ignore me"), 0o644))

	db, err := storage.Open(t.TempDir(), testLogger())
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	s := NewScanner(db, testLogger())
	progress := make(chan ScanProgress, 16)
	require.NoError(t, s.Scan(context.Background(), []string{root}, false, progress))

	var seen []ScanProgress
	for p := range progress {
		seen = append(seen, p)
	}
	require.Len(t, seen, 1)
	require.Equal(t, "done", seen[0].Status)
	require.True(t, seen[0].IsNew)
}

func TestScanSkipsAlreadyKnownTracks(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "a.wav"), []byte("wav-data"), 0o644))

	db, err := storage.Open(t.TempDir(), testLogger())
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	s := NewScanner(db, testLogger())

	first := make(chan ScanProgress, 16)
	require.NoError(t, s.Scan(context.Background(), []string{root}, false, first))
	for range first {
	}

	second := make(chan ScanProgress, 16)
	require.NoError(t, s.Scan(context.Background(), []string{root}, false, second))
	var seen []ScanProgress
	for p := range second {
		seen = append(seen, p)
	}
	require.Len(t, seen, 1)
	require.Equal(t, "skipped", seen[0].Status)
}

func TestEnqueueAnalysisPushesJobAndQueuesWorkItem(t *testing.T) {
	root := t.TempDir()
	trackPath := filepath.Join(root, "a.wav")
	require.NoError(t, os.WriteFile(trackPath, []byte("wav-data"), 0o644))

	db, err := storage.Open(t.TempDir(), testLogger())
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	trackID, err := db.UpsertTrack(&storage.Track{
		ContentHash:    "hash1",
		Path:           trackPath,
		FileModifiedAt: time.Now(),
	})
	require.NoError(t, err)

	mr := miniredis.RunT(t)
	q := queue.NewClient(mr.Addr(), "", 0, testLogger())
	t.Cleanup(func() { q.Close() })

	s := NewScanner(db, testLogger())
	require.NoError(t, s.EnqueueAnalysis(context.Background(), q, "proj1", []int64{trackID}, 5))

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	payload, err := q.Dequeue(ctx, queue.StreamAnalyze)
	require.NoError(t, err)

	var job queue.AnalyzeJob
	require.NoError(t, json.Unmarshal(payload, &job))
	require.Equal(t, "proj1", job.ProjectID)
	require.Equal(t, trackPath, job.FilePath)

	count, err := db.GetPendingJobCount(storage.JobTypeAnalyze)
	require.NoError(t, err)
	require.Equal(t, 1, count)
}
