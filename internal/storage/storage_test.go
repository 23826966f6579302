package storage

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
	db, err := Open(t.TempDir(), logger)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestUpsertAndResolveTrack(t *testing.T) {
	db := openTestDB(t)

	track := &Track{ContentHash: "hash1", Path: "/music/a.wav", FileSize: 1024, FileModifiedAt: time.Now()}
	id, err := db.UpsertTrack(track)
	require.NoError(t, err)
	require.NotZero(t, id)

	byHash, err := db.ResolveTrack("hash1", "")
	require.NoError(t, err)
	require.Equal(t, id, byHash.ID)

	byPath, err := db.ResolveTrack("", "/music/a.wav")
	require.NoError(t, err)
	require.Equal(t, id, byPath.ID)
}

func TestJobLifecycle(t *testing.T) {
	db := openTestDB(t)

	id, err := db.CreateJob(JobTypeAnalyze, 5, map[string]any{"trackId": "t1"})
	require.NoError(t, err)

	job, err := db.ClaimJob(JobTypeAnalyze)
	require.NoError(t, err)
	require.NotNil(t, job)
	require.Equal(t, id, job.ID)
	require.Equal(t, JobStatusRunning, job.Status)

	require.NoError(t, db.CompleteJob(job.ID, map[string]any{"bpm": 124.0}))

	count, err := db.GetPendingJobCount(JobTypeAnalyze)
	require.NoError(t, err)
	require.Equal(t, 0, count)
}

func TestProjectOrderRoundTrip(t *testing.T) {
	db := openTestDB(t)
	require.NoError(t, db.CreateProject("p1", "Friday set"))

	idA, err := db.UpsertTrack(&Track{ContentHash: "a", Path: "/a.wav"})
	require.NoError(t, err)
	idB, err := db.UpsertTrack(&Track{ContentHash: "b", Path: "/b.wav"})
	require.NoError(t, err)

	require.NoError(t, db.SetProjectOrder("p1", []int64{idB, idA}))

	order, err := db.GetProjectOrder("p1")
	require.NoError(t, err)
	require.Equal(t, []int64{idB, idA}, order)
}

func TestBlobsPathLayout(t *testing.T) {
	root := t.TempDir()
	blobs, err := NewBlobs(root)
	require.NoError(t, err)

	require.Equal(t, filepath.Join(root, "projects", "p1", "t1.wav"), blobs.ProjectTrackPath("p1", "t1", "wav"))
	require.Equal(t, filepath.Join(root, "transitions", "p1", "tr1.mp3"), blobs.TransitionPath("p1", "tr1"))
	require.Equal(t, filepath.Join(root, "drafts", "d1", "transition.mp3"), blobs.DraftTransitionPath("d1"))
	require.Equal(t, filepath.Join(root, "mix_segments", "p1", "transition_a_b.wav"), blobs.MixSegmentPath("p1", "a", "b"))
}

func TestWriteAtomicThenDelete(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "file.bin")
	require.NoError(t, WriteAtomic(path, []byte("hello")))

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, "hello", string(content))

	// No leftover temp file.
	_, err = os.Stat(path + ".tmp")
	require.True(t, os.IsNotExist(err))

	require.NoError(t, Delete(path))
	require.NoError(t, Delete(path)) // deleting again is a no-op, not an error
}
