package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"strconv"

	"github.com/google/uuid"

	"github.com/cancun/autodj/internal/analysis"
	"github.com/cancun/autodj/internal/assembler"
	"github.com/cancun/autodj/internal/audio"
	"github.com/cancun/autodj/internal/jobtoken"
	"github.com/cancun/autodj/internal/llmplan"
	"github.com/cancun/autodj/internal/model"
	"github.com/cancun/autodj/internal/planner"
	"github.com/cancun/autodj/internal/queue"
	"github.com/cancun/autodj/internal/separator"
	"github.com/cancun/autodj/internal/setphase"
	"github.com/cancun/autodj/internal/storage"
	"github.com/cancun/autodj/internal/transition"
)

// worker bundles the shared collaborators every handler closes over:
// the durable store, the queue client used both to consume jobs and to
// publish results/progress, the content-addressed blob layout, the
// shared separator, the optional LLM planner, and the audio encoders.
// This mirrors the teacher's engineServer, which bundled the same kind
// of shared dependencies behind one receiver for every RPC method.
type worker struct {
	db       *storage.DB
	blobs    *storage.Blobs
	queue    *queue.Client
	sep      *separator.Shared
	llm      llmplan.Planner
	mp3      *audio.MP3Encoder
	concat   func(ctx context.Context, paths ...string) (string, error)
	logger   *slog.Logger
}

// handleAnalyze implements the *analyze* stream: decode the track,
// run the C3 analysis pipeline, persist the result, and publish it.
func (w *worker) handleAnalyze(ctx context.Context, payload []byte) error {
	var job queue.AnalyzeJob
	if err := json.Unmarshal(payload, &job); err != nil {
		return fmt.Errorf("worker: decode analyze job: %w", err)
	}

	tok := jobtoken.New(ctx)
	logger := w.logger.With("project_id", job.ProjectID, "track_id", job.TrackID)

	if err := tok.CheckStage(); err != nil {
		return w.failResult(ctx, "analyze", job.ProjectID, job.TrackID, "", "", err)
	}

	buf, err := audio.Decode(job.FilePath)
	if err != nil {
		return w.failResult(ctx, "analyze", job.ProjectID, job.TrackID, "", "", err)
	}

	if err := tok.CheckStage(); err != nil {
		return w.failResult(ctx, "analyze", job.ProjectID, job.TrackID, "", "", err)
	}

	a, err := analysis.Analyze(job.TrackID, job.FilePath, buf, "")
	if err != nil {
		return w.failResult(ctx, "analyze", job.ProjectID, job.TrackID, "", "", err)
	}

	if err := w.persistProjectCopy(job.ProjectID, job.TrackID, job.FilePath); err != nil {
		logger.Warn("could not persist project-scoped track copy", "error", err)
	}

	if trackIDInt, convErr := strconv.ParseInt(job.TrackID, 10, 64); convErr == nil {
		tile := audio.WaveformTile(buf, audio.WorkingSampleRate/10)
		if _, err := w.db.PutBlob(storage.BlobTypeWaveformTile, 0, trackIDInt, tile); err != nil {
			logger.Warn("could not store waveform tile", "error", err)
		}
	}

	result := toAnalyzeResult(a)
	body, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("worker: marshal analyze result: %w", err)
	}

	logger.Info("analyze complete", "bpm", a.BPM, "mixability", a.Mixability)
	return w.queue.PublishResult(ctx, queue.ResultMessage{
		Type:      "analyze",
		ProjectID: job.ProjectID,
		TrackID:   job.TrackID,
		Result:    body,
	})
}

// persistProjectCopy copies a scanned source file into the project's
// content-addressed storage root (spec §6's "projects/<id>/<track>.ext"
// layout), so a later mix/export step never depends on the original
// library path still existing.
func (w *worker) persistProjectCopy(projectID, trackID, srcPath string) error {
	if w.blobs == nil {
		return nil
	}
	data, err := os.ReadFile(srcPath)
	if err != nil {
		return fmt.Errorf("read source for project copy: %w", err)
	}
	ext := "wav"
	if len(srcPath) > 4 && srcPath[len(srcPath)-4:] == ".mp3" {
		ext = "mp3"
	}
	dst := w.blobs.ProjectTrackPath(projectID, trackID, ext)
	return storage.WriteAtomic(dst, data)
}

func toAnalyzeResult(a *model.TrackAnalysis) queue.AnalyzeResult {
	phrases := make([]queue.Phrase, len(a.Phrases))
	for i, p := range a.Phrases {
		phrases[i] = queue.Phrase{StartS: p.StartS, EndS: p.EndS, BarCount: p.BarCount}
	}
	vocals := make([]queue.Vocal, len(a.VocalSections))
	for i, v := range a.VocalSections {
		vocals[i] = queue.Vocal{StartS: v.StartS, EndS: v.EndS, Intensity: string(v.Intensity)}
	}
	return queue.AnalyzeResult{
		BPM:           a.BPM,
		BPMConfidence: a.BPMConfidence,
		Key:           a.Key,
		Camelot:       a.Key,
		Energy:        a.Energy,
		Loudness:      a.LoudnessDB,
		Beats:         a.Beats,
		IntroStart:    0,
		IntroEnd:      float64(a.IntroEndMs) / 1000,
		OutroStart:    float64(a.OutroStartMs) / 1000,
		OutroEnd:      a.DurationSec,
		Structure:     phrases,
		Vocals:        vocals,
		Mixability:    a.Mixability,
	}
}

func fromAnalyzeResult(trackID, path string, r queue.AnalyzeResult) (*model.TrackAnalysis, error) {
	phrases := make([]model.Phrase, len(r.Structure))
	for i, p := range r.Structure {
		phrases[i] = model.Phrase{StartS: p.StartS, EndS: p.EndS, BarCount: p.BarCount}
	}
	vocals := make([]model.VocalSection, len(r.Vocals))
	for i, v := range r.Vocals {
		vocals[i] = model.VocalSection{StartS: v.StartS, EndS: v.EndS, Intensity: model.VocalIntensity(v.Intensity)}
	}
	return model.NewTrackAnalysis(model.TrackAnalysis{
		TrackID:       trackID,
		Path:          path,
		DurationSec:   r.OutroEnd,
		BPM:           r.BPM,
		BPMConfidence: r.BPMConfidence,
		Beats:         r.Beats,
		Key:           r.Key,
		Energy:        r.Energy,
		LoudnessDB:    r.Loudness,
		IntroEndMs:    int64(r.IntroEnd * 1000),
		OutroStartMs:  int64(r.OutroStart * 1000),
		HasVocals:     len(vocals) > 0,
		VocalSections: vocals,
		Phrases:       phrases,
		Mixability:    r.Mixability,
	})
}

// handleTransition implements both the *transition* and *draft_transition*
// streams: plan and render one adjacent track pair in isolation (no
// broader set context, since a draft preview has none).
func (w *worker) handleTransition(ctx context.Context, payload []byte) error {
	var job queue.TransitionJob
	if err := json.Unmarshal(payload, &job); err != nil {
		return fmt.Errorf("worker: decode transition job: %w", err)
	}

	tok := jobtoken.New(ctx)
	logger := w.logger.With("track_a", job.TrackAPath, "track_b", job.TrackBPath)

	a, err := model.NewTrackAnalysis(model.TrackAnalysis{
		TrackID:      job.TrackAPath,
		Path:         job.TrackAPath,
		DurationSec:  job.DurationA,
		BPM:          job.BPMA,
		Beats:        job.BeatsA,
		Key:          job.KeyA,
		Energy:       job.EnergyA,
		OutroStartMs: int64(job.OutroStartA * 1000),
	})
	if err != nil {
		return w.failResult(ctx, "transition", "", "", "", "", err)
	}
	b, err := model.NewTrackAnalysis(model.TrackAnalysis{
		TrackID:     job.TrackBPath,
		Path:        job.TrackBPath,
		DurationSec: job.DurationB,
		BPM:         job.BPMB,
		Beats:       job.BeatsB,
		Key:         job.KeyB,
		Energy:      job.EnergyB,
	})
	if err != nil {
		return w.failResult(ctx, "transition", "", "", "", "", err)
	}

	llmUsed := w.llm != nil
	plan, err := planner.PlanTransition(tok.Context(), a, b, planner.Options{
		LLM:         w.llm,
		SetPhase:    setphase.PhaseFor(0, 1),
		TrackIndex:  0,
		TotalTracks: 1,
		Logger:      logger,
	})
	if err != nil {
		return w.failResult(ctx, "transition", "", "", "", "", err)
	}

	if err := tok.CheckStage(); err != nil {
		return w.failResult(ctx, "transition", "", "", "", "", err)
	}

	bufA, err := audio.Decode(job.TrackAPath)
	if err != nil {
		return w.failResult(ctx, "transition", "", "", "", "", err)
	}
	bufB, err := audio.Decode(job.TrackBPath)
	if err != nil {
		return w.failResult(ctx, "transition", "", "", "", "", err)
	}

	sep, err := w.sep.Get()
	if err != nil {
		return w.failResult(ctx, "transition", "", "", "", "", err)
	}

	if err := tok.CheckStage(); err != nil {
		return w.failResult(ctx, "transition", "", "", "", "", err)
	}

	rendered, err := transition.Render(tok.Context(), plan, bufA, bufB, a, b, sep)
	if err != nil {
		return w.failResult(ctx, "transition", "", "", "", "", err)
	}

	tmpPath := job.OutputPath + ".tmp"
	tok.OnCleanup(func() { os.Remove(tmpPath) })
	if isMP3(job.OutputPath) {
		err = w.mp3.EncodeMP3(tmpPath, rendered.Audio)
	} else {
		err = audio.EncodeWAV(tmpPath, rendered.Audio)
	}
	if err != nil {
		tok.Cleanup()
		return w.failResult(ctx, "transition", "", "", "", "", err)
	}
	if err := os.Rename(tmpPath, job.OutputPath); err != nil {
		tok.Cleanup()
		return w.failResult(ctx, "transition", "", "", "", "", err)
	}

	result := queue.TransitionResult{
		TransitionFilePath:   job.OutputPath,
		TransitionDurationMs: rendered.Audio.DurationMs(),
		TrackAPlayUntilMs:    rendered.TrackACutMs,
		TrackBStartFromMs:    rendered.TrackBStartMs,
		TransitionMode:       string(plan.Type),
		LLMPlanUsed:          llmUsed,
	}
	body, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("worker: marshal transition result: %w", err)
	}

	logger.Info("transition rendered", "mode", plan.Type, "warnings", len(rendered.Warnings))
	return w.queue.PublishResult(ctx, queue.ResultMessage{
		Type:         "transition",
		TransitionID: uuid.NewString(),
		Result:       body,
	})
}

// handleMix implements the *mix* stream: reassembles the full timeline
// from a project's already-analyzed tracks and already-rendered
// transitions, then exports it (merging any collapsed solo).
func (w *worker) handleMix(ctx context.Context, payload []byte) error {
	var job queue.MixJob
	if err := json.Unmarshal(payload, &job); err != nil {
		return fmt.Errorf("worker: decode mix job: %w", err)
	}

	tok := jobtoken.New(ctx)
	logger := w.logger.With("project_id", job.ProjectID)

	tracks := make([]*model.TrackAnalysis, len(job.Tracks))
	for i, t := range job.Tracks {
		a, err := fromAnalyzeResult(strconv.Itoa(i), "", t)
		if err != nil {
			return w.failResult(ctx, "mix", job.ProjectID, "", "", "", err)
		}
		tracks[i] = a
	}

	renderIdx := 0
	render := func(_ context.Context, _, _ *model.TrackAnalysis) (assembler.Rendering, error) {
		if renderIdx >= len(job.Transitions) {
			return assembler.Rendering{}, fmt.Errorf("worker: missing precomputed transition at index %d", renderIdx)
		}
		tr := job.Transitions[renderIdx]
		renderIdx++
		return assembler.Rendering{
			AudioPath:     tr.TransitionFilePath,
			DurationMs:    tr.TransitionDurationMs,
			TrackACutMs:   tr.TrackAPlayUntilMs,
			TrackBStartMs: tr.TrackBStartFromMs,
		}, nil
	}

	timeline, err := assembler.BuildTimeline(tok.Context(), tracks, render)
	if err != nil {
		return w.failResult(ctx, "mix", job.ProjectID, "", "", "", err)
	}

	if err := tok.CheckStage(); err != nil {
		return w.failResult(ctx, "mix", job.ProjectID, "", "", "", err)
	}

	exported, err := assembler.Export(tok.Context(), timeline, w.concat)
	if err != nil {
		return w.failResult(ctx, "mix", job.ProjectID, "", "", "", err)
	}

	transitionFiles := make(map[string]string)
	for _, seg := range exported {
		if seg.Kind == model.SegmentTransition {
			transitionFiles[seg.FromTrackID+"_"+seg.ToTrackID] = seg.AudioPath
		}
	}

	result := queue.MixResult{Segments: exported, TransitionFiles: transitionFiles}
	body, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("worker: marshal mix result: %w", err)
	}

	logger.Info("mix assembled", "segments", len(exported))
	return w.queue.PublishResult(ctx, queue.ResultMessage{
		Type:      "mix",
		ProjectID: job.ProjectID,
		Result:    body,
	})
}

func isMP3(path string) bool {
	return len(path) > 4 && path[len(path)-4:] == ".mp3"
}

func (w *worker) failResult(ctx context.Context, typ, projectID, trackID, transitionID, draftID string, cause error) error {
	w.logger.Error("worker: job failed", "type", typ, "error", cause)
	pubErr := w.queue.PublishResult(ctx, queue.ResultMessage{
		Type:         typ,
		ProjectID:    projectID,
		TrackID:      trackID,
		TransitionID: transitionID,
		DraftID:      draftID,
		Error:        cause.Error(),
	})
	if pubErr != nil {
		return fmt.Errorf("worker: job failed (%w) and result publish also failed: %v", cause, pubErr)
	}
	return cause
}
