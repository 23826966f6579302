package queue

import "github.com/cancun/autodj/internal/model"

// These are the exact job/result payload shapes spec §6 names for each
// of the four work streams. internal/model's richer value objects are
// used internally by the planner/renderer/assembler; these flatter
// structs are what actually crosses the wire, and a handler is
// responsible for translating between the two.

// AnalyzeJob is the *analyze* stream's job payload.
type AnalyzeJob struct {
	ProjectID string `json:"projectId"`
	TrackID   string `json:"trackId"`
	FilePath  string `json:"filePath"`
}

// AnalyzeResult is the *analyze* stream's result payload.
type AnalyzeResult struct {
	BPM           float64   `json:"bpm"`
	BPMConfidence float64   `json:"bpmConfidence"`
	Key           string    `json:"key"`
	Camelot       string    `json:"camelot"`
	Energy        float64   `json:"energy"`
	Danceability  float64   `json:"danceability"`
	Loudness      float64   `json:"loudness"`
	Beats         []float64 `json:"beats"`
	IntroStart    float64   `json:"introStart"`
	IntroEnd      float64   `json:"introEnd"`
	OutroStart    float64   `json:"outroStart"`
	OutroEnd      float64   `json:"outroEnd"`
	Structure     []Phrase  `json:"structure"`
	Vocals        []Vocal   `json:"vocals"`
	Mixability    float64   `json:"mixability"`
}

// Phrase mirrors model.Phrase over the wire.
type Phrase struct {
	StartS   float64 `json:"start_s"`
	EndS     float64 `json:"end_s"`
	BarCount int     `json:"bar_count"`
}

// Vocal mirrors model.VocalSection over the wire.
type Vocal struct {
	StartS    float64 `json:"start_s"`
	EndS      float64 `json:"end_s"`
	Intensity string  `json:"intensity"`
}

// TransitionJob is the *transition*/*draft_transition* stream's job
// payload: two track paths, pre-computed analysis, and an output path.
type TransitionJob struct {
	TrackAPath   string  `json:"trackAPath"`
	TrackBPath   string  `json:"trackBPath"`
	BeatsA       []float64 `json:"beatsA"`
	BeatsB       []float64 `json:"beatsB"`
	BPMA         float64 `json:"bpmA"`
	BPMB         float64 `json:"bpmB"`
	EnergyA      float64 `json:"energyA"`
	EnergyB      float64 `json:"energyB"`
	DurationA    float64 `json:"durationA"`
	DurationB    float64 `json:"durationB"`
	KeyA         string  `json:"keyA,omitempty"`
	KeyB         string  `json:"keyB,omitempty"`
	OutroStartA  float64 `json:"outroStartA,omitempty"`
	OutputPath   string  `json:"outputPath"`
}

// TransitionResult is the *transition*/*draft_transition* stream's
// result payload.
type TransitionResult struct {
	TransitionFilePath    string `json:"transitionFilePath"`
	TransitionDurationMs  int64  `json:"transitionDurationMs"`
	TrackAPlayUntilMs     int64  `json:"trackAPlayUntilMs"`
	TrackBStartFromMs     int64  `json:"trackBStartFromMs"`
	TransitionMode        string `json:"transitionMode"`
	LLMPlanUsed           bool   `json:"llmPlanUsed"`
}

// MixJob is the *mix* stream's job payload: a project's full track list
// and the transition metadata already computed for each adjacent pair.
type MixJob struct {
	ProjectID   string          `json:"projectId"`
	Tracks      []AnalyzeResult `json:"tracks"`
	Transitions []TransitionResult `json:"transitions"`
}

// MixResult is the *mix* stream's result payload: the assembled segment
// timeline plus a lookup of each transition's rendered file.
type MixResult struct {
	Segments        []model.Segment   `json:"segments"`
	TransitionFiles map[string]string `json:"transition_files"`
}
