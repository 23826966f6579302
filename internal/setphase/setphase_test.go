package setphase

import (
	"testing"

	"github.com/cancun/autodj/internal/model"
)

func TestPhaseForBuckets(t *testing.T) {
	cases := []struct {
		idx, total int
		want       Phase
	}{
		{0, 10, Warmup},
		{2, 10, Warmup},
		{3, 10, Build},
		{4, 10, Build},
		{5, 10, Peak},
		{7, 10, Peak},
		{8, 10, Cooldown},
		{9, 10, Cooldown},
	}
	for _, c := range cases {
		got := PhaseFor(c.idx, c.total)
		if got.Phase != c.want {
			t.Errorf("PhaseFor(%d,%d) = %s, want %s", c.idx, c.total, got.Phase, c.want)
		}
	}
}

func TestAdjustDurationClampsWithinRange(t *testing.T) {
	peak := PhaseFor(5, 10)
	got := peak.AdjustDuration(64)
	if got < peak.MinBars || got > peak.MaxBars {
		t.Errorf("adjusted duration %d outside [%d,%d]", got, peak.MinBars, peak.MaxBars)
	}
}

func TestForcesHardCutOnLargeEnergyDrop(t *testing.T) {
	peak := PhaseFor(5, 10)
	if !peak.ForcesHardCut(0.9, 0.6) {
		t.Error("expected PEAK with >0.2 energy drop to force hard cut")
	}
	if peak.ForcesHardCut(0.9, 0.85) {
		t.Error("small energy drop should not force hard cut")
	}
}

func TestValidateSequenceFlagsLowEnergyDuringPeak(t *testing.T) {
	analyses := make([]*model.TrackAnalysis, 10)
	for i := range analyses {
		energy := 0.8
		if i == 6 {
			energy = 0.1
		}
		analyses[i] = &model.TrackAnalysis{TrackID: string(rune('a' + i)), Energy: energy}
	}
	violations := ValidateSequence(analyses)
	found := false
	for _, v := range violations {
		if v.Tag == LowEnergyDuringPeak && v.Index == 6 {
			found = true
		}
	}
	if !found {
		t.Error("expected LOW_ENERGY_TRACK_DURING_PEAK violation at index 6")
	}
}

func TestValidateSequenceFlagsEnergyJump(t *testing.T) {
	analyses := []*model.TrackAnalysis{
		{TrackID: "a", Energy: 0.2},
		{TrackID: "b", Energy: 0.9},
	}
	violations := ValidateSequence(analyses)
	if len(violations) == 0 {
		t.Error("expected an energy jump violation")
	}
}

func TestSerpentinePlanAlternatesHighAndBreather(t *testing.T) {
	analyses := []*model.TrackAnalysis{
		{TrackID: "h1", Energy: 0.9},
		{TrackID: "h2", Energy: 0.85},
		{TrackID: "h3", Energy: 0.8},
		{TrackID: "m1", Energy: 0.3},
	}
	out := SerpentinePlan(analyses)
	if len(out) != len(analyses) {
		t.Fatalf("expected %d tracks, got %d", len(analyses), len(out))
	}
	seen := map[string]bool{}
	for _, a := range out {
		seen[a.TrackID] = true
	}
	for _, a := range analyses {
		if !seen[a.TrackID] {
			t.Errorf("track %s missing from serpentine output", a.TrackID)
		}
	}
}

func TestSerpentinePlanNoOpWithoutBothGroups(t *testing.T) {
	analyses := []*model.TrackAnalysis{
		{TrackID: "a", Energy: 0.9},
		{TrackID: "b", Energy: 0.95},
		{TrackID: "c", Energy: 0.92},
	}
	out := SerpentinePlan(analyses)
	if len(out) != len(analyses) {
		t.Fatalf("expected unchanged length, got %d", len(out))
	}
}
