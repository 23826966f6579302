package planner

import (
	"math"

	"github.com/cancun/autodj/internal/model"
	"github.com/cancun/autodj/internal/setphase"
	"github.com/cancun/autodj/internal/theory"
)

// OrderOptions controls OrderTracks' greedy search, adapted from the
// teacher's track-ordering heuristic to the spec's set-phase model:
// rather than a single target SetMode, the target energy curve now
// comes from setphase.PhaseFor at each position.
type OrderOptions struct {
	AllowKeyJumps bool
	MaxBPMStep    float64 // 0 disables the cap
	MustPlayFirst []string
	Ban           []string
}

// OrderTracks greedily sequences a pool of analyzed tracks into a draft
// set order: starting from the lowest-energy track (or a forced first
// pick), it repeatedly picks the best-scoring next track given the
// target phase at that position, combining harmonic/bpm/energy
// compatibility (theory.Compare) with a penalty for distance from the
// energy target of that position's WARMUP/BUILD/PEAK/COOLDOWN phase. This is the
// supplemented analogue of the original planner's greedy ordering
// (spec.md does not require an ordering function, but the source
// project's core value was exactly this search).
func OrderTracks(pool []*model.TrackAnalysis, opts OrderOptions) ([]*model.TrackAnalysis, error) {
	banned := toSet(opts.Ban)
	candidates := make([]*model.TrackAnalysis, 0, len(pool))
	for _, t := range pool {
		if !banned[t.TrackID] {
			candidates = append(candidates, t)
		}
	}
	if len(candidates) == 0 {
		return nil, nil
	}

	used := make(map[string]bool, len(candidates))
	order := make([]*model.TrackAnalysis, 0, len(candidates))

	mustPlay := toSet(opts.MustPlayFirst)
	first := chooseStart(candidates, mustPlay)
	order = append(order, first)
	used[first.TrackID] = true

	total := len(candidates)
	for len(order) < total {
		prev := order[len(order)-1]
		phase := setphase.PhaseFor(len(order), total)
		next := bestNext(prev, candidates, used, phase, opts)
		if next == nil {
			for _, c := range candidates {
				if !used[c.TrackID] {
					next = c
					break
				}
			}
		}
		order = append(order, next)
		used[next.TrackID] = true
	}
	return order, nil
}

func chooseStart(pool []*model.TrackAnalysis, mustPlay map[string]bool) *model.TrackAnalysis {
	for _, t := range pool {
		if mustPlay[t.TrackID] {
			return t
		}
	}
	best := pool[0]
	for _, t := range pool[1:] {
		if t.Energy < best.Energy {
			best = t
		}
	}
	return best
}

func bestNext(prev *model.TrackAnalysis, pool []*model.TrackAnalysis, used map[string]bool, phase setphase.Spec, opts OrderOptions) *model.TrackAnalysis {
	var best *model.TrackAnalysis
	bestScore := math.Inf(-1)
	for _, c := range pool {
		if used[c.TrackID] {
			continue
		}
		score := scoreEdge(prev, c, phase, opts)
		if score > bestScore {
			bestScore = score
			best = c
		}
	}
	return best
}

// scoreEdge combines harmonic/bpm/energy compatibility between prev and
// candidate with how close the candidate's energy sits to the target
// phase's energy band, and penalizes (or, if allowed, softens) BPM
// jumps beyond MaxBPMStep, and (unless AllowKeyJumps) key jumps whose
// harmonic score is below 50.
func scoreEdge(prev, candidate *model.TrackAnalysis, phase setphase.Spec, opts OrderOptions) float64 {
	compat := theory.Compare(prev.Key, candidate.Key, prev.BPM, candidate.BPM, prev.Energy, candidate.Energy)
	score := compat.Overall

	target := (phase.EnergyLow + phase.EnergyHigh) / 2
	score -= math.Abs(candidate.Energy-target) * 40

	if opts.MaxBPMStep > 0 {
		step := math.Abs(candidate.BPM - prev.BPM)
		if step > opts.MaxBPMStep {
			penalty := (step - opts.MaxBPMStep) * 5
			if opts.AllowKeyJumps {
				penalty /= 2
			}
			score -= penalty
		}
	}

	if compat.Harmonic < 50 && !opts.AllowKeyJumps {
		score -= 20
	}

	return score
}

func toSet(ids []string) map[string]bool {
	s := make(map[string]bool, len(ids))
	for _, id := range ids {
		s[id] = true
	}
	return s
}
