// Package llmplan implements the optional LLM planning port (spec §4.7,
// §6 "plan_transition"): a pure, advisory function the rule-based planner
// may consult before falling back to its own table. The port is never
// authoritative — internal/planner shape-validates whatever it returns
// and silently discards it on any violation.
package llmplan

import (
	"context"
	"errors"

	"github.com/cancun/autodj/internal/model"
)

// ErrUnavailable is returned by the no-op implementation so the planner's
// rule-based fallback fires unconditionally, matching the PlanInvalid /
// "LLM port not configured" path in spec §7.
var ErrUnavailable = errors.New("llmplan: no LLM backend configured")

// SetContext carries the set-level phase information (from internal/setphase)
// the LLM needs to produce a duration-appropriate plan.
type SetContext struct {
	Phase          string  `json:"phase"`
	ProgressInSet  float64 `json:"progress_in_set"`
	EnergyTarget   float64 `json:"energy_target"`
}

// Planner is the LLM planning port: Plan proposes a transition for one
// track pair, Reorder proposes a new running order for a draft set from a
// free-text instruction (spec §9 "chat-based reordering"). Both outputs
// are advisory; callers validate before trusting them.
type Planner interface {
	Plan(ctx context.Context, a, b *model.TrackAnalysis, compatOverall float64, setCtx SetContext) (*model.TransitionPlan, error)
	Reorder(ctx context.Context, analyses []*model.TrackAnalysis, instruction string) (order []string, err error)
}

// NoopPlanner always reports unavailable, used when no API key is
// configured so the worker can still run fully on the rule-based planner.
type NoopPlanner struct{}

func (NoopPlanner) Plan(context.Context, *model.TrackAnalysis, *model.TrackAnalysis, float64, SetContext) (*model.TransitionPlan, error) {
	return nil, ErrUnavailable
}

func (NoopPlanner) Reorder(context.Context, []*model.TrackAnalysis, string) ([]string, error) {
	return nil, ErrUnavailable
}
