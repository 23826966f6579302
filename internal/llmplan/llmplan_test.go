package llmplan

import (
	"context"
	"errors"
	"testing"

	"github.com/cancun/autodj/internal/model"
)

func TestNoopPlannerAlwaysUnavailable(t *testing.T) {
	p := NoopPlanner{}
	_, err := p.Plan(context.Background(), &model.TrackAnalysis{}, &model.TrackAnalysis{}, 80, SetContext{Phase: "BUILD"})
	if !errors.Is(err, ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable, got %v", err)
	}
	_, err = p.Reorder(context.Background(), nil, "start low, end high")
	if !errors.Is(err, ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable, got %v", err)
	}
}
