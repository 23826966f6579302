package llmplan

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/cancun/autodj/internal/model"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/responses"
)

// OpenAIPlanner calls the Responses API with a JSON-schema-constrained
// output, following the request/response shape
// Conceptual-Machines-magda-api's provider uses
// (openai.NewClient(option.WithAPIKey(...)), responses.ResponseNewParams,
// client.Responses.New, resp.OutputText()) stripped of that repo's
// CFG/MCP/streaming machinery, which spec §4.7 has no use for.
type OpenAIPlanner struct {
	client *openai.Client
	model  string
	logger *slog.Logger
}

// NewOpenAIPlanner builds a planner against the given model name (e.g.
// "gpt-4o-mini"); apiKey is also read from OPENAI_API_KEY by the SDK's
// default option chain if empty.
func NewOpenAIPlanner(apiKey, modelName string, logger *slog.Logger) *OpenAIPlanner {
	if logger == nil {
		logger = slog.Default()
	}
	opts := []option.RequestOption{}
	if apiKey != "" {
		opts = append(opts, option.WithAPIKey(apiKey))
	}
	client := openai.NewClient(opts...)
	return &OpenAIPlanner{client: &client, model: modelName, logger: logger}
}

var planSchema = map[string]any{
	"type": "object",
	"properties": map[string]any{
		"type":           map[string]any{"type": "string", "enum": []string{"STEM_BLEND", "CROSSFADE", "HARD_CUT", "FILTER_SWEEP", "ECHO_OUT"}},
		"duration_bars":  map[string]any{"type": "integer"},
		"start_time_in_a": map[string]any{"type": "number"},
		"start_from_b":   map[string]any{"type": "number"},
		"bass_swap_bar":  map[string]any{"type": "integer"},
		"confidence":     map[string]any{"type": "number"},
	},
	"required":             []string{"type", "duration_bars", "start_time_in_a", "start_from_b", "confidence"},
	"additionalProperties": false,
}

// Plan asks the model to propose a transition plan for the pair, given the
// rule-based compatibility score and set context as grounding context; the
// response is decoded into model.TransitionPlan but NOT validated here —
// internal/planner.PlanTransition owns validation and fallback.
func (p *OpenAIPlanner) Plan(ctx context.Context, a, b *model.TrackAnalysis, compatOverall float64, setCtx SetContext) (*model.TransitionPlan, error) {
	prompt := fmt.Sprintf(
		"Track A: bpm=%.1f key=%s energy=%.2f duration=%.0fs. Track B: bpm=%.1f key=%s energy=%.2f. "+
			"Rule-based compatibility score: %.1f/100. Set phase: %s (progress %.2f, energy target %.2f). "+
			"Propose a transition plan as JSON matching the schema.",
		a.BPM, a.Key, a.Energy, a.DurationSec, b.BPM, b.Key, b.Energy,
		compatOverall, setCtx.Phase, setCtx.ProgressInSet, setCtx.EnergyTarget)

	params := responses.ResponseNewParams{
		Model: p.model,
		Input: responses.ResponseNewParamsInputUnion{
			OfInputItemList: responses.ResponseInputParam{
				responses.ResponseInputItemParamOfMessage(prompt, responses.EasyInputMessageRoleUser),
			},
		},
		Instructions: openai.String("You are a DJ transition planner. Respond only with the requested JSON object."),
		Text: responses.ResponseTextConfigParam{
			Format: responses.ResponseFormatTextConfigParamOfJSONSchema("transition_plan", planSchema),
		},
	}

	resp, err := p.client.Responses.New(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("llmplan: openai request failed: %w", err)
	}

	var raw struct {
		Type          string  `json:"type"`
		DurationBars  int     `json:"duration_bars"`
		StartTimeInA  float64 `json:"start_time_in_a"`
		StartFromB    float64 `json:"start_from_b"`
		BassSwapBar   int     `json:"bass_swap_bar"`
		Confidence    float64 `json:"confidence"`
	}
	if err := json.Unmarshal([]byte(resp.OutputText()), &raw); err != nil {
		p.logger.Warn("llmplan: failed to decode model output", "error", err)
		return nil, fmt.Errorf("llmplan: decode response: %w", err)
	}

	return &model.TransitionPlan{
		Type:         model.TransitionType(raw.Type),
		DurationBars: raw.DurationBars,
		StartTimeInA: raw.StartTimeInA,
		StartFromB:   raw.StartFromB,
		BassSwapBar:  raw.BassSwapBar,
		Confidence:   raw.Confidence,
	}, nil
}

// Reorder asks the model to permute the track list per a free-text
// instruction (spec §9 "chat-based reordering"); the caller validates the
// returned IDs are a permutation of the input before trusting it.
func (p *OpenAIPlanner) Reorder(ctx context.Context, analyses []*model.TrackAnalysis, instruction string) ([]string, error) {
	ids := make([]string, len(analyses))
	for i, a := range analyses {
		ids[i] = a.TrackID
	}
	prompt := fmt.Sprintf("Current track order: %v. Instruction: %q. Return the reordered list of track_ids as a JSON array of strings, using only IDs from the input.", ids, instruction)

	params := responses.ResponseNewParams{
		Model: p.model,
		Input: responses.ResponseNewParamsInputUnion{
			OfInputItemList: responses.ResponseInputParam{
				responses.ResponseInputItemParamOfMessage(prompt, responses.EasyInputMessageRoleUser),
			},
		},
		Instructions: openai.String("You are a DJ set curator. Respond only with a JSON array of track_id strings."),
	}

	resp, err := p.client.Responses.New(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("llmplan: openai request failed: %w", err)
	}

	var order []string
	if err := json.Unmarshal([]byte(resp.OutputText()), &order); err != nil {
		return nil, fmt.Errorf("llmplan: decode reorder response: %w", err)
	}
	return order, nil
}
