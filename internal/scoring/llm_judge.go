package scoring

import (
	"context"
	"fmt"
	"math"
	"strings"

	"talentscout/interview/internal/llm"
	"talentscout/interview/internal/models"
	"talentscout/interview/internal/prompts"
)

// LLMJudge asks a language model to score a phase. Repeated runs may differ,
// which is why computed scores are stored and never recomputed.
type LLMJudge struct {
	provider llm.Provider
	prompts  prompts.PromptProvider
}

func NewLLMJudge(provider llm.Provider, promptProvider prompts.PromptProvider) *LLMJudge {
	return &LLMJudge{provider: provider, prompts: promptProvider}
}

func (j *LLMJudge) Name() string { return j.provider.GetProviderName() }

func (j *LLMJudge) Evaluate(ctx context.Context, req JudgeRequest) (map[string]Evaluation, error) {
	data := prompts.JudgeData{
		Phase:      string(req.Phase),
		PhaseGoal:  prompts.PhaseGoal(string(req.Phase)),
		Categories: strings.Join(req.Categories, ", "),
		Transcript: FormatPairs(req.Pairs),
	}
	if req.Session != nil {
		data.Name = req.Session.Candidate.Name
		data.Position = req.Session.Candidate.Position
		data.Experience = req.Session.Candidate.Experience
		data.TechStack = req.Session.Candidate.TechStack.String()
	}

	prompt, err := j.prompts.BuildPrompt(prompts.ModeJudge, prompts.VariantEvaluate, data)
	if err != nil {
		return nil, fmt.Errorf("failed to build judge prompt: %w", err)
	}

	resp, err := j.provider.GenerateContent(ctx, prompt, req.RequestID)
	if err != nil {
		return nil, err
	}

	return ParseEvaluations(resp.Content, req.Categories)
}

// ParseEvaluations reads a judge reply. Each category may map to an object
// with score and assessment, or directly to a number. Categories without a
// usable score are left out.
func ParseEvaluations(raw string, categories []string) (map[string]Evaluation, error) {
	data, ok := llm.ParseObject(raw)
	if !ok {
		return nil, fmt.Errorf("%w: judge reply is not a JSON object", models.ErrCollaborator)
	}
	if nested, ok := data["scores"].(map[string]any); ok {
		data = nested
	}

	out := make(map[string]Evaluation, len(categories))
	for _, category := range categories {
		value, ok := data[category]
		if !ok {
			continue
		}

		var eval Evaluation
		if obj, ok := value.(map[string]any); ok {
			eval.Score = llm.CoerceFloat(obj["score"])
			eval.Assessment = llm.CoerceString(obj["assessment"])
		} else {
			eval.Score = llm.CoerceFloat(value)
		}
		if math.IsNaN(eval.Score) {
			continue
		}
		eval.Score = models.ClampScore(eval.Score)
		out[category] = eval
	}
	return out, nil
}
