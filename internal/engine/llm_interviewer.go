package engine

import (
	"context"
	"fmt"
	"math"
	"strings"

	"go.uber.org/zap"

	"talentscout/interview/internal/llm"
	"talentscout/interview/internal/models"
	"talentscout/interview/internal/prompts"
)

// LLMInterviewer asks a language model for every assistant turn. Model output
// is not reproducible, so sessions driven by it are not deterministic.
type LLMInterviewer struct {
	provider llm.Provider
	prompts  prompts.PromptProvider
	logger   *zap.Logger
}

func NewLLMInterviewer(provider llm.Provider, promptProvider prompts.PromptProvider, logger *zap.Logger) *LLMInterviewer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LLMInterviewer{provider: provider, prompts: promptProvider, logger: logger}
}

func (li *LLMInterviewer) Name() string { return li.provider.GetProviderName() }

func (li *LLMInterviewer) Respond(ctx context.Context, req Request) (*Reply, error) {
	prompt, err := li.prompts.BuildPrompt(prompts.ModeInterviewer, req.Variant, req.Data)
	if err != nil {
		return nil, fmt.Errorf("failed to build interviewer prompt: %w", err)
	}

	resp, err := li.provider.GenerateContent(ctx, prompt, req.RequestID)
	if err != nil {
		return nil, err
	}

	reply := ParseReply(resp.Content)
	if reply.Content == "" {
		return nil, fmt.Errorf("%w: interviewer returned an empty reply", models.ErrCollaborator)
	}
	if req.Variant != prompts.VariantDecide {
		reply.Advance = false
	}

	li.logger.Debug("interviewer reply",
		zap.String("provider", li.provider.GetProviderName()),
		zap.String("request_id", req.RequestID),
		zap.String("variant", req.Variant),
		zap.Bool("advance", reply.Advance),
	)
	return reply, nil
}

// ParseReply reads a model reply. JSON objects, fenced or not, supply the
// reply fields; anything else is used verbatim as the reply without advancing.
func ParseReply(raw string) *Reply {
	data, ok := llm.ParseObject(raw)
	if !ok {
		return &Reply{Content: strings.TrimSpace(raw)}
	}

	content := llm.CoerceString(data["reply"])
	if content == "" {
		content = llm.CoerceString(data["message"])
	}
	if content == "" {
		return &Reply{Content: strings.TrimSpace(raw)}
	}

	reply := &Reply{
		Content:    content,
		Advance:    llm.CoerceBool(data["advance"]),
		Assessment: llm.CoerceString(data["assessment"]),
	}
	if score := llm.CoerceFloat(data["score"]); !math.IsNaN(score) {
		clamped := models.ClampScore(score)
		reply.Score = &clamped
	}
	return reply
}
