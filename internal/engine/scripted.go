package engine

import (
	"context"
	"fmt"
	"strings"

	"talentscout/interview/internal/models"
	"talentscout/interview/internal/prompts"
)

// ScriptedInterviewer asks questions from a fixed bank. Its replies depend
// only on the request, which keeps the engine fully deterministic.
type ScriptedInterviewer struct {
	bank *prompts.QuestionBank
}

func NewScriptedInterviewer(bank *prompts.QuestionBank) *ScriptedInterviewer {
	return &ScriptedInterviewer{bank: bank}
}

func (si *ScriptedInterviewer) Name() string { return "scripted" }

func (si *ScriptedInterviewer) Respond(ctx context.Context, req Request) (*Reply, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	d := req.Data
	switch req.Variant {
	case prompts.VariantOpening:
		return si.render(d, si.bank.Opening, si.bank.Intro(d.Phase), si.bank.Question(d.Phase, 0))
	case prompts.VariantFollowUp:
		return si.render(d, si.bank.Question(d.Phase, d.AnswersInPhase))
	case prompts.VariantAdvance:
		return si.advance(d)
	case prompts.VariantClosing:
		return si.render(d, si.bank.Closing)
	case prompts.VariantDecide:
		if wordCount(req.Answer) < si.bank.MinWordsToAdvance {
			return si.render(d, si.bank.Question(d.Phase, d.AnswersInPhase))
		}
		reply, err := si.advance(d)
		if err != nil {
			return nil, err
		}
		reply.Advance = true
		return reply, nil
	}
	return nil, fmt.Errorf("scripted interviewer: unknown variant %q", req.Variant)
}

func (si *ScriptedInterviewer) advance(d prompts.InterviewData) (*Reply, error) {
	if d.NextPhase == string(models.PhaseCompleted) {
		return si.render(d, si.bank.Closing)
	}
	return si.render(d, "Thank you.", si.bank.Intro(d.NextPhase), si.bank.Question(d.NextPhase, 0))
}

func (si *ScriptedInterviewer) render(data prompts.InterviewData, parts ...string) (*Reply, error) {
	rendered := make([]string, 0, len(parts))
	for _, part := range parts {
		if strings.TrimSpace(part) == "" {
			continue
		}
		text, err := prompts.Render(part, data)
		if err != nil {
			return nil, err
		}
		rendered = append(rendered, text)
	}
	return &Reply{Content: strings.Join(rendered, " ")}, nil
}

func wordCount(s string) int {
	return len(strings.Fields(s))
}
