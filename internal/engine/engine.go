package engine

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"talentscout/interview/internal/models"
	"talentscout/interview/internal/prompts"
)

// Request is everything an interviewer sees for one turn.
type Request struct {
	// Variant is one of the prompts interviewer variants.
	Variant   string
	RequestID string
	Answer    string
	Data      prompts.InterviewData
}

// Reply is an interviewer's answer to a Request.
type Reply struct {
	Content string
	// Advance is the interviewer's verdict for VariantDecide requests.
	Advance    bool
	Score      *float64
	Assessment string
}

// Interviewer produces assistant turns.
type Interviewer interface {
	Respond(ctx context.Context, req Request) (*Reply, error)
	Name() string
}

// Outcome is the result of one engine step. It is not applied to any store.
type Outcome struct {
	Reply string
	// NextPhase is empty when the phase did not change.
	NextPhase  models.Phase
	Variant    string
	Score      *float64
	Assessment string
}

// Engine turns a session snapshot plus an answer into the next assistant
// turn and phase. It never mutates the session it is given.
type Engine struct {
	interviewer Interviewer
	policy      AdvancePolicy
	logger      *zap.Logger
}

func New(interviewer Interviewer, policy AdvancePolicy, logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{interviewer: interviewer, policy: policy, logger: logger}
}

func (e *Engine) Policy() AdvancePolicy { return e.policy }

func (e *Engine) Interviewer() Interviewer { return e.interviewer }

// Open produces the greeting and first technical question for a fresh session.
func (e *Engine) Open(ctx context.Context, s *models.Session) (*Outcome, error) {
	if len(s.Turns) > 0 {
		return nil, fmt.Errorf("%w: interview %s was already opened", models.ErrInvalidState, s.ID)
	}
	if s.Phase != models.PhaseTechnical {
		return nil, fmt.Errorf("%w: interview %s is not in the first phase", models.ErrInvalidState, s.ID)
	}

	req := Request{
		Variant:   prompts.VariantOpening,
		RequestID: requestID(s, 0),
		Data:      interviewData(s, s.Phase, 0, ""),
	}
	reply, err := e.interviewer.Respond(ctx, req)
	if err != nil {
		return nil, err
	}
	if err := checkReply(reply); err != nil {
		return nil, err
	}
	return &Outcome{Reply: reply.Content, Variant: req.Variant}, nil
}

// Step handles one candidate answer. The answer is counted against the
// current phase before the policy decides.
func (e *Engine) Step(ctx context.Context, s *models.Session, answer string) (*Outcome, error) {
	if s.IsCompleted() {
		return nil, fmt.Errorf("%w: interview %s is completed", models.ErrInvalidState, s.ID)
	}
	answer = strings.TrimSpace(answer)
	if answer == "" {
		return nil, fmt.Errorf("%w: answer must not be empty", models.ErrValidation)
	}

	phase := s.Phase
	next, ok := phase.Next()
	if !ok {
		return nil, fmt.Errorf("%w: phase %s has no successor", models.ErrInvalidState, phase)
	}
	answers := s.AnswersInPhase(phase) + 1
	decision := e.policy.Decide(phase, answers)

	req := Request{
		RequestID: requestID(s, len(s.Turns)+1),
		Answer:    answer,
		Data:      interviewData(s, phase, answers, answer),
	}
	switch decision {
	case Stay:
		req.Variant = prompts.VariantFollowUp
	case Advance:
		req.Variant = prompts.VariantAdvance
		if next.IsTerminal() {
			req.Variant = prompts.VariantClosing
		}
	default:
		req.Variant = prompts.VariantDecide
	}

	reply, err := e.interviewer.Respond(ctx, req)
	if err != nil {
		return nil, err
	}
	if err := checkReply(reply); err != nil {
		return nil, err
	}

	out := &Outcome{
		Reply:      reply.Content,
		Variant:    req.Variant,
		Score:      reply.Score,
		Assessment: reply.Assessment,
	}
	if decision == Advance || (decision == Ask && reply.Advance) {
		out.NextPhase = next
	}

	e.logger.Debug("engine step",
		zap.String("interview_id", s.ID),
		zap.String("phase", string(phase)),
		zap.Int("answers", answers),
		zap.Stringer("decision", decision),
		zap.String("next_phase", string(out.NextPhase)),
	)
	return out, nil
}

func checkReply(reply *Reply) error {
	if reply == nil || strings.TrimSpace(reply.Content) == "" {
		return fmt.Errorf("%w: interviewer returned an empty reply", models.ErrCollaborator)
	}
	reply.Content = strings.TrimSpace(reply.Content)
	if reply.Score != nil {
		clamped := models.ClampScore(*reply.Score)
		reply.Score = &clamped
	}
	return nil
}

func requestID(s *models.Session, seq int) string {
	return fmt.Sprintf("%s-%d", s.ID, seq)
}

func interviewData(s *models.Session, phase models.Phase, answers int, answer string) prompts.InterviewData {
	data := prompts.InterviewData{
		Name:           s.Candidate.Name,
		FirstName:      s.Candidate.FirstName(),
		Position:       s.Candidate.Position,
		Experience:     s.Candidate.Experience,
		Location:       s.Candidate.Location,
		TechStack:      s.Candidate.TechStack.String(),
		Phase:          string(phase),
		PhaseGoal:      prompts.PhaseGoal(string(phase)),
		AnswersInPhase: answers,
		Transcript:     FormatTranscript(s.Turns, answer),
		LastAnswer:     answer,
	}
	if next, ok := phase.Next(); ok {
		data.NextPhase = string(next)
		data.NextPhaseGoal = prompts.PhaseGoal(string(next))
	}
	return data
}

// FormatTranscript renders turns as speaker-labelled lines. A non-empty
// pending answer is appended as the latest candidate line.
func FormatTranscript(turns []models.Turn, pending string) string {
	lines := make([]string, 0, len(turns)+1)
	for _, turn := range turns {
		lines = append(lines, speaker(turn.Role)+": "+turn.Content)
	}
	if pending != "" {
		lines = append(lines, speaker(models.RoleUser)+": "+pending)
	}
	return strings.Join(lines, "\n")
}

func speaker(role models.Role) string {
	if role == models.RoleUser {
		return "Candidate"
	}
	return "Interviewer"
}
