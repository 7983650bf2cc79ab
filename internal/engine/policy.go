package engine

import (
	"fmt"

	"talentscout/interview/internal/models"
)

// Decision is what a policy wants after an answer has been recorded.
type Decision int

const (
	// Stay keeps the session in its phase.
	Stay Decision = iota
	// Advance moves the session to the next phase.
	Advance
	// Ask leaves the choice to the interviewer's verdict.
	Ask
)

func (d Decision) String() string {
	switch d {
	case Stay:
		return "stay"
	case Advance:
		return "advance"
	case Ask:
		return "ask"
	}
	return fmt.Sprintf("decision(%d)", int(d))
}

// AdvancePolicy decides phase advancement from the number of answers given
// in the current phase, the new answer included.
type AdvancePolicy interface {
	Decide(phase models.Phase, answers int) Decision
	Name() string
}

const (
	PolicyFixed    = "fixed"
	PolicyAdaptive = "adaptive"
)

// FixedPolicy advances after a set number of answers per phase.
type FixedPolicy struct {
	AnswersPerPhase int
}

func (p FixedPolicy) Decide(_ models.Phase, answers int) Decision {
	if answers >= p.AnswersPerPhase {
		return Advance
	}
	return Stay
}

func (p FixedPolicy) Name() string { return PolicyFixed }

// AdaptivePolicy stays below Min answers, advances at Max, and asks the
// interviewer in between.
type AdaptivePolicy struct {
	Min int
	Max int
}

func (p AdaptivePolicy) Decide(_ models.Phase, answers int) Decision {
	switch {
	case answers < p.Min:
		return Stay
	case answers >= p.Max:
		return Advance
	default:
		return Ask
	}
}

func (p AdaptivePolicy) Name() string { return PolicyAdaptive }

// NewPolicy builds the policy named by name.
func NewPolicy(name string, answersPerPhase, minAnswers, maxAnswers int) (AdvancePolicy, error) {
	switch name {
	case PolicyFixed, "":
		if answersPerPhase < 1 {
			return nil, fmt.Errorf("%w: answers per phase must be at least 1", models.ErrValidation)
		}
		return FixedPolicy{AnswersPerPhase: answersPerPhase}, nil
	case PolicyAdaptive:
		if minAnswers < 1 || maxAnswers < minAnswers {
			return nil, fmt.Errorf("%w: adaptive policy needs 1 <= min <= max, got %d and %d", models.ErrValidation, minAnswers, maxAnswers)
		}
		return AdaptivePolicy{Min: minAnswers, Max: maxAnswers}, nil
	}
	return nil, fmt.Errorf("%w: unknown advance policy %q", models.ErrValidation, name)
}
