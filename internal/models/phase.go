package models

import (
	"fmt"
	"strings"
)

// Phase is a stage of the interview's linear progression.
type Phase string

const (
	PhaseTechnical      Phase = "technical"
	PhaseProject        Phase = "project"
	PhaseProblemSolving Phase = "problem_solving"
	PhaseBehavioral     Phase = "behavioral"
	PhaseCompleted      Phase = "completed"
)

var phaseOrder = []Phase{
	PhaseTechnical,
	PhaseProject,
	PhaseProblemSolving,
	PhaseBehavioral,
	PhaseCompleted,
}

// Phases returns every phase in progression order, terminal phase last.
func Phases() []Phase {
	out := make([]Phase, len(phaseOrder))
	copy(out, phaseOrder)
	return out
}

// InterviewPhases returns the phases in which the candidate answers questions.
func InterviewPhases() []Phase {
	return Phases()[:len(phaseOrder)-1]
}

// Index is the position of p in the progression, or -1 for unknown phases.
func (p Phase) Index() int {
	for i, candidate := range phaseOrder {
		if candidate == p {
			return i
		}
	}
	return -1
}

func (p Phase) IsValid() bool {
	return p.Index() >= 0
}

func (p Phase) IsTerminal() bool {
	return p == PhaseCompleted
}

// Next returns the immediate successor. ok is false for the terminal phase
// and for unknown phases.
func (p Phase) Next() (next Phase, ok bool) {
	idx := p.Index()
	if idx < 0 || idx == len(phaseOrder)-1 {
		return "", false
	}
	return phaseOrder[idx+1], true
}

func (p Phase) String() string {
	return string(p)
}

// ParsePhase accepts any casing and surrounding whitespace.
func ParsePhase(raw string) (Phase, error) {
	p := Phase(strings.ToLower(strings.TrimSpace(raw)))
	if !p.IsValid() {
		return "", fmt.Errorf("%w: unknown phase %q", ErrValidation, raw)
	}
	return p, nil
}

// ValidateTransition allows only a move to the immediate successor.
func ValidateTransition(from, to Phase) error {
	if !from.IsValid() || !to.IsValid() {
		return fmt.Errorf("%w: %q -> %q", ErrInvalidTransition, from, to)
	}
	next, ok := from.Next()
	if !ok || next != to {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, from, to)
	}
	return nil
}
