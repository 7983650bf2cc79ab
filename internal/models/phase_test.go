package models

import (
	"errors"
	"testing"
)

func TestPhaseOrder(t *testing.T) {
	phases := Phases()
	if len(phases) != 5 || phases[0] != PhaseTechnical || phases[4] != PhaseCompleted {
		t.Fatalf("unexpected phase order: %v", phases)
	}
	if got := InterviewPhases(); len(got) != 4 || got[3] != PhaseBehavioral {
		t.Fatalf("unexpected interview phases: %v", got)
	}

	for i, p := range phases {
		if p.Index() != i {
			t.Fatalf("expected %s at %d, got %d", p, i, p.Index())
		}
	}
	if Phase("bogus").Index() != -1 {
		t.Fatal("expected unknown phase index -1")
	}
}

func TestPhaseNext(t *testing.T) {
	next, ok := PhaseTechnical.Next()
	if !ok || next != PhaseProject {
		t.Fatalf("expected project after technical, got %s", next)
	}
	next, ok = PhaseBehavioral.Next()
	if !ok || next != PhaseCompleted {
		t.Fatalf("expected completed after behavioral, got %s", next)
	}
	if _, ok := PhaseCompleted.Next(); ok {
		t.Fatal("completed must not have a successor")
	}
	if _, ok := Phase("bogus").Next(); ok {
		t.Fatal("unknown phase must not have a successor")
	}
}

func TestValidateTransition(t *testing.T) {
	cases := []struct {
		from, to Phase
		ok       bool
	}{
		{PhaseTechnical, PhaseProject, true},
		{PhaseProject, PhaseProblemSolving, true},
		{PhaseBehavioral, PhaseCompleted, true},
		{PhaseTechnical, PhaseProblemSolving, false},
		{PhaseProject, PhaseTechnical, false},
		{PhaseTechnical, PhaseTechnical, false},
		{PhaseCompleted, PhaseTechnical, false},
		{Phase("x"), PhaseProject, false},
	}
	for _, tc := range cases {
		err := ValidateTransition(tc.from, tc.to)
		if tc.ok && err != nil {
			t.Fatalf("%s -> %s: unexpected error %v", tc.from, tc.to, err)
		}
		if !tc.ok && !errors.Is(err, ErrInvalidTransition) {
			t.Fatalf("%s -> %s: expected ErrInvalidTransition, got %v", tc.from, tc.to, err)
		}
	}
}

func TestParsePhase(t *testing.T) {
	p, err := ParsePhase("  Problem_Solving ")
	if err != nil || p != PhaseProblemSolving {
		t.Fatalf("expected problem_solving, got %s (%v)", p, err)
	}
	if _, err := ParsePhase("coding"); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestClampScore(t *testing.T) {
	nan := 0.0
	nan = nan / nan
	cases := map[float64]float64{-1: 0, 0: 0, 7.5: 7.5, 10: 10, 12: 10, nan: 0}
	for in, want := range cases {
		if got := ClampScore(in); got != want {
			t.Fatalf("ClampScore(%v) = %v, want %v", in, got, want)
		}
	}
}
