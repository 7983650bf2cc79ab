package session

import (
	"context"
	"fmt"
	"strings"

	"talentscout/interview/internal/models"
)

// Store holds one interview session per id. Every method is atomic from the
// point of view of a single session.
type Store interface {
	// Create allocates a new session in the technical phase with an empty transcript.
	Create(ctx context.Context, candidate models.Candidate) (*models.Session, error)
	// Insert stores a session built by models.NewSession together with its
	// opening interviewer turns in one write. Nothing is stored on error.
	Insert(ctx context.Context, draft *models.Session) (*models.Session, error)
	Get(ctx context.Context, id string) (*models.Session, error)
	GetByCandidate(ctx context.Context, candidateID string) (*models.Session, error)
	// AppendTurn records turn in the session's current phase and returns it with
	// its sequence number assigned.
	AppendTurn(ctx context.Context, id string, turn models.Turn) (models.Turn, error)
	// AdvancePhase moves the session to next, which must be the immediate successor.
	AdvancePhase(ctx context.Context, id string, next models.Phase) error
	// Commit applies a user turn, an optional phase advance and an assistant turn
	// as one unit. Nothing is applied when any part fails.
	Commit(ctx context.Context, id string, commit Commit) (*models.Session, error)
	// SaveScores stores entries for categories that have no score yet. Existing
	// categories are left untouched.
	SaveScores(ctx context.Context, id string, entries []models.ScoreEntry) (*models.Session, error)
	// List returns every session, newest first, without transcripts.
	List(ctx context.Context) ([]*models.Session, error)
	Ping(ctx context.Context) error
}

// Commit is the transactional unit produced by one engine step.
type Commit struct {
	// ExpectedTurns guards against writers that raced past the session lock.
	ExpectedTurns int
	UserTurn      *models.Turn
	NextPhase     models.Phase
	AssistantTurn *models.Turn
}

func validateTurn(turn models.Turn) error {
	if turn.Role != models.RoleAssistant && turn.Role != models.RoleUser {
		return fmt.Errorf("%w: unknown role %q", models.ErrValidation, turn.Role)
	}
	if strings.TrimSpace(turn.Content) == "" {
		return fmt.Errorf("%w: turn content must not be empty", models.ErrValidation)
	}
	return nil
}

// checkAppend applies the append rules shared by both store implementations.
func checkAppend(phase models.Phase, turn models.Turn) error {
	if err := validateTurn(turn); err != nil {
		return err
	}
	if phase.IsTerminal() && turn.Role == models.RoleUser {
		return fmt.Errorf("%w: interview is completed, no further answers accepted", models.ErrInvalidState)
	}
	return nil
}

func checkInsert(draft *models.Session) error {
	if draft == nil || draft.ID == "" || draft.Candidate.ID == "" {
		return fmt.Errorf("%w: session and candidate ids are required", models.ErrValidation)
	}
	if err := draft.Candidate.Validate(); err != nil {
		return err
	}
	if draft.Phase != models.PhaseTechnical || len(draft.Scores) > 0 {
		return fmt.Errorf("%w: a new session starts in %s without scores", models.ErrInvalidState, models.PhaseTechnical)
	}
	for _, turn := range draft.Turns {
		if err := validateTurn(turn); err != nil {
			return err
		}
		if turn.Role != models.RoleAssistant {
			return fmt.Errorf("%w: a new session may only hold interviewer turns", models.ErrValidation)
		}
	}
	return nil
}

func checkCommit(s *models.Session, commit Commit) error {
	if len(s.Turns) != commit.ExpectedTurns {
		return fmt.Errorf("%w: expected %d turns, found %d", models.ErrConcurrentModification, commit.ExpectedTurns, len(s.Turns))
	}
	if commit.UserTurn == nil && commit.AssistantTurn == nil {
		return fmt.Errorf("%w: empty commit", models.ErrValidation)
	}
	phase := s.Phase
	if commit.UserTurn != nil {
		if err := checkAppend(phase, *commit.UserTurn); err != nil {
			return err
		}
	}
	if commit.NextPhase != "" {
		if commit.UserTurn == nil {
			return fmt.Errorf("%w: a phase advance requires the triggering answer", models.ErrInvalidTransition)
		}
		if err := models.ValidateTransition(phase, commit.NextPhase); err != nil {
			return err
		}
		phase = commit.NextPhase
	}
	if commit.AssistantTurn != nil {
		if err := checkAppend(phase, *commit.AssistantTurn); err != nil {
			return err
		}
	}
	return nil
}

func notFound(id string) error {
	return fmt.Errorf("%w: interview %s", models.ErrNotFound, id)
}
