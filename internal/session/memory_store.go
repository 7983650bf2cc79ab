package session

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"talentscout/interview/internal/models"
)

// MemoryStore keeps sessions in process memory. It is used when no database
// is configured and in tests.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]*models.Session
	now      func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		sessions: make(map[string]*models.Session),
		now:      time.Now,
	}
}

func (ms *MemoryStore) Create(ctx context.Context, candidate models.Candidate) (*models.Session, error) {
	draft, err := models.NewSession(candidate)
	if err != nil {
		return nil, err
	}
	return ms.Insert(ctx, draft)
}

func (ms *MemoryStore) Insert(ctx context.Context, draft *models.Session) (*models.Session, error) {
	if err := checkInsert(draft); err != nil {
		return nil, err
	}

	now := ms.now()
	s := &models.Session{
		ID:        draft.ID,
		Candidate: draft.Candidate,
		Phase:     models.PhaseTechnical,
		CreatedAt: now,
	}
	s.Candidate.TechStack = models.NormalizeTechStack(draft.Candidate.TechStack)
	s.Candidate.CreatedAt = now

	ms.mu.Lock()
	defer ms.mu.Unlock()
	if _, exists := ms.sessions[s.ID]; exists {
		return nil, fmt.Errorf("%w: interview %s already exists", models.ErrConcurrentModification, s.ID)
	}
	for _, turn := range draft.Turns {
		ms.appendLocked(s, turn)
	}
	ms.sessions[s.ID] = s
	return s.Clone(), nil
}

func (ms *MemoryStore) Get(ctx context.Context, id string) (*models.Session, error) {
	ms.mu.RLock()
	defer ms.mu.RUnlock()

	s, ok := ms.sessions[id]
	if !ok {
		return nil, notFound(id)
	}
	return s.Clone(), nil
}

func (ms *MemoryStore) GetByCandidate(ctx context.Context, candidateID string) (*models.Session, error) {
	ms.mu.RLock()
	defer ms.mu.RUnlock()

	for _, s := range ms.sessions {
		if s.Candidate.ID == candidateID {
			return s.Clone(), nil
		}
	}
	return nil, fmt.Errorf("%w: candidate %s", models.ErrNotFound, candidateID)
}

func (ms *MemoryStore) AppendTurn(ctx context.Context, id string, turn models.Turn) (models.Turn, error) {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	s, ok := ms.sessions[id]
	if !ok {
		return models.Turn{}, notFound(id)
	}
	if err := checkAppend(s.Phase, turn); err != nil {
		return models.Turn{}, err
	}
	return ms.appendLocked(s, turn), nil
}

func (ms *MemoryStore) AdvancePhase(ctx context.Context, id string, next models.Phase) error {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	s, ok := ms.sessions[id]
	if !ok {
		return notFound(id)
	}
	if err := models.ValidateTransition(s.Phase, next); err != nil {
		return err
	}
	ms.advanceLocked(s, next)
	return nil
}

func (ms *MemoryStore) Commit(ctx context.Context, id string, commit Commit) (*models.Session, error) {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	s, ok := ms.sessions[id]
	if !ok {
		return nil, notFound(id)
	}
	// validate the whole unit before touching the session
	if err := checkCommit(s, commit); err != nil {
		return nil, err
	}

	if commit.UserTurn != nil {
		ms.appendLocked(s, *commit.UserTurn)
	}
	if commit.NextPhase != "" {
		ms.advanceLocked(s, commit.NextPhase)
	}
	if commit.AssistantTurn != nil {
		ms.appendLocked(s, *commit.AssistantTurn)
	}
	return s.Clone(), nil
}

func (ms *MemoryStore) SaveScores(ctx context.Context, id string, entries []models.ScoreEntry) (*models.Session, error) {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	s, ok := ms.sessions[id]
	if !ok {
		return nil, notFound(id)
	}
	if !s.IsCompleted() {
		return nil, fmt.Errorf("%w: scores require a completed interview", models.ErrInvalidState)
	}

	existing := s.ScoreByCategory()
	for _, entry := range entries {
		if _, done := existing[entry.Category]; done {
			continue
		}
		entry.Score = models.ClampScore(entry.Score)
		s.Scores = append(s.Scores, entry)
		existing[entry.Category] = entry
	}
	models.SortScores(s.Scores)
	return s.Clone(), nil
}

func (ms *MemoryStore) List(ctx context.Context) ([]*models.Session, error) {
	ms.mu.RLock()
	out := make([]*models.Session, 0, len(ms.sessions))
	for _, s := range ms.sessions {
		summary := s.Clone()
		summary.Turns = nil
		out = append(out, summary)
	}
	ms.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (ms *MemoryStore) Ping(ctx context.Context) error {
	return nil
}

func (ms *MemoryStore) appendLocked(s *models.Session, turn models.Turn) models.Turn {
	turn.Seq = len(s.Turns) + 1
	turn.Phase = s.Phase
	turn.CreatedAt = ms.now()
	s.Turns = append(s.Turns, turn)
	return turn
}

func (ms *MemoryStore) advanceLocked(s *models.Session, next models.Phase) {
	s.Phase = next
	if next.IsTerminal() {
		completedAt := ms.now()
		s.CompletedAt = &completedAt
	}
}
