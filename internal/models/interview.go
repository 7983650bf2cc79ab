package models

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

type Role string

const (
	RoleAssistant Role = "assistant"
	RoleUser      Role = "user"
)

// Candidate statuses as reported to the admin dashboard.
const (
	CandidateStatusInProgress = "In Progress"
	CandidateStatusCompleted  = "Completed"
)

// TechStack is an ordered set of tags. It decodes from either a JSON array
// or a comma separated string.
type TechStack []string

func (ts *TechStack) UnmarshalJSON(data []byte) error {
	var list []string
	if err := json.Unmarshal(data, &list); err == nil {
		*ts = NormalizeTechStack(list)
		return nil
	}

	var joined string
	if err := json.Unmarshal(data, &joined); err != nil {
		return fmt.Errorf("tech_stack must be a list or a comma separated string")
	}
	*ts = NormalizeTechStack(strings.Split(joined, ","))
	return nil
}

func (ts TechStack) String() string {
	return strings.Join(ts, ", ")
}

// NormalizeTechStack trims entries, drops empties and removes duplicates
// while keeping first-seen order.
func NormalizeTechStack(tags []string) TechStack {
	seen := make(map[string]bool, len(tags))
	out := make(TechStack, 0, len(tags))
	for _, tag := range tags {
		tag = strings.TrimSpace(tag)
		key := strings.ToLower(tag)
		if tag == "" || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, tag)
	}
	return out
}

type Candidate struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	Email      string    `json:"email"`
	Phone      string    `json:"phone"`
	Experience float64   `json:"experience"`
	Position   string    `json:"position"`
	Location   string    `json:"location,omitempty"`
	TechStack  TechStack `json:"tech_stack"`
	CreatedAt  time.Time `json:"created_at"`
}

// Validate enforces the invariants the session store relies on.
func (c *Candidate) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return fmt.Errorf("%w: candidate name is required", ErrValidation)
	}
	if c.Experience < 0 {
		return fmt.Errorf("%w: experience must not be negative", ErrValidation)
	}
	if len(NormalizeTechStack(c.TechStack)) == 0 {
		return fmt.Errorf("%w: tech_stack must not be empty", ErrValidation)
	}
	return nil
}

// FirstName is used when the interviewer addresses the candidate.
func (c *Candidate) FirstName() string {
	fields := strings.Fields(c.Name)
	if len(fields) == 0 {
		return "there"
	}
	return fields[0]
}

// Turn is one transcript entry. Score and Assessment are the interviewer's
// per-answer judgement and are only set on user turns.
type Turn struct {
	Seq        int       `json:"seq"`
	Role       Role      `json:"role"`
	Content    string    `json:"content"`
	Phase      Phase     `json:"step"`
	RequestID  string    `json:"-"`
	Score      *float64  `json:"score,omitempty"`
	Assessment string    `json:"assessment,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

type ScoreEntry struct {
	Category   string  `json:"category"`
	Score      float64 `json:"score"`
	Assessment string  `json:"assessment,omitempty"`
}

// Session is one interview. Turns is append-only and ordered by Seq.
type Session struct {
	ID          string       `json:"interview_id"`
	Candidate   Candidate    `json:"candidate"`
	Phase       Phase        `json:"current_step"`
	Turns       []Turn       `json:"messages"`
	Scores      []ScoreEntry `json:"scores,omitempty"`
	CreatedAt   time.Time    `json:"created_at"`
	CompletedAt *time.Time   `json:"completed_at,omitempty"`
}

// NewSession validates candidate and returns an unsaved session in the first
// phase with fresh ids and an empty transcript.
func NewSession(candidate Candidate) (*Session, error) {
	if err := candidate.Validate(); err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	candidate.ID = uuid.New().String()
	candidate.TechStack = NormalizeTechStack(candidate.TechStack)
	candidate.CreatedAt = now
	return &Session{
		ID:        uuid.New().String(),
		Candidate: candidate,
		Phase:     PhaseTechnical,
		CreatedAt: now,
	}, nil
}

func (s *Session) IsCompleted() bool {
	return s.Phase == PhaseCompleted
}

// CandidateStatus derives the dashboard status from the session phase.
func (s *Session) CandidateStatus() string {
	if s.IsCompleted() {
		return CandidateStatusCompleted
	}
	return CandidateStatusInProgress
}

// AnswersInPhase counts the user turns recorded while p was active.
func (s *Session) AnswersInPhase(p Phase) int {
	count := 0
	for _, turn := range s.Turns {
		if turn.Role == RoleUser && turn.Phase == p {
			count++
		}
	}
	return count
}

// TurnsInPhase returns the turns recorded while p was active, in order.
func (s *Session) TurnsInPhase(p Phase) []Turn {
	var out []Turn
	for _, turn := range s.Turns {
		if turn.Phase == p {
			out = append(out, turn)
		}
	}
	return out
}

// LastTurn returns the most recent turn, or nil for an empty transcript.
func (s *Session) LastTurn() *Turn {
	if len(s.Turns) == 0 {
		return nil
	}
	return &s.Turns[len(s.Turns)-1]
}

// TurnByRequestID finds the user turn recorded for a client request id.
func (s *Session) TurnByRequestID(requestID string) (int, bool) {
	if requestID == "" {
		return -1, false
	}
	for i, turn := range s.Turns {
		if turn.Role == RoleUser && turn.RequestID == requestID {
			return i, true
		}
	}
	return -1, false
}

// ScoreByCategory indexes the computed entries.
func (s *Session) ScoreByCategory() map[string]ScoreEntry {
	out := make(map[string]ScoreEntry, len(s.Scores))
	for _, entry := range s.Scores {
		out[entry.Category] = entry
	}
	return out
}

// FinalScore is the mean of the computed entries; ok is false when none exist.
func (s *Session) FinalScore() (score float64, ok bool) {
	if len(s.Scores) == 0 {
		return 0, false
	}
	total := 0.0
	for _, entry := range s.Scores {
		total += entry.Score
	}
	return total / float64(len(s.Scores)), true
}

// Clone returns a deep copy so callers never share transcript slices with a store.
func (s *Session) Clone() *Session {
	if s == nil {
		return nil
	}
	out := *s
	out.Candidate.TechStack = append(TechStack(nil), s.Candidate.TechStack...)
	out.Turns = append([]Turn(nil), s.Turns...)
	for i := range out.Turns {
		if score := out.Turns[i].Score; score != nil {
			copied := *score
			out.Turns[i].Score = &copied
		}
	}
	out.Scores = append([]ScoreEntry(nil), s.Scores...)
	if s.CompletedAt != nil {
		completedAt := *s.CompletedAt
		out.CompletedAt = &completedAt
	}
	return &out
}

// CandidateStats is derived from the session set and never stored.
type CandidateStats struct {
	TotalCandidates     int     `json:"total_candidates"`
	CompletedInterviews int     `json:"completed_interviews"`
	AvgScore            float64 `json:"avg_score"`
}
