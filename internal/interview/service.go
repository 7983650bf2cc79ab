package interview

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"talentscout/interview/internal/engine"
	"talentscout/interview/internal/metrics"
	"talentscout/interview/internal/models"
	"talentscout/interview/internal/scoring"
	"talentscout/interview/internal/session"
)

// Service is the session API surface. It serializes work per interview
// through the locker and applies engine outcomes to the store in one commit.
type Service struct {
	store      session.Store
	locker     session.Locker
	engine     *engine.Engine
	aggregator *scoring.Aggregator
	logger     *zap.Logger
}

func NewService(store session.Store, locker session.Locker, eng *engine.Engine, aggregator *scoring.Aggregator, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	if locker == nil {
		locker = session.NewLocalLocker(session.LockQueue)
	}
	return &Service{
		store:      store,
		locker:     locker,
		engine:     eng,
		aggregator: aggregator,
		logger:     logger,
	}
}

func (s *Service) Store() session.Store { return s.store }

func (s *Service) Engine() *engine.Engine { return s.engine }

func (s *Service) Aggregator() *scoring.Aggregator { return s.aggregator }

// Start asks the interviewer for a greeting and stores the new session
// together with it. Nothing is stored when the interviewer fails, so a
// timed-out start can be retried.
func (s *Service) Start(ctx context.Context, candidate models.Candidate) (*models.StartInterviewResponse, error) {
	draft, err := models.NewSession(candidate)
	if err != nil {
		return nil, err
	}

	started := time.Now()
	out, err := s.engine.Open(ctx, draft)
	s.recordCollaborator("interviewer", err, started)
	if err != nil {
		s.logger.Error("failed to open interview",
			zap.String("interview_id", draft.ID),
			zap.Error(err))
		return nil, err
	}

	draft.Turns = []models.Turn{{Role: models.RoleAssistant, Content: out.Reply}}
	// the session is stored even when the client has already gone away
	sess, err := s.store.Insert(context.WithoutCancel(ctx), draft)
	if err != nil {
		return nil, err
	}

	metrics.RecordInterviewStarted()
	s.logger.Info("interview started",
		zap.String("interview_id", sess.ID),
		zap.String("candidate_id", sess.Candidate.ID),
		zap.String("interviewer", s.engine.Interviewer().Name()))

	return &models.StartInterviewResponse{
		InterviewID: sess.ID,
		CandidateID: sess.Candidate.ID,
		Message:     out.Reply,
		CurrentStep: sess.Phase,
	}, nil
}

// Message handles one candidate answer. A request id that was already
// applied returns the recorded reply without touching the transcript.
func (s *Service) Message(ctx context.Context, id, content, requestID string) (*models.MessageResponse, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, fmt.Errorf("%w: content must not be empty", models.ErrValidation)
	}

	unlock, err := s.locker.Lock(ctx, id)
	if err != nil {
		metrics.RecordMessage(metrics.ResultError)
		return nil, err
	}
	defer unlock()

	sess, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if idx, ok := sess.TurnByRequestID(requestID); ok {
		resp, err := replay(sess, idx)
		if err != nil {
			return nil, err
		}
		metrics.RecordMessage(metrics.ResultReplayed)
		s.logger.Info("replayed message",
			zap.String("interview_id", id),
			zap.String("request_id", requestID))
		return resp, nil
	}

	if sess.IsCompleted() {
		metrics.RecordMessage(metrics.ResultError)
		return nil, fmt.Errorf("%w: interview %s is completed", models.ErrInvalidState, id)
	}
	if len(sess.Turns) == 0 {
		metrics.RecordMessage(metrics.ResultError)
		return nil, fmt.Errorf("%w: interview %s has no opening question", models.ErrInvalidState, id)
	}

	started := time.Now()
	out, err := s.engine.Step(ctx, sess, content)
	s.recordCollaborator("interviewer", err, started)
	if err != nil {
		metrics.RecordMessage(resultOf(err))
		s.logger.Warn("engine step failed",
			zap.String("interview_id", id),
			zap.String("phase", string(sess.Phase)),
			zap.Error(err))
		return nil, err
	}

	commit := session.Commit{
		ExpectedTurns: len(sess.Turns),
		UserTurn: &models.Turn{
			Role:       models.RoleUser,
			Content:    content,
			RequestID:  requestID,
			Score:      out.Score,
			Assessment: out.Assessment,
		},
		NextPhase:     out.NextPhase,
		AssistantTurn: &models.Turn{Role: models.RoleAssistant, Content: out.Reply},
	}
	// a cancelled client must not leave the answer without its reply
	if _, err := s.store.Commit(context.WithoutCancel(ctx), id, commit); err != nil {
		metrics.RecordMessage(metrics.ResultError)
		return nil, err
	}

	metrics.RecordMessage(metrics.ResultOK)
	resp := &models.MessageResponse{Message: out.Reply}
	if out.NextPhase != "" {
		resp.CurrentStep = out.NextPhase
		metrics.RecordPhaseTransition(string(sess.Phase), string(out.NextPhase))
		if out.NextPhase.IsTerminal() {
			metrics.RecordInterviewCompleted()
		}
		s.logger.Info("interview advanced",
			zap.String("interview_id", id),
			zap.String("phase", string(sess.Phase)),
			zap.String("next_phase", string(out.NextPhase)),
			zap.String("variant", out.Variant))
	}
	return resp, nil
}

func replay(sess *models.Session, idx int) (*models.MessageResponse, error) {
	if idx+1 >= len(sess.Turns) || sess.Turns[idx+1].Role != models.RoleAssistant {
		return nil, fmt.Errorf("%w: request has no recorded reply", models.ErrInvalidState)
	}
	answer, reply := sess.Turns[idx], sess.Turns[idx+1]
	resp := &models.MessageResponse{Message: reply.Content}
	if reply.Phase != answer.Phase {
		resp.CurrentStep = reply.Phase
	}
	return resp, nil
}

func (s *Service) Status(ctx context.Context, id string) (*models.StatusResponse, error) {
	sess, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	messages := make([]models.TranscriptMessage, 0, len(sess.Turns))
	for _, turn := range sess.Turns {
		messages = append(messages, models.TranscriptMessage{
			Role:    turn.Role,
			Content: turn.Content,
			Step:    turn.Phase,
		})
	}
	return &models.StatusResponse{
		InterviewID:   sess.ID,
		CurrentStep:   sess.Phase,
		Completed:     sess.IsCompleted(),
		CandidateName: sess.Candidate.Name,
		Messages:      messages,
	}, nil
}

// Scores returns the rubric entries of an interview, computing missing
// categories on first read. Sessions still in progress have none.
func (s *Service) Scores(ctx context.Context, id string) ([]models.ScoreEntry, error) {
	sess, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.scoresFor(ctx, sess)
}

// CandidateScores is Scores keyed by candidate id.
func (s *Service) CandidateScores(ctx context.Context, candidateID string) ([]models.ScoreEntry, error) {
	sess, err := s.store.GetByCandidate(ctx, candidateID)
	if err != nil {
		return nil, err
	}
	return s.scoresFor(ctx, sess)
}

func (s *Service) scoresFor(ctx context.Context, sess *models.Session) ([]models.ScoreEntry, error) {
	if !sess.IsCompleted() {
		return []models.ScoreEntry{}, nil
	}
	sess, err := s.ensureScores(ctx, sess)
	if err != nil {
		return nil, err
	}
	scores := append([]models.ScoreEntry{}, sess.Scores...)
	models.SortScores(scores)
	return scores, nil
}

// Report builds the reviewer summary for a completed interview.
func (s *Service) Report(ctx context.Context, id string) (*models.ReportResponse, error) {
	sess, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if sess.IsCompleted() {
		if sess, err = s.ensureScores(ctx, sess); err != nil {
			return nil, err
		}
	}
	return scoring.BuildReport(sess)
}

// ensureScores computes and stores categories the session is missing.
// Existing entries are never recomputed.
func (s *Service) ensureScores(ctx context.Context, sess *models.Session) (*models.Session, error) {
	if len(sess.Scores) >= len(models.RubricCategories()) {
		return sess, nil
	}

	unlock, err := s.locker.Lock(ctx, sess.ID)
	if errors.Is(err, models.ErrConcurrentModification) {
		// another writer holds the session; serve what is stored
		return sess, nil
	}
	if err != nil {
		return nil, err
	}
	defer unlock()

	current, err := s.store.Get(ctx, sess.ID)
	if err != nil {
		return nil, err
	}
	if len(current.Scores) >= len(models.RubricCategories()) {
		return current, nil
	}

	started := time.Now()
	res, err := s.aggregator.Compute(ctx, current)
	s.recordCollaborator("judge", err, started)
	if err != nil {
		metrics.RecordScoring(metrics.ResultError)
		return nil, err
	}
	if len(res.Missing) > 0 {
		metrics.RecordScoring(metrics.ResultPartial)
		s.logger.Warn("scoring incomplete",
			zap.String("interview_id", current.ID),
			zap.Strings("missing", res.Missing))
	} else {
		metrics.RecordScoring(metrics.ResultOK)
	}
	if len(res.Entries) == 0 {
		return current, nil
	}

	return s.store.SaveScores(context.WithoutCancel(ctx), current.ID, res.Entries)
}

// Backfill re-attempts missing score categories for every completed
// interview and reports how many interviews gained entries.
func (s *Service) Backfill(ctx context.Context) (int, error) {
	sessions, err := s.store.List(ctx)
	if err != nil {
		return 0, err
	}

	filled := 0
	var errs []error
	for _, sess := range sessions {
		if !sess.IsCompleted() || len(sess.Scores) >= len(models.RubricCategories()) {
			continue
		}
		if err := ctx.Err(); err != nil {
			return filled, err
		}
		updated, err := s.ensureScores(ctx, sess)
		if err != nil {
			errs = append(errs, fmt.Errorf("interview %s: %w", sess.ID, err))
			continue
		}
		if len(updated.Scores) > len(sess.Scores) {
			filled++
		}
	}
	return filled, errors.Join(errs...)
}

// ListCandidates returns candidates newest first, optionally filtered by
// derived status.
func (s *Service) ListCandidates(ctx context.Context, status string) ([]models.CandidateResponse, error) {
	status = strings.TrimSpace(status)
	if status != "" && !models.ValidCandidateStatuses[status] {
		return nil, fmt.Errorf("%w: unknown status %q", models.ErrValidation, status)
	}

	sessions, err := s.store.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]models.CandidateResponse, 0, len(sessions))
	for _, sess := range sessions {
		if status != "" && sess.CandidateStatus() != status {
			continue
		}
		out = append(out, candidateResponse(sess))
	}
	return out, nil
}

func (s *Service) GetCandidate(ctx context.Context, candidateID string) (*models.CandidateResponse, error) {
	sess, err := s.store.GetByCandidate(ctx, candidateID)
	if err != nil {
		return nil, err
	}
	resp := candidateResponse(sess)
	return &resp, nil
}

func candidateResponse(sess *models.Session) models.CandidateResponse {
	return models.CandidateResponse{
		Candidate:   sess.Candidate,
		InterviewID: sess.ID,
		Status:      sess.CandidateStatus(),
	}
}

// Stats scans every session without taking per-session locks.
func (s *Service) Stats(ctx context.Context) (*models.CandidateStats, error) {
	sessions, err := s.store.List(ctx)
	if err != nil {
		return nil, err
	}

	stats := &models.CandidateStats{TotalCandidates: len(sessions)}
	total, scored := 0.0, 0
	for _, sess := range sessions {
		if !sess.IsCompleted() {
			continue
		}
		stats.CompletedInterviews++
		if final, ok := sess.FinalScore(); ok {
			total += final
			scored++
		}
	}
	if scored > 0 {
		stats.AvgScore = scoring.Round1(total / float64(scored))
	}
	return stats, nil
}

func (s *Service) Ping(ctx context.Context) error {
	return s.store.Ping(ctx)
}

func (s *Service) recordCollaborator(kind string, err error, started time.Time) {
	metrics.RecordCollaboratorCall(kind, resultOf(err), time.Since(started))
}

func resultOf(err error) string {
	switch {
	case err == nil:
		return metrics.ResultOK
	case errors.Is(err, models.ErrCollaboratorTimeout), errors.Is(err, context.DeadlineExceeded):
		return metrics.ResultTimeout
	default:
		return metrics.ResultError
	}
}
