package scoring

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"talentscout/interview/internal/models"
)

// Evaluation is a judge's verdict for one category in one phase.
type Evaluation struct {
	Score      float64
	Assessment string
}

// JudgeRequest asks for the categories judged on one phase.
type JudgeRequest struct {
	Session    *models.Session
	Phase      models.Phase
	Pairs      []QA
	Categories []string
	RequestID  string
}

// Judge evaluates the answers of a single phase. Categories left out of the
// result count as failed for that phase.
type Judge interface {
	Evaluate(ctx context.Context, req JudgeRequest) (map[string]Evaluation, error)
	Name() string
}

// Result holds the entries computed in one pass and the categories that
// could not be computed.
type Result struct {
	Entries []models.ScoreEntry
	Missing []string
}

// Aggregator computes rubric scores from a completed transcript.
type Aggregator struct {
	judge  Judge
	logger *zap.Logger
}

func NewAggregator(judge Judge, logger *zap.Logger) *Aggregator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Aggregator{judge: judge, logger: logger}
}

func (a *Aggregator) Judge() Judge { return a.judge }

// Compute scores every rubric category that s does not have yet. A category
// is produced only when the judge succeeded on all of its phases.
func (a *Aggregator) Compute(ctx context.Context, s *models.Session) (*Result, error) {
	if !s.IsCompleted() {
		return nil, fmt.Errorf("%w: interview %s is not completed", models.ErrInvalidState, s.ID)
	}

	existing := s.ScoreByCategory()
	var missing []string
	for _, category := range models.RubricCategories() {
		if _, ok := existing[category]; !ok {
			missing = append(missing, category)
		}
	}
	if len(missing) == 0 {
		return &Result{}, nil
	}

	wanted := make(map[string]bool, len(missing))
	for _, category := range missing {
		wanted[category] = true
	}

	type phaseResult struct {
		evals  map[string]Evaluation
		failed bool
	}
	results := make(map[models.Phase]phaseResult)

	for _, phase := range models.InterviewPhases() {
		var categories []string
		for _, category := range CategoriesFor(phase) {
			if wanted[category] {
				categories = append(categories, category)
			}
		}
		if len(categories) == 0 {
			continue
		}

		pairs := QAPairs(s, phase)
		if len(pairs) == 0 {
			// nothing was answered in this phase, so it contributes nothing
			results[phase] = phaseResult{}
			continue
		}

		evals, err := a.judge.Evaluate(ctx, JudgeRequest{
			Session:    s,
			Phase:      phase,
			Pairs:      pairs,
			Categories: categories,
			RequestID:  fmt.Sprintf("%s-score-%s", s.ID, phase),
		})
		if err != nil {
			a.logger.Warn("judge failed for phase",
				zap.String("interview_id", s.ID),
				zap.String("phase", string(phase)),
				zap.String("judge", a.judge.Name()),
				zap.Error(err),
			)
			results[phase] = phaseResult{failed: true}
			continue
		}
		results[phase] = phaseResult{evals: evals}
	}

	out := &Result{}
	for _, category := range missing {
		var scores []float64
		var notes []string
		complete := true
		for _, phase := range PhasesFor(category) {
			res, ok := results[phase]
			if !ok || res.failed {
				complete = false
				break
			}
			if res.evals == nil {
				continue
			}
			eval, ok := res.evals[category]
			if !ok {
				complete = false
				break
			}
			scores = append(scores, models.ClampScore(eval.Score))
			if eval.Assessment != "" {
				notes = append(notes, string(phase)+": "+eval.Assessment)
			}
		}

		if !complete || len(scores) == 0 {
			out.Missing = append(out.Missing, category)
			continue
		}

		total := 0.0
		for _, score := range scores {
			total += score
		}
		out.Entries = append(out.Entries, models.ScoreEntry{
			Category:   category,
			Score:      Round1(models.ClampScore(total / float64(len(scores)))),
			Assessment: strings.Join(notes, "; "),
		})
	}

	return out, nil
}
