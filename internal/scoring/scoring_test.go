package scoring

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"talentscout/interview/internal/llm"
	"talentscout/interview/internal/models"
	"talentscout/interview/internal/prompts"
)

type mockJudge struct {
	evaluateFn func(ctx context.Context, req JudgeRequest) (map[string]Evaluation, error)
	calls      []JudgeRequest
}

func (m *mockJudge) Evaluate(ctx context.Context, req JudgeRequest) (map[string]Evaluation, error) {
	m.calls = append(m.calls, req)
	return m.evaluateFn(ctx, req)
}

func (m *mockJudge) Name() string { return "mock" }

func constantJudge(score float64) *mockJudge {
	return &mockJudge{evaluateFn: func(_ context.Context, req JudgeRequest) (map[string]Evaluation, error) {
		out := make(map[string]Evaluation)
		for _, category := range req.Categories {
			out[category] = Evaluation{Score: score, Assessment: "ok"}
		}
		return out, nil
	}}
}

type mockProvider struct {
	content string
	err     error
}

func (m *mockProvider) GenerateContent(_ context.Context, _, requestID string) (*llm.GenerationResponse, error) {
	if m.err != nil {
		return nil, m.err
	}
	return &llm.GenerationResponse{Content: m.content, RequestID: requestID}, nil
}

func (m *mockProvider) GetProviderName() string { return "mock-llm" }

func completedSession(answer string) *models.Session {
	s := &models.Session{
		ID: "s1",
		Candidate: models.Candidate{
			Name:      "Ada Lovelace",
			Position:  "Backend Engineer",
			TechStack: models.TechStack{"Go", "Postgres"},
		},
		Phase: models.PhaseCompleted,
	}
	for _, phase := range models.InterviewPhases() {
		for i := 0; i < 3; i++ {
			s.Turns = append(s.Turns,
				models.Turn{Role: models.RoleAssistant, Content: "question in " + string(phase), Phase: phase},
				models.Turn{Role: models.RoleUser, Content: answer, Phase: phase},
			)
		}
	}
	s.Turns = append(s.Turns, models.Turn{Role: models.RoleAssistant, Content: "thanks", Phase: models.PhaseCompleted})
	return s
}

func TestRubricCoversEveryPhase(t *testing.T) {
	for _, phase := range models.InterviewPhases() {
		assert.NotEmpty(t, CategoriesFor(phase), "phase %s feeds no category", phase)
	}
	for _, category := range models.RubricCategories() {
		assert.NotEmpty(t, PhasesFor(category), "category %s has no phases", category)
	}
	assert.Equal(t, []string{models.CategoryCommunication, models.CategoryCultureFit}, CategoriesFor(models.PhaseBehavioral))
}

func TestQAPairs(t *testing.T) {
	s := completedSession("an answer")
	pairs := QAPairs(s, models.PhaseProject)
	require.Len(t, pairs, 3)
	assert.Equal(t, "question in project", pairs[0].Question)
	assert.Equal(t, "an answer", pairs[0].Answer)
	assert.Contains(t, FormatPairs(pairs), "Q: question in project\nA: an answer")
}

func TestAggregatorComputesAllCategories(t *testing.T) {
	judge := constantJudge(7)
	agg := NewAggregator(judge, zap.NewNop())

	res, err := agg.Compute(context.Background(), completedSession("answer"))
	require.NoError(t, err)
	assert.Empty(t, res.Missing)
	require.Len(t, res.Entries, 4)
	for _, entry := range res.Entries {
		assert.Equal(t, 7.0, entry.Score)
	}
	assert.Len(t, judge.calls, 4, "judge is invoked once per phase")
}

func TestAggregatorRejectsActiveSession(t *testing.T) {
	agg := NewAggregator(constantJudge(5), zap.NewNop())
	s := completedSession("answer")
	s.Phase = models.PhaseBehavioral

	_, err := agg.Compute(context.Background(), s)
	assert.ErrorIs(t, err, models.ErrInvalidState)
}

func TestAggregatorPartialFailure(t *testing.T) {
	judge := constantJudge(6)
	inner := judge.evaluateFn
	judge.evaluateFn = func(ctx context.Context, req JudgeRequest) (map[string]Evaluation, error) {
		if req.Phase == models.PhaseBehavioral {
			return nil, errors.New("judge down")
		}
		return inner(ctx, req)
	}
	agg := NewAggregator(judge, zap.NewNop())

	res, err := agg.Compute(context.Background(), completedSession("answer"))
	require.NoError(t, err)

	got := map[string]bool{}
	for _, entry := range res.Entries {
		got[entry.Category] = true
	}
	assert.True(t, got[models.CategoryCorrectness])
	assert.True(t, got[models.CategoryProblemSolving])
	assert.ElementsMatch(t, []string{models.CategoryCommunication, models.CategoryCultureFit}, res.Missing)
}

func TestAggregatorOnlyComputesMissing(t *testing.T) {
	judge := constantJudge(4)
	agg := NewAggregator(judge, zap.NewNop())

	s := completedSession("answer")
	s.Scores = []models.ScoreEntry{
		{Category: models.CategoryCorrectness, Score: 9},
		{Category: models.CategoryCommunication, Score: 9},
		{Category: models.CategoryProblemSolving, Score: 9},
	}

	res, err := agg.Compute(context.Background(), s)
	require.NoError(t, err)
	require.Len(t, res.Entries, 1)
	assert.Equal(t, models.CategoryCultureFit, res.Entries[0].Category)
	for _, call := range judge.calls {
		assert.Equal(t, []string{models.CategoryCultureFit}, call.Categories)
	}

	s.Scores = append(s.Scores, res.Entries...)
	judge.calls = nil
	res, err = agg.Compute(context.Background(), s)
	require.NoError(t, err)
	assert.Empty(t, res.Entries)
	assert.Empty(t, judge.calls)
}

func TestAggregatorClampsAndAverages(t *testing.T) {
	judge := &mockJudge{evaluateFn: func(_ context.Context, req JudgeRequest) (map[string]Evaluation, error) {
		out := make(map[string]Evaluation)
		for _, category := range req.Categories {
			score := 4.0
			if req.Phase == models.PhaseTechnical {
				score = 15
			}
			out[category] = Evaluation{Score: score}
		}
		return out, nil
	}}
	agg := NewAggregator(judge, zap.NewNop())

	res, err := agg.Compute(context.Background(), completedSession("answer"))
	require.NoError(t, err)
	for _, entry := range res.Entries {
		if entry.Category == models.CategoryCorrectness {
			// technical clamps to 10, problem_solving gives 4
			assert.Equal(t, 7.0, entry.Score)
		}
		assert.GreaterOrEqual(t, entry.Score, models.MinScore)
		assert.LessOrEqual(t, entry.Score, models.MaxScore)
	}
}

func TestHeuristicJudgeDeterministic(t *testing.T) {
	agg := NewAggregator(NewHeuristicJudge(), zap.NewNop())
	strong := "First I would profile the Go service because latency matters, then measure the Postgres queries and we would review the fix together as a team"

	first, err := agg.Compute(context.Background(), completedSession(strong))
	require.NoError(t, err)
	second, err := agg.Compute(context.Background(), completedSession(strong))
	require.NoError(t, err)
	assert.Equal(t, first, second)
	require.Len(t, first.Entries, 4)

	weak, err := agg.Compute(context.Background(), completedSession("idk"))
	require.NoError(t, err)
	for i, entry := range weak.Entries {
		assert.Equal(t, 0.0, entry.Score)
		assert.Greater(t, first.Entries[i].Score, entry.Score)
	}
}

func TestParseEvaluations(t *testing.T) {
	categories := []string{models.CategoryCorrectness, models.CategoryCommunication, models.CategoryCultureFit}
	evals, err := ParseEvaluations("```json\n{\"correctness\": {\"score\": \"8\", \"assessment\": \"good\"}, \"communication\": 12, \"culture_fit\": {\"score\": null}}\n```", categories)
	require.NoError(t, err)
	assert.Equal(t, Evaluation{Score: 8, Assessment: "good"}, evals[models.CategoryCorrectness])
	assert.Equal(t, 10.0, evals[models.CategoryCommunication].Score)
	_, ok := evals[models.CategoryCultureFit]
	assert.False(t, ok, "categories without a score are left out")

	nested, err := ParseEvaluations(`{"scores": {"correctness": 6}}`, categories)
	require.NoError(t, err)
	assert.Equal(t, 6.0, nested[models.CategoryCorrectness].Score)

	_, err = ParseEvaluations("I think they did fine", categories)
	assert.ErrorIs(t, err, models.ErrCollaborator)
}

func TestLLMJudge(t *testing.T) {
	pm, err := prompts.NewPromptManager()
	require.NoError(t, err)

	provider := &mockProvider{content: `{"correctness": {"score": 8}, "communication": {"score": 6}}`}
	judge := NewLLMJudge(provider, pm)
	assert.Equal(t, "mock-llm", judge.Name())

	s := completedSession("answer")
	evals, err := judge.Evaluate(context.Background(), JudgeRequest{
		Session:    s,
		Phase:      models.PhaseTechnical,
		Pairs:      QAPairs(s, models.PhaseTechnical),
		Categories: CategoriesFor(models.PhaseTechnical),
	})
	require.NoError(t, err)
	assert.Equal(t, 8.0, evals[models.CategoryCorrectness].Score)

	provider.err = errors.New("boom")
	_, err = judge.Evaluate(context.Background(), JudgeRequest{Session: s, Phase: models.PhaseTechnical})
	assert.Error(t, err)
}

func TestBuildReport(t *testing.T) {
	s := completedSession("answer")
	s.Scores = []models.ScoreEntry{
		{Category: models.CategoryCultureFit, Score: 4},
		{Category: models.CategoryCorrectness, Score: 9},
		{Category: models.CategoryCommunication, Score: 8},
		{Category: models.CategoryProblemSolving, Score: 7},
	}

	report, err := BuildReport(s)
	require.NoError(t, err)
	assert.Equal(t, 7.0, report.OverallScore)
	assert.Equal(t, RecommendHire, report.Recommendation)
	assert.Len(t, report.Strengths, 3)
	assert.Equal(t, []string{"Work on culture fit (4.0/10)"}, report.Improvements)
	assert.Equal(t, models.CategoryCorrectness, report.Scores[0].Category)

	s.Scores = nil
	report, err = BuildReport(s)
	require.NoError(t, err)
	assert.Equal(t, RecommendMaybe, report.Recommendation)
	assert.Empty(t, report.Scores)

	s.Phase = models.PhaseBehavioral
	_, err = BuildReport(s)
	assert.ErrorIs(t, err, models.ErrInvalidState)
}

func TestRecommend(t *testing.T) {
	assert.Equal(t, RecommendStrongHire, Recommend(8))
	assert.Equal(t, RecommendHire, Recommend(6.5))
	assert.Equal(t, RecommendMaybe, Recommend(5))
	assert.Equal(t, RecommendNoHire, Recommend(4.9))
	assert.Equal(t, 2.3, Round1(2.25+0.04))
}

func TestBuildReportPhaseNotes(t *testing.T) {
	s := completedSession("answer")
	scores := []float64{6, 9}
	n := 0
	for i := range s.Turns {
		turn := &s.Turns[i]
		if turn.Role != models.RoleUser || turn.Phase != models.PhaseTechnical || n == len(scores) {
			continue
		}
		turn.Score = &scores[n]
		turn.Assessment = fmt.Sprintf("  note %d ", n+1)
		n++
	}

	report, err := BuildReport(s)
	require.NoError(t, err)
	require.Len(t, report.PhaseNotes, len(models.InterviewPhases()))

	technical := report.PhaseNotes[0]
	assert.Equal(t, models.PhaseTechnical, technical.Step)
	assert.Equal(t, 3, technical.Answers)
	require.NotNil(t, technical.AvgScore)
	assert.Equal(t, 7.5, *technical.AvgScore)
	assert.Equal(t, []string{"note 1", "note 2"}, technical.Assessments)

	project := report.PhaseNotes[1]
	assert.Equal(t, 3, project.Answers)
	assert.Nil(t, project.AvgScore)
	assert.Empty(t, project.Assessments)
}
