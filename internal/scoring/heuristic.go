package scoring

import (
	"context"
	"fmt"
	"strings"

	"talentscout/interview/internal/models"
)

const (
	// answers shorter than this are treated as no answer at all
	minAnswerWords = 3
	// answers of this length get full marks for depth
	fullDepthWords = 30
)

var lowEffortAnswers = map[string]bool{
	"idk": true, "nil": true, "no": true, "none": true, "pass": true, "n/a": true, "nothing": true,
}

// category weight for depth; the rest of the score comes from markers
var depthWeight = map[string]float64{
	models.CategoryCorrectness:    0.6,
	models.CategoryCommunication:  0.7,
	models.CategoryProblemSolving: 0.5,
	models.CategoryCultureFit:     0.6,
}

var categoryMarkers = map[string][]string{
	models.CategoryCommunication:  {"because", "for example", "such as", "which means", "so that"},
	models.CategoryProblemSolving: {"because", "first", "then", "trade", "measure", "debug", "profile", "instead", "root cause", "test"},
	models.CategoryCultureFit:     {"team", "we ", "together", "feedback", "learn", "help", "communicat", "mentor"},
}

// HeuristicJudge scores answers from their length and wording. It needs no
// external service and always returns the same scores for the same answers.
type HeuristicJudge struct{}

func NewHeuristicJudge() *HeuristicJudge { return &HeuristicJudge{} }

func (HeuristicJudge) Name() string { return "heuristic" }

func (h HeuristicJudge) Evaluate(ctx context.Context, req JudgeRequest) (map[string]Evaluation, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var stack []string
	if req.Session != nil {
		for _, tag := range req.Session.Candidate.TechStack {
			stack = append(stack, strings.ToLower(tag))
		}
	}

	out := make(map[string]Evaluation, len(req.Categories))
	for _, category := range req.Categories {
		markers := categoryMarkers[category]
		if category == models.CategoryCorrectness {
			markers = stack
		}

		total := 0.0
		substantive := 0
		for _, pair := range req.Pairs {
			score := answerScore(pair.Answer, depthWeight[category], markers)
			if score > 0 {
				substantive++
			}
			total += score
		}

		mean := 0.0
		if len(req.Pairs) > 0 {
			mean = total / float64(len(req.Pairs))
		}
		out[category] = Evaluation{
			Score:      Round1(models.ClampScore(mean)),
			Assessment: fmt.Sprintf("%d of %d answers were substantive", substantive, len(req.Pairs)),
		}
	}
	return out, nil
}

func answerScore(answer string, depthShare float64, markers []string) float64 {
	words := strings.Fields(answer)
	lower := strings.ToLower(strings.TrimSpace(answer))
	if len(words) < minAnswerWords || lowEffortAnswers[lower] {
		return 0
	}

	depth := float64(len(words)) / fullDepthWords
	if depth > 1 {
		depth = 1
	}

	hit := 0.0
	padded := " " + lower + " "
	for _, marker := range markers {
		if marker != "" && strings.Contains(padded, marker) {
			hit = 1
			break
		}
	}
	if len(markers) == 0 {
		hit = depth
	}

	return models.MaxScore * (depthShare*depth + (1-depthShare)*hit)
}
