package scoring

import (
	"fmt"
	"strings"

	"talentscout/interview/internal/models"
)

// Recommendations, best first.
const (
	RecommendStrongHire = "Strong Hire"
	RecommendHire       = "Hire"
	RecommendMaybe      = "Maybe"
	RecommendNoHire     = "No Hire"
)

const (
	strengthThreshold    = 7.0
	improvementThreshold = 5.0
)

var categoryLabels = map[string]string{
	models.CategoryCorrectness:    "technical correctness",
	models.CategoryCommunication:  "communication",
	models.CategoryProblemSolving: "problem solving",
	models.CategoryCultureFit:     "culture fit",
}

// Recommend maps an overall score to a hiring recommendation.
func Recommend(overall float64) string {
	switch {
	case overall >= 8:
		return RecommendStrongHire
	case overall >= 6.5:
		return RecommendHire
	case overall >= 5:
		return RecommendMaybe
	default:
		return RecommendNoHire
	}
}

// BuildReport summarizes a completed, scored session for reviewers.
func BuildReport(s *models.Session) (*models.ReportResponse, error) {
	if !s.IsCompleted() {
		return nil, fmt.Errorf("%w: interview %s is not completed", models.ErrInvalidState, s.ID)
	}

	scores := append([]models.ScoreEntry(nil), s.Scores...)
	models.SortScores(scores)

	report := &models.ReportResponse{
		InterviewID:   s.ID,
		CandidateName: s.Candidate.Name,
		Strengths:     []string{},
		Improvements:  []string{},
		Scores:        scores,
		PhaseNotes:    phaseNotes(s),
	}

	overall, ok := s.FinalScore()
	if !ok {
		report.Recommendation = RecommendMaybe
		report.Summary = "Scores are not available yet. Manual review recommended."
		return report, nil
	}
	report.OverallScore = Round1(overall)
	report.Recommendation = Recommend(report.OverallScore)

	for _, entry := range scores {
		label := categoryLabels[entry.Category]
		if label == "" {
			label = strings.ReplaceAll(entry.Category, "_", " ")
		}
		switch {
		case entry.Score >= strengthThreshold:
			report.Strengths = append(report.Strengths, fmt.Sprintf("Strong %s (%.1f/10)", label, entry.Score))
		case entry.Score < improvementThreshold:
			report.Improvements = append(report.Improvements, fmt.Sprintf("Work on %s (%.1f/10)", label, entry.Score))
		}
	}

	report.Summary = fmt.Sprintf("%s scored %.1f/10 overall across %d categories for the %s role. Recommendation: %s.",
		s.Candidate.Name, report.OverallScore, len(scores), s.Candidate.Position, report.Recommendation)
	return report, nil
}

// phaseNotes aggregates the scores and assessments recorded on answers.
func phaseNotes(s *models.Session) []models.PhaseNote {
	notes := make([]models.PhaseNote, 0, len(models.InterviewPhases()))
	for _, phase := range models.InterviewPhases() {
		note := models.PhaseNote{Step: phase, Assessments: []string{}}
		var total float64
		var scored int
		for _, turn := range s.TurnsInPhase(phase) {
			if turn.Role != models.RoleUser {
				continue
			}
			note.Answers++
			if turn.Score != nil {
				total += *turn.Score
				scored++
			}
			if assessment := strings.TrimSpace(turn.Assessment); assessment != "" {
				note.Assessments = append(note.Assessments, assessment)
			}
		}
		if note.Answers == 0 {
			continue
		}
		if scored > 0 {
			avg := Round1(total / float64(scored))
			note.AvgScore = &avg
		}
		notes = append(notes, note)
	}
	return notes
}
