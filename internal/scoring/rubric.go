package scoring

import (
	"math"
	"strings"

	"talentscout/interview/internal/models"
)

// rubric maps every category to the phases whose answers it is judged on.
var rubric = map[string][]models.Phase{
	models.CategoryCorrectness:    {models.PhaseTechnical, models.PhaseProblemSolving},
	models.CategoryCommunication:  {models.PhaseTechnical, models.PhaseProject, models.PhaseProblemSolving, models.PhaseBehavioral},
	models.CategoryProblemSolving: {models.PhaseProject, models.PhaseProblemSolving},
	models.CategoryCultureFit:     {models.PhaseProject, models.PhaseBehavioral},
}

// PhasesFor lists the phases that feed category, in interview order.
func PhasesFor(category string) []models.Phase {
	return rubric[category]
}

// CategoriesFor lists the rubric categories judged on phase, in rubric order.
func CategoriesFor(phase models.Phase) []string {
	var out []string
	for _, category := range models.RubricCategories() {
		for _, p := range rubric[category] {
			if p == phase {
				out = append(out, category)
				break
			}
		}
	}
	return out
}

// QA is one interviewer question and the candidate's answer to it.
type QA struct {
	Question string
	Answer   string
}

// QAPairs pairs every user turn recorded in phase with the assistant turn
// right before it.
func QAPairs(s *models.Session, phase models.Phase) []QA {
	var pairs []QA
	question := ""
	for _, turn := range s.Turns {
		switch {
		case turn.Role == models.RoleAssistant:
			question = turn.Content
		case turn.Role == models.RoleUser && turn.Phase == phase:
			pairs = append(pairs, QA{Question: question, Answer: turn.Content})
		}
	}
	return pairs
}

// FormatPairs renders pairs the way judge prompts expect them.
func FormatPairs(pairs []QA) string {
	var b strings.Builder
	for i, pair := range pairs {
		if i > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString("Q: ")
		b.WriteString(pair.Question)
		b.WriteString("\nA: ")
		b.WriteString(pair.Answer)
	}
	return b.String()
}

// Round1 rounds to one decimal place.
func Round1(v float64) float64 {
	return math.Round(v*10) / 10
}
