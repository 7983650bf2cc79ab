package models

import "sort"

// rubric categories evaluated once an interview is completed
const (
	CategoryCorrectness    = "correctness"
	CategoryCommunication  = "communication"
	CategoryProblemSolving = "problem_solving"
	CategoryCultureFit     = "culture_fit"
)

// MinScore and MaxScore bound every ScoreEntry.
const (
	MinScore = 0.0
	MaxScore = 10.0
)

func RubricCategories() []string {
	return []string{CategoryCorrectness, CategoryCommunication, CategoryProblemSolving, CategoryCultureFit}
}

// ClampScore forces a judge's score into [MinScore, MaxScore].
func ClampScore(score float64) float64 {
	if score != score || score < MinScore {
		return MinScore
	}
	if score > MaxScore {
		return MaxScore
	}
	return score
}

// contains candidate statuses accepted by the candidate list filter
var ValidCandidateStatuses = map[string]bool{
	CandidateStatusInProgress: true,
	CandidateStatusCompleted:  true,
}

// SortScores orders entries by rubric position, unknown categories last by name.
func SortScores(entries []ScoreEntry) {
	rank := make(map[string]int)
	for i, category := range RubricCategories() {
		rank[category] = i
	}
	position := func(category string) int {
		if r, ok := rank[category]; ok {
			return r
		}
		return len(rank)
	}
	sort.SliceStable(entries, func(i, j int) bool {
		pi, pj := position(entries[i].Category), position(entries[j].Category)
		if pi != pj {
			return pi < pj
		}
		return entries[i].Category < entries[j].Category
	})
}
