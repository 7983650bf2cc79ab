package prompts

// InterviewData feeds the interviewer templates.
type InterviewData struct {
	Name           string
	FirstName      string
	Position       string
	Experience     float64
	Location       string
	TechStack      string
	Phase          string
	PhaseGoal      string
	NextPhase      string
	NextPhaseGoal  string
	AnswersInPhase int
	Transcript     string
	LastAnswer     string
}

// JudgeData feeds the judge templates.
type JudgeData struct {
	Name       string
	Position   string
	Experience float64
	TechStack  string
	Phase      string
	PhaseGoal  string
	Categories string
	Transcript string
}

// phaseGoals describes what each phase is meant to assess.
var phaseGoals = map[string]string{
	"technical":       "questions specific to the candidate's tech stack, starting easy and getting harder as answers improve",
	"project":         "real projects: challenges faced, technologies used, the candidate's role and the outcome",
	"problem_solving": "a scenario about debugging or an architecture decision that the candidate talks through",
	"behavioral":      "teamwork, communication, conflict resolution and learning habits",
	"completed":       "wrapping up: thank the candidate and explain that the hiring team will review their profile",
}

// PhaseGoal returns the interviewing focus for phase, or "" for unknown phases.
func PhaseGoal(phase string) string {
	return phaseGoals[phase]
}
