package models

// uniform error responses
type ErrorResponse struct {
	Code    string                  `json:"code"`
	Message string                  `json:"message"`
	Details []ValidationErrorDetail `json:"details,omitempty"`
}

func (e *ErrorResponse) Error() string {
	return e.Message
}

// single field validation error
type ValidationErrorDetail struct {
	Field  string `json:"field"`
	Reason string `json:"reason"`
}

type StartInterviewResponse struct {
	InterviewID string `json:"interview_id"`
	CandidateID string `json:"candidate_id"`
	Message     string `json:"message"`
	CurrentStep Phase  `json:"current_step"`
}

// MessageResponse omits current_step when the phase did not change.
type MessageResponse struct {
	Message     string `json:"message"`
	CurrentStep Phase  `json:"current_step,omitempty"`
}

type TranscriptMessage struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
	Step    Phase  `json:"step"`
}

type StatusResponse struct {
	InterviewID   string              `json:"interview_id"`
	CurrentStep   Phase               `json:"current_step"`
	Completed     bool                `json:"completed"`
	CandidateName string              `json:"candidate_name"`
	Messages      []TranscriptMessage `json:"messages"`
}

type CandidateResponse struct {
	Candidate
	InterviewID string `json:"interview_id"`
	Status      string `json:"status"`
}

type LoginResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

type ReportResponse struct {
	InterviewID    string       `json:"interview_id"`
	CandidateName  string       `json:"candidate_name"`
	OverallScore   float64      `json:"overall_score"`
	Recommendation string       `json:"recommendation"`
	Summary        string       `json:"summary"`
	Strengths      []string     `json:"strengths"`
	Improvements   []string     `json:"improvements"`
	Scores         []ScoreEntry `json:"scores"`
	PhaseNotes     []PhaseNote  `json:"phase_notes"`
}

// PhaseNote collects the interviewer's per-answer judgements for one phase.
// AvgScore is omitted when no answer in the phase was scored.
type PhaseNote struct {
	Step        Phase    `json:"step"`
	Answers     int      `json:"answers"`
	AvgScore    *float64 `json:"avg_score,omitempty"`
	Assessments []string `json:"assessments"`
}

type ResumeAnalysisResponse struct {
	ID              string   `json:"id"`
	CandidateID     string   `json:"candidate_id,omitempty"`
	FileName        string   `json:"file_name"`
	Score           float64  `json:"score"`
	SkillsFound     []string `json:"skills_found"`
	MissingKeywords []string `json:"missing_keywords"`
	TotalKeywords   int      `json:"total_keywords"`
}

// Chat frame types sent over the interview websocket.
const (
	FrameStatus  = "status"
	FrameMessage = "message"
	FrameError   = "error"
)

type ChatFrame struct {
	Type string `json:"type"`
	Data any    `json:"data"`
}
