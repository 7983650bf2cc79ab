package models

import (
	"regexp"
	"strings"
)

const DefaultPosition = "Software Engineer"

var (
	emailPattern = regexp.MustCompile(`^[\w.+-]+@[\w.-]+\.\w+$`)
	phonePattern = regexp.MustCompile(`^\+?[\d\s-]{10,}$`)
)

type CandidateInput struct {
	Name       string    `json:"name"`
	Email      string    `json:"email"`
	Phone      string    `json:"phone"`
	Experience float64   `json:"experience"`
	Position   string    `json:"position"`
	Location   string    `json:"location"`
	TechStack  TechStack `json:"tech_stack"`
}

// ToCandidate copies the validated input into a new Candidate.
func (in *CandidateInput) ToCandidate() Candidate {
	return Candidate{
		Name:       in.Name,
		Email:      in.Email,
		Phone:      in.Phone,
		Experience: in.Experience,
		Position:   in.Position,
		Location:   in.Location,
		TechStack:  append(TechStack(nil), in.TechStack...),
	}
}

type StartInterviewRequest struct {
	Candidate *CandidateInput `json:"candidate"`
}

// implements the Validator interface
func (r *StartInterviewRequest) Validate() error {
	if r.Candidate == nil {
		return &ErrorResponse{Code: "missing_candidate", Message: "candidate is required"}
	}
	c := r.Candidate
	c.Name = strings.TrimSpace(c.Name)
	c.Email = strings.TrimSpace(c.Email)
	c.Phone = strings.TrimSpace(c.Phone)
	c.Position = strings.TrimSpace(c.Position)
	c.Location = strings.TrimSpace(c.Location)
	c.TechStack = NormalizeTechStack(c.TechStack)

	if c.Name == "" {
		return &ErrorResponse{Code: "missing_name", Message: "candidate.name is required"}
	}
	if !emailPattern.MatchString(c.Email) {
		return &ErrorResponse{Code: "invalid_email", Message: "candidate.email must be a valid email address"}
	}
	if c.Phone != "" && !phonePattern.MatchString(c.Phone) {
		return &ErrorResponse{Code: "invalid_phone", Message: "candidate.phone must contain at least 10 digits"}
	}
	if c.Experience < 0 {
		return &ErrorResponse{Code: "invalid_experience", Message: "candidate.experience must not be negative"}
	}
	if len(c.TechStack) == 0 {
		return &ErrorResponse{Code: "missing_tech_stack", Message: "candidate.tech_stack must list at least one technology"}
	}
	if c.Position == "" {
		c.Position = DefaultPosition
	}
	return nil
}

type MessageRequest struct {
	Content   string `json:"content"`
	Role      string `json:"role"`
	RequestID string `json:"request_id"`
}

func (r *MessageRequest) Validate() error {
	r.Content = strings.TrimSpace(r.Content)
	r.Role = strings.ToLower(strings.TrimSpace(r.Role))
	r.RequestID = strings.TrimSpace(r.RequestID)

	if r.Content == "" {
		return &ErrorResponse{Code: "missing_content", Message: "content is required"}
	}
	if r.Role != "" && r.Role != string(RoleUser) {
		return &ErrorResponse{Code: "invalid_role", Message: "role must be user"}
	}
	return nil
}

type LoginRequest struct {
	Password string `json:"password"`
}

func (r *LoginRequest) Validate() error {
	if r.Password == "" {
		return &ErrorResponse{Code: "missing_password", Message: "password is required"}
	}
	return nil
}

type KeywordRequest struct {
	Keyword  string  `json:"keyword"`
	Category string  `json:"category"`
	Weight   float64 `json:"weight"`
}

func (r *KeywordRequest) Validate() error {
	r.Keyword = strings.TrimSpace(r.Keyword)
	r.Category = strings.ToLower(strings.TrimSpace(r.Category))

	if r.Keyword == "" {
		return &ErrorResponse{Code: "missing_keyword", Message: "keyword is required"}
	}
	if r.Category == "" {
		r.Category = "general"
	}
	if r.Weight == 0 {
		r.Weight = 1
	}
	if r.Weight < 0 {
		return &ErrorResponse{Code: "invalid_weight", Message: "weight must be positive"}
	}
	return nil
}
