package models

import (
	"time"

	"gorm.io/gorm"
)

// ResumeKeyword is one weighted term of the resume scoring configuration.
type ResumeKeyword struct {
	gorm.Model
	Keyword  string  `gorm:"uniqueIndex;not null" json:"keyword"`
	Category string  `gorm:"not null;default:general" json:"category"`
	Weight   float64 `gorm:"not null;default:1" json:"weight"`
}

// ResumeAnalysis stores the outcome of scoring one uploaded resume. Keyword
// lists are stored as JSON arrays.
type ResumeAnalysis struct {
	ID              string    `gorm:"primaryKey" json:"id"`
	CandidateID     string    `gorm:"index" json:"candidate_id,omitempty"`
	FileName        string    `gorm:"not null" json:"file_name"`
	ContentText     string    `gorm:"type:text" json:"-"`
	Score           float64   `gorm:"not null" json:"score"`
	SkillsFound     []string  `gorm:"serializer:json;type:text" json:"-"`
	MissingKeywords []string  `gorm:"serializer:json;type:text" json:"-"`
	TotalKeywords   int       `json:"total_keywords"`
	CreatedAt       time.Time `json:"created_at"`
}
