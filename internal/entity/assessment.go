package entity

import "time"

type Rating string

const (
	RatingExcellent Rating = "EXCELLENT"
	RatingGood      Rating = "GOOD"
	RatingFair      Rating = "FAIR"
	RatingPoor      Rating = "POOR"
)

// QualityAssessment is the immutable result of scoring one candidate on one
// attempt. Rating is always derived from Score via a fixed band table.
type QualityAssessment struct {
	Rating                 Rating   `json:"rating"`
	Score                  int      `json:"score"`
	Strengths              []string `json:"strengths,omitempty"`
	Weaknesses             []string `json:"weaknesses,omitempty"`
	SpecificIssues         []string `json:"specific_issues,omitempty"`
	ImprovementSuggestions []string `json:"improvement_suggestions,omitempty"`
}

// ModelConfig describes one model in the fallback chain. The ordered list of
// configs is immutable for the process lifetime; index 0 is tried first.
type ModelConfig struct {
	Name        string        `json:"name"`
	DisplayName string        `json:"display_name"`
	Timeout     time.Duration `json:"timeout"`
	MaxAttempts int           `json:"max_attempts"`
	Strengths   []string      `json:"strengths,omitempty"`
}

// ModelAttempt records one generation attempt against one model. Attempts are
// appended to a cycle-scoped history and never mutated afterwards.
type ModelAttempt struct {
	ModelName     string        `json:"model_name"`
	AttemptNumber int           `json:"attempt_number"`
	Success       bool          `json:"success"`
	QualityScore  int           `json:"quality_score"`
	ErrorMessage  string        `json:"error_message,omitempty"`
	Duration      time.Duration `json:"duration"`
}

// LLMUsage carries per-call token metadata when the provider reports it.
type LLMUsage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
}

func (u LLMUsage) Total() int {
	return u.PromptTokens + u.CompletionTokens
}
