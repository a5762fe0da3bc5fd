package models

import "time"

// Generation request bounds.
const (
	MinGenerationCount = 1
	MaxGenerationCount = 5
)

type GenerationOptions struct {
	Difficulty    Difficulty `json:"difficulty"`
	Category      string     `json:"category"`
	Tags          []string   `json:"tags"`
	QuestionCount int        `json:"question_count"`
}

type GenerationStatus string

const (
	GenerationPending GenerationStatus = "pending"
	GenerationRunning GenerationStatus = "running"
	GenerationDone    GenerationStatus = "done"
	GenerationFailed  GenerationStatus = "failed"
)

type GenerationJob struct {
	ID          string            `json:"id"`
	UserID      string            `json:"user_id"`
	Options     GenerationOptions `json:"options"`
	Status      GenerationStatus  `json:"status"`
	Problems    []Problem         `json:"problems,omitempty"`
	Error       string            `json:"error,omitempty"`
	CreatedAt   time.Time         `json:"created_at"`
	CompletedAt *time.Time        `json:"completed_at,omitempty"`
}
