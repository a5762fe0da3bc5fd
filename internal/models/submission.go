package models

import "time"

type SubmissionStatus string

const (
	StatusAccepted          SubmissionStatus = "accepted"
	StatusWrongAnswer       SubmissionStatus = "wrong_answer"
	StatusTimeLimitExceeded SubmissionStatus = "time_limit_exceeded"
)

func (s SubmissionStatus) Valid() bool {
	switch s {
	case StatusAccepted, StatusWrongAnswer, StatusTimeLimitExceeded:
		return true
	}
	return false
}

// SubmissionEntry is one element of a record's append-only history.
type SubmissionEntry struct {
	ID               int64            `json:"id"`
	Timestamp        time.Time        `json:"timestamp"`
	Status           SubmissionStatus `json:"status"`
	Code             string           `json:"code"`
	TimeSpentSeconds int              `json:"time_spent_seconds"`
}

// UserSubmissionRecord is keyed by (ProblemID, UserID). IsCompleted never
// reverts once set and holds iff some history entry is accepted.
type UserSubmissionRecord struct {
	ProblemID          int64             `json:"problem_id"`
	UserID             string            `json:"user_id"`
	Attempts           int               `json:"attempts"`
	LastStatus         SubmissionStatus  `json:"last_status"`
	LastSubmissionTime time.Time         `json:"last_submission_time"`
	IsCompleted        bool              `json:"is_completed"`
	SubmissionHistory  []SubmissionEntry `json:"submission_history"`
}

type Bookmark struct {
	ProblemID    int64     `json:"problem_id"`
	UserID       string    `json:"user_id"`
	BookmarkedAt time.Time `json:"bookmarked_at"`
}

// Draft is in-progress code for a problem the user has not solved yet.
type Draft struct {
	UserID           string    `json:"user_id"`
	ProblemID        int64     `json:"problem_id"`
	Code             string    `json:"code"`
	TimeSpentSeconds int       `json:"time_spent_seconds"`
	LastAccessed     time.Time `json:"last_accessed"`
}
