package models

import "time"

type NamedCount struct {
	Name  string `json:"name"`
	Value int    `json:"value"`
}

type DailyProgress struct {
	Day            string `json:"day"`
	Date           string `json:"date"`
	ProblemsSolved int    `json:"problems_solved"`
}

type LearningStats struct {
	TotalProblems          int             `json:"total_problems"`
	CompletedProblems      int             `json:"completed_problems"`
	CompletionPercentage   int             `json:"completion_percentage"`
	AccuracyRate           float64         `json:"accuracy_rate"`
	DailyStreak            int             `json:"daily_streak"`
	AverageTimePerProblem  float64         `json:"average_time_per_problem"` // minutes
	ProblemsByCategory     []NamedCount    `json:"problems_by_category"`
	WeeklyProgress         []DailyProgress `json:"weekly_progress"`
	DifficultyDistribution []NamedCount    `json:"difficulty_distribution"`
}

type WrongProblem struct {
	ID           int64      `json:"id"`
	Title        string     `json:"title"`
	Category     string     `json:"category"`
	Difficulty   Difficulty `json:"difficulty"`
	LastAttempt  time.Time  `json:"last_attempt"`
	MistakeCount int        `json:"mistake_count"`
}
