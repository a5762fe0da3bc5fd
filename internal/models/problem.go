package models

import (
	"fmt"
	"strings"
	"time"
)

// SchemaVersion is the current version of the persisted Problem record.
// Version 1 records carried per-user flags and a localized pass-rate field.
const SchemaVersion = 2

type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

// Difficulties lists every difficulty in display order.
var Difficulties = []Difficulty{DifficultyEasy, DifficultyMedium, DifficultyHard}

func (d Difficulty) Valid() bool {
	switch d {
	case DifficultyEasy, DifficultyMedium, DifficultyHard:
		return true
	}
	return false
}

// Label returns the display label used in generated problem titles.
func (d Difficulty) Label() string {
	switch d {
	case DifficultyEasy:
		return "简单"
	case DifficultyMedium:
		return "中等"
	case DifficultyHard:
		return "困难"
	default:
		return string(d)
	}
}

// ParseDifficulty parses a difficulty case-insensitively.
func ParseDifficulty(s string) (Difficulty, error) {
	d := Difficulty(strings.ToLower(strings.TrimSpace(s)))
	if !d.Valid() {
		return "", fmt.Errorf("unknown difficulty %q", s)
	}
	return d, nil
}

// Category sentinels that match every problem.
const (
	CategoryAll      = "全部"
	CategoryAllAlias = "All"
)

// Categories is the closed set of subject tags a problem can belong to.
var Categories = []string{
	"计算机组成原理",
	"数据结构",
	"计算机网络",
	"操作系统",
	"Java",
	"Python",
	"C语言",
	"算法分析",
}

// ValidCategory reports whether c is one of Categories.
func ValidCategory(c string) bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

type Example struct {
	Input       string `json:"input" yaml:"input"`
	Output      string `json:"output" yaml:"output"`
	Explanation string `json:"explanation,omitempty" yaml:"explanation"`
}

type TestCase struct {
	Input          string `json:"input" yaml:"input"`
	ExpectedOutput string `json:"expected_output" yaml:"expectedOutput"`
	Hidden         bool   `json:"hidden" yaml:"hidden"`
}

type Problem struct {
	ID                  int64      `json:"id" yaml:"id"`
	Slug                string     `json:"slug" yaml:"slug"`
	Title               string     `json:"title" yaml:"title"`
	Difficulty          Difficulty `json:"difficulty" yaml:"difficulty"`
	Category            string     `json:"category" yaml:"category"`
	Tags                []string   `json:"tags" yaml:"tags"`
	Description         string     `json:"description,omitempty" yaml:"description"`
	Examples            []Example  `json:"examples,omitempty" yaml:"examples"`
	Constraints         []string   `json:"constraints,omitempty" yaml:"constraints"`
	InitialCode         string     `json:"initial_code,omitempty" yaml:"initialCode"`
	TestCases           []TestCase `json:"test_cases,omitempty" yaml:"testCases"`
	TotalSubmissions    int        `json:"total_submissions" yaml:"totalSubmissions"`
	AcceptedSubmissions int        `json:"accepted_submissions" yaml:"acceptedSubmissions"`
	SchemaVersion       int        `json:"schema_version" yaml:"-"`
	CreatedAt           time.Time  `json:"created_at" yaml:"-"`
	UpdatedAt           time.Time  `json:"updated_at" yaml:"-"`
}

// Validate checks the invariants every stored problem must satisfy.
func (p Problem) Validate() error {
	switch {
	case p.ID <= 0:
		return fmt.Errorf("problem id must be positive, got %d", p.ID)
	case strings.TrimSpace(p.Title) == "":
		return fmt.Errorf("problem %d: title is empty", p.ID)
	case !p.Difficulty.Valid():
		return fmt.Errorf("problem %d: unknown difficulty %q", p.ID, p.Difficulty)
	case !ValidCategory(p.Category):
		return fmt.Errorf("problem %d: unknown category %q", p.ID, p.Category)
	case p.TotalSubmissions < 0 || p.AcceptedSubmissions < 0:
		return fmt.Errorf("problem %d: negative submission counters", p.ID)
	case p.AcceptedSubmissions > p.TotalSubmissions:
		return fmt.Errorf("problem %d: accepted submissions (%d) exceed total (%d)", p.ID, p.AcceptedSubmissions, p.TotalSubmissions)
	}
	return nil
}

// PublicTestCases returns the test cases that may be shown to a solver.
func (p Problem) PublicTestCases() []TestCase {
	out := make([]TestCase, 0, len(p.TestCases))
	for _, tc := range p.TestCases {
		if !tc.Hidden {
			out = append(out, tc)
		}
	}
	return out
}

// ProblemFilter narrows repository listings. Zero values mean no restriction.
type ProblemFilter struct {
	IDs          []int64
	Category     string
	Difficulties []Difficulty
}

// ProblemPatch carries the partial fields accepted by PATCH /problems/:id.
type ProblemPatch struct {
	Title               *string     `json:"title,omitempty"`
	Difficulty          *Difficulty `json:"difficulty,omitempty"`
	Category            *string     `json:"category,omitempty"`
	Tags                *[]string   `json:"tags,omitempty"`
	Description         *string     `json:"description,omitempty"`
	TotalSubmissions    *int        `json:"totalSubmissions,omitempty"`
	AcceptedSubmissions *int        `json:"acceptedSubmissions,omitempty"`
}

// Apply returns a copy of p with the patch applied.
func (pp ProblemPatch) Apply(p Problem) Problem {
	if pp.Title != nil {
		p.Title = *pp.Title
	}
	if pp.Difficulty != nil {
		p.Difficulty = *pp.Difficulty
	}
	if pp.Category != nil {
		p.Category = *pp.Category
	}
	if pp.Tags != nil {
		p.Tags = append([]string(nil), (*pp.Tags)...)
	}
	if pp.Description != nil {
		p.Description = *pp.Description
	}
	if pp.TotalSubmissions != nil {
		p.TotalSubmissions = *pp.TotalSubmissions
	}
	if pp.AcceptedSubmissions != nil {
		p.AcceptedSubmissions = *pp.AcceptedSubmissions
	}
	return p
}

// ProblemStatus is the per-user overlay for a single problem.
type ProblemStatus struct {
	Completed  bool `json:"completed"`
	Bookmarked bool `json:"bookmarked"`
	Attempts   int  `json:"attempts"`
}

// EnhancedProblem is a catalog entry merged with the viewer's overlay and its
// pass rate. It is derived on demand and never persisted.
type EnhancedProblem struct {
	Problem
	ProblemStatus
	PassRate float64 `json:"pass_rate"`
}
