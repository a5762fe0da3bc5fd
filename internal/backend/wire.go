package backend

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/vytor/codedrill/internal/models"
)

// FlexibleID accepts both numeric and string ids, as json-server emits either
// depending on how a record was created.
type FlexibleID string

func (id *FlexibleID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*id = FlexibleID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("id must be a string or number: %w", err)
	}
	*id = FlexibleID(n.String())
	return nil
}

// Int64 parses the id as a positive integer.
func (id FlexibleID) Int64() (int64, error) {
	n, err := strconv.ParseInt(strings.TrimSpace(string(id)), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("id %q is not numeric", string(id))
	}
	if n <= 0 {
		return 0, fmt.Errorf("id %d is not positive", n)
	}
	return n, nil
}

type wireExample struct {
	Input       string `json:"input"`
	Output      string `json:"output"`
	Explanation string `json:"explanation,omitempty"`
}

type wireTestCase struct {
	Input          string `json:"input"`
	ExpectedOutput string `json:"expectedOutput"`
	Hidden         bool   `json:"hidden,omitempty"`
}

// Problem is the record shape of the mock backend. Version 1 records carried
// per-user flags (completed, bookmarked) and a localized pass-rate field; those
// are accepted on input and dropped during migration.
type Problem struct {
	ID                  FlexibleID     `json:"id"`
	Slug                string         `json:"slug,omitempty"`
	Title               string         `json:"title"`
	Difficulty          string         `json:"difficulty"`
	Category            string         `json:"category"`
	Tags                []string       `json:"tags"`
	Description         string         `json:"description,omitempty"`
	Examples            []wireExample  `json:"examples,omitempty"`
	Constraints         []string       `json:"constraints,omitempty"`
	InitialCode         string         `json:"initialCode,omitempty"`
	TestCases           []wireTestCase `json:"testCases,omitempty"`
	TotalSubmissions    *int           `json:"totalSubmissions,omitempty"`
	AcceptedSubmissions *int           `json:"acceptedSubmissions,omitempty"`
	SchemaVersion       int            `json:"schemaVersion,omitempty"`

	LegacyCompleted  *bool    `json:"completed,omitempty"`
	LegacyBookmarked *bool    `json:"bookmarked,omitempty"`
	LegacyPassRate   *float64 `json:"通过率,omitempty"`
}

// ToModel migrates the record to the current schema and validates it.
func (w Problem) ToModel() (models.Problem, error) {
	id, err := w.ID.Int64()
	if err != nil {
		return models.Problem{}, err
	}

	p := models.Problem{
		ID:            id,
		Slug:          w.Slug,
		Title:         strings.TrimSpace(w.Title),
		Difficulty:    models.Difficulty(strings.ToLower(strings.TrimSpace(w.Difficulty))),
		Category:      strings.TrimSpace(w.Category),
		Tags:          append([]string{}, w.Tags...),
		Description:   w.Description,
		Constraints:   append([]string{}, w.Constraints...),
		InitialCode:   w.InitialCode,
		SchemaVersion: models.SchemaVersion,
	}
	for _, e := range w.Examples {
		p.Examples = append(p.Examples, models.Example(e))
	}
	for _, tc := range w.TestCases {
		p.TestCases = append(p.TestCases, models.TestCase(tc))
	}
	if w.TotalSubmissions != nil {
		p.TotalSubmissions = *w.TotalSubmissions
	}
	if w.AcceptedSubmissions != nil {
		p.AcceptedSubmissions = *w.AcceptedSubmissions
	}

	if err := p.Validate(); err != nil {
		return models.Problem{}, err
	}
	return p, nil
}

// Legacy reports whether the record predates the current schema.
func (w Problem) Legacy() bool {
	return w.SchemaVersion < models.SchemaVersion ||
		w.LegacyCompleted != nil || w.LegacyBookmarked != nil || w.LegacyPassRate != nil
}

// FromModel renders p in the backend's current record shape.
func FromModel(p models.Problem) Problem {
	total, accepted := p.TotalSubmissions, p.AcceptedSubmissions
	w := Problem{
		ID:                  FlexibleID(strconv.FormatInt(p.ID, 10)),
		Slug:                p.Slug,
		Title:               p.Title,
		Difficulty:          string(p.Difficulty),
		Category:            p.Category,
		Tags:                append([]string{}, p.Tags...),
		Description:         p.Description,
		Constraints:         p.Constraints,
		InitialCode:         p.InitialCode,
		TotalSubmissions:    &total,
		AcceptedSubmissions: &accepted,
		SchemaVersion:       models.SchemaVersion,
	}
	for _, e := range p.Examples {
		w.Examples = append(w.Examples, wireExample(e))
	}
	for _, tc := range p.TestCases {
		w.TestCases = append(w.TestCases, wireTestCase(tc))
	}
	return w
}

// MarshalJSON emits ids as numbers when they are numeric.
func (id FlexibleID) MarshalJSON() ([]byte, error) {
	if n, err := strconv.ParseInt(string(id), 10, 64); err == nil {
		return []byte(strconv.FormatInt(n, 10)), nil
	}
	return json.Marshal(string(id))
}

// User is a mock backend account.
type User struct {
	ID        FlexibleID `json:"id"`
	Email     string     `json:"email"`
	Password  string     `json:"password"`
	StudentID string     `json:"studentId"`
	Name      string     `json:"name,omitempty"`
}
