// Package repository declares one persistence interface per logical
// collection. Services depend on these; sqlite provides the implementation
// and testutil/mocks provides fakes.
package repository

import (
	"context"
	"time"

	"github.com/vytor/codedrill/internal/models"
)

// ProblemRepository owns the catalog snapshot.
type ProblemRepository interface {
	Get(ctx context.Context, id int64) (*models.Problem, error)
	List(ctx context.Context, filter models.ProblemFilter) ([]models.Problem, error)
	Count(ctx context.Context, filter models.ProblemFilter) (int, error)
	Insert(ctx context.Context, problem models.Problem) (int64, error)
	Upsert(ctx context.Context, problem models.Problem) error
	// ReplaceAll makes problems the whole catalog in one transaction.
	ReplaceAll(ctx context.Context, problems []models.Problem) error
}

// SubmissionRepository owns UserSubmissionRecord and its history.
type SubmissionRepository interface {
	// Get returns nil, nil when the user never submitted to the problem.
	Get(ctx context.Context, problemID int64, userID string) (*models.UserSubmissionRecord, error)
	ListByUser(ctx context.Context, userID string) ([]models.UserSubmissionRecord, error)
	// AppendEntry creates the record if needed, bumps attempts and appends
	// entry. IsCompleted only ever moves from false to true.
	AppendEntry(ctx context.Context, problemID int64, userID string, entry models.SubmissionEntry) (*models.UserSubmissionRecord, error)
}

// BookmarkRepository owns UserBookmark. Absence of a row means not bookmarked.
type BookmarkRepository interface {
	Toggle(ctx context.Context, problemID int64, userID string, at time.Time) (bool, error)
	Exists(ctx context.Context, problemID int64, userID string) (bool, error)
	ListByUser(ctx context.Context, userID string) ([]models.Bookmark, error)
}

// DraftRepository owns in-progress code for unsolved problems.
type DraftRepository interface {
	Save(ctx context.Context, draft models.Draft) error
	// Get returns nil, nil when no draft exists.
	Get(ctx context.Context, userID string, problemID int64) (*models.Draft, error)
	ListByUser(ctx context.Context, userID string) ([]models.Draft, error)
	Delete(ctx context.Context, userID string, problemID int64) error
}

// PreferenceRepository owns per-user UI preferences.
type PreferenceRepository interface {
	// Get returns the defaults when the user never saved preferences.
	Get(ctx context.Context, userID string) (models.Preferences, error)
	Save(ctx context.Context, prefs models.Preferences) error
}
