package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/vytor/codedrill/internal/logger"
	"github.com/vytor/codedrill/internal/models"
	"github.com/vytor/codedrill/internal/repository"
)

type draftRepository struct {
	db *sql.DB
}

// NewDraftRepository creates a new DraftRepository implementation
func NewDraftRepository(db *sql.DB) repository.DraftRepository {
	return &draftRepository{db: db}
}

func (r *draftRepository) Save(ctx context.Context, d models.Draft) error {
	log := logger.FromContext(ctx).WithPrefix("draft_repo")
	log.Debug("saving draft: user_id=%s, problem_id=%d, bytes=%d", d.UserID, d.ProblemID, len(d.Code))

	if d.LastAccessed.IsZero() {
		d.LastAccessed = time.Now().UTC()
	}
	_, err := r.db.ExecContext(ctx, `
INSERT INTO drafts (user_id, problem_id, code, time_spent_seconds, last_accessed)
VALUES (?, ?, ?, ?, ?)
ON CONFLICT(user_id, problem_id) DO UPDATE SET
	code = excluded.code,
	time_spent_seconds = excluded.time_spent_seconds,
	last_accessed = excluded.last_accessed
`, d.UserID, d.ProblemID, d.Code, d.TimeSpentSeconds, d.LastAccessed.UTC())
	if err != nil {
		log.Error("failed to save draft: %v", err)
	}
	return err
}

func (r *draftRepository) Get(ctx context.Context, userID string, problemID int64) (*models.Draft, error) {
	log := logger.FromContext(ctx).WithPrefix("draft_repo")

	var d models.Draft
	err := r.db.QueryRowContext(ctx, `
SELECT user_id, problem_id, code, time_spent_seconds, last_accessed
FROM drafts
WHERE user_id = ? AND problem_id = ?
`, userID, problemID).Scan(&d.UserID, &d.ProblemID, &d.Code, &d.TimeSpentSeconds, &d.LastAccessed)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		log.Error("failed to get draft: %v", err)
		return nil, err
	}
	return &d, nil
}

func (r *draftRepository) ListByUser(ctx context.Context, userID string) ([]models.Draft, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT user_id, problem_id, code, time_spent_seconds, last_accessed
FROM drafts
WHERE user_id = ?
ORDER BY last_accessed DESC
`, userID)
	if err != nil {
		logger.FromContext(ctx).WithPrefix("draft_repo").Error("failed to list drafts: %v", err)
		return nil, err
	}
	defer rows.Close()

	var out []models.Draft
	for rows.Next() {
		var d models.Draft
		if err := rows.Scan(&d.UserID, &d.ProblemID, &d.Code, &d.TimeSpentSeconds, &d.LastAccessed); err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

func (r *draftRepository) Delete(ctx context.Context, userID string, problemID int64) error {
	log := logger.FromContext(ctx).WithPrefix("draft_repo")
	log.Debug("deleting draft: user_id=%s, problem_id=%d", userID, problemID)

	_, err := r.db.ExecContext(ctx, `DELETE FROM drafts WHERE user_id = ? AND problem_id = ?`, userID, problemID)
	if err != nil {
		log.Error("failed to delete draft: %v", err)
	}
	return err
}
