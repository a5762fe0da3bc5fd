package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/vytor/codedrill/internal/logger"
	"github.com/vytor/codedrill/internal/models"
	"github.com/vytor/codedrill/internal/repository"
)

type bookmarkRepository struct {
	db *sql.DB
}

// NewBookmarkRepository creates a new BookmarkRepository implementation
func NewBookmarkRepository(db *sql.DB) repository.BookmarkRepository {
	return &bookmarkRepository{db: db}
}

// Toggle deletes the bookmark if present and inserts it otherwise, returning
// the resulting state.
func (r *bookmarkRepository) Toggle(ctx context.Context, problemID int64, userID string, at time.Time) (bool, error) {
	log := logger.FromContext(ctx).WithPrefix("bookmark_repo")
	log.Debug("toggling bookmark: problem_id=%d, user_id=%s", problemID, userID)

	var bookmarked bool
	err := tx(ctx, r.db, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `DELETE FROM bookmarks WHERE problem_id = ? AND user_id = ?`, problemID, userID)
		if err != nil {
			return err
		}
		removed, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if removed > 0 {
			bookmarked = false
			return nil
		}

		if _, err := tx.ExecContext(ctx, `INSERT INTO bookmarks (problem_id, user_id, bookmarked_at) VALUES (?, ?, ?)`,
			problemID, userID, at.UTC()); err != nil {
			return err
		}
		bookmarked = true
		return nil
	})
	if err != nil {
		log.Error("failed to toggle bookmark: %v", err)
		return false, err
	}

	log.Debug("bookmark toggled: bookmarked=%t", bookmarked)
	return bookmarked, nil
}

func (r *bookmarkRepository) Exists(ctx context.Context, problemID int64, userID string) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM bookmarks WHERE problem_id = ? AND user_id = ?)`,
		problemID, userID).Scan(&exists)
	if err != nil {
		logger.FromContext(ctx).WithPrefix("bookmark_repo").Error("failed to check bookmark: %v", err)
		return false, err
	}
	return exists, nil
}

func (r *bookmarkRepository) ListByUser(ctx context.Context, userID string) ([]models.Bookmark, error) {
	log := logger.FromContext(ctx).WithPrefix("bookmark_repo")
	log.Debug("listing bookmarks: user_id=%s", userID)

	rows, err := r.db.QueryContext(ctx, `
SELECT problem_id, user_id, bookmarked_at
FROM bookmarks
WHERE user_id = ?
ORDER BY bookmarked_at DESC, problem_id ASC
`, userID)
	if err != nil {
		log.Error("failed to list bookmarks: %v", err)
		return nil, err
	}
	defer rows.Close()

	var out []models.Bookmark
	for rows.Next() {
		var b models.Bookmark
		if err := rows.Scan(&b.ProblemID, &b.UserID, &b.BookmarkedAt); err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}
