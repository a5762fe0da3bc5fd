package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/vytor/codedrill/internal/logger"
	"github.com/vytor/codedrill/internal/models"
	"github.com/vytor/codedrill/internal/repository"
)

type submissionRepository struct {
	db *sql.DB
}

// NewSubmissionRepository creates a new SubmissionRepository implementation
func NewSubmissionRepository(db *sql.DB) repository.SubmissionRepository {
	return &submissionRepository{db: db}
}

type queryer interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func getRecord(ctx context.Context, q queryer, problemID int64, userID string) (*models.UserSubmissionRecord, error) {
	var rec models.UserSubmissionRecord
	var status string
	err := q.QueryRowContext(ctx, `
SELECT problem_id, user_id, attempts, last_status, last_submission_time, is_completed
FROM submission_records
WHERE problem_id = ? AND user_id = ?
`, problemID, userID).Scan(&rec.ProblemID, &rec.UserID, &rec.Attempts, &status, &rec.LastSubmissionTime, &rec.IsCompleted)
	if err != nil {
		return nil, err
	}
	rec.LastStatus = models.SubmissionStatus(status)

	history, err := listHistory(ctx, q, squirrel.Eq{"user_id": userID, "problem_id": problemID})
	if err != nil {
		return nil, err
	}
	rec.SubmissionHistory = history[problemID]
	if rec.SubmissionHistory == nil {
		rec.SubmissionHistory = []models.SubmissionEntry{}
	}
	return &rec, nil
}

// listHistory returns history entries grouped by problem id, oldest first.
func listHistory(ctx context.Context, q queryer, where squirrel.Eq) (map[int64][]models.SubmissionEntry, error) {
	query, args, err := sqlBuilder.
		Select("id", "problem_id", "status", "code", "time_spent_seconds", "submitted_at").
		From("submission_history").
		Where(where).
		OrderBy("submitted_at ASC", "id ASC").
		ToSql()
	if err != nil {
		return nil, err
	}
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[int64][]models.SubmissionEntry)
	for rows.Next() {
		var e models.SubmissionEntry
		var problemID int64
		var status string
		if err := rows.Scan(&e.ID, &problemID, &status, &e.Code, &e.TimeSpentSeconds, &e.Timestamp); err != nil {
			return nil, err
		}
		e.Status = models.SubmissionStatus(status)
		out[problemID] = append(out[problemID], e)
	}
	return out, rows.Err()
}

func (r *submissionRepository) Get(ctx context.Context, problemID int64, userID string) (*models.UserSubmissionRecord, error) {
	log := logger.FromContext(ctx).WithPrefix("submission_repo")
	log.Debug("getting submission record: problem_id=%d, user_id=%s", problemID, userID)

	rec, err := getRecord(ctx, r.db, problemID, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("no submission record: problem_id=%d, user_id=%s", problemID, userID)
			return nil, nil
		}
		log.Error("failed to get submission record: %v", err)
		return nil, err
	}
	return rec, nil
}

func (r *submissionRepository) ListByUser(ctx context.Context, userID string) ([]models.UserSubmissionRecord, error) {
	log := logger.FromContext(ctx).WithPrefix("submission_repo")
	log.Debug("listing submission records: user_id=%s", userID)

	rows, err := r.db.QueryContext(ctx, `
SELECT problem_id, user_id, attempts, last_status, last_submission_time, is_completed
FROM submission_records
WHERE user_id = ?
ORDER BY problem_id ASC
`, userID)
	if err != nil {
		log.Error("failed to list submission records: %v", err)
		return nil, err
	}
	defer rows.Close()

	var records []models.UserSubmissionRecord
	for rows.Next() {
		var rec models.UserSubmissionRecord
		var status string
		if err := rows.Scan(&rec.ProblemID, &rec.UserID, &rec.Attempts, &status, &rec.LastSubmissionTime, &rec.IsCompleted); err != nil {
			log.Error("failed to scan submission record: %v", err)
			return nil, err
		}
		rec.LastStatus = models.SubmissionStatus(status)
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	history, err := listHistory(ctx, r.db, squirrel.Eq{"user_id": userID})
	if err != nil {
		log.Error("failed to list submission history: %v", err)
		return nil, err
	}
	for i := range records {
		records[i].SubmissionHistory = history[records[i].ProblemID]
		if records[i].SubmissionHistory == nil {
			records[i].SubmissionHistory = []models.SubmissionEntry{}
		}
	}

	log.Debug("listed %d submission records", len(records))
	return records, nil
}

func (r *submissionRepository) AppendEntry(ctx context.Context, problemID int64, userID string, entry models.SubmissionEntry) (*models.UserSubmissionRecord, error) {
	log := logger.FromContext(ctx).WithPrefix("submission_repo")
	log.Debug("appending submission: problem_id=%d, user_id=%s, status=%s", problemID, userID, entry.Status)

	if entry.Timestamp.IsZero() {
		entry.Timestamp = time.Now().UTC()
	}
	accepted := entry.Status == models.StatusAccepted

	var rec *models.UserSubmissionRecord
	err := tx(ctx, r.db, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `
INSERT INTO submission_records (problem_id, user_id, attempts, last_status, last_submission_time, is_completed)
VALUES (?, ?, 1, ?, ?, ?)
ON CONFLICT(problem_id, user_id) DO UPDATE SET
	attempts = attempts + 1,
	last_status = excluded.last_status,
	last_submission_time = excluded.last_submission_time,
	is_completed = MAX(is_completed, excluded.is_completed)
`, problemID, userID, string(entry.Status), entry.Timestamp, accepted); err != nil {
			return err
		}

		if _, err := tx.ExecContext(ctx, `
INSERT INTO submission_history (problem_id, user_id, status, code, time_spent_seconds, submitted_at)
VALUES (?, ?, ?, ?, ?, ?)
`, problemID, userID, string(entry.Status), entry.Code, entry.TimeSpentSeconds, entry.Timestamp); err != nil {
			return err
		}

		var err error
		rec, err = getRecord(ctx, tx, problemID, userID)
		return err
	})
	if err != nil {
		log.Error("failed to append submission: %v", err)
		return nil, err
	}

	log.Debug("submission appended: attempts=%d, completed=%t", rec.Attempts, rec.IsCompleted)
	return rec, nil
}
