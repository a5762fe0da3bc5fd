package session

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/vytor/codedrill/internal/logger"
	"github.com/vytor/codedrill/internal/models"
)

// SQLiteStore keeps sessions in the sessions table. Expiry is checked on
// read; expired rows are removed lazily.
type SQLiteStore struct {
	db  *sql.DB
	now func() time.Time
}

func NewSQLiteStore(db *sql.DB) *SQLiteStore {
	return &SQLiteStore{db: db, now: time.Now}
}

func (s *SQLiteStore) Save(ctx context.Context, sess models.Session) error {
	log := logger.FromContext(ctx).WithPrefix("session_sqlite")

	_, err := s.db.ExecContext(ctx, `
INSERT INTO sessions (id, user_id, email, student_id, remember, created_at, expires_at)
VALUES (?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(id) DO UPDATE SET expires_at = excluded.expires_at
`, sess.ID, sess.UserID, sess.Email, sess.StudentID, sess.Remember, sess.CreatedAt.UTC(), sess.ExpiresAt.UTC())
	if err != nil {
		log.Error("failed to store session: %v", err)
		return err
	}
	log.Debug("session stored: id=%s, expires_at=%s", sess.ID, sess.ExpiresAt.Format(time.RFC3339))
	return nil
}

func (s *SQLiteStore) Get(ctx context.Context, id string) (*models.Session, error) {
	var sess models.Session
	err := s.db.QueryRowContext(ctx, `
SELECT id, user_id, email, student_id, remember, created_at, expires_at
FROM sessions
WHERE id = ?
`, id).Scan(&sess.ID, &sess.UserID, &sess.Email, &sess.StudentID, &sess.Remember, &sess.CreatedAt, &sess.ExpiresAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		logger.FromContext(ctx).WithPrefix("session_sqlite").Error("failed to load session: %v", err)
		return nil, err
	}
	if sess.Expired(s.now()) {
		_ = s.Delete(ctx, id)
		return nil, ErrNotFound
	}
	return &sess, nil
}

func (s *SQLiteStore) Delete(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM sessions WHERE id = ?`, id)
	return err
}

// Purge removes every expired session and reports how many were dropped.
func (s *SQLiteStore) Purge(ctx context.Context) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM sessions WHERE expires_at <= ?`, s.now().UTC())
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
