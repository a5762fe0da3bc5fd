package sqlite

import (
	"context"
	"database/sql"
	"errors"

	"github.com/vytor/codedrill/internal/logger"
	"github.com/vytor/codedrill/internal/models"
	"github.com/vytor/codedrill/internal/repository"
)

type preferenceRepository struct {
	db *sql.DB
}

// NewPreferenceRepository creates a new PreferenceRepository implementation
func NewPreferenceRepository(db *sql.DB) repository.PreferenceRepository {
	return &preferenceRepository{db: db}
}

func (r *preferenceRepository) Get(ctx context.Context, userID string) (models.Preferences, error) {
	log := logger.FromContext(ctx).WithPrefix("preference_repo")

	p := models.Preferences{UserID: userID}
	err := r.db.QueryRowContext(ctx, `
SELECT bg_color, dark_mode, email_notifications, daily_reminders
FROM preferences
WHERE user_id = ?
`, userID).Scan(&p.BgColor, &p.DarkMode, &p.EmailNotifications, &p.DailyReminders)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("no saved preferences, using defaults: user_id=%s", userID)
			return models.DefaultPreferences(userID), nil
		}
		log.Error("failed to get preferences: %v", err)
		return models.Preferences{}, err
	}
	return p, nil
}

func (r *preferenceRepository) Save(ctx context.Context, p models.Preferences) error {
	log := logger.FromContext(ctx).WithPrefix("preference_repo")
	log.Debug("saving preferences: user_id=%s", p.UserID)

	_, err := r.db.ExecContext(ctx, `
INSERT INTO preferences (user_id, bg_color, dark_mode, email_notifications, daily_reminders, updated_at)
VALUES (?, ?, ?, ?, ?, CURRENT_TIMESTAMP)
ON CONFLICT(user_id) DO UPDATE SET
	bg_color = excluded.bg_color,
	dark_mode = excluded.dark_mode,
	email_notifications = excluded.email_notifications,
	daily_reminders = excluded.daily_reminders,
	updated_at = excluded.updated_at
`, p.UserID, p.BgColor, p.DarkMode, p.EmailNotifications, p.DailyReminders)
	if err != nil {
		log.Error("failed to save preferences: %v", err)
	}
	return err
}
