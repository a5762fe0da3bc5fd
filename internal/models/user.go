package models

import "time"

// AnonymousUserID is the overlay owner used when no user is signed in.
const AnonymousUserID = "anonymous"

type User struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	StudentID string `json:"student_id"`
	Name      string `json:"name,omitempty"`
}

// Session is the persisted sign-in identity. ExpiresAt is the hard expiry;
// Remember distinguishes long-lived sessions from browser-session ones.
type Session struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Email     string    `json:"email"`
	StudentID string    `json:"student_id"`
	Remember  bool      `json:"remember"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

func (s Session) Expired(now time.Time) bool {
	return !s.ExpiresAt.IsZero() && !now.Before(s.ExpiresAt)
}

type Preferences struct {
	UserID             string `json:"user_id"`
	BgColor            string `json:"bg_color"`
	DarkMode           bool   `json:"dark_mode"`
	EmailNotifications bool   `json:"email_notifications"`
	DailyReminders     bool   `json:"daily_reminders"`
}

// DefaultPreferences returns the preferences of a user who never saved any.
func DefaultPreferences(userID string) Preferences {
	return Preferences{
		UserID:             userID,
		BgColor:            "#ffffff",
		EmailNotifications: true,
		DailyReminders:     true,
	}
}
