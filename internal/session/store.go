// Package session persists signed-in identities. A session outlives the JWT
// that references it only until ExpiresAt; Delete revokes it immediately.
package session

import (
	"context"
	"errors"
	"time"

	"github.com/vytor/codedrill/internal/models"
)

// ErrNotFound is returned for unknown, expired or revoked sessions.
var ErrNotFound = errors.New("session not found")

type Store interface {
	Save(ctx context.Context, s models.Session) error
	Get(ctx context.Context, id string) (*models.Session, error)
	Delete(ctx context.Context, id string) error
}

// ttl returns how long s remains valid at now, or zero when already expired.
func ttl(s models.Session, now time.Time) time.Duration {
	d := s.ExpiresAt.Sub(now)
	if d < 0 {
		return 0
	}
	return d
}
