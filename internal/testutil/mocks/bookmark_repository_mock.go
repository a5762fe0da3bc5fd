package mocks

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/vytor/codedrill/internal/models"
)

// MockBookmarkRepository is a mock implementation of repository.BookmarkRepository
type MockBookmarkRepository struct {
	mock.Mock
}

func (m *MockBookmarkRepository) Toggle(ctx context.Context, problemID int64, userID string, at time.Time) (bool, error) {
	args := m.Called(ctx, problemID, userID, at)
	return args.Bool(0), args.Error(1)
}

func (m *MockBookmarkRepository) Exists(ctx context.Context, problemID int64, userID string) (bool, error) {
	args := m.Called(ctx, problemID, userID)
	return args.Bool(0), args.Error(1)
}

func (m *MockBookmarkRepository) ListByUser(ctx context.Context, userID string) ([]models.Bookmark, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Bookmark), args.Error(1)
}
