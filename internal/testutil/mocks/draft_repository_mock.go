package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"
	"github.com/vytor/codedrill/internal/models"
)

// MockDraftRepository is a mock implementation of repository.DraftRepository
type MockDraftRepository struct {
	mock.Mock
}

func (m *MockDraftRepository) Save(ctx context.Context, draft models.Draft) error {
	args := m.Called(ctx, draft)
	return args.Error(0)
}

func (m *MockDraftRepository) Get(ctx context.Context, userID string, problemID int64) (*models.Draft, error) {
	args := m.Called(ctx, userID, problemID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Draft), args.Error(1)
}

func (m *MockDraftRepository) ListByUser(ctx context.Context, userID string) ([]models.Draft, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Draft), args.Error(1)
}

func (m *MockDraftRepository) Delete(ctx context.Context, userID string, problemID int64) error {
	args := m.Called(ctx, userID, problemID)
	return args.Error(0)
}

// MockPreferenceRepository is a mock implementation of repository.PreferenceRepository
type MockPreferenceRepository struct {
	mock.Mock
}

func (m *MockPreferenceRepository) Get(ctx context.Context, userID string) (models.Preferences, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(models.Preferences), args.Error(1)
}

func (m *MockPreferenceRepository) Save(ctx context.Context, prefs models.Preferences) error {
	args := m.Called(ctx, prefs)
	return args.Error(0)
}
