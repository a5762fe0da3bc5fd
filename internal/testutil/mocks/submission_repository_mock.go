package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"
	"github.com/vytor/codedrill/internal/models"
)

// MockSubmissionRepository is a mock implementation of repository.SubmissionRepository
type MockSubmissionRepository struct {
	mock.Mock
}

func (m *MockSubmissionRepository) Get(ctx context.Context, problemID int64, userID string) (*models.UserSubmissionRecord, error) {
	args := m.Called(ctx, problemID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.UserSubmissionRecord), args.Error(1)
}

func (m *MockSubmissionRepository) ListByUser(ctx context.Context, userID string) ([]models.UserSubmissionRecord, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.UserSubmissionRecord), args.Error(1)
}

func (m *MockSubmissionRepository) AppendEntry(ctx context.Context, problemID int64, userID string, entry models.SubmissionEntry) (*models.UserSubmissionRecord, error) {
	args := m.Called(ctx, problemID, userID, entry)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.UserSubmissionRecord), args.Error(1)
}
