package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"
	"github.com/vytor/codedrill/internal/backend"
	"github.com/vytor/codedrill/internal/models"
)

// MockBackendClient is a mock implementation of backend.ClientInterface
type MockBackendClient struct {
	mock.Mock
}

func (m *MockBackendClient) FetchProblems(ctx context.Context) ([]models.Problem, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Problem), args.Error(1)
}

func (m *MockBackendClient) FetchProblem(ctx context.Context, id int64) (*models.Problem, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Problem), args.Error(1)
}

func (m *MockBackendClient) UpdateProblem(ctx context.Context, id int64, patch models.ProblemPatch) (*models.Problem, error) {
	args := m.Called(ctx, id, patch)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Problem), args.Error(1)
}

func (m *MockBackendClient) FetchUsers(ctx context.Context) ([]backend.User, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]backend.User), args.Error(1)
}
