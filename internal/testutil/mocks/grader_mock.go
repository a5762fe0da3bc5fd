package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"
	"github.com/vytor/codedrill/internal/grading"
	"github.com/vytor/codedrill/internal/models"
)

// MockGrader is a mock implementation of grading.Grader
type MockGrader struct {
	mock.Mock
}

func (m *MockGrader) Grade(ctx context.Context, problem models.Problem, code string) (grading.Result, error) {
	args := m.Called(ctx, problem, code)
	return args.Get(0).(grading.Result), args.Error(1)
}
