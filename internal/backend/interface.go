package backend

import (
	"context"

	"github.com/vytor/codedrill/internal/models"
)

// ClientInterface defines the mock backend operations the services use.
type ClientInterface interface {
	FetchProblems(ctx context.Context) ([]models.Problem, error)
	FetchProblem(ctx context.Context, id int64) (*models.Problem, error)
	UpdateProblem(ctx context.Context, id int64, patch models.ProblemPatch) (*models.Problem, error)
	FetchUsers(ctx context.Context) ([]User, error)
}

// Ensure Client implements the interface
var _ ClientInterface = (*Client)(nil)
