package services

import (
	"context"
	"database/sql"
	stderrors "errors"

	"github.com/vytor/codedrill/internal/errors"
	"github.com/vytor/codedrill/internal/grading"
	"github.com/vytor/codedrill/internal/logger"
	"github.com/vytor/codedrill/internal/models"
	"github.com/vytor/codedrill/internal/repository"
)

// SubmissionOutcome is the graded result together with the workspace state
// and the updated record.
type SubmissionOutcome struct {
	Result grading.Result               `json:"result"`
	State  grading.State                `json:"state"`
	Record *models.UserSubmissionRecord `json:"record,omitempty"`
}

// SubmissionService runs the grading flow for a user's workspace.
type SubmissionService interface {
	Submit(ctx context.Context, userID string, problemID int64, code string, timeSpentSeconds int) (*SubmissionOutcome, error)
	State(ctx context.Context, userID string, problemID int64) grading.Snapshot
	Reset(ctx context.Context, userID string, problemID int64) error
}

type submissionService struct {
	problemRepo repository.ProblemRepository
	draftRepo   repository.DraftRepository
	progress    ProgressService
	grader      grading.Grader
	workspaces  *grading.Workspaces
}

// NewSubmissionService creates a new SubmissionService
func NewSubmissionService(
	problemRepo repository.ProblemRepository,
	draftRepo repository.DraftRepository,
	progress ProgressService,
	grader grading.Grader,
) SubmissionService {
	return &submissionService{
		problemRepo: problemRepo,
		draftRepo:   draftRepo,
		progress:    progress,
		grader:      grader,
		workspaces:  grading.NewWorkspaces(),
	}
}

func (s *submissionService) Submit(ctx context.Context, userID string, problemID int64, code string, timeSpentSeconds int) (*SubmissionOutcome, error) {
	log := logger.FromContext(ctx).WithFields(map[string]any{"problem_id": problemID, "user_id": userID})
	log.Debug("submitting solution")

	problem, err := s.problemRepo.Get(ctx, problemID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, errors.NewNotFoundError("problem", problemID)
		}
		log.Error("failed to get problem: %v", err)
		return nil, errors.NewInternalError(err)
	}

	machine := s.workspaces.Machine(userID, problemID)
	res, err := machine.Submit(ctx, s.grader, *problem, code)
	switch {
	case stderrors.Is(err, grading.ErrSubmitInProgress):
		return nil, errors.NewConflictError("a submission for this problem is already being graded")
	case stderrors.Is(err, grading.ErrNoTestCases):
		return nil, errors.NewBadRequestError("problem has no test cases")
	case stderrors.Is(err, context.Canceled), stderrors.Is(err, context.DeadlineExceeded):
		log.Info("submission abandoned: %v", err)
		return nil, errors.NewBadRequestError("submission was cancelled")
	case err != nil:
		log.Error("grading failed: %v", err)
		return nil, errors.NewInternalError(err)
	}

	out := &SubmissionOutcome{Result: res, State: machine.Snapshot().State}

	if res.Accepted() {
		out.Record, err = s.progress.MarkCompleted(ctx, problemID, userID, code, timeSpentSeconds)
		if err != nil {
			return nil, err
		}
		if err := s.draftRepo.Delete(ctx, userID, problemID); err != nil {
			log.Warn("failed to clear draft after accepted submission: %v", err)
		}
		log.Info("submission accepted (%d/%d in %dms)", res.Passed, res.Total, res.ExecutionTimeMS)
		return out, nil
	}

	out.Record, err = s.progress.RecordFailure(ctx, problemID, userID, models.StatusWrongAnswer, code, timeSpentSeconds)
	if err != nil {
		return nil, err
	}
	log.Info("submission rejected (%d/%d)", res.Passed, res.Total)
	return out, nil
}

func (s *submissionService) State(ctx context.Context, userID string, problemID int64) grading.Snapshot {
	return s.workspaces.Peek(userID, problemID)
}

func (s *submissionService) Reset(ctx context.Context, userID string, problemID int64) error {
	if err := s.workspaces.Machine(userID, problemID).Reset(); err != nil {
		return errors.NewConflictError("a submission for this problem is already being graded")
	}
	return nil
}
