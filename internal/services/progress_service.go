package services

import (
	"context"
	"database/sql"
	"time"

	"github.com/vytor/codedrill/internal/catalog"
	"github.com/vytor/codedrill/internal/errors"
	"github.com/vytor/codedrill/internal/events"
	"github.com/vytor/codedrill/internal/logger"
	"github.com/vytor/codedrill/internal/models"
	"github.com/vytor/codedrill/internal/repository"
)

// ProgressService owns the per-user overlay: bookmarks and submission records.
type ProgressService interface {
	ResolveStatus(ctx context.Context, problemID int64, userID string) (models.ProblemStatus, error)
	ToggleBookmark(ctx context.Context, problemID int64, userID string) (bool, error)
	// MarkCompleted appends an accepted entry. Completion never reverts.
	MarkCompleted(ctx context.Context, problemID int64, userID string, code string, timeSpentSeconds int) (*models.UserSubmissionRecord, error)
	RecordFailure(ctx context.Context, problemID int64, userID string, status models.SubmissionStatus, code string, timeSpentSeconds int) (*models.UserSubmissionRecord, error)
	// Record returns nil when the user never submitted to the problem.
	Record(ctx context.Context, problemID int64, userID string) (*models.UserSubmissionRecord, error)
}

type progressService struct {
	problemRepo    repository.ProblemRepository
	submissionRepo repository.SubmissionRepository
	bookmarkRepo   repository.BookmarkRepository
	bus            *events.Bus
	now            func() time.Time
}

// NewProgressService creates a new ProgressService
func NewProgressService(
	problemRepo repository.ProblemRepository,
	submissionRepo repository.SubmissionRepository,
	bookmarkRepo repository.BookmarkRepository,
	bus *events.Bus,
) ProgressService {
	return &progressService{
		problemRepo:    problemRepo,
		submissionRepo: submissionRepo,
		bookmarkRepo:   bookmarkRepo,
		bus:            bus,
		now:            func() time.Time { return time.Now().UTC() },
	}
}

func (s *progressService) requireProblem(ctx context.Context, problemID int64) error {
	if _, err := s.problemRepo.Get(ctx, problemID); err != nil {
		if err == sql.ErrNoRows {
			return errors.NewNotFoundError("problem", problemID)
		}
		logger.FromContext(ctx).Error("failed to get problem: %v", err)
		return errors.NewInternalError(err)
	}
	return nil
}

func (s *progressService) ResolveStatus(ctx context.Context, problemID int64, userID string) (models.ProblemStatus, error) {
	log := logger.FromContext(ctx)

	rec, err := s.submissionRepo.Get(ctx, problemID, userID)
	if err != nil {
		log.Error("failed to get submission record: %v", err)
		return models.ProblemStatus{}, errors.NewInternalError(err)
	}
	bookmarked, err := s.bookmarkRepo.Exists(ctx, problemID, userID)
	if err != nil {
		log.Error("failed to check bookmark: %v", err)
		return models.ProblemStatus{}, errors.NewInternalError(err)
	}

	ov := catalog.Overlay{}
	if rec != nil {
		ov.Records = []models.UserSubmissionRecord{*rec}
	}
	if bookmarked {
		ov.Bookmarks = []models.Bookmark{{ProblemID: problemID, UserID: userID}}
	}
	return catalog.ResolveStatus(problemID, userID, ov), nil
}

func (s *progressService) ToggleBookmark(ctx context.Context, problemID int64, userID string) (bool, error) {
	log := logger.FromContext(ctx)
	log.Debug("toggling bookmark: problem=%d user=%s", problemID, userID)

	if err := s.requireProblem(ctx, problemID); err != nil {
		return false, err
	}

	bookmarked, err := s.bookmarkRepo.Toggle(ctx, problemID, userID, s.now())
	if err != nil {
		log.Error("failed to toggle bookmark: %v", err)
		return false, errors.NewInternalError(err)
	}

	s.bus.Publish(ctx, events.BookmarkToggled{ProblemID: problemID, UserID: userID, Bookmarked: bookmarked})
	return bookmarked, nil
}

func (s *progressService) MarkCompleted(ctx context.Context, problemID int64, userID string, code string, timeSpentSeconds int) (*models.UserSubmissionRecord, error) {
	return s.append(ctx, problemID, userID, models.StatusAccepted, code, timeSpentSeconds)
}

func (s *progressService) RecordFailure(ctx context.Context, problemID int64, userID string, status models.SubmissionStatus, code string, timeSpentSeconds int) (*models.UserSubmissionRecord, error) {
	if status == models.StatusAccepted || !status.Valid() {
		return nil, errors.NewValidationError("status", "must be a failing submission status")
	}
	return s.append(ctx, problemID, userID, status, code, timeSpentSeconds)
}

func (s *progressService) append(ctx context.Context, problemID int64, userID string, status models.SubmissionStatus, code string, timeSpentSeconds int) (*models.UserSubmissionRecord, error) {
	log := logger.FromContext(ctx)
	log.Debug("recording submission: problem=%d user=%s status=%s", problemID, userID, status)

	if err := s.requireProblem(ctx, problemID); err != nil {
		return nil, err
	}
	if timeSpentSeconds < 0 {
		timeSpentSeconds = 0
	}

	rec, err := s.submissionRepo.AppendEntry(ctx, problemID, userID, models.SubmissionEntry{
		Timestamp:        s.now(),
		Status:           status,
		Code:             code,
		TimeSpentSeconds: timeSpentSeconds,
	})
	if err != nil {
		log.Error("failed to append submission: %v", err)
		return nil, errors.NewInternalError(err)
	}

	s.bus.Publish(ctx, events.SubmissionRecorded{
		ProblemID: problemID,
		UserID:    userID,
		Status:    status,
		Completed: rec.IsCompleted,
	})
	return rec, nil
}

func (s *progressService) Record(ctx context.Context, problemID int64, userID string) (*models.UserSubmissionRecord, error) {
	rec, err := s.submissionRepo.Get(ctx, problemID, userID)
	if err != nil {
		logger.FromContext(ctx).Error("failed to get submission record: %v", err)
		return nil, errors.NewInternalError(err)
	}
	return rec, nil
}
