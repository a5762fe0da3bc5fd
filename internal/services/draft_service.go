package services

import (
	"context"
	"database/sql"
	"time"

	"github.com/vytor/codedrill/internal/errors"
	"github.com/vytor/codedrill/internal/logger"
	"github.com/vytor/codedrill/internal/models"
	"github.com/vytor/codedrill/internal/repository"
)

// DraftService keeps in-progress code for problems a user has not solved.
type DraftService interface {
	// SaveDraft stores code, or drops the draft when code equals the
	// problem's starter code. It returns nil in that case.
	SaveDraft(ctx context.Context, userID string, problemID int64, code string, timeSpentSeconds int) (*models.Draft, error)
	GetDraft(ctx context.Context, userID string, problemID int64) (*models.Draft, error)
	ListDrafts(ctx context.Context, userID string) ([]models.Draft, error)
}

type draftService struct {
	problemRepo repository.ProblemRepository
	draftRepo   repository.DraftRepository
}

// NewDraftService creates a new DraftService
func NewDraftService(problemRepo repository.ProblemRepository, draftRepo repository.DraftRepository) DraftService {
	return &draftService{problemRepo: problemRepo, draftRepo: draftRepo}
}

func (s *draftService) SaveDraft(ctx context.Context, userID string, problemID int64, code string, timeSpentSeconds int) (*models.Draft, error) {
	log := logger.FromContext(ctx)
	log.Debug("saving draft: problem=%d user=%s", problemID, userID)

	if timeSpentSeconds < 0 {
		return nil, errors.NewValidationError("time_spent_seconds", "cannot be negative")
	}

	problem, err := s.problemRepo.Get(ctx, problemID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, errors.NewNotFoundError("problem", problemID)
		}
		log.Error("failed to get problem: %v", err)
		return nil, errors.NewInternalError(err)
	}

	if code == problem.InitialCode {
		if err := s.draftRepo.Delete(ctx, userID, problemID); err != nil {
			log.Error("failed to delete draft: %v", err)
			return nil, errors.NewInternalError(err)
		}
		return nil, nil
	}

	draft := models.Draft{
		UserID:           userID,
		ProblemID:        problemID,
		Code:             code,
		TimeSpentSeconds: timeSpentSeconds,
		LastAccessed:     time.Now().UTC(),
	}
	if err := s.draftRepo.Save(ctx, draft); err != nil {
		log.Error("failed to save draft: %v", err)
		return nil, errors.NewInternalError(err)
	}
	return &draft, nil
}

func (s *draftService) GetDraft(ctx context.Context, userID string, problemID int64) (*models.Draft, error) {
	draft, err := s.draftRepo.Get(ctx, userID, problemID)
	if err != nil {
		logger.FromContext(ctx).Error("failed to get draft: %v", err)
		return nil, errors.NewInternalError(err)
	}
	if draft == nil {
		return nil, errors.NewNotFoundError("draft", problemID)
	}
	return draft, nil
}

func (s *draftService) ListDrafts(ctx context.Context, userID string) ([]models.Draft, error) {
	drafts, err := s.draftRepo.ListByUser(ctx, userID)
	if err != nil {
		logger.FromContext(ctx).Error("failed to list drafts: %v", err)
		return nil, errors.NewInternalError(err)
	}
	return drafts, nil
}
