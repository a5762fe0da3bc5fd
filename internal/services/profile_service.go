package services

import (
	"context"
	"regexp"
	"time"

	"github.com/vytor/codedrill/internal/errors"
	"github.com/vytor/codedrill/internal/logger"
	"github.com/vytor/codedrill/internal/models"
	"github.com/vytor/codedrill/internal/repository"
	"github.com/vytor/codedrill/internal/stats"
)

var colorPattern = regexp.MustCompile(`^#(?:[0-9a-fA-F]{3}|[0-9a-fA-F]{6})$`)

// ProfileService backs the personal dashboard.
type ProfileService interface {
	Stats(ctx context.Context, userID string) (*models.LearningStats, error)
	WrongProblems(ctx context.Context, userID string) ([]models.WrongProblem, error)
	Preferences(ctx context.Context, userID string) (models.Preferences, error)
	SavePreferences(ctx context.Context, prefs models.Preferences) (models.Preferences, error)
}

type profileService struct {
	problemRepo    repository.ProblemRepository
	submissionRepo repository.SubmissionRepository
	prefRepo       repository.PreferenceRepository
	now            func() time.Time
}

// NewProfileService creates a new ProfileService
func NewProfileService(
	problemRepo repository.ProblemRepository,
	submissionRepo repository.SubmissionRepository,
	prefRepo repository.PreferenceRepository,
) ProfileService {
	return &profileService{
		problemRepo:    problemRepo,
		submissionRepo: submissionRepo,
		prefRepo:       prefRepo,
		now:            time.Now,
	}
}

func (s *profileService) load(ctx context.Context, userID string) ([]models.Problem, []models.UserSubmissionRecord, error) {
	log := logger.FromContext(ctx)

	problems, err := s.problemRepo.List(ctx, models.ProblemFilter{})
	if err != nil {
		log.Error("failed to list problems: %v", err)
		return nil, nil, errors.NewInternalError(err)
	}
	records, err := s.submissionRepo.ListByUser(ctx, userID)
	if err != nil {
		log.Error("failed to list submission records: %v", err)
		return nil, nil, errors.NewInternalError(err)
	}
	return problems, records, nil
}

func (s *profileService) Stats(ctx context.Context, userID string) (*models.LearningStats, error) {
	logger.FromContext(ctx).Debug("building learning stats: user=%s", userID)

	problems, records, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}
	st := stats.BuildLearningStats(problems, records, s.now())
	return &st, nil
}

func (s *profileService) WrongProblems(ctx context.Context, userID string) ([]models.WrongProblem, error) {
	problems, records, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}
	return stats.WrongProblems(problems, records), nil
}

func (s *profileService) Preferences(ctx context.Context, userID string) (models.Preferences, error) {
	prefs, err := s.prefRepo.Get(ctx, userID)
	if err != nil {
		logger.FromContext(ctx).Error("failed to get preferences: %v", err)
		return models.Preferences{}, errors.NewInternalError(err)
	}
	return prefs, nil
}

func (s *profileService) SavePreferences(ctx context.Context, prefs models.Preferences) (models.Preferences, error) {
	log := logger.FromContext(ctx)
	log.Debug("saving preferences: user=%s", prefs.UserID)

	if prefs.BgColor == "" {
		prefs.BgColor = models.DefaultPreferences(prefs.UserID).BgColor
	}
	if !colorPattern.MatchString(prefs.BgColor) {
		return models.Preferences{}, errors.NewValidationError("bg_color", "must be a hex color such as #ffffff")
	}

	if err := s.prefRepo.Save(ctx, prefs); err != nil {
		log.Error("failed to save preferences: %v", err)
		return models.Preferences{}, errors.NewInternalError(err)
	}
	return prefs, nil
}
