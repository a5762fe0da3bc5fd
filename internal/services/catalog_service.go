package services

import (
	"context"
	"database/sql"
	"errors"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/vytor/codedrill/internal/backend"
	"github.com/vytor/codedrill/internal/catalog"
	apperrors "github.com/vytor/codedrill/internal/errors"
	"github.com/vytor/codedrill/internal/events"
	"github.com/vytor/codedrill/internal/logger"
	"github.com/vytor/codedrill/internal/models"
	"github.com/vytor/codedrill/internal/repository"
	"github.com/vytor/codedrill/internal/seed"
)

var errEmptyCatalog = errors.New("backend returned an empty catalog")

// CatalogService serves the problem catalog merged with a user's progress.
type CatalogService interface {
	// EnsureSeeded fills an empty catalog from the backend, falling back to
	// the embedded reference catalog. force replaces a non-empty catalog.
	EnsureSeeded(ctx context.Context, force bool) (int, error)
	// Refresh replaces the catalog with the backend's. On failure, or when
	// the backend has no problems, the current catalog is left untouched.
	Refresh(ctx context.Context) (int, error)
	Browse(ctx context.Context, userID string, opts catalog.FilterOptions, pager *catalog.Pager) (catalog.Page[models.EnhancedProblem], error)
	// Bookmarks is Browse restricted to the user's bookmarked problems.
	Bookmarks(ctx context.Context, userID string, opts catalog.FilterOptions, pager *catalog.Pager) (catalog.Page[models.EnhancedProblem], error)
	GetProblem(ctx context.Context, userID string, id int64) (*models.EnhancedProblem, error)
	UpdateProblem(ctx context.Context, id int64, patch models.ProblemPatch) (*models.Problem, error)
	Problems(ctx context.Context) ([]models.Problem, error)
	Categories() []string
	// Close detaches the service from the event bus.
	Close()
}

type catalogService struct {
	problemRepo    repository.ProblemRepository
	submissionRepo repository.SubmissionRepository
	bookmarkRepo   repository.BookmarkRepository
	backend        backend.ClientInterface
	bus            *events.Bus
	rng            *rand.Rand

	mu    sync.Mutex
	gen   uint64
	cache map[string][]models.EnhancedProblem

	unsubscribe func()
}

// NewCatalogService creates a new CatalogService and subscribes its cache to
// bus. rng seeds random counters when the embedded catalog is used.
func NewCatalogService(
	problemRepo repository.ProblemRepository,
	submissionRepo repository.SubmissionRepository,
	bookmarkRepo repository.BookmarkRepository,
	client backend.ClientInterface,
	bus *events.Bus,
	rng *rand.Rand,
) CatalogService {
	if rng == nil {
		rng = rand.New(rand.NewPCG(uint64(time.Now().UnixNano()), 1))
	}
	s := &catalogService{
		problemRepo:    problemRepo,
		submissionRepo: submissionRepo,
		bookmarkRepo:   bookmarkRepo,
		backend:        client,
		bus:            bus,
		rng:            rng,
		cache:          make(map[string][]models.EnhancedProblem),
	}
	s.unsubscribe = bus.Subscribe(s.onEvent)
	return s
}

func (s *catalogService) Close() {
	s.unsubscribe()
}

func (s *catalogService) onEvent(ctx context.Context, ev events.Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.gen++

	switch e := ev.(type) {
	case events.CatalogChanged:
		s.cache = make(map[string][]models.EnhancedProblem)
	case events.BookmarkToggled:
		delete(s.cache, e.UserID)
	case events.SubmissionRecorded:
		delete(s.cache, e.UserID)
	}
}

func (s *catalogService) EnsureSeeded(ctx context.Context, force bool) (int, error) {
	log := logger.FromContext(ctx)

	if !force {
		n, err := s.problemRepo.Count(ctx, models.ProblemFilter{})
		if err != nil {
			log.Error("failed to count problems: %v", err)
			return 0, apperrors.NewInternalError(err)
		}
		if n > 0 {
			log.Debug("catalog already holds %d problems", n)
			return n, nil
		}
	}

	source := "backend"
	problems, err := s.backend.FetchProblems(ctx)
	if err != nil || len(problems) == 0 {
		log.Warn("backend catalog unavailable (%v), using embedded catalog", err)
		source = "embedded"
		problems, err = seed.Catalog(s.rng)
		if err != nil {
			log.Error("failed to load embedded catalog: %v", err)
			return 0, apperrors.NewInternalError(err)
		}
	}

	if err := s.replace(ctx, problems, "seed:"+source); err != nil {
		return 0, err
	}
	log.Info("seeded catalog with %d problems from %s", len(problems), source)
	return len(problems), nil
}

func (s *catalogService) Refresh(ctx context.Context) (int, error) {
	log := logger.FromContext(ctx)
	log.Debug("refreshing catalog from backend")

	problems, err := s.backend.FetchProblems(ctx)
	if err == nil && len(problems) == 0 {
		err = errEmptyCatalog
	}
	if err != nil {
		log.Warn("catalog refresh failed: %v", err)
		return 0, apperrors.NewUnavailableError("problem backend", err)
	}
	if err := s.replace(ctx, problems, "refresh"); err != nil {
		return 0, err
	}
	return len(problems), nil
}

func (s *catalogService) replace(ctx context.Context, problems []models.Problem, reason string) error {
	for i := range problems {
		if problems[i].Slug == "" {
			problems[i].Slug = seed.Slug(problems[i].ID, problems[i].Title)
		}
	}
	if err := s.problemRepo.ReplaceAll(ctx, problems); err != nil {
		logger.FromContext(ctx).Error("failed to replace catalog: %v", err)
		return apperrors.NewInternalError(err)
	}
	s.bus.Publish(ctx, events.CatalogChanged{Reason: reason})
	return nil
}

// enhanced returns the user's merged catalog, rebuilding it on a cache miss.
// A rebuild that raced with an invalidation is returned but not cached.
func (s *catalogService) enhanced(ctx context.Context, userID string) ([]models.EnhancedProblem, error) {
	s.mu.Lock()
	if cached, ok := s.cache[userID]; ok {
		s.mu.Unlock()
		return cached, nil
	}
	gen := s.gen
	s.mu.Unlock()

	problems, err := s.problemRepo.List(ctx, models.ProblemFilter{})
	if err != nil {
		return nil, err
	}
	records, err := s.submissionRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	bookmarks, err := s.bookmarkRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	out := catalog.Enhance(problems, userID, catalog.Overlay{Records: records, Bookmarks: bookmarks})

	s.mu.Lock()
	if s.gen == gen {
		s.cache[userID] = out
	}
	s.mu.Unlock()
	return out, nil
}

func (s *catalogService) Browse(ctx context.Context, userID string, opts catalog.FilterOptions, pager *catalog.Pager) (catalog.Page[models.EnhancedProblem], error) {
	log := logger.FromContext(ctx)
	log.Debug("browsing catalog: user=%s category=%s difficulties=%v query=%q", userID, opts.Category, opts.Difficulties, opts.SearchQuery)

	if opts.Category != "" && opts.Category != models.CategoryAll && opts.Category != models.CategoryAllAlias && !models.ValidCategory(opts.Category) {
		return catalog.Page[models.EnhancedProblem]{}, apperrors.NewValidationError("category", "unknown category")
	}
	for _, d := range opts.Difficulties {
		if !d.Valid() {
			return catalog.Page[models.EnhancedProblem]{}, apperrors.NewValidationError("difficulty", "unknown difficulty")
		}
	}

	all, err := s.enhanced(ctx, userID)
	if err != nil {
		log.Error("failed to build catalog view: %v", err)
		return catalog.Page[models.EnhancedProblem]{}, apperrors.NewInternalError(err)
	}
	return catalog.Browse(all, opts, pager), nil
}

func (s *catalogService) Bookmarks(ctx context.Context, userID string, opts catalog.FilterOptions, pager *catalog.Pager) (catalog.Page[models.EnhancedProblem], error) {
	opts.ShowBookmarked = true
	opts.ShowCompleted = true
	return s.Browse(ctx, userID, opts, pager)
}

func (s *catalogService) GetProblem(ctx context.Context, userID string, id int64) (*models.EnhancedProblem, error) {
	log := logger.FromContext(ctx)
	log.Debug("getting problem: id=%d user=%s", id, userID)

	all, err := s.enhanced(ctx, userID)
	if err != nil {
		log.Error("failed to build catalog view: %v", err)
		return nil, apperrors.NewInternalError(err)
	}
	for i := range all {
		if all[i].ID == id {
			p := all[i]
			return &p, nil
		}
	}
	return nil, apperrors.NewNotFoundError("problem", id)
}

func (s *catalogService) UpdateProblem(ctx context.Context, id int64, patch models.ProblemPatch) (*models.Problem, error) {
	log := logger.FromContext(ctx)
	log.Debug("updating problem: id=%d", id)

	current, err := s.problemRepo.Get(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperrors.NewNotFoundError("problem", id)
		}
		log.Error("failed to get problem: %v", err)
		return nil, apperrors.NewInternalError(err)
	}
	if err := patch.Apply(*current).Validate(); err != nil {
		return nil, apperrors.NewBadRequestError(err.Error())
	}

	updated, err := s.backend.UpdateProblem(ctx, id, patch)
	if err != nil {
		if errors.Is(err, backend.ErrNotFound) {
			return nil, apperrors.NewNotFoundError("problem", id)
		}
		log.Warn("backend rejected update of problem %d: %v", id, err)
		return nil, apperrors.NewUnavailableError("problem backend", err)
	}
	if updated.Slug == "" {
		updated.Slug = current.Slug
	}
	if err := s.problemRepo.Upsert(ctx, *updated); err != nil {
		log.Error("failed to store updated problem: %v", err)
		return nil, apperrors.NewInternalError(err)
	}

	s.bus.Publish(ctx, events.CatalogChanged{Reason: "update"})
	return updated, nil
}

func (s *catalogService) Problems(ctx context.Context) ([]models.Problem, error) {
	problems, err := s.problemRepo.List(ctx, models.ProblemFilter{})
	if err != nil {
		logger.FromContext(ctx).Error("failed to list problems: %v", err)
		return nil, apperrors.NewInternalError(err)
	}
	return problems, nil
}

func (s *catalogService) Categories() []string {
	return append([]string{models.CategoryAll}, models.Categories...)
}
