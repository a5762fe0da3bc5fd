package services

import (
	"context"
	"fmt"
	"math/rand/v2"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/vytor/codedrill/internal/errors"
	"github.com/vytor/codedrill/internal/events"
	"github.com/vytor/codedrill/internal/jobs"
	"github.com/vytor/codedrill/internal/logger"
	"github.com/vytor/codedrill/internal/models"
	"github.com/vytor/codedrill/internal/repository"
	"github.com/vytor/codedrill/internal/seed"
	"github.com/vytor/codedrill/internal/worker"
)

// GenerationService synthesizes practice problems in the background.
type GenerationService interface {
	Enqueue(ctx context.Context, userID string, opts models.GenerationOptions) (*models.GenerationJob, error)
	Get(ctx context.Context, jobID string) (*models.GenerationJob, error)
	worker.GenerationRunner
}

type generationService struct {
	problemRepo repository.ProblemRepository
	queue       jobs.JobQueue
	bus         *events.Bus
	delay       time.Duration

	rngMu sync.Mutex
	rng   *rand.Rand

	mu   sync.RWMutex
	jobs map[string]*models.GenerationJob
}

// NewGenerationService creates a new GenerationService. Jobs are kept in
// memory for the life of the process.
func NewGenerationService(
	problemRepo repository.ProblemRepository,
	queue jobs.JobQueue,
	bus *events.Bus,
	delay time.Duration,
	rng *rand.Rand,
) GenerationService {
	if rng == nil {
		rng = rand.New(rand.NewPCG(uint64(time.Now().UnixNano()), 2))
	}
	return &generationService{
		problemRepo: problemRepo,
		queue:       queue,
		bus:         bus,
		delay:       delay,
		rng:         rng,
		jobs:        make(map[string]*models.GenerationJob),
	}
}

func normalizeGenerationOptions(opts models.GenerationOptions) (models.GenerationOptions, error) {
	d, err := models.ParseDifficulty(string(opts.Difficulty))
	if err != nil {
		return opts, errors.NewValidationError("difficulty", "must be easy, medium or hard")
	}
	opts.Difficulty = d

	opts.Category = strings.TrimSpace(opts.Category)
	if !models.ValidCategory(opts.Category) {
		return opts, errors.NewValidationError("category", "unknown category")
	}

	known := make(map[string]bool, len(seed.AllTags))
	for _, t := range seed.AllTags {
		known[t] = true
	}
	seen := map[string]bool{}
	tags := make([]string, 0, len(opts.Tags))
	for _, t := range opts.Tags {
		t = strings.TrimSpace(t)
		if !known[t] {
			return opts, errors.NewValidationError("tags", fmt.Sprintf("unknown tag %q", t))
		}
		if !seen[t] {
			seen[t] = true
			tags = append(tags, t)
		}
	}
	opts.Tags = tags

	opts.QuestionCount = max(models.MinGenerationCount, min(models.MaxGenerationCount, opts.QuestionCount))
	return opts, nil
}

func (s *generationService) Enqueue(ctx context.Context, userID string, opts models.GenerationOptions) (*models.GenerationJob, error) {
	log := logger.FromContext(ctx)

	opts, err := normalizeGenerationOptions(opts)
	if err != nil {
		return nil, err
	}

	job := &models.GenerationJob{
		ID:        uuid.NewString(),
		UserID:    userID,
		Options:   opts,
		Status:    models.GenerationPending,
		CreatedAt: time.Now().UTC(),
	}
	s.mu.Lock()
	s.jobs[job.ID] = job
	s.mu.Unlock()

	if err := s.queue.EnqueueGeneration(job.ID); err != nil {
		s.mu.Lock()
		delete(s.jobs, job.ID)
		s.mu.Unlock()
		log.Warn("failed to enqueue generation job: %v", err)
		return nil, errors.NewUnavailableError("generation queue", err)
	}

	log.Info("enqueued generation job %s: %d %s %s problems", job.ID, opts.QuestionCount, opts.Difficulty, opts.Category)
	return s.snapshot(job), nil
}

func (s *generationService) Get(ctx context.Context, jobID string) (*models.GenerationJob, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	job, ok := s.jobs[jobID]
	if !ok {
		return nil, errors.NewNotFoundError("generation job", jobID)
	}
	return s.snapshot(job), nil
}

// snapshot copies job so callers never share the mutable original.
func (s *generationService) snapshot(job *models.GenerationJob) *models.GenerationJob {
	cp := *job
	cp.Problems = append([]models.Problem(nil), job.Problems...)
	cp.Options.Tags = append([]string(nil), job.Options.Tags...)
	return &cp
}

func (s *generationService) setStatus(jobID string, fn func(*models.GenerationJob)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if job, ok := s.jobs[jobID]; ok {
		fn(job)
	}
}

// RunGeneration executes a queued job. It is called by the worker pool.
func (s *generationService) RunGeneration(ctx context.Context, jobID string) error {
	log := logger.FromContext(ctx).WithField("generation_job", jobID)

	s.mu.RLock()
	job, ok := s.jobs[jobID]
	var opts models.GenerationOptions
	if ok {
		opts = job.Options
	}
	s.mu.RUnlock()
	if !ok {
		return fmt.Errorf("generation job %s not found", jobID)
	}

	s.setStatus(jobID, func(j *models.GenerationJob) { j.Status = models.GenerationRunning })

	problems, err := s.generate(ctx, opts)
	if len(problems) > 0 {
		s.bus.Publish(ctx, events.CatalogChanged{Reason: "generated"})
	}
	if err != nil {
		log.Error("generation failed: %v", err)
		s.setStatus(jobID, func(j *models.GenerationJob) {
			now := time.Now().UTC()
			j.Status = models.GenerationFailed
			j.Error = err.Error()
			j.CompletedAt = &now
		})
		return err
	}

	s.setStatus(jobID, func(j *models.GenerationJob) {
		now := time.Now().UTC()
		j.Status = models.GenerationDone
		j.Problems = problems
		j.CompletedAt = &now
	})
	log.Info("generated %d problems", len(problems))
	return nil
}

func (s *generationService) generate(ctx context.Context, opts models.GenerationOptions) ([]models.Problem, error) {
	if s.delay > 0 {
		timer := time.NewTimer(s.delay)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-timer.C:
		}
	}

	label := opts.Difficulty.Label()
	topic := "指定"
	if len(opts.Tags) > 0 {
		topic = strings.Join(opts.Tags, "、")
	}

	out := make([]models.Problem, 0, opts.QuestionCount)
	for i := 1; i <= opts.QuestionCount; i++ {
		tags := opts.Tags
		if len(tags) == 0 {
			s.rngMu.Lock()
			tags = []string{seed.AllTags[s.rng.IntN(len(seed.AllTags))]}
			s.rngMu.Unlock()
		}

		p := models.Problem{
			Title:      fmt.Sprintf("%s - %s题目 %d", opts.Category, label, i),
			Difficulty: opts.Difficulty,
			Category:   opts.Category,
			Tags:       append([]string(nil), tags...),
			Description: fmt.Sprintf("这是一道由AI生成的%s难度%s题目。\n\n请解决以下问题：\n\n实现一个函数，该函数能够处理%s相关的任务，要求时间复杂度不超过O(n log n)。",
				label, opts.Category, topic),
			Examples:    []models.Example{{Input: "示例输入", Output: "示例输出", Explanation: "示例解释"}},
			Constraints: []string{"1 <= n <= 10^5", "0 <= nums[i] <= 10^9"},
			TestCases:   []models.TestCase{{Input: "示例输入", ExpectedOutput: "示例输出"}},
		}

		id, err := s.problemRepo.Insert(ctx, p)
		if err != nil {
			return out, fmt.Errorf("insert generated problem: %w", err)
		}
		p.ID = id
		p.Slug = seed.Slug(id, p.Title)
		p.SchemaVersion = models.SchemaVersion
		if err := s.problemRepo.Upsert(ctx, p); err != nil {
			return out, fmt.Errorf("store slug for problem %d: %w", id, err)
		}
		out = append(out, p)
	}
	return out, nil
}
