package worker

import "context"

// GenerationRunner executes a queued problem generation job. It is declared
// here so the worker package does not import services.
type GenerationRunner interface {
	RunGeneration(ctx context.Context, jobID string) error
}

type GenerateProblemsJob struct {
	Runner GenerationRunner
	JobID  string
}

func (j *GenerateProblemsJob) Name() string { return "generate_problems" }

func (j *GenerateProblemsJob) Run(ctx context.Context) error {
	return j.Runner.RunGeneration(ctx, j.JobID)
}
