package jobs

import (
	"github.com/vytor/codedrill/internal/worker"
)

// WorkerQueue implements JobQueue on a worker pool.
type WorkerQueue struct {
	pool   *worker.Pool
	runner worker.GenerationRunner
}

func NewWorkerQueue(pool *worker.Pool) *WorkerQueue {
	return &WorkerQueue{pool: pool}
}

// Bind sets the runner that executes generation jobs. The runner is the
// generation service, which itself needs the queue, so it is bound after
// construction.
func (q *WorkerQueue) Bind(runner worker.GenerationRunner) {
	q.runner = runner
}

func (q *WorkerQueue) EnqueueGeneration(jobID string) error {
	return q.pool.Submit(&worker.GenerateProblemsJob{
		Runner: q.runner,
		JobID:  jobID,
	})
}

var _ JobQueue = (*WorkerQueue)(nil)
