package jobs_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vytor/codedrill/internal/jobs"
	"github.com/vytor/codedrill/internal/worker"
)

type recordingRunner struct {
	ids chan string
}

func (r *recordingRunner) RunGeneration(_ context.Context, jobID string) error {
	r.ids <- jobID
	return nil
}

func TestWorkerQueue_EnqueueGeneration(t *testing.T) {
	pool := worker.NewPool(1, 2)
	pool.Start(context.Background())
	defer pool.Stop()

	runner := &recordingRunner{ids: make(chan string, 1)}
	q := jobs.NewWorkerQueue(pool)
	q.Bind(runner)

	require.NoError(t, q.EnqueueGeneration("abc"))
	select {
	case id := <-runner.ids:
		assert.Equal(t, "abc", id)
	case <-time.After(2 * time.Second):
		t.Fatal("generation job did not run")
	}
}

func TestWorkerQueue_StoppedPool(t *testing.T) {
	pool := worker.NewPool(1, 1)
	pool.Stop()

	q := jobs.NewWorkerQueue(pool)
	assert.ErrorIs(t, q.EnqueueGeneration("abc"), worker.ErrPoolStopped)
}
