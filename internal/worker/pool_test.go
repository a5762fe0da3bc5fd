package worker_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vytor/codedrill/internal/logger"
	"github.com/vytor/codedrill/internal/worker"
)

type funcJob struct {
	name string
	fn   func(ctx context.Context) error
}

func (j funcJob) Name() string                  { return j.name }
func (j funcJob) Run(ctx context.Context) error { return j.fn(ctx) }

func TestPool_RunsJobsWithLoggerInContext(t *testing.T) {
	p := worker.NewPool(2, 4)
	p.Start(context.Background())
	defer p.Stop()

	var ran atomic.Int32
	done := make(chan struct{}, 3)
	for i := 0; i < 3; i++ {
		err := p.Submit(funcJob{name: "count", fn: func(ctx context.Context) error {
			assert.NotSame(t, logger.Default(), logger.FromContext(ctx))
			ran.Add(1)
			done <- struct{}{}
			return nil
		}})
		require.NoError(t, err)
	}

	for i := 0; i < 3; i++ {
		select {
		case <-done:
		case <-time.After(2 * time.Second):
			t.Fatal("job did not run")
		}
	}
	assert.Equal(t, int32(3), ran.Load())
}

func TestPool_FailedJobDoesNotStopWorker(t *testing.T) {
	p := worker.NewPool(1, 2)
	p.Start(context.Background())
	defer p.Stop()

	done := make(chan struct{})
	require.NoError(t, p.Submit(funcJob{name: "fail", fn: func(context.Context) error { return errors.New("boom") }}))
	require.NoError(t, p.Submit(funcJob{name: "ok", fn: func(context.Context) error { close(done); return nil }}))

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("second job did not run")
	}
}

func TestPool_QueueFull(t *testing.T) {
	p := worker.NewPool(1, 1)
	block := func(ctx context.Context) error { <-ctx.Done(); return ctx.Err() }

	// Not started: the single slot fills and the next submit is rejected.
	require.NoError(t, p.Submit(funcJob{name: "a", fn: block}))
	assert.Equal(t, 1, p.QueueSize())
	assert.ErrorIs(t, p.Submit(funcJob{name: "b", fn: block}), worker.ErrQueueFull)
	p.Stop()
}

func TestPool_SubmitAfterStop(t *testing.T) {
	p := worker.NewPool(1, 1)
	p.Start(context.Background())
	p.Stop()
	p.Stop()

	err := p.Submit(funcJob{name: "late", fn: func(context.Context) error { return nil }})
	assert.ErrorIs(t, err, worker.ErrPoolStopped)
}

type runnerFunc func(ctx context.Context, jobID string) error

func (f runnerFunc) RunGeneration(ctx context.Context, jobID string) error { return f(ctx, jobID) }

func TestGenerateProblemsJob(t *testing.T) {
	var got string
	job := &worker.GenerateProblemsJob{
		Runner: runnerFunc(func(_ context.Context, id string) error { got = id; return nil }),
		JobID:  "job-1",
	}
	assert.Equal(t, "generate_problems", job.Name())
	require.NoError(t, job.Run(context.Background()))
	assert.Equal(t, "job-1", got)
}
