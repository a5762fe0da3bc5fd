package grading_test

import (
	"context"
	"fmt"
	"math/rand/v2"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vytor/codedrill/internal/grading"
	"github.com/vytor/codedrill/internal/models"
)

func problemWithCases(n int) models.Problem {
	p := models.Problem{ID: 1, Title: "两数之和"}
	for i := 0; i < n; i++ {
		p.TestCases = append(p.TestCases, models.TestCase{
			Input:          fmt.Sprintf("in-%d", i),
			ExpectedOutput: fmt.Sprintf("out-%d", i),
		})
	}
	return p
}

func TestMockGrader_ResultBounds(t *testing.T) {
	g := grading.NewMockGrader(0, rand.New(rand.NewPCG(1, 1)))
	p := problemWithCases(3)

	sawAccepted, sawRejected := false, false
	for i := 0; i < 300; i++ {
		res, err := g.Grade(context.Background(), p, "code")
		require.NoError(t, err)

		assert.Equal(t, 3, res.Total)
		assert.GreaterOrEqual(t, res.Passed, 1)
		assert.LessOrEqual(t, res.Passed, 3)
		assert.GreaterOrEqual(t, res.ExecutionTimeMS, 30)
		assert.LessOrEqual(t, res.ExecutionTimeMS, 129)

		if res.Accepted() {
			sawAccepted = true
			assert.Empty(t, res.Errors)
			continue
		}
		sawRejected = true
		require.Len(t, res.Errors, 1)
		want := fmt.Sprintf(`测试用例 %d 失败: 预期输出 "out-%d", 实际输出 "错误结果"`, res.Passed+1, res.Passed)
		assert.Equal(t, want, res.Errors[0])
	}
	assert.True(t, sawAccepted)
	assert.True(t, sawRejected)
}

func TestMockGrader_SingleCaseAlwaysPasses(t *testing.T) {
	g := grading.NewMockGrader(0, nil)
	for i := 0; i < 20; i++ {
		res, err := g.Grade(context.Background(), problemWithCases(1), "")
		require.NoError(t, err)
		assert.True(t, res.Accepted())
	}
}

func TestMockGrader_NoTestCases(t *testing.T) {
	_, err := grading.NewMockGrader(0, nil).Grade(context.Background(), problemWithCases(0), "")
	assert.ErrorIs(t, err, grading.ErrNoTestCases)
}

func TestMockGrader_Cancelled(t *testing.T) {
	g := grading.NewMockGrader(time.Hour, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := g.Grade(ctx, problemWithCases(2), "")
	assert.ErrorIs(t, err, context.Canceled)
}

type fixedGrader struct {
	res     grading.Result
	err     error
	started chan struct{}
	release chan struct{}
}

func (f *fixedGrader) Grade(ctx context.Context, _ models.Problem, _ string) (grading.Result, error) {
	if f.started != nil {
		close(f.started)
		<-f.release
	}
	return f.res, f.err
}

func TestMachine_Transitions(t *testing.T) {
	m := grading.NewMachine()
	assert.Equal(t, grading.StateIdle, m.Snapshot().State)

	ok := &fixedGrader{res: grading.Result{Passed: 2, Total: 2, Errors: []string{}}}
	res, err := m.Submit(context.Background(), ok, problemWithCases(2), "")
	require.NoError(t, err)
	assert.True(t, res.Accepted())
	assert.Equal(t, grading.StateSuccess, m.Snapshot().State)

	bad := &fixedGrader{res: grading.Result{Passed: 1, Total: 2, Errors: []string{"x"}}}
	_, err = m.Submit(context.Background(), bad, problemWithCases(2), "")
	require.NoError(t, err)
	snap := m.Snapshot()
	assert.Equal(t, grading.StateError, snap.State)
	require.NotNil(t, snap.Result)
	assert.Equal(t, 1, snap.Result.Passed)

	require.NoError(t, m.Reset())
	snap = m.Snapshot()
	assert.Equal(t, grading.StateIdle, snap.State)
	assert.Nil(t, snap.Result)
}

func TestMachine_GraderFailureEndsInError(t *testing.T) {
	m := grading.NewMachine()
	_, err := m.Submit(context.Background(), &fixedGrader{err: grading.ErrNoTestCases}, problemWithCases(0), "")
	assert.ErrorIs(t, err, grading.ErrNoTestCases)

	snap := m.Snapshot()
	assert.Equal(t, grading.StateError, snap.State)
	assert.NotEmpty(t, snap.Error)
}

func TestMachine_RejectsConcurrentSubmit(t *testing.T) {
	m := grading.NewMachine()
	slow := &fixedGrader{
		res:     grading.Result{Passed: 1, Total: 1},
		started: make(chan struct{}),
		release: make(chan struct{}),
	}

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		_, err := m.Submit(context.Background(), slow, problemWithCases(1), "")
		assert.NoError(t, err)
	}()

	<-slow.started
	assert.Equal(t, grading.StateSubmitting, m.Snapshot().State)

	_, err := m.Submit(context.Background(), &fixedGrader{}, problemWithCases(1), "")
	assert.ErrorIs(t, err, grading.ErrSubmitInProgress)
	assert.ErrorIs(t, m.Reset(), grading.ErrSubmitInProgress)

	close(slow.release)
	wg.Wait()
	assert.Equal(t, grading.StateSuccess, m.Snapshot().State)
}

func TestMachine_ResubmitDropsPreviousOutcome(t *testing.T) {
	m := grading.NewMachine()
	bad := &fixedGrader{res: grading.Result{Passed: 0, Total: 1, Errors: []string{"x"}}}
	_, err := m.Submit(context.Background(), bad, problemWithCases(1), "")
	require.NoError(t, err)
	require.Equal(t, grading.StateError, m.Snapshot().State)
	require.NotNil(t, m.Snapshot().Result)

	slow := &fixedGrader{
		res:     grading.Result{Passed: 1, Total: 1},
		started: make(chan struct{}),
		release: make(chan struct{}),
	}
	done := make(chan struct{})
	go func() {
		defer close(done)
		_, err := m.Submit(context.Background(), slow, problemWithCases(1), "")
		assert.NoError(t, err)
	}()

	<-slow.started
	snap := m.Snapshot()
	assert.Equal(t, grading.StateSubmitting, snap.State)
	assert.Nil(t, snap.Result)
	assert.Empty(t, snap.Error)

	close(slow.release)
	<-done
	assert.Equal(t, grading.StateSuccess, m.Snapshot().State)
}

func TestWorkspaces(t *testing.T) {
	ws := grading.NewWorkspaces()
	assert.Equal(t, grading.StateIdle, ws.Peek("u1", 1).State)

	a := ws.Machine("u1", 1)
	assert.Same(t, a, ws.Machine("u1", 1))
	assert.NotSame(t, a, ws.Machine("u2", 1))
	assert.NotSame(t, a, ws.Machine("u1", 2))
}
