// Package grading simulates code evaluation against a problem's test cases
// and tracks the submission state of each workspace.
package grading

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/vytor/codedrill/internal/logger"
	"github.com/vytor/codedrill/internal/models"
)

// ErrNoTestCases is returned for problems that cannot be graded.
var ErrNoTestCases = errors.New("grading: problem has no test cases")

// Result is the outcome of one graded submission.
type Result struct {
	Passed          int      `json:"passed"`
	Total           int      `json:"total"`
	Errors          []string `json:"errors"`
	ExecutionTimeMS int      `json:"execution_time_ms"`
}

// Accepted reports whether every test case passed.
func (r Result) Accepted() bool {
	return r.Total > 0 && r.Passed == r.Total
}

// Grader evaluates code for a problem.
type Grader interface {
	Grade(ctx context.Context, problem models.Problem, code string) (Result, error)
}

// MockGrader produces randomized results after a fixed delay. It never looks
// at the submitted code.
type MockGrader struct {
	delay time.Duration

	mu  sync.Mutex
	rng *rand.Rand
}

func NewMockGrader(delay time.Duration, rng *rand.Rand) *MockGrader {
	if rng == nil {
		rng = rand.New(rand.NewPCG(uint64(time.Now().UnixNano()), 0x9e3779b97f4a7c15))
	}
	return &MockGrader{delay: delay, rng: rng}
}

func (g *MockGrader) Grade(ctx context.Context, problem models.Problem, code string) (Result, error) {
	log := logger.FromContext(ctx).WithPrefix("grader").WithField("problem_id", problem.ID)

	total := len(problem.TestCases)
	if total == 0 {
		return Result{}, ErrNoTestCases
	}

	if g.delay > 0 {
		timer := time.NewTimer(g.delay)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			log.Debug("grading cancelled: %v", ctx.Err())
			return Result{}, ctx.Err()
		case <-timer.C:
		}
	}

	g.mu.Lock()
	passed := g.rng.IntN(total) + 1
	execTime := g.rng.IntN(100) + 30
	g.mu.Unlock()

	res := Result{
		Passed:          passed,
		Total:           total,
		Errors:          []string{},
		ExecutionTimeMS: execTime,
	}
	if passed < total {
		res.Errors = append(res.Errors, fmt.Sprintf(`测试用例 %d 失败: 预期输出 "%s", 实际输出 "错误结果"`,
			passed+1, problem.TestCases[passed].ExpectedOutput))
	}

	log.Debug("graded %d/%d in %dms", passed, total, execTime)
	return res, nil
}
