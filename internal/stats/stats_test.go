package stats_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vytor/codedrill/internal/models"
	"github.com/vytor/codedrill/internal/stats"
)

// Wednesday.
var now = time.Date(2024, 3, 13, 15, 0, 0, 0, time.UTC)

func day(offset int, hour int) time.Time {
	return time.Date(2024, 3, 13+offset, hour, 0, 0, 0, time.UTC)
}

func fixtureProblems() []models.Problem {
	return []models.Problem{
		{ID: 1, Title: "两数之和", Difficulty: models.DifficultyEasy, Category: "数据结构"},
		{ID: 2, Title: "有效的括号", Difficulty: models.DifficultyEasy, Category: "数据结构"},
		{ID: 3, Title: "进程调度算法", Difficulty: models.DifficultyMedium, Category: "操作系统"},
		{ID: 4, Title: "Cache替换算法", Difficulty: models.DifficultyHard, Category: "计算机组成原理"},
	}
}

func entry(status models.SubmissionStatus, at time.Time, seconds int) models.SubmissionEntry {
	return models.SubmissionEntry{Status: status, Timestamp: at, TimeSpentSeconds: seconds}
}

func fixtureRecords() []models.UserSubmissionRecord {
	return []models.UserSubmissionRecord{
		{
			ProblemID: 1, IsCompleted: true, LastSubmissionTime: day(0, 10),
			SubmissionHistory: []models.SubmissionEntry{
				entry(models.StatusWrongAnswer, day(0, 9), 60),
				entry(models.StatusAccepted, day(0, 10), 300),
			},
		},
		{
			ProblemID: 2, IsCompleted: true, LastSubmissionTime: day(-1, 10),
			SubmissionHistory: []models.SubmissionEntry{
				entry(models.StatusAccepted, day(-1, 10), 600),
			},
		},
		{
			ProblemID: 3, IsCompleted: true, LastSubmissionTime: day(-2, 10),
			SubmissionHistory: []models.SubmissionEntry{
				entry(models.StatusAccepted, day(-2, 10), 0),
			},
		},
		{
			ProblemID: 4, LastSubmissionTime: day(-5, 8),
			SubmissionHistory: []models.SubmissionEntry{
				entry(models.StatusWrongAnswer, day(-6, 8), 120),
				entry(models.StatusTimeLimitExceeded, day(-5, 8), 120),
			},
		},
	}
}

func TestBuildLearningStats(t *testing.T) {
	st := stats.BuildLearningStats(fixtureProblems(), fixtureRecords(), now)

	assert.Equal(t, 4, st.TotalProblems)
	assert.Equal(t, 3, st.CompletedProblems)
	assert.Equal(t, 75, st.CompletionPercentage)
	// 3 accepted out of 6 entries.
	assert.Equal(t, 50.0, st.AccuracyRate)
	assert.Equal(t, 3, st.DailyStreak)
	// (300 + 600) / 2 seconds; the untimed entry is ignored.
	assert.Equal(t, 7.5, st.AverageTimePerProblem)

	assert.Equal(t, []models.NamedCount{
		{Name: "数据结构", Value: 2},
		{Name: "操作系统", Value: 1},
	}, st.ProblemsByCategory)

	assert.Equal(t, []models.NamedCount{
		{Name: "简单", Value: 2},
		{Name: "中等", Value: 1},
		{Name: "困难", Value: 0},
	}, st.DifficultyDistribution)

	require.Len(t, st.WeeklyProgress, 7)
	assert.Equal(t, "周一", st.WeeklyProgress[0].Day)
	assert.Equal(t, "2024-03-11", st.WeeklyProgress[0].Date)
	assert.Equal(t, 1, st.WeeklyProgress[0].ProblemsSolved)
	assert.Equal(t, 1, st.WeeklyProgress[1].ProblemsSolved)
	assert.Equal(t, 1, st.WeeklyProgress[2].ProblemsSolved)
	assert.Equal(t, 0, st.WeeklyProgress[3].ProblemsSolved)
	assert.Equal(t, "周日", st.WeeklyProgress[6].Day)
}

func TestBuildLearningStats_Empty(t *testing.T) {
	st := stats.BuildLearningStats(nil, nil, now)

	assert.Zero(t, st.TotalProblems)
	assert.Zero(t, st.CompletionPercentage)
	assert.Zero(t, st.AccuracyRate)
	assert.Zero(t, st.DailyStreak)
	assert.Empty(t, st.ProblemsByCategory)
	assert.Len(t, st.WeeklyProgress, 7)
	assert.Len(t, st.DifficultyDistribution, 3)
}

func TestBuildLearningStats_StreakFromYesterday(t *testing.T) {
	records := []models.UserSubmissionRecord{{
		ProblemID: 1, IsCompleted: true,
		SubmissionHistory: []models.SubmissionEntry{
			entry(models.StatusAccepted, day(-1, 22), 0),
			entry(models.StatusAccepted, day(-2, 22), 0),
			entry(models.StatusAccepted, day(-4, 22), 0),
		},
	}}
	assert.Equal(t, 2, stats.BuildLearningStats(fixtureProblems(), records, now).DailyStreak)

	stale := []models.UserSubmissionRecord{{
		ProblemID: 1, IsCompleted: true,
		SubmissionHistory: []models.SubmissionEntry{entry(models.StatusAccepted, day(-3, 22), 0)},
	}}
	assert.Zero(t, stats.BuildLearningStats(fixtureProblems(), stale, now).DailyStreak)
}

func TestWrongProblems(t *testing.T) {
	records := append(fixtureRecords(), models.UserSubmissionRecord{
		ProblemID: 3, LastSubmissionTime: day(-1, 7),
		SubmissionHistory: []models.SubmissionEntry{entry(models.StatusWrongAnswer, day(-1, 7), 0)},
	})
	// Problem 3 appears twice; drop the completed variant so only the failing one counts.
	records = append(records[:2], records[3:]...)

	wrong := stats.WrongProblems(fixtureProblems(), records)
	require.Len(t, wrong, 2)

	assert.Equal(t, int64(3), wrong[0].ID)
	assert.Equal(t, 1, wrong[0].MistakeCount)

	assert.Equal(t, int64(4), wrong[1].ID)
	assert.Equal(t, 2, wrong[1].MistakeCount)
	assert.Equal(t, day(-5, 8), wrong[1].LastAttempt)
	assert.Equal(t, models.DifficultyHard, wrong[1].Difficulty)
}

func TestWrongProblems_SkipsSolvedAndUnknown(t *testing.T) {
	records := []models.UserSubmissionRecord{
		{ProblemID: 1, IsCompleted: true, SubmissionHistory: []models.SubmissionEntry{
			entry(models.StatusWrongAnswer, day(0, 1), 0),
			entry(models.StatusAccepted, day(0, 2), 0),
		}},
		{ProblemID: 99, SubmissionHistory: []models.SubmissionEntry{entry(models.StatusWrongAnswer, day(0, 1), 0)}},
	}
	assert.Empty(t, stats.WrongProblems(fixtureProblems(), records))
}
