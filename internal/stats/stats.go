// Package stats derives the learning dashboard from the catalog and a user's
// submission records.
package stats

import (
	"math"
	"sort"
	"time"

	"github.com/vytor/codedrill/internal/catalog"
	"github.com/vytor/codedrill/internal/models"
)

var weekdayLabels = [7]string{"周一", "周二", "周三", "周四", "周五", "周六", "周日"}

// BuildLearningStats aggregates records against problems. Records for
// problems missing from the catalog still count toward accuracy, streak and
// timing, but not toward completion totals. Day boundaries use now's location.
func BuildLearningStats(problems []models.Problem, records []models.UserSubmissionRecord, now time.Time) models.LearningStats {
	byID := make(map[int64]models.Problem, len(problems))
	for _, p := range problems {
		byID[p.ID] = p
	}

	st := models.LearningStats{TotalProblems: len(problems)}

	perCategory := map[string]int{}
	perDifficulty := map[models.Difficulty]int{}
	var entries, accepted int
	var acceptedSeconds, timedAccepted int
	acceptedDays := map[string]bool{}
	solvedOn := map[string]map[int64]bool{}

	for _, rec := range records {
		if p, ok := byID[rec.ProblemID]; ok && rec.IsCompleted {
			st.CompletedProblems++
			perCategory[p.Category]++
			perDifficulty[p.Difficulty]++
		}

		for _, e := range rec.SubmissionHistory {
			entries++
			if e.Status != models.StatusAccepted {
				continue
			}
			accepted++
			if e.TimeSpentSeconds > 0 {
				acceptedSeconds += e.TimeSpentSeconds
				timedAccepted++
			}
			day := dayKey(e.Timestamp, now.Location())
			acceptedDays[day] = true
			if solvedOn[day] == nil {
				solvedOn[day] = map[int64]bool{}
			}
			solvedOn[day][rec.ProblemID] = true
		}
	}

	if st.TotalProblems > 0 {
		st.CompletionPercentage = int(math.Round(float64(st.CompletedProblems) * 100 / float64(st.TotalProblems)))
	}
	st.AccuracyRate = catalog.PassRate(entries, accepted)
	st.DailyStreak = streak(acceptedDays, now)
	if timedAccepted > 0 {
		minutes := float64(acceptedSeconds) / float64(timedAccepted) / 60
		st.AverageTimePerProblem = math.Round(minutes*10) / 10
	}

	st.ProblemsByCategory = make([]models.NamedCount, 0, len(perCategory))
	for name, n := range perCategory {
		st.ProblemsByCategory = append(st.ProblemsByCategory, models.NamedCount{Name: name, Value: n})
	}
	sort.Slice(st.ProblemsByCategory, func(i, j int) bool {
		a, b := st.ProblemsByCategory[i], st.ProblemsByCategory[j]
		if a.Value != b.Value {
			return a.Value > b.Value
		}
		return a.Name < b.Name
	})

	st.WeeklyProgress = weekly(solvedOn, now)

	for _, d := range models.Difficulties {
		st.DifficultyDistribution = append(st.DifficultyDistribution, models.NamedCount{
			Name:  d.Label(),
			Value: perDifficulty[d],
		})
	}
	return st
}

// WrongProblems lists unsolved problems with at least one failed attempt,
// most recent attempt first.
func WrongProblems(problems []models.Problem, records []models.UserSubmissionRecord) []models.WrongProblem {
	byID := make(map[int64]models.Problem, len(problems))
	for _, p := range problems {
		byID[p.ID] = p
	}

	out := []models.WrongProblem{}
	for _, rec := range records {
		if rec.IsCompleted {
			continue
		}
		p, ok := byID[rec.ProblemID]
		if !ok {
			continue
		}

		mistakes := 0
		last := rec.LastSubmissionTime
		for _, e := range rec.SubmissionHistory {
			if e.Status == models.StatusAccepted {
				continue
			}
			mistakes++
			if e.Timestamp.After(last) {
				last = e.Timestamp
			}
		}
		if mistakes == 0 {
			continue
		}

		out = append(out, models.WrongProblem{
			ID:           p.ID,
			Title:        p.Title,
			Category:     p.Category,
			Difficulty:   p.Difficulty,
			LastAttempt:  last,
			MistakeCount: mistakes,
		})
	}

	sort.Slice(out, func(i, j int) bool {
		if !out[i].LastAttempt.Equal(out[j].LastAttempt) {
			return out[i].LastAttempt.After(out[j].LastAttempt)
		}
		return out[i].ID < out[j].ID
	})
	return out
}

func dayKey(t time.Time, loc *time.Location) string {
	return t.In(loc).Format(time.DateOnly)
}

// streak counts consecutive days with an accepted entry ending today, or
// ending yesterday when nothing was solved yet today.
func streak(days map[string]bool, now time.Time) int {
	cursor := now
	if !days[dayKey(cursor, now.Location())] {
		cursor = cursor.AddDate(0, 0, -1)
	}
	n := 0
	for days[dayKey(cursor, now.Location())] {
		n++
		cursor = cursor.AddDate(0, 0, -1)
	}
	return n
}

func weekly(solvedOn map[string]map[int64]bool, now time.Time) []models.DailyProgress {
	// time.Weekday starts on Sunday; shift so Monday is index 0.
	offset := (int(now.Weekday()) + 6) % 7
	monday := now.AddDate(0, 0, -offset)

	out := make([]models.DailyProgress, 0, 7)
	for i := 0; i < 7; i++ {
		day := dayKey(monday.AddDate(0, 0, i), now.Location())
		out = append(out, models.DailyProgress{
			Day:            weekdayLabels[i],
			Date:           day,
			ProblemsSolved: len(solvedOn[day]),
		})
	}
	return out
}
