package catalog

import "github.com/vytor/codedrill/internal/models"

// Overlay is the raw per-user state layered onto the catalog. It may hold
// records for several users; lookups always match on (problem, user).
type Overlay struct {
	Records   []models.UserSubmissionRecord
	Bookmarks []models.Bookmark
}

// ResolveStatus computes the overlay for one problem and user. Missing
// records are the normal state for new or anonymous users.
func ResolveStatus(problemID int64, userID string, ov Overlay) models.ProblemStatus {
	var st models.ProblemStatus
	for _, r := range ov.Records {
		if r.ProblemID == problemID && r.UserID == userID {
			st.Completed = r.IsCompleted
			st.Attempts = r.Attempts
			break
		}
	}
	for _, b := range ov.Bookmarks {
		if b.ProblemID == problemID && b.UserID == userID {
			st.Bookmarked = true
			break
		}
	}
	return st
}

// Enhance merges every problem with userID's overlay and its pass rate,
// preserving catalog order.
func Enhance(problems []models.Problem, userID string, ov Overlay) []models.EnhancedProblem {
	records := make(map[int64]models.UserSubmissionRecord, len(ov.Records))
	for _, r := range ov.Records {
		if r.UserID == userID {
			records[r.ProblemID] = r
		}
	}
	bookmarked := make(map[int64]bool, len(ov.Bookmarks))
	for _, b := range ov.Bookmarks {
		if b.UserID == userID {
			bookmarked[b.ProblemID] = true
		}
	}

	out := make([]models.EnhancedProblem, 0, len(problems))
	for _, p := range problems {
		r := records[p.ID]
		out = append(out, models.EnhancedProblem{
			Problem: p,
			ProblemStatus: models.ProblemStatus{
				Completed:  r.IsCompleted,
				Bookmarked: bookmarked[p.ID],
				Attempts:   r.Attempts,
			},
			PassRate: PassRate(p.TotalSubmissions, p.AcceptedSubmissions),
		})
	}
	return out
}
