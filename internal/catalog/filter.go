package catalog

import (
	"fmt"
	"hash/fnv"
	"sort"
	"strings"

	"github.com/vytor/codedrill/internal/models"
)

// FilterOptions configures Filter. The zero value hides nothing except
// completed problems; use DefaultFilterOptions for the browse defaults.
type FilterOptions struct {
	Category       string              `json:"category"`
	Difficulties   []models.Difficulty `json:"difficulties"`
	SearchQuery    string              `json:"search_query"`
	ShowCompleted  bool                `json:"show_completed"`
	ShowBookmarked bool                `json:"show_bookmarked"`
}

// DefaultFilterOptions matches every problem.
func DefaultFilterOptions() FilterOptions {
	return FilterOptions{
		Category:      models.CategoryAll,
		ShowCompleted: true,
	}
}

func allCategories(c string) bool {
	return c == "" || c == models.CategoryAll || c == models.CategoryAllAlias
}

// Key fingerprints the options so callers can tell whether any predicate
// changed. Difficulty order and query case/whitespace do not affect it.
func (o FilterOptions) Key() string {
	category := o.Category
	if allCategories(category) {
		category = models.CategoryAll
	}
	diffs := make([]string, 0, len(o.Difficulties))
	seen := make(map[models.Difficulty]bool, len(o.Difficulties))
	for _, d := range o.Difficulties {
		if !seen[d] {
			seen[d] = true
			diffs = append(diffs, string(d))
		}
	}
	sort.Strings(diffs)

	h := fnv.New64a()
	fmt.Fprintf(h, "%s\x00%s\x00%s\x00%t\x00%t",
		category,
		strings.Join(diffs, ","),
		strings.ToLower(strings.TrimSpace(o.SearchQuery)),
		o.ShowCompleted,
		o.ShowBookmarked,
	)
	return fmt.Sprintf("%016x", h.Sum64())
}

// Filter narrows problems by category, difficulty, search text, completion
// and bookmark state, in that order. Every predicate is a plain AND so the
// order only fixes the canonical shape; input order is preserved.
func Filter(problems []models.EnhancedProblem, opts FilterOptions) []models.EnhancedProblem {
	query := strings.ToLower(strings.TrimSpace(opts.SearchQuery))
	difficulties := make(map[models.Difficulty]bool, len(opts.Difficulties))
	for _, d := range opts.Difficulties {
		difficulties[d] = true
	}

	out := make([]models.EnhancedProblem, 0, len(problems))
	for _, p := range problems {
		if !allCategories(opts.Category) && p.Category != opts.Category {
			continue
		}
		if len(difficulties) > 0 && !difficulties[p.Difficulty] {
			continue
		}
		if query != "" && !matchesQuery(p.Problem, query) {
			continue
		}
		if !opts.ShowCompleted && p.Completed {
			continue
		}
		if opts.ShowBookmarked && !p.Bookmarked {
			continue
		}
		out = append(out, p)
	}
	return out
}

// matchesQuery expects query already lower-cased.
func matchesQuery(p models.Problem, query string) bool {
	if strings.Contains(strings.ToLower(p.Title), query) {
		return true
	}
	for _, tag := range p.Tags {
		if strings.Contains(strings.ToLower(tag), query) {
			return true
		}
	}
	return false
}
