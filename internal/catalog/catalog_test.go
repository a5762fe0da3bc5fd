package catalog_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vytor/codedrill/internal/catalog"
	"github.com/vytor/codedrill/internal/models"
)

func referenceCatalog() []models.Problem {
	mk := func(id int64, title string, d models.Difficulty, cat string, total, accepted int, tags ...string) models.Problem {
		return models.Problem{
			ID: id, Title: title, Difficulty: d, Category: cat, Tags: tags,
			TotalSubmissions: total, AcceptedSubmissions: accepted,
		}
	}
	return []models.Problem{
		mk(1, "两数之和", models.DifficultyEasy, "数据结构", 1234, 563, "数组", "哈希表", "双指针"),
		mk(2, "有效的括号", models.DifficultyEasy, "数据结构", 987, 423, "字符串", "栈"),
		mk(3, "合并两个有序链表", models.DifficultyEasy, "数据结构", 756, 440, "递归", "链表"),
		mk(4, "IP地址与MAC地址的关系", models.DifficultyMedium, "计算机网络", 645, 397, "网络层", "数据链路层"),
		mk(5, "进程调度算法", models.DifficultyMedium, "操作系统", 532, 177, "进程管理", "调度策略"),
		mk(6, "Java多线程同步机制", models.DifficultyMedium, "Java", 423, 276, "多线程", "并发编程", "synchronized"),
		mk(7, "Python装饰器原理", models.DifficultyHard, "Python", 312, 155, "函数式编程", "元编程"),
		mk(8, "C语言指针与数组", models.DifficultyHard, "C语言", 289, 110, "指针", "内存管理", "数组"),
		mk(9, "Cache替换算法", models.DifficultyMedium, "计算机组成原理", 378, 198, "存储系统", "缓存"),
		mk(10, "时间复杂度分析", models.DifficultyEasy, "算法分析", 567, 409, "复杂度", "渐进分析"),
	}
}

func ids(items []models.EnhancedProblem) []int64 {
	out := make([]int64, 0, len(items))
	for _, p := range items {
		out = append(out, p.ID)
	}
	return out
}

func TestPassRate(t *testing.T) {
	tests := []struct {
		name     string
		total    int
		accepted int
		want     float64
	}{
		{name: "no submissions", total: 0, accepted: 0, want: 0},
		{name: "reference problem 1", total: 1234, accepted: 563, want: 45.6},
		{name: "all accepted", total: 10, accepted: 10, want: 100},
		{name: "none accepted", total: 10, accepted: 0, want: 0},
		{name: "half rounds up", total: 16, accepted: 1, want: 6.3},
		{name: "one third", total: 3, accepted: 1, want: 33.3},
		{name: "two thirds", total: 3, accepted: 2, want: 66.7},
		{name: "accepted above total is clamped", total: 5, accepted: 9, want: 100},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, catalog.PassRate(tt.total, tt.accepted))
		})
	}
}

func TestPassRate_Bounds(t *testing.T) {
	for total := 0; total <= 60; total++ {
		for accepted := 0; accepted <= total; accepted++ {
			r := catalog.PassRate(total, accepted)
			assert.GreaterOrEqual(t, r, 0.0)
			assert.LessOrEqual(t, r, 100.0)
		}
	}
}

func TestResolveStatus(t *testing.T) {
	ov := catalog.Overlay{
		Records: []models.UserSubmissionRecord{
			{ProblemID: 1, UserID: "alice", Attempts: 3, IsCompleted: true},
			{ProblemID: 2, UserID: "alice", Attempts: 1},
			{ProblemID: 1, UserID: "bob", Attempts: 7},
		},
		Bookmarks: []models.Bookmark{
			{ProblemID: 2, UserID: "alice", BookmarkedAt: time.Now()},
			{ProblemID: 1, UserID: "bob", BookmarkedAt: time.Now()},
		},
	}

	assert.Equal(t, models.ProblemStatus{Completed: true, Attempts: 3}, catalog.ResolveStatus(1, "alice", ov))
	assert.Equal(t, models.ProblemStatus{Bookmarked: true, Attempts: 1}, catalog.ResolveStatus(2, "alice", ov))
	assert.Equal(t, models.ProblemStatus{Bookmarked: true, Attempts: 7}, catalog.ResolveStatus(1, "bob", ov))
	assert.Equal(t, models.ProblemStatus{}, catalog.ResolveStatus(3, "alice", ov))
	assert.Equal(t, models.ProblemStatus{}, catalog.ResolveStatus(1, models.AnonymousUserID, ov))
}

func TestEnhance_PreservesOrderAndAgreesWithResolveStatus(t *testing.T) {
	problems := referenceCatalog()
	ov := catalog.Overlay{
		Records:   []models.UserSubmissionRecord{{ProblemID: 4, UserID: "alice", Attempts: 2, IsCompleted: true}},
		Bookmarks: []models.Bookmark{{ProblemID: 9, UserID: "alice"}},
	}

	enhanced := catalog.Enhance(problems, "alice", ov)
	require.Len(t, enhanced, len(problems))
	for i, ep := range enhanced {
		assert.Equal(t, problems[i].ID, ep.ID)
		assert.Equal(t, catalog.ResolveStatus(ep.ID, "alice", ov), ep.ProblemStatus)
		assert.Equal(t, catalog.PassRate(ep.TotalSubmissions, ep.AcceptedSubmissions), ep.PassRate)
	}
	assert.Equal(t, 45.6, enhanced[0].PassRate)
}

func TestFilter_DefaultsReturnInputUnchanged(t *testing.T) {
	enhanced := catalog.Enhance(referenceCatalog(), "alice", catalog.Overlay{})

	got := catalog.Filter(enhanced, catalog.DefaultFilterOptions())

	assert.Equal(t, enhanced, got)
}

func TestFilter_Predicates(t *testing.T) {
	ov := catalog.Overlay{
		Records: []models.UserSubmissionRecord{
			{ProblemID: 1, UserID: "alice", Attempts: 1, IsCompleted: true},
			{ProblemID: 6, UserID: "alice", Attempts: 1, IsCompleted: true},
		},
		Bookmarks: []models.Bookmark{
			{ProblemID: 2, UserID: "alice"},
			{ProblemID: 6, UserID: "alice"},
			{ProblemID: 7, UserID: "alice"},
		},
	}
	enhanced := catalog.Enhance(referenceCatalog(), "alice", ov)

	tests := []struct {
		name string
		opts catalog.FilterOptions
		want []int64
	}{
		{
			name: "category exact match",
			opts: catalog.FilterOptions{Category: "数据结构", ShowCompleted: true},
			want: []int64{1, 2, 3},
		},
		{
			name: "category is not a prefix match",
			opts: catalog.FilterOptions{Category: "计算机", ShowCompleted: true},
			want: []int64{},
		},
		{
			name: "All alias",
			opts: catalog.FilterOptions{Category: "All", ShowCompleted: true},
			want: []int64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10},
		},
		{
			name: "difficulty set",
			opts: catalog.FilterOptions{Difficulties: []models.Difficulty{models.DifficultyHard, models.DifficultyMedium}, ShowCompleted: true},
			want: []int64{4, 5, 6, 7, 8, 9},
		},
		{
			name: "search by tag",
			opts: catalog.FilterOptions{SearchQuery: "哈希表", ShowCompleted: true},
			want: []int64{1},
		},
		{
			name: "search is case insensitive on title",
			opts: catalog.FilterOptions{SearchQuery: "cache", ShowCompleted: true},
			want: []int64{9},
		},
		{
			name: "search is case insensitive on tags",
			opts: catalog.FilterOptions{SearchQuery: "SYNCHRONIZED", ShowCompleted: true},
			want: []int64{6},
		},
		{
			name: "search matches title or tag",
			opts: catalog.FilterOptions{SearchQuery: "数组", ShowCompleted: true},
			want: []int64{1, 8},
		},
		{
			name: "hide completed",
			opts: catalog.FilterOptions{Category: models.CategoryAll, ShowCompleted: false},
			want: []int64{2, 3, 4, 5, 7, 8, 9, 10},
		},
		{
			name: "bookmarked only",
			opts: catalog.FilterOptions{ShowCompleted: true, ShowBookmarked: true},
			want: []int64{2, 6, 7},
		},
		{
			name: "bookmarked and not completed",
			opts: catalog.FilterOptions{ShowCompleted: false, ShowBookmarked: true},
			want: []int64{2, 7},
		},
		{
			name: "all predicates",
			opts: catalog.FilterOptions{
				Category:       "Python",
				Difficulties:   []models.Difficulty{models.DifficultyHard},
				SearchQuery:    "装饰器",
				ShowCompleted:  false,
				ShowBookmarked: true,
			},
			want: []int64{7},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ids(catalog.Filter(enhanced, tt.opts)))
		})
	}
}

func TestFilter_PredicatesCommute(t *testing.T) {
	enhanced := catalog.Enhance(referenceCatalog(), "alice", catalog.Overlay{})
	byDifficulty := catalog.FilterOptions{Difficulties: []models.Difficulty{models.DifficultyEasy}, ShowCompleted: true}
	byCategory := catalog.FilterOptions{Category: "数据结构", ShowCompleted: true}

	difficultyFirst := catalog.Filter(catalog.Filter(enhanced, byDifficulty), byCategory)
	categoryFirst := catalog.Filter(catalog.Filter(enhanced, byCategory), byDifficulty)
	combined := catalog.Filter(enhanced, catalog.FilterOptions{
		Category:      "数据结构",
		Difficulties:  []models.Difficulty{models.DifficultyEasy},
		ShowCompleted: true,
	})

	assert.Equal(t, ids(difficultyFirst), ids(categoryFirst))
	assert.Equal(t, ids(combined), ids(categoryFirst))
}

func TestFilterOptions_Key(t *testing.T) {
	base := catalog.FilterOptions{
		Category:      "数据结构",
		Difficulties:  []models.Difficulty{models.DifficultyEasy, models.DifficultyHard},
		SearchQuery:   "Hash",
		ShowCompleted: true,
	}
	same := base
	same.Difficulties = []models.Difficulty{models.DifficultyHard, models.DifficultyEasy}
	same.SearchQuery = "  hash "

	assert.Equal(t, base.Key(), same.Key())
	assert.Equal(t, catalog.DefaultFilterOptions().Key(), catalog.FilterOptions{Category: "All", ShowCompleted: true}.Key())

	changed := base
	changed.ShowBookmarked = true
	assert.NotEqual(t, base.Key(), changed.Key())

	changed = base
	changed.Category = "Java"
	assert.NotEqual(t, base.Key(), changed.Key())
}

func TestPaginate_TenProblems(t *testing.T) {
	enhanced := catalog.Enhance(referenceCatalog(), "alice", catalog.Overlay{})
	filtered := catalog.Filter(enhanced, catalog.DefaultFilterOptions())

	first := catalog.Paginate(filtered, 1, 6)
	second := catalog.Paginate(filtered, 2, 6)
	beyond := catalog.Paginate(filtered, 3, 6)

	assert.Equal(t, []int64{1, 2, 3, 4, 5, 6}, ids(first.Items))
	assert.Equal(t, []int64{7, 8, 9, 10}, ids(second.Items))
	assert.Equal(t, 2, first.TotalPages)
	assert.Equal(t, 10, first.Total)
	assert.Empty(t, beyond.Items)
	assert.Equal(t, 2, beyond.TotalPages)
}

func TestPaginate_Edges(t *testing.T) {
	items := []int{1, 2, 3}

	p := catalog.Paginate(items, 0, 2)
	assert.Equal(t, 1, p.Page)
	assert.Equal(t, []int{1, 2}, p.Items)

	p = catalog.Paginate([]int(nil), 1, 6)
	assert.NotNil(t, p.Items)
	assert.Empty(t, p.Items)
	assert.Equal(t, 0, p.TotalPages)

	p = catalog.Paginate(items, 1, 0)
	assert.Equal(t, catalog.DefaultPageSize, p.PageSize)

	p = catalog.Paginate(items, 3, 2)
	assert.Empty(t, p.Items)
	assert.Equal(t, 3, p.Total)

	p = catalog.Paginate(items, 1537228672809129303, 6)
	assert.NotNil(t, p.Items)
	assert.Empty(t, p.Items)
	assert.Equal(t, 1537228672809129303, p.Page)
	assert.Equal(t, 1, p.TotalPages)
}

func TestPager_ResetsOnlyWhenFiltersChange(t *testing.T) {
	pager := catalog.NewPager(6)
	opts := catalog.DefaultFilterOptions()

	assert.True(t, pager.Apply(opts))
	pager.SetPage(2)
	assert.False(t, pager.Apply(opts), "re-applying the same filter keeps the page")
	assert.Equal(t, 2, pager.Page())

	opts.SearchQuery = "链表"
	assert.True(t, pager.Apply(opts))
	assert.Equal(t, 1, pager.Page())

	pager.SetPage(5)
	assert.Equal(t, 5, pager.Page())
}

func TestRestorePager(t *testing.T) {
	opts := catalog.DefaultFilterOptions()

	kept := catalog.RestorePager(6, opts.Key(), 2)
	assert.False(t, kept.Apply(opts))
	assert.Equal(t, 2, kept.Page())

	stale := catalog.RestorePager(6, "stale-key", 2)
	assert.True(t, stale.Apply(opts))
	assert.Equal(t, 1, stale.Page())
}

func TestBrowse(t *testing.T) {
	enhanced := catalog.Enhance(referenceCatalog(), "alice", catalog.Overlay{})
	pager := catalog.RestorePager(6, catalog.DefaultFilterOptions().Key(), 2)

	page := catalog.Browse(enhanced, catalog.DefaultFilterOptions(), pager)
	assert.Equal(t, []int64{7, 8, 9, 10}, ids(page.Items))

	page = catalog.Browse(enhanced, catalog.FilterOptions{Category: "数据结构", ShowCompleted: true}, pager)
	assert.Equal(t, 1, page.Page)
	assert.Equal(t, []int64{1, 2, 3}, ids(page.Items))
}
