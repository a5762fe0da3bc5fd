package catalog

import "github.com/vytor/codedrill/internal/models"

// DefaultPageSize is the number of problems shown per catalog page.
const DefaultPageSize = 6

type Page[T any] struct {
	Items      []T `json:"items"`
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	Total      int `json:"total"`
	TotalPages int `json:"total_pages"`
}

// Paginate slices items into the 1-based page. A page past the end yields no
// items but still reports the totals.
func Paginate[T any](items []T, page, pageSize int) Page[T] {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	if page < 1 {
		page = 1
	}
	total := len(items)
	totalPages := (total + pageSize - 1) / pageSize

	start, end := total, total
	// Compare before multiplying so huge page numbers cannot overflow.
	if page-1 < totalPages {
		start = (page - 1) * pageSize
		end = min(start+pageSize, total)
	}

	return Page[T]{
		Items:      append([]T{}, items[start:end]...),
		Page:       page,
		PageSize:   pageSize,
		Total:      total,
		TotalPages: totalPages,
	}
}

// Pager is caller-owned pagination state. Changing any filter predicate
// sends the caller back to the first page; changing the page does not.
type Pager struct {
	pageSize int
	page     int
	key      string
}

func NewPager(pageSize int) *Pager {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	return &Pager{pageSize: pageSize, page: 1}
}

// RestorePager rebuilds a pager from the filter key and page a client echoed
// back from an earlier response.
func RestorePager(pageSize int, key string, page int) *Pager {
	p := NewPager(pageSize)
	p.key = key
	p.SetPage(page)
	return p
}

// Apply records opts as the active filter and reports whether that reset the
// pager to page 1.
func (p *Pager) Apply(opts FilterOptions) bool {
	key := opts.Key()
	if key == p.key {
		return false
	}
	p.key = key
	p.page = 1
	return true
}

func (p *Pager) SetPage(n int) {
	if n < 1 {
		n = 1
	}
	p.page = n
}

func (p *Pager) Page() int     { return p.page }
func (p *Pager) PageSize() int { return p.pageSize }
func (p *Pager) Key() string   { return p.key }

// Browse runs the filter chain and returns the pager's current page.
func Browse(problems []models.EnhancedProblem, opts FilterOptions, p *Pager) Page[models.EnhancedProblem] {
	p.Apply(opts)
	return Paginate(Filter(problems, opts), p.Page(), p.PageSize())
}
