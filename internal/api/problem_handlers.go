package api

import (
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/vytor/codedrill/internal/catalog"
	"github.com/vytor/codedrill/internal/errors"
	"github.com/vytor/codedrill/internal/logger"
	"github.com/vytor/codedrill/internal/models"
)

type problemPage struct {
	Items      []problemView `json:"items"`
	Page       int           `json:"page"`
	PageSize   int           `json:"page_size"`
	Total      int           `json:"total"`
	TotalPages int           `json:"total_pages"`
	FilterKey  string        `json:"filter_key"`
}

func newProblemPage(p catalog.Page[models.EnhancedProblem], pager *catalog.Pager) problemPage {
	return problemPage{
		Items:      newProblemViews(p.Items),
		Page:       p.Page,
		PageSize:   p.PageSize,
		Total:      p.Total,
		TotalPages: p.TotalPages,
		FilterKey:  pager.Key(),
	}
}

func parseBool(q url.Values, key string, def bool) (bool, error) {
	raw := q.Get(key)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return def, errors.NewValidationError(key, "must be true or false")
	}
	return v, nil
}

// parseBrowseQuery reads the filter options and the pager a client echoed
// back. Difficulty may repeat or be comma separated. The bookmark panel
// always restricts to bookmarks, completed or not.
func (s *Server) parseBrowseQuery(r *http.Request, bookmarks bool) (catalog.FilterOptions, *catalog.Pager, error) {
	q := r.URL.Query()
	opts := catalog.DefaultFilterOptions()

	if c := strings.TrimSpace(q.Get("category")); c != "" {
		opts.Category = c
	}
	for _, raw := range q["difficulty"] {
		for _, part := range strings.Split(raw, ",") {
			if strings.TrimSpace(part) == "" {
				continue
			}
			d, err := models.ParseDifficulty(part)
			if err != nil {
				return opts, nil, errors.NewValidationError("difficulty", err.Error())
			}
			opts.Difficulties = append(opts.Difficulties, d)
		}
	}
	opts.SearchQuery = q.Get("q")

	var err error
	if opts.ShowCompleted, err = parseBool(q, "show_completed", opts.ShowCompleted); err != nil {
		return opts, nil, err
	}
	if opts.ShowBookmarked, err = parseBool(q, "show_bookmarked", opts.ShowBookmarked); err != nil {
		return opts, nil, err
	}
	if bookmarks {
		opts.ShowBookmarked, opts.ShowCompleted = true, true
	}

	page := 1
	if raw := q.Get("page"); raw != "" {
		page, err = strconv.Atoi(raw)
		if err != nil {
			return opts, nil, errors.NewValidationError("page", "must be a positive integer")
		}
	}
	// Without an echoed key there is no earlier filter to compare against,
	// so the requested page stands.
	key := q.Get("filter_key")
	if key == "" {
		key = opts.Key()
	}
	return opts, catalog.RestorePager(s.PageSize, key, page), nil
}

func (s *Server) handleCategories(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"categories": s.CatalogService.Categories()})
}

func (s *Server) handleListProblems(w http.ResponseWriter, r *http.Request) {
	opts, pager, err := s.parseBrowseQuery(r, false)
	if err != nil {
		handleError(w, r, err)
		return
	}

	page, err := s.CatalogService.Browse(r.Context(), userIDFromContext(r.Context()), opts, pager)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newProblemPage(page, pager))
}

func (s *Server) handleBookmarks(w http.ResponseWriter, r *http.Request) {
	opts, pager, err := s.parseBrowseQuery(r, true)
	if err != nil {
		handleError(w, r, err)
		return
	}

	page, err := s.CatalogService.Bookmarks(r.Context(), userIDFromContext(r.Context()), opts, pager)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newProblemPage(page, pager))
}

func (s *Server) handleRefreshProblems(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContext(r.Context())

	n, err := s.CatalogService.Refresh(r.Context())
	if err != nil {
		handleError(w, r, err)
		return
	}
	log.Info("catalog refreshed: %d problems", n)
	writeJSON(w, http.StatusOK, map[string]any{"count": n})
}

func (s *Server) handleGetProblem(w http.ResponseWriter, r *http.Request) {
	id, err := problemIDParam(r)
	if err != nil {
		handleError(w, r, err)
		return
	}

	p, err := s.CatalogService.GetProblem(r.Context(), userIDFromContext(r.Context()), id)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newProblemView(*p))
}

func (s *Server) handleUpdateProblem(w http.ResponseWriter, r *http.Request) {
	id, err := problemIDParam(r)
	if err != nil {
		handleError(w, r, err)
		return
	}

	var patch models.ProblemPatch
	if err := decodeJSON(w, r, &patch); err != nil {
		handleError(w, r, err)
		return
	}

	updated, err := s.CatalogService.UpdateProblem(r.Context(), id, patch)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, publicProblem(*updated))
}

func (s *Server) handleToggleBookmark(w http.ResponseWriter, r *http.Request) {
	id, err := problemIDParam(r)
	if err != nil {
		handleError(w, r, err)
		return
	}

	bookmarked, err := s.ProgressService.ToggleBookmark(r.Context(), id, userIDFromContext(r.Context()))
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"bookmarked": bookmarked})
}
