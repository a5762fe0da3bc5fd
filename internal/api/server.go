package api

import (
	"database/sql"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/vytor/codedrill/internal/errors"
	"github.com/vytor/codedrill/internal/logger"
	"github.com/vytor/codedrill/internal/models"
	"github.com/vytor/codedrill/internal/services"
)

// Server holds the dependencies of the HTTP handlers.
type Server struct {
	DB *sql.DB

	CatalogService    services.CatalogService
	ProgressService   services.ProgressService
	SubmissionService services.SubmissionService
	DraftService      services.DraftService
	AuthService       services.AuthService
	ProfileService    services.ProfileService
	GenerationService services.GenerationService

	PageSize       int
	RequestTimeout time.Duration
	SecureCookies  bool
}

// maxBodyBytes bounds every JSON request body.
const maxBodyBytes = 1 << 20

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(v); err != nil {
		return errors.NewBadRequestError("invalid JSON body: " + err.Error())
	}
	return nil
}

func problemIDParam(r *http.Request) (int64, error) {
	raw := chi.URLParam(r, "id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		logger.FromContext(r.Context()).Warn("invalid problem id: %s", raw)
		return 0, errors.NewBadRequestError("invalid problem id")
	}
	return id, nil
}

// problemView is the client-facing shape of a problem. Hidden test cases are
// stripped before encoding.
type problemView struct {
	models.Problem
	models.ProblemStatus
	PassRate float64 `json:"pass_rate"`
}

func newProblemView(p models.EnhancedProblem) problemView {
	p.Problem.TestCases = p.Problem.PublicTestCases()
	return problemView{Problem: p.Problem, ProblemStatus: p.ProblemStatus, PassRate: p.PassRate}
}

func newProblemViews(items []models.EnhancedProblem) []problemView {
	out := make([]problemView, 0, len(items))
	for _, p := range items {
		out = append(out, newProblemView(p))
	}
	return out
}

// publicProblem strips hidden test cases from a bare catalog problem.
func publicProblem(p models.Problem) models.Problem {
	p.TestCases = p.PublicTestCases()
	return p
}

func publicProblems(ps []models.Problem) []models.Problem {
	out := make([]models.Problem, 0, len(ps))
	for _, p := range ps {
		out = append(out, publicProblem(p))
	}
	return out
}
