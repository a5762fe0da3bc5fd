// Package mockapi serves the json-server compatible mock backend: the problem
// catalog and the account list, optionally backed by a db.json file.
package mockapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"math/rand/v2"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/vytor/codedrill/internal/backend"
	"github.com/vytor/codedrill/internal/logger"
	"github.com/vytor/codedrill/internal/models"
	"github.com/vytor/codedrill/internal/seed"
)

// dbFile is the json-server db.json layout.
type dbFile struct {
	Problems []json.RawMessage `json:"problems"`
	Users    []backend.User    `json:"users"`
}

type Server struct {
	mu       sync.RWMutex
	problems map[int64]models.Problem
	users    []backend.User
	dataPath string
}

// NewFromSeed builds a server over the embedded reference data.
func NewFromSeed(rng *rand.Rand) (*Server, error) {
	problems, err := seed.Catalog(rng)
	if err != nil {
		return nil, err
	}
	accounts, err := seed.Users()
	if err != nil {
		return nil, err
	}

	s := &Server{problems: make(map[int64]models.Problem, len(problems))}
	for _, p := range problems {
		s.problems[p.ID] = p
	}
	for _, u := range accounts {
		s.users = append(s.users, backend.User{
			ID:        backend.FlexibleID(u.ID),
			Email:     u.Email,
			Password:  u.Password,
			StudentID: u.StudentID,
			Name:      u.Name,
		})
	}
	return s, nil
}

// Load reads a db.json file. Invalid problem records are logged and left
// out. Accepted updates are written back to the same file.
func Load(path string) (*Server, error) {
	log := logger.Default().WithPrefix("mockapi")

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	var f dbFile
	if err := json.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}

	s := &Server{
		problems: make(map[int64]models.Problem, len(f.Problems)),
		users:    f.Users,
		dataPath: path,
	}
	for i, msg := range f.Problems {
		var w backend.Problem
		if err := json.Unmarshal(msg, &w); err != nil {
			log.Warn("skipping malformed problem #%d: %v", i, err)
			continue
		}
		p, err := w.ToModel()
		if err != nil {
			log.Warn("skipping invalid problem #%d: %v", i, err)
			continue
		}
		s.problems[p.ID] = p
	}

	log.Info("loaded %d problems and %d users from %s", len(s.problems), len(s.users), path)
	return s, nil
}

func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.Recoverer, s.logRequests)

	r.Get("/problems", s.handleListProblems)
	r.Get("/problems/{id}", s.handleGetProblem)
	r.Patch("/problems/{id}", s.handlePatchProblem)
	r.Get("/users", s.handleListUsers)
	return r
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		logger.Default().WithPrefix("mockapi").
			WithField("request_id", middleware.GetReqID(r.Context())).
			Debug("%s %s -> %d in %v", r.Method, r.URL.Path, ww.Status(), time.Since(start))
	})
}

func (s *Server) handleListProblems(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	out := make([]backend.Problem, 0, len(s.problems))
	for _, p := range s.problems {
		out = append(out, backend.FromModel(p))
	}
	s.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		a, _ := out[i].ID.Int64()
		b, _ := out[j].ID.Int64()
		return a < b
	})
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleGetProblem(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}

	s.mu.RLock()
	p, found := s.problems[id]
	s.mu.RUnlock()
	if !found {
		writeJSON(w, http.StatusNotFound, map[string]string{})
		return
	}
	writeJSON(w, http.StatusOK, backend.FromModel(p))
}

func (s *Server) handlePatchProblem(w http.ResponseWriter, r *http.Request) {
	log := logger.Default().WithPrefix("mockapi")

	id, ok := parseID(w, r)
	if !ok {
		return
	}

	var patch models.ProblemPatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		http.Error(w, "invalid JSON body", http.StatusBadRequest)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	current, found := s.problems[id]
	if !found {
		writeJSON(w, http.StatusNotFound, map[string]string{})
		return
	}
	updated := patch.Apply(current)
	if err := updated.Validate(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	updated.UpdatedAt = time.Now().UTC()
	s.problems[id] = updated

	if err := s.persistLocked(); err != nil {
		log.Error("failed to persist %s: %v", s.dataPath, err)
	}
	log.Info("patched problem %d", id)
	writeJSON(w, http.StatusOK, backend.FromModel(updated))
}

func (s *Server) handleListUsers(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	out := append([]backend.User{}, s.users...)
	s.mu.RUnlock()
	writeJSON(w, http.StatusOK, out)
}

// persistLocked rewrites the data file through a temp file and rename.
// Callers hold s.mu.
func (s *Server) persistLocked() error {
	if s.dataPath == "" {
		return nil
	}

	ids := make([]int64, 0, len(s.problems))
	for id := range s.problems {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	f := dbFile{Users: s.users}
	for _, id := range ids {
		raw, err := json.Marshal(backend.FromModel(s.problems[id]))
		if err != nil {
			return err
		}
		f.Problems = append(f.Problems, raw)
	}

	payload, err := json.MarshalIndent(f, "", "  ")
	if err != nil {
		return err
	}
	tmp, err := os.CreateTemp(filepath.Dir(s.dataPath), ".db-*.json")
	if err != nil {
		return err
	}
	if _, err := tmp.Write(payload); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), s.dataPath)
}

func parseID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		writeJSON(w, http.StatusNotFound, map[string]string{})
		return 0, false
	}
	return id, true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil && !errors.Is(err, http.ErrHandlerTimeout) {
		logger.Default().WithPrefix("mockapi").Error("failed to encode response: %v", err)
	}
}
