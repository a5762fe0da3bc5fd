package main

import (
	"context"
	"math/rand/v2"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/vytor/codedrill/internal/api"
	"github.com/vytor/codedrill/internal/backend"
	"github.com/vytor/codedrill/internal/config"
	"github.com/vytor/codedrill/internal/db"
	"github.com/vytor/codedrill/internal/events"
	"github.com/vytor/codedrill/internal/grading"
	"github.com/vytor/codedrill/internal/jobs"
	"github.com/vytor/codedrill/internal/logger"
	"github.com/vytor/codedrill/internal/repository/sqlite"
	"github.com/vytor/codedrill/internal/services"
	"github.com/vytor/codedrill/internal/session"
	"github.com/vytor/codedrill/internal/worker"
)

// app is the wired object graph shared by the serve and seed commands.
type app struct {
	db       *db.DB
	rdb      *redis.Client
	sessions session.Store
	pool     *worker.Pool
	catalog  services.CatalogService
	server   *api.Server
}

func newApp(cfg config.Config) (*app, error) {
	log := logger.Default()

	database, err := db.Open(cfg.DBPath)
	if err != nil {
		return nil, err
	}
	a := &app{db: database}

	if cfg.RedisAddr != "" {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		a.rdb, err = session.NewRedisClient(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		cancel()
		if err != nil {
			a.Close()
			return nil, err
		}
		a.sessions = session.NewRedisStore(a.rdb)
		log.Info("sessions stored in redis at %s", cfg.RedisAddr)
	} else {
		a.sessions = session.NewSQLiteStore(database.DB)
		log.Info("sessions stored in sqlite")
	}

	problems := sqlite.NewProblemRepository(database.DB)
	submissions := sqlite.NewSubmissionRepository(database.DB)
	bookmarks := sqlite.NewBookmarkRepository(database.DB)
	drafts := sqlite.NewDraftRepository(database.DB)
	prefs := sqlite.NewPreferenceRepository(database.DB)

	client := backend.New(cfg.BackendURL, cfg.BackendTimeout())
	bus := events.NewBus()
	seed := uint64(time.Now().UnixNano())

	a.pool = worker.NewPool(cfg.GenerationWorkerCount, cfg.GenerationQueueSize)
	queue := jobs.NewWorkerQueue(a.pool)

	a.catalog = services.NewCatalogService(problems, submissions, bookmarks, client, bus, rand.New(rand.NewPCG(seed, 1)))
	progress := services.NewProgressService(problems, submissions, bookmarks, bus)
	generation := services.NewGenerationService(problems, queue, bus, cfg.GenerationDelay(), rand.New(rand.NewPCG(seed, 2)))
	queue.Bind(generation)

	a.server = &api.Server{
		DB:                database.DB,
		CatalogService:    a.catalog,
		ProgressService:   progress,
		SubmissionService: services.NewSubmissionService(problems, drafts, progress, grading.NewMockGrader(cfg.GradingDelay(), rand.New(rand.NewPCG(seed, 3)))),
		DraftService:      services.NewDraftService(problems, drafts),
		AuthService: services.NewAuthService(client, a.sessions, services.AuthConfig{
			Secret:      []byte(cfg.JWTSecret),
			SessionTTL:  cfg.SessionTTL(),
			RememberTTL: cfg.RememberMeTTL(),
		}),
		ProfileService:    services.NewProfileService(problems, submissions, prefs),
		GenerationService: generation,
		PageSize:          cfg.PageSize,
		RequestTimeout:    30 * time.Second,
	}
	return a, nil
}

// purgeSessions periodically drops expired sqlite sessions. Redis expires
// its keys on its own.
func (a *app) purgeSessions(ctx context.Context, every time.Duration) {
	store, ok := a.sessions.(*session.SQLiteStore)
	if !ok {
		return
	}
	log := logger.Default().WithPrefix("sessions")

	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := store.Purge(ctx)
			if err != nil {
				log.Warn("purge failed: %v", err)
				continue
			}
			if n > 0 {
				log.Debug("purged %d expired sessions", n)
			}
		}
	}
}

func (a *app) Close() {
	log := logger.Default()
	if a.catalog != nil {
		a.catalog.Close()
	}
	if a.rdb != nil {
		if err := a.rdb.Close(); err != nil {
			log.Warn("closing redis: %v", err)
		}
	}
	log.Debug("closing database connection")
	if err := a.db.Close(); err != nil {
		log.Warn("closing database: %v", err)
	}
}
