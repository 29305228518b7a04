package commands

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/codergirlprerna/t20-predictor/backend/internal/feed"
	"github.com/codergirlprerna/t20-predictor/backend/internal/predictor"
	"github.com/codergirlprerna/t20-predictor/backend/internal/qualification"
	"github.com/codergirlprerna/t20-predictor/backend/internal/scheduler"
	"github.com/codergirlprerna/t20-predictor/backend/internal/scheduler/jobs"
	"github.com/codergirlprerna/t20-predictor/backend/internal/tournament"
	"github.com/codergirlprerna/t20-predictor/backend/pkg/config"
	"github.com/codergirlprerna/t20-predictor/backend/pkg/database"
	"github.com/codergirlprerna/t20-predictor/backend/pkg/httputil"
	"github.com/codergirlprerna/t20-predictor/backend/pkg/logger"
	"github.com/codergirlprerna/t20-predictor/backend/pkg/redis"
)

// keyPrefix namespaces every Redis key this service writes
const keyPrefix = "t20"

// app holds the wired dependencies shared by api, sync and scheduler
type app struct {
	cfg     *config.Config
	log     *logger.Logger
	db      *database.DB // nil on the in-memory store
	redis   *redis.Client
	store   tournament.Store
	source  feed.Source // nil when FEED_URL is unset
	service *predictor.Service
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if verbose {
		cfg.LogLevel = "debug"
	}
	return cfg, nil
}

// newApp wires storage, cache, feed and the predictor service
func newApp(ctx context.Context) (*app, error) {
	// 1. Load config
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}

	// 2. Initialize logger
	log := logger.New(cfg)
	a := &app{cfg: cfg, log: log}

	// 3. Storage: Postgres when configured, memory otherwise
	if cfg.Database.URL != "" {
		db, err := database.New(cfg)
		if err != nil {
			return nil, fmt.Errorf("connect to database: %w", err)
		}
		repo := tournament.NewRepository(db.Pool)
		if err := repo.Migrate(ctx); err != nil {
			db.Close()
			return nil, fmt.Errorf("migrate: %w", err)
		}
		a.db, a.store = db, repo
		log.Info("Connected to database")
	} else {
		a.store = tournament.NewMemoryStore()
		log.Warn("DATABASE_URL not set, standings are kept in memory")
	}

	// 4. Redis is optional; a failed connection degrades to no cache
	rc, err := redis.New(cfg)
	if err != nil {
		log.WithError(err).Warn("Redis unavailable, caching disabled")
		rc = redis.Disabled()
	}
	a.redis = rc

	// 5. Feed
	httpClient := httputil.New(cfg, log).
		WithRateLimiter(redis.NewRateLimiter(rc, keyPrefix), redis.FeedRateLimit)

	source, err := feed.NewSource(cfg.Feed, httpClient, log)
	switch {
	case errors.Is(err, feed.ErrNoFeed):
		log.Warn("FEED_URL not set, refresh is disabled")
	case err != nil:
		a.Close()
		return nil, fmt.Errorf("create feed: %w", err)
	default:
		a.source = source
	}

	// 6. Simulator + service
	sim := qualification.NewSimulator(qualification.Config{
		MaxFixtures: cfg.Simulator.MaxFixtures,
		Workers:     cfg.Simulator.Workers,
	}, log.Zerolog())

	a.service = predictor.NewService(a.store, a.source, sim, redis.NewCache(rc, keyPrefix), log).
		WithTimeout(cfg.Simulator.Timeout)

	return a, nil
}

// newScheduler registers the sync, prune and memo cleanup jobs
// newScheduler registers every job, then drops the ones named in disabled
func (a *app) newScheduler(disabled []string) (*scheduler.Scheduler, error) {
	sched := scheduler.New(a.log).WithRetry(2, 10*time.Second)

	if a.source != nil {
		if err := sched.AddJob(jobs.NewStandingsSyncJob(a.service, a.cfg.Feed.Schedule, a.log)); err != nil {
			return nil, err
		}
	}
	if err := sched.AddJob(jobs.NewPredictionPruneJob(a.service, a.cfg.API.PredictionRetention, a.log)); err != nil {
		return nil, err
	}
	if err := sched.AddJob(jobs.NewMemoCleanupJob(a.service.Memo(), a.log)); err != nil {
		return nil, err
	}

	if err := disableJobs(sched, disabled); err != nil {
		return nil, err
	}
	return sched, nil
}

func disableJobs(sched *scheduler.Scheduler, names []string) error {
	for _, name := range names {
		if err := sched.RemoveJob(name); err != nil {
			return fmt.Errorf("--disable: %w", err)
		}
	}
	return nil
}

// Close releases connections
func (a *app) Close() {
	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			a.log.WithError(err).Warn("Redis close failed")
		}
	}
	if a.db != nil {
		a.db.Close()
	}
}
