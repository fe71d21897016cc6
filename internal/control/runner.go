// Package control wires a configured run together: credentials,
// discovery, selection policy, dispatch client, session, observability
// and report persistence. It owns the lifecycle around exactly one
// session.
package control

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"net/http"
	"time"

	"github.com/pressly/goose/v3"

	"github.com/vietddude/dispatcher/internal/core/breaker"
	"github.com/vietddude/dispatcher/internal/core/config"
	"github.com/vietddude/dispatcher/internal/core/domain"
	"github.com/vietddude/dispatcher/internal/core/selection"
	"github.com/vietddude/dispatcher/internal/core/session"
	"github.com/vietddude/dispatcher/internal/health"
	"github.com/vietddude/dispatcher/internal/infra/auth"
	"github.com/vietddude/dispatcher/internal/infra/discovery"
	"github.com/vietddude/dispatcher/internal/infra/dispatch"
	redisclient "github.com/vietddude/dispatcher/internal/infra/redis"
	"github.com/vietddude/dispatcher/internal/infra/storage"
	"github.com/vietddude/dispatcher/internal/infra/storage/postgres"
)

// Runner is the session handle exposed to the CLI: it builds all
// dependencies from the configuration, runs the session to a terminal
// state, and takes care of the report afterwards.
type Runner struct {
	cfg          *config.AppConfig
	sess         *session.Session
	healthServer *health.Server
	db           *postgres.DB
	runRepo      storage.RunRepository
	redisClient  *redisclient.Client
	failedRepo   *redisclient.FailedTaskRepo
	log          *slog.Logger
}

// NewRunner validates collaborator access and assembles the session.
// Configuration errors surface here, before anything is submitted.
func NewRunner(ctx context.Context, cfg *config.AppConfig, log *slog.Logger) (*Runner, error) {
	if log == nil {
		log = slog.Default()
	}

	r := &Runner{cfg: cfg, log: log}

	token, err := r.resolveToken(ctx)
	if err != nil {
		return nil, err
	}

	policy, err := r.buildPolicy(ctx, token)
	if err != nil {
		return nil, err
	}

	client := dispatch.NewClient(cfg.Service.BaseURL(), token, cfg.Request.Timeout(), cfg.Request.SuccessCodes)
	controller := dispatch.NewController(client, dispatch.RetryConfig{
		RetryCount: cfg.Request.Retries(),
		RetryDelay: cfg.Request.RetryDelay(),
	}, log)
	brk := breaker.New(cfg.Breaker.Threshold)

	r.sess = session.New(session.Config{
		TaskType:  cfg.Task.Type,
		Mode:      cfg.Run.Mode(),
		Interval:  cfg.Task.Interval(),
		OnFailure: r.recordFailure,
	}, policy, controller, brk, log)

	if cfg.Database.URL != "" {
		if err := r.initDatabase(ctx); err != nil {
			return nil, err
		}
	}
	if cfg.Redis.URL != "" {
		if err := r.initRedis(); err != nil {
			return nil, err
		}
	}

	r.healthServer = health.NewServer(r.sess, cfg.Server.Port)
	return r, nil
}

// Run drives the session to a terminal state and returns the final
// statistics. The passed context cancels the run like an interrupt.
func (r *Runner) Run(ctx context.Context) (session.Stats, error) {
	go func() {
		if err := r.healthServer.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			r.log.Error("health server failed", "error", err)
		}
	}()

	stats := r.sess.Run(ctx)

	// Post-run work must not depend on the possibly-cancelled run context.
	cleanupCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if r.runRepo != nil {
		if err := r.runRepo.Save(cleanupCtx, stats); err != nil {
			r.log.Error("failed to persist run report", "run_id", stats.RunID, "error", err)
		}
	}

	if err := r.healthServer.Stop(cleanupCtx); err != nil {
		r.log.Warn("health server shutdown failed", "error", err)
	}
	r.close()

	return stats, nil
}

// Interrupt requests a graceful stop of the session.
func (r *Runner) Interrupt() {
	r.sess.Interrupt()
}

// Report returns the session's statistics snapshot.
func (r *Runner) Report() session.Stats {
	return r.sess.Report()
}

func (r *Runner) resolveToken(ctx context.Context) (string, error) {
	if r.cfg.Auth.Token != "" {
		return r.cfg.Auth.Token, nil
	}

	r.log.Info("no token configured, logging in", "account", r.cfg.Auth.Account)
	authClient := auth.NewClient(r.cfg.Service.BaseURL(), r.cfg.Request.Timeout())
	token, err := authClient.Login(ctx, r.cfg.Auth.Account, r.cfg.Auth.Password)
	if err != nil {
		return "", fmt.Errorf("login failed: %w", err)
	}
	return token, nil
}

func (r *Runner) buildPolicy(ctx context.Context, token string) (selection.Policy, error) {
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	task := r.cfg.Task

	if task.Type == domain.TaskLiftToZone {
		return selection.NewLiftPolicy(task.Locations, task.DropAreas, task.TasksPerLocationHour, rng), nil
	}

	areas, err := r.resolveAreas(ctx, token)
	if err != nil {
		return nil, err
	}

	if task.Rule == 1 {
		return selection.NewSequentialPolicy(areas[0], task.Stores, task.FixedStore, rng), nil
	}
	return selection.NewRandomPolicy(areas, task.Stores, task.FixedStore, rng), nil
}

// resolveAreas returns the configured areas, filling empty store lists
// from discovery. The result is fixed before the session starts.
func (r *Runner) resolveAreas(ctx context.Context, token string) ([]domain.Area, error) {
	areas := r.cfg.Task.Areas

	needDiscovery := false
	for _, a := range areas {
		if len(a.Stores) == 0 {
			needDiscovery = true
			break
		}
	}
	if !needDiscovery {
		return areas, nil
	}

	names := make([]string, 0, len(areas))
	for _, a := range areas {
		names = append(names, a.Name)
	}

	r.log.Info("discovering stores", "scene_id", r.cfg.Service.SceneID, "areas", names)
	discoveryClient := discovery.NewClient(r.cfg.Service.BaseURL(), token, r.cfg.Request.Timeout())
	locations, err := discoveryClient.FetchLocations(ctx, r.cfg.Service.SceneID)
	if err != nil {
		return nil, fmt.Errorf("discovery failed: %w", err)
	}

	discovered := make(map[string][]string)
	for _, a := range discovery.GroupAreas(locations, names) {
		discovered[a.Name] = a.Stores
	}

	resolved := make([]domain.Area, 0, len(areas))
	for _, a := range areas {
		if len(a.Stores) == 0 {
			a.Stores = discovered[a.Name]
		}
		if len(a.Stores) == 0 {
			return nil, fmt.Errorf("area %q has no stores in scene %q", a.Name, r.cfg.Service.SceneID)
		}
		resolved = append(resolved, a)
	}
	return resolved, nil
}

func (r *Runner) initDatabase(ctx context.Context) error {
	db, err := postgres.NewDB(ctx, r.cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to init db: %w", err)
	}

	if err := goose.SetDialect("postgres"); err != nil {
		return err
	}
	if err := goose.Up(db.DB.DB, "migrations"); err != nil {
		return fmt.Errorf("failed to migrate db: %w", err)
	}

	r.db = db
	r.runRepo = postgres.NewRunRepo(db)
	r.log.Info("run history persistence enabled")
	return nil
}

func (r *Runner) initRedis() error {
	client, err := redisclient.NewClient(r.cfg.Redis)
	if err != nil {
		return fmt.Errorf("failed to init redis: %w", err)
	}
	r.redisClient = client
	r.failedRepo = redisclient.NewFailedTaskRepo(client, r.sess.ID())
	r.log.Info("failed-task sink enabled")
	return nil
}

// recordFailure forwards a failed submission to the sink. Best-effort:
// sink errors are logged and never affect the session.
func (r *Runner) recordFailure(task *domain.Task, outcome domain.Outcome) {
	if r.failedRepo == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := r.failedRepo.Add(ctx, task, outcome); err != nil {
		r.log.Warn("failed-task sink write failed", "error", err)
	}
}

func (r *Runner) close() {
	if r.db != nil {
		if err := r.db.Close(); err != nil {
			r.log.Warn("db close failed", "error", err)
		}
	}
	if r.redisClient != nil {
		if err := r.redisClient.Close(); err != nil {
			r.log.Warn("redis close failed", "error", err)
		}
	}
}
