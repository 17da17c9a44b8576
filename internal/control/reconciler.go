package control

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/pressly/goose/v3"

	"github.com/harrydhillon-synapse/cosmosToDb/internal/core/config"
	"github.com/harrydhillon-synapse/cosmosToDb/internal/health"
	"github.com/harrydhillon-synapse/cosmosToDb/internal/infra/logsource"
	redisclient "github.com/harrydhillon-synapse/cosmosToDb/internal/infra/redis"
	"github.com/harrydhillon-synapse/cosmosToDb/internal/infra/storage"
	"github.com/harrydhillon-synapse/cosmosToDb/internal/infra/storage/memory"
	"github.com/harrydhillon-synapse/cosmosToDb/internal/infra/storage/postgres"
	"github.com/harrydhillon-synapse/cosmosToDb/internal/reconcile"
)

// Config holds the application configuration.
type Config struct {
	Port      int
	Reconcile config.ReconcileConfig
	Source    logsource.Config
	Redis     redisclient.Config
	Database  postgres.Config
}

// Reconciler is the main application struct that manages the run lifecycle.
type Reconciler struct {
	cfg          Config
	driver       *reconcile.Driver
	orders       storage.OrderRepository
	source       *logsource.Client
	db           *postgres.DB
	redisClient  *redisclient.Client
	healthMon    *health.Monitor
	healthServer *health.Server
	log          *slog.Logger
}

// NewReconciler creates a new Reconciler instance with all dependencies initialized.
func NewReconciler(cfg Config) (*Reconciler, error) {
	if cfg.Source.URL == "" {
		return nil, fmt.Errorf("source url is required")
	}

	// 1. Initialize Storage
	var orderRepo storage.OrderRepository
	var failureRepo storage.FailureRepository
	var db *postgres.DB

	if cfg.Database.URL != "" {
		var err error
		db, err = postgres.NewDB(context.Background(), cfg.Database)
		if err != nil {
			return nil, fmt.Errorf("failed to init db: %w", err)
		}

		// Run migrations (idempotent, safe every startup)
		if err := goose.SetDialect("postgres"); err != nil {
			return nil, err
		}
		if err := goose.Up(db.DB.DB, cfg.Reconcile.MigrationsDir); err != nil {
			return nil, fmt.Errorf("failed to migrate db: %w", err)
		}

		orderRepo = postgres.NewOrderRepo(db)
		failureRepo = postgres.NewFailureRepo(db)
		slog.Info("Using PostgreSQL storage")
	} else {
		store := memory.NewMemoryStorage()
		orderRepo = memory.NewOrderRepo(store)
		failureRepo = memory.NewFailureRepo(store)
		slog.Info("Using Memory storage")
	}

	// 2. Initialize Log Source
	source := logsource.NewClient(cfg.Source)

	// 3. Initialize Redis (optional run lock + checkpoint)
	var redisClient *redisclient.Client
	if cfg.Redis.URL != "" {
		var err error
		redisClient, err = redisclient.NewClient(cfg.Redis)
		if err != nil {
			slog.Warn("Failed to connect to Redis, run coordination disabled", "error", err)
		}
	}

	// 4. Initialize Driver
	driver := reconcile.NewDriver(source, orderRepo, failureRepo, cfg.Reconcile.PageSize)

	// 5. Initialize Health Monitor
	healthMon := health.NewMonitor()
	healthMon.Register("source", true, source.Ping)
	if db != nil {
		healthMon.Register("database", true, db.Health)
	}
	if redisClient != nil {
		healthMon.Register("redis", false, redisClient.Health)
	}

	var healthServer *health.Server
	if cfg.Port > 0 {
		healthServer = health.NewServer(healthMon, cfg.Port)
	}

	return &Reconciler{
		cfg:          cfg,
		driver:       driver,
		orders:       orderRepo,
		source:       source,
		db:           db,
		redisClient:  redisClient,
		healthMon:    healthMon,
		healthServer: healthServer,
		log:          slog.Default(),
	}, nil
}

// Start starts the health server and the interval run loop.
func (r *Reconciler) Start(ctx context.Context) error {
	if r.healthServer != nil {
		go func() {
			if err := r.healthServer.Start(); err != nil {
				r.log.Error("Health server failed", "error", err)
			}
		}()
	}

	if r.db != nil {
		r.db.StartMetricsCollector(ctx)
	}

	go r.runLoop(ctx)
	return nil
}

func (r *Reconciler) runLoop(ctx context.Context) {
	ticker := time.NewTicker(r.cfg.Reconcile.Interval)
	defer ticker.Stop()

	// First run immediately, then on the interval.
	if _, err := r.RunOnce(ctx); err != nil {
		r.log.Error("Reconciliation run failed", "error", err)
	}

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := r.RunOnce(ctx); err != nil {
				r.log.Error("Reconciliation run failed", "error", err)
			}
		}
	}
}

// RunOnce performs a single reconciliation run: take the run lock if Redis is
// configured, fetch from the last checkpoint, apply, advance the checkpoint.
func (r *Reconciler) RunOnce(ctx context.Context) (reconcile.Summary, error) {
	var summary reconcile.Summary

	if r.redisClient != nil {
		ok, err := r.redisClient.AcquireRunLock(ctx, r.cfg.Reconcile.LockTTL)
		if err != nil {
			return summary, fmt.Errorf("acquire run lock: %w", err)
		}
		if !ok {
			r.log.Info("Another run holds the lock, skipping")
			return summary, nil
		}
		defer func() {
			if err := r.redisClient.ReleaseRunLock(context.Background()); err != nil {
				r.log.Warn("Failed to release run lock", "error", err)
			}
		}()
	}

	after := time.Time{}
	if r.redisClient != nil {
		cp, err := r.redisClient.Checkpoint(ctx)
		if err != nil {
			r.log.Warn("Failed to read checkpoint, fetching from the beginning", "error", err)
		} else {
			after = cp
		}
	}

	summary, err := r.driver.Run(ctx, after)
	if err != nil {
		return summary, err
	}

	// Only advance the checkpoint on a clean run; records that hit write
	// errors must be fetched again next time.
	if r.redisClient != nil && summary.Fetched > 0 && summary.Failed == 0 {
		if err := r.redisClient.SetCheckpoint(ctx, summary.LastEventTime); err != nil {
			r.log.Warn("Failed to store checkpoint", "error", err)
		}
	}

	return summary, nil
}

// Stats returns aggregate store counts for reporting.
func (r *Reconciler) Stats(ctx context.Context) (storage.Stats, error) {
	return r.orders.Stats(ctx)
}

// Stop stops the reconciler and releases resources.
func (r *Reconciler) Stop(ctx context.Context) error {
	r.log.Info("Stopping Reconciler...")

	if r.healthServer != nil {
		if err := r.healthServer.Stop(ctx); err != nil {
			r.log.Warn("Failed to stop health server", "error", err)
		}
	}

	if r.redisClient != nil {
		if err := r.redisClient.Close(); err != nil {
			r.log.Warn("Failed to close Redis", "error", err)
		}
	}

	if r.db != nil {
		if err := r.db.Close(); err != nil {
			r.log.Warn("Failed to close database", "error", err)
		}
	}

	return nil
}
