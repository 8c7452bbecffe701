package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"pj_commission_backend/internal/activitylog"
	"pj_commission_backend/internal/adapters/storage"
	"pj_commission_backend/internal/commissions"
	apphttp "pj_commission_backend/internal/http"
	"pj_commission_backend/internal/http/router"
	"pj_commission_backend/internal/profiles"
	"pj_commission_backend/internal/scheduler"
	"pj_commission_backend/internal/schools"
	"pj_commission_backend/internal/students"
	"pj_commission_backend/internal/zoho"
	"pj_commission_backend/platform/config"
	"pj_commission_backend/platform/db"
	"pj_commission_backend/platform/logger"
	"pj_commission_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	// Initialize structured logger
	log := logger.New(cfg.Env)
	log.Info("starting server", "env", cfg.Env, "addr", cfg.HTTPAddr)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// ========================================================================
	// Infrastructure Layer
	// ========================================================================

	if err := withRetry(ctx, log, "database migrations", 5, 2*time.Second, func() error {
		return db.RunMigrations(ctx, cfg, "migrations")
	}); err != nil {
		log.Error("failed to run database migrations", "error", err)
		panic("failed to run database migrations: " + err.Error())
	}
	log.Info("database migrations complete")

	var pool *pgxpool.Pool
	if err := withRetry(ctx, log, "database connection", 5, 2*time.Second, func() error {
		p, err := db.NewPool(ctx, cfg)
		if err != nil {
			return err
		}
		pool = p
		return nil
	}); err != nil {
		log.Error("failed to connect to database", "error", err)
		panic("failed to connect to database: " + err.Error())
	}
	defer pool.Close()
	log.Info("database connection established")

	// Shared validator instance for dependency injection
	val := validator.New()

	// Storage service for commission attachments (MinIO)
	var storageSvc storage.StorageService
	if cfg.IsMinIOEnabled() {
		svc, err := storage.NewMinIOService(cfg)
		if err != nil {
			log.Error("failed to initialize storage service", "error", err)
			panic("failed to initialize storage service: " + err.Error())
		}
		bucket := cfg.GetMinioBucketCommissionAttachments()
		if err := withRetry(ctx, log, "ensure commission-attachments bucket", 5, 2*time.Second, func() error {
			return svc.EnsureBucketExists(ctx, bucket)
		}); err != nil {
			log.Error("failed to ensure storage bucket exists", "error", err, "bucket", bucket)
			panic("failed to ensure storage bucket exists: " + err.Error())
		}
		storageSvc = svc
		log.Info("storage service initialized", "attachmentsBucket", bucket)
	} else {
		log.Warn("MINIO_ENDPOINT not configured; commission attachments disabled")
	}

	notifier, closeNotifier := initClaimNotifier(cfg, log)
	if closeNotifier != nil {
		defer closeNotifier()
	}

	// ========================================================================
	// Domain Modules (Composition Root)
	// ========================================================================

	profilesModule := profiles.NewModule(pool, val, log)
	schoolsModule := schools.NewModule(pool, val, log)
	studentsModule := students.NewModule(pool, val, log)
	activityModule := activitylog.NewModule(pool, log)

	zohoModule := zoho.NewModule(pool, cfg, log)
	if !cfg.IsZohoEnabled() {
		log.Warn("Zoho client credentials not configured; claim sync will fail until connected")
	}

	commissionsModule := commissions.NewModule(pool, val, log, commissions.Deps{
		Syncer:   zohoModule.Synchronizer(),
		Agents:   profilesModule.Service(),
		Recorder: activityModule.Recorder(),
		Notifier: notifier,
		Store:    storageSvc,
		Bucket:   cfg.GetMinioBucketCommissionAttachments(),
	})

	// ========================================================================
	// HTTP Layer
	// ========================================================================

	app := &apphttp.App{
		Config: cfg,
		Logger: log,
		Health: db.NewPoolAdapter(pool),
		Modules: []apphttp.Module{
			profilesModule,
			schoolsModule,
			studentsModule,
			commissionsModule,
			activityModule,
			zohoModule,
		},
	}

	engine := router.New(app)

	srvErr := make(chan error, 1)
	go func() {
		log.Info("server listening", "addr", cfg.HTTPAddr)
		srvErr <- engine.Run(cfg.HTTPAddr)
	}()

	select {
	case <-ctx.Done():
		log.Info("shutdown signal received, gracefully shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = shutdownCtx
	case err := <-srvErr:
		if err != nil {
			log.Error("server error", "error", err)
			panic("server error: " + err.Error())
		}
	}
}

// initClaimNotifier builds the asynq client used to queue claim outcome
// emails. Returns a nil notifier when Redis is not configured.
func initClaimNotifier(cfg config.SchedulerConfig, log *logger.Logger) (scheduler.ClaimNotifier, func()) {
	if cfg.GetRedisURL() == "" {
		log.Warn("REDIS_URL not configured; claim notifications disabled")
		return nil, nil
	}

	client, err := scheduler.NewClient(cfg)
	if err != nil {
		log.Error("failed to initialize scheduler client", "error", err)
		return nil, nil
	}

	return client, func() {
		_ = client.Close()
	}
}

func withRetry(ctx context.Context, log *logger.Logger, name string, attempts int, baseDelay time.Duration, fn func() error) error {
	if attempts < 1 {
		return fmt.Errorf("%s: invalid retry attempts", name)
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err := fn(); err == nil {
			return nil
		} else {
			lastErr = err
			log.Warn("retryable operation failed", "operation", name, "attempt", attempt, "error", err)
		}

		if attempt < attempts {
			delay := time.Duration(attempt*attempt) * baseDelay
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
		}
	}

	return errors.New(name + ": " + lastErr.Error())
}
