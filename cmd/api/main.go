package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/pocket-crm/analytics-api/internal/analytics"
	"github.com/pocket-crm/analytics-api/internal/auth"
	"github.com/pocket-crm/analytics-api/internal/cache"
	"github.com/pocket-crm/analytics-api/internal/config"
	"github.com/pocket-crm/analytics-api/internal/database"
	"github.com/pocket-crm/analytics-api/internal/http/handler"
	"github.com/pocket-crm/analytics-api/internal/http/middleware"
	"github.com/pocket-crm/analytics-api/internal/http/router"
	"github.com/pocket-crm/analytics-api/internal/jobs"
	"github.com/pocket-crm/analytics-api/internal/logger"
	"github.com/pocket-crm/analytics-api/internal/repository"
	"github.com/pocket-crm/analytics-api/internal/service"
	"github.com/pocket-crm/analytics-api/internal/storage"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	ctx := context.Background()

	// Load basic configuration first (for logging setup)
	basicCfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	log, err := logger.NewLogger(&basicCfg.Logging, &basicCfg.App)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer func() { _ = log.Sync() }()

	log.Info("Starting application",
		zap.String("app", basicCfg.App.Name),
		zap.String("env", basicCfg.App.Environment),
		zap.Int("port", basicCfg.App.Port),
	)

	// In development secrets come from environment variables,
	// in staging/production from Azure Key Vault
	cfg, err := config.LoadWithSecrets(ctx, log)
	if err != nil {
		return fmt.Errorf("failed to load secrets: %w", err)
	}

	weights, err := cfg.Analytics.StageWeights()
	if err != nil {
		return err
	}
	location, err := cfg.Analytics.Location()
	if err != nil {
		return err
	}

	db, err := database.NewDatabase(ctx, &cfg.Database, log)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	// The report cache is optional: the API serves uncached reports without it
	var reportCache *cache.ReportCache
	if cfg.Redis.Enabled {
		client, err := cache.NewRedisClient(ctx, cache.Options{
			URL:       cfg.Redis.URL,
			Password:  cfg.Redis.Password,
			DB:        cfg.Redis.DB,
			KeyPrefix: cfg.Redis.KeyPrefix,
		}, log)
		if err != nil {
			log.Warn("Redis connection failed, serving reports without cache", zap.Error(err))
		} else {
			defer client.Close()
			reportCache = cache.NewReportCache(client, cfg.Redis.KeyPrefix)
		}
	} else {
		log.Info("Report cache disabled")
	}

	opts := service.ReportOptions{
		Weights:  weights,
		TopN:     cfg.Analytics.TopN,
		Location: location,
		CacheTTL: cfg.Analytics.CacheTTLDuration(),
		Timeout:  cfg.Analytics.ReportTimeoutDuration(),
	}
	var healthCache handler.Pinger
	if reportCache != nil {
		opts.Cache = reportCache
		healthCache = reportCache
	}

	reportService, err := service.NewReportService(repository.NewRecordRepository(db), opts, log)
	if err != nil {
		return fmt.Errorf("failed to create report service: %w", err)
	}

	var scheduler *jobs.Scheduler
	if cfg.Jobs.Enabled {
		scheduler, err = setupJobs(ctx, cfg, reportService, reportCache != nil, location, log)
		if err != nil {
			return err
		}
		scheduler.Start()
	} else {
		log.Info("Background jobs disabled")
	}

	rt := router.NewRouter(
		cfg,
		log,
		auth.NewMiddleware(&cfg.Auth, log),
		middleware.NewRateLimiter(&cfg.RateLimit, log),
		handler.NewReportHandler(reportService, log),
		handler.NewHealthHandler(db, healthCache, log),
	)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.App.Port),
		Handler:      rt.Setup(),
		ReadTimeout:  cfg.Server.ReadTimeoutDuration(),
		WriteTimeout: cfg.Server.WriteTimeoutDuration(),
	}

	serverErrors := make(chan error, 1)
	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		serverErrors <- srv.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
	case sig := <-shutdown:
		log.Info("Shutdown signal received", zap.String("signal", sig.String()))

		if scheduler != nil {
			<-scheduler.Stop().Done()
			log.Info("Scheduler stopped")
		}

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			log.Error("Failed to shutdown gracefully", zap.Error(err))
			return err
		}

		log.Info("Server stopped gracefully")
	}

	return nil
}

// setupJobs registers the cache warmer (only with a cache) and the snapshot archiver
func setupJobs(ctx context.Context, cfg *config.Config, reports *service.ReportService, cached bool, location *time.Location, log *zap.Logger) (*jobs.Scheduler, error) {
	store, err := storage.NewStorage(ctx, &cfg.Storage, log)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize snapshot storage: %w", err)
	}
	log.Info("Snapshot storage initialized", zap.String("mode", cfg.Storage.Mode))

	// one run covers every report for every period
	runTimeout := time.Duration(len(service.ReportNames)*len(analytics.Periods)) * cfg.Analytics.ReportTimeoutDuration()
	if runTimeout <= 0 {
		runTimeout = 30 * time.Minute
	}

	var warm *jobs.CacheWarmJob
	if cached {
		warm = jobs.NewCacheWarmJob(reports, log.Named(jobs.CacheWarmJobName), runTimeout)
	}
	snapshot := jobs.NewSnapshotJob(reports, store, log.Named(jobs.SnapshotJobName), runTimeout, location)

	scheduler := jobs.NewScheduler(log)
	if err := jobs.Register(scheduler, warm, cfg.Jobs.CacheWarmSchedule, snapshot, cfg.Jobs.SnapshotSchedule); err != nil {
		return nil, fmt.Errorf("failed to register jobs: %w", err)
	}
	return scheduler, nil
}
