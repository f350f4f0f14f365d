package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/istochnik/delivery-backend/internal/assignment"
	"github.com/istochnik/delivery-backend/internal/cron"
	"github.com/istochnik/delivery-backend/internal/districts"
	"github.com/istochnik/delivery-backend/pkg/cache"
	"github.com/istochnik/delivery-backend/pkg/config"
	"github.com/istochnik/delivery-backend/pkg/db"
	"github.com/istochnik/delivery-backend/pkg/logger"
	"github.com/istochnik/delivery-backend/pkg/metrics"
	pkgredis "github.com/istochnik/delivery-backend/pkg/redis"
	"github.com/istochnik/delivery-backend/pkg/webhook"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "cron-worker"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "cron-worker",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	dbClient, err := db.New(ctx, cfg.DB, logg)
	if err != nil {
		logg.Error(ctx, "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	redisClient, err := pkgredis.New(ctx, cfg.Redis)
	if err != nil {
		logg.Error(ctx, "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	assignmentRepo := assignment.NewRepository(dbClient.DB())
	resolver := assignment.NewResolver(assignment.WithFallbackVehicle(cfg.Assignment.FallbackVehicle))
	assignmentSvc, err := assignment.NewService(assignmentRepo, dbClient, resolver, cache.New(), time.Now)
	if err != nil {
		logg.Error(ctx, "failed to create assignment service", err)
		os.Exit(1)
	}

	registry := cron.NewRegistry()

	autoAssignJob, err := cron.NewAutoAssignJob(assignmentSvc, logg, time.Now)
	if err != nil {
		logg.Error(ctx, "failed to create auto-assign job", err)
		os.Exit(1)
	}
	registry.Register(autoAssignJob)

	staleJob, err := cron.NewStaleAssignmentJob(assignmentRepo, logg, 0, time.Now)
	if err != nil {
		logg.Error(ctx, "failed to create stale-assignment job", err)
		os.Exit(1)
	}
	registry.Register(staleJob)

	if cfg.DistrictSync.WebhookURL != "" {
		syncTrigger, err := webhook.NewClient(
			cfg.DistrictSync.WebhookURL,
			cfg.DistrictSync.RequestTimeout,
			webhook.WithMaxRetries(cfg.DistrictSync.MaxRetries),
		)
		if err != nil {
			logg.Error(ctx, "failed to build district sync client", err)
			os.Exit(1)
		}
		districtsSvc, err := districts.NewService(districts.NewRepository(dbClient.DB()), syncTrigger)
		if err != nil {
			logg.Error(ctx, "failed to create districts service", err)
			os.Exit(1)
		}
		syncJob, err := cron.NewDistrictSyncJob(districtsSvc, logg)
		if err != nil {
			logg.Error(ctx, "failed to create district sync job", err)
			os.Exit(1)
		}
		registry.Register(syncJob)
	} else {
		logg.Warn(ctx, "district sync webhook not configured, skipping sync job")
	}

	lock, err := cron.NewRedisLock(redisClient, redisClient.LockKey("cron"), 0)
	if err != nil {
		logg.Error(ctx, "failed to create cron lock", err)
		os.Exit(1)
	}

	promRegistry := prometheus.NewRegistry()
	jobMetrics := metrics.NewCronJobMetrics(promRegistry)

	service, err := cron.NewService(cron.ServiceParams{
		Logger:   logg,
		Registry: registry,
		Lock:     lock,
		Metrics:  jobMetrics,
		Interval: cfg.Cron.Interval,
	})
	if err != nil {
		logg.Error(ctx, "failed to create cron service", err)
		os.Exit(1)
	}

	logCtx := logg.WithFields(ctx, map[string]any{
		"env":      cfg.App.Env,
		"interval": cfg.Cron.Interval.String(),
	})
	logg.Info(logCtx, "starting cron worker")

	if err := service.Run(ctx); err != nil && err != context.Canceled {
		logg.Error(logCtx, "cron worker stopped unexpectedly", err)
		os.Exit(1)
	}
	logg.Info(logCtx, "cron worker stopped")
}
