package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/istochnik/delivery-backend/api/routes"
	"github.com/istochnik/delivery-backend/internal/assignment"
	"github.com/istochnik/delivery-backend/internal/couriers"
	"github.com/istochnik/delivery-backend/internal/districts"
	"github.com/istochnik/delivery-backend/internal/drivers"
	"github.com/istochnik/delivery-backend/internal/orders"
	"github.com/istochnik/delivery-backend/internal/production"
	"github.com/istochnik/delivery-backend/internal/vehicles"
	"github.com/istochnik/delivery-backend/pkg/cache"
	"github.com/istochnik/delivery-backend/pkg/config"
	"github.com/istochnik/delivery-backend/pkg/db"
	"github.com/istochnik/delivery-backend/pkg/logger"
	"github.com/istochnik/delivery-backend/pkg/migrate"
	pkgredis "github.com/istochnik/delivery-backend/pkg/redis"
	"github.com/istochnik/delivery-backend/pkg/webhook"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
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

	if err := migrate.MaybeRunDev(ctx, cfg, logg, dbClient); err != nil {
		logg.Error(ctx, "failed to run dev migrations", err)
		os.Exit(1)
	}

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

	listCache := cache.New(cache.WithDefaultTTL(cfg.Cache.DefaultTTL))
	go listCache.RunSweeper(ctx, cfg.Cache.SweepInterval, logg)

	var syncTrigger *webhook.Client
	if cfg.DistrictSync.WebhookURL != "" {
		syncTrigger, err = webhook.NewClient(
			cfg.DistrictSync.WebhookURL,
			cfg.DistrictSync.RequestTimeout,
			webhook.WithMaxRetries(cfg.DistrictSync.MaxRetries),
		)
		if err != nil {
			logg.Error(ctx, "failed to build district sync client", err)
			os.Exit(1)
		}
	}

	ordersSvc, err := orders.NewService(orders.NewRepository(dbClient.DB()), dbClient, listCache)
	if err != nil {
		logg.Error(ctx, "failed to create orders service", err)
		os.Exit(1)
	}

	resolver := assignment.NewResolver(assignment.WithFallbackVehicle(cfg.Assignment.FallbackVehicle))
	assignmentSvc, err := assignment.NewService(
		assignment.NewRepository(dbClient.DB()), dbClient, resolver, listCache, time.Now)
	if err != nil {
		logg.Error(ctx, "failed to create assignment service", err)
		os.Exit(1)
	}

	driversSvc, err := drivers.NewService(
		drivers.NewRepository(dbClient.DB()), dbClient, cfg.JWT, cfg.PIN, time.Now)
	if err != nil {
		logg.Error(ctx, "failed to create drivers service", err)
		os.Exit(1)
	}

	vehiclesSvc, err := vehicles.NewService(vehicles.NewRepository(dbClient.DB()))
	if err != nil {
		logg.Error(ctx, "failed to create vehicles service", err)
		os.Exit(1)
	}

	var districtsSvc districts.Service
	if syncTrigger != nil {
		districtsSvc, err = districts.NewService(districts.NewRepository(dbClient.DB()), syncTrigger)
	} else {
		districtsSvc, err = districts.NewService(districts.NewRepository(dbClient.DB()), nil)
	}
	if err != nil {
		logg.Error(ctx, "failed to create districts service", err)
		os.Exit(1)
	}

	couriersSvc, err := couriers.NewService(couriers.NewRepository(dbClient.DB()))
	if err != nil {
		logg.Error(ctx, "failed to create couriers service", err)
		os.Exit(1)
	}

	productionSvc, err := production.NewService(production.NewRepository(dbClient.DB()), dbClient)
	if err != nil {
		logg.Error(ctx, "failed to create production service", err)
		os.Exit(1)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	router := routes.New(routes.Deps{
		Config:      cfg,
		Logger:      logg,
		DB:          dbClient,
		Redis:       redisClient,
		Registry:    registry,
		Orders:      ordersSvc,
		Assignments: assignmentSvc,
		Drivers:     driversSvc,
		Vehicles:    vehiclesSvc,
		Districts:   districtsSvc,
		Couriers:    couriersSvc,
		Production:  productionSvc,
		Now:         time.Now,
	})

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port

	logCtx := logg.WithFields(ctx, map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(logCtx, "starting api server")

	server := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			logg.Error(logCtx, "api server stopped unexpectedly", err)
			os.Exit(1)
		}
	case <-ctx.Done():
		logg.Info(logCtx, "shutting down api server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logg.Error(logCtx, "graceful shutdown failed", err)
			os.Exit(1)
		}
	}
}
