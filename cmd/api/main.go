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

	"github.com/hannah-myrrh/csu-biolab-alers/api/routes"
	"github.com/hannah-myrrh/csu-biolab-alers/internal/auth"
	"github.com/hannah-myrrh/csu-biolab-alers/internal/equipment"
	"github.com/hannah-myrrh/csu-biolab-alers/internal/laboratories"
	"github.com/hannah-myrrh/csu-biolab-alers/internal/notifications"
	"github.com/hannah-myrrh/csu-biolab-alers/internal/reservations"
	"github.com/hannah-myrrh/csu-biolab-alers/internal/users"
	"github.com/hannah-myrrh/csu-biolab-alers/pkg/config"
	"github.com/hannah-myrrh/csu-biolab-alers/pkg/db"
	"github.com/hannah-myrrh/csu-biolab-alers/pkg/logger"
	"github.com/hannah-myrrh/csu-biolab-alers/pkg/metrics"
	"github.com/hannah-myrrh/csu-biolab-alers/pkg/migrate"
	"github.com/hannah-myrrh/csu-biolab-alers/pkg/redis"
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

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	httpMetrics := metrics.NewHTTPMetrics(registry)

	userRepo := users.NewRepository(dbClient.DB())
	labRepo := laboratories.NewRepository(dbClient.DB())
	equipmentRepo := equipment.NewRepository(dbClient.DB())
	reservationRepo := reservations.NewRepository(dbClient.DB())
	notificationRepo := notifications.NewRepository(dbClient.DB())

	authService, err := auth.NewService(auth.ServiceParams{
		UserRepo:       userRepo,
		JWTConfig:      cfg.JWT,
		PasswordConfig: cfg.Password,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create auth service", err)
		os.Exit(1)
	}

	userService, err := users.NewService(userRepo)
	if err != nil {
		logg.Error(context.Background(), "failed to create users service", err)
		os.Exit(1)
	}

	labService, err := laboratories.NewService(labRepo)
	if err != nil {
		logg.Error(context.Background(), "failed to create laboratories service", err)
		os.Exit(1)
	}

	equipmentService, err := equipment.NewService(equipmentRepo, labRepo)
	if err != nil {
		logg.Error(context.Background(), "failed to create equipment service", err)
		os.Exit(1)
	}

	reservationService, err := reservations.NewService(dbClient, reservationRepo, equipmentRepo, notificationRepo)
	if err != nil {
		logg.Error(context.Background(), "failed to create reservations service", err)
		os.Exit(1)
	}

	notificationService, err := notifications.NewService(notificationRepo)
	if err != nil {
		logg.Error(context.Background(), "failed to create notifications service", err)
		os.Exit(1)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(routes.Dependencies{
			Config:       cfg,
			Logger:       logg,
			DB:           dbClient,
			Redis:        redisClient,
			Registry:     registry,
			HTTPMetrics:  httpMetrics,
			Auth:         authService,
			Users:        userService,
			Laboratories: labService,
			Equipment:    equipmentService,
			Reservations: reservationService,
			Notify:       notificationService,
		}),
	}

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	errs := make(chan error, 1)
	go func() {
		errs <- server.ListenAndServe()
	}()

	select {
	case err := <-errs:
		if err != nil && err != http.ErrServerClosed {
			logg.Error(ctx, "api server stopped unexpectedly", err)
			os.Exit(1)
		}
	case sig := <-shutdown:
		logg.Info(logg.WithField(ctx, "signal", sig.String()), "shutting down api server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logg.Error(ctx, "graceful shutdown failed", err)
			os.Exit(1)
		}
	}
}
