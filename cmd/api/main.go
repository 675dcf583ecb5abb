package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/multierr"

	"github.com/lumenlearn/certifex-backend/api/routes"
	"github.com/lumenlearn/certifex-backend/internal/certificates"
	"github.com/lumenlearn/certifex-backend/internal/roster"
	"github.com/lumenlearn/certifex-backend/internal/verification"
	"github.com/lumenlearn/certifex-backend/pkg/config"
	"github.com/lumenlearn/certifex-backend/pkg/db"
	"github.com/lumenlearn/certifex-backend/pkg/logger"
	"github.com/lumenlearn/certifex-backend/pkg/metrics"
	"github.com/lumenlearn/certifex-backend/pkg/migrate"
	"github.com/lumenlearn/certifex-backend/pkg/redis"
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

	engineMetrics := metrics.NewEngineMetrics(prometheus.DefaultRegisterer)
	rosterRepo := roster.NewRepository(dbClient.DB())

	codegen, err := certificates.NewCodeGenerator(cfg.Issuance.CodeLength)
	if err != nil {
		logg.Error(context.Background(), "failed to create code generator", err)
		os.Exit(1)
	}

	certificateService, err := certificates.NewService(certificates.ServiceParams{
		Repo:             certificates.NewRepository(dbClient.DB()),
		Roster:           rosterRepo,
		Codegen:          codegen,
		Logger:           logg,
		Metrics:          engineMetrics,
		PublicBaseURL:    cfg.Verify.PublicBaseURL,
		MaxCodeAttempts:  cfg.Issuance.MaxCodeAttempts,
		BatchConcurrency: cfg.Issuance.BatchConcurrency,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create certificate service", err)
		os.Exit(1)
	}

	verificationService, err := verification.NewService(
		verification.NewRepository(dbClient.DB()),
		logg,
		engineMetrics,
		cfg.Verify.PublicBaseURL,
	)
	if err != nil {
		logg.Error(context.Background(), "failed to create verification service", err)
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
		Handler: routes.NewRouter(
			cfg,
			logg,
			dbClient,
			redisClient,
			certificateService,
			verificationService,
			rosterRepo,
		),
	}

	shutdownCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	serveErr := make(chan error, 1)
	go func() {
		serveErr <- server.ListenAndServe()
	}()

	select {
	case err := <-serveErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logg.Error(ctx, "api server stopped unexpectedly", err)
			os.Exit(1)
		}
	case <-shutdownCtx.Done():
		logg.Info(ctx, "shutdown signal received, draining requests")
		drainCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()

		err := server.Shutdown(drainCtx)
		if serveRes := <-serveErr; serveRes != nil && !errors.Is(serveRes, http.ErrServerClosed) {
			err = multierr.Append(err, serveRes)
		}
		if err != nil {
			logg.Error(ctx, "api server shutdown with errors", err)
			os.Exit(1)
		}
		logg.Info(ctx, "api server stopped cleanly")
	}
}
