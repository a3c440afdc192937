package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"stockify/internal/cache"
	"stockify/internal/config"
	"stockify/internal/database"
	"stockify/internal/handlers"
	"stockify/internal/log"
	"stockify/internal/mailer"
	"stockify/internal/middleware"
	"stockify/internal/observability/metrics"
	"stockify/internal/repository"
	"stockify/internal/server"
	"stockify/internal/service"
	"stockify/internal/storage"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	logger := log.New(cfg.Environment, cfg.LogLevel)

	if cfg.Sentry.DSN != "" {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:              cfg.Sentry.DSN,
			Environment:      cfg.Environment,
			TracesSampleRate: cfg.Sentry.TracesSampleRate,
		}); err != nil {
			logger.Error().Err(err).Msg("sentry init failed")
		}
	}

	ctx := context.Background()

	dbPool, err := database.NewPostgresPool(ctx, cfg.Postgres)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect postgres")
	}
	if cfg.Postgres.AutoMigrate {
		if err := database.Migrate(ctx, dbPool); err != nil {
			logger.Fatal().Err(err).Msg("failed to migrate database")
		}
	}
	store := repository.NewStore(dbPool)

	redisClient, err := cache.NewRedisClient(ctx, cfg.Redis)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect redis")
	}

	checks := []handlers.HealthCheck{{Name: "database", Ping: store.Ping}}

	var limiter middleware.Limiter
	if redisClient != nil {
		limiter = middleware.NewRedisLimiter(redisClient, cfg.RateLimit.AuthRequests, cfg.RateLimit.AuthWindow)
		checks = append(checks, handlers.HealthCheck{
			Name: "cache",
			Ping: func(ctx context.Context) error { return redisClient.Ping(ctx).Err() },
		})
	} else {
		limiter = middleware.NewLocalLimiter(cfg.RateLimit.AuthRequests, cfg.RateLimit.AuthWindow)
		logger.Warn().Msg("redis not configured, using in-process rate limiter")
	}

	var objects service.ObjectStorage
	if cfg.Storage.Endpoint != "" {
		objectStore, err := storage.NewObjectStore(cfg.Storage)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to init object store")
		}
		if err := objectStore.EnsureBucket(ctx); err != nil {
			logger.Warn().Err(err).Msg("ensure bucket failed")
		}
		objects = objectStore
		checks = append(checks, handlers.HealthCheck{Name: "storage", Ping: objectStore.Ping})
	} else {
		logger.Warn().Msg("object storage not configured, image uploads disabled")
	}

	var sender mailer.Sender = mailer.NewLogSender(logger)
	if cfg.SMTP.Host != "" {
		sender = mailer.NewSMTPSender(cfg.SMTP)
	}

	m := metrics.New("stockify-api")
	handlerSet := handlers.NewHandlerSet(handlers.Dependencies{
		Config:  cfg,
		Log:     logger,
		Store:   store,
		Mailer:  sender,
		Uploads: service.NewUploadService(objects, cfg.Storage.MaxUploadBytes, logger),
		Metrics: m,
		Limiter: limiter,
		Checks:  checks,
	})
	httpServer := server.NewHTTPServer(cfg, logger, m, handlerSet)

	go func() {
		if err := httpServer.Start(); err != nil {
			logger.Fatal().Err(err).Msg("http server failed")
		}
	}()

	waitForShutdown(logger, httpServer, dbPool, redisClient)
}

func waitForShutdown(logger zerolog.Logger, srv *server.HTTPServer, db *pgxpool.Pool, redisClient *redis.Client) {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-ctx.Done()
	logger.Info().Msg("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("graceful shutdown failed")
	}

	db.Close()
	if redisClient != nil {
		if err := redisClient.Close(); err != nil {
			logger.Error().Err(err).Msg("redis close error")
		}
	}
	sentry.Flush(2 * time.Second)

	logger.Info().Msg("server exited cleanly")
}
