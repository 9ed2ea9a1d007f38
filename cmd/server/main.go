package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/lmittmann/tint"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/ErlanBelekov/secure-login/config"
	"github.com/ErlanBelekov/secure-login/internal/health"
	"github.com/ErlanBelekov/secure-login/internal/infrastructure/postgres"
	"github.com/ErlanBelekov/secure-login/internal/infrastructure/redisstore"
	ctxlog "github.com/ErlanBelekov/secure-login/internal/log"
	"github.com/ErlanBelekov/secure-login/internal/metrics"
	"github.com/ErlanBelekov/secure-login/internal/password"
	"github.com/ErlanBelekov/secure-login/internal/stats"
	httptransport "github.com/ErlanBelekov/secure-login/internal/transport/http"
	"github.com/ErlanBelekov/secure-login/internal/transport/http/handler"
	"github.com/ErlanBelekov/secure-login/internal/usecase"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	logger := newLogger(cfg.Env, cfg.SlogLevel())

	if cfg.Env != "local" {
		gin.SetMode(gin.ReleaseMode)
	}

	if cfg.MigrateOnStart {
		if err := postgres.Migrate(cfg.DatabaseURL); err != nil {
			log.Fatalf("migrate: %v", err)
		}
		logger.Info("migrations applied")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	pool, err := postgres.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		stop()
		log.Fatalf("db: %v", err)
	}
	defer pool.Close()

	rdb, err := redisstore.NewClient(ctx, cfg.RedisURL)
	if err != nil {
		stop()
		log.Fatalf("redis: %v", err)
	}
	defer rdb.Close()

	// Credentials
	credentialRepo := postgres.NewCredentialRepository(pool)
	hashPool := password.NewPool(password.NewArgon2idHasher(password.Params{
		Memory:      cfg.Argon2MemoryKiB,
		Iterations:  cfg.Argon2Iterations,
		Parallelism: cfg.Argon2Parallelism,
	}), cfg.HashWorkers)

	// Sessions
	sessions := usecase.NewSessionIssuer(redisstore.NewSessionStore(rdb), cfg.SessionTTL, logger)
	attempts := redisstore.NewAttemptCounter(rdb)

	authUsecase := usecase.NewAuthUsecase(credentialRepo, hashPool, sessions, attempts, usecase.AuthConfig{
		MinPasswordLength: cfg.MinPasswordLength,
		MaxFailures:       cfg.LoginMaxFailures,
		LockoutWindow:     cfg.LoginLockout,
	}, logger)
	authHandler := handler.NewAuthHandler(authUsecase, handler.CookieConfig{Secure: cfg.CookieSecure}, logger)

	metrics.Register()
	checker := health.NewChecker(map[string]health.Pinger{
		"postgres": pool,
		"redis":    redisstore.Pinger{Client: rdb},
	}, logger, prometheus.DefaultRegisterer)

	reporter, err := stats.NewReporter(credentialRepo, cfg.StatsSchedule, logger)
	if err != nil {
		stop()
		log.Fatalf("stats: %v", err)
	}

	srv := http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           httptransport.NewRouter(logger, authHandler, authUsecase),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	metricsSrv := metrics.NewServer(":"+cfg.MetricsPort, checker)

	go func() {
		logger.Info("server started", "port", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server: %v", err)
		}
	}()

	go func() {
		logger.Info("metrics server started", "port", cfg.MetricsPort)
		if err := metricsSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server", "error", err)
		}
	}()

	reporterDone := make(chan struct{})
	go func() {
		defer close(reporterDone)
		reporter.Start(ctx)
	}()

	<-ctx.Done()
	stop()
	logger.Info("shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown", "error", err)
	}
	if err := metricsSrv.Shutdown(shutdownCtx); err != nil {
		logger.Error("metrics server shutdown", "error", err)
	}
	<-reporterDone
}

func newLogger(env string, level slog.Level) *slog.Logger {
	var inner slog.Handler
	if env == "local" {
		inner = tint.NewHandler(os.Stdout, &tint.Options{
			Level:      level,
			TimeFormat: time.Kitchen,
		})
	} else {
		inner = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level: level,
		})
	}
	return slog.New(ctxlog.NewContextHandler(inner))
}
