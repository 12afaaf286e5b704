// Copyright (c) 2026 MotoFleet. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Command api is the entry point for the MotoFleet identity HTTP API server.
//
// # Startup Sequence
//
//  1. Initialize structured logger.
//  2. Load configuration from environment variables.
//  3. Connect to PostgreSQL (pgxpool).
//  4. Connect to Redis.
//  5. Run database migrations (idempotent).
//  6. Build token, hashing and mail services.
//  7. Wire HTTP handlers.
//  8. Start HTTP server with graceful shutdown.
//
// No business logic lives here. All wiring is explicit constructor injection.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/taibuivan/motofleet/internal/api"
	"github.com/taibuivan/motofleet/internal/platform/config"
	"github.com/taibuivan/motofleet/internal/platform/constants"
	"github.com/taibuivan/motofleet/internal/platform/metrics"
	"github.com/taibuivan/motofleet/internal/platform/migration"
	pgstore "github.com/taibuivan/motofleet/internal/platform/postgres"
	redisstore "github.com/taibuivan/motofleet/internal/platform/redis"
	"github.com/taibuivan/motofleet/internal/platform/sec"
	"github.com/taibuivan/motofleet/internal/users/account"
	"github.com/taibuivan/motofleet/internal/users/auth"
)

const appName = "motofleet"

func main() {
	// ── 1. Logger ──────────────────────────────────────────────────────────
	// Initialize first so that subsequent startup errors are structured JSON.
	log := newLogger(slog.LevelInfo)
	slog.SetDefault(log)

	log.Info("service_initializing")

	// ── 2. Configuration ──────────────────────────────────────────────────
	cfg, err := config.Load()
	must(log, err, "load configuration")

	if cfg.Debug {
		log = newLogger(slog.LevelDebug)
		slog.SetDefault(log)
		log.Debug("debug_logging_enabled")
	}

	log.Info("configuration_loaded",
		slog.String("environment", cfg.Environment),
		slog.String("port", cfg.ServerPort),
		slog.Bool("mail_enabled", cfg.MailEnabled()),
	)

	// Startup deadline so misconfiguration fails fast instead of hanging.
	startupCtx, startupCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer startupCancel()

	// ── 3. PostgreSQL ─────────────────────────────────────────────────────
	pool, err := pgstore.NewPool(startupCtx, cfg.Database.URL, log)
	must(log, err, "connect to postgres")
	defer func() {
		log.Info("closing postgres pool")
		pool.Close()
	}()

	// ── 4. Redis ──────────────────────────────────────────────────────────
	rdb, err := redisstore.NewClient(startupCtx, cfg.RedisURL, log)
	must(log, err, "connect to redis")
	defer func() {
		log.Info("closing redis client")
		if cerr := rdb.Close(); cerr != nil {
			log.Error("redis close error", slog.Any("error", cerr))
		}
	}()

	// ── 5. Migrations ─────────────────────────────────────────────────────
	must(log, migration.RunUp(cfg.Database.URL, cfg.Database.MigrationPath, log), "run migrations")

	// ── 6. Security & Mail ────────────────────────────────────────────────
	tokens, err := sec.NewTokenService(sec.TokenConfig{
		AccessSecret:  cfg.JWTAccessSecret,
		RefreshSecret: cfg.JWTRefreshSecret,
		Issuer:        cfg.JWTIssuer,
		Audience:      cfg.JWTAudience,
		AccessTTL:     cfg.AccessTokenTTL,
		RefreshTTL:    cfg.RefreshTokenTTL,
	})
	must(log, err, "initialize token service")

	hasher := sec.NewArgon2Hasher(sec.Argon2Params{
		MemoryKiB: cfg.Argon2MemoryKiB,
		Time:      cfg.Argon2Time,
		Threads:   cfg.Argon2Threads,
	}, cfg.HashConcurrency)

	var mailer auth.Mailer = auth.LogMailer{}
	if cfg.IsProduction() && !cfg.MailEnabled() {
		log.Warn("password_reset_mail_disabled", slog.String("hint", "set SMTP_HOST"))
	}
	if cfg.MailEnabled() {
		mailer = auth.NewSMTPMailer(auth.SMTPConfig{
			Host:     cfg.SMTPHost,
			Port:     cfg.SMTPPort,
			User:     cfg.SMTPUser,
			Password: cfg.SMTPPassword,
			From:     cfg.SMTPFrom,
		})
	}

	recorder := metrics.New()

	// ── 7. Domain Wiring ──────────────────────────────────────────────────
	userRepository := auth.NewUserRepository(pool)

	authService, err := auth.NewService(startupCtx, auth.Dependencies{
		Users:       userRepository,
		ResetTokens: auth.NewResetTokenRepository(rdb),
		Hasher:      hasher,
		Tokens:      tokens,
		Mailer:      mailer,
		Metrics:     recorder,
		ResetURL:    cfg.PasswordResetURL,
	})
	must(log, err, "initialize auth service")

	authHandler := auth.NewHandler(authService, auth.CookieConfig{
		TTL:    cfg.RefreshTokenTTL,
		Secure: !cfg.IsDevelopment(),
	})
	accountHandler := account.NewHandler(account.NewService(userRepository, hasher, log))

	health := api.NewHealthHandler(log,
		api.Check{Name: "postgres", Run: func(ctx context.Context) error { return pgstore.Ping(ctx, pool) }},
		api.Check{Name: "redis", Run: func(ctx context.Context) error { return redisstore.Ping(ctx, rdb) }},
	)

	// ── 8. HTTP Server ────────────────────────────────────────────────────
	server, err := api.NewServer(api.Options{
		Port:       cfg.ServerPort,
		CORS:       cfg,
		Verifier:   tokens,
		Identities: authService,
		Metrics:    recorder,
	}, log, api.Handlers{
		Health:  health,
		Auth:    authHandler,
		Account: accountHandler,
	})
	must(log, err, "build http server")

	// ── 9. Graceful Shutdown ──────────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGTERM, syscall.SIGINT)

	serverErr := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	// Block until OS signal or server error.
	select {
	case sig := <-quit:
		log.Info("shutdown signal received", slog.String("signal", sig.String()))
	case err := <-serverErr:
		log.Error("server startup error", slog.Any("error", err))
	}

	shutdownTimeout := constants.ShutdownTimeout
	log.Info("shutting down server", slog.Duration("timeout", shutdownTimeout))

	err = server.Shutdown(shutdownTimeout)

	// Reset mails accepted before shutdown still go out.
	authService.Wait()

	if err != nil {
		log.Error("shutdown error", slog.Any("error", err))
		os.Exit(1)
	}

	log.Info("server stopped cleanly")
}

func newLogger(level slog.Level) *slog.Logger {
	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level})
	return slog.New(handler).With(slog.String(constants.FieldApp, appName))
}

// must logs a structured fatal error and terminates the process if err is non-nil.
//
// It is limited to startup wiring. After startup, all errors are returned and
// handled explicitly.
func must(log *slog.Logger, err error, context string) {
	if err != nil {
		log.Error("startup failure",
			slog.String("context", context),
			slog.Any("error", err),
		)
		os.Exit(1)
	}
}
