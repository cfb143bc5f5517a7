// Command willy runs the safety-mode orchestrator HTTP service.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/WEAV04/willy/internal/auth"
	"github.com/WEAV04/willy/internal/classifier"
	"github.com/WEAV04/willy/internal/config"
	"github.com/WEAV04/willy/internal/escalation"
	"github.com/WEAV04/willy/internal/mode"
	"github.com/WEAV04/willy/internal/orchestrator"
	"github.com/WEAV04/willy/internal/ratelimit"
	"github.com/WEAV04/willy/internal/respond"
	"github.com/WEAV04/willy/internal/server"
	"github.com/WEAV04/willy/internal/storage"
	"github.com/WEAV04/willy/internal/telemetry"
	"github.com/WEAV04/willy/migrations"
)

// version is set at build time via -ldflags.
var version = "dev"

func main() {
	os.Exit(run0())
}

func run0() int {
	level := slog.LevelInfo
	if os.Getenv("WILLY_LOG_LEVEL") == "debug" {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, logger); err != nil {
		slog.Error("fatal error", "error", err)
		return 1
	}
	return 0
}

func run(ctx context.Context, logger *slog.Logger) error {
	// Load .env file if present (non-fatal; production won't have one).
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	slog.Info("willy starting", "version", version, "port", cfg.Port)

	// Initialize OpenTelemetry.
	otelShutdown, err := telemetry.Init(ctx, cfg.OTELEndpoint, cfg.ServiceName, version, true)
	if err != nil {
		return fmt.Errorf("telemetry: %w", err)
	}
	defer func() { _ = otelShutdown(context.Background()) }()

	// Open the database and bring the schema up to date.
	db, err := storage.New(ctx, cfg.DatabasePath, logger)
	if err != nil {
		return fmt.Errorf("storage: %w", err)
	}
	defer db.Close()

	if err := db.RunMigrations(ctx, migrations.FS); err != nil {
		return fmt.Errorf("migrations: %w", err)
	}

	// Create JWT manager and service credentials.
	jwtMgr, err := auth.NewJWTManager(cfg.JWTPrivateKeyPath, cfg.JWTPublicKeyPath, cfg.JWTExpiration)
	if err != nil {
		return fmt.Errorf("auth: %w", err)
	}
	serviceKeys, err := cfg.ParseServiceKeys()
	if err != nil {
		return fmt.Errorf("service keys: %w", err)
	}
	if len(serviceKeys) == 0 {
		logger.Warn("no service keys configured, token endpoint will reject all credentials")
	}

	// Mode registry, alert fan-out and escalation manager.
	registry := mode.NewRegistry()
	defer func() { _ = registry.Close() }()

	broker := server.NewBroker(logger)
	sink := server.NewAlertSink(db, broker, logger)

	esc := escalation.NewManager(registry, sink, logger)
	defer func() { _ = esc.Close() }()

	// Seed for the phrasing pools; zero means non-deterministic.
	seed := cfg.ResponseSeed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	orch := orchestrator.New(orchestrator.Config{
		Classifier:    classifier.New(),
		Registry:      registry,
		Escalation:    esc,
		Responder:     respond.New(seed),
		Logger:        logger,
		AlertDeadline: cfg.AlertDeadline,
	})

	// Create rate limiter.
	var limiter ratelimit.Limiter
	if cfg.RateLimitPerSecond > 0 {
		limiter = ratelimit.NewMemoryLimiter(cfg.RateLimitPerSecond, cfg.RateLimitBurst)
		defer func() { _ = limiter.Close() }()
		logger.Info("rate limiting: memory (in-process token bucket)",
			"per_second", cfg.RateLimitPerSecond, "burst", cfg.RateLimitBurst)
	} else {
		limiter = ratelimit.NoopLimiter{}
		logger.Info("rate limiting: disabled")
	}

	srv := server.New(server.ServerConfig{
		JWTMgr:              jwtMgr,
		Orchestrator:        orch,
		Logger:              logger,
		DB:                  db,
		Limiter:             limiter,
		Broker:              broker,
		ServiceKeys:         serviceKeys,
		Port:                cfg.Port,
		ReadTimeout:         cfg.ReadTimeout,
		WriteTimeout:        cfg.WriteTimeout,
		Version:             version,
		MaxRequestBodyBytes: cfg.MaxRequestBodyBytes,
	})

	// Start HTTP server in background.
	errCh := make(chan error, 1)
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	// Wait for shutdown signal or server error.
	select {
	case <-ctx.Done():
	case err := <-errCh:
		return err
	}

	// Graceful shutdown: drain HTTP first so no new turns arrive, then stop
	// the escalation timers so nothing fires into a closing process.
	slog.Info("willy shutting down")

	httpCtx, httpCancel := context.WithTimeout(context.Background(), 10*time.Second)
	if err := srv.Shutdown(httpCtx); err != nil {
		slog.Error("http shutdown error", "error", err)
	}
	httpCancel()

	return nil
}
