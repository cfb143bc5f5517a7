package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/WEAV04/willy/internal/auth"
	"github.com/WEAV04/willy/internal/orchestrator"
	"github.com/WEAV04/willy/internal/ratelimit"
	"github.com/WEAV04/willy/internal/storage"
)

// Server is the Willy HTTP server.
type Server struct {
	httpServer *http.Server
	handler    http.Handler
	handlers   *Handlers
	logger     *slog.Logger
}

// Handler returns the root HTTP handler for use in tests.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// ServerConfig holds all dependencies and configuration for creating a Server.
// Optional fields (nil-safe): DB, Limiter, Broker.
type ServerConfig struct {
	// Required dependencies.
	JWTMgr       *auth.JWTManager
	Orchestrator *orchestrator.Orchestrator
	Logger       *slog.Logger

	// Optional dependencies (nil = disabled).
	DB      *storage.DB
	Limiter ratelimit.Limiter
	Broker  *Broker

	// Service credentials: service_id -> Argon2id hash.
	ServiceKeys map[string]string

	// HTTP server settings.
	Port                int
	ReadTimeout         time.Duration
	WriteTimeout        time.Duration
	Version             string
	MaxRequestBodyBytes int64
}

// New creates a new HTTP server with all routes configured.
func New(cfg ServerConfig) *Server {
	h := NewHandlers(HandlersDeps{
		DB:                  cfg.DB,
		JWTMgr:              cfg.JWTMgr,
		Orchestrator:        cfg.Orchestrator,
		Broker:              cfg.Broker,
		ServiceKeys:         cfg.ServiceKeys,
		Logger:              cfg.Logger,
		Version:             cfg.Version,
		MaxRequestBodyBytes: cfg.MaxRequestBodyBytes,
	})

	// Request ID extractor for rate limit error responses.
	reqIDFunc := func(r *http.Request) string {
		return RequestIDFromContext(r.Context())
	}

	// Conversation traffic is limited per calling service; the token
	// endpoint per client IP.
	serviceRL := ratelimit.Middleware(cfg.Limiter, serviceKeyFunc, reqIDFunc)
	authRL := ratelimit.Middleware(cfg.Limiter, ratelimit.IPKeyFunc, reqIDFunc)

	mux := http.NewServeMux()

	// Auth endpoint (no auth required, rate limited by IP).
	mux.Handle("POST /auth/token", authRL(http.HandlerFunc(h.HandleAuthToken)))

	// Conversation turns.
	mux.Handle("POST /v1/messages", serviceRL(http.HandlerFunc(h.HandleMessage)))

	// Supervision lifecycle.
	mux.Handle("POST /v1/supervision/{subject_id}/start", serviceRL(http.HandlerFunc(h.HandleSupervisionStart)))
	mux.Handle("POST /v1/supervision/{subject_id}/stop", serviceRL(http.HandlerFunc(h.HandleSupervisionStop)))

	// Mode and history queries.
	mux.Handle("GET /v1/subjects/{subject_id}/mode", serviceRL(http.HandlerFunc(h.HandleModeStatus)))
	mux.Handle("GET /v1/subjects/{subject_id}/events", serviceRL(http.HandlerFunc(h.HandleListEvents)))
	mux.Handle("GET /v1/subjects/{subject_id}/alerts", serviceRL(http.HandlerFunc(h.HandleListAlerts)))

	// Consented critical-event writes.
	mux.Handle("POST /v1/events", serviceRL(http.HandlerFunc(h.HandleCreateEvent)))

	// Alert stream (no rate limit: long-lived connection).
	mux.Handle("GET /v1/alerts/subscribe", http.HandlerFunc(h.HandleAlertSubscribe))

	// Health (no auth, no rate limit).
	mux.HandleFunc("GET /health", h.HandleHealth)

	// Middleware chain (outermost executes first):
	// request ID -> security headers -> tracing -> logging -> auth -> recovery -> handler.
	var handler http.Handler = mux
	handler = recoveryMiddleware(cfg.Logger, handler)
	handler = authMiddleware(cfg.JWTMgr, handler)
	handler = loggingMiddleware(cfg.Logger, handler)
	handler = tracingMiddleware(handler)
	handler = securityHeadersMiddleware(handler)
	handler = requestIDMiddleware(handler)

	return &Server{
		httpServer: &http.Server{
			Addr:         fmt.Sprintf(":%d", cfg.Port),
			Handler:      handler,
			ReadTimeout:  cfg.ReadTimeout,
			WriteTimeout: cfg.WriteTimeout,
		},
		handler:  handler,
		handlers: h,
		logger:   cfg.Logger,
	}
}

// serviceKeyFunc extracts the calling service's ID from the request context
// for rate limiting. Unauthenticated requests fall through to the auth
// middleware's rejection, so skipping them here is safe.
func serviceKeyFunc(r *http.Request) string {
	claims := ClaimsFromContext(r.Context())
	if claims == nil {
		return ""
	}
	return "service:" + claims.ServiceID
}

// Start begins serving HTTP requests.
func (s *Server) Start() error {
	s.logger.Info("http server starting", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully shuts down the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("http server shutting down")
	return s.httpServer.Shutdown(ctx)
}
