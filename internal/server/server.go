package server

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/hongminglow/usermanager-be/internal/auth"
	"github.com/hongminglow/usermanager-be/internal/config"
	"github.com/hongminglow/usermanager-be/internal/directory"
	"github.com/hongminglow/usermanager-be/internal/http/handlers"
	"github.com/hongminglow/usermanager-be/internal/middleware"
	"github.com/hongminglow/usermanager-be/internal/storage"
)

// Server wraps an http.Server with configured routes.
type Server struct {
	inner *http.Server
}

// New wires up middleware, routes, and returns a ready server.
func New(cfg config.Config, store storage.IdentityStore, log *slog.Logger) *Server {
	httpServer := &http.Server{
		Addr:              cfg.HTTPAddress(),
		Handler:           NewHandler(cfg, store, log),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       120 * time.Second,
		ErrorLog:          slog.NewLogLogger(log.Handler(), slog.LevelError),
	}

	return &Server{inner: httpServer}
}

// NewHandler builds the full middleware chain and route table.
func NewHandler(cfg config.Config, store storage.IdentityStore, log *slog.Logger) http.Handler {
	tokens := auth.NewTokenManager(cfg.JWTSecret, cfg.JWTIssuer, cfg.JWTAudience, cfg.JWTTTL)
	dir := directory.NewService(store, tokens, log)

	guard := middleware.Guard(middleware.Open)
	if cfg.RequireAuth {
		guard = middleware.RequireBearer(tokens, log)
	}

	mux := http.NewServeMux()
	handlers.NewHealthHandler(time.Now()).Register(mux)
	handlers.NewAuthHandler(dir, log).Register(mux)
	handlers.NewUserHandler(dir, log).Register(mux, guard)
	mux.Handle("GET /metrics", promhttp.Handler())

	var handler http.Handler = middleware.Metrics(mux)
	handler = middleware.Recover(log, handler)
	handler = middleware.Logging(log, handler)
	handler = middleware.RequestID(handler)
	return middleware.CORS(cfg.CORSOrigins, handler)
}

// Start begins serving HTTP traffic.
func (s *Server) Start() error {
	return s.inner.ListenAndServe()
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.inner.Shutdown(ctx)
}
