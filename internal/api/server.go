// Copyright (c) 2026 MotoFleet. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package api wires together the HTTP router, middleware chain, and all
domain handlers into a runnable [http.Server].

Architecture:

  - This package is the topmost Presentation layer boundary.
  - It acts as the central composition root for the HTTP transport framework (chi router).
  - Only this package and cmd/api are allowed to import net/http server primitives.
*/
package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/taibuivan/motofleet/internal/platform/constants"
	"github.com/taibuivan/motofleet/internal/platform/metrics"
	"github.com/taibuivan/motofleet/internal/platform/middleware"
	"github.com/taibuivan/motofleet/internal/users/account"
	"github.com/taibuivan/motofleet/internal/users/auth"
)

// Infrastructure endpoint paths.
const (
	PathHealth  = "/health"
	PathReady   = "/ready"
	PathMetrics = "/metrics"
)

// # Server Definitions

// Server wraps the chi router and the [http.Server].
//
// It is constructed once in main.go with all dependencies injected.
type Server struct {
	httpServer *http.Server
	router     *chi.Mux
	log        *slog.Logger
}

// Options carries the non-handler settings of a [Server].
type Options struct {
	// Port is the TCP port the server binds to.
	Port string

	// CORS decides which origins receive CORS headers.
	CORS middleware.AppConfig

	// Verifier checks bearer access tokens.
	Verifier middleware.TokenVerifier

	// Identities resolves the subject of a verified token.
	Identities middleware.IdentityLookup

	// Metrics is optional. Nil disables instrumentation and /metrics.
	Metrics *metrics.Metrics
}

// # Handler Registry

// Handlers groups all domain-specific HTTP handler sets.
type Handlers struct {
	// Health serves the /health and /ready checks.
	Health *HealthHandler

	// Auth handles authentication routes.
	Auth *auth.Handler

	// Account handles administrative account management.
	Account *account.Handler
}

// PublicRoutes returns every (method, path) served without an access token.
func PublicRoutes(withMetrics bool) []middleware.Route {
	routes := []middleware.Route{
		{Method: http.MethodGet, Path: PathHealth},
		{Method: http.MethodGet, Path: PathReady},
	}
	if withMetrics {
		routes = append(routes, middleware.Route{Method: http.MethodGet, Path: PathMetrics})
	}
	return append(routes, auth.PublicRoutes()...)
}

// # Server Initialization

/*
NewServer constructs the chi router with the full middleware chain and
registers all route groups.

Description: The public allowlist is checked against the registered route
tree. An allowlisted route that no handler serves is a startup error.

Parameters:
  - opts: Options
  - log: *slog.Logger
  - h: Handlers

Returns:
  - *Server: Ready to serve
  - error: Missing handlers or allowlist drift
*/
func NewServer(opts Options, log *slog.Logger, h Handlers) (*Server, error) {
	if h.Health == nil || h.Auth == nil || h.Account == nil {
		return nil, errors.New("api: health, auth and account handlers are required")
	}
	if opts.Verifier == nil || opts.Identities == nil {
		return nil, errors.New("api: token verifier and identity lookup are required")
	}
	if opts.CORS == nil {
		return nil, errors.New("api: CORS settings are required")
	}

	public := middleware.NewPublicRoutes(PublicRoutes(opts.Metrics != nil)...)
	r := chi.NewRouter()

	// # Middleware Chain
	// Global middleware applied in order of execution.
	r.Use(middleware.RequestID())
	r.Use(middleware.StructuredLogger(log))
	r.Use(middleware.PanicRecovery(log))
	r.Use(middleware.CORS(opts.CORS))
	r.Use(middleware.Instrument(opts.Metrics))
	r.Use(chimw.Timeout(constants.GlobalRequestTimeout))
	r.Use(middleware.Authenticate(middleware.AuthenticateConfig{
		Verifier:   opts.Verifier,
		Identities: opts.Identities,
		Public:     public,
		Metrics:    opts.Metrics,
	}))

	// # Infrastructure Endpoints
	r.Get(PathHealth, h.Health.Liveness)
	r.Get(PathReady, h.Health.Readiness)
	if opts.Metrics != nil {
		r.Method(http.MethodGet, PathMetrics, opts.Metrics.Handler())
	}

	// # Application API
	r.Mount(auth.BasePath, h.Auth.Routes())
	r.Mount(account.BasePath, h.Account.Routes())

	if err := verifyPublicRoutes(r, public); err != nil {
		return nil, err
	}

	return &Server{
		router: r,
		log:    log,
		httpServer: &http.Server{
			Addr:              ":" + opts.Port,
			Handler:           r,
			ReadTimeout:       constants.DefaultReadTimeout,
			WriteTimeout:      constants.DefaultWriteTimeout,
			IdleTimeout:       constants.DefaultIdleTimeout,
			ReadHeaderTimeout: constants.DefaultReadHeaderTimeout,
		},
	}, nil
}

// verifyPublicRoutes fails when an allowlisted route is not registered.
func verifyPublicRoutes(router chi.Routes, public middleware.PublicRoutes) error {
	registered := make(map[middleware.Route]struct{})
	err := chi.Walk(router, func(method, route string, _ http.Handler, _ ...func(http.Handler) http.Handler) error {
		path := route
		if len(path) > 1 {
			path = strings.TrimSuffix(path, "/")
		}
		registered[middleware.Route{Method: method, Path: path}] = struct{}{}
		return nil
	})
	if err != nil {
		return fmt.Errorf("api: walk routes: %w", err)
	}

	var missing []string
	for _, route := range public.Routes() {
		if _, ok := registered[route]; !ok {
			missing = append(missing, route.String())
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("api: public routes without a handler: %s", strings.Join(missing, ", "))
	}
	return nil
}

// # Server Lifecycle

// Handler exposes the router, mainly for in-process tests.
func (s *Server) Handler() http.Handler { return s.router }

// ListenAndServe starts the HTTP server.
//
// It blocks until the server is closed or an error occurs.
func (s *Server) ListenAndServe() error {
	s.log.Info("server starting", slog.String("addr", s.httpServer.Addr))
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully stops the server, waiting for in-flight requests.
func (s *Server) Shutdown(timeout time.Duration) error {
	context, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	return s.httpServer.Shutdown(context)
}
