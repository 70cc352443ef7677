package api

import (
	"context"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"flagstat/internal/session"
)

// ManagerInterface defines the session manager methods used by the API.
// This interface enables mocking for tests without standing up stores.
// Keep this minimal - only include methods the API layer actually calls.
type ManagerInterface interface {
	// Create registers a new session in NotStarted
	Create(params session.Params) *session.Session
	// Get returns a session by id (session.ErrSessionNotFound when unknown)
	Get(id string) (*session.Session, error)
	// Count returns the number of registered sessions
	Count() int
	// Snapshots returns snapshots of every registered session
	Snapshots() []session.Snapshot
}

// RosterSource loads a team's players for pre-populating a session's
// home roster. Roster membership itself is managed outside the engine.
type RosterSource interface {
	GetTeamRoster(ctx context.Context, teamID string) ([]session.Player, error)
}

// RouterConfig contains all dependencies needed to construct the HTTP router.
// This struct is designed for dependency injection and testability.
//
// Example usage in tests:
//
//	cfg := api.RouterConfig{
//	    Manager: mgr,
//	    RateLimitConfig: &api.RateLimitConfig{
//	        RequestsPerSecond: 1000, // High limit for tests
//	        Burst:             1000,
//	    },
//	}
//	router := api.NewRouter(cfg)
//	ts := httptest.NewServer(router)
type RouterConfig struct {
	// Manager is the session manager (required)
	Manager ManagerInterface

	// Rosters optionally pre-loads the home roster at session creation.
	// May be nil; the coach can always set rosters explicitly.
	Rosters RosterSource

	// RateLimiter is an optional pre-configured rate limiter.
	// If nil, a new one will be created using RateLimitConfig.
	RateLimiter *IPRateLimiter

	// RateLimitConfig is optional configuration for the rate limiter.
	// Only used if RateLimiter is nil. If both are nil, uses DefaultRateLimitConfig.
	RateLimitConfig *RateLimitConfig

	// CORSOrigins is an optional list of allowed CORS origins.
	// If nil, only localhost origins are allowed.
	CORSOrigins []string

	// DisableLogging disables the request logger middleware (useful for benchmarks).
	DisableLogging bool
}

// routerHandlers holds the handler dependencies for the router.
type routerHandlers struct {
	manager ManagerInterface
	rosters RosterSource
}

// NewRouter constructs the HTTP router with all middleware and routes.
//
// IMPORTANT: This function is PURE - it has no side effects:
//   - No goroutines are started
//   - No network listeners are opened
//   - No background workers are launched
//
// This makes it safe to use in tests with httptest.NewServer.
func NewRouter(cfg RouterConfig) *chi.Mux {
	r := chi.NewRouter()

	// Middleware - Order matters!
	if !cfg.DisableLogging {
		r.Use(middleware.Logger)
	}
	r.Use(middleware.Recoverer)
	r.Use(requestMetrics)

	// Rate limiting (BEFORE CORS to reject early and save CPU)
	rateLimiter := cfg.RateLimiter
	if rateLimiter == nil {
		rateLimitCfg := DefaultRateLimitConfig
		if cfg.RateLimitConfig != nil {
			rateLimitCfg = *cfg.RateLimitConfig
		}
		rateLimiter = NewIPRateLimiter(rateLimitCfg)
	}
	r.Use(rateLimiter.Middleware)

	// CORS configuration
	corsOrigins := cfg.CORSOrigins
	if corsOrigins == nil {
		corsOrigins = []string{
			"http://localhost:*",
			"http://127.0.0.1:*",
		}
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   corsOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: true,
	}))

	h := &routerHandlers{
		manager: cfg.Manager,
		rosters: cfg.Rosters,
	}

	// Prometheus scrape endpoint. Also served by the localhost debug
	// server for deployments that keep the public port scrape-free.
	r.Get("/metrics", promhttp.Handler().ServeHTTP)

	// API routes
	r.Route("/api", func(r chi.Router) {
		r.Get("/healthz", h.handleHealthz)

		r.Route("/sessions", func(r chi.Router) {
			r.Post("/", h.handleCreateSession)
			r.Get("/", h.handleListSessions)

			r.Route("/{sessionID}", func(r chi.Router) {
				r.Get("/", h.handleGetSession)

				// Lifecycle
				r.Post("/start", h.handleStart)
				r.Post("/pause", h.handlePause)
				r.Post("/resume", h.handleResume)
				r.Post("/end", h.handleEnd)

				// Stat tracking
				r.Post("/actions", h.handleRecordAction)
				r.Post("/undo", h.handleUndo)

				// Game control
				r.Post("/score", h.handleUpdateScore)
				r.Post("/quarter", h.handleAdjustQuarter)
				r.Post("/timeout", h.handleUseTimeout)

				// Roster
				r.Post("/select", h.handleSelectPlayer)
				r.Put("/roster", h.handleSetRoster)
			})
		})
	})

	return r
}
