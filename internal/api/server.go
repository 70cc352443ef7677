package api

import (
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
)

// Server is the HTTP API server with WebSocket support.
// It combines the HTTP router with a WebSocket hub for live scoreboards.
type Server struct {
	manager     ManagerInterface
	router      *chi.Mux
	wsHub       *WebSocketHub
	rateLimiter *IPRateLimiter
}

// ServerConfig carries the Server's dependencies.
type ServerConfig struct {
	Manager ManagerInterface

	// Rosters pre-populates new sessions' home rosters. May be nil.
	Rosters RosterSource

	// CORSOrigins lists additional allowed origins beyond localhost.
	CORSOrigins []string
}

// NewServer creates a new API server with default production configuration.
//
// IMPORTANT: Background workers do NOT start until Start() is called.
// This enables testing by allowing the server to be constructed without
// starting goroutines or opening network listeners.
//
// For testing HTTP endpoints without WebSocket support, use NewRouter() directly.
func NewServer(cfg ServerConfig) *Server {
	s := &Server{
		manager: cfg.Manager,
		wsHub:   NewWebSocketHub(),
	}

	// Create rate limiter (we track it for cleanup on Stop)
	s.rateLimiter = NewIPRateLimiter(DefaultRateLimitConfig)

	s.router = NewRouter(RouterConfig{
		Manager:     cfg.Manager,
		Rosters:     cfg.Rosters,
		RateLimiter: s.rateLimiter,
		CORSOrigins: cfg.CORSOrigins,
	})

	// WebSocket routes need the wsHub instance, so they can't be part of
	// the generic NewRouter factory.
	s.router.Get("/ws/{sessionID}", s.wsHub.HandleWebSocket(cfg.Manager))

	return s
}

// Hub exposes the WebSocket hub so callers can push snapshots on change.
func (s *Server) Hub() *WebSocketHub {
	return s.wsHub
}

// Start begins the HTTP server AND starts background workers.
// This is the ONLY method that starts goroutines or opens network listeners.
//
// Call this method only once. To stop the server, signal the process.
func (s *Server) Start(addr string) error {
	go s.wsHub.Run()
	s.wsHub.StartBroadcastLoop(s.manager)

	log.Printf("[API] server starting on %s", addr)

	return http.ListenAndServe(addr, s.router)
}

// Router returns the HTTP handler for use with httptest.
// Use this in integration tests instead of calling Start().
//
// Example:
//
//	server := api.NewServer(api.ServerConfig{Manager: mgr})
//	ts := httptest.NewServer(server.Router())
//	defer ts.Close()
//	resp, _ := http.Post(ts.URL+"/api/sessions", "application/json", body)
func (s *Server) Router() http.Handler {
	return s.router
}

// Stop performs graceful shutdown of background workers.
// Call this before process exit to ensure clean cleanup.
func (s *Server) Stop() {
	if s.rateLimiter != nil {
		s.rateLimiter.Stop()
	}
}
