package server

import (
	"net/http"

	"github.com/agentstation/dnmerge/internal/server/handlers"
	"github.com/agentstation/dnmerge/internal/server/middleware"
	"github.com/agentstation/dnmerge/pkg/constants"
)

// setupRouter creates the HTTP handler with routes and middleware.
func (s *Server) setupRouter() http.Handler {
	mux := http.NewServeMux()

	h := handlers.New(
		s.app,
		s.results,
		s.broker,
		s.wsHub,
		s.sseBroadcaster,
		s.metrics,
		s.upgrader,
		handlers.Limits{
			MaxUploadSize: s.config.MaxUploadSize,
			MaxMemory:     min(s.config.MaxUploadSize, constants.MaxMultipartMemory),
			PreviewRows:   s.config.PreviewRows,
			PathPrefix:    s.config.PathPrefix,
		},
		s.logger,
	)

	s.registerRoutes(mux, h)
	return s.applyMiddleware(mux)
}

// registerRoutes registers all HTTP routes.
func (s *Server) registerRoutes(mux *http.ServeMux, h *handlers.Handlers) {
	prefix := s.config.PathPrefix

	mux.HandleFunc("/favicon.ico", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	// Probes
	mux.HandleFunc("GET /health", h.HandleHealth)
	if prefix != "" {
		mux.HandleFunc("GET "+prefix+"/health", h.HandleHealth)
	}
	mux.HandleFunc("GET "+prefix+"/ready", h.HandleReady)

	// Reconciliation
	mux.HandleFunc("POST "+prefix+"/reconcile", h.HandleReconcile)
	mux.HandleFunc("GET "+prefix+"/results/{id}", h.HandleResult)

	// Run events
	mux.HandleFunc("GET "+prefix+"/runs/ws", h.HandleWebSocket)
	mux.HandleFunc("GET "+prefix+"/runs/stream", h.HandleSSE)

	if s.config.MetricsEnabled {
		mux.Handle("GET /metrics", s.metrics.Handler())
	}
}

// applyMiddleware wraps handler with the middleware chain. Request IDs and
// recovery are outermost so every log line and error carries them.
func (s *Server) applyMiddleware(handler http.Handler) http.Handler {
	cfg := s.config
	chain := []func(http.Handler) http.Handler{
		middleware.RequestID(),
		middleware.Recovery(s.logger),
		middleware.Logger(s.logger),
	}

	if cfg.CORSEnabled {
		corsConfig := middleware.DefaultCORSConfig()
		if len(cfg.CORSOrigins) > 0 {
			corsConfig.AllowedOrigins = cfg.CORSOrigins
		}
		chain = append(chain, middleware.CORS(corsConfig))
	}

	if cfg.AuthEnabled {
		authConfig := middleware.DefaultAuthConfig(cfg.PathPrefix)
		authConfig.Enabled = true
		authConfig.HeaderName = cfg.AuthHeader
		authConfig.APIKey = cfg.APIKey
		chain = append(chain, middleware.Auth(authConfig, s.logger))
	}

	if cfg.RateLimit > 0 {
		chain = append(chain, middleware.RateLimit(middleware.NewRateLimiter(cfg.RateLimit, s.logger)))
	}

	return middleware.Chain(chain...)(handler)
}
