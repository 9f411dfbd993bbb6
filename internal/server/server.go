// Package server provides the HTTP service of dnmerge: file uploads are
// reconciled into a comparison workbook, results stay downloadable for a
// while, and run events are streamed over WebSocket and SSE.
package server

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/agentstation/dnmerge"
	"github.com/agentstation/dnmerge/internal/cmd/application"
	"github.com/agentstation/dnmerge/internal/server/cache"
	"github.com/agentstation/dnmerge/internal/server/events"
	"github.com/agentstation/dnmerge/internal/server/metrics"
	"github.com/agentstation/dnmerge/internal/server/response"
	"github.com/agentstation/dnmerge/internal/server/sse"
	ws "github.com/agentstation/dnmerge/internal/server/websocket"
)

// Server holds the HTTP server state and dependencies.
type Server struct {
	app            application.Application
	results        *cache.Cache
	broker         *events.Broker
	wsHub          *ws.Hub
	sseBroadcaster *sse.Broadcaster
	metrics        *metrics.Metrics
	upgrader       websocket.Upgrader
	logger         *zerolog.Logger
	config         Config
	ctx            context.Context
	cancel         context.CancelFunc
	wg             sync.WaitGroup
	startTime      time.Time
}

// New creates a server and connects the application's client hooks to the
// event broker.
func New(app application.Application, cfg Config) (*Server, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	logger := app.Logger()

	broker := events.NewBroker(logger)
	wsHub := ws.NewHub(logger)
	sseBroadcaster := sse.NewBroadcaster(logger)
	broker.Subscribe(wsHub)
	broker.Subscribe(sseBroadcaster)

	results := cache.New(cfg.ResultTTL, cfg.ResultTTL/2)
	ctx, cancel := context.WithCancel(context.Background())

	s := &Server{
		app:            app,
		results:        results,
		broker:         broker,
		wsHub:          wsHub,
		sseBroadcaster: sseBroadcaster,
		metrics:        metrics.New(func() float64 { return float64(results.ItemCount()) }),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     checkOrigin(cfg),
		},
		logger:    logger,
		config:    cfg,
		ctx:       ctx,
		cancel:    cancel,
		startTime: time.Now(),
	}

	if err := s.connectHooks(); err != nil {
		cancel()
		return nil, err
	}

	logger.Debug().
		Str("addr", cfg.Addr()).
		Dur("result_ttl", cfg.ResultTTL).
		Msg("Server instance created")
	return s, nil
}

// connectHooks publishes run outcomes of the default client to the broker.
func (s *Server) connectHooks() error {
	client, err := s.app.Client()
	if err != nil {
		return err
	}

	client.OnRunCompleted(func(o *dnmerge.Outcome) {
		s.broker.Publish(events.RunCompleted, events.RunCompletedData{
			RunID:    o.RunID,
			Summary:  o.Summary(),
			Warnings: len(o.Result.Warnings),
		})
	})

	client.OnRunFailed(func(runID string, err error) {
		_, code := response.Classify(err)
		data := events.RunFailedData{RunID: runID, Code: code, Message: "run failed"}
		if code != response.CodeInternal {
			data.Message = err.Error()
		}
		s.broker.Publish(events.RunFailed, data)
	})

	s.logger.Debug().Msg("Client hooks connected to event broker")
	return nil
}

// checkOrigin allows WebSocket upgrades from the configured CORS origins,
// or from anywhere when CORS is unrestricted.
func checkOrigin(cfg Config) func(*http.Request) bool {
	if !cfg.CORSEnabled || len(cfg.CORSOrigins) == 0 {
		return func(*http.Request) bool { return true }
	}
	allowed := make(map[string]bool, len(cfg.CORSOrigins))
	for _, o := range cfg.CORSOrigins {
		allowed[o] = true
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		return origin == "" || allowed["*"] || allowed[origin]
	}
}

// Start starts background services (broker, WebSocket hub, SSE broadcaster).
func (s *Server) Start() {
	for _, run := range []func(context.Context){s.broker.Run, s.wsHub.Run, s.sseBroadcaster.Run} {
		s.wg.Add(1)
		go func(run func(context.Context)) {
			defer s.wg.Done()
			run(s.ctx)
		}(run)
	}
	s.logger.Debug().Msg("Background services started")
}

// Handler returns the configured http.Handler with middleware chain applied.
func (s *Server) Handler() http.Handler {
	return s.setupRouter()
}

// Shutdown stops background services and waits for them until ctx expires.
func (s *Server) Shutdown(ctx context.Context) error {
	s.cancel()

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		s.logger.Debug().Msg("Background services shut down")
		return nil
	case <-ctx.Done():
		s.logger.Warn().Msg("Background services shutdown timed out")
		return ctx.Err()
	}
}

// Results returns the result cache.
func (s *Server) Results() *cache.Cache {
	return s.results
}

// Broker returns the event broker.
func (s *Server) Broker() *events.Broker {
	return s.broker
}

// Config returns the validated configuration.
func (s *Server) Config() Config {
	return s.config
}

// Uptime returns the time since the server was created.
func (s *Server) Uptime() time.Duration {
	return time.Since(s.startTime)
}
