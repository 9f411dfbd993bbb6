// Package handlers provides the HTTP request handlers of the
// reconciliation service.
package handlers

import (
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/agentstation/dnmerge/internal/cmd/application"
	"github.com/agentstation/dnmerge/internal/server/cache"
	"github.com/agentstation/dnmerge/internal/server/events"
	"github.com/agentstation/dnmerge/internal/server/metrics"
	"github.com/agentstation/dnmerge/internal/server/sse"
	ws "github.com/agentstation/dnmerge/internal/server/websocket"
)

// Limits bound what a single request may do.
type Limits struct {
	// MaxUploadSize caps the request body of a reconcile upload.
	MaxUploadSize int64
	// MaxMemory is the part of a multipart form kept in memory.
	MaxMemory int64
	// PreviewRows caps the rows of a JSON report; zero uses the default.
	PreviewRows int
	// PathPrefix is prepended to generated download links.
	PathPrefix string
}

// Handlers provides access to all HTTP handlers.
type Handlers struct {
	app            application.Application
	results        *cache.Cache
	broker         *events.Broker
	wsHub          *ws.Hub
	sseBroadcaster *sse.Broadcaster
	metrics        *metrics.Metrics
	upgrader       websocket.Upgrader
	limits         Limits
	logger         *zerolog.Logger
}

// New creates a new Handlers instance.
func New(
	app application.Application,
	results *cache.Cache,
	broker *events.Broker,
	wsHub *ws.Hub,
	sseBroadcaster *sse.Broadcaster,
	m *metrics.Metrics,
	upgrader websocket.Upgrader,
	limits Limits,
	logger *zerolog.Logger,
) *Handlers {
	return &Handlers{
		app:            app,
		results:        results,
		broker:         broker,
		wsHub:          wsHub,
		sseBroadcaster: sseBroadcaster,
		metrics:        m,
		upgrader:       upgrader,
		limits:         limits,
		logger:         logger,
	}
}
