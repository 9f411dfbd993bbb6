package handlers

import (
	"net/http"

	"github.com/agentstation/dnmerge/internal/server/response"
)

// HandleHealth handles GET /health (liveness probe).
func (h *Handlers) HandleHealth(w http.ResponseWriter, _ *http.Request) {
	response.OK(w, map[string]any{
		"status":  "healthy",
		"service": "dnmerge",
		"version": h.app.Version(),
	})
}

// HandleReady handles GET /api/v1/ready (readiness probe). The service is
// ready once a reconciliation client can be built from its configuration.
func (h *Handlers) HandleReady(w http.ResponseWriter, _ *http.Request) {
	if _, err := h.app.Client(); err != nil {
		h.logger.Warn().Err(err).Msg("Reconciliation client not available")
		response.ServiceUnavailable(w, "Reconciliation client not available")
		return
	}

	response.OK(w, map[string]any{
		"status":            "ready",
		"results":           h.results.GetStats(),
		"events":            h.broker.GetStats(),
		"websocket_clients": h.wsHub.ClientCount(),
		"sse_clients":       h.sseBroadcaster.ClientCount(),
	})
}
