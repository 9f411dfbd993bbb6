package handlers

import (
	"net/http"

	"github.com/google/uuid"

	ws "github.com/agentstation/dnmerge/internal/server/websocket"
)

// HandleWebSocket handles GET /api/v1/runs/ws, a WebSocket stream of run
// events.
func (h *Handlers) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn().Err(err).Msg("WebSocket upgrade failed")
		return
	}

	client := ws.NewClient(uuid.NewString(), h.wsHub, conn)
	h.wsHub.Register(client)

	go client.WritePump()
	go client.ReadPump()
}

// HandleSSE handles GET /api/v1/runs/stream, a Server-Sent Events stream
// of run events.
func (h *Handlers) HandleSSE(w http.ResponseWriter, r *http.Request) {
	h.sseBroadcaster.ServeHTTP(w, r)
}
