// Package events fans reconciliation run events out to the real-time
// transports. A Broker receives events published from client hooks and
// delivers them to every registered Subscriber (WebSocket, SSE).
package events

import (
	"time"

	"github.com/agentstation/dnmerge/pkg/report"
)

// EventType represents the type of run event.
type EventType string

// Event types.
const (
	// Run events (from client hooks).
	RunCompleted EventType = "run.completed"
	RunFailed    EventType = "run.failed"

	// Client events (from transport layers).
	ClientConnected EventType = "client.connected"
)

// Event represents a run event with type, timestamp, and data.
type Event struct {
	Type      EventType `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	Data      any       `json:"data"`
}

// RunCompletedData is the payload of RunCompleted.
type RunCompletedData struct {
	RunID    string         `json:"runId"`
	Summary  report.Summary `json:"summary"`
	Warnings int            `json:"warnings"`
}

// RunFailedData is the payload of RunFailed.
type RunFailedData struct {
	RunID   string `json:"runId"`
	Code    string `json:"code"`
	Message string `json:"message"`
}
