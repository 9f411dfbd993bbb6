package dnmerge

import (
	"runtime/debug"
	"sync"

	"github.com/rs/zerolog"
)

// Hook function types for run events
type (
	// RunCompletedHook is called after a run succeeds
	RunCompletedHook func(outcome *Outcome)

	// RunFailedHook is called after a run fails
	RunFailedHook func(runID string, err error)
)

// Hooks provides access to event callback registration.
type Hooks interface {
	// OnRunCompleted registers a callback for successful runs
	OnRunCompleted(RunCompletedHook)

	// OnRunFailed registers a callback for failed runs
	OnRunFailed(RunFailedHook)
}

// hooks manages event callbacks for runs
type hooks struct {
	mu             sync.RWMutex
	onRunCompleted []RunCompletedHook
	onRunFailed    []RunFailedHook
}

// newHooks creates a new hooks instance
func newHooks() *hooks {
	return &hooks{}
}

// OnRunCompleted registers a callback for successful runs
func (h *hooks) OnRunCompleted(fn RunCompletedHook) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.onRunCompleted = append(h.onRunCompleted, fn)
}

// OnRunFailed registers a callback for failed runs
func (h *hooks) OnRunFailed(fn RunFailedHook) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.onRunFailed = append(h.onRunFailed, fn)
}

func (h *hooks) triggerRunCompleted(logger *zerolog.Logger, outcome *Outcome) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, hook := range h.onRunCompleted {
		callHook(logger, "run_completed", func() { hook(outcome) })
	}
}

func (h *hooks) triggerRunFailed(logger *zerolog.Logger, runID string, err error) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, hook := range h.onRunFailed {
		callHook(logger, "run_failed", func() { hook(runID, err) })
	}
}

// callHook runs fn and logs a panic instead of letting it reach the caller.
func callHook(logger *zerolog.Logger, event string, fn func()) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error().
				Str("hook", event).
				Interface("panic", r).
				Bytes("stack", debug.Stack()).
				Msg("Hook panicked")
		}
	}()
	fn()
}
