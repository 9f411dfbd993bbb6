package events

import (
	"context"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
)

const (
	queueSize    = 256
	registerSize = 16
)

// Broker distributes events to subscribers. Publish and Subscribe never
// block on the event loop, so hooks can publish from inside a run.
type Broker struct {
	mu          sync.RWMutex
	subscribers []Subscriber

	events     chan Event
	register   chan Subscriber
	unregister chan Subscriber

	published atomic.Int64
	dropped   atomic.Int64

	logger *zerolog.Logger
}

// NewBroker creates a new event broker.
func NewBroker(logger *zerolog.Logger) *Broker {
	return &Broker{
		subscribers: make([]Subscriber, 0),
		events:      make(chan Event, queueSize),
		register:    make(chan Subscriber, registerSize),
		unregister:  make(chan Subscriber, registerSize),
		logger:      logger,
	}
}

// Run starts the event loop and blocks until ctx is cancelled, at which
// point every subscriber is closed.
func (b *Broker) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			b.mu.Lock()
			for _, sub := range b.subscribers {
				_ = sub.Close()
			}
			b.subscribers = nil
			b.mu.Unlock()
			b.logger.Debug().Msg("Event broker shut down")
			return

		case sub := <-b.register:
			b.mu.Lock()
			b.subscribers = append(b.subscribers, sub)
			total := len(b.subscribers)
			b.mu.Unlock()
			b.logger.Debug().Int("total_subscribers", total).Msg("Subscriber registered")

		case sub := <-b.unregister:
			b.mu.Lock()
			if i := slices.Index(b.subscribers, sub); i >= 0 {
				b.subscribers = slices.Delete(b.subscribers, i, i+1)
				_ = sub.Close()
			}
			total := len(b.subscribers)
			b.mu.Unlock()
			b.logger.Debug().Int("total_subscribers", total).Msg("Subscriber unregistered")

		case event := <-b.events:
			b.dispatch(event)
		}
	}
}

// dispatch sends event to a snapshot of the subscribers concurrently.
func (b *Broker) dispatch(event Event) {
	b.mu.RLock()
	subs := slices.Clone(b.subscribers)
	b.mu.RUnlock()

	for _, sub := range subs {
		go func(s Subscriber) {
			if err := s.Send(event); err != nil {
				b.logger.Warn().
					Err(err).
					Str("event_type", string(event.Type)).
					Msg("Failed to send event to subscriber")
			}
		}(sub)
	}

	b.logger.Debug().
		Str("event_type", string(event.Type)).
		Int("subscribers", len(subs)).
		Msg("Event dispatched")
}

// Publish queues an event for all subscribers. The event is dropped when
// the queue is full.
func (b *Broker) Publish(eventType EventType, data any) {
	event := Event{
		Type:      eventType,
		Timestamp: time.Now().UTC(),
		Data:      data,
	}

	select {
	case b.events <- event:
		b.published.Add(1)
	default:
		b.dropped.Add(1)
		b.logger.Warn().
			Str("event_type", string(eventType)).
			Msg("Event queue full, event dropped")
	}
}

// Subscribe registers a subscriber. It may be called before Run.
func (b *Broker) Subscribe(sub Subscriber) {
	b.register <- sub
}

// Unsubscribe removes and closes a subscriber.
func (b *Broker) Unsubscribe(sub Subscriber) {
	b.unregister <- sub
}

// SubscriberCount returns the current number of subscribers.
func (b *Broker) SubscriberCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subscribers)
}

// Stats reports how many events were queued and dropped.
type Stats struct {
	Subscribers int   `json:"subscribers"`
	Published   int64 `json:"published"`
	Dropped     int64 `json:"dropped"`
}

// GetStats returns current broker statistics.
func (b *Broker) GetStats() Stats {
	return Stats{
		Subscribers: b.SubscriberCount(),
		Published:   b.published.Load(),
		Dropped:     b.dropped.Load(),
	}
}
