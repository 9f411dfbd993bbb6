package events

// Subscriber is an interface for event consumers. Transports implement it
// to receive the broker's event stream.
type Subscriber interface {
	// Send delivers an event to the subscriber.
	// Implementations should not block.
	Send(Event) error

	// Close cleanly shuts down the subscriber.
	Close() error
}
