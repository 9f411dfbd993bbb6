package reconciler

import (
	"strings"

	"github.com/agentstation/dnmerge/pkg/errors"
	"github.com/agentstation/dnmerge/pkg/schema"
)

// Options configures a reconciler.
type options struct {
	keyColumn string
	strategy  Strategy
	tracking  bool
}

func defaultOptions() *options {
	return &options{
		keyColumn: schema.Default().KeyColumn,
		strategy:  NewPrimaryFirstStrategy(),
		tracking:  true,
	}
}

// Option is a function that configures a Reconciler.
type Option func(*options) error

func (options *options) apply(opts ...Option) (*options, error) {
	for _, opt := range opts {
		if err := opt(options); err != nil {
			return nil, err
		}
	}
	return options, nil
}

// newOptions returns reconciler options with default values.
func newOptions(opts ...Option) (*options, error) {
	return defaultOptions().apply(opts...)
}

// WithKeyColumn sets the canonical key column both datasets are joined on.
func WithKeyColumn(column string) Option {
	return func(o *options) error {
		if strings.TrimSpace(column) == "" {
			return &errors.ValidationError{
				Field:   "keyColumn",
				Message: "cannot be empty",
			}
		}
		o.keyColumn = column
		return nil
	}
}

// WithStrategy sets the conflict resolution strategy used for backfilling.
func WithStrategy(strategy Strategy) Option {
	return func(o *options) error {
		if strategy == nil {
			return &errors.ValidationError{
				Field:   "strategy",
				Message: "cannot be nil",
			}
		}
		o.strategy = strategy
		return nil
	}
}

// WithProvenance enables field-level backfill tracking.
func WithProvenance(enabled bool) Option {
	return func(o *options) error {
		o.tracking = enabled
		return nil
	}
}
