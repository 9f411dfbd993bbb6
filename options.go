package dnmerge

import (
	"github.com/agentstation/dnmerge/internal/export"
	"github.com/agentstation/dnmerge/internal/ingest"
	"github.com/agentstation/dnmerge/pkg/completeness"
	"github.com/agentstation/dnmerge/pkg/errors"
	"github.com/agentstation/dnmerge/pkg/reconciler"
	"github.com/agentstation/dnmerge/pkg/report"
	"github.com/agentstation/dnmerge/pkg/schema"
)

// Option is a function that configures a Client.
type Option func(*options) error

// options holds the configuration of a Client.
type options struct {
	schema       *schema.Config
	labels       report.Labels
	rules        []report.Rule
	strategy     reconciler.Strategy
	provenance   bool
	placeholders []string
	loader       []ingest.Option
	exporter     []export.Option
}

// defaults returns options with the built-in delivery schema and Czech labels.
func defaults() *options {
	return &options{
		schema:     schema.Default(),
		labels:     report.DefaultLabels(),
		provenance: true,
	}
}

// apply applies the given options.
func (o *options) apply(opts ...Option) (*options, error) {
	for _, opt := range opts {
		if err := opt(o); err != nil {
			return nil, err
		}
	}
	return o, nil
}

// WithSchema sets the canonical schema: key column, aliases, column mapping
// and required fields.
func WithSchema(cfg *schema.Config) Option {
	return func(o *options) error {
		if cfg == nil {
			return &errors.ValidationError{Field: "schema", Message: "cannot be nil"}
		}
		if err := cfg.Validate(); err != nil {
			return err
		}
		o.schema = cfg
		return nil
	}
}

// WithSchemaFile loads the canonical schema from a YAML file.
func WithSchemaFile(path string) Option {
	return func(o *options) error {
		cfg, err := schema.Load(path)
		if err != nil {
			return err
		}
		o.schema = cfg
		return nil
	}
}

// WithLabels sets the status and verdict texts of the report.
func WithLabels(labels report.Labels) Option {
	return func(o *options) error {
		if err := labels.Validate(); err != nil {
			return err
		}
		o.labels = labels
		return nil
	}
}

// WithRules replaces the default highlight rules.
func WithRules(rules ...report.Rule) Option {
	return func(o *options) error {
		o.rules = rules
		return nil
	}
}

// WithStrategy sets how values of rows found in both datasets are combined.
func WithStrategy(strategy reconciler.Strategy) Option {
	return func(o *options) error {
		if strategy == nil {
			return &errors.ValidationError{Field: "strategy", Message: "cannot be nil"}
		}
		o.strategy = strategy
		return nil
	}
}

// WithProvenance enables or disables backfill tracking.
func WithProvenance(enabled bool) Option {
	return func(o *options) error {
		o.provenance = enabled
		return nil
	}
}

// WithPlaceholders sets the text values treated as missing data.
func WithPlaceholders(values ...string) Option {
	return func(o *options) error {
		o.placeholders = values
		return nil
	}
}

// WithLoaderOptions configures how input files are read.
func WithLoaderOptions(opts ...ingest.Option) Option {
	return func(o *options) error {
		o.loader = append(o.loader, opts...)
		return nil
	}
}

// WithExportOptions configures the workbook written by Outcome.WriteXLSX.
func WithExportOptions(opts ...export.Option) Option {
	return func(o *options) error {
		o.exporter = append(o.exporter, opts...)
		return nil
	}
}

func (o *options) reconcilerOptions() []reconciler.Option {
	opts := []reconciler.Option{
		reconciler.WithKeyColumn(o.schema.KeyColumn),
		reconciler.WithProvenance(o.provenance),
	}
	if o.strategy != nil {
		opts = append(opts, reconciler.WithStrategy(o.strategy))
	}
	return opts
}

func (o *options) checkerOptions() []completeness.Option {
	if o.placeholders == nil {
		return nil
	}
	return []completeness.Option{completeness.WithPlaceholders(o.placeholders...)}
}
