// Package app provides the application context and dependency management
// for the dnmerge CLI. It centralizes configuration, logging, and the
// reconciliation client shared by all commands.
package app

import (
	"context"
	"sync"

	"github.com/rs/zerolog"

	"github.com/agentstation/dnmerge"
	"github.com/agentstation/dnmerge/internal/cmd/application"
	"github.com/agentstation/dnmerge/internal/ingest"
	"github.com/agentstation/dnmerge/pkg/errors"
	"github.com/agentstation/dnmerge/pkg/logging"
)

var _ application.Application = (*App)(nil)

// App represents the dnmerge application with all its dependencies.
type App struct {
	// Version information
	version string
	commit  string
	date    string
	builtBy string

	config *Config
	logger *zerolog.Logger

	// Client instance (lazy-initialized, singleton)
	mu     sync.RWMutex
	client dnmerge.Client
}

// New creates a new App instance with the given version information.
// The app is initialized with configuration from the default locations;
// --config is applied once flags are parsed.
func New(version, commit, date, builtBy string, opts ...Option) (*App, error) {
	app := &App{
		version: version,
		commit:  commit,
		date:    date,
		builtBy: builtBy,
	}

	config, err := LoadConfig("")
	if err != nil {
		return nil, err
	}
	app.config = config
	app.setLogger(NewLogger(config))

	for _, opt := range opts {
		if err := opt(app); err != nil {
			return nil, err
		}
	}

	return app, nil
}

// Version returns the version information.
func (a *App) Version() string {
	return a.version
}

// Commit returns the git commit hash.
func (a *App) Commit() string {
	return a.commit
}

// Date returns the build date.
func (a *App) Date() string {
	return a.date
}

// BuiltBy returns the build system identifier.
func (a *App) BuiltBy() string {
	return a.builtBy
}

// Config returns the application configuration.
func (a *App) Config() *Config {
	return a.config
}

// Logger returns the application logger.
func (a *App) Logger() *zerolog.Logger {
	return a.logger
}

// OutputFormat returns the configured output format.
func (a *App) OutputFormat() string {
	return a.config.Format
}

// Client returns the reconciliation client. Without options it returns the
// shared instance built from the configuration, creating it on first use.
// With options it builds a new client on top of the configured options.
func (a *App) Client(opts ...dnmerge.Option) (dnmerge.Client, error) {
	if len(opts) > 0 {
		base, err := a.clientOptions()
		if err != nil {
			return nil, err
		}
		c, err := dnmerge.New(append(base, opts...)...)
		if err != nil {
			return nil, errors.NewConfigError("client", "cannot create client with custom options", err)
		}
		return c, nil
	}

	a.mu.RLock()
	if a.client != nil {
		c := a.client
		a.mu.RUnlock()
		return c, nil
	}
	a.mu.RUnlock()

	a.mu.Lock()
	defer a.mu.Unlock()

	if a.client != nil {
		return a.client, nil
	}

	base, err := a.clientOptions()
	if err != nil {
		return nil, err
	}
	c, err := dnmerge.New(base...)
	if err != nil {
		return nil, errors.NewConfigError("client", "cannot create client", err)
	}

	a.client = c
	return c, nil
}

// Shutdown performs graceful shutdown of the application.
// Runs are bound to command contexts, so there is nothing to stop yet
// beyond releasing the client.
func (a *App) Shutdown(_ context.Context) error {
	a.mu.Lock()
	a.client = nil
	a.mu.Unlock()
	return nil
}

// reload replaces the configuration, for example after --config was parsed.
// A client created from the old configuration is discarded.
func (a *App) reload(config *Config) {
	a.mu.Lock()
	a.config = config
	a.client = nil
	a.mu.Unlock()
	a.setLogger(NewLogger(config))
}

func (a *App) setLogger(logger zerolog.Logger) {
	a.logger = &logger
	logging.SetDefault(logger)
}

// clientOptions constructs client options from the app configuration.
func (a *App) clientOptions() ([]dnmerge.Option, error) {
	if err := a.config.Validate(); err != nil {
		return nil, err
	}

	var opts []dnmerge.Option

	if a.config.SchemaFile != "" {
		opts = append(opts, dnmerge.WithSchemaFile(a.config.SchemaFile))
	}

	loader := []ingest.Option{ingest.WithLazyQuotes(a.config.LazyQuotes)}
	if r := a.config.CommaRune(); r != 0 {
		loader = append(loader, ingest.WithComma(r))
	}
	if a.config.Sheet != "" {
		loader = append(loader, ingest.WithSheet(a.config.Sheet))
	}
	opts = append(opts, dnmerge.WithLoaderOptions(loader...))

	opts = append(opts, dnmerge.WithProvenance(a.config.Provenance))
	if len(a.config.Placeholders) > 0 {
		opts = append(opts, dnmerge.WithPlaceholders(a.config.Placeholders...))
	}

	return opts, nil
}

// Option is a functional option for configuring the App.
type Option func(*App) error

// WithConfig sets a custom configuration.
func WithConfig(config *Config) Option {
	return func(a *App) error {
		if err := config.Validate(); err != nil {
			return err
		}
		a.config = config
		return nil
	}
}

// WithLogger sets a custom logger.
func WithLogger(logger *zerolog.Logger) Option {
	return func(a *App) error {
		a.logger = logger
		return nil
	}
}

// WithClient sets a custom client instance (useful for testing).
func WithClient(c dnmerge.Client) Option {
	return func(a *App) error {
		a.client = c
		return nil
	}
}
