// Package application defines what commands and the HTTP server need from
// the CLI application. Commands accept this interface rather than the
// concrete App so they can be tested with Mock.
package application

import (
	"github.com/rs/zerolog"

	"github.com/agentstation/dnmerge"
)

// Application provides the application interface that commands need.
//
// Thread Safety: All methods must be safe for concurrent access.
type Application interface {
	// Client returns the reconciliation client. Without options it returns
	// the default instance built from the configuration; with options it
	// builds a new one.
	Client(opts ...dnmerge.Option) (dnmerge.Client, error)

	// Logger returns the configured logger instance.
	Logger() *zerolog.Logger

	// OutputFormat returns the configured output format (table, json, yaml, ...).
	OutputFormat() string

	// Version returns the application version string.
	Version() string

	// Commit returns the git commit hash.
	Commit() string

	// Date returns the build date.
	Date() string

	// BuiltBy returns the build system identifier.
	BuiltBy() string
}
