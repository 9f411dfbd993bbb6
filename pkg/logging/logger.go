// Package logging provides structured logging for dnmerge using zerolog.
// Console output is used when stderr is a terminal, JSON otherwise.
//
// Run code takes its logger from the context, so every line carries the
// run ID and, where known, the dataset and stage:
//
//	ctx = logging.WithRunID(ctx, runID)
//	ctx = logging.WithStage(ctx, "reconcile")
//	logging.FromContext(ctx).Info().Int("rows", n).Msg("Reconciliation completed")
package logging

import (
	"io"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

var defaultLogger = NewLoggerFromConfig(ConfigFromEnv())

// Default returns the process-wide logger.
func Default() *zerolog.Logger {
	return &defaultLogger
}

// SetDefault replaces the process-wide logger, including zerolog's global one.
func SetDefault(logger zerolog.Logger) {
	defaultLogger = logger
	log.Logger = logger
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
