package logging

import (
	"context"

	"github.com/rs/zerolog"
)

type contextKey int

const (
	loggerKey contextKey = iota
	requestIDKey
)

// WithLogger stores logger in ctx. A nil logger stores the default logger.
func WithLogger(ctx context.Context, logger *zerolog.Logger) context.Context {
	if logger == nil {
		logger = Default()
	}
	return context.WithValue(ctx, loggerKey, logger)
}

// FromContext returns the logger stored in ctx, or the default logger.
func FromContext(ctx context.Context) *zerolog.Logger {
	if ctx == nil {
		return Default()
	}
	if logger, ok := ctx.Value(loggerKey).(*zerolog.Logger); ok && logger != nil {
		return logger
	}
	return Default()
}

// with derives a child logger from the one in ctx.
func with(ctx context.Context, fields func(zerolog.Context) zerolog.Context) context.Context {
	logger := fields(FromContext(ctx).With()).Logger()
	return WithLogger(ctx, &logger)
}

// WithRequestID tags ctx and its logger with an HTTP request ID.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	ctx = context.WithValue(ctx, requestIDKey, requestID)
	return with(ctx, func(c zerolog.Context) zerolog.Context {
		return c.Str("request_id", requestID)
	})
}

// RequestID returns the request ID stored in ctx, if any.
func RequestID(ctx context.Context) string {
	if id, ok := ctx.Value(requestIDKey).(string); ok {
		return id
	}
	return ""
}

// WithRunID adds the reconciliation run ID to the logger.
func WithRunID(ctx context.Context, runID string) context.Context {
	return with(ctx, func(c zerolog.Context) zerolog.Context {
		return c.Str("run_id", runID)
	})
}

// WithDataset adds the dataset role (primary or secondary) to the logger.
func WithDataset(ctx context.Context, dataset string) context.Context {
	return with(ctx, func(c zerolog.Context) zerolog.Context {
		return c.Str("dataset", dataset)
	})
}

// WithStage adds the run stage to the logger.
func WithStage(ctx context.Context, stage string) context.Context {
	return with(ctx, func(c zerolog.Context) zerolog.Context {
		return c.Str("stage", stage)
	})
}

// WithError adds err to the logger. A nil err leaves ctx unchanged.
func WithError(ctx context.Context, err error) context.Context {
	if err == nil {
		return ctx
	}
	return with(ctx, func(c zerolog.Context) zerolog.Context {
		return c.Err(err)
	})
}
