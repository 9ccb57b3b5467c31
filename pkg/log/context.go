package log

import (
	"context"

	"github.com/rs/zerolog"
)

type loggerKey struct{}

// IntoContext attaches a logger to the context. The HTTP middleware
// stores a request-scoped logger here so handlers and services share
// the same request_id.
func IntoContext(ctx context.Context, logger zerolog.Logger) context.Context {
	return context.WithValue(ctx, loggerKey{}, logger)
}

// FromContext returns the logger attached to the context, or the
// global logger when the context carries none.
func FromContext(ctx context.Context) zerolog.Logger {
	if logger, ok := ctx.Value(loggerKey{}).(zerolog.Logger); ok {
		return logger
	}
	return L()
}
