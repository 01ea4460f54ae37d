package datamarket

import (
	"context"

	"go.uber.org/zap"
)

const contextKeyLogger contextKey = 100

// WithLogger sets the logger for this execution context.
func WithLogger(ctx Context, logger *zap.Logger) Context {
	return context.WithValue(ctx, contextKeyLogger, logger)
}

// GetLogger returns the logger attached to this context, or a no-op logger
// when none was provided. It is always safe to log to the result.
func GetLogger(ctx Context) *zap.Logger {
	if logger, ok := ctx.Value(contextKeyLogger).(*zap.Logger); ok {
		return logger
	}
	return zap.NewNop()
}
