package slogx

import (
	"context"
	"log/slog"
)

type ctxKey struct{}

type holderKey struct{}

// loggerHolder lets an inner middleware hand an enriched logger back to the
// access log written by HTTPMiddleware.
type loggerHolder struct {
	logger *slog.Logger
}

func withHolder(ctx context.Context, h *loggerHolder) context.Context {
	return context.WithValue(ctx, holderKey{}, h)
}

func WithContext(ctx context.Context, logger *slog.Logger) context.Context {
	if h, ok := ctx.Value(holderKey{}).(*loggerHolder); ok {
		h.logger = logger
	}
	return context.WithValue(ctx, ctxKey{}, logger)
}

func FromContext(ctx context.Context) *slog.Logger {
	l, ok := ctx.Value(ctxKey{}).(*slog.Logger)
	if !ok {
		return slog.Default()
	}
	return l
}

// With returns ctx whose logger carries the extra attributes.
func With(ctx context.Context, args ...any) context.Context {
	return WithContext(ctx, FromContext(ctx).With(args...))
}
