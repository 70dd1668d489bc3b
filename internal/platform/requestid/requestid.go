// Package requestid carries the per-request correlation ID through contexts.
package requestid

import (
	"context"
	"log/slog"
)

// LogKey is the attribute name request IDs are logged under.
const LogKey = "request_id"

type ctxKey struct{}

// NewContext returns a context that carries the given request ID.
func NewContext(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, ctxKey{}, id)
}

// FromContext returns the request ID stored in ctx, or an empty string.
func FromContext(ctx context.Context) string {
	id, _ := ctx.Value(ctxKey{}).(string)
	return id
}

// Attr returns the request ID in ctx as a log attribute.
func Attr(ctx context.Context) slog.Attr {
	return slog.String(LogKey, FromContext(ctx))
}
