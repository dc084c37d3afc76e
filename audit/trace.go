package audit

import (
	"context"

	"github.com/google/uuid"
)

type traceKey struct{}

// WithTraceID returns a context carrying the request trace id.
func WithTraceID(ctx context.Context, traceID string) context.Context {
	return context.WithValue(ctx, traceKey{}, traceID)
}

// TraceID returns the trace id stored by WithTraceID, or "".
func TraceID(ctx context.Context) string {
	if v, ok := ctx.Value(traceKey{}).(string); ok {
		return v
	}
	return ""
}

// ActorID returns a pointer for the optional actor column.
func ActorID(id uuid.UUID) *uuid.UUID { return &id }
