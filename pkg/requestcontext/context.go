// Package requestcontext provides transport-independent context accessors for
// values that travel with one trigger: its correlation ID and its evaluation time.
//
// The HTTP middleware and the carrier-config watcher set them; the router and the
// stores read them:
//
//	ctx = requestcontext.WithRequestID(ctx, id)
//	now := requestcontext.Now(ctx)
//
// Tests pin time with WithTime so validity checks are deterministic.
package requestcontext

import (
	"context"
	"time"
)

type (
	requestIDKey   struct{}
	requestTimeKey struct{}
)

// Exported context keys for direct use in tests that need context.WithValue.
var (
	ContextKeyRequestID   = requestIDKey{}
	ContextKeyRequestTime = requestTimeKey{}
)

// RequestID retrieves the trigger correlation ID from the context.
func RequestID(ctx context.Context) string {
	if reqID, ok := ctx.Value(ContextKeyRequestID).(string); ok {
		return reqID
	}
	return ""
}

// WithRequestID injects a trigger correlation ID into the context.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, ContextKeyRequestID, requestID)
}

// Now retrieves the trigger-scoped time from context.
// Falls back to time.Now() if not set (watchers, CLI, background completions).
func Now(ctx context.Context) time.Time {
	if t, ok := ctx.Value(ContextKeyRequestTime).(time.Time); ok {
		return t
	}
	return time.Now()
}

// WithTime injects a specific time into a context.
func WithTime(ctx context.Context, t time.Time) context.Context {
	return context.WithValue(ctx, ContextKeyRequestTime, t)
}
