package testutil

import (
	"context"
	"time"

	"imsse/pkg/requestcontext"
)

// FixedNow is the default evaluation instant used across tests.
var FixedNow = time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC)

// Context returns a context pinned to now with a recognizable request ID.
// Evaluations made with it agree on "now" the same way an HTTP request does.
func Context(now time.Time) context.Context {
	ctx := requestcontext.WithTime(context.Background(), now)
	return requestcontext.WithRequestID(ctx, "test-request")
}
