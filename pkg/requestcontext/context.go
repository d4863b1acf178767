// Package requestcontext provides HTTP-independent context accessors for
// request-scoped values.
//
// Middleware sets these values; services read them. Keeping the package free
// of net/http lets workers and tests use the same accessors.
//
// Usage in services (read values):
//
//	now := requestcontext.Now(ctx)
//	actorID := requestcontext.ActorID(ctx)
//
// Usage in tests (inject values):
//
//	ctx = requestcontext.WithTime(ctx, fixedTime)
//	ctx = requestcontext.WithActorID(ctx, domain.UserID(7))
package requestcontext

import (
	"context"
	"time"

	id "eventhub/pkg/domain"
)

type (
	actorIDKey     struct{}
	requestIDKey   struct{}
	requestTimeKey struct{}
)

// Exported context keys for tests that need context.WithValue directly.
var (
	ContextKeyActorID     = actorIDKey{}
	ContextKeyRequestID   = requestIDKey{}
	ContextKeyRequestTime = requestTimeKey{}
)

// ActorID retrieves the calling user's identity from the context. Returns
// zero (invalid) if the gateway supplied no identity.
func ActorID(ctx context.Context) id.UserID {
	if actorID, ok := ctx.Value(ContextKeyActorID).(id.UserID); ok {
		return actorID
	}
	return 0
}

// WithActorID injects a caller identity into the context.
func WithActorID(ctx context.Context, actorID id.UserID) context.Context {
	return context.WithValue(ctx, ContextKeyActorID, actorID)
}

// RequestID retrieves the request ID from the context.
func RequestID(ctx context.Context) string {
	if reqID, ok := ctx.Value(ContextKeyRequestID).(string); ok {
		return reqID
	}
	return ""
}

// WithRequestID injects a request ID into the context.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, ContextKeyRequestID, requestID)
}

// Now retrieves the request-scoped time from context. Every timestamp the
// domain records and every registration-window decision reads this single
// instant, so a request observes one consistent "now" and tests can pin it.
// Falls back to time.Now() for non-HTTP contexts (workers, CLI).
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
