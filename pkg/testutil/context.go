// Package testutil provides context helpers shared by service and handler
// tests.
package testutil

import (
	"context"
	"time"

	id "eventhub/pkg/domain"
	"eventhub/pkg/requestcontext"
)

// Ctx builds a context with a pinned request time and actor, the way the
// middleware chain would for a live request.
func Ctx(actorID id.UserID, now time.Time) context.Context {
	ctx := requestcontext.WithTime(context.Background(), now)
	if actorID.Valid() {
		ctx = requestcontext.WithActorID(ctx, actorID)
	}
	return ctx
}
