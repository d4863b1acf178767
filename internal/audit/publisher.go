package audit

import (
	"context"
	"log/slog"

	"eventhub/pkg/requestcontext"
)

// Recorder is what services see. Implementations must never block the
// request path.
type Recorder interface {
	Record(ctx context.Context, action Action, entityType string, entityID int64)
}

// Publisher queues entries onto a buffered channel, stamping actor, request
// ID and time from the context. When the buffer is full the entry is dropped
// and logged; the audit trail is best-effort, never a request failure.
type Publisher struct {
	out    chan<- Entry
	logger *slog.Logger
}

func NewPublisher(out chan<- Entry, logger *slog.Logger) *Publisher {
	return &Publisher{out: out, logger: logger}
}

func (p *Publisher) Record(ctx context.Context, action Action, entityType string, entityID int64) {
	entry := Entry{
		Action:     action,
		ActorID:    requestcontext.ActorID(ctx),
		EntityType: entityType,
		EntityID:   entityID,
		RequestID:  requestcontext.RequestID(ctx),
		OccurredAt: requestcontext.Now(ctx),
	}
	select {
	case p.out <- entry:
	default:
		p.logger.WarnContext(ctx, "audit buffer full, dropping entry",
			"action", action, "entity_type", entityType, "entity_id", entityID)
	}
}

// Noop discards every entry. Used where audit wiring is optional.
type Noop struct{}

func (Noop) Record(context.Context, Action, string, int64) {}
