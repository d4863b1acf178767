package audit

import (
	"context"
	"log/slog"
)

// Store is the audit persistence contract.
type Store interface {
	Append(ctx context.Context, entry Entry) error
	ListByEntity(ctx context.Context, entityType string, entityID int64) ([]Entry, error)
}

// Worker drains the audit channel into the store. A failed append is logged
// and the worker keeps going; audit persistence never takes the service down.
type Worker struct {
	store  Store
	inbox  <-chan Entry
	logger *slog.Logger
}

func NewWorker(store Store, inbox <-chan Entry, logger *slog.Logger) *Worker {
	return &Worker{store: store, inbox: inbox, logger: logger}
}

// Run consumes until the context is cancelled, then drains whatever is left
// in the buffer before returning.
func (w *Worker) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			w.drain()
			return ctx.Err()
		case entry := <-w.inbox:
			w.append(ctx, entry)
		}
	}
}

func (w *Worker) drain() {
	ctx := context.Background()
	for {
		select {
		case entry := <-w.inbox:
			w.append(ctx, entry)
		default:
			return
		}
	}
}

func (w *Worker) append(ctx context.Context, entry Entry) {
	if err := w.store.Append(ctx, entry); err != nil {
		w.logger.ErrorContext(ctx, "audit append failed",
			"action", entry.Action, "entity_type", entry.EntityType,
			"entity_id", entry.EntityID, "error", err)
	}
}
