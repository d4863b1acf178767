// Package audit records who did what to which entity. Services publish
// entries to a buffered channel; a background worker drains it into the
// audit store, keeping the request path free of audit write latency.
package audit

import (
	"time"

	id "eventhub/pkg/domain"
)

// Action identifies what happened.
type Action string

const (
	ActionEventCreated   Action = "event.created"
	ActionEventPublished Action = "event.published"
	ActionEventCancelled Action = "event.cancelled"
	ActionEventCompleted Action = "event.completed"
	ActionEventUpdated   Action = "event.updated"

	ActionCategoryCreated Action = "category.created"
	ActionCategoryUpdated Action = "category.updated"

	ActionApplicationApplied   Action = "application.applied"
	ActionApplicationApproved  Action = "application.approved"
	ActionApplicationRejected  Action = "application.rejected"
	ActionApplicationCancelled Action = "application.cancelled"
)

// Entity types referenced by audit entries.
const (
	EntityEvent       = "event"
	EntityCategory    = "category"
	EntityApplication = "application"
)

// Entry is one recorded action. Keep it transport-agnostic so stores and
// sinks can fan out.
type Entry struct {
	ID         int64     `json:"id"`
	Action     Action    `json:"action"`
	ActorID    id.UserID `json:"actor_id,omitempty"`
	EntityType string    `json:"entity_type"`
	EntityID   int64     `json:"entity_id"`
	RequestID  string    `json:"request_id,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}
