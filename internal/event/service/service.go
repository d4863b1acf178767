// Package service orchestrates the event lifecycle.
package service

import (
	"context"
	"errors"
	"log/slog"

	"eventhub/internal/audit"
	categoryModels "eventhub/internal/category/models"
	"eventhub/internal/event/metrics"
	"eventhub/internal/event/models"
	id "eventhub/pkg/domain"
	dErrors "eventhub/pkg/domain-errors"
	"eventhub/pkg/platform/sentinel"
	pstrings "eventhub/pkg/platform/strings"
	"eventhub/pkg/requestcontext"
)

// Store is the event persistence contract.
type Store interface {
	Create(ctx context.Context, event *models.Event) (*models.Event, error)
	Get(ctx context.Context, eventID id.EventID) (*models.Event, error)
	List(ctx context.Context, filter models.Filter) ([]*models.Event, error)
	Execute(ctx context.Context, eventID id.EventID, fn func(*models.Event) error) (*models.Event, error)
	IncrementViews(ctx context.Context, eventID id.EventID) error
}

// CategoryProvider resolves the category an event is filed under.
type CategoryProvider interface {
	Get(ctx context.Context, categoryID id.CategoryID) (*categoryModels.Category, error)
}

// Service orchestrates the event lifecycle.
type Service struct {
	store      Store
	categories CategoryProvider
	logger     *slog.Logger
	audit      audit.Recorder
	metrics    *metrics.Metrics
}

type Option func(s *Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

func WithAuditRecorder(recorder audit.Recorder) Option {
	return func(s *Service) { s.audit = recorder }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

// New constructs a Service.
func New(store Store, categories CategoryProvider, opts ...Option) (*Service, error) {
	if store == nil {
		return nil, errors.New("event store is required")
	}
	if categories == nil {
		return nil, errors.New("category provider is required")
	}
	s := &Service{store: store, categories: categories, logger: slog.Default(), audit: audit.Noop{}}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// CreateInput carries the fields a new event is built from. Optional fields
// are applied after construction so each one goes through its own validation.
type CreateInput struct {
	Title           string
	Description     string
	Content         string
	CategoryID      id.CategoryID
	Schedule        models.Schedule
	Mode            models.Mode
	MaxParticipants *int
	Location        models.Location
	Tags            []string
}

// Create builds a draft event. The category must exist and be active.
func (s *Service) Create(ctx context.Context, input CreateInput) (*models.Event, error) {
	authorID := requestcontext.ActorID(ctx)
	now := requestcontext.Now(ctx)

	category, err := s.categories.Get(ctx, input.CategoryID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeValidation, "category does not exist")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load category")
	}
	if !category.IsActive {
		return nil, dErrors.New(dErrors.CodeValidation, "category is not active")
	}

	event, err := models.NewEvent(authorID, input.Title, input.CategoryID, input.Schedule, now)
	if err != nil {
		return nil, err
	}
	event.Description = input.Description
	event.Content = input.Content
	if input.Tags != nil {
		event.Tags = pstrings.DedupeAndTrim(input.Tags)
	}
	if input.Mode != "" {
		if err := event.UpdateMode(input.Mode, now); err != nil {
			return nil, err
		}
	}
	if input.MaxParticipants != nil {
		if err := event.SetMaxParticipants(*input.MaxParticipants, now); err != nil {
			return nil, err
		}
	}
	if !input.Location.IsZero() {
		if err := event.UpdateLocation(input.Location, now); err != nil {
			return nil, err
		}
	}

	created, err := s.store.Create(ctx, event)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create event")
	}

	s.logger.InfoContext(ctx, "event created",
		"event_id", created.ID, "author_id", authorID,
		"request_id", requestcontext.RequestID(ctx))
	s.audit.Record(ctx, audit.ActionEventCreated, audit.EntityEvent, int64(created.ID))
	if s.metrics != nil {
		s.metrics.IncrementCreated()
	}
	return created, nil
}

// Get loads a single event and bumps its view counter. A failed counter
// update is logged but does not fail the read.
func (s *Service) Get(ctx context.Context, eventID id.EventID) (*models.Event, error) {
	event, err := s.store.Get(ctx, eventID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "event not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load event")
	}
	if err := s.store.IncrementViews(ctx, eventID); err != nil {
		s.logger.WarnContext(ctx, "view counter update failed", "event_id", eventID, "error", err)
	}
	return event, nil
}

// List returns events matching the filter.
func (s *Service) List(ctx context.Context, filter models.Filter) ([]*models.Event, error) {
	events, err := s.store.List(ctx, filter)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list events")
	}
	return events, nil
}

// Publish moves a draft event to published. Publishing an event that is not
// a draft changes nothing and is not an error.
func (s *Service) Publish(ctx context.Context, eventID id.EventID) (*models.Event, error) {
	var transitioned bool
	event, err := s.execute(ctx, eventID, func(event *models.Event) error {
		transitioned = event.Publish(requestcontext.Now(ctx))
		return nil
	})
	if err != nil {
		return nil, err
	}
	if transitioned {
		s.logger.InfoContext(ctx, "event published",
			"event_id", event.ID, "request_id", requestcontext.RequestID(ctx))
		s.audit.Record(ctx, audit.ActionEventPublished, audit.EntityEvent, int64(event.ID))
		if s.metrics != nil {
			s.metrics.IncrementPublished()
		}
	}
	return event, nil
}

// Cancel moves a draft or published event to cancelled. Cancelling from any
// other state changes nothing and is not an error.
func (s *Service) Cancel(ctx context.Context, eventID id.EventID) (*models.Event, error) {
	var transitioned bool
	event, err := s.execute(ctx, eventID, func(event *models.Event) error {
		transitioned = event.Cancel(requestcontext.Now(ctx))
		return nil
	})
	if err != nil {
		return nil, err
	}
	if transitioned {
		s.logger.InfoContext(ctx, "event cancelled",
			"event_id", event.ID, "request_id", requestcontext.RequestID(ctx))
		s.audit.Record(ctx, audit.ActionEventCancelled, audit.EntityEvent, int64(event.ID))
		if s.metrics != nil {
			s.metrics.IncrementCancelled()
		}
	}
	return event, nil
}

// Complete marks the event completed from any state.
func (s *Service) Complete(ctx context.Context, eventID id.EventID) (*models.Event, error) {
	var transitioned bool
	event, err := s.execute(ctx, eventID, func(event *models.Event) error {
		transitioned = event.Complete(requestcontext.Now(ctx))
		return nil
	})
	if err != nil {
		return nil, err
	}
	if transitioned {
		s.audit.Record(ctx, audit.ActionEventCompleted, audit.EntityEvent, int64(event.ID))
		if s.metrics != nil {
			s.metrics.IncrementCompleted()
		}
	}
	return event, nil
}

// UpdateSchedule replaces the event's time window.
func (s *Service) UpdateSchedule(ctx context.Context, eventID id.EventID, schedule models.Schedule) (*models.Event, error) {
	return s.updateAudited(ctx, eventID, func(event *models.Event) error {
		return event.UpdateSchedule(schedule, requestcontext.Now(ctx))
	})
}

// UpdateLocation replaces the event's venue.
func (s *Service) UpdateLocation(ctx context.Context, eventID id.EventID, location models.Location) (*models.Event, error) {
	return s.updateAudited(ctx, eventID, func(event *models.Event) error {
		return event.UpdateLocation(location, requestcontext.Now(ctx))
	})
}

// UpdateMode changes how participants attend.
func (s *Service) UpdateMode(ctx context.Context, eventID id.EventID, mode models.Mode) (*models.Event, error) {
	return s.updateAudited(ctx, eventID, func(event *models.Event) error {
		return event.UpdateMode(mode, requestcontext.Now(ctx))
	})
}

// SetMaxParticipants changes the capacity limit.
func (s *Service) SetMaxParticipants(ctx context.Context, eventID id.EventID, max int) (*models.Event, error) {
	return s.updateAudited(ctx, eventID, func(event *models.Event) error {
		return event.SetMaxParticipants(max, requestcontext.Now(ctx))
	})
}

func (s *Service) updateAudited(ctx context.Context, eventID id.EventID, fn func(*models.Event) error) (*models.Event, error) {
	event, err := s.execute(ctx, eventID, fn)
	if err != nil {
		return nil, err
	}
	s.audit.Record(ctx, audit.ActionEventUpdated, audit.EntityEvent, int64(event.ID))
	return event, nil
}

func (s *Service) execute(ctx context.Context, eventID id.EventID, fn func(*models.Event) error) (*models.Event, error) {
	event, err := s.store.Execute(ctx, eventID, fn)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "event not found")
		}
		var coded *dErrors.Error
		if errors.As(err, &coded) {
			return nil, err
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to update event")
	}
	return event, nil
}
