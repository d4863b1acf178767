// Package service orchestrates the registration workflow: apply, review,
// cancel. Review decisions and slot accounting move together inside one
// transaction.
package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"eventhub/internal/application/metrics"
	"eventhub/internal/application/models"
	"eventhub/internal/audit"
	eventMetrics "eventhub/internal/event/metrics"
	eventModels "eventhub/internal/event/models"
	id "eventhub/pkg/domain"
	dErrors "eventhub/pkg/domain-errors"
	"eventhub/pkg/platform/sentinel"
	"eventhub/pkg/platform/tx"
	"eventhub/pkg/requestcontext"
)

// Store is the application persistence contract.
type Store interface {
	Create(ctx context.Context, app *models.Application) (*models.Application, error)
	Get(ctx context.Context, appID id.ApplicationID) (*models.Application, error)
	ListByEvent(ctx context.Context, eventID id.EventID) ([]*models.Application, error)
	ListByApplicant(ctx context.Context, userID id.UserID) ([]*models.Application, error)
	Execute(ctx context.Context, appID id.ApplicationID, fn func(*models.Application) error) (*models.Application, error)
}

// EventStore is the slice of event persistence the workflow needs: reading
// events for eligibility and locking them for slot accounting.
type EventStore interface {
	Get(ctx context.Context, eventID id.EventID) (*eventModels.Event, error)
	Execute(ctx context.Context, eventID id.EventID, fn func(*eventModels.Event) error) (*eventModels.Event, error)
}

// Service orchestrates the registration workflow.
type Service struct {
	apps     Store
	events   EventStore
	txRunner tx.Runner
	logger   *slog.Logger
	audit    audit.Recorder
	metrics  *metrics.Metrics
	eventMet *eventMetrics.Metrics
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

// WithEventMetrics lets the workflow count refused reservations against the
// event module's capacity metric.
func WithEventMetrics(m *eventMetrics.Metrics) Option {
	return func(s *Service) { s.eventMet = m }
}

// New constructs a Service.
func New(apps Store, events EventStore, txRunner tx.Runner, opts ...Option) (*Service, error) {
	if apps == nil {
		return nil, errors.New("application store is required")
	}
	if events == nil {
		return nil, errors.New("event store is required")
	}
	if txRunner == nil {
		return nil, errors.New("tx runner is required")
	}
	s := &Service{apps: apps, events: events, txRunner: txRunner, logger: slog.Default(), audit: audit.Noop{}}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Apply submits a registration application for the calling user. The event
// must be published with an open registration window; a user holds at most
// one live application per event.
func (s *Service) Apply(ctx context.Context, eventID id.EventID, contactInfo map[string]any, message string) (*models.Application, error) {
	applicantID := requestcontext.ActorID(ctx)
	now := requestcontext.Now(ctx)

	event, err := s.events.Get(ctx, eventID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "event not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load event")
	}

	app, err := models.NewApplication(event, applicantID, contactInfo, message, now)
	if err != nil {
		return nil, err
	}

	created, err := s.apps.Create(ctx, app)
	if err != nil {
		if errors.Is(err, sentinel.ErrAlreadyUsed) {
			return nil, dErrors.New(dErrors.CodeConflict, "user already has a live application for this event")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create application")
	}

	s.logger.InfoContext(ctx, "application submitted",
		"application_id", created.ID, "event_id", eventID, "user_id", applicantID,
		"request_id", requestcontext.RequestID(ctx))
	s.audit.Record(ctx, audit.ActionApplicationApplied, audit.EntityApplication, int64(created.ID))
	if s.metrics != nil {
		s.metrics.IncrementSubmitted()
	}
	return created, nil
}

// Approve accepts a pending application and reserves an event slot. Both
// writes happen in one transaction: when the event is full, the approval
// rolls back and the application stays pending.
//
// Lock order is application row first, event row second; Cancel takes them
// in the same order.
func (s *Service) Approve(ctx context.Context, appID id.ApplicationID) (*models.Application, error) {
	reviewerID := requestcontext.ActorID(ctx)
	now := requestcontext.Now(ctx)
	start := time.Now()

	var approved *models.Application
	err := s.txRunner.RunInTx(ctx, func(ctx context.Context) error {
		var err error
		approved, err = s.apps.Execute(ctx, appID, func(app *models.Application) error {
			if err := app.Approve(reviewerID, now); err != nil {
				return err
			}
			_, err := s.events.Execute(ctx, app.EventID, func(event *eventModels.Event) error {
				return event.ReserveSlot(now)
			})
			return err
		})
		return err
	})
	if err != nil {
		if dErrors.HasCode(err, dErrors.CodeCapacityExceeded) && s.eventMet != nil {
			s.eventMet.IncrementCapacityExhausted()
		}
		return nil, s.mapWorkflowError(err, "failed to approve application")
	}

	s.logger.InfoContext(ctx, "application approved",
		"application_id", approved.ID, "event_id", approved.EventID, "reviewer_id", reviewerID,
		"request_id", requestcontext.RequestID(ctx))
	s.audit.Record(ctx, audit.ActionApplicationApproved, audit.EntityApplication, int64(approved.ID))
	if s.metrics != nil {
		s.metrics.IncrementApproved()
		s.metrics.ObserveApprove(start)
	}
	return approved, nil
}

// Reject declines a pending application with an optional comment. No slot
// was reserved, so no event write is involved.
func (s *Service) Reject(ctx context.Context, appID id.ApplicationID, comment string) (*models.Application, error) {
	reviewerID := requestcontext.ActorID(ctx)
	now := requestcontext.Now(ctx)

	rejected, err := s.apps.Execute(ctx, appID, func(app *models.Application) error {
		return app.Reject(reviewerID, comment, now)
	})
	if err != nil {
		return nil, s.mapWorkflowError(err, "failed to reject application")
	}

	s.audit.Record(ctx, audit.ActionApplicationRejected, audit.EntityApplication, int64(rejected.ID))
	if s.metrics != nil {
		s.metrics.IncrementRejected()
	}
	return rejected, nil
}

// Cancel withdraws the calling user's application. Cancelling an approved
// application releases its event slot in the same transaction.
func (s *Service) Cancel(ctx context.Context, appID id.ApplicationID) (*models.Application, error) {
	actorID := requestcontext.ActorID(ctx)
	now := requestcontext.Now(ctx)

	var cancelled *models.Application
	err := s.txRunner.RunInTx(ctx, func(ctx context.Context) error {
		var err error
		cancelled, err = s.apps.Execute(ctx, appID, func(app *models.Application) error {
			if app.UserID != actorID {
				return dErrors.New(dErrors.CodeBadRequest, "only the applicant can cancel the application")
			}
			wasApproved := app.IsApproved()
			if err := app.Cancel(now); err != nil {
				return err
			}
			if wasApproved {
				_, err := s.events.Execute(ctx, app.EventID, func(event *eventModels.Event) error {
					return event.ReleaseSlot(now)
				})
				return err
			}
			return nil
		})
		return err
	})
	if err != nil {
		return nil, s.mapWorkflowError(err, "failed to cancel application")
	}

	s.logger.InfoContext(ctx, "application cancelled",
		"application_id", cancelled.ID, "event_id", cancelled.EventID,
		"request_id", requestcontext.RequestID(ctx))
	s.audit.Record(ctx, audit.ActionApplicationCancelled, audit.EntityApplication, int64(cancelled.ID))
	if s.metrics != nil {
		s.metrics.IncrementCancelled()
	}
	return cancelled, nil
}

// Get loads a single application.
func (s *Service) Get(ctx context.Context, appID id.ApplicationID) (*models.Application, error) {
	app, err := s.apps.Get(ctx, appID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "application not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load application")
	}
	return app, nil
}

// ListByEvent returns an event's applications, newest first.
func (s *Service) ListByEvent(ctx context.Context, eventID id.EventID) ([]*models.Application, error) {
	apps, err := s.apps.ListByEvent(ctx, eventID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list applications")
	}
	return apps, nil
}

// ListByApplicant returns a user's applications, newest first.
func (s *Service) ListByApplicant(ctx context.Context, userID id.UserID) ([]*models.Application, error) {
	apps, err := s.apps.ListByApplicant(ctx, userID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list applications")
	}
	return apps, nil
}

func (s *Service) mapWorkflowError(err error, fallback string) error {
	if errors.Is(err, sentinel.ErrNotFound) {
		return dErrors.New(dErrors.CodeNotFound, "application not found")
	}
	var coded *dErrors.Error
	if errors.As(err, &coded) {
		return err
	}
	return dErrors.Wrap(err, dErrors.CodeInternal, fallback)
}
