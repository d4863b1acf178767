package models

import (
	"time"
	"unicode/utf8"

	eventModels "eventhub/internal/event/models"
	id "eventhub/pkg/domain"
	dErrors "eventhub/pkg/domain-errors"
)

const maxMessageLength = 1000

// Application is a user's request to participate in an event.
//
// Invariants:
//   - Review transitions (approve, reject) only apply to pending applications
//   - Cancel applies in every state except cancelled
//   - Review metadata (reviewer, date, comment) is set exactly once, on review
//   - ApplicationDate is immutable after construction
//
// Slot accounting is NOT the application's concern: the service reserves an
// event slot when approving and releases it when an approved application is
// cancelled, inside one transaction.
type Application struct {
	ID              id.ApplicationID `json:"id"`
	EventID         id.EventID       `json:"event_id"`
	UserID          id.UserID        `json:"user_id"`
	Status          Status           `json:"status"`
	ApplicationDate time.Time        `json:"application_date"`
	ContactInfo     map[string]any   `json:"contact_info,omitempty"`
	Message         string           `json:"message,omitempty"`
	ReviewedBy      *id.UserID       `json:"reviewed_by,omitempty"`
	ReviewDate      *time.Time       `json:"review_date,omitempty"`
	ReviewComment   string           `json:"review_comment,omitempty"`
	CreatedAt       time.Time        `json:"created_at"`
	UpdatedAt       time.Time        `json:"updated_at"`
}

// NewApplication constructs a pending application against an event. The
// event must currently accept registrations: published, window open.
func NewApplication(event *eventModels.Event, applicantID id.UserID, contactInfo map[string]any, message string, now time.Time) (*Application, error) {
	if event == nil {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "application requires an event")
	}
	if !applicantID.Valid() {
		return nil, dErrors.New(dErrors.CodeValidation, "applicant is required")
	}
	if utf8.RuneCountInString(message) > maxMessageLength {
		return nil, dErrors.New(dErrors.CodeValidation, "application message must be 1000 characters or less")
	}
	if !event.CanRegister(now) {
		return nil, dErrors.New(dErrors.CodeIneligibleRegistration, "event is not open for registration")
	}
	return &Application{
		EventID:         event.ID,
		UserID:          applicantID,
		Status:          StatusPending,
		ApplicationDate: now,
		ContactInfo:     contactInfo,
		Message:         message,
		CreatedAt:       now,
		UpdatedAt:       now,
	}, nil
}

func (a *Application) IsPending() bool  { return a.Status == StatusPending }
func (a *Application) IsApproved() bool { return a.Status == StatusApproved }

// Approve moves a pending application to approved and records the reviewer.
func (a *Application) Approve(reviewerID id.UserID, now time.Time) error {
	if err := a.canReview(reviewerID); err != nil {
		return err
	}
	a.Status = StatusApproved
	a.review(reviewerID, "", now)
	return nil
}

// Reject moves a pending application to rejected and records the reviewer
// and an optional comment.
func (a *Application) Reject(reviewerID id.UserID, comment string, now time.Time) error {
	if err := a.canReview(reviewerID); err != nil {
		return err
	}
	a.Status = StatusRejected
	a.review(reviewerID, comment, now)
	return nil
}

// Cancel withdraws the application. Allowed from every state except
// cancelled, including after review.
func (a *Application) Cancel(now time.Time) error {
	if a.Status == StatusCancelled {
		return dErrors.New(dErrors.CodeInvalidTransition, "application is already cancelled")
	}
	a.Status = StatusCancelled
	a.UpdatedAt = now
	return nil
}

func (a *Application) canReview(reviewerID id.UserID) error {
	if !reviewerID.Valid() {
		return dErrors.New(dErrors.CodeValidation, "reviewer is required")
	}
	if a.Status != StatusPending {
		return dErrors.New(dErrors.CodeInvalidTransition, "only pending applications can be reviewed")
	}
	return nil
}

func (a *Application) review(reviewerID id.UserID, comment string, now time.Time) {
	a.ReviewedBy = &reviewerID
	a.ReviewDate = &now
	a.ReviewComment = comment
	a.UpdatedAt = now
}

// Clone returns a deep copy for memory stores.
func (a *Application) Clone() *Application {
	clone := *a
	if a.ReviewedBy != nil {
		reviewer := *a.ReviewedBy
		clone.ReviewedBy = &reviewer
	}
	if a.ReviewDate != nil {
		t := *a.ReviewDate
		clone.ReviewDate = &t
	}
	if a.ContactInfo != nil {
		clone.ContactInfo = make(map[string]any, len(a.ContactInfo))
		for k, v := range a.ContactInfo {
			clone.ContactInfo[k] = v
		}
	}
	return &clone
}
