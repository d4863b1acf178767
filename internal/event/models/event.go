package models

import (
	"strings"
	"time"
	"unicode/utf8"

	id "eventhub/pkg/domain"
	dErrors "eventhub/pkg/domain-errors"
)

const maxTitleLength = 200

// Event is the aggregate root for a single event.
//
// Invariants:
//   - Title is non-blank and at most 200 characters
//   - Status transitions: draft → published → {cancelled, completed};
//     draft → cancelled is also allowed
//   - Publish and Cancel outside their source states are silent no-ops
//   - Capacity invariants hold at all times (see Capacity)
//   - CreatedAt is immutable after construction
//
// Registration eligibility combines two facts: the event is published and
// its registration window is open. Slot accounting happens on application
// review, not on application submission.
type Event struct {
	ID             id.EventID    `json:"id"`
	Title          string        `json:"title"`
	Description    string        `json:"description,omitempty"`
	Content        string        `json:"content,omitempty"`
	CategoryID     id.CategoryID `json:"category_id"`
	ImageURL       string        `json:"image_url,omitempty"`
	OnlineURL      string        `json:"online_url,omitempty"`
	Status         Status        `json:"status"`
	Mode           Mode          `json:"event_mode"`
	Capacity       Capacity      `json:"capacity"`
	AgeRestriction *int          `json:"age_restriction,omitempty"`
	Location       Location      `json:"location"`
	Schedule       Schedule      `json:"schedule"`
	AuthorID       id.UserID     `json:"author_id"`
	ViewsCount     int64         `json:"views_count"`
	IsFeatured     bool          `json:"is_featured"`
	Tags           []string      `json:"tags"`
	CreatedAt      time.Time     `json:"created_at"`
	UpdatedAt      time.Time     `json:"updated_at"`
	PublishedAt    *time.Time    `json:"published_at,omitempty"`
}

// NewEvent constructs a draft event. New events start online with unlimited
// capacity; mode, capacity and venue are adjusted afterwards.
func NewEvent(authorID id.UserID, title string, categoryID id.CategoryID, schedule Schedule, now time.Time) (*Event, error) {
	if strings.TrimSpace(title) == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "event title cannot be blank")
	}
	if utf8.RuneCountInString(title) > maxTitleLength {
		return nil, dErrors.New(dErrors.CodeValidation, "event title must be 200 characters or less")
	}
	if !authorID.Valid() {
		return nil, dErrors.New(dErrors.CodeValidation, "event author is required")
	}
	if !categoryID.Valid() {
		return nil, dErrors.New(dErrors.CodeValidation, "event category is required")
	}
	if err := schedule.Validate(); err != nil {
		return nil, err
	}
	return &Event{
		Title:      title,
		CategoryID: categoryID,
		Status:     StatusDraft,
		Mode:       ModeOnline,
		Schedule:   schedule,
		AuthorID:   authorID,
		Tags:       []string{},
		CreatedAt:  now,
		UpdatedAt:  now,
	}, nil
}

// Publish transitions a draft event to published and stamps PublishedAt.
// Calling it in any other state changes nothing; the returned flag reports
// whether a transition happened.
func (e *Event) Publish(now time.Time) bool {
	if e.Status != StatusDraft {
		return false
	}
	e.Status = StatusPublished
	e.PublishedAt = &now
	e.UpdatedAt = now
	return true
}

// Cancel transitions a draft or published event to cancelled. Calling it in
// any other state changes nothing; the returned flag reports whether a
// transition happened.
func (e *Event) Cancel(now time.Time) bool {
	if e.Status != StatusDraft && e.Status != StatusPublished {
		return false
	}
	e.Status = StatusCancelled
	e.UpdatedAt = now
	return true
}

// Complete marks the event completed regardless of its current state. The
// returned flag reports whether the status actually changed.
func (e *Event) Complete(now time.Time) bool {
	if e.Status == StatusCompleted {
		return false
	}
	e.Status = StatusCompleted
	e.UpdatedAt = now
	return true
}

// CanRegister reports whether the event accepts applications at the given
// instant: it must be published and its registration window open.
func (e *Event) CanRegister(now time.Time) bool {
	return e.Status == StatusPublished && e.Schedule.RegistrationOpen(now)
}

// CanReserveSlot checks whether one more slot can be taken without taking
// it. Use inside Execute callbacks when the check and the mutation must be
// split.
func (e *Event) CanReserveSlot() error {
	if !e.Capacity.HasAvailableSlots() {
		return dErrors.New(dErrors.CodeCapacityExceeded, "event has no available slots")
	}
	return nil
}

// ReserveSlot takes one participant slot.
func (e *Event) ReserveSlot(now time.Time) error {
	capacity, err := e.Capacity.Reserve()
	if err != nil {
		return err
	}
	e.Capacity = capacity
	e.UpdatedAt = now
	return nil
}

// ReleaseSlot gives one participant slot back.
func (e *Event) ReleaseSlot(now time.Time) error {
	capacity, err := e.Capacity.Release()
	if err != nil {
		return err
	}
	e.Capacity = capacity
	e.UpdatedAt = now
	return nil
}

// SetMaxParticipants changes the capacity limit. The limit cannot drop below
// the already reserved count.
func (e *Event) SetMaxParticipants(max int, now time.Time) error {
	capacity, err := e.Capacity.WithMax(max)
	if err != nil {
		return err
	}
	e.Capacity = capacity
	e.UpdatedAt = now
	return nil
}

// UpdateMode changes how participants attend.
func (e *Event) UpdateMode(mode Mode, now time.Time) error {
	if !mode.IsValid() {
		return dErrors.New(dErrors.CodeValidation, "invalid event mode: "+string(mode))
	}
	e.Mode = mode
	e.UpdatedAt = now
	return nil
}

// UpdateSchedule replaces the event's time window.
func (e *Event) UpdateSchedule(schedule Schedule, now time.Time) error {
	if err := schedule.Validate(); err != nil {
		return err
	}
	e.Schedule = schedule
	e.UpdatedAt = now
	return nil
}

// UpdateLocation replaces the event's venue.
func (e *Event) UpdateLocation(location Location, now time.Time) error {
	if err := location.Validate(); err != nil {
		return err
	}
	e.Location = location
	e.UpdatedAt = now
	return nil
}

// Clone returns a deep copy. Memory stores hand out clones so callers can
// never mutate stored state outside Execute.
func (e *Event) Clone() *Event {
	clone := *e
	if e.PublishedAt != nil {
		t := *e.PublishedAt
		clone.PublishedAt = &t
	}
	if e.AgeRestriction != nil {
		n := *e.AgeRestriction
		clone.AgeRestriction = &n
	}
	if e.Capacity.Max != nil {
		n := *e.Capacity.Max
		clone.Capacity.Max = &n
	}
	if e.Schedule.Deadline != nil {
		t := *e.Schedule.Deadline
		clone.Schedule.Deadline = &t
	}
	if e.Location.Latitude != nil {
		lat := *e.Location.Latitude
		clone.Location.Latitude = &lat
	}
	if e.Location.Longitude != nil {
		lon := *e.Location.Longitude
		clone.Location.Longitude = &lon
	}
	if e.Tags != nil {
		clone.Tags = append([]string(nil), e.Tags...)
	}
	return &clone
}

// Filter narrows event listings. Zero-value fields are ignored.
// UpcomingAfter keeps only events that start after the given instant.
type Filter struct {
	Status        Status
	Mode          Mode
	CategoryID    id.CategoryID
	AuthorID      id.UserID
	Featured      *bool
	UpcomingAfter *time.Time
	Search        string
	Limit         int
	Offset        int
}

// Matches reports whether the event satisfies every set filter field.
func (f Filter) Matches(e *Event) bool {
	if f.Status != "" && e.Status != f.Status {
		return false
	}
	if f.Mode != "" && e.Mode != f.Mode {
		return false
	}
	if f.CategoryID.Valid() && e.CategoryID != f.CategoryID {
		return false
	}
	if f.AuthorID.Valid() && e.AuthorID != f.AuthorID {
		return false
	}
	if f.Featured != nil && e.IsFeatured != *f.Featured {
		return false
	}
	if f.UpcomingAfter != nil && !e.Schedule.Start.After(*f.UpcomingAfter) {
		return false
	}
	if f.Search != "" {
		needle := strings.ToLower(f.Search)
		if !strings.Contains(strings.ToLower(e.Title), needle) &&
			!strings.Contains(strings.ToLower(e.Description), needle) {
			return false
		}
	}
	return true
}
