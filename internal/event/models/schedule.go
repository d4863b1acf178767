package models

import (
	"time"

	dErrors "eventhub/pkg/domain-errors"
)

// Schedule is the immutable time window of an event, plus an optional
// registration deadline. A nil Deadline means registration stays open until
// the event starts.
//
// Invariants:
//   - Start is not after End (a zero-duration window is allowed)
//   - Deadline, when set, is not after Start
type Schedule struct {
	Start    time.Time  `json:"start_date"`
	End      time.Time  `json:"end_date"`
	Deadline *time.Time `json:"registration_deadline,omitempty"`
}

// NewSchedule builds a validated schedule.
func NewSchedule(start, end time.Time, deadline *time.Time) (Schedule, error) {
	s := Schedule{Start: start, End: end, Deadline: deadline}
	if err := s.Validate(); err != nil {
		return Schedule{}, err
	}
	return s, nil
}

// Validate checks the schedule invariants.
func (s Schedule) Validate() error {
	if s.Start.IsZero() || s.End.IsZero() {
		return dErrors.New(dErrors.CodeValidation, "schedule requires both start and end dates")
	}
	if s.Start.After(s.End) {
		return dErrors.New(dErrors.CodeValidation, "schedule start must not be after end")
	}
	if s.Deadline != nil && s.Deadline.After(s.Start) {
		return dErrors.New(dErrors.CodeValidation, "registration deadline must not be after event start")
	}
	return nil
}

// Started reports whether the event has begun at the given instant. The
// start instant itself does not count as started.
func (s Schedule) Started(now time.Time) bool {
	return now.After(s.Start)
}

// Ended reports whether the event is over at the given instant.
func (s Schedule) Ended(now time.Time) bool {
	return now.After(s.End)
}

// RegistrationOpen reports whether registration is accepted at the given
// instant. The cutoff is the deadline when set; otherwise registration stays
// open until the event has started.
func (s Schedule) RegistrationOpen(now time.Time) bool {
	if s.Deadline != nil {
		return now.Before(*s.Deadline)
	}
	return !s.Started(now)
}

// DurationMinutes is the scheduled length of the event in whole minutes.
func (s Schedule) DurationMinutes() int {
	return int(s.End.Sub(s.Start) / time.Minute)
}
